package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/google/uuid"
)

var _ usecase.LedgerUseCase = (*Service)(nil)

// Service moves money between wallets. It is the only writer of wallet balances.
type Service struct {
	uow          persistence.UnitOfWork
	notifier     *notify.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	newID        func() string
}

// NewService creates a ledger service; notifier may be nil
func NewService(
	uow persistence.UnitOfWork,
	notifier *notify.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
		newID:        func() string { return uuid.NewString() },
	}
}

// Transfer moves req.Amount from one wallet to the other.
// Both rows are locked in ascending id order, so opposite-direction transfers cannot deadlock.
func (s *Service) Transfer(ctx context.Context, req usecase.TransferRequest) (*usecase.TransferResult, error) {
	if err := entity.ValidatePositiveAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.FromWalletID == req.ToWalletID {
		return nil, errs.ErrSameWallet
	}
	amount := req.Amount.Round(entity.MoneyScale)

	var result *usecase.TransferResult
	err := s.uow.Execute(ctx, func(txCtx context.Context) error {
		wallets, err := s.LockWallets(txCtx, req.FromWalletID, req.ToWalletID)
		if err != nil {
			return err
		}
		from, to := wallets[0], wallets[1]

		now := s.timeProvider.Now()
		if err := entity.ApplyTransfer(from, to, amount, now); err != nil {
			return err
		}

		walletRepo := s.uow.GetWalletRepository(txCtx)
		if err := walletRepo.UpdateBalance(txCtx, from); err != nil {
			return err
		}
		if err := walletRepo.UpdateBalance(txCtx, to); err != nil {
			return err
		}

		correlationID := s.newID()
		debit, credit := entity.NewTransferEntries(from, to, amount, req.Description, correlationID, now)
		txRepo := s.uow.GetTransactionRepository(txCtx)
		if err := txRepo.Create(txCtx, debit); err != nil {
			return fmt.Errorf("failed to record debit: %w", err)
		}
		if err := txRepo.Create(txCtx, credit); err != nil {
			return fmt.Errorf("failed to record credit: %w", err)
		}

		result = &usecase.TransferResult{
			CorrelationID: correlationID,
			Debit:         debit,
			Credit:        credit,
			FromBalance:   from.Balance(),
			ToBalance:     to.Balance(),
		}

		event := entity.TransferCompletedEvent{
			CorrelationID: correlationID,
			FromWalletID:  from.ID,
			ToWalletID:    to.ID,
			Amount:        entity.FormatAmount(amount),
			Description:   req.Description,
			OccurredAt:    now,
		}
		s.uow.AfterCommit(txCtx, func() { s.notifier.Publish(ctx, event) })
		return nil
	})
	if err != nil {
		fields := errs.LogFields(err)
		fields["from_wallet_id"] = req.FromWalletID
		fields["to_wallet_id"] = req.ToWalletID
		fields["amount"] = entity.FormatAmount(amount)
		s.logger.Warn("Transfer failed", fields)
		return nil, err
	}

	s.logger.Info("Transfer completed", map[string]any{
		"correlation_id": result.CorrelationID,
		"from_wallet_id": req.FromWalletID,
		"to_wallet_id":   req.ToWalletID,
		"amount":         entity.FormatAmount(amount),
		"description":    req.Description,
	})
	return result, nil
}

// LockWallets locks the given wallet rows in ascending id order and returns them in the order requested
func (s *Service) LockWallets(ctx context.Context, walletIDs ...uint64) ([]*entity.Wallet, error) {
	ordered := make([]uint64, 0, len(walletIDs))
	seen := make(map[uint64]bool, len(walletIDs))
	for _, id := range walletIDs {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	repo := s.uow.GetWalletRepository(ctx)
	locked := make(map[uint64]*entity.Wallet, len(ordered))
	for _, id := range ordered {
		wallet, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = wallet
	}

	out := make([]*entity.Wallet, len(walletIDs))
	for i, id := range walletIDs {
		out[i] = locked[id]
	}
	return out, nil
}

// GetWallet returns a wallet by id
func (s *Service) GetWallet(ctx context.Context, walletID uint64) (*entity.Wallet, error) {
	return s.uow.GetWalletRepository(ctx).GetByID(ctx, walletID)
}

// GetWalletByUser returns the wallet owned by userID
func (s *Service) GetWalletByUser(ctx context.Context, userID uint64) (*entity.Wallet, error) {
	return s.uow.GetWalletRepository(ctx).GetByUserID(ctx, userID)
}

// ListTransactions returns the newest ledger rows of a wallet
func (s *Service) ListTransactions(ctx context.Context, walletID uint64, limit int) ([]*entity.Transaction, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	return s.uow.GetTransactionRepository(ctx).ListByWallet(ctx, walletID, limit)
}
