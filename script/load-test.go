package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// account is a user created for the run
type account struct {
	ID      uint64 `json:"id"`
	Wallet  wallet `json:"wallet"`
	initial decimal.Decimal
}

type wallet struct {
	ID      uint64 `json:"id"`
	Balance string `json:"balance"`
}

type loanView struct {
	ID    uint64 `json:"id"`
	State string `json:"state"`
}

// stepResult is the outcome of one HTTP call of a loan scenario
type stepResult struct {
	Step         string
	ResponseTime time.Duration
	StatusCode   int
	Err          error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	mu           sync.Mutex
	Results      []stepResult
	ClosedLoans  int
	AbortedLoans int
	ErrorCounts  map[string]int
	TotalTime    time.Duration
}

func (s *TestStats) record(r stepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Results = append(s.Results, r)
	if r.Err != nil {
		s.ErrorCounts[r.Step+": "+r.Err.Error()]++
	}
}

type client struct {
	baseURL string
	http    *http.Client
	stats   *TestStats
}

func main() {
	baseURL := pflag.String("url", "http://localhost:8080", "base URL of the API")
	borrowers := pflag.Int("borrowers", 20, "number of borrowers, each runs one loan to completion")
	lenders := pflag.Int("lenders", 4, "number of lenders approving loans")
	concurrency := pflag.Int("concurrency", 8, "number of loan scenarios running at once")
	amount := pflag.String("amount", "50", "principal of every loan")
	rate := pflag.String("rate", "5", "interest rate of every loan, in percent")
	delayMs := pflag.Int("delay", 0, "delay between the steps of a scenario in milliseconds")
	pflag.Parse()

	c := &client{
		baseURL: *baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		stats:   &TestStats{ErrorCounts: make(map[string]int)},
	}

	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	lenderAccounts, err := c.createUsers(runID, "lender", *lenders)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create lenders:", err)
		os.Exit(1)
	}
	borrowerAccounts, err := c.createUsers(runID, "borrower", *borrowers)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create borrowers:", err)
		os.Exit(1)
	}

	fmt.Printf("Load testing %s with %d borrowers, %d lenders, concurrency %d\n",
		c.baseURL, *borrowers, *lenders, *concurrency)

	startTime := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for _, borrower := range borrowerAccounts {
		g.Go(func() error {
			lender := lenderAccounts[rand.IntN(len(lenderAccounts))]
			c.runLoan(ctx, borrower, lender, *amount, *rate, time.Duration(*delayMs)*time.Millisecond)
			return nil
		})
	}
	_ = g.Wait()
	c.stats.TotalTime = time.Since(startTime)

	printResults(c.stats)
	if !c.checkConservation(append(lenderAccounts, borrowerAccounts...)) {
		os.Exit(1)
	}
}

func (c *client) createUsers(runID, role string, n int) ([]account, error) {
	accounts := make([]account, 0, n)
	for i := 0; i < n; i++ {
		body := map[string]string{
			"email": fmt.Sprintf("%s-%s-%d@load.test", role, runID, i),
			"role":  role,
		}
		var a account
		if _, err := c.call(http.MethodPost, "/users", 0, body, &a); err != nil {
			return nil, err
		}
		initial, err := decimal.NewFromString(a.Wallet.Balance)
		if err != nil {
			return nil, err
		}
		a.initial = initial
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// runLoan drives one loan through request, approve, confirm and repay
func (c *client) runLoan(ctx context.Context, borrower, lender account, amount, rate string, delay time.Duration) {
	var loan loanView
	steps := []struct {
		name  string
		actor uint64
		path  func() string
		body  any
	}{
		{"request", borrower.ID, func() string { return "/loans" }, map[string]string{"amount": amount, "interestRate": rate}},
		{"approve", lender.ID, func() string { return fmt.Sprintf("/loans/%d/approve", loan.ID) }, nil},
		{"confirm", borrower.ID, func() string { return fmt.Sprintf("/loans/%d/confirm", loan.ID) }, nil},
		{"repay", borrower.ID, func() string { return fmt.Sprintf("/loans/%d/repay", loan.ID) }, nil},
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			return
		}
		if delay > 0 {
			time.Sleep(delay)
		}

		start := time.Now()
		status, err := c.call(http.MethodPost, step.path(), step.actor, step.body, &loan)
		c.stats.record(stepResult{
			Step:         step.name,
			ResponseTime: time.Since(start),
			StatusCode:   status,
			Err:          err,
		})
		if err != nil {
			c.stats.mu.Lock()
			c.stats.AbortedLoans++
			c.stats.mu.Unlock()
			return
		}
	}

	c.stats.mu.Lock()
	c.stats.ClosedLoans++
	c.stats.mu.Unlock()
}

// call sends a JSON request and decodes a 2xx response into out
func (c *client) call(method, path string, actor uint64, body, out any) (int, error) {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(actor, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

// checkConservation verifies the run moved money without creating or destroying any
func (c *client) checkConservation(accounts []account) bool {
	before, after := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		var w wallet
		if _, err := c.call(http.MethodGet, fmt.Sprintf("/wallets/%d", a.Wallet.ID), a.ID, nil, &w); err != nil {
			fmt.Fprintln(os.Stderr, "failed to read wallet:", err)
			return false
		}
		balance, err := decimal.NewFromString(w.Balance)
		if err != nil {
			fmt.Fprintln(os.Stderr, "malformed balance:", w.Balance)
			return false
		}
		before = before.Add(a.initial)
		after = after.Add(balance)
	}

	fmt.Println("\n----------------- CONSERVATION -----------------")
	fmt.Printf("Total before:        %s\n", before.StringFixed(2))
	fmt.Printf("Total after:         %s\n", after.StringFixed(2))
	if !before.Equal(after) {
		fmt.Println("❌ Balances do not add up")
		return false
	}
	fmt.Println("✅ Balances add up")
	return true
}

func printResults(stats *TestStats) {
	total := len(stats.Results)
	if total == 0 {
		fmt.Println("No requests were made")
		return
	}

	failed := 0
	var sum time.Duration
	byStep := make(map[string][]time.Duration)
	times := make([]time.Duration, 0, total)
	for _, r := range stats.Results {
		if r.Err != nil {
			failed++
		}
		sum += r.ResponseTime
		times = append(times, r.ResponseTime)
		byStep[r.Step] = append(byStep[r.Step], r.ResponseTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", total)
	fmt.Printf("Failed Requests:     %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	fmt.Printf("Loans Closed:        %d\n", stats.ClosedLoans)
	fmt.Printf("Loans Aborted:       %d\n", stats.AbortedLoans)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f requests/second\n", float64(total)/stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", sum/time.Duration(total))
	fmt.Printf("Minimum Response:    %v\n", times[0])
	fmt.Printf("Maximum Response:    %v\n", times[total-1])
	fmt.Printf("P50 Response:        %v\n", percentile(times, 50))
	fmt.Printf("P95 Response:        %v\n", percentile(times, 95))
	fmt.Printf("P99 Response:        %v\n", percentile(times, 99))

	fmt.Println("\n----------------- PER STEP P95 -----------------")
	for _, step := range []string{"request", "approve", "confirm", "repay"} {
		stepTimes := byStep[step]
		if len(stepTimes) == 0 {
			continue
		}
		sort.Slice(stepTimes, func(i, j int) bool { return stepTimes[i] < stepTimes[j] })
		fmt.Printf("%-10s %5d calls  p95 %v\n", step, len(stepTimes), percentile(stepTimes, 95))
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for msg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", msg, count)
		}
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	return sorted[len(sorted)*p/100]
}
