/*
scheduler.go - Periodic ledger audit

PURPOSE:
  Periodically checks the ledger invariants (remaining = total - paid,
  cash sales paid in full, no negative stock) and logs every violation.
  The audit only reads; it never repairs data.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Keeps the last report for GET-style inspection

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAuditScheduler(l)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Audit endpoint (on-demand check)
  - ledger/invariants.go: CheckInvariants
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/retail-ledger/ledger"
)

// AuditReport is the outcome of one audit run.
type AuditReport struct {
	RanAt      time.Time
	Violations []ledger.Violation
	Err        error
}

// AuditScheduler runs CheckInvariants on a ticker.
type AuditScheduler struct {
	Ledger        *ledger.Ledger
	Logger        *log.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastMu sync.RWMutex
	last   *AuditReport
}

// NewAuditScheduler creates a new scheduler for l.
func NewAuditScheduler(l *ledger.Ledger) *AuditScheduler {
	return &AuditScheduler{
		Ledger:        l,
		Logger:        log.Default(),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (as *AuditScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.Logger.Println("[Audit] Disabled, not starting")
		return
	}
	if as.ticker != nil {
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.stop = make(chan struct{})
	as.wg.Add(1)

	go as.run()

	as.Logger.Printf("[Audit] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler and waits for a running check to finish.
func (as *AuditScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		as.ticker = nil
		as.Logger.Println("[Audit] Stopped")
	}
}

// Last returns the most recent report, or nil before the first run.
func (as *AuditScheduler) Last() *AuditReport {
	as.lastMu.RLock()
	defer as.lastMu.RUnlock()
	return as.last
}

func (as *AuditScheduler) run() {
	defer as.wg.Done()

	as.Check(context.Background())

	for {
		select {
		case <-as.ticker.C:
			as.Check(context.Background())
		case <-as.stop:
			return
		}
	}
}

// Check runs one audit, logs the outcome and records it as the last report.
func (as *AuditScheduler) Check(ctx context.Context) AuditReport {
	report := AuditReport{RanAt: time.Now()}
	report.Violations, report.Err = as.Ledger.CheckInvariants(ctx)

	switch {
	case report.Err != nil:
		as.Logger.Printf("[Audit] Check failed: %v", report.Err)
	case len(report.Violations) == 0:
		as.Logger.Println("[Audit] Ledger consistent")
	default:
		for _, v := range report.Violations {
			as.Logger.Printf("[Audit] %s %s %d: %s", v.Kind, v.Entity, v.EntityID, v.Detail)
		}
		as.Logger.Printf("[Audit] %d violation(s) found", len(report.Violations))
	}

	as.lastMu.Lock()
	as.last = &report
	as.lastMu.Unlock()
	return report
}
