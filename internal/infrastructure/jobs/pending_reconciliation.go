package jobs

import (
	"context"
	"log"
	"time"

	"open-wallet.backend/internal/domain/repositories"
)

// PendingReconciliationJob fails transaction records stuck in pending
// longer than the cutoff. A dangling pending record means a recorder
// never reached its terminal transition; the balance itself is already
// consistent, only the audit trail needs closing.
type PendingReconciliationJob struct {
	repo     repositories.TransactionRepository
	interval time.Duration
	maxAge   time.Duration
	stop     chan struct{}
}

func NewPendingReconciliationJob(repo repositories.TransactionRepository, interval, maxAge time.Duration) *PendingReconciliationJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &PendingReconciliationJob{
		repo:     repo,
		interval: interval,
		maxAge:   maxAge,
		stop:     make(chan struct{}),
	}
}

func (j *PendingReconciliationJob) Start(ctx context.Context) {
	log.Println("🕐 Starting pending transaction reconciliation job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Pending reconciliation job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Pending reconciliation job stopped")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *PendingReconciliationJob) Stop() {
	close(j.stop)
}

func (j *PendingReconciliationJob) reconcile(ctx context.Context) {
	cutoff := time.Now().Add(-j.maxAge)

	count, err := j.repo.FailStalePending(ctx, cutoff, "reconciliation: pending past cutoff")
	if err != nil {
		log.Printf("❌ Error reconciling pending transactions: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Failed %d stale pending transactions", count)
	}
}
