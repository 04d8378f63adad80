package background

import (
	"context"
	"log"
	"time"

	"funnelcrm/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// SubscriptionCache is the slice of the cache the expiry sweep needs: dropping
// the subscription entry for tenants whose rows it just flipped.
type SubscriptionCache interface {
	InvalidateSubscription(ctx context.Context, tenantID uuid.UUID) error
}

// Scheduler runs the store maintenance sweeps: purging dead reset tokens,
// flipping overdue invoices and expiring lapsed subscriptions. Jobs run in
// singleton mode so a slow sweep never overlaps itself.
type Scheduler struct {
	scheduler gocron.Scheduler
	tokens    repositories.ResetTokenRepository
	invoices  repositories.InvoiceRepository
	subs      repositories.SubscriptionRepository
	cache     SubscriptionCache
}

func NewScheduler(tokens repositories.ResetTokenRepository,
	invoices repositories.InvoiceRepository, subs repositories.SubscriptionRepository,
	cache SubscriptionCache) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, tokens: tokens, invoices: invoices, subs: subs, cache: cache}, nil
}

func (s *Scheduler) Start() error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(s.purgeResetTokens),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}
	if _, err := s.scheduler.NewJob(
		gocron.CronJob("0 1 * * *", false),
		gocron.NewTask(s.markOverdueInvoices),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}
	if _, err := s.scheduler.NewJob(
		gocron.CronJob("30 1 * * *", false),
		gocron.NewTask(s.expireSubscriptions),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("Background scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) purgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		log.Printf("reset token purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Purged %d expired reset tokens", n)
	}
}

func (s *Scheduler) markOverdueInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.invoices.MarkOverdue(ctx)
	if err != nil {
		log.Printf("overdue invoice sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Marked %d invoices overdue", n)
	}
}

func (s *Scheduler) expireSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	tenantIDs, err := s.subs.ExpireDue(ctx)
	if err != nil {
		log.Printf("subscription expiry sweep failed: %v", err)
		return
	}
	if s.cache != nil {
		for _, tenantID := range tenantIDs {
			if err := s.cache.InvalidateSubscription(ctx, tenantID); err != nil {
				log.Printf("subscription cache invalidation failed for tenant %s: %v", tenantID, err)
			}
		}
	}
	if len(tenantIDs) > 0 {
		log.Printf("Expired %d subscriptions", len(tenantIDs))
	}
}
