package scheduler

import (
	"context"
	"sync"
	"time"

	auction "auction-engine/internal/auctionService"
	model "auction-engine/internal/models"
	"auction-engine/utils"
)

// Config holds scheduler settings.
type Config struct {
	Interval time.Duration // sweep tick (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// Scheduler advances lot lifecycle state on wall-clock time: pending
// lots with a reached scheduled start are activated, active lots past
// ends_at are ended with their winner resolved. Sweeps are idempotent;
// a lot mutated between listing and sweeping is simply skipped.
type Scheduler struct {
	cfg Config
	svc *auction.AuctionService
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Scheduler.
func New(cfg Config, svc *auction.AuctionService) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Scheduler{
		cfg: cfg,
		svc: svc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the sweep loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	utils.Info("lifecycle scheduler started", map[string]any{
		"interval": s.cfg.Interval.String(),
	})
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.Info("lifecycle scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.ctx, s.now())
		}
	}
}

// Sweep runs both lifecycle passes once against the given wall-clock time.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) {
	s.sweepActivations(ctx, now)
	s.sweepExpirations(ctx, now)
}

// sweepActivations starts every pending lot whose scheduled start has
// been reached. Lots without a schedule wait for an explicit command.
func (s *Scheduler) sweepActivations(ctx context.Context, now time.Time) {
	reg := s.svc.Registry()

	pending, err := reg.ListByStatus(ctx, model.LotPending)
	if err != nil {
		utils.Error("activation sweep: failed to list pending lots", map[string]any{"error": err.Error()})
		return
	}

	for _, lot := range pending {
		if lot.ScheduledStart == nil || now.Before(*lot.ScheduledStart) {
			continue
		}
		activated, done, err := reg.ActivateIfScheduled(ctx, lot.ID, now)
		if err != nil {
			utils.Error("activation sweep: failed to activate lot", map[string]any{
				"lot_id": lot.ID,
				"error":  err.Error(),
			})
			continue
		}
		if !done {
			continue
		}
		utils.Info("lot auto-started", map[string]any{
			"lot_id":  activated.ID,
			"title":   activated.Title,
			"ends_at": activated.EndsAt,
		})
		s.svc.PublishLotUpdate(ctx, activated)
	}
}

// sweepExpirations ends every active lot past its ends_at, resolving the
// winner as the highest bid with earliest-timestamp tie-break.
func (s *Scheduler) sweepExpirations(ctx context.Context, now time.Time) {
	reg := s.svc.Registry()

	active, err := reg.ListByStatus(ctx, model.LotActive)
	if err != nil {
		utils.Error("expiry sweep: failed to list active lots", map[string]any{"error": err.Error()})
		return
	}

	for _, lot := range active {
		if lot.EndsAt == nil || now.Before(*lot.EndsAt) {
			continue
		}
		ended, done, err := reg.ExpireIfDue(ctx, lot.ID, now)
		if err != nil {
			utils.Error("expiry sweep: failed to end lot", map[string]any{
				"lot_id": lot.ID,
				"error":  err.Error(),
			})
			continue
		}
		if !done {
			continue
		}
		utils.Info("lot expired", map[string]any{
			"lot_id":    ended.ID,
			"title":     ended.Title,
			"winner_id": ended.WinnerID,
		})
		s.svc.PublishLotUpdate(ctx, ended)
	}
}
