package reconciler

import (
	"context"
	"time"

	"github.com/jserwatka/network/internal/config"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/internal/store"
	pkglog "github.com/jserwatka/network/pkg/log"
)

// Reconciler periodically rewrites the cached counts of the most viewed
// profiles from the database.
type Reconciler struct {
	store  store.CounterStore
	repo   repository.FollowRepository
	cfg    config.ReconcilerConfig
	quit   chan struct{}
	doneCh chan struct{}
}

// New creates a new Reconciler.
func New(store store.CounterStore, repo repository.FollowRepository, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		quit:   make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile runs one pass: refresh the top-N hot profiles, then reset scores.
func (r *Reconciler) Reconcile(ctx context.Context) {
	l := pkglog.L()

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = 100
	}

	userIDs, err := r.store.GetTopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("reconciler: failed to get top hot keys")
		return
	}
	if len(userIDs) == 0 {
		l.Debug().Msg("reconciler: no hot keys to reconcile")
		return
	}

	for _, userID := range userIDs {
		followers, err := r.repo.GetFollowersCount(ctx, userID)
		if err != nil {
			l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("reconciler: failed to count followers")
			continue
		}
		following, err := r.repo.GetFollowingCount(ctx, userID)
		if err != nil {
			l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("reconciler: failed to count following")
			continue
		}
		counts := domain.FollowCounts{Followers: followers, Following: following}
		if err := r.store.SetCounts(ctx, userID, counts); err != nil {
			l.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("reconciler: failed to set counts")
		}
	}

	if err := r.store.ResetHotKeyScores(ctx); err != nil {
		l.Error().Err(err).Msg("reconciler: failed to reset hot key scores")
	}

	l.Info().Int("count", len(userIDs)).Msg("reconciler: hot-key reconciliation complete")
}
