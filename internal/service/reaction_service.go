package service

import (
	"context"
	"errors"

	"github.com/jserwatka/network/internal/audit"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/pkg/log"
	"github.com/jserwatka/network/pkg/pubsub"
)

// reactionService implements ReactionService.
type reactionService struct {
	ledger repository.ReactionRepository
	events eventSink
}

// NewReactionService creates a new ReactionService.
func NewReactionService(ledger repository.ReactionRepository, pub pubsub.Publisher) ReactionService {
	return &reactionService{
		ledger: ledger,
		events: newEventSink(pub),
	}
}

func checkTarget(target domain.Target) error {
	if _, err := domain.ParseTargetKind(string(target.Kind)); err != nil {
		return err
	}
	return nil
}

func (s *reactionService) resolve(ctx context.Context, target domain.Target) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	ok, err := s.ledger.TargetExists(ctx, target)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTargetNotFound
	}
	return nil
}

// React moves the (user, target) pair to Reacted(kind). Re-reacting with the
// same kind leaves the ledger untouched.
func (s *reactionService) React(ctx context.Context, userID uint, target domain.Target, label string) (*domain.Reaction, domain.UpsertOutcome, error) {
	kind := domain.DefaultReactionKind
	if label != "" {
		parsed, err := domain.ParseReactionKind(label)
		if err != nil {
			return nil, 0, err
		}
		kind = parsed
	}
	if err := checkTarget(target); err != nil {
		return nil, 0, err
	}

	reaction, outcome, err := s.ledger.Upsert(ctx, userID, target, kind)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTargetNotFound):
			return nil, 0, ErrTargetNotFound
		case errors.Is(err, repository.ErrConstraintViolation):
			l := log.Ctx(ctx)
			l.Error().Err(err).
				Str(log.FieldTargetKind, string(target.Kind)).
				Uint(log.FieldTargetID, target.ID).
				Msg("reaction upsert lost twice to concurrent writers")
			return nil, 0, ErrConstraintViolation
		}
		return nil, 0, err
	}

	if outcome != domain.OutcomeUnchanged {
		audit.LogWithDetail(ctx, audit.ActionReactionSet, userID, target.String()+" "+kind.String(), "reaction set")
		s.events.emit(ctx, pubsub.EntityReaction, target.ID, pubsub.EventReactionSet, pubsub.ReactionPayload{
			UserID:     userID,
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
			Kind:       kind.String(),
			Outcome:    outcome.String(),
		})
	}
	return reaction, outcome, nil
}

// HasReacted reports whether userID reacted to target and with which kind.
func (s *reactionService) HasReacted(ctx context.Context, userID uint, target domain.Target) (bool, domain.ReactionKind, error) {
	if err := s.resolve(ctx, target); err != nil {
		return false, 0, err
	}

	reaction, err := s.ledger.Get(ctx, userID, target)
	if err != nil {
		if errors.Is(err, repository.ErrReactionNotFound) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, reaction.Kind, nil
}

// Remove deletes the user's reaction, reporting whether there was one.
func (s *reactionService) Remove(ctx context.Context, userID uint, target domain.Target) (bool, error) {
	if err := s.resolve(ctx, target); err != nil {
		return false, err
	}

	removed, err := s.ledger.Delete(ctx, userID, target)
	if err != nil {
		return false, err
	}
	if removed {
		audit.LogWithDetail(ctx, audit.ActionReactionRemove, userID, target.String(), "reaction removed")
		s.events.emit(ctx, pubsub.EntityReaction, target.ID, pubsub.EventReactionRemoved, pubsub.ReactionPayload{
			UserID:     userID,
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
		})
	}
	return removed, nil
}

// Tally returns the per-kind counts on target, most popular first.
func (s *reactionService) Tally(ctx context.Context, target domain.Target) (domain.Tally, error) {
	if err := s.resolve(ctx, target); err != nil {
		return nil, err
	}
	return s.ledger.Tally(ctx, target)
}

var _ ReactionService = (*reactionService)(nil)
