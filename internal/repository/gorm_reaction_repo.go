package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jserwatka/network/internal/domain"
)

// GormReactionRepository implements ReactionRepository using GORM.
type GormReactionRepository struct {
	db *gorm.DB
}

// NewGormReactionRepository creates a new GORM-backed reaction ledger.
func NewGormReactionRepository(db *gorm.DB) *GormReactionRepository {
	return &GormReactionRepository{db: db}
}

// targetColumn is the reactions column that references target kind.
func targetColumn(kind domain.TargetKind) string {
	if kind == domain.TargetComment {
		return "comment_id"
	}
	return "post_id"
}

func targetExists(db *gorm.DB, target domain.Target) (bool, error) {
	var model interface{} = &domain.PostModel{}
	if target.Kind == domain.TargetComment {
		model = &domain.CommentModel{}
	}

	var n int64
	if err := db.Model(model).Where("id = ?", target.ID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func whereTarget(db *gorm.DB, userID uint, target domain.Target) *gorm.DB {
	return db.Where("user_id = ? AND "+targetColumn(target.Kind)+" = ?", userID, target.ID)
}

// TargetExists reports whether the post or comment exists.
func (r *GormReactionRepository) TargetExists(ctx context.Context, target domain.Target) (bool, error) {
	return targetExists(r.db.WithContext(ctx), target)
}

// Get returns the reaction of userID on target.
func (r *GormReactionRepository) Get(ctx context.Context, userID uint, target domain.Target) (*domain.Reaction, error) {
	var model domain.ReactionModel
	if err := whereTarget(r.db.WithContext(ctx), userID, target).Take(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrReactionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert runs check-then-write in one transaction. When a concurrent first
// reaction wins the insert, the unique index rejects ours and the upsert is
// replayed once, which then takes the update path.
func (r *GormReactionRepository) Upsert(ctx context.Context, userID uint, target domain.Target, kind domain.ReactionKind) (*domain.Reaction, domain.UpsertOutcome, error) {
	reaction, outcome, err := r.upsertOnce(ctx, userID, target, kind)
	if isUniqueViolation(err) {
		reaction, outcome, err = r.upsertOnce(ctx, userID, target, kind)
		if isUniqueViolation(err) {
			return nil, 0, ErrConstraintViolation
		}
	}
	if err != nil {
		return nil, 0, err
	}
	return reaction, outcome, nil
}

func (r *GormReactionRepository) upsertOnce(ctx context.Context, userID uint, target domain.Target, kind domain.ReactionKind) (*domain.Reaction, domain.UpsertOutcome, error) {
	var (
		model   domain.ReactionModel
		outcome domain.UpsertOutcome
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := targetExists(tx, target)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTargetNotFound
		}

		err = whereTarget(tx, userID, target).Take(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = *domain.NewReactionModel(userID, target, kind)
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			outcome = domain.OutcomeCreated
		case err != nil:
			return err
		case model.Kind == kind:
			outcome = domain.OutcomeUnchanged
		default:
			if err := tx.Model(&model).Update("kind", kind).Error; err != nil {
				return err
			}
			model.Kind = kind
			outcome = domain.OutcomeUpdated
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return model.ToDomain(), outcome, nil
}

// Delete removes the reaction of userID on target, reporting whether one existed.
func (r *GormReactionRepository) Delete(ctx context.Context, userID uint, target domain.Target) (bool, error) {
	result := whereTarget(r.db.WithContext(ctx), userID, target).Delete(&domain.ReactionModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type kindCount struct {
	TargetID uint
	Kind     domain.ReactionKind
	Count    int64
}

// Tally aggregates the reactions on target by kind.
func (r *GormReactionRepository) Tally(ctx context.Context, target domain.Target) (domain.Tally, error) {
	tallies, err := r.Tallies(ctx, target.Kind, []uint{target.ID})
	if err != nil {
		return nil, err
	}
	return tallies[target.ID], nil
}

// Tallies aggregates reactions for many targets of the same kind in one query.
// Every requested id is present in the result.
func (r *GormReactionRepository) Tallies(ctx context.Context, kind domain.TargetKind, ids []uint) (map[uint]domain.Tally, error) {
	result := make(map[uint]domain.Tally, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	col := targetColumn(kind)
	var rows []kindCount
	err := r.db.WithContext(ctx).Model(&domain.ReactionModel{}).
		Select(col+" AS target_id, kind, COUNT(*) AS count").
		Where(col+" IN ?", ids).
		Group(col + ", kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]map[domain.ReactionKind]int64, len(ids))
	for _, row := range rows {
		if counts[row.TargetID] == nil {
			counts[row.TargetID] = make(map[domain.ReactionKind]int64)
		}
		counts[row.TargetID][row.Kind] = row.Count
	}
	for _, id := range ids {
		result[id] = domain.NewTally(counts[id])
	}
	return result, nil
}

// UserReactions returns the kind userID applied to each of ids, if any.
func (r *GormReactionRepository) UserReactions(ctx context.Context, userID uint, kind domain.TargetKind, ids []uint) (map[uint]domain.ReactionKind, error) {
	result := make(map[uint]domain.ReactionKind)
	if userID == 0 || len(ids) == 0 {
		return result, nil
	}

	col := targetColumn(kind)
	var rows []kindCount
	err := r.db.WithContext(ctx).Model(&domain.ReactionModel{}).
		Select(col+" AS target_id, kind").
		Where("user_id = ? AND "+col+" IN ?", userID, ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.TargetID] = row.Kind
	}
	return result, nil
}

var _ ReactionRepository = (*GormReactionRepository)(nil)
