package stagerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/errs"
)

// GormStageRepository implements ports.StageRepository using GORM.
type GormStageRepository struct {
	db *gorm.DB
}

// NewGormStageRepository creates a new GORM stage state repository.
func NewGormStageRepository(db *gorm.DB) *GormStageRepository {
	return &GormStageRepository{db: db}
}

// GetDecision retrieves the decision record of a ranked stage.
// Returns errs.ErrObjectNotFound when the stage was never saved.
func (r *GormStageRepository) GetDecision(
	ctx context.Context,
	orderID kernel.UUID,
	s stage.Stage,
) (stage.Decision, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var dto StageDecisionDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND stage = ?", orderID.Bytes(), s.ID()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stage decision", s.ID())
		}
		return nil, err
	}

	return decisionToDomain(dto)
}

// GetDecisionSet reports which stage decisions exist for the order.
func (r *GormStageRepository) GetDecisionSet(
	ctx context.Context,
	orderID kernel.UUID,
) (stage.DecisionSet, error) {
	if err := orderID.Validate(); err != nil {
		return stage.DecisionSet{}, err
	}

	var stages []string
	err := r.db.WithContext(ctx).
		Model(&StageDecisionDTO{}).
		Where("order_id = ?", orderID.Bytes()).
		Pluck("stage", &stages).Error
	if err != nil {
		return stage.DecisionSet{}, err
	}

	var set stage.DecisionSet
	for _, id := range stages {
		switch id {
		case stage.Review.ID():
			set.HasReview = true
		case stage.Confirmed.ID():
			set.HasConfirmation = true
		case stage.Shipped.ID():
			set.HasShipping = true
		case stage.Delivered.ID():
			set.HasDelivery = true
		}
	}
	return set, nil
}

// SaveDecision upserts the decision record of a ranked stage.
func (r *GormStageRepository) SaveDecision(
	ctx context.Context,
	orderID kernel.UUID,
	decision stage.Decision,
) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	dto, err := decisionFromDomain(orderID, decision)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "stage"}},
			DoUpdates: clause.AssignmentColumns([]string{"selected_keys", "unselected_keys", "updated_at"}),
		}).
		Create(&dto).Error
}

// GetLock retrieves the lock record of a lockable stage.
// Stages that were never locked report the unlocked record.
func (r *GormStageRepository) GetLock(
	ctx context.Context,
	orderID kernel.UUID,
	s stage.Stage,
) (stage.LockRecord, error) {
	if err := orderID.Validate(); err != nil {
		return stage.LockRecord{}, err
	}
	if err := s.Validate(); err != nil {
		return stage.LockRecord{}, err
	}

	var dto StageLockDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND stage = ?", orderID.Bytes(), s.ID()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stage.Unlocked(), nil
		}
		return stage.LockRecord{}, err
	}

	return lockToDomain(dto)
}

// SaveLock upserts the lock record of a lockable stage.
func (r *GormStageRepository) SaveLock(
	ctx context.Context,
	orderID kernel.UUID,
	s stage.Stage,
	lock stage.LockRecord,
) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	dto := lockFromDomain(orderID, s, lock)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "stage"}},
			DoUpdates: clause.AssignmentColumns([]string{"locked", "locked_by", "updated_at"}),
		}).
		Create(&dto).Error
}

// GetMarker retrieves the persisted current-stage marker.
// Returns nil without error when no marker was ever saved.
func (r *GormStageRepository) GetMarker(
	ctx context.Context,
	orderID kernel.UUID,
) (*stage.Marker, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto StageMarkerDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	marker, err := markerToDomain(dto)
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

// SaveMarker upserts the current-stage marker.
func (r *GormStageRepository) SaveMarker(
	ctx context.Context,
	orderID kernel.UUID,
	marker stage.Marker,
) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := marker.Stage().Validate(); err != nil {
		return err
	}

	dto := markerFromDomain(orderID, marker)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stage", "number", "updated_at"}),
		}).
		Create(&dto).Error
}
