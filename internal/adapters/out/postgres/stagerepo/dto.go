// Package stagerepo persists per-stage workflow state: decision records with
// their selected/unselected key sets, lock records, and the current-stage
// marker. Key sets are stored as JSON arrays so a decision row stays a single
// upsert.
package stagerepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
)

// StageDecisionDTO represents the database structure for one stage's
// decision record.
type StageDecisionDTO struct {
	OrderID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Stage          string    `gorm:"type:text;primaryKey"`
	SelectedKeys   string    `gorm:"type:jsonb;not null"`
	UnselectedKeys string    `gorm:"type:jsonb;not null"`
	UpdatedAt      time.Time
}

// TableName specifies the database table name for stage decisions.
func (StageDecisionDTO) TableName() string {
	return "stage_decisions"
}

// StageLockDTO represents the database structure for one stage's lock record.
type StageLockDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Stage     string    `gorm:"type:text;primaryKey"`
	Locked    bool      `gorm:"not null"`
	LockedBy  string    `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for stage locks.
func (StageLockDTO) TableName() string {
	return "stage_locks"
}

// StageMarkerDTO represents the database structure for the current-stage
// marker. One row per order.
type StageMarkerDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Stage     string    `gorm:"type:text;not null"`
	Number    int       `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for stage markers.
func (StageMarkerDTO) TableName() string {
	return "stage_markers"
}

func decisionFromDomain(orderID kernel.UUID, decision stage.Decision) (StageDecisionDTO, error) {
	selected, err := marshalKeys(decision.SelectedKeys())
	if err != nil {
		return StageDecisionDTO{}, err
	}
	unselected, err := marshalKeys(decision.UnselectedKeys())
	if err != nil {
		return StageDecisionDTO{}, err
	}

	return StageDecisionDTO{
		OrderID:        orderID.Bytes(),
		Stage:          decision.Stage().ID(),
		SelectedKeys:   selected,
		UnselectedKeys: unselected,
	}, nil
}

func decisionToDomain(dto StageDecisionDTO) (stage.Decision, error) {
	s, err := stage.FromID(dto.Stage)
	if err != nil {
		return nil, err
	}

	selected, err := unmarshalKeys(dto.SelectedKeys)
	if err != nil {
		return nil, err
	}
	unselected, err := unmarshalKeys(dto.UnselectedKeys)
	if err != nil {
		return nil, err
	}

	return stage.DecisionFromKeys(s, selected, unselected)
}

func lockFromDomain(orderID kernel.UUID, s stage.Stage, lock stage.LockRecord) StageLockDTO {
	return StageLockDTO{
		OrderID:  orderID.Bytes(),
		Stage:    s.ID(),
		Locked:   lock.Locked(),
		LockedBy: lock.LockedBy().String(),
	}
}

func lockToDomain(dto StageLockDTO) (stage.LockRecord, error) {
	if !dto.Locked {
		return stage.Unlocked(), nil
	}

	lockedBy, err := kernel.NewActorID(dto.LockedBy)
	if err != nil {
		return stage.LockRecord{}, err
	}
	return stage.NewLockRecord(lockedBy)
}

func markerFromDomain(orderID kernel.UUID, marker stage.Marker) StageMarkerDTO {
	return StageMarkerDTO{
		OrderID: orderID.Bytes(),
		Stage:   marker.Stage().ID(),
		Number:  marker.Number(),
	}
}

func markerToDomain(dto StageMarkerDTO) (stage.Marker, error) {
	s, err := stage.FromID(dto.Stage)
	if err != nil {
		return stage.Marker{}, err
	}
	return stage.NewMarker(s)
}

func marshalKeys(keys []kernel.ProductID) (string, error) {
	raw := make([]string, 0, len(keys))
	for _, key := range keys {
		raw = append(raw, key.String())
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalKeys(data string) ([]kernel.ProductID, error) {
	var raw []string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}

	keys := make([]kernel.ProductID, 0, len(raw))
	for _, value := range raw {
		key, err := kernel.NewProductID(value)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
