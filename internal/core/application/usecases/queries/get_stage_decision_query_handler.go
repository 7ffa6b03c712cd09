package queries

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"fulfillment/internal/pkg/errs"
)

// GetStageDecisionQueryHandler reads one stage's decision record from the
// database.
type GetStageDecisionQueryHandler struct {
	db *gorm.DB
}

// NewGetStageDecisionQueryHandler creates a handler for stage decision queries.
func NewGetStageDecisionQueryHandler(db *gorm.DB) GetStageDecisionQueryHandler {
	return GetStageDecisionQueryHandler{db: db}
}

// Handle executes the stage decision query.
// Returns errs.ErrObjectNotFound when the stage was never saved.
func (h GetStageDecisionQueryHandler) Handle(
	ctx context.Context,
	query GetStageDecisionQuery,
) (GetStageDecisionQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStageDecisionQueryResponse{}, err
	}

	var row struct {
		SelectedKeys   string
		UnselectedKeys string
	}

	result := h.db.WithContext(ctx).Raw(`
		SELECT
			selected_keys,
			unselected_keys
		FROM stage_decisions
		WHERE order_id = ? AND stage = ?
	`, query.OrderID().Bytes(), query.Stage().ID()).Scan(&row)
	if result.Error != nil {
		return GetStageDecisionQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetStageDecisionQueryResponse{}, errs.NewObjectNotFoundError(
			"stage decision", query.OrderID().String()+"/"+query.Stage().ID())
	}

	var selected, unselected []string
	if err := json.Unmarshal([]byte(row.SelectedKeys), &selected); err != nil {
		return GetStageDecisionQueryResponse{}, err
	}
	if err := json.Unmarshal([]byte(row.UnselectedKeys), &unselected); err != nil {
		return GetStageDecisionQueryResponse{}, err
	}

	return GetStageDecisionQueryResponse{
		Stage:          query.Stage().ID(),
		SelectedKeys:   selected,
		UnselectedKeys: unselected,
	}, nil
}
