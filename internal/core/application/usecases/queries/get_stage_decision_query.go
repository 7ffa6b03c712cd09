package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/pkg/guard"
)

var ErrGetStageDecisionQueryIsNotConstructed = errors.New(
	"GetStageDecisionQuery must be created via NewGetStageDecisionQuery constructor",
)

// GetStageDecisionQuery retrieves the persisted decision key sets for one
// stage of an order, used when a stage's checklist is re-opened.
type GetStageDecisionQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	stage   stage.Stage

	guard guard.ConstructorGuard
}

// NewGetStageDecisionQuery creates a query for a single stage's decision
// record. Only ranked stages record decisions.
func NewGetStageDecisionQuery(orderID kernel.UUID, s stage.Stage) (GetStageDecisionQuery, error) {
	q := GetStageDecisionQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setStage(s),
	); err != nil {
		return GetStageDecisionQuery{}, err
	}

	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStageDecisionQuery) Validate() error {
	return q.guard.Validate(ErrGetStageDecisionQueryIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (q GetStageDecisionQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Stage returns the stage whose decision record is requested.
func (q GetStageDecisionQuery) Stage() stage.Stage {
	return q.stage
}

func (q *GetStageDecisionQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

func (q *GetStageDecisionQuery) setStage(s stage.Stage) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.IsRanked() {
		return stage.ErrDecisionStageInvalid
	}
	q.stage = s
	return nil
}

// GetStageDecisionQueryResponse carries the stored key split of one stage.
type GetStageDecisionQueryResponse struct {
	Stage          string
	SelectedKeys   []string
	UnselectedKeys []string
}
