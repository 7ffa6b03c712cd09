package queries

import (
	"context"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// GetOrderProgressQueryHandler assembles the stepper render model: stage
// state is read straight from the database, the order snapshot supplies the
// item composition, and the actor's role is resolved over every order they
// participate in (the same resolution a session performs on load).
type GetOrderProgressQueryHandler struct {
	db          *gorm.DB
	snapshots   ports.OrderSnapshots
	admins      role.AdminList
	progression services.StageProgressionService
}

// NewGetOrderProgressQueryHandler creates a handler for progress queries.
func NewGetOrderProgressQueryHandler(
	db *gorm.DB,
	snapshots ports.OrderSnapshots,
	admins role.AdminList,
) GetOrderProgressQueryHandler {
	return GetOrderProgressQueryHandler{
		db:          db,
		snapshots:   snapshots,
		admins:      admins,
		progression: services.NewStageProgressionService(),
	}
}

// Handle executes the progress query.
func (h GetOrderProgressQueryHandler) Handle(
	ctx context.Context,
	query GetOrderProgressQuery,
) (GetOrderProgressQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	o, err := h.snapshots.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	participation, err := h.snapshots.GetByParticipant(ctx, query.ActorID())
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	r, err := role.Resolve(query.ActorID(), participation, h.admins)
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	statuses, err := h.readStatuses(ctx, query.OrderID())
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	marker, saved, err := h.readStageState(ctx, query.OrderID())
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	locks, err := h.readLocks(ctx, query.OrderID())
	if err != nil {
		return GetOrderProgressQueryResponse{}, err
	}

	current := stage.InferCurrentStage(marker, saved)

	items := make([]ItemProgressResponse, 0, len(o.Items()))
	statusByKey := make(map[kernel.ProductID]order.ItemStatus, len(o.Items()))
	for _, item := range o.Items() {
		status := order.StatusPending
		if s, ok := statuses[item.ProductID().String()]; ok {
			status = s
		}
		statusByKey[item.ProductID()] = status
		items = append(items, ItemProgressResponse{
			ProductID: item.ProductID().String(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			SellerID:  item.SellerID().String(),
			Status:    status.String(),
		})
	}

	indicators := h.progression.ExceptionIndicators(statusByKey)
	indicatorIDs := make([]string, 0, len(indicators))
	for _, s := range indicators {
		indicatorIDs = append(indicatorIDs, s.ID())
	}

	allowed := role.AllowedStages(r)
	allowedIDs := make([]string, 0, len(allowed))
	for _, s := range allowed {
		allowedIDs = append(allowedIDs, s.ID())
	}

	return GetOrderProgressQueryResponse{
		OrderID: query.OrderID(),
		Role:    r.String(),
		CurrentStage: StageRefResponse{
			ID:     current.ID(),
			Name:   current.DisplayName(),
			Number: current.Rank(),
		},
		Items:               items,
		Locks:               locks,
		ExceptionIndicators: indicatorIDs,
		AllowedStages:       allowedIDs,
	}, nil
}

func (h GetOrderProgressQueryHandler) readStatuses(
	ctx context.Context,
	orderID kernel.UUID,
) (map[string]order.ItemStatus, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			product_id,
			status
		FROM item_statuses
		WHERE order_id = ?
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make(map[string]order.ItemStatus)
	for rows.Next() {
		var productID, rawStatus string
		if err = rows.Scan(&productID, &rawStatus); err != nil {
			return nil, err
		}

		status, statusErr := order.ItemStatusFromString(rawStatus)
		if statusErr != nil {
			return nil, statusErr
		}
		statuses[productID] = status
	}

	return statuses, rows.Err()
}

func (h GetOrderProgressQueryHandler) readStageState(
	ctx context.Context,
	orderID kernel.UUID,
) (*stage.Marker, stage.DecisionSet, error) {
	var marker *stage.Marker

	var markerStage string
	markerRow := h.db.WithContext(ctx).Raw(`
		SELECT stage FROM stage_markers WHERE order_id = ?
	`, orderID.Bytes()).Scan(&markerStage)
	if markerRow.Error != nil {
		return nil, stage.DecisionSet{}, markerRow.Error
	}
	if markerRow.RowsAffected > 0 {
		s, err := stage.FromID(markerStage)
		if err != nil {
			return nil, stage.DecisionSet{}, err
		}
		m, err := stage.NewMarker(s)
		if err != nil {
			return nil, stage.DecisionSet{}, err
		}
		marker = &m
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT stage FROM stage_decisions WHERE order_id = ?
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, stage.DecisionSet{}, err
	}
	defer rows.Close()

	var saved stage.DecisionSet
	for rows.Next() {
		var stageID string
		if err = rows.Scan(&stageID); err != nil {
			return nil, stage.DecisionSet{}, err
		}

		s, stageErr := stage.FromID(stageID)
		if stageErr != nil {
			return nil, stage.DecisionSet{}, stageErr
		}
		switch s {
		case stage.Review:
			saved.HasReview = true
		case stage.Confirmed:
			saved.HasConfirmation = true
		case stage.Shipped:
			saved.HasShipping = true
		case stage.Delivered:
			saved.HasDelivery = true
		}
	}

	return marker, saved, rows.Err()
}

func (h GetOrderProgressQueryHandler) readLocks(
	ctx context.Context,
	orderID kernel.UUID,
) ([]StageLockResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			stage,
			locked,
			locked_by
		FROM stage_locks
		WHERE order_id = ?
		ORDER BY stage
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locks := make([]StageLockResponse, 0, 3)
	for rows.Next() {
		var lock StageLockResponse
		if err = rows.Scan(&lock.Stage, &lock.Locked, &lock.LockedBy); err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}

	return locks, rows.Err()
}
