package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ReviewRequest carries the buyer's review selections.
type ReviewRequest struct {
	SelectedKeys       []string `json:"selected_keys"`
	UnselectedKeys     []string `json:"unselected_keys"`
	ConfirmDestructive bool     `json:"confirm_destructive"`
}

// ConfirmationRequest carries the seller's confirmation selections.
type ConfirmationRequest struct {
	ConfirmedKeys []string `json:"confirmed_keys"`
	RejectedKeys  []string `json:"rejected_keys"`
}

// ShippingRequest carries the shipping selections.
type ShippingRequest struct {
	ShippedKeys []string `json:"shipped_keys"`
	HeldKeys    []string `json:"held_keys"`
}

// DeliveryRequest carries the delivery checklist. Reachable items left
// unchecked are recorded as returned.
type DeliveryRequest struct {
	DeliveredKeys []string `json:"delivered_keys"`
}

// ExceptionRequest names the exception stage to surface as active.
type ExceptionRequest struct {
	Stage string `json:"stage"`
}

// OrderSnapshotRequest is the order composition pushed by the hosting
// marketplace.
type OrderSnapshotRequest struct {
	BuyerID    string                     `json:"buyer_id"`
	BuyerName  string                     `json:"buyer_name"`
	BuyerPhone string                     `json:"buyer_phone"`
	CreatedAt  time.Time                  `json:"created_at"`
	Items      []OrderSnapshotItemRequest `json:"items"`
}

// OrderSnapshotItemRequest is one line item of a pushed snapshot.
type OrderSnapshotItemRequest struct {
	ProductID string                        `json:"product_id"`
	Name      string                        `json:"name"`
	Quantity  int                           `json:"quantity"`
	SellerID  string                        `json:"seller_id"`
	Note      string                        `json:"note"`
	Couriers  []OrderSnapshotCourierRequest `json:"couriers"`
}

// OrderSnapshotCourierRequest is one courier assignment of a pushed item.
type OrderSnapshotCourierRequest struct {
	CourierID string `json:"courier_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// StageRefResponse identifies a stage in a response payload.
type StageRefResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// ItemProgressResponse is one line item with its lifecycle status.
type ItemProgressResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	SellerID  string `json:"seller_id"`
	Status    string `json:"status"`
}

// StageLockResponse reports the commit flag of one lockable stage.
type StageLockResponse struct {
	Stage    string `json:"stage"`
	Locked   bool   `json:"locked"`
	LockedBy string `json:"locked_by,omitempty"`
}

// OrderProgressResponse is the render model for the stepper.
type OrderProgressResponse struct {
	OrderID             string                 `json:"order_id"`
	Role                string                 `json:"role"`
	CurrentStage        StageRefResponse       `json:"current_stage"`
	Items               []ItemProgressResponse `json:"items"`
	Locks               []StageLockResponse    `json:"locks"`
	ExceptionIndicators []string               `json:"exception_indicators"`
	AllowedStages       []string               `json:"allowed_stages"`
}

// StageDecisionResponse is one stage's persisted decision key sets.
type StageDecisionResponse struct {
	Stage          string   `json:"stage"`
	SelectedKeys   []string `json:"selected_keys"`
	UnselectedKeys []string `json:"unselected_keys"`
}

func toProgressResponse(response queries.GetOrderProgressQueryResponse) OrderProgressResponse {
	items := make([]ItemProgressResponse, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, ItemProgressResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			SellerID:  item.SellerID,
			Status:    item.Status,
		})
	}

	locks := make([]StageLockResponse, 0, len(response.Locks))
	for _, lock := range response.Locks {
		locks = append(locks, StageLockResponse{
			Stage:    lock.Stage,
			Locked:   lock.Locked,
			LockedBy: lock.LockedBy,
		})
	}

	return OrderProgressResponse{
		OrderID: response.OrderID.String(),
		Role:    response.Role,
		CurrentStage: StageRefResponse{
			ID:     response.CurrentStage.ID,
			Name:   response.CurrentStage.Name,
			Number: response.CurrentStage.Number,
		},
		Items:               items,
		Locks:               locks,
		ExceptionIndicators: response.ExceptionIndicators,
		AllowedStages:       response.AllowedStages,
	}
}
