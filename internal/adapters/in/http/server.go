// Package http exposes the workflow over a REST API. The hosting marketplace
// pushes order snapshots in, participants save stage decisions, and the
// renderer pulls the progress model. The acting user is identified by the
// X-Actor-ID header set by the platform's gateway.
package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const actorHeader = "X-Actor-ID"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	recordReviewHandler       *commands.RecordReviewCommandHandler
	recordConfirmationHandler *commands.RecordConfirmationCommandHandler
	recordShippingHandler     *commands.RecordShippingCommandHandler
	recordDeliveryHandler     *commands.RecordDeliveryCommandHandler
	setExceptionStageHandler  *commands.SetExceptionStageCommandHandler

	// Query handlers
	getOrderProgressHandler queries.GetOrderProgressQueryHandler
	getStageDecisionHandler queries.GetStageDecisionQueryHandler

	// Snapshot ingest
	snapshots ports.OrderSnapshots
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	recordReviewHandler *commands.RecordReviewCommandHandler,
	recordConfirmationHandler *commands.RecordConfirmationCommandHandler,
	recordShippingHandler *commands.RecordShippingCommandHandler,
	recordDeliveryHandler *commands.RecordDeliveryCommandHandler,
	setExceptionStageHandler *commands.SetExceptionStageCommandHandler,
	getOrderProgressHandler queries.GetOrderProgressQueryHandler,
	getStageDecisionHandler queries.GetStageDecisionQueryHandler,
	snapshots ports.OrderSnapshots,
) *Server {
	return &Server{
		recordReviewHandler:       recordReviewHandler,
		recordConfirmationHandler: recordConfirmationHandler,
		recordShippingHandler:     recordShippingHandler,
		recordDeliveryHandler:     recordDeliveryHandler,
		setExceptionStageHandler:  setExceptionStageHandler,
		getOrderProgressHandler:   getOrderProgressHandler,
		getStageDecisionHandler:   getStageDecisionHandler,
		snapshots:                 snapshots,
	}
}

// RegisterRoutes attaches every endpoint to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.PUT("/orders/:order_id", s.PutOrderSnapshot)
	api.GET("/orders/:order_id/progress", s.GetOrderProgress)
	api.GET("/orders/:order_id/stages/:stage_id/decision", s.GetStageDecision)
	api.POST("/orders/:order_id/stages/review", s.RecordReview)
	api.POST("/orders/:order_id/stages/confirmation", s.RecordConfirmation)
	api.POST("/orders/:order_id/stages/shipping", s.RecordShipping)
	api.POST("/orders/:order_id/stages/delivery", s.RecordDelivery)
	api.POST("/orders/:order_id/stages/exception", s.SetExceptionStage)
}

// GetOrderProgress handles GET /api/v1/orders/:order_id/progress.
// Returns the full render model for the stepper as seen by the acting user.
func (s *Server) GetOrderProgress(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderProgressQuery(orderID, actorID)
	if err != nil {
		return badRequest(ctx, err)
	}

	response, err := s.getOrderProgressHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toProgressResponse(response))
}

// GetStageDecision handles GET /api/v1/orders/:order_id/stages/:stage_id/decision.
func (s *Server) GetStageDecision(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	target, err := stage.FromID(ctx.Param("stage_id"))
	if err != nil {
		return badRequest(ctx, err)
	}

	query, err := queries.NewGetStageDecisionQuery(orderID, target)
	if err != nil {
		return badRequest(ctx, err)
	}

	response, err := s.getStageDecisionHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, StageDecisionResponse{
		Stage:          response.Stage,
		SelectedKeys:   response.SelectedKeys,
		UnselectedKeys: response.UnselectedKeys,
	})
}

// RecordReview handles POST /api/v1/orders/:order_id/stages/review.
func (s *Server) RecordReview(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	var body ReviewRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	selected, err := parseProductKeys(body.SelectedKeys)
	if err != nil {
		return badRequest(ctx, err)
	}
	unselected, err := parseProductKeys(body.UnselectedKeys)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewRecordReviewCommand(orderID, actorID, selected, unselected, body.ConfirmDestructive)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.recordReviewHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordConfirmation handles POST /api/v1/orders/:order_id/stages/confirmation.
func (s *Server) RecordConfirmation(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	var body ConfirmationRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	confirmed, err := parseProductKeys(body.ConfirmedKeys)
	if err != nil {
		return badRequest(ctx, err)
	}
	rejected, err := parseProductKeys(body.RejectedKeys)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewRecordConfirmationCommand(orderID, actorID, confirmed, rejected)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.recordConfirmationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordShipping handles POST /api/v1/orders/:order_id/stages/shipping.
func (s *Server) RecordShipping(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	var body ShippingRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	shipped, err := parseProductKeys(body.ShippedKeys)
	if err != nil {
		return badRequest(ctx, err)
	}
	held, err := parseProductKeys(body.HeldKeys)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewRecordShippingCommand(orderID, actorID, shipped, held)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.recordShippingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RecordDelivery handles POST /api/v1/orders/:order_id/stages/delivery.
func (s *Server) RecordDelivery(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	var body DeliveryRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	delivered, err := parseProductKeys(body.DeliveredKeys)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewRecordDeliveryCommand(orderID, actorID, delivered)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.recordDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SetExceptionStage handles POST /api/v1/orders/:order_id/stages/exception.
func (s *Server) SetExceptionStage(ctx echo.Context) error {
	orderID, actorID, err := s.identify(ctx)
	if err != nil {
		return err
	}

	var body ExceptionRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	target, err := stage.FromID(body.Stage)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewSetExceptionStageCommand(orderID, actorID, target)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.setExceptionStageHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// PutOrderSnapshot handles PUT /api/v1/orders/:order_id.
// The hosting marketplace pushes the order composition here; the whole
// snapshot is replaced on every push.
func (s *Server) PutOrderSnapshot(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	var body OrderSnapshotRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, errors.New("invalid request body"))
	}

	snapshot, err := toSnapshot(orderID, body)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err := s.snapshots.Add(ctx.Request().Context(), snapshot); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) identify(ctx echo.Context) (kernel.UUID, kernel.ActorID, error) {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return kernel.UUID{}, kernel.ActorID{}, badRequest(ctx, err)
	}

	actorID, err := kernel.NewActorID(ctx.Request().Header.Get(actorHeader))
	if err != nil {
		return kernel.UUID{}, kernel.ActorID{}, ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "missing or invalid " + actorHeader + " header",
		})
	}

	return orderID, actorID, nil
}

func parseOrderID(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("order_id"))
}

func parseProductKeys(raw []string) ([]kernel.ProductID, error) {
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

func toSnapshot(orderID kernel.UUID, body OrderSnapshotRequest) (*order.Order, error) {
	buyerID, err := kernel.NewActorID(body.BuyerID)
	if err != nil {
		return nil, err
	}

	items := make([]order.OrderItem, 0, len(body.Items))
	for _, itemBody := range body.Items {
		productID, itemErr := kernel.NewProductID(itemBody.ProductID)
		if itemErr != nil {
			return nil, itemErr
		}

		sellerID, itemErr := kernel.NewActorID(itemBody.SellerID)
		if itemErr != nil {
			return nil, itemErr
		}

		couriers := make([]order.CourierAssignment, 0, len(itemBody.Couriers))
		for _, courierBody := range itemBody.Couriers {
			courierID, courierErr := kernel.NewActorID(courierBody.CourierID)
			if courierErr != nil {
				return nil, courierErr
			}

			assignment, courierErr := order.NewCourierAssignment(courierID, courierBody.Name, courierBody.Phone)
			if courierErr != nil {
				return nil, courierErr
			}
			couriers = append(couriers, assignment)
		}

		item, itemErr := order.NewOrderItem(
			productID, itemBody.Name, itemBody.Quantity, sellerID, couriers, itemBody.Note)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.NewOrder(orderID, buyerID, body.BuyerName, body.BuyerPhone, body.CreatedAt, items)
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	})
}

// writeError maps domain errors onto HTTP statuses: permission problems to
// 403, sequencing and lock refusals to 409, unresolvable roles to 422, and
// missing objects to 404.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, role.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, stage.ErrStageLocked),
		errors.Is(err, stage.ErrStageAlreadyPassed),
		errors.Is(err, stage.ErrStageOutOfOrder),
		errors.Is(err, commands.ErrDestructiveChangeNotConfirmed):
		status = http.StatusConflict
	case errors.Is(err, role.ErrRoleConflict),
		errors.Is(err, role.ErrRoleUnresolved):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, commands.ErrStageIsNotException),
		errors.Is(err, stage.ErrDecisionStageInvalid):
		status = http.StatusBadRequest
	}

	return ctx.JSON(status, ErrorResponse{
		Code:    status,
		Message: err.Error(),
	})
}
