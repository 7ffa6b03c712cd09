// Package notifications fans stage activation events out to the order's
// participants. Delivery runs after the triggering save committed and never
// feeds back into the save path: a failed notification is logged, not
// returned.
package notifications

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/domain/model/stage"
	"fulfillment/internal/core/ports"
)

// StepEvent describes one stage save: which stage recorded decisions on which
// order, who triggered it, and which product keys the save touched.
// TouchedKeys scopes the relevant sellers and couriers; when empty, every
// seller and courier on the order is relevant.
type StepEvent struct {
	Order       *order.Order
	Stage       stage.Stage
	TriggeredBy kernel.ActorID
	TouchedKeys []kernel.ProductID
}

// recipient pairs an addressee with the role it is notified as.
type recipient struct {
	actorID kernel.ActorID
	role    role.Role
}

// Dispatcher computes the recipient set for a stage activation, filters it
// through the notification policy, and delivers concurrently through the
// configured notifier.
type Dispatcher struct {
	notifier ports.Notifier
	policy   ports.NotificationPolicy
	admins   role.AdminList
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger falls back to slog.Default.
func NewDispatcher(
	notifier ports.Notifier,
	policy ports.NotificationPolicy,
	admins role.AdminList,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifier: notifier,
		policy:   policy,
		admins:   admins,
		logger:   logger,
	}
}

// DispatchStepActivation notifies the order's participants that a primary
// sequence stage recorded a save. The triggering actor is excluded, sellers
// and couriers are scoped to the touched items, and every group passes
// through the notification policy. Admins are always included in the
// recipient computation so purchase-flow events reach them even when the
// policy source is unreachable.
func (d *Dispatcher) DispatchStepActivation(ctx context.Context, event StepEvent) {
	d.dispatch(ctx, event, nil)
}

// DispatchSubStepActivation notifies the stakeholders of an exception
// indicator (cancelled, rejected, returned): the buyer, the admins, and the
// sellers and couriers of the touched items only. The payload carries the
// touched keys so recipients can see which items the indicator covers.
func (d *Dispatcher) DispatchSubStepActivation(ctx context.Context, event StepEvent) {
	d.dispatch(ctx, event, event.TouchedKeys)
}

func (d *Dispatcher) dispatch(ctx context.Context, event StepEvent, payloadKeys []kernel.ProductID) {
	if event.Order == nil || event.Order.Validate() != nil {
		d.logger.Warn("notification dispatch skipped: event carries no order snapshot",
			"stage", event.Stage.ID())
		return
	}

	payload := ports.StageActivationPayload{
		OrderID:     event.Order.ID(),
		Stage:       event.Stage,
		StageName:   event.Stage.DisplayName(),
		TriggeredBy: event.TriggeredBy,
		ItemKeys:    payloadKeys,
	}

	var group errgroup.Group
	for _, r := range d.recipients(event) {
		if !d.policy.ShouldNotify(ctx, r.role.String(), event.Stage) {
			continue
		}

		group.Go(func() error {
			err := d.notifier.Notify(ctx, ports.Recipient{
				ActorID: r.actorID,
				Role:    r.role.String(),
			}, payload)
			if err != nil {
				// one failed recipient never blocks or fails the others
				d.logger.Warn("notification delivery failed",
					"order_id", payload.OrderID.String(),
					"stage", event.Stage.ID(),
					"recipient", r.actorID.String(),
					"error", err)
			}
			return nil
		})
	}
	_ = group.Wait()
}

// recipients computes the addressee set: buyer, admins, and the sellers and
// couriers of the touched items (all of them when no keys were touched). The
// triggering actor is excluded everywhere, and each actor is notified at most
// once even when they hold several relationships.
func (d *Dispatcher) recipients(event StepEvent) []recipient {
	o := event.Order

	sellers, couriers := relevantParties(o, event.TouchedKeys)

	out := make([]recipient, 0, 2+len(sellers)+len(couriers)+len(d.admins))
	seen := make(map[string]bool)

	add := func(actorID kernel.ActorID, r role.Role) {
		key := actorID.String()
		if key == "" || seen[key] || actorID.IsEqual(event.TriggeredBy) {
			return
		}
		seen[key] = true
		out = append(out, recipient{actorID: actorID, role: r})
	}

	for _, admin := range d.admins {
		add(admin, role.Admin)
	}
	add(o.BuyerID(), role.Buyer)
	for _, seller := range sellers {
		add(seller, role.Seller)
	}
	for _, courier := range couriers {
		add(courier, role.Courier)
	}
	return out
}

// relevantParties returns the distinct sellers and couriers of the touched
// items, or of the whole order when keys is empty.
func relevantParties(o *order.Order, keys []kernel.ProductID) ([]kernel.ActorID, []kernel.ActorID) {
	if len(keys) == 0 {
		return o.SellerIDs(), o.CourierIDs()
	}

	seenSeller := make(map[string]bool)
	seenCourier := make(map[string]bool)
	sellers := make([]kernel.ActorID, 0, len(keys))
	couriers := make([]kernel.ActorID, 0, len(keys))
	for _, key := range keys {
		item, ok := o.Item(key)
		if !ok {
			continue
		}
		if id := item.SellerID(); !seenSeller[id.String()] {
			seenSeller[id.String()] = true
			sellers = append(sellers, id)
		}
		for _, c := range item.Couriers() {
			if id := c.CourierID(); !seenCourier[id.String()] {
				seenCourier[id.String()] = true
				couriers = append(couriers, id)
			}
		}
	}
	return sellers, couriers
}
