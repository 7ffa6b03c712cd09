package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"
)

// Recipient is one addressee of a stage activation notification.
type Recipient struct {
	ActorID kernel.ActorID
	Role    string
}

// StageActivationPayload is the message published when a stage becomes
// active. ItemKeys is empty for primary-sequence activations and carries the
// touched product keys for exception indicator waves.
type StageActivationPayload struct {
	OrderID     kernel.UUID
	Stage       stage.Stage
	StageName   string
	TriggeredBy kernel.ActorID
	ItemKeys    []kernel.ProductID
}

// Notifier delivers stage activation notifications to a single recipient.
// Implementations must be safe for concurrent use; the dispatcher fans out
// one Notify call per recipient.
type Notifier interface {
	Notify(ctx context.Context, recipient Recipient, payload StageActivationPayload) error
}
