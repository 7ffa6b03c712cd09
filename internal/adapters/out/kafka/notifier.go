// Package kafka publishes stage activation notifications to a Kafka topic.
// Each recipient gets one message, keyed by the recipient's actor id so all
// notifications to the same participant land in the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"fulfillment/internal/core/ports"
)

// notificationMessage is the wire format of one stage activation notification.
type notificationMessage struct {
	RecipientID string   `json:"recipient_id"`
	Role        string   `json:"role"`
	OrderID     string   `json:"order_id"`
	StageID     string   `json:"stage_id"`
	StageName   string   `json:"stage_name"`
	TriggeredBy string   `json:"triggered_by"`
	ItemKeys    []string `json:"item_keys,omitempty"`
}

// Notifier implements ports.Notifier on top of a kafka-go Writer.
type Notifier struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka-backed notifier.
func NewNotifier(writer *kafka.Writer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{writer: writer, logger: logger}
}

// NewWriter builds a writer for the notification topic with the usual
// settings: leader acks and batching left at the library defaults.
func NewWriter(host, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(host),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Notify publishes one notification message for the recipient.
func (n *Notifier) Notify(
	ctx context.Context,
	recipient ports.Recipient,
	payload ports.StageActivationPayload,
) error {
	keys := make([]string, 0, len(payload.ItemKeys))
	for _, key := range payload.ItemKeys {
		keys = append(keys, key.String())
	}

	message := notificationMessage{
		RecipientID: recipient.ActorID.String(),
		Role:        recipient.Role,
		OrderID:     payload.OrderID.String(),
		StageID:     payload.Stage.ID(),
		StageName:   payload.StageName,
		TriggeredBy: payload.TriggeredBy.String(),
		ItemKeys:    keys,
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(recipient.ActorID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	n.logger.Debug("notification published",
		"recipient", recipient.ActorID.String(),
		"order_id", message.OrderID,
		"stage", message.StageID)
	return nil
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}
