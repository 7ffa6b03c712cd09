package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordReviewCommand(t *testing.T) {
	orderID := kernel.NewUUID()
	buyer := testActorID(t, "buyer_key_1")

	t.Run("valid", func(t *testing.T) {
		cmd, err := commands.NewRecordReviewCommand(orderID, buyer,
			[]kernel.ProductID{testProductID(t, "item1")},
			[]kernel.ProductID{testProductID(t, "item2")},
			true)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, buyer, cmd.ActorID())
		assert.True(t, cmd.ConfirmDestructive())
		assert.Len(t, cmd.Decision().Selected(), 1)
		assert.Len(t, cmd.Decision().Unselected(), 1)
	})

	t.Run("invalid_order_id", func(t *testing.T) {
		_, err := commands.NewRecordReviewCommand(kernel.UUID{}, buyer, nil, nil, false)
		require.Error(t, err)
	})

	t.Run("overlapping_keys", func(t *testing.T) {
		key := testProductID(t, "item1")
		_, err := commands.NewRecordReviewCommand(orderID, buyer,
			[]kernel.ProductID{key}, []kernel.ProductID{key}, false)
		require.ErrorIs(t, err, stage.ErrDecisionKeysOverlap)
	})

	t.Run("not_constructed", func(t *testing.T) {
		cmd := commands.RecordReviewCommand{}
		require.ErrorIs(t, cmd.Validate(), commands.ErrRecordReviewCommandIsNotConstructed)
	})
}
