package stage_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(t *testing.T, values ...string) []kernel.ProductID {
	t.Helper()
	out := make([]kernel.ProductID, 0, len(values))
	for _, v := range values {
		id, err := kernel.NewProductID(v)
		require.NoError(t, err)
		out = append(out, id)
	}
	return out
}

func TestNewReviewDecision(t *testing.T) {
	t.Run("valid_split", func(t *testing.T) {
		d, err := stage.NewReviewDecision(keys(t, "item1", "item3"), keys(t, "item2"))

		require.NoError(t, err)
		assert.Equal(t, stage.Review, d.Stage())
		assert.Len(t, d.Selected(), 2)
		assert.Len(t, d.Unselected(), 1)
	})

	t.Run("overlapping_keys_are_rejected", func(t *testing.T) {
		_, err := stage.NewReviewDecision(keys(t, "item1"), keys(t, "item1"))
		require.ErrorIs(t, err, stage.ErrDecisionKeysOverlap)
	})

	t.Run("invalid_key_is_rejected", func(t *testing.T) {
		_, err := stage.NewReviewDecision([]kernel.ProductID{{}}, nil)
		require.Error(t, err)
	})
}

func TestDecisionVariants_StageBinding(t *testing.T) {
	confirmation, err := stage.NewConfirmationDecision(keys(t, "item1"), keys(t, "item2"))
	require.NoError(t, err)
	assert.Equal(t, stage.Confirmed, confirmation.Stage())
	assert.Equal(t, keys(t, "item1"), confirmation.SelectedKeys())
	assert.Equal(t, keys(t, "item2"), confirmation.UnselectedKeys())

	shipping, err := stage.NewShippingDecision(keys(t, "item1"), nil)
	require.NoError(t, err)
	assert.Equal(t, stage.Shipped, shipping.Stage())
	assert.Equal(t, keys(t, "item1"), shipping.Shipped())

	delivery, err := stage.NewDeliveryDecision(keys(t, "item1"), keys(t, "item3"))
	require.NoError(t, err)
	assert.Equal(t, stage.Delivered, delivery.Stage())
	assert.Equal(t, keys(t, "item3"), delivery.Returned())
}

func TestDecisionFromKeys(t *testing.T) {
	t.Run("rehydrates_each_ranked_stage", func(t *testing.T) {
		for _, s := range []stage.Stage{stage.Review, stage.Confirmed, stage.Shipped, stage.Delivered} {
			d, err := stage.DecisionFromKeys(s, keys(t, "item1"), keys(t, "item2"))
			require.NoError(t, err)
			assert.Equal(t, s, d.Stage())
			assert.Equal(t, keys(t, "item1"), d.SelectedKeys())
			assert.Equal(t, keys(t, "item2"), d.UnselectedKeys())
		}
	})

	t.Run("exception_stages_record_no_decisions", func(t *testing.T) {
		_, err := stage.DecisionFromKeys(stage.Cancelled, nil, nil)
		require.ErrorIs(t, err, stage.ErrDecisionStageInvalid)
	})
}

func TestLockRecord(t *testing.T) {
	seller, err := kernel.NewActorID("seller_key_1")
	require.NoError(t, err)

	t.Run("new_lock_is_committed", func(t *testing.T) {
		lock, err := stage.NewLockRecord(seller)
		require.NoError(t, err)
		assert.True(t, lock.Locked())
		assert.Equal(t, seller, lock.LockedBy())
	})

	t.Run("unlocked_is_open", func(t *testing.T) {
		lock := stage.Unlocked()
		assert.False(t, lock.Locked())
	})

	t.Run("lock_requires_an_owner", func(t *testing.T) {
		_, err := stage.NewLockRecord(kernel.ActorID{})
		require.Error(t, err)
	})
}
