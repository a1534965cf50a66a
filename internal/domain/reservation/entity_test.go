package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReservation(t *testing.T) *Reservation {
	t.Helper()
	r, err := NewReservation(1, 2, 1, 0, []Item{
		{ProductID: 100, RequestedQty: 4},
		{ProductID: 200, RequestedQty: 2},
	}, "缺货借调")
	require.NoError(t, err)
	return r
}

// TestNewReservation 测试预约单创建规则
func TestNewReservation(t *testing.T) {
	t.Run("正常创建", func(t *testing.T) {
		r := makeReservation(t)
		assert.Equal(t, StatusRequested, r.Status)
		// 批准前占用量全部为0
		for _, item := range r.Items {
			assert.Equal(t, 0, item.ReservedQty)
		}
	})

	t.Run("同门店拒绝", func(t *testing.T) {
		_, err := NewReservation(1, 1, 1, 0, []Item{{ProductID: 100, RequestedQty: 1}}, "")
		assert.ErrorIs(t, err, ErrSameStore)
	})

	t.Run("空明细拒绝", func(t *testing.T) {
		_, err := NewReservation(1, 2, 1, 0, nil, "")
		assert.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("数量非法拒绝", func(t *testing.T) {
		_, err := NewReservation(1, 2, 1, 0, []Item{{ProductID: 100, RequestedQty: 0}}, "")
		assert.ErrorIs(t, err, ErrInvalidItemQuantity)
	})
}

// TestReservation_StateMachine 测试状态机流转规则
func TestReservation_StateMachine(t *testing.T) {
	t.Run("批准置位全部明细占用量", func(t *testing.T) {
		r := makeReservation(t)
		require.NoError(t, r.Approve())

		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, 4, r.Items[0].ReservedQty)
		assert.Equal(t, 2, r.Items[1].ReservedQty)
	})

	t.Run("拒绝必须有原因", func(t *testing.T) {
		r := makeReservation(t)
		assert.ErrorIs(t, r.Reject(""), ErrRejectReasonRequired)

		require.NoError(t, r.Reject("库存紧张"))
		assert.Equal(t, StatusRejected, r.Status)
		assert.Equal(t, "库存紧张", r.RejectReason)
	})

	t.Run("已申请和已批准可取消", func(t *testing.T) {
		r := makeReservation(t)
		require.NoError(t, r.Cancel())
		assert.Equal(t, StatusCanceled, r.Status)

		r2 := makeReservation(t)
		require.NoError(t, r2.Approve())
		require.NoError(t, r2.Cancel())
	})

	t.Run("只有已批准可履约", func(t *testing.T) {
		r := makeReservation(t)
		assert.ErrorIs(t, r.Fulfill(), ErrInvalidStatusTransition)

		require.NoError(t, r.Approve())
		require.NoError(t, r.Fulfill())
		assert.Equal(t, StatusFulfilled, r.Status)
	})

	t.Run("终态不可再流转", func(t *testing.T) {
		r := makeReservation(t)
		require.NoError(t, r.Reject("库存紧张"))

		assert.ErrorIs(t, r.Approve(), ErrInvalidStatusTransition)
		assert.ErrorIs(t, r.Cancel(), ErrInvalidStatusTransition)
		// 状态未被破坏
		assert.Equal(t, StatusRejected, r.Status)
	})
}

// TestReservation_StoreAuthority 测试门店归属判断
func TestReservation_StoreAuthority(t *testing.T) {
	r := makeReservation(t)

	assert.True(t, r.IsSourceStore(1))
	assert.False(t, r.IsSourceStore(2))
	assert.True(t, r.IsRequestStore(2))
	assert.False(t, r.IsRequestStore(1))
}
