package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTransfer(t *testing.T) *Transfer {
	t.Helper()
	tr, err := NewTransfer(1, 1, 2, []Item{
		{ProductID: 100, RequestedQty: 10},
		{ProductID: 200, RequestedQty: 5},
	}, "门店2要货")
	require.NoError(t, err)
	return tr
}

// TestNewTransfer 测试调拨单创建规则
func TestNewTransfer(t *testing.T) {
	t.Run("正常创建", func(t *testing.T) {
		tr := makeTransfer(t)
		assert.Equal(t, StatusDraft, tr.Status)
	})

	t.Run("同门店拒绝", func(t *testing.T) {
		_, err := NewTransfer(1, 1, 1, []Item{{ProductID: 100, RequestedQty: 1}}, "")
		assert.ErrorIs(t, err, ErrSameStore)
	})

	t.Run("空明细拒绝", func(t *testing.T) {
		_, err := NewTransfer(1, 1, 2, nil, "")
		assert.ErrorIs(t, err, ErrEmptyItems)
	})
}

// TestTransfer_Send 测试发货规则
func TestTransfer_Send(t *testing.T) {
	t.Run("全量发货", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Send(nil))

		assert.Equal(t, StatusSent, tr.Status)
		assert.Equal(t, 10, tr.Items[0].SentQty)
		assert.Equal(t, 5, tr.Items[1].SentQty)
	})

	t.Run("部分发货", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Send(map[uint]int{100: 6}))

		assert.Equal(t, 6, tr.Items[0].SentQty)
		assert.Equal(t, 0, tr.Items[1].SentQty)

		sent := tr.SentItems()
		require.Len(t, sent, 1)
		assert.Equal(t, uint(100), sent[0].ProductID)
	})

	t.Run("超过申请数量拒绝", func(t *testing.T) {
		tr := makeTransfer(t)
		assert.ErrorIs(t, tr.Send(map[uint]int{100: 11}), ErrExceedsRequestedQty)
	})

	t.Run("未申请的商品拒绝", func(t *testing.T) {
		tr := makeTransfer(t)
		assert.ErrorIs(t, tr.Send(map[uint]int{999: 1}), ErrItemNotRequested)
	})

	t.Run("整单只能发货一次", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Send(map[uint]int{100: 3}))

		// 再次发货被状态机拦截(杜绝多次部分发货累计超上限)
		assert.ErrorIs(t, tr.Send(map[uint]int{100: 3}), ErrInvalidStatusTransition)
	})
}

// TestTransfer_StateMachine 测试状态机流转规则
func TestTransfer_StateMachine(t *testing.T) {
	t.Run("草稿不能直接入库", func(t *testing.T) {
		tr := makeTransfer(t)
		assert.ErrorIs(t, tr.MarkReceived(), ErrInvalidStatusTransition)
	})

	t.Run("完整流转", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Send(nil))
		require.NoError(t, tr.MarkReceived())
		assert.Equal(t, StatusReceived, tr.Status)
	})

	t.Run("重复入库拒绝", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Send(nil))
		require.NoError(t, tr.MarkReceived())

		assert.ErrorIs(t, tr.MarkReceived(), ErrInvalidStatusTransition)
	})

	t.Run("仅草稿可取消", func(t *testing.T) {
		tr := makeTransfer(t)
		require.NoError(t, tr.Cancel())

		tr2 := makeTransfer(t)
		require.NoError(t, tr2.Send(nil))
		assert.ErrorIs(t, tr2.Cancel(), ErrInvalidStatusTransition)
	})
}

// TestTransfer_StoreAuthority 测试门店归属判断
func TestTransfer_StoreAuthority(t *testing.T) {
	tr := makeTransfer(t)

	assert.True(t, tr.IsOriginStore(1))
	assert.False(t, tr.IsOriginStore(2))
	assert.True(t, tr.IsDestinationStore(2))
	assert.False(t, tr.IsDestinationStore(1))
}
