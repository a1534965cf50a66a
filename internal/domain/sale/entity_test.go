package sale

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSale(t *testing.T) *Sale {
	t.Helper()
	s, err := NewSale(1, 1, 0, 9, []Item{
		{ProductID: 100, Quantity: 2, UnitPrice: 1500, Discount: 100}, // 小计2900
		{ProductID: 200, Quantity: 1, UnitPrice: 800},                 // 小计800
	}, 200) // 整单优惠200
	require.NoError(t, err)
	return s
}

// TestNewSale 测试销售单创建与金额计算
func TestNewSale(t *testing.T) {
	t.Run("金额计算", func(t *testing.T) {
		s := makeSale(t)
		assert.Equal(t, StatusOpen, s.Status)
		// (2*1500-100) + 800 - 200 = 3500
		assert.Equal(t, int64(3500), s.Total)
		assert.True(t, strings.HasPrefix(s.SaleNo, "SAL"))
	})

	t.Run("空明细拒绝", func(t *testing.T) {
		_, err := NewSale(1, 1, 0, 9, nil, 0)
		assert.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("数量非法拒绝", func(t *testing.T) {
		_, err := NewSale(1, 1, 0, 9, []Item{{ProductID: 100, Quantity: 0, UnitPrice: 100}}, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("优惠超过货款拒绝", func(t *testing.T) {
		_, err := NewSale(1, 1, 0, 9, []Item{{ProductID: 100, Quantity: 1, UnitPrice: 100}}, 200)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

// TestSale_Settle 测试结算状态流转
func TestSale_Settle(t *testing.T) {
	s := makeSale(t)

	require.NoError(t, s.Settle())
	assert.Equal(t, StatusPaid, s.Status)
	assert.NotNil(t, s.PaidAt)

	// 重复结算拒绝
	assert.ErrorIs(t, s.Settle(), ErrInvalidStatusTransition)
	// 已结算不可取消
	assert.ErrorIs(t, s.Cancel(), ErrInvalidStatusTransition)
}

// TestSale_SetItemCost 测试结算成本回填
func TestSale_SetItemCost(t *testing.T) {
	s := makeSale(t)

	s.SetItemCost(0, 600, 1200)

	assert.Equal(t, int64(600), s.Items[0].UnitCost)
	assert.Equal(t, int64(1200), s.Items[0].TotalCost)
	assert.Equal(t, int64(0), s.Items[1].UnitCost) // 其他明细不受影响

	// 越界下标不改动任何明细
	s.SetItemCost(len(s.Items), 999, 999)
	s.SetItemCost(-1, 999, 999)
	assert.Equal(t, int64(600), s.Items[0].UnitCost)
	assert.Equal(t, int64(0), s.Items[1].UnitCost)
}

// TestNewPayment 测试收款记录创建
func TestNewPayment(t *testing.T) {
	p, err := NewPayment(1, 10, PaymentCash, 3500)
	require.NoError(t, err)
	assert.Equal(t, PaymentCash, p.Method)

	_, err = NewPayment(1, 10, PaymentCash, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayment(1, 10, "CHEQUE", 100)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}
