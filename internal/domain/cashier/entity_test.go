package cashier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSession_Lifecycle 测试班次开班/交班
func TestSession_Lifecycle(t *testing.T) {
	s, err := NewSession(1, 1, 9, 10000) // 备用金100元
	require.NoError(t, err)
	assert.True(t, s.IsOpen())

	require.NoError(t, s.Close(9, 253050))
	assert.Equal(t, SessionClosed, s.Status)
	assert.Equal(t, int64(253050), s.ClosingAmount)
	assert.NotNil(t, s.ClosedAt)

	// 重复交班拒绝
	assert.ErrorIs(t, s.Close(9, 0), ErrSessionNotOpen)
}

// TestNewSession_InvalidFloat 测试备用金校验
func TestNewSession_InvalidFloat(t *testing.T) {
	_, err := NewSession(1, 1, 9, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// TestNewSaleMovement 测试销售收款流水
func TestNewSaleMovement(t *testing.T) {
	m, err := NewSaleMovement(1, 5, 42, 9, 3500)
	require.NoError(t, err)
	assert.Equal(t, MovementSale, m.Type)
	assert.Equal(t, int64(3500), m.Amount)
	assert.Equal(t, uint(42), m.SaleID)

	_, err = NewSaleMovement(1, 5, 42, 9, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// TestNewCashMovement 测试取款/存入流水
func TestNewCashMovement(t *testing.T) {
	t.Run("取款记为负数", func(t *testing.T) {
		m, err := NewCashMovement(1, 5, 9, MovementWithdrawal, 20000, "上缴营业款")
		require.NoError(t, err)
		assert.Equal(t, int64(-20000), m.Amount)
	})

	t.Run("存入记为正数", func(t *testing.T) {
		m, err := NewCashMovement(1, 5, 9, MovementDeposit, 5000, "补充找零")
		require.NoError(t, err)
		assert.Equal(t, int64(5000), m.Amount)
	})

	t.Run("说明必填", func(t *testing.T) {
		_, err := NewCashMovement(1, 5, 9, MovementDeposit, 5000, "")
		assert.ErrorIs(t, err, ErrNoteRequired)
	})

	t.Run("销售类型不允许手工创建", func(t *testing.T) {
		_, err := NewCashMovement(1, 5, 9, MovementSale, 5000, "x")
		assert.ErrorIs(t, err, ErrInvalidMovementType)
	})
}
