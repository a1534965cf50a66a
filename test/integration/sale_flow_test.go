package integration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaleSettlementFlow 销售结算全链路
// 建商品 → 收货入库 → 开班 → 开单 → 结算 → 核对库存与班次
func TestSaleSettlementFlow(t *testing.T) {
	SkipUnlessIntegration(t)

	token := LoginAdmin(t)

	// 1. 创建商品
	sku := UniqueSKU("AMOX")
	var product struct {
		ID    uint  `json:"id"`
		Price int64 `json:"price"`
	}
	resp := PostJSON(t, BaseURL+"/products", map[string]interface{}{
		"sku":   sku,
		"name":  "阿莫西林胶囊 500mg",
		"price": 1990,
	}, token)
	RequireOK(t, resp, &product)
	require.NotZero(t, product.ID)

	// 2. 收货入库
	var lot struct {
		LotID    uint `json:"lot_id"`
		Quantity int  `json:"quantity"`
	}
	resp = PostJSON(t, BaseURL+"/stock/receive", map[string]interface{}{
		"product_id": product.ID,
		"lot_number": UniqueLotNumber(),
		"expiration": "2027-12-31",
		"unit_cost":  850,
		"quantity":   50,
	}, token)
	RequireOK(t, resp, &lot)
	assert.Equal(t, 50, lot.Quantity)

	// 3. 开班
	var session struct {
		SessionID uint   `json:"session_id"`
		Status    string `json:"status"`
	}
	resp = PostJSON(t, BaseURL+"/cashier/sessions", map[string]interface{}{
		"opening_float": 10000,
	}, token)
	RequireOK(t, resp, &session)
	assert.Equal(t, "OPEN", session.Status)

	// 4. 开单
	var sale struct {
		SaleID uint   `json:"sale_id"`
		Total  int64  `json:"total"`
		Status string `json:"status"`
	}
	resp = PostJSON(t, BaseURL+"/sales", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 3},
		},
	}, token)
	RequireOK(t, resp, &sale)
	assert.Equal(t, "OPEN", sale.Status)
	assert.Equal(t, int64(3*1990), sale.Total)

	// 5. 现金结算
	var settled struct {
		Status    string `json:"status"`
		TotalCost int64  `json:"total_cost"`
	}
	resp = PostJSON(t, fmt.Sprintf("%s/sales/%d/settle", BaseURL, sale.SaleID), map[string]interface{}{
		"payments": []map[string]interface{}{
			{"method": "CASH", "amount": sale.Total},
		},
	}, token)
	RequireOK(t, resp, &settled)
	assert.Equal(t, "PAID", settled.Status)
	assert.Equal(t, int64(3*850), settled.TotalCost)

	// 6. 库存按FEFO扣减
	var availability struct {
		Available int `json:"available"`
	}
	resp = GetJSON(t, fmt.Sprintf("%s/stock/availability?product_id=%d", BaseURL, product.ID), token)
	RequireOK(t, resp, &availability)
	assert.Equal(t, 47, availability.Available)

	// 7. 现金销售计入当班抽屉
	var detail struct {
		Movements []struct {
			Type   string `json:"type"`
			Amount int64  `json:"amount"`
			SaleID uint   `json:"sale_id"`
		} `json:"movements"`
	}
	resp = GetJSON(t, fmt.Sprintf("%s/cashier/sessions/%d", BaseURL, session.SessionID), token)
	RequireOK(t, resp, &detail)
	found := false
	for _, m := range detail.Movements {
		if m.SaleID == sale.SaleID {
			found = true
			assert.Equal(t, "SALE", m.Type)
			assert.Equal(t, sale.Total, m.Amount)
		}
	}
	assert.True(t, found, "结算后应记录一条SALE抽屉流水")

	// 8. 清点关班(故意少点100分,核对短款)
	var closed struct {
		ExpectedAmount int64 `json:"expected_amount"`
		OverShort      int64 `json:"over_short"`
	}
	resp = PostJSON(t, BaseURL+"/cashier/sessions/close", map[string]interface{}{
		"closing_amount": 10000 + sale.Total - 100,
	}, token)
	RequireOK(t, resp, &closed)
	assert.Equal(t, int64(10000)+sale.Total, closed.ExpectedAmount)
	assert.Equal(t, int64(-100), closed.OverShort)
}

// TestSettleRequiresOpenSession 未开班结算应被拒绝
func TestSettleRequiresOpenSession(t *testing.T) {
	SkipUnlessIntegration(t)

	token := LoginAdmin(t)

	// 依赖前一个用例已关班,门店此刻无进行中班次
	var product struct {
		ID uint `json:"id"`
	}
	resp := PostJSON(t, BaseURL+"/products", map[string]interface{}{
		"sku":   UniqueSKU("IBUP"),
		"name":  "布洛芬缓释胶囊",
		"price": 1290,
	}, token)
	RequireOK(t, resp, &product)

	var sale struct {
		SaleID uint  `json:"sale_id"`
		Total  int64 `json:"total"`
	}
	resp = PostJSON(t, BaseURL+"/sales", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	}, token)
	RequireOK(t, resp, &sale)

	resp = PostJSON(t, fmt.Sprintf("%s/sales/%d/settle", BaseURL, sale.SaleID), map[string]interface{}{
		"payments": []map[string]interface{}{
			{"method": "CASH", "amount": sale.Total},
		},
	}, token)
	require.False(t, resp.OK, "未开班结算应失败")
	require.NotNil(t, resp.Error)
	assert.Equal(t, 40002, resp.Error.Code)
}
