package dto

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU                  string `json:"sku" binding:"required,max=64"`
	Barcode              string `json:"barcode" binding:"max=64"`
	Name                 string `json:"name" binding:"required,max=200"`
	Description          string `json:"description" binding:"max=2000"`
	Price                int64  `json:"price" binding:"required,gt=0"` // 售价(分)
	RequiresPrescription bool   `json:"requires_prescription"`
}

// UpdateProductRequest 更新商品请求(改价/改信息/下架)
// Price用指针区分"不改价"和"改为某价"
type UpdateProductRequest struct {
	Name        string `json:"name" binding:"omitempty,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Barcode     string `json:"barcode" binding:"omitempty,max=64"`
	Price       *int64 `json:"price" binding:"omitempty,gt=0"`
	Deactivate  bool   `json:"deactivate"`
}

// CreateStoreRequest 创建门店请求
type CreateStoreRequest struct {
	Code    string `json:"code" binding:"required,max=32"`
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address" binding:"max=500"`
}
