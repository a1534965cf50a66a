package catalog

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/catalog"
)

// CreateStoreUseCase 创建门店用例(仅管理员)
type CreateStoreUseCase struct {
	storeRepo catalog.StoreRepository
}

// NewCreateStoreUseCase 创建门店用例
func NewCreateStoreUseCase(storeRepo catalog.StoreRepository) *CreateStoreUseCase {
	return &CreateStoreUseCase{storeRepo: storeRepo}
}

// CreateStoreRequest 创建门店请求DTO
type CreateStoreRequest struct {
	TenantID uint // 租户ID(从JWT提取)
	Code     string
	Name     string
	Address  string
}

// StoreInfo 门店信息DTO
type StoreInfo struct {
	ID      uint   `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Active  bool   `json:"active"`
}

// Execute 执行创建门店
func (uc *CreateStoreUseCase) Execute(ctx context.Context, req CreateStoreRequest) (*StoreInfo, error) {
	store, err := catalog.NewStore(req.TenantID, req.Code, req.Name, req.Address)
	if err != nil {
		return nil, err
	}

	if err := uc.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}

	return &StoreInfo{
		ID:      store.ID,
		Code:    store.Code,
		Name:    store.Name,
		Address: store.Address,
		Active:  store.Active,
	}, nil
}

// ListStoresUseCase 门店列表查询用例
type ListStoresUseCase struct {
	storeRepo catalog.StoreRepository
}

// NewListStoresUseCase 创建门店列表查询用例
func NewListStoresUseCase(storeRepo catalog.StoreRepository) *ListStoresUseCase {
	return &ListStoresUseCase{storeRepo: storeRepo}
}

// Execute 查询租户的全部门店
func (uc *ListStoresUseCase) Execute(ctx context.Context, tenantID uint) ([]StoreInfo, error) {
	stores, err := uc.storeRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	infos := make([]StoreInfo, len(stores))
	for i, s := range stores {
		infos[i] = StoreInfo{
			ID:      s.ID,
			Code:    s.Code,
			Name:    s.Name,
			Address: s.Address,
			Active:  s.Active,
		}
	}
	return infos, nil
}
