package user

import (
	"context"

	"github.com/xiebiao/pharmacy/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 业务规则:
// 1. 仅管理员可以为本租户创建用户(角色校验在HTTP中间件)
// 2. 新用户归属创建时指定的门店,门店归属决定可操作数据范围
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// RegisterRequest 注册请求DTO
type RegisterRequest struct {
	TenantID uint   // 租户ID(从管理员JWT提取,不信任前端)
	StoreID  uint   // 新用户归属门店
	Email    string
	Password string
	Name     string
	Role     string // attendant | pharmacist | admin
}

// RegisterResponse 注册响应DTO(不含密码字段)
type RegisterResponse struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	StoreID uint   `json:"store_id"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.TenantID, req.StoreID,
		req.Email, req.Password, req.Name, user.Role(req.Role))
	if err != nil {
		return nil, err
	}

	// 领域实体 → 应用层DTO,领域模型变更不影响API契约
	return &RegisterResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    string(u.Role),
		StoreID: u.StoreID,
	}, nil
}
