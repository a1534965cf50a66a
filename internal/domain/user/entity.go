package user

import (
	"time"
)

// Role 用户角色
// 权限模型:
// - attendant(店员): 开单、收银
// - pharmacist(药师): 店员权限 + 调拨发货/入库、预约审批、处方药结算
// - admin(管理员): 全部权限 + 用户/套餐管理
type Role string

const (
	RoleAttendant  Role = "attendant"
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

// IsElevated 是否为高权限角色(药师或管理员)
// 调拨发货/入库、预约审批、盘点调整要求高权限角色
func (r Role) IsElevated() bool {
	return r == RolePharmacist || r == RoleAdmin
}

// IsValid 角色是否合法
func (r Role) IsValid() bool {
	switch r {
	case RoleAttendant, RolePharmacist, RoleAdmin:
		return true
	}
	return false
}

// User 用户实体(聚合根)
// DDD设计说明:
// 1. 密码已加密存储(bcrypt),不应该有GetPassword()等方法暴露明文
// 2. 领域实体不依赖GORM tag(infrastructure层的Repository实现时会处理映射)
// 3. 用户归属一个租户和一个门店;门店归属决定可操作的数据范围
type User struct {
	ID        uint
	TenantID  uint
	StoreID   uint // 所属门店
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码
func NewUser(tenantID, storeID uint, email, hashedPassword, name string, role Role) *User {
	now := time.Now()
	return &User{
		TenantID:  tenantID,
		StoreID:   storeID,
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BelongsToStore 检查用户是否归属指定门店
func (u *User) BelongsToStore(storeID uint) bool {
	return u.StoreID == storeID
}

// UpdateName 更新姓名(领域行为)
func (u *User) UpdateName(name string) {
	u.Name = name
	u.UpdatedAt = time.Now()
}

// ChangeRole 变更角色(领域行为,仅管理员可触发)
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// Deactivate 停用账号
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}
