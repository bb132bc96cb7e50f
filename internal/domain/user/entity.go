package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "customer" // 普通顾客
	RoleAdmin    Role = "admin"    // 管理员(库存、上架、订单状态维护)
)

// MinAge 注册最低年龄
const MinAge = 18

// User 用户实体(领域模型)
// 设计说明:
// 1. 这是纯粹的领域模型,不包含任何数据库相关的tag
// 2. Password存储bcrypt哈希值,永远不保存明文
// 3. AcceptedTermsAt记录同意服务条款的时间(注册必填)
type User struct {
	ID              uint
	Email           string
	Password        string // bcrypt哈希值
	Nickname        string
	Age             int
	Role            Role
	AcceptedTermsAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUser 创建新用户(工厂方法)
func NewUser(email, hashedPassword, nickname string, age int) *User {
	now := time.Now()
	return &User{
		Email:           email,
		Password:        hashedPassword,
		Nickname:        nickname,
		Age:             age,
		Role:            RoleCustomer,
		AcceptedTermsAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}

// UpdateEmail 更新邮箱(唯一性由Service校验)
func (u *User) UpdateEmail(email string) {
	u.Email = email
	u.UpdatedAt = time.Now()
}
