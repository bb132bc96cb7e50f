package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. Application层负责用例编排，协调多个领域服务
// 2. 校验规则(年龄、条款、密码强度、邮箱唯一)全部在领域服务里
type RegisterUseCase struct {
	userService user.Service
	log         *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, log *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		log:         log,
	}
}

// Execute 执行注册
// 返回：UserInfo（应用层DTO，不是领域实体）
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	// 1. 调用领域服务执行注册
	u, err := uc.userService.Register(ctx, user.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		Nickname:    req.Nickname,
		Age:         req.Age,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("用户注册成功", zap.Uint("user_id", u.ID), zap.String("email", u.Email))

	// 2. 领域实体 → 应用层DTO
	info := toUserInfo(u)
	return &info, nil
}

// =========================================
// 应用层DTO（数据传输对象）
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string
	Password    string
	Nickname    string
	Age         int
	AcceptTerms bool
}

// UserInfo 用户信息
// 说明：不返回密码字段
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Age      int    `json:"age"`
	Role     string `json:"role"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Age:      u.Age,
		Role:     string(u.Role),
	}
}
