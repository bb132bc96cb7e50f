package user

import (
	"context"

	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
)

// ProfileUseCase 个人资料
type ProfileUseCase struct {
	userService user.Service
}

// NewProfileUseCase 创建个人资料用例
func NewProfileUseCase(userService user.Service) *ProfileUseCase {
	return &ProfileUseCase{userService: userService}
}

// Get 查询当前用户
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// Update 修改邮箱或昵称,nil表示不修改
func (uc *ProfileUseCase) Update(ctx context.Context, userID uint, params user.UpdateProfileParams) (*UserInfo, error) {
	u, err := uc.userService.UpdateProfile(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
