package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// bcryptCost 密码哈希成本(2^12次迭代,约250ms)
const bcryptCost = 12

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// Service 用户领域服务接口
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, params RegisterParams) (*User, error)

	// Login 用户登录(验证邮箱和密码)
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码是否正确
	ValidatePassword(hashedPassword, plainPassword string) error

	// UpdateProfile 更新个人资料,邮箱不能与他人重复
	UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*User, error)

	// GetUser 用户查询(下单前校验用户存在)
	GetUser(ctx context.Context, id uint) (*User, error)
}

// RegisterParams 注册参数
type RegisterParams struct {
	Email       string
	Password    string
	Nickname    string
	Age         int
	AcceptTerms bool
}

// UpdateProfileParams 资料更新参数(nil表示不修改)
type UpdateProfileParams struct {
	Email    *string
	Nickname *string
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcryptCost}
}

// Register 用户注册
// 业务规则:
// 1. 邮箱格式正确且唯一(重复返回Conflict)
// 2. 密码强度:8-20位,包含字母和数字
// 3. 昵称长度:2-50个字符
// 4. 年满18岁且同意服务条款
func (s *service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePasswordStrength(params.Password); err != nil {
		return nil, err
	}

	if n := len([]rune(params.Nickname)); n < 2 || n > 50 {
		return nil, ErrInvalidName
	}

	if params.Age < MinAge {
		return nil, ErrUnderage
	}

	if !params.AcceptTerms {
		return nil, ErrTermsRequired
	}

	// 提前检查邮箱,避免无谓的bcrypt计算(唯一索引仍是最终保障)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailDuplicate
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(email, string(hashed), params.Nickname, params.Age)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidatePassword 验证密码
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, id uint, params UpdateProfileParams) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*params.Email))
		if !emailPattern.MatchString(email) {
			return nil, ErrInvalidEmail
		}
		if email != u.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			if err == nil && other.ID != u.ID {
				return nil, ErrEmailDuplicate
			}
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			u.UpdateEmail(email)
		}
	}

	if params.Nickname != nil {
		if n := len([]rune(*params.Nickname)); n < 2 || n > 50 {
			return nil, ErrInvalidName
		}
		u.UpdateNickname(*params.Nickname)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// validatePasswordStrength 验证密码强度
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
