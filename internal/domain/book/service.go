package book

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 封装图书相关的业务规则(ISBN唯一、年份区间、金额非负)
// 2. 被应用层(UseCase)调用
type Service interface {
	// PublishBook 上架图书
	PublishBook(ctx context.Context, attrs Attributes, publisherID uint) (*Book, error)

	// UpdateBook 更新图书,nil字段保持不变
	UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error)

	// GetBookByID 查询图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id uint) error

	// ListBooks 查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// UpdateParams 图书更新参数(指针表示可选)
type UpdateParams struct {
	Title       *string
	Authors     []string
	Categories  []string
	Publisher   *string
	Year        *int
	Price       *decimal.Decimal
	Discount    *decimal.Decimal
	Active      *bool
	CoverURL    *string
	Description *string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// PublishBook 上架图书
// 业务规则:
// 1. 字段校验(见Book.Validate)
// 2. ISBN唯一
func (s *service) PublishBook(ctx context.Context, attrs Attributes, publisherID uint) (*Book, error) {
	b, err := NewBook(attrs, publisherID, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByISBN(ctx, b.ISBN)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateBook(ctx context.Context, id uint, params UpdateParams) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		b.Title = *params.Title
	}
	if params.Authors != nil {
		b.Authors = NormalizeNames(params.Authors)
	}
	if params.Categories != nil {
		b.Categories = NormalizeNames(params.Categories)
	}
	if params.Publisher != nil {
		b.Publisher = *params.Publisher
	}
	if params.Year != nil {
		b.Year = *params.Year
	}
	if params.Price != nil {
		b.Price = *params.Price
	}
	if params.Discount != nil {
		b.Discount = *params.Discount
	}
	if params.Active != nil {
		b.Active = *params.Active
	}
	if params.CoverURL != nil {
		b.CoverURL = *params.CoverURL
	}
	if params.Description != nil {
		b.Description = *params.Description
	}

	now := s.now()
	if err := b.Validate(now); err != nil {
		return nil, err
	}
	b.UpdatedAt = now

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}
