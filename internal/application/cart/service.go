// Package cart 购物车用例
package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// Service 购物车用例
//
// 教学要点:
// 1. 每个用户最多一个ACTIVE购物车,数据库唯一索引兜底
// 2. 修改购物车时锁住购物车行,同一用户的并发加购按顺序执行
// 3. 单价在加入时从图书快照,之后图书调价不影响已加入的行
type Service struct {
	cartRepo  cart.Repository
	bookRepo  book.Repository
	invRepo   inventory.Repository
	userRepo  user.Repository
	txManager *mysql.TxManager
	log       *zap.Logger
}

// NewService 创建购物车用例
func NewService(
	cartRepo cart.Repository,
	bookRepo book.Repository,
	invRepo inventory.Repository,
	userRepo user.Repository,
	txManager *mysql.TxManager,
	log *zap.Logger,
) *Service {
	return &Service{
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		invRepo:   invRepo,
		userRepo:  userRepo,
		txManager: txManager,
		log:       log,
	}
}

// GetOrCreate 返回用户的ACTIVE购物车,没有则新建
func (s *Service) GetOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	var result *cart.Cart
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := s.lockOrCreate(txCtx, userID)
		result = c
		return err
	})
	return result, err
}

// Get 查询用户的ACTIVE购物车
func (s *Service) Get(ctx context.Context, userID uint) (*cart.Cart, error) {
	return s.cartRepo.FindActiveByUserID(ctx, userID)
}

// AddItem 加入图书
// 业务规则:
// 1. 图书存在且在售
// 2. 合并后的数量不能超过库存台账的可用数量
// 3. 单价取图书当前售价
func (s *Service) AddItem(ctx context.Context, userID, bookID uint, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var result *cart.Cart
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := s.lockOrCreate(txCtx, userID)
		if err != nil {
			return err
		}

		b, err := s.bookRepo.FindByID(txCtx, bookID)
		if err != nil {
			return err
		}
		if !b.Active {
			return book.ErrBookInactive
		}

		inv, err := s.invRepo.FindByBookID(txCtx, bookID)
		if err != nil {
			if errors.Is(err, inventory.ErrInventoryNotFound) {
				return inventory.InsufficientStock(bookID, 0, quantity)
			}
			return err
		}
		merged := c.QuantityOf(bookID) + quantity
		if inv.Available < merged {
			return inventory.InsufficientStock(bookID, inv.Available, merged)
		}

		if err := c.AddItem(bookID, quantity, b.Price); err != nil {
			return err
		}
		if err := s.cartRepo.Save(txCtx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}

// RemoveItem 移除某本书
func (s *Service) RemoveItem(ctx context.Context, userID, bookID uint) (*cart.Cart, error) {
	return s.modify(ctx, userID, func(c *cart.Cart) error {
		return c.RemoveItem(bookID)
	})
}

// Abandon 放弃购物车(ACTIVE → ABANDONED)
func (s *Service) Abandon(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, err := s.modify(ctx, userID, func(c *cart.Cart) error {
		return c.Abandon()
	})
	if err == nil {
		s.log.Info("购物车已放弃", zap.Uint("user_id", userID), zap.Uint("cart_id", c.ID))
	}
	return c, err
}

func (s *Service) modify(ctx context.Context, userID uint, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	var result *cart.Cart
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		c, err := s.cartRepo.LockActiveByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := s.cartRepo.Save(txCtx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}

// lockOrCreate 事务内获取ACTIVE购物车,没有则创建
// 并发创建时唯一索引冲突,重新读取对方创建的购物车
func (s *Service) lockOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, err := s.cartRepo.LockActiveByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, cart.ErrCartNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	c = cart.NewCart(userID)
	if err := s.cartRepo.Create(ctx, c); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return s.cartRepo.LockActiveByUserID(ctx, userID)
		}
		return nil, err
	}
	return c, nil
}
