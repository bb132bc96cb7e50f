package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
)

// ManageOrderUseCase 后台修改/删除订单(管理员)
type ManageOrderUseCase struct {
	orderRepo order.Repository
	txManager *mysql.TxManager
	cache     Cache
	log       *zap.Logger
}

// NewManageOrderUseCase 创建订单管理用例
func NewManageOrderUseCase(orderRepo order.Repository, txManager *mysql.TxManager, cache Cache, log *zap.Logger) *ManageOrderUseCase {
	if cache == nil {
		cache = NopCache{}
	}
	return &ManageOrderUseCase{orderRepo: orderRepo, txManager: txManager, cache: cache, log: log}
}

// Update 修改订单头字段,明细和金额不可修改
// 已发货/已送达的订单不能改成已取消
func (uc *ManageOrderUseCase) Update(ctx context.Context, orderID uint, params order.UpdateParams) (*order.Order, error) {
	var updated *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := o.ApplyUpdate(params); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	evict(ctx, uc.cache, orderID, uc.log)
	uc.log.Info("订单已修改", zap.Uint("order_id", orderID), zap.String("status", updated.Status.String()))
	return updated, nil
}

// Delete 删除订单
// 已发货/已送达的订单不能删除;删除不回补库存
func (uc *ManageOrderUseCase) Delete(ctx context.Context, orderID uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := o.CanDelete(); err != nil {
			return err
		}
		return uc.orderRepo.Delete(txCtx, orderID)
	})
	if err != nil {
		return err
	}

	evict(ctx, uc.cache, orderID, uc.log)
	uc.log.Info("订单已删除", zap.Uint("order_id", orderID))
	return nil
}
