package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
)

// PublishBookUseCase 图书上架与维护用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 上架不自动建库存台账,台账由库存接口单独创建
type PublishBookUseCase struct {
	bookService book.Service
	log         *zap.Logger
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service, log *zap.Logger) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
		log:         log,
	}
}

// Execute 执行上架用例
// 学习要点:
// 1. 应用层不直接操作Repository,通过领域服务间接操作
// 2. 业务规则校验由领域服务负责(ISBN格式、年份区间、金额非负、ISBN重复)
func (uc *PublishBookUseCase) Execute(ctx context.Context, attrs book.Attributes, publisherID uint) (*BookDTO, error) {
	b, err := uc.bookService.PublishBook(ctx, attrs, publisherID)
	if err != nil {
		return nil, err
	}

	uc.log.Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("isbn", b.ISBN))
	dto := ToDTO(b)
	return &dto, nil
}

// Update 修改图书,nil字段保持不变
// 改价不影响已加入购物车的明细和已创建的订单(二者都保存了价格快照)
func (uc *PublishBookUseCase) Update(ctx context.Context, id uint, params book.UpdateParams) (*BookDTO, error) {
	b, err := uc.bookService.UpdateBook(ctx, id, params)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(b)
	return &dto, nil
}
