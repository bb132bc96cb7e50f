package book

import (
	"context"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
)

// ListBooksUseCase 图书查询用例
// 设计说明:
// 1. 支持分页、搜索、排序
// 2. 列表查询不返回description字段(减少数据传输量)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(搜索标题、出版社、ISBN)
	SortBy     string // 排序方式(price_asc, price_desc, created_at_desc)
	ActiveOnly bool   // 只看在售
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List     []BookDTO
	Total    int64
	Page     int
	PageSize int
}

// Execute 执行列表查询用例
// 学习要点:
// 1. 参数默认值处理(page默认1, pageSize默认20)
// 2. 参数范围限制(pageSize最大100)
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	// 1. 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	// 2. 调用领域服务查询
	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    req.Keyword,
		SortBy:     req.SortBy,
		ActiveOnly: req.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}

	// 3. 转换为DTO
	list := make([]BookDTO, len(books))
	for i, b := range books {
		list[i] = ToDTO(b)
		list[i].Description = ""
	}

	return &ListBooksResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// Get 查询图书详情
func (uc *ListBooksUseCase) Get(ctx context.Context, id uint) (*BookDTO, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(b)
	return &dto, nil
}
