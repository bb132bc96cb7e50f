package book

import (
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// BookDTO 图书详情DTO
// 金额序列化为两位小数的字符串
type BookDTO struct {
	ID          uint     `json:"id"`
	ISBN        string   `json:"isbn"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Categories  []string `json:"categories"`
	Publisher   string   `json:"publisher"`
	Year        int      `json:"year"`
	Price       string   `json:"price"`
	Discount    string   `json:"discount"`
	Stock       int      `json:"stock"`
	Active      bool     `json:"active"`
	CoverURL    string   `json:"cover_url"`
	Description string   `json:"description,omitempty"`
	PublisherID uint     `json:"publisher_id"`
	CreatedAt   string   `json:"created_at"`
}

// ToDTO 领域实体 → DTO
func ToDTO(b *book.Book) BookDTO {
	return BookDTO{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Authors:     b.Authors,
		Categories:  b.Categories,
		Publisher:   b.Publisher,
		Year:        b.Year,
		Price:       pricing.Format(b.Price),
		Discount:    pricing.Format(b.Discount),
		Stock:       b.Stock,
		Active:      b.Active,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
