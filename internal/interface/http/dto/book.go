package dto

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// StringList 作者/分类列表
// 兼容两种写法:"a, b" 或 ["a", "b"],逗号分隔的字符串会被拆开
type StringList []string

// UnmarshalJSON 实现json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	parts := strings.Split(single, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*l = parts
	return nil
}

// PublishBookRequest HTTP上架请求
// 金额用decimal接收,JSON数字和字符串都可以
type PublishBookRequest struct {
	ISBN        string          `json:"isbn" binding:"required" example:"9780307474728"`
	Title       string          `json:"title" binding:"required,max=200" example:"Cien años de soledad"`
	Authors     StringList      `json:"authors" binding:"required" swaggertype:"array,string"`
	Categories  StringList      `json:"categories" binding:"required" swaggertype:"array,string"`
	Publisher   string          `json:"publisher" binding:"max=100" example:"Sudamericana"`
	Year        int             `json:"year" binding:"required" example:"1967"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"45.50"`
	Discount    decimal.Decimal `json:"discount" swaggertype:"string" example:"0"`
	Stock       int             `json:"stock" binding:"min=0" example:"10"`
	CoverURL    string          `json:"cover_url" binding:"omitempty,url,max=500"`
	Description string          `json:"description" binding:"max=5000"`
}

// UpdateBookRequest 修改图书,省略的字段不修改
type UpdateBookRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=200"`
	Authors     StringList       `json:"authors" swaggertype:"array,string"`
	Categories  StringList       `json:"categories" swaggertype:"array,string"`
	Publisher   *string          `json:"publisher" binding:"omitempty,max=100"`
	Year        *int             `json:"year"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Discount    *decimal.Decimal `json:"discount" swaggertype:"string"`
	Active      *bool            `json:"active"`
	CoverURL    *string          `json:"cover_url" binding:"omitempty,url,max=500"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword    string `form:"keyword" binding:"omitempty,max=100"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc"`
	ActiveOnly bool   `form:"active_only"`
}
