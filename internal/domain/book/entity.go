package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinPublishYear 出版年份下限
const MinPublishYear = 1700

// Book 图书实体(领域模型)
// 设计说明:
// 1. 这是纯粹的领域模型,不包含任何数据库相关的tag
// 2. 价格、折扣使用decimal精确存储,禁止float64
// 3. Authors/Categories统一为有序字符串列表(至少1项),不再区分"单个值还是列表"
// 4. Stock是旧库存计数器,与库存台账(inventory)保持同步
type Book struct {
	ID          uint
	ISBN        string          // ISBN号(国际标准书号)
	Title       string          // 书名
	Authors     []string        // 作者列表
	Categories  []string        // 分类列表
	Publisher   string          // 出版社
	Year        int             // 出版年份
	Price       decimal.Decimal // 售价
	Discount    decimal.Decimal // 折扣金额
	Stock       int             // 库存计数器(旧字段,随台账同步)
	Active      bool            // 是否在售
	CoverURL    string          // 封面图片URL
	Description string          // 图书描述
	PublisherID uint            // 上架人用户ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attributes 图书可编辑属性
type Attributes struct {
	ISBN        string
	Title       string
	Authors     []string
	Categories  []string
	Publisher   string
	Year        int
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	CoverURL    string
	Description string
}

// NewBook 创建新图书(工厂方法)
// 教学要点:工厂方法保证实体创建即合法
func NewBook(attrs Attributes, publisherID uint, now time.Time) (*Book, error) {
	b := &Book{
		ISBN:        strings.TrimSpace(attrs.ISBN),
		Title:       strings.TrimSpace(attrs.Title),
		Authors:     NormalizeNames(attrs.Authors),
		Categories:  NormalizeNames(attrs.Categories),
		Publisher:   strings.TrimSpace(attrs.Publisher),
		Year:        attrs.Year,
		Price:       attrs.Price,
		Discount:    attrs.Discount,
		Stock:       attrs.Stock,
		Active:      true,
		CoverURL:    attrs.CoverURL,
		Description: attrs.Description,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.Validate(now); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验字段约束
func (b *Book) Validate(now time.Time) error {
	if !isValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}
	if b.Title == "" {
		return ErrInvalidTitle
	}
	if len(b.Authors) == 0 {
		return ErrInvalidAuthors
	}
	if len(b.Categories) == 0 {
		return ErrInvalidCategories
	}
	if b.Year < MinPublishYear || b.Year > now.Year() {
		return ErrInvalidYear
	}
	if b.Price.IsNegative() || !isCents(b.Price) {
		return ErrInvalidPrice
	}
	if b.Discount.IsNegative() || !isCents(b.Discount) {
		return ErrInvalidDiscount
	}
	if b.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// IncrStock 增加库存计数
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存计数
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// Deactivate 下架
func (b *Book) Deactivate() {
	b.Active = false
	b.UpdatedAt = time.Now()
}

// isCents 金额最多两位小数
// 订单/发票列是decimal(20,4),两位小数的单价乘以税率后正好4位,入库不会被四舍五入
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// NormalizeNames 规范化作者/分类列表
// 去除首尾空白、丢弃空串、按首次出现顺序去重
func NormalizeNames(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// isValidISBN 验证ISBN格式
// 去掉连字符和空格后应为10位或13位(ISBN-10末位可以是X)
func isValidISBN(isbn string) bool {
	clean := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if len(clean) != 10 && len(clean) != 13 {
		return false
	}
	for i, r := range clean {
		if r >= '0' && r <= '9' {
			continue
		}
		if len(clean) == 10 && i == 9 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}
