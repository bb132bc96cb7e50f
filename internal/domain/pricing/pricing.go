package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate 固定税率19%（IVA）
// 购物车、订单、发票三处计价都使用这一个常量
var TaxRate = decimal.RequireFromString("0.19")

// Line 计价行
// 教学要点:
// 1. UnitPrice是加入时的价格快照,不是图书的实时价格
// 2. 金额统一使用decimal,禁止float64(避免反复重算产生的精度漂移)
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal 行小计 = 单价 × 数量
func (l Line) Subtotal() decimal.Decimal {
	return LineSubtotal(l.UnitPrice, l.Quantity)
}

// Totals 汇总金额
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineSubtotal 计算行小计
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// LineTax 计算行税额(发票明细使用)
func LineTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// Calculate 计算一组计价行的汇总金额
//
//	subtotal = Σ 行小计
//	tax      = subtotal × TaxRate
//	total    = subtotal − discount + tax
//
// 纯函数,不缓存:明细变化后调用方必须重新调用
func Calculate(lines []Line, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

// Format 金额转字符串,至少两位小数,超出部分原样保留
//
//	20      → "20.00"
//	3.8000  → "3.80"
//	3.81045 → "3.81045"
//
// 不做四舍五入:序列化前后必须是同一个数
func Format(d decimal.Decimal) string {
	return FormatMin(d, 2)
}

// FormatMin 同Format,最少保留minPlaces位小数(发票行税额用4位)
func FormatMin(d decimal.Decimal, minPlaces int32) string {
	places := minPlaces
	if s := d.String(); strings.Contains(s, ".") {
		if n := int32(len(s) - strings.IndexByte(s, '.') - 1); n > places {
			places = n
		}
	}
	return d.StringFixed(places)
}
