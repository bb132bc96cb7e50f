package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNo 生成订单号
// 格式:ORD + 下单时间(yyMMddHHmmss) + 8位随机十六进制
// 示例:ORD2610171530229F3A1C0B
//
// 时间前缀让订单号大致有序,随机后缀防止被遍历;
// orders.order_no上有唯一索引兜底
func GenerateOrderNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD" + time.Now().Format("060102150405") + suffix
}
