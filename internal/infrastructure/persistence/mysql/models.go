package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID              uint           `gorm:"primaryKey"`
	Email           string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password        string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname        string         `gorm:"size:50;not null;comment:昵称"`
	Age             int            `gorm:"not null;default:0;comment:年龄"`
	Role            string         `gorm:"size:20;not null;default:customer;comment:角色(customer/admin)"`
	AcceptedTermsAt *time.Time     `gorm:"comment:同意条款时间"`
	CreatedAt       time.Time      `gorm:"comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 金额使用decimal(20,4)存储,领域层用shopspring/decimal,全程没有浮点数
// 2. 作者/分类是有序字符串列表,用json序列化到一个字段
// 3. ISBN有唯一索引,防止重复
// 4. Stock是旧的库存计数,与inventories表同步维护
type BookModel struct {
	ID          uint            `gorm:"primaryKey"`
	ISBN        string          `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string          `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Authors     []string        `gorm:"serializer:json;type:text;comment:作者列表"`
	Categories  []string        `gorm:"serializer:json;type:text;comment:分类列表"`
	Publisher   string          `gorm:"size:100;comment:出版社"`
	Year        int             `gorm:"comment:出版年份"`
	Price       decimal.Decimal `gorm:"index:idx_list;type:decimal(20,4);not null;comment:价格"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0;comment:折扣"`
	Stock       int             `gorm:"default:0;comment:库存数量"`
	Active      bool            `gorm:"not null;comment:是否上架"`
	CoverURL    string          `gorm:"size:500;comment:封面图片URL"`
	Description string          `gorm:"type:text;comment:图书描述"`
	PublisherID uint            `gorm:"index;comment:发布者用户ID"`
	CreatedAt   time.Time       `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt   time.Time       `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt  `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// InventoryModel 库存台账
// 教学要点:
// 1. book_id唯一索引,一本书只有一条台账
// 2. available/reserved有CHECK约束,数据库层面兜底不为负
// 3. state是冗余字段,方便按状态查询低库存
type InventoryModel struct {
	ID              uint       `gorm:"primaryKey"`
	BookID          uint       `gorm:"uniqueIndex;not null;comment:图书ID"`
	Available       int        `gorm:"not null;default:0;check:available >= 0;comment:可售数量"`
	Reserved        int        `gorm:"not null;default:0;check:reserved >= 0;comment:预留数量"`
	Threshold       int        `gorm:"not null;comment:低库存阈值"`
	State           string     `gorm:"index;size:20;not null;comment:状态(ACTIVE/LOW_STOCK/OUT_OF_STOCK)"`
	Location        string     `gorm:"size:100;comment:仓位"`
	Notes           string     `gorm:"size:500;comment:备注"`
	LastRestockLot  string     `gorm:"size:64;comment:最近补货批次"`
	LastRestockedAt *time.Time `gorm:"comment:最近补货时间"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (InventoryModel) TableName() string {
	return "inventories"
}

// InventoryLogModel 库存变动流水(只追加)
type InventoryLogModel struct {
	ID              uint   `gorm:"primaryKey"`
	BookID          uint   `gorm:"index;not null"`
	ChangeType      string `gorm:"size:20;not null"`
	Quantity        int    `gorm:"not null"`
	BeforeAvailable int
	AfterAvailable  int
	BeforeReserved  int
	AfterReserved   int
	OrderID         *uint  `gorm:"index"`
	Lot             string `gorm:"size:64"`
	Remark          string `gorm:"size:255"`
	CreatedAt       time.Time
}

func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

// CartModel 购物车
// 教学要点:
// ActiveOwner只在ACTIVE状态下等于user_id,其余状态为NULL。
// 唯一索引允许多个NULL,于是数据库保证每个用户最多一个ACTIVE购物车。
type CartModel struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"index;not null;comment:用户ID"`
	ActiveOwner *uint           `gorm:"uniqueIndex;comment:ACTIVE时等于user_id"`
	Status      string          `gorm:"size:20;not null;comment:状态(ACTIVE/CONVERTED/ABANDONED)"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Tax         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Items       []CartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel 购物车明细
type CartItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	CartID    uint            `gorm:"index;not null"`
	BookID    uint            `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;comment:加入时单价"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引)
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID          uint             `gorm:"index;not null;comment:买家用户ID"`
	CartID          *uint            `gorm:"index;comment:来源购物车"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	Discount        decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	Tax             decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	Total           decimal.Decimal  `gorm:"type:decimal(20,4);not null;comment:订单总金额"`
	Status          int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待支付2已支付3已发货4已送达5已取消)"`
	PaymentMethod   string           `gorm:"size:20;comment:支付方式"`
	ShippingAddress string           `gorm:"size:255;comment:收货地址"`
	Notes           string           `gorm:"size:500"`
	TrackingNumber  string           `gorm:"size:64"`
	InvoiceNumber   string           `gorm:"size:32"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 教学要点:
// 1. 记录下单时的价格快照(UnitPrice字段)
// 2. OrderID外键关联orders表
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null;comment:订单ID"`
	BookID    uint            `gorm:"index;not null;comment:图书ID"`
	Quantity  int             `gorm:"not null;comment:购买数量"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;comment:下单时单价"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// InvoiceModel 发票
// order_id唯一索引保证一个订单最多一张发票
type InvoiceModel struct {
	ID             uint               `gorm:"primaryKey"`
	InvoiceNo      string             `gorm:"uniqueIndex;size:32;not null"`
	OrderID        uint               `gorm:"uniqueIndex;not null"`
	UserID         uint               `gorm:"index;not null"`
	Status         string             `gorm:"size:20;not null;comment:状态(EMITIDA/PAGADA/ANULADA)"`
	Currency       string             `gorm:"size:3;not null"`
	FiscalData     string             `gorm:"type:text"`
	PaymentMethod  string             `gorm:"size:20"`
	BillingAddress string             `gorm:"size:255;comment:账单地址"`
	Notes          string             `gorm:"size:500"`
	Subtotal       decimal.Decimal    `gorm:"type:decimal(20,4);not null"`
	Tax            decimal.Decimal    `gorm:"type:decimal(20,4);not null"`
	Total          decimal.Decimal    `gorm:"type:decimal(20,4);not null"`
	Items          []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
	IssuedAt       time.Time
	PaidAt         *time.Time
	VoidedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel 发票明细
type InvoiceItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	InvoiceID uint            `gorm:"index;not null"`
	BookID    uint            `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	LineTax   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}
