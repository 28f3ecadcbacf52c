package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/pkg/logger"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := gormlogger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.L().Info("数据库连接成功",
		"host", cfg.Database.Host,
		"dbname", cfg.Database.DBName,
	)

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用版本化的迁移脚本（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Address   string         `gorm:"size:255;comment:默认收货地址"`
	Phone     string         `gorm:"size:20;comment:电话"`
	IsAdmin   bool           `gorm:"default:false;comment:是否管理员"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. ISBN有唯一索引,防止重复
// 3. PublisherID关联用户表,支持查询某用户发布的所有图书
// 4. 添加复合索引优化列表查询性能
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"` // 搜索索引
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"` // 搜索索引
	Publisher   string         `gorm:"size:100;not null;comment:出版社"`
	Genre       string         `gorm:"index;size:50;comment:分类"`
	Price       int64          `gorm:"index:idx_list;not null;comment:价格(分)"` // 排序索引
	Stock       int            `gorm:"default:0;comment:库存数量"`
	CoverURL    string         `gorm:"size:500;comment:封面图片URL"`
	Description string         `gorm:"type:text;comment:图书描述"`
	IsUpcoming  bool           `gorm:"default:false;comment:是否预告图书"`
	PublisherID uint           `gorm:"index;not null;comment:发布者用户ID"`
	CreatedAt   time.Time      `gorm:"index:idx_list;comment:创建时间"` // 排序索引
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// 设计说明:
//  1. 与OrderItemModel是一对多关系
//  2. OrderNo有唯一索引(业务主键)
//  3. 收货地址、支付凭证作为列内嵌在订单表(值对象与聚合根同生命周期,
//     不单独建表,避免多余的JOIN)
//  4. Paid/Delivered各有独立的时间戳和附属信息列
type OrderModel struct {
	ID      uint   `gorm:"primaryKey"`
	OrderNo string `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID  uint   `gorm:"index;not null;comment:买家用户ID"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联

	ShippingAddress    string `gorm:"size:255;not null;comment:街道地址"`
	ShippingCity       string `gorm:"size:100;not null;comment:城市"`
	ShippingPostalCode string `gorm:"size:20;not null;comment:邮编"`
	ShippingCountry    string `gorm:"size:100;not null;comment:国家"`

	PaymentMethod string `gorm:"size:50;not null;comment:支付方式"`

	ItemsPrice    int64 `gorm:"not null;comment:商品小计(分)"`
	ShippingPrice int64 `gorm:"not null;comment:运费(分)"`
	TaxPrice      int64 `gorm:"not null;comment:税费(分)"`
	TotalPrice    int64 `gorm:"not null;comment:订单总金额(分)"`

	Paid             bool       `gorm:"index;default:false;comment:是否已支付"`
	PaidAt           *time.Time `gorm:"comment:支付时间"`
	PayTransactionID string     `gorm:"size:100;comment:第三方交易号"`
	PayStatus        string     `gorm:"size:50;comment:支付状态"`
	PayTime          string     `gorm:"size:50;comment:第三方支付时间"`
	PayerEmail       string     `gorm:"size:100;comment:付款人邮箱"`

	Delivered   bool       `gorm:"index;default:false;comment:是否已发货"`
	DeliveredAt *time.Time `gorm:"comment:发货时间"`
	TrackingNo  string     `gorm:"size:100;comment:运单号"`

	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 设计说明:
// 1. Title/Price记录下单时的快照
// 2. OrderID外键关联orders表
type OrderItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"index;not null;comment:订单ID"`
	BookID   uint   `gorm:"index;not null;comment:图书ID"`
	Title    string `gorm:"size:200;not null;comment:下单时书名"`
	Quantity int    `gorm:"not null;comment:购买数量"`
	Price    int64  `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
