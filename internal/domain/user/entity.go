package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
// 4. IsAdmin标记管理员，管理员可操作发货、查看全部订单等
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Address   string // 默认收货地址
	Phone     string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码；新用户默认不是管理员
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Patch 个人资料部分更新
// 指针字段区分"未提供"(nil)和"提供了空值":
// Address=""是清空地址的合法请求，nil才表示保持原值
type Patch struct {
	Nickname *string
	Address  *string
	Phone    *string
}

// ApplyPatch 应用部分更新（领域行为）
func (u *User) ApplyPatch(p Patch) {
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	u.UpdatedAt = time.Now()
}

// ChangePassword 更换密码哈希（领域行为）
// 密码校验和加密在Service层完成，此处只负责落实到实体
func (u *User) ChangePassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedAt = time.Now()
}
