package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户信息
type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`              // 主键
	Username string `gorm:"uniqueIndex;not null" json:"username"` // 用户名
	Email    string `gorm:"uniqueIndex;not null" json:"email"`    // 邮箱
	Password string `gorm:"not null" json:"-"`                 // 密码（bcrypt）
	Nickname string `json:"nickname"`                          // 昵称
	Status   string `gorm:"not null;default:active" json:"status"` // 状态（active/disabled）

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
