package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	UserName  string    `gorm:"size:255;not null;uniqueIndex;comment:用户名" json:"user_name"`
	Password  string    `gorm:"size:255;not null;comment:密码" json:"-"`
	UserRole  string    `gorm:"size:32;not null;default:'user';comment:用户角色" json:"user_role"`
	IsDelete  int64     `gorm:"not null;default:0;comment:删除标识" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:注册时间" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.UserRole == RoleAdmin
}
