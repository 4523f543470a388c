package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName     string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber   string     `gorm:"type:varchar(30)" json:"phone_number"`
	PasswordHash  string     `gorm:"column:password_hash;not null" json:"-"`
	Role          Role       `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	TokenVersion  int        `gorm:"not null;default:0" json:"token_version"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	EmailVerified bool       `gorm:"not null;default:false" json:"email_verified"`
	PhoneVerified bool       `gorm:"not null;default:false" json:"phone_verified"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
