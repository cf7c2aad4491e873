package models

import (
	"time"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAgent = "AGENT"
	RoleAdmin = "ADMIN"
)

// User activity statuses
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusBlocked  = "BLOCKED"
)

type User struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"not null" json:"name"`
	Email           string `gorm:"uniqueIndex;not null" json:"email"`
	Phone           string `gorm:"uniqueIndex;not null" json:"phone"`
	Password        string `gorm:"not null" json:"-"`
	Address         string `json:"address"`
	NID             int64  `gorm:"column:nid;uniqueIndex" json:"nid"`
	Role            string `gorm:"default:'USER'" json:"role"`
	IsActive        string `gorm:"default:'ACTIVE'" json:"isActive"`
	IsAgentApproved bool   `gorm:"default:false" json:"isAgentApproved"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) IsBlocked() bool {
	return u.IsActive == StatusBlocked
}
