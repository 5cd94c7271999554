package models

import "gorm.io/gorm"

// User roles checked by the role middleware. Accounts are managed by the
// external auth service; this table only mirrors what the workflow needs.
const (
	RoleStudent      = "student"
	RoleAdmin        = "admin"
	RolePDEKMember   = "pdek_member"
	RolePDEKChairman = "pdek_chairman"
)

type User struct {
	gorm.Model
	FullName     string `json:"full_name" gorm:"size:150"`
	Phone        string `json:"phone" gorm:"size:15;index"`
	Email        string `json:"email" gorm:"size:100;index"`
	IIN          string `json:"iin" gorm:"size:12"`
	Role         string `json:"role" gorm:"size:20;default:'student'"`
	Organization string `json:"organization" gorm:"size:150"`
	Language     string `json:"language" gorm:"size:2;default:'ru'"` // ru, kz, en
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsDeleted    bool   `gorm:"default:false"`
}
