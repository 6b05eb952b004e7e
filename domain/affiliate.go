package domain

import (
	"time"

	"gorm.io/gorm"
)

type Affiliate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// TrackingCode is the affiliate's username and the join key between
	// inbound postbacks and commission recipients. Immutable.
	TrackingCode string `gorm:"column:tracking_code;unique;not null" json:"tracking_code"`

	Email    string `gorm:"column:email;unique;not null" json:"email"`
	Password string `gorm:"column:password;not null" json:"-"`

	// PostbackURL, when set, receives a JSON copy of every accepted
	// conversion for this affiliate.
	PostbackURL string `gorm:"column:postback_url" json:"postback_url"`

	Role      string `gorm:"column:role;default:affiliate" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}
