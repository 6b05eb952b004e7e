package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome of one inbound postback attempt. These values are part of the
// wire contract with partner houses and must stay stable.
const (
	PostbackSuccess      = "SUCCESS"
	PostbackInvalidHouse = "INVALID_HOUSE"
	PostbackInvalidToken = "INVALID_TOKEN"
	PostbackInvalidEvent = "INVALID_EVENT"
	PostbackInvalidSubid = "INVALID_SUBID"
	PostbackDuplicate    = "DUPLICATE"
	PostbackError        = "ERROR"
)

// PostbackAuditEntry records every inbound postback attempt, accepted or
// not, with the raw request data for diagnosis and replay. House slug and
// subid are stored as received and may not resolve to anything.
type PostbackAuditEntry struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	HouseSlug string `gorm:"column:house_slug;index" json:"house_slug"`
	EventKind string `gorm:"column:event_kind" json:"event_kind"`
	Subid     string `gorm:"column:subid" json:"subid"`

	RawQuery  string `gorm:"column:raw_query;type:text" json:"raw_query"`
	ClientIP  string `gorm:"column:client_ip" json:"client_ip"`
	UserAgent string `gorm:"column:user_agent" json:"user_agent"`

	Status     string          `gorm:"column:status;index;not null" json:"status"`
	Commission decimal.Decimal `gorm:"column:commission;type:numeric(14,2);default:0" json:"commission"`
	Detail     string          `gorm:"column:detail;type:text" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (PostbackAuditEntry) TableName() string {
	return "postback_audit_entries"
}
