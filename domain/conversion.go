package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ConversionEvent is one accepted postback. Immutable once written.
type ConversionEvent struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AffiliateID uint   `gorm:"column:affiliate_id;index;not null" json:"affiliate_id"`
	HouseID     uint   `gorm:"column:house_id;index;not null" json:"house_id"`
	EventKind   string `gorm:"column:event_kind;not null" json:"event_kind"`

	Amount     decimal.NullDecimal `gorm:"column:amount;type:numeric(14,2)" json:"amount"`
	CustomerID string              `gorm:"column:customer_id" json:"customer_id"`

	// Extra keeps any partner-specific parameters that survived
	// normalization, as an opaque bag.
	Extra datatypes.JSONMap `gorm:"column:extra" json:"extra"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ConversionEvent) TableName() string {
	return "conversion_events"
}

// CommissionRecord statuses, consumed by the payout process.
const (
	CommissionEarned = "EARNED"
	CommissionPaid   = "PAID"
)

// CommissionRecord is the commission derived from one ConversionEvent.
// Written only when the computed value is greater than zero.
type CommissionRecord struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	ConversionEventID uint `gorm:"column:conversion_event_id;uniqueIndex;not null" json:"conversion_event_id"`
	AffiliateID       uint `gorm:"column:affiliate_id;index;not null" json:"affiliate_id"`
	HouseID           uint `gorm:"column:house_id;index;not null" json:"house_id"`

	Type  string          `gorm:"column:type;not null" json:"type"`
	Value decimal.Decimal `gorm:"column:value;type:numeric(14,2);not null" json:"value"`

	Status    string     `gorm:"column:status;default:EARNED" json:"status"`
	PaidAt    *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (CommissionRecord) TableName() string {
	return "commission_records"
}
