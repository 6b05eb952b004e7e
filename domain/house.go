package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Commission models a partner house can be configured with.
const (
	ModelCPA      = "CPA"
	ModelRevShare = "REVSHARE"
	ModelHybrid   = "HYBRID"
)

// Commission types actually applied to a conversion.
const (
	CommissionCPA      = "CPA"
	CommissionRevShare = "REVSHARE"
)

type EventKind string

const (
	EventClick            EventKind = "click"
	EventRegistration     EventKind = "registration"
	EventFirstDeposit     EventKind = "first_deposit"
	EventDeposit          EventKind = "deposit"
	EventRecurringDeposit EventKind = "recurring_deposit"
	EventProfit           EventKind = "profit"
)

var knownEventKinds = map[EventKind]bool{
	EventClick:            true,
	EventRegistration:     true,
	EventFirstDeposit:     true,
	EventDeposit:          true,
	EventRecurringDeposit: true,
	EventProfit:           true,
}

func ValidEventKind(kind EventKind) bool {
	return knownEventKinds[kind]
}

// TrackingCodePlaceholder is substituted with the affiliate's tracking code
// when building the outbound redirect link for a house.
const TrackingCodePlaceholder = "{subid}"

type PartnerHouse struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Slug        string `gorm:"column:slug;unique;not null" json:"slug"`
	RedirectURL string `gorm:"column:redirect_url;not null" json:"redirect_url"`

	CommissionModel string          `gorm:"column:commission_model;not null" json:"commission_model"`
	CPAValue        decimal.Decimal `gorm:"column:cpa_value;type:numeric(14,2);default:0" json:"cpa_value"`
	RevSharePercent decimal.Decimal `gorm:"column:revshare_percent;type:numeric(6,2);default:0" json:"revshare_percent"`

	// SecurityToken authenticates inbound postbacks. Generated at creation,
	// never editable afterwards.
	SecurityToken string `gorm:"column:security_token;unique;not null" json:"-"`

	EnabledEvents datatypes.JSONSlice[string]           `gorm:"column:enabled_events" json:"enabled_events"`
	ParamMapping  datatypes.JSONType[map[string]string] `gorm:"column:param_mapping" json:"param_mapping"`

	Active    bool `gorm:"column:active;default:true" json:"active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PartnerHouse) TableName() string {
	return "partner_houses"
}

func (h PartnerHouse) EventEnabled(kind EventKind) bool {
	for _, e := range h.EnabledEvents {
		if EventKind(e) == kind {
			return true
		}
	}
	return false
}

// TrackingURL builds the outbound redirect link for one affiliate.
func (h PartnerHouse) TrackingURL(trackingCode string) string {
	return strings.ReplaceAll(h.RedirectURL, TrackingCodePlaceholder, trackingCode)
}

// CanonicalParam resolves a house-specific query parameter name to its
// canonical name (subid, amount, customer_id). Unmapped names pass through.
func (h PartnerHouse) CanonicalParam(name string) string {
	if canonical, ok := h.ParamMapping.Data()[name]; ok {
		return canonical
	}
	return name
}
