//go:build !integration

package postback

import (
	"context"
	"errors"
	"myBetPartners/domain"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type fakeRegistry struct {
	houses map[string]domain.PartnerHouse
}

func (f *fakeRegistry) LookupBySlug(_ context.Context, slug string) (domain.PartnerHouse, error) {
	house, ok := f.houses[slug]
	if !ok {
		return domain.PartnerHouse{}, domain.ErrHouseNotFound
	}
	return house, nil
}

type fakeResolver struct {
	affiliates map[string]domain.Affiliate
}

func (f *fakeResolver) ResolveByTrackingCode(_ context.Context, code string) (domain.Affiliate, error) {
	affiliate, ok := f.affiliates[code]
	if !ok {
		return domain.Affiliate{}, domain.ErrAffiliateNotFound
	}
	return affiliate, nil
}

type fakeLedger struct {
	events      []domain.ConversionEvent
	commissions []domain.CommissionRecord
	audits      []domain.PostbackAuditEntry
	duplicate   bool
	failWrite   bool
}

func (f *fakeLedger) RecordConversion(_ context.Context, event *domain.ConversionEvent, commission *domain.CommissionRecord, audit *domain.PostbackAuditEntry) error {
	if f.failWrite {
		return errors.New("connection refused")
	}

	f.events = append(f.events, *event)
	if commission != nil {
		f.commissions = append(f.commissions, *commission)
	}
	f.audits = append(f.audits, *audit)

	return nil
}

func (f *fakeLedger) HasRecentDuplicate(_ context.Context, _ uint, _, _ string, _ decimal.NullDecimal, _ time.Duration) (bool, error) {
	return f.duplicate, nil
}

type fakeAudit struct {
	entries []domain.PostbackAuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry *domain.PostbackAuditEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func testHouse() domain.PartnerHouse {
	return domain.PartnerHouse{
		ID:              1,
		Name:            "Bet365",
		Slug:            "bet365",
		CommissionModel: domain.ModelCPA,
		CPAValue:        decimal.RequireFromString("50.00"),
		SecurityToken:   "secret-token",
		EnabledEvents:   datatypes.NewJSONSlice([]string{"registration", "deposit", "click"}),
		Active:          true,
	}
}

func newTestService(houses map[string]domain.PartnerHouse, ledger *fakeLedger, audit *fakeAudit) *postbackService {
	registry := &fakeRegistry{houses: houses}
	resolver := &fakeResolver{affiliates: map[string]domain.Affiliate{
		"joao123": {ID: 7, TrackingCode: "joao123"},
	}}

	return NewPostbackService(registry, resolver, ledger, audit, nil, Options{})
}

func request(slug, event, token string, query string) Request {
	params, _ := url.ParseQuery(query)

	return Request{
		HouseSlug: slug,
		EventKind: event,
		Token:     token,
		Params:    params,
		RawQuery:  query,
		ClientIP:  "203.0.113.9",
		UserAgent: "partner-bot/1.0",
	}
}

func TestIngestCPARegistration(t *testing.T) {
	ledger := &fakeLedger{}
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, ledger, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackSuccess || result.HTTPStatus != http.StatusOK {
		t.Fatalf("result = %s/%d, want SUCCESS/200", result.Status, result.HTTPStatus)
	}
	if result.Commission.StringFixed(2) != "50.00" || result.CommissionType != domain.CommissionCPA {
		t.Errorf("commission = %s %s, want 50.00 CPA", result.Commission.StringFixed(2), result.CommissionType)
	}
	if result.Affiliate != "joao123" || result.House != "bet365" {
		t.Errorf("identity = %s/%s", result.Affiliate, result.House)
	}

	if len(ledger.events) != 1 || len(ledger.commissions) != 1 {
		t.Fatalf("ledger writes = %d events, %d commissions", len(ledger.events), len(ledger.commissions))
	}
	if ledger.events[0].AffiliateID != 7 || ledger.events[0].HouseID != 1 {
		t.Errorf("event keys = %+v", ledger.events[0])
	}
	if len(ledger.audits) != 1 || ledger.audits[0].Status != domain.PostbackSuccess {
		t.Fatalf("success audit row missing: %+v", ledger.audits)
	}
	if ledger.audits[0].Commission.StringFixed(2) != "50.00" {
		t.Errorf("audit commission = %s", ledger.audits[0].Commission.StringFixed(2))
	}
	if len(audit.entries) != 0 {
		t.Errorf("no standalone audit rows expected on success, got %d", len(audit.entries))
	}
}

func TestIngestRevShareDeposit(t *testing.T) {
	house := testHouse()
	house.Slug = "brazino"
	house.CommissionModel = domain.ModelRevShare
	house.RevSharePercent = decimal.RequireFromString("20")

	ledger := &fakeLedger{}
	s := newTestService(map[string]domain.PartnerHouse{"brazino": house}, ledger, &fakeAudit{})

	result := s.Ingest(context.Background(), request("brazino", "deposit", "secret-token", "subid=joao123&amount=250.00"))

	if result.Commission.StringFixed(2) != "50.00" || result.CommissionType != domain.CommissionRevShare {
		t.Fatalf("commission = %s %s, want 50.00 REVSHARE", result.Commission.StringFixed(2), result.CommissionType)
	}
	if !ledger.events[0].Amount.Valid || ledger.events[0].Amount.Decimal.StringFixed(2) != "250.00" {
		t.Errorf("event amount = %+v", ledger.events[0].Amount)
	}
}

func TestIngestDepositWithoutAmountStillRecorded(t *testing.T) {
	house := testHouse()
	house.CommissionModel = domain.ModelRevShare
	house.RevSharePercent = decimal.RequireFromString("20")

	ledger := &fakeLedger{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": house}, ledger, &fakeAudit{})

	result := s.Ingest(context.Background(), request("bet365", "deposit", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackSuccess {
		t.Fatalf("status = %s, want SUCCESS", result.Status)
	}
	if !result.Commission.IsZero() {
		t.Errorf("commission = %s, want 0", result.Commission.StringFixed(2))
	}
	if len(ledger.events) != 1 {
		t.Errorf("conversion must still be recorded, events = %d", len(ledger.events))
	}
	if len(ledger.commissions) != 0 {
		t.Errorf("zero commission must not produce a record, got %d", len(ledger.commissions))
	}
}

func TestIngestUnknownHouse(t *testing.T) {
	ledger := &fakeLedger{}
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{}, ledger, audit)

	result := s.Ingest(context.Background(), request("xyz", "registration", "whatever", "subid=joao123"))

	if result.Status != domain.PostbackInvalidHouse || result.HTTPStatus != http.StatusNotFound {
		t.Fatalf("result = %s/%d, want INVALID_HOUSE/404", result.Status, result.HTTPStatus)
	}
	if len(ledger.events) != 0 {
		t.Errorf("rejected postback must not record events")
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != domain.PostbackInvalidHouse {
		t.Fatalf("audit entries = %+v", audit.entries)
	}
	if audit.entries[0].HouseSlug != "xyz" || audit.entries[0].ClientIP != "203.0.113.9" {
		t.Errorf("audit raw data = %+v", audit.entries[0])
	}
}

func TestIngestDeactivatedHouseLooksUnknown(t *testing.T) {
	house := testHouse()
	house.Active = false

	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": house}, &fakeLedger{}, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackInvalidHouse {
		t.Fatalf("status = %s, want INVALID_HOUSE", result.Status)
	}
}

func TestIngestBadToken(t *testing.T) {
	audit := &fakeAudit{}
	ledger := &fakeLedger{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, ledger, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "wrong", "subid=joao123"))

	if result.Status != domain.PostbackInvalidToken || result.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("result = %s/%d, want INVALID_TOKEN/401", result.Status, result.HTTPStatus)
	}
	if len(ledger.events) != 0 {
		t.Errorf("rejected postback must not record events")
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != domain.PostbackInvalidToken {
		t.Fatalf("audit entries = %+v", audit.entries)
	}
}

func TestIngestDisabledEventKind(t *testing.T) {
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, &fakeLedger{}, audit)

	// first_deposit is a known kind but not enabled for this house
	result := s.Ingest(context.Background(), request("bet365", "first_deposit", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackInvalidEvent || result.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("result = %s/%d, want INVALID_EVENT/400", result.Status, result.HTTPStatus)
	}
}

func TestIngestUnknownEventKind(t *testing.T) {
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, &fakeLedger{}, audit)

	result := s.Ingest(context.Background(), request("bet365", "jackpot", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackInvalidEvent {
		t.Fatalf("status = %s, want INVALID_EVENT", result.Status)
	}
}

func TestIngestUnknownSubid(t *testing.T) {
	audit := &fakeAudit{}
	ledger := &fakeLedger{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, ledger, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=ghost"))

	if result.Status != domain.PostbackInvalidSubid || result.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("result = %s/%d, want INVALID_SUBID/400", result.Status, result.HTTPStatus)
	}
	if len(ledger.events) != 0 {
		t.Errorf("unknown subid must not record events")
	}
	if len(audit.entries) != 1 || audit.entries[0].Subid != "ghost" {
		t.Fatalf("audit entries = %+v", audit.entries)
	}
}

func TestIngestMissingSubid(t *testing.T) {
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, &fakeLedger{}, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "amount=10"))

	if result.Status != domain.PostbackInvalidSubid {
		t.Fatalf("status = %s, want INVALID_SUBID", result.Status)
	}
}

func TestIngestParameterMapping(t *testing.T) {
	house := testHouse()
	house.ParamMapping = datatypes.NewJSONType(map[string]string{
		"aff_id":  "subid",
		"dep_brl": "amount",
		"player":  "customer_id",
	})
	house.CommissionModel = domain.ModelRevShare
	house.RevSharePercent = decimal.RequireFromString("10")

	ledger := &fakeLedger{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": house}, ledger, &fakeAudit{})

	result := s.Ingest(context.Background(), request("bet365", "deposit", "secret-token",
		"aff_id=joao123&dep_brl=100.00&player=p-42&campaign=summer"))

	if result.Status != domain.PostbackSuccess {
		t.Fatalf("status = %s, want SUCCESS", result.Status)
	}
	if result.Commission.StringFixed(2) != "10.00" {
		t.Errorf("commission = %s, want 10.00", result.Commission.StringFixed(2))
	}

	event := ledger.events[0]
	if event.CustomerID != "p-42" {
		t.Errorf("customer id = %q, want p-42", event.CustomerID)
	}
	if event.Extra["campaign"] != "summer" {
		t.Errorf("extra bag = %+v", event.Extra)
	}
}

func TestIngestDuplicateAcknowledged(t *testing.T) {
	ledger := &fakeLedger{duplicate: true}
	audit := &fakeAudit{}

	registry := &fakeRegistry{houses: map[string]domain.PartnerHouse{"bet365": testHouse()}}
	resolver := &fakeResolver{affiliates: map[string]domain.Affiliate{"joao123": {ID: 7, TrackingCode: "joao123"}}}
	s := NewPostbackService(registry, resolver, ledger, audit, nil, Options{DedupWindow: 10 * time.Minute})

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=joao123&customer_id=c-1"))

	if result.Status != domain.PostbackDuplicate || result.HTTPStatus != http.StatusOK {
		t.Fatalf("result = %s/%d, want DUPLICATE/200", result.Status, result.HTTPStatus)
	}
	if !result.Duplicate {
		t.Errorf("duplicate flag not set")
	}
	if len(ledger.events) != 0 {
		t.Errorf("duplicate must not record a second conversion")
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != domain.PostbackDuplicate {
		t.Fatalf("audit entries = %+v", audit.entries)
	}
}

func TestIngestDedupDisabledRecordsRetries(t *testing.T) {
	// window zero means retries double-count, matching the legacy wire behavior
	ledger := &fakeLedger{duplicate: true}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, ledger, &fakeAudit{})

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=joao123&customer_id=c-1"))

	if result.Status != domain.PostbackSuccess {
		t.Fatalf("status = %s, want SUCCESS", result.Status)
	}
	if len(ledger.events) != 1 {
		t.Errorf("events = %d, want 1", len(ledger.events))
	}
}

func TestIngestPersistenceFailure(t *testing.T) {
	ledger := &fakeLedger{failWrite: true}
	audit := &fakeAudit{}
	s := newTestService(map[string]domain.PartnerHouse{"bet365": testHouse()}, ledger, audit)

	result := s.Ingest(context.Background(), request("bet365", "registration", "secret-token", "subid=joao123"))

	if result.Status != domain.PostbackError || result.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("result = %s/%d, want ERROR/500", result.Status, result.HTTPStatus)
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != domain.PostbackError {
		t.Fatalf("a failed write must leave an ERROR audit row, got %+v", audit.entries)
	}
}
