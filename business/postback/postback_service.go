package postback

import (
	"context"
	"crypto/subtle"
	"errors"
	"myBetPartners/business/commission"
	"myBetPartners/domain"
	"myBetPartners/pkg/logger"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// HouseRegistry contract interface
type HouseRegistry interface {
	LookupBySlug(ctx context.Context, slug string) (domain.PartnerHouse, error)
}

// AffiliateResolver contract interface
type AffiliateResolver interface {
	ResolveByTrackingCode(ctx context.Context, code string) (domain.Affiliate, error)
}

// LedgerRepository contract interface
type LedgerRepository interface {
	RecordConversion(ctx context.Context, event *domain.ConversionEvent, commission *domain.CommissionRecord, audit *domain.PostbackAuditEntry) error
	HasRecentDuplicate(ctx context.Context, houseID uint, eventKind, customerID string, amount decimal.NullDecimal, window time.Duration) (bool, error)
}

// AuditRepository contract interface; failure-path audit rows go through
// here, outside any transaction.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.PostbackAuditEntry) error
}

// ConversionForwarder contract interface
type ConversionForwarder interface {
	ForwardConversion(ctx context.Context, url, house, eventKind, subid, amount, commissionValue, commissionType string, occurredAt time.Time) error
}

type Options struct {
	// DedupWindow is how far back identical postbacks count as retries.
	// Zero disables deduplication entirely.
	DedupWindow time.Duration

	// ForwardTimeout bounds each outbound delivery attempt.
	ForwardTimeout time.Duration
}

type postbackService struct {
	registry  HouseRegistry
	resolver  AffiliateResolver
	ledger    LedgerRepository
	audit     AuditRepository
	forwarder ConversionForwarder
	opts      Options
}

func NewPostbackService(
	registry HouseRegistry,
	resolver AffiliateResolver,
	ledger LedgerRepository,
	audit AuditRepository,
	forwarder ConversionForwarder,
	opts Options,
) *postbackService {
	if opts.ForwardTimeout <= 0 {
		opts.ForwardTimeout = 5 * time.Second
	}

	return &postbackService{
		registry:  registry,
		resolver:  resolver,
		ledger:    ledger,
		audit:     audit,
		forwarder: forwarder,
		opts:      opts,
	}
}

// Request is one inbound postback as extracted from the HTTP layer.
type Request struct {
	HouseSlug string
	EventKind string
	Token     string
	Params    url.Values
	RawQuery  string
	ClientIP  string
	UserAgent string
}

// Result is what the HTTP layer renders back to the partner.
type Result struct {
	Status         string
	HTTPStatus     int
	Message        string
	House          string
	Affiliate      string
	Commission     decimal.Decimal
	CommissionType string
	Duplicate      bool
}

func (r Result) Accepted() bool {
	return r.Status == domain.PostbackSuccess || r.Status == domain.PostbackDuplicate
}

// Ingest runs the full pipeline for one postback: resolve house, check
// token, check event kind, normalize parameters, resolve affiliate,
// record the conversion and any earned commission, audit the attempt.
// Every exit path leaves exactly one audit row.
func (s *postbackService) Ingest(ctx context.Context, req Request) Result {
	house, err := s.registry.LookupBySlug(ctx, req.HouseSlug)
	if err != nil || !house.Active {
		if err != nil && !isNotFound(err) {
			return s.systemError(ctx, req, "", err)
		}
		// a deactivated house answers exactly like an unknown one
		return s.reject(ctx, req, "", domain.PostbackInvalidHouse, http.StatusNotFound, "unknown house")
	}

	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(house.SecurityToken)) != 1 {
		return s.reject(ctx, req, "", domain.PostbackInvalidToken, http.StatusUnauthorized, "invalid security token")
	}

	kind := domain.EventKind(req.EventKind)
	if !domain.ValidEventKind(kind) || !house.EventEnabled(kind) {
		return s.reject(ctx, req, "", domain.PostbackInvalidEvent, http.StatusBadRequest, "event kind not enabled for this house")
	}

	params := normalizeParams(house, req.Params)
	if params.Subid == "" {
		return s.reject(ctx, req, "", domain.PostbackInvalidSubid, http.StatusBadRequest, "missing subid")
	}

	affiliate, err := s.resolver.ResolveByTrackingCode(ctx, params.Subid)
	if err != nil {
		if isNotFound(err) {
			return s.reject(ctx, req, params.Subid, domain.PostbackInvalidSubid, http.StatusBadRequest, "unknown subid")
		}
		return s.systemError(ctx, req, params.Subid, err)
	}

	amount := commission.ParseAmount(params.Amount)

	if s.opts.DedupWindow > 0 && params.CustomerID != "" {
		dup, err := s.ledger.HasRecentDuplicate(ctx, house.ID, string(kind), params.CustomerID, amount, s.opts.DedupWindow)
		if err != nil {
			return s.systemError(ctx, req, params.Subid, err)
		}
		if dup {
			return s.acknowledgeDuplicate(ctx, req, house, affiliate, params.Subid)
		}
	}

	outcome := commission.Compute(house, kind, amount)

	event := &domain.ConversionEvent{
		AffiliateID: affiliate.ID,
		HouseID:     house.ID,
		EventKind:   string(kind),
		Amount:      amount,
		CustomerID:  params.CustomerID,
		Extra:       params.Extra,
	}

	var record *domain.CommissionRecord
	if outcome.Earned() {
		record = &domain.CommissionRecord{
			Type:   outcome.Type,
			Value:  outcome.Value,
			Status: domain.CommissionEarned,
		}
	}

	audit := s.auditEntry(req, params.Subid, domain.PostbackSuccess, "")
	audit.Commission = outcome.Value

	if err := s.ledger.RecordConversion(ctx, event, record, audit); err != nil {
		return s.systemError(ctx, req, params.Subid, err)
	}

	logger.Info("Postback accepted",
		"house", house.Slug,
		"event", string(kind),
		"subid", params.Subid,
		"commission", outcome.Value.StringFixed(2),
	)

	s.forward(house, affiliate, string(kind), params.Subid, params.Amount, outcome)

	return Result{
		Status:         domain.PostbackSuccess,
		HTTPStatus:     http.StatusOK,
		Message:        "postback processed",
		House:          house.Slug,
		Affiliate:      affiliate.TrackingCode,
		Commission:     outcome.Value,
		CommissionType: outcome.Type,
	}
}

type normalizedParams struct {
	Subid      string
	Amount     string
	CustomerID string
	Extra      datatypes.JSONMap
}

// normalizeParams folds the house's own field names onto the canonical
// ones. Anything that maps to nothing canonical rides along in Extra.
func normalizeParams(house domain.PartnerHouse, values url.Values) normalizedParams {
	params := normalizedParams{Extra: datatypes.JSONMap{}}

	for name := range values {
		value := values.Get(name)
		if value == "" {
			continue
		}

		switch house.CanonicalParam(name) {
		case "subid":
			params.Subid = value
		case "amount":
			params.Amount = value
		case "customer_id":
			params.CustomerID = value
		default:
			params.Extra[name] = value
		}
	}

	return params
}

func (s *postbackService) auditEntry(req Request, subid, status, detail string) *domain.PostbackAuditEntry {
	if subid == "" {
		subid = req.Params.Get("subid")
	}

	return &domain.PostbackAuditEntry{
		HouseSlug: req.HouseSlug,
		EventKind: req.EventKind,
		Subid:     subid,
		RawQuery:  req.RawQuery,
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
		Status:    status,
		Detail:    detail,
	}
}

// reject handles the expected 4xx exits. The audit row is the only side
// effect; a failed audit write is logged but does not mask the rejection.
func (s *postbackService) reject(ctx context.Context, req Request, subid, status string, httpStatus int, message string) Result {
	if err := s.audit.Append(ctx, s.auditEntry(req, subid, status, message)); err != nil {
		logger.Error("Failed to write postback audit entry", err)
	}

	return Result{
		Status:     status,
		HTTPStatus: httpStatus,
		Message:    message,
		House:      req.HouseSlug,
		Commission: decimal.Zero,
	}
}

func (s *postbackService) systemError(ctx context.Context, req Request, subid string, cause error) Result {
	logger.Error("Postback pipeline failure", cause, "house", req.HouseSlug, "event", req.EventKind)

	if err := s.audit.Append(ctx, s.auditEntry(req, subid, domain.PostbackError, cause.Error())); err != nil {
		logger.Error("Failed to write postback audit entry", err)
	}

	return Result{
		Status:     domain.PostbackError,
		HTTPStatus: http.StatusInternalServerError,
		Message:    "internal error",
		House:      req.HouseSlug,
		Commission: decimal.Zero,
	}
}

// acknowledgeDuplicate answers retried postbacks with 200 so flaky
// partners stop retrying, without crediting the conversion twice.
func (s *postbackService) acknowledgeDuplicate(ctx context.Context, req Request, house domain.PartnerHouse, affiliate domain.Affiliate, subid string) Result {
	if err := s.audit.Append(ctx, s.auditEntry(req, subid, domain.PostbackDuplicate, "retry of an already recorded conversion")); err != nil {
		logger.Error("Failed to write postback audit entry", err)
	}

	return Result{
		Status:     domain.PostbackDuplicate,
		HTTPStatus: http.StatusOK,
		Message:    "duplicate postback ignored",
		House:      house.Slug,
		Affiliate:  affiliate.TrackingCode,
		Commission: decimal.Zero,
		Duplicate:  true,
	}
}

// forward delivers the accepted conversion to the affiliate's own
// endpoint, off the request path. Best-effort: failures are logged and
// dropped.
func (s *postbackService) forward(house domain.PartnerHouse, affiliate domain.Affiliate, kind, subid, amount string, outcome commission.Outcome) {
	if s.forwarder == nil || affiliate.PostbackURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.ForwardTimeout)
		defer cancel()

		err := s.forwarder.ForwardConversion(ctx, affiliate.PostbackURL, house.Slug, kind, subid,
			amount, outcome.Value.StringFixed(2), outcome.Type, time.Now())
		if err != nil {
			logger.Warn("Failed to forward conversion to affiliate",
				"tracking_code", affiliate.TrackingCode, err)
		}
	}()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrHouseNotFound) || errors.Is(err, domain.ErrAffiliateNotFound)
}
