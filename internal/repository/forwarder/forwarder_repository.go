package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type ForwarderConfig struct {
	Timeout time.Duration
}

// ForwarderRepository delivers accepted conversions to an affiliate's own
// postback URL. Delivery is best-effort: one attempt, no retry queue.
type ForwarderRepository struct {
	client *http.Client
}

func NewForwarderRepository(cfg ForwarderConfig) *ForwarderRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &ForwarderRepository{
		client: &http.Client{Timeout: timeout},
	}
}

type conversionPayload struct {
	House      string `json:"house"`
	EventKind  string `json:"event_kind"`
	Subid      string `json:"subid"`
	Amount     string `json:"amount,omitempty"`
	Commission string `json:"commission"`
	Type       string `json:"type,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func (r *ForwarderRepository) ForwardConversion(ctx context.Context, url, house, eventKind, subid, amount, commission, commissionType string, occurredAt time.Time) error {
	payload := conversionPayload{
		House:      house,
		EventKind:  eventKind,
		Subid:      subid,
		Amount:     amount,
		Commission: commission,
		Type:       commissionType,
		OccurredAt: occurredAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal forward payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	return fmt.Errorf("affiliate endpoint returned %v", res.StatusCode)
}
