package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
)

// statusResponse is the oracle's wire format. Numbers are unsigned 64-bit.
type statusResponse struct {
	Active      bool   `json:"active"`
	Severity    uint64 `json:"severity"`
	StartHeight uint64 `json:"start_height"`
	EndHeight   uint64 `json:"end_height"`
}

func (r statusResponse) toStatus() *ports.DisasterStatus {
	return &ports.DisasterStatus{
		Active:      r.Active,
		Severity:    r.Severity,
		StartHeight: id.Height(r.StartHeight),
		EndHeight:   id.Height(r.EndHeight),
	}
}

func fromStatus(s *ports.DisasterStatus) statusResponse {
	return statusResponse{
		Active:      s.Active,
		Severity:    s.Severity,
		StartHeight: uint64(s.StartHeight),
		EndHeight:   uint64(s.EndHeight),
	}
}

// HTTPOracle reads GET {base}/v1/disasters/{id}/status. An undeclared
// disaster (404) is reported inactive.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string, client *http.Client) *HTTPOracle {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPOracle{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (o *HTTPOracle) DisasterStatus(ctx context.Context, disasterID id.DisasterID) (*ports.DisasterStatus, error) {
	endpoint := o.baseURL + "/v1/disasters/" + disasterID.String() + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &ports.DisasterStatus{}, nil
	default:
		return nil, fmt.Errorf("oracle returned %s", resp.Status)
	}

	var body statusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return body.toStatus(), nil
}
