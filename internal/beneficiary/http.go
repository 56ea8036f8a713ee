package beneficiary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	id "relief/pkg/domain"
)

// verificationResponse mirrors the registry's verification JSON.
type verificationResponse struct {
	Principal string `json:"principal"`
	Verified  bool   `json:"verified"`
}

// HTTPRegistry queries a remote registry at
// GET {base}/v1/beneficiaries/{principal}/verification. A 404 means the
// principal is unknown and therefore not verified.
type HTTPRegistry struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRegistry(baseURL string, client *http.Client) *HTTPRegistry {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRegistry{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *HTTPRegistry) IsVerified(ctx context.Context, principal id.Principal) (bool, error) {
	endpoint := r.baseURL + "/v1/beneficiaries/" + url.PathEscape(principal.String()) + "/verification"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verification request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	default:
		return false, fmt.Errorf("registry returned %s", resp.Status)
	}

	var body verificationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return false, fmt.Errorf("decode verification response: %w", err)
	}
	if body.Principal != "" && body.Principal != principal.String() {
		return false, fmt.Errorf("registry answered for %q, asked for %q", body.Principal, principal)
	}
	return body.Verified, nil
}
