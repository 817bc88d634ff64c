package reconcile

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOracle submits the property context plus imagery to an external vision
// classification endpoint and parses the structured audit it returns.
type HTTPOracle struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPOracle builds an oracle client with a bounded request timeout.
func NewHTTPOracle(endpoint, apiKey string, timeout time.Duration) *HTTPOracle {
	return &HTTPOracle{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type auditWireRequest struct {
	Address       string   `json:"address"`
	RegionNote    string   `json:"region_note"`
	YearBuilt     int      `json:"year_built"`
	Stories       int      `json:"stories"`
	HouseTarget   int      `json:"house_target"`
	BasementPanes int      `json:"basement_panes"`
	SkylightEst   int      `json:"skylight_target"`
	GarageTarget  int      `json:"garage_target"`
	Pre1980       bool     `json:"pre_1980"`
	Images        []string `json:"images"`
}

// Audit implements Oracle over HTTP. The response body is schema-validated
// before decoding; any malformed payload is an error so the caller falls
// back to the deterministic baseline.
func (o *HTTPOracle) Audit(ctx context.Context, req AuditRequest) (*AuditReport, error) {
	encoded := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img))
	}

	wire := auditWireRequest{
		Address:       req.Address,
		RegionNote:    req.Baseline.RegionNote,
		YearBuilt:     req.Profile.YearBuilt,
		Stories:       req.Stories,
		HouseTarget:   req.Baseline.HouseTotal,
		BasementPanes: req.Baseline.BasementPanes,
		SkylightEst:   req.Baseline.EstSkylights,
		GarageTarget:  req.Baseline.GarageTarget,
		Pre1980:       req.Baseline.Pre1980,
		Images:        encoded,
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal audit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create audit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do audit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audit endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audit response: %w", err)
	}

	return ParseReport(raw)
}
