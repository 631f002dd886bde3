package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tycoonsim/tycoon-go/internal/adapters/httpapi/dto"
)

// DaemonClient talks to the daemon's HTTP API.
type DaemonClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDaemonClient creates a client for the daemon at the given address.
func NewDaemonClient(addr string) *DaemonClient {
	return &DaemonClient{
		baseURL:    strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RunTick triggers a tick run.
func (c *DaemonClient) RunTick(ctx context.Context, manual bool) (*dto.RunTickResponse, error) {
	var resp dto.RunTickResponse
	err := c.do(ctx, http.MethodPost, "/api/tick", dto.RunTickRequest{Manual: manual}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetClock fetches the current simulation clock.
func (c *DaemonClient) GetClock(ctx context.Context) (*dto.ClockResponse, error) {
	var resp dto.ClockResponse
	if err := c.do(ctx, http.MethodGet, "/api/clock", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFacilities fetches all facilities, optionally only production
// ones.
func (c *DaemonClient) ListFacilities(ctx context.Context, productionOnly bool) ([]dto.FacilityResponse, error) {
	path := "/api/facilities"
	if productionOnly {
		path += "?kind=production"
	}
	var resp []dto.FacilityResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFacility fetches one facility by id.
func (c *DaemonClient) GetFacility(ctx context.Context, facilityID string) (*dto.FacilityResponse, error) {
	var resp dto.FacilityResponse
	if err := c.do(ctx, http.MethodGet, "/api/facilities/"+facilityID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateFacility registers a new facility.
func (c *DaemonClient) CreateFacility(ctx context.Context, req dto.CreateFacilityRequest) (*dto.FacilityResponse, error) {
	var resp dto.FacilityResponse
	if err := c.do(ctx, http.MethodPost, "/api/facilities", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRecipe assigns (or clears) a facility's active recipe.
func (c *DaemonClient) SetRecipe(ctx context.Context, facilityID, recipeID string) (*dto.FacilityResponse, error) {
	var resp dto.FacilityResponse
	path := "/api/facilities/" + facilityID + "/recipe"
	if err := c.do(ctx, http.MethodPost, path, dto.SetRecipeRequest{RecipeID: recipeID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartProduction begins a facility's cycle immediately.
func (c *DaemonClient) StartProduction(ctx context.Context, facilityID string) (*dto.FacilityResponse, error) {
	var resp dto.FacilityResponse
	path := "/api/facilities/" + facilityID + "/start"
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopProduction halts a facility's current cycle.
func (c *DaemonClient) StopProduction(ctx context.Context, facilityID string) (*dto.FacilityResponse, error) {
	var resp dto.FacilityResponse
	path := "/api/facilities/" + facilityID + "/stop"
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *DaemonClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
