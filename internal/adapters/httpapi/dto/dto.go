// Package dto defines the JSON request and response shapes of the HTTP
// API, kept separate from the domain types so the wire format can stay
// stable while the domain evolves.
package dto

import (
	"time"

	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunTickRequest is the body of POST /api/tick. An empty body is a
// scheduled trigger.
type RunTickRequest struct {
	Manual bool `json:"manual"`
}

// RunTickResponse reports the outcome of a tick run.
type RunTickResponse struct {
	Advanced           bool           `json:"advanced"`
	NotDue             bool           `json:"notDue,omitempty"`
	SecondsRemaining   float64        `json:"secondsRemaining,omitempty"`
	Manual             bool           `json:"manual"`
	FacilitiesAdvanced int            `json:"facilitiesAdvanced"`
	Clock              *ClockResponse `json:"clock,omitempty"`
}

// NewRunTickResponse maps a tick result onto the wire shape.
func NewRunTickResponse(result *commands.RunTickResult) RunTickResponse {
	resp := RunTickResponse{
		Advanced:           !result.NotDue,
		NotDue:             result.NotDue,
		SecondsRemaining:   result.SecondsRemaining,
		Manual:             result.Manual,
		FacilitiesAdvanced: result.FacilitiesAdvanced,
	}
	if !result.NotDue {
		clock := NewClockResponse(result.Clock)
		resp.Clock = &clock
	}
	return resp
}

// ClockResponse is the wire shape of the simulation clock.
type ClockResponse struct {
	Tick              uint64    `json:"tick"`
	Day               int       `json:"day"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	LastAdvanceTime   time.Time `json:"lastAdvanceTime"`
	NextScheduledTime time.Time `json:"nextScheduledTime"`
}

// NewClockResponse maps a clock onto the wire shape.
func NewClockResponse(clock calendar.Clock) ClockResponse {
	return ClockResponse{
		Tick:              clock.Tick,
		Day:               clock.Day,
		Month:             clock.Month,
		Year:              clock.Year,
		LastAdvanceTime:   clock.LastAdvanceTime,
		NextScheduledTime: clock.NextScheduledTime,
	}
}

// CreateFacilityRequest is the body of POST /api/facilities.
type CreateFacilityRequest struct {
	OwnerID          string   `json:"ownerId"`
	Kind             string   `json:"kind"`
	Capacity         uint     `json:"capacity"`
	AllowedRecipeIDs []string `json:"allowedRecipeIds,omitempty"`
}

// SetRecipeRequest is the body of POST /api/facilities/{id}/recipe. An
// empty recipe id clears the assignment.
type SetRecipeRequest struct {
	RecipeID string `json:"recipeId"`
}

// StackResponse is one resource stack of an inventory.
type StackResponse struct {
	Resource string `json:"resource"`
	Quantity uint   `json:"quantity"`
}

// FacilityResponse is the wire shape of a facility.
type FacilityResponse struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"ownerId"`
	Kind             string          `json:"kind"`
	Capacity         uint            `json:"capacity"`
	Usage            uint            `json:"usage"`
	Items            []StackResponse `json:"items"`
	ActiveRecipeID   string          `json:"activeRecipeId,omitempty"`
	AllowedRecipeIDs []string        `json:"allowedRecipeIds,omitempty"`
	IsProducing      bool            `json:"isProducing"`
	ProgressTicks    uint            `json:"progressTicks"`
	Effectivity      float64         `json:"effectivity"`
}

// NewFacilityResponse maps a facility onto the wire shape.
func NewFacilityResponse(f *facility.Facility) FacilityResponse {
	stacks := f.Inventory.Stacks()
	items := make([]StackResponse, 0, len(stacks))
	for _, s := range stacks {
		items = append(items, StackResponse{Resource: s.Resource, Quantity: s.Quantity})
	}
	return FacilityResponse{
		ID:               f.ID,
		OwnerID:          f.OwnerID,
		Kind:             string(f.Kind),
		Capacity:         f.Inventory.Capacity(),
		Usage:            f.Inventory.Usage(),
		Items:            items,
		ActiveRecipeID:   f.ActiveRecipeID,
		AllowedRecipeIDs: f.AllowedRecipeIDs,
		IsProducing:      f.IsProducing,
		ProgressTicks:    f.ProgressTicks,
		Effectivity:      f.Effectivity,
	}
}
