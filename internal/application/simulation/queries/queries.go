package queries

import (
	"context"
	"fmt"

	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
)

// GetClockQuery returns the current simulation clock.
type GetClockQuery struct{}

// GetClockHandler serves clock reads.
type GetClockHandler struct {
	clockRepo simulation.ClockRepository
}

func NewGetClockHandler(clockRepo simulation.ClockRepository) *GetClockHandler {
	return &GetClockHandler{clockRepo: clockRepo}
}

func (h *GetClockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(GetClockQuery); !ok {
		return nil, fmt.Errorf("invalid request type %T for GetClockHandler", request)
	}
	return h.clockRepo.Get(ctx)
}

// GetFacilityQuery returns one facility by id.
type GetFacilityQuery struct {
	FacilityID string
}

// GetFacilityHandler serves single-facility reads.
type GetFacilityHandler struct {
	facilityRepo simulation.FacilityRepository
}

func NewGetFacilityHandler(facilityRepo simulation.FacilityRepository) *GetFacilityHandler {
	return &GetFacilityHandler{facilityRepo: facilityRepo}
}

func (h *GetFacilityHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(GetFacilityQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for GetFacilityHandler", request)
	}
	return h.facilityRepo.GetByID(ctx, query.FacilityID)
}

// ListFacilitiesQuery returns all facilities, ordered by ascending id.
type ListFacilitiesQuery struct {
	ProductionOnly bool
}

// ListFacilitiesHandler serves facility listings.
type ListFacilitiesHandler struct {
	facilityRepo simulation.FacilityRepository
}

func NewListFacilitiesHandler(facilityRepo simulation.FacilityRepository) *ListFacilitiesHandler {
	return &ListFacilitiesHandler{facilityRepo: facilityRepo}
}

func (h *ListFacilitiesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(ListFacilitiesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for ListFacilitiesHandler", request)
	}
	if query.ProductionOnly {
		return h.facilityRepo.ListProduction(ctx)
	}
	return h.facilityRepo.ListAll(ctx)
}
