package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tycoonsim/tycoon-go/internal/adapters/httpapi/dto"
	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/queries"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

func (s *Server) handleRunTick(w http.ResponseWriter, r *http.Request) {
	var req dto.RunTickRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Manual && !s.manualLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, "manual tick rate limit exceeded")
		return
	}

	ctx := common.WithLogger(r.Context(), s.logger)
	response, err := s.mediator.Send(ctx, commands.RunTickCommand{Manual: req.Manual})
	if err != nil {
		s.writeTickError(w, err)
		return
	}

	result, ok := response.(*commands.RunTickResult)
	if !ok {
		writeError(w, http.StatusInternalServerError, "unexpected response type")
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRunTickResponse(result))
}

func (s *Server) writeTickError(w http.ResponseWriter, err error) {
	var busy *shared.TickInProgressError
	if errors.As(err, &busy) {
		writeError(w, http.StatusConflict, busy.Error())
		return
	}
	s.logger.Error("tick run failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleGetClock(w http.ResponseWriter, r *http.Request) {
	response, err := s.mediator.Send(r.Context(), queries.GetClockQuery{})
	if err != nil {
		s.logger.Error("clock query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	clock, ok := response.(*calendar.Clock)
	if !ok {
		writeError(w, http.StatusInternalServerError, "unexpected response type")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewClockResponse(*clock))
}

func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	query := queries.ListFacilitiesQuery{
		ProductionOnly: r.URL.Query().Get("kind") == "production",
	}
	response, err := s.mediator.Send(r.Context(), query)
	if err != nil {
		s.logger.Error("facility listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	facilities, ok := response.([]*facility.Facility)
	if !ok {
		writeError(w, http.StatusInternalServerError, "unexpected response type")
		return
	}

	out := make([]dto.FacilityResponse, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, dto.NewFacilityResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	response, err := s.mediator.Send(r.Context(), queries.GetFacilityQuery{
		FacilityID: r.PathValue("id"),
	})
	if err != nil {
		s.writeFacilityError(w, err)
		return
	}
	s.writeFacility(w, response)
}

func (s *Server) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := common.WithLogger(r.Context(), s.logger)
	response, err := s.mediator.Send(ctx, commands.CreateFacilityCommand{
		OwnerID:          req.OwnerID,
		Kind:             facility.Kind(req.Kind),
		Capacity:         req.Capacity,
		AllowedRecipeIDs: req.AllowedRecipeIDs,
	})
	if err != nil {
		var validation *shared.ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, validation.Error())
			return
		}
		s.logger.Error("facility creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	f, ok := response.(*facility.Facility)
	if !ok {
		writeError(w, http.StatusInternalServerError, "unexpected response type")
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewFacilityResponse(f))
}

func (s *Server) handleSetRecipe(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := common.WithLogger(r.Context(), s.logger)
	response, err := s.mediator.Send(ctx, commands.SetRecipeCommand{
		FacilityID: r.PathValue("id"),
		RecipeID:   req.RecipeID,
	})
	if err != nil {
		s.writeFacilityError(w, err)
		return
	}
	s.writeFacility(w, response)
}

func (s *Server) handleStartProduction(w http.ResponseWriter, r *http.Request) {
	ctx := common.WithLogger(r.Context(), s.logger)
	response, err := s.mediator.Send(ctx, commands.StartProductionCommand{
		FacilityID: r.PathValue("id"),
	})
	if err != nil {
		var insufficient *shared.InsufficientInputError
		var noRecipe *shared.InvalidRecipeError
		if errors.As(err, &insufficient) || errors.As(err, &noRecipe) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeFacilityError(w, err)
		return
	}
	s.writeFacility(w, response)
}

func (s *Server) handleStopProduction(w http.ResponseWriter, r *http.Request) {
	ctx := common.WithLogger(r.Context(), s.logger)
	response, err := s.mediator.Send(ctx, commands.StopProductionCommand{
		FacilityID: r.PathValue("id"),
	})
	if err != nil {
		s.writeFacilityError(w, err)
		return
	}
	s.writeFacility(w, response)
}

func (s *Server) writeFacility(w http.ResponseWriter, response common.Response) {
	f, ok := response.(*facility.Facility)
	if !ok {
		writeError(w, http.StatusInternalServerError, "unexpected response type")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewFacilityResponse(f))
}

func (s *Server) writeFacilityError(w http.ResponseWriter, err error) {
	var notFound *shared.FacilityNotFoundError
	var recipeMissing *shared.RecipeNotFoundError
	var notAllowed *shared.RecipeNotAllowedError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &recipeMissing):
		writeError(w, http.StatusUnprocessableEntity, recipeMissing.Error())
	case errors.As(err, &notAllowed):
		writeError(w, http.StatusForbidden, notAllowed.Error())
	default:
		s.logger.Error("facility request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}
