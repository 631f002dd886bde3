package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonsim/tycoon-go/internal/adapters/httpapi/dto"
	syncbridge "github.com/tycoonsim/tycoon-go/internal/adapters/sync"
	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/queries"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/config"
)

type stubMediator struct {
	response common.Response
	err      error
	received common.Request
}

func (m *stubMediator) Send(_ context.Context, request common.Request) (common.Response, error) {
	m.received = request
	return m.response, m.err
}

func (m *stubMediator) Register(_ reflect.Type, _ common.RequestHandler) error {
	return nil
}

func newTestServer(t *testing.T, mediator common.Mediator) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.ServerConfig{
		Address:         "localhost:0",
		ManualTickRate:  100,
		ManualTickBurst: 100,
	}
	return NewServer(cfg, mediator, syncbridge.NewHub(logger), nil, logger)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(recorder, req)
	return recorder
}

func TestRunTickEndpoint(t *testing.T) {
	t.Run("manual trigger advances", func(t *testing.T) {
		mediator := &stubMediator{
			response: &commands.RunTickResult{
				Clock:              calendar.Clock{Tick: 42, Day: 3, Month: 2, Year: 1},
				FacilitiesAdvanced: 5,
				Manual:             true,
			},
		}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/tick", `{"manual":true}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.RunTickResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.True(t, resp.Advanced)
		assert.True(t, resp.Manual)
		assert.Equal(t, 5, resp.FacilitiesAdvanced)
		require.NotNil(t, resp.Clock)
		assert.Equal(t, uint64(42), resp.Clock.Tick)

		cmd, ok := mediator.received.(commands.RunTickCommand)
		require.True(t, ok)
		assert.True(t, cmd.Manual)
	})

	t.Run("scheduled trigger before due time reports not due", func(t *testing.T) {
		mediator := &stubMediator{
			response: &commands.RunTickResult{NotDue: true, SecondsRemaining: 1800},
		}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/tick", `{"manual":false}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.RunTickResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.False(t, resp.Advanced)
		assert.True(t, resp.NotDue)
		assert.Equal(t, float64(1800), resp.SecondsRemaining)
		assert.Nil(t, resp.Clock)
	})

	t.Run("concurrent run maps to conflict", func(t *testing.T) {
		mediator := &stubMediator{err: shared.NewTickInProgressError("tick-a1b2c3d4")}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/tick", `{"manual":true}`)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("manual rate limit maps to too many requests", func(t *testing.T) {
		mediator := &stubMediator{response: &commands.RunTickResult{Manual: true}}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		cfg := &config.ServerConfig{
			Address:         "localhost:0",
			ManualTickRate:  0.001,
			ManualTickBurst: 1,
		}
		server := NewServer(cfg, mediator, syncbridge.NewHub(logger), nil, logger)

		first := doRequest(server, http.MethodPost, "/api/tick", `{"manual":true}`)
		require.Equal(t, http.StatusOK, first.Code)

		second := doRequest(server, http.MethodPost, "/api/tick", `{"manual":true}`)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("malformed body maps to bad request", func(t *testing.T) {
		server := newTestServer(t, &stubMediator{})

		recorder := doRequest(server, http.MethodPost, "/api/tick", `{"manual":`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestClockEndpoint(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	mediator := &stubMediator{
		response: &calendar.Clock{
			Tick: 7, Day: 8, Month: 1, Year: 2249,
			LastAdvanceTime:   now,
			NextScheduledTime: now.Add(time.Hour),
		},
	}
	server := newTestServer(t, mediator)

	recorder := doRequest(server, http.MethodGet, "/api/clock", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp dto.ClockResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, uint64(7), resp.Tick)
	assert.Equal(t, 2249, resp.Year)
	assert.Equal(t, now.Add(time.Hour), resp.NextScheduledTime)
}

func TestFacilityEndpoints(t *testing.T) {
	t.Run("get facility", func(t *testing.T) {
		f, err := facility.New("production-deadbeef", "owner-1", facility.KindProduction, 100)
		require.NoError(t, err)
		mediator := &stubMediator{response: f}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodGet, "/api/facilities/production-deadbeef", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.FacilityResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "production-deadbeef", resp.ID)
		assert.Equal(t, uint(100), resp.Capacity)

		query, ok := mediator.received.(queries.GetFacilityQuery)
		require.True(t, ok)
		assert.Equal(t, "production-deadbeef", query.FacilityID)
	})

	t.Run("unknown facility maps to not found", func(t *testing.T) {
		mediator := &stubMediator{err: shared.NewFacilityNotFoundError("nope")}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodGet, "/api/facilities/nope", "")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("list filters by kind query parameter", func(t *testing.T) {
		mediator := &stubMediator{response: []*facility.Facility{}}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodGet, "/api/facilities?kind=production", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		query, ok := mediator.received.(queries.ListFacilitiesQuery)
		require.True(t, ok)
		assert.True(t, query.ProductionOnly)
	})

	t.Run("create facility", func(t *testing.T) {
		f, err := facility.New("", "owner-1", facility.KindProduction, 50)
		require.NoError(t, err)
		mediator := &stubMediator{response: f}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/facilities",
			`{"ownerId":"owner-1","kind":"production","capacity":50}`)

		require.Equal(t, http.StatusCreated, recorder.Code)
		cmd, ok := mediator.received.(commands.CreateFacilityCommand)
		require.True(t, ok)
		assert.Equal(t, facility.KindProduction, cmd.Kind)
		assert.Equal(t, uint(50), cmd.Capacity)
	})

	t.Run("set recipe rejects disallowed recipe", func(t *testing.T) {
		mediator := &stubMediator{err: shared.NewRecipeNotAllowedError("fac-1", "iron-smelting")}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/facilities/fac-1/recipe",
			`{"recipeId":"iron-smelting"}`)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("set recipe rejects unknown recipe", func(t *testing.T) {
		mediator := &stubMediator{err: shared.NewRecipeNotFoundError("bogus")}
		server := newTestServer(t, mediator)

		recorder := doRequest(server, http.MethodPost, "/api/facilities/fac-1/recipe",
			`{"recipeId":"bogus"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}
