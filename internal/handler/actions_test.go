package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/planner"
)

// ---- POST /trips/{id}/actions ----------------------------------------------

func TestApplyActions_200(t *testing.T) {
	tripID := uuid.New()
	p := &mockPlanner{
		apply: func(_ context.Context, gotTrip uuid.UUID, actions []domain.Action, opts planner.Options) (domain.ApplySummary, error) {
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, "Chiang Mai, Thailand", opts.LocationHint)
			require.Len(t, actions, 2)
			assert.Equal(t, domain.KindAdd, actions[0].Kind)
			assert.Equal(t, domain.KindAskPersonalInfo, actions[1].Kind)
			return domain.ApplySummary{Added: 2, Questions: []string{actions[1].Question}}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"location_hint": "Chiang Mai, Thailand",
		"actions": []map[string]any{
			{
				"action": "ADD_DESTINATIONS",
				"destinations": []map[string]any{
					{"name": "Wat Phra Singh"},
					{"name": "Night Bazaar"},
				},
			},
			{"action": "ASK_PERSONAL_INFO", "question": "Do you like temples?"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/trips/%s/actions", tripID), body)
	rec := httptest.NewRecorder()

	newTestRouter(nil, p, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Summary domain.ApplySummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Summary.Added)
	assert.Equal(t, []string{"Do you like temples?"}, got.Summary.Questions)
}

func TestApplyActions_UnknownKindCoercedToNoAction(t *testing.T) {
	p := &mockPlanner{
		apply: func(_ context.Context, _ uuid.UUID, actions []domain.Action, _ planner.Options) (domain.ApplySummary, error) {
			require.Len(t, actions, 1)
			assert.Equal(t, domain.KindNoAction, actions[0].Kind)
			return domain.ApplySummary{}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"actions": []map[string]any{{"action": "LAUNCH_ROCKETS"}},
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/trips/%s/actions", uuid.New()), body)
	rec := httptest.NewRecorder()

	newTestRouter(nil, p, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyActions_ReportsFailures(t *testing.T) {
	p := &mockPlanner{
		apply: func(_ context.Context, _ uuid.UUID, _ []domain.Action, opts planner.Options) (domain.ApplySummary, error) {
			opts.OnFailure(domain.Failure{Name: "Atlantis", Reason: "could not resolve location"})
			return domain.ApplySummary{Added: 1, Failed: 1, FailedNames: []string{"Atlantis"}}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"actions": []map[string]any{
			{"action": "ADD_DESTINATIONS", "destinations": []map[string]any{{"name": "Atlantis"}}},
		},
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/trips/%s/actions", uuid.New()), body)
	rec := httptest.NewRecorder()

	newTestRouter(nil, p, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Failures []domain.Failure `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Failures, 1)
	assert.Equal(t, "Atlantis", got.Failures[0].Name)
}

func TestApplyActions_404_TripNotFound(t *testing.T) {
	p := &mockPlanner{
		apply: func(_ context.Context, _ uuid.UUID, _ []domain.Action, _ planner.Options) (domain.ApplySummary, error) {
			return domain.ApplySummary{}, domain.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{"actions": []map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/trips/%s/actions", uuid.New()), body)
	rec := httptest.NewRecorder()

	newTestRouter(nil, p, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyActions_409_PositionConflict(t *testing.T) {
	p := &mockPlanner{
		apply: func(_ context.Context, _ uuid.UUID, _ []domain.Action, _ planner.Options) (domain.ApplySummary, error) {
			return domain.ApplySummary{}, domain.ErrPositionConflict
		},
	}

	body := jsonBody(t, map[string]any{"actions": []map[string]any{}})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/trips/%s/actions", uuid.New()), body)
	rec := httptest.NewRecorder()

	newTestRouter(nil, p, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
