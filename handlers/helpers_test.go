package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"invalid state", services.ErrRoundIncomplete, http.StatusConflict},
		{"invariant", services.ErrNextMatchFull, http.StatusBadRequest},
		{"winner not in match", services.ErrWinnerNotInMatch, http.StatusBadRequest},
		{"unsupported format", fmt.Errorf("%w: 'Ladder'", services.ErrUnsupportedFormat), http.StatusBadRequest},
		{"validation", services.ErrTournamentNameRequired, http.StatusBadRequest},
		{"forbidden", services.ErrNotTournamentOwner, http.StatusForbidden},
		{"conflict", services.ErrAlreadyJoined, http.StatusConflict},
		{"authentication", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rr, req, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, rr.Body.String(), "connection reset")
			} else {
				assert.Contains(t, rr.Body.String(), tc.err.Error())
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"cup"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"wrong type", `{"name":5}`, `incorrect JSON type for field "name"`},
		{"unknown field", `{"title":"cup"}`, "unknown key"},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst payload
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "cup", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGetIDFromURL(t *testing.T) {
	testCases := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("tournamentID", tc.raw)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, err := getIDFromURL(req, "tournamentID")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
