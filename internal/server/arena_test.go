package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hero-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	s := &ArenaServer{logger: zerolog.Nop()}

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &domain.BudgetExceededError{Total: 110, Cap: 100}, http.StatusUnprocessableEntity},
		{"state", domain.NewStateError("round 2 is CLOSED"), http.StatusConflict},
		{"match not found", domain.ErrMatchNotFound, http.StatusNotFound},
		{"round not found", domain.ErrRoundNotFound, http.StatusNotFound},
		{"session not found", domain.ErrSessionNotFound, http.StatusNotFound},
		{"team not found", domain.ErrTeamNotFound, http.StatusNotFound},
		{"submission not found", domain.ErrSubmissionNotFound, http.StatusNotFound},
		{"hero not found is validation", &domain.HeroNotFoundError{HeroID: 9}, http.StatusUnprocessableEntity},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"], "error text surfaces verbatim")
		})
	}
}

func TestWriteErrorWrappedErrorsClassify(t *testing.T) {
	s := &ArenaServer{logger: zerolog.Nop()}

	rec := httptest.NewRecorder()
	s.writeError(rec, errorsJoinWrap(domain.ErrRoundNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func errorsJoinWrap(err error) error {
	return &wrappedErr{err: err}
}

type wrappedErr struct{ err error }

func (w *wrappedErr) Error() string { return "load round 2: " + w.err.Error() }
func (w *wrappedErr) Unwrap() error { return w.err }
