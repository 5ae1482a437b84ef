package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hero-arena/internal/domain"
	"hero-arena/internal/service"

	"github.com/rs/zerolog"
)

// ArenaServer exposes the tournament engine over a JSON API. It is a thin
// adapter: request decoding, service call, error mapping.
type ArenaServer struct {
	sessionSvc   *service.SessionService
	roundSvc     *service.RoundService
	lifecycleSvc *service.LifecycleService
	rosterSvc    *service.RosterService
	logger       zerolog.Logger
}

func NewArenaServer(
	sessionSvc *service.SessionService,
	roundSvc *service.RoundService,
	lifecycleSvc *service.LifecycleService,
	rosterSvc *service.RosterService,
	logger zerolog.Logger,
) *ArenaServer {
	return &ArenaServer{
		sessionSvc:   sessionSvc,
		roundSvc:     roundSvc,
		lifecycleSvc: lifecycleSvc,
		rosterSvc:    rosterSvc,
		logger:       logger,
	}
}

// Routes registers every endpoint on a fresh mux.
func (s *ArenaServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /admin/sessions", s.startSession)
	mux.HandleFunc("GET /admin/sessions", s.listSessions)
	mux.HandleFunc("POST /admin/sessions/{sessionID}/teams", s.registerTeam)
	mux.HandleFunc("GET /admin/sessions/{sessionID}/teams", s.listTeams)
	mux.HandleFunc("POST /admin/sessions/{sessionID}/rounds", s.createRound)
	mux.HandleFunc("GET /admin/sessions/{sessionID}/rounds", s.listRounds)
	mux.HandleFunc("POST /admin/sessions/{sessionID}/rounds/{roundNo}/automatch", s.autoMatch)
	mux.HandleFunc("POST /admin/rounds/{roundNo}/run", s.runAllBattles)
	mux.HandleFunc("POST /admin/matches/{matchID}/run", s.runMatch)
	mux.HandleFunc("POST /admin/heroes", s.importHeroes)

	mux.HandleFunc("GET /heroes", s.listHeroes)
	mux.HandleFunc("GET /heroes/{heroID}", s.getHero)
	mux.HandleFunc("POST /rounds/{roundNo}/submissions", s.submitTeam)
	mux.HandleFunc("GET /rounds/{roundNo}/submissions/{teamID}", s.getSubmission)
	mux.HandleFunc("GET /matches/{matchID}", s.getMatch)
	mux.HandleFunc("GET /matches/{matchID}/events", s.getMatchEvents)

	return mux
}

func (s *ArenaServer) startSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionSvc.StartSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

func (s *ArenaServer) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessionSvc.ListSessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

func (s *ArenaServer) registerTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.sessionSvc.RegisterTeam(r.Context(), r.PathValue("sessionID"), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"teamId": id})
}

func (s *ArenaServer) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.sessionSvc.ListTeams(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, teams)
}

func (s *ArenaServer) createRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoundNo  int              `json:"roundNo"`
		Spec     domain.RoundSpec `json:"spec"`
		Deadline *time.Time       `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	roundNo, err := s.roundSvc.CreateRound(r.Context(), r.PathValue("sessionID"), req.RoundNo, req.Spec, req.Deadline)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int{"roundNo": roundNo})
}

func (s *ArenaServer) listRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.roundSvc.ListRounds(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rounds)
}

func (s *ArenaServer) autoMatch(w http.ResponseWriter, r *http.Request) {
	roundNo, ok := s.pathInt(w, r, "roundNo")
	if !ok {
		return
	}

	matchIDs, err := s.lifecycleSvc.AutoMatch(r.Context(), r.PathValue("sessionID"), roundNo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if matchIDs == nil {
		matchIDs = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matchIds": matchIDs})
}

func (s *ArenaServer) runAllBattles(w http.ResponseWriter, r *http.Request) {
	roundNo, ok := s.pathInt(w, r, "roundNo")
	if !ok {
		return
	}

	result, err := s.lifecycleSvc.RunAllBattles(r.Context(), roundNo, r.URL.Query().Get("sessionId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *ArenaServer) runMatch(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.lifecycleSvc.RunMatch(r.Context(), r.PathValue("matchID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"winner": outcome})
}

func (s *ArenaServer) importHeroes(w http.ResponseWriter, r *http.Request) {
	var heroes []domain.Hero
	if err := json.NewDecoder(r.Body).Decode(&heroes); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	count, err := s.rosterSvc.ImportHeroes(r.Context(), heroes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int{"imported": count})
}

func (s *ArenaServer) listHeroes(w http.ResponseWriter, r *http.Request) {
	heroes, err := s.rosterSvc.ListHeroes(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, heroes)
}

func (s *ArenaServer) getHero(w http.ResponseWriter, r *http.Request) {
	heroID, ok := s.pathInt(w, r, "heroID")
	if !ok {
		return
	}

	hero, err := s.rosterSvc.GetHero(r.Context(), heroID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hero)
}

func (s *ArenaServer) submitTeam(w http.ResponseWriter, r *http.Request) {
	roundNo, ok := s.pathInt(w, r, "roundNo")
	if !ok {
		return
	}

	var req struct {
		TeamID   string `json:"teamId"`
		HeroIDs  []int  `json:"heroIds"`
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	draft := domain.DraftSubmission{HeroIDs: req.HeroIDs, Strategy: req.Strategy}
	if err := s.roundSvc.SubmitTeam(r.Context(), roundNo, req.TeamID, draft); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "accepted"})
}

func (s *ArenaServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	roundNo, ok := s.pathInt(w, r, "roundNo")
	if !ok {
		return
	}

	sub, err := s.roundSvc.GetSubmission(r.Context(), r.PathValue("teamID"), roundNo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

func (s *ArenaServer) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.lifecycleSvc.GetMatch(r.Context(), r.PathValue("matchID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

func (s *ArenaServer) getMatchEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.lifecycleSvc.GetMatchEvents(r.Context(), r.PathValue("matchID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.MatchEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *ArenaServer) pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	value, err := strconv.Atoi(r.PathValue(key))
	if err != nil {
		http.Error(w, "invalid "+key, http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

func (s *ArenaServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps the error taxonomy onto status codes: validation failures
// are surfaced verbatim as 422, state rejections as 409, missing entities as
// 404, everything else as 500.
func (s *ArenaServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case domain.IsState(err):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrRoundNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTeamNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
