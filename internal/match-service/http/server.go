package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/match-service/dto"
	"github.com/crickpool/crickpool/internal/match-service/repo"
	"github.com/crickpool/crickpool/internal/scoring/engine"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// Publisher define os eventos emitidos pelo match-service
type Publisher interface {
	PublishMatchLocked(context.Context, events.MatchLocked) error
	PublishMatchFinalized(context.Context, events.MatchFinalized) error
	PublishStatsEntered(context.Context, events.StatsEntered) error
}

// Server expõe a API administrativa de partidas e estatísticas.
// Quem alimenta é a fonte externa de metadados (admin ou merge de scraping);
// aqui só entra o registro estruturado final.
type Server struct {
	log  *zap.Logger
	repo *repo.Postgres
	publ Publisher
}

func NewServer(log *zap.Logger, r *repo.Postgres, p Publisher) *Server {
	return &Server{log: log, repo: r, publ: p}
}

// Router retorna as rotas da API de partidas
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireAdmin)
	r.Post("/matches", s.createMatch)
	r.Get("/matches/{id}", s.getMatch)
	r.Post("/matches/{id}/lock", s.lockMatch)           // gatilho do cron externo
	r.Post("/matches/{id}/finalize", s.finalizeMatch)
	r.Put("/matches/{id}/stats/{playerId}", s.upsertStat)
	r.Get("/matches/{id}/stats", s.listStats)
	return r
}

// requireAdmin barra qualquer chamada sem papel admin injetado pelo gateway
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-ID") == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-User-Role") != "admin" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.HomeTeamID == "" || req.AwayTeamID == "" || req.HomeTeamID == req.AwayTeamID || req.StartsAt.IsZero() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	m, err := s.repo.Create(r.Context(), req.HomeTeamID, req.AwayTeamID, req.StartsAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toMatchResponse(m))
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, toMatchResponse(m))
}

// lockMatch fecha a janela de apostas/seleções. Idempotente: relock de uma
// partida já travada só não republica o evento.
func (s *Server) lockMatch(w http.ResponseWriter, r *http.Request) {
	m, already, err := s.repo.Lock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if !already {
		if err := s.publ.PublishMatchLocked(r.Context(), events.MatchLocked{
			MatchID:    m.ID,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
		}); err != nil {
			s.log.Error("publish match_locked", zap.String("match_id", m.ID), zap.Error(err))
		}
	}
	writeJSON(w, toMatchResponse(m))
}

func (s *Server) finalizeMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ResultKind != events.ResultDecided && req.ResultKind != events.ResultNoResult {
		http.Error(w, "resultKind must be DECIDED or NO_RESULT", http.StatusBadRequest)
		return
	}
	if req.ResultKind == events.ResultDecided && req.WinnerTeamID == "" {
		http.Error(w, "winnerTeamId required for DECIDED", http.StatusBadRequest)
		return
	}

	m, err := s.repo.Finalize(r.Context(), chi.URLParam(r, "id"), req.ResultKind, req.WinnerTeamID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.publ.PublishMatchFinalized(r.Context(), events.MatchFinalized{
		MatchID:      m.ID,
		ResultKind:   m.ResultKind,
		WinnerTeamID: m.WinnerTeamID.String,
	}); err != nil {
		// liquidação depende desse evento; erro aqui precisa de operador
		s.log.Error("publish match_finalized", zap.String("match_id", m.ID), zap.Error(err))
		http.Error(w, "result saved but event publish failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, toMatchResponse(m))
}

func (s *Server) upsertStat(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	playerID := chi.URLParam(r, "playerId")

	var req dto.StatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Runs < 0 || req.Wickets < 0 || req.Catches < 0 || req.Stumpings < 0 || req.Runouts < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if _, err := s.repo.Get(r.Context(), matchID); err != nil {
		s.writeErr(w, err)
		return
	}

	row, err := s.repo.UpsertStat(r.Context(), matchID, playerID, engine.PlayerStat{
		IsPlayed:  req.IsPlayed,
		Runs:      req.Runs,
		Wickets:   req.Wickets,
		Catches:   req.Catches,
		Stumpings: req.Stumpings,
		Runouts:   req.Runouts,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.publ.PublishStatsEntered(r.Context(), events.StatsEntered{
		MatchID:      matchID,
		PlayerID:     playerID,
		PlayerPoints: row.PlayerPoints,
	}); err != nil {
		s.log.Warn("publish stats_entered", zap.String("match_id", matchID), zap.Error(err))
	}

	writeJSON(w, toStatResponse(row))
}

func (s *Server) listStats(w http.ResponseWriter, r *http.Request) {
	rowsOut, err := s.repo.ListStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.StatResponse, 0, len(rowsOut))
	for _, row := range rowsOut {
		out = append(out, toStatResponse(row))
	}
	writeJSON(w, out)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrMatchNotFound):
		http.Error(w, "match not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrInvalidTransition):
		http.Error(w, "invalid match state transition", http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidWinner):
		http.Error(w, "winner does not play this match", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toMatchResponse(m repo.Match) dto.MatchResponse {
	return dto.MatchResponse{
		MatchID:      m.ID,
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		StartsAt:     m.StartsAt,
		State:        m.State,
		ResultKind:   m.ResultKind,
		WinnerTeamID: m.WinnerTeamID.String,
	}
}

func toStatResponse(r repo.PlayerStatRow) dto.StatResponse {
	return dto.StatResponse{
		MatchID:      r.MatchID,
		PlayerID:     r.PlayerID,
		IsPlayed:     r.Stat.IsPlayed,
		Runs:         r.Stat.Runs,
		Wickets:      r.Stat.Wickets,
		Catches:      r.Stat.Catches,
		Stumpings:    r.Stat.Stumpings,
		Runouts:      r.Stat.Runouts,
		PlayerPoints: r.PlayerPoints,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
