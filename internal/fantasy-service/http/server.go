package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/fantasy-service/cache"
	"github.com/crickpool/crickpool/internal/fantasy-service/dto"
	"github.com/crickpool/crickpool/internal/fantasy-service/repo"
)

// Server expõe a API fantasy: seleções, preferências e ranking
type Server struct {
	log   *zap.Logger
	repo  *repo.Postgres
	cache *cache.Cache
}

func NewServer(log *zap.Logger, r *repo.Postgres, c *cache.Cache) *Server {
	return &Server{log: log, repo: r, cache: c}
}

// Router retorna as rotas da API fantasy
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Put("/fantasy/selections", s.saveSelection)
	r.Get("/fantasy/selections/{matchId}", s.getSelection)
	r.Put("/fantasy/preferences/teams", s.saveTeamPreferences)
	r.Get("/fantasy/preferences/teams", s.getTeamPreferences)
	r.Put("/fantasy/preferences/favorites", s.saveFavorites)
	r.Get("/fantasy/preferences/favorites/{teamId}", s.getFavorites)
	r.Get("/fantasy/points/{matchId}", s.getMatchPoints)
	r.Get("/fantasy/points", s.getTotalPoints)
	r.Get("/fantasy/leaderboard", s.leaderboard) // ?limit=N ou ?name=...
	return r
}

// identity extrai o usuário autenticado injetado pelo api-gateway
func identity(r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	return id, id != ""
}

func (s *Server) saveSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	var req dto.SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	sel, err := s.repo.SaveSelection(r.Context(), repo.Selection{
		UserID:    userID,
		MatchID:   req.MatchID,
		TeamID:    req.TeamID,
		Players:   req.Players,
		CaptainID: req.CaptainID,
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, toSelectionResponse(sel))
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	sel, err := s.repo.GetSelection(r.Context(), userID, chi.URLParam(r, "matchId"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, toSelectionResponse(sel))
}

func (s *Server) saveTeamPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	var req dto.TeamPreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.repo.SaveTeamPreferences(r.Context(), userID, req.TeamIDs); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, req)
}

func (s *Server) getTeamPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	teams, err := s.repo.GetTeamPreferences(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if teams == nil {
		teams = []string{}
	}
	writeJSON(w, dto.TeamPreferencesRequest{TeamIDs: teams})
}

func (s *Server) saveFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	var req dto.FavoritePlayersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.TeamID == "" {
		http.Error(w, "teamId required", http.StatusBadRequest)
		return
	}
	if err := s.repo.SaveFavoritePlayers(r.Context(), userID, req.TeamID, req.PlayerIDs); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, req)
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	teamID := chi.URLParam(r, "teamId")
	players, err := s.repo.GetFavoritePlayers(r.Context(), userID, teamID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if players == nil {
		players = []string{}
	}
	writeJSON(w, dto.FavoritePlayersRequest{TeamID: teamID, PlayerIDs: players})
}

func (s *Server) getMatchPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	mp, err := s.repo.GetMatchPoints(r.Context(), userID, chi.URLParam(r, "matchId"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, dto.MatchPointsResponse{
		MatchID:     mp.MatchID,
		TeamBonus:   mp.TeamBonus,
		PlayerTotal: mp.PlayerTotal,
		Total:       mp.Total,
	})
}

func (s *Server) getTotalPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	total, err := s.repo.GetTotalPoints(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TotalPointsResponse{UserID: userID, Total: total})
}

// leaderboard serve o top-N (cacheado no Redis) ou a busca por nome
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		rows, err := s.repo.SearchLeaderboard(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, toLeaderboard(rows))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var cached []dto.LeaderboardEntry
	if hit, err := s.cache.GetLeaderboard(r.Context(), limit, &cached); err == nil && hit {
		writeJSON(w, cached)
		return
	}

	rows, err := s.repo.Leaderboard(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := toLeaderboard(rows)
	if err := s.cache.SetLeaderboard(r.Context(), limit, out); err != nil {
		s.log.Warn("leaderboard cache", zap.Error(err))
	}
	writeJSON(w, out)
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrSelectionNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrMatchNotFound):
		http.Error(w, "match not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrSelectionsClosed):
		http.Error(w, "selections closed for this match", http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidSelection):
		http.Error(w, "invalid selection", http.StatusBadRequest)
	case errors.Is(err, repo.ErrTooManyFavorites):
		http.Error(w, "too many favorite players", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toSelectionResponse(sel repo.Selection) dto.SelectionResponse {
	return dto.SelectionResponse{
		MatchID:   sel.MatchID,
		TeamID:    sel.TeamID,
		Players:   sel.Players,
		CaptainID: sel.CaptainID,
		ByUser:    sel.ByUser,
		UpdatedAt: sel.UpdatedAt,
	}
}

func toLeaderboard(rows []repo.LeaderboardRow) []dto.LeaderboardEntry {
	out := make([]dto.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LeaderboardEntry{Rank: r.Rank, UserID: r.UserID, Name: r.Name, Points: r.Points})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
