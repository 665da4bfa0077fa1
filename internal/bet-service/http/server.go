package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/bet-service/dto"
	"github.com/crickpool/crickpool/internal/bet-service/odds"
	"github.com/crickpool/crickpool/internal/bet-service/repo"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

type Server struct {
	log  *zap.Logger
	repo *repo.Postgres
	odds *odds.Reader
	publ interface {
		PublishBetEvent(context.Context, events.BetEvent) error
	}
}

func NewServer(log *zap.Logger, r *repo.Postgres, o *odds.Reader, p interface {
	PublishBetEvent(context.Context, events.BetEvent) error
}) *Server {
	return &Server{log: log, repo: r, odds: o, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets)         // POST place/update; GET ?matchId=
	mux.HandleFunc("/bets/", s.betByID)     // GET | DELETE /bets/{id}
	return mux
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodGet:
		s.getOwnBet(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// placeBet cria ou atualiza a aposta do usuário autenticado numa partida
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.MatchID == "" || req.TeamID == "" || req.Stake <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	bet, balance, err := s.repo.PlaceOrUpdate(r.Context(), userID, req.MatchID, req.TeamID, req.Stake)
	if err != nil {
		status, msg := mapBetError(err)
		writeJSONStatus(w, status, dto.PlaceBetResponse{Success: false, Message: msg})
		return
	}

	// Publica a mutação para o odds-worker recalcular os pools
	_ = s.publ.PublishBetEvent(r.Context(), events.BetEvent{
		Type:    events.BetPlaced,
		BetID:   bet.ID,
		UserID:  userID,
		MatchID: bet.MatchID,
		TeamID:  bet.TeamID,
		Stake:   bet.Stake,
	})

	resp := dto.PlaceBetResponse{
		Success: true,
		Message: "bet accepted",
		BetID:   bet.ID,
		MatchID: bet.MatchID,
		TeamID:  bet.TeamID,
		Stake:   bet.Stake,
		Coins:   balance,
	}

	// Enriquecimento best-effort com o retorno potencial; cache pode estar frio
	if upd, ok, err := s.odds.Current(r.Context(), bet.MatchID); err == nil && ok {
		if pe, defined := odds.PotentialEarning(upd, bet.TeamID, bet.Stake); defined {
			resp.PotentialEarning = &pe
		}
	}

	writeJSON(w, resp)
}

// getOwnBet retorna a aposta ativa do usuário na partida informada
func (s *Server) getOwnBet(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	matchID := r.URL.Query().Get("matchId")
	if matchID == "" {
		http.Error(w, "matchId required", http.StatusBadRequest)
		return
	}
	b, err := s.repo.GetForUserMatch(r.Context(), userID, matchID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toBetResponse(b))
}

// betByID trata GET e DELETE em /bets/{id}
func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/bets/"):]
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := s.repo.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, toBetResponse(b))

	case http.MethodDelete:
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		// Lê antes pra publicar o evento com o matchID após o commit
		prev, err := s.repo.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		refund, balance, err := s.repo.Delete(r.Context(), userID, id)
		if err != nil {
			status, msg := mapBetError(err)
			writeJSONStatus(w, status, dto.DeleteBetResponse{Success: false, Message: msg})
			return
		}
		_ = s.publ.PublishBetEvent(r.Context(), events.BetEvent{
			Type:    events.BetDeleted,
			BetID:   id,
			UserID:  userID,
			MatchID: prev.MatchID,
			TeamID:  prev.TeamID,
			Stake:   prev.Stake,
		})
		writeJSON(w, dto.DeleteBetResponse{Success: true, Message: "bet deleted", Refund: refund, Coins: balance})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// mapBetError traduz sentinelas do repositório em status HTTP e mensagem de UI
func mapBetError(err error) (int, string) {
	switch {
	case errors.Is(err, repo.ErrBelowMinimumStake):
		return http.StatusBadRequest, "minimum stake is 100 coins"
	case errors.Is(err, repo.ErrInsufficientFunds):
		return http.StatusConflict, "not enough coins for this stake"
	case errors.Is(err, repo.ErrMatchNotFound):
		return http.StatusNotFound, "match not found"
	case errors.Is(err, repo.ErrBettingClosed):
		return http.StatusConflict, "betting is closed for this match"
	case errors.Is(err, repo.ErrInvalidTeam):
		return http.StatusBadRequest, "team does not play this match"
	case errors.Is(err, repo.ErrBetNotFound):
		return http.StatusNotFound, "bet not found"
	case errors.Is(err, repo.ErrForbidden):
		return http.StatusForbidden, "bet belongs to another user"
	case errors.Is(err, repo.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func toBetResponse(b repo.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:   b.ID,
		MatchID: b.MatchID,
		TeamID:  b.TeamID,
		Stake:   b.Stake,
		Earning: b.Earning,
		Settled: b.SettledAt.Valid,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
