package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/wallet-service/dto"
	"github.com/crickpool/crickpool/internal/wallet-service/repo"
)

// Repo define a interface de operações de conta usadas pelo handler HTTP
type Repo interface {
	GetUser(ctx context.Context, userID string) (repo.User, error)
	CreateUser(ctx context.Context, name, role string) (repo.User, error)
	Grant(ctx context.Context, userID string, amount int64, message string) (int64, error)
	Ledger(ctx context.Context, userID string, limit int) ([]repo.LedgerEntry, error)
	Reconcile(ctx context.Context, userID string) (coins int64, ledgerSum int64, err error)
}

// Server expõe endpoints HTTP da conta de moedas (coin account)
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)             // GET (identidade via X-User-ID)
	mux.HandleFunc("/wallet/ledger", s.getLedger)      // GET ?limit=...
	mux.HandleFunc("/wallet/reconcile", s.reconcile)   // GET
	mux.HandleFunc("/wallet/users", s.createUser)      // POST (admin)
	mux.HandleFunc("/wallet/grant", s.grant)           // POST (admin)
	return mux
}

// identity extrai o usuário autenticado injetado pelo api-gateway.
// Sem header = requisição não autenticada; o core trata como falha dura.
func identity(r *http.Request) (userID string, role string, ok bool) {
	userID = r.Header.Get("X-User-ID")
	role = r.Header.Get("X-User-Role")
	return userID, role, userID != ""
}

// getWallet retorna a conta e o saldo do usuário autenticado
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	u, err := s.repo.GetUser(r.Context(), userID)
	if err == repo.ErrNotFound {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: u.ID, Name: u.Name, Role: u.Role, Coins: u.Coins})
}

// getLedger lista o histórico de lançamentos do usuário autenticado
func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.repo.Ledger(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:        e.ID,
			EntryType: e.EntryType,
			Delta:     e.Delta,
			BetID:     e.BetID.String,
			MatchID:   e.MatchID.String,
			Message:   e.Message.String,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, out)
}

// reconcile confere saldo vs soma do ledger; divergência vira alerta de auditoria
func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	coins, sum, err := s.repo.Reconcile(r.Context(), userID)
	if err == repo.ErrNotFound {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if coins != sum {
		s.log.Warn("ledger inconsistency detected",
			zap.String("user_id", userID),
			zap.Int64("coins", coins),
			zap.Int64("ledger_sum", sum),
		)
	}
	writeJSON(w, dto.ReconcileResponse{UserID: userID, Coins: coins, LedgerSum: sum, Consistent: coins == sum})
}

// createUser cria uma conta com crédito inicial (somente admin)
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, role, ok := identity(r); !ok || role != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	role := req.Role
	switch role {
	case "user", "admin", "bot":
	default:
		role = "user"
	}
	u, err := s.repo.CreateUser(r.Context(), req.Name, role)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: u.ID, Name: u.Name, Role: u.Role, Coins: u.Coins})
}

// grant credita moedas manualmente a um usuário (somente admin)
func (s *Server) grant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, role, ok := identity(r); !ok || role != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	var req dto.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	balance, err := s.repo.Grant(r.Context(), req.UserID, req.Amount, req.Message)
	if err == repo.ErrNotFound {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: req.UserID, Coins: balance})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
