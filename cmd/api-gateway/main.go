package main

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/api-gateway/auth"
	"github.com/crickpool/crickpool/internal/shared/config"
	"github.com/crickpool/crickpool/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	verifier := auth.NewVerifier(cfg.JWTSecret)

	wallet := rp(cfg.WalletURL)
	bet := rp(cfg.BetURL)
	odds := rp(cfg.OddsURL)
	match := rp(cfg.MatchURL)
	fantasy := rp(cfg.FantasyURL)

	mux := http.NewServeMux()

	// Leitura de odds e partidas é pública; o resto exige bearer token
	mux.Handle("/api/odds/", http.StripPrefix("/api/odds", odds))

	mux.Handle("/api/wallet/", verifier.Middleware(http.StripPrefix("/api", wallet)))
	mux.Handle("/api/bets", verifier.Middleware(http.StripPrefix("/api", bet)))
	mux.Handle("/api/bets/", verifier.Middleware(http.StripPrefix("/api", bet)))
	mux.Handle("/api/matches", verifier.Middleware(http.StripPrefix("/api", match)))
	mux.Handle("/api/matches/", verifier.Middleware(http.StripPrefix("/api", match)))
	mux.Handle("/api/fantasy/", verifier.Middleware(http.StripPrefix("/api", fantasy)))

	// Token de demonstração. Sem provedor de identidade no ambiente local,
	// o gateway emite o token direto; desligado em prod.
	if cfg.Env != "prod" {
		mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var req struct {
				UserID string `json:"userId"`
				Role   string `json:"role"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			if req.Role == "" {
				req.Role = "user"
			}
			token, err := verifier.Issue(req.UserID, req.Role, 24*time.Hour)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
		})
	}

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
