package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Stakes que os bots usam, sempre acima do mínimo de 100
var stakeSteps = []int64{100, 200, 300, 500, 800}

type match struct {
	MatchID    string `json:"matchId"`
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	State      string `json:"state"`
}

type placeBetRequest struct {
	MatchID string `json:"matchId"`
	TeamID  string `json:"teamId"`
	Stake   int64  `json:"stake"`
}

// Bot aposta em nome de um conjunto de usuários sintéticos pra manter os
// pools vivos em ambiente de demonstração. Cada tick escolhe um bot, uma
// partida aberta, um lado e um stake, e chama a API real de apostas.
type Bot struct {
	Log     *zap.Logger
	Client  *http.Client
	OddsURL string // lista de partidas abertas
	BetURL  string // criação de apostas
	UserIDs []string
	Rng     *rand.Rand

	OnPlaced func()
	OnError  func()
}

// Tick executa uma rodada de apostas de bot
func (b *Bot) Tick(ctx context.Context) {
	if len(b.UserIDs) == 0 {
		return
	}

	open, err := b.openMatches(ctx)
	if err != nil {
		b.Log.Warn("bot: list matches", zap.Error(err))
		if b.OnError != nil {
			b.OnError()
		}
		return
	}
	if len(open) == 0 {
		b.Log.Debug("bot: no open matches")
		return
	}

	userID := b.UserIDs[b.Rng.Intn(len(b.UserIDs))]
	m := open[b.Rng.Intn(len(open))]
	teamID := m.HomeTeamID
	if b.Rng.Intn(2) == 1 {
		teamID = m.AwayTeamID
	}
	stake := stakeSteps[b.Rng.Intn(len(stakeSteps))]

	if err := b.placeBet(ctx, userID, placeBetRequest{MatchID: m.MatchID, TeamID: teamID, Stake: stake}); err != nil {
		b.Log.Warn("bot: place bet",
			zap.String("user_id", userID),
			zap.String("match_id", m.MatchID),
			zap.Error(err))
		if b.OnError != nil {
			b.OnError()
		}
		return
	}

	if b.OnPlaced != nil {
		b.OnPlaced()
	}
	b.Log.Info("bot bet placed",
		zap.String("user_id", userID),
		zap.String("match_id", m.MatchID),
		zap.String("team_id", teamID),
		zap.Int64("stake", stake))
}

func (b *Bot) openMatches(ctx context.Context) ([]match, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.OddsURL+"/v1/matches", nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, errors.New("matches http " + resp.Status)
	}

	var all []match
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, err
	}
	open := all[:0]
	for _, m := range all {
		if m.State == "OPEN" {
			open = append(open, m)
		}
	}
	return open, nil
}

func (b *Bot) placeBet(ctx context.Context, userID string, reqBody placeBetRequest) error {
	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BetURL+"/bets", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("X-User-Role", "user")

	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("bet http " + resp.Status)
	}
	return nil
}

// DefaultClient é o cliente HTTP usado pelos bots
func DefaultClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}
