package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/crickpool/crickpool/internal/match-service/repo"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

type stubPublisher struct {
	locked    []events.MatchLocked
	finalized []events.MatchFinalized
	stats     []events.StatsEntered
}

func (s *stubPublisher) PublishMatchLocked(_ context.Context, e events.MatchLocked) error {
	s.locked = append(s.locked, e)
	return nil
}
func (s *stubPublisher) PublishMatchFinalized(_ context.Context, e events.MatchFinalized) error {
	s.finalized = append(s.finalized, e)
	return nil
}
func (s *stubPublisher) PublishStatsEntered(_ context.Context, e events.StatsEntered) error {
	s.stats = append(s.stats, e)
	return nil
}

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock, *stubPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	pub := &stubPublisher{}
	return NewServer(zap.NewNop(), repo.NewPostgres(db), pub), mock, pub
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("X-User-ID", "admin-1")
	req.Header.Set("X-User-Role", "admin")
	return req
}

func TestRouterRejectsUnauthenticated(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/matches/m1/lock", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRouterRejectsNonAdmin(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/matches/m1/lock", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Role", "user")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func expectGetMatch(mock sqlmock.Sqlmock, state string) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, home_team_id, away_team_id, starts_at, state, result_kind, winner_team_id`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_team_id", "away_team_id", "starts_at", "state", "result_kind", "winner_team_id"}).
			AddRow("m1", "TEAM_A", "TEAM_B", time.Now(), state, "", nil))
}

func TestLockPublishesEventOnce(t *testing.T) {
	s, mock, pub := newTestServer(t)

	expectGetMatch(mock, "OPEN")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE matches SET state='LOCKED'`)).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPost, "/matches/m1/lock", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if len(pub.locked) != 1 {
		t.Fatalf("published %d match_locked events, want 1", len(pub.locked))
	}

	// Relock: já travada, nada republicado
	expectGetMatch(mock, "LOCKED")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPost, "/matches/m1/lock", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("relock status = %d", rec.Code)
	}
	if len(pub.locked) != 1 {
		t.Fatalf("relock republished the event: %d", len(pub.locked))
	}
}

func TestFinalizeValidatesResultKind(t *testing.T) {
	s, _, pub := newTestServer(t)

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/matches/m1/finalize",
		jsonBody(`{"resultKind":"MAYBE"}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(pub.finalized) != 0 {
		t.Fatal("invalid result kind must not publish")
	}
}

func TestFinalizeDecidedRequiresWinner(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/matches/m1/finalize",
		jsonBody(`{"resultKind":"DECIDED"}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
