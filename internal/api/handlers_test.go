package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/reel-empire/internal/game"
	"github.com/everforgeworks/reel-empire/internal/ledger"
)

type fixture struct {
	srv  *Server
	game *game.Game
	hub  *Hub
	http *httptest.Server
}

func newFixture(t *testing.T, withJournal bool) *fixture {
	t.Helper()
	content, err := game.DefaultContent()
	require.NoError(t, err)
	g := game.NewGame(content, rand.New(rand.NewSource(7)), hclog.NewNullLogger(), game.Options{StudioName: "Test Pictures"})

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	var journal Journal
	if withJournal {
		store, err := ledger.Open(filepath.Join(t.TempDir(), "reel.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		journal = store
	}

	srv := NewServer(g, hub, journal, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &fixture{srv: srv, game: g, hub: hub, http: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, f.http.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func errorText(t *testing.T, body []byte) string {
	t.Helper()
	var e map[string]string
	require.NoError(t, json.Unmarshal(body, &e))
	return e["error"]
}

func TestGetState(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, status)

	var state struct {
		Turn   int `json:"turn"`
		Studio struct {
			Name    string  `json:"name"`
			Balance float64 `json:"balance"`
		} `json:"studio"`
		Rivals []json.RawMessage `json:"rivals"`
	}
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 0, state.Turn)
	assert.Equal(t, "Test Pictures", state.Studio.Name)
	assert.Equal(t, 150.0, state.Studio.Balance)
	assert.Len(t, state.Rivals, 3)
}

func TestGetMarketAndCalendar(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodGet, "/api/market", nil)
	require.Equal(t, http.StatusOK, status)
	var market game.MarketPool
	require.NoError(t, json.Unmarshal(body, &market))
	assert.Len(t, market.Scripts, len(f.game.Market.Scripts))

	status, body = f.do(t, http.MethodGet, "/api/calendar", nil)
	require.Equal(t, http.StatusOK, status)
	var cal struct {
		Year     int                  `json:"year"`
		Month    int                  `json:"month"`
		Season   string               `json:"season"`
		Trending []string             `json:"trending"`
		Upcoming []game.UpcomingEvent `json:"upcoming"`
	}
	require.NoError(t, json.Unmarshal(body, &cal))
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 1, cal.Month)
	assert.Equal(t, "winter", cal.Season)
	assert.Len(t, cal.Trending, 2)
	assert.NotEmpty(t, cal.Upcoming)
}

func TestBuyScript(t *testing.T) {
	f := newFixture(t, false)
	s := f.game.Market.Scripts[0]
	f.game.Studio.Balance = 1000

	status, body := f.do(t, http.MethodPost, "/api/scripts/buy", ScriptRequest{ScriptID: s.ID})
	require.Equal(t, http.StatusOK, status, string(body))
	var bought game.Script
	require.NoError(t, json.Unmarshal(body, &bought))
	assert.Equal(t, s.ID, bought.ID)
	assert.InDelta(t, 1000-s.Value, f.game.Studio.Balance, 1e-9)

	// Gone from the market now.
	status, body = f.do(t, http.MethodPost, "/api/scripts/buy", ScriptRequest{ScriptID: s.ID})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, errorText(t, body), "not found")
}

func TestBuyScriptInsufficientFunds(t *testing.T) {
	f := newFixture(t, false)
	s := f.game.Market.Scripts[0]
	require.Greater(t, s.Value, 0.0)
	f.game.Studio.Balance = 0
	before := len(f.game.Market.Scripts)

	status, body := f.do(t, http.MethodPost, "/api/scripts/buy", ScriptRequest{ScriptID: s.ID})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Contains(t, errorText(t, body), "insufficient funds")
	assert.Len(t, f.game.Market.Scripts, before)
	assert.Equal(t, 0.0, f.game.Studio.Balance)
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodPost, "/api/scripts/buy", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "malformed request body", errorText(t, body))
}

func TestSignTalentAndAssignTask(t *testing.T) {
	f := newFixture(t, false)
	writer := f.game.Market.Writers[0]

	status, body := f.do(t, http.MethodPost, "/api/talent/sign", SignRequest{Role: game.RoleWriter, PersonID: writer.ID, Months: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, status, string(body))

	status, body = f.do(t, http.MethodPost, "/api/talent/sign", SignRequest{Role: game.RoleWriter, PersonID: writer.ID, Months: 12})
	require.Equal(t, http.StatusOK, status, string(body))
	var contract struct {
		ID        string `json:"id"`
		Remaining int    `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(body, &contract))
	assert.Equal(t, 12, contract.Remaining)

	status, body = f.do(t, http.MethodPost, "/api/tasks/assign", TaskRequest{ContractID: contract.ID, Task: "Ghostwriting"})
	require.Equal(t, http.StatusOK, status, string(body))

	// Busy writers cannot take a second task.
	status, _ = f.do(t, http.MethodPost, "/api/tasks/assign", TaskRequest{ContractID: contract.ID, Task: "Ghostwriting"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(t, http.MethodPost, "/api/tasks/assign", TaskRequest{ContractID: "CON-missing", Task: "Ghostwriting"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdvanceTurnJournalsAndServesHistory(t *testing.T) {
	f := newFixture(t, true)

	for i := 1; i <= 2; i++ {
		status, body := f.do(t, http.MethodPost, "/api/turn", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		var report game.TurnReport
		require.NoError(t, json.Unmarshal(body, &report))
		assert.Equal(t, i, report.Turn)
	}

	status, body := f.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var history HistoryView
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history.Turns, 2)
	assert.Equal(t, 2, history.Turns[0].Turn)
	assert.Contains(t, history.Totals, game.TxOverhead)
	assert.NotNil(t, history.Headlines)
}

func TestHistoryReportsAndFilters(t *testing.T) {
	f := newFixture(t, true)
	for i := 0; i < 12; i++ {
		status, body := f.do(t, http.MethodPost, "/api/turn", nil)
		require.Equal(t, http.StatusOK, status, string(body))
	}

	status, body := f.do(t, http.MethodGet, "/api/history/3", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var report game.TurnReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 3, report.Turn)
	assert.Equal(t, game.Date{Year: 2025, Month: 4}, report.Date)

	status, body = f.do(t, http.MethodGet, "/api/history/99", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, errorText(t, body), "turn 99")
	status, _ = f.do(t, http.MethodGet, "/api/history/zero", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodGet, "/api/history?category="+game.TxOverhead+"&from=6", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var history HistoryView
	require.NoError(t, json.Unmarshal(body, &history))
	assert.Equal(t, 2, history.SchemaVersion)
	require.NotEmpty(t, history.Transactions)
	for _, e := range history.Transactions {
		assert.Equal(t, game.TxOverhead, e.Category)
		assert.GreaterOrEqual(t, e.Turn, 6)
	}
	require.Len(t, history.Years, 1)
	assert.Equal(t, 2025, history.Years[0].Year)

	status, _ = f.do(t, http.MethodGet, "/api/history?from=soon", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHistoryWithoutJournal(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "history journal is disabled", errorText(t, body))
}

// contentWithout returns default content with a rating removed everywhere.
func contentWithout(t *testing.T, rating string) *game.Content {
	t.Helper()
	c, err := game.DefaultContent()
	require.NoError(t, err)
	delete(c.Ratings, rating)
	for name, info := range c.Genres {
		var kept []string
		for _, r := range info.AllowedRatings {
			if r != rating {
				kept = append(kept, r)
			}
		}
		info.AllowedRatings = kept
		c.Genres[name] = info
	}
	return c
}

func scheduleNC17(f *fixture) {
	f.game.Studio.Scheduled = append(f.game.Studio.Scheduled, &game.Movie{
		ID: "MOV-1", Title: "Night Shift", Genre: "Horror", Rating: "NC-17", Quality: 60,
		Cast:            []*game.Actor{{Person: game.Person{Name: "Kai Moss", Fame: 50}}},
		Director:        &game.Director{Person: game.Person{Name: "Jo Vance", Fame: 40}},
		ReleaseDate:     f.game.Calendar.Date.AddMonths(1),
		Status:          game.MovieScheduled,
		ReleaseStrategy: game.ReleaseWide,
	})
}

// get issues a GET that gives up quickly instead of hanging on a held lock.
func (f *fixture) get(t *testing.T, path string) int {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(f.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestReloadRefusesContentInUse(t *testing.T) {
	f := newFixture(t, false)
	scheduleNC17(f)
	before := f.game.Content

	err := f.srv.ReloadContent(contentWithout(t, "NC-17"))
	require.ErrorIs(t, err, game.ErrInvalidContent)
	assert.Same(t, before, f.game.Content)

	status, body := f.do(t, http.MethodPost, "/api/turn", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var report game.TurnReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Contains(t, report.Releases, "Night Shift")
	assert.Equal(t, http.StatusOK, f.get(t, "/api/state"))

	c, err := game.DefaultContent()
	require.NoError(t, err)
	require.NoError(t, f.srv.ReloadContent(c))
	assert.Same(t, c, f.game.Content)
}

func TestFailedTurnReleasesLock(t *testing.T) {
	f := newFixture(t, false)
	scheduleNC17(f)
	// Bypass the reload check so the release trips over the missing rating.
	f.game.Content = contentWithout(t, "NC-17")

	status, _ := f.do(t, http.MethodPost, "/api/turn", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, http.StatusOK, f.get(t, "/api/state"))
}

func TestAdvanceTurnBankrupt(t *testing.T) {
	f := newFixture(t, false)
	f.game.Studio.Balance = -1

	status, body := f.do(t, http.MethodPost, "/api/turn", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, errorText(t, body), "bankrupt")
	assert.Equal(t, 0, f.game.Turn)
}

func TestReleasePlanUnknownMovie(t *testing.T) {
	f := newFixture(t, false)

	status, _ := f.do(t, http.MethodPost, "/api/movies/release-plan",
		ReleasePlanRequest{MovieID: "MOV-missing", MarketingPlan: "Basic", Strategy: game.ReleaseWide})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, false)

	status, _ := f.do(t, http.MethodOptions, "/api/turn", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, f.game.Turn)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{game.ErrInsufficientFunds, http.StatusPaymentRequired},
		{game.ErrNotFound, http.StatusNotFound},
		{game.ErrAlreadyBusy, http.StatusConflict},
		{game.ErrAlreadyApproved, http.StatusConflict},
		{game.ErrAlreadyReleased, http.StatusConflict},
		{game.ErrBankrupt, http.StatusConflict},
		{game.ErrNotApproved, http.StatusUnprocessableEntity},
		{game.ErrNoCandidates, http.StatusUnprocessableEntity},
		{game.ErrUnknownTask, http.StatusUnprocessableEntity},
		{game.ErrInvalidArgument, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("%w: detail", tc.err)
		assert.Equal(t, tc.want, statusFor(wrapped), tc.err.Error())
	}
}

func TestTurnReportBroadcast(t *testing.T) {
	f := newFixture(t, false)

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	status, _ := f.do(t, http.MethodPost, "/api/turn", nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string          `json:"type"`
		Payload game.TurnReport `json:"payload"`
		Sender  string          `json:"sender"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgTurnReport, msg.Type)
	assert.Equal(t, "system", msg.Sender)
	assert.Equal(t, 1, msg.Payload.Turn)
}

func TestMarketPulseAfterAction(t *testing.T) {
	f := newFixture(t, false)
	f.game.Studio.Balance = 1000

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	before := len(f.game.Market.Scripts)
	status, _ := f.do(t, http.MethodPost, "/api/scripts/buy", ScriptRequest{ScriptID: f.game.Market.Scripts[0].ID})
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string      `json:"type"`
		Payload MarketPulse `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgMarketPulse, msg.Type)
	assert.Equal(t, before-1, msg.Payload.Scripts)
}
