/*
Package api
File: handlers.go
Description:
    HTTP handlers for the studio API. Read endpoints expose the studio, the
    market and the calendar; action endpoints map one-to-one onto the game's
    player actions. One mutex serialises every game access: the simulation is
    turn-based and the Game itself is not safe for concurrent use.
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/everforgeworks/reel-empire/internal/game"
	"github.com/everforgeworks/reel-empire/internal/ledger"
)

// Journal records turn reports and serves them back as history.
type Journal interface {
	RecordTurn(ctx context.Context, r *game.TurnReport) error
	RecentTurns(ctx context.Context, limit int) ([]ledger.TurnSummary, error)
	CategoryTotals(ctx context.Context) (map[string]float64, error)
	Headlines(ctx context.Context, limit int) ([]ledger.Headline, error)
	Report(ctx context.Context, turn int) (*game.TurnReport, error)
	Transactions(ctx context.Context, f ledger.TxFilter) ([]ledger.Entry, error)
	YearReports(ctx context.Context) ([]game.YearReport, error)
	Version() int
}

// historyTxLimit caps the transactions returned by GET /api/history.
const historyTxLimit = 200

// Server owns the game session and everything that talks to it.
type Server struct {
	mu      sync.Mutex
	game    *game.Game
	hub     *Hub
	journal Journal // Optional
	log     hclog.Logger
}

// NewServer wraps a game. hub and journal may be nil.
func NewServer(g *game.Game, hub *Hub, journal Journal, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{game: g, hub: hub, journal: journal, log: logger}
}

// Request bodies.
type ScriptRequest struct {
	ScriptID string `json:"script_id"`
}

type AuctionRequest struct {
	ScriptID string  `json:"script_id"`
	Bid      float64 `json:"bid"`
}

type GenerateRequest struct {
	WriterContractID string `json:"writer_contract_id"`
	Source           string `json:"source"`
}

type RewriteRequest struct {
	ScriptID         string `json:"script_id"`
	WriterContractID string `json:"writer_contract_id"`
}

type SignRequest struct {
	Role     game.Role `json:"role"`
	PersonID string    `json:"person_id"`
	Months   int       `json:"months"`
}

type ReleasePlanRequest struct {
	MovieID       string               `json:"movie_id"`
	MarketingPlan string               `json:"marketing_plan"`
	Strategy      game.ReleaseStrategy `json:"strategy"`
}

type TaskRequest struct {
	ContractID string `json:"contract_id"`
	Task       string `json:"task"`
}

// Response bodies.
type CalendarView struct {
	*game.Calendar
	Season         string               `json:"season"`
	CurrentEvent   *game.CalendarEvent  `json:"current_event,omitempty"`
	MarketModifier float64              `json:"market_modifier"`
	HypeIndex      int                  `json:"hype_index"`
	Upcoming       []game.UpcomingEvent `json:"upcoming"`
}

type HistoryView struct {
	SchemaVersion int                  `json:"schema_version"`
	Turns         []ledger.TurnSummary `json:"turns"`
	Totals        map[string]float64   `json:"totals"`
	Headlines     []ledger.Headline    `json:"headlines"`
	Transactions  []ledger.Entry       `json:"transactions"`
	Years         []game.YearReport    `json:"years"`
}

type MarketPulse struct {
	Turn      int     `json:"turn"`
	Balance   float64 `json:"balance"`
	Scripts   int     `json:"scripts"`
	Actors    int     `json:"actors"`
	Writers   int     `json:"writers"`
	Directors int     `json:"directors"`
	Staff     int     `json:"staff"`
}

type SaleResponse struct {
	ScriptID string  `json:"script_id"`
	Price    float64 `json:"price"`
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Get("/market", s.handleGetMarket)
		r.Get("/calendar", s.handleGetCalendar)
		r.Get("/history", s.handleGetHistory)
		r.Get("/history/{turn}", s.handleGetTurnReport)

		r.Post("/turn", s.handleAdvanceTurn)
		r.Route("/scripts", func(r chi.Router) {
			r.Post("/buy", s.handleBuyScript)
			r.Post("/auction", s.handleAuctionScript)
			r.Post("/generate", s.handleGenerateScript)
			r.Post("/rewrite", s.handleRewriteScript)
			r.Post("/finalize", s.handleFinalizeScript)
			r.Post("/shelve", s.handleShelveScript)
			r.Post("/sell", s.handleSellScript)
		})
		r.Post("/talent/sign", s.handleSignTalent)
		r.Post("/productions", s.handleStartProduction)
		r.Post("/movies/release-plan", s.handleReleasePlan)
		r.Post("/tasks/assign", s.handleAssignTask)
	})

	if s.hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.hub, w, r)
		})
	}
	return r
}

// AdvanceTurn simulates one month, journals the report and pushes it to clients.
// Used by POST /api/turn and the auto-tick heartbeat.
func (s *Server) AdvanceTurn(ctx context.Context) (*game.TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.game.AdvanceTurn()
	if err != nil {
		return nil, err
	}

	if s.journal != nil {
		if err := s.journal.RecordTurn(ctx, report); err != nil {
			// A journal gap is logged, never fatal.
			s.log.Error("journal turn", "turn", report.Turn, "error", err)
		}
	}
	if s.hub != nil {
		s.hub.Publish(MsgTurnReport, report)
	}
	s.log.Info("turn advanced", "turn", report.Turn, "date", report.Date.String(),
		"balance", report.BalanceAfter, "releases", len(report.Releases))
	return report, nil
}

// ReloadContent swaps the content tables of the running game. Tables that
// drop something the live session still uses are refused and the old ones stay.
func (s *Server) ReloadContent(c *game.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.game.SetContent(c); err != nil {
		return err
	}
	s.log.Info("content reloaded", "genres", len(c.GenreKeys()))
	return nil
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game)
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.game.Market)
}

func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal := s.game.Calendar
	writeJSON(w, http.StatusOK, CalendarView{
		Calendar:       cal,
		Season:         cal.Season(),
		CurrentEvent:   cal.CurrentEvent(),
		MarketModifier: cal.MarketModifier(),
		HypeIndex:      cal.HypeIndex(),
		Upcoming:       cal.UpcomingEvents(6),
	})
}

// handleGetHistory serves the journal. Optional query parameters narrow the
// transaction list: category (e.g. "box_office") and from (first turn).
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("history journal is disabled"))
		return
	}
	filter := ledger.TxFilter{Category: r.URL.Query().Get("category"), Limit: historyTxLimit}
	if from := r.URL.Query().Get("from"); from != "" {
		n, err := strconv.Atoi(from)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("from must be a positive turn number"))
			return
		}
		filter.FromTurn = n
	}

	ctx := r.Context()
	view := HistoryView{SchemaVersion: s.journal.Version()}
	var err error
	if view.Turns, err = s.journal.RecentTurns(ctx, 24); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if view.Totals, err = s.journal.CategoryTotals(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if view.Headlines, err = s.journal.Headlines(ctx, 50); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if view.Transactions, err = s.journal.Transactions(ctx, filter); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if view.Years, err = s.journal.YearReports(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetTurnReport replays the full report journaled for one turn.
func (s *Server) handleGetTurnReport(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("history journal is disabled"))
		return
	}
	turn, err := strconv.Atoi(chi.URLParam(r, "turn"))
	if err != nil || turn < 1 {
		writeError(w, http.StatusBadRequest, errors.New("turn must be a positive number"))
		return
	}
	report, err := s.journal.Report(r.Context(), turn)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAdvanceTurn(w http.ResponseWriter, r *http.Request) {
	report, err := s.AdvanceTurn(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBuyScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.BuyScript(req.ScriptID) })
}

func (s *Server) handleAuctionScript(w http.ResponseWriter, r *http.Request) {
	var req AuctionRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.AuctionScript(req.ScriptID, req.Bid) })
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.GenerateScript(req.WriterContractID, req.Source) })
}

func (s *Server) handleRewriteScript(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.RewriteScript(req.ScriptID, req.WriterContractID) })
}

func (s *Server) handleFinalizeScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.FinalizeScript(req.ScriptID) })
}

func (s *Server) handleShelveScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.ShelveScript(req.ScriptID) })
}

func (s *Server) handleSellScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) {
		price, err := g.SellScript(req.ScriptID)
		if err != nil {
			return nil, err
		}
		return SaleResponse{ScriptID: req.ScriptID, Price: price}, nil
	})
}

func (s *Server) handleSignTalent(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.SignTalent(req.Role, req.PersonID, req.Months) })
}

func (s *Server) handleStartProduction(w http.ResponseWriter, r *http.Request) {
	var req game.ProductionRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.StartProduction(req) })
}

func (s *Server) handleReleasePlan(w http.ResponseWriter, r *http.Request) {
	var req ReleasePlanRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) {
		return g.SetMarketingAndRelease(req.MovieID, req.MarketingPlan, req.Strategy)
	})
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decode(w, r, &req) {
		return
	}
	s.act(w, func(g *game.Game) (any, error) { return g.AssignTask(req.ContractID, req.Task) })
}

// act runs one player action under the game lock, writes its result and, on
// success, pushes a market pulse.
func (s *Server) act(w http.ResponseWriter, fn func(g *game.Game) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := fn(s.game)
	if err != nil {
		s.log.Debug("action refused", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(MsgMarketPulse, s.pulse())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) pulse() MarketPulse {
	m := s.game.Market
	return MarketPulse{
		Turn:      s.game.Turn,
		Balance:   s.game.Studio.Balance,
		Scripts:   len(m.Scripts),
		Actors:    len(m.Actors),
		Writers:   len(m.Writers),
		Directors: len(m.Directors),
		Staff:     len(m.Staff),
	}
}

// statusFor maps a game failure onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyBusy),
		errors.Is(err, game.ErrAlreadyApproved),
		errors.Is(err, game.ErrAlreadyReleased),
		errors.Is(err, game.ErrBankrupt):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("malformed request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

// corsMiddleware lets a dashboard on another origin talk to the server.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
