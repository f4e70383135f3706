/*
Package ledger
File: store.go
Description:
    Sqlite journal of a play session: one row per turn (with the full report
    as JSON), every balance movement and every headline. The journal is
    append-only history for finance and dashboard views, not a save-game.
*/

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"

	"github.com/everforgeworks/reel-empire/internal/game"
)

// ErrNotFound is returned when a requested turn was never journaled.
var ErrNotFound = errors.New("not found")

// Store is the sqlite-backed journal.
type Store struct {
	db      *sql.DB
	log     hclog.Logger
	version int
}

// TurnSummary is the flat row kept for every turn.
type TurnSummary struct {
	Turn          int       `json:"turn"`
	Date          string    `json:"date"`
	Event         string    `json:"event,omitempty"`
	MarketIndex   float64   `json:"market_index"`
	Revenue       float64   `json:"revenue"`
	Expenses      float64   `json:"expenses"`
	BalanceBefore float64   `json:"balance_before"`
	BalanceAfter  float64   `json:"balance_after"`
	Releases      int       `json:"releases"`
	Bankrupt      bool      `json:"bankrupt"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Entry is a journaled transaction.
type Entry struct {
	Turn int `json:"turn"`
	game.Transaction
}

// Headline is a journaled newsfeed line.
type Headline struct {
	Turn int    `json:"turn"`
	Date string `json:"date"`
	Text string `json:"text"`
}

// TxFilter narrows Transactions.
type TxFilter struct {
	Category string
	FromTurn int
	Limit    int
}

// Open opens (creating if needed) the journal at path and applies migrations.
func Open(path string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	version, err := migrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("journal opened", "path", path, "schema", version)
	return &Store{db: db, log: logger, version: version}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Version is the applied schema version.
func (s *Store) Version() int { return s.version }

// RecordTurn journals a turn report. Recording the same turn twice replaces the earlier rows.
func (s *Store) RecordTurn(ctx context.Context, r *game.TurnReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer tx.Rollback()

	// 1. Drop any previous copy of this turn
	for _, tbl := range []string{"headlines", "transactions", "turns"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tbl+" WHERE turn = ?", r.Turn); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	// 2. Turn row
	_, err = tx.ExecContext(ctx, `INSERT INTO turns
		(turn, date, event, market_index, revenue, expenses, balance_before, balance_after, releases, bankrupt, report, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Turn, r.Date.String(), r.Event, r.MarketIndex, r.Revenue, r.Expenses,
		r.BalanceBefore, r.BalanceAfter, len(r.Releases), r.Bankrupt, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert turn %d: %w", r.Turn, err)
	}

	// 3. Transactions and headlines
	for _, t := range r.Transactions {
		_, err := tx.ExecContext(ctx, `INSERT INTO transactions (turn, date, category, description, amount, balance)
			VALUES (?, ?, ?, ?, ?, ?)`, r.Turn, t.Date.String(), t.Category, t.Description, t.Amount, t.Balance)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	for _, h := range r.Newsfeed {
		if _, err := tx.ExecContext(ctx, `INSERT INTO headlines (turn, date, text) VALUES (?, ?, ?)`, r.Turn, r.Date.String(), h); err != nil {
			return fmt.Errorf("insert headline: %w", err)
		}
	}

	// 4. Year-end summary
	if y := r.YearEnd; y != nil {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO year_reports
			(year, releases, box_office, average_quality, best_title, best_gross, earnings, expenses, prestige, balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			y.Year, y.Releases, y.BoxOffice, y.AverageQuality, y.BestTitle, y.BestGross, y.Earnings, y.Expenses, y.Prestige, y.Balance)
		if err != nil {
			return fmt.Errorf("insert year report %d: %w", y.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record tx: %w", err)
	}
	s.log.Debug("turn journaled", "turn", r.Turn, "transactions", len(r.Transactions), "headlines", len(r.Newsfeed))
	return nil
}

// RecentTurns returns up to limit turns, newest first.
func (s *Store) RecentTurns(ctx context.Context, limit int) ([]TurnSummary, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := s.db.QueryContext(ctx, `SELECT turn, date, event, market_index, revenue, expenses,
		balance_before, balance_after, releases, bankrupt, recorded_at
		FROM turns ORDER BY turn DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	out := []TurnSummary{}
	for rows.Next() {
		var t TurnSummary
		if err := rows.Scan(&t.Turn, &t.Date, &t.Event, &t.MarketIndex, &t.Revenue, &t.Expenses,
			&t.BalanceBefore, &t.BalanceAfter, &t.Releases, &t.Bankrupt, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Report returns the full report journaled for a turn.
func (s *Store) Report(ctx context.Context, turn int) (*game.TurnReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM turns WHERE turn = ?`, turn).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: turn %d", ErrNotFound, turn)
	}
	if err != nil {
		return nil, fmt.Errorf("read turn %d: %w", turn, err)
	}
	var r game.TurnReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode turn %d: %w", turn, err)
	}
	return &r, nil
}

// Transactions lists journaled balance movements in recording order.
func (s *Store) Transactions(ctx context.Context, f TxFilter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.FromTurn > 0 {
		where = append(where, "turn >= ?")
		args = append(args, f.FromTurn)
	}
	q := `SELECT turn, date, category, description, amount, balance FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e    Entry
			date string
		)
		if err := rows.Scan(&e.Turn, &date, &e.Category, &e.Description, &e.Amount, &e.Balance); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CategoryTotals sums every journaled transaction per category.
func (s *Store) CategoryTotals(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, SUM(amount) FROM transactions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var (
			cat   string
			total float64
		)
		if err := rows.Scan(&cat, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out[cat] = total
	}
	return out, rows.Err()
}

// Headlines returns up to limit headlines, newest first.
func (s *Store) Headlines(ctx context.Context, limit int) ([]Headline, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT turn, date, text FROM headlines ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query headlines: %w", err)
	}
	defer rows.Close()

	out := []Headline{}
	for rows.Next() {
		var h Headline
		if err := rows.Scan(&h.Turn, &h.Date, &h.Text); err != nil {
			return nil, fmt.Errorf("scan headline: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// YearReports returns every journaled year-end summary, oldest first.
func (s *Store) YearReports(ctx context.Context) ([]game.YearReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year, releases, box_office, average_quality, best_title, best_gross,
		earnings, expenses, prestige, balance FROM year_reports ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("query year reports: %w", err)
	}
	defer rows.Close()

	out := []game.YearReport{}
	for rows.Next() {
		var y game.YearReport
		if err := rows.Scan(&y.Year, &y.Releases, &y.BoxOffice, &y.AverageQuality, &y.BestTitle, &y.BestGross,
			&y.Earnings, &y.Expenses, &y.Prestige, &y.Balance); err != nil {
			return nil, fmt.Errorf("scan year report: %w", err)
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func parseDate(s string) (game.Date, error) {
	var d game.Date
	if _, err := fmt.Sscanf(s, "%d-%d", &d.Year, &d.Month); err != nil {
		return d, fmt.Errorf("invalid journal date %q: %w", s, err)
	}
	return d, nil
}
