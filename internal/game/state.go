/*
Package game
File: state.go
Description:
    Manages the runtime state of one play session.
    A Game bundles the calendar, the shared market, the player's studio
    and the rivals, plus the single RNG stream every subsystem draws from.
    There are no package globals: callers own the Game and serialise access.

    AdvanceTurn runs every subsystem to completion in a fixed order.
*/

package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Options configure a new Game.
type Options struct {
	StudioName   string
	ExpiryPolicy ExpiryPolicy
}

// Game is the explicit context object passed to every operation.
type Game struct {
	Content  *Content       `json:"-"`
	Calendar *Calendar      `json:"calendar"`
	Market   *MarketPool    `json:"market"`
	Studio   *Studio        `json:"studio"`
	Rivals   []*RivalStudio `json:"rivals"`
	Options  Options        `json:"options"`
	Turn     int            `json:"turn"`

	rng        *rand.Rand
	log        hclog.Logger
	ledgerMark int
}

// TurnReport summarises one call to AdvanceTurn.
type TurnReport struct {
	Turn          int           `json:"turn"`
	Date          Date          `json:"date"`
	Event         string        `json:"event,omitempty"`
	Trending      []string      `json:"trending"`
	MarketIndex   float64       `json:"market_index"`
	Newsfeed      []string      `json:"newsfeed"`
	Releases      []string      `json:"releases"`
	Expired       []string      `json:"expired"`
	TaskResults   []TaskResult  `json:"task_results"`
	RivalActions  []string      `json:"rival_actions"`
	NewScripts    int           `json:"new_scripts"`
	Revenue       float64       `json:"revenue"`
	Expenses      float64       `json:"expenses"`
	BalanceBefore float64       `json:"balance_before"`
	BalanceAfter  float64       `json:"balance_after"`
	Transactions  []Transaction `json:"transactions"` // Balance movements since the previous report
	YearEnd       *YearReport   `json:"year_end,omitempty"`
	Bankrupt      bool          `json:"bankrupt"`
}

// NewGame sets up a fresh session. The RNG is injected so seeded runs replay exactly.
func NewGame(content *Content, rng *rand.Rand, logger hclog.Logger, opts Options) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.StudioName == "" {
		opts.StudioName = "Reel Empire Pictures"
	}
	if opts.ExpiryPolicy == "" {
		opts.ExpiryPolicy = ExpiryRetire
	}

	g := &Game{
		Content: content,
		Options: opts,
		rng:     rng,
		log:     logger,
	}
	g.Calendar = NewCalendar(content, rng)
	g.Market = NewMarketPool(content, g.Calendar, rng)
	g.Studio = NewStudio(opts.StudioName, content)
	g.Rivals = NewRivals(content)

	g.log.Info("new game", "studio", opts.StudioName, "date", g.Calendar.Date.String(),
		"balance", g.Studio.Balance, "trending", g.Calendar.Trending)
	return g
}

// SetContent swaps the content tables, e.g. after a reload. State already
// generated is kept, so the new tables must still define every genre, rating
// and release strategy that live scripts and movies use. On error nothing changes.
func (g *Game) SetContent(c *Content) error {
	if err := g.checkContent(c); err != nil {
		return err
	}
	g.Content = c
	g.Calendar.setContent(c)
	g.Studio.newsLimit = c.Finance.NewsfeedLimit
	return nil
}

// checkContent reports the first live reference c cannot resolve.
func (g *Game) checkContent(c *Content) error {
	script := func(s *Script) error {
		if _, ok := c.Genres[s.Genre]; !ok {
			return fmt.Errorf("%w: script %q uses dropped genre %q", ErrInvalidContent, s.Title, s.Genre)
		}
		if _, ok := c.Ratings[s.Rating]; !ok {
			return fmt.Errorf("%w: script %q uses dropped rating %q", ErrInvalidContent, s.Title, s.Rating)
		}
		return nil
	}
	movie := func(m *Movie) error {
		if _, ok := c.Genres[m.Genre]; !ok {
			return fmt.Errorf("%w: movie %q uses dropped genre %q", ErrInvalidContent, m.Title, m.Genre)
		}
		if _, ok := c.Ratings[m.Rating]; !ok {
			return fmt.Errorf("%w: movie %q uses dropped rating %q", ErrInvalidContent, m.Title, m.Rating)
		}
		if m.ReleaseStrategy != "" {
			if _, ok := c.ReleaseStrategies[m.ReleaseStrategy]; !ok {
				return fmt.Errorf("%w: movie %q uses dropped release strategy %q", ErrInvalidContent, m.Title, m.ReleaseStrategy)
			}
		}
		return nil
	}

	scripts := [][]*Script{g.Studio.Scripts, g.Studio.Library, g.Market.Scripts}
	for _, r := range g.Rivals {
		scripts = append(scripts, r.Scripts)
	}
	for _, list := range scripts {
		for _, s := range list {
			if err := script(s); err != nil {
				return err
			}
		}
	}
	for _, list := range [][]*Movie{g.Studio.Scheduled, g.Studio.Released} {
		for _, m := range list {
			if err := movie(m); err != nil {
				return err
			}
		}
	}
	for _, genre := range append(append([]string(nil), g.Calendar.Trending...), g.Calendar.Forecast...) {
		if _, ok := c.Genres[genre]; !ok {
			return fmt.Errorf("%w: trending genre %q was dropped", ErrInvalidContent, genre)
		}
	}
	return nil
}

// Logger returns the game's logger.
func (g *Game) Logger() hclog.Logger { return g.log }

// AdvanceTurn simulates one month.
func (g *Game) AdvanceTurn() (*TurnReport, error) {
	if g.Studio.Bankrupt() {
		return nil, fmt.Errorf("%w: balance %.2f", ErrBankrupt, g.Studio.Balance)
	}

	report := &TurnReport{BalanceBefore: g.Studio.Balance}
	newsStart := g.Studio.newsTotal
	g.Turn++

	// 1. Calendar
	g.Calendar.Advance(g.rng)
	if g.Calendar.Month == 1 {
		g.ageTalent()
	}

	// 2. Market refresh and repricing
	report.NewScripts = g.Market.Refresh(g.Content, g.Calendar, g.rng)
	g.Market.AdjustPrices(g.Content, g.Calendar)

	// 3. Rivals act before the player sees the pool
	report.RivalActions = RivalsAct(g.Content, g.Calendar, g.Market, g.Rivals, g.rng)
	for _, h := range report.RivalActions {
		g.Studio.AddNews(h)
	}

	// 4. Productions wrap, scheduled movies open
	g.advanceProductions()
	for _, m := range g.releaseMovies() {
		report.Releases = append(report.Releases, m.Title)
	}

	// 5. Money
	report.Revenue = g.updateRevenue()
	report.Expenses = g.Studio.payMonthly(g.Content, g.Calendar.Date)

	// 6. Tasks, random events, contract countdown
	report.TaskResults = g.progressTasks()
	g.rollEvents()
	report.Expired = g.renewContracts()

	// 7. Prices reflect what rivals left behind
	g.Market.AdjustPrices(g.Content, g.Calendar)

	if g.Calendar.Month == 12 {
		yr := g.Studio.YearReport(g.Calendar.Year)
		report.YearEnd = &yr
		g.Studio.AddNews(fmt.Sprintf("📅 %d wrapped: %d release(s), %.2fM at the box office.", yr.Year, yr.Releases, yr.BoxOffice))
	}

	report.Turn = g.Turn
	report.Date = g.Calendar.Date
	if e := g.Calendar.CurrentEvent(); e != nil {
		report.Event = e.Name
	}
	report.Trending = append([]string(nil), g.Calendar.Trending...)
	report.MarketIndex = g.Calendar.MarketIndex
	report.Newsfeed = g.newsSince(newsStart)
	report.Transactions = g.TakeTransactions()
	report.BalanceAfter = g.Studio.Balance
	report.Bankrupt = g.Studio.Bankrupt()
	if report.Bankrupt {
		g.log.Warn("studio bankrupt", "turn", g.Turn, "balance", g.Studio.Balance)
	}

	g.log.Debug("turn complete", "turn", g.Turn, "date", report.Date.String(),
		"revenue", report.Revenue, "expenses", report.Expenses, "balance", report.BalanceAfter)
	return report, nil
}

// TakeTransactions returns the balance movements recorded since the last call.
func (g *Game) TakeTransactions() []Transaction {
	if g.ledgerMark > len(g.Studio.Ledger) {
		g.ledgerMark = len(g.Studio.Ledger)
	}
	out := append([]Transaction(nil), g.Studio.Ledger[g.ledgerMark:]...)
	g.ledgerMark = len(g.Studio.Ledger)
	return out
}

// newsSince returns the headlines added after the feed had seen start entries in total.
func (g *Game) newsSince(start int) []string {
	feed := g.Studio.Newsfeed
	n := min(g.Studio.newsTotal-start, len(feed))
	return append([]string(nil), feed[len(feed)-n:]...)
}

// ageTalent makes everyone one year older each January.
func (g *Game) ageTalent() {
	g.Market.Age()
	for _, c := range g.Studio.Contracts.All() {
		switch p := c.Person.(type) {
		case *StaffMember:
			p.Experience++
		default:
			p.Base().Age++
		}
	}
}
