package ledger

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/reel-empire/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal", "reel.db"), hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(turn int) *game.TurnReport {
	date := game.Date{Year: 2025, Month: 1}.AddMonths(turn)
	return &game.TurnReport{
		Turn:          turn,
		Date:          date,
		Event:         "Awards Season",
		MarketIndex:   101.5,
		Newsfeed:      []string{"headline one", "headline two"},
		Releases:      []string{"Salt and Ash"},
		Revenue:       12.5,
		Expenses:      3,
		BalanceBefore: 100,
		BalanceAfter:  109.5,
		Transactions: []game.Transaction{
			{Date: date, Category: game.TxBoxOffice, Description: "Box office: Salt and Ash", Amount: 12.5, Balance: 112.5},
			{Date: date, Category: game.TxOverhead, Description: "Studio overhead", Amount: -3, Balance: 109.5},
		},
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reel.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Version())
	require.NoError(t, s.Close())

	// Reopening is a no-op migration.
	s, err = Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Version())
	require.NoError(t, s.Close())
}

func TestRecordTurnRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordTurn(ctx, sampleReport(1)))
	require.NoError(t, s.RecordTurn(ctx, sampleReport(2)))

	turns, err := s.RecentTurns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 2, turns[0].Turn)
	assert.Equal(t, "2025-03", turns[0].Date)
	assert.Equal(t, 1, turns[0].Releases)
	assert.Equal(t, 109.5, turns[0].BalanceAfter)
	assert.False(t, turns[0].Bankrupt)

	r, err := s.Report(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleReport(1).Newsfeed, r.Newsfeed)
	assert.Equal(t, game.Date{Year: 2025, Month: 2}, r.Date)

	_, err = s.Report(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordTurnReplacesSameTurn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordTurn(ctx, sampleReport(1)))
	require.NoError(t, s.RecordTurn(ctx, sampleReport(1)))

	entries, err := s.Transactions(ctx, TxFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	heads, err := s.Headlines(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, heads, 2)
}

func TestTransactionsAndTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for turn := 1; turn <= 3; turn++ {
		require.NoError(t, s.RecordTurn(ctx, sampleReport(turn)))
	}

	all, err := s.Transactions(ctx, TxFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, 1, all[0].Turn)
	assert.Equal(t, game.Date{Year: 2025, Month: 2}, all[0].Date)

	office, err := s.Transactions(ctx, TxFilter{Category: game.TxBoxOffice, FromTurn: 2})
	require.NoError(t, err)
	require.Len(t, office, 2)
	assert.Equal(t, 2, office[0].Turn)

	limited, err := s.Transactions(ctx, TxFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	totals, err := s.CategoryTotals(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 37.5, totals[game.TxBoxOffice], 1e-9)
	assert.InDelta(t, -9, totals[game.TxOverhead], 1e-9)

	heads, err := s.Headlines(ctx, 1)
	require.NoError(t, err)
	require.Len(t, heads, 1)
	assert.Equal(t, 3, heads[0].Turn)
	assert.Equal(t, "headline two", heads[0].Text)
}

func TestYearReportsFromSimulation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	content, err := game.DefaultContent()
	require.NoError(t, err)
	g := game.NewGame(content, rand.New(rand.NewSource(1)), hclog.NewNullLogger(), game.Options{})
	for i := 0; i < 12; i++ {
		r, err := g.AdvanceTurn()
		require.NoError(t, err)
		require.NoError(t, s.RecordTurn(ctx, r))
	}

	years, err := s.YearReports(ctx)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, 2025, years[0].Year)

	turns, err := s.RecentTurns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 12)
}
