package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameDefaults(t *testing.T) {
	g := NewGame(testContent(t), nil, nil, Options{})
	assert.Equal(t, "Reel Empire Pictures", g.Studio.Name)
	assert.Equal(t, ExpiryRetire, g.Options.ExpiryPolicy)
	assert.Equal(t, 150.0, g.Studio.Balance)
	assert.Equal(t, Date{2025, 1}, g.Calendar.Date)
	assert.Len(t, g.Rivals, 3)
	assert.NotNil(t, g.Logger())
}

func TestAdvanceTurnIsDeterministic(t *testing.T) {
	a := newTestGame(t, 99)
	b := newTestGame(t, 99)

	for i := 0; i < 24; i++ {
		ra, err := a.AdvanceTurn()
		require.NoError(t, err)
		rb, err := b.AdvanceTurn()
		require.NoError(t, err)
		require.Equal(t, ra, rb, "turn %d", i+1)
	}
	assert.Equal(t, a.Studio.Balance, b.Studio.Balance)
	assert.Equal(t, len(a.Market.Scripts), len(b.Market.Scripts))
}

func TestAdvanceTurnReport(t *testing.T) {
	g := newTestGame(t, 12)
	con := signAny(t, g, RoleWriter)
	g.TakeTransactions()

	r, err := g.AdvanceTurn()
	require.NoError(t, err)

	assert.Equal(t, 1, r.Turn)
	assert.Equal(t, Date{2025, 2}, r.Date)
	assert.Equal(t, 2, r.NewScripts)
	assert.Equal(t, round2(con.Salary+g.Content.Finance.MonthlyOverhead), r.Expenses)
	assert.Equal(t, 35, con.Remaining)

	// Every balance movement of the turn is in the report.
	sum := 0.0
	for _, tx := range r.Transactions {
		sum += tx.Amount
	}
	assert.InDelta(t, r.BalanceAfter-r.BalanceBefore, sum, 1e-6)
	assert.Equal(t, g.Studio.Balance, r.BalanceAfter)

	n := len(r.Newsfeed)
	assert.Equal(t, g.Studio.Newsfeed[len(g.Studio.Newsfeed)-n:], r.Newsfeed)
}

func TestAdvanceTurnYearEnd(t *testing.T) {
	g := newTestGame(t, 13)
	var last *TurnReport
	for i := 0; i < 11; i++ {
		r, err := g.AdvanceTurn()
		require.NoError(t, err)
		if i < 10 {
			assert.Nil(t, r.YearEnd)
		}
		last = r
	}
	assert.Equal(t, Date{2025, 12}, last.Date)
	require.NotNil(t, last.YearEnd)
	assert.Equal(t, 2025, last.YearEnd.Year)

	r, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.Equal(t, Date{2026, 1}, r.Date)
	assert.Equal(t, 2026, g.Calendar.EventsYear)
	assert.Equal(t, "Awards Season", r.Event)
}

func TestAdvanceTurnBankrupt(t *testing.T) {
	g := newTestGame(t, 14)
	g.Studio.Balance = 0.5
	g.Content.Finance.MonthlyOverhead = 50

	r, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.True(t, r.Bankrupt)

	_, err = g.AdvanceTurn()
	assert.ErrorIs(t, err, ErrBankrupt)
	assert.Equal(t, 1, g.Turn)
}

func TestNewsfeedIsTrimmed(t *testing.T) {
	g := newTestGame(t, 15)
	for i := 0; i < 80; i++ {
		g.Studio.AddNews("headline")
	}
	assert.Len(t, g.Studio.Newsfeed, g.Content.Finance.NewsfeedLimit)

	start := g.Studio.newsTotal
	g.Studio.AddNews("fresh")
	assert.Equal(t, []string{"fresh"}, g.newsSince(start))
}

func TestSetContentKeepsState(t *testing.T) {
	g := newTestGame(t, 16)
	_, err := g.AdvanceTurn()
	require.NoError(t, err)
	date := g.Calendar.Date

	c := testContent(t)
	c.Finance.NewsfeedLimit = 5
	require.NoError(t, g.SetContent(c))
	assert.Same(t, c, g.Content)
	assert.Equal(t, date, g.Calendar.Date)

	for i := 0; i < 10; i++ {
		g.Studio.AddNews("x")
	}
	assert.Len(t, g.Studio.Newsfeed, 5)
}

// withoutRating returns fresh default content with a rating removed everywhere.
func withoutRating(t *testing.T, rating string) *Content {
	t.Helper()
	c := testContent(t)
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
	require.NoError(t, c.validate())
	return c
}

func TestSetContentRejectsDroppedReferences(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(g *Game)
		reload func(t *testing.T) *Content
	}{
		{
			name: "scheduled movie rating",
			setup: func(g *Game) {
				g.Studio.Scheduled = append(g.Studio.Scheduled, &Movie{
					ID: "MOV-1", Title: "Night Shift", Genre: "Horror", Rating: "NC-17",
					ReleaseDate: g.Calendar.Date.AddMonths(1), Status: MovieScheduled,
				})
			},
			reload: func(t *testing.T) *Content { return withoutRating(t, "NC-17") },
		},
		{
			name: "released movie strategy",
			setup: func(g *Game) {
				g.Studio.Released = append(g.Studio.Released, &Movie{
					ID: "MOV-2", Title: "Long Road", Genre: "Drama", Rating: "PG-13",
					ReleaseStrategy: ReleaseStreaming, Status: MovieReleased,
				})
			},
			reload: func(t *testing.T) *Content {
				c := testContent(t)
				delete(c.ReleaseStrategies, ReleaseStreaming)
				return c
			},
		},
		{
			name: "library script genre",
			setup: func(g *Game) {
				g.Studio.Library = append(g.Studio.Library, &Script{ID: "SCR-1", Title: "Ghost Town", Genre: "Western", Rating: "PG-13"})
			},
			reload: func(t *testing.T) *Content {
				c := testContent(t)
				c.Genres["Outlaws"] = c.Genres["Western"]
				delete(c.Genres, "Western")
				return c
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, 21)
			// Keep the market and rivals out of the way.
			g.Market.Scripts = nil
			for _, r := range g.Rivals {
				r.Scripts = nil
			}
			g.Calendar.Trending = []string{"Drama"}
			g.Calendar.Forecast = []string{"Drama"}
			tt.setup(g)
			before := g.Content

			err := g.SetContent(tt.reload(t))
			assert.ErrorIs(t, err, ErrInvalidContent)
			assert.Same(t, before, g.Content, "content must stay untouched on error")
		})
	}
}

func TestSetContentRefusalKeepsTurnsRunning(t *testing.T) {
	g := newTestGame(t, 22)
	g.Studio.Scheduled = append(g.Studio.Scheduled, &Movie{
		ID: "MOV-1", Title: "Night Shift", Genre: "Horror", Rating: "NC-17", Quality: 60,
		Cast:            []*Actor{{Person: Person{Name: "Kai Moss", Fame: 50}}},
		Director:        &Director{Person: Person{Name: "Jo Vance", Fame: 40}},
		ReleaseDate:     g.Calendar.Date.AddMonths(1),
		Status:          MovieScheduled,
		ReleaseStrategy: ReleaseWide,
	})

	require.ErrorIs(t, g.SetContent(withoutRating(t, "NC-17")), ErrInvalidContent)
	report, err := g.AdvanceTurn()
	require.NoError(t, err)
	assert.Contains(t, report.Releases, "Night Shift")
}
