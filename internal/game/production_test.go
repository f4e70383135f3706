package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productionFixture(t *testing.T) (*Content, *Studio, *Calendar, ProductionPlan) {
	t.Helper()
	c := testContent(t)
	cal := NewCalendar(c, rand.New(rand.NewSource(1)))
	studio := NewStudio("Test Pictures", c)

	plan := ProductionPlan{
		Script: approvedScript("Drama", BudgetMid, 60, "serious", "gritty"),
		Cast: []*Actor{{Person: Person{
			ID: "ACT-1", Name: "Lee Park", Fame: 70, Salary: 10, Tags: []string{"serious", "gritty"},
		}}},
		Director: &Director{
			Person:     Person{ID: "DIR-1", Name: "Ana Cole", Fame: 50, Salary: 5},
			GenreFocus: "Drama",
		},
		MonthsAhead: 3,
	}
	return c, studio, cal, plan
}

func TestProductionCostAndQuality(t *testing.T) {
	c, _, _, plan := productionFixture(t)

	assert.Equal(t, 45.0, ProductionCost(c, plan))
	// 60 + 2 overlapping lead tags * 5 + director focus 10
	assert.Equal(t, 80, ProductionQuality(plan))

	plan.Staff = []*StaffMember{
		{Person: Person{ID: "STF-1", Salary: 1}, StaffRole: "Editor"},
		{Person: Person{ID: "STF-2", Salary: 1}, StaffRole: "Marketing Manager"},
	}
	plan.QualityBoost = 25
	assert.Equal(t, 47.0, ProductionCost(c, plan))
	assert.Equal(t, 100, ProductionQuality(plan))

	plan.Script.Quality = 0
	plan.Cast[0].Tags = nil
	plan.Director.GenreFocus = "Horror"
	plan.QualityBoost = 0
	assert.Equal(t, 10, ProductionQuality(plan))
}

func TestProduceMovieInsufficientFunds(t *testing.T) {
	c, studio, cal, plan := productionFixture(t)
	studio.Balance = 40

	m, err := ProduceMovie(c, studio, cal, plan, 1, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, m)
	assert.Equal(t, 40.0, studio.Balance)
	assert.Empty(t, studio.Scheduled)
	assert.Empty(t, studio.Ledger)
}

func TestProduceMovieValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name   string
		mutate func(p *ProductionPlan)
		want   error
	}{
		{"no script", func(p *ProductionPlan) { p.Script = nil }, ErrInvalidArgument},
		{"draft script", func(p *ProductionPlan) { p.Script.Status = ScriptDraft }, ErrNotApproved},
		{"shelved script", func(p *ProductionPlan) { p.Script.Status = ScriptShelved }, ErrNotApproved},
		{"empty cast", func(p *ProductionPlan) { p.Cast = nil }, ErrNoCandidates},
		{"no director", func(p *ProductionPlan) { p.Director = nil }, ErrNoCandidates},
		{"too soon", func(p *ProductionPlan) { p.MonthsAhead = 0 }, ErrInvalidArgument},
		{"too late", func(p *ProductionPlan) { p.MonthsAhead = 13 }, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, studio, cal, plan := productionFixture(t)
			tc.mutate(&plan)
			_, err := ProduceMovie(c, studio, cal, plan, 1, rng)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, c.Finance.StartingBalance, studio.Balance)
			assert.Empty(t, studio.Scheduled)
		})
	}
}

func TestProduceMovieSchedulesRelease(t *testing.T) {
	c, studio, cal, plan := productionFixture(t)
	cal.Date = Date{2025, 11}
	plan.Buzz = 4
	plan.Staff = []*StaffMember{{Person: Person{ID: "STF-9", Salary: 1}, StaffRole: "Marketing Manager"}}

	m, err := ProduceMovie(c, studio, cal, plan, 7, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	assert.Equal(t, Date{2026, 2}, m.ReleaseDate)
	assert.Equal(t, MovieInProduction, m.Status)
	assert.Equal(t, 7+c.Finance.ProductionTurns, m.ProductionEnds)
	assert.Equal(t, ReleaseWide, m.ReleaseStrategy)
	assert.Equal(t, 12+4+3, m.Buzz)
	assert.Equal(t, 46.0, m.Cost)
	assert.Equal(t, 104.0, studio.Balance)
	assert.Equal(t, []*Movie{m}, studio.Scheduled)
	require.Len(t, studio.Ledger, 1)
	assert.Equal(t, TxProduction, studio.Ledger[0].Category)
	assert.Equal(t, -46.0, studio.Ledger[0].Amount)

	// A one-month lead time wraps before the default shoot length.
	plan.MonthsAhead = 1
	m2, err := ProduceMovie(c, studio, cal, plan, 7, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.Equal(t, 8, m2.ProductionEnds)
}

func TestApplyReleasePlan(t *testing.T) {
	c, studio, cal, plan := productionFixture(t)
	m, err := ProduceMovie(c, studio, cal, plan, 1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	err = ApplyReleasePlan(c, studio, cal, m, "Standard", ReleaseLimited)
	require.ErrorIs(t, err, ErrInvalidArgument, "still shooting")

	m.Status = MoviePostProduction
	require.ErrorIs(t, ApplyReleasePlan(c, studio, cal, m, "Viral Stunt", ReleaseWide), ErrInvalidArgument)
	require.ErrorIs(t, ApplyReleasePlan(c, studio, cal, m, "Basic", "Drive-In"), ErrInvalidArgument)

	balance := studio.Balance
	buzz := m.Buzz
	require.NoError(t, ApplyReleasePlan(c, studio, cal, m, "Standard", ReleaseLimited))
	assert.Equal(t, MovieScheduled, m.Status)
	assert.Equal(t, ReleaseLimited, m.ReleaseStrategy)
	assert.Equal(t, 5.0, m.MarketingSpend)
	assert.Equal(t, buzz+10, m.Buzz)
	assert.Equal(t, balance-5, studio.Balance)

	require.ErrorIs(t, ApplyReleasePlan(c, studio, cal, m, "Basic", ReleaseWide), ErrInvalidArgument)
	m.Status = MovieReleased
	require.ErrorIs(t, ApplyReleasePlan(c, studio, cal, m, "Basic", ReleaseWide), ErrAlreadyReleased)
}

func TestApplyReleasePlanInsufficientFunds(t *testing.T) {
	c, studio, cal, plan := productionFixture(t)
	m, err := ProduceMovie(c, studio, cal, plan, 1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	m.Status = MoviePostProduction
	studio.Balance = 9

	require.ErrorIs(t, ApplyReleasePlan(c, studio, cal, m, "Blockbuster", ReleaseWide), ErrInsufficientFunds)
	assert.Equal(t, 9.0, studio.Balance)
	assert.Equal(t, MoviePostProduction, m.Status)

	require.NoError(t, ApplyReleasePlan(c, studio, cal, m, "None", ReleaseStreaming))
	assert.Equal(t, 9.0, studio.Balance)
}
