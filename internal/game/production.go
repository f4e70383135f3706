/*
Package game
File: production.go
Description:
    The Production scheduler. Turns an approved script plus cast and crew
    into a Movie, charges the production cost up front and reserves a release month.
    Movies then move in_production -> post_production -> scheduled -> released.
*/

package game

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// ProductionPlan is everything ProduceMovie needs.
type ProductionPlan struct {
	Script      *Script
	Cast        []*Actor
	Director    *Director
	Staff       []*StaffMember
	MonthsAhead int

	QualityBoost float64 // Banked task boosts of the people involved
	Buzz         int     // Banked studio buzz
}

// ProductionCost is the budget-class base plus every salary involved.
func ProductionCost(content *Content, plan ProductionPlan) float64 {
	cost := content.Finance.BudgetBase[plan.Script.BudgetClass]
	for _, a := range plan.Cast {
		cost += a.Salary
	}
	if plan.Director != nil {
		cost += plan.Director.Salary
	}
	for _, s := range plan.Staff {
		cost += s.Salary
	}
	return round2(cost)
}

// ProductionQuality applies tag synergy with the lead and the director's genre focus.
func ProductionQuality(plan ProductionPlan) int {
	q := float64(plan.Script.Quality)
	if lead := leadOf(plan.Cast); lead != nil {
		q += 5 * float64(tagOverlap(lead.Tags, plan.Script.Tags))
	}
	if plan.Director != nil && plan.Director.GenreFocus == plan.Script.Genre {
		q += 10
	}
	for _, s := range plan.Staff {
		if s.StaffRole != "Marketing Manager" {
			q++
		}
	}
	q += plan.QualityBoost
	return clampInt(int(math.Round(q)), 10, 100)
}

func leadOf(cast []*Actor) *Actor {
	if len(cast) == 0 {
		return nil
	}
	return cast[0]
}

// ProduceMovie validates the plan, charges the studio and files the new movie
// in studio.Scheduled. The script pool is left alone; the caller removes the script.
// Every failure leaves the studio untouched.
func ProduceMovie(content *Content, studio *Studio, cal *Calendar, plan ProductionPlan, turn int, rng *rand.Rand) (*Movie, error) {
	// 1. Preconditions
	if plan.Script == nil {
		return nil, fmt.Errorf("%w: a script is required", ErrInvalidArgument)
	}
	if plan.Script.Status != ScriptApproved {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotApproved, plan.Script.Title, plan.Script.Status)
	}
	if len(plan.Cast) == 0 {
		return nil, fmt.Errorf("%w: the cast is empty", ErrNoCandidates)
	}
	if plan.Director == nil {
		return nil, fmt.Errorf("%w: no director attached", ErrNoCandidates)
	}
	if plan.MonthsAhead < 1 || plan.MonthsAhead > 12 {
		return nil, fmt.Errorf("%w: release must be 1-12 months ahead, got %d", ErrInvalidArgument, plan.MonthsAhead)
	}

	// 2. Money
	cost := ProductionCost(content, plan)
	if !studio.CanAfford(cost) {
		return nil, fmt.Errorf("%w: production costs %.2f, balance is %.2f", ErrInsufficientFunds, cost, studio.Balance)
	}

	// 3. Build the movie
	s := plan.Script
	buzz := s.Buzz + plan.Buzz
	staff := make(map[string]*StaffMember, len(plan.Staff))
	for _, st := range plan.Staff {
		staff[st.StaffRole] = st
		if st.StaffRole == "Marketing Manager" {
			buzz += 3
		}
	}
	m := &Movie{
		ID:              newID(rng, "MOV"),
		Title:           s.Title,
		Genre:           s.Genre,
		Tags:            slices.Clone(s.Tags),
		Rating:          s.Rating,
		BudgetClass:     s.BudgetClass,
		Quality:         ProductionQuality(plan),
		Cast:            slices.Clone(plan.Cast),
		Director:        plan.Director,
		Writer:          s.Writer,
		Staff:           staff,
		Cost:            cost,
		ReleaseDate:     cal.Date.AddMonths(plan.MonthsAhead),
		ProductionEnds:  turn + min(content.Finance.ProductionTurns, plan.MonthsAhead),
		Status:          MovieInProduction,
		Buzz:            max(0, buzz),
		ReleaseStrategy: ReleaseWide,
		MonthlyRevenue:  []float64{},
	}

	studio.debit(cal.Date, TxProduction, fmt.Sprintf("Production of %s", m.Title), cost)
	studio.Scheduled = append(studio.Scheduled, m)
	return m, nil
}

// ApplyReleasePlan charges a marketing plan and fixes the release strategy.
// Only movies in post-production can be planned.
func ApplyReleasePlan(content *Content, studio *Studio, cal *Calendar, m *Movie, planName string, strategy ReleaseStrategy) error {
	switch m.Status {
	case MovieReleased:
		return fmt.Errorf("%w: %q is already in theaters", ErrAlreadyReleased, m.Title)
	case MovieInProduction:
		return fmt.Errorf("%w: %q is still shooting", ErrInvalidArgument, m.Title)
	case MovieScheduled:
		return fmt.Errorf("%w: %q already has a release plan", ErrInvalidArgument, m.Title)
	}
	plan, ok := content.MarketingPlan(planName)
	if !ok {
		return fmt.Errorf("%w: unknown marketing plan %q", ErrInvalidArgument, planName)
	}
	if _, ok := content.ReleaseStrategies[strategy]; !ok {
		return fmt.Errorf("%w: unknown release strategy %q", ErrInvalidArgument, strategy)
	}
	if !studio.CanAfford(plan.Cost) {
		return fmt.Errorf("%w: %s marketing costs %.2f, balance is %.2f", ErrInsufficientFunds, plan.Name, plan.Cost, studio.Balance)
	}

	if plan.Cost > 0 {
		studio.debit(cal.Date, TxMarketing, fmt.Sprintf("%s marketing for %s", plan.Name, m.Title), plan.Cost)
	}
	m.Buzz += plan.Buzz
	m.MarketingPlan = plan.Name
	m.MarketingSpend = plan.Cost
	m.ReleaseStrategy = strategy
	m.Status = MovieScheduled
	return nil
}

// advanceProductions moves movies whose shoot has wrapped into post-production.
func (g *Game) advanceProductions() []string {
	var news []string
	for _, m := range g.Studio.Scheduled {
		if m.Status == MovieInProduction && g.Turn >= m.ProductionEnds {
			m.Status = MoviePostProduction
			h := fmt.Sprintf("🎞️ %s wrapped filming and entered post-production.", m.Title)
			news = append(news, h)
			g.Studio.AddNews(h)
		}
	}
	return news
}
