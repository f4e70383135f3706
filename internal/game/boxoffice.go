/*
Package game
File: boxoffice.go
Description:
    The Box-office revenue simulator.
    1. At release, computes the total revenue potential of a movie and spreads
       it across a strategy-shaped monthly curve.
    2. Each month, pays out one slice of every active curve.

    Money is rounded to cents where it is computed and never re-rounded.
*/

package game

import (
	"fmt"
	"math"
	"math/rand"
)

// RevenueProjection is the breakdown of a release's revenue potential.
type RevenueProjection struct {
	Base           float64   `json:"base"`
	TalentBoost    float64   `json:"talent_boost"`
	TrendBonus     float64   `json:"trend_bonus"`
	MarketingBoost float64   `json:"marketing_boost"`
	Seasonal       float64   `json:"seasonal"`
	RatingCap      float64   `json:"rating_cap"`
	DistMultiplier float64   `json:"dist_multiplier"`
	TotalPotential float64   `json:"total_potential"`
	RolloutMonths  int       `json:"rollout_months"`
	Curve          []float64 `json:"curve"`
}

// castFame is the average fame of the cast.
func castFame(cast []*Actor) float64 {
	if len(cast) == 0 {
		return 0
	}
	sum := 0
	for _, a := range cast {
		sum += a.Fame
	}
	return float64(sum) / float64(len(cast))
}

// ProjectRevenue computes the revenue potential and curve of a movie released this month.
func ProjectRevenue(content *Content, cal *Calendar, m *Movie, rng *rand.Rand) RevenueProjection {
	t := content.Revenue
	shape, ok := content.ReleaseStrategies[m.ReleaseStrategy]
	mustf(ok, "movie %s has unknown release strategy %q", m.ID, m.ReleaseStrategy)
	rating, ok := content.Ratings[m.Rating]
	mustf(ok, "movie %s has unknown rating %q", m.ID, m.Rating)

	p := RevenueProjection{
		Base:           float64(m.Quality)*t.QualityWeight + float64(m.Buzz)*t.BuzzWeight,
		TrendBonus:     1.0,
		MarketingBoost: 1 + m.MarketingSpend*t.MarketingFactor,
		Seasonal:       1 + cal.SeasonalBonus(m.Genre, cal.Month),
		RatingCap:      rating.MaxAudience,
		DistMultiplier: shape.Multiplier,
	}
	directorFame := 0.0
	if m.Director != nil {
		directorFame = float64(m.Director.Fame)
	}
	p.TalentBoost = 1 + (castFame(m.Cast)+directorFame)/t.FameDivisor
	if cal.IsTrending(m.Genre) {
		p.TrendBonus = t.TrendingBonus
	}

	p.TotalPotential = round2(p.Base * p.TalentBoost * p.TrendBonus * p.MarketingBoost * p.Seasonal * p.RatingCap * p.DistMultiplier)
	p.RolloutMonths = max(t.RolloutFloor, int(math.Round(uniform(rng, t.RolloutMin, t.RolloutMax)*(1+shape.Longevity))))
	p.Curve = RevenueCurve(content, m.ReleaseStrategy, p.TotalPotential, p.RolloutMonths)
	return p
}

// RevenueCurve spreads totalPotential over rolloutMonths using the strategy's factor curve.
// monthlyBase = totalPotential / rolloutMonths * curve_scale; factor[i] = max(floor, start + step*i).
func RevenueCurve(content *Content, strategy ReleaseStrategy, totalPotential float64, rolloutMonths int) []float64 {
	mustf(rolloutMonths > 0, "rollout of %d months", rolloutMonths)
	shape := content.ReleaseStrategies[strategy]
	monthlyBase := totalPotential / float64(rolloutMonths) * content.Revenue.CurveScale

	curve := make([]float64, rolloutMonths)
	for i := range curve {
		factor := math.Max(content.Revenue.CurveFloor, shape.CurveStart+shape.CurveStep*float64(i))
		curve[i] = round2(monthlyBase * factor)
	}
	return curve
}

// releaseMovies releases every scheduled movie whose date is this month.
func (g *Game) releaseMovies() []*Movie {
	var released []*Movie
	remaining := g.Studio.Scheduled[:0]
	for _, m := range g.Studio.Scheduled {
		if g.Calendar.Date.Before(m.ReleaseDate) {
			remaining = append(remaining, m)
			continue
		}
		g.release(m)
		released = append(released, m)
	}
	g.Studio.Scheduled = remaining
	g.Studio.Released = append(g.Studio.Released, released...)
	return released
}

func (g *Game) release(m *Movie) {
	p := ProjectRevenue(g.Content, g.Calendar, m, g.rng)

	// 1. Revenue queue
	m.TotalPotential = p.TotalPotential
	m.RolloutMonths = p.RolloutMonths
	m.MonthlyRevenue = p.Curve
	m.BoxOffice = 0
	sum := 0.0
	for _, v := range p.Curve {
		sum += v
	}
	m.ProjectedGross = round2(sum)
	m.Status = MovieReleased

	// 2. Critics
	m.CriticScore = clampInt(m.Quality+randRange(g.rng, -10, 10), 10, 100)
	review := reviewLine(m.CriticScore)
	if m.Quality >= g.Content.Finance.PrestigeQuality {
		g.Studio.Prestige++
	}

	// 3. Credits
	credit := Credit{
		Title:     m.Title,
		Year:      m.ReleaseDate.Year,
		Month:     m.ReleaseDate.Month,
		Genre:     m.Genre,
		Quality:   m.Quality,
		BoxOffice: m.ProjectedGross,
	}
	for _, a := range m.Cast {
		a.FilmHistory = append(a.FilmHistory, credit)
	}
	if m.Director != nil {
		m.Director.FilmHistory = append(m.Director.FilmHistory, credit)
	}
	if m.Writer != nil {
		m.Writer.FilmHistory = append(m.Writer.FilmHistory, credit)
	}
	for _, role := range sortedKeys(m.Staff) {
		m.Staff[role].FilmHistory = append(m.Staff[role].FilmHistory, credit)
	}

	g.Studio.AddNews(fmt.Sprintf("🎬 %s opens in theaters (%s release). Critics: %d/100, %s", m.Title, m.ReleaseStrategy, m.CriticScore, review))
	g.log.Info("movie released", "title", m.Title, "potential", m.TotalPotential, "rollout", m.RolloutMonths, "critics", m.CriticScore)
}

func reviewLine(score int) string {
	switch {
	case score >= 85:
		return "a masterpiece!"
	case score >= 70:
		return "a solid crowd-pleaser."
	case score >= 50:
		return "mixed reviews."
	case score >= 30:
		return "critics were not impressed."
	default:
		return "a critical disaster."
	}
}

// drainRevenue pops the front slice of a movie's revenue queue.
func drainRevenue(m *Movie) float64 {
	mustf(len(m.MonthlyRevenue) > 0, "draining empty revenue queue of %s", m.ID)
	amount := m.MonthlyRevenue[0]
	m.MonthlyRevenue = m.MonthlyRevenue[1:]
	if len(m.MonthlyRevenue) == 0 {
		m.MonthlyRevenue = nil
	}
	return amount
}

// updateRevenue pays out one curve slice for every released movie still in theaters.
func (g *Game) updateRevenue() float64 {
	total := 0.0
	for _, m := range g.Studio.Released {
		if len(m.MonthlyRevenue) == 0 {
			continue
		}
		amount := drainRevenue(m)
		m.BoxOffice = round2(m.BoxOffice + amount)
		g.Studio.credit(g.Calendar.Date, TxBoxOffice, fmt.Sprintf("Box office: %s", m.Title), amount)
		total += amount

		if rec := g.Studio.HighestGrossing; rec == nil || m.BoxOffice > rec.Gross {
			g.Studio.HighestGrossing = &GrossRecord{MovieID: m.ID, Title: m.Title, Gross: m.BoxOffice}
		}
	}
	return round2(total)
}
