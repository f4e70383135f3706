/*
Package game
File: calendar.go
Description:
    The Calendar/Trend engine.
    1. Advances the month (rolling the year and regenerating the annual event table).
    2. Rotates trending/forecast genre pairs on quarter boundaries.
    3. Runs the market sentiment random walk, the yearly economy roll and special events.
    4. Maintains the bounded market index and a monthly stats history.
*/

package game

import (
	"math/rand"
	"slices"
)

// Economy states rolled each new year.
const (
	EconomyStable    = "stable"
	EconomyBoom      = "boom"
	EconomyRecession = "recession"
)

// ActiveSpecialEvent is a special event with its time window.
type ActiveSpecialEvent struct {
	SpecialEventDef
	Start Date `json:"start"`
	End   Date `json:"end"` // Exclusive
}

// MonthStats is one row of the calendar history.
type MonthStats struct {
	Sentiment   float64 `json:"sentiment"`
	MarketIndex float64 `json:"market_index"`
	Economy     string  `json:"economy"`
	Event       string  `json:"event,omitempty"`
}

// UpcomingEvent is a forecast entry.
type UpcomingEvent struct {
	Date  Date          `json:"date"`
	Event CalendarEvent `json:"event"`
}

// Calendar tracks time, genre trends and the market mood.
type Calendar struct {
	Date
	Sentiment     float64               `json:"sentiment"` // [0.5, 1.5]
	Economy       string                `json:"economy"`
	MarketIndex   float64               `json:"market_index"` // [IndexMin, IndexMax]
	Trending      []string              `json:"trending"`
	Forecast      []string              `json:"forecast"`
	Events        map[int]CalendarEvent `json:"events"` // Annual table, keyed by month
	EventsYear    int                   `json:"events_year"`
	SpecialEvents []ActiveSpecialEvent  `json:"special_events"`
	History       map[string]MonthStats `json:"history"` // Keyed YYYY-MM

	content *Content
}

// NewCalendar starts a calendar in January of the content's start year.
func NewCalendar(content *Content, rng *rand.Rand) *Calendar {
	c := &Calendar{
		Date:        Date{Year: content.StartYear, Month: 1},
		Sentiment:   1.0,
		Economy:     EconomyStable,
		MarketIndex: content.Calendar.IndexStart,
		History:     make(map[string]MonthStats),
		content:     content,
	}
	c.Trending = c.genrePair(rng)
	c.Forecast = c.genrePair(rng)
	c.generateAnnualEvents()
	c.recordStats()
	return c
}

// Advance moves the calendar forward one month. Pure state mutation; never fails.
func (c *Calendar) Advance(rng *rand.Rand) {
	t := c.content.Calendar

	// 1. Move the clock
	c.Date = c.Date.AddMonths(1)
	if c.Month == 1 {
		c.generateAnnualEvents()
		c.rollEconomy(rng)
	}

	// 2. Quarter boundary: the forecast becomes the trend
	if c.Month%3 == 1 {
		c.Trending = c.Forecast
		c.Forecast = c.genrePair(rng)
	}

	// 3. Special events: expire old ones, maybe start a new one
	c.SpecialEvents = slices.DeleteFunc(c.SpecialEvents, func(e ActiveSpecialEvent) bool {
		return !c.Date.Before(e.End)
	})
	if len(t.SpecialEvents) > 0 && rng.Float64() < t.SpecialEventChance {
		def := t.SpecialEvents[rng.Intn(len(t.SpecialEvents))]
		c.SpecialEvents = append(c.SpecialEvents, ActiveSpecialEvent{
			SpecialEventDef: def,
			Start:           c.Date,
			End:             c.Date.AddMonths(max(1, def.Duration)),
		})
	}

	// 4. Sentiment random walk, then the index follows the market modifier
	c.Sentiment = round2(clampFloat(c.Sentiment+uniform(rng, -t.SentimentStep, t.SentimentStep), 0.5, 1.5))
	change := (c.MarketModifier() - 1.0) * uniform(rng, 5, 10)
	c.MarketIndex = round2(clampFloat(c.MarketIndex+change, t.IndexMin, t.IndexMax))

	c.recordStats()
}

func (c *Calendar) genrePair(rng *rand.Rand) []string {
	return sample(rng, c.content.GenreKeys(), 2)
}

// generateAnnualEvents rebuilds the month -> event table for the current year.
func (c *Calendar) generateAnnualEvents() {
	c.Events = make(map[int]CalendarEvent, len(c.content.Calendar.AnnualEvents))
	for month, e := range c.content.Calendar.AnnualEvents {
		e.BonusGenres = slices.Clone(e.BonusGenres)
		c.Events[month] = e
	}
	c.EventsYear = c.Year
}

func (c *Calendar) rollEconomy(rng *rand.Rand) {
	e := c.content.Calendar.Economy
	roll := rng.Float64()
	switch {
	case roll < e.RecessionChance:
		c.Economy = EconomyRecession
	case roll < e.RecessionChance+e.BoomChance:
		c.Economy = EconomyBoom
	default:
		c.Economy = EconomyStable
	}
}

func (c *Calendar) recordStats() {
	stats := MonthStats{
		Sentiment:   c.Sentiment,
		MarketIndex: c.MarketIndex,
		Economy:     c.Economy,
	}
	if e := c.CurrentEvent(); e != nil {
		stats.Event = e.Name
	}
	c.History[c.Date.String()] = stats
}

// CurrentEvent returns this month's annual event, if any.
func (c *Calendar) CurrentEvent() *CalendarEvent {
	if e, ok := c.Events[c.Month]; ok {
		return &e
	}
	return nil
}

// MarketModifier combines sentiment, the economy, the current event and special events.
func (c *Calendar) MarketModifier() float64 {
	mod := c.Sentiment
	switch c.Economy {
	case EconomyBoom:
		mod *= c.content.Calendar.Economy.BoomModifier
	case EconomyRecession:
		mod *= c.content.Calendar.Economy.RecessionModifier
	}
	if e := c.CurrentEvent(); e != nil && e.MarketBoost > 0 {
		mod *= e.MarketBoost
	}
	for _, s := range c.SpecialEvents {
		mod *= 1 + s.Impact
	}
	return round2(mod)
}

// HypeIndex maps the market index onto 0..100.
func (c *Calendar) HypeIndex() int {
	return int(clampFloat(c.MarketIndex-c.content.Calendar.IndexMin, 0, 100))
}

// Season returns the current season name.
func (c *Calendar) Season() string {
	return c.content.Season(c.Month)
}

// SeasonalBonus returns the genre's fractional bonus for the given month.
func (c *Calendar) SeasonalBonus(genre string, month int) float64 {
	return c.content.SeasonalBonus(genre, month)
}

// IsTrending reports whether genre is in the current trending set.
func (c *Calendar) IsTrending(genre string) bool {
	return slices.Contains(c.Trending, genre)
}

// GenreDemand is the pricing modifier for a genre this month:
// +TrendingDemand per trending match, times the current event's demand boost for its bonus genres.
func (c *Calendar) GenreDemand(genre string) float64 {
	demand := 1.0
	for _, g := range c.Trending {
		if g == genre {
			demand += c.content.Market.TrendingDemand
		}
	}
	if e := c.CurrentEvent(); e != nil && e.DemandBoost > 0 && slices.Contains(e.BonusGenres, genre) {
		demand *= e.DemandBoost
	}
	return demand
}

// UpcomingEvents looks ahead n months and lists the annual events that fall in that window.
func (c *Calendar) UpcomingEvents(n int) []UpcomingEvent {
	var out []UpcomingEvent
	for i := 1; i <= n; i++ {
		d := c.Date.AddMonths(i)
		if e, ok := c.content.Calendar.AnnualEvents[d.Month]; ok {
			out = append(out, UpcomingEvent{Date: d, Event: e})
		}
	}
	return out
}

// MonthsUntil returns the number of months from the current date to d (negative if past).
func (c *Calendar) MonthsUntil(d Date) int {
	return (d.Year*12 + d.Month) - (c.Year*12 + c.Month)
}

func (c *Calendar) setContent(content *Content) {
	c.content = content
}
