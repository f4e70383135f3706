/*
Package game
File: content.go
Description:
    Static content tables: genres, ratings, source material, calendar events,
    talent tasks and all tuning constants.
    A default set is embedded in the binary (content.yaml) and can be replaced
    at runtime with LoadContent. Content is the one trust boundary of the
    engine, so validation and clamping happen here and nowhere else.
*/

package game

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContentYAML []byte

// GenreInfo describes one genre.
type GenreInfo struct {
	CommonTags     []string      `yaml:"common_tags" json:"common_tags"`
	BudgetAffinity []BudgetClass `yaml:"budget_affinity" json:"budget_affinity"`
	PeakSeasons    []string      `yaml:"peak_seasons" json:"peak_seasons"`
	TrendBonus     float64       `yaml:"trend_bonus" json:"trend_bonus"` // Percent, applied in peak seasons
	AllowedRatings []string      `yaml:"allowed_ratings" json:"allowed_ratings"`
	TitlePrefixes  []string      `yaml:"title_prefixes" json:"-"`
	TitleNouns     []string      `yaml:"title_nouns" json:"-"`
}

// SourceType is a kind of source material a script can be adapted from.
type SourceType struct {
	Name             string   `yaml:"name" json:"name"`
	AssociatedGenres []string `yaml:"associated_genres" json:"associated_genres"`
	BaseBuzz         int      `yaml:"base_buzz" json:"base_buzz"`
	CostMultiplier   float64  `yaml:"cost_multiplier" json:"cost_multiplier"`
}

// RatingInfo caps the audience a film can reach.
type RatingInfo struct {
	MinAge      int     `yaml:"min_age" json:"min_age"`
	MaxAudience float64 `yaml:"max_audience" json:"max_audience"` // (0, 1]
}

// RatingRules drive assignRating.
type RatingRules struct {
	Default      string   `yaml:"default"`
	AdultTags    []string `yaml:"adult_tags"`
	ExplicitTags []string `yaml:"explicit_tags"`
	FamilyTags   []string `yaml:"family_tags"`
	FamilyGenre  string   `yaml:"family_genre"`
}

// Theme is a narrative theme mixed into script tags.
type Theme struct {
	Name          string   `yaml:"name" json:"name"`
	SynergyGenres []string `yaml:"synergy_genres" json:"synergy_genres"`
}

// CalendarEvent is a fixed annual event tied to a month.
type CalendarEvent struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	BonusGenres []string `yaml:"bonus_genres" json:"bonus_genres"`
	MarketBoost float64  `yaml:"market_boost" json:"market_boost"` // Multiplies the market modifier
	DemandBoost float64  `yaml:"demand_boost" json:"demand_boost"` // Multiplies script demand for bonus genres
}

// SpecialEventDef is a random market shock.
type SpecialEventDef struct {
	Name     string  `yaml:"name" json:"name"`
	Impact   float64 `yaml:"impact" json:"impact"`
	Duration int     `yaml:"duration" json:"duration"` // Months
}

// EconomyTuning controls the yearly economy roll.
type EconomyTuning struct {
	RecessionChance   float64 `yaml:"recession_chance"`
	BoomChance        float64 `yaml:"boom_chance"`
	BoomModifier      float64 `yaml:"boom_modifier"`
	RecessionModifier float64 `yaml:"recession_modifier"`
}

// CalendarTuning groups everything the calendar engine reads.
type CalendarTuning struct {
	SentimentStep      float64               `yaml:"sentiment_step"`
	IndexStart         float64               `yaml:"index_start"`
	IndexMin           float64               `yaml:"index_min"`
	IndexMax           float64               `yaml:"index_max"`
	SpecialEventChance float64               `yaml:"special_event_chance"`
	Economy            EconomyTuning         `yaml:"economy"`
	AnnualEvents       map[int]CalendarEvent `yaml:"annual_events"`
	SpecialEvents      []SpecialEventDef     `yaml:"special_events"`
}

// StrategyShape is the revenue profile of a release strategy.
type StrategyShape struct {
	Multiplier  float64 `yaml:"multiplier" json:"multiplier"`
	Longevity   float64 `yaml:"longevity" json:"longevity"`
	CurveStart  float64 `yaml:"curve_start" json:"curve_start"` // Month-0 factor
	CurveStep   float64 `yaml:"curve_step" json:"curve_step"`   // Added per month
	Description string  `yaml:"description" json:"description"`
}

// RevenueTuning holds the box-office coefficients.
type RevenueTuning struct {
	QualityWeight   float64 `yaml:"quality_weight"`
	BuzzWeight      float64 `yaml:"buzz_weight"`
	FameDivisor     float64 `yaml:"fame_divisor"`
	TrendingBonus   float64 `yaml:"trending_bonus"`
	MarketingFactor float64 `yaml:"marketing_factor"`
	RolloutMin      float64 `yaml:"rollout_min"`
	RolloutMax      float64 `yaml:"rollout_max"`
	RolloutFloor    int     `yaml:"rollout_floor"`
	CurveScale      float64 `yaml:"curve_scale"` // Tunable balance knob on the monthly base
	CurveFloor      float64 `yaml:"curve_floor"`
}

// MarketingPlan is a post-production marketing package.
type MarketingPlan struct {
	Name string  `yaml:"name" json:"name"`
	Cost float64 `yaml:"cost" json:"cost"`
	Buzz int     `yaml:"buzz" json:"buzz"`
}

// ResaleSettings price scripts sold back to the market.
type ResaleSettings struct {
	BaseMultiplier float64            `yaml:"base_multiplier"`
	Volatility     float64            `yaml:"volatility"`
	Floor          float64            `yaml:"floor"`
	GenreBonus     map[string]float64 `yaml:"genre_bonus"`
}

// MarketTuning sizes the free-agent pool and its pricing.
type MarketTuning struct {
	StartActors           int     `yaml:"start_actors"`
	StartWriters          int     `yaml:"start_writers"`
	StartDirectors        int     `yaml:"start_directors"`
	StartStaffPerRole     int     `yaml:"start_staff_per_role"`
	StartScripts          int     `yaml:"start_scripts"`
	ActorsPerMonth        int     `yaml:"actors_per_month"`
	WritersPerMonth       int     `yaml:"writers_per_month"`
	DirectorsPerMonth     int     `yaml:"directors_per_month"`
	StaffPerMonth         int     `yaml:"staff_per_month"`
	ScriptWritersPerMonth int     `yaml:"script_writers_per_month"`
	StaffCap              int     `yaml:"staff_cap"`
	ScriptFloor           int     `yaml:"script_floor"`
	ActorFloor            int     `yaml:"actor_floor"`
	ScarcityStep          float64 `yaml:"scarcity_step"`
	PriceFactor           float64 `yaml:"price_factor"`
	TrendingDemand        float64 `yaml:"trending_demand"`
	AuctionThreshold      float64 `yaml:"auction_threshold"`
	AuctionCeiling        float64 `yaml:"auction_ceiling"`
}

// FinanceTuning covers studio money flows.
type FinanceTuning struct {
	StartingBalance       float64                 `yaml:"starting_balance"`
	MonthlyOverhead       float64                 `yaml:"monthly_overhead"`
	PerProductionOverhead float64                 `yaml:"per_production_overhead"`
	ProductionTurns       int                     `yaml:"production_turns"`
	NewsfeedLimit         int                     `yaml:"newsfeed_limit"`
	PrestigeQuality       int                     `yaml:"prestige_quality"`
	BudgetBase            map[BudgetClass]float64 `yaml:"budget_base"`
}

// RivalDef seeds a rival studio.
type RivalDef struct {
	Name     string  `yaml:"name"`
	Balance  float64 `yaml:"balance"`
	Prestige int     `yaml:"prestige"`
}

// RivalTuning holds the rival AI probabilities.
type RivalTuning struct {
	ScriptChance float64    `yaml:"script_chance"`
	ActorChance  float64    `yaml:"actor_chance"`
	Studios      []RivalDef `yaml:"studios"`
}

// RiskDef is one independent failure roll attached to a task.
type RiskDef struct {
	Name   string  `yaml:"name" json:"name"`
	Chance float64 `yaml:"chance" json:"chance"`
	Cash   float64 `yaml:"cash,omitempty" json:"cash,omitempty"`
}

// TaskDef is an assignable talent task.
type TaskDef struct {
	Name        string             `yaml:"name" json:"name"`
	Duration    int                `yaml:"duration" json:"duration"`
	Description string             `yaml:"description" json:"description"`
	Effects     map[string]float64 `yaml:"effects" json:"effects"`
	Risks       []RiskDef          `yaml:"risks" json:"risks,omitempty"`
}

// TalentTables are the pools procedural talent is drawn from.
type TalentTables struct {
	ActorTags           []string            `yaml:"actor_tags"`
	ActorTraits         []string            `yaml:"actor_traits"`
	WriterEducations    []string            `yaml:"writer_educations"`
	WriterSignatureTags []string            `yaml:"writer_signature_tags"`
	WriterStyles        []string            `yaml:"writer_styles"`
	PremiumEducations   []string            `yaml:"premium_educations"`
	DirectorEducations  []string            `yaml:"director_educations"`
	DirectorTags        []string            `yaml:"director_tags"`
	StaffEducations     []string            `yaml:"staff_educations"`
	StaffSpecialties    map[string][]string `yaml:"staff_specialties"`
	StaffTags           map[string][]string `yaml:"staff_tags"`
	FirstNames          []string            `yaml:"first_names"`
	LastNames           []string            `yaml:"last_names"`
}

// Content is the full set of read-only tables.
type Content struct {
	StartYear         int                                `yaml:"start_year"`
	Seasons           map[int]string                     `yaml:"seasons"`
	Ratings           map[string]RatingInfo              `yaml:"ratings"`
	RatingRules       RatingRules                        `yaml:"rating_rules"`
	Genres            map[string]GenreInfo               `yaml:"genres"`
	TitleStructures   []string                           `yaml:"title_structures"`
	MidPhrases        []string                           `yaml:"mid_phrases"`
	Places            []string                           `yaml:"places"`
	Adjectives        []string                           `yaml:"adjectives"`
	SourceTypes       map[string]SourceType              `yaml:"source_types"`
	Themes            []Theme                            `yaml:"themes"`
	BonusThemes       []string                           `yaml:"bonus_themes"`
	Calendar          CalendarTuning                     `yaml:"calendar"`
	ReleaseStrategies map[ReleaseStrategy]StrategyShape  `yaml:"release_strategies"`
	Revenue           RevenueTuning                      `yaml:"revenue"`
	MarketingPlans    []MarketingPlan                    `yaml:"marketing_plans"`
	Resale            ResaleSettings                     `yaml:"resale"`
	Market            MarketTuning                       `yaml:"market"`
	Finance           FinanceTuning                      `yaml:"finance"`
	Rivals            RivalTuning                        `yaml:"rivals"`
	Talent            TalentTables                       `yaml:"talent"`
	Tasks             map[Role][]TaskDef                 `yaml:"tasks"`

	genreKeys  []string
	sourceKeys []string
	staffRoles []string
}

// DefaultContent parses the embedded tables.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContentYAML)
}

// LoadContent reads a content file from disk. An empty path selects the embedded default.
func LoadContent(path string) (*Content, error) {
	if path == "" {
		return DefaultContent()
	}

	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	// 2. Unmarshal + validate
	return ParseContent(f)
}

// ParseContent unmarshals and validates a content document.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) validate() error {
	if len(c.Genres) < 2 {
		return fmt.Errorf("%w: content needs at least two genres", ErrInvalidContent)
	}
	for m := 1; m <= 12; m++ {
		if c.Seasons[m] == "" {
			return fmt.Errorf("%w: month %d has no season", ErrInvalidContent, m)
		}
	}
	known := map[string]bool{}
	for _, s := range c.Seasons {
		known[s] = true
	}

	if _, ok := c.Ratings[c.RatingRules.Default]; !ok {
		return fmt.Errorf("%w: default rating %q is not defined", ErrInvalidContent, c.RatingRules.Default)
	}
	for name, r := range c.Ratings {
		r.MaxAudience = math.Min(1, math.Max(0.01, r.MaxAudience))
		c.Ratings[name] = r
	}

	for name, g := range c.Genres {
		if len(g.AllowedRatings) == 0 {
			return fmt.Errorf("%w: genre %s has no allowed ratings", ErrInvalidContent, name)
		}
		for _, r := range g.AllowedRatings {
			if _, ok := c.Ratings[r]; !ok {
				return fmt.Errorf("%w: genre %s allows unknown rating %q", ErrInvalidContent, name, r)
			}
		}
		for _, s := range g.PeakSeasons {
			if !known[s] {
				return fmt.Errorf("%w: genre %s has unknown season %q", ErrInvalidContent, name, s)
			}
		}
		if len(g.BudgetAffinity) == 0 {
			g.BudgetAffinity = []BudgetClass{BudgetMid}
		}
		if len(g.TitlePrefixes) == 0 || len(g.TitleNouns) == 0 {
			return fmt.Errorf("%w: genre %s has no title words", ErrInvalidContent, name)
		}
		g.TrendBonus = math.Min(100, math.Max(0, g.TrendBonus))
		c.Genres[name] = g
	}

	for key, s := range c.SourceTypes {
		if len(s.AssociatedGenres) == 0 {
			return fmt.Errorf("%w: source %s has no associated genres", ErrInvalidContent, key)
		}
		for _, g := range s.AssociatedGenres {
			if _, ok := c.Genres[g]; !ok {
				return fmt.Errorf("%w: source %s references unknown genre %q", ErrInvalidContent, key, g)
			}
		}
		if s.BaseBuzz < 0 {
			s.BaseBuzz = 0
			c.SourceTypes[key] = s
		}
	}
	if len(c.SourceTypes) == 0 {
		return fmt.Errorf("%w: no source types", ErrInvalidContent)
	}

	for month, e := range c.Calendar.AnnualEvents {
		if month < 1 || month > 12 {
			return fmt.Errorf("%w: event %s is set in month %d", ErrInvalidContent, e.Name, month)
		}
		for _, g := range e.BonusGenres {
			if _, ok := c.Genres[g]; !ok {
				return fmt.Errorf("%w: event %s boosts unknown genre %q", ErrInvalidContent, e.Name, g)
			}
		}
	}

	for _, strat := range []ReleaseStrategy{ReleaseWide, ReleaseLimited, ReleaseStreaming, ReleaseInternational} {
		if _, ok := c.ReleaseStrategies[strat]; !ok {
			return fmt.Errorf("%w: release strategy %s is not defined", ErrInvalidContent, strat)
		}
	}
	for _, b := range []BudgetClass{BudgetLow, BudgetMid, BudgetHigh} {
		if _, ok := c.Finance.BudgetBase[b]; !ok {
			return fmt.Errorf("%w: budget base for %s is not defined", ErrInvalidContent, b)
		}
	}
	if c.Revenue.RolloutFloor < 1 {
		c.Revenue.RolloutFloor = 1
	}
	if c.Revenue.RolloutMax < c.Revenue.RolloutMin {
		c.Revenue.RolloutMax = c.Revenue.RolloutMin
	}
	if len(c.Themes) == 0 {
		return fmt.Errorf("%w: no themes", ErrInvalidContent)
	}
	if len(c.Talent.FirstNames) == 0 || len(c.Talent.LastNames) == 0 {
		return fmt.Errorf("%w: name pools are empty", ErrInvalidContent)
	}
	if len(c.TitleStructures) == 0 {
		return fmt.Errorf("%w: no title structures", ErrInvalidContent)
	}
	if c.Finance.ProductionTurns < 1 {
		c.Finance.ProductionTurns = 1
	}
	if c.StartYear == 0 {
		c.StartYear = 2025
	}

	c.genreKeys = sortedKeys(c.Genres)
	c.sourceKeys = sortedKeys(c.SourceTypes)
	c.staffRoles = sortedKeys(c.Talent.StaffSpecialties)
	return nil
}

// GenreKeys returns every genre name in stable order.
func (c *Content) GenreKeys() []string { return c.genreKeys }

// SourceKeys returns every source-type key in stable order.
func (c *Content) SourceKeys() []string { return c.sourceKeys }

// StaffRoles returns every staff role in stable order.
func (c *Content) StaffRoles() []string { return c.staffRoles }

// Season returns the season name of a month.
func (c *Content) Season(month int) string {
	return c.Seasons[month]
}

// SeasonalBonus returns the genre's trend bonus as a fraction when the month
// falls in one of the genre's peak seasons, else 0.
func (c *Content) SeasonalBonus(genre string, month int) float64 {
	g, ok := c.Genres[genre]
	if !ok {
		return 0
	}
	if slices.Contains(g.PeakSeasons, c.Season(month)) {
		return g.TrendBonus / 100
	}
	return 0
}

// Task looks up a task definition for a role.
func (c *Content) Task(role Role, name string) (TaskDef, bool) {
	for _, t := range c.Tasks[role] {
		if t.Name == name {
			return t, true
		}
	}
	return TaskDef{}, false
}

// MarketingPlan looks up a marketing plan by name.
func (c *Content) MarketingPlan(name string) (MarketingPlan, bool) {
	for _, p := range c.MarketingPlans {
		if p.Name == name {
			return p, true
		}
	}
	return MarketingPlan{}, false
}

// allowedRatings returns the genre's allowed set. Unknown genres allow every rating.
func (c *Content) allowedRatings(genre string) []string {
	if g, ok := c.Genres[genre]; ok {
		return g.AllowedRatings
	}
	return sortedKeys(c.Ratings)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
