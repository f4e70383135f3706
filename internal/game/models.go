/*
Package game
File: models.go
Description:
    Defines the data structures used throughout the studio simulation.
    This file serves as the "schema" for the engine, mapping directly to
    the JSON snapshots handed to presentation layers.

    Aggregates that own behaviour (Calendar, MarketPool, Studio, ContractLedger,
    RivalStudio) live next to their logic; this file only holds the shared records.
*/

package game

import "fmt"

// Date is a (year, month) pair on the simulation calendar.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"` // 1..12
}

// AddMonths returns the date n months later, rolling the year when the month passes 12.
func (d Date) AddMonths(n int) Date {
	total := d.Year*12 + (d.Month - 1) + n
	return Date{Year: total / 12, Month: total%12 + 1}
}

// Before reports whether d falls strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	return d.Month < other.Month
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// ScriptStatus is the Script state machine.
type ScriptStatus string

const (
	ScriptDraft        ScriptStatus = "draft"
	ScriptRewritten    ScriptStatus = "rewritten"
	ScriptApproved     ScriptStatus = "approved"
	ScriptInProduction ScriptStatus = "in_production"
	ScriptShelved      ScriptStatus = "shelved"
)

// MovieStatus is the Movie state machine.
type MovieStatus string

const (
	MovieInProduction   MovieStatus = "in_production"
	MoviePostProduction MovieStatus = "post_production"
	MovieScheduled      MovieStatus = "scheduled"
	MovieReleased       MovieStatus = "released"
)

// BudgetClass is the coarse production-cost tier.
type BudgetClass string

const (
	BudgetLow  BudgetClass = "Low"
	BudgetMid  BudgetClass = "Mid"
	BudgetHigh BudgetClass = "High"
)

// ReleaseStrategy shapes both the size and the monthly curve of box-office revenue.
type ReleaseStrategy string

const (
	ReleaseWide          ReleaseStrategy = "Wide"
	ReleaseLimited       ReleaseStrategy = "Limited"
	ReleaseStreaming     ReleaseStrategy = "Streaming"
	ReleaseInternational ReleaseStrategy = "International"
)

// Role identifies which contract bucket a person belongs to.
type Role string

const (
	RoleActor    Role = "actors"
	RoleWriter   Role = "writers"
	RoleDirector Role = "directors"
	RoleStaff    Role = "staff"
)

// Roles lists the contract buckets in their fixed processing order.
var Roles = []Role{RoleActor, RoleWriter, RoleDirector, RoleStaff}

// Credit is one line of a person's film history.
type Credit struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Genre     string  `json:"genre"`
	Quality   int     `json:"quality"`
	BoxOffice float64 `json:"box_office"` // Projected gross at release
}

// Person is the shape shared by every kind of talent.
type Person struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Fame        int      `json:"fame"`   // 0..100
	Salary      float64  `json:"salary"` // Monthly, in millions; repriced every turn while unsigned
	Tags        []string `json:"tags"`
	Traits      []string `json:"traits,omitempty"` // Hidden personality traits (e.g. "diva")
	Age         int      `json:"age"`
	DebutYear   int      `json:"debut_year"`
	Experience  int      `json:"experience"`
	Reputation  string   `json:"reputation,omitempty"`
	Burnout     bool     `json:"burnout,omitempty"`
	FilmHistory []Credit `json:"film_history"`
}

// Talent is implemented by every role-specific record.
type Talent interface {
	Base() *Person
	Role() Role
}

// Actor is a performer.
type Actor struct {
	Person
}

// Writer authors and rewrites scripts.
type Writer struct {
	Person
	Specialty  string   `json:"specialty"` // Genre key
	Education  string   `json:"education"`
	SkillLevel float64  `json:"skill_level"`
	Style      []string `json:"style,omitempty"`
}

// Director leads a production.
type Director struct {
	Person
	GenreFocus string `json:"genre_focus"`
	Education  string `json:"education"`
}

// StaffMember is below-the-line crew (Editor, Composer, ...).
type StaffMember struct {
	Person
	StaffRole string `json:"staff_role"`
	Specialty string `json:"specialty"`
	Education string `json:"education"`
}

func (a *Actor) Base() *Person       { return &a.Person }
func (w *Writer) Base() *Person      { return &w.Person }
func (d *Director) Base() *Person    { return &d.Person }
func (s *StaffMember) Base() *Person { return &s.Person }

func (a *Actor) Role() Role       { return RoleActor }
func (w *Writer) Role() Role      { return RoleWriter }
func (d *Director) Role() Role    { return RoleDirector }
func (s *StaffMember) Role() Role { return RoleStaff }

// Script is a screenplay moving through draft -> rewritten -> approved -> in_production.
// Invariant: 0 <= Quality <= PotentialQuality <= 100.
type Script struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Genre            string       `json:"genre"`
	Source           string       `json:"source"` // Source-type key (e.g. "NOVEL")
	Theme            string       `json:"theme"`
	Tags             []string     `json:"tags"`
	Rating           string       `json:"rating"`
	Status           ScriptStatus `json:"status"`
	Quality          int          `json:"quality"`
	PotentialQuality int          `json:"potential_quality"`
	DraftNumber      int          `json:"draft_number"`
	Buzz             int          `json:"buzz"`
	BudgetClass      BudgetClass  `json:"budget_class"`
	Appeal           float64      `json:"appeal"`
	Value            float64      `json:"value"` // Market price in millions
	Writer           *Writer      `json:"writer,omitempty"`
	RewriteHistory   []string     `json:"rewrite_history"`
	FinalizedOn      *Date        `json:"finalized_on,omitempty"`
}

// Movie is a production created from an approved script.
type Movie struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Genre           string                  `json:"genre"`
	Tags            []string                `json:"tags"`
	Rating          string                  `json:"rating"`
	BudgetClass     BudgetClass             `json:"budget_class"`
	Quality         int                     `json:"quality"`
	Cast            []*Actor                `json:"cast"`
	Director        *Director               `json:"director"`
	Writer          *Writer                 `json:"writer,omitempty"`
	Staff           map[string]*StaffMember `json:"staff,omitempty"` // Staff role -> person
	Cost            float64                 `json:"cost"`
	ReleaseDate     Date                    `json:"release_date"`
	ProductionEnds  int                     `json:"production_ends"` // Turn number photography wraps
	Status          MovieStatus             `json:"status"`
	Buzz            int                     `json:"buzz"`
	MarketingPlan   string                  `json:"marketing_plan,omitempty"`
	MarketingSpend  float64                 `json:"marketing_spend"`
	ReleaseStrategy ReleaseStrategy         `json:"release_strategy"`

	// Revenue rollout. MonthlyRevenue is filled once at release and drained
	// one slice per turn; BoxOffice is the running sum of drained slices.
	TotalPotential float64   `json:"total_potential"`
	ProjectedGross float64   `json:"projected_gross"`
	RolloutMonths  int       `json:"rollout_months"`
	MonthlyRevenue []float64 `json:"monthly_revenue"`
	BoxOffice      float64   `json:"box_office"`

	CriticScore  int  `json:"critic_score,omitempty"`
	EventChecked bool `json:"event_checked"`
	BonusAwards  int  `json:"bonus_awards,omitempty"`
	Prestige     int  `json:"prestige,omitempty"`
}

// Lead returns the top-billed cast member, or nil for an empty cast.
func (m *Movie) Lead() *Actor {
	if len(m.Cast) == 0 {
		return nil
	}
	return m.Cast[0]
}

// ActiveTask is a time-boxed assignment attached to a contract.
type ActiveTask struct {
	Name        string             `json:"name"`
	Remaining   int                `json:"remaining"`
	Effects     map[string]float64 `json:"effects"`
	Risks       []RiskDef          `json:"risks,omitempty"`
	Description string             `json:"description"`
}

// Contract is a time-boxed hiring record.
// Invariant: Remaining drops by exactly one per renewal; the contract leaves the ledger at 0.
type Contract struct {
	ID             string      `json:"id"`
	Person         Talent      `json:"person"`
	Role           Role        `json:"role"`
	DurationMonths int         `json:"duration_months"`
	Remaining      int         `json:"remaining"`
	Salary         float64     `json:"salary"`
	Exclusive      bool        `json:"exclusive"`
	Task           *ActiveTask `json:"task,omitempty"`

	// Banked task rewards, consumed by the next production/script this person works on.
	QualityBoost float64 `json:"quality_boost,omitempty"`
	ScriptBonus  int     `json:"script_bonus,omitempty"`
}

// Name is a convenience accessor for the contracted person's name.
func (c *Contract) Name() string {
	return c.Person.Base().Name
}
