/*
Package game
File: studio.go
Description:
    The player's studio: balance, prestige, contracts, scripts and movies.
    Every balance movement goes through credit/debit so it lands in the
    transaction ledger.
*/

package game

import (
	"fmt"
	"sort"
)

// Transaction categories.
const (
	TxBoxOffice  = "box_office"
	TxProduction = "production"
	TxSalary     = "salary"
	TxOverhead   = "overhead"
	TxMarketing  = "marketing"
	TxScript     = "script"
	TxTask       = "task"
	TxEvent      = "event"
)

// Transaction is one balance movement.
type Transaction struct {
	Date        Date    `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`  // Signed
	Balance     float64 `json:"balance"` // After the movement
}

// GrossRecord is the studio's best-earning release.
type GrossRecord struct {
	MovieID string  `json:"movie_id"`
	Title   string  `json:"title"`
	Gross   float64 `json:"gross"`
}

// Studio is the player's financial aggregate. Balance may go negative (bankruptcy),
// but player spending is always checked against the current balance first.
type Studio struct {
	Name          string  `json:"name"`
	Balance       float64 `json:"balance"`
	Prestige      int     `json:"prestige"`
	TotalEarnings float64 `json:"total_earnings"`
	TotalExpenses float64 `json:"total_expenses"`

	Contracts *ContractLedger `json:"contracts"`
	Scripts   []*Script       `json:"scripts"`   // Drafts being developed
	Library   []*Script       `json:"library"`   // Approved and shelved scripts
	Scheduled []*Movie        `json:"scheduled"` // Not yet released
	Released  []*Movie        `json:"released"`

	HighestGrossing *GrossRecord  `json:"highest_grossing,omitempty"`
	Newsfeed        []string      `json:"newsfeed"`
	Ledger          []Transaction `json:"ledger"`

	Synergy        int      `json:"synergy"`
	UnlockedThemes []string `json:"unlocked_themes"`
	Concepts       []string `json:"concepts"`
	PendingBuzz    int      `json:"pending_buzz"` // Consumed by the next production

	newsLimit int
	newsTotal int
}

// NewStudio opens a studio with the configured starting balance.
func NewStudio(name string, content *Content) *Studio {
	return &Studio{
		Name:      name,
		Balance:   content.Finance.StartingBalance,
		Contracts: NewContractLedger(),
		Newsfeed:  []string{},
		Ledger:    []Transaction{},
		newsLimit: content.Finance.NewsfeedLimit,
	}
}

// CanAfford reports whether the balance covers amount.
func (s *Studio) CanAfford(amount float64) bool {
	return s.Balance >= amount
}

// credit adds income.
func (s *Studio) credit(on Date, category, desc string, amount float64) {
	amount = round2(amount)
	s.Balance = round2(s.Balance + amount)
	s.TotalEarnings = round2(s.TotalEarnings + amount)
	s.record(on, category, desc, amount)
}

// debit records a cost. Callers that represent player spending check CanAfford first;
// recurring costs may push the balance below zero.
func (s *Studio) debit(on Date, category, desc string, amount float64) {
	amount = round2(amount)
	s.Balance = round2(s.Balance - amount)
	s.TotalExpenses = round2(s.TotalExpenses + amount)
	s.record(on, category, desc, -amount)
}

func (s *Studio) record(on Date, category, desc string, amount float64) {
	s.Ledger = append(s.Ledger, Transaction{
		Date:        on,
		Category:    category,
		Description: desc,
		Amount:      amount,
		Balance:     s.Balance,
	})
}

// AddNews pushes a headline, newest last, trimming the feed to its limit.
func (s *Studio) AddNews(headline string) {
	s.Newsfeed = append(s.Newsfeed, headline)
	s.newsTotal++
	if s.newsLimit > 0 && len(s.Newsfeed) > s.newsLimit {
		s.Newsfeed = s.Newsfeed[len(s.Newsfeed)-s.newsLimit:]
	}
}

// Bankrupt reports whether the studio has run out of money.
func (s *Studio) Bankrupt() bool {
	return s.Balance < 0
}

// monthlyCosts returns salaries and overhead due this month.
func (s *Studio) monthlyCosts(content *Content) (salaries, overhead float64) {
	for _, c := range s.Contracts.All() {
		salaries += c.Salary
	}
	inProduction := 0
	for _, m := range s.Scheduled {
		if m.Status == MovieInProduction {
			inProduction++
		}
	}
	overhead = content.Finance.MonthlyOverhead + float64(inProduction)*content.Finance.PerProductionOverhead
	return round2(salaries), round2(overhead)
}

// payMonthly deducts salaries and overhead. Returns the total paid.
func (s *Studio) payMonthly(content *Content, on Date) float64 {
	salaries, overhead := s.monthlyCosts(content)
	if salaries > 0 {
		s.debit(on, TxSalary, "Monthly salaries", salaries)
	}
	if overhead > 0 {
		s.debit(on, TxOverhead, "Studio overhead", overhead)
	}
	return round2(salaries + overhead)
}

// Movies returns scheduled and released movies together.
func (s *Studio) Movies() []*Movie {
	out := make([]*Movie, 0, len(s.Scheduled)+len(s.Released))
	out = append(out, s.Scheduled...)
	return append(out, s.Released...)
}

// YearReport summarises one calendar year of releases.
type YearReport struct {
	Year           int     `json:"year"`
	Releases       int     `json:"releases"`
	BoxOffice      float64 `json:"box_office"`
	AverageQuality float64 `json:"average_quality"`
	BestTitle      string  `json:"best_title,omitempty"`
	BestGross      float64 `json:"best_gross,omitempty"`
	Earnings       float64 `json:"earnings"`
	Expenses       float64 `json:"expenses"`
	Prestige       int     `json:"prestige"`
	Balance        float64 `json:"balance"`
}

// YearReport builds the end-of-year summary for year.
func (s *Studio) YearReport(year int) YearReport {
	r := YearReport{Year: year, Prestige: s.Prestige, Balance: s.Balance}
	qualitySum := 0
	for _, m := range s.Released {
		if m.ReleaseDate.Year != year {
			continue
		}
		r.Releases++
		r.BoxOffice += m.BoxOffice
		qualitySum += m.Quality
		if r.BestTitle == "" || m.BoxOffice > r.BestGross {
			r.BestTitle, r.BestGross = m.Title, m.BoxOffice
		}
	}
	if r.Releases > 0 {
		r.AverageQuality = round2(float64(qualitySum) / float64(r.Releases))
	}
	for _, tx := range s.Ledger {
		if tx.Date.Year != year {
			continue
		}
		if tx.Amount > 0 {
			r.Earnings += tx.Amount
		} else {
			r.Expenses -= tx.Amount
		}
	}
	r.BoxOffice = round2(r.BoxOffice)
	r.Earnings = round2(r.Earnings)
	r.Expenses = round2(r.Expenses)
	return r
}

// TopReleases returns released movies sorted by box office, best first.
func (s *Studio) TopReleases(n int) []*Movie {
	out := append([]*Movie(nil), s.Released...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BoxOffice > out[j].BoxOffice })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Studio) findDraftOrLibrary(id string) (*Script, bool) {
	if sc, _ := GetScript(s.Scripts, id); sc != nil {
		return sc, false
	}
	if sc, _ := GetScript(s.Library, id); sc != nil {
		return sc, true
	}
	return nil, false
}

func (s *Studio) String() string {
	return fmt.Sprintf("%s (balance %.2f, prestige %d)", s.Name, s.Balance, s.Prestige)
}
