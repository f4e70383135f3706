/*
Package game
File: contracts.go
Description:
    The Contract/Task ledger.
    Contracts count down one month per renewal and leave the ledger the turn
    they reach zero. A contract can carry one active task at a time; tasks
    resolve their effects and roll their risks when their duration runs out.
*/

package game

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
)

// ExpiryPolicy decides what happens to talent whose contract runs out.
type ExpiryPolicy string

const (
	// ExpiryRetire drops the person from the game.
	ExpiryRetire ExpiryPolicy = "retire"
	// ExpiryReturnToMarket puts the person back into the free-agent pool.
	ExpiryReturnToMarket ExpiryPolicy = "return_to_market"
)

// ParseExpiryPolicy validates a policy name. Empty selects ExpiryRetire.
func ParseExpiryPolicy(s string) (ExpiryPolicy, error) {
	switch ExpiryPolicy(s) {
	case "", ExpiryRetire:
		return ExpiryRetire, nil
	case ExpiryReturnToMarket:
		return ExpiryReturnToMarket, nil
	}
	return "", fmt.Errorf("%w: unknown expiry policy %q", ErrInvalidArgument, s)
}

// ContractLedger holds contracts bucketed by role.
type ContractLedger struct {
	Buckets map[Role][]*Contract `json:"buckets"`
}

// NewContractLedger returns an empty ledger with every bucket present.
func NewContractLedger() *ContractLedger {
	l := &ContractLedger{Buckets: make(map[Role][]*Contract, len(Roles))}
	for _, r := range Roles {
		l.Buckets[r] = []*Contract{}
	}
	return l
}

// Add files a contract in its role bucket.
func (l *ContractLedger) Add(c *Contract) {
	l.Buckets[c.Role] = append(l.Buckets[c.Role], c)
}

// All returns every contract in fixed role order.
func (l *ContractLedger) All() []*Contract {
	var out []*Contract
	for _, r := range Roles {
		out = append(out, l.Buckets[r]...)
	}
	return out
}

// Find looks a contract up by its id.
func (l *ContractLedger) Find(id string) (*Contract, bool) {
	for _, c := range l.All() {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// FindPerson looks a contract up by the contracted person's id.
func (l *ContractLedger) FindPerson(personID string) (*Contract, bool) {
	for _, c := range l.All() {
		if c.Person.Base().ID == personID {
			return c, true
		}
	}
	return nil, false
}

// Len is the total number of contracts.
func (l *ContractLedger) Len() int {
	n := 0
	for _, b := range l.Buckets {
		n += len(b)
	}
	return n
}

// Renew decrements every contract by exactly one month and removes those that reach zero.
// The expired contracts are returned in role order.
func (l *ContractLedger) Renew() []*Contract {
	var expired []*Contract
	for _, r := range Roles {
		kept := l.Buckets[r][:0]
		for _, c := range l.Buckets[r] {
			mustf(c.Remaining > 0, "contract %s has remaining %d before renewal", c.ID, c.Remaining)
			c.Remaining--
			if c.Remaining <= 0 {
				expired = append(expired, c)
				continue
			}
			kept = append(kept, c)
		}
		l.Buckets[r] = kept
	}
	return expired
}

// NewContract hires a person for a number of months at their current salary.
func NewContract(t Talent, months int, rng *rand.Rand) (*Contract, error) {
	if months < 1 {
		return nil, fmt.Errorf("%w: contract length must be at least one month", ErrInvalidArgument)
	}
	return &Contract{
		ID:             newID(rng, "CON"),
		Person:         t,
		Role:           t.Role(),
		DurationMonths: months,
		Remaining:      months,
		Salary:         t.Base().Salary,
	}, nil
}

// AssignTask attaches a task to a contract. A contract holds at most one task.
func AssignTask(c *Contract, def TaskDef) error {
	if c.Task != nil {
		return fmt.Errorf("%w: %s is on %q for %d more month(s)", ErrAlreadyBusy, c.Name(), c.Task.Name, c.Task.Remaining)
	}
	if c.Person.Base().Burnout && def.Effects["stress_relief"] == 0 {
		return fmt.Errorf("%w: %s is burned out and needs time off", ErrAlreadyBusy, c.Name())
	}
	effects := make(map[string]float64, len(def.Effects))
	for k, v := range def.Effects {
		effects[k] = v
	}
	c.Task = &ActiveTask{
		Name:        def.Name,
		Remaining:   max(1, def.Duration),
		Effects:     effects,
		Risks:       slices.Clone(def.Risks),
		Description: def.Description,
	}
	return nil
}

// TaskResult describes one completed task.
type TaskResult struct {
	ContractID string             `json:"contract_id"`
	Person     string             `json:"person"`
	Task       string             `json:"task"`
	Applied    map[string]float64 `json:"applied"`
	Risks      []string           `json:"risks,omitempty"`
	Headlines  []string           `json:"headlines"`
}

// progressTasks ticks every active task and resolves the ones that finish this month.
func (g *Game) progressTasks() []TaskResult {
	var results []TaskResult
	for _, c := range g.Studio.Contracts.All() {
		if c.Task == nil {
			continue
		}
		mustf(c.Task.Remaining > 0, "task %q on %s has remaining %d", c.Task.Name, c.ID, c.Task.Remaining)
		c.Task.Remaining--
		if c.Task.Remaining > 0 {
			continue
		}
		results = append(results, g.resolveTask(c))
		c.Task = nil
	}
	return results
}

func (g *Game) resolveTask(c *Contract) TaskResult {
	task := c.Task
	p := c.Person.Base()
	res := TaskResult{ContractID: c.ID, Person: p.Name, Task: task.Name, Applied: map[string]float64{}}
	news := func(format string, args ...any) {
		h := fmt.Sprintf(format, args...)
		res.Headlines = append(res.Headlines, h)
		g.Studio.AddNews(h)
	}

	// 1. Roll every risk independently
	failed := false
	for _, r := range task.Risks {
		if g.rng.Float64() >= r.Chance {
			continue
		}
		res.Risks = append(res.Risks, r.Name)
		switch r.Name {
		case "failure", "injury":
			failed = true
		case "burnout":
			p.Burnout = true
		case "scandal":
			p.Fame = max(0, p.Fame-2)
			g.Studio.Prestige = max(0, g.Studio.Prestige-1)
		case "prestige_loss":
			g.Studio.Prestige = max(0, g.Studio.Prestige-1)
		}
		if r.Cash != 0 {
			g.applyCash(fmt.Sprintf("%s: %s", task.Name, r.Name), r.Cash)
		}
		news("⚠️ %s's %s ended in %s.", p.Name, task.Name, r.Name)
	}
	if failed {
		return res
	}

	// 2. Apply effects in stable key order
	keys := make([]string, 0, len(task.Effects))
	for k := range task.Effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := task.Effects[k]
		switch k {
		case "fame":
			p.Fame = clampInt(p.Fame+int(v), 0, 100)
		case "prestige":
			g.Studio.Prestige += int(v)
		case "cash":
			g.applyCash(fmt.Sprintf("%s by %s", task.Name, p.Name), v)
		case "buzz":
			g.Studio.PendingBuzz += int(v)
		case "quality_boost":
			c.QualityBoost += v
		case "script_quality":
			c.ScriptBonus += int(v)
		case "experience":
			p.Experience += int(v)
		case "synergy":
			g.Studio.Synergy += int(v)
		case "stress_relief":
			p.Burnout = false
		case "theme_unlock":
			if theme, ok := g.unlockTheme(); ok {
				news("💡 %s unlocked the theme %q.", p.Name, theme)
			}
		case "script_concept":
			concept := fmt.Sprintf("%s concept pitched by %s", g.conceptGenre(c), p.Name)
			g.Studio.Concepts = append(g.Studio.Concepts, concept)
		default:
			g.log.Warn("unknown task effect", "task", task.Name, "effect", k)
			continue
		}
		res.Applied[k] = v
	}
	news("✅ %s completed %s.", p.Name, task.Name)
	return res
}

func (g *Game) applyCash(desc string, amount float64) {
	if amount >= 0 {
		g.Studio.credit(g.Calendar.Date, TxTask, desc, amount)
		return
	}
	g.Studio.debit(g.Calendar.Date, TxTask, desc, -amount)
}

func (g *Game) unlockTheme() (string, bool) {
	var locked []string
	for _, t := range g.Content.BonusThemes {
		if !slices.Contains(g.Studio.UnlockedThemes, t) {
			locked = append(locked, t)
		}
	}
	if len(locked) == 0 {
		return "", false
	}
	theme := pick(g.rng, locked)
	g.Studio.UnlockedThemes = append(g.Studio.UnlockedThemes, theme)
	return theme, true
}

func (g *Game) conceptGenre(c *Contract) string {
	if d, ok := c.Person.(*Director); ok && d.GenreFocus != "" {
		return d.GenreFocus
	}
	return pick(g.rng, g.Content.GenreKeys())
}

// renewContracts counts every contract down and applies the expiry policy.
func (g *Game) renewContracts() []string {
	var names []string
	for _, c := range g.Studio.Contracts.Renew() {
		p := c.Person.Base()
		names = append(names, p.Name)
		switch g.Options.ExpiryPolicy {
		case ExpiryReturnToMarket:
			g.Market.ReturnTalent(c.Person)
			g.Studio.AddNews(fmt.Sprintf("📄 %s's contract expired; they are back on the market.", p.Name))
		default:
			g.Studio.AddNews(fmt.Sprintf("📄 %s's contract expired.", p.Name))
		}
		g.log.Debug("contract expired", "person", p.Name, "role", c.Role, "policy", g.Options.ExpiryPolicy)
	}
	return names
}
