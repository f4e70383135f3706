/*
Package game
File: autopilot.go
Description:
    A simple player policy used by headless simulations. Each month it
    finalizes drafts, keeps one actor and one director under contract,
    buys a script it can afford to shoot, greenlights it and books a
    basic wide release once post-production starts.
*/

package game

import (
	"errors"
	"fmt"
)

const (
	autopilotContractMonths = 12
	autopilotMonthsAhead    = 6
	autopilotMargin         = 15.0 // Cash kept back for salaries and overhead
)

// Autopilot plays one month of player actions and returns what it did.
// Refused actions are skipped; the game is never left half-changed.
func (g *Game) Autopilot() []string {
	var log []string
	note := func(format string, args ...any) {
		log = append(log, fmt.Sprintf(format, args...))
	}

	// 1. Drafts straight to the library
	for len(g.Studio.Scripts) > 0 {
		s, err := g.FinalizeScript(g.Studio.Scripts[0].ID)
		if err != nil {
			break
		}
		note("finalized %q", s.Title)
	}

	// 2. Keep one of each key role signed
	for _, role := range []Role{RoleActor, RoleDirector} {
		if len(g.Studio.Contracts.Buckets[role]) > 0 {
			continue
		}
		if id, ok := g.cheapestFreeAgent(role); ok {
			if c, err := g.SignTalent(role, id, autopilotContractMonths); err == nil {
				note("signed %s (%s)", c.Name(), role)
			}
		}
	}

	// 3. One script in hand
	if g.nextApproved() == nil {
		if s := g.affordableScript(); s != nil {
			if _, err := g.BuyScript(s.ID); err == nil {
				note("bought %q for %.2fM", s.Title, s.Value)
				if _, err := g.FinalizeScript(s.ID); err == nil {
					note("finalized %q", s.Title)
				}
			}
		}
	}

	// 4. Greenlight
	if s := g.nextApproved(); s != nil {
		actor, director := g.freeContract(RoleActor), g.freeContract(RoleDirector)
		if actor != nil && director != nil {
			m, err := g.StartProduction(ProductionRequest{
				ScriptID:    s.ID,
				CastIDs:     []string{actor.ID},
				DirectorID:  director.ID,
				MonthsAhead: autopilotMonthsAhead,
			})
			switch {
			case err == nil:
				note("greenlit %q (quality %d, release %s)", m.Title, m.Quality, m.ReleaseDate)
			case errors.Is(err, ErrInsufficientFunds):
				g.log.Debug("autopilot waiting for funds", "title", s.Title, "balance", g.Studio.Balance)
			default:
				g.log.Debug("autopilot production refused", "title", s.Title, "error", err)
			}
		}
	}

	// 5. Release plans
	for _, m := range g.Studio.Scheduled {
		if m.Status != MoviePostProduction {
			continue
		}
		if _, err := g.SetMarketingAndRelease(m.ID, "Basic", ReleaseWide); err == nil {
			note("booked a wide release for %q", m.Title)
		}
	}
	return log
}

func (g *Game) cheapestFreeAgent(role Role) (string, bool) {
	var people []Talent
	switch role {
	case RoleActor:
		for _, a := range g.Market.Actors {
			people = append(people, a)
		}
	case RoleDirector:
		for _, d := range g.Market.Directors {
			people = append(people, d)
		}
	}
	var best *Person
	for _, t := range people {
		p := t.Base()
		if p.Salary > g.Studio.Balance*0.05 {
			continue
		}
		if best == nil || p.Salary < best.Salary {
			best = p
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

func (g *Game) nextApproved() *Script {
	for _, s := range g.Studio.Library {
		if s.Status == ScriptApproved {
			return s
		}
	}
	return nil
}

// affordableScript picks the cheapest market script the studio could also afford to shoot.
func (g *Game) affordableScript() *Script {
	var best *Script
	for _, s := range g.Market.Scripts {
		need := s.Value + g.Content.Finance.BudgetBase[s.BudgetClass] + autopilotMargin
		if need > g.Studio.Balance {
			continue
		}
		if best == nil || s.Value < best.Value {
			best = s
		}
	}
	return best
}

func (g *Game) freeContract(role Role) *Contract {
	for _, c := range g.Studio.Contracts.Buckets[role] {
		if c.Task == nil {
			return c
		}
	}
	return nil
}
