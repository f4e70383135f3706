/*
Package game
File: rivals.go
Description:
    Rival studio AI and the script auction. Rivals act once per month after
    the market refresh and before the player, buying trending scripts and
    signing the most famous free actor.
*/

package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// RivalStudio is a computer-controlled competitor.
type RivalStudio struct {
	Name     string    `json:"name"`
	Balance  float64   `json:"balance"`
	Prestige int       `json:"prestige"`
	Scripts  []*Script `json:"scripts"`
	Actors   []*Actor  `json:"actors"`
}

// NewRivals builds the rival roster from content.
func NewRivals(content *Content) []*RivalStudio {
	out := make([]*RivalStudio, 0, len(content.Rivals.Studios))
	for _, d := range content.Rivals.Studios {
		out = append(out, &RivalStudio{Name: d.Name, Balance: d.Balance, Prestige: d.Prestige})
	}
	return out
}

// RivalsAct runs every rival's monthly policy against the shared pool.
func RivalsAct(content *Content, cal *Calendar, pool *MarketPool, rivals []*RivalStudio, rng *rand.Rand) []string {
	var news []string
	for _, r := range rivals {
		// 1. Buy a script, trending genres first
		if rng.Float64() < content.Rivals.ScriptChance && len(pool.Scripts) > 0 {
			var candidates []*Script
			for _, s := range pool.Scripts {
				if cal.IsTrending(s.Genre) {
					candidates = append(candidates, s)
				}
			}
			if len(candidates) == 0 {
				candidates = pool.Scripts
			}
			s := candidates[rng.Intn(len(candidates))]
			if r.Balance >= s.Value {
				pool.TakeScript(s.ID)
				r.Balance = round2(r.Balance - s.Value)
				r.Scripts = append(r.Scripts, s)
				news = append(news, fmt.Sprintf("🏢 %s bought the script %q.", r.Name, s.Title))
			}
		}

		// 2. Sign the most famous free actor
		if rng.Float64() < content.Rivals.ActorChance {
			if a := pool.TopActor(); a != nil {
				pool.TakeTalent(RoleActor, a.ID)
				r.Actors = append(r.Actors, a)
				news = append(news, fmt.Sprintf("🏢 %s signed %s.", r.Name, a.Name))
			}
		}
	}
	return news
}

// AuctionResult is the outcome of a script auction.
type AuctionResult struct {
	ScriptID string             `json:"script_id"`
	Title    string             `json:"title"`
	Winner   string             `json:"winner"`
	Price    float64            `json:"price"`
	Bids     map[string]float64 `json:"bids"`
	Won      bool               `json:"won"` // The player won
}

// RunAuction lets rivals counter the player's bid. Rivals holding more than
// threshold x bid may bid up to ceiling x bid. The highest bid wins.
func RunAuction(content *Content, playerName string, bid float64, rivals []*RivalStudio, rng *rand.Rand) AuctionResult {
	t := content.Market
	res := AuctionResult{Winner: playerName, Price: round2(bid), Bids: map[string]float64{playerName: round2(bid)}, Won: true}

	sorted := append([]*RivalStudio(nil), rivals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, r := range sorted {
		if r.Balance <= bid*t.AuctionThreshold {
			continue
		}
		offer := round2(min(r.Balance, uniform(rng, bid, bid*t.AuctionCeiling)))
		res.Bids[r.Name] = offer
		if offer > res.Price {
			res.Winner, res.Price, res.Won = r.Name, offer, false
		}
	}
	return res
}
