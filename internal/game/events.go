/*
Package game
File: events.go
Description:
    The monthly event engine. Rolls independent low-probability triggers
    against released movies (once per movie), scheduled movies (every month
    until release) and the studio itself. Every trigger mutates one field and
    produces a headline.
*/

package game

import (
	"fmt"
	"slices"
)

// Event probabilities.
const (
	chanceDivaClash      = 0.10
	chanceTabloidScandal = 0.05
	chanceSelfTaught     = 0.08
	chanceMoralPanic     = 0.15
	chanceCriticsDarling = 0.20
	chanceFanFavourite   = 0.10
	chanceLawsuit        = 0.04
	chanceInvestor       = 0.03
	chanceDelay          = 0.05
	chancePressBuzz      = 0.05
)

func (g *Game) rollEvents() []string {
	var news []string
	add := func(format string, args ...any) {
		h := fmt.Sprintf(format, args...)
		news = append(news, h)
		g.Studio.AddNews(h)
	}

	// 1. Released movies, rolled once each
	for _, m := range g.Studio.Released {
		if m.EventChecked {
			continue
		}
		m.EventChecked = true

		for _, a := range m.Cast {
			if slices.Contains(a.Traits, "diva") && g.rng.Float64() < chanceDivaClash {
				a.Reputation = "difficult"
				add("🎭 %s clashed with the crew of %s.", a.Name, m.Title)
			}
			if a.Fame > 75 && g.rng.Float64() < chanceTabloidScandal {
				a.Fame = max(10, a.Fame-5)
				add("📰 Tabloid scandal: %s is all over the gossip pages.", a.Name)
			}
		}
		if d := m.Director; d != nil && d.Education == "Self-Taught" && g.rng.Float64() < chanceSelfTaught {
			m.Quality = max(1, m.Quality-2)
			add("🎥 Critics call %s's direction of %s unpolished.", d.Name, m.Title)
		}
		if m.Genre == "Horror" && (m.Rating == "R" || m.Rating == "NC-17") && g.rng.Float64() < chanceMoralPanic {
			m.Buzz += 5
			add("😱 Moral panic over %s drives curious crowds.", m.Title)
		}
		if m.Genre == "Drama" && m.Quality > 85 && g.rng.Float64() < chanceCriticsDarling {
			m.BonusAwards++
			add("🏆 %s is the critics' darling of the season.", m.Title)
		}
		if m.Genre == "Romance" && slices.Contains(m.Tags, "emotional") && g.rng.Float64() < chanceFanFavourite {
			m.Prestige++
			g.Studio.Prestige++
			add("💖 Fans fall in love with %s.", m.Title)
		}
	}

	// 2. Movies waiting for release
	for _, m := range g.Studio.Scheduled {
		if g.rng.Float64() < chanceDelay {
			m.ReleaseDate = m.ReleaseDate.AddMonths(1)
			add("⏳ %s is delayed to %s.", m.Title, m.ReleaseDate)
		}
		if g.rng.Float64() < chancePressBuzz {
			m.Buzz += 5
			add("📣 Early press buzz builds for %s.", m.Title)
		}
	}

	// 3. Studio-wide
	if g.rng.Float64() < chanceLawsuit {
		g.Studio.Prestige = max(0, g.Studio.Prestige-1)
		add("⚖️ %s is hit with a lawsuit.", g.Studio.Name)
	}
	if g.rng.Float64() < chanceInvestor {
		g.Studio.credit(g.Calendar.Date, TxEvent, "Investor rescue", 10)
		add("💰 An investor injects fresh money into %s.", g.Studio.Name)
	}
	return news
}
