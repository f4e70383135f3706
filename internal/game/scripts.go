/*
Package game
File: scripts.go
Description:
    The Script model: procedural generation, rating assignment, rewrites,
    finalization and resale pricing.
    Invariant for every script: 0 <= Quality <= PotentialQuality <= 100.
*/

package game

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
)

// ScriptOptions tune GenerateScript.
type ScriptOptions struct {
	Source      string   // Source-type key; empty picks one at random
	ExtraThemes []string // Unlocked themes added to the theme pool
	Bonus       int      // Banked quality bonus, capped by the gap to potential
}

// GenerateScript writes a new draft for the writer.
func GenerateScript(content *Content, cal *Calendar, writer *Writer, opts ScriptOptions, rng *rand.Rand) (*Script, error) {
	if writer == nil {
		return nil, fmt.Errorf("%w: a writer is required", ErrInvalidArgument)
	}

	// 1. Source material
	sourceKey := opts.Source
	if sourceKey == "" {
		sourceKey = pick(rng, content.SourceKeys())
	}
	source, ok := content.SourceTypes[sourceKey]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidArgument, sourceKey)
	}

	// 2. Genre: the writer's specialty when the source supports it
	genre := writer.Specialty
	specialtyMatch := slices.Contains(source.AssociatedGenres, genre)
	if !specialtyMatch {
		genre = pick(rng, source.AssociatedGenres)
	}
	info := content.Genres[genre]

	// 3. Tags: genre tags, the writer's tags and one theme
	themes := make([]string, 0, len(content.Themes)+len(opts.ExtraThemes))
	for _, t := range content.Themes {
		themes = append(themes, t.Name)
	}
	themes = append(themes, opts.ExtraThemes...)
	theme := pick(rng, themes)

	tags := sample(rng, info.CommonTags, 2)
	tags = append(tags, writer.Tags...)
	tags = append(tags, theme)
	tags = dedupe(tags)

	// 4. Quality ceiling and first draft
	career := float64(cal.Year - writer.DebutYear)
	potential := 40.0
	if specialtyMatch {
		potential += 15
	}
	if slices.Contains(content.Talent.PremiumEducations, writer.Education) {
		potential += 5
	}
	potential += math.Min(math.Max(career*0.5, 0), 10)
	skill := writer.SkillLevel
	if skill <= 0 {
		skill = 1
	}
	pot := clampInt(int(math.Round(potential*skill)), 30, 100)
	quality := max(1, int(math.Round(float64(pot)*uniform(rng, 0.6, 0.85))))
	if opts.Bonus > 0 {
		quality = min(pot, quality+opts.Bonus)
	}

	s := &Script{
		ID:               newID(rng, "SCR"),
		Title:            generateTitle(content, genre, rng),
		Genre:            genre,
		Source:           sourceKey,
		Theme:            theme,
		Tags:             tags,
		Status:           ScriptDraft,
		Quality:          quality,
		PotentialQuality: pot,
		DraftNumber:      1,
		BudgetClass:      info.BudgetAffinity[rng.Intn(len(info.BudgetAffinity))],
		Appeal:           round2(uniform(rng, 0.3, 1.0)),
		Writer:           writer,
		RewriteHistory:   []string{writer.Name},
	}
	s.Rating = AssignRating(content, s.Tags, s.Genre)

	// 5. Buzz
	buzz := 10 + pot/10 + source.BaseBuzz/10
	if specialtyMatch {
		buzz += 5
	}
	if slices.Contains(writer.Style, "controversial & edgy") {
		buzz += 4
	}
	if slices.Contains(writer.Style, "family & heartwarming") {
		buzz += 3
	}
	buzz += randRange(rng, -3, 3)
	s.Buzz = max(0, buzz)
	s.Value = round2(float64(pot) * content.Market.PriceFactor * source.CostMultiplier)

	mustf(s.Quality >= 0 && s.Quality <= s.PotentialQuality && s.PotentialQuality <= 100,
		"script %s quality %d potential %d", s.ID, s.Quality, s.PotentialQuality)
	return s, nil
}

// AssignRating picks an MPAA-style rating from tags and genre.
// The result is always a member of the genre's allowed set.
func AssignRating(content *Content, tags []string, genre string) string {
	rules := content.RatingRules
	rating := rules.Default

	if hasAnyTag(tags, rules.AdultTags) {
		rating = "R"
	}
	switch {
	case hasAnyTag(tags, rules.ExplicitTags):
		rating = "NC-17"
	case hasAnyTag(tags, rules.FamilyTags):
		rating = "PG"
	case genre == rules.FamilyGenre:
		rating = "G"
	}

	allowed := content.allowedRatings(genre)
	if slices.Contains(allowed, rating) {
		return rating
	}

	// Fall back to the most permissive allowed rating (lowest minimum age).
	best := allowed[0]
	for _, r := range allowed[1:] {
		if content.Ratings[r].MinAge < content.Ratings[best].MinAge {
			best = r
		}
	}
	return best
}

// RewriteScript runs one rewrite pass. Approved scripts are refused with ErrAlreadyApproved
// and left untouched.
func RewriteScript(_ *Content, cal *Calendar, s *Script, writer *Writer, bonus int) error {
	if s.Status == ScriptApproved {
		return fmt.Errorf("%w: %q is locked", ErrAlreadyApproved, s.Title)
	}
	if s.Status == ScriptInProduction {
		return fmt.Errorf("%w: %q is already in production", ErrInvalidArgument, s.Title)
	}
	if writer == nil {
		return fmt.Errorf("%w: a writer is required", ErrInvalidArgument)
	}

	// 1. Raw improvement
	specialtyMatch := writer.Specialty == s.Genre
	improvement := 0.0
	if specialtyMatch {
		improvement += 10
	}
	improvement += 4 * float64(tagOverlap(writer.Tags, s.Tags))
	improvement += math.Min(math.Max(float64(cal.Year-writer.DebutYear)*0.25, 0), 8)
	improvement += float64(bonus)

	// 2. Diminishing returns per draft, capped by the gap to potential
	penalty := 2 * float64(s.DraftNumber-1)
	net := math.Max(0, improvement-penalty)
	gap := float64(s.PotentialQuality - s.Quality)
	actual := math.Min(net, gap)

	s.Quality = min(s.PotentialQuality, int(math.Round(float64(s.Quality)+actual)))
	s.DraftNumber++
	s.Status = ScriptRewritten
	if !slices.Contains(s.RewriteHistory, writer.Name) {
		s.RewriteHistory = append(s.RewriteHistory, writer.Name)
	}

	// Buzz restarts from the new draft; source hype only counts at generation.
	buzz := 10 + s.Quality/10
	if specialtyMatch {
		buzz += 5
	}
	s.Buzz = max(0, buzz)

	mustf(s.Quality >= 0 && s.Quality <= s.PotentialQuality,
		"rewrite of %s produced quality %d over potential %d", s.ID, s.Quality, s.PotentialQuality)
	return nil
}

// FinalizeScript approves the script and stamps the approval date.
func FinalizeScript(s *Script, on Date) {
	s.Status = ScriptApproved
	s.FinalizedOn = &on
}

// ResaleValue prices a script sold back to the market.
func ResaleValue(content *Content, s *Script, rng *rand.Rand) float64 {
	r := content.Resale
	mult := r.BaseMultiplier + uniform(rng, -r.Volatility, r.Volatility) + r.GenreBonus[s.Genre]
	return round2(math.Max(r.Floor, float64(s.PotentialQuality)*mult))
}

// generateTitle fills one of the title structures with genre-specific words.
func generateTitle(content *Content, genre string, rng *rand.Rand) string {
	info := content.Genres[genre]
	noun := pick(rng, info.TitleNouns)
	noun2 := pick(rng, info.TitleNouns)
	for i := 0; noun2 == noun && len(info.TitleNouns) > 1 && i < 5; i++ {
		noun2 = pick(rng, info.TitleNouns)
	}
	r := strings.NewReplacer(
		"{prefix}", pick(rng, info.TitlePrefixes),
		"{noun}", noun,
		"{noun2}", noun2,
		"{mid_phrase}", pick(rng, content.MidPhrases),
		"{place}", pick(rng, content.Places),
		"{adjective}", pick(rng, content.Adjectives),
	)
	return strings.Join(strings.Fields(r.Replace(pick(rng, content.TitleStructures))), " ")
}
