/*
Package game
File: economy.go
Description:
    Handles the shared free-agent market.
    This includes:
    1. Seeding and replenishing the pool of unsigned talent and unsold scripts.
    2. Repricing every script and salary from scarcity and genre demand.
    3. Procedural talent generation.

    Only buyers (the player and rivals) remove items from the pool.
*/

package game

import (
	"math"
	"math/rand"
	"slices"
)

// MarketPool is the shared pool of unsigned talent and unsold scripts.
type MarketPool struct {
	Scripts   []*Script      `json:"scripts"`
	Actors    []*Actor       `json:"actors"`
	Writers   []*Writer      `json:"writers"`
	Directors []*Director    `json:"directors"`
	Staff     []*StaffMember `json:"staff"`
}

// NewMarketPool seeds the opening market.
func NewMarketPool(content *Content, cal *Calendar, rng *rand.Rand) *MarketPool {
	m := &MarketPool{}
	t := content.Market

	for i := 0; i < t.StartActors; i++ {
		m.Actors = append(m.Actors, GenerateActor(content, cal.Year, rng))
	}
	for i := 0; i < t.StartDirectors; i++ {
		m.Directors = append(m.Directors, GenerateDirector(content, cal.Year, rng))
	}
	for i := 0; i < t.StartWriters; i++ {
		m.Writers = append(m.Writers, GenerateWriter(content, cal.Year, rng))
	}
	for _, role := range content.StaffRoles() {
		for i := 0; i < t.StartStaffPerRole; i++ {
			m.Staff = append(m.Staff, GenerateStaff(content, role, cal.Year, rng))
		}
	}
	for i := 0; i < t.StartScripts && len(m.Writers) > 0; i++ {
		w := m.Writers[rng.Intn(len(m.Writers))]
		if s, err := GenerateScript(content, cal, w, ScriptOptions{}, rng); err == nil {
			m.Scripts = append(m.Scripts, s)
		}
	}

	m.AdjustPrices(content, cal)
	return m
}

// Refresh is the monthly replenish step. New talent arrives every month,
// and writers on the market pitch fresh scripts. Returns the number of scripts added.
func (m *MarketPool) Refresh(content *Content, cal *Calendar, rng *rand.Rand) int {
	t := content.Market

	// 1. New faces
	for i := 0; i < t.ActorsPerMonth; i++ {
		m.Actors = append(m.Actors, GenerateActor(content, cal.Year, rng))
	}
	for i := 0; i < t.DirectorsPerMonth; i++ {
		m.Directors = append(m.Directors, GenerateDirector(content, cal.Year, rng))
	}
	for i := 0; i < t.WritersPerMonth; i++ {
		m.Writers = append(m.Writers, GenerateWriter(content, cal.Year, rng))
	}
	roles := content.StaffRoles()
	for i := 0; i < t.StaffPerMonth && len(roles) > 0; i++ {
		m.Staff = append(m.Staff, GenerateStaff(content, pick(rng, roles), cal.Year, rng))
	}

	// 2. Staff pool is capped; the oldest listings drop off
	if t.StaffCap > 0 && len(m.Staff) > t.StaffCap {
		m.Staff = slices.Clone(m.Staff[len(m.Staff)-t.StaffCap:])
	}

	// 3. Market writers pitch scripts
	added := 0
	if len(m.Writers) > 0 {
		idx := rng.Perm(len(m.Writers))
		for i := 0; i < t.ScriptWritersPerMonth && i < len(idx); i++ {
			s, err := GenerateScript(content, cal, m.Writers[idx[i]], ScriptOptions{}, rng)
			if err != nil {
				continue
			}
			m.Scripts = append(m.Scripts, s)
			added++
		}
	}
	return added
}

// scarcity is > 1 when count falls below floor.
func scarcity(count, floor int, step float64) float64 {
	if count >= floor {
		return 1.0
	}
	return 1.0 + step*float64(floor-count)
}

// AdjustPrices recomputes every price and salary in place from base formulas.
// It is a pure function of pool contents and calendar state: calling it twice yields the same prices.
func (m *MarketPool) AdjustPrices(content *Content, cal *Calendar) {
	t := content.Market
	scriptScarcity := scarcity(len(m.Scripts), t.ScriptFloor, t.ScarcityStep)
	actorScarcity := scarcity(len(m.Actors), t.ActorFloor, t.ScarcityStep)

	for _, s := range m.Scripts {
		s.Value = round2(float64(s.PotentialQuality) * t.PriceFactor * scriptScarcity * cal.GenreDemand(s.Genre))
	}
	for _, a := range m.Actors {
		a.Salary = round2(actorBaseSalary(a.Fame) * actorScarcity)
	}
	for _, w := range m.Writers {
		w.Salary = writerBaseSalary(w.Fame)
	}
	for _, d := range m.Directors {
		d.Salary = directorBaseSalary(d.Fame)
	}
	for _, s := range m.Staff {
		s.Salary = staffBaseSalary(s.Fame, s.Experience)
	}
}

func actorBaseSalary(fame int) float64    { return round1(float64(fame) * 0.1) }
func writerBaseSalary(fame int) float64   { return round2(0.3 + float64(fame)*0.02) }
func directorBaseSalary(fame int) float64 { return round2(0.5 + float64(fame)*0.03) }
func staffBaseSalary(fame, exp int) float64 {
	return round2(float64(fame)*0.02 + float64(exp)*0.01)
}

// TakeScript removes a script from the pool. Removing an item the same turn it was added is legal.
func (m *MarketPool) TakeScript(id string) (*Script, bool) {
	s, i := GetScript(m.Scripts, id)
	if s == nil {
		return nil, false
	}
	m.Scripts = removeAt(m.Scripts, i)
	return s, true
}

// TakeTalent removes an unsigned person of the given role from the pool.
func (m *MarketPool) TakeTalent(role Role, id string) (Talent, bool) {
	switch role {
	case RoleActor:
		if i := slices.IndexFunc(m.Actors, func(a *Actor) bool { return a.ID == id }); i >= 0 {
			a := m.Actors[i]
			m.Actors = removeAt(m.Actors, i)
			return a, true
		}
	case RoleWriter:
		if i := slices.IndexFunc(m.Writers, func(w *Writer) bool { return w.ID == id }); i >= 0 {
			w := m.Writers[i]
			m.Writers = removeAt(m.Writers, i)
			return w, true
		}
	case RoleDirector:
		if i := slices.IndexFunc(m.Directors, func(d *Director) bool { return d.ID == id }); i >= 0 {
			d := m.Directors[i]
			m.Directors = removeAt(m.Directors, i)
			return d, true
		}
	case RoleStaff:
		if i := slices.IndexFunc(m.Staff, func(s *StaffMember) bool { return s.ID == id }); i >= 0 {
			s := m.Staff[i]
			m.Staff = removeAt(m.Staff, i)
			return s, true
		}
	}
	return nil, false
}

// ReturnTalent puts a person back on the market.
func (m *MarketPool) ReturnTalent(t Talent) {
	switch p := t.(type) {
	case *Actor:
		m.Actors = append(m.Actors, p)
	case *Writer:
		m.Writers = append(m.Writers, p)
	case *Director:
		m.Directors = append(m.Directors, p)
	case *StaffMember:
		m.Staff = append(m.Staff, p)
	}
}

// TopActor returns the highest-fame unsigned actor (first listed wins ties).
func (m *MarketPool) TopActor() *Actor {
	var best *Actor
	for _, a := range m.Actors {
		if best == nil || a.Fame > best.Fame {
			best = a
		}
	}
	return best
}

// Age moves every free agent one year older. Staff gain experience instead.
func (m *MarketPool) Age() {
	for _, a := range m.Actors {
		a.Age++
	}
	for _, w := range m.Writers {
		w.Age++
	}
	for _, d := range m.Directors {
		d.Age++
	}
	for _, s := range m.Staff {
		s.Experience++
	}
}

func randomName(content *Content, rng *rand.Rand) string {
	return pick(rng, content.Talent.FirstNames) + " " + pick(rng, content.Talent.LastNames)
}

// GenerateActor creates a new performer debuting this year.
func GenerateActor(content *Content, year int, rng *rand.Rand) *Actor {
	fame := clampInt(int(math.Round(rng.NormFloat64()*15+60)), 20, 99)
	a := &Actor{Person: Person{
		ID:          newID(rng, "ACT"),
		Name:        randomName(content, rng),
		Fame:        fame,
		Salary:      actorBaseSalary(fame),
		Tags:        sample(rng, content.Talent.ActorTags, randRange(rng, 1, 2)),
		Age:         randRange(rng, 20, 35),
		DebutYear:   year,
		FilmHistory: []Credit{},
	}}
	if len(content.Talent.ActorTraits) > 0 {
		a.Traits = []string{pick(rng, content.Talent.ActorTraits)}
	}
	return a
}

// GenerateWriter creates a writer with a specialty, education and signature tags.
func GenerateWriter(content *Content, year int, rng *rand.Rand) *Writer {
	fame := randRange(rng, 10, 70)
	age := randRange(rng, 28, 55)
	specialty := pick(rng, content.GenreKeys())
	w := &Writer{
		Person: Person{
			ID:          newID(rng, "WRI"),
			Name:        randomName(content, rng),
			Fame:        fame,
			Salary:      writerBaseSalary(fame),
			Age:         age,
			DebutYear:   year - randRange(rng, 0, age-22),
			FilmHistory: []Credit{},
		},
		Specialty:  specialty,
		Education:  pick(rng, content.Talent.WriterEducations),
		SkillLevel: round2(uniform(rng, 0.8, 1.2)),
	}
	w.Tags = append([]string{specialty}, sample(rng, content.Talent.WriterSignatureTags, 2)...)
	if len(content.Talent.WriterStyles) > 0 && rng.Float64() < 0.5 {
		w.Style = []string{pick(rng, content.Talent.WriterStyles)}
	}
	if fame < 40 {
		w.Reputation = "Rising Star"
	} else {
		w.Reputation = "Established"
	}
	return w
}

// GenerateDirector creates a director with a genre focus.
func GenerateDirector(content *Content, year int, rng *rand.Rand) *Director {
	fame := randRange(rng, 20, 75)
	return &Director{
		Person: Person{
			ID:          newID(rng, "DIR"),
			Name:        randomName(content, rng),
			Fame:        fame,
			Salary:      directorBaseSalary(fame),
			Tags:        sample(rng, content.Talent.DirectorTags, 2),
			Age:         randRange(rng, 30, 60),
			DebutYear:   year - randRange(rng, 0, 10),
			FilmHistory: []Credit{},
		},
		GenreFocus: pick(rng, content.GenreKeys()),
		Education:  pick(rng, content.Talent.DirectorEducations),
	}
}

// GenerateStaff creates a crew member for a staff role.
func GenerateStaff(content *Content, role string, year int, rng *rand.Rand) *StaffMember {
	fame := randRange(rng, 10, 90)
	exp := randRange(rng, 1, 30)
	return &StaffMember{
		Person: Person{
			ID:          newID(rng, "STF"),
			Name:        randomName(content, rng),
			Fame:        fame,
			Salary:      staffBaseSalary(fame, exp),
			Tags:        slices.Clone(content.Talent.StaffTags[role]),
			Age:         randRange(rng, 22, 60),
			DebutYear:   year,
			Experience:  exp,
			FilmHistory: []Credit{},
		},
		StaffRole: role,
		Specialty: pick(rng, content.Talent.StaffSpecialties[role]),
		Education: pick(rng, content.Talent.StaffEducations),
	}
}
