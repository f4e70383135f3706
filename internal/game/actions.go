/*
Package game
File: actions.go
Description:
    The player-facing action surface. Every action either changes state and
    returns the affected entity, or returns a typed failure (see mechanics.go)
    and leaves the game untouched.
*/

package game

import (
	"fmt"
	"slices"
)

// BuyScript purchases a script from the market at its current value.
func (g *Game) BuyScript(id string) (*Script, error) {
	s, _ := GetScript(g.Market.Scripts, id)
	if s == nil {
		return nil, fmt.Errorf("%w: script %s is not on the market", ErrNotFound, id)
	}
	if !g.Studio.CanAfford(s.Value) {
		return nil, fmt.Errorf("%w: %q costs %.2f, balance is %.2f", ErrInsufficientFunds, s.Title, s.Value, g.Studio.Balance)
	}

	g.Market.TakeScript(id)
	g.Studio.debit(g.Calendar.Date, TxScript, fmt.Sprintf("Bought script %s", s.Title), s.Value)
	g.fileScript(s)
	g.Studio.AddNews(fmt.Sprintf("📜 Acquired %q (%s) for %.2fM.", s.Title, s.Genre, s.Value))
	return s, nil
}

// AuctionScript puts a market script up for auction with the player's opening bid.
// The script leaves the market whoever wins.
func (g *Game) AuctionScript(id string, bid float64) (AuctionResult, error) {
	s, _ := GetScript(g.Market.Scripts, id)
	if s == nil {
		return AuctionResult{}, fmt.Errorf("%w: script %s is not on the market", ErrNotFound, id)
	}
	if bid <= 0 {
		return AuctionResult{}, fmt.Errorf("%w: bid must be positive", ErrInvalidArgument)
	}
	if !g.Studio.CanAfford(bid) {
		return AuctionResult{}, fmt.Errorf("%w: bid %.2f exceeds balance %.2f", ErrInsufficientFunds, bid, g.Studio.Balance)
	}

	res := RunAuction(g.Content, g.Studio.Name, bid, g.Rivals, g.rng)
	res.ScriptID, res.Title = s.ID, s.Title
	g.Market.TakeScript(id)

	if res.Won {
		g.Studio.debit(g.Calendar.Date, TxScript, fmt.Sprintf("Won auction for %s", s.Title), res.Price)
		g.fileScript(s)
		g.Studio.AddNews(fmt.Sprintf("🔨 Won the auction for %q at %.2fM.", s.Title, res.Price))
		return res, nil
	}
	for _, r := range g.Rivals {
		if r.Name == res.Winner {
			r.Balance = round2(r.Balance - res.Price)
			r.Scripts = append(r.Scripts, s)
		}
	}
	g.Studio.AddNews(fmt.Sprintf("🔨 %s outbid us for %q at %.2fM.", res.Winner, s.Title, res.Price))
	return res, nil
}

// fileScript places an acquired script in drafts or, when already approved, in the library.
func (g *Game) fileScript(s *Script) {
	if s.Status == ScriptApproved || s.Status == ScriptShelved {
		g.Studio.Library = append(g.Studio.Library, s)
		return
	}
	g.Studio.Scripts = append(g.Studio.Scripts, s)
}

// SignTalent hires a free agent for a number of months. The salary is fixed
// at signing and paid monthly; the balance must cover the first month.
func (g *Game) SignTalent(role Role, personID string, months int) (*Contract, error) {
	if months < 1 || months > 60 {
		return nil, fmt.Errorf("%w: contract length must be 1-60 months, got %d", ErrInvalidArgument, months)
	}
	t, ok := g.findFreeAgent(role, personID)
	if !ok {
		return nil, fmt.Errorf("%w: no free %s with id %s", ErrNotFound, role, personID)
	}
	if !g.Studio.CanAfford(t.Base().Salary) {
		return nil, fmt.Errorf("%w: %s asks %.2f a month, balance is %.2f", ErrInsufficientFunds, t.Base().Name, t.Base().Salary, g.Studio.Balance)
	}

	c, err := NewContract(t, months, g.rng)
	if err != nil {
		return nil, err
	}
	g.Market.TakeTalent(role, personID)
	g.Studio.Contracts.Add(c)
	g.Studio.AddNews(fmt.Sprintf("✍️ Signed %s for %d month(s) at %.2fM/month.", t.Base().Name, months, c.Salary))
	return c, nil
}

func (g *Game) findFreeAgent(role Role, id string) (Talent, bool) {
	match := func(p *Person) bool { return p.ID == id }
	switch role {
	case RoleActor:
		for _, a := range g.Market.Actors {
			if match(a.Base()) {
				return a, true
			}
		}
	case RoleWriter:
		for _, w := range g.Market.Writers {
			if match(w.Base()) {
				return w, true
			}
		}
	case RoleDirector:
		for _, d := range g.Market.Directors {
			if match(d.Base()) {
				return d, true
			}
		}
	case RoleStaff:
		for _, s := range g.Market.Staff {
			if match(s.Base()) {
				return s, true
			}
		}
	}
	return nil, false
}

// signedWriter resolves a writer contract that is free to work.
func (g *Game) signedWriter(contractID string) (*Contract, *Writer, error) {
	c, ok := g.Studio.Contracts.Find(contractID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
	}
	w, ok := c.Person.(*Writer)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is not a writer", ErrInvalidArgument, c.Name())
	}
	if c.Task != nil {
		return nil, nil, fmt.Errorf("%w: %s is on %q", ErrAlreadyBusy, c.Name(), c.Task.Name)
	}
	return c, w, nil
}

// GenerateScript has a signed writer draft a new script from a source type (empty for random).
func (g *Game) GenerateScript(writerContractID, source string) (*Script, error) {
	c, w, err := g.signedWriter(writerContractID)
	if err != nil {
		return nil, err
	}
	s, err := GenerateScript(g.Content, g.Calendar, w, ScriptOptions{
		Source:      source,
		ExtraThemes: g.Studio.UnlockedThemes,
		Bonus:       c.ScriptBonus,
	}, g.rng)
	if err != nil {
		return nil, err
	}
	c.ScriptBonus = 0
	g.Studio.Scripts = append(g.Studio.Scripts, s)
	g.Studio.AddNews(fmt.Sprintf("📝 %s drafted %q (%s, %s).", w.Name, s.Title, s.Genre, s.Rating))
	return s, nil
}

// RewriteScript sends a draft back to a signed writer. Approved scripts are refused.
func (g *Game) RewriteScript(scriptID, writerContractID string) (*Script, error) {
	s, inLibrary := g.Studio.findDraftOrLibrary(scriptID)
	if s == nil {
		return nil, fmt.Errorf("%w: script %s", ErrNotFound, scriptID)
	}
	if inLibrary && s.Status == ScriptApproved {
		g.log.Info("rewrite refused", "script", s.Title, "reason", "already approved")
		return s, fmt.Errorf("%w: %q is locked", ErrAlreadyApproved, s.Title)
	}
	c, w, err := g.signedWriter(writerContractID)
	if err != nil {
		return nil, err
	}

	before := s.Quality
	if err := RewriteScript(g.Content, g.Calendar, s, w, c.ScriptBonus); err != nil {
		return s, err
	}
	c.ScriptBonus = 0
	g.Studio.AddNews(fmt.Sprintf("✏️ %s rewrote %q: quality %d -> %d (draft %d).", w.Name, s.Title, before, s.Quality, s.DraftNumber))
	return s, nil
}

// FinalizeScript approves a draft (or a shelved script) and moves it to the library.
func (g *Game) FinalizeScript(id string) (*Script, error) {
	if s, i := GetScript(g.Studio.Scripts, id); s != nil {
		FinalizeScript(s, g.Calendar.Date)
		g.Studio.Scripts = removeAt(g.Studio.Scripts, i)
		g.Studio.Library = append(g.Studio.Library, s)
		g.Studio.AddNews(fmt.Sprintf("✅ %q is locked and ready for production.", s.Title))
		return s, nil
	}
	if s, _ := GetScript(g.Studio.Library, id); s != nil {
		if s.Status == ScriptApproved {
			return s, fmt.Errorf("%w: %q", ErrAlreadyApproved, s.Title)
		}
		FinalizeScript(s, g.Calendar.Date)
		return s, nil
	}
	return nil, fmt.Errorf("%w: script %s", ErrNotFound, id)
}

// ShelveScript parks a script in the library without producing it.
func (g *Game) ShelveScript(id string) (*Script, error) {
	if s, i := GetScript(g.Studio.Scripts, id); s != nil {
		s.Status = ScriptShelved
		g.Studio.Scripts = removeAt(g.Studio.Scripts, i)
		g.Studio.Library = append(g.Studio.Library, s)
		return s, nil
	}
	if s, _ := GetScript(g.Studio.Library, id); s != nil {
		s.Status = ScriptShelved
		return s, nil
	}
	return nil, fmt.Errorf("%w: script %s", ErrNotFound, id)
}

// SellScript sells a draft or library script back to the market.
func (g *Game) SellScript(id string) (float64, error) {
	var s *Script
	if found, i := GetScript(g.Studio.Scripts, id); found != nil {
		s = found
		g.Studio.Scripts = removeAt(g.Studio.Scripts, i)
	} else if found, i := GetScript(g.Studio.Library, id); found != nil {
		s = found
		g.Studio.Library = removeAt(g.Studio.Library, i)
	} else {
		return 0, fmt.Errorf("%w: script %s", ErrNotFound, id)
	}

	price := ResaleValue(g.Content, s, g.rng)
	g.Studio.credit(g.Calendar.Date, TxScript, fmt.Sprintf("Sold script %s", s.Title), price)
	s.Value = price
	g.Market.Scripts = append(g.Market.Scripts, s)
	g.Studio.AddNews(fmt.Sprintf("💵 Sold %q for %.2fM.", s.Title, price))
	return price, nil
}

// ProductionRequest names the people and script for StartProduction by id.
type ProductionRequest struct {
	ScriptID    string   `json:"script_id"`
	CastIDs     []string `json:"cast_ids"`    // Actor contract ids, lead first
	DirectorID  string   `json:"director_id"` // Director contract id
	StaffIDs    []string `json:"staff_ids"`   // Optional staff contract ids
	MonthsAhead int      `json:"months_ahead"`
}

// StartProduction greenlights an approved library script with signed talent.
func (g *Game) StartProduction(req ProductionRequest) (*Movie, error) {
	// 1. Script
	s, idx := GetScript(g.Studio.Library, req.ScriptID)
	if s == nil {
		if draft, _ := GetScript(g.Studio.Scripts, req.ScriptID); draft != nil {
			return nil, fmt.Errorf("%w: %q is still a %s", ErrNotApproved, draft.Title, draft.Status)
		}
		return nil, fmt.Errorf("%w: script %s", ErrNotFound, req.ScriptID)
	}

	// 2. People
	var used []*Contract
	resolve := func(id string, role Role) (*Contract, error) {
		c, ok := g.Studio.Contracts.Find(id)
		if !ok || c.Role != role {
			return nil, fmt.Errorf("%w: no signed %s with contract %s", ErrNoCandidates, role, id)
		}
		if c.Task != nil {
			return nil, fmt.Errorf("%w: %s is on %q", ErrAlreadyBusy, c.Name(), c.Task.Name)
		}
		if slices.Contains(used, c) {
			return nil, fmt.Errorf("%w: %s is listed twice", ErrInvalidArgument, c.Name())
		}
		used = append(used, c)
		return c, nil
	}

	plan := ProductionPlan{Script: s, MonthsAhead: req.MonthsAhead, Buzz: g.Studio.PendingBuzz}
	for _, id := range req.CastIDs {
		c, err := resolve(id, RoleActor)
		if err != nil {
			return nil, err
		}
		plan.Cast = append(plan.Cast, c.Person.(*Actor))
	}
	if req.DirectorID != "" {
		c, err := resolve(req.DirectorID, RoleDirector)
		if err != nil {
			return nil, err
		}
		plan.Director = c.Person.(*Director)
	}
	for _, id := range req.StaffIDs {
		c, err := resolve(id, RoleStaff)
		if err != nil {
			return nil, err
		}
		plan.Staff = append(plan.Staff, c.Person.(*StaffMember))
	}
	for _, c := range used {
		plan.QualityBoost += c.QualityBoost
	}

	// 3. Produce
	m, err := ProduceMovie(g.Content, g.Studio, g.Calendar, plan, g.Turn, g.rng)
	if err != nil {
		return nil, err
	}

	// 4. Consume the script and banked rewards
	s.Status = ScriptInProduction
	g.Studio.Library = removeAt(g.Studio.Library, idx)
	g.Studio.PendingBuzz = 0
	for _, c := range used {
		c.QualityBoost = 0
	}
	g.Studio.AddNews(fmt.Sprintf("🎬 Cameras roll on %q (cost %.2fM, release %s).", m.Title, m.Cost, m.ReleaseDate))
	g.log.Info("production started", "title", m.Title, "cost", m.Cost, "quality", m.Quality, "release", m.ReleaseDate.String())
	return m, nil
}

// SetMarketingAndRelease applies a marketing plan and release strategy to a movie in post-production.
func (g *Game) SetMarketingAndRelease(movieID, plan string, strategy ReleaseStrategy) (*Movie, error) {
	m, _ := GetMovie(g.Studio.Scheduled, movieID)
	if m == nil {
		if released, _ := GetMovie(g.Studio.Released, movieID); released != nil {
			return nil, fmt.Errorf("%w: %q", ErrAlreadyReleased, released.Title)
		}
		return nil, fmt.Errorf("%w: movie %s", ErrNotFound, movieID)
	}
	if err := ApplyReleasePlan(g.Content, g.Studio, g.Calendar, m, plan, strategy); err != nil {
		return nil, err
	}
	g.Studio.AddNews(fmt.Sprintf("📣 %q gets a %s campaign and a %s release.", m.Title, m.MarketingPlan, m.ReleaseStrategy))
	return m, nil
}

// AssignTask puts a signed person on a task from their role's task list.
func (g *Game) AssignTask(contractID, taskName string) (*Contract, error) {
	c, ok := g.Studio.Contracts.Find(contractID)
	if !ok {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
	}
	def, ok := g.Content.Task(c.Role, taskName)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not available for %s", ErrUnknownTask, taskName, c.Role)
	}
	if err := AssignTask(c, def); err != nil {
		return nil, err
	}
	g.Studio.AddNews(fmt.Sprintf("🗂️ %s started %s (%d month(s)).", c.Name(), def.Name, c.Task.Remaining))
	return c, nil
}
