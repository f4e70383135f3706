package game

import (
	"math/rand"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func testContent(t *testing.T) *Content {
	t.Helper()
	c, err := DefaultContent()
	require.NoError(t, err)
	return c
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	return NewGame(testContent(t), rand.New(rand.NewSource(seed)), hclog.NewNullLogger(), Options{StudioName: "Test Pictures"})
}

func testWriter(specialty string, debut int, tags ...string) *Writer {
	return &Writer{
		Person: Person{
			ID:        "WRI-test",
			Name:      "Dana Reed",
			Fame:      40,
			Salary:    1.1,
			Tags:      tags,
			DebutYear: debut,
		},
		Specialty:  specialty,
		Education:  "Journalism",
		SkillLevel: 1.0,
	}
}

func approvedScript(genre string, budget BudgetClass, quality int, tags ...string) *Script {
	return &Script{
		ID:               "SCR-test",
		Title:            "The Glass River",
		Genre:            genre,
		Tags:             tags,
		Rating:           "PG-13",
		Status:           ScriptApproved,
		Quality:          quality,
		PotentialQuality: 90,
		DraftNumber:      2,
		Buzz:             12,
		BudgetClass:      budget,
	}
}

// signAny signs the first free agent of a role with plenty of months left.
func signAny(t *testing.T, g *Game, role Role) *Contract {
	t.Helper()
	var id string
	switch role {
	case RoleActor:
		require.NotEmpty(t, g.Market.Actors)
		id = g.Market.Actors[0].ID
	case RoleWriter:
		require.NotEmpty(t, g.Market.Writers)
		id = g.Market.Writers[0].ID
	case RoleDirector:
		require.NotEmpty(t, g.Market.Directors)
		id = g.Market.Directors[0].ID
	case RoleStaff:
		require.NotEmpty(t, g.Market.Staff)
		id = g.Market.Staff[0].ID
	}
	c, err := g.SignTalent(role, id, 36)
	require.NoError(t, err)
	return c
}
