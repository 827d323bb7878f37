package engine_test

import (
	"testing"

	"github.com/Igoorx/godfield-flash/internal/agent"
	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func botRoster(n int, team domain.Team) []domain.ReplayPlayer {
	out := make([]domain.ReplayPlayer, 0, n)
	for i := range n {
		id := string(rune('a' + i))
		out = append(out, domain.ReplayPlayer{ID: id, Name: "Bot " + id, Team: team, IsBot: true})
	}
	return out
}

// Партия одних ботов доигрывается без команд и повторяется по зерну.
func TestSimulate_BotsOnly(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	for seed := int64(1); seed <= 3; seed++ {
		rec := &domain.ReplaySession{RoomID: "sim", Seed: seed, Roster: botRoster(3, domain.TeamSingle)}

		first, err := engine.Simulate(rec, engine.NewConfig(), cat, agent.NewBot)
		require.NoError(t, err, "seed %d", seed)
		// Последние двое могут погибнуть в одном иннинге.
		assert.LessOrEqual(t, len(first.Winners), 1, "seed %d", seed)
		assert.Positive(t, first.Innings)
		assert.Equal(t, seed, first.Seed)

		second, err := engine.Simulate(rec, engine.NewConfig(), cat, agent.NewBot)
		require.NoError(t, err)
		assert.Equal(t, first.Winners, second.Winners, "seed %d", seed)
		assert.Equal(t, first.Innings, second.Innings, "seed %d", seed)
	}
}

func TestSimulate_Teams(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	roster := append(botRoster(2, domain.Team1), botRoster(4, domain.Team2)[2:]...)
	rec := &domain.ReplaySession{RoomID: "sim", Seed: 11, Roster: roster}

	res, err := engine.Simulate(rec, engine.NewConfig(), cat, agent.NewBot)
	require.NoError(t, err)
	// Все выжившие из одной команды.
	team := map[string]domain.Team{}
	for _, rp := range roster {
		team[rp.ID] = rp.Team
	}
	for _, id := range res.Winners[min(1, len(res.Winners)):] {
		assert.Equal(t, team[res.Winners[0]], team[id])
	}
}

func TestSimulate_WaitsForHuman(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	roster := botRoster(2, domain.TeamSingle)
	roster[0].IsBot = false
	rec := &domain.ReplaySession{RoomID: "sim", Seed: 5, Roster: roster}

	_, err = engine.Simulate(rec, engine.NewConfig(), cat, agent.NewBot)
	assert.ErrorIs(t, err, engine.ErrReplayIncomplete)
}

func TestSimulate_RejectsForeignAction(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	roster := botRoster(2, domain.TeamSingle)
	roster[0].IsBot = false
	rec := &domain.ReplaySession{
		RoomID: "sim",
		Seed:   5,
		Roster: roster,
		Actions: []domain.ReplayAction{
			{Seq: 0, PlayerID: "ghost", Action: domain.ActionTimeout},
		},
	}

	_, err = engine.Simulate(rec, engine.NewConfig(), cat, agent.NewBot)
	assert.ErrorIs(t, err, engine.ErrReplayDiverged)
}
