package systems

import (
	"math/rand"
	"testing"

	"github.com/Igoorx/godfield-flash/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiseaseTick(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("healthy player is untouched", func(t *testing.T) {
		p := domain.NewPlayer("p", "P", domain.TeamSingle)
		tick := ApplyDiseaseTick(rng, p)
		assert.False(t, tick.Applied)
		assert.Equal(t, domain.InitialHP, p.HP)
	})

	t.Run("first tick never worsens", func(t *testing.T) {
		p := domain.NewPlayer("p", "P", domain.TeamSingle)
		p.AddHarm(domain.HarmCold)
		tick := ApplyDiseaseTick(rng, p)
		assert.False(t, tick.Worse)
		assert.True(t, tick.Applied)
		assert.Equal(t, 1, p.WorseChance)
		assert.Equal(t, domain.InitialHP-1, p.HP)
		assert.True(t, tick.Notify(p))
	})

	t.Run("certain worsening", func(t *testing.T) {
		p := domain.NewPlayer("p", "P", domain.TeamSingle)
		p.AddHarm(domain.HarmCold)
		p.WorseChance = 100
		tick := ApplyDiseaseTick(rng, p)
		assert.True(t, tick.Worse)
		assert.Equal(t, domain.HarmFever, p.Disease)
		assert.Equal(t, domain.InitialHP-2, p.HP)
	})
}

func TestResolveDeath(t *testing.T) {
	revive := &domain.Item{ID: domain.ItemRevive, Type: domain.ItemTypeSundry, AttackExtra: domain.ExtraRevive}
	dying := &domain.Item{ID: domain.ItemDyingAttack, Type: domain.ItemTypeWeapon, AttackKind: domain.AttackAtk}

	p := domain.NewPlayer("p", "P", domain.TeamSingle)
	assert.Equal(t, DeathNone, ResolveDeath(p, 3))

	p.HP = 0
	assert.Equal(t, DeathFinal, ResolveDeath(p, 3))

	p.DealItem(dying)
	assert.Equal(t, DeathDyingAttack, ResolveDeath(p, 3))
	p.DealItem(revive)
	assert.Equal(t, DeathRevive, ResolveDeath(p, 3))
	assert.Equal(t, DeathFinal, ResolveDeath(p, 1), "last survivor cannot be saved")
}

func TestMarkLost(t *testing.T) {
	ps := players(domain.Team1, domain.Team1, domain.Team2)
	ps[0].Dead = true
	MarkLost(ps, ps[0])
	assert.False(t, ps[0].Lost, "teammate still alive")

	ps[1].Dead = true
	MarkLost(ps, ps[1])
	assert.True(t, ps[0].Lost)
	assert.True(t, ps[1].Lost)
	assert.False(t, ps[2].Lost)
}
