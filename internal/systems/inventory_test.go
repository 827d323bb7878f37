package systems

import (
	"math/rand"
	"testing"

	"github.com/Igoorx/godfield-flash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealItem_Illusion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := fixedIllusions{sub: blade}
	p := domain.NewPlayer("p", "P", domain.TeamSingle)

	piece, ok := DealItem(rng, src, p, sword)
	require.True(t, ok)
	assert.Nil(t, piece.Illusion, "no illusion without the harm")

	p.AddHarm(domain.HarmIllusion)
	first, _ := DealItem(rng, src, p, sword)
	second, _ := DealItem(rng, src, p, herb)

	assert.Same(t, blade, first.Illusion)
	assert.Equal(t, 0, first.IllusionIndex)
	assert.Equal(t, 1, second.IllusionIndex, "stacked illusions get distinct indices")

	found, ok := p.FindPiece(blade.ID, 1)
	require.True(t, ok)
	assert.Same(t, herb, found.Item)
}

func TestDealItem_FullHand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := domain.NewPlayer("p", "P", domain.TeamSingle)
	for i := 0; i < domain.HandLimit; i++ {
		p.DealItem(herb)
	}
	_, ok := DealItem(rng, fixedIllusions{sub: blade}, p, sword)
	assert.False(t, ok)
	assert.Len(t, p.Hand, domain.HandLimit)
}

func TestRedistributeHands_KeepsCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	ps := players(domain.TeamSingle, domain.TeamSingle, domain.TeamSingle)
	ps[0].DealItem(sword)
	ps[0].DealItem(shield)
	ps[1].DealItem(herb)
	ps[2].Dead = true
	ps[2].DealItem(blade)

	RedistributeHands(rng, fixedIllusions{sub: blade}, ps)

	assert.Len(t, ps[0].Hand, 2)
	assert.Len(t, ps[1].Hand, 1)
	assert.Equal(t, []*domain.Item{blade}, ps[2].Items(), "dead players keep their hand")

	got := append(ps[0].Items(), ps[1].Items()...)
	assert.ElementsMatch(t, []*domain.Item{sword, shield, herb}, got)
}

func TestHandScans(t *testing.T) {
	ps := players(domain.TeamSingle, domain.TeamSingle)
	ps[0].DealItem(herb)
	assert.False(t, HasWeapon(ps[0]))
	assert.True(t, HasAttackKind(ps[0], domain.AttackIncreaseHP))

	ps[1].DealItem(sword)
	assert.True(t, HasWeapon(ps[1]))
	assert.Equal(t, []*domain.Player{ps[1]}, HoldersOf(ps, sword.ID))
}
