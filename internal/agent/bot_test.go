package agent

import (
	"math/rand"
	"os"
	"testing"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeView struct {
	players []*domain.Player
	current *domain.AttackData
	cat     *catalog.Catalog
	rng     *rand.Rand
}

func (v *fakeView) Players() []*domain.Player    { return v.players }
func (v *fakeView) Current() *domain.AttackData { return v.current }
func (v *fakeView) Catalog() *catalog.Catalog   { return v.cat }
func (v *fakeView) Rand() *rand.Rand            { return v.rng }

// duel - бот против одного противника с заданными руками.
func duel(t *testing.T, mine []int, theirs []int) (*Bot, *fakeView, *domain.Player) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	me := domain.NewPlayer("bot", "Bot", domain.TeamSingle)
	enemy := domain.NewPlayer("enemy", "Enemy", domain.TeamSingle)
	for _, id := range mine {
		require.True(t, me.DealItem(cat.MustGet(id)))
	}
	for _, id := range theirs {
		require.True(t, enemy.DealItem(cat.MustGet(id)))
	}
	view := &fakeView{players: []*domain.Player{me, enemy}, cat: cat, rng: rand.New(rand.NewSource(7))}
	return NewBot(me, view).(*Bot), view, enemy
}

func ids(pieces []domain.CommandPiece) []int {
	out := make([]int, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, p.Item.ID)
	}
	return out
}

func TestNewBot_DoesNotTouchRand(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	p := domain.NewPlayer("bot", "Bot", domain.TeamSingle)

	view := &fakeView{players: []*domain.Player{p}, cat: cat, rng: rand.New(rand.NewSource(1))}
	NewBot(p, view)

	assert.Equal(t, rand.New(rand.NewSource(1)).Int63(), view.rng.Int63())
}

func TestOnAttackTurn(t *testing.T) {
	t.Run("lethal hit beats unneeded heal", func(t *testing.T) {
		bot, _, enemy := duel(t, []int{3, 90}, nil)
		enemy.HP = 5

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{3}, ids(cmd.Pieces))
		assert.Same(t, enemy, cmd.Target)
	})

	t.Run("heals self when low", func(t *testing.T) {
		bot, _, _ := duel(t, []int{90}, nil)
		bot.me.HP = 10

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{90}, ids(cmd.Pieces))
		assert.Same(t, bot.me, cmd.Target)
	})

	t.Run("composes modifiers", func(t *testing.T) {
		bot, _, _ := duel(t, []int{8, 30, 32}, nil)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{8, 30, 32}, ids(cmd.Pieces))
		damage, attr := estimate(cmd.Pieces)
		assert.Equal(t, 30, damage)
		// Нейтральные перчатки смешивают LIGHT в нейтральный атрибут.
		assert.Equal(t, domain.AttrNone, attr)
	})

	t.Run("drops magic it cannot afford", func(t *testing.T) {
		bot, _, _ := duel(t, []int{8, 39, 87}, nil)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{8, 39}, ids(cmd.Pieces))
		assert.LessOrEqual(t, systems.ChainCost(cmd.Pieces), bot.me.MP)
	})

	t.Run("sells the mortar first", func(t *testing.T) {
		bot, _, enemy := duel(t, []int{110, 245, 50}, nil)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{110, 245}, ids(cmd.Pieces))
		assert.Same(t, enemy, cmd.Target)
	})

	t.Run("exchanges when hp is low", func(t *testing.T) {
		bot, _, _ := duel(t, []int{112}, nil)
		bot.me.HP, bot.me.MP, bot.me.Yen = 8, 10, 40

		cmd := bot.OnAttackTurn()
		require.NotNil(t, cmd.Exchange)
		assert.Equal(t, domain.Exchange{HP: 30, MP: 28, Yen: 0}, *cmd.Exchange)
	})

	t.Run("forced discard with a full useless hand", func(t *testing.T) {
		hand := []int{31, 50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 61, 62, 63, 64, 65}
		bot, _, _ := duel(t, hand, nil)
		require.Len(t, bot.me.Hand, domain.HandLimit)

		cmd := bot.OnAttackTurn()
		require.Len(t, cmd.Pieces, 3)
		assert.Equal(t, domain.ItemDiscard, cmd.Pieces[0].Item.ID)
		assert.NoError(t, systems.ValidateAttack(bot.me, cmd.Pieces, cmd.Target, nil))
	})

	t.Run("keeps its only weapon when the hand is full", func(t *testing.T) {
		hand := []int{18}
		for range domain.HandLimit - 1 {
			hand = append(hand, 50)
		}
		bot, _, enemy := duel(t, hand, nil)
		require.Len(t, bot.me.Hand, domain.HandLimit)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{18}, ids(cmd.Pieces))
		assert.Same(t, enemy, cmd.Target)
	})

	t.Run("attacks instead of healing at full hp", func(t *testing.T) {
		bot, _, enemy := duel(t, []int{18, 90}, nil)
		require.Equal(t, domain.InitialHP, bot.me.HP)

		for turn := 0; turn < 5; turn++ {
			cmd := bot.OnAttackTurn()
			assert.Equal(t, []int{18}, ids(cmd.Pieces), "turn %d", turn)
			assert.Same(t, enemy, cmd.Target, "turn %d", turn)
		}
	})

	t.Run("uses a spare heal when nothing attacks", func(t *testing.T) {
		bot, _, _ := duel(t, []int{90}, nil)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{90}, ids(cmd.Pieces))
	})

	t.Run("does nothing with an empty hand", func(t *testing.T) {
		bot, _, _ := duel(t, nil, nil)

		cmd := bot.OnAttackTurn()
		assert.Equal(t, []int{domain.ItemDoNothing}, ids(cmd.Pieces))
	})
}

// Любая рука из каталога дает законную цепочку, а сброс - только при полной руке.
func TestOnAttackTurn_AlwaysLegal(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	for seed := int64(0); seed < 300; seed++ {
		rng := rand.New(rand.NewSource(seed))
		me := domain.NewPlayer("bot", "Bot", domain.TeamSingle)
		enemy := domain.NewPlayer("enemy", "Enemy", domain.TeamSingle)
		other := domain.NewPlayer("other", "Other", domain.TeamSingle)
		for _, it := range cat.ProbRandomItems(rng, 8+int(seed%9)) {
			me.DealItem(it)
		}
		me.HP = 1 + rng.Intn(60)
		me.MP = rng.Intn(30)
		me.Yen = rng.Intn(30)
		enemy.HP = 1 + rng.Intn(60)

		view := &fakeView{players: []*domain.Player{me, enemy, other}, cat: cat, rng: rng}
		cmd := NewBot(me, view).OnAttackTurn()

		require.NoError(t, systems.ValidateAttack(me, cmd.Pieces, cmd.Target, cmd.Exchange), "seed %d hand %v", seed, ids(me.Hand))
		if cmd.Pieces[0].Item.ID == domain.ItemDiscard {
			assert.Len(t, me.Hand, domain.HandLimit, "seed %d", seed)
		}
	}
}

func TestBuildExchange(t *testing.T) {
	p := domain.NewPlayer("p", "P", domain.TeamSingle)

	p.HP, p.MP = 5, 5
	assert.Equal(t, domain.Exchange{HP: 30, MP: 20, Yen: 0}, BuildExchange(50, p))
	assert.Equal(t, domain.Exchange{HP: 30, MP: 30, Yen: 40}, BuildExchange(100, p))

	p.HP = 60
	assert.Equal(t, domain.Exchange{HP: 60, MP: 20, Yen: 0}, BuildExchange(80, p))
}

func defend(t *testing.T, hand []int, weapon int, damage int, attr domain.Attribute) (*Bot, []domain.CommandPiece) {
	t.Helper()
	bot, view, enemy := duel(t, hand, []int{weapon})
	atk := domain.NewAttack(enemy, bot.me, enemy.Hand[:1])
	atk.Damage = damage
	atk.Attribute = attr
	view.current = &atk

	pieces := bot.OnDefenseTurn()
	require.NoError(t, systems.ValidateDefense(bot.me, pieces, &atk))
	return bot, pieces
}

func TestOnDefenseTurn(t *testing.T) {
	t.Run("cheapest matching shield first", func(t *testing.T) {
		_, pieces := defend(t, []int{50, 53, 56}, 4, 8, domain.AttrFire)
		assert.Equal(t, []int{53}, ids(pieces))
	})

	t.Run("stacks shields until damage is gone", func(t *testing.T) {
		_, pieces := defend(t, []int{51, 50}, 2, 8, domain.AttrNone)
		assert.Equal(t, []int{50, 51}, ids(pieces))
	})

	t.Run("reflects a heavy hit", func(t *testing.T) {
		_, pieces := defend(t, []int{51, 60}, 2, 20, domain.AttrNone)
		assert.Equal(t, []int{60}, ids(pieces))
	})

	t.Run("wings when nothing matches the element", func(t *testing.T) {
		_, pieces := defend(t, []int{195, 51}, 4, 6, domain.AttrFire)
		assert.Equal(t, []int{domain.ItemRemoveAttribute, 51}, ids(pieces))
	})

	t.Run("glory keeps one piece", func(t *testing.T) {
		bot, view, enemy := duel(t, []int{50, 51}, []int{2})
		bot.me.AddHarm(domain.HarmGlory)
		atk := domain.NewAttack(enemy, bot.me, enemy.Hand[:1])
		atk.Damage = 12
		atk.Attribute = domain.AttrNone
		view.current = &atk

		assert.Equal(t, []int{51}, ids(bot.OnDefenseTurn()))
	})

	t.Run("no damage no defense", func(t *testing.T) {
		_, pieces := defend(t, []int{50, 51}, 2, 0, domain.AttrNone)
		assert.Empty(t, pieces)
	})

	t.Run("counter attacks skip shields", func(t *testing.T) {
		tests := []struct {
			name   string
			hand   []int
			damage int
			want   []int
		}{
			{name: "shield is kept", hand: []int{51, 50}, damage: 20, want: []int{}},
			{name: "spirit cloak reflects a heavy counter", hand: []int{51, 60}, damage: 20, want: []int{60}},
			{name: "light counter is taken", hand: []int{51, 60}, damage: 6, want: []int{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				bot, view, enemy := duel(t, tt.hand, []int{domain.ItemCounterRingA})
				atk := domain.NewAttack(enemy, bot.me, enemy.Hand[:1])
				atk.Damage = tt.damage
				atk.Attribute = domain.AttrNone
				atk.IsCounter = true
				view.current = &atk

				assert.Equal(t, tt.want, ids(bot.OnDefenseTurn()))
			})
		}
	})

	t.Run("not our attack", func(t *testing.T) {
		bot, view, enemy := duel(t, []int{51}, []int{2})
		atk := domain.NewAttack(bot.me, enemy, bot.me.Hand[:1])
		view.current = &atk
		assert.Nil(t, bot.OnDefenseTurn())
	})
}

func TestNotify_TracksEnemies(t *testing.T) {
	bot, _, enemy := duel(t, nil, []int{2})
	third := domain.NewPlayer("third", "Third", domain.TeamSingle)
	cat := bot.view.Catalog()

	hit := domain.NewAttack(third, enemy, domain.PiecesOf(cat.MustGet(2)))
	hit.Damage = 3
	bot.NotifyAttack(&hit, nil, false)
	bot.NotifyAttack(&hit, nil, false)
	assert.True(t, bot.statsOf(enemy).possiblyDefenceless())

	bot.NotifyAttack(&hit, domain.PiecesOf(cat.MustGet(50)), false)
	assert.False(t, bot.statsOf(enemy).possiblyDefenceless())

	heal := cat.MustGet(78)
	spell := domain.NewAttack(enemy, third, []domain.CommandPiece{domain.NewAbilityPiece(heal, 0)})
	bot.NotifyAttack(&spell, nil, false)
	assert.True(t, bot.statsOf(enemy).magics[heal.ID])

	bot.NotifyMagicDiscard(enemy, heal)
	assert.Empty(t, bot.statsOf(enemy).magics)
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "DISCARD", PriorityDiscard.String())
	assert.Equal(t, "CRITICAL", PriorityCritical.String())
	assert.Equal(t, "UNKNOWN", Priority(42).String())
}
