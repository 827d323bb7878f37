package systems

import (
	"testing"

	"github.com/Igoorx/godfield-flash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pray      = &domain.Item{ID: domain.ItemDoNothing, Name: "Pray", Type: domain.ItemTypeSundry, AttackKind: domain.AttackDoNothing}
	discard   = &domain.Item{ID: domain.ItemDiscard, Name: "Discard", Type: domain.ItemTypeSundry, AttackKind: domain.AttackDiscard}
	bow       = &domain.Item{ID: 10, Name: "Bow", Type: domain.ItemTypeWeapon, AttackKind: domain.AttackAtk, Value: 8, HitRate: 75}
	fireGem   = &domain.Item{ID: 34, Name: "Fire Gem", Type: domain.ItemTypeSundry, AttackExtra: domain.ExtraAddAttribute, Attribute: domain.AttrFire}
	bolt      = &domain.Item{ID: 70, Name: "Bolt", Type: domain.ItemTypeMagic, AttackKind: domain.AttackAtk, Value: 10, SubValue: 5}
	storm     = &domain.Item{ID: 71, Name: "Storm", Type: domain.ItemTypeMagic, AttackKind: domain.AttackAtk, Value: 30, SubValue: 20}
	freeCharm = &domain.Item{ID: 72, Name: "Free Charm", Type: domain.ItemTypeSundry, AttackExtra: domain.ExtraMagicFree}
	sellNote  = &domain.Item{ID: 110, Name: "Sell Note", Type: domain.ItemTypeTrade, AttackKind: domain.AttackSell}
	exchanger = &domain.Item{ID: 112, Name: "Exchange Scroll", Type: domain.ItemTypeSundry, AttackKind: domain.AttackExchange}

	fireShield  = &domain.Item{ID: 52, Name: "Fire Shield", Type: domain.ItemTypeProtector, DefenseKind: domain.DefenseDfs, Value: 6, Attribute: domain.AttrFire}
	waterShield = &domain.Item{ID: 53, Name: "Water Shield", Type: domain.ItemTypeProtector, DefenseKind: domain.DefenseDfs, Value: 8, Attribute: domain.AttrWater}
	cloak       = &domain.Item{ID: 60, Name: "Cloak", Type: domain.ItemTypeProtector, DefenseExtra: domain.DefExtraReflectAny}
	fireMirror  = &domain.Item{ID: 61, Name: "Fire Mirror", Type: domain.ItemTypeProtector, DefenseExtra: domain.DefExtraReflectWeapon, Attribute: domain.AttrFire}
)

// holding создает двух игроков, у первого в руке items.
func holding(items ...*domain.Item) (*domain.Player, *domain.Player) {
	ps := players(domain.TeamSingle, domain.TeamSingle)
	for _, it := range items {
		ps[0].DealItem(it)
	}
	return ps[0], ps[1]
}

func TestValidateAttack_Basics(t *testing.T) {
	me, foe := holding(sword)

	assert.ErrorIs(t, ValidateAttack(me, nil, foe, nil), ErrEmptyChain)
	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(sword), foe, nil))
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(blade), foe, nil), ErrPieceNotHeld)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sword, sword), foe, nil), ErrPieceNotHeld)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sword), nil, nil), ErrBadTarget)

	foe.Dead = true
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sword), foe, nil), ErrBadTarget)
}

func TestValidateAttack_ProtectorCannotLead(t *testing.T) {
	me, foe := holding(shield)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(shield), foe, nil), ErrIllegalPiece)
}

func TestValidateAttack_DoNothing(t *testing.T) {
	me, foe := holding(sword)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(pray), me, nil), ErrMustAct)

	unarmed, _ := holding(shield)
	assert.NoError(t, ValidateAttack(unarmed, domain.PiecesOf(pray), unarmed, nil))
	assert.ErrorIs(t, ValidateAttack(unarmed, domain.PiecesOf(pray, shield), foe, nil), ErrChainLength)
}

func TestValidateAttack_Discard(t *testing.T) {
	me, _ := holding(shield, herb)

	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(discard), me, nil), ErrChainLength)
	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(discard, shield, herb), me, nil))
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(discard, pray), me, nil), ErrIllegalPiece)
}

func TestValidateAttack_Sell(t *testing.T) {
	me, foe := holding(sellNote, sword)

	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(sellNote, sword), foe, nil))
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sellNote), foe, nil), ErrChainLength)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sellNote, pray), foe, nil), ErrIllegalPiece)
}

func TestValidateAttack_Exchange(t *testing.T) {
	me, foe := holding(exchanger)
	total := me.HP + me.MP + me.Yen

	ok := &domain.Exchange{HP: total - 20, MP: 10, Yen: 10}
	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(exchanger), foe, ok))

	short := &domain.Exchange{HP: total - 21, MP: 10, Yen: 10}
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(exchanger), foe, short), ErrExchangeSum)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(exchanger), foe, nil), ErrExchangeSum)
}

func TestValidateAttack_Modifiers(t *testing.T) {
	me, foe := holding(sword, bow, fireGem)

	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(sword, fireGem), foe, nil))
	// Оружие с шансом попадания модификаторов не принимает.
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(bow, fireGem), foe, nil), ErrIllegalPiece)
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(sword, bow), foe, nil), ErrIllegalPiece)
}

func TestValidateAttack_MagicCost(t *testing.T) {
	me, foe := holding(bolt, storm, freeCharm)
	require.Equal(t, domain.InitialMP, me.MP)

	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(bolt), foe, nil))
	assert.ErrorIs(t, ValidateAttack(me, domain.PiecesOf(storm), foe, nil), ErrNotEnoughMP)
	assert.NoError(t, ValidateAttack(me, domain.PiecesOf(storm, freeCharm), foe, nil))
}

func TestChainCost(t *testing.T) {
	assert.Equal(t, 0, ChainCost(domain.PiecesOf(sword, fireGem)))
	assert.Equal(t, 5, ChainCost(domain.PiecesOf(bolt)))
	assert.Equal(t, 25, ChainCost(domain.PiecesOf(bolt, storm)))
	assert.Equal(t, 0, ChainCost(domain.PiecesOf(storm, freeCharm)))
	assert.Equal(t, 0, ChainCost(nil))
}

func TestValidateDefense(t *testing.T) {
	me, foe := holding(shield, fireShield, waterShield, cloak, fireMirror, sword)

	fire := domain.NewAttack(foe, me, domain.PiecesOf(sword, fireGem))
	fire.Attribute = domain.AttrFire
	plain := domain.NewAttack(foe, me, domain.PiecesOf(sword))
	plain.Attribute = domain.AttrNone

	assert.NoError(t, ValidateDefense(me, nil, &fire))
	assert.NoError(t, ValidateDefense(me, domain.PiecesOf(waterShield), &fire))
	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(fireShield), &fire), ErrAttributeRule)
	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(shield), &fire), ErrAttributeRule)
	assert.NoError(t, ValidateDefense(me, domain.PiecesOf(shield, fireShield), &plain))

	// REFLECT_ANY первым куском снимает правило атрибутов, обычное отражение - нет.
	assert.NoError(t, ValidateDefense(me, domain.PiecesOf(cloak), &fire))
	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(fireMirror), &fire), ErrAttributeRule)

	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(sword), &plain), ErrIllegalPiece)
	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(pray), &plain), ErrIllegalPiece)
	assert.ErrorIs(t, ValidateDefense(me, domain.PiecesOf(blade), &plain), ErrPieceNotHeld)
}

func TestIsVirtual(t *testing.T) {
	assert.True(t, IsVirtual(pray))
	assert.True(t, IsVirtual(discard))
	assert.False(t, IsVirtual(sword))
}
