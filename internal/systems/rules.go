package systems

import (
	"errors"
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/domain"
)

// Ошибки проверки цепочек. Их получает клиент, движок их не видит.
var (
	ErrEmptyChain    = errors.New("empty chain")
	ErrIllegalPiece  = errors.New("illegal piece")
	ErrPieceNotHeld  = errors.New("piece not held")
	ErrChainLength   = errors.New("wrong chain length")
	ErrBadTarget     = errors.New("bad target")
	ErrMustAct       = errors.New("cannot pass while holding a weapon")
	ErrExchangeSum   = errors.New("exchange does not match current total")
	ErrNotEnoughMP   = errors.New("not enough MP")
	ErrAttributeRule = errors.New("defense attribute does not match the attack")
	ErrDeadPlayer    = errors.New("player is dead")
)

// IsVirtual - предметы "ничего не делать" и "сбросить" не лежат в руке.
func IsVirtual(item *domain.Item) bool {
	return item.ID == domain.ItemDoNothing || item.ID == domain.ItemDiscard
}

// checkHeld проверяет, что каждый кусок действительно есть у игрока,
// с учетом одинаковых предметов в руке.
func checkHeld(p *domain.Player, pieces []domain.CommandPiece) error {
	need := make(map[int]int)
	for _, piece := range pieces {
		if IsVirtual(piece.Item) {
			continue
		}
		if piece.IsAbility {
			if !p.HasMagic(piece.Item.ID) {
				return fmt.Errorf("%w: ability %d", ErrPieceNotHeld, piece.Item.ID)
			}
			continue
		}
		need[piece.Item.ID]++
	}
	have := make(map[int]int)
	for _, it := range p.Items() {
		have[it.ID]++
	}
	for id, n := range need {
		if have[id] < n {
			return fmt.Errorf("%w: item %d", ErrPieceNotHeld, id)
		}
	}
	return nil
}

// ChainCost - сколько MP спишет цепочка. MAGIC_FREE в конце обнуляет стоимость.
func ChainCost(pieces []domain.CommandPiece) int {
	if domain.IsMagicFree(pieces) {
		return 0
	}
	cost := 0
	for _, piece := range pieces {
		cost += piece.Item.MPCost()
	}
	return cost
}

// ValidateAttack проверяет цепочку атакующего так же строго, как движок,
// но возвращает ошибку вместо паники.
func ValidateAttack(p *domain.Player, pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange) error {
	if len(pieces) == 0 {
		return ErrEmptyChain
	}
	if !p.IsAlive() {
		return ErrDeadPlayer
	}
	if target == nil || !target.IsAlive() {
		return ErrBadTarget
	}
	if err := checkHeld(p, pieces); err != nil {
		return err
	}

	atk := domain.NewAttack(p, target, pieces)
	first := pieces[0].Item
	if !atk.IsValidAttackItem(first, true) {
		return fmt.Errorf("%w: %s cannot lead a chain", ErrIllegalPiece, first.Name)
	}

	switch first.AttackKind {
	case domain.AttackDoNothing:
		if len(pieces) != 1 {
			return ErrChainLength
		}
		if HasWeapon(p) {
			return ErrMustAct
		}
		return nil
	case domain.AttackDiscard:
		if len(pieces) < 2 {
			return ErrChainLength
		}
		for _, piece := range pieces[1:] {
			if IsVirtual(piece.Item) || piece.IsAbility {
				return fmt.Errorf("%w: %s cannot be discarded", ErrIllegalPiece, piece.Item.Name)
			}
		}
		return nil
	case domain.AttackSell, domain.AttackAddItem:
		if len(pieces) != 2 {
			return ErrChainLength
		}
		if IsVirtual(pieces[1].Item) || pieces[1].IsAbility {
			return fmt.Errorf("%w: %s cannot be traded", ErrIllegalPiece, pieces[1].Item.Name)
		}
		return checkMP(p, pieces[:1])
	case domain.AttackExchange:
		if len(pieces) != 1 {
			return ErrChainLength
		}
		if ex == nil {
			return fmt.Errorf("%w: missing split", ErrExchangeSum)
		}
		if err := checkMP(p, pieces); err != nil {
			return err
		}
		if ex.Sum() != p.HP+p.MP+p.Yen-ChainCost(pieces) {
			return ErrExchangeSum
		}
		return nil
	case domain.AttackBuy, domain.AttackRemoveItems, domain.AttackRemoveAbilities,
		domain.AttackMystery, domain.AttackSetAssistant, domain.AttackIncreaseOrDecreaseHP:
		if len(pieces) != 1 {
			return ErrChainLength
		}
		return checkMP(p, pieces)
	}

	for _, piece := range pieces[1:] {
		if !atk.IsValidAttackItem(piece.Item, false) {
			return fmt.Errorf("%w: %s cannot follow %s", ErrIllegalPiece, piece.Item.Name, first.Name)
		}
		if piece.Item.AttackExtra == domain.ExtraPestle {
			return ErrChainLength
		}
	}
	if first.AttackExtra == domain.ExtraPestle && len(pieces) != 1 {
		return ErrChainLength
	}
	return checkMP(p, pieces)
}

func checkMP(p *domain.Player, pieces []domain.CommandPiece) error {
	if cost := ChainCost(pieces); cost > p.MP {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughMP, cost, p.MP)
	}
	return nil
}

// IsDefensePiece - предмет может стоять в цепочке защиты.
func IsDefensePiece(item *domain.Item) bool {
	return item.DefenseKind != domain.DefenseNone ||
		item.DefenseExtra != domain.DefExtraNone ||
		item.ID == domain.ItemRemoveAttribute ||
		item.AttackExtra == domain.ExtraMagicFree
}

// ValidateDefense проверяет цепочку защиты против атаки atk.
// Правило атрибутов то же, что у движка: без перенаправления сложенный атрибут
// защиты должен подходить; перенаправление оружия тоже подчиняется ему,
// кроме REFLECT_ANY первым куском.
func ValidateDefense(p *domain.Player, pieces []domain.CommandPiece, atk *domain.AttackData) error {
	if len(pieces) == 0 {
		return nil
	}
	if err := checkHeld(p, pieces); err != nil {
		return err
	}
	for i, piece := range pieces {
		if IsVirtual(piece.Item) || !IsDefensePiece(piece.Item) {
			return fmt.Errorf("%w: %s cannot defend", ErrIllegalPiece, piece.Item.Name)
		}
		if piece.Item.AttackExtra == domain.ExtraMagicFree && i != len(pieces)-1 {
			return fmt.Errorf("%w: %s must be last", ErrIllegalPiece, piece.Item.Name)
		}
	}
	if err := checkMP(p, pieces); err != nil {
		return err
	}

	attr := atk.Attribute
	defAttr := domain.AttrUndetermined
	head := atk.First()
	redirected := false
	for _, piece := range pieces {
		item := piece.Item
		if item.ID == domain.ItemRemoveAttribute {
			attr = domain.AttrNone
		}
		defAttr = domain.FoldAttribute(defAttr, item.Attribute)
		if head != nil && item.DefenseExtra.RedirectApplies(head.Type) {
			redirected = true
			break
		}
	}

	if redirected {
		if pieces[0].Item.DefenseExtra == domain.DefExtraReflectAny || head.Type == domain.ItemTypeMagic {
			return nil
		}
	}
	if !domain.CanBeDefendedBy(attr, defAttr) {
		return fmt.Errorf("%w: %s vs %s", ErrAttributeRule, attr, defAttr)
	}
	return nil
}
