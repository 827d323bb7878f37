package agent

import (
	"sort"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/systems"

	"github.com/sirupsen/logrus"
)

const (
	counterDamage  = 15
	criticalHP     = 30
	ringMinResidue = 2
)

// defenseHand - защитные куски руки, разложенные по назначению.
type defenseHand struct {
	dfs       []domain.CommandPiece
	rings     []domain.CommandPiece
	redirects []domain.CommandPiece
	wings     *domain.CommandPiece
}

// OnDefenseTurn выбирает защиту против текущей атаки. Пустой список - принять удар.
func (b *Bot) OnDefenseTurn() []domain.CommandPiece {
	atk := b.view.Current()
	if atk == nil || atk.Defender != b.me {
		return nil
	}
	pieces := b.chooseDefense(atk)
	if err := systems.ValidateDefense(b.me, pieces, atk); err != nil {
		b.log.WithError(err).Warn("Bot produced illegal defense, taking the hit")
		return nil
	}
	if len(pieces) > 0 {
		b.log.WithFields(logrus.Fields{
			"attack": atk.First().Name,
			"pieces": len(pieces),
			"damage": atk.Damage,
		}).Debug("Bot defends")
	}
	return pieces
}

func (b *Bot) chooseDefense(atk *domain.AttackData) []domain.CommandPiece {
	head := atk.First()
	if head == nil {
		return nil
	}
	harmful := head.IsAtkHarm()
	for _, e := range atk.Extra {
		if e.Harm() != domain.HarmNone {
			harmful = true
		}
	}
	damage := atk.Damage
	if damage <= 0 && !harmful {
		return nil
	}

	hand := b.scanDefense(atk, atk.Attribute)
	// Контратаку отражает только REFLECT_ANY, он стоит первым.
	var redirect *domain.CommandPiece
	if len(hand.redirects) > 0 && (!atk.IsCounter || hand.redirects[0].Item.DefenseExtra == domain.DefExtraReflectAny) {
		redirect = &hand.redirects[0]
	}

	var out []domain.CommandPiece
	attr := atk.Attribute
	// Крылья снимают стихию, когда ничего подходящего под нее нет.
	if redirect == nil && attr.IsElemental() && len(hand.dfs) == 0 && hand.wings != nil {
		out = append(out, *hand.wings)
		attr = domain.AttrNone
		hand = b.scanDefense(atk, attr)
	}

	wantCounter := damage >= counterDamage || harmful || atk.Attacker != nil && atk.Attacker.HP <= damage
	if wantCounter && redirect != nil {
		return []domain.CommandPiece{*redirect}
	}
	// Против контратаки щиты и кольца не ставятся.
	if damage <= 0 || atk.IsCounter {
		return nil
	}

	mp := b.me.MP
	for _, piece := range hand.dfs {
		if damage <= 0 {
			break
		}
		cost := piece.Item.MPCost()
		if cost > mp {
			continue
		}
		// Дорогая магия за малую защиту только при низком HP.
		if cost > piece.Item.Def() && b.me.HP >= criticalHP {
			continue
		}
		out = append(out, piece)
		mp -= cost
		damage -= piece.Item.Def()
	}

	if len(hand.rings) > 0 && (damage > ringMinResidue || b.me.HP < criticalHP && damage > 0) {
		out = append(out, hand.rings[0])
	}

	// Удар все равно смертелен: лучше отразить.
	if damage >= effectiveHP(b.me) && redirect != nil {
		return []domain.CommandPiece{*redirect}
	}

	if b.me.HasHarm(domain.HarmGlory) && len(out) > 1 {
		out = strongestSingle(out, atk.Attribute)
	}
	// Одни крылья без защиты ничего не дают.
	if len(out) == 1 && out[0].Item.ID == domain.ItemRemoveAttribute {
		return nil
	}
	return out
}

// scanDefense раскладывает руку и привязанную магию против атаки с атрибутом attr.
// DFS отсортированы по возрастанию защиты.
func (b *Bot) scanDefense(atk *domain.AttackData, attr domain.Attribute) defenseHand {
	var hand defenseHand
	head := atk.First()

	for i := range b.me.Hand {
		piece := b.me.Hand[i]
		item := piece.Item
		if systems.IsVirtual(item) {
			continue
		}
		if item.ID == domain.ItemRemoveAttribute && hand.wings == nil {
			hand.wings = &b.me.Hand[i]
			continue
		}
		if item.DefenseExtra.IsRedirect() {
			if b.canRedirect(item, head, attr) {
				hand.redirects = append(hand.redirects, piece)
			}
			continue
		}
		if !domain.DefendsAgainst(attr, item.Attribute) {
			continue
		}
		switch {
		case item.DefenseKind == domain.DefenseCounter:
			hand.rings = append(hand.rings, piece)
		case item.DefenseKind == domain.DefenseDfs && item.Def() > 0:
			hand.dfs = append(hand.dfs, piece)
		}
	}
	for i, magic := range b.me.Magics {
		if magic.DefenseExtra.IsRedirect() && b.canRedirect(magic, head, attr) {
			hand.redirects = append(hand.redirects, domain.NewAbilityPiece(magic, i))
		}
	}

	sort.SliceStable(hand.dfs, func(i, j int) bool {
		return hand.dfs[i].Item.Def() < hand.dfs[j].Item.Def()
	})
	// REFLECT_ANY вперед: он не зависит от стихии.
	sort.SliceStable(hand.redirects, func(i, j int) bool {
		return hand.redirects[i].Item.DefenseExtra == domain.DefExtraReflectAny &&
			hand.redirects[j].Item.DefenseExtra != domain.DefExtraReflectAny
	})
	return hand
}

// canRedirect: перенаправление подходит к атаке и по карману.
// Против оружия, кроме REFLECT_ANY, действует правило стихий.
func (b *Bot) canRedirect(item, head *domain.Item, attr domain.Attribute) bool {
	if !item.DefenseExtra.RedirectApplies(head.Type) || item.MPCost() > b.me.MP {
		return false
	}
	if item.DefenseExtra == domain.DefExtraReflectAny || head.Type == domain.ItemTypeMagic {
		return true
	}
	return domain.CanBeDefendedBy(attr, item.Attribute)
}

// strongestSingle оставляет один кусок с наибольшей защитой. Под GLORY больше нельзя.
func strongestSingle(pieces []domain.CommandPiece, attr domain.Attribute) []domain.CommandPiece {
	best := -1
	for i, piece := range pieces {
		if !domain.DefendsAgainst(attr, piece.Item.Attribute) || piece.Item.DefenseKind != domain.DefenseDfs {
			continue
		}
		if best < 0 || piece.Item.Def() > pieces[best].Item.Def() {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return pieces[best : best+1]
}
