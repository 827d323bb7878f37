package systems

import (
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/domain"
)

// IllusionSource - то, что умеет подобрать похожий предмет под ILLUSION.
type IllusionSource interface {
	IllusionSubstituteFor(rng *rand.Rand, item *domain.Item) *domain.Item
}

// --- РАЗДАЧА ---

// DealItem кладет предмет в руку. Под ILLUSION владелец увидит подмену.
// Возвращает выданный кусок; false, если рука полна.
func DealItem(rng *rand.Rand, src IllusionSource, p *domain.Player, item *domain.Item) (domain.CommandPiece, bool) {
	if !p.DealItem(item) {
		return domain.CommandPiece{}, false
	}
	idx := len(p.Hand) - 1
	if p.HasHarm(domain.HarmIllusion) {
		disguise(rng, src, p, idx)
	}
	return p.Hand[idx], true
}

// ApplyIllusion выдает подмены всей руке, у которой их еще нет.
func ApplyIllusion(rng *rand.Rand, src IllusionSource, p *domain.Player) {
	for i := range p.Hand {
		if p.Hand[i].Illusion == nil {
			disguise(rng, src, p, i)
		}
	}
}

// disguise назначает подмену куску idx. IllusionIndex - номер среди одинаковых иллюзий.
func disguise(rng *rand.Rand, src IllusionSource, p *domain.Player, idx int) {
	sub := src.IllusionSubstituteFor(rng, p.Hand[idx].Item)
	if sub == nil {
		return
	}
	n := 0
	for i, piece := range p.Hand {
		if i != idx && piece.Illusion != nil && piece.Illusion.ID == sub.ID {
			n = max(n, piece.IllusionIndex+1)
		}
	}
	p.Hand[idx].Illusion = sub
	p.Hand[idx].IllusionIndex = n
}

// RedistributeHands перемешивает предметы всех живых игроков, сохраняя размер каждой руки.
// Подмены снимаются и назначаются заново тем, кто под ILLUSION.
func RedistributeHands(rng *rand.Rand, src IllusionSource, players []*domain.Player) {
	var pool []*domain.Item
	counts := make([]int, len(players))
	for i, p := range players {
		if !p.IsAlive() {
			continue
		}
		counts[i] = len(p.Hand)
		pool = append(pool, p.Items()...)
		p.Hand = nil
	}

	for i, p := range players {
		for len(p.Hand) < counts[i] {
			k := rng.Intn(len(pool))
			p.Hand = append(p.Hand, domain.NewPiece(pool[k]))
			pool = append(pool[:k], pool[k+1:]...)
		}
		if p.HasHarm(domain.HarmIllusion) {
			ApplyIllusion(rng, src, p)
		}
	}
}

// --- СКАНИРОВАНИЕ РУКИ ---

// HasWeapon - в руке есть оружие (тогда "ничего не делать" запрещено).
func HasWeapon(p *domain.Player) bool {
	for _, it := range p.Items() {
		if it.Type == domain.ItemTypeWeapon {
			return true
		}
	}
	return false
}

// HasAttackKind - в руке есть предмет данного вида атаки.
func HasAttackKind(p *domain.Player, kind domain.AttackKind) bool {
	for _, it := range p.Items() {
		if it.AttackKind == kind {
			return true
		}
	}
	return false
}

// HoldersOf - живые игроки, держащие предмет id, в порядке списка.
func HoldersOf(players []*domain.Player, id int) []*domain.Player {
	var out []*domain.Player
	for _, p := range players {
		if p.IsAlive() && p.HasItem(id) {
			out = append(out, p)
		}
	}
	return out
}
