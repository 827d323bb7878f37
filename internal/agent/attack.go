package agent

import (
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/utils"
)

const (
	lowHP         = 25
	exchangeHP    = 30
	exchangeMP    = 30
	minBuyYen     = 5
	minSellPrice  = 10
	doubleMinDmg  = 10
	wideMinDmg    = 5
	strongAttack  = 10
	forcedDiscard = 2
)

// attackPlan - все варианты хода, собранные за один проход по руке.
type attackPlan struct {
	bot         *Bot
	options     buckets
	lastResorts []candidate
	special     []candidate
	discardPool []domain.CommandPiece
}

func (b *Bot) planAttack() *attackPlan {
	plan := &attackPlan{bot: b}
	seen := make(map[int]bool)

	for i, piece := range b.me.Hand {
		item := piece.Item
		if seen[item.ID] || systems.IsVirtual(item) {
			continue
		}
		seen[item.ID] = true
		plan.consider(i, piece)
	}
	for i, magic := range b.me.Magics {
		if seen[magic.ID] {
			continue
		}
		seen[magic.ID] = true
		plan.consider(-1, domain.NewAbilityPiece(magic, i))
	}
	return plan
}

// consider оценивает кусок как начало цепочки. handIdx -1 для привязанной магии.
func (pl *attackPlan) consider(handIdx int, piece domain.CommandPiece) {
	b := pl.bot
	item := piece.Item

	switch item.Type {
	case domain.ItemTypeProtector:
		if item.DefenseExtra != domain.DefExtraReflectAny {
			pl.discardPool = append(pl.discardPool, piece)
		}
		return
	case domain.ItemTypeWeapon:
		if item.AttackKind == domain.AttackAtk {
			pl.considerWeapon(handIdx, piece)
			return
		}
	case domain.ItemTypeTrade:
		switch item.AttackKind {
		case domain.AttackSell:
			pl.considerSell(handIdx, piece)
			return
		case domain.AttackBuy:
			pl.considerBuy(piece)
			return
		case domain.AttackExchange:
			pl.considerExchange(piece)
			return
		}
	}

	if item.AttackKind == domain.AttackNone {
		if !piece.IsAbility && item.Type != domain.ItemTypeFixed {
			pl.discardPool = append(pl.discardPool, piece)
		}
		return
	}
	// Отражения держим для защиты.
	if item.DefenseExtra == domain.DefExtraFlickMagic || item.DefenseExtra == domain.DefExtraBlockWeapon {
		return
	}

	added := false
	for _, target := range b.targetsFor(item) {
		pieces := b.withMagicFree(handIdx, []domain.CommandPiece{piece})
		pr, ok := b.scoreKind(item, target)
		if !ok || !b.legal(pieces, target, nil) {
			continue
		}
		pl.options.add(pieces, target, nil, pr)
		added = true
	}
	if !added && !piece.IsAbility && item.Type != domain.ItemTypeFixed {
		pl.discardPool = append(pl.discardPool, piece)
	}
}

// scoreKind оценивает одиночный кусок по виду атаки против конкретной цели.
// false - ход бессмысленный.
func (b *Bot) scoreKind(item *domain.Item, target *domain.Player) (Priority, bool) {
	switch item.AttackKind {
	case domain.AttackAtk:
		if item.HitRate > 0 {
			return PriorityMedium, true
		}
		return b.scoreDamage(item.Atk(), item.Attribute, target), true
	case domain.AttackAddHarm:
		h := item.AttackExtra.Harm()
		if h == domain.HarmNone || (!h.IsDisease() && target.HasHarm(h)) {
			return 0, false
		}
		return PriorityLow, true
	case domain.AttackSetAssistant:
		if target.Assistant != nil {
			return 0, false
		}
		return PriorityMedium, true
	case domain.AttackIncreaseHP:
		if target.HP < lowHP {
			return PriorityHigh, true
		}
		return PriorityDiscard, true
	case domain.AttackIncreaseMP:
		if target == b.me && b.me.MP < b.maxMagicCost() {
			return PriorityMedium, true
		}
		return PriorityDiscard, true
	case domain.AttackIncreaseYen:
		if target.Yen < domain.InitialYen {
			return PriorityLow, true
		}
		return PriorityDiscard, true
	case domain.AttackRemoveAllHarms:
		if target.Disease == domain.HarmHell || target.Disease == domain.HarmHeaven {
			return PriorityHigh, true
		}
		if target.Disease != domain.HarmNone || len(target.Harms) > 0 {
			return PriorityMedium, true
		}
		return PriorityDiscard, true
	case domain.AttackRemoveLowerHarms:
		if target.HasLowerDisease() {
			return PriorityMedium, true
		}
		return PriorityDiscard, true
	case domain.AttackRemoveAbilities:
		if len(b.statsOf(target).magics) > 0 {
			return PriorityMedium, true
		}
		return PriorityDiscard, true
	case domain.AttackAbsorbYen:
		if target.Yen == 0 {
			return PriorityDiscard, true
		}
		return PriorityLow, true
	case domain.AttackIncreaseOrDecreaseHP:
		if b.me.HP < lowHP {
			return PriorityLow, true
		}
		return PriorityDiscard, true
	case domain.AttackAddItem, domain.AttackSell, domain.AttackDiscard, domain.AttackDoNothing, domain.AttackExchange:
		// Двухкусковые и служебные виды собираются отдельно.
		return 0, false
	}
	return PriorityLow, true
}

// scoreDamage: смертельный удар - HIGH, по беззащитному или неотражаемому - CRITICAL.
func (b *Bot) scoreDamage(damage int, attr domain.Attribute, target *domain.Player) Priority {
	if attr == domain.AttrDark {
		return PriorityCritical
	}
	defenceless := b.statsOf(target).possiblyDefenceless()
	if damage >= effectiveHP(target) {
		if defenceless {
			return PriorityCritical
		}
		return PriorityHigh
	}
	switch {
	case damage >= strongAttack && defenceless:
		return PriorityHigh
	case damage >= strongAttack:
		return PriorityMedium
	}
	return PriorityLow
}

func effectiveHP(p *domain.Player) int {
	hp := p.HP
	if p.Assistant != nil {
		hp += p.Assistant.HP
	}
	return hp
}

// targetsFor перечисляет цели по стороне, на которую работает предмет.
func (b *Bot) targetsFor(item *domain.Item) []*domain.Player {
	players := b.view.Players()
	switch systems.TargetRelation(item) {
	case systems.RelationEnemy:
		return systems.AliveEnemies(players, b.me)
	case systems.RelationAlly:
		return systems.AliveAllies(players, b.me, false)
	}
	return []*domain.Player{b.me}
}

// considerWeapon собирает оружейную атаку с модификаторами из руки.
func (pl *attackPlan) considerWeapon(handIdx int, piece domain.CommandPiece) {
	b := pl.bot
	item := piece.Item
	enemies := systems.AliveEnemies(b.view.Players(), b.me)

	switch {
	case item.AttackExtra == domain.ExtraDyingAttack:
		for _, t := range enemies {
			pl.special = append(pl.special, candidate{cmd: engine.AttackCommand{Pieces: []domain.CommandPiece{piece}, Target: t}})
		}
		return
	case item.DefenseExtra.IsRedirect():
		for _, t := range enemies {
			pl.lastResorts = append(pl.lastResorts, candidate{cmd: engine.AttackCommand{Pieces: []domain.CommandPiece{piece}, Target: t}})
		}
		return
	case item.AttackExtra == domain.ExtraPestle:
		for _, t := range enemies {
			if b.legal([]domain.CommandPiece{piece}, t, nil) {
				pl.options.add([]domain.CommandPiece{piece}, t, nil, PriorityCritical)
			}
		}
		return
	case item.HitRate > 0:
		if b.legal([]domain.CommandPiece{piece}, b.me, nil) {
			pl.options.add([]domain.CommandPiece{piece}, b.me, nil, PriorityMedium)
		}
		return
	}

	pieces := b.composeWeapon(handIdx, piece, systems.AliveCount(b.view.Players()))
	damage, attr := estimate(pieces)
	for _, t := range enemies {
		if b.legal(pieces, t, nil) {
			pl.options.add(pieces, t, nil, b.scoreDamage(damage, attr, t))
		}
	}
}

// composeWeapon жадно цепляет модификаторы из руки и привязанной магии.
// alive - число живых игроков, нужно для WIDE.
func (b *Bot) composeWeapon(handIdx int, lead domain.CommandPiece, alive int) []domain.CommandPiece {
	pieces := []domain.CommandPiece{lead}
	atk := domain.NewAttack(b.me, nil, pieces)
	damage := lead.Item.Atk()
	var double, wide []domain.CommandPiece

	mods := make([]domain.CommandPiece, 0, len(b.me.Hand)+len(b.me.Magics))
	for i, piece := range b.me.Hand {
		if i != handIdx {
			mods = append(mods, piece)
		}
	}
	for i, magic := range b.me.Magics {
		mods = append(mods, domain.NewAbilityPiece(magic, i))
	}

	for _, piece := range mods {
		item := piece.Item
		if !atk.IsValidAttackItem(item, false) {
			continue
		}
		switch item.AttackExtra {
		case domain.ExtraIncreaseAtk:
			pieces = append(pieces, piece)
			damage += item.Atk()
		case domain.ExtraAddAttribute:
			pieces = append(pieces, piece)
		case domain.ExtraDoubleAtk:
			double = append(double, piece)
		case domain.ExtraWideAtk:
			wide = append(wide, piece)
		}
	}
	if len(double) > 0 && damage >= doubleMinDmg {
		pieces = append(pieces, double[0])
		damage *= 2
	}
	if len(wide) > 0 && damage > wideMinDmg && alive > 2 {
		pieces = append(pieces, wide[0])
	}
	return b.removeExcessMagic(pieces)
}

// estimate - урон и атрибут оружейной цепочки в том порядке, в каком их считает движок.
func estimate(pieces []domain.CommandPiece) (int, domain.Attribute) {
	damage := -1
	attr := domain.AttrUndetermined
	for _, piece := range pieces {
		item := piece.Item
		switch item.AttackExtra {
		case domain.ExtraIncreaseAtk:
			damage = max(damage, 0) + item.Atk()
		case domain.ExtraDoubleAtk:
			damage *= 2
		case domain.ExtraWideAtk:
			attr = domain.AttrNone
		}
		if item.AttackKind == domain.AttackAtk && damage == -1 {
			damage = item.Atk()
		}
		if item.AttackExtra == domain.ExtraAddAttribute {
			attr = item.Attribute
		} else {
			attr = domain.FoldAttribute(attr, item.Attribute)
		}
	}
	if attr == domain.AttrUndetermined {
		attr = domain.AttrNone
	}
	return max(damage, 0), attr
}

// removeExcessMagic снимает магию с конца цепочки, пока она не по карману.
func (b *Bot) removeExcessMagic(pieces []domain.CommandPiece) []domain.CommandPiece {
	for systems.ChainCost(pieces) > b.me.MP {
		idx := -1
		for i := len(pieces) - 1; i > 0; i-- {
			if pieces[i].Item.Type == domain.ItemTypeMagic {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		pieces = append(pieces[:idx:idx], pieces[idx+1:]...)
	}
	return pieces
}

// withMagicFree дописывает MAGIC_FREE из руки, если магия иначе не по карману.
func (b *Bot) withMagicFree(handIdx int, pieces []domain.CommandPiece) []domain.CommandPiece {
	if pieces[0].Item.Type != domain.ItemTypeMagic || systems.ChainCost(pieces) <= b.me.MP {
		return pieces
	}
	for i, piece := range b.me.Hand {
		if i != handIdx && piece.Item.AttackExtra == domain.ExtraMagicFree && piece.Item.AttackKind == domain.AttackNone {
			return append(append([]domain.CommandPiece(nil), pieces...), piece)
		}
	}
	return pieces
}

func (b *Bot) maxMagicCost() int {
	best := 0
	for _, it := range b.me.Items() {
		best = max(best, it.MPCost())
	}
	for _, m := range b.me.Magics {
		best = max(best, m.MPCost())
	}
	return best
}

// considerSell: сначала сбываем ступку, потом самое дорогое из ненужного.
func (pl *attackPlan) considerSell(handIdx int, piece domain.CommandPiece) {
	b := pl.bot
	var mortar, priciest, cheapest *domain.CommandPiece
	for i := range b.me.Hand {
		other := b.me.Hand[i]
		if i == handIdx || systems.IsVirtual(other.Item) || isGood(other.Item) {
			continue
		}
		if other.Item.AttackExtra == domain.ExtraMortar && mortar == nil {
			mortar = &b.me.Hand[i]
		}
		if priciest == nil || other.Item.Price > priciest.Item.Price {
			priciest = &b.me.Hand[i]
		}
		if cheapest == nil || other.Item.Price < cheapest.Item.Price {
			cheapest = &b.me.Hand[i]
		}
	}

	for _, t := range systems.AliveEnemies(b.view.Players(), b.me) {
		switch {
		case mortar != nil:
			pl.addIfLegal([]domain.CommandPiece{piece, *mortar}, t, nil, PriorityMedium)
		case priciest != nil && priciest.Item.Price > minSellPrice:
			pl.addIfLegal([]domain.CommandPiece{piece, *priciest}, t, nil, PriorityLow)
		case cheapest != nil:
			pl.lastResorts = append(pl.lastResorts, candidate{cmd: engine.AttackCommand{
				Pieces: []domain.CommandPiece{piece, *cheapest},
				Target: t,
			}})
		}
	}
}

func (pl *attackPlan) considerBuy(piece domain.CommandPiece) {
	b := pl.bot
	if b.me.Yen < minBuyYen {
		if b.me.Yen == 0 {
			pl.discardPool = append(pl.discardPool, piece)
		}
		return
	}
	for _, t := range systems.AliveEnemies(b.view.Players(), b.me) {
		pl.addIfLegal([]domain.CommandPiece{piece}, t, nil, PriorityLow)
	}
}

// considerExchange меняет статы, только если не хватает HP или MP.
func (pl *attackPlan) considerExchange(piece domain.CommandPiece) {
	b := pl.bot
	pieces := []domain.CommandPiece{piece}
	total := b.me.HP + b.me.MP + b.me.Yen - systems.ChainCost(pieces)
	ex := BuildExchange(total, b.me)

	needHP := b.me.HP < exchangeHP && ex.HP > b.me.HP
	needMP := b.me.MP < b.maxMagicCost() && ex.MP > b.me.MP
	switch {
	case needHP && b.me.HP < lowHP/2:
		pl.addIfLegal(pieces, b.me, &ex, PriorityHigh)
	case needHP || needMP:
		pl.addIfLegal(pieces, b.me, &ex, PriorityMedium)
	default:
		pl.discardPool = append(pl.discardPool, piece)
	}
}

// BuildExchange раскладывает сумму: HP до 30, MP до 30, остальное в YEN.
// Уже имеющееся выше порога не срезается. Сумма сохраняется, пока влезает в лимиты.
func BuildExchange(total int, p *domain.Player) domain.Exchange {
	hp := min(total, max(exchangeHP, p.HP), domain.StatCap)
	mp := min(total-hp, max(exchangeMP, p.MP), domain.StatCap)
	yen := total - hp - mp
	if yen > domain.StatCap {
		extra := yen - domain.StatCap
		yen = domain.StatCap
		add := min(extra, domain.StatCap-hp)
		hp += add
		mp = min(domain.StatCap, mp+extra-add)
	}
	return domain.Exchange{HP: hp, MP: mp, Yen: yen}
}

func (pl *attackPlan) addIfLegal(pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange, pr Priority) {
	if pl.bot.legal(pieces, target, ex) {
		pl.options.add(pieces, target, ex, pr)
	}
}

func (b *Bot) legal(pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange) bool {
	return target != nil && systems.ValidateAttack(b.me, pieces, target, ex) == nil
}

// isGood - предметы, которые бот не продает и не сбрасывает.
func isGood(item *domain.Item) bool {
	switch item.ID {
	case domain.ItemCounterRingA, domain.ItemCounterRingB, domain.ItemCounterRingC, domain.ItemCounterRingD,
		domain.ItemRemoveAttribute, domain.ItemRevive, domain.ItemDyingAttack:
		return true
	}
	return item.DefenseExtra == domain.DefExtraReflectAny || item.AttackExtra == domain.ExtraPestle
}

// --- ШАГИ ВЫБОРА ---

// forcedDiscard: полная рука и ни одного хода, кроме сброса.
func (pl *attackPlan) forcedDiscard() (engine.AttackCommand, bool) {
	b := pl.bot
	if len(b.me.Hand) < domain.HandLimit {
		return engine.AttackCommand{}, false
	}
	if top := pl.options.top(); top > int(PriorityDiscard) {
		return engine.AttackCommand{}, false
	}

	pool := append([]domain.CommandPiece(nil), pl.discardPool...)
	if len(pool) < forcedDiscard {
		for _, piece := range b.me.Hand {
			if piece.Item.Type != domain.ItemTypeFixed && !isGood(piece.Item) && !containsPiece(pool, piece) {
				pool = append(pool, piece)
			}
		}
	}
	if len(pool) < forcedDiscard {
		return engine.AttackCommand{}, false
	}
	rng := b.view.Rand()
	first := pool[0]
	rest := pool[1:]
	second := rest[rng.Intn(len(rest))]

	pieces := []domain.CommandPiece{domain.NewPiece(b.view.Catalog().MustGet(domain.ItemDiscard)), first, second}
	return engine.AttackCommand{Pieces: pieces, Target: b.me}, true
}

func containsPiece(pool []domain.CommandPiece, piece domain.CommandPiece) bool {
	for _, p := range pool {
		if p.Item.ID == piece.Item.ID {
			return true
		}
	}
	return false
}

// best - лучший осмысленный ход. Корзина DISCARD сюда не входит.
func (pl *attackPlan) best() (engine.AttackCommand, bool) {
	return pl.options.pickAbove(pl.bot, PriorityDiscard)
}

// uselessPlay - ход из корзины DISCARD (лечение при полном HP и т.п.),
// когда атаки не нашлось.
func (pl *attackPlan) uselessPlay() (engine.AttackCommand, bool) {
	return pl.options.pick(pl.bot)
}

func (pl *attackPlan) lastResort() (engine.AttackCommand, bool) {
	c, ok := utils.Pick(pl.bot.view.Rand(), pl.lastResorts)
	return c.cmd, ok
}

func (pl *attackPlan) specialLastResort() (engine.AttackCommand, bool) {
	c, ok := utils.Pick(pl.bot.view.Rand(), pl.special)
	return c.cmd, ok
}

func (pl *attackPlan) doNothing() (engine.AttackCommand, bool) {
	b := pl.bot
	if systems.HasWeapon(b.me) {
		return engine.AttackCommand{}, false
	}
	return engine.AttackCommand{
		Pieces: domain.PiecesOf(b.view.Catalog().MustGet(domain.ItemDoNothing)),
		Target: b.me,
	}, true
}

// anyWeapon - одиночное оружие по случайному врагу, когда ничего не подошло.
func (pl *attackPlan) anyWeapon() (engine.AttackCommand, bool) {
	b := pl.bot
	target := systems.RandomAliveEnemy(b.view.Rand(), b.view.Players(), b.me)
	if target == nil {
		target = b.me
	}
	for _, piece := range b.me.Hand {
		if piece.Item.Type == domain.ItemTypeWeapon && b.legal([]domain.CommandPiece{piece}, target, nil) {
			return engine.AttackCommand{Pieces: []domain.CommandPiece{piece}, Target: target}, true
		}
	}
	return engine.AttackCommand{}, false
}
