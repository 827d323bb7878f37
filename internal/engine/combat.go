package engine

import (
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/metrics"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Phase - чего ждет бой.
type Phase uint8

const (
	PhaseResolved         Phase = iota // ввод не нужен
	PhaseAwaitingAttacker              // ход атакующего
	PhaseAwaitingDefender              // защита текущей атаки
	PhaseAwaitingBuy                   // ответ на предложение купить
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAttacker:
		return "AWAITING_ATTACKER"
	case PhaseAwaitingDefender:
		return "AWAITING_DEFENDER"
	case PhaseAwaitingBuy:
		return "AWAITING_BUY"
	}
	return "RESOLVED"
}

// Arena - то, что бою нужно от комнаты.
type Arena interface {
	Players() []*domain.Player
	// Controller возвращает бота игрока или nil для человека.
	Controller(p *domain.Player) BotController
	Emit(ev domain.Event)
}

// defenseOutcome - итог одного шага защиты.
type defenseOutcome uint8

const (
	outcomeDone defenseOutcome = iota
	outcomeAwaitDefender
	outcomeAwaitBuy
	outcomeBotDefends
)

// Combat разрешает атаки одного иннинга.
// Атаки стоят в очереди по значению, current указывает на разрешаемую.
type Combat struct {
	arena Arena
	cat   *catalog.Catalog
	rng   *rand.Rand
	log   *logrus.Entry

	queue    []domain.AttackData
	current  *domain.AttackData
	attacker *domain.Player
	phase    Phase

	// ForceNextAssistant подменяет следующий SET_ASSISTANT (админская команда).
	ForceNextAssistant domain.Planet
}

func NewCombat(arena Arena, cat *catalog.Catalog, rng *rand.Rand, log *logrus.Entry) *Combat {
	if log == nil {
		log = logger.For("combat")
	}
	return &Combat{arena: arena, cat: cat, rng: rng, log: log}
}

// NewInning сбрасывает бой под нового атакующего.
func (c *Combat) NewInning(attacker *domain.Player) {
	c.queue = nil
	c.current = nil
	c.attacker = attacker
	c.phase = PhaseResolved
	if attacker != nil {
		c.phase = PhaseAwaitingAttacker
	}
}

func (c *Combat) Phase() Phase { return c.phase }
func (c *Combat) Attacker() *domain.Player { return c.attacker }
func (c *Combat) Current() *domain.AttackData { return c.current }
func (c *Combat) Pending() bool { return len(c.queue) > 0 }
func (c *Combat) Queue() []domain.AttackData { return c.queue }
func (c *Combat) SetRand(rng *rand.Rand) { c.rng = rng }
func (c *Combat) Catalog() *catalog.Catalog { return c.cat }

// Waiting - игрок, от которого нужен ввод, или nil.
func (c *Combat) Waiting() *domain.Player {
	switch c.phase {
	case PhaseAwaitingAttacker:
		return c.attacker
	case PhaseAwaitingDefender:
		return c.current.Defender
	case PhaseAwaitingBuy:
		return c.current.Attacker
	}
	return nil
}

// invariant паникует с *InvariantError. Комната ловит панику и останавливается.
func (c *Combat) invariant(ok bool, msg string, fields logrus.Fields) {
	if ok {
		return
	}
	c.log.WithFields(fields).Error(msg)
	panic(&InvariantError{Msg: msg, Fields: fields})
}

func attackFields(atk *domain.AttackData) logrus.Fields {
	f := logrus.Fields{
		"damage":    atk.Damage,
		"chance":    atk.Chance,
		"attribute": atk.Attribute.String(),
		"pieces":    len(atk.Pieces),
	}
	if atk.Attacker != nil {
		f["attacker"] = atk.Attacker.ID
	}
	if atk.Defender != nil {
		f["defender"] = atk.Defender.ID
	}
	if first := atk.First(); first != nil {
		f["kind"] = first.AttackKind.String()
		f["item"] = first.ID
	}
	return f
}

// consume тратит кусок игрока. Неудача здесь - нарушение инварианта.
func (c *Combat) consume(p *domain.Player, item *domain.Item, free bool) {
	err := p.Consume(item, free)
	c.invariant(err == nil, "failed to consume piece", logrus.Fields{
		"player": p.ID,
		"item":   item.ID,
		"error":  err,
	})
}

// addHarm накладывает вред; ILLUSION сразу раздает подмены руке.
func (c *Combat) addHarm(p *domain.Player, h domain.Harm) {
	p.AddHarm(h)
	if h == domain.HarmIllusion {
		systems.ApplyIllusion(c.rng, c.cat, p)
	}
}

// giveItem молча кладет предмет в руку (с подменой под ILLUSION).
func (c *Combat) giveItem(p *domain.Player, item *domain.Item) {
	systems.DealItem(c.rng, c.cat, p, item)
}

// --- ОЧЕРЕДЬ ---

// QueueAttack разбирает цепочку в одну атаку и ставит ее в очередь.
// forced - серверная атака (контратака, ассистент, предсмертная): без проверок и трат.
func (c *Combat) QueueAttack(atk domain.AttackData, forced bool) {
	fields := attackFields(&atk)
	if !forced {
		c.invariant(len(atk.Pieces) > 0, "empty attack chain", fields)
		c.invariant(atk.Attacker.IsAlive(), "dead attacker", fields)
		c.invariant(atk.Defender != nil && atk.Defender.IsAlive(), "dead target", fields)

		if atk.Attacker.HasHarm(domain.HarmFog) && atk.Attacker != atk.Defender {
			atk.Defender = systems.FogRetarget(c.rng, c.arena.Players(), atk.Attacker, atk.Defender)
			atk.IsRetargeted = true
		}
	}

	massive := false
	free := domain.IsMagicFree(atk.Pieces)

chain:
	for i, piece := range atk.Pieces {
		item := piece.Item
		if !forced {
			c.invariant(atk.IsValidAttackItem(item, i == 0), "illegal attack piece", logrus.Fields{"item": item.ID, "position": i})
		}

		switch item.AttackKind {
		case domain.AttackDoNothing:
			c.invariant(len(atk.Pieces) == 1 && !systems.HasWeapon(atk.Attacker), "illegal pass", fields)
			atk.IsAction = true
			atk.Attacker.Deal++
			break chain
		case domain.AttackDiscard:
			c.invariant(len(atk.Pieces) > 1, "nothing to discard", fields)
			atk.IsAction = true
			break chain
		}

		if !forced {
			c.consume(atk.Attacker, item, free)
			atk.Attacker.Deal++
		}

		switch item.AttackKind {
		case domain.AttackExchange:
			c.invariant(len(atk.Pieces) == 1 && atk.DecidedExchange != nil, "exchange without split", fields)
			atk.IsAction = true
			total := atk.Attacker.HP + atk.Attacker.MP + atk.Attacker.Yen
			c.invariant(atk.DecidedExchange.Sum() == total, "exchange sum mismatch", logrus.Fields{
				"split": atk.DecidedExchange.Sum(),
				"total": total,
			})
			break chain
		case domain.AttackSell:
			c.invariant(len(atk.Pieces) == 2, "sell needs one ware", fields)
			atk.DecidedValue = domain.IntPtr(atk.Pieces[1].Item.Price)
			if atk.AssistantType == domain.PlanetNone {
				atk.Attacker.DiscardItem(atk.Pieces[1].Item.ID)
			}
			break chain
		case domain.AttackBuy, domain.AttackRemoveItems, domain.AttackRemoveAbilities:
			c.invariant(len(atk.Pieces) == 1, "chained steal", fields)
			break chain
		case domain.AttackMystery:
			c.invariant(len(atk.Pieces) == 1, "chained mystery", fields)
			atk.IsAction = true
			massive = c.mystery(&atk)
			break chain
		case domain.AttackSetAssistant:
			c.invariant(len(atk.Pieces) == 1, "chained summon", fields)
			if c.ForceNextAssistant != domain.PlanetNone {
				atk.DecidedAssistant = c.ForceNextAssistant
				c.ForceNextAssistant = domain.PlanetNone
			} else {
				atk.DecidedAssistant = domain.Planets[c.rng.Intn(len(domain.Planets))]
			}
			break chain
		case domain.AttackIncreaseOrDecreaseHP:
			c.invariant(len(atk.Pieces) == 1, "chained gamble", fields)
			if c.rng.Intn(2) == 1 {
				atk.DecidedHP = domain.IntPtr(10)
			} else {
				atk.DecidedHP = domain.IntPtr(-10)
			}
			break chain
		case domain.AttackAddItem:
			c.invariant(len(atk.Pieces) == 2, "gift needs one item", fields)
			break chain
		}

		switch item.AttackExtra {
		case domain.ExtraIncreaseAtk:
			if atk.Damage == -1 {
				atk.Damage = 0
			}
			atk.Damage += item.Atk()
		case domain.ExtraDoubleAtk:
			c.invariant(atk.Damage >= 0 && len(atk.Pieces) > 1, "double without attack", fields)
			atk.Damage *= 2
		case domain.ExtraWideAtk:
			c.invariant(atk.Damage >= 0 && len(atk.Pieces) > 1, "wide without attack", fields)
			massive = true
			atk.Chance = 100
			atk.Attribute = domain.AttrNone
		case domain.ExtraMagical:
			if atk.AssistantType == domain.PlanetNone {
				atk.Damage = atk.Attacker.MP * 2
				atk.Attacker.MP = 0
			} else {
				atk.Damage = 200
			}
			atk.Extra = append(atk.Extra, item.AttackExtra)
		case domain.ExtraPestle:
			c.invariant(len(atk.Pieces) == 1, "chained pestle", fields)
			if holders := systems.HoldersOf(c.arena.Players(), domain.ItemMortar); len(holders) > 0 {
				atk.Mortar = c.cat.MustGet(domain.ItemMortar)
				atk.Damage = 99
				atk.Defender = holders[0]
			} else {
				atk.Defender = systems.RandomAlive(c.rng, c.arena.Players(), atk.Attacker)
			}
		case domain.ExtraNone, domain.ExtraAddAttribute:
		default:
			atk.Extra = append(atk.Extra, item.AttackExtra)
		}

		if item.AttackKind == domain.AttackAtk {
			value := item.Atk()
			if atk.DecidedValue != nil {
				c.invariant(item.AttackExtra == domain.ExtraDyingAttack || atk.IsCounter, "decided value on plain attack", fields)
				value = *atk.DecidedValue
			}
			if item.HitRate > 0 && !massive {
				massive = true
				atk.Chance = item.HitRate
			}
			if atk.Damage == -1 {
				atk.Damage = value
			}
		}

		if item.AttackExtra == domain.ExtraAddAttribute {
			atk.Attribute = item.Attribute
		} else {
			atk.Attribute = domain.FoldAttribute(atk.Attribute, item.Attribute)
		}
	}

	kind := atk.Kind().String()
	if massive {
		c.invariant(!atk.IsAction && atk.Chance > 0, "massive action", fields)
		start := len(c.queue)
		for _, p := range c.arena.Players() {
			if !p.IsAlive() || !p.IsEnemy(atk.Attacker) {
				continue
			}
			clone := atk.Clone()
			clone.Defender = p
			c.queue = append(c.queue, clone)
		}
		if len(c.queue) == start {
			c.log.WithFields(fields).Debug("Massive attack has no living enemy")
			return
		}
		c.queue[len(c.queue)-1].IsLast = true
		metrics.AttacksQueued.WithLabelValues(kind).Add(float64(len(c.queue) - start))
		c.log.WithFields(attackFields(&atk)).WithField("targets", len(c.queue)-start).Debug("Massive attack queued")
		return
	}

	if atk.IsAction {
		atk.Defender = atk.Attacker
	} else if atk.HasExtra(domain.ExtraToEnemy) && systems.AreEnemiesAlive(c.arena.Players(), atk.Attacker) {
		atk.Defender = systems.RandomAliveEnemy(c.rng, c.arena.Players(), atk.Attacker)
	}
	atk.IsLast = true
	c.queue = append(c.queue, atk)
	metrics.AttacksQueued.WithLabelValues(kind).Inc()
	c.log.WithFields(attackFields(&atk)).Debug("Attack queued")
}

// mystery бросает исход MYSTERY. Массовые эффекты касаются только живых.
// Возвращает true, если атака стала массовой (PLUTO).
func (c *Combat) mystery(atk *domain.AttackData) bool {
	planet := domain.Planets[c.rng.Intn(len(domain.Planets))]
	atk.DecidedMystery = planet
	players := c.arena.Players()

	c.log.WithFields(logrus.Fields{
		"attacker": atk.Attacker.ID,
		"mystery":  planet.String(),
	}).Debug("Mystery resolved")

	switch planet {
	case domain.PlanetMars:
		for _, p := range players {
			if p.IsAlive() {
				p.Disease = domain.HarmFever
				p.WorseChance = 0
			}
		}
	case domain.PlanetMercury:
		for _, p := range players {
			if p.IsAlive() {
				c.addHarm(p, domain.HarmFog)
			}
		}
	case domain.PlanetJupiter:
		for _, p := range players {
			if p.IsAlive() {
				c.addHarm(p, domain.HarmIllusion)
			}
		}
	case domain.PlanetSaturn:
		for _, p := range players {
			if p.IsAlive() {
				p.HP = 1
			}
		}
	case domain.PlanetUranus:
		atk.IsAction = false
		atk.Defender = systems.RandomAlive(c.rng, players, nil)
		atk.Damage = 60
		atk.Attribute = domain.AttrLight
	case domain.PlanetPluto:
		atk.IsAction = false
		atk.Chance = 75
		atk.Damage = 30
		atk.Attribute = domain.AttrDark
		return true
	case domain.PlanetNeptune:
		atk.Attacker.IncreaseHP(60)
	case domain.PlanetVenus:
		for _, p := range players {
			if p.IsAlive() {
				p.Yen = domain.StatCap
			}
		}
	case domain.PlanetEarth:
		systems.RedistributeHands(c.rng, c.cat, players)
	case domain.PlanetMoon:
		for _, p := range players {
			if p.IsAlive() {
				p.Assistant = domain.NewAssistant(domain.Planets[c.rng.Intn(len(domain.Planets))])
			}
		}
	}
	return false
}

// --- РАЗРЕШЕНИЕ ---

// DoAttack снимает атаку с очереди и разрешает ее.
// false - нужен ввод человека (защита или покупка).
func (c *Combat) DoAttack() bool {
	c.invariant(len(c.queue) > 0, "resolve on empty queue", nil)
	atk := c.queue[0]
	c.queue = c.queue[1:]
	c.current = &atk
	c.phase = PhaseResolved

	missed := false
	if !atk.Defender.HasHarm(domain.HarmDarkCloud) {
		missed = atk.Chance > 0 && atk.Chance < c.rng.Intn(100)+1
	}

	if !atk.Defender.IsAlive() {
		c.invariant(atk.Chance != 0 || atk.IsCounter || atk.AssistantType != domain.PlanetNone,
			"attack on dead player", attackFields(&atk))
		c.log.WithFields(attackFields(&atk)).Debug("Attack skipped, defender is dead")
		return true
	}

	endInning := missed
	if atk.Attacker == atk.Defender {
		endInning = c.DefenderCommand(atk.Defender, nil)
	}

	c.emitCommand(c.current, missed)

	if missed {
		c.log.WithFields(attackFields(c.current)).Debug("Attack missed")
		return endInning
	}
	if c.current.Attacker != c.current.Defender {
		if bot := c.arena.Controller(c.current.Defender); bot != nil {
			return c.DefenderCommand(c.current.Defender, bot.OnDefenseTurn())
		}
		c.phase = PhaseAwaitingDefender
		return false
	}
	return endInning
}

// AttackerCommand - вход для атакующего (человек или бот).
func (c *Combat) AttackerCommand(p *domain.Player, pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange) bool {
	expected := c.attacker
	if c.current != nil {
		expected = c.current.Attacker
	}
	c.invariant(p == expected, "attack out of turn", logrus.Fields{"player": p.ID})

	atk := domain.NewAttack(p, target, pieces)
	atk.DecidedExchange = ex
	c.QueueAttack(atk, false)
	c.phase = PhaseResolved
	return true
}

// DefenderCommand применяет защиту игрока против текущей атаки.
// Перенаправление на бота разрешается здесь же циклом, без рекурсии.
// false - нужен ввод человека.
func (c *Combat) DefenderCommand(p *domain.Player, pieces []domain.CommandPiece) bool {
	for {
		switch c.defend(p, pieces) {
		case outcomeAwaitDefender:
			c.phase = PhaseAwaitingDefender
			return false
		case outcomeAwaitBuy:
			c.phase = PhaseAwaitingBuy
			return false
		case outcomeBotDefends:
			p = c.current.Defender
			pieces = c.arena.Controller(p).OnDefenseTurn()
		default:
			c.phase = PhaseResolved
			return true
		}
	}
}

func (c *Combat) defend(p *domain.Player, pieces []domain.CommandPiece) defenseOutcome {
	c.invariant(c.current != nil, "defense without attack", logrus.Fields{"player": p.ID})
	c.invariant(p == c.current.Defender, "defense by wrong player", logrus.Fields{"player": p.ID})

	atk := c.current.Clone()
	var blocked, reflected, flicked bool
	free := domain.IsMagicFree(pieces)
	defAttr := domain.AttrUndetermined
	head := atk.First()

	for _, piece := range pieces {
		item := piece.Item
		c.consume(p, item, free)
		p.Deal++

		if item.ID == domain.ItemRemoveAttribute {
			atk.Attribute = domain.AttrNone
			c.current.Attribute = domain.AttrNone
		}
		defAttr = domain.FoldAttribute(defAttr, item.Attribute)

		if item.DefenseExtra.RedirectApplies(head.Type) {
			switch item.DefenseExtra {
			case domain.DefExtraReflectAny, domain.DefExtraReflectWeapon, domain.DefExtraReflectMagic:
				reflected = true
				c.current.Attacker, c.current.Defender = c.current.Defender, c.current.Attacker
			case domain.DefExtraFlickWeapon, domain.DefExtraFlickMagic:
				flicked = true
				c.current.Attacker = c.current.Defender
				c.current.Defender = systems.RandomAlive(c.rng, c.arena.Players(), nil)
			default:
				blocked = true
			}
			if !blocked {
				atk = c.current.Clone()
			}
			break
		}

		if item.DefenseKind == domain.DefenseDfs {
			if item.IsDefHarm() {
				c.addHarm(atk.Defender, item.DefenseExtra.Harm())
			}
			atk.Damage = max(0, atk.Damage-item.Def())
		}
	}

	redirected := reflected || flicked || blocked
	chain := false
	if !redirected {
		if len(pieces) > 0 {
			c.invariant(atk.CanBeDefendedBy(defAttr), "defense attribute mismatch", logrus.Fields{
				"attack":  atk.Attribute.String(),
				"defense": defAttr.String(),
			})
		}
		if atk.Damage > 0 {
			for _, piece := range pieces {
				if piece.Item.DefenseKind == domain.DefenseCounter {
					c.queueCounter(&atk, piece.Item)
				}
			}
		}
		chain = c.inflictDamage(&atk)
		metrics.Defenses.WithLabelValues(metrics.DefenseNormal).Inc()
		if atk.Attacker == atk.Defender || atk.Mortar != nil {
			return outcomeDone
		}
	}

	for _, other := range c.arena.Players() {
		if other == atk.Defender || other == atk.Attacker {
			continue
		}
		if bot := c.arena.Controller(other); bot != nil {
			bot.NotifyAttack(&atk, pieces, redirected)
		}
	}
	c.emitDefense(&atk, p, pieces, reflected, flicked, chain)

	if redirected {
		switch {
		case reflected:
			metrics.Defenses.WithLabelValues(metrics.DefenseReflect).Inc()
		case flicked:
			metrics.Defenses.WithLabelValues(metrics.DefenseFlick).Inc()
		default:
			metrics.Defenses.WithLabelValues(metrics.DefenseBlock).Inc()
		}
		if pieces[0].Item.DefenseExtra != domain.DefExtraReflectAny && head.Type != domain.ItemTypeMagic {
			c.invariant(atk.CanBeDefendedBy(defAttr), "redirect attribute mismatch", logrus.Fields{
				"attack":  atk.Attribute.String(),
				"defense": defAttr.String(),
			})
		}
		c.log.WithFields(attackFields(&atk)).WithFields(logrus.Fields{
			"reflected": reflected,
			"flicked":   flicked,
			"blocked":   blocked,
		}).Debug("Attack redirected")

		if blocked || !atk.Defender.IsAlive() {
			return outcomeDone
		}
		if atk.Attacker == atk.Defender {
			c.inflictDamage(&atk)
			return outcomeDone
		}
		if c.arena.Controller(atk.Defender) != nil {
			return outcomeBotDefends
		}
		return outcomeAwaitDefender
	}

	if atk.Kind() == domain.AttackBuy {
		if atk.DecidedItem == nil || atk.Attacker.Yen < atk.DecidedItem.Price {
			return outcomeDone
		}
		if bot := c.arena.Controller(atk.Attacker); bot != nil {
			c.PlayerBuyResponse(atk.Attacker, bot.BuyResponse(atk.DecidedItem))
			return outcomeDone
		}
		return outcomeAwaitBuy
	}
	return outcomeDone
}

// queueCounter ставит ответную атаку кольца или шипов.
func (c *Combat) queueCounter(atk *domain.AttackData, item *domain.Item) {
	target := atk.Attacker
	if item.AttackKind == domain.AttackIncreaseMP {
		target = atk.Defender
	}
	counter := domain.NewAttack(atk.Defender, target, domain.PiecesOf(item))
	switch item.ID {
	case domain.ItemCounterRingA, domain.ItemCounterRingD:
		counter.DecidedValue = domain.IntPtr(atk.Damage)
	case domain.ItemCounterRingB, domain.ItemCounterRingC:
		counter.DecidedValue = domain.IntPtr(atk.Damage * 2)
	}
	counter.IsCounter = true
	metrics.CountersSpawned.Inc()
	c.QueueAttack(counter, true)
}

// inflictDamage применяет атаку к защищающемуся.
// true - атака вызвала решение цепочки (кража, забывание, покупка).
func (c *Combat) inflictDamage(atk *domain.AttackData) bool {
	damaged := atk.Damage > 0
	chain := false
	fields := attackFields(atk)
	players := c.arena.Players()

	c.log.WithFields(fields).Debug("Inflict damage")

pieces:
	for i, piece := range atk.Pieces {
		item := piece.Item
		switch item.AttackKind {
		case domain.AttackDiscard:
			c.invariant(atk.Attacker == atk.Defender, "discard on other player", fields)
			for j, other := range atk.Pieces {
				if j == i || other.Item.AttackExtra == domain.ExtraMortar {
					continue
				}
				atk.Attacker.DiscardItem(other.Item.ID)
			}
			break pieces
		case domain.AttackExchange:
			c.invariant(atk.Attacker == atk.Defender && atk.DecidedExchange != nil, "exchange on other player", fields)
			atk.Attacker.SetStats(*atk.DecidedExchange)
			break pieces
		case domain.AttackSell:
			c.invariant(len(atk.Pieces) == 2, "sell needs one ware", fields)
			ware := atk.Pieces[1].Item
			atk.Defender.DecreaseYen(ware.Price)
			c.giveItem(atk.Defender, ware)
			atk.Attacker.IncreaseYen(ware.Price)
			break pieces
		case domain.AttackAddItem:
			c.invariant(len(atk.Pieces) == 2, "gift needs one item", fields)
			c.giveItem(atk.Defender, atk.Pieces[1].Item)
			break pieces
		case domain.AttackBuy:
			chain = true
			atk.DecidedItem = atk.Defender.RandomItem(c.rng)
			c.current.DecidedItem = atk.DecidedItem
			break pieces
		case domain.AttackRemoveItems:
			chain = true
			atk.DecidedItem = atk.Defender.RandomItem(c.rng)
			c.current.DecidedItem = atk.DecidedItem
			if atk.DecidedItem != nil {
				atk.Defender.DiscardItem(atk.DecidedItem.ID)
			}
			break pieces
		case domain.AttackRemoveAbilities:
			chain = true
			atk.DecidedItem = atk.Defender.RandomMagic(c.rng)
			c.current.DecidedItem = atk.DecidedItem
			if atk.DecidedItem != nil {
				atk.AbilityIndex = atk.Defender.MagicIndex(atk.DecidedItem.ID)
				c.current.AbilityIndex = atk.AbilityIndex
				atk.Defender.DiscardMagic(atk.DecidedItem.ID)
				for _, other := range players {
					if other == atk.Defender || other == atk.Attacker {
						continue
					}
					if bot := c.arena.Controller(other); bot != nil {
						bot.NotifyMagicDiscard(atk.Defender, atk.DecidedItem)
					}
				}
			}
			break pieces
		}

		switch item.AttackKind {
		case domain.AttackIncreaseHP:
			atk.Defender.IncreaseHP(item.Value)
		case domain.AttackIncreaseMP:
			if atk.IsCounter {
				c.invariant(atk.DecidedValue != nil, "mana counter without value", fields)
				atk.Attacker.IncreaseMP(*atk.DecidedValue * 2)
			} else {
				atk.Defender.IncreaseMP(item.Value)
			}
			if item.IsAtkHarm() {
				c.addHarm(atk.Defender, item.AttackExtra.Harm())
			}
		case domain.AttackIncreaseYen:
			atk.Defender.IncreaseYen(item.Value)
		case domain.AttackAbsorbYen:
			amount := item.Value
			if atk.DecidedValue != nil {
				amount = *atk.DecidedValue
			}
			atk.Attacker.IncreaseYen(amount)
			atk.Defender.DecreaseYen(amount)
		case domain.AttackScatterYen:
			for _, p := range players {
				p.IncreaseYen(item.Value)
			}
		case domain.AttackSetAssistant:
			c.invariant(atk.DecidedAssistant != domain.PlanetNone, "summon without planet", fields)
			atk.Defender.Assistant = domain.NewAssistant(atk.DecidedAssistant)
		case domain.AttackIncreaseOrDecreaseHP:
			c.invariant(atk.DecidedHP != nil, "gamble without value", fields)
			if *atk.DecidedHP < 0 {
				atk.Defender.TakeDamage(-*atk.DecidedHP)
			} else {
				atk.Defender.IncreaseHP(*atk.DecidedHP)
			}
		case domain.AttackRemoveAllHarms:
			atk.Defender.RemoveAllHarms(false)
		case domain.AttackRemoveLowerHarms:
			atk.Defender.RemoveAllHarms(true)
		case domain.AttackAddHarm:
			c.addHarm(atk.Defender, item.AttackExtra.Harm())
		default:
			if damaged && item.IsAtkHarm() {
				c.addHarm(atk.Defender, item.AttackExtra.Harm())
			}
		}
	}

	if damaged {
		if atk.Attribute == domain.AttrDark {
			atk.Defender.Kill()
		} else {
			if atk.HasExtra(domain.ExtraAbsorbHP) {
				atk.Attacker.IncreaseHP(atk.Damage)
			}
			if atk.HasExtra(domain.ExtraDamageToSelf) {
				atk.Attacker.TakeDamage(atk.Damage)
			}
			atk.Defender.TakeDamage(atk.Damage)
		}
	}
	return chain
}

// PlayerBuyResponse завершает BUY: атакующий соглашается или отказывается купить.
func (c *Combat) PlayerBuyResponse(p *domain.Player, buy bool) {
	atk := c.current
	c.invariant(atk != nil && atk.Kind() == domain.AttackBuy && atk.DecidedItem != nil, "buy without offer", logrus.Fields{"player": p.ID})
	c.invariant(p == atk.Attacker, "buy by wrong player", logrus.Fields{"player": p.ID})
	item := atk.DecidedItem
	c.invariant(atk.Defender.HasItem(item.ID), "offered item is gone", logrus.Fields{"item": item.ID})

	bought := buy && atk.Attacker.Yen >= item.Price
	if bought {
		atk.Defender.DiscardItem(item.ID)
		atk.Defender.IncreaseYen(item.Price)
		c.giveItem(atk.Attacker, item)
		atk.Attacker.DecreaseYen(item.Price)
	}
	c.arena.Emit(domain.Event{Type: domain.EventBuy, Payload: domain.BuyRecord{Bought: bought, Item: item.ID}})
	c.phase = PhaseResolved
}

// PlayerDyingAttack спасает игрока на нуле HP: REVIVE лечит,
// иначе игрок умирает и бьет предсмертной атакой.
func (c *Combat) PlayerDyingAttack(p *domain.Player, item *domain.Item) {
	c.arena.Emit(domain.Event{Type: domain.EventDying, Payload: domain.DyingRecord{Player: p.ID, Item: item.ID}})

	if item.AttackExtra == domain.ExtraRevive {
		p.DiscardItem(item.ID)
		p.IncreaseHP(item.Value)
		c.log.WithField("player", p.ID).Info("Player revived")
		return
	}

	c.arena.Emit(domain.Event{Type: domain.EventDie, Payload: domain.PlayerRecord{Player: p.ID}})
	atk := domain.NewAttack(p, p, domain.PiecesOf(item))
	atk.DecidedValue = domain.IntPtr(domain.DyingAttackHP)
	c.QueueAttack(atk, true)
	c.log.WithField("player", p.ID).Info("Dying attack queued")
}
