package engine

import (
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/metrics"
	"github.com/Igoorx/godfield-flash/internal/systems"

	"github.com/sirupsen/logrus"
)

// moonAttempts ограничивает перебор при поиске магии для ассистента MOON.
const moonAttempts = 64

func (r *Room) checkEndGame() bool {
	return systems.IsGameOver(r.players, r.teamPlay)
}

// nextInning крутит иннинги, пока ходят боты. Останавливается на вводе человека
// или на конце партии.
func (r *Room) nextInning() {
	r.step++
	for {
		if !r.endInning() {
			return
		}
		if r.checkEndGame() {
			r.endGame()
			return
		}
		r.startInning()

		attacker := r.combat.Attacker()
		bot, ok := r.bots[attacker.ID]
		if !ok {
			return
		}
		cmd := bot.OnAttackTurn()
		r.combat.AttackerCommand(attacker, cmd.Pieces, cmd.Target, cmd.Exchange)
	}
}

// endInning разрешает очередь до конца. false - нужен ввод человека.
func (r *Room) endInning() bool {
	for !r.beforeEndInning() {
		if !r.combat.DoAttack() {
			return false
		}
	}
	r.doPlayersDeals()
	r.Emit(domain.Event{Type: domain.EventEndInning})
	return true
}

// beforeEndInning: смерти, потом (один раз за иннинг) болезнь атакующего,
// потом ассистенты. true - иннинг можно закрывать.
func (r *Room) beforeEndInning() bool {
	for {
		r.handleDeaths()
		if r.combat.Pending() {
			return false
		}

		if !r.handledDisease {
			r.handledDisease = true
			attacker := r.combat.Attacker()
			tick := systems.ApplyDiseaseTick(r.rng, attacker)
			if tick.Notify(attacker) {
				r.Emit(domain.Event{Type: domain.EventDisease, Payload: domain.DiseaseRecord{
					Player:  attacker.ID,
					Disease: attacker.Disease,
					Worse:   tick.Worse,
				}})
				if attacker.HP <= 0 {
					continue
				}
			}
		}

		if !r.handledAssistant && !r.checkEndGame() {
			r.handledAssistant = true
			r.triggerAssistants()
			return !r.combat.Pending()
		}
		return true
	}
}

// handleDeaths проводит игроков с нулевым HP через воскрешение,
// предсмертную атаку или окончательную смерть.
func (r *Room) handleDeaths() {
	for _, p := range r.players {
		switch systems.ResolveDeath(p, systems.AliveCount(r.players)) {
		case systems.DeathRevive:
			metrics.Deaths.WithLabelValues("revive").Inc()
			r.combat.PlayerDyingAttack(p, r.cat.MustGet(domain.ItemRevive))
		case systems.DeathDyingAttack:
			p.Dead = true
			metrics.Deaths.WithLabelValues("dying_attack").Inc()
			r.combat.PlayerDyingAttack(p, r.cat.MustGet(domain.ItemDyingAttack))
		case systems.DeathFinal:
			p.Dead = true
			systems.MarkLost(r.players, p)
			metrics.Deaths.WithLabelValues("final").Inc()
			r.log.WithFields(logrus.Fields{
				"player": p.ID,
				"lost":   p.Lost,
			}).Info("Player died")
			r.Emit(domain.Event{Type: domain.EventDie, Payload: domain.PlayerRecord{Player: p.ID}})
		}
	}
}

// triggerAssistants: ассистенты врагов атакующего срабатывают с шансом из конфига.
func (r *Room) triggerAssistants() {
	attacker := r.combat.Attacker()
	for _, p := range r.players {
		if !p.IsAlive() || p.Assistant == nil || !p.IsEnemy(attacker) {
			continue
		}
		if r.rng.Intn(100) >= r.cfg.AssistantChance {
			continue
		}
		planet := p.Assistant.Type
		pieces := r.assistantPieces(planet)
		if len(pieces) == 0 {
			r.log.WithField("planet", planet.String()).Warn("Assistant pool is empty")
			continue
		}

		target := systems.AssistantTarget(r.rng, r.players, p, pieces[0].Item)
		atk := domain.NewAttack(p, target, pieces)
		atk.AssistantType = planet
		metrics.AssistantTriggers.WithLabelValues(planet.String()).Inc()
		r.log.WithFields(logrus.Fields{
			"owner":  p.ID,
			"planet": planet.String(),
			"item":   pieces[0].Item.ID,
		}).Debug("Assistant attack")
		r.combat.QueueAttack(atk, true)
	}
}

// assistantPieces собирает цепочку ассистента. EARTH дарит или применяет
// случайный предмет, MOON колдует случайную магию.
func (r *Room) assistantPieces(planet domain.Planet) []domain.CommandPiece {
	base := r.cat.ProbRandomAssistantItem(r.rng, planet)
	if base == nil {
		return nil
	}

	switch planet {
	case domain.PlanetEarth:
		extra := r.cat.ProbRandomItem(r.rng)
		if extra == nil {
			break
		}
		if extra.Type != domain.ItemTypeMagic && extra.AttackKind != domain.AttackExchange {
			switch extra.AttackKind {
			case domain.AttackSell:
				if ware := r.cat.ProbRandomItem(r.rng); ware != nil {
					return domain.PiecesOf(extra, ware)
				}
			case domain.AttackAtk, domain.AttackBuy:
				return domain.PiecesOf(extra)
			}
		}
		return domain.PiecesOf(base, extra)
	case domain.PlanetMoon:
		for range moonAttempts {
			magic := r.cat.ProbRandomItem(r.rng)
			if magic == nil || !moonUsable(magic) {
				continue
			}
			if magic.AttackExtra == domain.ExtraWideAtk || magic.AttackExtra == domain.ExtraDoubleAtk {
				return domain.PiecesOf(base, magic)
			}
			return domain.PiecesOf(magic)
		}
	}
	return domain.PiecesOf(base)
}

// moonUsable - магия, которую MOON может сыграть сам.
func moonUsable(it *domain.Item) bool {
	if it.Type != domain.ItemTypeMagic {
		return false
	}
	if it.DefenseExtra == domain.DefExtraFlickMagic || it.DefenseExtra == domain.DefExtraBlockWeapon {
		return false
	}
	if it.AttackKind == domain.AttackSetAssistant {
		return false
	}
	return it.AttackKind != domain.AttackNone ||
		it.AttackExtra == domain.ExtraWideAtk || it.AttackExtra == domain.ExtraDoubleAtk
}

// doPlayersDeals раздает накопленные предметы. Людям сначала идут
// подставленные админом раздачи, DEAL видит только получатель.
func (r *Room) doPlayersDeals() {
	for _, p := range r.players {
		if p.Deal <= 0 || !p.IsAlive() {
			continue
		}
		human := r.isHuman(p)

		var items []*domain.Item
		if human {
			if r.inning == -1 && r.forceInitialDeal != nil {
				for _, it := range r.forceInitialDeal[:min(len(r.forceInitialDeal), p.Deal)] {
					items = append(items, it)
					p.Deal--
				}
			}
			if r.forceNextDeal != nil && p.Deal > 0 {
				items = append(items, r.forceNextDeal)
				p.Deal--
				r.forceNextDeal = nil
			}
		}
		items = append(items, r.cat.ProbRandomItems(r.rng, p.Deal)...)
		p.Deal = 0

		for _, it := range items {
			piece, ok := systems.DealItem(r.rng, r.cat, p, it)
			if !ok || !human {
				continue
			}
			rec := domain.DealRecord{Item: piece.ItemOrIllusion().ID}
			if piece.Illusion != nil {
				rec.IllusionIndex = domain.IntPtr(piece.IllusionIndex)
			}
			r.Emit(domain.Event{Type: domain.EventDeal, To: p.ID, Payload: rec})
		}
	}
}

// startInning выбирает следующего атакующего. Пустой круг перемешивается заново.
func (r *Room) startInning() {
	next := r.order.Next()
	if next == nil {
		r.order.Reset(r.rng, r.players)
		for _, p := range r.players {
			p.WaitingAttackTurn = true
		}
		r.Emit(domain.Event{Type: domain.EventResetAttackOrder})
		next = r.order.Next()
	}
	r.combat.invariant(next != nil, "no attacker left", logrus.Fields{"inning": r.inning})

	r.combat.NewInning(next)
	next.WaitingAttackTurn = false
	r.inning++
	r.handledDisease = false
	r.handledAssistant = false
	metrics.Innings.Inc()

	r.log.WithFields(logrus.Fields{
		"inning":   r.inning,
		"attacker": next.ID,
	}).Info("Inning started")
	r.Emit(domain.Event{Type: domain.EventStartInning, Payload: domain.InningRecord{Attacker: next.ID, Inning: r.inning}})
}

// resumeWithBot: бот решает за игрока, если бой ждет именно его.
func (r *Room) resumeWithBot(p *domain.Player, bot BotController) {
	waiting, action := r.Waiting()
	if waiting != p {
		return
	}
	switch action {
	case domain.ActionAttack:
		cmd := bot.OnAttackTurn()
		r.combat.AttackerCommand(p, cmd.Pieces, cmd.Target, cmd.Exchange)
	case domain.ActionDefend:
		if !r.combat.DefenderCommand(p, bot.OnDefenseTurn()) {
			r.step++
			return
		}
	case domain.ActionBuy:
		r.combat.PlayerBuyResponse(p, bot.BuyResponse(r.combat.Current().DecidedItem))
	default:
		return
	}
	r.nextInning()
}
