package agent

import (
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/logger"
	"github.com/Igoorx/godfield-flash/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Priority - корзина оценки хода. Бот выбирает случайно внутри самой высокой непустой.
type Priority uint8

const (
	PriorityDiscard Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical

	priorityCount = int(PriorityCritical) + 1
)

var priorityNames = [...]string{"DISCARD", "LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return "UNKNOWN"
}

// enemyStats - то, что бот запомнил о противнике по чужим боям.
type enemyStats struct {
	lastHP      int
	damageCombo int
	magics      map[int]bool
}

// possiblyDefenceless: противник несколько раз подряд принял урон без защиты.
func (s *enemyStats) possiblyDefenceless() bool {
	return s.damageCombo > 1
}

// Bot - контроллер игрока без человека.
// Вызывается только из горутины комнаты, поэтому без блокировок.
type Bot struct {
	me    *domain.Player
	view  engine.BotView
	stats map[string]*enemyStats
	log   *logrus.Entry
}

// NewBot подходит как engine.BotFactory. Конструктор не трогает генератор комнаты:
// иначе реплей разошелся бы с партией.
func NewBot(p *domain.Player, view engine.BotView) engine.BotController {
	return &Bot{
		me:    p,
		view:  view,
		stats: make(map[string]*enemyStats),
		log:   logger.Log.WithFields(logrus.Fields{"component": "bot", "player": p.ID}),
	}
}

func (b *Bot) statsOf(p *domain.Player) *enemyStats {
	s, ok := b.stats[p.ID]
	if !ok {
		s = &enemyStats{lastHP: p.HP, magics: make(map[int]bool)}
		b.stats[p.ID] = s
	}
	return s
}

// OnAttackTurn выбирает цепочку атаки. Результат всегда проходит systems.ValidateAttack.
func (b *Bot) OnAttackTurn() engine.AttackCommand {
	b.refreshStats()

	plan := b.planAttack()
	// Атака из запаса идет раньше бесполезных ходов, сброс - после всех ходов.
	steps := []func() (engine.AttackCommand, bool){
		plan.best,
		plan.lastResort,
		plan.uselessPlay,
		plan.specialLastResort,
		plan.forcedDiscard,
		plan.doNothing,
		plan.anyWeapon,
	}
	for _, step := range steps {
		cmd, ok := step()
		if !ok {
			continue
		}
		if err := systems.ValidateAttack(b.me, cmd.Pieces, cmd.Target, cmd.Exchange); err != nil {
			b.log.WithError(err).Warn("Bot produced illegal attack, trying fallback")
			continue
		}
		b.log.WithFields(logrus.Fields{
			"first":  cmd.Pieces[0].Item.Name,
			"pieces": len(cmd.Pieces),
			"target": cmd.Target.ID,
		}).Debug("Bot attacks")
		return cmd
	}

	// Сюда не попадаем: без оружия DO_NOTHING всегда законен.
	b.log.Error("Bot found no legal attack")
	return engine.AttackCommand{Pieces: domain.PiecesOf(b.view.Catalog().MustGet(domain.ItemDoNothing)), Target: b.me}
}

// refreshStats сверяет HP противников с прошлым ходом: лечение обнуляет серию.
func (b *Bot) refreshStats() {
	for _, p := range systems.AliveEnemies(b.view.Players(), b.me) {
		s := b.statsOf(p)
		if p.HP > s.lastHP {
			s.damageCombo = 0
		}
		s.lastHP = p.HP
	}
}

// BuyResponse: цену сервер уже проверил, бот покупает всегда.
func (b *Bot) BuyResponse(item *domain.Item) bool {
	b.log.WithField("item", item.Name).Debug("Bot buys")
	return true
}

// NotifyAttack запоминает, как противник защищался в чужом бою.
func (b *Bot) NotifyAttack(atk *domain.AttackData, defense []domain.CommandPiece, redirected bool) {
	if atk.Attacker != nil && atk.Attacker.IsEnemy(b.me) {
		for _, piece := range atk.Pieces {
			if piece.IsAbility {
				b.statsOf(atk.Attacker).magics[piece.Item.ID] = true
			}
		}
	}
	if atk.Defender == nil || !atk.Defender.IsEnemy(b.me) {
		return
	}
	s := b.statsOf(atk.Defender)
	switch {
	case redirected || len(defense) > 0:
		s.damageCombo = 0
	case atk.Damage > 0:
		s.damageCombo++
	}
	s.lastHP = atk.Defender.HP
}

// NotifyMagicDiscard: противник потерял привязанную магию.
func (b *Bot) NotifyMagicDiscard(p *domain.Player, item *domain.Item) {
	if p == b.me {
		return
	}
	delete(b.statsOf(p).magics, item.ID)
}

// candidate - одна оцененная пара (цепочка, цель).
type candidate struct {
	cmd      engine.AttackCommand
	priority Priority
}

// buckets раскладывает кандидатов по корзинам.
type buckets [priorityCount][]candidate

func (bk *buckets) add(pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange, pr Priority) {
	bk[pr] = append(bk[pr], candidate{
		cmd:      engine.AttackCommand{Pieces: pieces, Target: target, Exchange: ex},
		priority: pr,
	})
}

// top - самая высокая непустая корзина или -1.
func (bk *buckets) top() int {
	for i := priorityCount - 1; i >= 0; i-- {
		if len(bk[i]) > 0 {
			return i
		}
	}
	return -1
}

func (bk *buckets) pick(b *Bot) (engine.AttackCommand, bool) {
	return bk.pickFrom(b, 0)
}

// pickAbove выбирает из самой высокой корзины, только если она выше floor.
func (bk *buckets) pickAbove(b *Bot, floor Priority) (engine.AttackCommand, bool) {
	return bk.pickFrom(b, int(floor)+1)
}

func (bk *buckets) pickFrom(b *Bot, lowest int) (engine.AttackCommand, bool) {
	i := bk.top()
	if i < lowest {
		return engine.AttackCommand{}, false
	}
	c, ok := utils.Pick(b.view.Rand(), bk[i])
	if ok {
		b.log.WithFields(logrus.Fields{
			"bucket":  c.priority.String(),
			"options": len(bk[i]),
		}).Debug("Bot picked candidate")
	}
	return c.cmd, ok
}
