package systems

import (
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DiseaseTick - итог хода болезни для атакующего.
type DiseaseTick struct {
	Worse   bool // болезнь ухудшилась
	Applied bool // эффект сработал (урон или лечение)
}

// Notify - нужно ли сообщать о тике наблюдателям.
func (t DiseaseTick) Notify(p *domain.Player) bool {
	return (t.Worse && p.HP == 0) || t.Applied
}

// ApplyDiseaseTick бросает ухудшение (шанс растет на 1% за каждый спокойный ход),
// затем применяет эффект болезни.
func ApplyDiseaseTick(rng *rand.Rand, p *domain.Player) DiseaseTick {
	var t DiseaseTick
	if p.Disease == domain.HarmNone || !p.IsAlive() {
		return t
	}

	if rng.Intn(100) < p.WorseChance {
		t.Worse = true
		p.AddHarm(p.Disease)
	} else {
		p.WorseChance++
	}
	t.Applied = p.DiseaseEffect()

	logger.Log.WithFields(logrus.Fields{
		"component": "disease",
		"player":    p.ID,
		"disease":   p.Disease.String(),
		"worse":     t.Worse,
		"hp":        p.HP,
	}).Debug("Disease tick")
	return t
}

// DeathKind - что происходит с игроком на нуле HP.
type DeathKind uint8

const (
	DeathNone DeathKind = iota
	DeathRevive
	DeathDyingAttack
	DeathFinal
)

// ResolveDeath выбирает исход для игрока с нулевым HP.
// Воскрешение и предсмертная атака возможны, только пока живых хотя бы двое.
func ResolveDeath(p *domain.Player, aliveCount int) DeathKind {
	if p.HP > 0 || p.Dead {
		return DeathNone
	}
	if aliveCount >= 2 && p.HasItem(domain.ItemRevive) {
		return DeathRevive
	}
	if aliveCount >= 2 && p.HasItem(domain.ItemDyingAttack) {
		return DeathDyingAttack
	}
	return DeathFinal
}

// MarkLost помечает проигравших после окончательной смерти p.
// SINGLE проигрывает сразу, команда - когда в ней не осталось живых.
func MarkLost(players []*domain.Player, p *domain.Player) {
	if p.Team == domain.TeamSingle {
		p.Lost = true
		return
	}
	for _, t := range AliveTeams(players) {
		if t == p.Team {
			return
		}
	}
	for _, other := range players {
		if other.Team == p.Team {
			other.Lost = true
		}
	}
}
