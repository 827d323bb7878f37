package systems

import (
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/utils"
)

// Relation - к кому по смыслу направлена цепочка.
type Relation uint8

const (
	RelationSelf Relation = iota
	RelationEnemy
	RelationAlly
)

// TargetRelation определяет сторону цели по первому куску цепочки,
// когда цель выбирает сервер (атаки ассистентов).
func TargetRelation(first *domain.Item) Relation {
	switch first.AttackKind {
	case domain.AttackAtk:
		if first.HitRate == 0 {
			return RelationEnemy
		}
	case domain.AttackSell, domain.AttackBuy, domain.AttackAbsorbYen, domain.AttackAddHarm,
		domain.AttackRemoveItems, domain.AttackRemoveAbilities:
		return RelationEnemy
	case domain.AttackIncreaseMP:
		if !first.IsAtkHarm() {
			return RelationAlly
		}
	case domain.AttackIncreaseHP, domain.AttackIncreaseYen, domain.AttackRemoveLowerHarms,
		domain.AttackRemoveAllHarms, domain.AttackAddItem, domain.AttackSetAssistant:
		return RelationAlly
	}
	return RelationSelf
}

// --- ВЫБОРКИ ПО СОСТАВУ ---

func AliveCount(players []*domain.Player) int {
	n := 0
	for _, p := range players {
		if p.IsAlive() {
			n++
		}
	}
	return n
}

// AliveTeams - команды, в которых остался хоть кто-то живой, в порядке появления.
func AliveTeams(players []*domain.Player) []domain.Team {
	var teams []domain.Team
	seen := make(map[domain.Team]bool)
	for _, p := range players {
		if p.IsAlive() && !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	return teams
}

func AreEnemiesAlive(players []*domain.Player, me *domain.Player) bool {
	for _, p := range players {
		if p.IsAlive() && me.IsEnemy(p) {
			return true
		}
	}
	return false
}

// IsGameOver: в одиночной игре остался один живой, в командной - одна команда.
func IsGameOver(players []*domain.Player, teamPlay bool) bool {
	if teamPlay {
		return len(AliveTeams(players)) <= 1
	}
	return AliveCount(players) <= 1
}

func AliveEnemies(players []*domain.Player, me *domain.Player) []*domain.Player {
	var out []*domain.Player
	for _, p := range players {
		if p.IsAlive() && me.IsEnemy(p) {
			out = append(out, p)
		}
	}
	return out
}

// AliveAllies - живые союзники, включая самого игрока, если exceptMe=false.
func AliveAllies(players []*domain.Player, me *domain.Player, exceptMe bool) []*domain.Player {
	var out []*domain.Player
	for _, p := range players {
		if !p.IsAlive() || me.IsEnemy(p) {
			continue
		}
		if exceptMe && p == me {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RandomAlive - случайный живой игрок, кроме except (может быть nil).
func RandomAlive(rng *rand.Rand, players []*domain.Player, except *domain.Player) *domain.Player {
	var pool []*domain.Player
	for _, p := range players {
		if p.IsAlive() && p != except {
			pool = append(pool, p)
		}
	}
	p, _ := utils.Pick(rng, pool)
	return p
}

func RandomAliveEnemy(rng *rand.Rand, players []*domain.Player, me *domain.Player) *domain.Player {
	p, _ := utils.Pick(rng, AliveEnemies(players, me))
	return p
}

func RandomAliveAlly(rng *rand.Rand, players []*domain.Player, me *domain.Player, exceptMe bool) *domain.Player {
	p, _ := utils.Pick(rng, AliveAllies(players, me, exceptMe))
	return p
}

// AssistantTarget выбирает цель для атаки ассистента owner.
// Бафы уходят союзнику, а владельцу только если других живых союзников нет.
func AssistantTarget(rng *rand.Rand, players []*domain.Player, owner *domain.Player, first *domain.Item) *domain.Player {
	switch TargetRelation(first) {
	case RelationEnemy:
		if t := RandomAliveEnemy(rng, players, owner); t != nil {
			return t
		}
	case RelationAlly:
		if t := RandomAliveAlly(rng, players, owner, true); t != nil {
			return t
		}
	}
	return owner
}

// FogRetarget подменяет цель игрока под FOG случайной целью той же стороны.
// Если подходящих нет, цель остается прежней.
func FogRetarget(rng *rand.Rand, players []*domain.Player, attacker, target *domain.Player) *domain.Player {
	var t *domain.Player
	if attacker.IsEnemy(target) {
		t = RandomAliveEnemy(rng, players, attacker)
	} else {
		t = RandomAliveAlly(rng, players, attacker, true)
	}
	if t == nil {
		return target
	}
	return t
}
