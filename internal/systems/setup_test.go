package systems

import (
	"math/rand"
	"os"
	"testing"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}

var (
	sword  = &domain.Item{ID: 3, Name: "Sword", Type: domain.ItemTypeWeapon, AttackKind: domain.AttackAtk, Value: 5}
	blade  = &domain.Item{ID: 4, Name: "Blade", Type: domain.ItemTypeWeapon, AttackKind: domain.AttackAtk, Value: 7}
	shield = &domain.Item{ID: 50, Name: "Shield", Type: domain.ItemTypeProtector, DefenseKind: domain.DefenseDfs, Value: 3}
	herb   = &domain.Item{ID: 90, Name: "Herb", Type: domain.ItemTypeSundry, AttackKind: domain.AttackIncreaseHP, Value: 10}
)

// fixedIllusions подменяет любой предмет одним и тем же.
type fixedIllusions struct{ sub *domain.Item }

func (f fixedIllusions) IllusionSubstituteFor(_ *rand.Rand, item *domain.Item) *domain.Item {
	if item.ID == f.sub.ID {
		return nil
	}
	return f.sub
}

func players(teams ...domain.Team) []*domain.Player {
	out := make([]*domain.Player, 0, len(teams))
	for i, t := range teams {
		out = append(out, domain.NewPlayer(string(rune('a'+i)), string(rune('A'+i)), t))
	}
	return out
}
