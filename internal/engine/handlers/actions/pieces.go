package actions

import (
	"errors"
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

var ErrUnknownPiece = errors.New("unknown piece")

// ResolvePieces превращает куски клиента в куски руки игрока.
// Виртуальные предметы (молитва, сброс) берутся из каталога,
// привязанная магия - по индексу способности, остальное - через FindPiece.
func ResolvePieces(p *domain.Player, cat *catalog.Catalog, in []api.PiecePayload) ([]domain.CommandPiece, error) {
	out := make([]domain.CommandPiece, 0, len(in))
	for _, raw := range in {
		if item := cat.Get(raw.Item); item != nil && systems.IsVirtual(item) {
			out = append(out, domain.NewPiece(item))
			continue
		}

		if raw.AbilityIndex != nil {
			idx := *raw.AbilityIndex
			if idx >= len(p.Magics) || p.Magics[idx].ID != raw.Item {
				return nil, fmt.Errorf("%w: ability %d at %d", ErrUnknownPiece, raw.Item, idx)
			}
			out = append(out, domain.NewAbilityPiece(p.Magics[idx], idx))
			continue
		}

		illusion := -1
		if raw.IllusionIndex != nil {
			illusion = *raw.IllusionIndex
		}
		piece, ok := p.FindPiece(raw.Item, illusion)
		if !ok {
			return nil, fmt.Errorf("%w: item %d", ErrUnknownPiece, raw.Item)
		}
		out = append(out, piece)
	}
	return out, nil
}
