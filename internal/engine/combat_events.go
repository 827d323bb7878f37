package engine

import (
	"github.com/Igoorx/godfield-flash/internal/domain"
)

func pieceRecord(piece domain.CommandPiece) domain.PieceRecord {
	return domain.PieceRecord{Item: piece.Item.ID, AssistantType: piece.Item.Assistant}
}

// emitCommand рассылает разрешенную атаку. Запись строится на каждого
// человека отдельно: после EARTH каждый видит свою новую руку.
func (c *Combat) emitCommand(atk *domain.AttackData, missed bool) {
	for _, p := range c.arena.Players() {
		if c.arena.Controller(p) != nil {
			continue
		}
		c.arena.Emit(domain.Event{Type: domain.EventCommand, To: p.ID, Payload: c.commandRecord(atk, missed, p)})
	}
}

func (c *Combat) commandRecord(atk *domain.AttackData, missed bool, observer *domain.Player) domain.CommandRecord {
	rec := domain.CommandRecord{
		Pieces:        make([]domain.PieceRecord, 0, len(atk.Pieces)),
		Miss:          missed,
		DecidedValue:  atk.DecidedValue,
		Mystery:       atk.DecidedMystery,
		AssistantType: atk.AssistantType,
		Commander:     atk.Attacker.ID,
		DecidedHP:     atk.DecidedHP,
	}
	for _, piece := range atk.Pieces {
		pr := pieceRecord(piece)
		if piece.Item.AttackExtra == domain.ExtraMagical {
			pr.CostMP = atk.Damage / 2
		}
		rec.Pieces = append(rec.Pieces, pr)
	}
	if atk.Mortar != nil {
		rec.Mortar = atk.Mortar.ID
	}

	switch atk.DecidedMystery {
	case domain.PlanetEarth:
		rec.MysteryHand = make([]int, 0, len(observer.Hand))
		for _, piece := range observer.Hand {
			rec.MysteryHand = append(rec.MysteryHand, piece.ItemOrIllusion().ID)
		}
	case domain.PlanetMoon:
		for _, p := range c.arena.Players() {
			ar := domain.AssistantRecord{Player: p.ID}
			if p.Assistant != nil {
				ar.Type = p.Assistant.Type
			}
			rec.MysteryAssistants = append(rec.MysteryAssistants, ar)
		}
	}

	if atk.Kind() == domain.AttackExchange {
		rec.Exchange = atk.DecidedExchange
	}
	if !atk.IsAction {
		rec.Target = atk.Defender.ID
	}
	rec.DecidedAssistant = atk.DecidedAssistant
	if atk.Attacker == atk.Defender && atk.DecidedItem != nil {
		rec.ChainPiece = decidedPiece(atk)
	}
	return rec
}

// decidedPiece - предмет, выбранный сервером для кражи, покупки или забывания.
func decidedPiece(atk *domain.AttackData) *domain.PieceRecord {
	pr := &domain.PieceRecord{Item: atk.DecidedItem.ID}
	if atk.AbilityIndex >= 0 {
		pr.AbilityIndex = domain.IntPtr(atk.AbilityIndex)
	}
	return pr
}

// emitDefense рассылает ответ защищающегося всем.
func (c *Combat) emitDefense(atk *domain.AttackData, p *domain.Player, pieces []domain.CommandPiece, reflected, flicked, chain bool) {
	rec := domain.DefenseRecord{Defender: p.ID, DecidedValue: atk.DecidedValue}
	switch {
	case !reflected && atk.DecidedItem != nil:
		rec.ChainPiece = decidedPiece(atk)
	case !chain:
		for _, piece := range pieces {
			rec.Pieces = append(rec.Pieces, pieceRecord(piece))
		}
	}
	if reflected || flicked {
		rec.Target = atk.Defender.ID
	}
	c.arena.Emit(domain.Event{Type: domain.EventDefense, Payload: rec})
}
