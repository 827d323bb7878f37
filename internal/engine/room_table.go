package engine

import (
	"fmt"
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Методы ниже реализуют Arena, BotView и handlers.Table.
// Вызываются только из горутины комнаты.

func (r *Room) Players() []*domain.Player { return r.players }
func (r *Room) Catalog() *catalog.Catalog { return r.cat }
func (r *Room) Rand() *rand.Rand          { return r.rng }

func (r *Room) Current() *domain.AttackData       { return r.combat.Current() }
func (r *Room) CurrentAttack() *domain.AttackData { return r.combat.Current() }

func (r *Room) Controller(p *domain.Player) BotController {
	if bot, ok := r.bots[p.ID]; ok {
		return bot
	}
	return nil
}

func (r *Room) Player(id string) *domain.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Waiting - чей ввод и какого рода ждет комната.
func (r *Room) Waiting() (*domain.Player, domain.ActionType) {
	if !r.playing {
		return nil, domain.ActionUnknown
	}
	switch r.combat.Phase() {
	case PhaseAwaitingAttacker:
		return r.combat.Waiting(), domain.ActionAttack
	case PhaseAwaitingDefender:
		return r.combat.Waiting(), domain.ActionDefend
	case PhaseAwaitingBuy:
		return r.combat.Waiting(), domain.ActionBuy
	}
	return nil, domain.ActionUnknown
}

func (r *Room) expect(p *domain.Player, action domain.ActionType) error {
	if !r.playing {
		return ErrNotPlaying
	}
	if waiting, want := r.Waiting(); waiting != p || want != action {
		return ErrNotYourTurn
	}
	return nil
}

// --- ХОДЫ ---

func (r *Room) SubmitAttack(p *domain.Player, pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange) error {
	if err := r.expect(p, domain.ActionAttack); err != nil {
		return err
	}
	r.combat.AttackerCommand(p, pieces, target, ex)
	r.nextInning()
	return nil
}

func (r *Room) SubmitDefense(p *domain.Player, pieces []domain.CommandPiece) error {
	if err := r.expect(p, domain.ActionDefend); err != nil {
		return err
	}
	if r.combat.DefenderCommand(p, pieces) {
		r.nextInning()
	} else {
		r.step++
	}
	return nil
}

func (r *Room) SubmitBuy(p *domain.Player, buy bool) error {
	if err := r.expect(p, domain.ActionBuy); err != nil {
		return err
	}
	r.combat.PlayerBuyResponse(p, buy)
	r.nextInning()
	return nil
}

// --- ЛОББИ ---

// SetReady: партия стартует, когда игроков не меньше двух и все готовы.
func (r *Room) SetReady(p *domain.Player, ready bool) error {
	if r.playing {
		return ErrAlreadyPlay
	}
	p.Ready = ready
	r.log.WithFields(logrus.Fields{"player": p.ID, "ready": ready}).Debug("Ready changed")
	r.emitState()

	if len(r.players) < 2 {
		return nil
	}
	for _, other := range r.players {
		if !other.Ready {
			return nil
		}
	}
	r.startGame()
	return nil
}

func (r *Room) AddBots(count int, team domain.Team) error {
	if r.playing {
		return ErrAlreadyPlay
	}
	if len(r.players)+count > r.cfg.MaxPlayers {
		return ErrRoomFull
	}
	if err := r.checkTeam(team); err != nil {
		return err
	}
	for range count {
		p := domain.NewPlayer(utils.GenerateID(), fmt.Sprintf("Bot %d", len(r.players)+1), team)
		p.IsBot = true
		p.Ready = true
		r.players = append(r.players, p)
		r.bots[p.ID] = r.newBot(p, r)
	}
	r.log.WithFields(logrus.Fields{"count": count, "team": string(team)}).Info("Bots added")
	r.emitState()
	return nil
}

// --- АДМИНКА ---

func (r *Room) ForceDeal(item *domain.Item) error {
	r.forceNextDeal = item
	return nil
}

func (r *Room) ForceInitialDeal(items []*domain.Item) error {
	if r.playing {
		return ErrAlreadyPlay
	}
	r.forceInitialDeal = items
	return nil
}

func (r *Room) ForceAssistant(planet domain.Planet) error {
	r.combat.ForceNextAssistant = planet
	return nil
}
