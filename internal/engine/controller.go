package engine

import (
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
)

// AttackCommand - решение атакующего: цепочка, цель и распределение для EXCHANGE.
type AttackCommand struct {
	Pieces   []domain.CommandPiece
	Target   *domain.Player
	Exchange *domain.Exchange
}

// BotView - то, что бот видит в комнате.
type BotView interface {
	Players() []*domain.Player
	// Current - атака, на которую сейчас отвечают. nil вне защиты.
	Current() *domain.AttackData
	Catalog() *catalog.Catalog
	Rand() *rand.Rand
}

// BotController принимает решения за игрока без человека.
type BotController interface {
	OnAttackTurn() AttackCommand
	OnDefenseTurn() []domain.CommandPiece
	BuyResponse(item *domain.Item) bool
	// NotifyAttack сообщает о чужой защите: бот запоминает, что видел.
	NotifyAttack(atk *domain.AttackData, defense []domain.CommandPiece, redirected bool)
	// NotifyMagicDiscard - у игрока отняли привязанную магию.
	NotifyMagicDiscard(p *domain.Player, item *domain.Item)
}

// BotFactory создает контроллер для игрока. Подставляется из cmd.
type BotFactory func(p *domain.Player, view BotView) BotController
