package actions

import (
	"errors"
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

// ErrNotYourTurn - команда пришла не от того, чей сейчас ход.
var ErrNotYourTurn = errors.New("not your turn")

// expect проверяет, что комната ждет именно эту команду от актора.
func expect(ctx handlers.Context, action domain.ActionType) error {
	p, want := ctx.Table.Waiting()
	if p != ctx.Actor || want != action {
		return fmt.Errorf("%w: %s", ErrNotYourTurn, action)
	}
	return nil
}

func HandleAttack(ctx handlers.Context, p api.AttackPayload) (handlers.Result, error) {
	// 1. Чей ход
	if err := expect(ctx, domain.ActionAttack); err != nil {
		return handlers.Result{}, err
	}

	// 2. Поиск цели и кусков
	target := ctx.Table.Player(p.Target)
	if target == nil {
		return handlers.Result{}, fmt.Errorf("%w: %s", systems.ErrBadTarget, p.Target)
	}
	pieces, err := ResolvePieces(ctx.Actor, ctx.Table.Catalog(), p.Pieces)
	if err != nil {
		return handlers.Result{}, err
	}
	var ex *domain.Exchange
	if p.Exchange != nil {
		ex = &domain.Exchange{HP: p.Exchange.HP, MP: p.Exchange.MP, Yen: p.Exchange.Yen}
	}

	// 3. Правила цепочки
	if err := systems.ValidateAttack(ctx.Actor, pieces, target, ex); err != nil {
		return handlers.Result{}, fmt.Errorf("attack rejected: %w", err)
	}

	// 4. Вызов движка
	if err := ctx.Table.SubmitAttack(ctx.Actor, pieces, target, ex); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s attacks %s with %d piece(s)", ctx.Actor.Name, target.Name, len(pieces)),
		MsgType: "COMBAT",
	}, nil
}
