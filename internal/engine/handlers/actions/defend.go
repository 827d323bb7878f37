package actions

import (
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/internal/systems"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

func HandleDefend(ctx handlers.Context, p api.DefendPayload) (handlers.Result, error) {
	if err := expect(ctx, domain.ActionDefend); err != nil {
		return handlers.Result{}, err
	}

	pieces, err := ResolvePieces(ctx.Actor, ctx.Table.Catalog(), p.Pieces)
	if err != nil {
		return handlers.Result{}, err
	}
	if err := systems.ValidateDefense(ctx.Actor, pieces, ctx.Table.CurrentAttack()); err != nil {
		return handlers.Result{}, fmt.Errorf("defense rejected: %w", err)
	}

	if err := ctx.Table.SubmitDefense(ctx.Actor, pieces); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s defends with %d piece(s)", ctx.Actor.Name, len(pieces)),
		MsgType: "COMBAT",
	}, nil
}

func HandleBuy(ctx handlers.Context, p api.BuyPayload) (handlers.Result, error) {
	if err := expect(ctx, domain.ActionBuy); err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Table.SubmitBuy(ctx.Actor, p.Buy); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}
