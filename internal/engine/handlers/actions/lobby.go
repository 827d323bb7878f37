package actions

import (
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

func HandleReady(ctx handlers.Context, p api.ReadyPayload) (handlers.Result, error) {
	if err := ctx.Table.SetReady(ctx.Actor, p.Ready); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}

func HandleAddBot(ctx handlers.Context, p api.AddBotPayload) (handlers.Result, error) {
	team := domain.Team(p.Team)
	if team == "" {
		team = domain.TeamSingle
	}
	if err := ctx.Table.AddBots(p.Count, team); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s added %d bot(s)", ctx.Actor.Name, p.Count),
		MsgType: "INFO",
	}, nil
}

func HandleLeave(ctx handlers.Context) (handlers.Result, error) {
	ctx.Table.Leave(ctx.Actor)
	return handlers.Result{Msg: ctx.Actor.Name + " left", MsgType: "INFO"}, nil
}

// HandleState отвечает отправителю полным снимком комнаты.
func HandleState(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Result{Reply: ctx.Table.Snapshot(ctx.Actor)}, nil
}
