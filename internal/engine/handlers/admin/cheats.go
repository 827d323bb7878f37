package admin

import (
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

// HandleForceDeal: { "item": 244 } - следующая раздача человеку начнется с этого предмета
func HandleForceDeal(ctx handlers.Context, p api.ForceDealPayload) (handlers.Result, error) {
	item := ctx.Table.Catalog().Get(p.Item)
	if item == nil {
		return handlers.Result{}, fmt.Errorf("unknown item %d", p.Item)
	}
	if err := ctx.Table.ForceDeal(item); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: fmt.Sprintf("Next deal forced: %s", item.Name), MsgType: "ADMIN"}, nil
}

// HandleForceInitialDeal: { "items": [2, 3, 50] } - стартовая рука людей
func HandleForceInitialDeal(ctx handlers.Context, p api.ForceInitialDealPayload) (handlers.Result, error) {
	items := make([]*domain.Item, 0, len(p.Items))
	for _, id := range p.Items {
		item := ctx.Table.Catalog().Get(id)
		if item == nil {
			return handlers.Result{}, fmt.Errorf("unknown item %d", id)
		}
		items = append(items, item)
	}
	if err := ctx.Table.ForceInitialDeal(items); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: fmt.Sprintf("Initial deal forced: %d item(s)", len(items)), MsgType: "ADMIN"}, nil
}

// HandleForceAssistant: { "type": "MOON" } - следующий призыв даст этого ассистента
func HandleForceAssistant(ctx handlers.Context, p api.ForceAssistantPayload) (handlers.Result, error) {
	planet, ok := domain.ParsePlanet(p.Type)
	if !ok {
		return handlers.Result{}, fmt.Errorf("unknown assistant %q", p.Type)
	}
	if err := ctx.Table.ForceAssistant(planet); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: "Next assistant forced: " + planet.String(), MsgType: "ADMIN"}, nil
}
