package engine

import (
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

// Snapshot создает персональный снимок комнаты для наблюдателя.
// Рука и магии видны только их владельцу.
func (r *Room) Snapshot(viewer *domain.Player) api.StateView {
	view := api.StateView{
		RoomID:  r.ID,
		Phase:   r.phaseName(),
		Inning:  r.inning + 1,
		Players: make([]api.PlayerView, 0, len(r.players)),
	}
	if r.playing {
		if a := r.combat.Attacker(); a != nil {
			view.Attacker = a.ID
		}
		if r.combat.Phase() == PhaseAwaitingDefender {
			view.Defender = r.combat.Current().Defender.ID
		}
	}

	for _, p := range r.players {
		view.Players = append(view.Players, r.toPlayerView(p))
	}

	if viewer != nil {
		view.MyID = viewer.ID
		for _, piece := range viewer.Hand {
			hv := api.HandPieceView{Item: piece.ItemOrIllusion().ID}
			if piece.Illusion != nil {
				hv.IllusionIndex = domain.IntPtr(piece.IllusionIndex)
			}
			view.MyHand = append(view.MyHand, hv)
		}
		for _, m := range viewer.Magics {
			view.MyMagics = append(view.MyMagics, m.ID)
		}
	}

	// Копия логов
	view.Logs = make([]api.LogEntry, len(r.Logs))
	copy(view.Logs, r.Logs)
	return view
}

func (r *Room) phaseName() string {
	switch {
	case r.aborted:
		return "ABORTED"
	case r.playing:
		return r.combat.Phase().String()
	case r.ended:
		return "ENDED"
	}
	return "LOBBY"
}

func (r *Room) toPlayerView(p *domain.Player) api.PlayerView {
	pv := api.PlayerView{
		ID:       p.ID,
		Name:     p.Name,
		Team:     string(p.Team),
		HP:       p.HP,
		MP:       p.MP,
		Yen:      p.Yen,
		HandSize: len(p.Hand),
		Ready:    p.Ready,
		Dead:     p.Dead,
		Lost:     p.Lost,
		IsBot:    !r.isHuman(p),
	}
	if p.Disease != domain.HarmNone {
		pv.Disease = p.Disease.String()
	}
	for _, h := range p.Harms {
		pv.Harms = append(pv.Harms, h.String())
	}
	if p.Assistant != nil {
		pv.Assistant = p.Assistant.Type.String()
		pv.ShieldHP = p.Assistant.HP
	}
	return pv
}

// RoomView - строка списка комнат.
func (r *Room) RoomView() api.RoomView {
	return api.RoomView{
		ID:      r.ID,
		Players: len(r.players),
		Playing: r.playing,
		Ended:   r.ended,
	}
}

// DebugView - внутренности комнаты для отладочного эндпоинта.
type DebugView struct {
	State       api.StateView    `json:"state"`
	Order       []map[string]any `json:"attackOrder"`
	Queue       []map[string]any `json:"attackQueue"`
	ReplayMoves int              `json:"replayMoves"`
	Seed        int64            `json:"seed"`
}

func (r *Room) Debug() DebugView {
	dv := DebugView{
		State: r.Snapshot(nil),
		Order: r.order.DebugDump(),
		Queue: make([]map[string]any, 0),
	}
	for i := range r.combat.Queue() {
		dv.Queue = append(dv.Queue, map[string]any(attackFields(&r.combat.Queue()[i])))
	}
	if r.replay != nil {
		dv.ReplayMoves = len(r.replay.Actions)
		dv.Seed = r.replay.Seed
	}
	return dv
}
