package engine

import (
	"errors"
	"fmt"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
)

var (
	ErrReplayDiverged   = errors.New("replay diverged from recording")
	ErrReplayIncomplete = errors.New("replay ended before the game did")
)

// Simulate проигрывает записанную партию: то же зерно, тот же состав, те же команды.
// Таймауты и выходы снова решаются ботами, поэтому итог совпадает с живой партией.
func Simulate(rec *domain.ReplaySession, cfg Config, cat *catalog.Catalog, newBot BotFactory) (res MatchResult, err error) {
	if len(rec.Roster) < 2 {
		return res, fmt.Errorf("%w: roster has %d player(s)", ErrReplayDiverged, len(rec.Roster))
	}

	cfg.Training = true
	finished := false
	r := NewRoom(rec.RoomID, rec.Seed, cfg, cat, newBot, nil, func(m MatchResult) {
		res = m
		finished = true
	})
	r.log = r.log.WithField("replay", true)
	r.teamPlay = rec.Roster[0].Team != domain.TeamSingle
	for _, rp := range rec.Roster {
		p := domain.NewPlayer(rp.ID, rp.Name, rp.Team)
		r.players = append(r.players, p)
		if rp.IsBot {
			r.bots[p.ID] = newBot(p, r)
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			ie, ok := rec.(*InvariantError)
			if !ok {
				panic(rec)
			}
			err = ie
		}
	}()

	r.beginMatch(rec.Seed)
	r.nextInning()

	for _, act := range rec.Actions {
		if !r.playing {
			return res, fmt.Errorf("%w: action %d after game end", ErrReplayDiverged, act.Seq)
		}
		switch act.Action {
		case domain.ActionLeave:
			p := r.Player(act.PlayerID)
			if p == nil {
				return res, fmt.Errorf("%w: unknown player %s", ErrReplayDiverged, act.PlayerID)
			}
			r.Leave(p)
		case domain.ActionTimeout:
			p, _ := r.Waiting()
			if p == nil || p.ID != act.PlayerID {
				return res, fmt.Errorf("%w: timeout of %s at action %d", ErrReplayDiverged, act.PlayerID, act.Seq)
			}
			r.resumeWithBot(p, newBot(p, r))
		default:
			cmd := domain.InternalCommand{Action: act.Action, PlayerID: act.PlayerID, Payload: act.Payload}
			if _, err := r.apply(cmd); err != nil {
				return res, fmt.Errorf("%w: action %d: %v", ErrReplayDiverged, act.Seq, err)
			}
		}
	}

	if !finished {
		return res, ErrReplayIncomplete
	}
	return res, nil
}
