package engine

import (
	"encoding/json"
	"testing"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSink запоминает все ответы по получателям.
type recordSink struct {
	msgs map[string][]api.ServerResponse
}

func (s *recordSink) SendTo(playerID string, msg api.ServerResponse) {
	s.msgs[playerID] = append(s.msgs[playerID], msg)
}

func (s *recordSink) last(playerID string) api.ServerResponse {
	msgs := s.msgs[playerID]
	return msgs[len(msgs)-1]
}

// swordBot бьет бронзовым мечом первого живого врага, иначе пропускает ход.
func swordBot(cat *catalog.Catalog) BotFactory {
	return func(p *domain.Player, view BotView) BotController {
		return &scriptedBot{me: p, attack: func(me *domain.Player) AttackCommand {
			if me.HasItem(3) {
				for _, other := range view.Players() {
					if other.IsAlive() && other.IsEnemy(me) {
						return AttackCommand{Pieces: domain.PiecesOf(cat.MustGet(3)), Target: other}
					}
				}
			}
			return AttackCommand{Pieces: domain.PiecesOf(cat.MustGet(domain.ItemDoNothing)), Target: me}
		}}
	}
}

func newTestRoom(t *testing.T, cfg Config) (*Room, *recordSink) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	sink := &recordSink{msgs: make(map[string][]api.ServerResponse)}
	cfg.Training = true
	return NewRoom("room-1", 42, cfg, cat, swordBot(cat), sink, nil), sink
}

func mustJoin(t *testing.T, r *Room, name string, team domain.Team) *domain.Player {
	t.Helper()
	p, err := r.addPlayer(JoinRequest{Name: name, Team: team})
	require.NoError(t, err)
	return p
}

// startDuel сажает двух людей с мечом и щитом в руке и запускает партию.
func startDuel(t *testing.T) (*Room, *recordSink, *domain.Player, *domain.Player) {
	t.Helper()
	r, sink := newTestRoom(t, NewConfig())
	a := mustJoin(t, r, "Ann", domain.TeamSingle)
	b := mustJoin(t, r, "Bob", domain.TeamSingle)
	require.NoError(t, r.ForceInitialDeal([]*domain.Item{r.cat.MustGet(3), r.cat.MustGet(51)}))

	require.NoError(t, r.SetReady(a, true))
	assert.False(t, r.playing)
	require.NoError(t, r.SetReady(b, true))
	require.True(t, r.playing)

	attacker, action := r.Waiting()
	require.Equal(t, domain.ActionAttack, action)
	defender := b
	if attacker == b {
		defender = a
	}
	return r, sink, attacker, defender
}

func TestRoom_Lobby(t *testing.T) {
	cfg := NewConfig()
	cfg.MaxPlayers = 2
	r, _ := newTestRoom(t, cfg)

	ann := mustJoin(t, r, "Ann", "")
	assert.Equal(t, domain.TeamSingle, ann.Team)

	_, err := r.addPlayer(JoinRequest{Name: "Tom", Team: domain.Team1})
	assert.ErrorIs(t, err, ErrTeamMismatch)

	mustJoin(t, r, "Bob", domain.TeamSingle)
	_, err = r.addPlayer(JoinRequest{Name: "Eve"})
	assert.ErrorIs(t, err, ErrRoomFull)

	again, err := r.addPlayer(JoinRequest{PlayerID: ann.ID})
	require.NoError(t, err)
	assert.Same(t, ann, again)

	_, err = r.addPlayer(JoinRequest{PlayerID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	r.Leave(ann)
	assert.Nil(t, r.Player(ann.ID))
	assert.Equal(t, 1, r.HumanCount())
	assert.Equal(t, "LOBBY", r.phaseName())
}

func TestRoom_AddBots(t *testing.T) {
	cfg := NewConfig()
	cfg.MaxPlayers = 3
	r, _ := newTestRoom(t, cfg)
	mustJoin(t, r, "Ann", domain.TeamSingle)

	require.NoError(t, r.AddBots(2, domain.TeamSingle))
	assert.Len(t, r.Players(), 3)
	assert.Equal(t, 1, r.HumanCount())
	for _, p := range r.Players()[1:] {
		assert.True(t, p.IsBot)
		assert.True(t, p.Ready)
		assert.NotNil(t, r.Controller(p))
	}
	assert.ErrorIs(t, r.AddBots(1, domain.TeamSingle), ErrRoomFull)
}

func TestRoom_MatchFlow(t *testing.T) {
	r, sink, attacker, defender := startDuel(t)

	for _, p := range r.Players() {
		assert.Len(t, p.Hand, domain.InitialDeal)
		assert.True(t, p.HasItem(3))
		assert.True(t, p.HasItem(51))
	}
	assert.ErrorIs(t, r.SubmitDefense(defender, nil), ErrNotYourTurn)

	require.NoError(t, r.SubmitAttack(attacker, domain.PiecesOf(r.cat.MustGet(3)), defender, nil))
	waiting, action := r.Waiting()
	assert.Same(t, defender, waiting)
	assert.Equal(t, domain.ActionDefend, action)
	assert.Equal(t, "AWAITING_DEFENDER", r.Snapshot(defender).Phase)

	require.NoError(t, r.SubmitDefense(defender, domain.PiecesOf(r.cat.MustGet(51))))
	assert.Equal(t, domain.InitialHP, defender.HP)

	// Второй иннинг круга достается второму игроку.
	waiting, action = r.Waiting()
	assert.Same(t, defender, waiting)
	assert.Equal(t, domain.ActionAttack, action)
	assert.Equal(t, 1, r.inning)

	// Нумерация у каждого получателя своя и без пропусков.
	for _, p := range r.Players() {
		for i, msg := range sink.msgs[p.ID] {
			assert.Equal(t, i+1, msg.Seq)
			assert.Equal(t, "room-1", msg.RoomID)
		}
	}
}

func TestRoom_RejectsCommand(t *testing.T) {
	r, sink, attacker, defender := startDuel(t)

	payload, err := json.Marshal(api.AttackPayload{Pieces: []api.PiecePayload{{Item: 3}}, Target: attacker.ID})
	require.NoError(t, err)
	r.execute(domain.InternalCommand{Action: domain.ActionAttack, PlayerID: defender.ID, Payload: payload})

	msg := sink.last(defender.ID)
	assert.Equal(t, "ERROR", msg.Type)
	assert.NotEmpty(t, msg.Error)
	assert.Empty(t, r.replay.Actions)

	r.execute(domain.InternalCommand{Action: domain.ActionForceDeal, PlayerID: attacker.ID, Payload: json.RawMessage(`{"item":3}`)})
	assert.Equal(t, ErrDebugOnly.Error(), sink.last(attacker.ID).Error)
}

func TestRoom_AcceptedCommandIsRecorded(t *testing.T) {
	r, _, attacker, defender := startDuel(t)

	payload, err := json.Marshal(api.AttackPayload{Pieces: []api.PiecePayload{{Item: 3}}, Target: defender.ID})
	require.NoError(t, err)
	r.execute(domain.InternalCommand{Action: domain.ActionAttack, PlayerID: attacker.ID, Payload: payload})

	require.Len(t, r.replay.Actions, 1)
	act := r.replay.Actions[0]
	assert.Equal(t, domain.ActionAttack, act.Action)
	assert.Equal(t, attacker.ID, act.PlayerID)
	assert.Equal(t, 0, act.Seq)
}

func TestRoom_LeaveMidMatch(t *testing.T) {
	r, _, attacker, defender := startDuel(t)
	require.NoError(t, r.SubmitAttack(attacker, domain.PiecesOf(r.cat.MustGet(3)), defender, nil))

	// Ушедший защищающийся получает бота, бот принимает удар и отвечает мечом.
	r.Leave(defender)
	assert.True(t, defender.IsBot)
	assert.NotNil(t, r.Controller(defender))
	assert.Equal(t, domain.InitialHP-5, defender.HP)

	waiting, action := r.Waiting()
	assert.Same(t, attacker, waiting)
	assert.Equal(t, domain.ActionDefend, action)

	require.NotEmpty(t, r.replay.Actions)
	assert.Equal(t, domain.ActionLeave, r.replay.Actions[0].Action)
}

func TestRoom_TimeoutLetsBotDecide(t *testing.T) {
	r, _, attacker, defender := startDuel(t)

	r.onTimeout()
	waiting, action := r.Waiting()
	assert.Same(t, defender, waiting)
	assert.Equal(t, domain.ActionDefend, action)
	assert.False(t, attacker.IsBot)

	require.Len(t, r.replay.Actions, 1)
	assert.Equal(t, domain.ActionTimeout, r.replay.Actions[0].Action)
}

func TestRoom_SafeAbortsOnInvariant(t *testing.T) {
	r, sink, attacker, _ := startDuel(t)

	r.safe(func() { panic(&InvariantError{Msg: "broken"}) })
	assert.True(t, r.aborted)
	assert.False(t, r.playing)
	assert.Equal(t, "ABORTED", r.phaseName())
	assert.Equal(t, "ERROR", sink.last(attacker.ID).Type)

	assert.Panics(t, func() { r.safe(func() { panic("boom") }) })
}

func TestRoom_GameEnds(t *testing.T) {
	r, _, attacker, defender := startDuel(t)
	var got MatchResult
	r.onResult = func(res MatchResult) { got = res }

	defender.HP = 3
	for defender.DiscardItem(domain.ItemRevive) {
	}
	for defender.DiscardItem(domain.ItemDyingAttack) {
	}
	require.NoError(t, r.SubmitAttack(attacker, domain.PiecesOf(r.cat.MustGet(3)), defender, nil))
	require.NoError(t, r.SubmitDefense(defender, nil))

	assert.False(t, r.playing)
	assert.True(t, r.ended)
	assert.Equal(t, []string{attacker.ID}, got.Winners)
	require.NotNil(t, got.Replay)
	assert.Equal(t, got.Replay.Seed, got.Seed)
	assert.Len(t, got.Replay.Roster, 2)
	// Люди снова подтверждают готовность к следующей партии.
	assert.False(t, attacker.Ready)
}
