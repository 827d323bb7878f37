package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/internal/metrics"
	"github.com/Igoorx/godfield-flash/pkg/api"
	"github.com/Igoorx/godfield-flash/pkg/logger"
	"github.com/Igoorx/godfield-flash/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Sink доставляет ответы подключенным людям. network.Broadcaster его реализует.
type Sink interface {
	SendTo(playerID string, msg api.ServerResponse)
}

// MatchResult - итог партии, который комната отдает наружу после END_GAME.
type MatchResult struct {
	RoomID  string
	Seed    int64
	Winners []string
	Innings int
	Started time.Time
	Ended   time.Time
	Replay  *domain.ReplaySession
}

// ResultSink вызывается из горутины комнаты. Долгую работу он уносит в свою горутину.
type ResultSink func(res MatchResult)

// JoinRequest - вход в комнату. PlayerID задается при переподключении.
type JoinRequest struct {
	PlayerID string
	Name     string
	Team     domain.Team
	Reply    chan JoinResult
}

type JoinResult struct {
	Player *domain.Player
	Err    error
}

// Room - одна комната: лобби и партия. Все состояние принадлежит горутине Run.
type Room struct {
	ID  string
	cfg Config
	cat *catalog.Catalog
	rng *rand.Rand
	log *logrus.Entry

	players []*domain.Player
	bots    map[string]BotController
	newBot  BotFactory

	combat *Combat
	order  *AttackOrder

	playing   bool
	ended     bool
	aborted   bool
	hadHumans bool
	teamPlay  bool
	inning    int

	handledDisease   bool
	handledAssistant bool

	forceNextDeal    *domain.Item
	forceInitialDeal []*domain.Item

	sink     Sink
	onResult ResultSink
	seq      map[string]int
	Logs     []api.LogEntry

	replay  *domain.ReplaySession
	started time.Time

	handlers map[domain.ActionType]handlers.HandlerFunc

	// Каналы коммуникации
	CommandChan chan domain.InternalCommand
	JoinChan    chan JoinRequest
	LeaveChan   chan string
	// InspectChan выполняет чтение состояния в горутине комнаты (списки, отладка).
	InspectChan chan func(*Room)
	done        chan struct{}

	timer     *time.Timer
	step      int // растет при каждом решении в бою
	armedStep int
}

func NewRoom(id string, seed int64, cfg Config, cat *catalog.Catalog, newBot BotFactory, sink Sink, onResult ResultSink) *Room {
	r := &Room{
		ID:          id,
		cfg:         cfg,
		cat:         cat,
		rng:         rand.New(rand.NewSource(seed)),
		log:         logger.Log.WithFields(logrus.Fields{"component": "room", "room": id}),
		bots:        make(map[string]BotController),
		newBot:      newBot,
		order:       NewAttackOrder(),
		inning:      -1,
		sink:        sink,
		onResult:    onResult,
		seq:         make(map[string]int),
		Logs:        []api.LogEntry{},
		handlers:    handlerSet(cfg.Debug),
		CommandChan: make(chan domain.InternalCommand, 100),
		JoinChan:    make(chan JoinRequest, 10),
		LeaveChan:   make(chan string, 10),
		InspectChan: make(chan func(*Room), 10),
		done:        make(chan struct{}),
		armedStep:   -1,
	}
	r.combat = NewCombat(r, cat, r.rng, r.log.WithField("component", "combat"))
	return r
}

// Run запускает цикл комнаты. Паника инварианта останавливает только эту комнату.
func (r *Room) Run(ctx context.Context) {
	r.log.Info("Room loop started")
	metrics.RoomsActive.Inc()
	defer metrics.RoomsActive.Dec()
	defer close(r.done)
	defer r.stopTimer()

	for !r.aborted && !r.abandoned() {
		select {
		case <-ctx.Done():
			r.log.Info("Room loop stopped")
			return
		case req := <-r.JoinChan:
			r.safe(func() { r.join(req) })
		case id := <-r.LeaveChan:
			r.safe(func() {
				if p := r.Player(id); p != nil {
					r.Leave(p)
				}
			})
		case cmd := <-r.CommandChan:
			r.safe(func() { r.execute(cmd) })
		case fn := <-r.InspectChan:
			fn(r)
		case <-r.timeoutC():
			r.safe(r.onTimeout)
		}
		r.armTimer()
	}
	if r.aborted {
		r.log.Warn("Room loop aborted")
		return
	}
	r.log.Info("Room abandoned")
}

// Done закрывается, когда цикл комнаты завершился.
func (r *Room) Done() <-chan struct{} { return r.done }

// abandoned - все люди ушли. Партия ботов к этому моменту уже доиграна.
func (r *Room) abandoned() bool {
	return r.hadHumans && r.HumanCount() == 0
}

// safe ловит *InvariantError. Остальные паники летят дальше.
func (r *Room) safe(fn func()) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		ie, ok := rec.(*InvariantError)
		if !ok {
			panic(rec)
		}
		r.aborted = true
		r.playing = false
		r.stopTimer()
		r.log.WithFields(ie.Fields).WithError(ie).Error("Room aborted on invariant violation")
		r.broadcast(domain.Event{Type: domain.EventError, Payload: ErrRoomAborted.Error()})
	}()
	fn()
}

// --- ТАЙМЕР ХОДА ---

func (r *Room) timeoutC() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.armedStep = -1
}

// armTimer заводит таймер, когда бой ждет человека. Один шаг боя - один таймер.
func (r *Room) armTimer() {
	p, _ := r.Waiting()
	if p == nil || !r.isHuman(p) || r.cfg.Training || r.cfg.TurnTimeout <= 0 {
		r.stopTimer()
		return
	}
	if r.timer != nil && r.armedStep == r.step {
		return
	}
	r.stopTimer()
	r.armedStep = r.step
	r.timer = time.NewTimer(r.cfg.TurnTimeout * time.Duration(len(r.players)))
}

// onTimeout: за молчащего человека один раз решает временный бот.
func (r *Room) onTimeout() {
	r.timer = nil
	p, action := r.Waiting()
	if p == nil {
		return
	}
	metrics.Timeouts.Inc()
	r.log.WithFields(logrus.Fields{
		"player": p.ID,
		"action": action.String(),
	}).Warn("Turn timed out, bot decides")

	r.recordAction(domain.InternalCommand{Action: domain.ActionTimeout, PlayerID: p.ID})
	r.resumeWithBot(p, r.newBot(p, r))
}

// --- КОМАНДЫ ---

// execute выполняет команду игрока в контексте комнаты
func (r *Room) execute(cmd domain.InternalCommand) {
	result, err := r.apply(cmd)
	if err != nil {
		r.reject(cmd, err)
		return
	}
	if result.Msg != "" {
		r.AddLog(result.Msg, result.MsgType)
	}
	if result.Reply != nil {
		r.deliver(cmd.PlayerID, domain.EventState, result.Reply)
	}
}

// apply находит хендлер и запускает его. Принятые игровые команды пишутся в реплей.
func (r *Room) apply(cmd domain.InternalCommand) (handlers.Result, error) {
	p := r.Player(cmd.PlayerID)
	if p == nil {
		return handlers.Result{}, ErrUnknownPlayer
	}
	if cmd.Action.IsAdmin() && !r.cfg.Debug {
		return handlers.Result{}, ErrDebugOnly
	}
	handler, ok := r.handlers[cmd.Action]
	if !ok {
		return handlers.Result{}, fmt.Errorf("unsupported action %s", cmd.Action)
	}

	inMatch := r.playing
	ctx := handlers.Context{Table: r, Actor: p, Rng: r.rng}
	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		return handlers.Result{}, err
	}
	// LEAVE пишет сам Leave: выход бывает и без команды (обрыв связи).
	if inMatch && cmd.Action.IsGameplay() && cmd.Action != domain.ActionLeave {
		r.recordAction(cmd)
	}
	return result, nil
}

func (r *Room) reject(cmd domain.InternalCommand, err error) {
	metrics.CommandRejections.WithLabelValues(cmd.Action.String()).Inc()
	r.log.WithFields(logrus.Fields{
		"player": cmd.PlayerID,
		"action": cmd.Action.String(),
	}).WithError(err).Warn("Command rejected")

	if r.sink != nil && cmd.PlayerID != "" {
		r.seq[cmd.PlayerID]++
		r.sink.SendTo(cmd.PlayerID, api.ServerResponse{
			Type:   domain.EventError.String(),
			RoomID: r.ID,
			Seq:    r.seq[cmd.PlayerID],
			Error:  err.Error(),
		})
	}
}

func (r *Room) recordAction(cmd domain.InternalCommand) {
	if r.replay == nil {
		return
	}
	r.replay.Actions = append(r.replay.Actions, domain.ReplayAction{
		Seq:      len(r.replay.Actions),
		PlayerID: cmd.PlayerID,
		Action:   cmd.Action,
		Payload:  cmd.Payload,
	})
}

// --- СОБЫТИЯ ---

// Emit отдает событие людям комнаты. To пустой - всем.
func (r *Room) Emit(ev domain.Event) {
	if ev.To != "" {
		r.deliver(ev.To, ev.Type, ev.Payload)
		return
	}
	r.broadcast(ev)
}

func (r *Room) broadcast(ev domain.Event) {
	for _, p := range r.players {
		if r.isHuman(p) {
			r.deliver(p.ID, ev.Type, ev.Payload)
		}
	}
}

// deliver нумерует сообщения отдельно для каждого получателя.
func (r *Room) deliver(playerID string, t domain.EventType, payload any) {
	if r.sink == nil {
		return
	}
	r.seq[playerID]++
	r.sink.SendTo(playerID, api.ServerResponse{
		Type:    t.String(),
		RoomID:  r.ID,
		Seq:     r.seq[playerID],
		Payload: payload,
	})
}

// emitState рассылает каждому человеку его снимок (после изменений в лобби).
func (r *Room) emitState() {
	for _, p := range r.players {
		if r.isHuman(p) {
			r.deliver(p.ID, domain.EventState, r.Snapshot(p))
		}
	}
}

// --- ЛОББИ ---

func (r *Room) isHuman(p *domain.Player) bool {
	_, bot := r.bots[p.ID]
	return !bot
}

func (r *Room) join(req JoinRequest) {
	p, err := r.addPlayer(req)
	if err == nil {
		r.emitState()
	}
	if req.Reply != nil {
		req.Reply <- JoinResult{Player: p, Err: err}
	}
}

func (r *Room) addPlayer(req JoinRequest) (*domain.Player, error) {
	if req.PlayerID != "" {
		p := r.Player(req.PlayerID)
		if p == nil || !r.isHuman(p) {
			return nil, ErrUnknownPlayer
		}
		r.log.WithField("player", p.ID).Info("Player reconnected")
		return p, nil
	}
	if r.playing {
		return nil, ErrAlreadyPlay
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}
	team := req.Team
	if team == "" {
		team = domain.TeamSingle
	}
	if err := r.checkTeam(team); err != nil {
		return nil, err
	}

	p := domain.NewPlayer(utils.GenerateID(), req.Name, team)
	r.players = append(r.players, p)
	r.hadHumans = true
	r.log.WithFields(logrus.Fields{
		"player": p.ID,
		"name":   p.Name,
		"team":   string(team),
	}).Info("Player joined")
	return p, nil
}

// checkTeam: первый игрок задает режим, остальные обязаны его соблюдать.
func (r *Room) checkTeam(team domain.Team) error {
	if !team.IsValid() {
		return fmt.Errorf("%w: %s", ErrTeamMismatch, team)
	}
	if len(r.players) == 0 {
		r.teamPlay = team != domain.TeamSingle
		return nil
	}
	if r.teamPlay != (team != domain.TeamSingle) {
		return ErrTeamMismatch
	}
	return nil
}

func (r *Room) removePlayer(p *domain.Player) {
	for i, other := range r.players {
		if other == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	delete(r.bots, p.ID)
	delete(r.seq, p.ID)
}

// Leave: в лобби игрок уходит, в партии его место занимает бот.
func (r *Room) Leave(p *domain.Player) {
	if !r.playing {
		r.removePlayer(p)
		r.log.WithField("player", p.ID).Info("Player left the lobby")
		r.emitState()
		return
	}
	if !r.isHuman(p) {
		return
	}
	r.log.WithField("player", p.ID).Info("Player left, bot takes over")
	r.recordAction(domain.InternalCommand{Action: domain.ActionLeave, PlayerID: p.ID})
	p.IsBot = true
	bot := r.newBot(p, r)
	r.bots[p.ID] = bot
	r.resumeWithBot(p, bot)
}

// HumanCount - сколько людей еще в комнате.
func (r *Room) HumanCount() int {
	n := 0
	for _, p := range r.players {
		if r.isHuman(p) {
			n++
		}
	}
	return n
}

// --- ПАРТИЯ ---

// startGame пересевает генератор: партия воспроизводится по своему зерну.
func (r *Room) startGame() {
	r.beginMatch(r.rng.Int63())
	r.nextInning()
}

func (r *Room) beginMatch(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
	r.combat.SetRand(r.rng)
	r.combat.NewInning(nil)
	r.order = NewAttackOrder()

	r.inning = -1
	r.playing = true
	r.ended = false
	r.handledDisease = true
	r.handledAssistant = true
	r.started = time.Now()
	r.step++

	// свежие боты: память прошлой партии не влияет на новую
	for id := range r.bots {
		r.bots[id] = r.newBot(r.Player(id), r)
	}

	r.replay = &domain.ReplaySession{
		RoomID:    r.ID,
		Seed:      seed,
		Timestamp: r.started.Unix(),
		Actions:   make([]domain.ReplayAction, 0),
	}
	for _, p := range r.players {
		p.Reset()
		p.Ready = true
		p.IsBot = !r.isHuman(p)
		r.replay.Roster = append(r.replay.Roster, domain.ReplayPlayer{
			ID: p.ID, Name: p.Name, Team: p.Team, IsBot: p.IsBot,
		})
	}

	r.log.WithFields(logrus.Fields{
		"seed":    seed,
		"players": len(r.players),
		"team":    r.teamPlay,
	}).Info("Game started")
	r.Emit(domain.Event{Type: domain.EventStartGame})
}

func (r *Room) endGame() {
	r.playing = false
	r.ended = true
	r.stopTimer()

	var winners []string
	for _, p := range r.players {
		if p.IsAlive() {
			winners = append(winners, p.ID)
		}
		// к следующей партии люди заново жмут "готов"
		p.Ready = !r.isHuman(p)
	}
	if winners == nil {
		winners = []string{}
	}
	r.Emit(domain.Event{Type: domain.EventEndGame, Payload: domain.EndGameRecord{Winners: winners, Innings: r.inning + 1}})
	r.log.WithFields(logrus.Fields{
		"winners": winners,
		"innings": r.inning + 1,
	}).Info("Game ended")

	if r.onResult != nil {
		r.onResult(MatchResult{
			RoomID:  r.ID,
			Seed:    r.replay.Seed,
			Winners: winners,
			Innings: r.inning + 1,
			Started: r.started,
			Ended:   time.Now(),
			Replay:  r.replay,
		})
	}
}
