package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers/actions"
	"github.com/Igoorx/godfield-flash/internal/engine/handlers/admin"
	"github.com/Igoorx/godfield-flash/internal/network"
	"github.com/Igoorx/godfield-flash/pkg/api"
	"github.com/Igoorx/godfield-flash/pkg/logger"
	"github.com/Igoorx/godfield-flash/pkg/utils"

	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomBusy     = errors.New("room is not responding")
)

// roomReplyTimeout - сколько сервис ждет ответа от горутины комнаты.
const roomReplyTimeout = 5 * time.Second

// ReplayStore сохраняет и читает записи партий.
type ReplayStore interface {
	Save(rec *domain.ReplaySession) (string, error)
	Load(path string) (*domain.ReplaySession, error)
}

// ServiceDeps - внешние зависимости сервиса. Любая из них может быть nil.
type ServiceDeps struct {
	Replays  ReplayStore
	OnResult ResultSink
	NewBot   BotFactory
}

// Service - реестр комнат. Каждая комната живет в своей горутине.
type Service struct {
	cfg  Config
	cat  *catalog.Catalog
	deps ServiceDeps
	Hub  *network.Broadcaster

	mu      sync.RWMutex
	rooms   map[string]*Room
	cancels map[string]context.CancelFunc
	created int64

	ctx context.Context
	log *logrus.Entry
}

func NewService(cfg Config, cat *catalog.Catalog, deps ServiceDeps) *Service {
	return &Service{
		cfg:     cfg,
		cat:     cat,
		deps:    deps,
		Hub:     network.NewBroadcaster(),
		rooms:   make(map[string]*Room),
		cancels: make(map[string]context.CancelFunc),
		ctx:     context.Background(),
		log:     logger.For("service"),
	}
}

// handlerSet - таблица команд. Админские доступны только в debug.
func handlerSet(debug bool) map[domain.ActionType]handlers.HandlerFunc {
	h := map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionState:  handlers.WithEmptyPayload(actions.HandleState),
		domain.ActionLeave:  handlers.WithEmptyPayload(actions.HandleLeave),
		domain.ActionReady:  handlers.WithPayload(actions.HandleReady),
		domain.ActionAddBot: handlers.WithPayload(actions.HandleAddBot),
		domain.ActionAttack: handlers.WithPayload(actions.HandleAttack),
		domain.ActionDefend: handlers.WithPayload(actions.HandleDefend),
		domain.ActionBuy:    handlers.WithPayload(actions.HandleBuy),
	}
	if debug {
		h[domain.ActionForceDeal] = handlers.WithPayload(admin.HandleForceDeal)
		h[domain.ActionForceInitialDeal] = handlers.WithPayload(admin.HandleForceInitialDeal)
		h[domain.ActionForceAssistant] = handlers.WithPayload(admin.HandleForceAssistant)
	}
	return h
}

// Start привязывает комнаты к контексту процесса.
func (s *Service) Start(ctx context.Context) {
	s.ctx = ctx
	s.log.WithFields(logrus.Fields{
		"seed":     s.cfg.Seed,
		"debug":    s.cfg.Debug,
		"training": s.cfg.Training,
	}).Info("Game service started")
}

// CreateRoom заводит комнату и запускает ее горутину.
// Зерно комнаты N - мастер-зерно плюс N.
func (s *Service) CreateRoom() *Room {
	s.mu.Lock()
	s.created++
	seed := s.cfg.Seed + s.created
	room := NewRoom(utils.GenerateID(), seed, s.cfg, s.cat, s.deps.NewBot, s.Hub, s.persist)
	ctx, cancel := context.WithCancel(s.ctx)
	s.rooms[room.ID] = room
	s.cancels[room.ID] = cancel
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"room": room.ID, "seed": seed}).Info("Room created")
	go func() {
		room.Run(ctx)
		s.dropRoom(room.ID)
	}()
	return room
}

func (s *Service) dropRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
	}
	delete(s.rooms, id)
	delete(s.cancels, id)
	s.log.WithField("room", id).Info("Room closed")
}

func (s *Service) Room(id string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[id]
}

// Join входит в комнату (пустой RoomID - новая). token - ID игрока при переподключении.
func (s *Service) Join(ctx context.Context, req api.JoinPayload, token string) (*Room, *domain.Player, error) {
	var room *Room
	fresh := req.RoomID == ""
	if fresh {
		room = s.CreateRoom()
	} else if room = s.Room(req.RoomID); room == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}

	reply := make(chan JoinResult, 1)
	jr := JoinRequest{PlayerID: token, Name: req.Name, Team: domain.Team(req.Team), Reply: reply}
	res, err := roundTrip(ctx, room, func() bool {
		select {
		case room.JoinChan <- jr:
			return true
		default:
			return false
		}
	}, reply)
	if err == nil {
		err = res.Err
	}
	if err != nil {
		if fresh {
			s.dropRoom(room.ID)
		}
		return nil, nil, err
	}
	return room, res.Player, nil
}

// roundTrip отправляет запрос в комнату и ждет ответ, пока комната жива.
func roundTrip[T any](ctx context.Context, room *Room, send func() bool, reply <-chan T) (T, error) {
	var zero T
	if !send() {
		return zero, ErrRoomBusy
	}
	timer := time.NewTimer(roomReplyTimeout)
	defer timer.Stop()
	select {
	case v := <-reply:
		return v, nil
	case <-room.Done():
		return zero, ErrRoomNotFound
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, ErrRoomBusy
	}
}

// ProcessCommand разбирает команду клиента и отдает ее комнате.
func (s *Service) ProcessCommand(roomID, playerID string, cmd api.ClientCommand) {
	room := s.Room(roomID)
	if room == nil {
		return
	}
	internal := domain.InternalCommand{
		Action:   domain.ParseAction(cmd.Action),
		PlayerID: playerID,
		Payload:  cmd.Payload,
	}
	select {
	case room.CommandChan <- internal:
	default:
		s.log.WithFields(logrus.Fields{"room": roomID, "player": playerID}).Warn("Room command queue full, command dropped")
	}
}

// Disconnect: игрок пропал. В партии его заменит бот.
func (s *Service) Disconnect(roomID, playerID string) {
	room := s.Room(roomID)
	if room == nil {
		return
	}
	select {
	case room.LeaveChan <- playerID:
	case <-room.Done():
	}
}

func (s *Service) snapshotRooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// ListRooms опрашивает каждую комнату в ее горутине.
func (s *Service) ListRooms(ctx context.Context) []api.RoomView {
	views := make([]api.RoomView, 0)
	for _, room := range s.snapshotRooms() {
		if v, err := Inspect(ctx, room, (*Room).RoomView); err == nil {
			views = append(views, v)
		}
	}
	return views
}

// Debug возвращает внутренности комнаты для отладочного эндпоинта.
func (s *Service) Debug(ctx context.Context, roomID string) (DebugView, error) {
	room := s.Room(roomID)
	if room == nil {
		return DebugView{}, ErrRoomNotFound
	}
	return Inspect(ctx, room, (*Room).Debug)
}

// Inspect выполняет read в горутине комнаты и возвращает результат.
func Inspect[T any](ctx context.Context, room *Room, read func(*Room) T) (T, error) {
	reply := make(chan T, 1)
	return roundTrip(ctx, room, func() bool {
		select {
		case room.InspectChan <- func(r *Room) { reply <- read(r) }:
			return true
		default:
			return false
		}
	}, reply)
}

// persist сохраняет реплей и отдает итог наружу. Вызывается из горутины комнаты.
func (s *Service) persist(res MatchResult) {
	go func() {
		log := s.log.WithField("room", res.RoomID)
		if s.deps.Replays != nil && res.Replay != nil {
			path, err := s.deps.Replays.Save(res.Replay)
			if err != nil {
				log.WithError(err).Error("Failed to save replay")
			} else {
				log.WithField("path", path).Info("Replay saved")
			}
		}
		if s.deps.OnResult != nil {
			s.deps.OnResult(res)
		}
	}()
}

// Playback читает реплей и проигрывает его заново.
func (s *Service) Playback(path string) (MatchResult, error) {
	if s.deps.Replays == nil {
		return MatchResult{}, errors.New("replay store is not configured")
	}
	rec, err := s.deps.Replays.Load(path)
	if err != nil {
		return MatchResult{}, fmt.Errorf("load replay: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"room":    rec.RoomID,
		"seed":    rec.Seed,
		"actions": len(rec.Actions),
	}).Info("Replay loaded")
	return Simulate(rec, s.cfg, s.cat, s.deps.NewBot)
}

// Shutdown останавливает все комнаты.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
}
