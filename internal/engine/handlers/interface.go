package handlers

import (
	"encoding/json"
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/api"
)

// Table описывает комнату так, как ее видят хендлеры.
// Room неявно реализует этот интерфейс.
type Table interface {
	Player(id string) *domain.Player
	Catalog() *catalog.Catalog

	// Waiting - игрок, от которого комната ждет ввод, и что именно она ждет.
	Waiting() (*domain.Player, domain.ActionType)
	CurrentAttack() *domain.AttackData

	SubmitAttack(p *domain.Player, pieces []domain.CommandPiece, target *domain.Player, ex *domain.Exchange) error
	SubmitDefense(p *domain.Player, pieces []domain.CommandPiece) error
	SubmitBuy(p *domain.Player, buy bool) error

	SetReady(p *domain.Player, ready bool) error
	AddBots(count int, team domain.Team) error
	Leave(p *domain.Player)
	Snapshot(viewer *domain.Player) api.StateView

	ForceDeal(item *domain.Item) error
	ForceInitialDeal(items []*domain.Item) error
	ForceAssistant(planet domain.Planet) error
}

// Context передает хендлеру комнату и того, кто прислал команду.
type Context struct {
	Table Table
	Actor *domain.Player
	Rng   *rand.Rand
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (INFO, COMBAT, ADMIN)
	Reply   any    // Ответ только отправителю (STATE)
}

// HandlerFunc - это контракт для любой команды (ATTACK, DEFEND, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
