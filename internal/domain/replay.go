package domain

import "encoding/json"

// ReplayAction - это запись одной команды игрока (или бота, взявшего управление)
type ReplayAction struct {
	Seq      int             `json:"seq"`
	PlayerID string          `json:"playerId"` // Кто сделал
	Action   ActionType      `json:"action"`   // Что сделал
	Payload  json.RawMessage `json:"payload"`  // С какими параметрами
}

// ReplayPlayer - участник в момент старта матча
type ReplayPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team"`
	IsBot bool   `json:"isBot"`
}

// ReplaySession - полная запись партии
type ReplaySession struct {
	RoomID    string         `json:"roomId"`
	Seed      int64          `json:"seed"` // Зерно всех случайностей комнаты
	Timestamp int64          `json:"timestamp"`
	Roster    []ReplayPlayer `json:"roster"`
	Actions   []ReplayAction `json:"actions"`
}
