package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Type совпадает с видом события комнаты (COMMAND, DEFENSE, STATE, ERROR...).
type ServerResponse struct {
	Type string `json:"type"`

	// RoomID комната, в которой произошло событие.
	RoomID string `json:"roomId,omitempty"`

	// Seq порядковый номер события в комнате. Клиент может заметить пропуск.
	Seq int `json:"seq"`

	// Payload запись события (см. domain.*Record) или StateView.
	Payload any `json:"payload,omitempty"`

	// Error текст ошибки для Type == "ERROR".
	Error string `json:"error,omitempty"`
}

// StateView полный снимок комнаты, как его видит конкретный игрок.
type StateView struct {
	RoomID   string       `json:"roomId"`
	Phase    string       `json:"phase"`
	Inning   int          `json:"inning"`
	Attacker string       `json:"attacker,omitempty"`
	Defender string       `json:"defender,omitempty"`
	Players  []PlayerView `json:"players"`

	// Поля ниже заполняются только для самого игрока.
	MyID     string          `json:"myId,omitempty"`
	MyHand   []HandPieceView `json:"myHand,omitempty"`
	MyMagics []int           `json:"myMagics,omitempty"`

	Logs []LogEntry `json:"logs,omitempty"`
}

// LogEntry строка игрового лога комнаты.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"` // INFO, COMBAT, ADMIN
	Timestamp int64  `json:"timestamp"`
}

// PlayerView публичные характеристики участника.
type PlayerView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Team      string   `json:"team"`
	HP        int      `json:"hp"`
	MP        int      `json:"mp"`
	Yen       int      `json:"yen"`
	Disease   string   `json:"disease,omitempty"`
	Harms     []string `json:"harms,omitempty"`
	Assistant string   `json:"assistant,omitempty"`
	ShieldHP  int      `json:"shieldHp,omitempty"`
	HandSize  int      `json:"handSize"`
	Ready     bool     `json:"ready"`
	Dead      bool     `json:"dead"`
	Lost      bool     `json:"lost"`
	IsBot     bool     `json:"isBot"`
}

// HandPieceView предмет в руке. Под ILLUSION владелец видит только подмену.
type HandPieceView struct {
	Item          int  `json:"item"`
	IllusionIndex *int `json:"illusionIndex,omitempty"`
}

// RoomView строка списка комнат.
type RoomView struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Playing bool   `json:"playing"`
	Ended   bool   `json:"ended"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID игрока. Выдается сервером в ответ на JOIN.
	Token string `json:"token,omitempty"`

	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// JoinPayload первое сообщение соединения. Пустой RoomID создает новую комнату.
type JoinPayload struct {
	RoomID string `json:"roomId,omitempty" validate:"omitempty,uuid"`
	Name   string `json:"name" validate:"required,min=1,max=16,excludesall=<>&"`
	Team   string `json:"team" validate:"omitempty,oneof=SINGLE TEAM1 TEAM2 TEAM3 TEAM4"`
}

type ReadyPayload struct {
	Ready bool `json:"ready"`
}

type AddBotPayload struct {
	Count int    `json:"count" validate:"min=1,max=8"`
	Team  string `json:"team" validate:"omitempty,oneof=SINGLE TEAM1 TEAM2 TEAM3 TEAM4"`
}

// PiecePayload один кусок цепочки, как его видит клиент.
// IllusionIndex задается для предмета под иллюзией, AbilityIndex - для привязанной магии.
type PiecePayload struct {
	Item          int  `json:"item" validate:"min=0"`
	IllusionIndex *int `json:"illusionIndex,omitempty" validate:"omitempty,min=0"`
	AbilityIndex  *int `json:"abilityIndex,omitempty" validate:"omitempty,min=0"`
}

// ExchangePayload выбранное распределение для EXCHANGE.
type ExchangePayload struct {
	HP  int `json:"hp" validate:"min=0,max=99"`
	MP  int `json:"mp" validate:"min=0,max=99"`
	Yen int `json:"yen" validate:"min=0,max=99"`
}

// AttackPayload команда атакующего.
type AttackPayload struct {
	Pieces   []PiecePayload   `json:"pieces" validate:"required,min=1,max=16,dive"`
	Target   string           `json:"target" validate:"required"`
	Exchange *ExchangePayload `json:"exchange,omitempty"`
}

// DefendPayload команда защищающегося. Пустой список - принять удар.
type DefendPayload struct {
	Pieces []PiecePayload `json:"pieces" validate:"max=16,dive"`
}

type BuyPayload struct {
	Buy bool `json:"buy"`
}

// --- Admin payloads ---

type ForceDealPayload struct {
	Item int `json:"item" validate:"min=0"`
}

type ForceInitialDealPayload struct {
	Items []int `json:"items" validate:"max=16,dive,min=0"`
}

type ForceAssistantPayload struct {
	Type string `json:"type" validate:"required,oneof=MARS MERCURY JUPITER SATURN URANUS PLUTO NEPTUNE VENUS EARTH MOON"`
}
