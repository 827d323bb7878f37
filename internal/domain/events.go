package domain

import "strings"

// EventType - вид исходящего события комнаты
type EventType uint8

const (
	EventUnknown EventType = iota
	EventStartGame
	EventResetAttackOrder
	EventStartInning
	EventCommand
	EventDefense
	EventBuy
	EventDying
	EventDie
	EventDisease
	EventDeal
	EventEndInning
	EventEndGame
	EventState
	EventError
)

var eventStringToType = map[string]EventType{
	"START_GAME":         EventStartGame,
	"RESET_ATTACK_ORDER": EventResetAttackOrder,
	"START_INNING":       EventStartInning,
	"COMMAND":            EventCommand,
	"DEFENSE":            EventDefense,
	"BUY":                EventBuy,
	"DYING":              EventDying,
	"DIE":                EventDie,
	"DISEASE":            EventDisease,
	"DEAL":               EventDeal,
	"END_INNING":         EventEndInning,
	"END_GAME":           EventEndGame,
	"STATE":              EventState,
	"ERROR":              EventError,
}

var eventTypeToString = map[EventType]string{
	EventStartGame:        "START_GAME",
	EventResetAttackOrder: "RESET_ATTACK_ORDER",
	EventStartInning:      "START_INNING",
	EventCommand:          "COMMAND",
	EventDefense:          "DEFENSE",
	EventBuy:              "BUY",
	EventDying:            "DYING",
	EventDie:              "DIE",
	EventDisease:          "DISEASE",
	EventDeal:             "DEAL",
	EventEndInning:        "END_INNING",
	EventEndGame:          "END_GAME",
	EventState:            "STATE",
	EventError:            "ERROR",
}

// ParseEvent конвертирует строку в EventType
func ParseEvent(s string) EventType {
	if val, ok := eventStringToType[strings.ToUpper(s)]; ok {
		return val
	}
	return EventUnknown
}

func (e EventType) String() string {
	if val, ok := eventTypeToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

// Event - одно исходящее событие.
// To пустой - рассылка всем, иначе - только этому игроку.
type Event struct {
	Type    EventType
	To      string
	Payload any
}

// --- ЗАПИСИ СОБЫТИЙ ---

// PieceRecord - кусок цепочки в том виде, в каком его видят наблюдатели.
type PieceRecord struct {
	Item          int    `json:"item"`
	IllusionItem  int    `json:"illusionItem,omitempty"`
	AbilityIndex  *int   `json:"abilityIndex,omitempty"`
	CostMP        int    `json:"costMP,omitempty"`
	AssistantType Planet `json:"assistantType,omitempty"`
}

// AssistantRecord - ассистент игрока после MYSTERY MOON.
type AssistantRecord struct {
	Player string `json:"player"`
	Type   Planet `json:"type,omitempty"`
}

// CommandRecord - разрешенная атака, как ее видит конкретный наблюдатель.
type CommandRecord struct {
	Pieces            []PieceRecord     `json:"pieces"`
	Miss              bool              `json:"miss,omitempty"`
	DecidedValue      *int              `json:"decidedValue,omitempty"`
	Mortar            int               `json:"mortar,omitempty"`
	Mystery           Planet            `json:"mystery,omitempty"`
	MysteryHand       []int             `json:"mysteryHand,omitempty"`
	MysteryAssistants []AssistantRecord `json:"mysteryAssistants,omitempty"`
	Exchange          *Exchange         `json:"exchange,omitempty"`
	AssistantType     Planet            `json:"assistantType,omitempty"`
	Commander         string            `json:"commander"`
	Target            string            `json:"target,omitempty"`
	DecidedHP         *int              `json:"decidedHp,omitempty"`
	DecidedAssistant  Planet            `json:"decidedAssistant,omitempty"`
	ChainPiece        *PieceRecord      `json:"chainPiece,omitempty"`
}

// DefenseRecord - ответ защищающегося.
type DefenseRecord struct {
	Defender     string        `json:"defender"`
	Pieces       []PieceRecord `json:"pieces,omitempty"`
	ChainPiece   *PieceRecord  `json:"chainPiece,omitempty"`
	Target       string        `json:"target,omitempty"`
	DecidedValue *int          `json:"decidedValue,omitempty"`
}

type BuyRecord struct {
	Bought bool `json:"bought"`
	Item   int  `json:"item"`
}

type DyingRecord struct {
	Player string `json:"player"`
	Item   int    `json:"item"`
}

type PlayerRecord struct {
	Player string `json:"player"`
}

type DiseaseRecord struct {
	Player  string `json:"player"`
	Disease Harm   `json:"disease,omitempty"`
	Worse   bool   `json:"worse,omitempty"`
}

// DealRecord - выданный предмет так, как его видит получатель.
type DealRecord struct {
	Item          int  `json:"item"`
	IllusionIndex *int `json:"illusionIndex,omitempty"`
}

type InningRecord struct {
	Attacker string `json:"attacker"`
	Inning   int    `json:"inning"`
}

type EndGameRecord struct {
	Winners []string `json:"winners"`
	Innings int      `json:"innings"`
}
