package domain

import "strings"

// ActionType - Внутренний числовой идентификатор команды игрока
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionState
	ActionJoin
	ActionLeave
	ActionReady
	ActionAddBot
	ActionAttack
	ActionDefend
	ActionBuy
	// ActionTimeout пишется только сервером: за игрока решил бот
	ActionTimeout
	// Админские (только в debug)
	ActionForceDeal
	ActionForceInitialDeal
	ActionForceAssistant
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"STATE":              ActionState,
	"JOIN":               ActionJoin,
	"LEAVE":              ActionLeave,
	"READY":              ActionReady,
	"ADD_BOT":            ActionAddBot,
	"ATTACK":             ActionAttack,
	"DEFEND":             ActionDefend,
	"BUY":                ActionBuy,
	"FORCE_DEAL":         ActionForceDeal,
	"FORCE_INITIAL_DEAL": ActionForceInitialDeal,
	"FORCE_ASSISTANT":    ActionForceAssistant,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionState:            "STATE",
	ActionJoin:             "JOIN",
	ActionLeave:            "LEAVE",
	ActionReady:            "READY",
	ActionAddBot:           "ADD_BOT",
	ActionAttack:           "ATTACK",
	ActionDefend:           "DEFEND",
	ActionBuy:              "BUY",
	ActionTimeout:          "TIMEOUT",
	ActionForceDeal:        "FORCE_DEAL",
	ActionForceInitialDeal: "FORCE_INITIAL_DEAL",
	ActionForceAssistant:   "FORCE_ASSISTANT",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsAdmin - команда доступна только в debug-режиме.
func (a ActionType) IsAdmin() bool {
	return a >= ActionForceDeal
}

// IsGameplay - команда меняет состояние матча и пишется в реплей.
func (a ActionType) IsGameplay() bool {
	switch a {
	case ActionAttack, ActionDefend, ActionBuy, ActionLeave, ActionTimeout:
		return true
	}
	return false
}
