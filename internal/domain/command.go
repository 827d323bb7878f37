package domain

import "encoding/json"

// InternalCommand - команда для комнаты.
// Использует ActionType вместо string.
type InternalCommand struct {
	Action   ActionType      // Число! Быстро и безопасно.
	PlayerID string          // Кто прислал
	Payload  json.RawMessage // Сырые данные (парсятся хендлером)
}
