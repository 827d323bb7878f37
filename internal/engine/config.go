package engine

import "time"

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. Зерно комнаты N = Seed + N.
	Seed int64
	// TurnTimeout - время на ход человека в пересчете на одного игрока.
	TurnTimeout time.Duration
	// Training отключает таймауты людей.
	Training bool
	// AssistantChance - шанс срабатывания ассистента в конце иннинга, %.
	AssistantChance int
	MaxPlayers      int
	// Debug разрешает админские команды.
	Debug bool
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:            time.Now().UnixNano(),
		TurnTimeout:     60 * time.Second,
		AssistantChance: 30,
		MaxPlayers:      8,
	}
}
