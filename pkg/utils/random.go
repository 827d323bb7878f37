package utils

import (
	"math/rand"

	"github.com/google/uuid"
)

// GenerateID создает уникальный ID комнаты или игрока.
func GenerateID() string {
	return uuid.NewString()
}

// Pick возвращает случайный элемент или нулевое значение для пустого среза.
func Pick[T any](rng *rand.Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rng.Intn(len(items))], true
}

// Shuffle перемешивает срез на месте.
func Shuffle[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

// Chance - событие с вероятностью percent из 100.
func Chance(rng *rand.Rand, percent int) bool {
	return rng.Intn(100) < percent
}
