package network

import (
	"sync"

	"github.com/Igoorx/godfield-flash/pkg/api"
	"github.com/Igoorx/godfield-flash/pkg/logger"
)

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: PlayerID -> Личный канал
	subscribers map[string]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
	}
}

// Register создает личный канал игрока. Старый канал (переподключение) закрывается.
func (b *Broadcaster) Register(playerID string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[playerID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 256)
	b.subscribers[playerID] = ch
	return ch
}

// Unregister удаляет подписчика, только если ch все еще его текущий канал.
// false - игрок уже переподключился с новым каналом.
func (b *Broadcaster) Unregister(playerID string, ch chan api.ServerResponse) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[playerID]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, playerID)
		return true
	}
	return false
}

// SendTo отправляет сообщение конкретному игроку (Unicast).
// Медленный клиент теряет сообщение, комната не ждет.
func (b *Broadcaster) SendTo(playerID string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[playerID]; ok {
		select {
		case ch <- msg:
		default:
			logger.Log.WithField("player", playerID).Warn("Hub: channel full, message dropped")
		}
	}
}

// Broadcast отправляет всем подписчикам
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber - игрок сейчас подключен.
func (b *Broadcaster) HasSubscriber(playerID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[playerID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
