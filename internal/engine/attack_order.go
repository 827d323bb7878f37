package engine

import (
	"container/heap"
	"math/rand"

	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/logger"

	"github.com/sirupsen/logrus"
)

// OrderItem обертка игрока в очереди ходов
type OrderItem struct {
	Value    *domain.Player
	Priority int // Место в текущем круге. Чем меньше, тем раньше ход.
	Index    int // Индекс в куче (нужен для Remove)
}

// OrderQueue реализует heap.Interface
type OrderQueue []*OrderItem

func (pq OrderQueue) Len() int { return len(pq) }

func (pq OrderQueue) Less(i, j int) bool {
	return pq[i].Priority < pq[j].Priority
}

func (pq OrderQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *OrderQueue) Push(x any) {
	item := x.(*OrderItem)
	item.Index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *OrderQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}

// AttackOrder - порядок атакующих в круге.
// Каждый круг перемешивается заново; выбывшие из круга уже походили.
type AttackOrder struct {
	queue   OrderQueue
	itemMap map[string]*OrderItem
	cycles  int
}

func NewAttackOrder() *AttackOrder {
	return &AttackOrder{
		queue:   make(OrderQueue, 0),
		itemMap: make(map[string]*OrderItem),
	}
}

// Reset начинает новый круг: все игроки получают случайные места.
func (o *AttackOrder) Reset(rng *rand.Rand, players []*domain.Player) {
	o.queue = o.queue[:0]
	clear(o.itemMap)

	perm := rng.Perm(len(players))
	for i, p := range players {
		item := &OrderItem{Value: p, Priority: perm[i]}
		heap.Push(&o.queue, item)
		o.itemMap[p.ID] = item
	}
	o.cycles++

	logger.Log.WithFields(logrus.Fields{
		"component": "attack_order",
		"players":   len(players),
		"cycle":     o.cycles,
	}).Debug("Attack order reshuffled")
}

// Next снимает следующего живого игрока круга. nil - круг закончился.
func (o *AttackOrder) Next() *domain.Player {
	for o.queue.Len() > 0 {
		item := heap.Pop(&o.queue).(*OrderItem)
		delete(o.itemMap, item.Value.ID)
		if item.Value.IsAlive() {
			return item.Value
		}
	}
	return nil
}

// Remove убирает игрока из текущего круга.
func (o *AttackOrder) Remove(playerID string) {
	if item, ok := o.itemMap[playerID]; ok {
		heap.Remove(&o.queue, item.Index)
		delete(o.itemMap, playerID)
	}
}

func (o *AttackOrder) Len() int {
	return o.queue.Len()
}

// DebugDump возвращает снимок очереди для отладки
func (o *AttackOrder) DebugDump() []map[string]any {
	// Пустой слайс, а не nil: в JSON будет "[]"
	result := make([]map[string]any, 0)

	for _, item := range o.queue {
		result = append(result, map[string]any{
			"id":       item.Value.ID,
			"name":     item.Value.Name,
			"priority": item.Priority,
			"index":    item.Index,
		})
	}
	return result
}
