package results

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// CachedReader держит недавние итоги в памяти. Одновременные промахи
// по одной комнате превращаются в один запрос к базе.
type CachedReader struct {
	repo  Repository
	lru   *expirable.LRU[string, *MatchRecord]
	group singleflight.Group
}

func NewCachedReader(repo Repository, size int, ttl time.Duration) *CachedReader {
	return &CachedReader{
		repo: repo,
		lru:  expirable.NewLRU[string, *MatchRecord](size, nil, ttl),
	}
}

// Result возвращает последний итог комнаты.
func (c *CachedReader) Result(ctx context.Context, roomID string) (*MatchRecord, error) {
	if rec, ok := c.lru.Get(roomID); ok {
		return rec, nil
	}
	v, err, _ := c.group.Do(roomID, func() (any, error) {
		rec, err := c.repo.LatestByRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		c.lru.Add(roomID, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MatchRecord), nil
}

// Save пишет итог в базу и сразу кладет его в кэш: в комнате новая партия.
func (c *CachedReader) Save(ctx context.Context, rec *MatchRecord) error {
	if err := c.repo.Save(ctx, rec); err != nil {
		return err
	}
	c.lru.Add(rec.RoomID, rec)
	return nil
}

func (c *CachedReader) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	return c.repo.Recent(ctx, limit)
}

func (c *CachedReader) Len() int { return c.lru.Len() }
