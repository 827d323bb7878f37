package results

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("match result not found")

// MatchRecord - сохраненный итог партии.
type MatchRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RoomID    string    `gorm:"index;not null" json:"roomId"`
	Seed      int64     `json:"seed"`
	Winners   []string  `gorm:"serializer:json" json:"winners"`
	Innings   int       `json:"innings"`
	Started   time.Time `json:"started"`
	Ended     time.Time `json:"ended"`
	CreatedAt time.Time `json:"-"`
}

type Repository interface {
	Save(ctx context.Context, rec *MatchRecord) error
	// LatestByRoom - последний итог комнаты: в одной комнате бывает несколько партий.
	LatestByRoom(ctx context.Context, roomID string) (*MatchRecord, error)
	Recent(ctx context.Context, limit int) ([]MatchRecord, error)
}

// OpenAndMigrate открывает SQLite и приводит схему к актуальной.
func OpenAndMigrate(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Save(ctx context.Context, rec *MatchRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *sqliteRepository) LatestByRoom(ctx context.Context, roomID string) (*MatchRecord, error) {
	var rec MatchRecord
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("ended DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	var recs []MatchRecord
	if err := r.db.WithContext(ctx).Order("ended DESC, id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
