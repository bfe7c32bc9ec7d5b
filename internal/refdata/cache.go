package refdata

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CachedList records when a list was last fetched.
type CachedList struct {
	ListKey   string `gorm:"primaryKey;size:64"`
	FetchedAt time.Time
}

func (CachedList) TableName() string { return "refdata_lists" }

// CachedPlace is one entry of a cached list.
type CachedPlace struct {
	ID       uint   `gorm:"primaryKey"`
	ListKey  string `gorm:"size:64;index"`
	PlaceID  int
	Name     string `gorm:"size:255"`
	Position int
}

func (CachedPlace) TableName() string { return "refdata_places" }

// Cache stores geographic lists in a SQL database.
type Cache struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// Models returns the tables the cache needs migrated.
func Models() []any {
	return []any{&CachedList{}, &CachedPlace{}}
}

// Get returns the cached list for key and whether it is younger than ttl.
// found is false when nothing was ever cached.
func (c *Cache) Get(ctx context.Context, key string, ttl time.Duration) (places []Place, fresh, found bool, err error) {
	var entry CachedList
	err = c.db.WithContext(ctx).Where("list_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, false, nil
	}
	if err != nil {
		return nil, false, false, err
	}
	var rows []CachedPlace
	if err := c.db.WithContext(ctx).Where("list_key = ?", key).Order("position").Find(&rows).Error; err != nil {
		return nil, false, false, err
	}
	places = make([]Place, 0, len(rows))
	for _, r := range rows {
		places = append(places, Place{ID: r.PlaceID, Name: r.Name})
	}
	return places, c.now().Sub(entry.FetchedAt) < ttl, true, nil
}

// Put replaces the cached list for key.
func (c *Cache) Put(ctx context.Context, key string, places []Place) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_key = ?", key).Delete(&CachedPlace{}).Error; err != nil {
			return err
		}
		if len(places) > 0 {
			rows := make([]CachedPlace, 0, len(places))
			for i, p := range places {
				rows = append(rows, CachedPlace{ListKey: key, PlaceID: p.ID, Name: p.Name, Position: i})
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		entry := CachedList{ListKey: key, FetchedAt: c.now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "list_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"fetched_at"}),
		}).Create(&entry).Error
	})
}
