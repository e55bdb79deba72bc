package database

import (
	"errors"
	"sort"
	"time"

	"github.com/Prabisha01/de/internal/boards"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillElementRanks = "2024-06-01_backfill_element_ranks"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillElementRanks, apply: backfillElementRanks},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillElementRanks gives unranked elements their insertion position as rank,
// keeping any rank already present and the relative order of the rest.
func backfillElementRanks(db *gorm.DB) error {
	var stored []boards.Board
	if err := db.Find(&stored).Error; err != nil {
		return err
	}
	for _, board := range stored {
		if !needsRanks(board.Elements) {
			continue
		}
		ranked := make(boards.Elements, len(board.Elements))
		copy(ranked, board.Elements)
		order := make([]int, len(ranked))
		for index := range order {
			order[index] = index
		}
		sort.SliceStable(order, func(left, right int) bool {
			return ranked[order[left]].Rank < ranked[order[right]].Rank
		})
		for position, index := range order {
			ranked[index].Rank = int64(position + 1)
		}
		if err := db.Model(&boards.Board{}).Where("id = ?", board.ID).Update("elements", ranked).Error; err != nil {
			return err
		}
	}
	return nil
}

func needsRanks(elements boards.Elements) bool {
	for _, element := range elements {
		if element.Rank == 0 {
			return true
		}
	}
	return false
}
