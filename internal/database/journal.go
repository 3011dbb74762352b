// internal/database/journal.go
package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/models"
)

// Journal writes each ledger change in a single database transaction.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Commit(ctx context.Context, change *ledger.Change) error {
	return WithTransaction(j.db.WithContext(ctx), func(tx *gorm.DB) error {
		if change.Artist != nil {
			if err := tx.Create(models.NewArtist(*change.Artist)).Error; err != nil {
				return fmt.Errorf("insert artist: %w", err)
			}
		}
		if change.Config != nil {
			if err := tx.Create(models.NewCollection(change.Collection, change.Owner, *change.Config)).Error; err != nil {
				return fmt.Errorf("insert collection: %w", err)
			}
		}

		for _, a := range change.Assets {
			row := models.NewAsset(change.Collection, a)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection_ref"}, {Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"owner", "updated_at"}),
			}).Create(row).Error
			if err != nil {
				return fmt.Errorf("upsert asset %d: %w", a.TokenID, err)
			}
		}

		if change.Listing != nil {
			row := models.NewListing(change.Collection, *change.Listing)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection_ref"}, {Name: "token_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"seller", "price", "active", "updated_at"}),
			}).Create(row).Error
			if err != nil {
				return fmt.Errorf("upsert listing %d: %w", change.Listing.TokenID, err)
			}
		}

		if change.Batch != nil {
			if err := tx.Create(models.NewBatch(change.Collection, *change.Batch)).Error; err != nil {
				return fmt.Errorf("insert batch %s: %w", change.Batch.BatchID, err)
			}
		}
		if change.Settlement != nil {
			if err := tx.Create(models.NewSettlement(*change.Settlement)).Error; err != nil {
				return fmt.Errorf("insert settlement: %w", err)
			}
		}
		if change.Deposit != nil {
			if err := tx.Create(models.NewDeposit(*change.Deposit)).Error; err != nil {
				return fmt.Errorf("insert deposit %s: %w", change.Deposit.Reference, err)
			}
		}
		return nil
	})
}
