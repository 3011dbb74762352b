// internal/database/snapshot.go
package database

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/models"
	"github.com/javajoker/digital-original/internal/utils"
)

type CollectionSnapshot struct {
	Artist ledger.ArtistRecord
	State  ledger.CollectionState
}

// Snapshot is the journaled ledger, enough to rebuild it in memory.
type Snapshot struct {
	Collections []CollectionSnapshot
	Deposits    []ledger.Deposit
	Settlements []ledger.Settlement
}

func LoadSnapshot(ctx context.Context, db *gorm.DB) (*Snapshot, error) {
	db = db.WithContext(ctx)

	var artists []models.Artist
	if err := db.Order("created_at asc").Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("load artists: %w", err)
	}

	snap := &Snapshot{}
	for _, artist := range artists {
		st, err := loadCollection(db, artist.CollectionRef)
		if err != nil {
			return nil, err
		}
		snap.Collections = append(snap.Collections, CollectionSnapshot{Artist: artist.ToLedger(), State: st})
	}

	var deposits []models.Deposit
	if err := db.Order("created_at asc").Find(&deposits).Error; err != nil {
		return nil, fmt.Errorf("load deposits: %w", err)
	}
	for i := range deposits {
		snap.Deposits = append(snap.Deposits, deposits[i].ToLedger())
	}

	var settlements []models.Settlement
	if err := db.Order("settled_at asc").Find(&settlements).Error; err != nil {
		return nil, fmt.Errorf("load settlements: %w", err)
	}
	for i := range settlements {
		snap.Settlements = append(snap.Settlements, settlements[i].ToLedger())
	}

	return snap, nil
}

func loadCollection(db *gorm.DB, ref string) (ledger.CollectionState, error) {
	var coll models.Collection
	if err := db.Where("ref = ?", ref).First(&coll).Error; err != nil {
		return ledger.CollectionState{}, fmt.Errorf("load collection %s: %w", ref, err)
	}

	st := ledger.CollectionState{
		Ref:    common.HexToAddress(coll.Ref),
		Owner:  common.HexToAddress(coll.Owner),
		Config: coll.Config(),
	}

	var assets []models.Asset
	if err := db.Where("collection_ref = ?", ref).Order("token_id asc").Find(&assets).Error; err != nil {
		return st, fmt.Errorf("load assets %s: %w", ref, err)
	}
	for i := range assets {
		st.Assets = append(st.Assets, assets[i].ToLedger())
	}

	var listings []models.Listing
	if err := db.Where("collection_ref = ?", ref).Find(&listings).Error; err != nil {
		return st, fmt.Errorf("load listings %s: %w", ref, err)
	}
	for i := range listings {
		st.Listings = append(st.Listings, listings[i].ToLedger())
	}

	var batches []models.Batch
	if err := db.Where("collection_ref = ?", ref).Find(&batches).Error; err != nil {
		return st, fmt.Errorf("load batches %s: %w", ref, err)
	}
	for i := range batches {
		st.Batches = append(st.Batches, batches[i].ToLedger())
	}

	return st, nil
}

// Apply rebuilds registry and vault state. It must run before serving traffic.
func (s *Snapshot) Apply(reg *ledger.Registry, vault *ledger.Vault) {
	for _, c := range s.Collections {
		reg.Restore(c.Artist, c.State)
	}
	vault.Restore(s.Deposits, s.Settlements)

	logrus.WithFields(logrus.Fields{
		"collections": len(s.Collections),
		"deposits":    len(s.Deposits),
		"settlements": len(s.Settlements),
	}).Info("Ledger restored from journal")
}

// SettlementHistory pages through a collection's settlements, newest first by default.
func SettlementHistory(ctx context.Context, db *gorm.DB, ref string, params utils.PaginationParams) ([]models.Settlement, int64, error) {
	query := db.WithContext(ctx).Model(&models.Settlement{}).Where("collection_ref = ?", ref)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count settlements: %w", err)
	}

	var rows []models.Settlement
	query = utils.ApplySort(query, params, []string{"settled_at", "token_id"})
	if err := utils.ApplyPagination(query, params).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list settlements: %w", err)
	}
	return rows, total, nil
}
