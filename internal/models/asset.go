// internal/models/asset.go
package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"

	"github.com/javajoker/digital-original/internal/ledger"
)

type Asset struct {
	BaseModel
	CollectionRef   string `json:"collection_ref" gorm:"size:42;not null;uniqueIndex:idx_assets_collection_token"`
	TokenID         int64  `json:"token_id" gorm:"not null;uniqueIndex:idx_assets_collection_token"`
	Owner           string `json:"owner" gorm:"size:42;not null;index"`
	OriginalArtist  string `json:"original_artist" gorm:"size:42;not null"`
	URI             string `json:"uri" gorm:"type:text"`
	RoyaltyReceiver string `json:"royalty_receiver" gorm:"size:42;not null"`
	RoyaltyBps      int64  `json:"royalty_bps" gorm:"not null;default:0"`
}

type Listing struct {
	BaseModel
	CollectionRef string `json:"collection_ref" gorm:"size:42;not null;uniqueIndex:idx_listings_collection_token"`
	TokenID       int64  `json:"token_id" gorm:"not null;uniqueIndex:idx_listings_collection_token"`
	Seller        string `json:"seller" gorm:"size:42;not null"`
	Price         Amount `json:"price" gorm:"type:numeric(78,0);not null"`
	Active        bool   `json:"active" gorm:"not null;index"`
}

type Batch struct {
	BaseModel
	CollectionRef string        `json:"collection_ref" gorm:"size:42;not null;uniqueIndex:idx_batches_collection_batch"`
	BatchID       string        `json:"batch_id" gorm:"size:128;not null;uniqueIndex:idx_batches_collection_batch"`
	TokenIDs      pq.Int64Array `json:"token_ids" gorm:"type:bigint[]"`
	ProcessedAt   time.Time     `json:"processed_at"`
}

func NewAsset(ref ledger.Identity, a ledger.Asset) *Asset {
	return &Asset{
		CollectionRef:   ref.Hex(),
		TokenID:         int64(a.TokenID),
		Owner:           a.Owner.Hex(),
		OriginalArtist:  a.OriginalArtist.Hex(),
		URI:             a.URI,
		RoyaltyReceiver: a.RoyaltyReceiver.Hex(),
		RoyaltyBps:      int64(a.RoyaltyBps),
	}
}

func (a *Asset) ToLedger() ledger.Asset {
	return ledger.Asset{
		TokenID:         uint64(a.TokenID),
		Owner:           common.HexToAddress(a.Owner),
		OriginalArtist:  common.HexToAddress(a.OriginalArtist),
		URI:             a.URI,
		RoyaltyReceiver: common.HexToAddress(a.RoyaltyReceiver),
		RoyaltyBps:      uint64(a.RoyaltyBps),
	}
}

func NewListing(ref ledger.Identity, l ledger.Listing) *Listing {
	return &Listing{
		CollectionRef: ref.Hex(),
		TokenID:       int64(l.TokenID),
		Seller:        l.Seller.Hex(),
		Price:         NewAmount(l.Price),
		Active:        l.Active,
	}
}

func (l *Listing) ToLedger() ledger.Listing {
	return ledger.Listing{
		TokenID: uint64(l.TokenID),
		Seller:  common.HexToAddress(l.Seller),
		Price:   l.Price.BigInt(),
		Active:  l.Active,
	}
}

func NewBatch(ref ledger.Identity, b ledger.BatchRecord) *Batch {
	ids := make(pq.Int64Array, len(b.TokenIDs))
	for i, id := range b.TokenIDs {
		ids[i] = int64(id)
	}
	return &Batch{
		CollectionRef: ref.Hex(),
		BatchID:       b.BatchID,
		TokenIDs:      ids,
		ProcessedAt:   b.At,
	}
}

func (b *Batch) ToLedger() ledger.BatchRecord {
	ids := make([]uint64, len(b.TokenIDs))
	for i, id := range b.TokenIDs {
		ids[i] = uint64(id)
	}
	return ledger.BatchRecord{BatchID: b.BatchID, TokenIDs: ids, At: b.ProcessedAt}
}
