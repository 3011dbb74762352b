// internal/models/collection.go
package models

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/digital-original/internal/ledger"
)

type Artist struct {
	BaseModel
	Address       string `json:"address" gorm:"size:42;not null;uniqueIndex"`
	CollectionRef string `json:"collection_ref" gorm:"size:42;not null;uniqueIndex"`
	Name          string `json:"name" gorm:"size:255"`
}

type Collection struct {
	BaseModel
	Ref              string `json:"ref" gorm:"size:42;not null;uniqueIndex"`
	Owner            string `json:"owner" gorm:"size:42;not null"`
	Name             string `json:"name" gorm:"size:255;not null"`
	Symbol           string `json:"symbol" gorm:"size:32"`
	Treasury         string `json:"treasury" gorm:"size:42;not null"`
	GalleryWallet    string `json:"gallery_wallet" gorm:"size:42;not null"`
	ArtistRoyaltyBps int64  `json:"artist_royalty_bps" gorm:"not null;default:0"`
}

func NewArtist(rec ledger.ArtistRecord) *Artist {
	return &Artist{
		Address:       rec.ArtistAddress.Hex(),
		CollectionRef: rec.CollectionRef.Hex(),
		Name:          rec.ArtistName,
	}
}

func (a *Artist) ToLedger() ledger.ArtistRecord {
	return ledger.ArtistRecord{
		ArtistAddress: common.HexToAddress(a.Address),
		CollectionRef: common.HexToAddress(a.CollectionRef),
		ArtistName:    a.Name,
	}
}

func NewCollection(ref, owner ledger.Identity, cfg ledger.CollectionConfig) *Collection {
	return &Collection{
		Ref:              ref.Hex(),
		Owner:            owner.Hex(),
		Name:             cfg.Name,
		Symbol:           cfg.Symbol,
		Treasury:         cfg.Treasury.Hex(),
		GalleryWallet:    cfg.GalleryWallet.Hex(),
		ArtistRoyaltyBps: int64(cfg.ArtistRoyaltyBps),
	}
}

func (c *Collection) Config() ledger.CollectionConfig {
	return ledger.CollectionConfig{
		Name:             c.Name,
		Symbol:           c.Symbol,
		Treasury:         common.HexToAddress(c.Treasury),
		GalleryWallet:    common.HexToAddress(c.GalleryWallet),
		ArtistRoyaltyBps: uint64(c.ArtistRoyaltyBps),
	}
}
