// internal/ledger/types.go

// Package ledger holds the artist collection registry and the per-collection
// asset ledger: minting, listings and atomic sale settlement.
package ledger

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is a caller, owner or payout account.
type Identity = common.Address

// ZeroIdentity is never a valid owner or recipient.
var ZeroIdentity = common.Address{}

type Role string

const (
	RoleOperator Role = "operator"
	RoleMinter   Role = "minter"
)

// CollectionConfig is fixed when a collection is deployed.
type CollectionConfig struct {
	Name             string   `json:"name"`
	Symbol           string   `json:"symbol"`
	Treasury         Identity `json:"treasury"`
	GalleryWallet    Identity `json:"gallery_wallet"`
	ArtistRoyaltyBps uint64   `json:"artist_royalty_bps"`
}

type ArtistRecord struct {
	ArtistAddress Identity `json:"artist_address"`
	CollectionRef Identity `json:"collection_ref"`
	ArtistName    string   `json:"artist_name"`
}

type Asset struct {
	TokenID         uint64   `json:"token_id"`
	Owner           Identity `json:"owner"`
	OriginalArtist  Identity `json:"original_artist"`
	URI             string   `json:"uri"`
	RoyaltyReceiver Identity `json:"royalty_receiver"`
	RoyaltyBps      uint64   `json:"royalty_bps"`
}

// Sold reports whether the asset has left its original artist.
func (a *Asset) Sold() bool {
	return a.Owner != a.OriginalArtist
}

type Listing struct {
	TokenID uint64   `json:"token_id"`
	Seller  Identity `json:"seller"`
	Price   *big.Int `json:"price"`
	Active  bool     `json:"active"`
}

type BatchRecord struct {
	BatchID  string    `json:"batch_id"`
	TokenIDs []uint64  `json:"token_ids"`
	At       time.Time `json:"processed_at"`
}

// Split is the fee breakdown of one sale. The three shares always sum to Price.
type Split struct {
	Price          *big.Int `json:"price"`
	PlatformAmount *big.Int `json:"platform_amount"`
	GalleryAmount  *big.Int `json:"gallery_amount"`
	SellerAmount   *big.Int `json:"seller_amount"`
}

type Settlement struct {
	Collection  Identity  `json:"collection"`
	TokenID     uint64    `json:"token_id"`
	Seller      Identity  `json:"seller"`
	Buyer       Identity  `json:"buyer"`
	Treasury    Identity  `json:"treasury"`
	Gallery     Identity  `json:"gallery"`
	Split       Split     `json:"split"`
	ReceiptHash string    `json:"receipt_hash"`
	At          time.Time `json:"settled_at"`
}

// MintEntry is one row of a batch mint.
type MintEntry struct {
	To         Identity
	URI        string
	Artist     Identity
	RoyaltyBps uint64
}

func cloneInt(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}

func (l Listing) clone() Listing {
	l.Price = cloneInt(l.Price)
	return l
}

func (s Split) clone() Split {
	return Split{
		Price:          cloneInt(s.Price),
		PlatformAmount: cloneInt(s.PlatformAmount),
		GalleryAmount:  cloneInt(s.GalleryAmount),
		SellerAmount:   cloneInt(s.SellerAmount),
	}
}
