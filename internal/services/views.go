// internal/services/views.go
package services

import (
	"time"

	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/models"
	"github.com/javajoker/digital-original/internal/utils"
)

type CollectionView struct {
	Ref            string                  `json:"ref"`
	Owner          string                  `json:"owner"`
	Artist         ledger.ArtistRecord     `json:"artist"`
	Config         ledger.CollectionConfig `json:"config"`
	TotalSupply    uint64                  `json:"total_supply"`
	PlatformFeeBps uint64                  `json:"platform_fee_bps"`
	GalleryFeeBps  uint64                  `json:"gallery_fee_bps"`
}

type ListingView struct {
	Seller string           `json:"seller"`
	Price  utils.AmountView `json:"price"`
	Active bool             `json:"active"`
}

type TokenView struct {
	Collection      string       `json:"collection"`
	TokenID         uint64       `json:"token_id"`
	Owner           string       `json:"owner"`
	OriginalArtist  string       `json:"original_artist"`
	URI             string       `json:"uri"`
	RoyaltyReceiver string       `json:"royalty_receiver"`
	RoyaltyBps      uint64       `json:"royalty_bps"`
	IsSold          bool         `json:"is_sold"`
	Listing         *ListingView `json:"listing,omitempty"`
}

type SettlementView struct {
	Collection     string           `json:"collection"`
	TokenID        uint64           `json:"token_id"`
	Seller         string           `json:"seller"`
	Buyer          string           `json:"buyer"`
	Treasury       string           `json:"treasury"`
	Gallery        string           `json:"gallery"`
	Price          utils.AmountView `json:"price"`
	PlatformAmount utils.AmountView `json:"platform_amount"`
	GalleryAmount  utils.AmountView `json:"gallery_amount"`
	SellerAmount   utils.AmountView `json:"seller_amount"`
	ReceiptHash    string           `json:"receipt_hash"`
	SettledAt      time.Time        `json:"settled_at"`
}

type BatchView struct {
	Collection  string    `json:"collection"`
	BatchID     string    `json:"batch_id"`
	TokenIDs    []uint64  `json:"token_ids"`
	ProcessedAt time.Time `json:"processed_at"`
}

func newCollectionView(c *ledger.Collection, artist ledger.ArtistRecord) CollectionView {
	fees := c.Fees()
	return CollectionView{
		Ref:            c.Ref().Hex(),
		Owner:          c.Owner().Hex(),
		Artist:         artist,
		Config:         c.Config(),
		TotalSupply:    c.TotalSupply(),
		PlatformFeeBps: fees.PlatformFeeBps,
		GalleryFeeBps:  fees.GalleryFeeBps,
	}
}

func newTokenView(ref ledger.Identity, a ledger.Asset, listing *ledger.Listing, decimals int32) TokenView {
	view := TokenView{
		Collection:      ref.Hex(),
		TokenID:         a.TokenID,
		Owner:           a.Owner.Hex(),
		OriginalArtist:  a.OriginalArtist.Hex(),
		URI:             a.URI,
		RoyaltyReceiver: a.RoyaltyReceiver.Hex(),
		RoyaltyBps:      a.RoyaltyBps,
		IsSold:          a.Sold(),
	}
	if listing != nil {
		view.Listing = &ListingView{
			Seller: listing.Seller.Hex(),
			Price:  utils.NewAmountView(listing.Price, decimals),
			Active: listing.Active,
		}
	}
	return view
}

func newSettlementView(s ledger.Settlement, decimals int32) SettlementView {
	return SettlementView{
		Collection:     s.Collection.Hex(),
		TokenID:        s.TokenID,
		Seller:         s.Seller.Hex(),
		Buyer:          s.Buyer.Hex(),
		Treasury:       s.Treasury.Hex(),
		Gallery:        s.Gallery.Hex(),
		Price:          utils.NewAmountView(s.Split.Price, decimals),
		PlatformAmount: utils.NewAmountView(s.Split.PlatformAmount, decimals),
		GalleryAmount:  utils.NewAmountView(s.Split.GalleryAmount, decimals),
		SellerAmount:   utils.NewAmountView(s.Split.SellerAmount, decimals),
		ReceiptHash:    s.ReceiptHash,
		SettledAt:      s.At,
	}
}

func settlementViewsFromRows(rows []models.Settlement, decimals int32) []SettlementView {
	out := make([]SettlementView, len(rows))
	for i := range rows {
		out[i] = newSettlementView(rows[i].ToLedger(), decimals)
	}
	return out
}
