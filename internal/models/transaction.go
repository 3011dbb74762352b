// internal/models/transaction.go
package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/digital-original/internal/ledger"
)

type Settlement struct {
	BaseModel
	CollectionRef  string    `json:"collection_ref" gorm:"size:42;not null;index"`
	TokenID        int64     `json:"token_id" gorm:"not null;index"`
	Seller         string    `json:"seller" gorm:"size:42;not null;index"`
	Buyer          string    `json:"buyer" gorm:"size:42;not null;index"`
	Treasury       string    `json:"treasury" gorm:"size:42;not null"`
	Gallery        string    `json:"gallery" gorm:"size:42;not null"`
	Price          Amount    `json:"price" gorm:"type:numeric(78,0);not null"`
	PlatformAmount Amount    `json:"platform_amount" gorm:"type:numeric(78,0);not null"`
	GalleryAmount  Amount    `json:"gallery_amount" gorm:"type:numeric(78,0);not null"`
	SellerAmount   Amount    `json:"seller_amount" gorm:"type:numeric(78,0);not null"`
	ReceiptHash    string    `json:"receipt_hash" gorm:"size:66;not null;uniqueIndex"`
	SettledAt      time.Time `json:"settled_at" gorm:"not null;index"`
}

type Deposit struct {
	BaseModel
	Reference string `json:"reference" gorm:"size:255;not null;uniqueIndex"`
	Account   string `json:"account" gorm:"size:42;not null;index"`
	Amount    Amount `json:"amount" gorm:"type:numeric(78,0);not null"`
}

func NewSettlement(s ledger.Settlement) *Settlement {
	return &Settlement{
		CollectionRef:  s.Collection.Hex(),
		TokenID:        int64(s.TokenID),
		Seller:         s.Seller.Hex(),
		Buyer:          s.Buyer.Hex(),
		Treasury:       s.Treasury.Hex(),
		Gallery:        s.Gallery.Hex(),
		Price:          NewAmount(s.Split.Price),
		PlatformAmount: NewAmount(s.Split.PlatformAmount),
		GalleryAmount:  NewAmount(s.Split.GalleryAmount),
		SellerAmount:   NewAmount(s.Split.SellerAmount),
		ReceiptHash:    s.ReceiptHash,
		SettledAt:      s.At,
	}
}

func (s *Settlement) ToLedger() ledger.Settlement {
	return ledger.Settlement{
		Collection: common.HexToAddress(s.CollectionRef),
		TokenID:    uint64(s.TokenID),
		Seller:     common.HexToAddress(s.Seller),
		Buyer:      common.HexToAddress(s.Buyer),
		Treasury:   common.HexToAddress(s.Treasury),
		Gallery:    common.HexToAddress(s.Gallery),
		Split: ledger.Split{
			Price:          s.Price.BigInt(),
			PlatformAmount: s.PlatformAmount.BigInt(),
			GalleryAmount:  s.GalleryAmount.BigInt(),
			SellerAmount:   s.SellerAmount.BigInt(),
		},
		ReceiptHash: s.ReceiptHash,
		At:          s.SettledAt,
	}
}

func NewDeposit(d ledger.Deposit) *Deposit {
	return &Deposit{
		Reference: d.Reference,
		Account:   d.Account.Hex(),
		Amount:    NewAmount(d.Amount),
	}
}

func (d *Deposit) ToLedger() ledger.Deposit {
	return ledger.Deposit{
		Reference: d.Reference,
		Account:   common.HexToAddress(d.Account),
		Amount:    d.Amount.BigInt(),
	}
}
