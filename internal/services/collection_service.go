// internal/services/collection_service.go
package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/database"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/utils"
)

type CollectionService struct {
	registry *ledger.Registry
	db       *gorm.DB
	decimals int32
}

type MintRequest struct {
	To  string `json:"to" validate:"required,eth_addr"`
	URI string `json:"uri" validate:"max=2048"`
	// Artist and RoyaltyBps default to the collection's artist and royalty.
	Artist     string  `json:"artist,omitempty" validate:"omitempty,eth_addr"`
	RoyaltyBps *uint64 `json:"royalty_bps,omitempty"`
}

type BatchMintRequest struct {
	BatchID    string   `json:"batch_id" validate:"required,batch_id"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,eth_addr"`
	URIs       []string `json:"uris" validate:"required,dive,max=2048"`
	Artists    []string `json:"artists" validate:"required,dive,eth_addr"`
	Royalties  []uint64 `json:"royalties" validate:"required"`
}

// Amounts are given in minor units or, with the _decimal field, as a decimal value.
type ListTokenRequest struct {
	Price        string `json:"price,omitempty" validate:"required_without=PriceDecimal"`
	PriceDecimal string `json:"price_decimal,omitempty" validate:"required_without=Price"`
}

type PurchaseRequest struct {
	Payment        string `json:"payment,omitempty" validate:"required_without=PaymentDecimal"`
	PaymentDecimal string `json:"payment_decimal,omitempty" validate:"required_without=Payment"`
}

type TransferRequest struct {
	From string `json:"from" validate:"required,eth_addr"`
	To   string `json:"to" validate:"required,eth_addr"`
}

type MintResult struct {
	Collection string   `json:"collection"`
	TokenIDs   []uint64 `json:"token_ids"`
	BatchID    string   `json:"batch_id,omitempty"`
}

type RoyaltyView struct {
	Receiver  string           `json:"receiver"`
	SalePrice utils.AmountView `json:"sale_price"`
	Amount    utils.AmountView `json:"amount"`
}

type HoldingsView struct {
	Collection string   `json:"collection"`
	Owner      string   `json:"owner"`
	Balance    uint64   `json:"balance"`
	TokenIDs   []uint64 `json:"token_ids"`
}

// NewCollectionService accepts a nil db; settlement history is then unavailable.
func NewCollectionService(registry *ledger.Registry, db *gorm.DB, decimals int32) *CollectionService {
	return &CollectionService{
		registry: registry,
		db:       db,
		decimals: decimals,
	}
}

func (s *CollectionService) collection(ref common.Address) (*ledger.Collection, error) {
	return s.registry.Collection(ref)
}

func (s *CollectionService) Mint(ctx context.Context, caller, ref common.Address, req *MintRequest) (*MintResult, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}

	artist := common.HexToAddress(req.Artist)
	if req.Artist == "" {
		rec, ok := s.registry.ArtistForCollection(ref)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, ref.Hex())
		}
		artist = rec.ArtistAddress
	}
	royalty := coll.Config().ArtistRoyaltyBps
	if req.RoyaltyBps != nil {
		royalty = *req.RoyaltyBps
	}

	id, err := coll.Mint(ctx, caller, common.HexToAddress(req.To), req.URI, artist, royalty)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"collection": ref.Hex(),
		"token_id":   id,
		"to":         req.To,
	}).Info("Token minted")

	return &MintResult{Collection: ref.Hex(), TokenIDs: []uint64{id}}, nil
}

func (s *CollectionService) BatchMint(ctx context.Context, caller, ref common.Address, req *BatchMintRequest) (*MintResult, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}

	ids, err := coll.BatchMint(ctx, caller,
		toIdentities(req.Recipients), req.URIs, toIdentities(req.Artists), req.Royalties, req.BatchID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"collection": ref.Hex(),
		"batch_id":   req.BatchID,
		"count":      len(ids),
	}).Info("Batch minted")

	return &MintResult{Collection: ref.Hex(), TokenIDs: ids, BatchID: req.BatchID}, nil
}

func (s *CollectionService) GetBatch(ref common.Address, batchID string) (*BatchView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	rec, ok := coll.Batch(batchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return &BatchView{
		Collection:  ref.Hex(),
		BatchID:     rec.BatchID,
		TokenIDs:    rec.TokenIDs,
		ProcessedAt: rec.At,
	}, nil
}

func (s *CollectionService) GetToken(ref common.Address, tokenID uint64) (*TokenView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	asset, err := coll.Asset(tokenID)
	if err != nil {
		return nil, err
	}
	listing, ok, err := coll.Listing(tokenID)
	if err != nil {
		return nil, err
	}

	var lp *ledger.Listing
	if ok {
		lp = &listing
	}
	view := newTokenView(ref, asset, lp, s.decimals)
	return &view, nil
}

func (s *CollectionService) Royalty(ref common.Address, tokenID uint64, salePrice string) (*RoyaltyView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	price, err := utils.ParseAmount(salePrice)
	if err != nil {
		return nil, err
	}
	receiver, amount, err := coll.RoyaltyInfo(tokenID, price)
	if err != nil {
		return nil, err
	}
	return &RoyaltyView{
		Receiver:  receiver.Hex(),
		SalePrice: utils.NewAmountView(price, s.decimals),
		Amount:    utils.NewAmountView(amount, s.decimals),
	}, nil
}

func (s *CollectionService) List(ctx context.Context, caller, ref common.Address, tokenID uint64, req *ListTokenRequest) (*TokenView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	price, err := utils.ResolveAmount(req.Price, req.PriceDecimal, s.decimals)
	if err != nil {
		return nil, err
	}
	if err := coll.List(ctx, caller, tokenID, price); err != nil {
		return nil, err
	}
	return s.GetToken(ref, tokenID)
}

func (s *CollectionService) CancelListing(ctx context.Context, caller, ref common.Address, tokenID uint64) (*TokenView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	if err := coll.CancelListing(ctx, caller, tokenID); err != nil {
		return nil, err
	}
	return s.GetToken(ref, tokenID)
}

// Purchase settles from the buyer's vault balance.
func (s *CollectionService) Purchase(ctx context.Context, buyer, ref common.Address, tokenID uint64, req *PurchaseRequest) (*SettlementView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	payment, err := utils.ResolveAmount(req.Payment, req.PaymentDecimal, s.decimals)
	if err != nil {
		return nil, err
	}

	st, err := coll.Purchase(ctx, buyer, tokenID, payment)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"collection": ref.Hex(),
		"token_id":   tokenID,
		"buyer":      buyer.Hex(),
		"seller":     st.Seller.Hex(),
		"price":      st.Split.Price.String(),
		"receipt":    st.ReceiptHash,
	}).Info("Purchase settled")

	view := newSettlementView(*st, s.decimals)
	return &view, nil
}

func (s *CollectionService) Transfer(ctx context.Context, caller, ref common.Address, tokenID uint64, req *TransferRequest) (*TokenView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	from, to := common.HexToAddress(req.From), common.HexToAddress(req.To)
	if err := coll.Transfer(ctx, caller, from, to, tokenID); err != nil {
		return nil, err
	}
	return s.GetToken(ref, tokenID)
}

func (s *CollectionService) Holdings(ref, owner common.Address) (*HoldingsView, error) {
	coll, err := s.collection(ref)
	if err != nil {
		return nil, err
	}
	return &HoldingsView{
		Collection: ref.Hex(),
		Owner:      owner.Hex(),
		Balance:    coll.BalanceOf(owner),
		TokenIDs:   coll.TokensOf(owner),
	}, nil
}

func (s *CollectionService) Settlements(ctx context.Context, ref common.Address, params utils.PaginationParams) (utils.PaginationResult, error) {
	if s.db == nil {
		return utils.PaginationResult{}, ErrHistoryUnavailable
	}
	if _, err := s.collection(ref); err != nil {
		return utils.PaginationResult{}, err
	}
	if params.Sort == "" || params.Sort == "created_at" {
		params.Sort = "settled_at"
	}

	rows, total, err := database.SettlementHistory(ctx, s.db, ref.Hex(), params)
	if err != nil {
		return utils.PaginationResult{}, err
	}
	return utils.CreatePaginationResult(settlementViewsFromRows(rows, s.decimals), total, params), nil
}

func toIdentities(in []string) []ledger.Identity {
	out := make([]ledger.Identity, len(in))
	for i, s := range in {
		out[i] = common.HexToAddress(s)
	}
	return out
}
