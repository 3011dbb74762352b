// internal/services/registry_service.go
package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/utils"
)

type RegistryService struct {
	registry *ledger.Registry
	config   *config.Config
}

type DeployCollectionRequest struct {
	ArtistAddress    string  `json:"artist_address" validate:"required,eth_addr"`
	ArtistName       string  `json:"artist_name" validate:"required,max=255"`
	Name             string  `json:"name" validate:"required,max=255"`
	Symbol           string  `json:"symbol" validate:"required,max=32"`
	Treasury         string  `json:"treasury,omitempty" validate:"omitempty,eth_addr"`
	GalleryWallet    string  `json:"gallery_wallet,omitempty" validate:"omitempty,eth_addr"`
	ArtistRoyaltyBps *uint64 `json:"artist_royalty_bps,omitempty"`
}

type RegistryInfo struct {
	Address        string `json:"address"`
	Implementation string `json:"implementation"`
	Treasury       string `json:"treasury"`
	GalleryWallet  string `json:"gallery_wallet"`
	PlatformFeeBps uint64 `json:"platform_fee_bps"`
	GalleryFeeBps  uint64 `json:"gallery_fee_bps"`
	Collections    int    `json:"collections"`
}

func NewRegistryService(registry *ledger.Registry, config *config.Config) *RegistryService {
	return &RegistryService{
		registry: registry,
		config:   config,
	}
}

func (s *RegistryService) Info() RegistryInfo {
	fees := s.registry.Fees()
	return RegistryInfo{
		Address:        s.registry.Address().Hex(),
		Implementation: s.registry.Implementation(),
		Treasury:       s.registry.Treasury().Hex(),
		GalleryWallet:  s.registry.GalleryWallet().Hex(),
		PlatformFeeBps: fees.PlatformFeeBps,
		GalleryFeeBps:  fees.GalleryFeeBps,
		Collections:    len(s.registry.ArtistRecords()),
	}
}

func (s *RegistryService) DeployCollection(ctx context.Context, caller common.Address, req *DeployCollectionRequest) (*CollectionView, error) {
	royalty := s.config.Ledger.DefaultRoyaltyBps
	if req.ArtistRoyaltyBps != nil {
		royalty = *req.ArtistRoyaltyBps
	}
	cfg := ledger.CollectionConfig{
		Name:             req.Name,
		Symbol:           req.Symbol,
		ArtistRoyaltyBps: royalty,
	}
	if req.Treasury != "" {
		cfg.Treasury = common.HexToAddress(req.Treasury)
	}
	if req.GalleryWallet != "" {
		cfg.GalleryWallet = common.HexToAddress(req.GalleryWallet)
	}

	artist := common.HexToAddress(req.ArtistAddress)
	ref, err := s.registry.DeployCollection(ctx, caller, artist, req.ArtistName, cfg)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"artist":     artist.Hex(),
		"collection": ref.Hex(),
		"operator":   caller.Hex(),
	}).Info("Collection deployed")

	return s.GetCollection(ref)
}

func (s *RegistryService) GetCollection(ref common.Address) (*CollectionView, error) {
	c, err := s.registry.Collection(ref)
	if err != nil {
		return nil, err
	}
	artist, _ := s.registry.ArtistForCollection(ref)
	view := newCollectionView(c, artist)
	return &view, nil
}

func (s *RegistryService) ListCollections(params utils.PaginationParams) (utils.PaginationResult, error) {
	records := s.registry.ArtistRecords()
	if params.Order == "desc" {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	page, total := utils.PaginateSlice(records, params)

	views := make([]CollectionView, 0, len(page))
	for _, rec := range page {
		c, err := s.registry.Collection(rec.CollectionRef)
		if err != nil {
			return utils.PaginationResult{}, fmt.Errorf("registry lists %s: %w", rec.CollectionRef.Hex(), err)
		}
		views = append(views, newCollectionView(c, rec))
	}
	return utils.CreatePaginationResult(views, total, params), nil
}

func (s *RegistryService) GetArtistRecord(artist common.Address) (*ledger.ArtistRecord, error) {
	rec, ok := s.registry.GetArtistRecord(artist)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtistNotFound, artist.Hex())
	}
	return &rec, nil
}
