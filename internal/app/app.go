// internal/app/app.go

// Package app wires configuration, storage and the ledger into one process.
package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/database"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/router"
	"github.com/javajoker/digital-original/internal/services"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Roles    *ledger.RoleBook
	Vault    *ledger.Vault
	Registry *ledger.Registry
	Events   *services.EventService
}

// New connects the database when enabled, migrates it and rebuilds the ledger
// from the journal. With the database disabled the ledger starts empty.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Database.Enabled {
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db); err != nil {
			database.Close(db)
			return nil, err
		}
		a.DB = db
	} else {
		logrus.Warn("Database disabled, ledger state is kept in memory only")
	}

	a.Roles = NewRoleBook(cfg.Ledger)

	var storage *services.StorageService
	if cfg.Events.ArchiveEnabled {
		s, err := services.NewStorageService(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		storage = s
	}
	a.Events = services.NewEventService(storage, a.DB, cfg.Events)

	journal := ledger.NopJournal
	if a.DB != nil {
		journal = database.NewJournal(a.DB)
	}

	a.Vault = ledger.NewVault(journal, a.Events)
	registry, err := ledger.NewRegistry(ledger.RegistryOptions{
		Address:  common.HexToAddress(cfg.Ledger.RegistryAddress),
		Treasury: optionalAddress(cfg.Ledger.Treasury),
		Gallery:  optionalAddress(cfg.Ledger.GalleryWallet),
		Template: ledger.Template{
			ID: cfg.Ledger.ImplementationID,
			Fees: ledger.FeeSchedule{
				PlatformFeeBps: cfg.Ledger.PlatformFeeBps,
				GalleryFeeBps:  cfg.Ledger.GalleryFeeBps,
			},
			Auth:     a.Roles,
			Payments: a.Vault,
			Journal:  journal,
			Sink:     a.Events,
		},
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}
	a.Registry = registry

	if a.DB != nil {
		snap, err := database.LoadSnapshot(ctx, a.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		snap.Apply(a.Registry, a.Vault)
	}

	return a, nil
}

// NewRoleBook grants the configured operators and minters.
func NewRoleBook(cfg config.LedgerConfig) *ledger.RoleBook {
	roles := ledger.NewRoleBook()
	for _, op := range cfg.Operators {
		roles.Grant(common.HexToAddress(op), ledger.RoleOperator)
	}
	for _, m := range cfg.Minters {
		roles.Grant(common.HexToAddress(m), ledger.RoleMinter)
	}
	return roles
}

func (a *App) Router() (*gin.Engine, error) {
	return router.Initialize(a.DB, a.Config, router.Ledger{
		Registry: a.Registry,
		Vault:    a.Vault,
		Roles:    a.Roles,
	})
}

func (a *App) Close() {
	database.Close(a.DB)
}

func optionalAddress(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}
