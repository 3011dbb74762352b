// internal/database/journal_test.go
package database

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/utils"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	artist   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	buyer    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	gallery  = common.HexToAddress("0x00000000000000000000000000000000000000d2")
)

type JournalTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
}

func (suite *JournalTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		suite.T().Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	suite.Require().NoError(err)
	suite.Require().NoError(RunMigrations(db))
	suite.db = db
	suite.ctx = context.Background()
}

func (suite *JournalTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE artists, collections, assets, listings, batches, settlements, deposits").Error)
}

func (suite *JournalTestSuite) TearDownSuite() {
	Close(suite.db)
}

func (suite *JournalTestSuite) newLedger() (*ledger.Registry, *ledger.Vault) {
	journal := NewJournal(suite.db)
	vault := ledger.NewVault(journal, nil)
	reg, err := ledger.NewRegistry(ledger.RegistryOptions{
		Address:  common.HexToAddress("0x0000000000000000000000000000000000000f00"),
		Treasury: treasury,
		Gallery:  gallery,
		Template: ledger.Template{
			Fees:     ledger.DefaultFeeSchedule(),
			Auth:     ledger.NewRoleBook(operator),
			Payments: vault,
			Journal:  journal,
		},
	})
	suite.Require().NoError(err)
	return reg, vault
}

func (suite *JournalTestSuite) TestSnapshotRestoresLedger() {
	reg, vault := suite.newLedger()
	price := new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18))

	ref, err := reg.DeployCollection(suite.ctx, operator, artist, "Artist", ledger.CollectionConfig{Name: "A", Symbol: "A", ArtistRoyaltyBps: 1000})
	suite.Require().NoError(err)
	coll, err := reg.Collection(ref)
	suite.Require().NoError(err)

	ids, err := coll.BatchMint(suite.ctx, operator,
		[]ledger.Identity{artist, artist}, []string{"ipfs://1", "ipfs://2"},
		[]ledger.Identity{artist, artist}, []uint64{1000, 1000}, "batch-1")
	suite.Require().NoError(err)
	suite.Require().NoError(coll.List(suite.ctx, artist, ids[0], price))
	_, err = vault.Deposit(suite.ctx, "pi_test", buyer, price)
	suite.Require().NoError(err)
	_, err = coll.Purchase(suite.ctx, buyer, ids[0], price)
	suite.Require().NoError(err)

	snap, err := LoadSnapshot(suite.ctx, suite.db)
	suite.Require().NoError(err)
	suite.Len(snap.Collections, 1)
	suite.Len(snap.Settlements, 1)

	restoredReg, restoredVault := suite.newLedger()
	snap.Apply(restoredReg, restoredVault)

	restored, err := restoredReg.Collection(ref)
	suite.Require().NoError(err)
	owner, err := restored.OwnerOf(ids[0])
	suite.NoError(err)
	suite.Equal(buyer, owner)
	_, ok := restored.Batch("batch-1")
	suite.True(ok)
	suite.Equal(0, restoredVault.Balance(artist).Cmp(vault.Balance(artist)))
	suite.Equal(0, restoredVault.Balance(treasury).Cmp(vault.Balance(treasury)))

	_, err = restored.BatchMint(suite.ctx, operator, []ledger.Identity{artist}, []string{"x"}, []ledger.Identity{artist}, []uint64{0}, "batch-1")
	suite.ErrorIs(err, ledger.ErrBatchAlreadyProcessed)

	rows, total, err := SettlementHistory(suite.ctx, suite.db, ref.Hex(), utils.PaginationParams{Page: 1, Limit: 10, Sort: "settled_at", Order: "desc"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(0, rows[0].Price.Cmp(price))
}

func (suite *JournalTestSuite) TestFailedCommitWritesNothing() {
	journal := NewJournal(suite.db)
	ref := common.HexToAddress("0x0000000000000000000000000000000000000e01")
	change := &ledger.Change{
		Collection: ref,
		Assets:     []ledger.Asset{{TokenID: 1, Owner: artist, OriginalArtist: artist, RoyaltyReceiver: artist}},
		Deposit:    &ledger.Deposit{Reference: "dup", Account: buyer, Amount: big.NewInt(1)},
	}
	suite.Require().NoError(journal.Commit(suite.ctx, change))

	change.Assets[0].TokenID = 2
	suite.Error(journal.Commit(suite.ctx, change))

	var count int64
	suite.db.Table("assets").Where("collection_ref = ?", ref.Hex()).Count(&count)
	suite.Equal(int64(1), count)
}

func TestJournalTestSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}
