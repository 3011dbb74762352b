// internal/ledger/collection_test.go
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CollectionTestSuite struct {
	suite.Suite
	ctx context.Context
	f   *fixture
}

func (s *CollectionTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture(s.T())
}

func (s *CollectionTestSuite) mint(to Identity) uint64 {
	id, err := s.f.coll.Mint(s.ctx, operator, to, "ipfs://token", artistA, 1000)
	s.Require().NoError(err)
	return id
}

func (s *CollectionTestSuite) TestMintAssignsSequentialIDs() {
	for want := uint64(1); want <= 3; want++ {
		id, err := s.f.coll.Mint(s.ctx, operator, artistA, fmt.Sprintf("ipfs://%d", want), artistA, 1000)
		s.Require().NoError(err)
		s.Equal(want, id)
	}
	s.Equal(uint64(3), s.f.coll.TotalSupply())
	s.Equal([]uint64{1, 2, 3}, s.f.coll.TokensOf(artistA))

	uri, err := s.f.coll.TokenURI(2)
	s.NoError(err)
	s.Equal("ipfs://2", uri)
}

func (s *CollectionTestSuite) TestMintRecordsProvenance() {
	id, err := s.f.coll.Mint(s.ctx, minter, buyerB, "ipfs://x", artistA, 250)
	s.Require().NoError(err)

	asset, err := s.f.coll.Asset(id)
	s.Require().NoError(err)
	s.Equal(buyerB, asset.Owner)
	s.Equal(artistA, asset.OriginalArtist)
	s.Equal(artistA, asset.RoyaltyReceiver)
	s.Equal(uint64(250), asset.RoyaltyBps)

	ev := s.f.sink.last()
	s.Equal(EventAssetMinted, ev.Kind)
	s.Equal(id, ev.TokenID)
	s.Equal(s.f.ref, ev.Collection)
}

func (s *CollectionTestSuite) TestMintRejections() {
	_, err := s.f.coll.Mint(s.ctx, stranger, artistA, "ipfs://x", artistA, 1000)
	s.ErrorIs(err, ErrUnauthorized)

	_, err = s.f.coll.Mint(s.ctx, operator, artistA, "ipfs://x", artistA, 10001)
	s.ErrorIs(err, ErrInvalidRoyalty)

	_, err = s.f.coll.Mint(s.ctx, operator, ZeroIdentity, "ipfs://x", artistA, 1000)
	s.ErrorIs(err, ErrInvalidRecipient)

	s.Equal(uint64(0), s.f.coll.TotalSupply())

	id, err := s.f.coll.Mint(s.ctx, operator, artistA, "ipfs://x", artistA, 10000)
	s.NoError(err)
	s.Equal(uint64(1), id)
}

func (s *CollectionTestSuite) TestMintJournalFailureLeavesNoGap() {
	s.f.journal.setFail(true)
	_, err := s.f.coll.Mint(s.ctx, operator, artistA, "ipfs://x", artistA, 0)
	s.ErrorIs(err, errJournalDown)
	s.f.journal.setFail(false)

	s.Equal(uint64(1), s.mint(artistA))
}

func (s *CollectionTestSuite) TestBatchMintIsIdempotent() {
	recipients := []Identity{artistA, artistC, buyerB}
	uris := []string{"ipfs://a", "ipfs://b", "ipfs://c"}
	artists := []Identity{artistA, artistC, artistA}
	royalties := []uint64{1000, 500, 0}

	ids, err := s.f.coll.BatchMint(s.ctx, operator, recipients, uris, artists, royalties, "batch-1")
	s.Require().NoError(err)
	s.Equal([]uint64{1, 2, 3}, ids)

	_, err = s.f.coll.BatchMint(s.ctx, operator, recipients, uris, artists, royalties, "batch-1")
	s.ErrorIs(err, ErrBatchAlreadyProcessed)
	s.True(IsIdempotencyViolation(err))
	s.Equal(uint64(3), s.f.coll.TotalSupply())

	rec, ok := s.f.coll.Batch("batch-1")
	s.Require().True(ok)
	s.Equal(ids, rec.TokenIDs)

	kinds := s.f.sink.kinds()
	s.Equal([]EventKind{EventAssetMinted, EventAssetMinted, EventAssetMinted, EventBatchProcessed}, kinds[len(kinds)-4:])
}

func (s *CollectionTestSuite) TestBatchMintIsAtomic() {
	_, err := s.f.coll.BatchMint(s.ctx, operator,
		[]Identity{artistA, artistA}, []string{"ipfs://a"}, []Identity{artistA, artistA}, []uint64{0, 0}, "short")
	s.ErrorIs(err, ErrLengthMismatch)

	_, err = s.f.coll.BatchMint(s.ctx, operator,
		[]Identity{artistA, artistA, artistA}, []string{"a", "b", "c"},
		[]Identity{artistA, artistA, artistA}, []uint64{0, 10001, 0}, "bad-royalty")
	s.ErrorIs(err, ErrInvalidRoyalty)
	s.Contains(err.Error(), "entry 1")

	_, err = s.f.coll.BatchMint(s.ctx, operator, nil, nil, nil, nil, "empty")
	s.ErrorIs(err, ErrLengthMismatch)

	_, err = s.f.coll.BatchMint(s.ctx, operator, []Identity{artistA}, []string{"a"}, []Identity{artistA}, []uint64{0}, "")
	s.ErrorIs(err, ErrMissingBatchID)

	s.f.journal.setFail(true)
	_, err = s.f.coll.BatchMint(s.ctx, operator, []Identity{artistA}, []string{"a"}, []Identity{artistA}, []uint64{0}, "journal")
	s.ErrorIs(err, errJournalDown)
	s.f.journal.setFail(false)

	s.Equal(uint64(0), s.f.coll.TotalSupply())
	_, ok := s.f.coll.Batch("bad-royalty")
	s.False(ok)
	_, ok = s.f.coll.Batch("journal")
	s.False(ok)

	// a failed batch id stays usable
	ids, err := s.f.coll.BatchMint(s.ctx, operator, []Identity{artistA}, []string{"a"}, []Identity{artistA}, []uint64{0}, "journal")
	s.NoError(err)
	s.Equal([]uint64{1}, ids)
}

func (s *CollectionTestSuite) TestBatchMintRequiresMinter() {
	_, err := s.f.coll.BatchMint(s.ctx, artistA, []Identity{artistA}, []string{"a"}, []Identity{artistA}, []uint64{0}, "b")
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *CollectionTestSuite) TestListToken() {
	id := s.mint(artistA)

	err := s.f.coll.List(s.ctx, stranger, id, ether(1))
	s.ErrorIs(err, ErrNotOwner)
	_, found, err := s.f.coll.Listing(id)
	s.NoError(err)
	s.False(found)

	s.ErrorIs(s.f.coll.List(s.ctx, artistA, id, big.NewInt(0)), ErrInvalidPrice)
	s.ErrorIs(s.f.coll.List(s.ctx, artistA, 99, ether(1)), ErrUnknownAsset)

	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(2)))

	l, found, err := s.f.coll.Listing(id)
	s.Require().NoError(err)
	s.True(found)
	s.True(l.Active)
	s.Equal(0, l.Price.Cmp(ether(2)))
	s.Equal(EventAssetListed, s.f.sink.last().Kind)
}

func (s *CollectionTestSuite) TestCancelListing() {
	id := s.mint(artistA)
	s.ErrorIs(s.f.coll.CancelListing(s.ctx, artistA, id), ErrNotListed)

	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.ErrorIs(s.f.coll.CancelListing(s.ctx, stranger, id), ErrNotOwner)
	s.Require().NoError(s.f.coll.CancelListing(s.ctx, artistA, id))

	s.f.fund(s.T(), buyerB, ether(1))
	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.ErrorIs(err, ErrNotListed)
}

func (s *CollectionTestSuite) TestPrimarySaleScenario() {
	id := s.mint(artistA)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(1))

	sold, err := s.f.coll.IsSold(id)
	s.Require().NoError(err)
	s.False(sold)

	settlement, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.Require().NoError(err)

	s.Equal(0, s.f.vault.Balance(treasury).Cmp(milliEther(100)))
	s.Equal(0, s.f.vault.Balance(gallery).Cmp(milliEther(50)))
	s.Equal(0, s.f.vault.Balance(artistA).Cmp(milliEther(850)))
	s.Equal(0, s.f.vault.Balance(buyerB).Sign())

	owner, err := s.f.coll.OwnerOf(id)
	s.NoError(err)
	s.Equal(buyerB, owner)
	sold, err = s.f.coll.IsSold(id)
	s.NoError(err)
	s.True(sold)

	s.Equal(artistA, settlement.Seller)
	s.Equal(buyerB, settlement.Buyer)
	s.NotEmpty(settlement.ReceiptHash)

	l, _, err := s.f.coll.Listing(id)
	s.NoError(err)
	s.False(l.Active)

	ev := s.f.sink.last()
	s.Equal(EventAssetPurchased, ev.Kind)
	s.Require().NotNil(ev.Settlement)
	s.Equal(0, ev.Settlement.Split.GalleryAmount.Cmp(milliEther(50)))
}

func (s *CollectionTestSuite) TestRoyaltyInfoIsFixedAtMint() {
	id := s.mint(artistA)

	receiver, amount, err := s.f.coll.RoyaltyInfo(id, ether(1))
	s.Require().NoError(err)
	s.Equal(artistA, receiver)
	s.Equal(0, amount.Cmp(milliEther(100)))

	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(1))
	_, err = s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.Require().NoError(err)

	receiver, amount, err = s.f.coll.RoyaltyInfo(id, ether(1))
	s.Require().NoError(err)
	s.Equal(artistA, receiver)
	s.Equal(0, amount.Cmp(milliEther(100)))

	_, _, err = s.f.coll.RoyaltyInfo(42, ether(1))
	s.ErrorIs(err, ErrUnknownAsset)
}

func (s *CollectionTestSuite) TestSecondarySaleDoesNotDeductRoyalty() {
	id := s.mint(artistA)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(1))
	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.Require().NoError(err)

	s.Require().NoError(s.f.coll.List(s.ctx, buyerB, id, ether(2)))
	s.f.fund(s.T(), stranger, ether(2))
	settlement, err := s.f.coll.Purchase(s.ctx, stranger, id, ether(2))
	s.Require().NoError(err)

	s.Equal(buyerB, settlement.Seller)
	s.Equal(0, s.f.vault.Balance(buyerB).Cmp(milliEther(1700)))
	s.Equal(0, s.f.vault.Balance(artistA).Cmp(milliEther(850)))
}

func (s *CollectionTestSuite) TestPurchaseRejections() {
	id := s.mint(artistA)

	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.ErrorIs(err, ErrNotListed)
	_, err = s.f.coll.Purchase(s.ctx, buyerB, 7, ether(1))
	s.ErrorIs(err, ErrUnknownAsset)

	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(2))

	_, err = s.f.coll.Purchase(s.ctx, buyerB, id, ether(2))
	s.ErrorIs(err, ErrWrongPayment)
	_, err = s.f.coll.Purchase(s.ctx, buyerB, id, milliEther(999))
	s.ErrorIs(err, ErrWrongPayment)

	_, err = s.f.coll.Purchase(s.ctx, stranger, id, ether(1))
	s.ErrorIs(err, ErrInsufficientFunds)

	owner, _ := s.f.coll.OwnerOf(id)
	s.Equal(artistA, owner)
	s.Equal(0, s.f.vault.Balance(buyerB).Cmp(ether(2)))
}

func (s *CollectionTestSuite) TestRejectedPayoutAbortsPurchase() {
	id := s.mint(artistA)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(1))

	s.f.vault.SetRejecting(gallery, true)
	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.ErrorIs(err, ErrPayoutRejected)

	owner, _ := s.f.coll.OwnerOf(id)
	s.Equal(artistA, owner)
	s.Equal(0, s.f.vault.Balance(buyerB).Cmp(ether(1)))
	s.Equal(0, s.f.vault.Balance(treasury).Sign())

	l, _, _ := s.f.coll.Listing(id)
	s.True(l.Active)
}

func (s *CollectionTestSuite) TestJournalFailureRefundsBuyer() {
	id := s.mint(artistA)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))
	s.f.fund(s.T(), buyerB, ether(1))

	s.f.journal.setFail(true)
	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.ErrorIs(err, errJournalDown)
	s.f.journal.setFail(false)

	s.Equal(0, s.f.vault.Balance(buyerB).Cmp(ether(1)))
	s.Equal(0, s.f.vault.Balance(artistA).Sign())
	owner, _ := s.f.coll.OwnerOf(id)
	s.Equal(artistA, owner)
}

func (s *CollectionTestSuite) TestTransferInvalidatesListing() {
	id := s.mint(artistA)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(1)))

	s.ErrorIs(s.f.coll.Transfer(s.ctx, stranger, artistA, stranger, id), ErrNotOwner)
	s.ErrorIs(s.f.coll.Transfer(s.ctx, artistA, artistA, ZeroIdentity, id), ErrInvalidRecipient)
	s.Require().NoError(s.f.coll.Transfer(s.ctx, artistA, artistA, artistC, id))

	s.Equal(uint64(0), s.f.coll.BalanceOf(artistA))
	s.Equal(uint64(1), s.f.coll.BalanceOf(artistC))

	s.f.fund(s.T(), buyerB, ether(1))
	_, err := s.f.coll.Purchase(s.ctx, buyerB, id, ether(1))
	s.ErrorIs(err, ErrNotListed)

	sold, _ := s.f.coll.IsSold(id)
	s.True(sold)
}

func (s *CollectionTestSuite) TestStateRoundTripsThroughRestore() {
	id := s.mint(artistA)
	_, err := s.f.coll.BatchMint(s.ctx, operator, []Identity{artistC}, []string{"x"}, []Identity{artistC}, []uint64{5}, "b1")
	s.Require().NoError(err)
	s.Require().NoError(s.f.coll.List(s.ctx, artistA, id, ether(3)))

	st := s.f.coll.State()
	rec, ok := s.f.registry.GetArtistRecord(artistA)
	s.Require().True(ok)

	other := newFixture(s.T())
	other.registry.Restore(rec, st)
	restored, err := other.registry.Collection(s.f.ref)
	s.Require().NoError(err)

	s.Equal(uint64(2), restored.TotalSupply())
	_, ok = restored.Batch("b1")
	s.True(ok)
	l, found, err := restored.Listing(id)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(0, l.Price.Cmp(ether(3)))

	next, err := restored.Mint(s.ctx, operator, artistA, "y", artistA, 0)
	s.NoError(err)
	s.Equal(uint64(3), next)
}

func TestCollectionTestSuite(t *testing.T) {
	suite.Run(t, new(CollectionTestSuite))
}

func TestConcurrentMintsStayContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if i%5 == 0 {
					_, err := f.coll.BatchMint(ctx, operator,
						[]Identity{artistA, artistC}, []string{"a", "b"},
						[]Identity{artistA, artistC}, []uint64{0, 0}, fmt.Sprintf("w%d-%d", w, i))
					assert.NoError(t, err)
					continue
				}
				_, err := f.coll.Mint(ctx, minter, artistA, "u", artistA, 100)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	// 5 batches of 2 and 20 single mints per worker
	total := uint64(workers * (perWorker + perWorker/5))
	require.Equal(t, total, f.coll.TotalSupply())
	for id := uint64(1); id <= total; id++ {
		_, err := f.coll.Asset(id)
		require.NoError(t, err, "token %d", id)
	}
	_, err := f.coll.Asset(total + 1)
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestConcurrentBuyersSettleOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.coll.Mint(ctx, operator, artistA, "u", artistA, 0)
	require.NoError(t, err)
	require.NoError(t, f.coll.List(ctx, artistA, id, ether(1)))

	buyers := []Identity{buyerB, stranger, artistC}
	for _, b := range buyers {
		f.fund(t, b, ether(1))
	}

	var wg sync.WaitGroup
	results := make([]error, len(buyers))
	for i, b := range buyers {
		wg.Add(1)
		go func(i int, b Identity) {
			defer wg.Done()
			_, results[i] = f.coll.Purchase(ctx, b, id, ether(1))
		}(i, b)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrNotListed)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 0, f.vault.Balance(artistA).Cmp(milliEther(850)))
}
