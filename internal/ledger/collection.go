// internal/ledger/collection.go
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"
)

// Collection is one artist's asset ledger. All mutations are serialized by mu
// and become visible only after every check passed and the journal accepted them.
type Collection struct {
	ref      Identity
	owner    Identity
	config   CollectionConfig
	fees     FeeSchedule
	auth     Authorizer
	payments PaymentMedium
	journal  Journal
	sink     EventSink
	now      func() time.Time

	mu       sync.RWMutex
	nextID   uint64
	assets   map[uint64]*Asset
	listings map[uint64]*Listing
	batches  map[string]*BatchRecord
	holdings map[Identity]map[uint64]struct{}
}

// CollectionState is the full contents of a collection, used for restore.
type CollectionState struct {
	Ref      Identity
	Owner    Identity
	Config   CollectionConfig
	Assets   []Asset
	Listings []Listing
	Batches  []BatchRecord
}

func (c *Collection) Ref() Identity { return c.ref }
func (c *Collection) Owner() Identity { return c.owner }
func (c *Collection) Config() CollectionConfig { return c.config }
func (c *Collection) Fees() FeeSchedule { return c.fees }

func (c *Collection) authorize(caller Identity, role Role) error {
	if caller != ZeroIdentity && caller == c.owner {
		return nil
	}
	return c.auth.Authorize(caller, role)
}

func validateEntry(e MintEntry) error {
	if e.To == ZeroIdentity || e.Artist == ZeroIdentity {
		return ErrInvalidRecipient
	}
	if !validRoyalty(e.RoyaltyBps) {
		return fmt.Errorf("%w: %d", ErrInvalidRoyalty, e.RoyaltyBps)
	}
	return nil
}

// Mint issues the next token to `to`.
func (c *Collection) Mint(ctx context.Context, caller, to Identity, uri string, artist Identity, royaltyBps uint64) (uint64, error) {
	if err := c.authorize(caller, RoleMinter); err != nil {
		return 0, err
	}
	entry := MintEntry{To: to, URI: uri, Artist: artist, RoyaltyBps: royaltyBps}
	if err := validateEntry(entry); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	asset := c.newAsset(c.nextID, entry)
	if err := c.journal.Commit(ctx, &Change{Collection: c.ref, Assets: []Asset{asset}}); err != nil {
		return 0, fmt.Errorf("journal mint: %w", err)
	}
	c.putAsset(asset)
	c.nextID++

	c.sink.Publish(c.mintedEvent(asset, ""))
	return asset.TokenID, nil
}

// BatchMint mints every row or none of them. batchID makes the call exactly-once.
func (c *Collection) BatchMint(ctx context.Context, caller Identity, recipients []Identity, uris []string, artists []Identity, royalties []uint64, batchID string) ([]uint64, error) {
	n := len(recipients)
	if n == 0 || len(uris) != n || len(artists) != n || len(royalties) != n {
		return nil, fmt.Errorf("%w: recipients=%d uris=%d artists=%d royalties=%d",
			ErrLengthMismatch, len(recipients), len(uris), len(artists), len(royalties))
	}
	entries := make([]MintEntry, n)
	for i := range recipients {
		entries[i] = MintEntry{To: recipients[i], URI: uris[i], Artist: artists[i], RoyaltyBps: royalties[i]}
	}
	return c.MintBatch(ctx, caller, entries, batchID)
}

func (c *Collection) MintBatch(ctx context.Context, caller Identity, entries []MintEntry, batchID string) ([]uint64, error) {
	if err := c.authorize(caller, RoleMinter); err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, ErrMissingBatchID
	}
	if len(entries) == 0 {
		return nil, ErrLengthMismatch
	}
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("batch %s entry %d: %w", batchID, i, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.batches[batchID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchAlreadyProcessed, batchID)
	}

	assets := make([]Asset, len(entries))
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		assets[i] = c.newAsset(c.nextID+uint64(i), e)
		ids[i] = assets[i].TokenID
	}
	record := BatchRecord{BatchID: batchID, TokenIDs: ids, At: c.now()}

	if err := c.journal.Commit(ctx, &Change{Collection: c.ref, Assets: assets, Batch: &record}); err != nil {
		return nil, fmt.Errorf("journal batch %s: %w", batchID, err)
	}
	for _, a := range assets {
		c.putAsset(a)
	}
	c.nextID += uint64(len(assets))
	c.batches[batchID] = &record

	for _, a := range assets {
		c.sink.Publish(c.mintedEvent(a, batchID))
	}
	ev := newEvent(EventBatchProcessed, c.ref, record.At)
	ev.BatchID = batchID
	ev.TokenIDs = append([]uint64(nil), ids...)
	c.sink.Publish(ev)

	return append([]uint64(nil), ids...), nil
}

// List creates or overwrites the owner's standing offer for tokenID.
func (c *Collection) List(ctx context.Context, caller Identity, tokenID uint64, price *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assets[tokenID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	if caller != asset.Owner {
		return fmt.Errorf("%w: token %d", ErrNotOwner, tokenID)
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidPrice
	}

	listing := Listing{TokenID: tokenID, Seller: caller, Price: new(big.Int).Set(price), Active: true}
	if err := c.journal.Commit(ctx, &Change{Collection: c.ref, Listing: &listing}); err != nil {
		return fmt.Errorf("journal listing: %w", err)
	}
	c.listings[tokenID] = &listing

	ev := newEvent(EventAssetListed, c.ref, c.now())
	ev.TokenID = tokenID
	ev.From = caller
	ev.Price = new(big.Int).Set(price)
	c.sink.Publish(ev)
	return nil
}

func (c *Collection) CancelListing(ctx context.Context, caller Identity, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assets[tokenID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	if caller != asset.Owner {
		return fmt.Errorf("%w: token %d", ErrNotOwner, tokenID)
	}
	listing := c.activeListing(asset)
	if listing == nil {
		return fmt.Errorf("%w: token %d", ErrNotListed, tokenID)
	}

	closed := listing.clone()
	closed.Active = false
	if err := c.journal.Commit(ctx, &Change{Collection: c.ref, Listing: &closed}); err != nil {
		return fmt.Errorf("journal cancel listing: %w", err)
	}
	c.listings[tokenID] = &closed

	ev := newEvent(EventListingCancelled, c.ref, c.now())
	ev.TokenID = tokenID
	ev.From = caller
	c.sink.Publish(ev)
	return nil
}

// Purchase settles an active listing: the payment is split between treasury,
// gallery and seller, and ownership moves to buyer, all or nothing.
func (c *Collection) Purchase(ctx context.Context, buyer Identity, tokenID uint64, payment *big.Int) (*Settlement, error) {
	if buyer == ZeroIdentity {
		return nil, ErrInvalidRecipient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assets[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	listing := c.activeListing(asset)
	if listing == nil {
		return nil, fmt.Errorf("%w: token %d", ErrNotListed, tokenID)
	}
	if payment == nil || payment.Cmp(listing.Price) != 0 {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongPayment, balanceString(payment), listing.Price)
	}

	split, err := c.fees.Split(listing.Price)
	if err != nil {
		return nil, err
	}
	seller := asset.Owner
	transfer, err := c.payments.Prepare(ctx, buyer, split.Price, []Payout{
		{To: c.config.Treasury, Amount: split.PlatformAmount},
		{To: c.config.GalleryWallet, Amount: split.GalleryAmount},
		{To: seller, Amount: split.SellerAmount},
	})
	if err != nil {
		return nil, fmt.Errorf("settle token %d: %w", tokenID, err)
	}

	settlement := Settlement{
		Collection: c.ref,
		TokenID:    tokenID,
		Seller:     seller,
		Buyer:      buyer,
		Treasury:   c.config.Treasury,
		Gallery:    c.config.GalleryWallet,
		Split:      split,
		At:         c.now(),
	}
	settlement.ReceiptHash = receiptHash(&settlement)

	moved := *asset
	moved.Owner = buyer
	closed := listing.clone()
	closed.Active = false

	change := &Change{Collection: c.ref, Assets: []Asset{moved}, Listing: &closed, Settlement: &settlement}
	if err := c.journal.Commit(ctx, change); err != nil {
		transfer.Abort()
		return nil, fmt.Errorf("journal purchase: %w", err)
	}
	transfer.Commit()

	c.putAsset(moved)
	c.listings[tokenID] = &closed

	ev := newEvent(EventAssetPurchased, c.ref, settlement.At)
	ev.TokenID = tokenID
	ev.From = seller
	ev.To = buyer
	ev.Price = new(big.Int).Set(split.Price)
	out := settlement
	out.Split = split.clone()
	ev.Settlement = &out
	c.sink.Publish(ev)

	result := settlement
	result.Split = split.clone()
	return &result, nil
}

// Transfer moves tokenID from its owner without payment. Any open listing is
// closed so it can never be honored for the new owner.
func (c *Collection) Transfer(ctx context.Context, caller, from, to Identity, tokenID uint64) error {
	if to == ZeroIdentity {
		return ErrInvalidRecipient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assets[tokenID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	if asset.Owner != from || caller != from {
		return fmt.Errorf("%w: token %d", ErrNotOwner, tokenID)
	}

	moved := *asset
	moved.Owner = to
	change := &Change{Collection: c.ref, Assets: []Asset{moved}}
	if l, ok := c.listings[tokenID]; ok && l.Active {
		closed := l.clone()
		closed.Active = false
		change.Listing = &closed
	}
	if err := c.journal.Commit(ctx, change); err != nil {
		return fmt.Errorf("journal transfer: %w", err)
	}
	c.putAsset(moved)
	if change.Listing != nil {
		c.listings[tokenID] = change.Listing
	}

	ev := newEvent(EventAssetTransferred, c.ref, c.now())
	ev.TokenID = tokenID
	ev.From = from
	ev.To = to
	c.sink.Publish(ev)
	return nil
}

func (c *Collection) Asset(tokenID uint64) (Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.assets[tokenID]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	return *a, nil
}

func (c *Collection) OwnerOf(tokenID uint64) (Identity, error) {
	a, err := c.Asset(tokenID)
	return a.Owner, err
}

func (c *Collection) TokenURI(tokenID uint64) (string, error) {
	a, err := c.Asset(tokenID)
	return a.URI, err
}

// IsSold is derived from ownership and never stored.
func (c *Collection) IsSold(tokenID uint64) (bool, error) {
	a, err := c.Asset(tokenID)
	if err != nil {
		return false, err
	}
	return a.Sold(), nil
}

// RoyaltyInfo is advisory EIP-2981 style metadata for external marketplaces.
func (c *Collection) RoyaltyInfo(tokenID uint64, salePrice *big.Int) (Identity, *big.Int, error) {
	a, err := c.Asset(tokenID)
	if err != nil {
		return ZeroIdentity, nil, err
	}
	return a.RoyaltyReceiver, RoyaltyAmount(salePrice, a.RoyaltyBps), nil
}

// Listing returns the last listing recorded for tokenID, active or not.
func (c *Collection) Listing(tokenID uint64) (Listing, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.assets[tokenID]; !ok {
		return Listing{}, false, fmt.Errorf("%w: %d", ErrUnknownAsset, tokenID)
	}
	l, ok := c.listings[tokenID]
	if !ok {
		return Listing{}, false, nil
	}
	return l.clone(), true, nil
}

func (c *Collection) Batch(batchID string) (BatchRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.batches[batchID]
	if !ok {
		return BatchRecord{}, false
	}
	out := *b
	out.TokenIDs = append([]uint64(nil), b.TokenIDs...)
	return out, true
}

func (c *Collection) BalanceOf(owner Identity) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return uint64(len(c.holdings[owner]))
}

func (c *Collection) TokensOf(owner Identity) []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]uint64, 0, len(c.holdings[owner]))
	for id := range c.holdings[owner] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Collection) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return uint64(len(c.assets))
}

func (c *Collection) State() CollectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := CollectionState{Ref: c.ref, Owner: c.owner, Config: c.config}
	for id := uint64(1); id < c.nextID; id++ {
		if a, ok := c.assets[id]; ok {
			st.Assets = append(st.Assets, *a)
		}
		if l, ok := c.listings[id]; ok {
			st.Listings = append(st.Listings, l.clone())
		}
	}
	for _, b := range c.batches {
		st.Batches = append(st.Batches, *b)
	}
	sort.Slice(st.Batches, func(i, j int) bool { return st.Batches[i].BatchID < st.Batches[j].BatchID })
	return st
}

func (c *Collection) restore(st CollectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range st.Assets {
		c.putAsset(a)
		if a.TokenID >= c.nextID {
			c.nextID = a.TokenID + 1
		}
	}
	for _, l := range st.Listings {
		l := l.clone()
		c.listings[l.TokenID] = &l
	}
	for _, b := range st.Batches {
		b := b
		c.batches[b.BatchID] = &b
	}
}

// activeListing returns the listing only if it is active and was made by the
// current owner.
func (c *Collection) activeListing(asset *Asset) *Listing {
	l, ok := c.listings[asset.TokenID]
	if !ok || !l.Active || l.Seller != asset.Owner {
		return nil
	}
	return l
}

func (c *Collection) newAsset(id uint64, e MintEntry) Asset {
	return Asset{
		TokenID:         id,
		Owner:           e.To,
		OriginalArtist:  e.Artist,
		URI:             e.URI,
		RoyaltyReceiver: e.Artist,
		RoyaltyBps:      e.RoyaltyBps,
	}
}

func (c *Collection) putAsset(a Asset) {
	if prev, ok := c.assets[a.TokenID]; ok {
		delete(c.holdings[prev.Owner], a.TokenID)
		if len(c.holdings[prev.Owner]) == 0 {
			delete(c.holdings, prev.Owner)
		}
	}
	stored := a
	c.assets[a.TokenID] = &stored
	if c.holdings[a.Owner] == nil {
		c.holdings[a.Owner] = make(map[uint64]struct{})
	}
	c.holdings[a.Owner][a.TokenID] = struct{}{}
}

func (c *Collection) mintedEvent(a Asset, batchID string) Event {
	ev := newEvent(EventAssetMinted, c.ref, c.now())
	ev.TokenID = a.TokenID
	ev.To = a.Owner
	ev.Artist = a.OriginalArtist
	ev.URI = a.URI
	ev.BatchID = batchID
	return ev
}
