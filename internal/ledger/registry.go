// internal/ledger/registry.go
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Template is the behaviour every deployed collection shares. Each collection
// built from it owns its own state.
type Template struct {
	ID       string
	Fees     FeeSchedule
	Auth     Authorizer
	Payments PaymentMedium
	Journal  Journal
	Sink     EventSink
	Now      func() time.Time
}

func (t Template) instantiate(ref, owner Identity, cfg CollectionConfig) *Collection {
	return &Collection{
		ref:      ref,
		owner:    owner,
		config:   cfg,
		fees:     t.Fees,
		auth:     t.Auth,
		payments: t.Payments,
		journal:  t.Journal,
		sink:     t.Sink,
		now:      t.Now,
		nextID:   1,
		assets:   make(map[uint64]*Asset),
		listings: make(map[uint64]*Listing),
		batches:  make(map[string]*BatchRecord),
		holdings: make(map[Identity]map[uint64]struct{}),
	}
}

type RegistryOptions struct {
	// Address seeds collection references.
	Address  Identity
	Treasury Identity
	Gallery  Identity
	Template Template
}

// Registry binds each artist to exactly one collection.
type Registry struct {
	address  Identity
	treasury Identity
	gallery  Identity
	template Template

	mu          sync.RWMutex
	nonce       uint64
	artists     map[Identity]ArtistRecord
	collections map[Identity]*Collection
	order       []Identity
}

func NewRegistry(opts RegistryOptions) (*Registry, error) {
	t := opts.Template
	if t.Auth == nil {
		return nil, fmt.Errorf("%w: authorizer is required", ErrInvalidConfig)
	}
	if t.Payments == nil {
		return nil, fmt.Errorf("%w: payment medium is required", ErrInvalidConfig)
	}
	if err := t.Fees.Validate(); err != nil {
		return nil, err
	}
	if t.Journal == nil {
		t.Journal = NopJournal
	}
	if t.Sink == nil {
		t.Sink = Fanout{}
	}
	if t.Now == nil {
		t.Now = time.Now
	}
	if t.ID == "" {
		t.ID = "collection-v1"
	}

	return &Registry{
		address:     opts.Address,
		treasury:    opts.Treasury,
		gallery:     opts.Gallery,
		template:    t,
		artists:     make(map[Identity]ArtistRecord),
		collections: make(map[Identity]*Collection),
	}, nil
}

func (r *Registry) Address() Identity { return r.address }
func (r *Registry) Implementation() string { return r.template.ID }
func (r *Registry) Treasury() Identity { return r.treasury }
func (r *Registry) GalleryWallet() Identity { return r.gallery }
func (r *Registry) Fees() FeeSchedule { return r.template.Fees }

// DeployCollection creates the artist's collection. A zero treasury or gallery
// in cfg falls back to the registry defaults.
func (r *Registry) DeployCollection(ctx context.Context, caller, artist Identity, artistName string, cfg CollectionConfig) (Identity, error) {
	if err := r.template.Auth.Authorize(caller, RoleOperator); err != nil {
		return ZeroIdentity, err
	}
	if artist == ZeroIdentity {
		return ZeroIdentity, fmt.Errorf("%w: artist address is zero", ErrInvalidConfig)
	}
	if !validRoyalty(cfg.ArtistRoyaltyBps) {
		return ZeroIdentity, fmt.Errorf("%w: royalty %d bps", ErrInvalidConfig, cfg.ArtistRoyaltyBps)
	}
	if cfg.Treasury == ZeroIdentity {
		cfg.Treasury = r.treasury
	}
	if cfg.GalleryWallet == ZeroIdentity {
		cfg.GalleryWallet = r.gallery
	}
	if cfg.Treasury == ZeroIdentity || cfg.GalleryWallet == ZeroIdentity {
		return ZeroIdentity, fmt.Errorf("%w: treasury and gallery wallet are required", ErrInvalidConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.artists[artist]; ok {
		return ZeroIdentity, fmt.Errorf("%w: %s -> %s", ErrAlreadyRegistered, artist.Hex(), rec.CollectionRef.Hex())
	}

	ref := cloneAddress(r.address, artist, r.nonce+1)
	rec := ArtistRecord{ArtistAddress: artist, CollectionRef: ref, ArtistName: artistName}
	change := &Change{Collection: ref, Artist: &rec, Config: &cfg, Owner: caller}
	if err := r.template.Journal.Commit(ctx, change); err != nil {
		return ZeroIdentity, fmt.Errorf("journal deploy: %w", err)
	}

	r.nonce++
	r.artists[artist] = rec
	r.collections[ref] = r.template.instantiate(ref, caller, cfg)
	r.order = append(r.order, ref)

	ev := newEvent(EventCollectionCreated, ref, r.template.Now())
	ev.Artist = artist
	ev.ArtistName = artistName
	r.template.Sink.Publish(ev)

	return ref, nil
}

func (r *Registry) GetArtistRecord(artist Identity) (ArtistRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.artists[artist]
	return rec, ok
}

func (r *Registry) Collection(ref Identity) (*Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, ref.Hex())
	}
	return c, nil
}

// ArtistForCollection finds the record bound to a collection reference.
func (r *Registry) ArtistForCollection(ref Identity) (ArtistRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.artists {
		if rec.CollectionRef == ref {
			return rec, true
		}
	}
	return ArtistRecord{}, false
}

// ArtistRecords returns every binding in deployment order.
func (r *Registry) ArtistRecords() []ArtistRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byRef := make(map[Identity]ArtistRecord, len(r.artists))
	for _, rec := range r.artists {
		byRef[rec.CollectionRef] = rec
	}
	out := make([]ArtistRecord, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, byRef[ref])
	}
	return out
}

// Restore loads a previously journaled collection without emitting events.
func (r *Registry) Restore(rec ArtistRecord, st CollectionState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.template.instantiate(st.Ref, st.Owner, st.Config)
	c.restore(st)

	if _, ok := r.collections[st.Ref]; !ok {
		r.order = append(r.order, st.Ref)
		r.nonce++
	}
	r.artists[rec.ArtistAddress] = rec
	r.collections[st.Ref] = c
}
