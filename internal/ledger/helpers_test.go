// internal/ledger/helpers_test.go
package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	minter   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	artistA  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	artistC  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	buyerB   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	gallery  = common.HexToAddress("0x00000000000000000000000000000000000000d2")
	registry = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) kinds() []EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventKind, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind
	}
	return out
}

func (s *recordingSink) last() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

// failingJournal rejects commits while fail is set.
type failingJournal struct {
	mu      sync.Mutex
	fail    bool
	commits []*Change
}

var errJournalDown = errors.New("journal down")

func (j *failingJournal) Commit(_ context.Context, c *Change) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errJournalDown
	}
	j.commits = append(j.commits, c)
	return nil
}

func (j *failingJournal) setFail(v bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fail = v
}

type fixture struct {
	registry *Registry
	roles    *RoleBook
	vault    *Vault
	journal  *failingJournal
	sink     *recordingSink
	ref      Identity
	coll     *Collection
}

func newFixture(t testing.TB) *fixture {
	t.Helper()

	f := &fixture{
		roles:   NewRoleBook(operator),
		journal: &failingJournal{},
		sink:    &recordingSink{},
	}
	f.roles.Grant(minter, RoleMinter)
	f.vault = NewVault(f.journal, f.sink)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg, err := NewRegistry(RegistryOptions{
		Address:  registry,
		Treasury: treasury,
		Gallery:  gallery,
		Template: Template{
			Fees:     DefaultFeeSchedule(),
			Auth:     f.roles,
			Payments: f.vault,
			Journal:  f.journal,
			Sink:     f.sink,
			Now:      func() time.Time { return fixed },
		},
	})
	require.NoError(t, err)
	f.registry = reg

	ref, err := reg.DeployCollection(context.Background(), operator, artistA, "Artist A", CollectionConfig{
		Name:             "Artist A Works",
		Symbol:           "AAW",
		Treasury:         treasury,
		GalleryWallet:    gallery,
		ArtistRoyaltyBps: 1000,
	})
	require.NoError(t, err)
	f.ref = ref

	f.coll, err = reg.Collection(ref)
	require.NoError(t, err)
	return f
}

func (f *fixture) fund(t testing.TB, id Identity, amount *big.Int) {
	t.Helper()
	_, err := f.vault.Deposit(context.Background(), "fund-"+id.Hex()+"-"+amount.String(), id, amount)
	require.NoError(t, err)
}
