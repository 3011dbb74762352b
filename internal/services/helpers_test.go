// internal/services/helpers_test.go
package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	artist   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	buyer    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	gallery  = common.HexToAddress("0x00000000000000000000000000000000000000d2")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 1,
			Issuer:         "digital-original-test",
		},
		Payment: config.PaymentConfig{
			Currency:     "usd",
			UnitsPerCent: "10000000000000",
			IntentTTL:    time.Minute,
		},
		Ledger: config.LedgerConfig{
			PlatformFeeBps:    1000,
			GalleryFeeBps:     500,
			DefaultRoyaltyBps: 1000,
			AmountDecimals:    18,
		},
		Events: config.EventsConfig{
			ArchivePrefix: "events",
			BufferSize:    8,
			FlushInterval: time.Hour,
		},
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []ledger.Event
}

func (s *recordingSink) Publish(ev ledger.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

type testEnv struct {
	cfg         *config.Config
	roles       *ledger.RoleBook
	vault       *ledger.Vault
	registry    *ledger.Registry
	ref         common.Address
	registrySvc *RegistryService
	collections *CollectionService
	payments    *PaymentService
	gateway     *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	roles := ledger.NewRoleBook(operator)
	vault := ledger.NewVault(nil, nil)
	registry, err := ledger.NewRegistry(ledger.RegistryOptions{
		Address:  common.HexToAddress("0x0000000000000000000000000000000000000f00"),
		Treasury: treasury,
		Gallery:  gallery,
		Template: ledger.Template{
			Fees:     ledger.DefaultFeeSchedule(),
			Auth:     roles,
			Payments: vault,
			Sink:     &recordingSink{},
		},
	})
	require.NoError(t, err)

	env := &testEnv{
		cfg:      cfg,
		roles:    roles,
		vault:    vault,
		registry: registry,
		gateway:  newFakeGateway(),
	}
	env.registrySvc = NewRegistryService(registry, cfg)
	env.collections = NewCollectionService(registry, nil, cfg.Ledger.AmountDecimals)
	env.payments, err = NewPaymentServiceWithGateway(vault, registry, env.collections, env.gateway, cfg)
	require.NoError(t, err)

	view, err := env.registrySvc.DeployCollection(context.Background(), operator, &DeployCollectionRequest{
		ArtistAddress: artist.Hex(),
		ArtistName:    "Ada",
		Name:          "Ada Originals",
		Symbol:        "ADA",
	})
	require.NoError(t, err)
	env.ref = common.HexToAddress(view.Ref)
	return env
}

// mintAndList mints one token to the artist and lists it at price.
func (e *testEnv) mintAndList(t *testing.T, price *big.Int) uint64 {
	t.Helper()
	ctx := context.Background()

	res, err := e.collections.Mint(ctx, operator, e.ref, &MintRequest{To: artist.Hex(), URI: "ipfs://art"})
	require.NoError(t, err)
	id := res.TokenIDs[0]

	_, err = e.collections.List(ctx, artist, e.ref, id, &ListTokenRequest{Price: price.String()})
	require.NoError(t, err)
	return id
}

func (e *testEnv) fund(t *testing.T, account common.Address, amount *big.Int) {
	t.Helper()
	_, err := e.payments.Deposit(context.Background(), &DepositRequest{
		Reference: fmt.Sprintf("fund-%s-%s", account.Hex(), amount),
		Account:   account.Hex(),
		Amount:    amount.String(),
	})
	require.NoError(t, err)
}

type fakeGateway struct {
	mu      sync.Mutex
	next    int
	created int
	intents map[string]*stripe.PaymentIntent
	fail    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*stripe.PaymentIntent)}
}

func (g *fakeGateway) CreateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fail != nil {
		return nil, g.fail
	}
	g.next++
	g.created++
	id := fmt.Sprintf("pi_test_%d", g.next)
	meta := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		meta[k] = v
	}
	pi := &stripe.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       *params.Amount,
		Currency:     stripe.Currency(*params.Currency),
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Metadata:     meta,
	}
	g.intents[id] = pi
	return pi, nil
}

func (g *fakeGateway) GetIntent(id string) (*stripe.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pi, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", id)
	}
	cp := *pi
	return &cp, nil
}

func (g *fakeGateway) succeed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = stripe.PaymentIntentStatusSucceeded
}

func (g *fakeGateway) tamper(id string, fn func(pi *stripe.PaymentIntent)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.intents[id])
}
