// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/javajoker/digital-original/internal/config"
	"github.com/javajoker/digital-original/internal/ledger"
	"github.com/javajoker/digital-original/internal/utils"
)

// CheckoutGateway creates and reads card payment intents.
type CheckoutGateway interface {
	CreateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetIntent(id string) (*stripe.PaymentIntent, error)
}

type stripeGateway struct{}

func (stripeGateway) CreateIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (stripeGateway) GetIntent(id string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, nil)
}

type PaymentService struct {
	vault        *ledger.Vault
	registry     *ledger.Registry
	collections  *CollectionService
	gateway      CheckoutGateway
	intents      *cache.Cache
	unitsPerCent *big.Int
	currency     string
	decimals     int32
}

// DepositRequest takes the amount in minor units or, as amount_decimal, a decimal value.
type DepositRequest struct {
	Reference     string `json:"reference" validate:"required,max=255"`
	Account       string `json:"account" validate:"required,eth_addr"`
	Amount        string `json:"amount,omitempty" validate:"required_without=AmountDecimal,omitempty,amount"`
	AmountDecimal string `json:"amount_decimal,omitempty" validate:"required_without=Amount"`
}

type DepositResult struct {
	Reference string           `json:"reference"`
	Account   string           `json:"account"`
	Amount    utils.AmountView `json:"amount"`
	Applied   bool             `json:"applied"`
	Balance   utils.AmountView `json:"balance"`
}

type AccountView struct {
	Account string           `json:"account"`
	Balance utils.AmountView `json:"balance"`
}

type CheckoutView struct {
	PaymentIntentID string           `json:"payment_intent_id"`
	ClientSecret    string           `json:"client_secret"`
	Status          string           `json:"status"`
	Collection      string           `json:"collection"`
	TokenID         uint64           `json:"token_id"`
	Price           utils.AmountView `json:"price"`
	CardAmount      int64            `json:"card_amount"`
	Currency        string           `json:"currency"`
}

type ConfirmCheckoutRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,max=255"`
}

const (
	metaCollection = "collection"
	metaTokenID    = "token_id"
	metaBuyer      = "buyer"
	metaPrice      = "price"
)

// NewPaymentService enables card checkout only when a Stripe secret key is configured.
func NewPaymentService(vault *ledger.Vault, registry *ledger.Registry, collections *CollectionService, cfg *config.Config) (*PaymentService, error) {
	var gateway CheckoutGateway
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
		gateway = stripeGateway{}
	}
	return NewPaymentServiceWithGateway(vault, registry, collections, gateway, cfg)
}

func NewPaymentServiceWithGateway(vault *ledger.Vault, registry *ledger.Registry, collections *CollectionService, gateway CheckoutGateway, cfg *config.Config) (*PaymentService, error) {
	units, ok := new(big.Int).SetString(cfg.Payment.UnitsPerCent, 10)
	if !ok || units.Sign() <= 0 {
		return nil, fmt.Errorf("invalid STRIPE_UNITS_PER_CENT %q", cfg.Payment.UnitsPerCent)
	}
	currency := cfg.Payment.Currency
	if currency == "" {
		currency = "usd"
	}
	ttl := cfg.Payment.IntentTTL
	return &PaymentService{
		vault:        vault,
		registry:     registry,
		collections:  collections,
		gateway:      gateway,
		intents:      cache.New(ttl, 2*ttl),
		unitsPerCent: units,
		currency:     currency,
		decimals:     cfg.Ledger.AmountDecimals,
	}, nil
}

// Deposit credits an account once per reference.
func (s *PaymentService) Deposit(ctx context.Context, req *DepositRequest) (*DepositResult, error) {
	amount, err := utils.ResolveAmount(req.Amount, req.AmountDecimal, s.decimals)
	if err != nil {
		return nil, err
	}
	account := common.HexToAddress(req.Account)

	applied, err := s.vault.Deposit(ctx, req.Reference, account, amount)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"reference": req.Reference,
		"account":   account.Hex(),
		"amount":    amount.String(),
		"applied":   applied,
	}).Info("Vault deposit")

	return &DepositResult{
		Reference: req.Reference,
		Account:   account.Hex(),
		Amount:    utils.NewAmountView(amount, s.decimals),
		Applied:   applied,
		Balance:   utils.NewAmountView(s.vault.Balance(account), s.decimals),
	}, nil
}

func (s *PaymentService) Balance(account common.Address) AccountView {
	return AccountView{
		Account: account.Hex(),
		Balance: utils.NewAmountView(s.vault.Balance(account), s.decimals),
	}
}

// CreateCheckout opens a card payment for an active listing. Repeated calls for
// the same listing, buyer and price return the same intent until it expires.
func (s *PaymentService) CreateCheckout(ctx context.Context, buyer, ref common.Address, tokenID uint64) (*CheckoutView, error) {
	if s.gateway == nil {
		return nil, ErrCardPaymentsDisabled
	}
	if buyer == ledger.ZeroIdentity {
		return nil, ledger.ErrInvalidRecipient
	}

	price, err := s.activePrice(ref, tokenID)
	if err != nil {
		return nil, err
	}
	cents, err := s.toCardAmount(price)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("checkout:%s:%d:%s:%s", ref.Hex(), tokenID, buyer.Hex(), price)
	if cached, ok := s.intents.Get(key); ok {
		return cached.(*CheckoutView), nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(s.currency),
	}
	params.Context = ctx
	params.AddMetadata(metaCollection, ref.Hex())
	params.AddMetadata(metaTokenID, strconv.FormatUint(tokenID, 10))
	params.AddMetadata(metaBuyer, buyer.Hex())
	params.AddMetadata(metaPrice, price.String())

	pi, err := s.gateway.CreateIntent(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	view := &CheckoutView{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          string(pi.Status),
		Collection:      ref.Hex(),
		TokenID:         tokenID,
		Price:           utils.NewAmountView(price, s.decimals),
		CardAmount:      cents,
		Currency:        s.currency,
	}
	s.intents.Set(key, view, cache.DefaultExpiration)
	return view, nil
}

// ConfirmCheckout deposits a succeeded intent into the buyer's vault account
// and settles the purchase. The deposit is keyed by intent id, so a retry never
// credits twice; a purchase that fails after the deposit leaves the funds with the buyer.
func (s *PaymentService) ConfirmCheckout(ctx context.Context, buyer common.Address, req *ConfirmCheckoutRequest) (*SettlementView, error) {
	if s.gateway == nil {
		return nil, ErrCardPaymentsDisabled
	}
	confirmedKey := "confirmed:" + req.PaymentIntentID
	if cached, ok := s.intents.Get(confirmedKey); ok {
		view := cached.(*SettlementView)
		if !strings.EqualFold(view.Buyer, buyer.Hex()) {
			return nil, ErrIntentMismatch
		}
		return view, nil
	}

	pi, err := s.gateway.GetIntent(req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrIntentPending, pi.Status)
	}

	ref, tokenID, price, err := s.checkIntent(pi, buyer)
	if err != nil {
		return nil, err
	}

	if _, err := s.vault.Deposit(ctx, "stripe:"+pi.ID, buyer, price); err != nil {
		return nil, err
	}

	view, err := s.collections.Purchase(ctx, buyer, ref, tokenID, &PurchaseRequest{Payment: price.String()})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"payment_intent": pi.ID,
			"buyer":          buyer.Hex(),
		}).Warn("Card payment deposited but purchase failed")
		return nil, err
	}

	s.intents.Set(confirmedKey, view, cache.NoExpiration)
	return view, nil
}

func (s *PaymentService) checkIntent(pi *stripe.PaymentIntent, buyer common.Address) (common.Address, uint64, *big.Int, error) {
	meta := pi.Metadata
	if !strings.EqualFold(meta[metaBuyer], buyer.Hex()) || !common.IsHexAddress(meta[metaCollection]) {
		return common.Address{}, 0, nil, ErrIntentMismatch
	}
	tokenID, err := strconv.ParseUint(meta[metaTokenID], 10, 64)
	if err != nil {
		return common.Address{}, 0, nil, fmt.Errorf("%w: token id", ErrIntentMismatch)
	}
	price, ok := new(big.Int).SetString(meta[metaPrice], 10)
	if !ok || price.Sign() <= 0 {
		return common.Address{}, 0, nil, fmt.Errorf("%w: price", ErrIntentMismatch)
	}
	paid := new(big.Int).Mul(big.NewInt(pi.Amount), s.unitsPerCent)
	if paid.Cmp(price) != 0 || !strings.EqualFold(string(pi.Currency), s.currency) {
		return common.Address{}, 0, nil, fmt.Errorf("%w: paid %d %s", ErrIntentMismatch, pi.Amount, pi.Currency)
	}
	return common.HexToAddress(meta[metaCollection]), tokenID, price, nil
}

func (s *PaymentService) activePrice(ref common.Address, tokenID uint64) (*big.Int, error) {
	coll, err := s.registry.Collection(ref)
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
	if !ok || !listing.Active || listing.Seller != asset.Owner {
		return nil, fmt.Errorf("%w: %d", ledger.ErrNotListed, tokenID)
	}
	return listing.Price, nil
}

func (s *PaymentService) toCardAmount(price *big.Int) (int64, error) {
	q, r := new(big.Int).QuoRem(price, s.unitsPerCent, new(big.Int))
	if r.Sign() != 0 || !q.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotPayableByCard, price)
	}
	return q.Int64(), nil
}
