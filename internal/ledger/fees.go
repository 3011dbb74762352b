// internal/ledger/fees.go
package ledger

import (
	"fmt"
	"math/big"
)

const (
	// BpsBase is the denominator for basis-point math.
	BpsBase uint64 = 10000

	DefaultPlatformFeeBps uint64 = 1000 // 10%
	DefaultGalleryFeeBps  uint64 = 500  // 5%
)

var bpsBase = new(big.Int).SetUint64(BpsBase)

// FeeSchedule holds the primary sale fee parameters shared by every collection.
type FeeSchedule struct {
	PlatformFeeBps uint64
	GalleryFeeBps  uint64
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		PlatformFeeBps: DefaultPlatformFeeBps,
		GalleryFeeBps:  DefaultGalleryFeeBps,
	}
}

func (fs FeeSchedule) Validate() error {
	if fs.PlatformFeeBps+fs.GalleryFeeBps > BpsBase {
		return fmt.Errorf("%w: fees total %d bps", ErrInvalidConfig, fs.PlatformFeeBps+fs.GalleryFeeBps)
	}
	return nil
}

// Split divides price into platform, gallery and seller shares. Both fees are
// truncated and the seller takes the exact remainder, so nothing leaks.
func (fs FeeSchedule) Split(price *big.Int) (Split, error) {
	if price == nil || price.Sign() <= 0 {
		return Split{}, ErrInvalidPrice
	}
	platform := bpsOf(price, fs.PlatformFeeBps)
	gallery := bpsOf(price, fs.GalleryFeeBps)

	seller := new(big.Int).Sub(price, platform)
	seller.Sub(seller, gallery)

	return Split{
		Price:          new(big.Int).Set(price),
		PlatformAmount: platform,
		GalleryAmount:  gallery,
		SellerAmount:   seller,
	}, nil
}

// RoyaltyAmount returns salePrice * bps / 10000, truncated.
func RoyaltyAmount(salePrice *big.Int, bps uint64) *big.Int {
	if salePrice == nil || salePrice.Sign() <= 0 {
		return new(big.Int)
	}
	return bpsOf(salePrice, bps)
}

func bpsOf(amount *big.Int, bps uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Quo(out, bpsBase)
}

func validRoyalty(bps uint64) bool {
	return bps <= BpsBase
}
