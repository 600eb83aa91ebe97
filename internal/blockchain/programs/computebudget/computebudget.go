// internal/blockchain/programs/computebudget/computebudget.go
package computebudget

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	sdkbudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/shopspring/decimal"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	LamportsPerSol          = 1_000_000_000
	MicroLamportsPerLamport = 1_000_000

	// MaxUnits is the runtime cap for SetComputeUnitLimit.
	MaxUnits uint32 = 1_400_000
	// DefaultUnits is the runtime default when no limit is requested.
	DefaultUnits uint32 = 200_000
)

// microLamportsPerSolExp is log10(LamportsPerSol * MicroLamportsPerLamport).
const microLamportsPerSolExp = 15

// Config holds both compute budget values of a transaction.
type Config struct {
	Units     uint32
	UnitPrice uint64 // micro-lamports per compute unit
}

// ErrZeroUnits is returned when a price is requested for a zero unit budget.
var ErrZeroUnits = fmt.Errorf("compute unit budget must be greater than zero")

// ConvertSolToMicrolamports converts SOL to micro-lamports, rounding down.
func ConvertSolToMicrolamports(sol decimal.Decimal) (*big.Int, error) {
	if sol.IsNegative() {
		return nil, fmt.Errorf("negative fee: %s", sol)
	}
	return sol.Shift(microLamportsPerSolExp).Floor().BigInt(), nil
}

// UnitPriceForFee derives the per-unit price so that units*price does not exceed feeSol:
// floor(feeSol * 10^15 / units).
func UnitPriceForFee(feeSol decimal.Decimal, units uint32) (uint64, error) {
	if units == 0 {
		return 0, ErrZeroUnits
	}
	micro, err := ConvertSolToMicrolamports(feeSol)
	if err != nil {
		return 0, err
	}
	price := new(big.Int).Quo(micro, new(big.Int).SetUint64(uint64(units)))
	if !price.IsUint64() {
		return 0, fmt.Errorf("unit price %s overflows uint64", price)
	}
	return price.Uint64(), nil
}

// NewConfig builds a Config that targets feeSol as the total priority fee.
func NewConfig(feeSol decimal.Decimal, units uint32) (Config, error) {
	if units > MaxUnits {
		return Config{}, fmt.Errorf("compute unit budget %d exceeds maximum %d", units, MaxUnits)
	}
	price, err := UnitPriceForFee(feeSol, units)
	if err != nil {
		return Config{}, err
	}
	return Config{Units: units, UnitPrice: price}, nil
}

// PriorityFeeLamports returns the fee actually paid for the full budget, rounded down.
func (c Config) PriorityFeeLamports() uint64 {
	total := new(big.Int).Mul(new(big.Int).SetUint64(c.UnitPrice), new(big.Int).SetUint64(uint64(c.Units)))
	return total.Quo(total, big.NewInt(MicroLamportsPerLamport)).Uint64()
}

// BuildInstructions returns SetComputeUnitLimit followed by SetComputeUnitPrice.
// The price instruction is emitted even when the price is zero.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	if config.Units == 0 {
		return nil, ErrZeroUnits
	}

	limitInstruction := sdkbudget.NewSetComputeUnitLimitInstruction(config.Units).Build()
	priceInstruction := sdkbudget.NewSetComputeUnitPriceInstruction(config.UnitPrice).Build()

	return []solana.Instruction{limitInstruction, priceInstruction}, nil
}
