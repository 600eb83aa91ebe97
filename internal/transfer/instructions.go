// internal/transfer/instructions.go
package transfer

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/spl-transfer/internal/types"
)

var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// TransferCheckedOpcode is the SPL Token instruction index of TransferChecked.
const TransferCheckedOpcode uint8 = 12

// ConvertAmount turns a UI amount into base units: trunc(amount * 10^decimals).
// A result that is not positive or does not fit u64 is ErrInvalidTransferAmount.
func ConvertAmount(amount decimal.Decimal, decimals uint8) (uint64, error) {
	raw := amount.Shift(int32(decimals)).Truncate(0)
	if raw.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s", types.ErrInvalidTransferAmount, raw)
	}
	value := raw.BigInt()
	if !value.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows u64", types.ErrInvalidTransferAmount, raw)
	}
	return value.Uint64(), nil
}

// NewTransferCheckedInstruction moves amount base units from the source ATA to the destination ATA.
// Data layout: opcode 12, amount as u64 LE, decimals as u8.
func NewTransferCheckedInstruction(
	amount uint64,
	decimals uint8,
	source, mint, destination, owner solana.PublicKey,
) (solana.Instruction, error) {
	inst, err := token.NewTransferCheckedInstruction(
		amount,
		decimals,
		source,
		mint,
		destination,
		owner,
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return inst, nil
}

// NewCreateATAInstruction creates owner's associated token account for mint, funded by payer.
func NewCreateATAInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(
		payer, // payer
		owner, // wallet
		mint,  // mint
	).Build()
}

// NewMemoInstruction records text in the transaction log.
func NewMemoInstruction(text string) solana.Instruction {
	return solana.NewInstruction(
		MemoProgramID,
		[]*solana.AccountMeta{},
		[]byte(text),
	)
}
