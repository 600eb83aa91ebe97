// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Client is the set of RPC calls a single transfer needs.
type Client interface {
	// Decimals and supply of a mint.
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (*rpc.GetTokenSupplyResult, error)
	// Account info; a missing account yields rpc.ErrNotFound or a nil Value.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// Balance of a token account.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*rpc.GetTokenAccountBalanceResult, error)
	// Latest blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Submit a signed transaction.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
}
