// internal/transfer/service.go
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/spl-transfer/internal/blockchain"
	"github.com/rovshanmuradov/spl-transfer/internal/types"
	"github.com/rovshanmuradov/spl-transfer/internal/wallet"
)

// Service builds, signs and submits a single token transfer.
type Service struct {
	client blockchain.Client
	logger *zap.Logger
}

// NewService creates a transfer service over client.
func NewService(client blockchain.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.Named("transfer"),
	}
}

// ExecuteOptions controls the final step of Execute.
type ExecuteOptions struct {
	// DryRun signs the transaction but does not submit it.
	DryRun bool
}

// Result of Execute.
type Result struct {
	Plan        *Plan
	Transaction *solana.Transaction
	Signature   solana.Signature
	Sent        bool
}

// Execute runs the whole pipeline: plan, sign, submit.
func (s *Service) Execute(ctx context.Context, req Request, opts ExecuteOptions) (*Result, error) {
	plan, err := s.BuildPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer plan ready",
		zap.Uint64("amount", plan.Amount),
		zap.Uint8("decimals", plan.Decimals),
		zap.Uint32("compute_units", plan.Budget.Units),
		zap.Uint64("unit_price_micro_lamports", plan.Budget.UnitPrice),
		zap.Bool("creates_receiver_ata", plan.CreatesReceiverATA),
		zap.Int("instructions", len(plan.Instructions)))

	tx, err := s.Sign(ctx, req.Sender, plan)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Plan:        plan,
		Transaction: tx,
		Signature:   tx.Signatures[0],
	}

	if opts.DryRun {
		encoded, err := tx.ToBase64()
		if err != nil {
			return nil, types.StateError("encode transaction", err)
		}
		s.logger.Info("dry run, transaction not sent",
			zap.String("signature", result.Signature.String()),
			zap.String("transaction", encoded))
		return result, nil
	}

	sig, err := s.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	result.Signature = sig
	result.Sent = true
	return result, nil
}

// Sign compiles plan into a v0 message paid by sender and signs it with sender's key only.
func (s *Service) Sign(ctx context.Context, sender *wallet.Wallet, plan *Plan) (*solana.Transaction, error) {
	if sender == nil {
		return nil, types.Configf("sign", "sender wallet is not set")
	}
	if plan == nil || len(plan.Instructions) == 0 {
		return nil, types.StateError("sign", errors.New("empty instruction list"))
	}

	blockhash, err := s.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, types.NetworkError("get latest blockhash", err)
	}

	tx, err := solana.NewTransaction(
		plan.Instructions,
		blockhash,
		solana.TransactionPayer(sender.PublicKey),
	)
	if err != nil {
		return nil, types.StateError("compile message", fmt.Errorf("failed to create transaction: %w", err))
	}
	tx.Message.SetVersion(solana.MessageVersionV0)

	if err := sender.SignTransaction(tx); err != nil {
		return nil, types.StateError("sign", fmt.Errorf("failed to sign transaction: %w", err))
	}
	return tx, nil
}

// Submit sends tx with preflight simulation disabled. It does not wait for confirmation.
func (s *Service) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	s.logger.Info("sending tx")
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight: true,
	})
	if err != nil {
		return solana.Signature{}, types.NetworkError("send transaction", err)
	}
	return sig, nil
}
