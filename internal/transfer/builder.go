// internal/transfer/builder.go
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/spl-transfer/internal/blockchain/programs/computebudget"
	"github.com/rovshanmuradov/spl-transfer/internal/blockchain/solbc"
	"github.com/rovshanmuradov/spl-transfer/internal/config"
	"github.com/rovshanmuradov/spl-transfer/internal/types"
	"github.com/rovshanmuradov/spl-transfer/internal/wallet"
)

// Request describes one token transfer.
type Request struct {
	Sender       *wallet.Wallet
	Mint         solana.PublicKey
	Receiver     solana.PublicKey
	Amount       decimal.Decimal // UI units
	ComputeUnits uint32
	TxFee        decimal.Decimal // SOL
	Memo         string
}

// RequestFromConfig maps a loaded config onto a Request.
func RequestFromConfig(cfg *config.Config) Request {
	return Request{
		Sender:       cfg.Sender,
		Mint:         cfg.Mint,
		Receiver:     cfg.Receiver,
		Amount:       cfg.TransferAmount,
		ComputeUnits: cfg.ComputeUnits,
		TxFee:        cfg.TxFee,
		Memo:         cfg.Memo,
	}
}

// Plan is the resolved instruction list with the values it was derived from.
type Plan struct {
	Instructions       []solana.Instruction
	Budget             computebudget.Config
	SenderATA          solana.PublicKey
	ReceiverATA        solana.PublicKey
	Decimals           uint8
	Amount             uint64
	SenderBalance      string // UI amount as reported by the node
	CreatesReceiverATA bool
}

// BuildPlan resolves accounts over RPC and assembles, in order: SetComputeUnitLimit,
// SetComputeUnitPrice, optional receiver ATA creation, TransferChecked, memo.
//
// The receiver ATA check-then-create is not atomic. If another transaction creates the
// account between the lookup and submission, the Create instruction fails on chain and the
// whole transaction is rejected; nothing is partially applied, so the race is left unguarded.
func (s *Service) BuildPlan(ctx context.Context, req Request) (*Plan, error) {
	if req.Sender == nil {
		return nil, types.Configf("build plan", "sender wallet is not set")
	}

	budget, err := computebudget.NewConfig(req.TxFee, req.ComputeUnits)
	if err != nil {
		if errors.Is(err, computebudget.ErrZeroUnits) {
			err = fmt.Errorf("%w: %v", types.ErrZeroComputeUnits, err)
		}
		return nil, types.ConfigError("compute budget", err)
	}
	budgetInstructions, err := computebudget.BuildInstructions(budget)
	if err != nil {
		return nil, types.ConfigError("compute budget", err)
	}

	plan := &Plan{Budget: budget}
	plan.Instructions = append(plan.Instructions, budgetInstructions...)

	supply, err := s.client.GetTokenSupply(ctx, req.Mint)
	if err != nil {
		return nil, types.NetworkError("get token supply", err)
	}
	if supply == nil || supply.Value == nil {
		return nil, types.NetworkError("get token supply", fmt.Errorf("empty response for mint %s", req.Mint))
	}
	plan.Decimals = supply.Value.Decimals
	s.logger.Info("got token info",
		zap.String("mint", req.Mint.String()),
		zap.Uint8("decimals", plan.Decimals))

	if plan.SenderATA, err = req.Sender.GetATA(req.Mint); err != nil {
		return nil, types.StateError("derive sender ATA", err)
	}
	if plan.ReceiverATA, err = wallet.FindATA(req.Receiver, req.Mint); err != nil {
		return nil, types.StateError("derive receiver ATA", err)
	}

	exists, err := s.accountExists(ctx, plan.ReceiverATA)
	if err != nil {
		return nil, types.NetworkError("get receiver account", err)
	}
	if !exists {
		plan.CreatesReceiverATA = true
		plan.Instructions = append(plan.Instructions,
			NewCreateATAInstruction(req.Sender.PublicKey, req.Receiver, req.Mint))
		s.logger.Info("receiver token account missing, adding create instruction",
			zap.String("ata", plan.ReceiverATA.String()))
	}

	balance, err := s.senderBalance(ctx, plan.SenderATA)
	if err != nil {
		return nil, err
	}
	plan.SenderBalance = balance.UiAmountString
	s.logger.Info("senders token balance", zap.String("balance", plan.SenderBalance))

	if plan.Amount, err = ConvertAmount(req.Amount, plan.Decimals); err != nil {
		s.logger.Warn("transfer amount invalid", zap.String("amount", req.Amount.String()))
		return nil, types.StateError("convert amount", err)
	}

	if available, perr := strconv.ParseUint(balance.Amount, 10, 64); perr == nil && available < plan.Amount {
		return nil, types.StateError("check balance",
			fmt.Errorf("%w: have %d, need %d", types.ErrInsufficientBalance, available, plan.Amount))
	}

	transfer, err := NewTransferCheckedInstruction(
		plan.Amount,
		plan.Decimals,
		plan.SenderATA,
		req.Mint,
		plan.ReceiverATA,
		req.Sender.PublicKey,
	)
	if err != nil {
		return nil, types.StateError("transfer instruction", err)
	}
	plan.Instructions = append(plan.Instructions, transfer)

	memo := req.Memo
	if memo == "" {
		memo = config.DefaultMemo
	}
	plan.Instructions = append(plan.Instructions, NewMemoInstruction(memo))

	return plan, nil
}

// accountExists treats "not found" responses as a missing account.
func (s *Service) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := s.client.GetAccountInfo(ctx, account)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

type tokenBalance struct {
	Amount         string
	UiAmountString string
}

// senderBalance returns ErrNoSenderBalance when the node has no balance record for the account.
func (s *Service) senderBalance(ctx context.Context, ata solana.PublicKey) (*tokenBalance, error) {
	result, err := s.client.GetTokenAccountBalance(ctx, ata)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			s.logger.Warn("no sender token balance", zap.String("ata", ata.String()))
			return nil, types.StateError("get sender balance", types.ErrNoSenderBalance)
		}
		return nil, types.NetworkError("get sender balance", err)
	}
	if result == nil || result.Value == nil || result.Value.UiAmount == nil {
		s.logger.Warn("no sender token balance", zap.String("ata", ata.String()))
		return nil, types.StateError("get sender balance", types.ErrNoSenderBalance)
	}

	uiAmount := result.Value.UiAmountString
	if uiAmount == "" {
		uiAmount = strconv.FormatFloat(*result.Value.UiAmount, 'f', -1, 64)
	}
	return &tokenBalance{Amount: result.Value.Amount, UiAmountString: uiAmount}, nil
}
