// internal/transfer/mocks_test.go
package transfer

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/spl-transfer/internal/blockchain"
	"github.com/rovshanmuradov/spl-transfer/internal/wallet"
)

// MockClient реализует интерфейс blockchain.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (*rpc.GetTokenSupplyResult, error) {
	args := m.Called(ctx, mint)
	res, _ := args.Get(0).(*rpc.GetTokenSupplyResult)
	return res, args.Error(1)
}

func (m *MockClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return res, args.Error(1)
}

func (m *MockClient) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (*rpc.GetTokenAccountBalanceResult, error) {
	args := m.Called(ctx, account)
	res, _ := args.Get(0).(*rpc.GetTokenAccountBalanceResult)
	return res, args.Error(1)
}

func (m *MockClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

var _ blockchain.Client = (*MockClient)(nil)

// testEnv holds the accounts of one simulated transfer.
type testEnv struct {
	sender   *wallet.Wallet
	mint     solana.PublicKey
	receiver solana.PublicKey
	client   *MockClient
	service  *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client := new(MockClient)
	return &testEnv{
		sender:   wallet.FromPrivateKey(solana.NewWallet().PrivateKey),
		mint:     solana.NewWallet().PublicKey(),
		receiver: solana.NewWallet().PublicKey(),
		client:   client,
		service:  NewService(client, zap.NewNop()),
	}
}

func (e *testEnv) request(amount string) Request {
	return Request{
		Sender:       e.sender,
		Mint:         e.mint,
		Receiver:     e.receiver,
		Amount:       decimal.RequireFromString(amount),
		ComputeUnits: 200_000,
		TxFee:        decimal.RequireFromString("0.0005"),
		Memo:         "test memo",
	}
}

func (e *testEnv) senderATA(t *testing.T) solana.PublicKey {
	t.Helper()
	ata, _, err := solana.FindAssociatedTokenAddress(e.sender.PublicKey, e.mint)
	if err != nil {
		t.Fatalf("derive sender ATA: %v", err)
	}
	return ata
}

func (e *testEnv) receiverATA(t *testing.T) solana.PublicKey {
	t.Helper()
	ata, _, err := solana.FindAssociatedTokenAddress(e.receiver, e.mint)
	if err != nil {
		t.Fatalf("derive receiver ATA: %v", err)
	}
	return ata
}

func (e *testEnv) onSupply(decimals uint8) {
	e.client.On("GetTokenSupply", mock.Anything, e.mint).Return(&rpc.GetTokenSupplyResult{
		Value: &rpc.UiTokenAmount{Amount: "1000000000", Decimals: decimals},
	}, nil)
}

func (e *testEnv) onReceiverAccount(t *testing.T, exists bool) {
	if exists {
		e.client.On("GetAccountInfo", mock.Anything, e.receiverATA(t)).Return(&rpc.GetAccountInfoResult{
			Value: &rpc.Account{Lamports: 2_039_280, Owner: solana.TokenProgramID},
		}, nil)
		return
	}
	e.client.On("GetAccountInfo", mock.Anything, e.receiverATA(t)).Return(nil, rpc.ErrNotFound)
}

func (e *testEnv) onBalance(t *testing.T, raw string, ui float64) {
	e.client.On("GetTokenAccountBalance", mock.Anything, e.senderATA(t)).Return(&rpc.GetTokenAccountBalanceResult{
		Value: &rpc.UiTokenAmount{Amount: raw, UiAmount: &ui, UiAmountString: decimal.NewFromFloat(ui).String()},
	}, nil)
}
