package solbc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/spl-transfer/internal/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeNode answers JSON-RPC calls from canned results keyed by method.
type fakeNode struct {
	mu       sync.Mutex
	results  map[string]string
	errors   map[string]string
	requests []rpcRequest
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		results: make(map[string]string),
		errors:  make(map[string]string),
	}
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	result, hasResult := f.results[req.Method]
	rpcErr, hasErr := f.errors[req.Method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case hasErr:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32602,"message":%q}}`, req.ID, rpcErr)
	case hasResult:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	default:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"Method not found"}}`, req.ID)
	}
}

func (f *fakeNode) lastRequest(method string) (rpcRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Method == method {
			return f.requests[i], true
		}
	}
	return rpcRequest{}, false
}

func setupClient(t *testing.T) (*Client, *fakeNode) {
	t.Helper()
	node := newFakeNode()
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)
	return NewClient(server.URL, rpc.CommitmentConfirmed, zap.NewNop()), node
}

func TestClient_GetTokenSupply(t *testing.T) {
	client, node := setupClient(t)
	node.results["getTokenSupply"] = `{"context":{"slot":10},"value":{"amount":"100000","decimals":2,"uiAmount":1000.0,"uiAmountString":"1000"}}`

	mint := solana.NewWallet().PublicKey()
	result, err := client.GetTokenSupply(context.Background(), mint)
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.Equal(t, uint8(2), result.Value.Decimals)
	assert.Equal(t, "100000", result.Value.Amount)

	req, ok := node.lastRequest("getTokenSupply")
	require.True(t, ok)
	var first string
	require.NoError(t, json.Unmarshal(req.Params[0], &first))
	assert.Equal(t, mint.String(), first)
}

func TestClient_GetAccountInfo_Missing(t *testing.T) {
	client, node := setupClient(t)
	node.results["getAccountInfo"] = `{"context":{"slot":10},"value":null}`

	_, err := client.GetAccountInfo(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.True(t, IsAccountNotFoundError(err))
}

func TestClient_GetTokenAccountBalance(t *testing.T) {
	client, node := setupClient(t)
	node.results["getTokenAccountBalance"] = `{"context":{"slot":10},"value":{"amount":"250","decimals":2,"uiAmount":2.5,"uiAmountString":"2.5"}}`

	result, err := client.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	require.NotNil(t, result.Value.UiAmount)
	assert.Equal(t, 2.5, *result.Value.UiAmount)
	assert.Equal(t, "250", result.Value.Amount)
}

func TestClient_GetTokenAccountBalance_UnknownAccount(t *testing.T) {
	client, node := setupClient(t)
	node.errors["getTokenAccountBalance"] = "Invalid param: could not find account"

	_, err := client.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	require.Error(t, err)
	assert.True(t, IsAccountNotFoundError(err))
}

func TestClient_GetRecentBlockhash(t *testing.T) {
	client, node := setupClient(t)
	hash := solana.Hash{7, 7, 7}
	node.results["getLatestBlockhash"] = fmt.Sprintf(`{"context":{"slot":10},"value":{"blockhash":%q,"lastValidBlockHeight":200}}`, hash.String())

	got, err := client.GetRecentBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestClient_SendTransactionWithOpts(t *testing.T) {
	client, node := setupClient(t)
	expected := solana.Signature{1, 2, 3, 4}
	node.results["sendTransaction"] = fmt.Sprintf("%q", expected.String())

	payer := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.NewWallet().PublicKey(), []*solana.AccountMeta{}, []byte("x"))},
		solana.Hash{5},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	sig, err := client.SendTransactionWithOpts(context.Background(), tx, blockchain.TransactionOptions{SkipPreflight: true})
	require.NoError(t, err)
	assert.Equal(t, expected, sig)

	req, ok := node.lastRequest("sendTransaction")
	require.True(t, ok)
	require.Len(t, req.Params, 2)
	var opts map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Params[1], &opts))
	assert.Equal(t, true, opts["skipPreflight"])
	assert.Equal(t, "base64", opts["encoding"])
}

func TestClient_NetworkFailure(t *testing.T) {
	client, node := setupClient(t)
	node.errors["getLatestBlockhash"] = "node is behind"

	_, err := client.GetRecentBlockhash(context.Background())
	require.Error(t, err)
	assert.False(t, IsAccountNotFoundError(err))
}

func TestIsAccountNotFoundError(t *testing.T) {
	assert.False(t, IsAccountNotFoundError(nil))
	assert.True(t, IsAccountNotFoundError(rpc.ErrNotFound))
	assert.True(t, IsAccountNotFoundError(fmt.Errorf("wrapped: %w", rpc.ErrNotFound)))
	assert.True(t, IsAccountNotFoundError(errors.New("Account Not Found")))
	assert.False(t, IsAccountNotFoundError(errors.New("connection reset by peer")))
	assert.False(t, IsAccountNotFoundError(errors.New("Method not found")))
}
