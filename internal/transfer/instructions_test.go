// internal/transfer/instructions_test.go
package transfer

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/spl-transfer/internal/types"
)

func TestConvertAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{name: "fractional", amount: "1.5", decimals: 6, want: 1_500_000},
		{name: "whole", amount: "2.0", decimals: 2, want: 200},
		{name: "no float drift", amount: "0.29", decimals: 2, want: 29},
		{name: "truncates extra precision", amount: "1.23456789", decimals: 2, want: 123},
		{name: "zero decimals", amount: "7", decimals: 0, want: 7},
		{name: "max u64", amount: "18446744073709551615", decimals: 0, want: 18446744073709551615},
		{name: "zero", amount: "0", decimals: 6, wantErr: true},
		{name: "negative", amount: "-1", decimals: 6, wantErr: true},
		{name: "truncates to zero", amount: "0.001", decimals: 2, wantErr: true},
		{name: "overflow", amount: "18446744073709551616", decimals: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertAmount(decimal.RequireFromString(tt.amount), tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrInvalidTransferAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTransferCheckedInstruction(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	inst, err := NewTransferCheckedInstruction(1_500_000, 6, source, mint, destination, owner)
	require.NoError(t, err)
	assert.Equal(t, token.ProgramID, inst.ProgramID())

	data, err := inst.Data()
	require.NoError(t, err)
	require.Len(t, data, 10)
	assert.Equal(t, TransferCheckedOpcode, data[0])
	assert.Equal(t, uint64(1_500_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint8(6), data[9])

	accounts := inst.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, source, accounts[0].PublicKey)
	assert.Equal(t, mint, accounts[1].PublicKey)
	assert.Equal(t, destination, accounts[2].PublicKey)
	assert.Equal(t, owner, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[2].IsWritable)
}

func TestNewCreateATAInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	inst := NewCreateATAInstruction(payer, owner, mint)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, inst.ProgramID())

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	keys := make([]solana.PublicKey, 0, len(inst.Accounts()))
	for _, meta := range inst.Accounts() {
		keys = append(keys, meta.PublicKey)
	}
	assert.Contains(t, keys, payer)
	assert.Contains(t, keys, ata)
	assert.Contains(t, keys, owner)
	assert.Contains(t, keys, mint)
}

func TestNewMemoInstruction(t *testing.T) {
	inst := NewMemoInstruction("hello")
	assert.Equal(t, MemoProgramID, inst.ProgramID())
	assert.Empty(t, inst.Accounts())

	data, err := inst.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}
