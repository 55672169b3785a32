package blockchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestValidateTxHash(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)
	require.NoError(t, ValidateTxHash(valid))

	for _, hash := range []string{
		"",
		"0x",
		strings.Repeat("ab", 32),            // missing prefix
		"0x" + strings.Repeat("ab", 31),     // too short
		"0x" + strings.Repeat("ab", 33),     // too long
		"0x" + strings.Repeat("zz", 32),     // not hex
		"0X" + strings.Repeat("ab", 32),     // uppercase prefix
	} {
		require.Error(t, ValidateTxHash(hash), "hash %q", hash)
	}
}

func TestOfflineClientVerifyTransfer(t *testing.T) {
	client := NewOfflineClient()
	hash := "0x" + strings.Repeat("cd", 32)

	proof, err := client.VerifyTransfer(context.Background(), "base-sepolia", hash)
	require.NoError(t, err)
	require.Equal(t, hash, proof.TxHash)
	require.Equal(t, "base-sepolia", proof.Network)
	require.True(t, proof.Confirmed)

	_, err = client.VerifyTransfer(context.Background(), "base-sepolia", "not-a-hash")
	require.Error(t, err)
}

func TestEVMClientVerifyTransfer(t *testing.T) {
	hash := "0x" + strings.Repeat("ef", 32)

	client := NewEVMClientWithReceipts(func(_ context.Context, h common.Hash) (*types.Receipt, error) {
		require.Equal(t, common.HexToHash(hash), h)
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 21000}, nil
	})

	proof, err := client.VerifyTransfer(context.Background(), "base", hash)
	require.NoError(t, err)
	require.True(t, proof.Confirmed)
	require.EqualValues(t, 21000, proof.GasUsed)
	require.Equal(t, "base", proof.Network)
}

func TestEVMClientVerifyTransferReverted(t *testing.T) {
	hash := "0x" + strings.Repeat("01", 32)

	client := NewEVMClientWithReceipts(func(context.Context, common.Hash) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusFailed, GasUsed: 30000}, nil
	})

	proof, err := client.VerifyTransfer(context.Background(), "base", hash)
	require.NoError(t, err)
	require.False(t, proof.Confirmed)
}

func TestEVMClientVerifyTransferErrors(t *testing.T) {
	client := NewEVMClientWithReceipts(func(context.Context, common.Hash) (*types.Receipt, error) {
		return nil, errors.New("not found")
	})

	// Bad hash fails before any lookup.
	_, err := client.VerifyTransfer(context.Background(), "base", "0xnope")
	require.Error(t, err)

	_, err = client.VerifyTransfer(context.Background(), "base", "0x"+strings.Repeat("02", 32))
	require.ErrorContains(t, err, "failed to fetch receipt")
}
