package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient = ethclient.Dial

	getTransactionReceipt = func(client *ethclient.Client, ctx context.Context, hash common.Hash) (*types.Receipt, error) {
		return client.TransactionReceipt(ctx, hash)
	}
)

// EVMClient proves transfers against an EVM node over JSON-RPC.
type EVMClient struct {
	client *ethclient.Client
	rpcURL string
	// testReceipt allows deterministic unit tests without network sockets.
	testReceipt func(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}
	return &EVMClient{client: client, rpcURL: rpcURL}, nil
}

// NewEVMClientWithReceipts creates an EVM client that uses an injected
// receipt lookup. This is intended for unit tests where RPC sockets are
// unavailable.
func NewEVMClientWithReceipts(receiptFn func(ctx context.Context, hash common.Hash) (*types.Receipt, error)) *EVMClient {
	return &EVMClient{testReceipt: receiptFn}
}

func (c *EVMClient) receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.testReceipt != nil {
		return c.testReceipt(ctx, hash)
	}
	return getTransactionReceipt(c.client, ctx, hash)
}

// VerifyTransfer looks up the receipt for a transaction hash and
// reports whether the chain executed it successfully.
func (c *EVMClient) VerifyTransfer(ctx context.Context, network, txHash string) (*TransferProof, error) {
	if err := ValidateTxHash(txHash); err != nil {
		return nil, err
	}

	receipt, err := c.receipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt for %s: %w", txHash, err)
	}

	return &TransferProof{
		TxHash:    txHash,
		Network:   network,
		GasUsed:   int64(receipt.GasUsed),
		Confirmed: receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}
