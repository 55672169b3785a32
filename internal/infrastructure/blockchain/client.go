package blockchain

import (
	"context"
	"fmt"
	"regexp"
)

// TransferProof is the evidence a chain client returns for an
// already-executed transfer. The ledger records it; it never signs.
type TransferProof struct {
	TxHash    string
	Network   string
	GasUsed   int64
	Confirmed bool
}

// Client proves on-chain transfers so the ledger can record them.
type Client interface {
	VerifyTransfer(ctx context.Context, network, txHash string) (*TransferProof, error)
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ValidateTxHash checks the canonical 32-byte hex transaction hash form.
func ValidateTxHash(txHash string) error {
	if !txHashPattern.MatchString(txHash) {
		return fmt.Errorf("invalid transaction hash: %s", txHash)
	}
	return nil
}

// OfflineClient validates hash format only and reports every transfer
// as confirmed. Used when no RPC endpoint is configured.
type OfflineClient struct{}

// NewOfflineClient creates a new offline client
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

// VerifyTransfer validates the hash shape without reaching a node.
func (c *OfflineClient) VerifyTransfer(_ context.Context, network, txHash string) (*TransferProof, error) {
	if err := ValidateTxHash(txHash); err != nil {
		return nil, err
	}
	return &TransferProof{
		TxHash:    txHash,
		Network:   network,
		Confirmed: true,
	}, nil
}
