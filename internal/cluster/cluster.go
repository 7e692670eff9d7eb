package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Default endpoints for the two supported clusters.
const (
	TestnetEndpoint = "https://api.testnet.solana.com"
	MainnetEndpoint = "https://api.mainnet-beta.solana.com"
)

// ErrNoTransactions is returned by LastTransaction when the address has no
// recorded transaction signatures.
var ErrNoTransactions = errors.New("no transactions found")

// RPC is the subset of the Solana JSON-RPC surface the tools use.
// *rpc.Client satisfies it; tests substitute fakes.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, signature solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
}

// Cluster is a read-only handle to one Solana network. Handles are built once
// at startup and shared by every tool targeting that network; nothing mutates
// them afterwards, so they are safe for concurrent use.
type Cluster struct {
	Name       string
	Commitment rpc.CommitmentType
	RPC        RPC
}

// New creates a cluster handle for the given endpoint URL.
func New(name, endpoint string, commitment rpc.CommitmentType) *Cluster {
	if commitment == "" {
		commitment = rpc.CommitmentFinalized
	}
	return &Cluster{
		Name:       name,
		Commitment: commitment,
		RPC:        rpc.New(endpoint),
	}
}

// Balance returns the lamport balance of the given base58 address.
func (c *Cluster) Balance(ctx context.Context, address string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", address, err)
	}

	out, err := c.RPC.GetBalance(ctx, owner, c.Commitment)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// LastTransaction fetches the most recent transaction for the address: a
// signature query limited to one result, then the full record for that
// signature. Returns ErrNoTransactions when the address has no signatures;
// no detail fetch is issued in that case.
func (c *Cluster) LastTransaction(ctx context.Context, address string) (*rpc.GetTransactionResult, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}

	limit := 1
	sigs, err := c.RPC.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.Commitment,
	})
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, ErrNoTransactions
	}

	maxVersion := uint64(0)
	return c.RPC.GetTransaction(ctx, sigs[0].Signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingJSON,
		Commitment:                     c.Commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
}

// TokenAccounts fetches all token accounts owned by the address, scoped to
// the standard SPL Token program on every cluster.
func (c *Cluster) TokenAccounts(ctx context.Context, address string) (*rpc.GetTokenAccountsResult, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}

	programID := solana.TokenProgramID
	return c.RPC.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.Commitment,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
}
