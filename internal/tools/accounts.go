package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/solmcp/solana-mcp/internal/cluster"
)

// RegisterClusterTools registers the account query tools for one cluster.
// The same three tools are generated per network, prefixed with the cluster
// name (get-testnet-balance, get-mainnet-balance, ...).
func RegisterClusterTools(c *cluster.Cluster) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool(fmt.Sprintf("get-%s-balance", c.Name),
				mcp.WithDescription(fmt.Sprintf("Get the SOL balance of an address on Solana %s", c.Name)),
				mcp.WithString("address", mcp.Required(), mcp.Description("Base58-encoded Solana address")),
			),
			Handler: balanceHandler(c),
		},
		{
			Tool: mcp.NewTool(fmt.Sprintf("get-%s-last-transaction", c.Name),
				mcp.WithDescription(fmt.Sprintf("Get the most recent transaction of an address on Solana %s", c.Name)),
				mcp.WithString("address", mcp.Required(), mcp.Description("Base58-encoded Solana address")),
			),
			Handler: lastTransactionHandler(c),
		},
		{
			Tool: mcp.NewTool(fmt.Sprintf("get-%s-account-tokens", c.Name),
				mcp.WithDescription(fmt.Sprintf("Get the SPL token accounts owned by an address on Solana %s", c.Name)),
				mcp.WithString("address", mcp.Required(), mcp.Description("Base58-encoded Solana address")),
			),
			Handler: accountTokensHandler(c),
		},
	}
}

// balanceHandler surfaces failures as handler errors rather than text, so the
// dispatcher reports them as protocol-level tool errors.
func balanceHandler(c *cluster.Cluster) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address := request.GetString("address", "")
		if address == "" {
			return nil, errMissingAddress
		}

		lamports, err := c.Balance(ctx, address)
		if err != nil {
			return nil, err
		}

		return mcp.NewToolResultText(fmt.Sprintf("Balance: %s", formatSOL(lamports))), nil
	}
}

func lastTransactionHandler(c *cluster.Cluster) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address := request.GetString("address", "")
		if address == "" {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting transaction: %s", errMissingAddress)), nil
		}

		tx, err := c.LastTransaction(ctx, address)
		if errors.Is(err, cluster.ErrNoTransactions) {
			return mcp.NewToolResultText("No transactions found for this address"), nil
		}
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting transaction: %s", err)), nil
		}

		body, err := json.MarshalIndent(tx, "", "  ")
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting transaction: %s", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func accountTokensHandler(c *cluster.Cluster) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address := request.GetString("address", "")
		if address == "" {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting tokens: %s", errMissingAddress)), nil
		}

		accounts, err := c.TokenAccounts(ctx, address)
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting tokens: %s", err)), nil
		}

		body, err := json.MarshalIndent(accounts, "", "  ")
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Error getting tokens: %s", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

// formatSOL renders a lamport amount as SOL without trailing zeros.
func formatSOL(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/float64(solana.LAMPORTS_PER_SOL), 'f', -1, 64)
}
