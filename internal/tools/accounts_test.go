package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmcp/solana-mcp/internal/cluster"
)

const testAddress = "11111111111111111111111111111111"

// stubRPC implements cluster.RPC with canned results and call counters.
type stubRPC struct {
	mu sync.Mutex

	lamports   uint64
	balanceErr error
	sigs       []*rpc.TransactionSignature
	sigsErr    error
	tx         *rpc.GetTransactionResult
	txErr      error
	tokens     *rpc.GetTokenAccountsResult
	tokensErr  error

	// balanceGate, when set, is received from before GetBalance returns.
	balanceGate chan struct{}

	balanceCalls int
	sigsCalls    int
	txCalls      int
	tokensCalls  int
}

func (s *stubRPC) GetBalance(_ context.Context, _ solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	s.mu.Lock()
	s.balanceCalls++
	gate := s.balanceGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return &rpc.GetBalanceResult{Value: s.lamports}, nil
}

func (s *stubRPC) GetSignaturesForAddressWithOpts(_ context.Context, _ solana.PublicKey, _ *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	s.mu.Lock()
	s.sigsCalls++
	s.mu.Unlock()
	return s.sigs, s.sigsErr
}

func (s *stubRPC) GetTransaction(_ context.Context, _ solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	s.mu.Lock()
	s.txCalls++
	s.mu.Unlock()
	return s.tx, s.txErr
}

func (s *stubRPC) GetTokenAccountsByOwner(_ context.Context, _ solana.PublicKey, _ *rpc.GetTokenAccountsConfig, _ *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	s.mu.Lock()
	s.tokensCalls++
	s.mu.Unlock()
	return s.tokens, s.tokensErr
}

func (s *stubRPC) calls() (balance, sigs, tx, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceCalls, s.sigsCalls, s.txCalls, s.tokensCalls
}

func testCluster(name string, stub *stubRPC) *cluster.Cluster {
	return &cluster.Cluster{Name: name, Commitment: rpc.CommitmentFinalized, RPC: stub}
}

func callRequest(address string) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]any{"address": address},
		},
	}
}

// toolByName finds a registered tool by suffix (balance, last-transaction,
// account-tokens).
func toolByName(t *testing.T, defs []ToolDef, name string) ToolDef {
	t.Helper()
	for _, td := range defs {
		if td.Tool.Name == name {
			return td
		}
	}
	t.Fatalf("tool %q not registered", name)
	return ToolDef{}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1, "every response is exactly one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content block must be text")
	return tc.Text
}

func TestRegisterClusterToolsNames(t *testing.T) {
	defs := RegisterClusterTools(testCluster("testnet", &stubRPC{}))

	names := make([]string, len(defs))
	for i, td := range defs {
		names[i] = td.Tool.Name
	}
	assert.Equal(t, []string{
		"get-testnet-balance",
		"get-testnet-last-transaction",
		"get-testnet-account-tokens",
	}, names)
}

func TestBalanceTool(t *testing.T) {
	stub := &stubRPC{lamports: 1_500_000_000}
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", stub)), "get-mainnet-balance")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	assert.Equal(t, "Balance: 1.5", textContent(t, result))
}

func TestBalanceToolWholeNumber(t *testing.T) {
	stub := &stubRPC{lamports: 2_000_000_000}
	td := toolByName(t, RegisterClusterTools(testCluster("testnet", stub)), "get-testnet-balance")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	assert.Equal(t, "Balance: 2", textContent(t, result))
}

// Balance failures are not converted to text; they surface as handler errors
// for the dispatcher to report.
func TestBalanceToolErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	stub := &stubRPC{balanceErr: boom}
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", stub)), "get-mainnet-balance")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.ErrorIs(t, err, boom)
	assert.Nil(t, result)
}

func TestBalanceToolInvalidAddressPropagates(t *testing.T) {
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", &stubRPC{})), "get-mainnet-balance")

	result, err := td.Handler(context.Background(), callRequest("not-an-address"))

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestLastTransactionToolEmpty(t *testing.T) {
	stub := &stubRPC{}
	td := toolByName(t, RegisterClusterTools(testCluster("testnet", stub)), "get-testnet-last-transaction")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	assert.Equal(t, "No transactions found for this address", textContent(t, result))
	_, sigs, tx, _ := stub.calls()
	assert.Equal(t, 1, sigs)
	assert.Zero(t, tx, "empty signature list must not trigger a detail fetch")
}

func TestLastTransactionToolSerializesResult(t *testing.T) {
	stub := &stubRPC{
		sigs: []*rpc.TransactionSignature{{Signature: solana.Signature{0x01}}},
		tx:   &rpc.GetTransactionResult{Slot: 1234},
	}
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", stub)), "get-mainnet-last-transaction")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	text := textContent(t, result)
	assert.Contains(t, text, `"slot": 1234`)
	_, _, tx, _ := stub.calls()
	assert.Equal(t, 1, tx)
}

func TestLastTransactionToolErrorText(t *testing.T) {
	stub := &stubRPC{sigsErr: errors.New("rpc unavailable")}
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", stub)), "get-mainnet-last-transaction")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	text := textContent(t, result)
	assert.True(t, strings.HasPrefix(text, "Error getting transaction: "), text)
	assert.Contains(t, text, "rpc unavailable")
}

func TestLastTransactionToolInvalidAddressCaught(t *testing.T) {
	td := toolByName(t, RegisterClusterTools(testCluster("mainnet", &stubRPC{})), "get-mainnet-last-transaction")

	result, err := td.Handler(context.Background(), callRequest("not-an-address"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(textContent(t, result), "Error getting transaction: "))
}

func TestAccountTokensTool(t *testing.T) {
	stub := &stubRPC{tokens: &rpc.GetTokenAccountsResult{}}
	td := toolByName(t, RegisterClusterTools(testCluster("testnet", stub)), "get-testnet-account-tokens")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), `"value"`)
}

func TestAccountTokensToolErrorText(t *testing.T) {
	stub := &stubRPC{tokensErr: errors.New("timeout awaiting response")}
	td := toolByName(t, RegisterClusterTools(testCluster("testnet", stub)), "get-testnet-account-tokens")

	result, err := td.Handler(context.Background(), callRequest(testAddress))

	require.NoError(t, err)
	text := textContent(t, result)
	assert.True(t, strings.HasPrefix(text, "Error getting tokens: "), text)
	assert.Contains(t, text, "timeout awaiting response")
}

// Tools bound to one cluster never touch the other cluster's client.
func TestClustersDoNotCrossCall(t *testing.T) {
	testnetStub := &stubRPC{lamports: 1}
	mainnetStub := &stubRPC{lamports: 2}
	testnetTools := RegisterClusterTools(testCluster("testnet", testnetStub))
	mainnetTools := RegisterClusterTools(testCluster("mainnet", mainnetStub))

	td := toolByName(t, testnetTools, "get-testnet-balance")
	_, err := td.Handler(context.Background(), callRequest(testAddress))
	require.NoError(t, err)

	balance, sigs, tx, tokens := mainnetStub.calls()
	assert.Zero(t, balance+sigs+tx+tokens, "mainnet client must stay untouched")

	td = toolByName(t, mainnetTools, "get-mainnet-account-tokens")
	_, err = td.Handler(context.Background(), callRequest(testAddress))
	require.NoError(t, err)

	balance, _, _, _ = testnetStub.calls()
	assert.Equal(t, 1, balance, "testnet client sees only its own call")
}

// Two in-flight invocations of different tools complete independently; a
// blocked balance call does not hold up a token query on the other cluster.
func TestConcurrentInvocationsIndependent(t *testing.T) {
	gate := make(chan struct{})
	testnetStub := &stubRPC{lamports: 3_000_000_000, balanceGate: gate}
	mainnetStub := &stubRPC{tokens: &rpc.GetTokenAccountsResult{}}

	balanceTool := toolByName(t, RegisterClusterTools(testCluster("testnet", testnetStub)), "get-testnet-balance")
	tokensTool := toolByName(t, RegisterClusterTools(testCluster("mainnet", mainnetStub)), "get-mainnet-account-tokens")

	balanceDone := make(chan string, 1)
	go func() {
		result, err := balanceTool.Handler(context.Background(), callRequest(testAddress))
		if err != nil || result == nil || len(result.Content) != 1 {
			balanceDone <- fmt.Sprintf("unexpected result %v, err %v", result, err)
			return
		}
		tc, _ := result.Content[0].(mcp.TextContent)
		balanceDone <- tc.Text
	}()

	// The token query finishes while the balance call is still blocked.
	result, err := tokensTool.Handler(context.Background(), callRequest(testAddress))
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), `"value"`)

	close(gate)
	assert.Equal(t, "Balance: 3", <-balanceDone)
}
