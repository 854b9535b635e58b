package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/zkp-registry/internal/fixtures"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/services/rpcsrv"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const groth = "groth16-bn254"

func testAddress(t *testing.T, b byte) string {
	raw := make([]byte, 20)
	raw[0] = b
	s, err := address.Bech32{Prefix: "wasm"}.Encode(raw)
	require.NoError(t, err)
	return s
}

// startNode runs a registry node with RPC enabled and returns its address.
func startNode(t *testing.T, modify func(*config.Config)) string {
	cfg := config.Default()
	cfg.ApplicationConfiguration.RPC.Enabled = true
	cfg.ApplicationConfiguration.RPC.Addresses = []string{"127.0.0.1:0"}
	if modify != nil {
		modify(&cfg)
	}
	logger := zaptest.NewLogger(t)
	host, err := core.NewHost(storage.NewMemoryStore(), cfg.ProtocolConfiguration, 0, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })

	srv := rpcsrv.New(host, cfg.ProtocolConfiguration, cfg.ApplicationConfiguration.RPC, logger, make(chan error, 1))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Shutdown)
	addrs := srv.Addresses()
	require.Len(t, addrs, 1)
	return addrs[0]
}

func TestGetEndpoint(t *testing.T) {
	host := "http://localhost:1234"
	u, err := url.Parse(host)
	require.NoError(t, err)
	client := Client{
		endpoint: u,
	}
	require.Equal(t, host, client.Endpoint())
}

func TestNewBadEndpoint(t *testing.T) {
	_, err := New(context.Background(), "localhost", Options{})
	require.Error(t, err)
	_, err = New(context.Background(), "http://[::1", Options{})
	require.Error(t, err)
}

func TestFunds(t *testing.T) {
	c, err := state.NewCoin("token", "100500")
	require.NoError(t, err)
	require.Equal(t, []neorpc.Coin{{Denom: "token", Amount: "100500"}}, Funds(state.Coins{*c}))
	require.Equal(t, []neorpc.Coin{}, Funds(nil))
}

func TestClientRegistry(t *testing.T) {
	addr := startNode(t, func(cfg *config.Config) {
		cfg.ProtocolConfiguration.Fees.KeyRegistration = &config.Coin{Denom: "token", Amount: "2"}
	})
	c, err := New(context.Background(), "http://"+addr, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.Ping())

	v, err := c.GetVersion()
	require.NoError(t, err)
	require.Equal(t, config.UserAgent(), v.UserAgent)
	require.Equal(t, core.Version, v.DBVersion)

	cfg, err := c.GetConfig(groth)
	require.NoError(t, err)
	require.NotNil(t, cfg.KeyRegistrationFee)
	require.Equal(t, "2token", cfg.KeyRegistrationFee.String())
	require.Nil(t, cfg.ProofSubmissionFee)

	issuer, prover := testAddress(t, 1), testAddress(t, 2)
	require.NoError(t, c.ValidateAddress(issuer))
	require.Error(t, c.ValidateAddress("AJeAEsmeD6t279Dx4n2HWdUvUmmXQ4iJvP"))

	err = c.RegisterKey(groth, issuer, nil, json.RawMessage(fixtures.Groth16BN254Key))
	require.ErrorIs(t, err, neorpc.ErrInsufficientFunds)

	funds := []neorpc.Coin{{Denom: "token", Amount: "2"}}
	require.NoError(t, c.RegisterKey(groth, issuer, funds, json.RawMessage(fixtures.Groth16BN254Key)))

	key, err := c.GetIssuerKey(groth, issuer)
	require.NoError(t, err)
	require.NotEmpty(t, key)

	issuers, err := c.GetIssuers(groth)
	require.NoError(t, err)
	require.Equal(t, []string{issuer}, issuers)

	_, err = c.GetProverLatest(groth, prover)
	require.ErrorIs(t, err, neorpc.ErrNotFound)

	res, err := c.SubmitProof(groth, prover, nil, issuer, json.RawMessage(fixtures.Groth16BN254Proof))
	require.NoError(t, err)
	require.True(t, res.IsValid)

	latest, err := c.GetProverLatest(groth, prover)
	require.NoError(t, err)
	require.Equal(t, res, latest)

	pair, err := c.GetProofResult(groth, issuer, prover)
	require.NoError(t, err)
	require.Equal(t, res, pair)

	_, err = c.SubmitProof(groth, prover, nil, testAddress(t, 3), json.RawMessage(fixtures.Groth16BN254Proof))
	require.ErrorIs(t, err, neorpc.ErrUnknownIssuer)

	_, err = c.GetIssuers("groth16-bn255")
	require.ErrorIs(t, err, neorpc.ErrInvalidParams)
}

func TestClientHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	_, err = c.GetVersion()
	require.ErrorContains(t, err, "HTTP 502")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1}`))
	}))
	t.Cleanup(empty.Close)
	c, err = New(context.Background(), empty.URL, Options{})
	require.NoError(t, err)
	_, err = c.GetVersion()
	require.ErrorContains(t, err, "no result returned")
}

func TestRequestIDs(t *testing.T) {
	var ids []uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "zkreg-test", r.Header.Get("User-Agent"))
		req := new(neorpc.Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))
		ids = append(ids, req.ID)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":["a"]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{UserAgent: "zkreg-test"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = c.GetIssuers(groth)
		require.NoError(t, err)
	}
	require.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestWSClient(t *testing.T) {
	addr := startNode(t, func(cfg *config.Config) {
		cfg.ProtocolConfiguration.PersistFailedProofs = true
	})
	c, err := NewWS(context.Background(), "ws://"+addr+"/ws", Options{})
	require.NoError(t, err)

	// Regular calls work over websocket too.
	v, err := c.GetVersion()
	require.NoError(t, err)
	require.Equal(t, config.UserAgent(), v.UserAgent)

	issuer, prover := testAddress(t, 1), testAddress(t, 2)
	valid := true
	keyID, err := c.ReceiveKeyRegistered(&neorpc.EventFilter{Issuer: &issuer})
	require.NoError(t, err)
	proofID, err := c.ReceiveProofVerified(&neorpc.EventFilter{Prover: &prover, IsValid: &valid})
	require.NoError(t, err)
	require.NotEqual(t, keyID, proofID)

	_, err = c.ReceiveKeyRegistered(&neorpc.EventFilter{Prover: &prover})
	require.Error(t, err)

	require.NoError(t, c.RegisterKey(groth, testAddress(t, 5), nil, json.RawMessage(fixtures.Groth16BN254Key)))
	require.NoError(t, c.RegisterKey(groth, issuer, nil, json.RawMessage(fixtures.Groth16BN254Key)))

	n := <-c.Notifications
	require.Equal(t, neorpc.KeyRegisteredEventID, n.Type)
	require.Equal(t, &registryevent.Event{
		Type:    registryevent.KeyRegistered,
		Scheme:  scheme.Groth16BN254,
		Issuer:  issuer,
		IsValid: true,
	}, n.Value)

	// Invalid proof is filtered out.
	wrong := testAddress(t, 3)
	wrongKey := strings.Replace(fixtures.Groth16BN254Key, `"public_signal":"33"`, `"public_signal":"30"`, 1)
	require.NoError(t, c.RegisterKey(groth, wrong, nil, json.RawMessage(wrongKey)))
	res, err := c.SubmitProof(groth, prover, nil, wrong, json.RawMessage(fixtures.Groth16BN254Proof))
	require.NoError(t, err)
	require.False(t, res.IsValid)
	_, err = c.SubmitProof(groth, prover, nil, issuer, json.RawMessage(fixtures.Groth16BN254Proof))
	require.NoError(t, err)

	n = <-c.Notifications
	require.Equal(t, neorpc.ProofVerifiedEventID, n.Type)
	require.Equal(t, prover, n.Value.Prover)
	require.Equal(t, issuer, n.Value.Issuer)
	require.True(t, n.Value.IsValid)

	require.NoError(t, c.Unsubscribe(keyID))
	require.Error(t, c.Unsubscribe(keyID))
	require.NoError(t, c.UnsubscribeAll())

	require.NoError(t, c.RegisterKey(groth, issuer, nil, json.RawMessage(fixtures.Groth16BN254Key)))
	require.Never(t, func() bool { return len(c.Notifications) != 0 }, 200*time.Millisecond, 20*time.Millisecond)

	c.Close()
	_, ok := <-c.Notifications
	require.False(t, ok)
	_, err = c.GetVersion()
	require.ErrorIs(t, err, ErrWSConnLost)
}
