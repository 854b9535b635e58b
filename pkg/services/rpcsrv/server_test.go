package rpcsrv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nspcc-dev/zkp-registry/internal/fixtures"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc/result"
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

func initServer(t *testing.T, modify func(*config.Config)) (*core.Host, *Server, *httptest.Server) {
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

	rpcServer := New(host, cfg.ProtocolConfiguration, cfg.ApplicationConfiguration.RPC, logger, make(chan error, 1))
	require.NoError(t, rpcServer.Start())
	t.Cleanup(rpcServer.Shutdown)

	srv := httptest.NewServer(http.HandlerFunc(rpcServer.handleHTTPRequest))
	t.Cleanup(srv.Close)
	return host, rpcServer, srv
}

func request(method string, params ...string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":[%s]}`, method, strings.Join(params, ","))
}

func doRequest(t *testing.T, url string, body string) (int, []byte) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func call(t *testing.T, url string, body string) *neorpc.Response {
	_, data := doRequest(t, url, body)
	res := new(neorpc.Response)
	require.NoError(t, json.Unmarshal(data, res), string(data))
	return res
}

func callOK(t *testing.T, url string, body string, out any) {
	res := call(t, url, body)
	require.Nil(t, res.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(res.Result, out))
	}
}

func q(s string) string {
	return fmt.Sprintf("%q", s)
}

func TestGetVersion(t *testing.T) {
	_, _, srv := initServer(t, func(cfg *config.Config) {
		cfg.ProtocolConfiguration.Schemes = []string{"plonk-bn254", groth}
	})
	var v result.Version
	callOK(t, srv.URL, request("getversion"), &v)
	require.Equal(t, config.UserAgent(), v.UserAgent)
	require.Equal(t, core.Version, v.DBVersion)
	require.Equal(t, []string{"plonk-bn254", groth}, v.Protocol.Schemes)
	require.Equal(t, "bech32", v.Protocol.AddressFormat)
	require.Equal(t, "wasm", v.Protocol.AddressPrefix)
	require.Equal(t, config.DefaultMaxWebSocketClients, v.RPC.MaxWebSocketClients)
}

func TestRegisterAndSubmit(t *testing.T) {
	host, _, srv := initServer(t, nil)
	issuer, prover := testAddress(t, 1), testAddress(t, 2)

	var ok bool
	callOK(t, srv.URL, request("registerkey", q(groth), q(issuer), "[]", fixtures.Groth16BN254Key), &ok)
	require.True(t, ok)

	var key json.RawMessage
	callOK(t, srv.URL, request("getissuerkey", q(groth), q(issuer)), &key)
	stored, err := host.IssuerKey(scheme.Groth16BN254, issuer)
	require.NoError(t, err)
	expected, err := stored.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(expected), string(key))

	var issuers []string
	callOK(t, srv.URL, request("getissuers", q(groth)), &issuers)
	require.Equal(t, []string{issuer}, issuers)

	// Messages can be passed as JSON strings too.
	var res result.ProofResult
	callOK(t, srv.URL, request("submitproof", q(groth), q(prover), "null", q(issuer), q(fixtures.Groth16BN254Proof)), &res)
	require.True(t, res.IsValid)

	var latest result.ProofResult
	callOK(t, srv.URL, request("getproverlatest", q(groth), q(prover)), &latest)
	require.Equal(t, res, latest)

	var pair result.ProofResult
	callOK(t, srv.URL, request("getproofresult", q(groth), q(issuer), q(prover)), &pair)
	require.Equal(t, res, pair)

	var cfg map[string]any
	callOK(t, srv.URL, request("getconfig", q(groth)), &cfg)
	require.Empty(t, cfg)

	var va result.ValidateAddress
	callOK(t, srv.URL, request("validateaddress", q(issuer)), &va)
	require.Equal(t, result.ValidateAddress{Address: issuer, IsValid: true}, va)
	callOK(t, srv.URL, request("validateaddress", q("wasm1")), &va)
	require.False(t, va.IsValid)
}

func TestErrorCodes(t *testing.T) {
	_, _, srv := initServer(t, func(cfg *config.Config) {
		cfg.ProtocolConfiguration.Schemes = []string{groth, "groth16-bls12381"}
		cfg.ProtocolConfiguration.Fees.ProofSubmission = &config.Coin{Denom: "token", Amount: "10"}
	})
	issuer, prover, wrong := testAddress(t, 1), testAddress(t, 2), testAddress(t, 3)
	funds := `[{"denom":"token","amount":"10"}]`
	wrongKey := strings.Replace(fixtures.Groth16BN254Key, `"public_signal":"33"`, `"public_signal":"30"`, 1)
	callOK(t, srv.URL, request("registerkey", q(groth), q(issuer), "[]", fixtures.Groth16BN254Key), nil)
	callOK(t, srv.URL, request("registerkey", q(groth), q(wrong), "[]", wrongKey), nil)

	testCases := []struct {
		name     string
		body     string
		code     int64
		httpCode int
	}{
		{"parse", `{"jsonrpc":"2.0",`, neorpc.BadRequestCode, http.StatusBadRequest},
		{"version", `{"jsonrpc":"1.0","id":1,"method":"getversion","params":[]}`, neorpc.InvalidRequestCode, http.StatusUnprocessableEntity},
		{"method", request("getblock"), neorpc.MethodNotFoundCode, http.StatusMethodNotAllowed},
		{"subscribe over http", request("subscribe", q("key_registered")), neorpc.MethodNotFoundCode, http.StatusMethodNotAllowed},
		{"unknown scheme", request("getconfig", q("snark")), neorpc.InvalidParamsCode, http.StatusUnprocessableEntity},
		{"disabled scheme", request("getconfig", q("plonk-bn254")), neorpc.InvalidParamsCode, http.StatusUnprocessableEntity},
		{"missing param", request("getissuerkey", q(groth)), neorpc.InvalidParamsCode, http.StatusUnprocessableEntity},
		{"bad funds", request("registerkey", q(groth), q(issuer), q("10token"), fixtures.Groth16BN254Key), neorpc.InvalidParamsCode, http.StatusUnprocessableEntity},
		{"address", request("getissuerkey", q(groth), q("cosmos1xyz")), neorpc.InvalidParamsCode, http.StatusUnprocessableEntity},
		{"funds", request("submitproof", q(groth), q(prover), "[]", q(issuer), fixtures.Groth16BN254Proof), neorpc.InsufficientFundsCode, http.StatusUnprocessableEntity},
		{"hex", request("registerkey", q(groth), q(issuer), "[]", strings.Replace(fixtures.Groth16BN254Key, `"vk_ic1":"17`, `"vk_ic1":"zz`, 1)), neorpc.HexDecodingCode, http.StatusUnprocessableEntity},
		{"key format", request("registerkey", q(groth), q(issuer), "[]", `{"public_signal":"33"}`), neorpc.KeyFormatCode, http.StatusUnprocessableEntity},
		{"proof format", request("submitproof", q(groth), q(prover), funds, q(issuer), fixtures.Groth16BLS12381Proof), neorpc.ProofFormatCode, http.StatusUnprocessableEntity},
		{"unknown issuer", request("submitproof", q(groth), q(prover), funds, q(prover), fixtures.Groth16BN254Proof), neorpc.UnknownIssuerCode, http.StatusUnprocessableEntity},
		{"not found", request("getproverlatest", q(groth), q(prover)), neorpc.NotFoundCode, http.StatusUnprocessableEntity},
		{"invalid proof", request("submitproof", q(groth), q(prover), funds, q(wrong), fixtures.Groth16BN254Proof), neorpc.InvalidProofCode, http.StatusUnprocessableEntity},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpCode, data := doRequest(t, srv.URL, tc.body)
			require.Equal(t, tc.httpCode, httpCode)
			res := new(neorpc.Response)
			require.NoError(t, json.Unmarshal(data, res))
			require.NotNil(t, res.Error)
			require.Equal(t, tc.code, res.Error.Code, res.Error.Error())
			require.Nil(t, res.Result)
		})
	}
}

func TestBatch(t *testing.T) {
	_, _, srv := initServer(t, nil)
	body := "[" + request("getversion") + "," + request("getconfig", q("snark")) + "]"
	httpCode, data := doRequest(t, srv.URL, body)
	// Batches are always 200, errors are per-request.
	require.Equal(t, http.StatusOK, httpCode)

	var res []neorpc.Response
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res, 2)
	require.Nil(t, res[0].Error)
	require.NotNil(t, res[1].Error)
	require.Equal(t, int64(neorpc.InvalidParamsCode), res[1].Error.Code)
}

func TestHTTPMethods(t *testing.T) {
	_, _, srv := initServer(t, func(cfg *config.Config) {
		cfg.ApplicationConfiguration.RPC.EnableCORSWorkaround = true
		cfg.ApplicationConfiguration.RPC.MaxRequestBodyBytes = 512
	})
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "GET, POST", resp.Header.Get("Access-Control-Allow-Methods"))

	// Body limit.
	httpCode, _ := doRequest(t, srv.URL, request("registerkey", q(groth), q(testAddress(t, 1)), "[]", fixtures.Groth16BN254Key))
	require.Equal(t, http.StatusBadRequest, httpCode)
}

func TestListen(t *testing.T) {
	_, rpcServer, _ := initServer(t, nil)
	addr := rpcServer.Addresses()[0]
	require.NotEqual(t, "127.0.0.1:0", addr)

	var v result.Version
	callOK(t, "http://"+addr, request("getversion"), &v)
	require.Equal(t, core.Version, v.DBVersion)
	// Second start is a no-op.
	require.NoError(t, rpcServer.Start())
}

func TestDisabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	host, err := core.NewHost(storage.NewMemoryStore(), config.Default().ProtocolConfiguration, 0, logger)
	require.NoError(t, err)
	defer host.Close()

	s := New(host, config.Default().ProtocolConfiguration, config.RPC{}, logger, nil)
	require.NoError(t, s.Start())
	s.Shutdown()
}

type notification struct {
	JSONRPC string                `json:"jsonrpc"`
	Event   neorpc.EventID        `json:"method"`
	Payload []registryevent.Event `json:"params"`
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, r, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	r.Body.Close()
	t.Cleanup(func() { ws.Close() })
	return ws
}

func wsCall(t *testing.T, ws *websocket.Conn, body string) *neorpc.Response {
	require.NoError(t, ws.SetWriteDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(body)))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	res := new(neorpc.Response)
	require.NoError(t, json.Unmarshal(data, res))
	return res
}

func readNotification(t *testing.T, ws *websocket.Conn) notification {
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var ntf notification
	require.NoError(t, json.Unmarshal(data, &ntf))
	return ntf
}

func TestSubscriptions(t *testing.T) {
	_, _, srv := initServer(t, func(cfg *config.Config) {
		cfg.ProtocolConfiguration.PersistFailedProofs = true
	})
	issuer, prover, wrong := testAddress(t, 1), testAddress(t, 2), testAddress(t, 3)
	ws := dialWS(t, srv)

	res := wsCall(t, ws, request("subscribe", q("key_registered"), `{"issuer":`+q(issuer)+`}`))
	require.Nil(t, res.Error)
	require.Equal(t, `"0"`, string(res.Result))
	res = wsCall(t, ws, request("subscribe", q("proof_verified"), `{"scheme":`+q(groth)+`,"is_valid":false}`))
	require.Nil(t, res.Error)
	require.Equal(t, `"1"`, string(res.Result))

	wrongKey := strings.Replace(fixtures.Groth16BN254Key, `"public_signal":"33"`, `"public_signal":"30"`, 1)
	callOK(t, srv.URL, request("registerkey", q(groth), q(wrong), "[]", wrongKey), nil)
	callOK(t, srv.URL, request("registerkey", q(groth), q(issuer), "[]", fixtures.Groth16BN254Key), nil)
	callOK(t, srv.URL, request("submitproof", q(groth), q(prover), "[]", q(issuer), fixtures.Groth16BN254Proof), nil)
	callOK(t, srv.URL, request("submitproof", q(groth), q(prover), "[]", q(wrong), fixtures.Groth16BN254Proof), nil)

	// Registration of wrong and valid proof submission are filtered out.
	ntf := readNotification(t, ws)
	require.Equal(t, neorpc.KeyRegisteredEventID, ntf.Event)
	require.Equal(t, []registryevent.Event{{
		Type:    registryevent.KeyRegistered,
		Scheme:  scheme.Groth16BN254,
		Issuer:  issuer,
		IsValid: true,
	}}, ntf.Payload)

	ntf = readNotification(t, ws)
	require.Equal(t, neorpc.ProofVerifiedEventID, ntf.Event)
	require.Equal(t, []registryevent.Event{{
		Type:   registryevent.ProofVerified,
		Scheme: scheme.Groth16BN254,
		Issuer: wrong,
		Prover: prover,
	}}, ntf.Payload)

	res = wsCall(t, ws, request("unsubscribe", "0"))
	require.Nil(t, res.Error)
	res = wsCall(t, ws, request("unsubscribe", "0"))
	require.NotNil(t, res.Error)
	require.Equal(t, int64(neorpc.InvalidParamsCode), res.Error.Code)

	// Regular calls work over websocket too.
	res = wsCall(t, ws, request("getproverlatest", q(groth), q(prover)))
	require.Nil(t, res.Error)
}

func TestSubscribeErrors(t *testing.T) {
	_, _, srv := initServer(t, nil)
	ws := dialWS(t, srv)

	for name, body := range map[string]string{
		"no stream":       request("subscribe"),
		"bad stream":      request("subscribe", q("block_added")),
		"missed":          request("subscribe", q("event_missed")),
		"unknown field":   request("subscribe", q("key_registered"), `{"contract":"00"}`),
		"prover filter":   request("subscribe", q("key_registered"), `{"prover":"wasm1"}`),
		"unknown scheme":  request("subscribe", q("proof_verified"), `{"scheme":"snark"}`),
		"bad unsubscribe": request("unsubscribe", q("x")),
	} {
		t.Run(name, func(t *testing.T) {
			res := wsCall(t, ws, body)
			require.NotNil(t, res.Error)
			require.Equal(t, int64(neorpc.InvalidParamsCode), res.Error.Code)
		})
	}

	for i := 0; i < maxFeeds; i++ {
		res := wsCall(t, ws, request("subscribe", q("proof_verified")))
		require.Nil(t, res.Error)
	}
	res := wsCall(t, ws, request("subscribe", q("proof_verified")))
	require.NotNil(t, res.Error)
	require.Equal(t, int64(neorpc.InternalServerErrorCode), res.Error.Code)
}

func TestWSClientsLimit(t *testing.T) {
	_, _, srv := initServer(t, func(cfg *config.Config) {
		cfg.ApplicationConfiguration.RPC.MaxWebSocketClients = 1
	})
	ws := dialWS(t, srv)
	res := wsCall(t, ws, request("getversion"))
	require.Nil(t, res.Error)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, r, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.True(t, bytes.Contains(data, []byte("websocket users limit reached")))
}
