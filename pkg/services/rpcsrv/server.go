package rpcsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registry"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc/result"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc/rpcevent"
	"github.com/nspcc-dev/zkp-registry/pkg/services/rpcsrv/params"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	// Registry abstracts away the core.Host as used by the RPC server.
	Registry interface {
		Config(id scheme.ID) (*state.Config, error)
		IssuerKey(id scheme.ID, issuer string) (scheme.Key, error)
		Issuers(id scheme.ID) ([]string, error)
		ProverLatest(id scheme.ID, prover string) (*registry.ProofResult, error)
		RegisterKey(id scheme.ID, sender string, funds state.Coins, msg []byte) error
		Result(id scheme.ID, issuer, prover string) (*registry.ProofResult, error)
		Schemes() []scheme.ID
		SubmitProof(id scheme.ID, sender string, funds state.Coins, issuer string, msg []byte) (*registry.ProofResult, error)
		SubscribeForEvents(ch chan<- registryevent.Event)
		UnsubscribeFromEvents(ch chan<- registryevent.Event)
		ValidateAddress(a string) bool
	}

	// Server represents the JSON-RPC 2.0 server.
	Server struct {
		http     []*http.Server
		registry Registry
		protocol config.ProtocolConfiguration
		config   config.RPC
		// wsReadLimit represents web-socket message limit for a receiving side.
		wsReadLimit int64
		upgrader    websocket.Upgrader
		log         *zap.Logger
		shutdown    chan struct{}
		started     atomic.Bool
		errChan     chan error

		subsLock    sync.RWMutex
		subscribers map[*subscriber]bool

		subsCounterLock sync.RWMutex
		eventSubs       int

		eventCh chan registryevent.Event
	}
)

const (
	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2
)

var rpcHandlers = map[string]func(*Server, params.Params) (any, *neorpc.Error){
	"getconfig":       (*Server).getConfig,
	"getissuerkey":    (*Server).getIssuerKey,
	"getissuers":      (*Server).getIssuers,
	"getproofresult":  (*Server).getProofResult,
	"getproverlatest": (*Server).getProverLatest,
	"getversion":      (*Server).getVersion,
	"registerkey":     (*Server).registerKey,
	"submitproof":     (*Server).submitProof,
	"validateaddress": (*Server).validateAddress,
}

var rpcWsHandlers = map[string]func(*Server, params.Params, *subscriber) (any, *neorpc.Error){
	"subscribe":   (*Server).subscribe,
	"unsubscribe": (*Server).unsubscribe,
}

// New creates a new Server struct. Errors of running HTTP servers are
// reported via errChan.
func New(reg Registry, protocol config.ProtocolConfiguration, conf config.RPC, log *zap.Logger, errChan chan error) *Server {
	if conf.MaxWebSocketClients == 0 {
		conf.MaxWebSocketClients = config.DefaultMaxWebSocketClients
		log.Info("MaxWebSocketClients is not set or wrong, setting default value", zap.Int("MaxWebSocketClients", config.DefaultMaxWebSocketClients))
	}
	if conf.MaxRequestBodyBytes <= 0 {
		conf.MaxRequestBodyBytes = config.DefaultMaxRequestBodyBytes
	}
	if conf.MaxRequestHeaderBytes <= 0 {
		conf.MaxRequestHeaderBytes = config.DefaultMaxRequestHeaderBytes
	}
	httpServers := make([]*http.Server, len(conf.Addresses))
	for i, addr := range conf.Addresses {
		httpServers[i] = &http.Server{
			Addr:           addr,
			MaxHeaderBytes: conf.MaxRequestHeaderBytes,
		}
	}

	var wsOriginChecker func(*http.Request) bool
	if conf.EnableCORSWorkaround {
		wsOriginChecker = func(_ *http.Request) bool { return true }
	}
	return &Server{
		http:        httpServers,
		registry:    reg,
		protocol:    protocol,
		config:      conf,
		wsReadLimit: int64(conf.MaxRequestBodyBytes),
		upgrader:    websocket.Upgrader{CheckOrigin: wsOriginChecker},
		log:         log,
		shutdown:    make(chan struct{}),
		errChan:     errChan,

		subscribers: make(map[*subscriber]bool),
		// This one is NOT buffered to preserve original order of events.
		eventCh: make(chan registryevent.Event),
	}
}

// Name returns service name.
func (s *Server) Name() string {
	return "rpc"
}

// Start creates a new JSON-RPC server listening on the configured addresses.
// Listening errors are returned, errors of running servers are sent to
// errChan passed to New(). The Server only starts once, subsequent calls to
// Start are no-op.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.log.Info("RPC server is not enabled")
		return nil
	}
	if !s.started.CompareAndSwap(false, true) {
		s.log.Info("RPC server already started")
		return nil
	}

	go s.handleSubEvents()
	for _, srv := range s.http {
		srv.Handler = http.HandlerFunc(s.handleHTTPRequest)
		s.log.Info("starting rpc-server", zap.String("endpoint", srv.Addr))

		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
		srv.Addr = ln.Addr().String() // set Addr to the actual address
		go func(srv *http.Server) {
			err := srv.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("failed to start RPC server", zap.Error(err))
				s.errChan <- err
			}
		}(srv)
	}
	return nil
}

// Addresses returns the actual listen addresses, valid after Start.
func (s *Server) Addresses() []string {
	res := make([]string, len(s.http))
	for i, srv := range s.http {
		res[i] = srv.Addr
	}
	return res
}

// Shutdown stops the RPC server if it's running. It can only be called once,
// subsequent calls to Shutdown on the same instance are no-op. The instance
// that was stopped can not be started again by calling Start (use a new
// instance if needed).
func (s *Server) Shutdown() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	// Signal to websocket writer routines and handleSubEvents.
	close(s.shutdown)

	for _, srv := range s.http {
		s.log.Info("shutting down RPC server", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			s.log.Warn("error during RPC (http) server shutdown", zap.Error(err))
		}
	}

	// Wait for handleSubEvents to finish.
	for range s.eventCh {
	}
	_ = s.log.Sync()
}

func (s *Server) handleHTTPRequest(w http.ResponseWriter, httpRequest *http.Request) {
	req := params.NewRequest()

	if httpRequest.URL.Path == "/ws" && httpRequest.Method == "GET" {
		// Technically there is a race between this check and
		// s.subscribers modification below, but it's tiny
		// and not really critical to bother with it. Some additional
		// clients may sneak in, no big deal.
		s.subsLock.RLock()
		numOfSubs := len(s.subscribers)
		s.subsLock.RUnlock()
		if numOfSubs >= s.config.MaxWebSocketClients {
			s.writeHTTPErrorResponse(
				params.NewIn(),
				w,
				neorpc.NewInternalServerError("websocket users limit reached"),
			)
			return
		}
		ws, err := s.upgrader.Upgrade(w, httpRequest, nil)
		if err != nil {
			s.log.Info("websocket connection upgrade failed", zap.Error(err))
			return
		}
		resChan := make(chan abstractResult) // response.abstract or response.abstractBatch
		subChan := make(chan *websocket.PreparedMessage, notificationBufSize)
		subscr := &subscriber{writer: subChan, id: uuid.New()}
		s.subsLock.Lock()
		s.subscribers[subscr] = true
		s.subsLock.Unlock()
		s.log.Debug("websocket client connected", zap.Stringer("client", subscr.id),
			zap.String("remote", httpRequest.RemoteAddr))
		go s.handleWsWrites(ws, resChan, subChan)
		s.handleWsReads(ws, resChan, subscr)
		return
	}

	if httpRequest.Method == "OPTIONS" && s.config.EnableCORSWorkaround { // Preflight CORS.
		setCORSOriginHeaders(w.Header())
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST") // GET for websockets.
		w.Header().Set("Access-Control-Max-Age", "21600")           // 6 hours.
		return
	}

	if httpRequest.Method != "POST" {
		s.writeHTTPErrorResponse(
			params.NewIn(),
			w,
			neorpc.NewInvalidParamsError(fmt.Sprintf("invalid method '%s', please retry with 'POST'", httpRequest.Method)),
		)
		return
	}

	httpRequest.Body = http.MaxBytesReader(w, httpRequest.Body, int64(s.config.MaxRequestBodyBytes))
	err := req.DecodeData(httpRequest.Body)
	if err != nil {
		s.writeHTTPErrorResponse(params.NewIn(), w, neorpc.NewParseError(err.Error()))
		return
	}

	resp := s.handleRequest(req, nil)
	s.writeHTTPServerResponse(req, w, resp)
}

func (s *Server) handleRequest(req *params.Request, sub *subscriber) abstractResult {
	if req.In != nil {
		req.In.Method = escapeForLog(req.In.Method) // No valid method name will be changed by it.
		return s.handleIn(req.In, sub)
	}
	resp := make(abstractBatch, len(req.Batch))
	for i, in := range req.Batch {
		in.Method = escapeForLog(in.Method) // No valid method name will be changed by it.
		resp[i] = s.handleIn(&in, sub)
	}
	return resp
}

func (s *Server) handleIn(req *params.In, sub *subscriber) abstract {
	var res any
	var resErr *neorpc.Error
	if req.JSONRPC != neorpc.JSONRPCVersion {
		return s.packResponse(req, nil, neorpc.NewInvalidRequestError(fmt.Sprintf("problem parsing JSON: invalid version, expected 2.0 got '%s'", req.JSONRPC)))
	}

	reqParams := params.Params(req.RawParams)

	s.log.Debug("processing rpc request",
		zap.String("method", req.Method),
		zap.Stringer("params", reqParams))

	start := time.Now()
	defer func() { addReqMetrics(req.Method, time.Since(start), resErr) }()

	resErr = neorpc.NewMethodNotFoundError(fmt.Sprintf("method %q not supported", req.Method))
	handler, ok := rpcHandlers[req.Method]
	if ok {
		res, resErr = handler(s, reqParams)
	} else if sub != nil {
		handler, ok := rpcWsHandlers[req.Method]
		if ok {
			res, resErr = handler(s, reqParams, sub)
		}
	}
	return s.packResponse(req, res, resErr)
}

func (s *Server) handleWsWrites(ws *websocket.Conn, resChan <-chan abstractResult, subChan <-chan *websocket.PreparedMessage) {
	pingTicker := time.NewTicker(wsPingPeriod)
eventloop:
	for {
		select {
		case <-s.shutdown:
			break eventloop
		case event, ok := <-subChan:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WritePreparedMessage(event); err != nil {
				break eventloop
			}
		case res, ok := <-resChan:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteJSON(res); err != nil {
				break eventloop
			}
		case <-pingTicker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				break eventloop
			}
		}
	}
	ws.Close()
	pingTicker.Stop()
	// Drain notification channel as there might be some goroutines blocked
	// on it.
drainloop:
	for {
		select {
		case _, ok := <-subChan:
			if !ok {
				break drainloop
			}
		default:
			break drainloop
		}
	}
}

func (s *Server) handleWsReads(ws *websocket.Conn, resChan chan<- abstractResult, subscr *subscriber) {
	ws.SetReadLimit(s.wsReadLimit)
	err := ws.SetReadDeadline(time.Now().Add(wsPongLimit))
	ws.SetPongHandler(func(string) error { return ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })
requestloop:
	for err == nil {
		req := params.NewRequest()
		err := ws.ReadJSON(req)
		if err != nil {
			break
		}
		res := s.handleRequest(req, subscr)
		res.RunForErrors(func(jsonErr *neorpc.Error) {
			s.logRequestError(req, jsonErr)
		})
		select {
		case <-s.shutdown:
			break requestloop
		case resChan <- res:
		}
	}

	s.subsLock.Lock()
	delete(s.subscribers, subscr)
	s.subsLock.Unlock()
	s.subsCounterLock.Lock()
	for _, e := range subscr.feeds {
		if e.event != neorpc.InvalidEventID {
			s.unsubscribeFromChannel(e.event)
		}
	}
	s.subsCounterLock.Unlock()
	close(resChan)
	ws.Close()
	s.log.Debug("websocket client disconnected", zap.Stringer("client", subscr.id))
}

func (s *Server) getVersion(_ params.Params) (any, *neorpc.Error) {
	schemes := s.registry.Schemes()
	names := make([]string, len(schemes))
	for i := range schemes {
		names[i] = schemes[i].String()
	}
	format := s.protocol.AddressFormat
	if format == "" {
		format = address.FormatBech32
	}
	return &result.Version{
		UserAgent: config.UserAgent(),
		DBVersion: core.Version,
		Protocol: result.Protocol{
			Schemes:             names,
			AddressFormat:       format,
			AddressPrefix:       s.protocol.AddressPrefix,
			AddressVersion:      s.protocol.AddressVersion,
			PersistFailedProofs: s.protocol.PersistFailedProofs,
		},
		RPC: result.RPC{
			MaxWebSocketClients: s.config.MaxWebSocketClients,
			MaxRequestBodyBytes: s.config.MaxRequestBodyBytes,
		},
	}, nil
}

func (s *Server) validateAddress(reqParams params.Params) (any, *neorpc.Error) {
	addr, err := reqParams.Value(0).GetStringStrict()
	if err != nil {
		return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, err.Error())
	}
	return &result.ValidateAddress{
		Address: addr,
		IsValid: s.registry.ValidateAddress(addr),
	}, nil
}

func schemeFromParam(p *params.Param) (scheme.ID, *neorpc.Error) {
	sch, err := p.GetScheme()
	if err != nil {
		return 0, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("scheme: %s", err))
	}
	return sch.ID(), nil
}

func stringFromParam(ps params.Params, i int, name string) (string, *neorpc.Error) {
	s, err := ps.Value(i).GetStringStrict()
	if err != nil {
		return "", neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("%s: %s", name, err))
	}
	return s, nil
}

func (s *Server) getConfig(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	cfg, err := s.registry.Config(id)
	if err != nil {
		return nil, registryError(err)
	}
	return cfg, nil
}

// registerKey and submitProof act on behalf of the sender given in params.
// Neither the sender nor the funds are authenticated.
func (s *Server) registerKey(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	sender, respErr := stringFromParam(reqParams, 1, "sender")
	if respErr != nil {
		return nil, respErr
	}
	funds, err := reqParams.Value(2).GetCoins()
	if err != nil {
		return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("funds: %s", err))
	}
	msg, err := reqParams.Value(3).GetMessage()
	if err != nil {
		return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("key: %s", err))
	}
	if err = s.registry.RegisterKey(id, sender, funds, msg); err != nil {
		return nil, registryError(err)
	}
	return true, nil
}

func (s *Server) submitProof(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	sender, respErr := stringFromParam(reqParams, 1, "sender")
	if respErr != nil {
		return nil, respErr
	}
	funds, err := reqParams.Value(2).GetCoins()
	if err != nil {
		return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("funds: %s", err))
	}
	issuer, respErr := stringFromParam(reqParams, 3, "issuer")
	if respErr != nil {
		return nil, respErr
	}
	msg, err := reqParams.Value(4).GetMessage()
	if err != nil {
		return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, fmt.Sprintf("proof: %s", err))
	}
	res, err := s.registry.SubmitProof(id, sender, funds, issuer, msg)
	if err != nil {
		return nil, registryError(err)
	}
	return proofResult(res)
}

func (s *Server) getIssuerKey(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	issuer, respErr := stringFromParam(reqParams, 1, "issuer")
	if respErr != nil {
		return nil, respErr
	}
	k, err := s.registry.IssuerKey(id, issuer)
	if err != nil {
		return nil, registryError(err)
	}
	return k, nil
}

func (s *Server) getIssuers(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	issuers, err := s.registry.Issuers(id)
	if err != nil {
		return nil, registryError(err)
	}
	if issuers == nil {
		issuers = []string{}
	}
	return issuers, nil
}

func (s *Server) getProofResult(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	issuer, respErr := stringFromParam(reqParams, 1, "issuer")
	if respErr != nil {
		return nil, respErr
	}
	prover, respErr := stringFromParam(reqParams, 2, "prover")
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.registry.Result(id, issuer, prover)
	if err != nil {
		return nil, registryError(err)
	}
	return proofResult(res)
}

func (s *Server) getProverLatest(reqParams params.Params) (any, *neorpc.Error) {
	id, respErr := schemeFromParam(reqParams.Value(0))
	if respErr != nil {
		return nil, respErr
	}
	prover, respErr := stringFromParam(reqParams, 1, "prover")
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.registry.ProverLatest(id, prover)
	if err != nil {
		return nil, registryError(err)
	}
	return proofResult(res)
}

func proofResult(res *registry.ProofResult) (any, *neorpc.Error) {
	proof, err := res.Proof.MarshalJSON()
	if err != nil {
		return nil, neorpc.NewInternalServerError(fmt.Sprintf("can't marshal proof: %s", err))
	}
	return &result.ProofResult{
		Proof:   proof,
		IsValid: res.IsValid,
	}, nil
}

// registryError converts registry errors into RPC ones keeping the original
// error text as data.
func registryError(err error) *neorpc.Error {
	var e *neorpc.Error
	switch {
	case errors.Is(err, core.ErrSchemeDisabled), errors.Is(err, address.ErrInvalidAddress):
		e = neorpc.ErrInvalidParams
	case errors.Is(err, registry.ErrInsufficientFunds):
		e = neorpc.ErrInsufficientFunds
	case errors.Is(err, zkp.ErrHexDecoding):
		e = neorpc.ErrHexDecoding
	case errors.Is(err, zkp.ErrKeyFormat):
		e = neorpc.ErrKeyFormat
	case errors.Is(err, zkp.ErrProofFormat):
		e = neorpc.ErrProofFormat
	case errors.Is(err, registry.ErrUnknownIssuer):
		e = neorpc.ErrUnknownIssuer
	case errors.Is(err, registry.ErrNotFound):
		e = neorpc.ErrNotFound
	case errors.Is(err, zkp.ErrVerificationEngine):
		e = neorpc.ErrVerificationEngine
	case errors.Is(err, registry.ErrInvalidProof):
		e = neorpc.ErrInvalidProof
	case errors.Is(err, registry.ErrNotInitialized):
		e = neorpc.ErrNotInitialized
	case errors.Is(err, registry.ErrAlreadyInitialized):
		e = neorpc.ErrAlreadyInitialized
	default:
		return neorpc.NewInternalServerError(err.Error())
	}
	return neorpc.WrapErrorWithData(e, err.Error())
}

// subscribe handles subscription requests from websocket clients.
func (s *Server) subscribe(reqParams params.Params, sub *subscriber) (any, *neorpc.Error) {
	streamName, err := reqParams.Value(0).GetString()
	if err != nil {
		return nil, neorpc.ErrInvalidParams
	}
	event, err := neorpc.GetEventIDFromString(streamName)
	if err != nil || event == neorpc.MissedEventID {
		return nil, neorpc.ErrInvalidParams
	}
	// Optional filter.
	var filter any
	if p := reqParams.Value(1); p != nil {
		jd := json.NewDecoder(bytes.NewReader(p.RawMessage))
		jd.DisallowUnknownFields()
		flt := new(neorpc.EventFilter)
		err = jd.Decode(flt)
		if err == nil {
			err = flt.IsValidFor(event)
		}
		if err == nil && flt.Scheme != nil {
			_, err = scheme.ByName(*flt.Scheme)
		}
		if err != nil {
			return nil, neorpc.WrapErrorWithData(neorpc.ErrInvalidParams, err.Error())
		}
		filter = *flt
	}

	s.subsLock.Lock()
	var id int
	for ; id < len(sub.feeds); id++ {
		if sub.feeds[id].event == neorpc.InvalidEventID {
			break
		}
	}
	if id == len(sub.feeds) {
		s.subsLock.Unlock()
		return nil, neorpc.NewInternalServerError("maximum number of subscriptions is reached")
	}
	sub.feeds[id].event = event
	sub.feeds[id].filter = filter
	s.subsLock.Unlock()

	s.subsCounterLock.Lock()
	select {
	case <-s.shutdown:
		s.subsCounterLock.Unlock()
		return nil, neorpc.NewInternalServerError("server is shutting down")
	default:
	}
	s.subscribeToChannel(event)
	s.subsCounterLock.Unlock()
	return strconv.FormatInt(int64(id), 10), nil
}

// subscribeToChannel subscribes RPC server to registry events if it's not yet
// subscribed for them. It's supposed to be called with s.subsCounterLock
// taken by the caller.
func (s *Server) subscribeToChannel(event neorpc.EventID) {
	switch event {
	case neorpc.KeyRegisteredEventID, neorpc.ProofVerifiedEventID:
		if s.eventSubs == 0 {
			s.registry.SubscribeForEvents(s.eventCh)
		}
		s.eventSubs++
	}
}

// unsubscribe handles unsubscription requests from websocket clients.
func (s *Server) unsubscribe(reqParams params.Params, sub *subscriber) (any, *neorpc.Error) {
	id, err := reqParams.Value(0).GetInt()
	if err != nil || id < 0 {
		return nil, neorpc.ErrInvalidParams
	}
	s.subsLock.Lock()
	if len(sub.feeds) <= id || sub.feeds[id].event == neorpc.InvalidEventID {
		s.subsLock.Unlock()
		return nil, neorpc.ErrInvalidParams
	}
	event := sub.feeds[id].event
	sub.feeds[id].event = neorpc.InvalidEventID
	sub.feeds[id].filter = nil
	s.subsLock.Unlock()

	s.subsCounterLock.Lock()
	s.unsubscribeFromChannel(event)
	s.subsCounterLock.Unlock()
	return true, nil
}

// unsubscribeFromChannel unsubscribes RPC server from registry events if
// there are no other subscribers for them. It must be called with
// s.subsCounterLock held by the caller.
func (s *Server) unsubscribeFromChannel(event neorpc.EventID) {
	switch event {
	case neorpc.KeyRegisteredEventID, neorpc.ProofVerifiedEventID:
		s.eventSubs--
		if s.eventSubs != 0 {
			return
		}
		select {
		case <-s.shutdown:
			// handleSubEvents has already unsubscribed.
		default:
			s.unsubscribeRegistry()
		}
	}
}

// unsubscribeRegistry removes eventCh from registry subscribers. The registry
// may be blocked sending to eventCh at the moment, so it's drained until
// unsubscription completes. Nobody is interested in these events anyway.
func (s *Server) unsubscribeRegistry() {
	done := make(chan struct{})
	go func() {
		s.registry.UnsubscribeFromEvents(s.eventCh)
		close(done)
	}()
	for {
		select {
		case <-s.eventCh:
		case <-done:
			return
		}
	}
}

func (s *Server) handleSubEvents() {
	b, err := json.Marshal(neorpc.Notification{
		JSONRPC: neorpc.JSONRPCVersion,
		Event:   neorpc.MissedEventID,
		Payload: make([]any, 0),
	})
	if err != nil {
		s.log.Error("fatal: failed to marshal overflow event", zap.Error(err))
		return
	}
	overflowMsg, err := websocket.NewPreparedMessage(websocket.TextMessage, b)
	if err != nil {
		s.log.Error("fatal: failed to prepare overflow message", zap.Error(err))
		return
	}
chloop:
	for {
		select {
		case <-s.shutdown:
			break chloop
		case e := <-s.eventCh:
			s.broadcast(e, overflowMsg)
		}
	}
	// It's important to do it with subsCounterLock held because no subscription routine
	// should be running concurrently to this one. And even if one is to run
	// after unlock, it'll see closed s.shutdown and won't subscribe.
	s.subsCounterLock.Lock()
	// There might be no subscription in reality, but it's not a problem as
	// core.Host allows unsubscribing non-subscribed channels.
	s.unsubscribeRegistry()
	s.subsCounterLock.Unlock()
	// It's not required closing it, but since it's drained already
	// this is safe and it also allows to give a signal to Shutdown routine.
	close(s.eventCh)
}

// broadcast sends the event to all subscribers with matching feeds.
func (s *Server) broadcast(e registryevent.Event, overflowMsg *websocket.PreparedMessage) {
	var (
		resp = neorpc.Notification{
			JSONRPC: neorpc.JSONRPCVersion,
			Payload: []any{&e},
		}
		msg *websocket.PreparedMessage
	)
	switch e.Type {
	case registryevent.KeyRegistered:
		resp.Event = neorpc.KeyRegisteredEventID
	case registryevent.ProofVerified:
		resp.Event = neorpc.ProofVerifiedEventID
	default:
		return
	}
	s.subsLock.RLock()
	defer s.subsLock.RUnlock()
	for sub := range s.subscribers {
		if sub.overflown.Load() {
			continue
		}
		for i := range sub.feeds {
			if !rpcevent.Matches(sub.feeds[i], &resp) {
				continue
			}
			if msg == nil {
				b, err := json.Marshal(resp)
				if err != nil {
					s.log.Error("failed to marshal notification",
						zap.Error(err),
						zap.String("type", resp.Event.String()))
					return
				}
				msg, err = websocket.NewPreparedMessage(websocket.TextMessage, b)
				if err != nil {
					s.log.Error("failed to prepare notification message",
						zap.Error(err),
						zap.String("type", resp.Event.String()))
					return
				}
			}
			select {
			case sub.writer <- msg:
			default:
				sub.overflown.Store(true)
				// MissedEvent is to be delivered eventually.
				go func(sub *subscriber) {
					sub.writer <- overflowMsg
					sub.overflown.Store(false)
				}(sub)
			}
			// The message is sent only once per subscriber.
			break
		}
	}
}

func (s *Server) packResponse(r *params.In, result any, respErr *neorpc.Error) abstract {
	resp := abstract{
		Header: neorpc.Header{
			JSONRPC: r.JSONRPC,
			ID:      json.RawMessage(r.RawID),
		},
	}
	if respErr != nil {
		resp.Error = respErr
	} else {
		resp.Result = result
	}
	return resp
}

// logRequestError is a request error logger.
func (s *Server) logRequestError(r *params.Request, jsonErr *neorpc.Error) {
	logFields := []zap.Field{
		zap.Int64("code", jsonErr.Code),
	}
	if len(jsonErr.Data) != 0 {
		logFields = append(logFields, zap.String("cause", jsonErr.Data))
	}

	if r.In != nil {
		logFields = append(logFields, zap.String("method", r.In.Method))
		params := params.Params(r.In.RawParams)
		logFields = append(logFields, zap.Stringer("params", params))
	}

	logText := "Error encountered with rpc request"
	switch jsonErr.Code {
	case neorpc.InternalServerErrorCode:
		s.log.Error(logText, logFields...)
	default:
		s.log.Info(logText, logFields...)
	}
}

// writeHTTPErrorResponse writes an error response to the ResponseWriter.
func (s *Server) writeHTTPErrorResponse(r *params.In, w http.ResponseWriter, jsonErr *neorpc.Error) {
	resp := s.packResponse(r, nil, jsonErr)
	s.writeHTTPServerResponse(&params.Request{In: r}, w, resp)
}

func setCORSOriginHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Access-Control-Allow-Headers, Authorization, X-Requested-With")
}

func (s *Server) writeHTTPServerResponse(r *params.Request, w http.ResponseWriter, resp abstractResult) {
	// Errors can happen in many places and we can only catch ALL of them here.
	resp.RunForErrors(func(jsonErr *neorpc.Error) {
		s.logRequestError(r, jsonErr)
	})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if s.config.EnableCORSWorkaround {
		setCORSOriginHeaders(w.Header())
	}
	if r.In != nil {
		resp := resp.(abstract)
		if resp.Error != nil {
			w.WriteHeader(resp.Error.HTTPCode())
		}
	}

	encoder := json.NewEncoder(w)
	err := encoder.Encode(resp)

	if err != nil {
		switch {
		case r.In != nil:
			s.log.Error("Error encountered while encoding response",
				zap.String("err", err.Error()),
				zap.String("method", r.In.Method))
		case r.Batch != nil:
			s.log.Error("Error encountered while encoding batch response",
				zap.String("err", err.Error()))
		}
	}
}

func escapeForLog(in string) string {
	return strings.Map(func(c rune) rune {
		if !strconv.IsGraphic(c) {
			return -1
		}
		return c
	}, in)
}
