package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"go.uber.org/atomic"
)

// WSClient is a websocket-enabled RPC client that can be used with
// appropriate servers. It's generally safe to be used from multiple
// goroutines, but receivers of Notifications must keep up with the event
// flow, otherwise the client stops processing responses.
type WSClient struct {
	Client
	// Notifications is a channel that is used to send events received from
	// the server. It's closed when the connection is lost or Close is called.
	Notifications chan Notification

	ws          *websocket.Conn
	requests    chan *neorpc.Request
	shutdown    chan struct{}
	readerDone  chan struct{}
	writerDone  chan struct{}
	closeCalled atomic.Bool

	respLock     sync.Mutex
	respChannels map[uint64]chan *neorpc.Response

	subscriptionsLock sync.Mutex
	subscriptions     map[string]neorpc.EventID

	errLock sync.Mutex
	err     error
}

// Notification represents a server-generated notification for client
// subscriptions. Value is nil for neorpc.MissedEventID.
type Notification struct {
	Type  neorpc.EventID      `json:"type"`
	Value *registryevent.Event `json:"value"`
}

// wsMessage covers both responses and notifications.
type wsMessage struct {
	neorpc.Response
	Method string            `json:"method,omitempty"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// notificationBufSize is the size of the Notifications channel buffer.
const notificationBufSize = 64

// ErrWSConnLost is returned for requests made after the websocket connection
// was closed.
var ErrWSConnLost = errors.New("connection lost")

// NewWS returns a new WSClient ready to use (with established websocket
// connection). The endpoint should point to the node's "/ws" path, like
// "ws://localhost:20332/ws".
func NewWS(ctx context.Context, endpoint string, opts Options) (*WSClient, error) {
	wsc := &WSClient{
		Notifications: make(chan Notification, notificationBufSize),
		requests:      make(chan *neorpc.Request),
		shutdown:      make(chan struct{}),
		readerDone:    make(chan struct{}),
		writerDone:    make(chan struct{}),
		respChannels:  make(map[uint64]chan *neorpc.Response),
		subscriptions: make(map[string]neorpc.EventID),
	}
	err := initClient(ctx, &wsc.Client, endpoint, opts)
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: wsc.opts.DialTimeout}
	ws, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	wsc.ws = ws
	wsc.requestF = wsc.makeWsRequest
	go wsc.wsReader()
	go wsc.wsWriter()
	return wsc, nil
}

// Close closes connection to the remote side rendering this client instance
// unusable.
func (c *WSClient) Close() {
	if c.closeCalled.CompareAndSwap(false, true) {
		// Closing shutdown channel sends a signal to wsWriter to break out
		// of the loop. In doing so it does ws.Close() closing the network
		// connection which in turn makes wsReader receive an error and
		// break its loop too.
		close(c.shutdown)
	}
	<-c.readerDone
}

// GetError returns the reason of the connection loss if any.
func (c *WSClient) GetError() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()
	return c.err
}

func (c *WSClient) setError(err error) {
	c.errLock.Lock()
	if c.err == nil && !c.closeCalled.Load() {
		c.err = err
	}
	c.errLock.Unlock()
}

func (c *WSClient) wsReader() {
	defer func() {
		c.respLock.Lock()
		for id, ch := range c.respChannels {
			close(ch)
			delete(c.respChannels, id)
		}
		c.respLock.Unlock()
		close(c.Notifications)
		close(c.readerDone)
	}()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.setError(fmt.Errorf("failed to read message: %w", err))
			return
		}
		msg := new(wsMessage)
		if err = json.Unmarshal(data, msg); err != nil {
			c.setError(fmt.Errorf("failed to decode message: %w", err))
			return
		}
		if msg.Method != "" {
			n, err := parseNotification(msg)
			if err != nil {
				c.setError(err)
				return
			}
			select {
			case c.Notifications <- n:
			case <-c.shutdown:
				return
			}
			continue
		}
		var id uint64
		if err = json.Unmarshal(msg.ID, &id); err != nil {
			c.setError(fmt.Errorf("bad response ID %s: %w", string(msg.ID), err))
			return
		}
		c.respLock.Lock()
		ch, ok := c.respChannels[id]
		delete(c.respChannels, id)
		c.respLock.Unlock()
		if ok {
			ch <- &msg.Response
		}
	}
}

func parseNotification(msg *wsMessage) (Notification, error) {
	event, err := neorpc.GetEventIDFromString(msg.Method)
	if err != nil {
		return Notification{}, fmt.Errorf("unknown event %q", msg.Method)
	}
	n := Notification{Type: event}
	if event == neorpc.MissedEventID {
		return n, nil
	}
	if len(msg.Params) != 1 {
		return Notification{}, fmt.Errorf("bad %s notification parameters count %d", event, len(msg.Params))
	}
	n.Value = new(registryevent.Event)
	if err = json.Unmarshal(msg.Params[0], n.Value); err != nil {
		return Notification{}, fmt.Errorf("bad %s notification: %w", event, err)
	}
	return n, nil
}

func (c *WSClient) wsWriter() {
	defer close(c.writerDone)
writeloop:
	for {
		select {
		case <-c.shutdown:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.RequestTimeout))
			break writeloop
		case <-c.readerDone:
			break writeloop
		case req := <-c.requests:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.RequestTimeout)); err != nil {
				c.setError(err)
				break writeloop
			}
			if err := c.ws.WriteJSON(req); err != nil {
				c.setError(fmt.Errorf("failed to write request: %w", err))
				break writeloop
			}
		}
	}
	c.ws.Close()
}

func (c *WSClient) connLost() error {
	if err := c.GetError(); err != nil {
		return fmt.Errorf("%w: %w", ErrWSConnLost, err)
	}
	return ErrWSConnLost
}

func (c *WSClient) makeWsRequest(r *neorpc.Request) (*neorpc.Response, error) {
	ch := make(chan *neorpc.Response, 1)
	c.respLock.Lock()
	select {
	case <-c.readerDone:
		c.respLock.Unlock()
		return nil, c.connLost()
	default:
	}
	c.respChannels[r.ID] = ch
	c.respLock.Unlock()

	select {
	case <-c.readerDone:
		return nil, c.connLost()
	case <-c.writerDone:
		return nil, c.connLost()
	case c.requests <- r:
	}

	timer := time.NewTimer(c.opts.RequestTimeout)
	defer timer.Stop()
	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, c.connLost()
		}
		return resp, nil
	case <-c.ctx.Done():
		c.dropResponse(r.ID)
		return nil, c.ctx.Err()
	case <-timer.C:
		c.dropResponse(r.ID)
		return nil, fmt.Errorf("request %d timed out", r.ID)
	}
}

func (c *WSClient) dropResponse(id uint64) {
	c.respLock.Lock()
	delete(c.respChannels, id)
	c.respLock.Unlock()
}

func (c *WSClient) performSubscription(event neorpc.EventID, filter *neorpc.EventFilter) (string, error) {
	var (
		params = []any{event.String()}
		resp   string
	)
	if filter != nil {
		if err := filter.IsValidFor(event); err != nil {
			return "", err
		}
		params = append(params, filter)
	}
	if err := c.performRequest("subscribe", params, &resp); err != nil {
		return "", err
	}
	c.subscriptionsLock.Lock()
	c.subscriptions[resp] = event
	c.subscriptionsLock.Unlock()
	return resp, nil
}

// ReceiveKeyRegistered registers the client for key registration events,
// an optional filter narrows them down by scheme and issuer. It returns
// the subscription ID to be used with Unsubscribe.
func (c *WSClient) ReceiveKeyRegistered(filter *neorpc.EventFilter) (string, error) {
	return c.performSubscription(neorpc.KeyRegisteredEventID, filter)
}

// ReceiveProofVerified registers the client for proof verification events,
// an optional filter narrows them down by scheme, issuer, prover and
// verification outcome.
func (c *WSClient) ReceiveProofVerified(filter *neorpc.EventFilter) (string, error) {
	return c.performSubscription(neorpc.ProofVerifiedEventID, filter)
}

// Unsubscribe removes subscription for the given event stream.
func (c *WSClient) Unsubscribe(id string) error {
	c.subscriptionsLock.Lock()
	_, ok := c.subscriptions[id]
	c.subscriptionsLock.Unlock()
	if !ok {
		return errors.New("no subscription with this ID")
	}
	num, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("bad subscription ID: %w", err)
	}
	var resp bool
	if err = c.performRequest("unsubscribe", []any{num}, &resp); err != nil {
		return err
	}
	if !resp {
		return errors.New("unsubscribe method returned false result")
	}
	c.subscriptionsLock.Lock()
	delete(c.subscriptions, id)
	c.subscriptionsLock.Unlock()
	return nil
}

// UnsubscribeAll removes all active subscriptions of the current connection.
func (c *WSClient) UnsubscribeAll() error {
	c.subscriptionsLock.Lock()
	ids := make([]string, 0, len(c.subscriptions))
	for id := range c.subscriptions {
		ids = append(ids, id)
	}
	c.subscriptionsLock.Unlock()
	for _, id := range ids {
		if err := c.Unsubscribe(id); err != nil {
			return err
		}
	}
	return nil
}
