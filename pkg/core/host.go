package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core/dao"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registry"
	"github.com/nspcc-dev/zkp-registry/pkg/core/registryevent"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Version is the version of the DB layout, it's checked on startup.
const Version = "0.1.0"

// ErrSchemeDisabled is returned for requests to schemes that aren't enabled
// in the configuration.
var ErrSchemeDisabled = errors.New("scheme is not enabled")

// Host owns the store and the registries of all enabled schemes.
type Host struct {
	// lock serializes mutating requests.
	lock sync.Mutex

	store      storage.Store
	addr       address.Codec
	registries map[scheme.ID]*registry.Registry
	schemes    []scheme.ID
	log        *zap.Logger

	events  chan registryevent.Event
	subCh   chan chan<- registryevent.Event
	unsubCh chan chan<- registryevent.Event
	stopCh  chan struct{}
	closed  atomic.Bool
}

// NewHost creates a Host over the given store. The store version is checked
// (written into an empty store) and every enabled scheme without a config is
// initialized with the configured fees.
func NewHost(store storage.Store, cfg config.ProtocolConfiguration, keyCacheSize int, log *zap.Logger) (*Host, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	addr, err := cfg.AddressCodec()
	if err != nil {
		return nil, err
	}
	fees, err := cfg.Fees.Config()
	if err != nil {
		return nil, err
	}
	h := &Host{
		store:      store,
		addr:       addr,
		registries: make(map[scheme.ID]*registry.Registry),
		log:        log,
		events:     make(chan registryevent.Event, 64),
		subCh:      make(chan chan<- registryevent.Event),
		unsubCh:    make(chan chan<- registryevent.Event),
		stopCh:     make(chan struct{}),
	}

	d := dao.NewSimple(store)
	if err = d.CheckVersion(dao.Version{Value: Version}); err != nil {
		return nil, err
	}
	for _, name := range cfg.Schemes {
		s, err := scheme.ByName(name)
		if err != nil {
			return nil, err
		}
		r, err := registry.New(s, addr, registry.Options{
			PersistFailedProofs: cfg.PersistFailedProofs,
			KeyCacheSize:        keyCacheSize,
		}, log)
		if err != nil {
			return nil, err
		}
		err = r.Init(d, fees)
		switch {
		case err == nil:
			log.Info("scheme initialized", zap.String("scheme", name),
				zap.Any("fees", fees))
		case errors.Is(err, registry.ErrAlreadyInitialized):
		default:
			return nil, fmt.Errorf("failed to initialize %s: %w", name, err)
		}
		h.registries[s.ID()] = r
		h.schemes = append(h.schemes, s.ID())
	}
	if _, err = d.Persist(); err != nil {
		return nil, fmt.Errorf("failed to persist initial state: %w", err)
	}
	go h.notificationDispatcher()
	return h, nil
}

// Close stops event dispatching and closes the store.
func (h *Host) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(h.stopCh)
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.store.Close()
}

// Schemes returns IDs of enabled schemes in configuration order.
func (h *Host) Schemes() []scheme.ID {
	res := make([]scheme.ID, len(h.schemes))
	copy(res, h.schemes)
	return res
}

// ValidateAddress checks whether a is a valid address of the configured
// format.
func (h *Host) ValidateAddress(a string) bool {
	_, err := h.addr.Decode(a)
	return err == nil
}

func (h *Host) registry(id scheme.ID) (*registry.Registry, error) {
	r, ok := h.registries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemeDisabled, id)
	}
	return r, nil
}

// apply runs f over a fresh change set and persists it if f succeeds.
func (h *Host) apply(f func(d *dao.Simple) error) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed.Load() {
		return errors.New("host is closed")
	}

	d := dao.NewSimple(h.store)
	if err := f(d); err != nil {
		return err
	}
	_, err := d.Persist()
	return err
}

// RegisterKey registers the key message of sender in the given scheme.
func (h *Host) RegisterKey(id scheme.ID, sender string, funds state.Coins, msg []byte) error {
	r, err := h.registry(id)
	if err != nil {
		return err
	}
	err = h.apply(func(d *dao.Simple) error {
		return r.RegisterKey(d, sender, funds, msg)
	})
	updateKeyRegistrationMetric(id.String(), resultLabel(err))
	if err != nil {
		h.log.Debug("key registration failed", zap.Stringer("scheme", id),
			zap.String("sender", sender), zap.Error(err))
		return err
	}
	h.log.Info("key registered", zap.Stringer("scheme", id), zap.String("issuer", sender))
	h.publish(registryevent.Event{Type: registryevent.KeyRegistered, Scheme: id, Issuer: sender, IsValid: true})
	return nil
}

// SubmitProof checks the proof of sender against issuer's key in the given
// scheme.
func (h *Host) SubmitProof(id scheme.ID, sender string, funds state.Coins, issuer string, msg []byte) (*registry.ProofResult, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	var (
		start = time.Now()
		res   *registry.ProofResult
	)
	err = h.apply(func(d *dao.Simple) error {
		var err error
		res, err = r.SubmitProof(d, sender, funds, issuer, msg)
		return err
	})
	label := resultLabel(err)
	if err == nil && !res.IsValid {
		label = "invalid"
	}
	updateProofSubmissionMetric(id.String(), label, start)
	if err != nil {
		h.log.Debug("proof submission failed", zap.Stringer("scheme", id),
			zap.String("sender", sender), zap.String("issuer", issuer), zap.Error(err))
		return nil, err
	}
	h.log.Info("proof verified", zap.Stringer("scheme", id),
		zap.String("issuer", issuer), zap.String("prover", sender),
		zap.Bool("valid", res.IsValid), zap.Duration("took", time.Since(start)))
	h.publish(registryevent.Event{
		Type:    registryevent.ProofVerified,
		Scheme:  id,
		Issuer:  issuer,
		Prover:  sender,
		IsValid: res.IsValid,
	})
	return res, nil
}

func (h *Host) reader() *dao.Simple {
	return dao.NewSimple(h.store)
}

// Config returns configuration of the given scheme.
func (h *Host) Config(id scheme.ID) (*state.Config, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	return r.Config(h.reader())
}

// IssuerKey returns the key registered by issuer in the given scheme.
func (h *Host) IssuerKey(id scheme.ID, issuer string) (scheme.Key, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	return r.IssuerKey(h.reader(), issuer)
}

// Issuers returns all issuers having keys in the given scheme.
func (h *Host) Issuers(id scheme.ID) ([]string, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	return r.Issuers(h.reader())
}

// Result returns the recorded outcome for the (issuer, prover) pair.
func (h *Host) Result(id scheme.ID, issuer, prover string) (*registry.ProofResult, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	return r.Result(h.reader(), issuer, prover)
}

// ProverLatest returns the latest recorded outcome of prover.
func (h *Host) ProverLatest(id scheme.ID, prover string) (*registry.ProofResult, error) {
	r, err := h.registry(id)
	if err != nil {
		return nil, err
	}
	return r.ProverLatest(h.reader(), prover)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, registry.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, address.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, zkp.ErrHexDecoding):
		return "hex_decoding"
	case errors.Is(err, zkp.ErrKeyFormat), errors.Is(err, zkp.ErrProofFormat):
		return "format"
	case errors.Is(err, registry.ErrUnknownIssuer):
		return "unknown_issuer"
	case errors.Is(err, zkp.ErrVerificationEngine):
		return "engine"
	case errors.Is(err, registry.ErrInvalidProof):
		return "rejected"
	default:
		return "error"
	}
}

// SubscribeForEvents adds ch to the event broadcasting.
func (h *Host) SubscribeForEvents(ch chan<- registryevent.Event) {
	select {
	case h.subCh <- ch:
	case <-h.stopCh:
	}
}

// UnsubscribeFromEvents removes ch from the event broadcasting, you can close
// it afterwards. Passing non-subscribed channel is a no-op.
func (h *Host) UnsubscribeFromEvents(ch chan<- registryevent.Event) {
	select {
	case h.unsubCh <- ch:
	case <-h.stopCh:
	}
}

func (h *Host) publish(e registryevent.Event) {
	select {
	case h.events <- e:
	case <-h.stopCh:
	}
}

// notificationDispatcher manages subscription to events and broadcasts new events.
func (h *Host) notificationDispatcher() {
	// A set of subscribers, modelled as a map for ease of management.
	feed := make(map[chan<- registryevent.Event]bool)
	for {
		select {
		case <-h.stopCh:
			return
		case sub := <-h.subCh:
			feed[sub] = true
		case unsub := <-h.unsubCh:
			delete(feed, unsub)
		case event := <-h.events:
			for ch := range feed {
				select {
				case ch <- event:
				case <-h.stopCh:
					return
				}
			}
		}
	}
}
