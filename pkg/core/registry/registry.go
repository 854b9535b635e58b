/*
Package registry implements a fee-gated proof registry for a single proof
scheme. Issuers register verifying keys bound to a public signal, provers
submit proofs against an issuer's key and the outcome is recorded.

All operations work over a DAO supplied by the caller, so that the caller
decides whether and when the changes are persisted.
*/
package registry

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/zkp-registry/pkg/core/dao"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// DefaultKeyCacheSize is the number of assembled verifying keys kept in
// memory when no size is configured.
const DefaultKeyCacheSize = 128

// Options are registry settings.
type Options struct {
	// PersistFailedProofs makes proofs that don't verify to be recorded
	// with is_valid=false instead of failing the request.
	PersistFailedProofs bool
	// KeyCacheSize is the size of assembled keys cache.
	KeyCacheSize int
}

// Registry is a proof registry of a single scheme.
type Registry struct {
	scheme scheme.Scheme
	addr   address.Codec
	log    *zap.Logger
	opts   Options
	keys   *lru.Cache
	id     byte
}

// ProofResult is a recorded verification outcome.
type ProofResult struct {
	Proof   scheme.Proof `json:"proof"`
	IsValid bool         `json:"is_valid"`
}

// New creates a registry for s.
func New(s scheme.Scheme, addr address.Codec, opts Options, log *zap.Logger) (*Registry, error) {
	if opts.KeyCacheSize <= 0 {
		opts.KeyCacheSize = DefaultKeyCacheSize
	}
	cache, err := lru.New(opts.KeyCacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{
		scheme: s,
		addr:   addr,
		log:    log.With(zap.Stringer("scheme", s.ID())),
		opts:   opts,
		keys:   cache,
		id:     byte(s.ID()),
	}, nil
}

// Scheme returns the scheme of the registry.
func (r *Registry) Scheme() scheme.Scheme {
	return r.scheme
}

// Init stores cfg. It can only be done once.
func (r *Registry) Init(d *dao.Simple, cfg *state.Config) error {
	_, err := d.GetConfig(r.id)
	if err == nil {
		return ErrAlreadyInitialized
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return err
	}
	if cfg == nil {
		cfg = new(state.Config)
	}
	return d.PutConfig(r.id, cfg)
}

// Config returns the registry configuration.
func (r *Registry) Config(d *dao.Simple) (*state.Config, error) {
	cfg, err := d.GetConfig(r.id)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNotInitialized
	}
	return cfg, err
}

// checkFunds ensures that funds contain a coin covering fee. Absent or zero
// fees are always covered.
func checkFunds(funds state.Coins, fee *state.Coin) error {
	if fee == nil || fee.Amount.IsZero() {
		return nil
	}
	for i := range funds {
		if funds[i].Covers(fee) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s required", ErrInsufficientFunds, fee)
}

func (r *Registry) decodeAddress(a string) ([]byte, error) {
	return r.addr.Decode(a)
}

// RegisterKey validates the key message and stores it as the sender's key,
// replacing the previous one.
func (r *Registry) RegisterKey(d *dao.Simple, sender string, funds state.Coins, msg []byte) error {
	cfg, err := r.Config(d)
	if err != nil {
		return err
	}
	if err = checkFunds(funds, cfg.KeyRegistrationFee); err != nil {
		return err
	}
	issuer, err := r.decodeAddress(sender)
	if err != nil {
		return err
	}
	k, err := r.scheme.DecodeKey(msg)
	if err != nil {
		return err
	}
	v, err := r.scheme.Assemble(k)
	if err != nil {
		return err
	}
	data, err := scheme.Bytes(k)
	if err != nil {
		return err
	}
	if err = d.PutIssuerKey(r.id, issuer, data); err != nil {
		return fmt.Errorf("%w: %v", zkp.ErrKeyFormat, err)
	}
	r.keys.Add(keyHash(data), v)
	r.log.Debug("key registered", zap.String("issuer", sender))
	return nil
}

// SubmitProof checks msg against the key of issuer and records the outcome
// for sender. The issuer is checked before the proof is decoded.
func (r *Registry) SubmitProof(d *dao.Simple, sender string, funds state.Coins, issuer string, msg []byte) (*ProofResult, error) {
	cfg, err := r.Config(d)
	if err != nil {
		return nil, err
	}
	if err = checkFunds(funds, cfg.ProofSubmissionFee); err != nil {
		return nil, err
	}
	prover, err := r.decodeAddress(sender)
	if err != nil {
		return nil, err
	}
	iss, err := r.decodeAddress(issuer)
	if err != nil {
		return nil, err
	}
	keyData, err := d.GetIssuerKey(r.id, iss)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, &UnknownIssuerError{Issuer: issuer}
	}
	if err != nil {
		return nil, err
	}
	p, err := r.scheme.DecodeProof(msg)
	if err != nil {
		return nil, err
	}
	v, err := r.verifier(keyData)
	if err != nil {
		return nil, err
	}
	ok, err := v.Verify(p)
	if err != nil {
		if !errors.Is(err, zkp.ErrProofFormat) && !errors.Is(err, zkp.ErrVerificationEngine) {
			err = fmt.Errorf("%w: %w", zkp.ErrVerificationEngine, err)
		}
		return nil, err
	}
	r.log.Debug("proof checked",
		zap.String("issuer", issuer),
		zap.String("prover", sender),
		zap.Bool("valid", ok))
	if !ok && !r.opts.PersistFailedProofs {
		return nil, ErrInvalidProof
	}
	data, err := scheme.Bytes(p)
	if err != nil {
		return nil, err
	}
	info := &state.ProofInfo{Proof: data, IsValid: ok}
	if err = d.PutProofInfo(r.id, iss, prover, info); err != nil {
		return nil, err
	}
	return &ProofResult{Proof: p, IsValid: ok}, nil
}

func keyHash(data []byte) [32]byte {
	return sha3.Sum256(data)
}

// verifier returns assembled key for its stored form.
func (r *Registry) verifier(data []byte) (scheme.Verifier, error) {
	h := keyHash(data)
	if v, ok := r.keys.Get(h); ok {
		return v.(scheme.Verifier), nil
	}
	k, err := scheme.KeyFromBytes(r.scheme, data)
	if err != nil {
		return nil, fmt.Errorf("%w: stored key: %v", zkp.ErrKeyFormat, err)
	}
	v, err := r.scheme.Assemble(k)
	if err != nil {
		return nil, err
	}
	r.keys.Add(h, v)
	return v, nil
}

// IssuerKey returns the key registered by issuer.
func (r *Registry) IssuerKey(d *dao.Simple, issuer string) (scheme.Key, error) {
	if _, err := r.Config(d); err != nil {
		return nil, err
	}
	iss, err := r.decodeAddress(issuer)
	if err != nil {
		return nil, err
	}
	data, err := d.GetIssuerKey(r.id, iss)
	if err != nil {
		return nil, notFound(err)
	}
	return scheme.KeyFromBytes(r.scheme, data)
}

// Issuers returns addresses of all issuers having a key.
func (r *Registry) Issuers(d *dao.Simple) ([]string, error) {
	var (
		res []string
		err error
	)
	d.SeekIssuerKeys(r.id, func(iss []byte, _ []byte) bool {
		var a string
		a, err = r.addr.Encode(iss)
		if err != nil {
			return false
		}
		res = append(res, a)
		return true
	})
	return res, err
}

// Result returns the latest outcome of prover's proof checked against
// issuer's key.
func (r *Registry) Result(d *dao.Simple, issuer, prover string) (*ProofResult, error) {
	if _, err := r.Config(d); err != nil {
		return nil, err
	}
	iss, err := r.decodeAddress(issuer)
	if err != nil {
		return nil, err
	}
	pr, err := r.decodeAddress(prover)
	if err != nil {
		return nil, err
	}
	info, err := d.GetVerificationResult(r.id, iss, pr)
	if err != nil {
		return nil, notFound(err)
	}
	return r.result(info)
}

// ProverLatest returns the latest outcome of prover's proof against any
// issuer.
func (r *Registry) ProverLatest(d *dao.Simple, prover string) (*ProofResult, error) {
	if _, err := r.Config(d); err != nil {
		return nil, err
	}
	pr, err := r.decodeAddress(prover)
	if err != nil {
		return nil, err
	}
	info, err := d.GetProverLatest(r.id, pr)
	if err != nil {
		return nil, notFound(err)
	}
	return r.result(info)
}

func (r *Registry) result(info *state.ProofInfo) (*ProofResult, error) {
	p, err := scheme.ProofFromBytes(r.scheme, info.Proof)
	if err != nil {
		return nil, err
	}
	return &ProofResult{Proof: p, IsValid: info.IsValid}, nil
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
