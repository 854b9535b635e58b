package config

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
)

type (
	// ProtocolConfiguration represents registry settings that must be the
	// same for all nodes sharing a DB.
	ProtocolConfiguration struct {
		// Schemes lists enabled proof schemes by name.
		Schemes []string `yaml:"Schemes"`
		// AddressFormat is either bech32 or base58.
		AddressFormat  string `yaml:"AddressFormat"`
		AddressPrefix  string `yaml:"AddressPrefix"`
		AddressVersion byte   `yaml:"AddressVersion"`
		// PersistFailedProofs makes proofs that don't verify to be stored
		// with is_valid=false instead of being rejected.
		PersistFailedProofs bool `yaml:"PersistFailedProofs"`
		// Fees are used to initialize schemes in an empty DB.
		Fees Fees `yaml:"Fees"`
	}

	// Fees are per-operation fees, nil means free.
	Fees struct {
		KeyRegistration *Coin `yaml:"KeyRegistration"`
		ProofSubmission *Coin `yaml:"ProofSubmission"`
	}

	// Coin is a fee amount in the given denomination.
	Coin struct {
		Denom  string `yaml:"Denom"`
		Amount string `yaml:"Amount"`
	}
)

// Validate checks ProtocolConfiguration for internal consistency.
func (p *ProtocolConfiguration) Validate() error {
	if len(p.Schemes) == 0 {
		return errors.New("no schemes enabled")
	}
	seen := make(map[string]bool, len(p.Schemes))
	for _, name := range p.Schemes {
		if _, err := scheme.ByName(name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate scheme %s", name)
		}
		seen[name] = true
	}
	if _, err := p.AddressCodec(); err != nil {
		return err
	}
	_, err := p.Fees.Config()
	return err
}

// AddressCodec returns address codec of the configured format.
func (p *ProtocolConfiguration) AddressCodec() (address.Codec, error) {
	return address.New(p.AddressFormat, p.AddressPrefix, p.AddressVersion)
}

// Config converts fees to the registry configuration.
func (f Fees) Config() (*state.Config, error) {
	var (
		cfg = new(state.Config)
		err error
	)
	if cfg.KeyRegistrationFee, err = f.KeyRegistration.toState(); err != nil {
		return nil, fmt.Errorf("KeyRegistration fee: %w", err)
	}
	if cfg.ProofSubmissionFee, err = f.ProofSubmission.toState(); err != nil {
		return nil, fmt.Errorf("ProofSubmission fee: %w", err)
	}
	return cfg, nil
}

func (c *Coin) toState() (*state.Coin, error) {
	if c == nil {
		return nil, nil
	}
	return state.NewCoin(c.Denom, c.Amount)
}
