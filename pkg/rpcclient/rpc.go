package rpcclient

import (
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc/result"
)

// Funds converts state coins into their RPC representation.
func Funds(coins state.Coins) []neorpc.Coin {
	res := make([]neorpc.Coin, len(coins))
	for i := range coins {
		res[i] = neorpc.Coin{
			Denom:  coins[i].Denom,
			Amount: coins[i].Amount.ToBig().String(),
		}
	}
	return res
}

func fundsParam(funds []neorpc.Coin) []neorpc.Coin {
	if funds == nil {
		return []neorpc.Coin{}
	}
	return funds
}

// GetVersion returns the version information about the queried node.
func (c *Client) GetVersion() (*result.Version, error) {
	var resp = &result.Version{}

	if err := c.performRequest("getversion", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetConfig returns fee configuration of the given scheme.
func (c *Client) GetConfig(scheme string) (*state.Config, error) {
	var (
		params = []any{scheme}
		resp   = new(state.Config)
	)
	if err := c.performRequest("getconfig", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RegisterKey registers (or replaces) sender's verifying key. key is the
// scheme-specific JSON key message.
func (c *Client) RegisterKey(scheme string, sender string, funds []neorpc.Coin, key json.RawMessage) error {
	var (
		params = []any{scheme, sender, fundsParam(funds), key}
		resp   bool
	)
	if err := c.performRequest("registerkey", params, &resp); err != nil {
		return err
	}
	if !resp {
		return errors.New("registerkey returned false")
	}
	return nil
}

// SubmitProof submits sender's proof to be verified against issuer's key.
// Invalid proofs are not an error, their outcome is reported via IsValid.
func (c *Client) SubmitProof(scheme string, sender string, funds []neorpc.Coin, issuer string, proof json.RawMessage) (*result.ProofResult, error) {
	var (
		params = []any{scheme, sender, fundsParam(funds), issuer, proof}
		resp   = new(result.ProofResult)
	)
	if err := c.performRequest("submitproof", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetIssuerKey returns the JSON key message registered by issuer.
func (c *Client) GetIssuerKey(scheme string, issuer string) (json.RawMessage, error) {
	var (
		params = []any{scheme, issuer}
		resp   json.RawMessage
	)
	if err := c.performRequest("getissuerkey", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetIssuers returns all issuers that have a key registered for the scheme.
func (c *Client) GetIssuers(scheme string) ([]string, error) {
	var (
		params = []any{scheme}
		resp   []string
	)
	if err := c.performRequest("getissuers", params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProofResult returns the latest outcome of prover's proof checked
// against issuer's key.
func (c *Client) GetProofResult(scheme string, issuer string, prover string) (*result.ProofResult, error) {
	var (
		params = []any{scheme, issuer, prover}
		resp   = new(result.ProofResult)
	)
	if err := c.performRequest("getproofresult", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProverLatest returns the latest proof outcome of prover across issuers.
func (c *Client) GetProverLatest(scheme string, prover string) (*result.ProofResult, error) {
	var (
		params = []any{scheme, prover}
		resp   = new(result.ProofResult)
	)
	if err := c.performRequest("getproverlatest", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateAddress verifies that the address is a correct address for the
// node's configured format.
func (c *Client) ValidateAddress(address string) error {
	var (
		params = []any{address}
		resp   = &result.ValidateAddress{}
	)

	if err := c.performRequest("validateaddress", params, resp); err != nil {
		return err
	}
	if !resp.IsValid {
		return errors.New("validateaddress returned false")
	}
	return nil
}
