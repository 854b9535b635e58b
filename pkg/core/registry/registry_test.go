package registry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nspcc-dev/zkp-registry/internal/fixtures"
	"github.com/nspcc-dev/zkp-registry/pkg/core/dao"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/encoding/address"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var codec = address.Bech32{Prefix: "wasm"}

func addr(t *testing.T, b byte) string {
	raw := make([]byte, 20)
	raw[19] = b
	s, err := codec.Encode(raw)
	require.NoError(t, err)
	return s
}

func coin(t *testing.T, denom, amount string) *state.Coin {
	c, err := state.NewCoin(denom, amount)
	require.NoError(t, err)
	return c
}

func newRegistry(t *testing.T, opts Options, cfg *state.Config) (*Registry, *dao.Simple) {
	return newSchemeRegistry(t, scheme.Groth16BN254, opts, cfg)
}

func newSchemeRegistry(t *testing.T, id scheme.ID, opts Options, cfg *state.Config) (*Registry, *dao.Simple) {
	s, err := scheme.ByID(id)
	require.NoError(t, err)
	r, err := New(s, codec, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	d := dao.NewSimple(storage.NewMemoryStore())
	if cfg != nil {
		require.NoError(t, r.Init(d, cfg))
	}
	return r, d
}

func wrongSignalKey() []byte {
	return []byte(strings.Replace(fixtures.Groth16BN254Key, `"public_signal":"33"`, `"public_signal":"30"`, 1))
}

func TestInit(t *testing.T) {
	r, d := newRegistry(t, Options{}, nil)
	issuer := addr(t, 1)

	require.ErrorIs(t, r.RegisterKey(d, issuer, nil, []byte(fixtures.Groth16BN254Key)), ErrNotInitialized)
	_, err := r.SubmitProof(d, issuer, nil, issuer, []byte(fixtures.Groth16BN254Proof))
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = r.Config(d)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = r.IssuerKey(d, issuer)
	require.ErrorIs(t, err, ErrNotInitialized)

	cfg := &state.Config{KeyRegistrationFee: coin(t, "token", "2")}
	require.NoError(t, r.Init(d, cfg))
	require.ErrorIs(t, r.Init(d, &state.Config{}), ErrAlreadyInitialized)

	actual, err := r.Config(d)
	require.NoError(t, err)
	require.Equal(t, cfg, actual)
}

func TestFees(t *testing.T) {
	r, d := newRegistry(t, Options{}, &state.Config{
		KeyRegistrationFee: coin(t, "token", "2"),
		ProofSubmissionFee: coin(t, "token", "3"),
	})
	issuer, prover := addr(t, 1), addr(t, 2)

	for name, funds := range map[string]state.Coins{
		"none":        nil,
		"too little":  {*coin(t, "token", "1")},
		"other denom": {*coin(t, "other", "5")},
	} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, r.RegisterKey(d, issuer, funds, []byte(fixtures.Groth16BN254Key)), ErrInsufficientFunds)
		})
	}
	// Fee check goes before message decoding.
	require.ErrorIs(t, r.RegisterKey(d, issuer, nil, []byte("garbage")), ErrInsufficientFunds)

	require.NoError(t, r.RegisterKey(d, issuer, state.Coins{*coin(t, "other", "9"), *coin(t, "token", "2")}, []byte(fixtures.Groth16BN254Key)))

	_, err := r.SubmitProof(d, prover, state.Coins{*coin(t, "token", "2")}, issuer, []byte(fixtures.Groth16BN254Proof))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	res, err := r.SubmitProof(d, prover, state.Coins{*coin(t, "token", "30")}, issuer, []byte(fixtures.Groth16BN254Proof))
	require.NoError(t, err)
	require.True(t, res.IsValid)
}

func TestZeroFee(t *testing.T) {
	r, d := newRegistry(t, Options{}, &state.Config{KeyRegistrationFee: coin(t, "token", "0")})
	require.NoError(t, r.RegisterKey(d, addr(t, 1), nil, []byte(fixtures.Groth16BN254Key)))
}

func TestUnknownIssuer(t *testing.T) {
	r, d := newRegistry(t, Options{}, &state.Config{})
	issuer := addr(t, 1)

	// Unparseable proof, still the issuer is reported.
	_, err := r.SubmitProof(d, addr(t, 2), nil, issuer, []byte("{"))
	require.ErrorIs(t, err, ErrUnknownIssuer)
	var uie *UnknownIssuerError
	require.True(t, errors.As(err, &uie))
	require.Equal(t, issuer, uie.Issuer)
}

func TestHappyPath(t *testing.T) {
	for _, tc := range []struct {
		id         scheme.ID
		key, proof string
	}{
		{scheme.Groth16BN254, fixtures.Groth16BN254Key, fixtures.Groth16BN254Proof},
		{scheme.Groth16BLS12381, fixtures.Groth16BLS12381Key, fixtures.Groth16BLS12381Proof},
		{scheme.PlonkBN254, fixtures.PlonkBN254Key, fixtures.PlonkBN254Proof},
	} {
		t.Run(tc.id.String(), func(t *testing.T) {
			r, d := newSchemeRegistry(t, tc.id, Options{}, &state.Config{})
			issuer, prover := addr(t, 1), addr(t, 2)

			require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(tc.key)))
			k, err := r.IssuerKey(d, issuer)
			require.NoError(t, err)
			data, err := json.Marshal(k)
			require.NoError(t, err)
			require.JSONEq(t, tc.key, string(data))

			res, err := r.SubmitProof(d, prover, nil, issuer, []byte(tc.proof))
			require.NoError(t, err)
			require.True(t, res.IsValid)

			for _, get := range []func() (*ProofResult, error){
				func() (*ProofResult, error) { return r.Result(d, issuer, prover) },
				func() (*ProofResult, error) { return r.ProverLatest(d, prover) },
			} {
				stored, err := get()
				require.NoError(t, err)
				require.True(t, stored.IsValid)
				data, err := json.Marshal(stored)
				require.NoError(t, err)
				require.JSONEq(t, `{"proof":`+tc.proof+`,"is_valid":true}`, string(data))
			}

			_, err = r.Result(d, prover, issuer)
			require.ErrorIs(t, err, ErrNotFound)
			_, err = r.ProverLatest(d, issuer)
			require.ErrorIs(t, err, ErrNotFound)
			_, err = r.IssuerKey(d, prover)
			require.ErrorIs(t, err, ErrNotFound)

			issuers, err := r.Issuers(d)
			require.NoError(t, err)
			require.Equal(t, []string{issuer}, issuers)
		})
	}
}

func TestPlonkTamper(t *testing.T) {
	r, d := newSchemeRegistry(t, scheme.PlonkBN254, Options{}, &state.Config{})
	issuer, prover := addr(t, 1), addr(t, 2)

	// Same circuit, other public input.
	other := strings.Replace(fixtures.PlonkBN254Key, "0000000000000000000000000000000000000000000000000000000000000021",
		"0000000000000000000000000000000000000000000000000000000000000022", 1)
	require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(other)))
	_, err := r.SubmitProof(d, prover, nil, issuer, []byte(fixtures.PlonkBN254Proof))
	require.ErrorIs(t, err, ErrInvalidProof)
	_, err = r.ProverLatest(d, prover)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(fixtures.PlonkBN254Key)))
	bad := strings.Replace(fixtures.PlonkBN254Proof, `"n":3`, `"n":7`, 1)
	_, err = r.SubmitProof(d, prover, nil, issuer, []byte(bad))
	require.ErrorIs(t, err, zkp.ErrProofFormat)

	res, err := r.SubmitProof(d, prover, nil, issuer, []byte(fixtures.PlonkBN254Proof))
	require.NoError(t, err)
	require.True(t, res.IsValid)
}

func TestTamper(t *testing.T) {
	r, d := newRegistry(t, Options{}, &state.Config{})
	issuer, prover := addr(t, 1), addr(t, 2)
	require.NoError(t, r.RegisterKey(d, issuer, nil, wrongSignalKey()))

	_, err := r.SubmitProof(d, prover, nil, issuer, []byte(fixtures.Groth16BN254Proof))
	require.ErrorIs(t, err, ErrInvalidProof)
	_, err = r.ProverLatest(d, prover)
	require.ErrorIs(t, err, ErrNotFound)

	// Malformed and invalid proofs are distinguishable.
	bad := strings.Replace(fixtures.Groth16BN254Proof, `"proof_a":"2a`, `"proof_a":"3a`, 1)
	_, err = r.SubmitProof(d, prover, nil, issuer, []byte(bad))
	require.ErrorIs(t, err, zkp.ErrProofFormat)
	require.False(t, errors.Is(err, ErrInvalidProof))

	_, err = r.SubmitProof(d, prover, nil, issuer, []byte(strings.Replace(fixtures.Groth16BN254Proof, `"proof_c":"24`, `"proof_c":"zz`, 1)))
	require.ErrorIs(t, err, zkp.ErrHexDecoding)
}

func TestPersistFailedProofs(t *testing.T) {
	r, d := newRegistry(t, Options{PersistFailedProofs: true}, &state.Config{})
	issuer, prover := addr(t, 1), addr(t, 2)
	require.NoError(t, r.RegisterKey(d, issuer, nil, wrongSignalKey()))

	res, err := r.SubmitProof(d, prover, nil, issuer, []byte(fixtures.Groth16BN254Proof))
	require.NoError(t, err)
	require.False(t, res.IsValid)

	stored, err := r.Result(d, issuer, prover)
	require.NoError(t, err)
	require.False(t, stored.IsValid)

	// A valid key replaces the old one and the outcome is overwritten.
	require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(fixtures.Groth16BN254Key)))
	res, err = r.SubmitProof(d, prover, nil, issuer, []byte(fixtures.Groth16BN254Proof))
	require.NoError(t, err)
	require.True(t, res.IsValid)
	stored, err = r.ProverLatest(d, prover)
	require.NoError(t, err)
	require.True(t, stored.IsValid)
}

func TestReRegistration(t *testing.T) {
	r, d := newRegistry(t, Options{KeyCacheSize: 1}, &state.Config{})
	issuer := addr(t, 1)
	raw, err := codec.Decode(issuer)
	require.NoError(t, err)

	require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(fixtures.Groth16BN254Key)))
	first, err := d.GetIssuerKey(byte(scheme.Groth16BN254), raw)
	require.NoError(t, err)

	upper := strings.Replace(fixtures.Groth16BN254Key, "134341fbe5f0719617003adb9c8fe9038d5d913d1a1e961618cd67f8f097d0cb",
		"134341FBE5F0719617003ADB9C8FE9038D5D913D1A1E961618CD67F8F097D0CB", 1)
	require.NoError(t, r.RegisterKey(d, issuer, nil, []byte(upper)))
	second, err := d.GetIssuerKey(byte(scheme.Groth16BN254), raw)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBadInput(t *testing.T) {
	r, d := newRegistry(t, Options{}, &state.Config{})
	issuer := addr(t, 1)

	require.ErrorIs(t, r.RegisterKey(d, "cosmos1xyz", nil, []byte(fixtures.Groth16BN254Key)), address.ErrInvalidAddress)
	require.ErrorIs(t, r.RegisterKey(d, issuer, nil, []byte(`{"public_signal":"33"}`)), zkp.ErrKeyFormat)
	require.ErrorIs(t, r.RegisterKey(d, issuer, nil, []byte(strings.Replace(fixtures.Groth16BN254Key, `"vk_ic0":"22`, `"vk_ic0":"2g`, 1))), zkp.ErrHexDecoding)

	_, err := r.SubmitProof(d, issuer, nil, "bad", []byte(fixtures.Groth16BN254Proof))
	require.ErrorIs(t, err, address.ErrInvalidAddress)
	_, err = r.Result(d, issuer, "bad")
	require.ErrorIs(t, err, address.ErrInvalidAddress)
}
