package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/zkp-registry/pkg/io"
)

// MaxDenomLen is the maximum length of a coin denomination.
const MaxDenomLen = 128

// Coin is an amount of some denomination attached to a request or required as
// a fee.
type Coin struct {
	Denom  string
	Amount uint256.Int
}

// Coins is a list of funds sent with a request.
type Coins []Coin

type coinAux struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// NewCoin creates a Coin from its denomination and decimal amount string.
func NewCoin(denom string, amount string) (*Coin, error) {
	c := &Coin{Denom: denom}
	if err := c.setAmount(amount); err != nil {
		return nil, err
	}
	if len(denom) == 0 || len(denom) > MaxDenomLen {
		return nil, fmt.Errorf("invalid denomination %q", denom)
	}
	return c, nil
}

func (c *Coin) setAmount(s string) error {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || strings.HasPrefix(s, "+") {
		return fmt.Errorf("invalid amount %q", s)
	}
	if b.Sign() < 0 {
		return errors.New("negative amount")
	}
	if c.Amount.SetFromBig(b) {
		return errors.New("amount overflows 256 bits")
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (c Coin) String() string {
	return c.Amount.ToBig().String() + c.Denom
}

// Covers checks whether c is enough to pay the fee f (denominations match and
// the amount is not less than the fee's).
func (c *Coin) Covers(f *Coin) bool {
	return c.Denom == f.Denom && !c.Amount.Lt(&f.Amount)
}

// EncodeBinary implements the io.Serializable interface.
func (c *Coin) EncodeBinary(w *io.BinWriter) {
	w.WriteString(c.Denom)
	b := c.Amount.Bytes32()
	w.WriteBytes(b[:])
}

// DecodeBinary implements the io.Serializable interface.
func (c *Coin) DecodeBinary(r *io.BinReader) {
	c.Denom = r.ReadString(MaxDenomLen)
	var b [32]byte
	r.ReadBytes(b[:])
	c.Amount.SetBytes32(b[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(coinAux{Denom: c.Denom, Amount: c.Amount.ToBig().String()})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *Coin) UnmarshalJSON(data []byte) error {
	aux := new(coinAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	res, err := NewCoin(aux.Denom, aux.Amount)
	if err != nil {
		return err
	}
	*c = *res
	return nil
}

// ParseCoin parses a coin from its string form like "10token".
func ParseCoin(s string) (*Coin, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return nil, fmt.Errorf("invalid coin %q", s)
	}
	return NewCoin(s[i:], s[:i])
}

// ParseCoins parses a comma-separated list of coins, an empty string is an
// empty list.
func ParseCoins(s string) (Coins, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	res := make(Coins, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCoin(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, nil
}

// String implements the fmt.Stringer interface.
func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i := range cs {
		parts[i] = cs[i].String()
	}
	return strings.Join(parts, ",")
}
