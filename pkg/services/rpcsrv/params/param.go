package params

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	json "github.com/nspcc-dev/go-ordered-json"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/zkp/scheme"
)

// MaxFunds is the maximum number of coins accepted in a single request.
const MaxFunds = 16

// Param is a single positional JSON-RPC parameter. Scalar values are decoded
// once and cached.
type Param struct {
	json.RawMessage
	cache any
}

var (
	jsonNullBytes = []byte("null")

	errMissingParameter = errors.New("parameter is missing")
	errNullParameter    = errors.New("parameter is null")
	errNotAScalar       = errors.New("not a string, number or boolean")
	errNotAString       = errors.New("not a string")
	errNotAnInt         = errors.New("not an integer")
)

func (p Param) String() string {
	str, _ := p.GetString()
	return str
}

// scalar decodes the parameter into a string, int64 or bool.
func (p *Param) scalar() (any, error) {
	if p == nil {
		return nil, errMissingParameter
	}
	if p.IsNull() {
		return nil, errNullParameter
	}
	if p.cache != nil {
		return p.cache, nil
	}
	var (
		s string
		i int64
		b bool
	)
	switch {
	case json.Unmarshal(p.RawMessage, &s) == nil:
		p.cache = s
	case json.Unmarshal(p.RawMessage, &i) == nil:
		p.cache = i
	case json.Unmarshal(p.RawMessage, &b) == nil:
		p.cache = b
	default:
		return nil, errNotAScalar
	}
	return p.cache, nil
}

// GetStringStrict returns the parameter if it's a JSON string.
func (p *Param) GetStringStrict() (string, error) {
	v, err := p.scalar()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errNotAString
	}
	return s, nil
}

// GetString returns a string representation of a string, number or boolean
// parameter.
func (p *Param) GetString() (string, error) {
	v, err := p.scalar()
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return strconv.FormatBool(t.(bool)), nil
	}
}

// GetInt returns an integer parameter, numeric strings and booleans are
// converted.
func (p *Param) GetInt() (int, error) {
	v, err := p.scalar()
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case int64:
		if t != int64(int(t)) {
			return 0, errNotAnInt
		}
		return int(t), nil
	case string:
		i, err := strconv.Atoi(t)
		if err != nil {
			return 0, errNotAnInt
		}
		return i, nil
	default:
		if t.(bool) {
			return 1, nil
		}
		return 0, nil
	}
}

// GetScheme returns the scheme named by the parameter.
func (p *Param) GetScheme() (scheme.Scheme, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return nil, err
	}
	return scheme.ByName(s)
}

// GetCoins returns funds passed as an array of {"denom", "amount"} objects.
// null is treated as no funds.
func (p *Param) GetCoins() (state.Coins, error) {
	if p == nil {
		return nil, errMissingParameter
	}
	if p.IsNull() {
		return nil, nil
	}
	var coins []neorpc.Coin
	if err := json.Unmarshal(p.RawMessage, &coins); err != nil {
		return nil, fmt.Errorf("not a coin list: %w", err)
	}
	if len(coins) > MaxFunds {
		return nil, fmt.Errorf("too many coins: %d", len(coins))
	}
	res := make(state.Coins, 0, len(coins))
	for i := range coins {
		c, err := state.NewCoin(coins[i].Denom, coins[i].Amount)
		if err != nil {
			return nil, fmt.Errorf("coin %d: %w", i, err)
		}
		res = append(res, *c)
	}
	return res, nil
}

// GetMessage returns a key or proof message. It's either given as a JSON
// object or as a string containing one.
func (p *Param) GetMessage() ([]byte, error) {
	if p == nil {
		return nil, errMissingParameter
	}
	if s, err := p.GetStringStrict(); err == nil {
		return []byte(s), nil
	}
	trimmed := bytes.TrimSpace(p.RawMessage)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("not a message object")
	}
	return trimmed, nil
}

// IsNull returns whether the parameter represents JSON nil value.
func (p *Param) IsNull() bool {
	return bytes.Equal(p.RawMessage, jsonNullBytes)
}
