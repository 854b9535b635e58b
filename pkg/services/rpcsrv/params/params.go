package params

import "strings"

type (
	// Params represents the JSON-RPC params.
	Params []Param
)

// Value returns the param struct for the given
// index if it exists.
func (p Params) Value(index int) *Param {
	if len(p) > index {
		return &p[index]
	}

	return nil
}

func (p Params) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range p {
		sb.WriteString(string(p[i].RawMessage))
		if i < len(p)-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
