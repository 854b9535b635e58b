package flags

import (
	"strings"
)

// flagNames splits "long, s" flag name into its aliases.
func flagNames(longName string) []string {
	parts := strings.Split(longName, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
