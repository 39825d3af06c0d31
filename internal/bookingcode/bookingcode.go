// Package bookingcode generates the human-shareable codes printed on
// confirmations. Codes are random, so uniqueness is enforced by the orders
// table and callers retry on collision.
package bookingcode

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const defaultLength = 4 // random bytes, rendered as 8 hex characters

type Generator struct {
	prefix string
	length int
}

func New() *Generator {
	return &Generator{prefix: "BK", length: defaultLength}
}

// BookingCode returns a code like "BK-3F09A2C4".
func (g *Generator) BookingCode() (string, error) {
	byt := make([]byte, g.length)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return g.prefix + "-" + strings.ToUpper(hex.EncodeToString(byt)), nil
}
