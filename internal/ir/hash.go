package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// changing the algorithm without colliding with stored hashes.
const (
	DomainOutput  = "txtpgen/output/v1"
	DomainOptions = "txtpgen/options/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OutputID identifies a playlist text by content. The text is NFC
// normalized first so equivalent names hash equally.
func OutputID(text string) string {
	return hashWithDomain(DomainOutput, []byte(norm.NFC.String(text)))
}

// OptionsHash identifies a set of generation options.
func OptionsHash(opts map[string]any) (string, error) {
	canonical, err := MarshalCanonical(opts)
	if err != nil {
		return "", fmt.Errorf("OptionsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOptions, canonical), nil
}

// NormalizeName returns the NFC form of an output name.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
