package tor

import (
	"encoding/base32"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	onionSuffix   = ".onion"
	onionV3Length = 56
	onionV3Ver    = 0x03
)

var onionChecksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether host (without port) is a .onion name.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), onionSuffix)
}

// ValidateOnionHost checks that host is a well-formed v3 onion address,
// including its embedded checksum. Subdomains are allowed.
func ValidateOnionHost(host string) error {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), onionSuffix)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if len(name) != onionV3Length {
		return fmt.Errorf("%w: %q is not a v3 address", ErrInvalidOnionAddress, host)
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(name))
	if err != nil || len(decoded) != 35 {
		return fmt.Errorf("%w: %q is not base32", ErrInvalidOnionAddress, host)
	}

	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Ver {
		return fmt.Errorf("%w: %q has version %d", ErrInvalidOnionAddress, host, version)
	}
	want := onionChecksum(pubkey, version)
	if checksum[0] != want[0] || checksum[1] != want[1] {
		return fmt.Errorf("%w: %q has a bad checksum", ErrInvalidOnionAddress, host)
	}
	return nil
}

// OnionAddress derives the v3 onion host for an ed25519 public key.
func OnionAddress(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", fmt.Errorf("%w: public key must be 32 bytes", ErrInvalidOnionAddress)
	}
	data := make([]byte, 0, 35)
	data = append(data, pubkey...)
	data = append(data, onionChecksum(pubkey, onionV3Ver)...)
	data = append(data, onionV3Ver)
	return strings.ToLower(base32.StdEncoding.EncodeToString(data)) + onionSuffix, nil
}

// onionChecksum returns the first two bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func onionChecksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(onionChecksumPrefix)+len(pubkey)+1)
	data = append(data, onionChecksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)
	sum := sha3.Sum256(data)
	return sum[:2]
}
