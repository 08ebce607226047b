package sdjwt

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"

	"golang.org/x/crypto/sha3"
)

// Hasher is the digest capability C1 of the engine: it names itself and
// computes a base64url-encoded (no padding) digest of a byte range.
// Validators carry exactly one Hasher and reject tokens whose `_sd_alg`
// names a different algorithm.
type Hasher interface {
	Name() string
	Digest(data []byte) string
}

type sha256Hasher struct{}

func (sha256Hasher) Name() string { return "sha-256" }
func (sha256Hasher) Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type sha512Hasher struct{}

func (sha512Hasher) Name() string { return "sha-512" }
func (sha512Hasher) Digest(data []byte) string {
	sum := sha512.Sum512(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type sha3_256Hasher struct{}

func (sha3_256Hasher) Name() string { return "sha3-256" }
func (sha3_256Hasher) Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type sha3_512Hasher struct{}

func (sha3_512Hasher) Name() string { return "sha3-512" }
func (sha3_512Hasher) Digest(data []byte) string {
	sum := sha3.Sum512(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

var hasherRegistry = map[string]func() Hasher{
	"sha-256":  func() Hasher { return sha256Hasher{} },
	"sha-512":  func() Hasher { return sha512Hasher{} },
	"sha3-256": func() Hasher { return sha3_256Hasher{} },
	"sha3-512": func() Hasher { return sha3_512Hasher{} },
}

// DefaultHasher returns the RFC 9901 default hasher, sha-256.
func DefaultHasher() Hasher { return sha256Hasher{} }

// HasherByName looks up a registered hasher by its `_sd_alg` name.
func HasherByName(name string) (Hasher, bool) {
	factory, ok := hasherRegistry[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// RegisterHasher adds or replaces a named hasher in the registry.
func RegisterHasher(name string, factory func() Hasher) {
	hasherRegistry[name] = factory
}
