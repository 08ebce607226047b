package did

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/multiformats/go-multibase"
)

// Multicodec prefixes used by did:key, per the did:key method spec.
const (
	codecEd25519Pub   = 0xed
	codecSecp256k1Pub = 0xe7
	codecP256Pub      = 0x1200
	codecP384Pub      = 0x1201
	codecP521Pub      = 0x1202
	codecRSAPub       = 0x1205
)

// LocalResolver resolves did:key and did:jwk without any network or
// registry lookup: both methods encode the full public key in the
// identifier itself.
type LocalResolver struct{}

// NewLocalResolver returns a Resolver for did:key and did:jwk.
func NewLocalResolver() *LocalResolver { return &LocalResolver{} }

var _ Resolver = (*LocalResolver)(nil)

func (r *LocalResolver) Resolve(ctx context.Context, did string) (DidDocument, error) {
	switch {
	case strings.HasPrefix(did, "did:key:"):
		return resolveDidKey(did)
	case strings.HasPrefix(did, "did:jwk:"):
		return resolveDidJwk(did)
	default:
		return nil, fmt.Errorf("did: unsupported method in %q", did)
	}
}

// staticMethod is a single, already-decoded verification method.
type staticMethod struct {
	id  string
	key any
}

func (m *staticMethod) ID() string             { return m.id }
func (m *staticMethod) PublicKey() (any, error) { return m.key, nil }

// staticDocument is a DID document with exactly one verification method,
// as produced by both did:key and did:jwk.
type staticDocument struct {
	id     string
	method *staticMethod
}

func (d *staticDocument) ID() string { return d.id }

func (d *staticDocument) VerificationMethod(didURL string) (VerificationMethod, bool) {
	if didURL == d.id || didURL == d.method.id || strings.HasSuffix(didURL, "#"+fragmentOf(d.method.id)) {
		return d.method, true
	}
	return nil, false
}

func fragmentOf(didURL string) string {
	if i := strings.LastIndex(didURL, "#"); i >= 0 {
		return didURL[i+1:]
	}
	return ""
}

func resolveDidKey(did string) (DidDocument, error) {
	mb := strings.TrimPrefix(did, "did:key:")
	_, data, err := multibase.Decode(mb)
	if err != nil {
		return nil, &MethodLookupError{DIDURL: did, Reason: "not valid multibase: " + err.Error()}
	}

	code, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, &MethodLookupError{DIDURL: did, Reason: "missing multicodec prefix"}
	}
	keyBytes := data[n:]

	key, err := decodeMulticodecKey(code, keyBytes)
	if err != nil {
		return nil, &MethodLookupError{DIDURL: did, Reason: err.Error()}
	}

	vmID := did + "#" + mb
	return &staticDocument{id: did, method: &staticMethod{id: vmID, key: key}}, nil
}

func decodeMulticodecKey(code uint64, raw []byte) (any, error) {
	switch code {
	case codecEd25519Pub:
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
		}
		return ed25519.PublicKey(raw), nil

	case codecP256Pub:
		return unmarshalCompressedEC(elliptic.P256(), raw)

	case codecP384Pub:
		return unmarshalCompressedEC(elliptic.P384(), raw)

	case codecP521Pub:
		return unmarshalCompressedEC(elliptic.P521(), raw)

	case codecRSAPub:
		pub, err := x509.ParsePKIXPublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("rsa public key: %w", err)
		}
		return pub, nil

	case codecSecp256k1Pub:
		return nil, fmt.Errorf("secp256k1 keys are not supported")

	default:
		return nil, fmt.Errorf("unsupported multicodec key type 0x%x", code)
	}
}

func unmarshalCompressedEC(curve elliptic.Curve, raw []byte) (any, error) {
	x, y := elliptic.UnmarshalCompressed(curve, raw)
	if x == nil {
		return nil, fmt.Errorf("invalid compressed point for curve %s", curve.Params().Name)
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func resolveDidJwk(did string) (DidDocument, error) {
	encoded := strings.TrimPrefix(did, "did:jwk:")
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &MethodLookupError{DIDURL: did, Reason: "not valid base64url: " + err.Error()}
	}

	parsed, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, &MethodLookupError{DIDURL: did, Reason: "jwk: " + err.Error()}
	}

	var pub any
	if err := parsed.Raw(&pub); err != nil {
		return nil, &MethodLookupError{DIDURL: did, Reason: "jwk raw key: " + err.Error()}
	}

	vmID := did + "#0"
	return &staticDocument{id: did, method: &staticMethod{id: vmID, key: pub}}, nil
}

// MethodLookupError is returned when a did:key or did:jwk identifier
// cannot be decoded into usable key material.
type MethodLookupError struct {
	DIDURL string
	Reason string
}

func (e *MethodLookupError) Error() string {
	return fmt.Sprintf("could not resolve %q: %s", e.DIDURL, e.Reason)
}
