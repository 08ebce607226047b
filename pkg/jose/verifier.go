package jose

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier is the default sdjwt.Verifier implementation, backed by
// golang-jwt/jwt/v5's signing method registry. It accepts any key shape
// jwt/v5 itself accepts for the named algorithm: *ecdsa.PublicKey,
// *rsa.PublicKey, ed25519.PublicKey.
type Verifier struct{}

// NewVerifier returns a jwt/v5-backed signature verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// Verify checks signature over signingInput under alg and key.
func (v *Verifier) Verify(ctx context.Context, alg string, key any, signingInput, signature []byte) error {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return fmt.Errorf("jose: unknown signing algorithm %q", alg)
	}
	return method.Verify(string(signingInput), signature, key)
}
