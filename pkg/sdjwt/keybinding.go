package sdjwt

import "context"

// KeyBindingTyp is the required `typ` header value on every KB-JWT.
const KeyBindingTyp = "kb+jwt"

// KeyBindingClaims are the holder-signed claims carried by a KB-JWT.
type KeyBindingClaims struct {
	Nonce string
	Aud   string
	Iat   int64
}

// BuildKeyBindingJWT computes sd_hash over the presented prefix of token
// (the bytes through and including the trailing "~" before the KB-JWT
// position, per RFC 9901) and signs a compact `kb+jwt` carrying nonce,
// aud, iat, and sd_hash.
func BuildKeyBindingJWT(ctx context.Context, token *Token, hasher Hasher, header map[string]any, claims KeyBindingClaims, signer Signer) (string, error) {
	sdHash := hasher.Digest([]byte(token.PresentedPrefix()))

	fullHeader := make(map[string]any, len(header)+1)
	for k, v := range header {
		fullHeader[k] = v
	}
	fullHeader["typ"] = KeyBindingTyp

	fullClaims := map[string]any{
		"iat":     claims.Iat,
		"nonce":   claims.Nonce,
		"aud":     claims.Aud,
		"sd_hash": sdHash,
	}

	return signCompact(ctx, fullHeader, fullClaims, signer)
}

// AttachKeyBinding returns a new token with kbJWT attached as its
// KB-JWT, replacing any existing one.
func AttachKeyBinding(token *Token, kbJWT string) *Token {
	return token.WithKeyBinding(kbJWT)
}

// VerifyPresentedPrefixDigest checks that sdHash equals the digest of
// token's presented prefix under hasher.
func VerifyPresentedPrefixDigest(token *Token, hasher Hasher, sdHash string) error {
	expected := hasher.Digest([]byte(token.PresentedPrefix()))
	if expected != sdHash {
		return &InvalidDigestError{Expected: expected, Found: sdHash}
	}
	return nil
}
