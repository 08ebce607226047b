package sdjwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdjwtengine/pkg/signing"
)

func newTestSigner(t *testing.T) *signing.SoftwareSigner {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	s, err := signing.NewSoftwareSigner(key, "test-key")
	require.NoError(t, err)
	return s
}

func verifyES256(t *testing.T, signingInput, signature []byte, pub *ecdsa.PublicKey) error {
	t.Helper()
	return jwt.SigningMethodES256.Verify(string(signingInput), signature, pub)
}

func baseClaims() map[string]any {
	return map[string]any{
		"iss": "https://issuer.example",
		"vct": "https://credentials.example/student_card",
		"address": map[string]any{
			"street_address": "Schulstr. 12",
			"locality":       "Schulpforta",
			"region":         "Sachsen-Anhalt",
			"country":        "DE",
		},
		"nationalities": []any{"DE", "US"},
	}
}

func TestDisclosureRoundTrip(t *testing.T) {
	d, err := NewPropertyDisclosure("salt123", "given_name", "Erika")
	require.NoError(t, err)

	parsed, err := ParseDisclosure(d.Raw())
	require.NoError(t, err)
	assert.True(t, d.Equal(parsed))

	name, hasName := parsed.Name()
	assert.True(t, hasName)
	assert.Equal(t, "given_name", name)
	assert.Equal(t, "Erika", parsed.Value())

	hasher := DefaultHasher()
	assert.Equal(t, d.Digest(hasher), parsed.Digest(hasher))
}

func TestParseDisclosureRejectsWrongArity(t *testing.T) {
	raw, err := encodeDisclosure([]any{"salt", "a", "b", "c"})
	require.NoError(t, err)
	_, err = ParseDisclosure(raw)
	require.Error(t, err)
	assert.IsType(t, &InvalidDisclosureError{}, err)
}

func TestIssueAndReconstructRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	builder := NewBuilder(DefaultHasher())

	claims := baseClaims()
	paths := []string{
		"/address/street_address",
		"/address",
		"/nationalities/0",
	}

	token, discs, err := builder.Issue(context.Background(), claims, paths, map[string]any{"alg": "ES256", "typ": "vc+sd-jwt"}, signer, IssueOptions{Decoys: 2})
	require.NoError(t, err)
	require.Len(t, discs, 3)

	wire := token.String()
	parsed, err := Parse(wire)
	require.NoError(t, err)
	require.Len(t, parsed.Disclosures(), 3)

	signingInput, signature, err := SigningInputAndSignature(parsed.JWS())
	require.NoError(t, err)
	pub := signer.PublicKey().(*ecdsa.PublicKey)
	require.NoError(t, verifyES256(t, signingInput, signature, pub))

	payload, err := DecodeJWSPayload(parsed.JWS())
	require.NoError(t, err)

	reconstructed, err := Reconstruct(payload, parsed.Disclosures(), DefaultHasher())
	require.NoError(t, err)

	assert.Equal(t, "https://issuer.example", reconstructed["iss"])
	addr, ok := reconstructed["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Schulstr. 12", addr["street_address"])
	assert.Equal(t, "Schulpforta", addr["locality"])

	nats, ok := reconstructed["nationalities"].([]any)
	require.True(t, ok)
	require.Len(t, nats, 2)
	assert.Equal(t, "DE", nats[0])
}

func TestReconstructFailsOnUnusedDisclosure(t *testing.T) {
	hasher := DefaultHasher()
	d, err := NewPropertyDisclosure("salt", "given_name", "Erika")
	require.NoError(t, err)

	claims := map[string]any{"iss": "https://issuer.example"}
	_, err = Reconstruct(claims, []*Disclosure{d}, hasher)
	require.Error(t, err)
	assert.IsType(t, &UnusedDisclosureError{}, err)
}

func TestReconstructFailsOnDigestCollision(t *testing.T) {
	hasher := DefaultHasher()
	d1, err := NewPropertyDisclosure("same-salt", "a", "1")
	require.NoError(t, err)
	d2, err := NewPropertyDisclosure("same-salt", "a", "1")
	require.NoError(t, err)

	claims := map[string]any{"_sd": []any{d1.Digest(hasher)}}
	_, err = Reconstruct(claims, []*Disclosure{d1, d2}, hasher)
	require.Error(t, err)
	assert.IsType(t, &DigestCollisionError{}, err)
}

func TestReconstructFailsOnClaimCollision(t *testing.T) {
	hasher := DefaultHasher()
	d, err := NewPropertyDisclosure("salt", "given_name", "Erika")
	require.NoError(t, err)

	claims := map[string]any{
		"given_name": "AlreadyHere",
		"_sd":        []any{d.Digest(hasher)},
	}
	_, err = Reconstruct(claims, []*Disclosure{d}, hasher)
	require.Error(t, err)
	assert.IsType(t, &ClaimCollisionError{}, err)
}

func TestPresentationConcealIsMonotoneOverDescendants(t *testing.T) {
	signer := newTestSigner(t)
	builder := NewBuilder(DefaultHasher())

	claims := baseClaims()
	paths := []string{"/address/street_address", "/address"}

	token, _, err := builder.Issue(context.Background(), claims, paths, map[string]any{"alg": "ES256"}, signer, IssueOptions{})
	require.NoError(t, err)

	pb, err := NewPresentationBuilder(token, DefaultHasher())
	require.NoError(t, err)

	require.NoError(t, pb.Conceal("/address"))
	presented, removed := pb.Finish()

	assert.Empty(t, presented.Disclosures())
	assert.Len(t, removed, 2)
}

func TestPresentationDiscloseRestoresAncestors(t *testing.T) {
	signer := newTestSigner(t)
	builder := NewBuilder(DefaultHasher())

	claims := baseClaims()
	paths := []string{"/address/street_address", "/address"}

	token, _, err := builder.Issue(context.Background(), claims, paths, map[string]any{"alg": "ES256"}, signer, IssueOptions{})
	require.NoError(t, err)

	pb, err := NewPresentationBuilder(token, DefaultHasher())
	require.NoError(t, err)

	pb.ConcealAll()
	require.NoError(t, pb.Disclose("/address/street_address"))

	presented, _ := pb.Finish()
	assert.Len(t, presented.Disclosures(), 2)
}

func TestKeyBindingRoundTrip(t *testing.T) {
	issuerSigner := newTestSigner(t)
	holderSigner := newTestSigner(t)
	builder := NewBuilder(DefaultHasher())

	claims := baseClaims()
	token, _, err := builder.Issue(context.Background(), claims, nil, map[string]any{"alg": "ES256"}, issuerSigner, IssueOptions{})
	require.NoError(t, err)

	kbJWT, err := BuildKeyBindingJWT(context.Background(), token, DefaultHasher(), map[string]any{"alg": "ES256"}, KeyBindingClaims{
		Nonce: "n-0S6_WzA2Mj",
		Aud:   "https://verifier.example",
		Iat:   1700000000,
	}, holderSigner)
	require.NoError(t, err)

	bound := AttachKeyBinding(token, kbJWT)
	presented, hasKB := bound.KeyBindingJWT()
	require.True(t, hasKB)

	kbClaims, err := DecodeJWSPayload(presented)
	require.NoError(t, err)
	sdHash, _ := kbClaims["sd_hash"].(string)
	require.NoError(t, VerifyPresentedPrefixDigest(bound, DefaultHasher(), sdHash))

	kbHeader, err := DecodeJWSHeader(presented)
	require.NoError(t, err)
	assert.Equal(t, KeyBindingTyp, kbHeader["typ"])
}

func TestParseRejectsMissingTrailingTilde(t *testing.T) {
	_, err := Parse("not-a-valid-token")
	require.Error(t, err)
	assert.IsType(t, &InvalidTokenFormatError{}, err)
}

func TestParseRejectsEmptyDisclosureSegment(t *testing.T) {
	_, err := Parse("header.payload.sig~~")
	require.Error(t, err)
	assert.IsType(t, &InvalidTokenFormatError{}, err)
}
