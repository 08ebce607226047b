package did

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDidKeyEd25519(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	prefixed := append([]byte{0xed, 0x01}, pub...)
	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	require.NoError(t, err)

	resolver := NewLocalResolver()
	doc, err := resolver.Resolve(context.Background(), "did:key:"+encoded)
	require.NoError(t, err)
	assert.Equal(t, "did:key:"+encoded, doc.ID())

	vm, ok := doc.VerificationMethod("did:key:" + encoded)
	require.True(t, ok)

	key, err := vm.PublicKey()
	require.NoError(t, err)
	resolvedPub, ok := key.(ed25519.PublicKey)
	require.True(t, ok)
	assert.Equal(t, pub, resolvedPub)
}

func TestResolveDidKeyFragmentLookup(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	prefixed := append([]byte{0xed, 0x01}, pub...)
	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	require.NoError(t, err)

	did := "did:key:" + encoded
	resolver := NewLocalResolver()
	doc, err := resolver.Resolve(context.Background(), did)
	require.NoError(t, err)

	_, ok := doc.VerificationMethod(did + "#" + encoded)
	assert.True(t, ok)

	_, ok = doc.VerificationMethod("did:key:wrong#nope")
	assert.False(t, ok)
}

func TestResolveDidJwk(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	jwk := map[string]any{
		"kty": "OKP",
		"crv": "Ed25519",
		"x":   base64.RawURLEncoding.EncodeToString(pub),
	}
	raw, err := json.Marshal(jwk)
	require.NoError(t, err)
	encoded := base64.RawURLEncoding.EncodeToString(raw)

	resolver := NewLocalResolver()
	doc, err := resolver.Resolve(context.Background(), "did:jwk:"+encoded)
	require.NoError(t, err)

	vm, ok := doc.VerificationMethod("did:jwk:" + encoded + "#0")
	require.True(t, ok)
	key, err := vm.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, ed25519.PublicKey(pub), key)
}

func TestResolveRejectsUnsupportedMethod(t *testing.T) {
	resolver := NewLocalResolver()
	_, err := resolver.Resolve(context.Background(), "did:web:example.com")
	require.Error(t, err)
}

func TestResolveDidKeyRejectsBadMultibase(t *testing.T) {
	resolver := NewLocalResolver()
	_, err := resolver.Resolve(context.Background(), "did:key:!not-valid-multibase")
	require.Error(t, err)
	assert.IsType(t, &MethodLookupError{}, err)
}
