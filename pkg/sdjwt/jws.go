package sdjwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Signer is the consumed signing capability. Implementations live outside
// this package (see pkg/signing for defaults); the core only
// depends on this interface.
type Signer interface {
	Sign(ctx context.Context, data []byte) ([]byte, error)
	Algorithm() string
	KeyID() string
	PublicKey() any
}

// Verifier is the consumed verification capability. It checks a signature
// over a signing input under a named algorithm and key material.
type Verifier interface {
	Verify(ctx context.Context, alg string, key any, signingInput, signature []byte) error
}

// signCompact builds and signs a compact JWS: base64url(header) + "." +
// base64url(payload), signed by the supplied Signer, with the signature
// appended as the third segment.
func signCompact(ctx context.Context, header, payload map[string]any, signer Signer) (string, error) {
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerBytes) + "." +
		base64.RawURLEncoding.EncodeToString(payloadBytes)

	sig, err := signer.Sign(ctx, []byte(signingInput))
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// DecodeJWSHeader decodes the header segment of a compact JWS.
func DecodeJWSHeader(jws string) (map[string]any, error) { return decodeJWSHeader(jws) }

// DecodeJWSPayload decodes the payload segment of a compact JWS.
func DecodeJWSPayload(jws string) (map[string]any, error) { return decodeJWSPayload(jws) }

// SigningInputAndSignature splits a compact JWS into the bytes that were
// signed and the raw signature bytes, for handing to a Verifier.
func SigningInputAndSignature(jws string) (signingInput, signature []byte, err error) {
	return signingInputAndSignature(jws)
}

// splitCompactJWS splits a compact JWS into its three base64url segments.
func splitCompactJWS(jws string) (headerB64, payloadB64, sigB64 string, err error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 {
		return "", "", "", &InvalidTokenFormatError{Reason: "JWS must have exactly three dot-separated segments"}
	}
	return parts[0], parts[1], parts[2], nil
}

// decodeJWSHeader decodes the header segment of a compact JWS.
func decodeJWSHeader(jws string) (map[string]any, error) {
	headerB64, _, _, err := splitCompactJWS(jws)
	if err != nil {
		return nil, err
	}
	return decodeB64JSONObject(headerB64)
}

// decodeJWSPayload decodes the payload segment of a compact JWS.
func decodeJWSPayload(jws string) (map[string]any, error) {
	_, payloadB64, _, err := splitCompactJWS(jws)
	if err != nil {
		return nil, err
	}
	return decodeB64JSONObject(payloadB64)
}

// signingInputAndSignature splits a compact JWS into the bytes that were
// signed and the raw signature bytes, for handing to a Verifier.
func signingInputAndSignature(jws string) (signingInput, signature []byte, err error) {
	headerB64, payloadB64, sigB64, err := splitCompactJWS(jws)
	if err != nil {
		return nil, nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return nil, nil, &InvalidTokenFormatError{Reason: "signature is not valid base64url"}
	}
	return []byte(headerB64 + "." + payloadB64), sig, nil
}

func decodeB64JSONObject(b64 string) (map[string]any, error) {
	data, err := base64.RawURLEncoding.DecodeString(b64)
	if err != nil {
		return nil, &InvalidTokenFormatError{Reason: "not valid base64url"}
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &InvalidTokenFormatError{Reason: "not a JSON object"}
	}
	return obj, nil
}
