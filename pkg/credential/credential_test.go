package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdjwtengine/pkg/sdjwt"
)

func TestShapeClaimsRequiresVct(t *testing.T) {
	payload := map[string]any{"iss": "https://issuer.example"}
	reconstructed := map[string]any{"iss": "https://issuer.example"}

	_, err := ShapeClaims(payload, reconstructed)
	require.Error(t, err)
	assert.IsType(t, &sdjwt.MissingClaimError{}, err)
}

func TestShapeClaimsRejectsDisclosedReservedClaim(t *testing.T) {
	payload := map[string]any{"vct": "https://credentials.example/card"}
	reconstructed := map[string]any{
		"vct": "https://credentials.example/card",
		"iss": "https://issuer.example", // only present after reconstruction
	}

	_, err := ShapeClaims(payload, reconstructed)
	require.Error(t, err)
	assert.IsType(t, &sdjwt.DisclosedClaimError{}, err)
}

func TestShapeClaimsParsesTemporalAndRemainder(t *testing.T) {
	payload := map[string]any{
		"iss":               "https://issuer.example",
		"vct":               "https://credentials.example/card",
		"exp":               float64(1800000000),
		"credentialSubject": map[string]any{"name": "Erika"},
	}
	reconstructed := payload

	claims, err := ShapeClaims(payload, reconstructed)
	require.NoError(t, err)
	assert.Equal(t, "https://issuer.example", claims.Iss)
	require.NotNil(t, claims.Exp)
	assert.EqualValues(t, 1800000000, *claims.Exp)
	assert.Contains(t, claims.Remainder, "credentialSubject")
	assert.NotContains(t, claims.Remainder, "iss")
}

func TestShapeClaimsRejectsNonNumericTemporalClaim(t *testing.T) {
	payload := map[string]any{
		"vct": "https://credentials.example/card",
		"exp": "not-a-number",
	}
	_, err := ShapeClaims(payload, payload)
	require.Error(t, err)
	assert.IsType(t, &sdjwt.InvalidClaimValueError{}, err)
}

func TestDeserializeV1(t *testing.T) {
	remainder := map[string]any{
		"@context":          []any{"https://www.w3.org/2018/credentials/v1"},
		"type":              []any{"VerifiableCredential", "StudentCard"},
		"issuanceDate":      "2024-01-01T00:00:00Z",
		"credentialSubject": map[string]any{"name": "Erika"},
	}

	cred, err := Deserialize(remainder)
	require.NoError(t, err)
	v1, ok := cred.(*V1)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00Z", v1.IssuanceDate)
	assert.Contains(t, v1.Types(), "VerifiableCredential")
}

func TestDeserializeV2(t *testing.T) {
	remainder := map[string]any{
		"@context":          []any{"https://www.w3.org/ns/credentials/v2"},
		"type":              []any{"VerifiableCredential"},
		"validFrom":         "2024-01-01T00:00:00Z",
		"credentialSubject": map[string]any{"name": "Erika"},
	}

	cred, err := Deserialize(remainder)
	require.NoError(t, err)
	v2, ok := cred.(*V2)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00Z", v2.ValidFrom)
}

func TestDeserializeRejectsMissingBaseType(t *testing.T) {
	remainder := map[string]any{
		"@context":          []any{"https://www.w3.org/2018/credentials/v1"},
		"type":              []any{"StudentCard"},
		"credentialSubject": map[string]any{"name": "Erika"},
	}
	_, err := Deserialize(remainder)
	require.Error(t, err)
	assert.IsType(t, &sdjwt.MissingBaseTypeError{}, err)
}

func TestDeserializeRejectsMissingSubject(t *testing.T) {
	remainder := map[string]any{
		"@context": []any{"https://www.w3.org/2018/credentials/v1"},
		"type":     []any{"VerifiableCredential"},
	}
	_, err := Deserialize(remainder)
	require.Error(t, err)
	assert.IsType(t, &sdjwt.MissingClaimError{}, err)
}
