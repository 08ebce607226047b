// Package credential implements C8, the SD-JWT VC layer: reserved-claim
// shaping and conversion to/from the W3C Verifiable Credential v1.1 and
// v2.0 data models.
package credential

import (
	"encoding/json"

	"sdjwtengine/pkg/sdjwt"
)

// reservedClaims are the JWT-level claims a disclosure must never reveal,
// because they are meaningful only when present directly on the JWS
// payload (spec data model invariant 5).
var reservedClaims = []string{"iss", "nbf", "exp", "iat", "vct", "sub", "status"}

// VCClaims holds the reserved SD-JWT VC claims plus the opaque remainder
// that is forwarded to the W3C credential deserializer.
type VCClaims struct {
	Iss       string
	Sub       string
	Vct       string
	Nbf       *int64
	Exp       *int64
	Iat       *int64
	Status    any
	Remainder map[string]any
}

// ShapeClaims parses the reconstructed SD-JWT payload into VCClaims.
// payload is the raw JWS claims before reconstruction (used to detect
// whether a reserved claim arrived via a disclosure); reconstructed is
// the fully reconstructed claims tree (C4's output).
func ShapeClaims(payload, reconstructed map[string]any) (*VCClaims, error) {
	for _, name := range reservedClaims {
		_, inPayload := payload[name]
		_, inReconstructed := reconstructed[name]
		if inReconstructed && !inPayload {
			return nil, &sdjwt.DisclosedClaimError{Name: name}
		}
	}

	vc := &VCClaims{Remainder: map[string]any{}}

	vctVal, ok := reconstructed["vct"]
	if !ok {
		return nil, &sdjwt.MissingClaimError{Name: "vct"}
	}
	vct, ok := vctVal.(string)
	if !ok {
		return nil, &sdjwt.InvalidClaimValueError{Name: "vct", Expected: "string", Found: vctVal}
	}
	vc.Vct = vct

	if v, ok := reconstructed["iss"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, &sdjwt.InvalidClaimValueError{Name: "iss", Expected: "string (URL)", Found: v}
		}
		vc.Iss = s
	}

	if v, ok := reconstructed["sub"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, &sdjwt.InvalidClaimValueError{Name: "sub", Expected: "string", Found: v}
		}
		vc.Sub = s
	}

	if v, ok := reconstructed["status"]; ok {
		vc.Status = v
	}

	var err error
	if vc.Nbf, err = parseOptionalUnixSeconds(reconstructed, "nbf"); err != nil {
		return nil, err
	}
	if vc.Exp, err = parseOptionalUnixSeconds(reconstructed, "exp"); err != nil {
		return nil, err
	}
	if vc.Iat, err = parseOptionalUnixSeconds(reconstructed, "iat"); err != nil {
		return nil, err
	}

	reservedSet := make(map[string]bool, len(reservedClaims)+1)
	for _, name := range reservedClaims {
		reservedSet[name] = true
	}
	reservedSet["_sd_alg"] = true
	reservedSet["cnf"] = true

	for k, v := range reconstructed {
		if reservedSet[k] {
			continue
		}
		vc.Remainder[k] = v
	}

	return vc, nil
}

func parseOptionalUnixSeconds(claims map[string]any, name string) (*int64, error) {
	v, ok := claims[name]
	if !ok {
		return nil, nil
	}
	seconds, ok := asInt64(v)
	if !ok {
		return nil, &sdjwt.InvalidClaimValueError{Name: name, Expected: "integer Unix seconds", Found: v}
	}
	return &seconds, nil
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}
