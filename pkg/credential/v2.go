package credential

import "sdjwtengine/pkg/sdjwt"

const baseContextV2 = "https://www.w3.org/ns/credentials/v2"

// V2 is a W3C Verifiable Credential, data model v2.0, shaped from a
// VCClaims remainder. Validity is expressed via validFrom/validUntil
// RFC 3339 strings.
type V2 struct {
	ContextList  []string
	ID           string
	TypeList     []string
	Issuer       any
	ValidFrom    string
	ValidUntil   string
	SubjectClaim any
}

var _ Credential = (*V2)(nil)

// Contexts implements Credential.
func (c *V2) Contexts() []string { return c.ContextList }

// Types implements Credential.
func (c *V2) Types() []string { return c.TypeList }

// Subject implements Credential.
func (c *V2) Subject() any { return c.SubjectClaim }

// DeserializeV2 shapes remainder (VCClaims.Remainder) into a v2.0
// credential, validating the base context, base type, and subject.
func DeserializeV2(remainder map[string]any) (*V2, error) {
	contexts := stringSlice(remainder["@context"])
	types := stringSlice(remainder["type"])
	subject := remainder["credentialSubject"]

	if err := validateBaseStructure(remainder, baseContextV2, contexts, types, subject); err != nil {
		return nil, err
	}

	v2 := &V2{
		ContextList:  contexts,
		TypeList:     types,
		SubjectClaim: subject,
		Issuer:       remainder["issuer"],
	}

	if id, ok := remainder["id"].(string); ok {
		v2.ID = id
	}
	if d, ok := remainder["validFrom"].(string); ok {
		v2.ValidFrom = d
	} else if _, present := remainder["validFrom"]; present {
		return nil, &sdjwt.InvalidClaimValueError{Name: "validFrom", Expected: "RFC 3339 string", Found: remainder["validFrom"]}
	}
	if d, ok := remainder["validUntil"].(string); ok {
		v2.ValidUntil = d
	} else if _, present := remainder["validUntil"]; present {
		return nil, &sdjwt.InvalidClaimValueError{Name: "validUntil", Expected: "RFC 3339 string", Found: remainder["validUntil"]}
	}

	return v2, nil
}

// DetectVersion reports which W3C VC data model version remainder uses:
// "v2" when validFrom or validUntil is present, otherwise "v1".
func DetectVersion(remainder map[string]any) string {
	if _, ok := remainder["validFrom"]; ok {
		return "v2"
	}
	if _, ok := remainder["validUntil"]; ok {
		return "v2"
	}
	return "v1"
}

// Deserialize dispatches to DeserializeV1 or DeserializeV2 based on
// DetectVersion.
func Deserialize(remainder map[string]any) (Credential, error) {
	switch DetectVersion(remainder) {
	case "v2":
		return DeserializeV2(remainder)
	default:
		return DeserializeV1(remainder)
	}
}
