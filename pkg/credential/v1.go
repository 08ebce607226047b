package credential

import "sdjwtengine/pkg/sdjwt"

const baseContextV1 = "https://www.w3.org/2018/credentials/v1"

// V1 is a W3C Verifiable Credential, data model v1.1, shaped from a
// VCClaims remainder. Validity is expressed via issuanceDate/expirationDate
// RFC 3339 strings rather than the SD-JWT VC layer's nbf/exp.
type V1 struct {
	ContextList    []string
	ID             string
	TypeList       []string
	Issuer         any
	IssuanceDate   string
	ExpirationDate string
	SubjectClaim   any
}

var _ Credential = (*V1)(nil)

// Contexts implements Credential.
func (c *V1) Contexts() []string { return c.ContextList }

// Types implements Credential.
func (c *V1) Types() []string { return c.TypeList }

// Subject implements Credential.
func (c *V1) Subject() any { return c.SubjectClaim }

// DeserializeV1 shapes remainder (VCClaims.Remainder) into a v1.1
// credential, validating the base context, base type, and subject.
func DeserializeV1(remainder map[string]any) (*V1, error) {
	contexts := stringSlice(remainder["@context"])
	types := stringSlice(remainder["type"])
	subject := remainder["credentialSubject"]

	if err := validateBaseStructure(remainder, baseContextV1, contexts, types, subject); err != nil {
		return nil, err
	}

	v1 := &V1{
		ContextList:  contexts,
		TypeList:     types,
		SubjectClaim: subject,
		Issuer:       remainder["issuer"],
	}

	if id, ok := remainder["id"].(string); ok {
		v1.ID = id
	}
	if d, ok := remainder["issuanceDate"].(string); ok {
		v1.IssuanceDate = d
	}
	if d, ok := remainder["expirationDate"].(string); ok {
		v1.ExpirationDate = d
	} else if _, present := remainder["expirationDate"]; present {
		return nil, &sdjwt.InvalidClaimValueError{Name: "expirationDate", Expected: "RFC 3339 string", Found: remainder["expirationDate"]}
	}

	return v1, nil
}
