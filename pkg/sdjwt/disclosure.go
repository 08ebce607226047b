package sdjwt

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
)

// Disclosure is C2: one disclosable value `[salt, name?, value]`, kept
// alongside the exact base64url JSON text that produced it. Two
// disclosures with identical logical content but different byte encodings
// are distinct — the byte form is authoritative for digest computation.
type Disclosure struct {
	salt    string
	name    string
	hasName bool
	value   any
	raw     string
}

// Salt returns the disclosure's salt value.
func (d *Disclosure) Salt() string { return d.salt }

// Name returns the disclosure's claim name and whether it has one. A
// disclosure with no name describes an array element.
func (d *Disclosure) Name() (string, bool) { return d.name, d.hasName }

// Value returns the disclosed JSON value.
func (d *Disclosure) Value() any { return d.value }

// Raw returns the exact base64url-encoded text this disclosure was parsed
// from or emitted as. Digests are always computed over this byte form.
func (d *Disclosure) Raw() string { return d.raw }

// Digest computes this disclosure's digest under the given hasher.
func (d *Disclosure) Digest(h Hasher) string { return h.Digest([]byte(d.raw)) }

// Equal compares two disclosures by their byte form, per the data model's
// definition of disclosure equality.
func (d *Disclosure) Equal(other *Disclosure) bool {
	if other == nil {
		return false
	}
	return d.raw == other.raw
}

// NewPropertyDisclosure builds an object-property disclosure.
func NewPropertyDisclosure(salt, name string, value any) (*Disclosure, error) {
	if name == "" {
		return nil, &InvalidDisclosureError{Reason: "claim name must not be empty"}
	}
	raw, err := encodeDisclosure([]any{salt, name, value})
	if err != nil {
		return nil, &InvalidDisclosureError{Reason: err.Error()}
	}
	return &Disclosure{salt: salt, name: name, hasName: true, value: value, raw: raw}, nil
}

// NewArrayElementDisclosure builds an array-element disclosure.
func NewArrayElementDisclosure(salt string, value any) (*Disclosure, error) {
	raw, err := encodeDisclosure([]any{salt, value})
	if err != nil {
		return nil, &InvalidDisclosureError{Reason: err.Error()}
	}
	return &Disclosure{salt: salt, hasName: false, value: value, raw: raw}, nil
}

func encodeDisclosure(arr []any) (string, error) {
	b, err := json.Marshal(arr)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseDisclosure decodes a base64url disclosure string, requiring a JSON
// array of length 2 (array element) or 3 (object property).
func ParseDisclosure(raw string) (*Disclosure, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, &InvalidDisclosureError{Reason: "not valid base64url: " + err.Error()}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var arr []any
	if err := dec.Decode(&arr); err != nil {
		return nil, &InvalidDisclosureError{Reason: "not a JSON array: " + err.Error()}
	}

	switch len(arr) {
	case 2:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, &InvalidDisclosureError{Reason: "salt is not a string"}
		}
		return &Disclosure{salt: salt, hasName: false, value: arr[1], raw: raw}, nil
	case 3:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, &InvalidDisclosureError{Reason: "salt is not a string"}
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, &InvalidDisclosureError{Reason: "claim name is not a string"}
		}
		return &Disclosure{salt: salt, name: name, hasName: true, value: arr[2], raw: raw}, nil
	default:
		return nil, &InvalidDisclosureError{Reason: "disclosure array must have length 2 or 3"}
	}
}

// generateSalt produces a fresh 128-bit random salt, base64url encoded.
func generateSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// decoyDigest produces a digest-shaped string with no corresponding
// disclosure, so a verifier cannot observe how many claims were concealed.
func decoyDigest(h Hasher) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return h.Digest(b), nil
}
