// Package sdjwt implements the core Selective-Disclosure JWT data format:
// hashing, disclosure encoding, token parsing, tree reconstruction, issuance
// and presentation building, and Key-Binding JWT support.
package sdjwt

import "fmt"

// Role distinguishes the issuer's signature from the holder's in errors that
// can apply to either leg of a credential presentation.
type Role string

const (
	RoleIssuer Role = "issuer"
	RoleHolder Role = "holder"
)

// InvalidDisclosureError is returned when a disclosure's base64url/JSON
// shape does not match `[salt, value]` or `[salt, name, value]`.
type InvalidDisclosureError struct {
	Reason string
}

func (e *InvalidDisclosureError) Error() string {
	return fmt.Sprintf("invalid disclosure: %s", e.Reason)
}

// InvalidTokenFormatError is returned when the wire form of an SD-JWT
// cannot be split into a JWS, disclosures, and an optional KB-JWT.
type InvalidTokenFormatError struct {
	Reason string
}

func (e *InvalidTokenFormatError) Error() string {
	return fmt.Sprintf("invalid SD-JWT token format: %s", e.Reason)
}

// HasherMismatchError is returned when a token's `_sd_alg` does not match
// the hasher a validator was configured with.
type HasherMismatchError struct {
	Expected string
	Found    string
}

func (e *HasherMismatchError) Error() string {
	return fmt.Sprintf("hasher mismatch: validator uses %q, token declares %q", e.Expected, e.Found)
}

// UnusedDisclosureError is returned when a disclosure's digest never
// appears in any `_sd` array or array placeholder during reconstruction.
type UnusedDisclosureError struct {
	Digest string
}

func (e *UnusedDisclosureError) Error() string {
	return fmt.Sprintf("disclosure with digest %q was never consumed", e.Digest)
}

// DigestCollisionError is returned when two disclosures in the same token
// hash to the same digest under the configured hasher.
type DigestCollisionError struct {
	Digest string
}

func (e *DigestCollisionError) Error() string {
	return fmt.Sprintf("two disclosures share digest %q", e.Digest)
}

// ClaimCollisionError is returned when a disclosure's claim name already
// exists as a plain key in the object it would be reconstructed into.
type ClaimCollisionError struct {
	Name string
}

func (e *ClaimCollisionError) Error() string {
	return fmt.Sprintf("claim %q already present in enclosing object", e.Name)
}

// PathNotDisclosableError is returned when a presentation operation
// targets a JSON pointer path that was never made concealable at issuance.
type PathNotDisclosableError struct {
	Path string
}

func (e *PathNotDisclosableError) Error() string {
	return fmt.Sprintf("path %q is not disclosable", e.Path)
}

// DisclosedClaimError is returned when a reserved JWT-level claim name
// (iss, nbf, exp, iat, sub, status, vct) is found disclosed via a
// disclosure rather than present directly on the JWS payload.
type DisclosedClaimError struct {
	Name string
}

func (e *DisclosedClaimError) Error() string {
	return fmt.Sprintf("claim %q must not be a disclosure", e.Name)
}

// MissingClaimError is returned when a required claim is absent.
type MissingClaimError struct {
	Name string
}

func (e *MissingClaimError) Error() string {
	return fmt.Sprintf("missing required claim %q", e.Name)
}

// InvalidClaimValueError is returned when a claim is present but its value
// has the wrong shape.
type InvalidClaimValueError struct {
	Name     string
	Expected string
	Found    any
}

func (e *InvalidClaimValueError) Error() string {
	return fmt.Sprintf("claim %q: expected %s, found %v", e.Name, e.Expected, e.Found)
}

// MissingBaseContextError is returned when a W3C credential's @context
// does not start with the expected base context URI.
type MissingBaseContextError struct {
	Expected string
	Found    any
}

func (e *MissingBaseContextError) Error() string {
	return fmt.Sprintf("missing base context %q, found %v", e.Expected, e.Found)
}

// MissingBaseTypeError is returned when a W3C credential's type array does
// not include "VerifiableCredential".
type MissingBaseTypeError struct{}

func (e *MissingBaseTypeError) Error() string {
	return "credential type does not include VerifiableCredential"
}

// SignatureError is returned when a JWS or KB-JWT signature fails to
// verify.
type SignatureError struct {
	Role Role
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s signature verification failed", e.Role)
}

// IdentifierMismatchError is returned when a DID derived from one source
// does not match the DID derived from another (e.g. credential issuer vs.
// signing verification method).
type IdentifierMismatchError struct {
	Role     Role
	Expected string
	Found    string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("%s identifier mismatch: expected %q, found %q", e.Role, e.Expected, e.Found)
}

// DocumentMismatchError is returned when a resolved key's DID document
// does not match the document the validator was asked to check against.
type DocumentMismatchError struct {
	Role Role
}

func (e *DocumentMismatchError) Error() string {
	return fmt.Sprintf("%s document mismatch", e.Role)
}

// MethodDataLookupError is returned when a verification method cannot be
// resolved from a DID document, or carries no usable key material.
type MethodDataLookupError struct {
	DIDURL string
}

func (e *MethodDataLookupError) Error() string {
	return fmt.Sprintf("could not resolve verification method %q", e.DIDURL)
}

// UnsupportedCnfMethodError is returned when a `cnf` claim is present but
// is neither `{kid}` nor `{jwk}`.
type UnsupportedCnfMethodError struct {
	Shape string
}

func (e *UnsupportedCnfMethodError) Error() string {
	return fmt.Sprintf("unsupported cnf method: %s", e.Shape)
}

// MissingKeyBindingJwtError is returned when a token declares `cnf` but no
// KB-JWT is attached.
type MissingKeyBindingJwtError struct{}

func (e *MissingKeyBindingJwtError) Error() string {
	return "cnf is present but no key-binding JWT is attached"
}

// InvalidDigestError is returned when a computed digest does not match an
// expected one (used for sd_hash comparisons).
type InvalidDigestError struct {
	Expected string
	Found    string
}

func (e *InvalidDigestError) Error() string {
	return fmt.Sprintf("digest mismatch: expected %q, found %q", e.Expected, e.Found)
}

// InvalidNonceError is returned when a KB-JWT's nonce does not match the
// validator's expected nonce.
type InvalidNonceError struct {
	Expected string
	Found    string
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("nonce mismatch: expected %q, found %q", e.Expected, e.Found)
}

// AudienceMismatchError is returned when a KB-JWT's aud does not match the
// validator's expected audience.
type AudienceMismatchError struct {
	Expected string
	Found    string
}

func (e *AudienceMismatchError) Error() string {
	return fmt.Sprintf("audience mismatch: expected %q, found %q", e.Expected, e.Found)
}

// IssuanceDateError is returned when a KB-JWT's or credential's issuance
// timestamp falls outside the bounds the validator enforces.
type IssuanceDateError struct {
	Reason string
}

func (e *IssuanceDateError) Error() string {
	return fmt.Sprintf("invalid issuance date: %s", e.Reason)
}

// InvalidHeaderTypError is returned when a JWS's `typ` header does not
// match what the context requires (e.g. `kb+jwt`).
type InvalidHeaderTypError struct {
	Expected string
	Found    string
}

func (e *InvalidHeaderTypError) Error() string {
	return fmt.Sprintf("invalid typ header: expected %q, found %q", e.Expected, e.Found)
}

// ExpirationDateError is returned when a credential's exp claim is in the
// past relative to the validator's clock and leeway.
type ExpirationDateError struct{}

func (e *ExpirationDateError) Error() string {
	return "credential has expired"
}

// TemporalBoundsViolatedError is returned when a timestamp falls outside
// caller-supplied earliest/latest bounds.
type TemporalBoundsViolatedError struct {
	Reason string
}

func (e *TemporalBoundsViolatedError) Error() string {
	return fmt.Sprintf("temporal bounds violated: %s", e.Reason)
}
