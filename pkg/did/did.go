// Package did implements C10: read-only DID document resolution, the
// capability the validator (pkg/validator) consumes to turn a `cnf` claim
// or a credential issuer identifier into verifiable key material.
package did

import "context"

// VerificationMethod is a single key entry in a DID document.
type VerificationMethod interface {
	// ID is the verification method's fully-qualified identifier
	// (`did:...#key-id`).
	ID() string

	// PublicKey returns the decoded public key: *ecdsa.PublicKey,
	// *rsa.PublicKey, or ed25519.PublicKey.
	PublicKey() (any, error)
}

// DidDocument is a resolved DID document, reduced to what the validator
// needs: its own identifier and lookup of verification methods by URL.
type DidDocument interface {
	// ID is the document's subject DID.
	ID() string

	// VerificationMethod looks up a verification method by its
	// fully-qualified `did:...#key-id` URL, or by bare key-id when the
	// document itself is the implied DID (did:key, did:jwk).
	VerificationMethod(didURL string) (VerificationMethod, bool)
}

// Resolver resolves a DID to its document. Implementations may resolve
// purely algorithmically (did:key, did:jwk) or via network/registry
// lookups; the validator depends only on this interface.
type Resolver interface {
	Resolve(ctx context.Context, did string) (DidDocument, error)
}
