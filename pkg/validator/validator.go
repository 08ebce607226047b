// Package validator implements C9: the credential validation state
// machine that turns a wire SD-JWT VC presentation into an accepted,
// fully-shaped credential, or a typed error identifying exactly which
// check failed.
//
// A Session walks strictly forward through:
//
//	New -> JwsVerified -> ClaimsReconstructed -> CredentialShaped ->
//	IssuerBound -> TemporalOk -> (KbVerified | KbSkipped) -> Accepted
//
// Each step is its own method so callers that only need a subset (e.g. an
// issuer re-validating its own output, with no KB-JWT expected) can stop
// early; Validate drives every step for the common case.
package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sdjwtengine/pkg/credential"
	"sdjwtengine/pkg/did"
	"sdjwtengine/pkg/sdjwt"
)

// State names a position in the validation state machine.
type State int

const (
	StateNew State = iota
	StateJwsVerified
	StateClaimsReconstructed
	StateCredentialShaped
	StateIssuerBound
	StateTemporalOk
	StateKbVerified
	StateKbSkipped
	StateAccepted
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateJwsVerified:
		return "jws_verified"
	case StateClaimsReconstructed:
		return "claims_reconstructed"
	case StateCredentialShaped:
		return "credential_shaped"
	case StateIssuerBound:
		return "issuer_bound"
	case StateTemporalOk:
		return "temporal_ok"
	case StateKbVerified:
		return "kb_verified"
	case StateKbSkipped:
		return "kb_skipped"
	case StateAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Options configures a validation Session. Verifier is required; Hasher
// defaults to sha-256 and Now to time.Now. Session does not read
// Resolver: issuer keys are passed to VerifySignature (ResolveIssuerKey
// takes its resolver as an argument) and `cnf.kid` keys come from the
// holder document passed to VerifyKeyBinding.
type Options struct {
	Hasher   sdjwt.Hasher
	Verifier sdjwt.Verifier
	Resolver did.Resolver

	// Now returns the instant to validate temporal claims against.
	// Defaults to time.Now if nil.
	Now func() time.Time

	// Leeway is added/subtracted around Now when checking nbf/exp.
	Leeway time.Duration

	// ExpectedNonce and ExpectedAudience are compared against the
	// KB-JWT's nonce and aud claims when key binding is verified.
	ExpectedNonce    string
	ExpectedAudience string

	// KbIatLeeway bounds how far the KB-JWT's iat may lie after Now. An
	// iat in the past is not limited.
	KbIatLeeway time.Duration
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Result is the outcome of a fully Accepted session.
type Result struct {
	Claims     *credential.VCClaims
	Credential credential.Credential
	KeyBound   bool
}

// Session carries one credential through the validation state machine.
type Session struct {
	opts  Options
	state State

	tokenStr  string
	token     *sdjwt.Token
	header    map[string]any
	payload   map[string]any
	signerDID string

	reconstructed map[string]any
	vcClaims      *credential.VCClaims
	cred          credential.Credential
}

// NewSession starts a validation session.
func NewSession(opts Options) *Session {
	if opts.Hasher == nil {
		opts.Hasher = sdjwt.DefaultHasher()
	}
	return &Session{opts: opts, state: StateNew}
}

// State reports the session's current position.
func (s *Session) State() State { return s.state }

func (s *Session) requireState(want State) error {
	if s.state != want {
		return fmt.Errorf("validator: expected state %s, in %s", want, s.state)
	}
	return nil
}

// VerifySignature parses tokenStr, checks the declared `_sd_alg` against
// the session's hasher, and verifies the JWS signature under issuerKey.
// signerDID is the fully-qualified verification method identifier
// (`did:...#key-id`) that issuerKey was resolved from; VerifyIssuerBinding
// later re-asserts its DID against the credential's `iss`. Pass "" when
// issuerKey was supplied directly with no DID context (e.g. the
// steps-1-3-only verify-signature-only use case), in which case
// VerifyIssuerBinding must not be called.
func (s *Session) VerifySignature(ctx context.Context, tokenStr string, issuerKey any, signerDID string) error {
	if err := s.requireState(StateNew); err != nil {
		return err
	}

	token, err := sdjwt.Parse(tokenStr)
	if err != nil {
		return err
	}

	header, err := sdjwt.DecodeJWSHeader(token.JWS())
	if err != nil {
		return err
	}
	payload, err := sdjwt.DecodeJWSPayload(token.JWS())
	if err != nil {
		return err
	}

	if alg, ok := payload["_sd_alg"].(string); ok {
		if alg != s.opts.Hasher.Name() {
			return &sdjwt.HasherMismatchError{Expected: s.opts.Hasher.Name(), Found: alg}
		}
	}

	signingInput, signature, err := sdjwt.SigningInputAndSignature(token.JWS())
	if err != nil {
		return err
	}
	jwsAlg, _ := header["alg"].(string)
	if err := s.opts.Verifier.Verify(ctx, jwsAlg, issuerKey, signingInput, signature); err != nil {
		return &sdjwt.SignatureError{Role: sdjwt.RoleIssuer}
	}

	s.tokenStr = tokenStr
	s.token = token
	s.header = header
	s.payload = payload
	s.signerDID = signerDID
	s.state = StateJwsVerified
	return nil
}

// ResolveIssuerKey resolves the verification method for the credential's
// `iss` claim through resolver, honoring the JWS header's
// `kid` when present. It returns both the public key and the resolved
// verification method's fully-qualified ID, the latter to be passed as
// VerifySignature's signerDID so VerifyIssuerBinding can enforce it.
// Callers that already hold the issuer's public key can skip this and
// pass it directly to VerifySignature, omitting the issuer binding step.
func ResolveIssuerKey(ctx context.Context, resolver did.Resolver, iss, kid string) (key any, verificationMethodID string, err error) {
	if resolver == nil {
		return nil, "", fmt.Errorf("validator: no resolver configured")
	}
	doc, err := resolver.Resolve(ctx, iss)
	if err != nil {
		return nil, "", err
	}

	lookupURL := iss
	if kid != "" {
		if strings.Contains(kid, "#") {
			lookupURL = kid
		} else {
			lookupURL = iss + "#" + kid
		}
	}

	vm, ok := doc.VerificationMethod(lookupURL)
	if !ok {
		return nil, "", &sdjwt.MethodDataLookupError{DIDURL: lookupURL}
	}
	pub, err := vm.PublicKey()
	if err != nil {
		return nil, "", err
	}
	return pub, vm.ID(), nil
}

// baseDID strips the fragment (verification-method selector) off a DID
// URL, leaving the bare DID.
func baseDID(didURL string) string {
	if i := strings.IndexByte(didURL, '#'); i >= 0 {
		return didURL[:i]
	}
	return didURL
}

// ReconstructClaims applies disclosures to the JWS payload, producing the
// fully reconstructed claims tree.
func (s *Session) ReconstructClaims() error {
	if err := s.requireState(StateJwsVerified); err != nil {
		return err
	}

	reconstructed, err := sdjwt.Reconstruct(s.payload, s.token.Disclosures(), s.opts.Hasher)
	if err != nil {
		return err
	}

	s.reconstructed = reconstructed
	s.state = StateClaimsReconstructed
	return nil
}

// ShapeCredential shapes the reconstructed claims into VCClaims and, from
// its remainder, a W3C VC v1.1 or v2.0 Credential.
func (s *Session) ShapeCredential() error {
	if err := s.requireState(StateClaimsReconstructed); err != nil {
		return err
	}

	vcClaims, err := credential.ShapeClaims(s.payload, s.reconstructed)
	if err != nil {
		return err
	}
	cred, err := credential.Deserialize(vcClaims.Remainder)
	if err != nil {
		return err
	}

	s.vcClaims = vcClaims
	s.cred = cred
	s.state = StateCredentialShaped
	return nil
}

// VerifyIssuerBinding re-asserts that the credential's `iss` DID equals
// the DID of the verification method that signed the JWS (spec step 5,
// data-model invariant 6, the "Issuer binding" testable property).
// signerDID must have been supplied to VerifySignature; a session
// verified against a bare key with no DID context cannot pass this step.
func (s *Session) VerifyIssuerBinding() error {
	if err := s.requireState(StateCredentialShaped); err != nil {
		return err
	}

	signerIssuer := baseDID(s.signerDID)
	if signerIssuer != s.vcClaims.Iss {
		return &sdjwt.IdentifierMismatchError{Role: sdjwt.RoleIssuer, Expected: s.vcClaims.Iss, Found: signerIssuer}
	}

	s.state = StateIssuerBound
	return nil
}

// CheckTemporalBounds enforces exp > now-leeway and nbf/iat <= now+leeway
// when those claims are present.
func (s *Session) CheckTemporalBounds() error {
	if err := s.requireState(StateIssuerBound); err != nil {
		return err
	}

	now := s.opts.now()
	leeway := s.opts.Leeway

	if s.vcClaims.Exp != nil {
		exp := time.Unix(*s.vcClaims.Exp, 0)
		if !exp.After(now.Add(-leeway)) {
			return &sdjwt.ExpirationDateError{}
		}
	}
	if s.vcClaims.Nbf != nil {
		nbf := time.Unix(*s.vcClaims.Nbf, 0)
		if nbf.After(now.Add(leeway)) {
			return &sdjwt.IssuanceDateError{Reason: "nbf is in the future"}
		}
	}
	if s.vcClaims.Iat != nil {
		iat := time.Unix(*s.vcClaims.Iat, 0)
		if iat.After(now.Add(leeway)) {
			return &sdjwt.IssuanceDateError{Reason: "iat is in the future"}
		}
	}

	s.state = StateTemporalOk
	return nil
}

// VerifyKeyBinding checks the KB-JWT when the credential declares `cnf`,
// resolving the holder's key either directly from a `jwk` cnf or, for
// `kid`, by parsing it as a DID URL and looking it up against
// holderDoc (required for `cnf.kid`; a DID mismatch with holderDoc.ID()
// fails with DocumentMismatch{Holder} per spec.md's
// validate_key_binding_jwt step 3). If no `cnf` is present the session
// moves to KbSkipped.
func (s *Session) VerifyKeyBinding(ctx context.Context, holderDoc did.DidDocument) error {
	if err := s.requireState(StateTemporalOk); err != nil {
		return err
	}

	cnf, hasCnf := s.reconstructed["cnf"].(map[string]any)
	if !hasCnf || len(cnf) == 0 {
		s.state = StateKbSkipped
		return nil
	}

	kbJWT, hasKB := s.token.KeyBindingJWT()
	if !hasKB {
		return &sdjwt.MissingKeyBindingJwtError{}
	}

	holderKey, err := resolveCnf(cnf, holderDoc)
	if err != nil {
		return err
	}

	kbHeader, err := sdjwt.DecodeJWSHeader(kbJWT)
	if err != nil {
		return err
	}
	if typ, _ := kbHeader["typ"].(string); typ != sdjwt.KeyBindingTyp {
		return &sdjwt.InvalidHeaderTypError{Expected: sdjwt.KeyBindingTyp, Found: typ}
	}

	kbSigningInput, kbSignature, err := sdjwt.SigningInputAndSignature(kbJWT)
	if err != nil {
		return err
	}
	kbAlg, _ := kbHeader["alg"].(string)
	if err := s.opts.Verifier.Verify(ctx, kbAlg, holderKey, kbSigningInput, kbSignature); err != nil {
		return &sdjwt.SignatureError{Role: sdjwt.RoleHolder}
	}

	kbClaims, err := sdjwt.DecodeJWSPayload(kbJWT)
	if err != nil {
		return err
	}

	if s.opts.ExpectedNonce != "" {
		if nonce, _ := kbClaims["nonce"].(string); nonce != s.opts.ExpectedNonce {
			return &sdjwt.InvalidNonceError{Expected: s.opts.ExpectedNonce, Found: nonce}
		}
	}
	if s.opts.ExpectedAudience != "" {
		if aud, _ := kbClaims["aud"].(string); aud != s.opts.ExpectedAudience {
			return &sdjwt.AudienceMismatchError{Expected: s.opts.ExpectedAudience, Found: aud}
		}
	}
	if iat, ok := asSeconds(kbClaims["iat"]); ok {
		now := s.opts.now()
		leeway := s.opts.KbIatLeeway
		when := time.Unix(iat, 0)
		if when.After(now.Add(leeway)) {
			return &sdjwt.IssuanceDateError{Reason: "kb-jwt iat is in the future"}
		}
	}

	sdHash, _ := kbClaims["sd_hash"].(string)
	if err := sdjwt.VerifyPresentedPrefixDigest(s.token, s.opts.Hasher, sdHash); err != nil {
		return err
	}

	s.state = StateKbVerified
	return nil
}

func resolveCnf(cnf map[string]any, holderDoc did.DidDocument) (any, error) {
	if jwkVal, ok := cnf["jwk"]; ok {
		jwkMap, ok := jwkVal.(map[string]any)
		if !ok {
			return nil, &sdjwt.UnsupportedCnfMethodError{Shape: "jwk"}
		}
		return jwkToKey(jwkMap)
	}
	if kidVal, ok := cnf["kid"]; ok {
		kid, ok := kidVal.(string)
		if !ok || holderDoc == nil {
			return nil, &sdjwt.UnsupportedCnfMethodError{Shape: "kid"}
		}
		if baseDID(kid) != holderDoc.ID() {
			return nil, &sdjwt.DocumentMismatchError{Role: sdjwt.RoleHolder}
		}
		vm, ok := holderDoc.VerificationMethod(kid)
		if !ok {
			return nil, &sdjwt.MethodDataLookupError{DIDURL: kid}
		}
		return vm.PublicKey()
	}
	for k := range cnf {
		return nil, &sdjwt.UnsupportedCnfMethodError{Shape: k}
	}
	return nil, &sdjwt.UnsupportedCnfMethodError{Shape: "empty"}
}

func asSeconds(v any) (int64, bool) {
	switch t := v.(type) {
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

// Validate drives a full presentation through every step in order:
// signature, reconstruction, credential shaping, issuer binding, temporal
// bounds, key binding, and acceptance. It is the common-case entrypoint;
// callers needing to stop partway (e.g. an issuer re-checking its own
// output, with no KB-JWT expected) should drive the Session methods
// directly instead. signerDID is the verification method that signed
// the JWS (see VerifySignature); holderDoc resolves a `cnf.kid` binding,
// and may be nil when the credential is known to use `cnf.jwk` only.
func Validate(ctx context.Context, opts Options, tokenStr string, issuerKey any, signerDID string, holderDoc did.DidDocument) (*Result, error) {
	s := NewSession(opts)
	if err := s.VerifySignature(ctx, tokenStr, issuerKey, signerDID); err != nil {
		return nil, err
	}
	if err := s.ReconstructClaims(); err != nil {
		return nil, err
	}
	if err := s.ShapeCredential(); err != nil {
		return nil, err
	}
	if err := s.VerifyIssuerBinding(); err != nil {
		return nil, err
	}
	if err := s.CheckTemporalBounds(); err != nil {
		return nil, err
	}
	if err := s.VerifyKeyBinding(ctx, holderDoc); err != nil {
		return nil, err
	}
	return s.Accept()
}

// Accept finalizes an already KbVerified or KbSkipped session.
func (s *Session) Accept() (*Result, error) {
	if s.state != StateKbVerified && s.state != StateKbSkipped {
		return nil, fmt.Errorf("validator: expected state %s or %s, in %s", StateKbVerified, StateKbSkipped, s.state)
	}
	keyBound := s.state == StateKbVerified
	s.state = StateAccepted
	return &Result{
		Claims:     s.vcClaims,
		Credential: s.cred,
		KeyBound:   keyBound,
	}, nil
}
