package sdjwt

import "strings"

// Token is C3: the immutable parsed form of an SD-JWT,
// `JWS~D1~...~Dn~[KB]`. It preserves enough of the original structure to
// reassemble byte-identical wire output, which sd_hash computation
// depends on.
type Token struct {
	jws         string
	disclosures []*Disclosure
	kbJWT       string
	hasKB       bool
}

// Parse splits the wire form of an SD-JWT into its JWS, disclosures, and
// optional KB-JWT. The trailing "~" that always separates the disclosure
// list from the KB-JWT position must be present.
func Parse(s string) (*Token, error) {
	parts := strings.Split(s, "~")
	if len(parts) < 2 {
		return nil, &InvalidTokenFormatError{Reason: "missing trailing '~' after JWS"}
	}
	if parts[0] == "" {
		return nil, &InvalidTokenFormatError{Reason: "missing JWS"}
	}

	rest := parts[1:]
	endsWithTilde := strings.HasSuffix(s, "~")

	var kbJWT string
	var hasKB bool
	var discParts []string
	if endsWithTilde {
		// Final element of rest is the empty string produced by the
		// trailing "~"; everything before it is disclosures.
		discParts = rest[:len(rest)-1]
	} else {
		discParts = rest[:len(rest)-1]
		kbJWT = rest[len(rest)-1]
		hasKB = true
	}

	disclosures := make([]*Disclosure, 0, len(discParts))
	for _, dp := range discParts {
		if dp == "" {
			return nil, &InvalidTokenFormatError{Reason: "empty disclosure segment"}
		}
		d, err := ParseDisclosure(dp)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, d)
	}

	return &Token{jws: parts[0], disclosures: disclosures, kbJWT: kbJWT, hasKB: hasKB}, nil
}

// JWS returns the leading compact JWS.
func (t *Token) JWS() string { return t.jws }

// Disclosures returns the token's disclosures in their original order.
func (t *Token) Disclosures() []*Disclosure { return t.disclosures }

// KeyBindingJWT returns the attached KB-JWT, if any.
func (t *Token) KeyBindingJWT() (string, bool) { return t.kbJWT, t.hasKB }

// String reassembles the token's exact wire form.
func (t *Token) String() string {
	return assembleToken(t.jws, t.disclosures, t.kbJWT, t.hasKB)
}

// PresentedPrefix returns the presented byte prefix up to and including
// the trailing "~" before the KB-JWT position — the exact input a KB-JWT's
// sd_hash commits to.
func (t *Token) PresentedPrefix() string {
	return assembleToken(t.jws, t.disclosures, "", false)
}

// WithKeyBinding returns a new token with the given KB-JWT attached,
// replacing any existing one.
func (t *Token) WithKeyBinding(kbJWT string) *Token {
	return &Token{jws: t.jws, disclosures: t.disclosures, kbJWT: kbJWT, hasKB: true}
}

func assembleToken(jws string, discs []*Disclosure, kbJWT string, hasKB bool) string {
	var b strings.Builder
	b.WriteString(jws)
	b.WriteString("~")
	for _, d := range discs {
		b.WriteString(d.Raw())
		b.WriteString("~")
	}
	if hasKB {
		b.WriteString(kbJWT)
	}
	return b.String()
}
