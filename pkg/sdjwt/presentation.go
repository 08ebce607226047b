package sdjwt

// PresentationBuilder is C6: given a parsed token, it omits disclosures
// by JSON pointer path and emits the resulting presented wire string.
// Paths are resolved against the token's fully-disclosed view, so that
// concealable paths under an undisclosed-but-not-yet-concealed ancestor
// remain addressable until that ancestor itself is concealed.
type PresentationBuilder struct {
	token    *Token
	hasher   Hasher
	retained map[string]bool // digest -> retained

	pathToDigest map[string]string
	parentOf     map[string]string   // digest -> enclosing disclosure digest, "" if none
	childrenOf   map[string][]string // digest -> directly nested digests, built lazily
}

// NewPresentationBuilder builds a presentation builder over token, with
// every disclosure initially retained.
func NewPresentationBuilder(token *Token, hasher Hasher) (*PresentationBuilder, error) {
	payload, err := decodeJWSPayload(token.JWS())
	if err != nil {
		return nil, err
	}

	_, trace, err := reconstructTracked(payload, token.Disclosures(), hasher)
	if err != nil {
		return nil, err
	}

	pathToDigest := make(map[string]string, len(trace))
	parentOf := make(map[string]string, len(trace))
	for digest, t := range trace {
		pathToDigest[t.path] = digest
		parentOf[digest] = t.parent
	}

	retained := make(map[string]bool, len(token.Disclosures()))
	for _, d := range token.Disclosures() {
		retained[d.Digest(hasher)] = true
	}

	return &PresentationBuilder{
		token:        token,
		hasher:       hasher,
		retained:     retained,
		pathToDigest: pathToDigest,
		parentOf:     parentOf,
	}, nil
}

// Conceal removes the disclosure revealing path, and every descendant
// disclosable disclosure nested under it.
func (pb *PresentationBuilder) Conceal(path string) error {
	digest, ok := pb.pathToDigest[path]
	if !ok {
		return &PathNotDisclosableError{Path: path}
	}
	pb.concealDigest(digest)
	return nil
}

func (pb *PresentationBuilder) concealDigest(digest string) {
	pb.retained[digest] = false
	for _, child := range pb.children(digest) {
		pb.retained[child] = false
	}
}

// children returns every digest whose nearest enclosing disclosure is
// (transitively) digest.
func (pb *PresentationBuilder) children(digest string) []string {
	if pb.childrenOf == nil {
		pb.childrenOf = make(map[string][]string, len(pb.parentOf))
		for d, parent := range pb.parentOf {
			if parent != "" {
				pb.childrenOf[parent] = append(pb.childrenOf[parent], d)
			}
		}
	}

	var out []string
	queue := pb.childrenOf[digest]
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		out = append(out, d)
		queue = append(queue, pb.childrenOf[d]...)
	}
	return out
}

// ConcealAll drops every disclosure.
func (pb *PresentationBuilder) ConcealAll() {
	for digest := range pb.retained {
		pb.retained[digest] = false
	}
}

// Disclose re-adds the disclosure for path and every ancestor disclosable
// disclosure, since an ancestor must be present for path to be reachable.
func (pb *PresentationBuilder) Disclose(path string) error {
	digest, ok := pb.pathToDigest[path]
	if !ok {
		return &PathNotDisclosableError{Path: path}
	}
	for digest != "" {
		pb.retained[digest] = true
		digest = pb.parentOf[digest]
	}
	return nil
}

// Finish emits a new token containing only retained disclosures, in their
// original order, and returns the disclosures that were removed.
func (pb *PresentationBuilder) Finish() (*Token, []*Disclosure) {
	var kept, removed []*Disclosure
	for _, d := range pb.token.Disclosures() {
		digest := d.Digest(pb.hasher)
		if pb.retained[digest] {
			kept = append(kept, d)
		} else {
			removed = append(removed, d)
		}
	}

	kbJWT, hasKB := pb.token.KeyBindingJWT()
	newToken := &Token{jws: pb.token.jws, disclosures: kept, kbJWT: kbJWT, hasKB: hasKB}
	return newToken, removed
}
