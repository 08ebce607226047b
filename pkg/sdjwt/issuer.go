package sdjwt

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
)

// IssueOptions configures C5 issuance beyond the mandatory claims, paths,
// and signer.
type IssueOptions struct {
	// Decoys is the number of decoy digests added to every `_sd` array
	// created while processing the requested concealable paths. Decoys
	// make the number of concealed claims unobservable to a verifier.
	Decoys int

	// HasherName, if set, overrides the builder's hasher for `_sd_alg`.
	// Leave empty to use the builder's own hasher.
	HasherName string
}

// Builder is C5: the issuer builder. It marks JSON sub-trees
// concealable, emits the resulting disclosures and `_sd`-digest claims,
// and signs the result via an injected Signer.
type Builder struct {
	hasher Hasher
}

// NewBuilder creates an issuer builder using the given hasher.
func NewBuilder(hasher Hasher) *Builder {
	if hasher == nil {
		hasher = DefaultHasher()
	}
	return &Builder{hasher: hasher}
}

// Conceal rewrites a deep copy of claims, making every path in paths
// concealable, and returns the rewritten claims alongside the disclosures
// created for them. Deeper paths are processed before their ancestors so
// that an ancestor's disclosure value already contains the concealed
// descendant.
func (b *Builder) Conceal(claims map[string]any, paths []string, opts IssueOptions) (map[string]any, []*Disclosure, error) {
	working, err := deepCopyObject(claims)
	if err != nil {
		return nil, nil, err
	}

	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathDepth(ordered[i]) > pathDepth(ordered[j])
	})

	var discs []*Disclosure
	touchedObjects := make(map[uintptr]bool)

	for _, path := range ordered {
		segments, err := splitPointer(path)
		if err != nil {
			return nil, nil, err
		}
		parent, last, err := navigateToParent(working, segments)
		if err != nil {
			return nil, nil, &PathNotDisclosableError{Path: path}
		}

		switch p := parent.(type) {
		case map[string]any:
			value, ok := p[last]
			if !ok {
				return nil, nil, &PathNotDisclosableError{Path: path}
			}
			salt, err := generateSalt()
			if err != nil {
				return nil, nil, err
			}
			disc, err := NewPropertyDisclosure(salt, last, value)
			if err != nil {
				return nil, nil, err
			}
			digest := disc.Digest(b.hasher)
			delete(p, last)

			sdArr, _ := p["_sd"].([]any)
			sdArr = append(sdArr, digest)
			// Decoys go in when an object is first touched, so they are
			// already present if an ancestor's disclosure is encoded later.
			if ptr := reflect.ValueOf(p).Pointer(); !touchedObjects[ptr] {
				touchedObjects[ptr] = true
				for i := 0; i < opts.Decoys; i++ {
					d, err := decoyDigest(b.hasher)
					if err != nil {
						return nil, nil, err
					}
					sdArr = append(sdArr, d)
				}
			}
			p["_sd"] = sdArr

			discs = append(discs, disc)

		case []any:
			idx, convErr := strconv.Atoi(last)
			if convErr != nil || idx < 0 || idx >= len(p) {
				return nil, nil, &PathNotDisclosableError{Path: path}
			}
			salt, err := generateSalt()
			if err != nil {
				return nil, nil, err
			}
			disc, err := NewArrayElementDisclosure(salt, p[idx])
			if err != nil {
				return nil, nil, err
			}
			digest := disc.Digest(b.hasher)
			p[idx] = map[string]any{"...": digest}

			discs = append(discs, disc)

		default:
			return nil, nil, &PathNotDisclosableError{Path: path}
		}
	}

	return working, discs, nil
}

// Issue builds a concealed claims object via Conceal, signs it with the
// given header and Signer, and returns the resulting token together with
// the disclosures it embeds.
func (b *Builder) Issue(ctx context.Context, claims map[string]any, paths []string, header map[string]any, signer Signer, opts IssueOptions) (*Token, []*Disclosure, error) {
	concealed, discs, err := b.Conceal(claims, paths, opts)
	if err != nil {
		return nil, nil, err
	}

	hasherName := opts.HasherName
	if hasherName == "" {
		hasherName = b.hasher.Name()
	}
	concealed["_sd_alg"] = hasherName

	jws, err := signCompact(ctx, header, concealed, signer)
	if err != nil {
		return nil, nil, err
	}

	return &Token{jws: jws, disclosures: discs}, discs, nil
}

func pathDepth(path string) int {
	segments, err := splitPointer(path)
	if err != nil {
		return 0
	}
	return len(segments)
}

// deepCopyObject clones a JSON object tree via marshal/unmarshal so the
// caller's claims are never mutated by Conceal.
func deepCopyObject(obj map[string]any) (map[string]any, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
