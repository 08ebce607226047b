package sdjwt

// discTrace records where a disclosure ended up in a reconstructed tree,
// and which enclosing disclosure (if any) it was nested under. It backs
// both plain reconstruction and the presentation builder's path index.
type discTrace struct {
	path   string
	parent string // digest of the nearest enclosing disclosure, "" if none
}

// Reconstruct replaces `_sd` digest arrays and array placeholders in
// claims with the matching disclosure values, recursively at any depth
// (C4). It fails closed: digest collisions, claim-name collisions, and
// disclosures that are never consumed are all errors.
func Reconstruct(claims map[string]any, discs []*Disclosure, hasher Hasher) (map[string]any, error) {
	result, _, err := reconstructTracked(claims, discs, hasher)
	return result, err
}

func reconstructTracked(claims map[string]any, discs []*Disclosure, hasher Hasher) (map[string]any, map[string]discTrace, error) {
	digestMap := make(map[string]*Disclosure, len(discs))
	for _, d := range discs {
		digest := d.Digest(hasher)
		if _, exists := digestMap[digest]; exists {
			return nil, nil, &DigestCollisionError{Digest: digest}
		}
		digestMap[digest] = d
	}

	trace := make(map[string]discTrace)
	w := &treeWalker{digestMap: digestMap, consumed: map[string]bool{}, trace: trace}

	result, err := w.walkObject(claims, "", "")
	if err != nil {
		return nil, nil, err
	}

	for digest := range digestMap {
		if !w.consumed[digest] {
			return nil, nil, &UnusedDisclosureError{Digest: digest}
		}
	}

	return result, trace, nil
}

type treeWalker struct {
	digestMap map[string]*Disclosure
	consumed  map[string]bool
	trace     map[string]discTrace
}

func (w *treeWalker) walk(v any, path, parent string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return w.walkObject(t, path, parent)
	case []any:
		return w.walkArray(t, path, parent)
	default:
		return v, nil
	}
}

func (w *treeWalker) walkObject(obj map[string]any, path, parent string) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "_sd" {
			continue
		}
		nv, err := w.walk(v, joinPointer(path, k), parent)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}

	sdRaw, hasSD := obj["_sd"]
	if !hasSD {
		return out, nil
	}
	sdArr, ok := sdRaw.([]any)
	if !ok {
		return nil, &InvalidTokenFormatError{Reason: "_sd is not an array"}
	}

	for _, item := range sdArr {
		digestStr, ok := item.(string)
		if !ok {
			return nil, &InvalidTokenFormatError{Reason: "_sd entry is not a string"}
		}
		disc, found := w.digestMap[digestStr]
		if !found {
			continue // concealed: no matching disclosure presented
		}
		if w.consumed[digestStr] {
			return nil, &DigestCollisionError{Digest: digestStr}
		}
		name, hasName := disc.Name()
		if !hasName {
			return nil, &InvalidDisclosureError{Reason: "digest in _sd matches an array-element disclosure"}
		}
		if _, exists := out[name]; exists {
			return nil, &ClaimCollisionError{Name: name}
		}
		w.consumed[digestStr] = true

		childPath := joinPointer(path, name)
		w.trace[digestStr] = discTrace{path: childPath, parent: parent}

		rv, err := w.walk(disc.Value(), childPath, digestStr)
		if err != nil {
			return nil, err
		}
		out[name] = rv
	}

	return out, nil
}

func (w *treeWalker) walkArray(arr []any, path, parent string) ([]any, error) {
	out := make([]any, 0, len(arr))
	idx := 0
	for _, elem := range arr {
		if m, ok := elem.(map[string]any); ok && len(m) == 1 {
			if digestRaw, ok2 := m["..."]; ok2 {
				digestStr, ok3 := digestRaw.(string)
				if !ok3 {
					return nil, &InvalidTokenFormatError{Reason: "array placeholder digest is not a string"}
				}
				disc, found := w.digestMap[digestStr]
				if !found {
					continue // concealed element, dropped
				}
				if w.consumed[digestStr] {
					return nil, &DigestCollisionError{Digest: digestStr}
				}
				if _, hasName := disc.Name(); hasName {
					return nil, &InvalidDisclosureError{Reason: "digest in array placeholder matches a property disclosure"}
				}
				w.consumed[digestStr] = true

				childPath := joinPointerIndex(path, idx)
				w.trace[digestStr] = discTrace{path: childPath, parent: parent}

				rv, err := w.walk(disc.Value(), childPath, digestStr)
				if err != nil {
					return nil, err
				}
				out = append(out, rv)
				idx++
				continue
			}
		}

		nv, err := w.walk(elem, joinPointerIndex(path, idx), parent)
		if err != nil {
			return nil, err
		}
		out = append(out, nv)
		idx++
	}
	return out, nil
}
