package credential

import "sdjwtengine/pkg/sdjwt"

// Credential is the shared surface both W3C VC data model versions expose
// once shaped from a VCClaims remainder.
type Credential interface {
	Contexts() []string
	Types() []string
	Subject() any
}

// stringSlice reads the `@context`/`type` claims shared by both VC
// versions, tolerating either a bare string or an array of strings.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// validateBaseStructure enforces the structural checks common to both VC
// versions: a `@context` array whose first entry is the applicable base
// context, a `type` array naming "VerifiableCredential", and a non-empty
// credentialSubject.
func validateBaseStructure(remainder map[string]any, baseContext string, contexts, types []string, subject any) error {
	if len(contexts) == 0 || contexts[0] != baseContext {
		got := ""
		if len(contexts) > 0 {
			got = contexts[0]
		}
		return &sdjwt.MissingBaseContextError{Expected: baseContext, Found: got}
	}
	if !contains(types, "VerifiableCredential") {
		return &sdjwt.MissingBaseTypeError{}
	}
	if subject == nil {
		return &sdjwt.MissingClaimError{Name: "credentialSubject"}
	}
	if m, ok := subject.(map[string]any); ok && len(m) == 0 {
		return &sdjwt.MissingClaimError{Name: "credentialSubject"}
	}
	return nil
}
