package validator

import (
	"encoding/json"

	"github.com/lestrrat-go/jwx/jwk"
)

// jwkToKey converts a JSON `jwk` cnf member into a public key usable by
// an sdjwt.Verifier: *ecdsa.PublicKey, *rsa.PublicKey, or
// ed25519.PublicKey.
func jwkToKey(jwkMap map[string]any) (any, error) {
	raw, err := json.Marshal(jwkMap)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, err
	}
	var pub any
	if err := key.Raw(&pub); err != nil {
		return nil, err
	}
	return pub, nil
}
