package security

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSessionSecret creates a random 32-byte secret for session signing.
func GenerateSessionSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ResolveSecret turns the configured secret into key bytes. Hex values are
// decoded, anything else is used as raw bytes, and an empty value yields a
// fresh random key (generated reports that case).
func ResolveSecret(configured string) (key []byte, generated bool, err error) {
	if configured != "" {
		if key, err := hex.DecodeString(configured); err == nil {
			return key, false, nil
		}
		return []byte(configured), false, nil
	}

	secret, err := GenerateSessionSecret()
	if err != nil {
		return nil, false, err
	}
	key, _ = hex.DecodeString(secret)
	return key, true, nil
}
