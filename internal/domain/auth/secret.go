package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSecret picks the signing secret at startup: an explicit value wins,
// then the contents of secretFile, otherwise a new random secret is written
// to secretFile so tokens survive restarts.
func ResolveSecret(explicit, secretFile string) (string, bool, error) {
	if value := strings.TrimSpace(explicit); value != "" {
		return value, false, nil
	}
	if secretFile == "" {
		return "", false, fmt.Errorf("jwt secret: no secret or secret file configured")
	}

	if raw, err := os.ReadFile(secretFile); err == nil {
		if value := strings.TrimSpace(string(raw)); value != "" {
			return value, false, nil
		}
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("jwt secret: read %s: %w", secretFile, err)
	}

	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", false, fmt.Errorf("jwt secret: generate: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(secretFile), 0o755); err != nil {
		return "", false, fmt.Errorf("jwt secret: %w", err)
	}
	if err := os.WriteFile(secretFile, []byte(secret), 0o600); err != nil {
		return "", false, fmt.Errorf("jwt secret: write %s: %w", secretFile, err)
	}
	return secret, true, nil
}
