package config

import "fmt"

// MinSecretLength is the minimum accepted length for signing secrets.
const MinSecretLength = 16

var knownWeakSecrets = []string{
	"your-secret-key-change-this-in-production",
	"secret",
	"changeme",
}

// JWTKey returns the HMAC key used to sign session tokens.
func (c Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// CookieKey returns the key used to sign cookies.
func (c Config) CookieKey() []byte {
	return []byte(c.CookieSecret)
}

func checkSecret(name, value string) error {
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known default value and must not be used", name)
		}
	}
	if len(value) < MinSecretLength {
		return fmt.Errorf("%s must be at least %d bytes long, got %d bytes", name, MinSecretLength, len(value))
	}
	return nil
}
