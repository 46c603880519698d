package providers

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// APIKeyEnv supplies the default credential at startup.
	APIKeyEnv = "GROQ_API_KEY"

	MinAPIKeyLength = 32

	credentialService = "quickvibe"
	credentialUser    = "groq"
)

var apiKeyPattern = regexp.MustCompile(`^gsk_[a-zA-Z0-9_-]+$`)

var ErrCredentialNotFound = errors.New("credential not found")

var (
	keyringGet = keyring.Get
	lookupEnv  = os.LookupEnv
)

// CredentialSource names where a resolved credential came from.
type CredentialSource string

const (
	SourceNone     CredentialSource = ""
	SourceExplicit CredentialSource = "flag"
	SourceEnv      CredentialSource = "env"
	SourceKeyring  CredentialSource = "keyring"
)

// ValidateAPIKey checks a credential's shape before any network use. The
// reason is empty when the key is valid.
func ValidateAPIKey(apiKey string) (bool, string) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return false, "API key is required"
	}
	if len(apiKey) < MinAPIKeyLength {
		return false, fmt.Sprintf("API key too short (minimum %d characters)", MinAPIKeyLength)
	}
	if !apiKeyPattern.MatchString(apiKey) {
		return false, "Invalid API key format (should start with 'gsk_')"
	}
	return true, ""
}

func ValidateCredential(apiKey string) error {
	if ok, reason := ValidateAPIKey(apiKey); !ok {
		return errors.New(reason)
	}
	return nil
}

// ResolveCredential picks the first non-empty credential from an explicit
// value, the environment, then the OS keyring. The keyring is only read.
func ResolveCredential(explicit string) (string, CredentialSource, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, SourceExplicit, nil
	}
	if key, ok := lookupEnv(APIKeyEnv); ok && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceEnv, nil
	}
	if key, err := keyringGet(credentialService, credentialUser); err == nil {
		if key = strings.TrimSpace(key); key != "" {
			return key, SourceKeyring, nil
		}
	}
	return "", SourceNone, ErrCredentialNotFound
}

// MaskCredential keeps the prefix and last four characters.
func MaskCredential(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", len(apiKey)-8) + apiKey[len(apiKey)-4:]
}
