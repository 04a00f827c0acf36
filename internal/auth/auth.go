// Package auth handles bearer credentials for the ORACLE Alpha API.
package auth

import (
	"fmt"
	"os"
	"strings"
)

// EnvToken is the environment variable consulted by FromEnv.
const EnvToken = "ORACLE_API_TOKEN"

// Credential holds a bearer token. The zero value is an empty credential,
// which is valid for the public endpoints.
type Credential struct {
	token string
}

// FromToken wraps a raw token string.
func FromToken(token string) Credential {
	return Credential{token: strings.TrimSpace(token)}
}

// FromEnv reads the token from ORACLE_API_TOKEN.
func FromEnv() Credential {
	return FromToken(os.Getenv(EnvToken))
}

// FromFile reads the token from the first line of a file.
func FromFile(path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, fmt.Errorf("read token file: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	cred := FromToken(line)
	if cred.Empty() {
		return Credential{}, fmt.Errorf("token file %s is empty", path)
	}
	return cred, nil
}

// Resolve picks a credential by precedence: explicit token, token file,
// then the ORACLE_API_TOKEN environment variable. An empty result is not
// an error; the API serves unauthenticated callers on public endpoints.
func Resolve(token, tokenFile string) (Credential, error) {
	if token != "" {
		return FromToken(token), nil
	}
	if tokenFile != "" {
		return FromFile(tokenFile)
	}
	return FromEnv(), nil
}

// Empty reports whether the credential carries no token.
func (c Credential) Empty() bool {
	return c.token == ""
}

// HeaderValue returns the Authorization header value, or "" when empty.
func (c Credential) HeaderValue() string {
	if c.token == "" {
		return ""
	}
	return "Bearer " + c.token
}

// Redacted returns a log-safe form of the token.
func (c Credential) Redacted() string {
	switch {
	case c.token == "":
		return "(none)"
	case len(c.token) <= 8:
		return "****"
	default:
		return c.token[:4] + "..." + c.token[len(c.token)-4:]
	}
}
