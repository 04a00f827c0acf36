package auth

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFromToken checks trimming and emptiness.
func TestFromToken(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		c := FromToken("  abc123  \n")
		if c.HeaderValue() != "Bearer abc123" {
			t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer abc123")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		c := FromToken("")
		if !c.Empty() {
			t.Error("Empty() = false, want true")
		}
		if c.HeaderValue() != "" {
			t.Errorf("HeaderValue() = %q, want empty", c.HeaderValue())
		}
	})
}

// TestFromEnv checks the environment lookup.
func TestFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token-value")

	c := FromEnv()
	if c.HeaderValue() != "Bearer env-token-value" {
		t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer env-token-value")
	}
}

// TestFromFile checks token file loading.
func TestFromFile(t *testing.T) {
	t.Run("first line only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("file-token\nsecond line ignored\n"), 0o600); err != nil {
			t.Fatalf("write token file: %v", err)
		}

		c, err := FromFile(path)
		if err != nil {
			t.Fatalf("FromFile: %v", err)
		}
		if c.HeaderValue() != "Bearer file-token" {
			t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer file-token")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := FromFile(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
			t.Fatalf("write token file: %v", err)
		}
		if _, err := FromFile(path); err == nil {
			t.Error("expected error for empty file")
		}
	})
}

// TestResolve checks credential precedence.
func TestResolve(t *testing.T) {
	t.Setenv(EnvToken, "from-env")

	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	t.Run("explicit wins", func(t *testing.T) {
		c, err := Resolve("explicit", path)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if c.HeaderValue() != "Bearer explicit" {
			t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer explicit")
		}
	})

	t.Run("file beats env", func(t *testing.T) {
		c, err := Resolve("", path)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if c.HeaderValue() != "Bearer from-file" {
			t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer from-file")
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		c, err := Resolve("", "")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if c.HeaderValue() != "Bearer from-env" {
			t.Errorf("HeaderValue() = %q, want %q", c.HeaderValue(), "Bearer from-env")
		}
	})
}

// TestRedacted checks that tokens never appear whole in log form.
func TestRedacted(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "(none)"},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-oracle-abcdef123456", "sk-o...3456"},
	}

	for _, tt := range tests {
		c := FromToken(tt.token)
		if got := c.Redacted(); got != tt.want {
			t.Errorf("Redacted(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
