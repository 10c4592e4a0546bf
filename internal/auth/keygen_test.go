package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		env        string
		wantPrefix string
	}{
		{name: "live key", env: EnvLive, wantPrefix: "vt_live_"},
		{name: "test key", env: EnvTest, wantPrefix: "vt_test_"},
		{name: "unknown env defaults to live", env: "staging", wantPrefix: "vt_live_"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, err := GenerateAPIKey(tt.env)
			if err != nil {
				t.Fatalf("GenerateAPIKey() error = %v", err)
			}

			if !strings.HasPrefix(key.Plaintext, tt.wantPrefix) {
				t.Errorf("Plaintext = %q, want prefix %q", key.Plaintext, tt.wantPrefix)
			}
			if !strings.Contains(key.Plaintext, key.Prefix) {
				t.Errorf("Plaintext %q does not contain Prefix %q", key.Plaintext, key.Prefix)
			}
			if len(key.Prefix) != KeyPrefixLen {
				t.Errorf("Prefix length = %d, want %d", len(key.Prefix), KeyPrefixLen)
			}
			if !strings.HasPrefix(key.Hash, "$argon2id$") {
				t.Errorf("Hash = %q, want argon2id PHC format", key.Hash)
			}
			if !ValidateKeyFormat(key.Plaintext) {
				t.Errorf("generated key %q fails format validation", key.Plaintext)
			}
		})
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	t.Parallel()

	a, err := GenerateAPIKey(EnvLive)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	b, err := GenerateAPIKey(EnvLive)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if a.Plaintext == b.Plaintext {
		t.Error("two generated keys are identical")
	}
}

func TestParseAPIKey(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey(EnvTest)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	parsed, err := ParseAPIKey(key.Plaintext)
	if err != nil {
		t.Fatalf("ParseAPIKey() error = %v", err)
	}
	if parsed.Env != EnvTest {
		t.Errorf("ParseAPIKey() env = %q, want %q", parsed.Env, EnvTest)
	}
	if parsed.Prefix != key.Prefix {
		t.Errorf("ParseAPIKey() prefix = %q, want %q", parsed.Prefix, key.Prefix)
	}
	if len(parsed.Secret) != KeySecretLen {
		t.Errorf("ParseAPIKey() secret length = %d, want %d", len(parsed.Secret), KeySecretLen)
	}
}

func TestParseAPIKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "wrong scheme", key: "pk_live_abc123_0123456789abcdef0123456789abcdef"},
		{name: "missing secret", key: "vt_live_abc123"},
		{name: "uppercase hex", key: "vt_live_ABC123_0123456789ABCDEF0123456789ABCDEF"},
		{name: "unknown env", key: "vt_prod_abc123_0123456789abcdef0123456789abcdef"},
		{name: "garbage", key: "not-a-key"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseAPIKey(tt.key); err == nil {
				t.Errorf("ParseAPIKey(%q) expected error, got nil", tt.key)
			}
			if ValidateKeyFormat(tt.key) {
				t.Errorf("ValidateKeyFormat(%q) = true, want false", tt.key)
			}
		})
	}
}

func TestVerifyGeneratedKey(t *testing.T) {
	t.Parallel()

	key, err := GenerateAPIKey(EnvLive)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}

	ok, err := VerifySecret(key.Plaintext, key.Hash)
	if err != nil {
		t.Fatalf("VerifySecret() error = %v", err)
	}
	if !ok {
		t.Error("VerifySecret() = false for the key's own hash")
	}

	ok, err = VerifySecret(key.Plaintext+"x", key.Hash)
	if err != nil {
		t.Fatalf("VerifySecret() error = %v", err)
	}
	if ok {
		t.Error("VerifySecret() = true for a tampered key")
	}
}
