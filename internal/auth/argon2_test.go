package auth

import (
	"strings"
	"testing"
)

func TestHashSecret(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("super-secret-value")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want PHC argon2id prefix", hash)
	}

	// Same input must produce a different hash (random salt).
	hash2, err := HashSecret("super-secret-value")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same secret are identical, salt is not random")
	}
}

func TestVerifySecret(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("correct-secret")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}

	tests := []struct {
		name   string
		secret string
		want   bool
	}{
		{name: "correct secret", secret: "correct-secret", want: true},
		{name: "wrong secret", secret: "wrong-secret", want: false},
		{name: "empty secret", secret: "", want: false},
		{name: "case sensitive", secret: "Correct-Secret", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := VerifySecret(tt.secret, hash)
			if err != nil {
				t.Fatalf("VerifySecret() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifySecret() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not PHC", hash: "plainhash"},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "truncated", hash: "$argon2id$v=19$m=65536"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := VerifySecret("anything", tt.hash); err == nil {
				t.Errorf("VerifySecret() with hash %q expected error, got nil", tt.hash)
			}
		})
	}
}
