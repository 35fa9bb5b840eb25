package security

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestPasswordHasher_HashAndVerify ensures that hashing and verification work correctly.
func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()
	ctx := context.Background()
	password := "mySecretPassword123"

	digest, err := hasher.Hash(ctx, password)
	if err != nil {
		t.Fatalf("Hash() returned an unexpected error: %v", err)
	}
	if digest == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	ok, err := hasher.Verify(ctx, password, digest)
	if err != nil || !ok {
		t.Errorf("Verify() should have returned true for a matching password, got %v (%v)", ok, err)
	}

	ok, err = hasher.Verify(ctx, "notMyPassword", digest)
	if err != nil || ok {
		t.Errorf("Verify() should have returned false for a non-matching password, got %v (%v)", ok, err)
	}
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	hasher := NewPasswordHasher()
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "pw1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	second, err := hasher.Hash(ctx, "pw1")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if first == second {
		t.Errorf("two hashes of the same password must differ, got %q twice", first)
	}
	if !strings.HasPrefix(first, "$2a$10$") {
		t.Errorf("expected bcrypt cost 10 digest, got %q", first)
	}
}

func TestPasswordHasher_EmptyDigestNeverMatches(t *testing.T) {
	ok, err := NewPasswordHasher().Verify(context.Background(), "", "")
	if err != nil || ok {
		t.Errorf("empty digest must not match, got %v (%v)", ok, err)
	}
}

func TestPasswordHasher_TooLong(t *testing.T) {
	_, err := NewPasswordHasher().Hash(context.Background(), strings.Repeat("a", MaxPasswordBytes+1))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestPasswordHasher_CancelledContext(t *testing.T) {
	hasher := NewPasswordHasher()
	// Occupy every slot so Hash has to wait.
	if !hasher.sem.TryAcquire(1) {
		t.Fatal("could not take a hashing slot")
	}
	for hasher.sem.TryAcquire(1) {
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := hasher.Hash(ctx, "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
