package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

func argon2idHash(password string) string {
	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte(password), salt, 3, 64*1024, 2, 32)
	return fmt.Sprintf("$argon2id$v=19$m=65536,t=3,p=2$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("HashPassword() = %q, want bcrypt cost 10", hash)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("p", MaxPasswordBytes)); err != nil {
		t.Fatalf("HashPassword() at limit error = %v", err)
	}
	if _, err := HashPassword(strings.Repeat("p", MaxPasswordBytes+1)); !errors.Is(err, bcrypt.ErrPasswordTooLong) {
		t.Errorf("HashPassword() error = %v, want ErrPasswordTooLong", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	bcryptHash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
		wantErr  error
	}{
		{name: "bcrypt match", password: "hunter2", stored: bcryptHash, want: true},
		{name: "bcrypt mismatch", password: "wrong", stored: bcryptHash, want: false},
		{name: "argon2id match", password: "hunter2", stored: argon2idHash("hunter2"), want: true},
		{name: "argon2id mismatch", password: "wrong", stored: argon2idHash("hunter2"), want: false},
		{name: "plaintext never matches", password: "hunter2", stored: "hunter2", want: false, wantErr: ErrUnsupportedHash},
		{name: "empty stored value", password: "", stored: "", want: false, wantErr: ErrUnsupportedHash},
		{name: "argon2id empty digest", password: "anything", stored: "$argon2id$v=19$m=65536,t=3,p=2$MDEyMzQ1Njc4OWFiY2RlZg$", want: false, wantErr: ErrUnsupportedHash},
		{name: "argon2id zero threads", password: "hunter2", stored: strings.Replace(argon2idHash("hunter2"), "p=2", "p=0", 1), want: false, wantErr: ErrUnsupportedHash},
		{name: "truncated argon2id", password: "hunter2", stored: "$argon2id$v=19$m=65536", want: false, wantErr: ErrUnsupportedHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.stored)
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("VerifyPassword() unexpected error = %v", err)
			}
		})
	}
}
