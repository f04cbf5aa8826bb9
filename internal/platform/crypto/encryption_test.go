package crypto

import (
	"errors"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected configured service")
	}

	enc, err := svc.EncryptString("1234567890")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if string(enc) == "1234567890" {
		t.Fatal("expected ciphertext to differ from plaintext")
	}
	plain, err := svc.DecryptString(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "1234567890" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err != ErrKeyLength {
		t.Fatalf("expected ErrKeyLength, got %v", err)
	}
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	enc, err := svc.EncryptString("abc")
	if err != nil || string(enc) != "abc" {
		t.Fatalf("expected passthrough, got %q %v", enc, err)
	}
}

func TestBlindIndex(t *testing.T) {
	keyed, _ := New(testKey)
	plain, _ := New("")

	if keyed.BlindIndex("123") != keyed.BlindIndex(" 123 ") {
		t.Fatal("expected whitespace-insensitive index")
	}
	if keyed.BlindIndex("123") == keyed.BlindIndex("124") {
		t.Fatal("expected distinct digests")
	}
	if keyed.BlindIndex("123") == plain.BlindIndex("123") {
		t.Fatal("expected keyed digest to differ from unkeyed digest")
	}
	var nilSvc *Service
	if nilSvc.BlindIndex("123") != plain.BlindIndex("123") {
		t.Fatal("expected nil service to behave as unconfigured")
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	svc, _ := New(testKey)
	sealed, err := svc.Seal([]byte("1234567890"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Open(sealed); err == nil {
		t.Fatal("expected authentication failure")
	}
	if _, err := svc.Open([]byte{1, 2}); err != ErrCiphertextTooShort {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestNewAcceptsHexKey(t *testing.T) {
	svc, err := New("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	if err != nil || !svc.Configured() {
		t.Fatalf("expected hex key to configure the service: %v", err)
	}
}

func TestNewKeepsBase64LookalikePassphrase(t *testing.T) {
	// testKey is also valid base64 for 24 bytes; it must still be used raw.
	svc, err := New(testKey)
	if err != nil || !svc.Configured() {
		t.Fatalf("expected passphrase key to configure the service: %v", err)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestSealFailsWithoutEntropy(t *testing.T) {
	svc, err := NewWithEntropy(testKey, brokenReader{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := svc.EncryptString("1234567890"); err == nil {
		t.Fatal("expected seal to fail when the nonce cannot be read")
	}
}
