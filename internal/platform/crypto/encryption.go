package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

var (
	ErrKeyLength          = errors.New("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Service seals sensitive columns (national IDs, MFA secrets) with
// AES-256-GCM. A nil or keyless Service passes values through unchanged so
// development databases stay readable.
type Service struct {
	aead     cipher.AEAD
	indexKey []byte
	entropy  io.Reader
}

func New(key string) (*Service, error) {
	return NewWithEntropy(key, rand.Reader)
}

// NewWithEntropy is New with an explicit nonce source.
func NewWithEntropy(key string, entropy io.Reader) (*Service, error) {
	if key == "" {
		return &Service{}, nil
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	raw := decodeKey(key)
	if len(raw) != 32 {
		return nil, ErrKeyLength
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(append([]byte("blind-index:"), raw...))
	return &Service{aead: aead, indexKey: sum[:], entropy: entropy}, nil
}

func (s *Service) Configured() bool {
	return s != nil && s.aead != nil
}

// BlindIndex returns a deterministic digest of value usable for equality
// lookups and unique indexes over encrypted columns. Surrounding whitespace
// is ignored. Without a key the digest is a plain SHA-256.
func (s *Service) BlindIndex(value string) string {
	normalized := []byte(strings.TrimSpace(value))
	if !s.Configured() {
		sum := sha256.Sum256(normalized)
		return hex.EncodeToString(sum[:])
	}
	mac := hmac.New(sha256.New, s.indexKey)
	mac.Write(normalized)
	return hex.EncodeToString(mac.Sum(nil))
}

// Seal returns nonce||ciphertext.
func (s *Service) Seal(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !s.Configured() {
		return plain, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := io.ReadFull(s.entropy, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Service) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	if !s.Configured() {
		return sealed, nil
	}
	size := s.aead.NonceSize()
	if len(sealed) < size {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, sealed[:size], sealed[size:], nil)
}

func (s *Service) EncryptString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	return s.Seal([]byte(value))
}

func (s *Service) DecryptString(value []byte) (string, error) {
	plain, err := s.Open(value)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// decodeKey accepts hex, padded or raw base64, or the raw bytes. An
// encoding only wins when it yields a 32-byte key, so a 32-character
// passphrase that happens to be valid base64 is used as-is.
func decodeKey(raw string) []byte {
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && len(decoded) == 32 {
			return decoded
		}
	}
	return []byte(raw)
}
