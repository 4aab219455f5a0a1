// Package encryption implements the AES-128-CFB8 stream cipher applied to
// the raw connection bytes once the login sequence enables encryption.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/Tnze/go-mc/net/CFB8"
)

// SecretLen is the shared secret length: the AES-128 key and initial
// register are both the secret.
const SecretLen = 16

var ErrSecretLength = errors.New("encryption: shared secret must be 16 bytes")

// Cipher transforms byte buffers in place. Encrypt and Decrypt keep
// independent state, one per traffic direction.
type Cipher interface {
	Encrypt(b []byte)
	Decrypt(b []byte)
}

// StreamFunc builds one CFB8 direction from a block cipher and initial register.
type StreamFunc func(block cipher.Block, iv []byte) cipher.Stream

// Strategy selects a CFB8 implementation. It is chosen once by whoever
// constructs the connection.
type Strategy struct {
	Name      string
	Encrypter StreamFunc
	Decrypter StreamFunc
}

var (
	// Portable is the built-in byte-at-a-time implementation.
	Portable = Strategy{
		Name: "portable",
		Encrypter: func(b cipher.Block, iv []byte) cipher.Stream {
			return newCFB8(b, iv, false)
		},
		Decrypter: func(b cipher.Block, iv []byte) cipher.Stream {
			return newCFB8(b, iv, true)
		},
	}

	// GoMC uses the CFB8 streams from github.com/Tnze/go-mc.
	GoMC = Strategy{
		Name: "go-mc",
		Encrypter: func(b cipher.Block, iv []byte) cipher.Stream {
			return CFB8.NewCFB8Encrypt(b, iv)
		},
		Decrypter: func(b cipher.Block, iv []byte) cipher.Stream {
			return CFB8.NewCFB8Decrypt(b, iv)
		},
	}
)

// New returns a Cipher keyed with the shared secret, used as both AES key
// and initial register.
func (s Strategy) New(secret []byte) (Cipher, error) {
	if len(secret) != SecretLen {
		return nil, ErrSecretLength
	}
	return s.NewWithIV(secret, secret)
}

// NewWithIV returns a Cipher with an explicit initial register.
func (s Strategy) NewWithIV(key, iv []byte) (Cipher, error) {
	if len(key) != SecretLen || len(iv) != aes.BlockSize {
		return nil, ErrSecretLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encryption: %w", err)
	}
	// each direction gets its own register copy
	encIV := append([]byte(nil), iv...)
	decIV := append([]byte(nil), iv...)
	return &streamPair{
		enc: s.Encrypter(block, encIV),
		dec: s.Decrypter(block, decIV),
	}, nil
}

type streamPair struct {
	enc, dec cipher.Stream
}

func (p *streamPair) Encrypt(b []byte) { p.enc.XORKeyStream(b, b) }
func (p *streamPair) Decrypt(b []byte) { p.dec.XORKeyStream(b, b) }

// GenerateSharedSecret returns a random 16-byte secret.
func GenerateSharedSecret() ([]byte, error) {
	secret := make([]byte, SecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("encryption: generate shared secret: %w", err)
	}
	return secret, nil
}
