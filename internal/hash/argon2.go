// AngelaMos | 2026
// argon2.go

package hash

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

type Argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLen     uint32
	SaltLength int
}

type Argon2 struct {
	params Argon2Params
}

func NewArgon2(params Argon2Params) *Argon2 {
	return &Argon2{params: params}
}

// GenerateHash returns the PHC-style encoding
// $argon2id$v=19$m=...,t=...,p=...$salt$hash.
func (a *Argon2) GenerateHash(
	ctx context.Context,
	plaintext string,
) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("generate hash: %w", err)
	}

	salt := make([]byte, a.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		a.params.Time,
		a.params.Memory,
		a.params.Threads,
		a.params.KeyLen,
	)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func (a *Argon2) Verify(plaintext, encoded string) (bool, error) {
	return verifyArgon2(plaintext, encoded)
}

// NeedsRehash reports whether encoded was produced with parameters other
// than the ones this provider is configured with.
func (a *Argon2) NeedsRehash(encoded string) bool {
	params, _, _, err := decodeArgon2(encoded)
	if err != nil {
		return true
	}

	return params.Memory != a.params.Memory ||
		params.Time != a.params.Time ||
		params.Threads != a.params.Threads ||
		params.KeyLen != a.params.KeyLen
}

func verifyArgon2(plaintext, encoded string) (bool, error) {
	params, salt, key, err := decodeArgon2(encoded)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Time,
		params.Memory,
		params.Threads,
		params.KeyLen,
	)

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeArgon2(encoded string) (*Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("invalid hash format: %w", ErrUnknownEncoding)
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}

	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &Argon2Params{}
	_, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.Memory,
		&params.Time,
		&params.Threads,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: key length is always small (32 bytes for Argon2id)
	params.KeyLen = uint32(len(key))
	params.SaltLength = len(salt)

	return params, salt, key, nil
}
