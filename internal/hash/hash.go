// AngelaMos | 2026
// hash.go

package hash

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/config"
)

var (
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrUnknownEncoding   = errors.New("unrecognized hash encoding")
	ErrUnsupportedScheme = errors.New("unsupported hash algorithm")
)

// Hasher turns a plaintext credential into a self-describing encoded hash
// and checks a plaintext against one it produced.
type Hasher interface {
	GenerateHash(ctx context.Context, plaintext string) (string, error)
	Verify(plaintext, encoded string) (bool, error)
}

func New(cfg config.HashConfig) (Hasher, error) {
	switch cfg.Algorithm {
	case config.HashArgon2id:
		return NewArgon2(Argon2Params{
			Time:       cfg.ArgonTime,
			Memory:     cfg.ArgonMemory,
			Threads:    cfg.ArgonThreads,
			KeyLen:     cfg.ArgonKeyLen,
			SaltLength: cfg.SaltLength,
		}), nil
	case config.HashBcrypt:
		return NewBcrypt(cfg.BcryptCost)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, cfg.Algorithm)
	}
}

// Verify checks plaintext against an encoded hash produced by any provider
// in this package, picking the scheme from the encoding prefix.
func Verify(plaintext, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		return verifyArgon2(plaintext, encoded)
	case isBcryptEncoding(encoded):
		return verifyBcrypt(plaintext, encoded)
	default:
		return false, ErrUnknownEncoding
	}
}
