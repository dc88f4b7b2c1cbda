package hash

import (
	"github.com/alexedwards/argon2id"

	customErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher produces self-describing password hashes: salt and cost
// parameters are embedded in the encoded string, so Verify needs
// nothing but the hash itself.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) (bool, error)
}

type argonHasher struct {
	pepper string
}

func New(pepper string) Hasher {
	return &argonHasher{pepper: pepper}
}

func (h *argonHasher) Hash(plaintext string) (string, error) {
	encoded, err := argon2id.CreateHash(plaintext+h.pepper, argonParams)
	if err != nil {
		return "", customErrors.WrapInternal(err, "Hash")
	}
	return encoded, nil
}

// Verify is constant-time with respect to the derived keys.
func (h *argonHasher) Verify(plaintext, encoded string) (bool, error) {
	ok, err := argon2id.ComparePasswordAndHash(plaintext+h.pepper, encoded)
	if err != nil {
		return false, customErrors.WrapInternal(err, "Verify")
	}
	return ok, nil
}
