package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	PINStorageBcrypt = "bcrypt"
	PINStoragePlain  = "plain"
)

var ErrPINMismatch = errors.New("pin mismatch")

// PINVerifier turns a PIN into what the users.pin column stores and checks
// a candidate PIN against it. Matching is exact: no trimming or folding.
type PINVerifier interface {
	Digest(pin string) (string, error)
	Verify(pin, stored string) error
}

func NewPINVerifier(mode string) (PINVerifier, error) {
	switch mode {
	case "", PINStorageBcrypt:
		return BcryptPIN{Cost: bcrypt.DefaultCost}, nil
	case PINStoragePlain:
		return PlainPIN{}, nil
	default:
		return nil, fmt.Errorf("unknown pin storage %q", mode)
	}
}

type BcryptPIN struct{ Cost int }

func (b BcryptPIN) Digest(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), b.Cost)
	return string(h), err
}

func (BcryptPIN) Verify(pin, stored string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)); err != nil {
		return ErrPINMismatch
	}
	return nil
}

// PlainPIN stores the PIN as-is, for databases that already hold clear PINs.
type PlainPIN struct{}

func (PlainPIN) Digest(pin string) (string, error) { return pin, nil }

func (PlainPIN) Verify(pin, stored string) error {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(stored)) != 1 {
		return ErrPINMismatch
	}
	return nil
}
