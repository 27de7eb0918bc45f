package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Identity struct {
	Username string
}

// Authenticator verifies login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
}

// StaticAuthenticator accepts a single configured account whose password is
// stored as a bcrypt hash.
type StaticAuthenticator struct {
	username     string
	passwordHash []byte
}

func NewStaticAuthenticator(username, passwordHash string) *StaticAuthenticator {
	return &StaticAuthenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, username, password string) (*Identity, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// always pay for the hash so a wrong username is not faster
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{Username: a.username}, nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
