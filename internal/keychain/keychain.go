// Package keychain stores the bot token in the operating system keychain.
package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "dodobot"
	// TokenAccount is the keychain account holding the bot token.
	TokenAccount = "bot_token"
)

// ErrNotFound is returned when no secret is stored for an account.
var ErrNotFound = errors.New("secret not found in keychain")

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	v, err := keyring.Get(serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("keychain get %s: %w", account, err)
	}
	return v, nil
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	if err := keyring.Set(serviceName, account, value); err != nil {
		return fmt.Errorf("keychain set %s: %w", account, err)
	}
	return nil
}

// Delete removes a secret. Deleting a missing secret is not an error.
func Delete(account string) error {
	err := keyring.Delete(serviceName, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete %s: %w", account, err)
	}
	return nil
}

// Token returns the stored bot token.
func Token() (string, error) {
	return Get(TokenAccount)
}

// SetToken stores the bot token.
func SetToken(token string) error {
	return Set(TokenAccount, token)
}
