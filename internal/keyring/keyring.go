// Package keyring keeps the PostgreSQL connection string in the OS keyring,
// so it never has to appear in the config file or on the command line.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/maestro/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one keyring entry.
type Credentials struct {
	Service string
	User    string
}

// Default is the entry the CLI reads its database connection from.
func Default() Credentials {
	return Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get returns the stored connection string, or ErrNotFound.
func (c Credentials) Get() (string, error) {
	connStr, err := keyring.Get(c.Service, c.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores connStr, replacing any previous value.
func (c Credentials) Set(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the entry, or returns ErrNotFound when there is none.
func (c Credentials) Delete() error {
	err := keyring.Delete(c.Service, c.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Stored reports whether the entry currently holds a value.
func (c Credentials) Stored() (bool, error) {
	_, err := c.Get()
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetConnectionString reads the default entry.
func GetConnectionString() (string, error) {
	return Default().Get()
}

// SetConnectionString writes the default entry.
func SetConnectionString(connStr string) error {
	return Default().Set(connStr)
}

// DeleteConnectionString removes the default entry.
func DeleteConnectionString() error {
	return Default().Delete()
}

// IsAvailable checks if the OS keyring is available on the current system.
// A lookup that merely finds nothing still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
