package secrets

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/omnipg/internal/models"
)

const serviceName = "omnipg"

// ErrPasswordNotFound is returned when no password is stored for a connection
var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordStore keeps connection passwords in the OS keyring
type PasswordStore struct {
	service string
}

// NewPasswordStore creates a store using the omnipg keyring service
func NewPasswordStore() *PasswordStore {
	return &PasswordStore{service: serviceName}
}

// Save stores the password of a connection; empty passwords are skipped
func (ps *PasswordStore) Save(conn models.ConnectionConfig, password string) error {
	if password == "" {
		return nil
	}
	err := keyring.Set(ps.service, makeKey(conn), password)
	return errors.Wrap(err, "failed to save password to keyring")
}

// Get retrieves the password of a connection
func (ps *PasswordStore) Get(conn models.ConnectionConfig) (string, error) {
	password, err := keyring.Get(ps.service, makeKey(conn))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrPasswordNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from keyring")
	}
	return password, nil
}

// Delete removes the password of a connection
func (ps *PasswordStore) Delete(conn models.ConnectionConfig) error {
	err := keyring.Delete(ps.service, makeKey(conn))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "failed to delete password from keyring")
	}
	return nil
}

// Resolve fills in a missing password from the keyring. A keyring that
// holds nothing for the connection is not an error.
func (ps *PasswordStore) Resolve(conn models.ConnectionConfig) (models.ConnectionConfig, error) {
	if conn.Password != "" {
		return conn, nil
	}
	password, err := ps.Get(conn)
	if errors.Is(err, ErrPasswordNotFound) {
		return conn, nil
	}
	if err != nil {
		return conn, err
	}
	conn.Password = password
	return conn, nil
}

// makeKey identifies a connection as "host:port:database:user"
func makeKey(conn models.ConnectionConfig) string {
	return fmt.Sprintf("%s:%d:%s:%s", conn.Host, conn.Port, conn.Database, conn.User)
}
