package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/storage/postgres"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
)

// IsPostgresPath reports whether a storage path selects PostgreSQL: a URL,
// a key=value DSN, or the keyring reference
func IsPostgresPath(path string) bool {
	return config.IsPostgres(path) || keyring.IsReference(path) || strings.Contains(path, "host=")
}

// OpenStore returns the provider selected by storage.path. Connection strings
// written in config files must not carry a password; the keyring may.
func OpenStore(path string) (storage.Provider, error) {
	if keyring.IsReference(path) {
		connStr, err := keyring.ResolveStoragePath(path)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if IsPostgresPath(path) {
		if _, err := postgres.ValidateConnString(path); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store it with 'habitquest keyring set' and set storage.path = \"keyring\", or use .pgpass", err)
			}
			return nil, err
		}
		return postgres.New(path), nil
	}

	return sqlite.NewStore(config.ExpandPath(path)), nil
}
