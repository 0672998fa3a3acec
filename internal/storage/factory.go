package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/storage/docstore"
	"github.com/julianstephens/habithero/internal/storage/postgres"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
)

// Backend names the storage implementation a DSN selects.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendBadger   Backend = "badger"
)

// KeyringDSN selects the PostgreSQL connection string saved with
// 'habithero keyring set'.
const KeyringDSN = "keyring"

// BackendFor classifies a store DSN: postgres:// and postgresql:// URLs
// select PostgreSQL, badger://<dir> selects the document store, and
// anything else is a SQLite file path.
func BackendFor(dsn string) Backend {
	switch {
	case strings.HasPrefix(dsn, constants.PostgresScheme), strings.HasPrefix(dsn, constants.PostgresqlScheme):
		return BackendPostgres
	case strings.HasPrefix(dsn, constants.BadgerScheme):
		return BackendBadger
	default:
		return BackendSQLite
	}
}

// New returns an unopened provider for dsn. Call Init or Load before use.
func New(dsn string) (Provider, error) {
	if dsn == KeyringDSN {
		return fromKeyring()
	}
	switch BackendFor(dsn) {
	case BackendPostgres:
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	case BackendBadger:
		dir := strings.TrimPrefix(dsn, constants.BadgerScheme)
		if dir == "" {
			return nil, fmt.Errorf("badger store needs a directory: %s<dir>", constants.BadgerScheme)
		}
		return docstore.New(docstore.Options{Path: dir}), nil
	default:
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("store path cannot be empty")
		}
		return sqlite.NewStore(dsn), nil
	}
}

// fromKeyring skips the embedded-password check, since the keyring is an
// encrypted credential store.
func fromKeyring() (Provider, error) {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no connection string in keyring, run 'habithero keyring set' first")
		}
		return nil, err
	}
	if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return nil, err
	}
	return postgres.New(connStr), nil
}
