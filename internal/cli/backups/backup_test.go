package backups

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habithero/internal/backup"
	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/habits"
	"github.com/julianstephens/habithero/internal/identity"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage"
	"github.com/julianstephens/habithero/internal/storage/docstore"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
)

const owner = "user-1"

func newContext(store storage.Provider) *cli.Context {
	return &cli.Context{
		Store:    store,
		Habits:   habits.NewService(store, nil, time.UTC),
		Identity: identity.NewProvider(identity.KeyringSessions(), owner),
		Config:   &config.Config{Timezone: "UTC"},
	}
}

func setupStore(t *testing.T) (*cli.Context, *sqlite.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habithero.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return newContext(store), store, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, dbPath := setupStore(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list with no backups failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, store, dbPath := setupStore(t)

	if _, err := ctx.Habits.Add(owner, models.HabitInput{Title: "Read"}); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	backupPath, err := backup.NewManager(dbPath).CreateBackup()
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if _, err := ctx.Habits.Add(owner, models.HabitInput{Title: "Run"}); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	// Declining leaves the database untouched
	ctx.In = strings.NewReader("n\n")
	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(backupPath)}).Run(ctx); err != nil {
		t.Fatalf("declined restore failed: %v", err)
	}
	if list, _ := ctx.Habits.List(owner); len(list) != 2 {
		t.Fatalf("declined restore changed the data: %d habits", len(list))
	}

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(backupPath), Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if err := store.Load(); err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	list, err := ctx.Habits.List(owner)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Read" {
		t.Errorf("restored habits = %+v, want only Read", list)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _, _ := setupStore(t)

	err := (&BackupRestoreCmd{BackupFile: "habithero-missing.db", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not found error, got %v", err)
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	store := docstore.New(docstore.Options{InMemory: true})
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	ctx := newContext(store)
	if err := (&BackupCreateCmd{}).Run(ctx); err != errNotSQLite {
		t.Errorf("create on a document store = %v, want errNotSQLite", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != errNotSQLite {
		t.Errorf("list on a document store = %v, want errNotSQLite", err)
	}
}
