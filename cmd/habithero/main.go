package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/cli/backups"
	"github.com/julianstephens/habithero/internal/cli/system"
	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/constants"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/habits"
	"github.com/julianstephens/habithero/internal/identity"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/storage"
	"github.com/julianstephens/habithero/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config.yaml." type:"path"`
	Store   string `help:"SQLite path, postgres:// URL, badger://<dir>, or 'keyring'. Overrides the config file." env:"HABITHERO_STORE"`
	User    string `help:"Act as this user instead of the signed-in session." env:"HABITHERO_USER"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize habithero storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Login   cli.LoginCmd      `cmd:"" help:"Sign in as a user or guest."`
	Logout  cli.LogoutCmd     `cmd:"" help:"Sign out."`
	Whoami  cli.WhoamiCmd     `cmd:"" help:"Show the signed-in user."`
	Habit   cli.HabitCmd      `cmd:"" help:"Manage and complete habits."`
	Stats   cli.StatsCmd      `cmd:"" help:"Show XP and streak totals."`
	Goals   cli.GoalsCmd      `cmd:"" help:"Show or set XP targets."`
	Suggest cli.SuggestCmd    `cmd:"" help:"Suggest new habits with OpenAI."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit tracker with streaks and XP"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:  cfg.Debug,
		LogDir: filepath.Join(config.Dir(), "logs"),
	}); err != nil {
		apperrors.Fatal(err)
	}
	logger.Debug("Loaded config", "path", cfg.Path(), "store", storage.BackendFor(cfg.Store))

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}

	store, err := storage.New(cfg.Store)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:    store,
		Habits:   habits.NewService(store, nil, loc),
		Identity: identity.NewProvider(identity.KeyringSessions(), CLI.User),
		Config:   cfg,
	}

	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			store.Close()
			apperrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// needsStore reports whether command reads habit data. init creates the
// store itself; session and keyring commands never touch it.
func needsStore(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "init", "keyring", "login", "logout", "whoami":
		return false
	}
	return true
}
