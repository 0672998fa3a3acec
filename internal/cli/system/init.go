package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habithero/internal/cli"
	"github.com/julianstephens/habithero/internal/storage"
	"github.com/julianstephens/habithero/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing store before initialization."`
	Source string `help:"Store path or connection string to copy the signed-in user's habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habithero storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

// reset removes a local store. PostgreSQL databases are never dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); ok {
		return fmt.Errorf("--force is not supported for PostgreSQL stores")
	}

	dsn := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDst, err := filepath.Abs(dsn)
		if err == nil {
			dsn = absDst
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == dsn {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dsn)
		}
	}

	if _, err := os.Stat(dsn); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.RemoveAll(dsn); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		fmt.Printf("Deleted existing store at: %s\n", dsn)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

// copyData copies the acting user's habits and XP targets from source.
func (c *InitCmd) copyData(ctx *cli.Context, source string) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	src, err := storage.New(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	fmt.Println("  Copying habits...")
	habits, err := src.ListHabits(owner)
	if err != nil {
		return fmt.Errorf("failed to list habits from source: %w", err)
	}
	for _, h := range habits {
		if _, err := ctx.Store.CreateHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
	}
	fmt.Printf("    Copied %d habits\n", len(habits))

	fmt.Println("  Copying XP targets...")
	targets, err := src.GetXPTargets(owner)
	if err != nil {
		return fmt.Errorf("failed to get XP targets from source: %w", err)
	}
	if err := ctx.Store.SaveXPTargets(targets); err != nil {
		return fmt.Errorf("failed to save XP targets: %w", err)
	}
	return nil
}
