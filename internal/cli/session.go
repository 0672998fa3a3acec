package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habithero/internal/identity"
)

type LoginCmd struct {
	UserID string `arg:"" optional:"" help:"User id to sign in as."`
	Guest  bool   `help:"Continue as a new anonymous guest."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	var (
		userID string
		err    error
	)
	switch {
	case c.Guest && c.UserID != "":
		return errors.New("pass either a user id or --guest, not both")
	case c.Guest:
		userID, err = ctx.Identity.LoginGuest()
	case c.UserID == "":
		return errors.New("user id is required (or pass --guest)")
	default:
		userID, err = ctx.Identity.Login(c.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Printf("✓ Signed in as %s\n", userID)
	if identity.IsGuest(userID) {
		fmt.Println("  Guest habits stay with this id. Note it down to sign in again later.")
	}
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Identity.Logout(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	fmt.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	if identity.IsGuest(owner) {
		fmt.Printf("%s (guest)\n", owner)
		return nil
	}
	fmt.Println(owner)
	return nil
}
