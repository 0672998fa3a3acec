package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/suggest"
)

type SuggestCmd struct {
	Add    int    `help:"Add the Nth suggestion as a new habit." default:"0"`
	SetKey string `name:"set-key" placeholder:"KEY" help:"Store an OpenAI API key in the OS keyring and exit."`
}

func (c *SuggestCmd) Run(ctx *Context) error {
	if c.SetKey != "" {
		if err := keyring.SetOpenAIKey(strings.TrimSpace(c.SetKey)); err != nil {
			return fmt.Errorf("failed to store API key in keyring: %w", err)
		}
		fmt.Println("✓ OpenAI API key stored in OS keyring")
		return nil
	}
	if c.Add < 0 || c.Add > constants.SuggestionCount {
		return fmt.Errorf("--add must be between 1 and %d", constants.SuggestionCount)
	}

	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	habits, err := ctx.Habits.List(owner)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		return suggest.ErrNoHabits
	}

	s := ctx.Suggester
	if s == nil {
		s, err = suggest.NewOpenAI(ctx.Config.OpenAI.Model, ctx.Config.OpenAI.Temperature)
		if err != nil {
			return err
		}
	}

	callCtx, cancel := context.WithTimeout(context.Background(), constants.SuggestionCallTimeout)
	defer cancel()

	fmt.Println("Asking for suggestions...")
	suggestions, err := s.Suggest(callCtx, habits)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("No suggestions returned. Try again in a moment.")
		return nil
	}

	fmt.Println()
	for i, sg := range suggestions {
		fmt.Printf("%d. %s %s\n", i+1, constants.SuggestionIcon, sg.Title)
		if sg.Benefit != "" {
			fmt.Printf("   %s\n", sg.Benefit)
		}
	}

	if c.Add == 0 {
		fmt.Println("\nAdd one with 'habithero suggest --add <n>'.")
		return nil
	}
	if c.Add > len(suggestions) {
		return fmt.Errorf("only %d suggestion(s) returned, cannot add #%d", len(suggestions), c.Add)
	}

	habit, err := ctx.Habits.Add(owner, suggest.AsInput(suggestions[c.Add-1]))
	if err != nil {
		return err
	}
	fmt.Printf("\n✓ Added habit: %s (+%d XP per completion)\n", displayTitle(habit.Icon, habit.Title), habit.XPReward)
	return nil
}
