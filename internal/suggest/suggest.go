// Package suggest asks a chat model for new habits that complement the
// ones a user already tracks.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
)

var (
	// ErrNoHabits is returned when there is nothing to base suggestions on
	ErrNoHabits = errors.New("add at least one habit to get personalized suggestions")
	// ErrNoAPIKey is returned when no OpenAI API key is configured
	ErrNoAPIKey = errors.New("no OpenAI API key: set OPENAI_API_KEY or run 'habithero suggest --set-key <key>'")
)

// ChatCompleter is the part of *openai.Client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Suggester struct {
	client      ChatCompleter
	model       string
	temperature float32
}

func New(client ChatCompleter, model string, temperature float32) *Suggester {
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	return &Suggester{client: client, model: model, temperature: temperature}
}

// APIKey returns OPENAI_API_KEY if set, otherwise the key stored in the keyring.
func APIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key, nil
	}
	key, err := keyring.GetOpenAIKey()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoAPIKey
	}
	return key, err
}

// NewOpenAI builds a Suggester backed by the OpenAI API.
func NewOpenAI(model string, temperature float32) (*Suggester, error) {
	key, err := APIKey()
	if err != nil {
		return nil, err
	}
	return New(openai.NewClient(key), model, temperature), nil
}

// Prompt lists the existing habit titles and asks for the reply format
// that Parse understands.
func Prompt(habits []models.Habit) string {
	titles := make([]string, len(habits))
	for i, h := range habits {
		titles[i] = h.Title
	}
	return fmt.Sprintf("I've added these habits: %s. Suggest %d new daily habits that support consistency "+
		"and enhance these existing habits.\nFor each suggestion, give a short title and a one-line benefit. "+
		"Respond in this format:\nHabit: <title>\nBenefit: <one-line reason why it's useful>",
		strings.Join(titles, ", "), constants.SuggestionCount)
}

func (s *Suggester) Suggest(ctx context.Context, habits []models.Habit) ([]models.Suggestion, error) {
	if len(habits) == 0 {
		return nil, ErrNoHabits
	}

	logger.Debug("Requesting habit suggestions", "model", s.model, "habits", len(habits))
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(habits)},
		},
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Error("OpenAI API call failed", "error", err)
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("failed to fetch suggestions: model returned no choices")
	}

	suggestions := Parse(resp.Choices[0].Message.Content)
	logger.Debug("Parsed suggestions", "count", len(suggestions))
	return suggestions, nil
}

// Parse splits a reply on "Habit:" and each chunk on "Benefit:". Text
// before the first "Habit:" and chunks without a title are dropped.
func Parse(text string) []models.Suggestion {
	chunks := strings.Split(text, "Habit:")
	var out []models.Suggestion
	for i, chunk := range chunks {
		if i == 0 {
			continue
		}
		title, benefit, _ := strings.Cut(chunk, "Benefit:")
		title = clean(title)
		if title == "" {
			continue
		}
		out = append(out, models.Suggestion{Title: title, Benefit: clean(benefit)})
	}
	return out
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), "*- \t\r\n")
}

// AsInput turns an accepted suggestion into a new habit form.
func AsInput(s models.Suggestion) models.HabitInput {
	return models.HabitInput{
		Title:    s.Title,
		Icon:     constants.SuggestionIcon,
		XPReward: fmt.Sprint(constants.DefaultXPReward),
	}
}
