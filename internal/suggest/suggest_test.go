package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habithero/internal/keyring"
	"github.com/julianstephens/habithero/internal/models"
)

type fakeChat struct {
	reply string
	err   error
	got   openai.ChatCompletionRequest
	calls int
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

const reply = `Here are some ideas:

Habit: Morning stretch
Benefit: Loosens up your body before reading.

Habit: **Evening journal**
Benefit: Reflect on what you read.

Habit: Drink water
Benefit:`

func TestParse(t *testing.T) {
	got := Parse(reply)
	want := []models.Suggestion{
		{Title: "Morning stretch", Benefit: "Loosens up your body before reading."},
		{Title: "Evening journal", Benefit: "Reflect on what you read."},
		{Title: "Drink water", Benefit: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, Parse("Sorry, I can't help with that."))
	assert.Empty(t, Parse("Habit:\nHabit:   \n"))
}

func TestSuggest(t *testing.T) {
	chat := &fakeChat{reply: reply}
	s := New(chat, "", 0.6)

	habits := []models.Habit{{Title: "Read"}, {Title: "Run"}}
	got, err := s.Suggest(context.Background(), habits)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	assert.Equal(t, "gpt-4o-mini", chat.got.Model)
	assert.InDelta(t, 0.6, chat.got.Temperature, 0.0001)
	require.Len(t, chat.got.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, chat.got.Messages[0].Role)
	assert.Contains(t, chat.got.Messages[0].Content, "I've added these habits: Read, Run.")
	assert.Contains(t, chat.got.Messages[0].Content, "Suggest 3 new daily habits")
}

func TestSuggestRequiresHabits(t *testing.T) {
	chat := &fakeChat{reply: reply}
	_, err := New(chat, "gpt-4o", 0.6).Suggest(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoHabits)
	assert.Zero(t, chat.calls)
}

func TestSuggestPropagatesAPIErrors(t *testing.T) {
	boom := errors.New("rate limited")
	_, err := New(&fakeChat{err: boom}, "gpt-4o", 0.6).Suggest(context.Background(), []models.Habit{{Title: "Read"}})
	assert.ErrorIs(t, err, boom)
}

func TestAsInput(t *testing.T) {
	in := AsInput(models.Suggestion{Title: "Morning stretch", Benefit: "x"})
	assert.Equal(t, models.HabitInput{Title: "Morning stretch", Icon: "🌟", XPReward: "5"}, in)
	assert.Equal(t, 5, models.ParseXPReward(in.XPReward))
}

func TestAPIKey(t *testing.T) {
	gokeyring.MockInit()

	t.Setenv("OPENAI_API_KEY", "")
	_, err := APIKey()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	require.NoError(t, keyring.SetOpenAIKey("sk-from-keyring"))
	key, err := APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-keyring", key)

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	key, err = APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", key)
}
