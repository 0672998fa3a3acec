package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habithero/internal/config"
	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
	"github.com/julianstephens/habithero/internal/habits"
	"github.com/julianstephens/habithero/internal/identity"
	"github.com/julianstephens/habithero/internal/ledger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/storage/sqlite"
	"github.com/julianstephens/habithero/internal/suggest"
)

const testOwner = "user-1"

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) *Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habithero.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	return &Context{
		Store:    store,
		Habits:   habits.NewService(store, func() time.Time { return testNow }, time.UTC),
		Identity: identity.NewProvider(identity.KeyringSessions(), testOwner),
		Config:   &config.Config{CalendarDays: 7, Timezone: "UTC"},
	}
}

func addHabit(t *testing.T, ctx *Context, title string) models.Habit {
	t.Helper()
	h, err := ctx.Habits.Add(testOwner, models.HabitInput{Title: title})
	require.NoError(t, err)
	return h
}

func TestHabitAddCmd(t *testing.T) {
	ctx := setupTestContext(t)

	cmd := &HabitAddCmd{Title: "Read", Icon: "📚", XP: "12"}
	require.NoError(t, cmd.Run(ctx))

	list, err := ctx.Habits.List(testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Read", list[0].Title)
	assert.Equal(t, "📚", list[0].Icon)
	assert.Equal(t, 12, list[0].XPReward)

	err = (&HabitAddCmd{Title: "Run", XP: "-1"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHabitCommandsRequireIdentity(t *testing.T) {
	gokeyring.MockInit()
	ctx := setupTestContext(t)
	ctx.Identity = identity.NewProvider(identity.KeyringSessions(), "")

	err := (&HabitListCmd{}).Run(ctx)
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestHabitDoneCmd(t *testing.T) {
	ctx := setupTestContext(t)
	h := addHabit(t, ctx, "Meditate")

	require.NoError(t, (&HabitDoneCmd{Habit: "meditate"}).Run(ctx))
	require.NoError(t, (&HabitDoneCmd{Habit: h.ID[:6]}).Run(ctx))

	got, err := ctx.Habits.Get(testOwner, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Completions.Count())
	assert.True(t, got.Completions.IsComplete(datekey.MustParse("2024-03-10")))

	err = (&HabitDoneCmd{Habit: "nope"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHabitEditCmd(t *testing.T) {
	ctx := setupTestContext(t)
	h := addHabit(t, ctx, "Read")

	err := (&HabitEditCmd{Habit: h.ID}).Run(ctx)
	assert.Error(t, err, "an edit without changes should fail")

	require.NoError(t, (&HabitEditCmd{Habit: h.ID, Title: "Read 20 pages", Icon: "📖", XP: 8}).Run(ctx))
	got, err := ctx.Habits.Get(testOwner, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read 20 pages", got.Title)
	assert.Equal(t, "📖", got.Icon)
	assert.Equal(t, 8, got.XPReward)

	require.NoError(t, (&HabitEditCmd{Habit: h.ID, ClearIcon: true}).Run(ctx))
	got, err = ctx.Habits.Get(testOwner, h.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Icon)

	err = (&HabitEditCmd{Habit: h.ID, XP: -4}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx := setupTestContext(t)
	h := addHabit(t, ctx, "Read")

	ctx.In = strings.NewReader("n\n")
	require.NoError(t, (&HabitDeleteCmd{Habit: h.ID}).Run(ctx))
	_, err := ctx.Habits.Get(testOwner, h.ID)
	require.NoError(t, err, "declined delete should keep the habit")

	ctx.In = strings.NewReader("yes\n")
	require.NoError(t, (&HabitDeleteCmd{Habit: h.ID}).Run(ctx))
	_, err = ctx.Habits.Get(testOwner, h.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	h = addHabit(t, ctx, "Run")
	require.NoError(t, (&HabitDeleteCmd{Habit: h.ID, Yes: true}).Run(ctx))
	_, err = ctx.Habits.Get(testOwner, h.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHabitCalendarCmd(t *testing.T) {
	ctx := setupTestContext(t)
	h := addHabit(t, ctx, "Read")
	require.NoError(t, (&HabitDoneCmd{Habit: h.ID}).Run(ctx))

	assert.NoError(t, (&HabitCalendarCmd{Habit: h.ID}).Run(ctx))
	assert.NoError(t, (&HabitCalendarCmd{Habit: h.ID, End: "yesterday", Days: 14}).Run(ctx))
	assert.ErrorIs(t, (&HabitCalendarCmd{Habit: h.ID, Days: 400}).Run(ctx), apperrors.ErrValidation)
}

func TestRenderCalendar(t *testing.T) {
	// 2024-03-06 is a Wednesday
	l := ledger.New(datekey.MustParse("2024-03-06"), datekey.MustParse("2024-03-11"))
	window := l.Window(datekey.MustParse("2024-03-12"), 7)

	want := "           Mo Tu We Th Fr Sa Su\n" +
		"2024-03-04        ■  □  □  □  □\n" +
		"2024-03-11  ■  □\n"
	assert.Equal(t, want, RenderCalendar(window))
	assert.Equal(t, "", RenderCalendar(nil))
}

func TestStatsAndGoalsCmds(t *testing.T) {
	ctx := setupTestContext(t)
	h := addHabit(t, ctx, "Read")
	require.NoError(t, (&HabitDoneCmd{Habit: h.ID}).Run(ctx))

	require.NoError(t, (&StatsCmd{}).Run(ctx))
	require.NoError(t, (&GoalsShowCmd{}).Run(ctx))

	err := (&GoalsSetCmd{Weekly: -1, Monthly: -1, Yearly: -1}).Run(ctx)
	assert.Error(t, err, "goals set without targets should fail")

	require.NoError(t, (&GoalsSetCmd{Weekly: 10, Monthly: -1, Yearly: 500}).Run(ctx))
	require.NoError(t, (&GoalsSetCmd{Weekly: -1, Monthly: 40, Yearly: -1}).Run(ctx))

	targets, err := ctx.Habits.Targets(testOwner)
	require.NoError(t, err)
	assert.Equal(t, 10, targets.Weekly)
	assert.Equal(t, 40, targets.Monthly)
	assert.Equal(t, 500, targets.Yearly)

	goals, err := ctx.Habits.Goals(testOwner)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, 50, goals[0].Percent)

	require.NoError(t, (&GoalsShowCmd{}).Run(ctx))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----------]", ProgressBar(0, 10))
	assert.Equal(t, "[#####-----]", ProgressBar(50, 10))
	assert.Equal(t, "[##########]", ProgressBar(150, 10))
	assert.Equal(t, "[----------]", ProgressBar(-5, 10))
}

func TestPadTitle(t *testing.T) {
	assert.Equal(t, "Read      ", padTitle("Read", 10))
	assert.Equal(t, "A very...", padTitle("A very long habit title", 9))
	assert.Equal(t, "📚 Read   ", padTitle("📚 Read", 10), "wide icons take two cells")
}

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

const suggestionReply = `Here you go:
Habit: Morning stretch
Benefit: Loosens up the body.
Habit: Drink water
Benefit: Keeps you hydrated.
Habit: Evening walk
Benefit: Helps you unwind.`

func TestSuggestCmd(t *testing.T) {
	ctx := setupTestContext(t)
	ctx.Suggester = suggest.New(&fakeChat{reply: suggestionReply}, "gpt-4o-mini", 0.6)

	err := (&SuggestCmd{}).Run(ctx)
	assert.ErrorIs(t, err, suggest.ErrNoHabits)

	addHabit(t, ctx, "Read")
	require.NoError(t, (&SuggestCmd{}).Run(ctx))

	require.NoError(t, (&SuggestCmd{Add: 2}).Run(ctx))
	h, err := ctx.Habits.Resolve(testOwner, "Drink water")
	require.NoError(t, err)
	assert.Equal(t, "🌟", h.Icon)
	assert.Equal(t, 5, h.XPReward)

	assert.Error(t, (&SuggestCmd{Add: 9}).Run(ctx))

	boom := errors.New("rate limited")
	ctx.Suggester = suggest.New(&fakeChat{err: boom}, "gpt-4o-mini", 0.6)
	assert.ErrorIs(t, (&SuggestCmd{}).Run(ctx), boom)
}
