// internal/dialog/dispatcher_test.go
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "kiosk-dialog/internal/common/errors"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/datasource"
	"kiosk-dialog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// ==========================
// Test Helper Functions
// ==========================

var testToday = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

// fixedChooser always picks idx, clamped to the last option.
type fixedChooser struct{ idx int }

func (c fixedChooser) IntN(n int) int {
	if c.idx >= n {
		return n - 1
	}
	return c.idx
}

// spySchedule counts lookups and serves values for any day.
type spySchedule struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	calls  int
}

func (s *spySchedule) Slot(_ context.Context, _ string, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", datasource.ErrNotFound, key)
	}
	return v, nil
}

type spyDirectory struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	keys   []string
}

func (s *spyDirectory) Phone(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", datasource.ErrNotFound, key)
	}
	return v, nil
}

type panickingDirectory struct{}

func (panickingDirectory) Phone(context.Context, string) (string, error) {
	panic("sheet missing")
}

func testMenu() *spySchedule {
	return &spySchedule{values: map[string]string{
		"time_breakfast":     "каша",
		"time_dinner":        "суп",
		"time_afternoon_tea": "кефир",
		"time_supper":        "омлет",
	}}
}

func testEvents() *spySchedule {
	values := make(map[string]string)
	for i := 1; i <= 12; i++ {
		values[fmt.Sprintf("group_%d", i)] = fmt.Sprintf("занятие %d", i)
	}
	return &spySchedule{values: values}
}

func testDirectory() *spyDirectory {
	return &spyDirectory{values: map[string]string{
		"accounting":        "Бухгалтерия: 101",
		"manager":           "Заведующая: 102",
		"manager_chores":    "Завхоз: 103",
		"manager_education": "Методист: 104",
		"medical_office":    "Медкабинет: 105",
		"HR":                "Отдел кадров: 106",
	}}
}

func testSources() datasource.Sources {
	return datasource.Sources{
		Directory: testDirectory(),
		Menu:      testMenu(),
		Events:    testEvents(),
	}
}

func createTestConfig() *Config {
	return &Config{
		ConfidenceThreshold: 0.5,
		Location:            time.UTC,
		ExposeDiagnostics:   true,
		Seed:                42,
	}
}

func createTestDispatcher(t *testing.T, sources datasource.Sources, opts ...Option) *Dispatcher {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testToday })}, opts...)
	d, err := NewDispatcher(createTestConfig(), sources, logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	return d
}

func intent(name string, confidence float64) models.Intent {
	return models.Intent{Name: name, Confidence: confidence}
}

func ents(categories ...string) []models.Entity {
	out := make([]models.Entity, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.Entity{Entity: c, Value: c})
	}
	return out
}

func isGreeting(reply string) bool {
	for _, g := range GreetingPhrases {
		for _, f := range GreetingFollowUps {
			if reply == g+" "+f {
				return true
			}
		}
	}
	return false
}

// ==========================
// Confidence Gate Tests
// ==========================

func TestDispatcher_LowConfidenceAlwaysDefault(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	tests := []struct {
		name     string
		intent   models.Intent
		entities []models.Entity
	}{
		{name: "registered greeting", intent: intent("twin_greeting", 0.3)},
		{name: "way with location", intent: intent("twin_way", 0.1), entities: ents("gym")},
		{name: "phone with category", intent: intent("ask_phone", 0.49), entities: ents("HR")},
		{name: "unregistered name", intent: intent("ask_weather", 0.2)},
		{name: "confidence equal to threshold", intent: intent("twin_goodbye", 0.5)},
		{name: "missing confidence", intent: models.Intent{Name: "twin_thanks"}},
		{name: "repeat request", intent: intent("twin_repeat", 0.4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				res, _ := d.Process(context.Background(), Memory{}, tt.intent, tt.entities)
				assert.Contains(t, DefaultPhrases, res.Reply)
				assert.Equal(t, RuleDefault, res.Rule)
				assert.Equal(t, StatusFallback, res.Status)
			}
		})
	}
}

func TestDispatcher_NotImplemented(t *testing.T) {
	log, logs := logger.NewObserved(zapcore.DebugLevel)
	d, err := NewDispatcher(createTestConfig(), testSources(), log)
	require.NoError(t, err)

	res, _ := d.Process(context.Background(), Memory{}, intent("ask_weather", 0.9), nil)

	assert.Equal(t, "Intent: ask_weather, confidence: 0.9", res.Reply)
	assert.Equal(t, RuleNotImplemented, res.Rule)
	assert.Equal(t, StatusNotImplemented, res.Status)

	warnings := logs.FilterMessage("no rule registered for intent").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, "ask_weather", warnings[0].ContextMap()["intent"])
}

func TestDispatcher_NotImplemented_HiddenDiagnostics(t *testing.T) {
	cfg := createTestConfig()
	cfg.ExposeDiagnostics = false
	d, err := NewDispatcher(cfg, testSources(), logger.NewNoOpLogger())
	require.NoError(t, err)

	res, _ := d.Process(context.Background(), Memory{}, intent("ask_weather", 0.9), nil)

	assert.Equal(t, notImplementedApology, res.Reply)
	assert.Equal(t, StatusNotImplemented, res.Status)
}

func TestDispatcher_NameMatchingIsCaseInsensitive(t *testing.T) {
	d := createTestDispatcher(t, testSources(), WithChooser(fixedChooser{0}))

	res, _ := d.Process(context.Background(), Memory{}, intent("TWIN_Goodbye", 0.9), nil)

	assert.Equal(t, "Всего доброго", res.Reply)
	assert.Equal(t, RuleGoodbye, res.Rule)
}

func TestDispatcher_MissingNameIsDefault(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	res, mem := d.Process(context.Background(), Memory{}, models.Intent{Confidence: 0.95}, nil)

	assert.Contains(t, DefaultPhrases, res.Reply)
	assert.Equal(t, RuleDefault, res.Rule)
	require.NotNil(t, mem.Last)
	assert.Equal(t, models.DefaultIntentName, mem.Last.Intent.Name)
}

// ==========================
// Phrase Rule Tests
// ==========================

func TestDispatcher_PhraseRules(t *testing.T) {
	tests := []struct {
		name    string
		intent  string
		chooser Chooser
		want    string
		rule    RuleKind
	}{
		{name: "greeting first options", intent: "twin_greeting", chooser: fixedChooser{0}, want: "Добрый день! Какой у вас вопрос?", rule: RuleGreeting},
		{name: "greeting with empty follow-up", intent: "twin_greeting", chooser: fixedChooser{2}, want: "Приветствую вас! ", rule: RuleGreeting},
		{name: "goodbye", intent: "twin_goodbye", chooser: fixedChooser{1}, want: "До свидания", rule: RuleGoodbye},
		{name: "thanks", intent: "twin_thanks", chooser: fixedChooser{0}, want: "Пожалуйста!", rule: RuleThanks},
		{name: "default intent above threshold", intent: "default", chooser: fixedChooser{1}, want: "Что что? Повторите еще раз", rule: RuleDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := createTestDispatcher(t, testSources(), WithChooser(tt.chooser))

			res, _ := d.Process(context.Background(), Memory{}, intent(tt.intent, 0.9), nil)

			assert.Equal(t, tt.want, res.Reply)
			assert.Equal(t, tt.rule, res.Rule)
		})
	}
}

func TestDispatcher_GreetingShape(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	for i := 0; i < 50; i++ {
		res, _ := d.Process(context.Background(), Memory{}, intent("twin_greeting", 0.8), nil)
		assert.True(t, isGreeting(res.Reply), "unexpected greeting %q", res.Reply)
		assert.Equal(t, StatusAnswered, res.Status)
	}
}

// ==========================
// Way-finding Tests
// ==========================

func TestDispatcher_Way(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	pool := Directions[0].Sentence
	gym := Directions[9].Sentence
	require.Equal(t, "swimming_pool", Directions[0].Category)
	require.Equal(t, "gym", Directions[9].Category)

	t.Run("table order regardless of entity order", func(t *testing.T) {
		res, _ := d.Process(context.Background(), Memory{}, intent("twin_way", 0.9), ents("gym", "swimming_pool"))

		assert.Equal(t, pool+". "+gym, res.Reply)
		assert.Equal(t, StatusAnswered, res.Status)
	})

	t.Run("duplicate entities contribute once", func(t *testing.T) {
		res, _ := d.Process(context.Background(), Memory{}, intent("twin_way", 0.9), ents("gym", "gym", "time"))

		assert.Equal(t, gym, res.Reply)
	})

	t.Run("no location falls back to default", func(t *testing.T) {
		res, _ := d.Process(context.Background(), Memory{}, intent("twin_way", 0.9), ents("time", "accountant"))

		assert.Contains(t, DefaultPhrases, res.Reply)
		assert.Equal(t, RuleWay, res.Rule)
		assert.Equal(t, StatusFallback, res.Status)
	})

	t.Run("every category", func(t *testing.T) {
		all := make([]string, 0, len(Directions))
		for i := len(Directions) - 1; i >= 0; i-- {
			all = append(all, Directions[i].Category)
		}

		res, _ := d.Process(context.Background(), Memory{}, intent("twin_way", 0.9), ents(all...))

		parts := strings.Split(res.Reply, ". ")
		require.Len(t, parts, 22)
		for i, dir := range Directions {
			assert.Equal(t, dir.Sentence, parts[i])
		}
	})
}

func TestDirections_Table(t *testing.T) {
	require.Len(t, Directions, 22)
	seen := make(map[string]bool)
	for _, dir := range Directions {
		assert.False(t, seen[dir.Category], "duplicate category %s", dir.Category)
		seen[dir.Category] = true
		assert.Equal(t, strings.TrimSpace(dir.Sentence), dir.Sentence)
	}
}

// ==========================
// Phone Lookup Tests
// ==========================

func TestDispatcher_Phone(t *testing.T) {
	t.Run("two categories in table order", func(t *testing.T) {
		dir := testDirectory()
		d := createTestDispatcher(t, datasource.Sources{Directory: dir, Menu: testMenu(), Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_phone", 0.9), ents("HR", "accounting"))

		assert.Equal(t, "Бухгалтерия: 101. Отдел кадров: 106", res.Reply)
		assert.Equal(t, StatusAnswered, res.Status)
		assert.Equal(t, []string{"accounting", "HR"}, dir.keys, "only present categories are queried")
	})

	t.Run("no category falls back to default", func(t *testing.T) {
		dir := testDirectory()
		d := createTestDispatcher(t, datasource.Sources{Directory: dir, Menu: testMenu(), Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_phone", 0.9), ents("gym"))

		assert.Contains(t, DefaultPhrases, res.Reply)
		assert.Equal(t, StatusFallback, res.Status)
		assert.Empty(t, dir.keys)
	})

	t.Run("absent key is data unavailable", func(t *testing.T) {
		dir := &spyDirectory{values: map[string]string{"accounting": "101"}}
		d := createTestDispatcher(t, datasource.Sources{Directory: dir, Menu: testMenu(), Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_phone", 0.9), ents("accounting", "manager_chores"))

		assert.Equal(t, StatusDataUnavailable, res.Status)
		assert.Equal(t, dataUnavailableReply, res.Reply)
		stdErr, ok := apperrors.AsStandardError(res.Err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeDataKeyMissing, stdErr.Code)
	})

	t.Run("source failure is data unavailable", func(t *testing.T) {
		dir := &spyDirectory{err: errors.New("connection refused")}
		d := createTestDispatcher(t, datasource.Sources{Directory: dir, Menu: testMenu(), Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_phone", 0.9), ents("HR"))

		assert.Equal(t, StatusDataUnavailable, res.Status)
		assert.NotEmpty(t, res.Reply)
		stdErr, ok := apperrors.AsStandardError(res.Err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeDataUnavailable, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})

	t.Run("panic inside source is contained", func(t *testing.T) {
		d := createTestDispatcher(t, datasource.Sources{Directory: panickingDirectory{}, Menu: testMenu(), Events: testEvents()})

		var res Result
		assert.NotPanics(t, func() {
			res, _ = d.Process(context.Background(), Memory{}, intent("ask_phone", 0.9), ents("HR"))
		})
		assert.Equal(t, StatusDataUnavailable, res.Status)
		assert.ErrorIs(t, res.Err, ErrRulePanicked)
	})
}

// ==========================
// Schedule Tests
// ==========================

func TestDispatcher_Schedule(t *testing.T) {
	timeEntity := func(value string) models.Entity {
		return models.Entity{Entity: TimeEntity, Value: value}
	}

	tests := []struct {
		name       string
		intent     string
		entities   []models.Entity
		want       string
		wantStatus Status
		wantCalls  int
	}{
		{
			name:       "menu today, all slots",
			intent:     "ask_menu",
			want:       "Меню на 2024-05-01: каша, суп, кефир, омлет",
			wantStatus: StatusAnswered,
			wantCalls:  4,
		},
		{
			name:       "menu today via time entity",
			intent:     "ask_menu",
			entities:   []models.Entity{timeEntity("2024-05-01T00:00:00.000+00:00")},
			want:       "Меню на 2024-05-01: каша, суп, кефир, омлет",
			wantStatus: StatusAnswered,
			wantCalls:  4,
		},
		{
			name:       "menu requested slots in table order",
			intent:     "ask_menu",
			entities:   ents("time_supper", "time_breakfast"),
			want:       "Меню на 2024-05-01: каша, омлет",
			wantStatus: StatusAnswered,
			wantCalls:  2,
		},
		{
			name:       "menu for another date is not queried",
			intent:     "ask_menu",
			entities:   []models.Entity{timeEntity("2024-05-02T09:00:00.000+03:00"), {Entity: "time_dinner"}},
			want:       "На 2024-05-02 меню не запланировано",
			wantStatus: StatusAnswered,
			wantCalls:  0,
		},
		{
			name:       "time without date part means today",
			intent:     "ask_menu",
			entities:   []models.Entity{timeEntity("T10:00"), {Entity: "time_breakfast"}},
			want:       "Меню на 2024-05-01: каша",
			wantStatus: StatusAnswered,
			wantCalls:  1,
		},
		{
			name:       "date without time part",
			intent:     "ask_menu",
			entities:   []models.Entity{timeEntity("2023-12-31")},
			want:       "На 2023-12-31 меню не запланировано",
			wantStatus: StatusAnswered,
			wantCalls:  0,
		},
		{
			name:       "event plan requested groups",
			intent:     "ask_event_plan",
			entities:   ents("group_10", "group_2"),
			want:       "План мероприятий на 2024-05-01: занятие 2, занятие 10",
			wantStatus: StatusAnswered,
			wantCalls:  2,
		},
		{
			name:       "event plan for another date",
			intent:     "ask_event_plan",
			entities:   []models.Entity{timeEntity("2024-06-01T10:00:00")},
			want:       "На 2024-06-01 мероприятий не запланировано",
			wantStatus: StatusAnswered,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu, events := testMenu(), testEvents()
			d := createTestDispatcher(t, datasource.Sources{Directory: testDirectory(), Menu: menu, Events: events})

			res, _ := d.Process(context.Background(), Memory{}, intent(tt.intent, 0.9), tt.entities)

			assert.Equal(t, tt.want, res.Reply)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantCalls, menu.calls+events.calls)
		})
	}
}

func TestDispatcher_Schedule_AllEventGroups(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	res, _ := d.Process(context.Background(), Memory{}, intent("ask_event_plan", 0.9), nil)

	parts := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		parts = append(parts, fmt.Sprintf("занятие %d", i))
	}
	assert.Equal(t, "План мероприятий на 2024-05-01: "+strings.Join(parts, ", "), res.Reply)
}

func TestDispatcher_Schedule_MissingSlots(t *testing.T) {
	t.Run("whole day skips absent slots", func(t *testing.T) {
		menu := &spySchedule{values: map[string]string{"time_dinner": "суп"}}
		d := createTestDispatcher(t, datasource.Sources{Directory: testDirectory(), Menu: menu, Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_menu", 0.9), nil)

		assert.Equal(t, "Меню на 2024-05-01: суп", res.Reply)
		assert.Equal(t, StatusAnswered, res.Status)
	})

	t.Run("whole day with nothing stored", func(t *testing.T) {
		menu := &spySchedule{values: map[string]string{}}
		d := createTestDispatcher(t, datasource.Sources{Directory: testDirectory(), Menu: menu, Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_menu", 0.9), nil)

		assert.Equal(t, "На 2024-05-01 меню не запланировано", res.Reply)
	})

	t.Run("requested absent slot fails the turn", func(t *testing.T) {
		menu := &spySchedule{values: map[string]string{"time_dinner": "суп"}}
		d := createTestDispatcher(t, datasource.Sources{Directory: testDirectory(), Menu: menu, Events: testEvents()})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_menu", 0.9), ents("time_supper"))

		assert.Equal(t, StatusDataUnavailable, res.Status)
		stdErr, ok := apperrors.AsStandardError(res.Err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeDataKeyMissing, stdErr.Code)
	})

	t.Run("source failure fails the turn", func(t *testing.T) {
		events := &spySchedule{err: errors.New("timeout")}
		d := createTestDispatcher(t, datasource.Sources{Directory: testDirectory(), Menu: testMenu(), Events: events})

		res, _ := d.Process(context.Background(), Memory{}, intent("ask_event_plan", 0.9), nil)

		assert.Equal(t, StatusDataUnavailable, res.Status)
		assert.Equal(t, RuleEventPlan, res.Rule)
		assert.Equal(t, 1, events.calls)
	})
}

func TestDispatcher_Schedule_UsesConfiguredLocation(t *testing.T) {
	// 23:30 UTC on April 30 is already May 1 in Moscow.
	loc := time.FixedZone("MSK", 3*60*60)
	cfg := createTestConfig()
	cfg.Location = loc
	d, err := NewDispatcher(cfg, testSources(), logger.NewNoOpLogger(),
		WithClock(func() time.Time { return time.Date(2024, 4, 30, 23, 30, 0, 0, time.UTC) }))
	require.NoError(t, err)

	res, _ := d.Process(context.Background(), Memory{}, intent("ask_menu", 0.9), ents("time_breakfast"))

	assert.Equal(t, "Меню на 2024-05-01: каша", res.Reply)
}

// ==========================
// Memory and Repeat Tests
// ==========================

func TestDispatcher_MemoryIsOverwrittenEveryTurn(t *testing.T) {
	d := createTestDispatcher(t, testSources())
	ctx := context.Background()

	tests := []struct {
		name   string
		intent models.Intent
	}{
		{name: "answered", intent: intent("twin_goodbye", 0.9)},
		{name: "low confidence fallback", intent: intent("twin_way", 0.1)},
		{name: "not implemented", intent: intent("ask_weather", 0.9)},
	}

	mem := Memory{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := ents("gym")
			_, mem = d.Process(ctx, mem, tt.intent, entities)

			require.NotNil(t, mem.Last)
			assert.Equal(t, tt.intent, mem.Last.Intent)
			assert.Equal(t, entities, mem.Last.Entities)
		})
	}
}

func TestDispatcher_Repeat(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat after greeting replays the greeting rule", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())

		first, mem := d.Process(ctx, Memory{}, intent("twin_greeting", 0.9), nil)
		require.True(t, isGreeting(first.Reply))

		res, next := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)

		assert.True(t, isGreeting(res.Reply), "unexpected reply %q", res.Reply)
		assert.Equal(t, RuleGreeting, res.Rule)
		assert.True(t, res.Repeated)
		require.NotNil(t, next.Last)
		assert.Equal(t, "twin_greeting", next.Last.Intent.Name)
	})

	t.Run("repeat twice terminates and reproduces the first answer", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())

		first, mem := d.Process(ctx, Memory{}, intent("twin_way", 0.9), ents("laundry"))
		second, mem := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)
		third, mem := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)

		assert.Equal(t, first.Reply, second.Reply)
		assert.Equal(t, first.Reply, third.Reply)
		assert.Equal(t, RuleWay, third.Rule)
		assert.Equal(t, "twin_way", mem.Last.Intent.Name)
	})

	t.Run("repeat on the first turn answers with default", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())

		res, mem := d.Process(ctx, Memory{}, intent("twin_repeat", 0.9), nil)

		assert.Contains(t, DefaultPhrases, res.Reply)
		assert.Equal(t, RuleRepeat, res.Rule)
		assert.Equal(t, StatusFallback, res.Status)
		assert.True(t, mem.IsEmpty())
	})

	t.Run("remembered repeat request answers with default", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())
		mem := Remember(models.Turn{Intent: intent("twin_repeat", 0.9)})

		res, next := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)

		assert.Contains(t, DefaultPhrases, res.Reply)
		assert.Equal(t, StatusFallback, res.Status)
		assert.Equal(t, mem, next)
	})

	t.Run("repeat of a low confidence turn stays default", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())

		_, mem := d.Process(ctx, Memory{}, intent("twin_greeting", 0.2), nil)
		res, _ := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)

		assert.Contains(t, DefaultPhrases, res.Reply)
		assert.Equal(t, RuleDefault, res.Rule)
		assert.True(t, res.Repeated)
	})

	t.Run("repeat of a not implemented turn repeats the diagnostic", func(t *testing.T) {
		d := createTestDispatcher(t, testSources())

		first, mem := d.Process(ctx, Memory{}, intent("ask_weather", 0.7), nil)
		res, _ := d.Process(ctx, mem, intent("twin_repeat", 0.9), nil)

		assert.Equal(t, first.Reply, res.Reply)
		assert.Equal(t, StatusNotImplemented, res.Status)
	})
}

func TestRemember_CopiesEntities(t *testing.T) {
	entities := ents("gym")
	mem := Remember(models.Turn{Intent: intent("twin_way", 0.9), Entities: entities})

	entities[0].Entity = "laundry"

	assert.Equal(t, "gym", mem.Last.Entities[0].Entity)
}

// ==========================
// Construction Tests
// ==========================

func TestNewDispatcher_Aliases(t *testing.T) {
	cfg := createTestConfig()
	cfg.IntentAliases = map[string]string{"Hello": "greeting", "where_is": "way"}
	d, err := NewDispatcher(cfg, testSources(), logger.NewNoOpLogger(), WithChooser(fixedChooser{0}))
	require.NoError(t, err)

	res, _ := d.Process(context.Background(), Memory{}, intent("hello", 0.9), nil)
	assert.Equal(t, RuleGreeting, res.Rule)

	res, _ = d.Process(context.Background(), Memory{}, intent("where_is", 0.9), ents("swimming_pool"))
	assert.Equal(t, "Пройдите прямо", res.Reply)
}

func TestNewDispatcher_Errors(t *testing.T) {
	t.Run("unknown alias rule", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.IntentAliases = map[string]string{"hello": "wave"}
		_, err := NewDispatcher(cfg, testSources(), logger.NewNoOpLogger())
		assert.Error(t, err)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := NewDispatcher(createTestConfig(), datasource.Sources{Directory: testDirectory()}, logger.NewNoOpLogger())
		assert.Error(t, err)
	})
}

func TestParseRuleKind(t *testing.T) {
	for kind, name := range ruleNames {
		got, err := ParseRuleKind(strings.ToUpper(name))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
		assert.Equal(t, name, kind.String())
	}
	assert.Equal(t, "rule(99)", RuleKind(99).String())
}

// ==========================
// Concurrency Tests
// ==========================

func TestDispatcher_ConcurrentSessions(t *testing.T) {
	d := createTestDispatcher(t, testSources())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mem := Memory{}
			var res Result
			_, mem = d.Process(context.Background(), mem, intent("twin_greeting", 0.9), nil)
			res, _ = d.Process(context.Background(), mem, intent("twin_repeat", 0.9), nil)
			assert.True(t, isGreeting(res.Reply))
		}()
	}
	wg.Wait()
}
