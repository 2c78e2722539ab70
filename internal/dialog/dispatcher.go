// internal/dialog/dispatcher.go

// Package dialog selects a reply for an interpreted utterance.
//
// A Dispatcher routes each turn through a confidence gate to a response rule.
// It holds no per-session state: the caller passes the previous Memory in and
// stores the Memory returned with the reply.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiosk-dialog/internal/common/config"
	apperrors "kiosk-dialog/internal/common/errors"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/common/metrics"
	"kiosk-dialog/internal/datasource"
	"kiosk-dialog/internal/dialog/entityquery"
	"kiosk-dialog/internal/models"
)

var (
	ErrRulePanicked = errors.New("RULE_PANICKED")
)

// Status tells callers how a reply was produced.
type Status string

const (
	StatusAnswered        Status = "answered"
	StatusFallback        Status = "fallback"
	StatusNotImplemented  Status = "not_implemented"
	StatusDataUnavailable Status = "data_unavailable"
)

// Result is the outcome of one turn. Reply is always set.
type Result struct {
	Reply    string
	Rule     RuleKind
	Status   Status
	Repeated bool  // reply replays the previous turn
	Err      error // set for StatusDataUnavailable
}

type Config struct {
	ConfidenceThreshold float64
	Location            *time.Location
	ExposeDiagnostics   bool
	LookupTimeout       time.Duration
	IntentAliases       map[string]string
	Seed                int64
}

// LoadConfig builds the dispatcher config from the application config.
func LoadConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Dialog.Location()
	if err != nil {
		return nil, fmt.Errorf("dialog timezone: %w", err)
	}
	return &Config{
		ConfidenceThreshold: cfg.Dialog.ConfidenceThreshold,
		Location:            loc,
		ExposeDiagnostics:   cfg.Dialog.ExposeDiagnostics,
		LookupTimeout:       config.GetDuration(cfg.DataSource.Timeout),
		IntentAliases:       cfg.Dialog.IntentAliases,
		Seed:                cfg.Dialog.Seed,
	}, nil
}

type Option func(*Dispatcher)

// WithChooser replaces the random phrase picker.
func WithChooser(c Chooser) Option {
	return func(d *Dispatcher) { d.chooser = &lockedChooser{c: c} }
}

// WithClock replaces the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

type Dispatcher struct {
	config  *Config
	rules   map[string]RuleKind
	sources datasource.Sources
	chooser Chooser
	now     func() time.Time
	logger  logger.Logger
}

func NewDispatcher(cfg *Config, sources datasource.Sources, log logger.Logger, opts ...Option) (*Dispatcher, error) {
	if sources.Directory == nil || sources.Menu == nil || sources.Events == nil {
		return nil, fmt.Errorf("dispatcher requires directory, menu and events sources")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	rules := DefaultRules()
	for intent, ruleName := range cfg.IntentAliases {
		kind, err := ParseRuleKind(ruleName)
		if err != nil {
			return nil, fmt.Errorf("intent alias %q: %w", intent, err)
		}
		rules[strings.ToLower(strings.TrimSpace(intent))] = kind
	}

	d := &Dispatcher{
		config:  cfg,
		rules:   rules,
		sources: sources,
		chooser: &lockedChooser{c: NewChooser(cfg.Seed)},
		now:     time.Now,
		logger: log.With(map[string]interface{}{
			"component": "dispatcher",
		}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Process answers one turn and returns the memory to keep for the next one.
// It never fails: every problem is reported through Result.Status.
func (d *Dispatcher) Process(ctx context.Context, mem Memory, intent models.Intent, entities []models.Entity) (Result, Memory) {
	return d.ProcessTurn(ctx, mem, models.Turn{Intent: intent, Entities: entities})
}

// ProcessTurn is Process for an already assembled turn.
func (d *Dispatcher) ProcessTurn(ctx context.Context, mem Memory, turn models.Turn) (Result, Memory) {
	start := time.Now()
	turn.Intent = turn.Intent.Normalized()

	var (
		res  Result
		next Memory
	)
	if kind := d.resolve(turn.Intent); kind == RuleRepeat {
		res, next = d.repeat(ctx, mem)
	} else {
		res = d.invoke(ctx, kind, turn)
		next = Remember(turn)
	}

	metrics.DialogTurns.WithLabelValues(res.Rule.String(), string(res.Status)).Inc()
	metrics.DialogTurnDuration.WithLabelValues(res.Rule.String()).Observe(time.Since(start).Seconds())

	d.logger.Debug("turn dispatched", map[string]interface{}{
		"intent":     turn.Intent.Name,
		"confidence": turn.Intent.Confidence,
		"entities":   len(turn.Entities),
		"rule":       res.Rule.String(),
		"status":     string(res.Status),
		"repeated":   res.Repeated,
	})
	return res, next
}

// resolve applies the confidence gate before the name lookup.
func (d *Dispatcher) resolve(intent models.Intent) RuleKind {
	if intent.Confidence <= d.config.ConfidenceThreshold {
		return RuleDefault
	}
	if kind, ok := d.rules[intent.Key()]; ok {
		return kind
	}
	return RuleNotImplemented
}

// repeat replays the remembered turn once. The remembered turn is kept, so
// consecutive repeats keep reproducing the same answer.
func (d *Dispatcher) repeat(ctx context.Context, mem Memory) (Result, Memory) {
	if mem.IsEmpty() {
		return d.fallback(RuleRepeat), mem
	}

	last := *mem.Last
	kind := d.resolve(last.Intent)
	if kind == RuleRepeat {
		d.logger.Warn("remembered turn is a repeat request", map[string]interface{}{
			"intent": last.Intent.Name,
		})
		return d.fallback(RuleRepeat), mem
	}

	res := d.invoke(ctx, kind, last)
	res.Repeated = true
	return res, mem
}

func (d *Dispatcher) invoke(ctx context.Context, kind RuleKind, turn models.Turn) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %s: %v", ErrRulePanicked, kind, r)
			d.logger.Error("rule panicked", map[string]interface{}{
				"rule":   kind.String(),
				"intent": turn.Intent.Name,
				"error":  err.Error(),
			})
			res = Result{Reply: dataUnavailableReply, Rule: kind, Status: StatusDataUnavailable, Err: err}
		}
	}()

	switch kind {
	case RuleDefault:
		return d.fallback(RuleDefault)
	case RuleGreeting:
		return d.answered(kind, pick(d.chooser, GreetingPhrases)+" "+pick(d.chooser, GreetingFollowUps))
	case RuleGoodbye:
		return d.answered(kind, pick(d.chooser, GoodbyePhrases))
	case RuleThanks:
		return d.answered(kind, pick(d.chooser, ThanksPhrases))
	case RuleWay:
		return d.way(turn.Entities)
	case RulePhone:
		return d.phone(ctx, turn.Entities)
	case RuleMenu:
		return d.schedule(ctx, kind, MenuTable, d.sources.Menu, turn.Entities)
	case RuleEventPlan:
		return d.schedule(ctx, kind, EventPlanTable, d.sources.Events, turn.Entities)
	default:
		return d.notImplemented(turn.Intent)
	}
}

func (d *Dispatcher) way(entities []models.Entity) Result {
	ways := make([]string, 0, len(Directions))
	for _, dir := range Directions {
		if entityquery.Has(entities, dir.Category) {
			ways = append(ways, dir.Sentence)
		}
	}
	if len(ways) == 0 {
		return d.fallback(RuleWay)
	}
	return d.answered(RuleWay, strings.Join(ways, ". "))
}

func (d *Dispatcher) notImplemented(intent models.Intent) Result {
	d.logger.Warn("no rule registered for intent", map[string]interface{}{
		"intent":     intent.Name,
		"confidence": intent.Confidence,
	})

	reply := notImplementedApology
	if d.config.ExposeDiagnostics {
		reply = fmt.Sprintf("Intent: %s, confidence: %v", intent.Name, intent.Confidence)
	}
	return Result{Reply: reply, Rule: RuleNotImplemented, Status: StatusNotImplemented}
}

// Fallback is the default rule's reply for turns that could not be interpreted.
func (d *Dispatcher) Fallback() Result {
	return d.fallback(RuleDefault)
}

// fallback answers with a default phrase on behalf of rule.
func (d *Dispatcher) fallback(rule RuleKind) Result {
	return Result{Reply: pick(d.chooser, DefaultPhrases), Rule: rule, Status: StatusFallback}
}

func (d *Dispatcher) answered(rule RuleKind, reply string) Result {
	return Result{Reply: reply, Rule: rule, Status: StatusAnswered}
}

func (d *Dispatcher) unavailable(rule RuleKind, source, key string, err error) Result {
	var stdErr *apperrors.StandardError
	if errors.Is(err, datasource.ErrNotFound) {
		stdErr = apperrors.NewDataKeyMissingError(source, key)
	} else {
		stdErr = apperrors.NewDataUnavailableError(source, err)
	}

	metrics.DataSourceErrors.WithLabelValues(source).Inc()
	d.logger.Error("data lookup failed", map[string]interface{}{
		"rule":   rule.String(),
		"source": source,
		"key":    key,
		"code":   string(stdErr.Code),
		"error":  err.Error(),
	})
	return Result{Reply: dataUnavailableReply, Rule: rule, Status: StatusDataUnavailable, Err: stdErr}
}

func (d *Dispatcher) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.config.LookupTimeout > 0 {
		return context.WithTimeout(ctx, d.config.LookupTimeout)
	}
	return context.WithCancel(ctx)
}
