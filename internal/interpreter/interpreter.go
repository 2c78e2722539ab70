// internal/interpreter/interpreter.go

// Package interpreter turns raw utterances into intents and entities by
// calling an external NLU service.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiosk-dialog/internal/common/config"
	apperrors "kiosk-dialog/internal/common/errors"
	commonhttp "kiosk-dialog/internal/common/http"
	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/common/validation"
	"kiosk-dialog/internal/models"
)

// Interpreter parses one utterance.
type Interpreter interface {
	Parse(ctx context.Context, text string) (models.Turn, error)
}

type Config struct {
	BaseURL    string
	ParsePath  string
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig(cfg config.InterpreterConfig) *Config {
	return &Config{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		ParsePath:  cfg.ParsePath,
		Timeout:    config.GetDuration(cfg.Timeout),
		MaxRetries: cfg.MaxRetries,
	}
}

// HTTPInterpreter talks to a Rasa-compatible /model/parse endpoint.
type HTTPInterpreter struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewHTTPInterpreter(cfg *Config, log logger.Logger) *HTTPInterpreter {
	return &HTTPInterpreter{
		config: cfg,
		client: commonhttp.NewClient(cfg.Timeout, cfg.MaxRetries),
		logger: log.With(map[string]interface{}{
			"component": "interpreter",
		}),
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Text   string `json:"text"`
	Intent *struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"intent"`
	Entities []struct {
		Entity     string          `json:"entity"`
		Value      json.RawMessage `json:"value"`
		Start      int             `json:"start"`
		End        int             `json:"end"`
		Confidence float64         `json:"confidence_entity"`
		Extractor  string          `json:"extractor"`
	} `json:"entities"`
}

func (h *HTTPInterpreter) Parse(ctx context.Context, text string) (models.Turn, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	body, _ := json.Marshal(parseRequest{Text: text})
	data, err := h.client.PostJSON(ctx, h.config.BaseURL+h.config.ParsePath, body)
	if err != nil {
		if errors.Is(err, commonhttp.ErrRequestTimeout) {
			return models.Turn{}, apperrors.NewInterpreterTimeoutError()
		}
		return models.Turn{}, apperrors.NewInterpreterFailedError(err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Turn{}, apperrors.NewInvalidInterpretationError(fmt.Sprintf("decode: %v", err))
	}
	if result := validation.ValidateInput(doc, ResponseSchema()); !result.Valid {
		return models.Turn{}, apperrors.NewInvalidInterpretationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var resp parseResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.Turn{}, apperrors.NewInvalidInterpretationError(fmt.Sprintf("decode: %v", err))
	}

	turn := toTurn(text, &resp)
	h.logger.Info("utterance interpreted", map[string]interface{}{
		"intent":      turn.Intent.Name,
		"confidence":  turn.Intent.Confidence,
		"entityCount": len(turn.Entities),
	})
	return turn, nil
}

func toTurn(text string, resp *parseResponse) models.Turn {
	turn := models.Turn{
		Text:     text,
		Entities: make([]models.Entity, 0, len(resp.Entities)),
	}
	if resp.Intent != nil {
		turn.Intent = models.Intent{Name: resp.Intent.Name, Confidence: resp.Intent.Confidence}
	}
	turn.Intent = turn.Intent.Normalized()

	for _, e := range resp.Entities {
		turn.Entities = append(turn.Entities, models.Entity{
			Entity:     e.Entity,
			Value:      entityValue(e.Value),
			Start:      e.Start,
			End:        e.End,
			Confidence: e.Confidence,
			Extractor:  e.Extractor,
		})
	}
	return turn
}

// entityValue flattens an entity value to text. Strings are unquoted, other
// JSON values are kept verbatim.
func entityValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
