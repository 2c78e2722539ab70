// internal/dialog/tracker/tracker.go

// Package tracker runs one conversation turn end to end: interpret the
// utterance, dispatch it against the session memory, store the new memory
// and hand the reply to the output sink.
package tracker

import (
	"context"
	"fmt"

	"kiosk-dialog/internal/common/logger"
	"kiosk-dialog/internal/dialog"
	"kiosk-dialog/internal/interpreter"
	"kiosk-dialog/internal/models"
	"kiosk-dialog/internal/output"
	"kiosk-dialog/internal/session"
)

type Tracker struct {
	interpreter interpreter.Interpreter
	dispatcher  *dialog.Dispatcher
	store       session.Store
	sink        output.Sink
	logger      logger.Logger
}

// New wires a tracker. A nil sink discards replies.
func New(interp interpreter.Interpreter, disp *dialog.Dispatcher, store session.Store, sink output.Sink, log logger.Logger) *Tracker {
	if sink == nil {
		sink = output.Nop{}
	}
	return &Tracker{
		interpreter: interp,
		dispatcher:  disp,
		store:       store,
		sink:        sink,
		logger: log.With(map[string]interface{}{
			"component": "tracker",
		}),
	}
}

// Predict interprets text and answers it. Interpreter failures answer with
// the default rule and leave the session memory untouched.
func (t *Tracker) Predict(ctx context.Context, sessionID, text string) dialog.Result {
	turn, err := t.interpreter.Parse(ctx, text)
	if err != nil {
		t.logger.Error("failed to interpret utterance", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		res := t.dispatcher.Fallback()
		res.Err = err
		t.emit(ctx, sessionID, res.Reply)
		return res
	}
	return t.Respond(ctx, sessionID, turn)
}

// Respond answers an already interpreted turn.
func (t *Tracker) Respond(ctx context.Context, sessionID string, turn models.Turn) dialog.Result {
	mem, err := t.store.Load(ctx, sessionID)
	if err != nil {
		t.logger.Warn("failed to load session, answering without memory", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		mem = dialog.Memory{}
	}

	res, next := t.dispatcher.ProcessTurn(ctx, mem, turn)

	if err := t.store.Save(ctx, sessionID, next); err != nil {
		t.logger.Warn("failed to save session", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}

	t.emit(ctx, sessionID, res.Reply)
	return res
}

// emit hands the reply to the sink. Sink failures, panics included, are
// logged and never reach the caller.
func (t *Tracker) emit(ctx context.Context, sessionID, reply string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("output sink panicked", map[string]interface{}{
				"sessionId": sessionID,
				"panic":     fmt.Sprint(r),
			})
		}
	}()

	if err := t.sink.Emit(ctx, reply); err != nil {
		t.logger.Warn("failed to emit reply", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}
