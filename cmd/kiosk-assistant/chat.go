// cmd/kiosk-assistant/chat.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/output"
	"kiosk-dialog/internal/session"

	"github.com/spf13/cobra"
)

const (
	userPrompt = "Вы: "
	botPrefix  = "Бот: "
)

var (
	chatSessionID string
	chatSinks     []string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant on the terminal",
	Long: `Reads one utterance per line and prints the reply.
An empty line is ignored; "/exit" or end of input ends the conversation.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to continue (default: a new one)")
	chatCmd.Flags().StringSliceVar(&chatSinks, "sink", nil, "extra reply sinks besides the terminal (sns)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := enableSinks(cfg, chatSinks); err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout := cmd.OutOrStdout()
	a, err := newApp(ctx, cfg, log, output.NamedSink{
		Name: "terminal",
		Sink: output.NewWriterSink(stdout, botPrefix),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}
	log.Info("chat session started", map[string]interface{}{"sessionId": sessionID})

	return chatLoop(ctx, cmd.InOrStdin(), stdout, func(text string) {
		a.tracker.Predict(ctx, sessionID, text)
	})
}

// enableSinks switches on the outputs named by --sink.
func enableSinks(cfg *config.Config, names []string) error {
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "sns":
			if cfg.Output.SNS.TopicARN == "" {
				return fmt.Errorf("--sink sns requires output.sns.topic_arn")
			}
			cfg.Output.SNS.Enabled = true
		default:
			return fmt.Errorf("unknown sink %q", name)
		}
	}
	return nil
}

// chatLoop prompts, reads a line and hands it to answer until input ends.
// Replies are printed by the tracker's output sink.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, answer func(text string)) error {
	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}
		answer(text)
	}
}
