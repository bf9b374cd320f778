// Package chatcmder provides the chat command for talking to Jarvis in the
// terminal.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/jarvis/pkg/assistant"
	"github.com/papercomputeco/jarvis/pkg/cliui"
	"github.com/papercomputeco/jarvis/pkg/config"
	"github.com/papercomputeco/jarvis/pkg/jarvis"
	"github.com/papercomputeco/jarvis/pkg/logger"
)

var (
	userPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
)

type chatCommander struct {
	debug     bool
	configDir string
	raw       bool

	provider   string
	model      string
	upstream   string
	storage    string
	storageDir string
	sqlitePath string
	name       string
	owner      string

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with Jarvis.

Every message goes through the same path as the HTTP API: local knowledge,
then previously given answers, then the language model. The conversation is
saved to the configured storage after every turn.

Replies are rendered as markdown when stdout is a terminal.
/exit or Ctrl+D quits.

Examples:
  jarvis chat
  jarvis chat --provider ollama --model llama3.2
  jarvis chat --provider none`

const chatShortDesc string = "Interactive chat with Jarvis"

var chatFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagUpstream,
	config.FlagStorage,
	config.FlagStorageDir,
	config.FlagSQLite,
	config.FlagAssistantName,
	config.FlagAssistantOwner,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cfg, err := config.Resolve(cmder.configDir, cmd, chatFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), cfg)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDir, &cmder.storageDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagAssistantName, &cmder.name)
	config.AddStringFlag(cmd, config.Flags, config.FlagAssistantOwner, &cmder.owner)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print replies without markdown rendering")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Warnings only, so logs don't interleave with the conversation.
	level := slog.LevelWarn
	if c.debug {
		level = slog.LevelDebug
	}
	c.logger = logger.New(logger.WithLevel(level), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	var rt *jarvis.Runtime
	err := cliui.Step(os.Stderr, "Loading memory", func() error {
		var err error
		rt, err = jarvis.New(ctx, jarvis.Options{
			Config:    cfg,
			ConfigDir: c.configDir,
			Logger:    c.logger,
		})
		return err
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	persona := rt.Memory.Persona()
	stats := rt.Memory.Stats()

	fmt.Println()
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Assistant:"), cliui.NameStyle.Render(persona.Name))
	if rt.Assistant.HasModel() {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(cfg.Model.Provider))
	} else {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.DimStyle.Render("none"))
	}
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf(
		"%d turns, %d facts, %d snippets in memory", stats.Turns, stats.Facts, stats.Snippets)))
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	render := !c.raw && cliui.IsTerminal(os.Stdout)
	if render {
		cliui.UseTrueColor(os.Stdout)
	}
	return repl(ctx, rt.Assistant, persona.Name, os.Stdin, os.Stdout, render)
}

// repl reads one query per line from in and writes each reply to out.
func repl(ctx context.Context, a *assistant.Assistant, name string, in io.Reader, out io.Writer, render bool) error {
	assistantPrompt := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(strings.ToLower(name) + "> ")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		reply, err := a.HandleQuery(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		text := reply.Text
		if render {
			if rendered, err := cliui.RenderMarkdown(text); err == nil {
				text = strings.TrimSpace(rendered)
			}
		}

		fmt.Fprintf(out, "%s%s %s\n\n", assistantPrompt, text, cliui.SourceStyle.Render("("+string(reply.Source)+")"))
	}

	fmt.Fprintln(out)
	return scanner.Err()
}

