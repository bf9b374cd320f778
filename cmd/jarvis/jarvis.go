// Package jarviscmder
package jarviscmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/jarvis/cmd/jarvis/chat"
	configcmder "github.com/papercomputeco/jarvis/cmd/jarvis/config"
	initcmder "github.com/papercomputeco/jarvis/cmd/jarvis/init"
	knowledgecmder "github.com/papercomputeco/jarvis/cmd/jarvis/knowledge"
	servecmder "github.com/papercomputeco/jarvis/cmd/jarvis/serve"
	versioncmder "github.com/papercomputeco/jarvis/cmd/version"
)

const jarvisLongDesc string = `Jarvis is a personal assistant that remembers.

Queries are answered from canned local knowledge, then from previously given
answers, and only then by a language model primed with the facts and
biography most relevant to the question.

Run it using:
  jarvis init                    Create a local .jarvis/ directory
  jarvis serve                   Run the HTTP API
  jarvis chat                    Chat in the terminal
  jarvis knowledge search <q>    Rank knowledge snippets against a query`

const jarvisShortDesc string = "Jarvis - a personal assistant with memory"

func NewJarvisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jarvis",
		Short: jarvisShortDesc,
		Long:  jarvisLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .jarvis/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(knowledgecmder.NewKnowledgeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
