// Package knowledgecmder provides the knowledge command for inspecting and
// extending what Jarvis knows.
package knowledgecmder

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/jarvis/pkg/cliui"
	"github.com/papercomputeco/jarvis/pkg/config"
	"github.com/papercomputeco/jarvis/pkg/jarvis"
	"github.com/papercomputeco/jarvis/pkg/llm/provider"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	"github.com/papercomputeco/jarvis/pkg/utils"
)

const knowledgeLongDesc string = `Inspect and extend the knowledge base.

The knowledge base is every fact ("A known fact about 'k' is 'v'.") followed
by every flattened biography line. Searching ranks snippets by how many
whitespace-separated words they share with the query. Punctuation stays part
of a word, so a quoted key only matches its quoted form.

Examples:
  jarvis knowledge search "'favorite color'"
  jarvis knowledge search -k 5 what is my known fact
  jarvis knowledge remember "home city" Pune
  jarvis knowledge cache`

const knowledgeShortDesc string = "Inspect and extend the knowledge base"

var storageFlags = []string{
	config.FlagStorage,
	config.FlagStorageDir,
	config.FlagSQLite,
	config.FlagPostgres,
}

func NewKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: knowledgeShortDesc,
		Long:  knowledgeLongDesc,
	}

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRememberCmd())
	cmd.AddCommand(newCacheCmd())

	return cmd
}

func newSearchCmd() *cobra.Command {
	var topK uint
	var sink storageSink

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank knowledge snippets against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, closeFn, err := openMemory(cmd, append([]string{config.FlagTopK}, storageFlags...))
			if err != nil {
				return err
			}
			defer closeFn()

			k := int(topK)
			if !cmd.Flags().Changed("top-k") {
				k = 0
			}
			return runSearch(os.Stdout, mem, strings.Join(args, " "), k)
		},
	}

	config.AddUintFlag(cmd, config.Flags, config.FlagTopK, &topK)
	sink.register(cmd)

	return cmd
}

func newRememberCmd() *cobra.Command {
	var sink storageSink

	cmd := &cobra.Command{
		Use:   "remember <key> <value>",
		Short: "Store a fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, closeFn, err := openMemory(cmd, storageFlags)
			if err != nil {
				return err
			}
			defer closeFn()

			return runRemember(cmd.Context(), os.Stdout, mem, args[0], args[1])
		},
	}

	sink.register(cmd)

	return cmd
}

func newCacheCmd() *cobra.Command {
	var sink storageSink

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List cached question and answer pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mem, closeFn, err := openMemory(cmd, storageFlags)
			if err != nil {
				return err
			}
			defer closeFn()

			return runCache(os.Stdout, mem)
		},
	}

	sink.register(cmd)

	return cmd
}

// storageSink holds storage flag values; the resolved config reads them
// through viper.
type storageSink struct {
	storage, dir, sqlitePath, postgresDSN string
}

func (s *storageSink) register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &s.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDir, &s.dir)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &s.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &s.postgresDSN)
}

// openMemory loads memory from the configured store without a model client.
func openMemory(cmd *cobra.Command, keys []string) (*memory.Memory, func(), error) {
	debug, _ := cmd.Flags().GetBool("debug")
	configDir, _ := cmd.Flags().GetString("config-dir")

	cfg, err := config.Resolve(configDir, cmd, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Model.Provider = provider.None
	cfg.Storage.Watch = false

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := jarvis.New(ctx, jarvis.Options{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithWriter(os.Stderr)),
	})
	if err != nil {
		return nil, nil, err
	}

	return rt.Memory, func() { _ = rt.Close() }, nil
}

func runSearch(w io.Writer, mem *memory.Memory, query string, topK int) error {
	snippets := mem.FindRelevant(query, topK)

	fmt.Fprintf(w, "\n  %s %s\n\n", cliui.KeyStyle.Render("Query:"), cliui.ValueStyle.Render(query))
	if len(snippets) == 0 {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("No knowledge shares a word with the query."))
		return nil
	}

	qt := memory.Tokenize(query)
	for i, s := range snippets {
		fmt.Fprintf(w, "  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			s,
			cliui.DimStyle.Render(fmt.Sprintf("(score %d)", memory.Score(qt, s))),
		)
	}
	fmt.Fprintln(w)

	return nil
}

func runCache(w io.Writer, mem *memory.Memory) error {
	answers := mem.CachedAnswers()
	if len(answers) == 0 {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No cached answers yet."))
		return nil
	}

	questions := slices.Sorted(maps.Keys(answers))
	fmt.Fprintln(w)
	for _, q := range questions {
		fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(q), cliui.ValueStyle.Render(utils.Truncate(answers[q], 80)))
	}
	fmt.Fprintln(w)

	return nil
}

func runRemember(ctx context.Context, w io.Writer, mem *memory.Memory, key, value string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("fact key must not be empty")
	}

	mem.SetFact(ctx, key, value)

	fmt.Fprintf(w, "\n  %s Remembered %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
