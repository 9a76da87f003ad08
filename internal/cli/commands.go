package cli

import (
	"context"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/wordsmith/internal/models"
)

func newReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the words that are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Shell(cmd.InOrStdin(), cmd.OutOrStdout()).Review(ctx)
			})
		},
	}
}

func newAddCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [word]",
		Short: "Explain a word and save it",
		Long: `Explain a word with AI, practice its pronunciation and save it.

With --batch every line of the file is imported without interaction, one
word per line. A line "word = definition" saves the given definition
instead of asking the AI. Lines starting with # are ignored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				if flags.BatchFile != "" {
					return app.ImportBatch(ctx, cmd.OutOrStdout(), flags.BatchFile)
				}
				seed := ""
				if len(args) > 0 {
					seed = args[0]
				}
				return app.Shell(cmd.InOrStdin(), cmd.OutOrStdout()).AddWord(ctx, seed)
			})
		},
	}
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Import words from file (one per line)")
	return cmd
}

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Suggest words to learn next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Shell(cmd.InOrStdin(), cmd.OutOrStdout()).Suggest(ctx)
			})
		},
	}
}

func newWordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List your saved words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Shell(cmd.InOrStdin(), cmd.OutOrStdout()).Words(ctx)
			})
		},
	}
}

func newExportCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your words to Anki",
		Long: `Export your saved words as an Anki package (.apkg) or CSV.

Each word becomes a note with the word on the front and its definition on
the back, plus a reverse card. --audio adds pronunciation rendered with
OpenAI TTS or espeak-ng; --notes adds an IPA hint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Export(ctx, cmd.OutOrStdout(), ExportOptions{
					OutputPath: flags.OutputPath,
					CSV:        flags.CSV,
					Audio:      flags.Audio,
					Notes:      flags.Notes,
					DeckName:   flags.DeckName,
				})
			})
		},
	}
	cmd.Flags().StringVarP(&flags.OutputPath, "output", "o", "", "Output file (default wordsmith.apkg or wordsmith.csv)")
	cmd.Flags().BoolVar(&flags.CSV, "csv", false, "Write a CSV instead of an APKG")
	cmd.Flags().BoolVar(&flags.Audio, "audio", false, "Include pronunciation audio")
	cmd.Flags().BoolVar(&flags.Notes, "notes", false, "Include IPA pronunciation notes (needs OpenAI)")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", "", "Deck name for APKG export (default export.deck_name)")
	bindFlags(cmd.Flags(), []struct{ key, flag string }{{"export.deck_name", "deck-name"}})
	return cmd
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List OpenAI models usable for explanations and speech",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return models.NewLister(GetOpenAIKey()).ListAvailableModels(commandContext(cmd), cmd.OutOrStdout())
		},
	}
}
