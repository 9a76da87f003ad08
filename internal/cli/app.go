package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordsmith/internal/anki"
	"codeberg.org/snonux/wordsmith/internal/archive"
	"codeberg.org/snonux/wordsmith/internal/api"
	"codeberg.org/snonux/wordsmith/internal/batch"
	"codeberg.org/snonux/wordsmith/internal/config"
	"codeberg.org/snonux/wordsmith/internal/explain"
	"codeberg.org/snonux/wordsmith/internal/logging"
	"codeberg.org/snonux/wordsmith/internal/phonetic"
	"codeberg.org/snonux/wordsmith/internal/processor"
	"codeberg.org/snonux/wordsmith/internal/shell"
	"codeberg.org/snonux/wordsmith/internal/speech"
)

// App holds the services built from configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *api.Client
	AI       explain.Service
	Arena    *speech.Arena
	Phonetic *phonetic.Fetcher // nil without an OpenAI key
}

// NewApp loads configuration from v and wires the services.
func NewApp(ctx context.Context, v *viper.Viper) (*App, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Log)

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:         cfg.API.BaseURL,
		Token:           cfg.API.Token,
		Timeout:         cfg.API.Timeout,
		BreakerFailures: cfg.API.BreakerFailures,
		BreakerTimeout:  cfg.API.BreakerTimeout,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	ai, err := explain.New(ctx, cfg, client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up AI provider: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Client: client,
		AI:     ai,
		Arena:  speech.NewArena(speech.Detect(cfg.Speech, cfg.OpenAI.APIKey, logger)),
	}
	if cfg.OpenAI.APIKey != "" {
		app.Phonetic = phonetic.NewFetcher(cfg.OpenAI.APIKey, cfg.AI.OpenAIModel)
	}
	return app, nil
}

// Shell returns an interactive shell on in and out.
func (a *App) Shell(in io.Reader, out io.Writer) *shell.Shell {
	deps := shell.Deps{
		Scheduler: a.Client,
		Explainer: a.AI,
		Words:     a.Client,
		Suggester: a.AI,
		Arena:     a.Arena,
		Logger:    a.Logger,
	}
	if a.Phonetic != nil {
		deps.Hinter = a.Phonetic
	}
	return shell.New(in, out, deps)
}

// ImportBatch explains and saves every word listed in file.
func (a *App) ImportBatch(ctx context.Context, out io.Writer, file string) error {
	entries, err := batch.ReadFile(file)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no words found in %s", file)
	}

	fmt.Fprintf(out, "Importing %d words from %s\n", len(entries), file)
	proc := processor.NewProcessor(a.AI, a.Client, out, a.Logger)
	summary, err := proc.ProcessBatch(ctx, entries)
	processor.PrintSummary(out, summary)
	return err
}

// ExportOptions selects the export format and extras.
type ExportOptions struct {
	OutputPath string
	CSV        bool
	Audio      bool
	Notes      bool
	DeckName   string
}

// Export writes the saved words as an Anki deck or CSV.
func (a *App) Export(ctx context.Context, out io.Writer, opts ExportOptions) error {
	words, err := a.Client.ListWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	if len(words) == 0 {
		fmt.Fprintln(out, "No words to export.")
		return nil
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = "wordsmith.apkg"
		if opts.CSV {
			outputPath = "wordsmith.csv"
		}
	}
	deckName := opts.DeckName
	if deckName == "" {
		deckName = a.Config.Export.DeckName
	}

	if err := archivePrevious(out, outputPath); err != nil {
		return err
	}

	genOpts := anki.DefaultGeneratorOptions()
	genOpts.OutputPath = outputPath
	gen := anki.NewGenerator(genOpts, a.Logger)
	gen.AddWords(words)

	if opts.Notes {
		if a.Phonetic == nil {
			fmt.Fprintln(out, "Warning: pronunciation notes need an OpenAI API key, skipping")
		} else {
			fmt.Fprintln(out, "Fetching pronunciation notes...")
			gen.Annotate(ctx, a.Phonetic)
		}
	}

	if opts.Audio {
		cleanup, err := a.renderAudio(ctx, out, gen, genOpts, outputPath, opts.CSV)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	if opts.CSV {
		if err := gen.GenerateCSV(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Anki CSV created: %s\n", outputPath)
	} else {
		if err := gen.GenerateAPKG(outputPath, deckName); err != nil {
			return fmt.Errorf("failed to generate Anki package: %w", err)
		}
		fmt.Fprintf(out, "Anki package created: %s\n", outputPath)
	}

	total, withAudio := gen.Stats()
	fmt.Fprintf(out, "Cards: %d (with audio: %d)\n", total, withAudio)
	return nil
}

// renderAudio renders pronunciation for every card. For a CSV the files are
// kept next to it; for a package they only live until it is written.
func (a *App) renderAudio(ctx context.Context, out io.Writer, gen *anki.Generator, genOpts *anki.GeneratorOptions, outputPath string, keep bool) (func(), error) {
	noop := func() {}

	r, ext, err := speech.DetectRenderer(a.Config.Speech, a.Config.OpenAI.APIKey, a.Logger)
	if err != nil {
		fmt.Fprintf(out, "Warning: no speech driver can render audio, skipping: %v\n", err)
		return noop, nil
	}
	genOpts.AudioFormat = ext

	dir := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_media"
	cleanup := noop
	if keep {
		if err := archivePrevious(out, dir); err != nil {
			return noop, err
		}
	} else {
		if dir, err = os.MkdirTemp("", "wordsmith_audio_*"); err != nil {
			return noop, fmt.Errorf("failed to create temp directory: %w", err)
		}
		tmp := dir
		cleanup = func() { os.RemoveAll(tmp) }
	}

	fmt.Fprintf(out, "Rendering audio with %s...\n", r.Name())
	n, err := gen.RenderAudio(ctx, r, dir)
	if err != nil {
		cleanup()
		return noop, err
	}
	if keep && n > 0 {
		fmt.Fprintf(out, "Audio files saved to: %s (copy them into Anki's collection.media)\n", dir)
	}
	return cleanup, nil
}

// archivePrevious moves an earlier export at path out of the way.
func archivePrevious(out io.Writer, path string) error {
	moved, err := archive.Previous(path)
	if err != nil {
		return err
	}
	if moved != "" {
		fmt.Fprintf(out, "Previous export archived to: %s\n", moved)
	}
	return nil
}

// withApp builds the App from the global viper instance and runs fn.
func withApp(cmd *cobra.Command, fn func(context.Context, *App) error) error {
	ctx := commandContext(cmd)
	app, err := NewApp(ctx, viper.GetViper())
	if err != nil {
		return err
	}
	return fn(ctx, app)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
