package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordsmith/internal"
)

// CreateRootCommand creates the root command and its subcommands. Running
// it without a subcommand opens the interactive menu.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordsmith",
		Short: "Vocabulary reviews, explanations and pronunciation practice",
		Long: `wordsmith is a terminal client for your vocabulary server.

It runs spaced-repetition review sessions, explains new words with AI
before you save them, lets you practice their pronunciation and suggests
what to learn next.

Examples:
  wordsmith                      # Interactive menu
  wordsmith review               # Review the words that are due
  wordsmith add serendipity      # Explain and save a word
  wordsmith add --batch words.txt
  wordsmith export --audio       # Anki deck with pronunciation`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Shell(cmd.InOrStdin(), cmd.OutOrStdout()).Menu(ctx)
			})
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newReviewCommand(),
		newAddCommand(flags),
		newSuggestCommand(),
		newWordsCommand(),
		newExportCommand(flags),
		newModelsCommand(),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordsmith.yaml)")
	pf.StringVar(&flags.APIURL, "api-url", "", "Vocabulary server URL (default http://localhost:8000)")
	pf.StringVar(&flags.AIProvider, "ai-provider", "", "Who explains words: backend, openai or gemini (default backend)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.StringVar(&flags.SpeechSynthesis, "speech-synthesis", "", "Speech output: auto, openai, espeak or none (default auto)")
	pf.StringVar(&flags.SpeechRecognition, "speech-recognition", "", "Speech input: auto, whisper or none (default auto)")
	pf.StringVar(&flags.Voice, "voice", "", "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, sage, shimmer (default alloy)")

	bindFlagsToViper(cmd)
}

// persistentBindings maps configuration keys to the flags overriding them.
var persistentBindings = []struct{ key, flag string }{
	{"api.base_url", "api-url"},
	{"ai.provider", "ai-provider"},
	{"log.level", "log-level"},
	{"speech.synthesis", "speech-synthesis"},
	{"speech.recognition", "speech-recognition"},
	{"speech.voice", "voice"},
}

func bindFlagsToViper(cmd *cobra.Command) {
	bindFlags(cmd.PersistentFlags(), persistentBindings)
}

func bindFlags(fs *pflag.FlagSet, bindings []struct{ key, flag string }) {
	for _, b := range bindings {
		viper.BindPFlag(b.key, fs.Lookup(b.flag))
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordsmith" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordsmith")
	}

	// WORDSMITH_API_BASE_URL overrides api.base_url
	viper.SetEnvPrefix("WORDSMITH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.api_key")
}
