package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile           string
	APIURL            string
	AIProvider        string
	LogLevel          string
	SpeechSynthesis   string
	SpeechRecognition string
	Voice             string

	// add
	BatchFile string

	// export
	OutputPath string
	CSV        bool
	Audio      bool
	Notes      bool
	DeckName   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{}
}
