package cfg

type Cfg struct {
	// Feed configuration
	FeedsDir     string
	OutputDir    string
	StateFile    string
	DaysLookback int

	// Classification configuration
	GlobalFilterCriteria string
	AnthropicAPIKey      string
	Model                string

	// Application configuration
	WorkerCount int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
