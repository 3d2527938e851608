package cli

// Environment and file defaults for CLI runs.
const (
	// EnvUsername and EnvPassword carry the account credentials.
	EnvUsername = "COPERNICUS_USERNAME"
	EnvPassword = "COPERNICUS_PASSWORD"

	// DefaultEnvFile is the dotenv file loaded before reading the
	// environment.
	DefaultEnvFile = ".env"

	// MaxFailureLines caps how many recorded failures are printed after
	// a run; the full list stays in the summary.
	MaxFailureLines = 20
)
