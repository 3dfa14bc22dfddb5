package config

const (
	defaultConfigPath          = "~/.config/skknicheck/config.toml"
	defaultStateDir            = "~/.local/share/skknicheck"
	defaultLogDir              = "~/.local/share/skknicheck/logs"
	defaultEnvFile             = ".env"
	defaultSearchBaseURL       = "https://serpapi.com"
	defaultSearchSite          = "skkni.kemnaker.go.id"
	defaultSearchLanguage      = "id"
	defaultSearchResultCount   = 10
	defaultSearchRetries       = 3
	defaultRetryBackoffSeconds = 1.5
	defaultTimeoutSeconds      = 30
	defaultRateLimitSeconds    = 1.2
	defaultStoreBackend        = BackendGSheets
	defaultInputGID            = 1470851342
	defaultSQLiteTable         = "skkni"
	defaultSchemeColumn        = "Nama Skema"
	defaultNumberColumn        = "Nomor SKKNI"
	defaultYearColumn          = "Tahun SKKNI"
	defaultStatusColumn        = "Status"
	defaultSMTPHost            = "smtp.gmail.com"
	defaultSMTPPort            = 465
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// SameAsInputGID makes the output worksheet default to the input worksheet.
const SameAsInputGID = -1

// Store backends.
const (
	BackendGSheets = "gsheets"
	BackendCSV     = "csv"
	BackendSQLite  = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			EnvFile:  defaultEnvFile,
		},
		Search: Search{
			BaseURL:             defaultSearchBaseURL,
			Site:                defaultSearchSite,
			Language:            defaultSearchLanguage,
			ResultCount:         defaultSearchResultCount,
			Retries:             defaultSearchRetries,
			RetryBackoffSeconds: defaultRetryBackoffSeconds,
			TimeoutSeconds:      defaultTimeoutSeconds,
			RateLimitSeconds:    defaultRateLimitSeconds,
		},
		Store: Store{
			Backend: defaultStoreBackend,
			Columns: Columns{
				Scheme: defaultSchemeColumn,
				Number: defaultNumberColumn,
				Year:   defaultYearColumn,
				Status: defaultStatusColumn,
			},
			Sheets: Sheets{
				InputGID:  defaultInputGID,
				OutputGID: SameAsInputGID,
			},
			SQLite: SQLite{
				Table: defaultSQLiteTable,
			},
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Email: Email{
				Host: defaultSMTPHost,
				Port: defaultSMTPPort,
			},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
