package config

// AuthConfig configures bearer-token verification at the HTTP boundary.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		Issuer:    getEnv("JWT_ISSUER", "trainforge"),
	}
}

// NotifyConfig configures terminal-state notifications.
// Driver is "console" or "ses".
type NotifyConfig struct {
	Enabled   bool
	Driver    string
	From      string
	To        []string
	AWSRegion string
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Enabled:   getEnvBool("NOTIFY_ENABLED", false),
		Driver:    getEnv("NOTIFY_DRIVER", "console"),
		From:      getEnv("NOTIFY_FROM", "jobs@trainforge.dev"),
		To:        getEnvStringSlice("NOTIFY_TO", nil),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
	}
}

// StorageConfig configures the dataset storage probe.
// Mode is "local" or "s3".
type StorageConfig struct {
	Mode      string
	LocalPath string
	Bucket    string
	AWSRegion string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:      getEnv("STORAGE_MODE", "local"),
		LocalPath: getEnv("STORAGE_LOCAL_PATH", "./datasets"),
		Bucket:    getEnv("STORAGE_BUCKET", ""),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
	}
}
