package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/ordbok/data/db/ordbok.db"
	}
	if cfg.Corpus.DebounceMS == 0 {
		cfg.Corpus.DebounceMS = 400
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 1000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 50
	}
	if cfg.Search.EmptyQuery == "" {
		cfg.Search.EmptyQuery = "stats_only"
	}
}
