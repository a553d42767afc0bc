package config

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress string
}

// StoreConfig represents the persistence configuration
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// DetectorConfig represents the detection configuration
type DetectorConfig struct {
	ArtifactPath string
	Jitter       bool
	JitterSeed   int64
}

// TrainingConfig represents the model training configuration
type TrainingConfig struct {
	DatasetPath     string
	TextColumn      string
	LabelColumn     string
	TestFraction    float64
	Seed            int64
	Alpha           float64
	NGramMax        int
	StripDiacritics bool
	Leetspeak       bool
	Stemming        bool
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetDetector returns the detector configuration
func (c *Config) GetDetector() DetectorConfig {
	return DetectorConfig{
		ArtifactPath: c.GetString("detector.artifact_path"),
		Jitter:       c.GetBool("detector.jitter"),
		JitterSeed:   c.GetInt64("detector.jitter_seed"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		DatasetPath:     c.GetString("training.dataset_path"),
		TextColumn:      c.GetString("training.text_column"),
		LabelColumn:     c.GetString("training.label_column"),
		TestFraction:    c.GetFloat64("training.test_fraction"),
		Seed:            c.GetInt64("training.seed"),
		Alpha:           c.GetFloat64("training.alpha"),
		NGramMax:        c.GetInt("training.ngram_max"),
		StripDiacritics: c.GetBool("training.strip_diacritics"),
		Leetspeak:       c.GetBool("training.leetspeak"),
		Stemming:        c.GetBool("training.stemming"),
	}
}
