// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Schema    SchemaConfig    `yaml:"schema" mapstructure:"schema"`
	Inventory InventoryConfig `yaml:"inventory" mapstructure:"inventory"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SchemaConfig points at the mapping and vocabulary inputs loaded at startup.
type SchemaConfig struct {
	FieldSchema   string   `yaml:"field_schema" mapstructure:"field_schema"`
	MappingTables []string `yaml:"mapping_tables" mapstructure:"mapping_tables"`
	VocabularyDir string   `yaml:"vocabulary_dir" mapstructure:"vocabulary_dir"`
	Profile       string   `yaml:"profile" mapstructure:"profile"`

	// RemediationTable is optional; no table means no name corrections.
	RemediationTable string `yaml:"remediation_table" mapstructure:"remediation_table"`
}

// InventoryConfig configures the persisted object ledger.
type InventoryConfig struct {
	LedgerPath string `yaml:"ledger_path" mapstructure:"ledger_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Size          int    `yaml:"size" mapstructure:"size"`
	Operator      string `yaml:"operator" mapstructure:"operator"`
	FragmentsFile string `yaml:"fragments_file" mapstructure:"fragments_file"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the status API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MIGRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("schema.field_schema", "schema/field_schema.csv")
	v.SetDefault("schema.mapping_tables", []string{"schema/field_mapping.csv"})
	v.SetDefault("schema.vocabulary_dir", "schema/vocabularies")
	v.SetDefault("schema.profile", "schema/profile.yaml")
	v.SetDefault("schema.remediation_table", "")
	v.SetDefault("inventory.ledger_path", "inventory/object_inventory.csv")
	v.SetDefault("batch.size", 10000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "migrate.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
