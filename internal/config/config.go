package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/example/tkitrace/internal/logger"
)

// Source constants
const (
	SourceSheets = "sheets" // Google Sheets range
	SourceSQLite = "sqlite" // Local sheet mirror
	SourceCSV    = "csv"    // CSV export on disk
)

// Shipment interval constants
const (
	ProductionMinusShipment = "production_minus_shipment"
	ShipmentMinusProduction = "shipment_minus_production"
)

const (
	dirName  = ".tkitrace"
	fileName = "config.json"
)

// Config represents the tkitrace configuration
type Config struct {
	Version          string        `json:"version"`
	Source           string        `json:"source" env:"TKI_SOURCE" validate:"required,oneof=sheets sqlite csv"`
	Sheets           SheetsConfig  `json:"sheets" envPrefix:"TKI_SHEETS_"`
	DBPath           string        `json:"db_path,omitempty" env:"TKI_DB_PATH"`             // Mirror database; defaults under $HOME
	MirrorSheet      string        `json:"mirror_sheet,omitempty" env:"TKI_MIRROR_SHEET"`   // Sheet read from the mirror
	CSVPath          string        `json:"csv_path,omitempty" env:"TKI_CSV_PATH" validate:"required_if=Source csv"`
	CacheTTLSeconds  int           `json:"cache_ttl_seconds" env:"TKI_CACHE_TTL_SECONDS" validate:"gte=0"`
	ShipmentInterval string        `json:"shipment_interval" env:"TKI_SHIPMENT_INTERVAL" validate:"oneof=production_minus_shipment shipment_minus_production"`
	StrictSchema     bool          `json:"strict_schema" env:"TKI_STRICT_SCHEMA"` // Require every mapped column, not only MAC
	Log              logger.Config `json:"log" envPrefix:"TKI_LOG_"`
}

// SheetsConfig locates the tracking range in Google Sheets.
type SheetsConfig struct {
	SpreadsheetID   string `json:"spreadsheet_id" env:"SPREADSHEET_ID"`
	SheetName       string `json:"sheet_name" env:"SHEET_NAME"`
	Range           string `json:"range" env:"RANGE"` // A1 range without the sheet name
	CredentialsFile string `json:"credentials_file,omitempty" env:"CREDENTIALS_FILE"`
}

// A1Range returns the range qualified with the sheet name, e.g. "Echo!A2:AA104".
func (s SheetsConfig) A1Range() string {
	if s.SheetName == "" {
		return s.Range
	}
	return fmt.Sprintf("%s!%s", s.SheetName, s.Range)
}

// Default returns the configuration used when no file or environment overrides exist.
// The local mirror is the default source, so mirror commands work without any setup.
func Default() *Config {
	return &Config{
		Version: "1",
		Source:  SourceSQLite,
		Sheets: SheetsConfig{
			SheetName: "Echo",
			Range:     "A2:AA104",
		},
		MirrorSheet:      "Echo",
		CacheTTLSeconds:  60,
		ShipmentInterval: ProductionMinusShipment,
		Log:              logger.DefaultConfig(),
	}
}

// LoadConfig reads .tkitrace/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()
	if err := readFile(dir, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve builds the effective configuration for dir.
// Resolution order: defaults, then .tkitrace/config.json if present, then
// .env in dir, then TKI_* environment variables.
func Resolve(dir string) (*Config, error) {
	cfg := Default()
	if err := readFile(dir, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	dotenv := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(dir string, cfg *Config) error {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, dirName, fileName)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and source-specific requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Source == SourceSheets {
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("invalid config: sheets.spreadsheet_id is required for source %q", SourceSheets)
		}
		if c.Sheets.Range == "" {
			return fmt.Errorf("invalid config: sheets.range is required for source %q", SourceSheets)
		}
	}
	return nil
}

// CacheTTL returns the snapshot cache validity window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MirrorPath returns the configured mirror database path or the default one.
func (c *Config) MirrorPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return DefaultDBPath()
}

// DefaultDBPath returns the default mirror database location.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, "mirror.db"), nil
}
