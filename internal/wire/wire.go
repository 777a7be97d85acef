// Package wire provides dependency injection for the tkitrace application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/tkitrace/internal/adapters/cache"
	cliadapter "github.com/example/tkitrace/internal/adapters/cli"
	"github.com/example/tkitrace/internal/adapters/csvfile"
	"github.com/example/tkitrace/internal/adapters/sheets"
	"github.com/example/tkitrace/internal/adapters/sqlite"
	"github.com/example/tkitrace/internal/app"
	"github.com/example/tkitrace/internal/config"
	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/db"
	"github.com/example/tkitrace/internal/logger"
	"github.com/example/tkitrace/internal/ports/primary"
	"github.com/example/tkitrace/internal/ports/secondary"
)

var (
	cfg        *config.Config
	log        *logrus.Logger
	configErr  error
	configOnce sync.Once

	trackingService primary.TrackingService
	servicesErr     error
	once            sync.Once

	mirrorDB   *sql.DB
	mirrorErr  error
	mirrorOnce sync.Once
)

// Config returns the resolved configuration for the working directory.
func Config() (*config.Config, error) {
	configOnce.Do(initConfig)
	return cfg, configErr
}

// Logger returns the application logger. Before a successful initialization
// it falls back to the standard logrus logger.
func Logger() logrus.FieldLogger {
	configOnce.Do(initConfig)
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

// TrackingService returns the singleton TrackingService instance.
func TrackingService() (primary.TrackingService, error) {
	once.Do(initServices)
	return trackingService, servicesErr
}

// initConfig resolves configuration and builds the logger.
func initConfig() {
	dir, err := os.Getwd()
	if err != nil {
		configErr = fmt.Errorf("failed to get working directory: %w", err)
		return
	}

	resolved, err := config.Resolve(dir)
	if err != nil {
		configErr = err
		return
	}

	l, err := logger.New(resolved.Log, os.Stderr)
	if err != nil {
		configErr = err
		return
	}
	cfg, log = resolved, l
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c, err := Config()
	if err != nil {
		servicesErr = err
		return
	}

	// Create the row source (secondary port) selected by configuration
	source, err := newRowSource(context.Background(), c)
	if err != nil {
		servicesErr = err
		return
	}
	cached := cache.NewSnapshotCache(source, c.CacheTTL(), cache.WithLogger(log))

	schema := engine.DefaultSchema()
	schema.Strict = c.StrictSchema
	policy := engine.Policy{ShipmentInterval: engine.ShipmentInterval(c.ShipmentInterval)}

	// Create services (primary ports implementation)
	trackingService = app.NewTrackingService(cached, schema, policy)

	log.WithFields(logrus.Fields{
		"source": cached.Name(),
		"ttl":    c.CacheTTL().String(),
		"strict": c.StrictSchema,
	}).Debug("services initialized")
}

func newRowSource(ctx context.Context, c *config.Config) (secondary.RowSource, error) {
	switch c.Source {
	case config.SourceSheets:
		return sheets.NewSource(ctx, sheets.Config{
			SpreadsheetID:   c.Sheets.SpreadsheetID,
			Range:           c.Sheets.A1Range(),
			CredentialsFile: c.Sheets.CredentialsFile,
		})
	case config.SourceSQLite:
		return Mirror()
	case config.SourceCSV:
		return csvfile.NewSource(c.CSVPath), nil
	default:
		return nil, fmt.Errorf("unknown source %q", c.Source)
	}
}

// MirrorDB returns the singleton connection to the local sheet mirror.
func MirrorDB() (*sql.DB, error) {
	mirrorOnce.Do(func() {
		c, err := Config()
		if err != nil {
			mirrorErr = err
			return
		}
		path, err := c.MirrorPath()
		if err != nil {
			mirrorErr = err
			return
		}
		mirrorDB, mirrorErr = db.Open(path)
	})
	return mirrorDB, mirrorErr
}

// Mirror returns the local sheet mirror for the configured sheet.
func Mirror() (*sqlite.SheetMirror, error) {
	database, err := MirrorDB()
	if err != nil {
		return nil, err
	}
	return sqlite.NewSheetMirror(database, cfg.MirrorSheet), nil
}

// ReportAdapter returns a new ReportAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ReportAdapter() (*cliadapter.ReportAdapter, error) {
	return ReportAdapterWithOutput(os.Stdout)
}

// ReportAdapterWithOutput returns a new ReportAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func ReportAdapterWithOutput(out io.Writer) (*cliadapter.ReportAdapter, error) {
	service, err := TrackingService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewReportAdapter(service, out), nil
}
