package cli

import (
	"fmt"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/config"
)

// loadConfigAndLogger builds the configuration and logger every subcommand
// starts from. The --data-dir and --output-dir flags override whatever the
// config sources said.
func loadConfigAndLogger() (*config.Config, common.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if dataDir != "" {
		cfg.Data.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.Data.OutputDir = outputDir
	}

	var logger common.Logger = &common.StdLogger{}
	if !verbose {
		logger = quietLogger{next: logger}
	}
	return cfg, logger, nil
}

// quietLogger drops info lines so the default CLI output stays readable.
// Warnings and errors always come through.
type quietLogger struct {
	next common.Logger
}

func (l quietLogger) Log(level, message string, metadata map[string]interface{}) {
	if level == "info" || level == "debug" {
		return
	}
	l.next.Log(level, message, metadata)
}
