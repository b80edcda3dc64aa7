package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glossa/glossa/internal/ai"
	"github.com/glossa/glossa/internal/config"
	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
	"github.com/glossa/glossa/internal/logging"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "glossa",
		Short:        "Translate text, detect languages and look up words",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return runTUI(app.processor)
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", os.Getenv("GLOSSA_CONFIG"), "config file (default ./config.yaml or $HOME/.config/glossa/config.yaml)")

	rootCommand.AddCommand(
		newTranslateCommand(),
		newDetectCommand(),
		newDefineCommand(),
		newHistoryCommand(),
		newExportCommand(),
	)
	return rootCommand
}

// app holds what a command needs to talk to the store and the model.
type app struct {
	processor *core.Processor
	database  *db.Database
}

func (a *app) Close() error {
	return a.database.Close()
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logging.New(cfg.Log)

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	processor := core.NewProcessor(database, ai.NewGateway(*cfg), ai.DefaultModel(*cfg), cfg.LLM.Temperature)
	return &app{processor: processor, database: database}, nil
}
