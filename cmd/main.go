// Package main provides the CLI entrypoint for the link expander service.
// It wires subcommands (serve, expand, history, migrate), loads configuration, and initializes logging.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"linkexpander/internal/config"
	"linkexpander/pkg/logger"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig reads configPath, falling back to environment variables and
// defaults when the file does not exist.
func loadConfig(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("config file %q not found, using environment only", configPath)

		return config.LoadEnv() //nolint: wrapcheck
	}

	return config.Load(configPath) //nolint: wrapcheck
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:          "linkexpander",
		Short:        "Expands short links and scores where they lead",
		SilenceUsage: true,
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	fset := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	configPath := fset.String("c", "config.yml", "The config file path")
	_ = fset.Parse(configArgs(os.Args[1:]))

	log.Println("loading config ...")
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		expandCommand(cfg),
		historyCommand(cfg),
		migrateCommand(cfg),
	)

	err = rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}

// configArgs keeps only the -c/--config flag out of args so the standard flag
// package does not stop at the subcommand name.
func configArgs(args []string) []string {
	for i, a := range args {
		switch {
		case (a == "-c" || a == "--config" || a == "-config") && i+1 < len(args):
			return []string{"-c", args[i+1]}
		case len(a) > 3 && a[:3] == "-c=":
			return []string{a}
		case len(a) > 9 && a[:9] == "--config=":
			return []string{"-c=" + a[9:]}
		}
	}

	return nil
}
