package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-fileservice/internal/logging"
	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	var configFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "fileservice",
		Short: "Read, write and transform files through the content store",
		Long: `fileservice operates on a content store directly, without a server.

Storage, limits and transform rules come from the same environment variables
and config file as fileservice-server. Run "fileservice env" to list them.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log service events to stderr")

	rootCmd.AddCommand(NewReadCommand())
	rootCmd.AddCommand(NewWriteCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewTransformCommand())
	rootCmd.AddCommand(NewBatchCommand())
	rootCmd.AddCommand(NewEnvCommand())

	return rootCmd
}

// NewServiceFromFlags loads configuration (file, then environment) and builds
// the service it describes.
func NewServiceFromFlags(cmd *cobra.Command) (fileservice.Service, error) {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), "development", level))

	cfg, err := config.Load(
		config.FromFile(configFile),
		config.FromEnv(),
		config.WithEventLogging(verbose),
		config.WithMetrics(false),
	)
	if err != nil {
		return nil, err
	}
	return cfg.BuildService()
}

// formatError renders service errors as "kind: message"
func formatError(err error) string {
	kind := fileservice.KindOf(err)
	if kind == fileservice.KindUnknown {
		return fmt.Sprintf("error: %v", err)
	}
	return fmt.Sprintf("%s: %v", kind, err)
}
