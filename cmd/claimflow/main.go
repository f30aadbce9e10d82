// cmd/claimflow/main.go
//
// Entry point for the claimflow CLI. Every command resolves the project root,
// loads .claimflow/config.yaml and builds the process logger before running.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/claimflow/internal/catalog"
	"github.com/kingrea/claimflow/internal/config"
	"github.com/kingrea/claimflow/internal/logbook"
	"github.com/kingrea/claimflow/internal/logging"
	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules"
	"github.com/kingrea/claimflow/internal/workflow"
)

var (
	rootDir string
	verbose bool

	cfg       *config.Config
	logger    *zap.Logger
	templates *catalog.Catalog
	closeLog  = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "claimflow",
	Short:         "Turn claim inputs into an estimate import",
	Long:          "claimflow runs the claim estimate pipeline for a job folder: room data, line items, policy adjustments and the final import file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		project := rootDir
		if project == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determine working directory: %w", err)
			}
			project = wd
		}
		abs, err := filepath.Abs(project)
		if err != nil {
			return fmt.Errorf("resolve project dir: %w", err)
		}
		if err := config.InitProjectDir(abs); err != nil {
			return fmt.Errorf("init %s: %w", config.ClaimflowDir, err)
		}
		cfg, err = config.NewConfig(abs)
		if err != nil {
			return err
		}
		level := cfg.Project.Log.Level
		if verbose {
			level = "debug"
		}
		logger, closeLog, err = logging.New(logging.Options{
			Level:   level,
			Format:  cfg.Project.Log.Format,
			File:    cfg.LogFilePath(),
			Service: "claimflow",
		})
		if err != nil {
			return err
		}
		templates, err = catalog.Load(cfg.TemplatesPath())
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (defaults to the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd, stagesCmd, intakeCmd, watchCmd)
	for _, cmd := range stageCommands(modules.NewRegistry()) {
		rootCmd.AddCommand(cmd)
	}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		closeLog()
		return 1
	}
	return 0
}

// jobContext builds the stage context for the job named in args.
func jobContext(args []string) (*module.ModuleContext, error) {
	id := cfg.ResolveJob(args)
	job := workflow.New(id, cfg.DataRoot(), cfg.OutRoot())
	if !job.Exists() {
		return nil, fmt.Errorf("job %s: no data folder at %s", id, job.DataDir())
	}
	lb, err := logbook.New(job.RunLogPath())
	if err != nil {
		return nil, fmt.Errorf("job %s: open run log: %w", id, err)
	}
	return module.NewContext(cfg, job, templates, logger.With(zap.String("job", id)), lb), nil
}
