package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/claimflow/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [job-id]",
	Short: "Rerun the pipeline whenever the job's inputs change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := jobContext(args)
		if err != nil {
			return err
		}
		job := ctx.Job
		if err := job.Initialize(); err != nil {
			return err
		}
		inputs := map[string]bool{
			filepath.Clean(job.ManualRoomDimsPath()): true,
			filepath.Clean(job.OCRRoomsPath()):       true,
		}
		dataDir := filepath.Clean(job.DataDir())
		derived := filepath.Clean(job.ClaimAssumptionsPath())
		w, err := watch.New(
			watch.WithLogger(logger),
			watch.WithFilter(func(path string) bool {
				path = filepath.Clean(path)
				if path == derived {
					return false
				}
				return inputs[path] || filepath.Dir(path) == dataDir
			}),
		)
		if err != nil {
			return err
		}
		if err := w.Add(job.DataDir(), job.OutDir()); err != nil {
			w.Close()
			return err
		}

		state, err := runPipeline(ctx)
		printSummary(cmd, ctx, state)
		if err != nil {
			logger.Warn("initial run failed", zap.Error(err))
		}

		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("watching for input changes", zap.String("data", job.DataDir()))
		return w.Run(sigCtx, func(paths []string) {
			logger.Info("inputs changed, rerunning", zap.Strings("paths", paths))
			state, err := runPipeline(ctx)
			printSummary(cmd, ctx, state)
			if err != nil {
				logger.Warn("pipeline run failed", zap.Error(err))
			}
		})
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&skipStages, "skip", nil, "optional stages to leave out on every run")
}
