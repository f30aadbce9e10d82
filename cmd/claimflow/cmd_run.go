package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/claimflow/internal/module"
	"github.com/kingrea/claimflow/internal/modules"
	"github.com/kingrea/claimflow/internal/pipeline"
	"github.com/kingrea/claimflow/internal/tui"
	"github.com/kingrea/claimflow/internal/workflow"
)

const journalLines = 8

var (
	skipStages   []string
	showWarnings bool
)

var runCmd = &cobra.Command{
	Use:   "run [job-id]",
	Short: "Run the full pipeline for a job, stopping at the first failed stage",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := jobContext(args)
		if err != nil {
			return err
		}
		state, err := runPipeline(ctx)
		printSummary(cmd, ctx, state)
		return err
	},
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the registered pipeline stages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := modules.NewRegistry().Infos()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, info := range infos {
			fmt.Fprintf(out, "%-18s %s\n", info.ID, info.Description)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&skipStages, "skip", nil, "optional stages to leave out (e.g. preview,collect)")
	runCmd.Flags().BoolVar(&showWarnings, "warnings", false, "list every stage warning in the summary")
}

func runPipeline(ctx *module.ModuleContext) (pipeline.State, error) {
	def, err := workflow.LoadDefinition(cfg.PipelinePath())
	if err != nil {
		return pipeline.State{}, fmt.Errorf("load pipeline: %w", err)
	}
	runner, err := pipeline.New(modules.NewRegistry())
	if err != nil {
		return pipeline.State{}, err
	}
	return runner.Run(ctx, def, pipeline.RunOptions{Skip: skipStages})
}

func printSummary(cmd *cobra.Command, ctx *module.ModuleContext, state pipeline.State) {
	if state.RunID == "" {
		return
	}
	journal, _ := ctx.Logbook.Tail(journalLines)
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(state, tui.SummaryOptions{
		Journal:      journal,
		ShowWarnings: showWarnings,
	}))
}

// stageCommands exposes every registered stage as its own subcommand.
func stageCommands(reg *module.Registry) []*cobra.Command {
	infos, err := reg.Infos()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing stages: %v\n", err)
		return nil
	}
	cmds := make([]*cobra.Command, 0, len(infos))
	for _, info := range infos {
		id := info.ID
		cmds = append(cmds, &cobra.Command{
			Use:   id + " [job-id]",
			Short: info.Description,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSingleStage(cmd, id, args)
			},
		})
	}
	return cmds
}

func runSingleStage(cmd *cobra.Command, id string, args []string) error {
	ctx, err := jobContext(args)
	if err != nil {
		return err
	}
	runner, err := pipeline.New(modules.NewRegistry())
	if err != nil {
		return err
	}
	result, err := runner.RunStage(ctx, id)
	out := cmd.OutOrStdout()
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	if err == nil && result.Status == module.StatusFailed {
		err = errors.New(result.Message)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	if msg := strings.TrimSpace(result.Message); msg != "" {
		fmt.Fprintln(out, msg)
	}
	return nil
}
