package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/claimflow/internal/artifact"
	"github.com/kingrea/claimflow/internal/tui"
	"github.com/kingrea/claimflow/internal/workflow"
)

var intakeCmd = &cobra.Command{
	Use:   "intake [job-id]",
	Short: "Answer the cause-of-loss questions and write job_metadata.json",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := cfg.ResolveJob(args)
		job := workflow.New(id, cfg.DataRoot(), cfg.OutRoot())

		final, err := tea.NewProgram(tui.NewIntake(id)).Run()
		if err != nil {
			return fmt.Errorf("intake: %w", err)
		}
		form, ok := final.(*tui.Intake)
		if !ok || !form.Completed() {
			fmt.Fprintln(cmd.OutOrStdout(), "Intake cancelled; nothing written.")
			return nil
		}
		store := artifact.NewStore(job)
		if err := store.WriteDocument(artifact.JobMetadata, form.Metadata()); err != nil {
			return err
		}
		logger.Info("intake saved")
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", store.Path(artifact.JobMetadata))
		return nil
	},
}
