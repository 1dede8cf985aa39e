package main

import (
	"github.com/spf13/cobra"

	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/orchestrator"
)

var runOrg string

var runCmd = &cobra.Command{
	Use:   "run <debate-id>...",
	Short: "Run debates to their final decision",
	Long: `Run one or more debates until the Final Decision Agent concludes them.
Several debates run concurrently, bounded by debate.max_concurrent; their
streams are interleaved on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runOrg, "org", "", "organization ID")
	_ = runCmd.MarkFlagRequired("org")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := events.NewWriterSink(cmd.OutOrStdout())
	reqs := make([]orchestrator.RunRequest, len(args))
	for i, id := range args {
		reqs[i] = orchestrator.RunRequest{OrgID: runOrg, DebateID: id, Verbose: a.settings.Debate.Verbose}
	}

	if len(reqs) == 1 {
		return a.runner.Run(cmd.Context(), reqs[0], a.fanout(reqs[0].DebateID, out))
	}
	return a.runner.RunMany(cmd.Context(), reqs, func(req orchestrator.RunRequest) events.Sink {
		return a.fanout(req.DebateID, out)
	})
}
