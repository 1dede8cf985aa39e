package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/orchestrator"
)

var (
	createOrg     string
	createProject string
)

var createCmd = &cobra.Command{
	Use:   "create <topic>",
	Short: "Create a debate and its participants",
	Long:  `Title a new debate, generate its participants and save them. The setup stream is written to stdout.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createOrg, "org", "", "organization ID")
	createCmd.Flags().StringVar(&createProject, "project", "", "project ID (default: the organization's Default project)")
	_ = createCmd.MarkFlagRequired("org")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	project := createProject
	if project == "" {
		project = a.settings.Debate.ProjectID
	}

	_, err = a.creator.Create(cmd.Context(), orchestrator.CreateRequest{
		OrgID:     createOrg,
		ProjectID: project,
		Topic:     strings.Join(args, " "),
		Verbose:   a.settings.Debate.Verbose,
	}, events.NewWriterSink(cmd.OutOrStdout()))
	return err
}
