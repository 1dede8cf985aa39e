package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/debategraph/pkg/config"
	"github.com/randalmurphal/debategraph/pkg/store"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization and print its ID",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOrgCreate,
}

func init() {
	orgCmd.AddCommand(orgCreateCmd)
	rootCmd.AddCommand(orgCmd)
}

// runOrgCreate needs only the store, so it works without model credentials.
func runOrgCreate(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s, err := store.New(settings.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	org, err := s.CreateOrganization(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), org.ID)
	return nil
}
