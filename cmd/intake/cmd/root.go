package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	flagEnvFile  = "env-file"
	flagDemo     = "demo"
	flagLogLevel = "log-level"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "intake",
		Short:         "patient intake: search, admit, edit and discharge patients",
		Long:          "intake drives the patient intake core from the command line, the same way the desktop form does",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(
		NewVersionCmd(gitsha),
		NewPatientsCmd(ctx, gitsha),
		NewStationsCmd(ctx, gitsha),
	)

	pf := cmd.PersistentFlags()
	pf.String(flagEnvFile, ".env", "configuration file in .env format")
	pf.Bool(flagDemo, false, "use an in-memory store with sample wards instead of PostgreSQL")
	pf.String(flagLogLevel, "", "override LOG_LEVEL (debug, info, warn, error)")
	return cmd
}

func NewVersionCmd(gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
}
