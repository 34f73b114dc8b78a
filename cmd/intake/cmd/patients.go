package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/tasks"
)

const (
	flagFile  = "file"
	flagPage  = "page"
	flagLimit = "limit"
)

func NewPatientsCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patients",
		Aliases: []string{"patient", "p"},
		Short:   "search, show, save and delete patients",
	}
	cmd.AddCommand(
		newListCmd(ctx, gitsha),
		newSearchCmd(ctx, gitsha),
		newShowCmd(ctx, gitsha),
		newSaveCmd(ctx, gitsha),
		newValidateCmd(ctx, gitsha),
		newDeleteCmd(ctx, gitsha),
	)
	return cmd
}

func newListCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list all patients ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, cmd, gitsha, func(a *app) error {
				return loadPatients(ctx, cmd, a, "")
			})
		},
	}
	addPageFlags(cmd)
	return cmd
}

func newSearchCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "case-insensitive search over name, SVNR, phone, address and reason",
		Long:  "search lists every patient whose name, SVNR, phone, address or reason contains QUERY. An empty query lists everyone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, cmd, gitsha, func(a *app) error {
				return loadPatients(ctx, cmd, a, strings.Join(args, " "))
			})
		},
	}
	addPageFlags(cmd)
	return cmd
}

func loadPatients(ctx context.Context, cmd *cobra.Command, a *app, query string) error {
	page, _ := cmd.Flags().GetInt(flagPage)
	limit, _ := cmd.Flags().GetInt(flagLimit)
	a.ui.SetPage(pagination.New(page, limit))

	if _, err := a.lookup(ctx); err != nil {
		return err
	}
	if err := a.coord.Load(query); err != nil {
		return err
	}
	a.coord.Wait()
	return a.ui.takeFailure(nil)
}

func newShowCmd(ctx context.Context, gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "print one patient as a patient file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(ctx, cmd, gitsha, func(a *app) error {
				p, err := tasks.Run(a.coord, "show", func(ctx context.Context) (*patient.Patient, error) {
					return a.service.Get(ctx, id)
				}).Await(ctx)
				if err != nil {
					return a.ui.takeFailure(err)
				}
				return writeRecord(cmd.OutOrStdout(), *p)
			})
		},
	}
}

func newSaveCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save -f FILE",
		Short: "admit a new patient, or replace the stored one when the file has an id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(flagFile)
			candidate, err := readRecord(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(ctx, cmd, gitsha, func(a *app) error {
				var saved *patient.Patient
				_, err := a.coord.Mutate("save", func(ctx context.Context) error {
					var err error
					saved, err = a.service.Save(ctx, &candidate)
					return err
				}).Await(ctx)
				if err != nil {
					return a.ui.takeFailure(err)
				}
				return writeRecord(cmd.OutOrStdout(), *saved)
			})
		},
	}
	addFileFlag(cmd)
	return cmd
}

func newValidateCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate -f FILE",
		Short: "check a patient file without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(flagFile)
			candidate, err := readRecord(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(ctx, cmd, gitsha, func(a *app) error {
				result, err := tasks.Run(a.coord, "validate", func(ctx context.Context) (patient.Result, error) {
					return a.service.ValidateOnly(ctx, &candidate)
				}).Await(ctx)
				if err != nil {
					return a.ui.takeFailure(err)
				}
				if !result.OK() {
					return &shellError{Failure: tasks.Classify(result.Err())}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return writeRecord(cmd.OutOrStdout(), result.Patient)
			})
		},
	}
	addFileFlag(cmd)
	return cmd
}

func newDeleteCmd(ctx context.Context, gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "delete a patient; deleting an unknown id succeeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(ctx, cmd, gitsha, func(a *app) error {
				_, err := a.coord.Mutate("delete", func(ctx context.Context) error {
					return a.service.Delete(ctx, id)
				}).Await(ctx)
				if err != nil {
					return a.ui.takeFailure(err)
				}
				return nil
			})
		},
	}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagPage, pagination.DefaultPage, "page to show")
	cmd.Flags().Int(flagLimit, pagination.DefaultLimit, fmt.Sprintf("patients per page (at most %d)", pagination.MaxLimit))
}

func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(flagFile, "f", "-", "patient file in YAML, - for stdin")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid patient id %q", s)
	}
	return id, nil
}
