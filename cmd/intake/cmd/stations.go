package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/station"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/tasks"
)

const (
	flagAll     = "all"
	flagRefresh = "refresh"
)

func NewStationsCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stations",
		Aliases: []string{"station", "s"},
		Short:   "show the wards a patient can be assigned to",
	}
	cmd.AddCommand(newStationsListCmd(ctx, gitsha))
	return cmd
}

func newStationsListCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list stations ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool(flagAll)
			refresh, _ := cmd.Flags().GetBool(flagRefresh)

			return run(ctx, cmd, gitsha, func(a *app) error {
				if refresh {
					_, err := tasks.Run(a.coord, "refresh stations", func(ctx context.Context) (struct{}, error) {
						return struct{}{}, a.stations.Refresh(ctx)
					}).Await(ctx)
					if err != nil {
						return a.ui.takeFailure(err)
					}
				}
				load := a.stations.Selectable
				if all {
					load = a.stations.Stations
				}
				stations, err := tasks.Run(a.coord, "stations", load).Await(ctx)
				if err != nil {
					return a.ui.takeFailure(err)
				}
				printStations(cmd, stations)
				return nil
			})
		},
	}
	cmd.Flags().Bool(flagAll, false, "include stations hidden from selection lists")
	cmd.Flags().Bool(flagRefresh, false, "reload the station list from the database first")
	return cmd
}

func printStations(cmd *cobra.Command, stations []station.Station) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tNAME\tBEDS")
	for _, s := range stations {
		fmt.Fprintf(w, "%d\t%s\t%d\n", s.Room, s.Name, s.MaxBeds)
	}
	w.Flush()
}
