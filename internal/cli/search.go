package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/space-missions/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [keywords]",
		Short: "Search launches",
		Long: "Filter launches by keyword (flight number, rocket name or primary payload id), " +
			"launch pad site id and year range. Without arguments every launch is listed.",
		Run: runSearch,
	}

	cmd.Flags().StringP("pad", "p", model.Any, "Launch pad site id")
	cmd.Flags().String("min-year", model.Any, "First launch year (inclusive)")
	cmd.Flags().String("max-year", model.Any, "Last launch year (inclusive)")
	cmd.Flags().Bool("keys-only", false, "Only output flight numbers")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	pad, _ := cmd.Flags().GetString("pad")
	minYear, _ := cmd.Flags().GetString("min-year")
	maxYear, _ := cmd.Flags().GetString("max-year")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	a, _, err := openApp(cmd.Context())
	if err != nil {
		exitErr("load launches", err)
	}
	defer a.Close()

	a.view.ApplyFilters(model.Criteria{
		Keywords:  strings.Join(args, " "),
		LaunchPad: pad,
		MinYear:   minYear,
		MaxYear:   maxYear,
	})
	props := a.view.Render()

	out := cmd.OutOrStdout()
	if keysOnly {
		for _, l := range props.FilteredLaunches {
			fmt.Fprintln(out, l.FlightNumber)
		}
		return
	}

	if formatFlag == "text" {
		writeLaunchesText(out, props.FilteredLaunches)
		return
	}

	b, _ := json.MarshalIndent(props.FilteredLaunches, "", "  ")
	fmt.Fprintln(out, string(b))
}

func writeLaunchesText(w io.Writer, launches []model.Launch) {
	for _, l := range launches {
		payload, _ := l.PrimaryPayloadID()
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n",
			l.FlightNumber,
			l.LaunchDateLocal.Format("2006-01-02"),
			l.Rocket.RocketName,
			payload,
			l.LaunchSite.SiteID)
	}
}
