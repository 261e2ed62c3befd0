package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/space-missions/internal/spacex"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export launches and launch pads as JSON",
		Long:  "Write the loaded launches and launch pads as one JSON document. The output can be read back with --data-file.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	a, props, err := openApp(cmd.Context())
	if err != nil {
		exitErr("load launches", err)
	}
	defer a.Close()

	b, _ := json.MarshalIndent(spacex.PageData{
		Launches:   props.FilteredLaunches,
		LaunchPads: props.LaunchPads,
	}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
