package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "pads",
		Short: "List launch pads",
		Run:   runPads,
	}

	RootCmd.AddCommand(cmd)
}

func runPads(cmd *cobra.Command, args []string) {
	a, props, err := openApp(cmd.Context())
	if err != nil {
		exitErr("load launch pads", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, p := range props.LaunchPads {
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.SiteID, p.Status, p.Name)
		}
		return
	}

	b, _ := json.MarshalIndent(props.LaunchPads, "", "  ")
	fmt.Fprintln(out, string(b))
}
