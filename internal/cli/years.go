package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List years that have launches",
		Run:   runYears,
	}

	RootCmd.AddCommand(cmd)
}

func runYears(cmd *cobra.Command, args []string) {
	a, props, err := openApp(cmd.Context())
	if err != nil {
		exitErr("load launches", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, y := range props.AvailableYears {
			fmt.Fprintln(out, y)
		}
		return
	}

	b, _ := json.Marshal(props.AvailableYears)
	fmt.Fprintln(out, string(b))
}
