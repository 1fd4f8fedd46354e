package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"iptoasn/internal/app/server"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <ip> [<ip>...]",
	Short: "Look up which AS announces the given addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		for _, raw := range args {
			resp := server.ResolveIP(ix, raw)
			if asJSON {
				line, err := json.Marshal(resp)
				if err != nil {
					return fmt.Errorf("encode answer for %s: %w", raw, err)
				}
				cmd.Println(string(line))
				continue
			}
			cmd.Println(resp.String())
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("json", false, "print one JSON document per address")
	rootCmd.AddCommand(lookupCmd)
}
