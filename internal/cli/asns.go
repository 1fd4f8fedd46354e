package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"iptoasn/internal/app/server"
)

var asnsCmd = &cobra.Command{
	Use:   "asns",
	Short: "List every autonomous system in the dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			entries := make([]server.ASNEntry, 0, 1024)
			for info := range ix.ASNs() {
				entries = append(entries, server.NewASNEntry(info))
			}
			out, err := json.Marshal(entries)
			if err != nil {
				return fmt.Errorf("encode directory: %w", err)
			}
			cmd.Println(string(out))
			return nil
		}

		for info := range ix.ASNs() {
			cmd.Println(server.NewASNEntry(info).String())
		}
		return nil
	},
}

func init() {
	asnsCmd.Flags().Bool("json", false, "print the directory as a JSON array")
	rootCmd.AddCommand(asnsCmd)
}
