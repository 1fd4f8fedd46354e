package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"iptoasn/internal/app/server"
)

var asnCmd = &cobra.Command{
	Use:   "asn <number>",
	Short: "Show the directory entry for one autonomous system",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := server.ParseASN(args[0])
		if err != nil {
			return fmt.Errorf("invalid AS number %q: %w", args[0], err)
		}

		ix, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}
		info, ok := ix.LookupASN(n)
		if !ok {
			return fmt.Errorf("AS%d not found", n)
		}
		entry := server.NewASNEntry(info)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			line, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("encode AS%d: %w", n, err)
			}
			cmd.Println(string(line))
			return nil
		}

		cmd.Printf("AS Number:      AS%d\n", entry.ASNumber)
		cmd.Printf("Country Code:   %s\n", entry.CountryCode)
		cmd.Printf("Description:    %s\n", entry.Description)
		cmd.Printf("Announced:      %d ranges\n", entry.Ranges)
		return nil
	},
}

func init() {
	asnCmd.Flags().Bool("json", false, "print the entry as JSON")
	rootCmd.AddCommand(asnCmd)
}
