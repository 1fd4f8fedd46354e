package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"iptoasn/internal/app/server"
)

var subnetsCmd = &cobra.Command{
	Use:   "subnets <number>",
	Short: "Print the aggregated CIDR blocks announced by one AS",
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
		prefixes, ok := ix.Subnets(n)
		if !ok {
			return fmt.Errorf("AS%d not found", n)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			resp := server.SubnetsResponse{ASNumber: n, Subnets: make([]string, 0, len(prefixes))}
			for _, p := range prefixes {
				resp.Subnets = append(resp.Subnets, p.String())
			}
			line, err := json.Marshal(resp)
			if err != nil {
				return fmt.Errorf("encode AS%d subnets: %w", n, err)
			}
			cmd.Println(string(line))
			return nil
		}

		for _, p := range prefixes {
			cmd.Println(p.String())
		}
		return nil
	},
}

func init() {
	subnetsCmd.Flags().Bool("json", false, "print the subnets as JSON")
	rootCmd.AddCommand(subnetsCmd)
}
