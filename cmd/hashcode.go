package cmd

import (
	"fmt"

	"freight-billing-backend/auth"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var hashCost int

var hashCodeCmd = &cobra.Command{
	Use:   "hash-code [access-code]",
	Short: "Print a bcrypt hash for ACCESS_CODE_HASHES",
	Example: `  freight-billing hash-code 'depot-7'
  ACCESS_CODE_HASHES="$(freight-billing hash-code 'depot-7')" freight-billing serve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := auth.HashCode(args[0], hashCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	hashCodeCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	rootCmd.AddCommand(hashCodeCmd)
}
