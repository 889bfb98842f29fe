package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mypromo/connect-sdk-test/internal/config"
	"github.com/mypromo/connect-sdk-test/internal/report"
)

var listTables string

func init() {
	listCmd.Flags().StringVar(&listTables, "field-tables", "", "Field table override file to check while listing")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios in run order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := buildSuite(&config.Config{FieldTables: listTables}, nil)
		if err != nil {
			return err
		}
		for _, sc := range scenarios {
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", sc.Name, report.Banner(sc.Name, sc.Title))
		}
		return nil
	},
}
