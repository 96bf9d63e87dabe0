package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var vendorsList bool

// vendorsCmd represents the vendors command
var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Show the vendor allow-list",
	Long: `Load the vendor allow-list (local snapshot first, vendor endpoint second)
and report where it came from and how many names it holds.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cErr := a.close(); cErr != nil && err == nil {
				err = cErr
			}
		}()

		set := a.loadVendors(ctx)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Origin:   %s\n", set.Origin)
		fmt.Fprintf(out, "Snapshot: %s\n", a.vendors.Path())
		fmt.Fprintf(out, "Vendors:  %d\n", len(set.Names))
		if vendorsList {
			fmt.Fprintln(out)
			fmt.Fprintln(out, strings.Join(set.Names.Sorted(), "\n"))
		}
		if len(set.Names) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Empty allow-list: every vendor question will abstain")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
	vendorsCmd.Flags().BoolVar(&vendorsList, "list", false, "print every vendor name")
}
