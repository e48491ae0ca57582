package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"decaf/internal/version"
)

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "pretty", "":
				colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
				if err != nil {
					return err
				}
				enabled := colorFlag == "on" || (colorFlag == "auto" && isTerminal(out))
				fmt.Fprintf(out, "decafc %s\n", version.Colored(info.Version, enabled))
				if info.GitCommit != "" {
					fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
				}
				if info.BuildDate != "" {
					fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
				}
				fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected pretty|json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
