package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/temirov/model-platform/internal/platform"
)

const (
	flagQuiet = "quiet"

	normalizeLineFormat = "%s -> %s\n"
)

// newNormalizeCommand prints the canonical platform for each argument.
func newNormalizeCommand() *cobra.Command {
	var quiet bool
	command := &cobra.Command{
		Use:     "normalize [platform...]",
		Short:   "Print canonical platform names for aliases",
		Example: "model-platform normalize llama.cpp ModelArk openai",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := cmd.OutOrStdout()
			for _, rawPlatform := range args {
				canonical := platform.Normalize(rawPlatform)
				if quiet {
					if _, err := fmt.Fprintln(output, canonical); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintf(output, normalizeLineFormat, rawPlatform, canonical); err != nil {
					return err
				}
			}
			return nil
		},
	}
	command.Flags().BoolVarP(&quiet, flagQuiet, "q", false, "print only canonical names")
	return command
}
