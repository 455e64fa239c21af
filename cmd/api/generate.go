package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var generateDepth int

var generateCmd = &cobra.Command{
	Use:   "generate <idea>",
	Short: "Print the child labels generated for an idea",
	Long: `generate runs the same label pipeline the API uses for one node and prints
the result. Without OPENAI_API_KEY it shows the built-in labels.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := strings.Join(args, " ")
		generator, cache := buildGenerator(cfg, logger)
		if cache != nil {
			defer cache.Close()
		}

		source := "built-in"
		if generator.RemoteEnabled() {
			source = "remote"
		}
		heading := color.New(color.FgCyan, color.Bold)
		heading.Fprintf(cmd.OutOrStdout(), "%s ", seed)
		color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "(depth %d, %s)\n", generateDepth, source)

		bullet := color.New(color.FgGreen).Sprint("-")
		for _, label := range generator.Generate(cmd.Context(), seed, generateDepth) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", bullet, label)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVarP(&generateDepth, "depth", "d", 0, "depth of the node being expanded (0 = root)")
}
