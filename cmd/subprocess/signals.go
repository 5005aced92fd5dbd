package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MBlackPower/subprocess"
)

func newSignalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signals",
		Short: "List the signal registry for this platform",
		Run: func(cmd *cobra.Command, _ []string) {
			absent := color.New(color.Faint)
			for _, name := range subprocess.Signals() {
				if num, ok := subprocess.SignalNum(name); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", name, num)
				} else {
					_, _ = absent.Fprintf(cmd.OutOrStdout(), "%-10s absent\n", name)
				}
			}
		},
	}
}
