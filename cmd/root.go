package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "corpusfilter",
		Short: "Filter and annotate a web-document corpus for LM training",
	}

	root.AddCommand(
		cleanCMD(),
		langidCMD(),
		harmfulCMD(),
		qualityCMD(),
		maskpiiCMD(),
		extractCMD(),
		serveCMD(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
