package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"sg-audit/cmd/audit"
)

// Execute - parse CLI arguments and execute command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Println("There was an error while executing sg-audit!", err)
		os.Exit(1)
	}
}

var (
	appVersion = "development"
	gitCommit  = "commit"
	rootCmd    = &cobra.Command{
		Use:              "sg-audit",
		Short:            "Classify security groups by how they are actually used.",
		Long:             ``,
		Version:          fmt.Sprintf("%s (%s)", appVersion, gitCommit),
		TraverseChildren: true,
	}

	regions []string
	profile string
	verbose bool
)

func init() {
	includeValidateFlags(rootCmd)
	rootCmd.AddCommand(audit.Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceVar(&regions, "region", nil,
		"AWS Region to analyze. It can accept multiple values divided by comma.")
	cmd.PersistentFlags().StringVar(&profile, "profile", "",
		"[Optional] Profile.")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"[Optional] Show per-group details. Does not change classification results.")
}
