// Command postgraph serves the blog GraphQL API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "postgraph",
		Short:         "GraphQL API over users, posts and comments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Optional config file (yaml, json or toml)")

	root.AddCommand(newServeCmd(v), newSchemaCmd(v))
	return root
}
