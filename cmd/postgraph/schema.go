package main

import (
	"github.com/anujdecoder/postgraph/config"
	"github.com/anujdecoder/postgraph/schema"
	"github.com/anujdecoder/postgraph/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newSchemaCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the introspection result of the schema as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			// The schema does not depend on stored data.
			entities, err := store.OpenMem()
			if err != nil {
				return err
			}
			defer entities.Close()

			srv, err := schema.NewServer(entities, schema.WithPolicy(cfg.Policy()))
			if err != nil {
				return err
			}
			out, err := schema.ComputeSchemaJSON(cmd.Context(), srv.Schema)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
}

func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
