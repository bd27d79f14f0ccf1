/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tomoncle/restcrud/config"
	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/internal/catalog"
	"github.com/tomoncle/restcrud/server"
	"github.com/tomoncle/restcrud/types"
	"github.com/tomoncle/restcrud/utils"
)

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "crudserver",
		Short:         "Serve database entities over REST",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			loaded, err := config.Load(v, v.GetString("config"), v.GetString("env-file"))
			if err != nil {
				return err
			}
			cfg = loaded
			utils.ConfigureLogLevel(cfg.Log.Level)
			utils.ConfigureConsoleLogFormat(cfg.Log.Format)
			return nil
		},
	}
	pflags := root.PersistentFlags()
	pflags.String("config", "", "Path to the YAML config file")
	pflags.String("env-file", "", "Path to a .env file")
	pflags.String("db-type", "", "Database type: sqlite, mysql or postgres")
	pflags.String("db-dsn", "", "Database DSN, overrides the connection fields")
	_ = v.BindPFlag("database.connection.type", pflags.Lookup("db-type"))
	_ = v.BindPFlag("database.connection.dsn", pflags.Lookup("db-dsn"))

	root.AddCommand(newServeCmd(v, &cfg), newSchemaCmd(&cfg))
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}

func newServeCmd(v *viper.Viper, cfg **config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			verbs, err := parseVerbs(v.GetStringSlice("verbs"), v.GetBool("read-only"))
			if err != nil {
				return err
			}
			return serve(ctx, *cfg, verbs)
		},
	}
	cmd.Flags().String("addr", "", "Listen address, e.g. :8080")
	cmd.Flags().Bool("read-only", false, "Expose only the read routes")
	cmd.Flags().StringSlice("verbs", nil, "Routes to expose: create,list,get,range,count,update,delete")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func newSchemaCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the tables of registered models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := *cfg
			if _, err := database.InitDatabaseWithOptions(cmd.Context(), &c.Database, true); err != nil {
				return err
			}
			defer database.CloseDB()
			fmt.Fprintf(cmd.OutOrStdout(), "ensured %d table(s)\n", len(database.RegisteredModelInstances()))
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, verbs []types.Verb) error {
	if _, err := database.InitDB(&cfg.Database); err != nil {
		return err
	}
	defer database.CloseDB()

	srv := server.NewServer(cfg.Server)
	catalog.Mount(srv.Engine(), verbs...)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func parseVerbs(names []string, readOnly bool) ([]types.Verb, error) {
	if readOnly {
		return types.ReadVerbs(), nil
	}
	verbs := make([]types.Verb, 0, len(names))
	for _, name := range names {
		verb, ok := types.ParseVerb(name)
		if !ok {
			return nil, fmt.Errorf("unknown verb %q", name)
		}
		verbs = append(verbs, verb)
	}
	return verbs, nil
}
