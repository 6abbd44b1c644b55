package main

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/persistence/middleware"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration and stored preferences",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		cfg := e.cfg
		if cfg.EncryptionKey != "" {
			cfg.EncryptionKey = middleware.Masked
		}
		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.store.Set(cmd.Context(), map[string]string{domain.KeyAPICredential: args[0]}); err != nil {
			return fmt.Errorf("store api key: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "API key saved (%s)\n", e.cfg.Credential)
		return nil
	},
}

var configPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "List stored preferences with credentials masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		view := middleware.Chain(e.store,
			middleware.NewRedactMiddleware([]string{"^" + regexp.QuoteMeta(domain.KeyAPICredential) + "$"}))
		vals, err := view.Get(cmd.Context(), domain.KeyAPICredential, domain.KeyTheme)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, vals[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetKeyCmd, configPrefsCmd)
}
