package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/hengadev/confcrypt"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		output   string
		strategy string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with a fresh salt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", output)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg := confcrypt.Config{Strategy: strategy}
			salt, err := generateSalt(confcrypt.DefaultSaltLength)
			if err != nil {
				return err
			}
			cfg.SetSalt(salt)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := confcrypt.SaveConfig(cfg, output); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Wrote "+color.YellowString(output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "confcrypt.yaml", "configuration file to write")
	cmd.Flags().StringVar(&strategy, "strategy", confcrypt.StrategyDefault, `provider strategy, "default" or "pooled"`)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
