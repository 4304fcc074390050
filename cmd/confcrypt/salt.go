package main

import (
	"encoding/base64"
	"fmt"

	"github.com/hengadev/confcrypt"
	"github.com/spf13/cobra"
)

func newSaltCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "salt",
		Short: "Print a random base64 salt for CONFCRYPT_SALT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			salt, err := generateSalt(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(salt))
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", confcrypt.DefaultSaltLength, "salt length in bytes")
	return cmd
}

func generateSalt(length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("salt length must be positive, got %d", length)
	}
	engine, err := confcrypt.NewEngine(confcrypt.WithSaltLength(length))
	if err != nil {
		return nil, err
	}
	return engine.CreateSalt(length)
}
