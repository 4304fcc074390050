package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEncryptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt [value]",
		Short: "Encrypt a value read from the argument or stdin",
		Example: `  CONFCRYPT_SALT=ASNFZ4mrze8= confcrypt encrypt 'postgres://app:secret@db/app'
  echo -n "$TOKEN" | confcrypt encrypt --config confcrypt.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := inputValue(cmd, args)
			if err != nil {
				return err
			}

			provider, err := opts.newProvider(cmd)
			if err != nil {
				return err
			}
			defer provider.Close()

			sealed, err := provider.Encrypt(value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}

func newDecryptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt [value]",
		Short: "Decrypt a value read from the argument or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := inputValue(cmd, args)
			if err != nil {
				return err
			}

			provider, err := opts.newProvider(cmd)
			if err != nil {
				return err
			}
			defer provider.Close()

			plain, err := provider.Decrypt(value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain)
			return nil
		},
	}
}
