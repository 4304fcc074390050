package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hengadev/confcrypt"
	"github.com/hengadev/confcrypt/internal/security"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "confcrypt",
		Short: "Encrypt and decrypt configuration values with a password",
		Long: `confcrypt seals configuration values with a key derived from a password.

Values are written as base64(IV ‖ ciphertext ‖ tag). The password is read from
CONFCRYPT_PASSWORD or prompted for. Parameters come from --config, --env-file
or CONFCRYPT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv(confcrypt.EnvConfigFile), "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file with CONFCRYPT_* variables")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newEncryptCmd(opts),
		newDecryptCmd(opts),
		newSaltCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *options) loadConfig() (confcrypt.Config, error) {
	switch {
	case o.configPath != "":
		return confcrypt.LoadConfigFromFile(o.configPath)
	case o.envFile != "":
		return confcrypt.LoadConfigFromDotEnv(o.envFile)
	default:
		return confcrypt.LoadConfigFromEnvironment()
	}
}

// newProvider loads the configuration, reads the password and builds a
// provider. The caller must close it.
func (o *options) newProvider(cmd *cobra.Command) (confcrypt.Provider, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Salt == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("!")+
			" no salt configured; a random salt is used and the result cannot be decrypted later")
	}

	password, err := readPassword(cmd, "Password: ")
	if err != nil {
		return nil, err
	}
	defer security.ZeroBytes(password)

	return confcrypt.NewProvider(cfg, password, confcrypt.WithLogger(o.logger(cmd)))
}

// inputValue returns the single positional argument, or stdin without its
// trailing newline.
func inputValue(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read value from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func describeError(err error) string {
	switch {
	case confcrypt.IsWrongKeyError(err):
		return "wrong password, salt or parameters, or the value was modified"
	case errors.Is(err, confcrypt.ErrInvalidConfiguration):
		return "invalid configuration: " + err.Error()
	default:
		return err.Error()
	}
}
