package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	userAddName     string
	userAddEmail    string
	userAddPassword string
)

var userAddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Register a user in the credential file",
	Long: `Adds a user to the credential CSV without going through the API.
The password is read from the first line of stdin when --password is omitted.

Example:
  echo 's3cret' | mediscan useradd --username alice --email alice@example.com`,
	RunE: runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userAddName, "username", "", "username (required)")
	userAddCmd.Flags().StringVar(&userAddEmail, "email", "", "email address")
	userAddCmd.Flags().StringVar(&userAddPassword, "password", "", "password; read from stdin when empty")
	_ = userAddCmd.MarkFlagRequired("username")
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	password := userAddPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	ok, err := creds.Register(strings.TrimSpace(userAddName), password, strings.TrimSpace(userAddEmail))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("username %q already exists", userAddName)
	}

	log.Infow("user registered", "username", userAddName, "store", cfg.Credentials.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", userAddName)
	return nil
}
