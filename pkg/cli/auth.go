package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/grandjury/grandjury-go/pkg/config"
	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	keyFileName    = "api_key"
	keyringService = "grandjury"
	keyringUser    = "api_key"
)

var (
	apiKeyFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "GrandJury API key",
		Required: true,
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Manage the GrandJury API key",
		Subcommands: []*cli.Command{
			{
				Name:   "set",
				Usage:  "Save the API key in the OS keychain",
				Action: cmdAuthSet,
				Flags: []cli.Flag{
					apiKeyFlag,
				},
			},
			{
				Name:   "show",
				Usage:  "Print the saved API key (masked)",
				Action: cmdAuthShow,
			},
			{
				Name:   "clear",
				Usage:  "Remove the saved API key",
				Action: cmdAuthClear,
			},
		},
	}
)

func cmdAuthSet(c *cli.Context) error {
	key := strings.TrimSpace(c.String(apiKeyFlag.Name))
	if key == "" {
		return cli.ShowSubcommandHelp(c)
	}

	if err := saveAPIKey(key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	fmt.Println("API key saved")
	return nil
}

func cmdAuthShow(c *cli.Context) error {
	key, err := getAPIKey()
	if err != nil {
		return fmt.Errorf("getting API key: %w", err)
	}

	fmt.Println(maskKey(key))
	return nil
}

func cmdAuthClear(c *cli.Context) error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		slog.Debug("keychain delete", "error", err)
	}
	keyPath := path.Join(config.HomeDir(), keyFileName)
	if err := os.Remove(keyPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing key file: %w", err)
	}

	fmt.Println("API key cleared")
	return nil
}

func saveAPIKey(key string) error {
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveAPIKeyFile(key)
	}

	// Clean up legacy file if it exists
	legacyPath := path.Join(config.HomeDir(), keyFileName)
	os.Remove(legacyPath)

	return nil
}

func getAPIKey() (string, error) {
	// Try keychain first
	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return key, nil
	}

	// Fall back to file
	key, err = getAPIKeyFile()
	if err != nil {
		return "", err
	}

	// Migrate to keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, key); migrateErr == nil {
		slog.Info("migrated API key from file to OS keychain")
		legacyPath := path.Join(config.HomeDir(), keyFileName)
		os.Remove(legacyPath)
	}

	return key, nil
}

func saveAPIKeyFile(key string) error {
	keyPath := path.Join(config.HomeDir(), keyFileName)
	return os.WriteFile(keyPath, []byte(key), 0600)
}

func getAPIKeyFile() (string, error) {
	keyPath := path.Join(config.HomeDir(), keyFileName)
	b, err := os.ReadFile(keyPath)
	if err != nil {
		return "", fmt.Errorf("reading API key file %s: %w", keyPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
