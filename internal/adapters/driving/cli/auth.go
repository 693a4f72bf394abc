package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/custodia-labs/repovet-cli/internal/adapters/driven/config/file"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure credentials",
}

var authGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Set the GitHub personal access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := promptSecret(cmd, "GitHub token: ")
		if err != nil {
			return err
		}
		if err := configStore.Update(func(c *configfile.Config) {
			c.GitHub.Token = token
		}); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		cmd.Printf("Token saved to %s\n", configStore.Path())
		return nil
	},
}

var authSearchCmd = &cobra.Command{
	Use:   "search <engine-id>",
	Short: "Set the web-search API key and engine ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := promptSecret(cmd, "Search API key: ")
		if err != nil {
			return err
		}
		if err := configStore.Update(func(c *configfile.Config) {
			c.Search.APIKey = key
			c.Search.EngineID = args[0]
		}); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		cmd.Printf("Search credentials saved to %s\n", configStore.Path())
		return nil
	},
}

func init() {
	authCmd.AddCommand(authGitHubCmd)
	authCmd.AddCommand(authSearchCmd)
	rootCmd.AddCommand(authCmd)
}

// promptSecret reads a secret without echo when stdin is a terminal, and
// falls back to a plain line read otherwise (piped input, tests).
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
