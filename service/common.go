package service

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"inkwell/app/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// flagKeys maps command-line flags onto the configuration keys they override.
var flagKeys = map[string]string{
	"addr":           config.KeyAddr,
	"api-url":        config.KeyAPIBaseURL,
	"api-timeout":    config.KeyAPITimeout,
	"revalidate":     config.KeyRevalidate,
	"db-path":        config.KeyDBPath,
	"session-ttl":    config.KeySessionTTL,
	"redirect-delay": config.KeyRedirectDelay,
	"log-level":      config.KeyLogLevel,
	"log-format":     config.KeyLogFormat,
	"log-file":       config.KeyLogFile,
	"cookie-secure":  config.KeyCookieSecure,
}

// loadConfig reads the configuration and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	overrides := make(map[string]string)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(overrides, envFile)
}

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, format+"\n", args...)
}

// confirm asks a yes/no question on cmd's streams. Anything but y/Y is no.
func confirm(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
