package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/apiclient/internal/config"
	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/internal/logging"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/fivetwenty-io/apiclient/pkg/services"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ConsoleNavigator tells the user where to go when a session expires. The
// CLI has no routes of its own, so the hint is printed.
type ConsoleNavigator struct {
	Out io.Writer
}

// Navigate implements apiclient.Navigator.
func (n *ConsoleNavigator) Navigate(ctx context.Context, route string) {
	_, _ = fmt.Fprintf(n.Out, "Session expired. Credentials cleared; log in again (login route: %s)\n", route)
}

// loadConfig reads the resolved configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger builds the CLI logger from configuration.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}

	return logging.NewConsole(level)
}

// newTokenStore opens the credential store the CLI persists logins to.
func newTokenStore(cfg *config.Config, logger apiclient.Logger) *apiclient.TokenStore {
	return apiclient.NewTokenStore(apiclient.NewFileStorage(cfg.CredentialsFile), apiclient.NewMemoryStorage(), logger)
}

// loadServices wires every configured backend area.
func loadServices(cmd *cobra.Command) (*services.Services, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)

	settings := services.Settings{
		Endpoints:  make(map[string]apiclient.Endpoint),
		LoginRoute: cfg.LoginRoute,
		Debug:      cfg.Debug,
		UserAgent:  cfg.UserAgent,
		RetryMax:   cfg.RetryMax,
	}

	for _, area := range config.Areas {
		if !cfg.HasEndpoint(area) {
			continue
		}

		endpoint, err := cfg.Endpoint(area)
		if err != nil {
			return nil, nil, err
		}

		settings.Endpoints[area] = endpoint
	}

	svc, err := services.New(settings,
		services.WithStorage(apiclient.NewFileStorage(cfg.CredentialsFile), apiclient.NewMemoryStorage()),
		services.WithNavigator(&ConsoleNavigator{Out: cmd.ErrOrStderr()}),
		services.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create services: %w", err)
	}

	return svc, cfg, nil
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

// render writes value as JSON or YAML, or calls table for the table format.
func render(w io.Writer, value interface{}, table func(*tablewriter.Table) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding YAML output: %w", err)
		}

		return nil
	default:
		writer := tablewriter.NewWriter(w)

		err := table(writer)
		if err != nil {
			return err
		}

		err = writer.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// propertyTable renders ordered property/value rows.
func propertyTable(rows [][]string) func(*tablewriter.Table) error {
	return func(table *tablewriter.Table) error {
		table.Header("Property", "Value")

		for _, row := range rows {
			err := table.Append(row)
			if err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}

		return nil
	}
}

// promptLine reads one line from in after printing label.
func promptLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}

	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when source is a terminal
// stdin, and from the shared reader otherwise.
func promptPassword(source io.Reader, in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(syscall.Stdin)

	if file, ok := source.(*os.File); ok && file == os.Stdin && term.IsTerminal(fd) {
		_, _ = fmt.Fprint(out, "Password: ")

		password, err := term.ReadPassword(fd)

		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(password), nil
	}

	return promptLine(in, out, "Password: ")
}

// validateFilePath checks that path is safe to read and is a regular file.
func validateFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	if !filepath.IsAbs(path) && strings.HasPrefix(cleanPath, "..") {
		return "", constants.ErrDirectoryTraversal
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", cleanPath, constants.ErrNotRegularFile)
	}

	return cleanPath, nil
}

// parseKeyValues splits key=value pairs.
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidFieldFlag, pair)
		}

		values[strings.TrimSpace(key)] = value
	}

	return values, nil
}
