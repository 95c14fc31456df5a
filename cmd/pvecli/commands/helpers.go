package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/virtstack-io/pve-client/internal/constants"
	"github.com/virtstack-io/pve-client/pkg/pve"
	"github.com/virtstack-io/pve-client/pkg/pveclient"
)

// Output format constants.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in, run 'pvecli login' first")
	ErrTicketExpired   = errors.New("session ticket expired, run 'pvecli login' again")
	ErrEndpointMissing = errors.New("no API endpoint configured")
)

// CLIConfig is what gets persisted in the config file. The password is
// never stored; the issued ticket is, and it stops being usable once it
// expires server-side.
type CLIConfig struct {
	Endpoint      string    `yaml:"endpoint,omitempty"`
	Username      string    `yaml:"username,omitempty"`
	SkipTLSVerify bool      `yaml:"skip_tls_verify,omitempty"`
	Ticket        string    `yaml:"ticket,omitempty"`
	CSRFToken     string    `yaml:"csrf_token,omitempty"`
	IssuedAt      time.Time `yaml:"issued_at,omitempty"`
}

func configFilePath() (string, error) {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		return cfgFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, ".pvecli", "config.yml"), nil
}

// loadCLIConfig reads the persisted configuration. A missing or
// unreadable file yields an empty config, not an error.
func loadCLIConfig() *CLIConfig {
	config := &CLIConfig{}

	path, err := configFilePath()
	if err != nil {
		return config
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func saveCLIConfig(config *CLIConfig) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// resolveEndpoint picks the endpoint from the flag/environment first,
// the persisted config second.
func resolveEndpoint(config *CLIConfig) string {
	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		return endpoint
	}

	return config.Endpoint
}

// CreateClient builds a client from the persisted session. Commands
// other than login go through here.
func CreateClient(ctx context.Context) (pve.Client, error) {
	config := loadCLIConfig()

	endpoint := resolveEndpoint(config)
	if endpoint == "" {
		return nil, ErrEndpointMissing
	}

	if config.Ticket == "" {
		return nil, ErrNotLoggedIn
	}

	if !config.IssuedAt.IsZero() && time.Since(config.IssuedAt) > constants.TicketLifetime {
		return nil, ErrTicketExpired
	}

	client, err := pveclient.New(ctx, &pve.Config{
		BaseURL:       endpoint,
		SkipTLSVerify: viper.GetBool("skip-tls-verify") || config.SkipTLSVerify,
		Debug:         viper.GetBool("debug"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	client.Resume(&pve.Ticket{
		Username:            config.Username,
		Ticket:              config.Ticket,
		CSRFPreventionToken: config.CSRFToken,
	})

	return client, nil
}

// parseVMID parses a numeric guest id argument.
func parseVMID(arg string) (int, error) {
	vmid, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid vmid %q: must be a number", arg)
	}

	return vmid, nil
}

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatUptime renders an uptime in seconds as days and hours.
func formatUptime(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}

	duration := time.Duration(seconds) * time.Second
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// formatCPU renders a cpu load fraction as a percentage.
func formatCPU(cpu float64) string {
	return fmt.Sprintf("%.1f%%", cpu*100)
}
