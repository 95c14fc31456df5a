package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display CLI build information and, when logged in, the API version of the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version    string `json:"version"               yaml:"version"`
				Commit     string `json:"commit"                yaml:"commit"`
				Built      string `json:"built"                 yaml:"built"`
				APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
			}

			versionInfo := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			// The remote version is best-effort: the command still works
			// before the first login.
			if client, err := CreateClient(context.Background()); err == nil {
				if payload, err := client.Version(context.Background()); err == nil {
					if apiVersion, ok := payload["version"].(string); ok {
						versionInfo.APIVersion = apiVersion
					}
				}
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(versionInfo)
			case OutputFormatYAML:
				return StandardYAMLRenderer(versionInfo)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("Version", versionInfo.Version)
				_ = table.Append("Commit", versionInfo.Commit)
				_ = table.Append("Built", versionInfo.Built)
				if versionInfo.APIVersion != "" {
					_ = table.Append("API Version", versionInfo.APIVersion)
				}
				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}
