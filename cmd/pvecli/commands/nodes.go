package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtstack-io/pve-client/pkg/pve"
)

// NewNodesCommand creates the nodes command group.
func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node"},
		Short:   "Manage cluster nodes",
		Long:    "List cluster nodes and inspect their status",
	}

	cmd.AddCommand(newNodesListCommand())
	cmd.AddCommand(newNodesGetCommand())
	cmd.AddCommand(newNodesStatusCommand())

	return cmd
}

func newNodesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cluster nodes",
		Long:  "List all nodes in the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			nodes, err := client.Nodes().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}

			return outputNodes(nodes)
		},
	}
}

func outputNodes(nodes []pve.Node) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(nodes)
	case OutputFormatYAML:
		return StandardYAMLRenderer(nodes)
	default:
		return renderNodesTable(nodes)
	}
}

func renderNodesTable(nodes []pve.Node) error {
	if len(nodes) == 0 {
		_, _ = os.Stdout.WriteString("No nodes found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Node", "Status", "CPU", "Memory", "Uptime")

	for _, node := range nodes {
		memory := "-"
		if node.MaxMem > 0 {
			memory = fmt.Sprintf("%s / %s", formatBytes(node.Mem), formatBytes(node.MaxMem))
		}

		_ = table.Append(node.Node, node.Status, formatCPU(node.CPU), memory, formatUptime(node.Uptime))
	}

	_ = table.Render()

	return nil
}

func newNodesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NODE",
		Short: "Get node details",
		Long:  "Display the listing entry of a single node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			node, err := client.Nodes().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get node: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(node)
			case OutputFormatYAML:
				return StandardYAMLRenderer(node)
			default:
				return renderNodesTable([]pve.Node{*node})
			}
		},
	}
}

func newNodesStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status NODE",
		Short: "Show node status",
		Long:  "Display detailed status of a node: load, memory, swap, root filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			status, err := client.Nodes().Status(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get node status: %w", err)
			}

			return outputNodeStatus(args[0], status)
		},
	}
}

func outputNodeStatus(node string, status *pve.NodeStatus) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(status)
	case OutputFormatYAML:
		return StandardYAMLRenderer(status)
	default:
		return renderNodeStatusTable(node, status)
	}
}

func renderNodeStatusTable(node string, status *pve.NodeStatus) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Node", node)
	_ = table.Append("Uptime", formatUptime(status.Uptime))
	_ = table.Append("CPU", formatCPU(status.CPU))

	if len(status.LoadAvg) > 0 {
		_ = table.Append("Load", strings.Join(status.LoadAvg, " "))
	}

	if status.PVEVersion != "" {
		_ = table.Append("PVE Version", status.PVEVersion)
	}

	if status.KVersion != "" {
		_ = table.Append("Kernel", status.KVersion)
	}

	_ = table.Append("Memory", fmt.Sprintf("%s / %s", formatBytes(status.Memory.Used), formatBytes(status.Memory.Total)))
	_ = table.Append("Swap", fmt.Sprintf("%s / %s", formatBytes(status.Swap.Used), formatBytes(status.Swap.Total)))
	_ = table.Append("Root FS", fmt.Sprintf("%s / %s", formatBytes(status.RootFS.Used), formatBytes(status.RootFS.Total)))

	_ = table.Render()

	return nil
}
