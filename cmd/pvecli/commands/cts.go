package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtstack-io/pve-client/pkg/pve"
)

// NewContainersCommand creates the containers command group.
func NewContainersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cts",
		Aliases: []string{"ct", "lxc", "containers"},
		Short:   "Manage LXC containers",
		Long:    "List, inspect, create, configure, and control LXC containers",
	}

	cmd.AddCommand(newContainersListCommand())
	cmd.AddCommand(newContainersGetCommand())
	cmd.AddCommand(newContainerActionCommand("start", "Start a container", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.Containers().Start(ctx, node, vmid)
	}))
	cmd.AddCommand(newContainerActionCommand("stop", "Hard-stop a container", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.Containers().Stop(ctx, node, vmid)
	}))
	cmd.AddCommand(newContainerActionCommand("shutdown", "Gracefully shut down a container", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.Containers().Shutdown(ctx, node, vmid)
	}))
	cmd.AddCommand(newContainersCreateCommand())
	cmd.AddCommand(newContainersSetCommand())
	cmd.AddCommand(newContainersDeleteCommand())

	return cmd
}

func newContainersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list NODE",
		Short: "List containers",
		Long:  "List all LXC containers on a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			containers, err := client.Containers().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list containers: %w", err)
			}

			return outputContainers(containers)
		},
	}
}

func outputContainers(containers []pve.Container) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(containers)
	case OutputFormatYAML:
		return StandardYAMLRenderer(containers)
	default:
		return renderContainersTable(containers)
	}
}

func renderContainersTable(containers []pve.Container) error {
	if len(containers) == 0 {
		_, _ = os.Stdout.WriteString("No containers found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("VMID", "Name", "Status", "CPU", "Memory", "Uptime", "Tags")

	for _, container := range containers {
		memory := "-"
		if container.MaxMem > 0 {
			memory = fmt.Sprintf("%s / %s", formatBytes(container.Mem), formatBytes(container.MaxMem))
		}

		_ = table.Append(fmt.Sprintf("%d", container.VMID), container.Name, container.Status,
			formatCPU(container.CPU), memory, formatUptime(container.Uptime), container.Tags)
	}

	_ = table.Render()

	return nil
}

func newContainersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NODE VMID",
		Short: "Get container status",
		Long:  "Display the current status of an LXC container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			status, err := client.Containers().Current(context.Background(), args[0], vmid)
			if err != nil {
				return fmt.Errorf("failed to get container: %w", err)
			}

			return outputContainerStatus(status)
		},
	}
}

func outputContainerStatus(status *pve.ContainerStatus) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(status)
	case OutputFormatYAML:
		return StandardYAMLRenderer(status)
	default:
		return renderContainerStatusTable(status)
	}
}

func renderContainerStatusTable(status *pve.ContainerStatus) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("VMID", fmt.Sprintf("%d", status.VMID))
	_ = table.Append("Name", status.Name)
	_ = table.Append("Status", status.Status)
	_ = table.Append("CPU", formatCPU(status.CPU))
	_ = table.Append("CPUs", fmt.Sprintf("%d", status.CPUs))
	_ = table.Append("Memory", fmt.Sprintf("%s / %s", formatBytes(status.Mem), formatBytes(status.MaxMem)))
	_ = table.Append("Swap", fmt.Sprintf("%s / %s", formatBytes(status.Swap), formatBytes(status.MaxSwap)))
	_ = table.Append("Uptime", formatUptime(status.Uptime))

	if status.Tags != "" {
		_ = table.Append("Tags", status.Tags)
	}

	if status.HA != nil {
		_ = table.Append("HA Managed", fmt.Sprintf("%d", status.HA.Managed))
	}

	_ = table.Render()

	return nil
}

func newContainerActionCommand(action, short string, run guestActionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   action + " NODE VMID",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			upid, err := run(context.Background(), client, args[0], vmid)
			if err != nil {
				return fmt.Errorf("failed to %s container: %w", action, err)
			}

			return outputTask(upid)
		},
	}
}

func newContainersCreateCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "create NODE",
		Short: "Create a container",
		Long:  "Create a new LXC container; configuration is passed as --set key=value pairs and must include vmid and ostemplate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			upid, err := client.Containers().Create(context.Background(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to create container: %w", err)
			}

			return outputTask(upid)
		},
	}

	cmd.Flags().StringToStringVar(&params, "set", nil, "configuration parameters (key=value)")

	return cmd
}

func newContainersSetCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "set NODE VMID",
		Short: "Update container configuration",
		Long:  "Apply --set key=value configuration changes to an LXC container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[1])
			if err != nil {
				return err
			}

			if len(params) == 0 {
				_, _ = os.Stdout.WriteString("No updates specified\n")

				return nil
			}

			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			err = client.Containers().Update(context.Background(), args[0], vmid, params)
			if err != nil {
				return fmt.Errorf("failed to update container: %w", err)
			}

			fmt.Printf("Successfully updated container %d\n", vmid)

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&params, "set", nil, "configuration parameters (key=value)")

	return cmd
}

func newContainersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NODE VMID",
		Short: "Delete a container",
		Long:  "Destroy an LXC container and its configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			upid, err := client.Containers().Delete(context.Background(), args[0], vmid)
			if err != nil {
				return fmt.Errorf("failed to delete container: %w", err)
			}

			return outputTask(upid)
		},
	}
}
