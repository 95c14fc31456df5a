package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtstack-io/pve-client/pkg/pve"
)

// NewClusterCommand creates the cluster command group.
func NewClusterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Inspect the cluster",
		Long:  "Display cluster-wide resources, status, and recent tasks",
	}

	cmd.AddCommand(newClusterResourcesCommand())
	cmd.AddCommand(newClusterStatusCommand())
	cmd.AddCommand(newClusterTasksCommand())
	cmd.AddCommand(newClusterNextIDCommand())

	return cmd
}

func newClusterResourcesCommand() *cobra.Command {
	var resourceType string

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List cluster resources",
		Long:  "List all resources known to the cluster, optionally filtered by type",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			resources, err := client.Cluster().Resources(context.Background(), resourceType)
			if err != nil {
				return fmt.Errorf("failed to list cluster resources: %w", err)
			}

			return outputClusterResources(resources)
		},
	}

	cmd.Flags().StringVar(&resourceType, "type", "", "filter by resource type (vm, storage, node, sdn)")

	return cmd
}

func outputClusterResources(resources []pve.ClusterResource) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(resources)
	case OutputFormatYAML:
		return StandardYAMLRenderer(resources)
	default:
		return renderClusterResourcesTable(resources)
	}
}

func renderClusterResourcesTable(resources []pve.ClusterResource) error {
	if len(resources) == 0 {
		_, _ = os.Stdout.WriteString("No resources found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Type", "Node", "Name", "Status")

	for _, resource := range resources {
		_ = table.Append(resource.ID, resource.Type, resource.Node, resource.Name, resource.Status)
	}

	_ = table.Render()

	return nil
}

func newClusterStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cluster status",
		Long:  "Display quorum state and per-node membership of the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			entries, err := client.Cluster().Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get cluster status: %w", err)
			}

			return outputClusterStatus(entries)
		},
	}
}

func outputClusterStatus(entries []pve.ClusterStatusEntry) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(entries)
	case OutputFormatYAML:
		return StandardYAMLRenderer(entries)
	default:
		return renderClusterStatusTable(entries)
	}
}

func renderClusterStatusTable(entries []pve.ClusterStatusEntry) error {
	if len(entries) == 0 {
		_, _ = os.Stdout.WriteString("No cluster status available\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Type", "Name", "IP", "Online")

	for _, entry := range entries {
		online := "-"

		switch entry.Type {
		case "cluster":
			online = fmt.Sprintf("quorate=%d", entry.Quorate)
		case "node":
			online = fmt.Sprintf("%d", entry.Online)
		}

		_ = table.Append(entry.ID, entry.Type, entry.Name, entry.IP, online)
	}

	_ = table.Render()

	return nil
}

func newClusterTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List recent tasks",
		Long:  "List recent cluster-wide tasks and their exit status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			tasks, err := client.Cluster().Tasks(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			return outputClusterTasks(tasks)
		},
	}
}

func outputClusterTasks(tasks []pve.Task) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(tasks)
	case OutputFormatYAML:
		return StandardYAMLRenderer(tasks)
	default:
		return renderClusterTasksTable(tasks)
	}
}

func renderClusterTasksTable(tasks []pve.Task) error {
	if len(tasks) == 0 {
		_, _ = os.Stdout.WriteString("No tasks found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Node", "Type", "User", "Status", "Started")

	for _, task := range tasks {
		started := "-"
		if task.StartTime > 0 {
			started = time.Unix(task.StartTime, 0).Format("2006-01-02 15:04:05")
		}

		status := task.Status
		if task.ExitStatus != "" {
			status = task.ExitStatus
		}

		_ = table.Append(task.Node, task.Type, task.User, status, started)
	}

	_ = table.Render()

	return nil
}

func newClusterNextIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nextid",
		Short: "Show the next free VMID",
		Long:  "Display the next guest id that is free cluster-wide",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			id, err := client.Cluster().NextID(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get next free vmid: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(map[string]int{"vmid": id})
			case OutputFormatYAML:
				return StandardYAMLRenderer(map[string]int{"vmid": id})
			default:
				fmt.Println(id)

				return nil
			}
		},
	}
}
