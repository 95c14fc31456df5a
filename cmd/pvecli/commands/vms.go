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

// NewVMsCommand creates the virtual machines command group.
func NewVMsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vms",
		Aliases: []string{"vm", "qemu"},
		Short:   "Manage QEMU virtual machines",
		Long:    "List, inspect, create, configure, and control QEMU virtual machines",
	}

	cmd.AddCommand(newVMsListCommand())
	cmd.AddCommand(newVMsGetCommand())
	cmd.AddCommand(newVMActionCommand("start", "Start a virtual machine", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.VirtualMachines().Start(ctx, node, vmid)
	}))
	cmd.AddCommand(newVMActionCommand("stop", "Hard-stop a virtual machine", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.VirtualMachines().Stop(ctx, node, vmid)
	}))
	cmd.AddCommand(newVMActionCommand("shutdown", "Gracefully shut down a virtual machine", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.VirtualMachines().Shutdown(ctx, node, vmid)
	}))
	cmd.AddCommand(newVMActionCommand("reboot", "Reboot a virtual machine", func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error) {
		return client.VirtualMachines().Reboot(ctx, node, vmid)
	}))
	cmd.AddCommand(newVMsCreateCommand())
	cmd.AddCommand(newVMsSetCommand())
	cmd.AddCommand(newVMsDeleteCommand())

	return cmd
}

func newVMsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list NODE",
		Short: "List virtual machines",
		Long:  "List all QEMU virtual machines on a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vms, err := client.VirtualMachines().List(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list virtual machines: %w", err)
			}

			return outputVMs(vms)
		},
	}
}

func outputVMs(vms []pve.VirtualMachine) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(vms)
	case OutputFormatYAML:
		return StandardYAMLRenderer(vms)
	default:
		return renderVMsTable(vms)
	}
}

func renderVMsTable(vms []pve.VirtualMachine) error {
	if len(vms) == 0 {
		_, _ = os.Stdout.WriteString("No virtual machines found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("VMID", "Name", "Status", "CPU", "Memory", "Uptime")

	for _, vm := range vms {
		memory := "-"
		if vm.MaxMem > 0 {
			memory = fmt.Sprintf("%s / %s", formatBytes(vm.Mem), formatBytes(vm.MaxMem))
		}

		_ = table.Append(fmt.Sprintf("%d", vm.VMID), vm.Name, vm.Status, formatCPU(vm.CPU), memory, formatUptime(vm.Uptime))
	}

	_ = table.Render()

	return nil
}

func newVMsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NODE VMID",
		Short: "Get virtual machine status",
		Long:  "Display the current status of a QEMU virtual machine",
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

			status, err := client.VirtualMachines().Current(context.Background(), args[0], vmid)
			if err != nil {
				return fmt.Errorf("failed to get virtual machine: %w", err)
			}

			return outputVMStatus(status)
		},
	}
}

func outputVMStatus(status *pve.VMStatus) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(status)
	case OutputFormatYAML:
		return StandardYAMLRenderer(status)
	default:
		return renderVMStatusTable(status)
	}
}

func renderVMStatusTable(status *pve.VMStatus) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("VMID", fmt.Sprintf("%d", status.VMID))
	_ = table.Append("Name", status.Name)
	_ = table.Append("Status", status.Status)

	if status.QMPStatus != "" {
		_ = table.Append("QMP Status", status.QMPStatus)
	}

	_ = table.Append("CPU", formatCPU(status.CPU))
	_ = table.Append("CPUs", fmt.Sprintf("%d", status.CPUs))
	_ = table.Append("Memory", fmt.Sprintf("%s / %s", formatBytes(status.Mem), formatBytes(status.MaxMem)))
	_ = table.Append("Uptime", formatUptime(status.Uptime))

	if status.HA != nil {
		_ = table.Append("HA Managed", fmt.Sprintf("%d", status.HA.Managed))
	}

	_ = table.Render()

	return nil
}

type guestActionFunc func(ctx context.Context, client pve.Client, node string, vmid int) (pve.UPID, error)

func newVMActionCommand(action, short string, run guestActionFunc) *cobra.Command {
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
				return fmt.Errorf("failed to %s virtual machine: %w", action, err)
			}

			return outputTask(upid)
		},
	}
}

// outputTask reports the UPID of an asynchronous guest operation.
func outputTask(upid pve.UPID) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(map[string]string{"upid": string(upid)})
	case OutputFormatYAML:
		return StandardYAMLRenderer(map[string]string{"upid": string(upid)})
	default:
		fmt.Printf("Task started: %s\n", upid)

		return nil
	}
}

func newVMsCreateCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "create NODE",
		Short: "Create a virtual machine",
		Long:  "Create a new QEMU virtual machine; configuration is passed as --set key=value pairs and must include vmid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			upid, err := client.VirtualMachines().Create(context.Background(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to create virtual machine: %w", err)
			}

			return outputTask(upid)
		},
	}

	cmd.Flags().StringToStringVar(&params, "set", nil, "configuration parameters (key=value)")

	return cmd
}

func newVMsSetCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "set NODE VMID",
		Short: "Update virtual machine configuration",
		Long:  "Apply --set key=value configuration changes to a QEMU virtual machine",
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

			err = client.VirtualMachines().Update(context.Background(), args[0], vmid, params)
			if err != nil {
				return fmt.Errorf("failed to update virtual machine: %w", err)
			}

			fmt.Printf("Successfully updated vm %d\n", vmid)

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&params, "set", nil, "configuration parameters (key=value)")

	return cmd
}

func newVMsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NODE VMID",
		Short: "Delete a virtual machine",
		Long:  "Destroy a QEMU virtual machine and its configuration",
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

			upid, err := client.VirtualMachines().Delete(context.Background(), args[0], vmid)
			if err != nil {
				return fmt.Errorf("failed to delete virtual machine: %w", err)
			}

			return outputTask(upid)
		},
	}
}
