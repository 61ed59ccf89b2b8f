package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamancini/devsim/internal/config"
	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/output"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the devices created at startup",
		Long:  `Devices lists the simulated devices the configured autostarts create, with their resolved attributes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Resolve(configPath)
			if err != nil {
				return err
			}

			registry := device.NewMemoryRegistry()
			device.Populate(registry, device.NewFactory(cfg.DeviceAttributes()), cfg.DeviceAutostarts())

			return newWriter(cmd).Write(deviceList(registry.List()))
		},
	}
}

func deviceList(devices []*device.Device) output.DeviceList {
	list := make(output.DeviceList, 0, len(devices))
	for _, d := range devices {
		list = append(list, output.DeviceInfo{
			Tenant:     d.Tenant(),
			ID:         d.ID(),
			Protocol:   d.Protocol().String(),
			PollDelay:  d.PollDelay(),
			Endpoint:   d.Endpoint(),
			Attributes: d.Attributes(),
		})
	}
	return list
}
