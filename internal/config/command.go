package config

import (
	"fmt"
	"os"

	"github.com/adamancini/devsim/internal/types"
	"github.com/adamancini/devsim/internal/update"
)

// UpdateCommand is an update instruction as the device management server
// would deliver it, targeting one or more devices of a tenant.
type UpdateCommand struct {
	Tenant       string                  `yaml:"tenant" toml:"tenant" json:"tenant"`
	DeviceIDs    []string                `yaml:"device_ids,omitempty" toml:"device_ids,omitempty" json:"device_ids,omitempty"`
	TargetToken  string                  `yaml:"target_token,omitempty" toml:"target_token,omitempty" json:"target_token,omitempty"`
	GatewayToken string                  `yaml:"gateway_token,omitempty" toml:"gateway_token,omitempty" json:"gateway_token,omitempty"`
	Action       types.ActionType        `yaml:"action,omitempty" toml:"action,omitempty" json:"action,omitempty"`
	Modules      []update.SoftwareModule `yaml:"modules" toml:"modules" json:"modules"`
}

// Request builds the scheduler request for one target device.
func (c *UpdateCommand) Request(deviceID string) update.Request {
	return update.Request{
		Tenant:       c.Tenant,
		DeviceID:     deviceID,
		Modules:      c.Modules,
		TargetToken:  c.TargetToken,
		GatewayToken: c.GatewayToken,
		Action:       c.Action.Default(),
	}
}

// ArtifactCount returns the number of artifacts across all modules.
func (c *UpdateCommand) ArtifactCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Artifacts)
	}
	return n
}

// LoadCommand reads, parses and validates an update command file.
// An empty tenant is replaced by defaultTenant.
func LoadCommand(path, defaultTenant string) (*UpdateCommand, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read command: %w", err)
	}

	return ParseCommand(path, content, defaultTenant)
}

// ParseCommand decodes and validates update command content. The format is
// taken from the extension of name, or sniffed from content.
func ParseCommand(name string, content []byte, defaultTenant string) (*UpdateCommand, error) {
	format := detectFormat(name, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", name)
	}

	var cmd UpdateCommand
	if err := decode(content, format, &cmd); err != nil {
		return nil, err
	}
	if cmd.Tenant == "" {
		cmd.Tenant = defaultTenant
	}
	if err := ValidateCommand(&cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}
