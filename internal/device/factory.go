package device

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/adamancini/devsim/internal/types"
)

// DefaultPollDelaySeconds is the poll interval of devices created on demand.
const DefaultPollDelaySeconds = 1800

// Attribute is a device attribute set on every simulated device.
// Random is a comma-separated list of candidates used when Value is empty.
type Attribute struct {
	Key    string
	Value  string
	Random string
}

// Resolve returns the fixed value or a random pick from the candidate list.
func (a Attribute) Resolve() string {
	if a.Value != "" {
		return a.Value
	}
	var options []string
	for _, o := range strings.Split(a.Random, ",") {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[rand.Intn(len(options))]
}

// Factory creates simulated devices.
type Factory struct {
	attributes []Attribute
}

// NewFactory creates a factory that stamps attrs onto every device it creates.
func NewFactory(attrs []Attribute) *Factory {
	return &Factory{attributes: attrs}
}

// CreateSimulatedDevice creates a device. endpoint and gatewayToken may be empty.
func (f *Factory) CreateSimulatedDevice(id, tenant string, protocol types.Protocol, pollDelaySec int, endpoint, gatewayToken string) *Device {
	d := New(id, tenant, protocol, time.Duration(pollDelaySec)*time.Second)
	d.endpoint = endpoint
	d.gatewayToken = gatewayToken
	for _, a := range f.attributes {
		d.attributes[a.Key] = a.Resolve()
	}
	return d
}

// Autostart describes a batch of devices created when the simulator starts.
type Autostart struct {
	Name         string
	Amount       int
	Tenant       string
	API          types.Protocol
	Endpoint     string
	PollDelay    int
	GatewayToken string
}

// Populate registers the devices of every autostart entry, named Name0..NameN-1,
// and returns them in creation order.
func Populate(reg Registry, f *Factory, autostarts []Autostart) []*Device {
	var created []*Device
	for _, a := range autostarts {
		for i := 0; i < a.Amount; i++ {
			id := fmt.Sprintf("%s%d", a.Name, i)
			d := reg.Add(f.CreateSimulatedDevice(id, a.Tenant, a.API, a.PollDelay, a.Endpoint, a.GatewayToken))
			created = append(created, d)
		}
	}
	return created
}
