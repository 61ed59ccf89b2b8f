package device

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Registry stores simulated devices by tenant and id.
type Registry interface {
	// Get returns the device registered under tenant and id.
	Get(tenant, id string) (*Device, bool)
	// Add registers d. If a device with the same key exists it is kept and returned.
	Add(d *Device) *Device
	// Remove deletes a device
	Remove(tenant, id string) error
	// List returns all devices sorted by tenant, then id.
	List() []*Device
}

// Key builds the registry key for a tenant and device id.
func Key(tenant, id string) string {
	return tenant + "/" + id
}

type memoryRegistry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewMemoryRegistry returns a Registry safe for concurrent use.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		devices: make(map[string]*Device),
	}
}

func (r *memoryRegistry) Get(tenant, id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[Key(tenant, id)]
	return d, ok
}

func (r *memoryRegistry) Add(d *Device) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.devices[d.Key()]; ok {
		return existing
	}
	r.devices[d.Key()] = d
	return d
}

func (r *memoryRegistry) Remove(tenant, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(tenant, id)
	if _, ok := r.devices[key]; !ok {
		return ErrDeviceNotFound
	}
	delete(r.devices, key)
	return nil
}

func (r *memoryRegistry) List() []*Device {
	r.mu.RLock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].tenant != out[j].tenant {
			return out[i].tenant < out[j].tenant
		}
		return out[i].id < out[j].id
	})
	return out
}
