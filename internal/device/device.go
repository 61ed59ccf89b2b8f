// Package device holds the simulated devices the update engine drives.
package device

import (
	"sync"
	"time"

	"github.com/adamancini/devsim/internal/types"
)

// UpdateStatus is the phase of a running update plus its human-readable log.
type UpdateStatus struct {
	Status   types.ResponseStatus `json:"status" yaml:"status"`
	Messages []string             `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// NewUpdateStatus creates a status with the given messages.
func NewUpdateStatus(status types.ResponseStatus, messages ...string) UpdateStatus {
	return UpdateStatus{Status: status, Messages: append([]string(nil), messages...)}
}

// IsError returns true if the status is error.
func (u UpdateStatus) IsError() bool {
	return u.Status.IsError()
}

// Clone returns a copy that shares no message storage with u.
func (u UpdateStatus) Clone() UpdateStatus {
	return UpdateStatus{Status: u.Status, Messages: append([]string(nil), u.Messages...)}
}

// Device is a simulated device. All mutable fields are guarded so a device
// can be shared between the registry and pooled update sessions.
type Device struct {
	id           string
	tenant       string
	protocol     types.Protocol
	pollDelay    time.Duration
	endpoint     string
	gatewayToken string
	attributes   map[string]string

	mu           sync.RWMutex
	targetToken  string
	tokenSet     bool
	updateStatus *UpdateStatus
}

// New creates a device without attributes. Most callers should go through a Factory.
func New(id, tenant string, protocol types.Protocol, pollDelay time.Duration) *Device {
	return &Device{
		id:         id,
		tenant:     tenant,
		protocol:   protocol.Default(),
		pollDelay:  pollDelay,
		attributes: make(map[string]string),
	}
}

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Tenant returns the tenant the device belongs to.
func (d *Device) Tenant() string { return d.tenant }

// Key returns the registry key of the device.
func (d *Device) Key() string { return Key(d.tenant, d.id) }

// Protocol returns the API the device is simulated with.
func (d *Device) Protocol() types.Protocol { return d.protocol }

// PollDelay returns how often the device polls its update server.
func (d *Device) PollDelay() time.Duration { return d.pollDelay }

// Endpoint returns the polling endpoint, empty for DMF devices.
func (d *Device) Endpoint() string { return d.endpoint }

// GatewayToken returns the gateway token the device was created with.
func (d *Device) GatewayToken() string { return d.gatewayToken }

// Attributes returns a copy of the device attributes.
func (d *Device) Attributes() map[string]string {
	out := make(map[string]string, len(d.attributes))
	for k, v := range d.attributes {
		out[k] = v
	}
	return out
}

// SetTargetSecurityToken replaces the per-device download token.
func (d *Device) SetTargetSecurityToken(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targetToken = token
	d.tokenSet = true
}

// TargetSecurityToken returns the per-device token and whether one was ever set.
func (d *Device) TargetSecurityToken() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.targetToken, d.tokenSet
}

// SetUpdateStatus replaces the current update status.
func (d *Device) SetUpdateStatus(status UpdateStatus) {
	s := status.Clone()
	d.mu.Lock()
	d.updateStatus = &s
	d.mu.Unlock()
}

// UpdateStatus returns a copy of the current update status and false when no
// update is in progress.
func (d *Device) UpdateStatus() (UpdateStatus, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.updateStatus == nil {
		return UpdateStatus{}, false
	}
	return d.updateStatus.Clone(), true
}

// ResetUpdateStatus clears the transient update state after a session ends.
func (d *Device) ResetUpdateStatus() {
	d.mu.Lock()
	d.updateStatus = nil
	d.mu.Unlock()
}
