package device

import (
	"sync"
	"testing"
	"time"

	"github.com/adamancini/devsim/internal/types"
)

func TestNewDevice(t *testing.T) {
	d := New("dev1", "DEFAULT", "", 30*time.Second)

	if d.ID() != "dev1" {
		t.Errorf("ID() = %s, want dev1", d.ID())
	}
	if d.Tenant() != "DEFAULT" {
		t.Errorf("Tenant() = %s, want DEFAULT", d.Tenant())
	}
	if d.Protocol() != types.ProtocolDMF {
		t.Errorf("Protocol() = %s, want dmf_amqp", d.Protocol())
	}
	if d.Key() != "DEFAULT/dev1" {
		t.Errorf("Key() = %s, want DEFAULT/dev1", d.Key())
	}
	if _, ok := d.UpdateStatus(); ok {
		t.Error("new device should have no update status")
	}
	if _, ok := d.TargetSecurityToken(); ok {
		t.Error("new device should have no token set")
	}
}

func TestDeviceTargetSecurityToken(t *testing.T) {
	d := New("dev1", "DEFAULT", types.ProtocolDMF, time.Minute)

	d.SetTargetSecurityToken("first")
	d.SetTargetSecurityToken("")

	token, ok := d.TargetSecurityToken()
	if !ok {
		t.Fatal("token should be marked as set")
	}
	if token != "" {
		t.Errorf("token = %q, want empty (overwritten)", token)
	}
}

func TestDeviceUpdateStatusIsCopied(t *testing.T) {
	d := New("dev1", "DEFAULT", types.ProtocolDMF, time.Minute)

	status := NewUpdateStatus(types.StatusDownloading, "a", "b")
	d.SetUpdateStatus(status)
	status.Messages[0] = "mutated"

	got, ok := d.UpdateStatus()
	if !ok {
		t.Fatal("expected update status")
	}
	if got.Messages[0] != "a" {
		t.Errorf("stored status changed through caller slice: %v", got.Messages)
	}

	got.Messages[1] = "mutated"
	again, _ := d.UpdateStatus()
	if again.Messages[1] != "b" {
		t.Errorf("stored status changed through returned slice: %v", again.Messages)
	}
}

func TestDeviceResetUpdateStatus(t *testing.T) {
	d := New("dev1", "DEFAULT", types.ProtocolDMF, time.Minute)
	d.SetUpdateStatus(NewUpdateStatus(types.StatusError, "boom"))
	d.ResetUpdateStatus()

	if _, ok := d.UpdateStatus(); ok {
		t.Error("status should be cleared after reset")
	}
}

func TestDeviceConcurrentMutation(t *testing.T) {
	d := New("dev1", "DEFAULT", types.ProtocolDMF, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.SetTargetSecurityToken("token")
			d.SetUpdateStatus(NewUpdateStatus(types.StatusRunning, "x"))
			_, _ = d.UpdateStatus()
			d.ResetUpdateStatus()
		}()
	}
	wg.Wait()
}

func TestUpdateStatusIsError(t *testing.T) {
	if !NewUpdateStatus(types.StatusError).IsError() {
		t.Error("error status should report IsError")
	}
	if NewUpdateStatus(types.StatusDownloaded).IsError() {
		t.Error("downloaded status should not report IsError")
	}
}
