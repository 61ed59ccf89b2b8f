package update

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/types"
)

const (
	msgSimulationBegins   = "Simulation begins!"
	msgDownloadComplete   = "Simulator: Download complete!"
	msgSimulationComplete = "Simulation complete!"
)

// Session runs one simulated update for one device.
//
// The device walks through running, downloading and downloaded, then either
// successful (download and install), stays downloaded (download only) or ends
// in error. Callbacks are invoked synchronously, in that order, from the
// goroutine calling Run.
type Session struct {
	id           string
	device       *device.Device
	modules      []SoftwareModule
	gatewayToken string
	action       types.ActionType
	authEnabled  bool
	callback     Callback
	done         func(Result)
	downloader   ArtifactDownloader
	logger       *slog.Logger
}

// NewSession creates a session for d. When authEnabled is false downloads are
// sent without credentials.
func NewSession(d *device.Device, req Request, downloader ArtifactDownloader, authEnabled bool, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:           id,
		device:       d,
		modules:      req.Modules,
		gatewayToken: req.GatewayToken,
		action:       req.Action.Default(),
		authEnabled:  authEnabled,
		callback:     req.Callback,
		done:         req.Done,
		downloader:   downloader,
		logger:       logger.With("tenant", d.Tenant(), "device", d.ID(), "session", id),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run executes the simulation and returns its result.
func (s *Session) Run(ctx context.Context) Result {
	s.setStatus(device.NewUpdateStatus(types.StatusRunning, msgSimulationBegins))

	if len(s.modules) > 0 {
		status := s.simulateDownloads(ctx)
		s.setStatus(status)
		if status.IsError() {
			s.device.ResetUpdateStatus()
			return s.finish(OutcomeFailed, status)
		}
	}

	if !s.action.Installs() {
		// Installation waits for a maintenance window; the device keeps its last status.
		status, _ := s.device.UpdateStatus()
		s.logger.Info("installation deferred", "action", s.action)
		return s.finish(OutcomeDeferred, status)
	}

	final := device.NewUpdateStatus(types.StatusSuccessful, msgSimulationComplete)
	s.setStatus(final)
	s.device.ResetUpdateStatus()
	return s.finish(OutcomeInstalled, final)
}

// simulateDownloads announces every artifact, downloads them one after the
// other and aggregates the results. A failed artifact does not stop the
// remaining downloads.
func (s *Session) simulateDownloads(ctx context.Context) device.UpdateStatus {
	var announce []string
	for _, m := range s.modules {
		for _, a := range m.Artifacts {
			announce = append(announce, fmt.Sprintf("Download starts for: %s with SHA1 hash %s and size %d",
				a.Filename, a.Hashes.SHA1, a.Size))
		}
	}
	s.setStatus(device.NewUpdateStatus(types.StatusDownloading, announce...))

	s.logger.Info("simulate downloads")

	creds := s.credentials()
	result := device.NewUpdateStatus(types.StatusDownloaded, msgDownloadComplete)
	for _, m := range s.modules {
		for _, a := range m.Artifacts {
			url, ok := a.DownloadURL()
			if !ok {
				s.logger.Warn("artifact has no download url", "module", m.Name, "file", a.Filename)
				continue
			}

			status := s.downloader.Download(ctx, url, creds, a.Hashes.SHA1, a.Size)
			result.Messages = append(result.Messages, status.Messages...)
			if status.IsError() {
				for _, msg := range status.Messages {
					s.logger.Error(msg, "module", m.Name, "file", a.Filename)
				}
				result.Status = types.StatusError
			}
		}
	}

	s.logger.Info("download simulations complete", "status", result.Status)
	return result
}

func (s *Session) credentials() Credentials {
	if !s.authEnabled {
		return Credentials{}
	}
	var creds Credentials
	if token, ok := s.device.TargetSecurityToken(); ok {
		creds.TargetToken = &token
	}
	gw := s.gatewayToken
	creds.GatewayToken = &gw
	return creds
}

func (s *Session) setStatus(status device.UpdateStatus) {
	s.device.SetUpdateStatus(status)
	if s.callback != nil {
		s.callback.SendFeedback(s.device)
	}
}

func (s *Session) finish(outcome Outcome, status device.UpdateStatus) Result {
	r := Result{
		SessionID: s.id,
		Tenant:    s.device.Tenant(),
		DeviceID:  s.device.ID(),
		Outcome:   outcome,
		Status:    status,
	}
	s.logger.Info("simulation finished", "outcome", outcome)
	if s.done != nil {
		s.done(r)
	}
	return r
}
