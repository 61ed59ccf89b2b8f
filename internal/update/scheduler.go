package update

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/types"
)

const (
	// DefaultWorkers is the size of the shared session pool.
	DefaultWorkers = 4
	// DefaultDelay simulates network and processing latency before a session starts.
	DefaultDelay = 2 * time.Second
)

// Options configure a Scheduler.
type Options struct {
	Workers                       int
	Delay                         time.Duration
	DownloadAuthenticationEnabled bool
	Logger                        *slog.Logger
}

// DefaultOptions returns the reference scheduling behaviour.
func DefaultOptions() Options {
	return Options{
		Workers:                       DefaultWorkers,
		Delay:                         DefaultDelay,
		DownloadAuthenticationEnabled: true,
	}
}

// Scheduler accepts update requests and runs each as a delayed session on a
// bounded pool shared by all devices and tenants.
//
// Sessions targeting the same device are not serialized; their status
// updates interleave.
type Scheduler struct {
	registry   device.Registry
	factory    *device.Factory
	downloader ArtifactDownloader
	opts       Options
	logger     *slog.Logger

	jobs    chan *Session
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewScheduler creates a scheduler and starts its workers.
func NewScheduler(registry device.Registry, factory *device.Factory, downloader ArtifactDownloader, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Scheduler{
		registry:   registry,
		factory:    factory,
		downloader: downloader,
		opts:       opts,
		logger:     opts.Logger,
		jobs:       make(chan *Session, opts.Workers*2),
	}

	s.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go s.work()
	}
	return s
}

// StartUpdate resolves the target device, creating it when unknown, stores
// the target token on it and schedules a session after the configured delay.
// It never blocks on the session; outcomes are reported through req.Callback
// and req.Done.
func (s *Scheduler) StartUpdate(req Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Error("scheduler closed, update rejected", "tenant", req.Tenant, "device", req.DeviceID)
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()

	d, ok := s.registry.Get(req.Tenant, req.DeviceID)
	if !ok {
		// Plug and play: unknown devices are created on first command
		d = s.registry.Add(s.factory.CreateSimulatedDevice(req.DeviceID, req.Tenant, types.ProtocolDMF,
			device.DefaultPollDelaySeconds, "", ""))
		s.logger.Info("created device for update command", "tenant", req.Tenant, "device", req.DeviceID)
	}
	d.SetTargetSecurityToken(req.TargetToken)

	session := NewSession(d, req, s.downloader, s.opts.DownloadAuthenticationEnabled, s.logger)
	s.logger.Debug("update scheduled",
		"tenant", req.Tenant,
		"device", req.DeviceID,
		"session", session.ID(),
		"delay", s.opts.Delay,
		"target_token", HideToken(&req.TargetToken),
	)

	time.AfterFunc(s.opts.Delay, func() {
		s.jobs <- session
	})
}

// Wait blocks until every accepted session has finished.
func (s *Scheduler) Wait() {
	s.pending.Wait()
}

// Close rejects new requests, waits for accepted sessions and stops the workers.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.pending.Wait()
	close(s.jobs)
	s.workers.Wait()
}

func (s *Scheduler) work() {
	defer s.workers.Done()
	for session := range s.jobs {
		s.run(session)
	}
}

func (s *Scheduler) run(session *Session) {
	defer s.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("update session panicked", "session", session.ID(), "error", fmt.Sprint(r))
		}
	}()
	session.Run(context.Background())
}
