package update

import (
	"context"
	"strings"

	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/types"
)

// Hashes holds the digests the update server declares for an artifact.
type Hashes struct {
	SHA1   string `yaml:"sha1" toml:"sha1" json:"sha1"`
	MD5    string `yaml:"md5,omitempty" toml:"md5,omitempty" json:"md5,omitempty"`
	SHA256 string `yaml:"sha256,omitempty" toml:"sha256,omitempty" json:"sha256,omitempty"`
}

// Artifact is one downloadable file of a software module.
type Artifact struct {
	Filename string            `yaml:"filename" toml:"filename" json:"filename"`
	Size     int64             `yaml:"size" toml:"size" json:"size"`
	Hashes   Hashes            `yaml:"hashes" toml:"hashes" json:"hashes"`
	URLs     map[string]string `yaml:"urls" toml:"urls" json:"urls"` // Keyed by HTTPS / HTTP
}

// DownloadURL returns the link to fetch the artifact from. HTTPS always wins
// over HTTP. Scheme keys are matched case-insensitively.
func (a Artifact) DownloadURL() (string, bool) {
	for _, scheme := range types.AllURLSchemes() {
		for k, u := range a.URLs {
			if strings.EqualFold(k, scheme.String()) && u != "" {
				return u, true
			}
		}
	}
	return "", false
}

// SoftwareModule groups the artifacts of one module version.
type SoftwareModule struct {
	Name      string     `yaml:"name" toml:"name" json:"name"`
	Version   string     `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`
	Artifacts []Artifact `yaml:"artifacts" toml:"artifacts" json:"artifacts"`
}

// Credentials authenticate artifact downloads. A nil field was never set,
// which is distinct from an empty token only in log output.
type Credentials struct {
	TargetToken  *string
	GatewayToken *string
}

// authorization returns the Authorization header value. The per-device
// target token wins over the shared gateway token.
func (c Credentials) authorization() (string, bool) {
	if c.TargetToken != nil && *c.TargetToken != "" {
		return "TargetToken " + *c.TargetToken, true
	}
	if c.GatewayToken != nil && *c.GatewayToken != "" {
		return "GatewayToken " + *c.GatewayToken, true
	}
	return "", false
}

// ArtifactDownloader fetches and verifies a single artifact. Failures are
// reported as an error status, never returned.
type ArtifactDownloader interface {
	Download(ctx context.Context, url string, creds Credentials, sha1Hash string, size int64) device.UpdateStatus
}

// Callback receives the device each time a session changes its update status.
type Callback interface {
	SendFeedback(d *device.Device)
}

// FeedbackFunc adapts a function to a Callback.
type FeedbackFunc func(d *device.Device)

// SendFeedback calls f(d).
func (f FeedbackFunc) SendFeedback(d *device.Device) {
	f(d)
}

// Outcome is how a session ended.
type Outcome string

const (
	// OutcomeInstalled means every artifact verified and the install step ran.
	OutcomeInstalled Outcome = "installed"
	// OutcomeDeferred means the artifacts verified but installation waits for a maintenance window.
	OutcomeDeferred Outcome = "deferred"
	// OutcomeFailed means at least one artifact failed.
	OutcomeFailed Outcome = "failed"
)

// Result summarizes a finished session.
type Result struct {
	SessionID string              `json:"session_id" yaml:"session_id"`
	Tenant    string              `json:"tenant" yaml:"tenant"`
	DeviceID  string              `json:"device_id" yaml:"device_id"`
	Outcome   Outcome             `json:"outcome" yaml:"outcome"`
	Status    device.UpdateStatus `json:"status" yaml:"status"`
}

// Request is a normalized update command.
type Request struct {
	Tenant       string
	DeviceID     string
	Modules      []SoftwareModule
	TargetToken  string
	GatewayToken string
	Action       types.ActionType
	Callback     Callback
	// Done is called once with the session result. Optional.
	Done func(Result)
}
