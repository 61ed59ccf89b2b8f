package output

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// statusColor maps update statuses to ANSI colours.
var statusColor = map[string]string{
	"running":     ansiYellow,
	"downloading": ansiYellow,
	"downloaded":  ansiCyan,
	"successful":  ansiGreen,
	"error":       ansiRed,
}

// Feedback is one status report a device sends back during an update.
type Feedback struct {
	Time     time.Time `json:"time" yaml:"time"`
	Tenant   string    `json:"tenant" yaml:"tenant"`
	DeviceID string    `json:"device_id" yaml:"device_id"`
	Status   string    `json:"status" yaml:"status"`
	Messages []string  `json:"messages,omitempty" yaml:"messages,omitempty"`
}

func (f Feedback) render(status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s/%s %s", f.Time.Format("15:04:05.000"), f.Tenant, f.DeviceID, status)
	for _, m := range f.Messages {
		b.WriteString("\n    ")
		b.WriteString(m)
	}
	return b.String()
}

// String renders the feedback as plain text.
func (f Feedback) String() string {
	return f.render(strings.ToUpper(f.Status))
}

// ColorString renders the feedback with a coloured status.
func (f Feedback) ColorString() string {
	status := strings.ToUpper(f.Status)
	if c, ok := statusColor[f.Status]; ok {
		status = c + status + ansiReset
	}
	return f.render(status)
}

// Summary totals the outcomes of a simulation run.
type Summary struct {
	Sessions  int           `json:"sessions" yaml:"sessions"`
	Installed int           `json:"installed" yaml:"installed"`
	Deferred  int           `json:"deferred" yaml:"deferred"`
	Failed    int           `json:"failed" yaml:"failed"`
	FailedOn  []string      `json:"failed_on,omitempty" yaml:"failed_on,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// String renders the summary as plain text.
func (s Summary) String() string {
	line := fmt.Sprintf("%d sessions: %d installed, %d deferred, %d failed (%s)",
		s.Sessions, s.Installed, s.Deferred, s.Failed, s.Elapsed.Round(time.Millisecond))
	if len(s.FailedOn) == 0 {
		return line
	}
	failed := append([]string(nil), s.FailedOn...)
	sort.Strings(failed)
	return line + "\nfailed: " + strings.Join(failed, ", ")
}

// DeviceInfo describes a simulated device.
type DeviceInfo struct {
	Tenant     string            `json:"tenant" yaml:"tenant"`
	ID         string            `json:"id" yaml:"id"`
	Protocol   string            `json:"protocol" yaml:"protocol"`
	PollDelay  time.Duration     `json:"poll_delay" yaml:"poll_delay"`
	Endpoint   string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// DeviceList is a printable list of devices.
type DeviceList []DeviceInfo

// String renders the devices as an aligned table.
func (l DeviceList) String() string {
	if len(l) == 0 {
		return "No devices configured"
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TENANT\tDEVICE\tPROTOCOL\tPOLL\tATTRIBUTES")
	for _, d := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Tenant, d.ID, d.Protocol, d.PollDelay, formatAttributes(d.Attributes))
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return strings.Join(parts, ",")
}
