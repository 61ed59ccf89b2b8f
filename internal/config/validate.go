package config

import (
	"fmt"
	"strings"

	"github.com/adamancini/devsim/internal/types"
	"github.com/adamancini/devsim/internal/update"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// joinErrors folds collected errors into a single error, or nil.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func Validate(c *Config) error {
	var errs []error

	if c.DefaultTenant == "" {
		errs = append(errs, ValidationError{Field: "default_tenant", Message: "default tenant is required"})
	}

	if c.Scheduler.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "scheduler.workers",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Scheduler.Workers),
		})
	}
	if c.Scheduler.Delay < 0 {
		errs = append(errs, ValidationError{Field: "scheduler.delay", Message: "must not be negative"})
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "download.timeout", Message: "must be positive"})
	}

	for i, a := range c.Attributes {
		errs = append(errs, validateAttribute(i, a)...)
	}

	for i, a := range c.Autostarts {
		errs = append(errs, validateAutostart(i, a)...)
	}

	return joinErrors(errs)
}

func validateAttribute(index int, a Attribute) []error {
	var errs []error
	if a.Key == "" {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("attributes[%d].key", index),
			Message: "key is required",
		})
	}
	if a.Value == "" && strings.Trim(a.Random, ", ") == "" {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("attributes[%d]", index),
			Message: "value or random is required",
		})
	}
	return errs
}

func validateAutostart(index int, a Autostart) []error {
	var errs []error
	field := func(name string) string {
		return fmt.Sprintf("autostarts[%d].%s", index, name)
	}

	if a.Tenant == "" {
		errs = append(errs, ValidationError{Field: field("tenant"), Message: "tenant is required"})
	}
	if a.Amount < 0 {
		errs = append(errs, ValidationError{
			Field:   field("amount"),
			Message: fmt.Sprintf("must not be negative, got %d", a.Amount),
		})
	}
	if err := a.API.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: field("api"), Message: err.Error()})
	}
	if a.PollDelay < 0 {
		errs = append(errs, ValidationError{Field: field("poll_delay"), Message: "must not be negative"})
	}
	return errs
}

// ValidateCommand checks an update command. Target devices are not required
// here; callers may address autostart devices instead.
func ValidateCommand(c *UpdateCommand) error {
	var errs []error

	if c.Tenant == "" {
		errs = append(errs, ValidationError{Field: "tenant", Message: "tenant is required"})
	}
	for i, id := range c.DeviceIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("device_ids[%d]", i),
				Message: "device id cannot be empty",
			})
		}
	}
	if err := c.Action.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "action", Message: err.Error()})
	}

	for i, m := range c.Modules {
		for j, a := range m.Artifacts {
			errs = append(errs, validateArtifact(fmt.Sprintf("modules[%d].artifacts[%d]", i, j), a)...)
		}
	}

	return joinErrors(errs)
}

func validateArtifact(prefix string, a update.Artifact) []error {
	var errs []error
	if a.Filename == "" {
		errs = append(errs, ValidationError{Field: prefix + ".filename", Message: "filename is required"})
	}
	if a.Size < 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".size",
			Message: fmt.Sprintf("must not be negative, got %d", a.Size),
		})
	}
	if a.Hashes.SHA1 == "" {
		errs = append(errs, ValidationError{Field: prefix + ".hashes.sha1", Message: "sha1 hash is required"})
	}
	if len(a.URLs) == 0 {
		errs = append(errs, ValidationError{Field: prefix + ".urls", Message: "at least one download url is required"})
	}
	for scheme := range a.URLs {
		if _, err := types.ParseURLScheme(scheme); err != nil {
			errs = append(errs, ValidationError{Field: prefix + ".urls." + scheme, Message: err.Error()})
		}
	}
	return errs
}
