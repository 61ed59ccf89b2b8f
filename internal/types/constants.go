// Package types provides type-safe constants for the devsim simulator.
//
// This package centralizes the enumerated values shared by the update engine,
// the device registry and the configuration layer, replacing magic strings with
// typed constants that carry their own validation.
package types

import (
	"fmt"
	"strings"
)

// ResponseStatus is the phase an update session reports for a device.
type ResponseStatus string

const (
	// StatusRunning announces that the simulation started.
	StatusRunning ResponseStatus = "running"
	// StatusDownloading announces the artifacts about to be fetched.
	StatusDownloading ResponseStatus = "downloading"
	// StatusDownloaded reports that every artifact was fetched and verified.
	StatusDownloaded ResponseStatus = "downloaded"
	// StatusSuccessful reports a completed simulation (or a single verified artifact).
	StatusSuccessful ResponseStatus = "successful"
	// StatusError is terminal and overrides any other status computed for a phase.
	StatusError ResponseStatus = "error"
)

// AllResponseStatuses returns all valid response statuses in lifecycle order.
func AllResponseStatuses() []ResponseStatus {
	return []ResponseStatus{StatusRunning, StatusDownloading, StatusDownloaded, StatusSuccessful, StatusError}
}

// Validate checks if the ResponseStatus is a valid value.
func (s ResponseStatus) Validate() error {
	switch s {
	case StatusRunning, StatusDownloading, StatusDownloaded, StatusSuccessful, StatusError:
		return nil
	case "":
		return fmt.Errorf("response status is required")
	default:
		return fmt.Errorf("invalid response status '%s' (must be running, downloading, downloaded, successful, or error)", s)
	}
}

// String returns the string representation of the ResponseStatus.
func (s ResponseStatus) String() string {
	return string(s)
}

// IsError returns true if the status is error.
func (s ResponseStatus) IsError() bool {
	return s == StatusError
}

// IsTerminal returns true for statuses that end a session.
func (s ResponseStatus) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusError
}

// ParseResponseStatus parses a string into a ResponseStatus.
func ParseResponseStatus(s string) (ResponseStatus, error) {
	rs := ResponseStatus(strings.ToLower(s))
	if err := rs.Validate(); err != nil {
		return "", err
	}
	return rs, nil
}

// ActionType tells a session whether to install after downloading.
type ActionType string

const (
	// ActionDownloadAndInstall downloads every artifact and then installs.
	ActionDownloadAndInstall ActionType = "download_and_install"
	// ActionDownload only downloads; installation is deferred to a maintenance window.
	ActionDownload ActionType = "download"
)

// AllActionTypes returns all valid action types.
func AllActionTypes() []ActionType {
	return []ActionType{ActionDownloadAndInstall, ActionDownload}
}

// Validate checks if the ActionType is a valid value.
// Empty action is considered valid (defaults to download and install).
func (a ActionType) Validate() error {
	switch a {
	case ActionDownloadAndInstall, ActionDownload, "":
		return nil
	default:
		return fmt.Errorf("invalid action '%s' (must be download_and_install or download)", a)
	}
}

// String returns the string representation of the ActionType.
func (a ActionType) String() string {
	return string(a)
}

// Installs returns true if the action proceeds to installation.
func (a ActionType) Installs() bool {
	return a.Default() == ActionDownloadAndInstall
}

// Default returns the default action if empty, otherwise returns the current action.
func (a ActionType) Default() ActionType {
	if a == "" {
		return ActionDownloadAndInstall
	}
	return a
}

// ParseActionType parses a string into an ActionType.
// Dashes are accepted in place of underscores.
func ParseActionType(s string) (ActionType, error) {
	at := ActionType(strings.ReplaceAll(strings.ToLower(s), "-", "_"))
	if err := at.Validate(); err != nil {
		return "", err
	}
	return at, nil
}

// Protocol is the API a simulated device talks to the update server with.
type Protocol string

const (
	// ProtocolDMF indicates the device management federation API over AMQP.
	ProtocolDMF Protocol = "dmf_amqp"
	// ProtocolDDI indicates the direct device integration HTTP polling API.
	ProtocolDDI Protocol = "ddi_api"
)

// AllProtocols returns all valid protocols.
func AllProtocols() []Protocol {
	return []Protocol{ProtocolDMF, ProtocolDDI}
}

// Validate checks if the Protocol is a valid value.
// Empty protocol is considered valid (defaults to DMF).
func (p Protocol) Validate() error {
	switch p {
	case ProtocolDMF, ProtocolDDI, "":
		return nil
	default:
		return fmt.Errorf("invalid protocol '%s' (must be dmf_amqp or ddi_api)", p)
	}
}

// String returns the string representation of the Protocol.
func (p Protocol) String() string {
	return string(p)
}

// Default returns the default protocol if empty, otherwise returns the current protocol.
func (p Protocol) Default() Protocol {
	if p == "" {
		return ProtocolDMF
	}
	return p
}

// RequiresEndpoint returns true if the protocol polls an HTTP endpoint.
func (p Protocol) RequiresEndpoint() bool {
	return p == ProtocolDDI
}

// ParseProtocol parses a string into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(s))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// URLScheme keys the download links of an artifact.
type URLScheme string

const (
	// SchemeHTTPS is the TLS download link. It is always preferred.
	SchemeHTTPS URLScheme = "HTTPS"
	// SchemeHTTP is the plain download link.
	SchemeHTTP URLScheme = "HTTP"
)

// AllURLSchemes returns all valid schemes in order of preference.
func AllURLSchemes() []URLScheme {
	return []URLScheme{SchemeHTTPS, SchemeHTTP}
}

// Validate checks if the URLScheme is a valid value.
func (u URLScheme) Validate() error {
	switch u {
	case SchemeHTTPS, SchemeHTTP:
		return nil
	case "":
		return fmt.Errorf("url scheme is required")
	default:
		return fmt.Errorf("invalid url scheme '%s' (must be HTTPS or HTTP)", u)
	}
}

// String returns the string representation of the URLScheme.
func (u URLScheme) String() string {
	return string(u)
}

// ParseURLScheme parses a string into a URLScheme.
func ParseURLScheme(s string) (URLScheme, error) {
	u := URLScheme(strings.ToUpper(s))
	if err := u.Validate(); err != nil {
		return "", err
	}
	return u, nil
}
