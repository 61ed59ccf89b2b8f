// Package templates provides embedded starter files for devsim init.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.yaml
var templatesFS embed.FS

// Kind is what a template describes.
type Kind string

const (
	// KindConfig is a simulator configuration file.
	KindConfig Kind = "config"
	// KindCommand is an update command file.
	KindCommand Kind = "command"
)

// Template represents a starter file with metadata.
type Template struct {
	Name        string
	Description string
	Kind        Kind
	Content     []byte
}

// DefaultFile returns the file name a template is written to by default.
func (t *Template) DefaultFile() string {
	if t.Kind == KindCommand {
		return "update.yaml"
	}
	return "devsim.yaml"
}

type templateInfo struct {
	description string
	kind        Kind
}

// Available templates with their descriptions.
var templateInfos = map[string]templateInfo{
	"config":  {"Simulator config with 20 autostart devices", KindConfig},
	"fleet":   {"Two device groups with random attributes", KindConfig},
	"command": {"Update command with one firmware artifact", KindCommand},
}

// List returns all available template names sorted alphabetically.
func List() []string {
	entries, err := templatesFS.ReadDir(".")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}

	sort.Strings(names)
	return names
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	content, err := templatesFS.ReadFile(name + ".yaml")
	if err != nil {
		if pathErr, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("template '%s' not found: %w", name, pathErr)
		}
		return nil, fmt.Errorf("failed to read template '%s': %w", name, err)
	}

	info, ok := templateInfos[name]
	if !ok {
		info = templateInfo{description: "Custom template", kind: KindConfig}
	}

	return &Template{
		Name:        name,
		Description: info.description,
		Kind:        info.kind,
		Content:     content,
	}, nil
}

// GetDescription returns the description for a template.
func GetDescription(name string) string {
	if info, ok := templateInfos[name]; ok {
		return info.description
	}
	return "Custom template"
}
