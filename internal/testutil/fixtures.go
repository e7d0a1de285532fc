package testutil

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gannonh/kata-cloud-agents/internal/workspace"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// LoadFixture loads a JSON fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// RegistryFixture is the decoded form of a registry fixture.
type RegistryFixture struct {
	Workspaces        []*workspace.Workspace `json:"workspaces"`
	ActiveWorkspaceID *string                `json:"activeWorkspaceId"`
}

// LoadRegistryFixture decodes a registry fixture.
func LoadRegistryFixture(name string) (*RegistryFixture, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	var fx RegistryFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	return &fx, nil
}

// ValidRegistry returns the valid registry fixture.
func ValidRegistry() (*RegistryFixture, error) {
	return LoadRegistryFixture("valid_registry.json")
}

// InvalidRegistry returns a registry that parses but breaks the record and
// active-pointer rules.
func InvalidRegistry() (*RegistryFixture, error) {
	return LoadRegistryFixture("invalid_registry.json")
}

// InstallFixture copies fixture name to path, creating parent directories.
func InstallFixture(name, path string) error {
	data, err := LoadFixture(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
