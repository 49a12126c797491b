package deps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dependency is one external tool the pipeline needs: a GitHub release ZIP
// extracted into its own directory under the install root.
type Dependency struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	URL        string `yaml:"url"`
	Executable string `yaml:"executable"`
	// Dir overrides the install subdirectory; defaults to Name.
	Dir string `yaml:"dir,omitempty"`
}

// Manifest declares every dependency the pipeline downloads.
type Manifest struct {
	Dependencies []Dependency `yaml:"dependencies"`
}

// LoadManifest reads a dependency manifest from a YAML file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read dependency manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse dependency manifest %s: %w", path, err)
	}

	for i, d := range m.Dependencies {
		if d.Name == "" || d.URL == "" {
			return Manifest{}, fmt.Errorf("dependency %d in %s is missing name or url", i, path)
		}
	}
	return m, nil
}

// DefaultManifest returns the stock toolset when no manifest file is
// configured.
func DefaultManifest() Manifest {
	return Manifest{
		Dependencies: []Dependency{
			{
				Name:       "DepotDownloader",
				Version:    "3.4.0",
				URL:        "https://github.com/SteamRE/DepotDownloader/releases/download/DepotDownloader_3.4.0/DepotDownloader-windows-x64.zip",
				Executable: "DepotDownloader.exe",
			},
			{
				Name:       "BatchExport",
				Version:    "1.0.3",
				URL:        "https://github.com/WRFrontiersDB/CUE4P-BatchExport/releases/download/v1.0.3/BatchExport-win-x64.zip",
				Executable: "BatchExport.exe",
			},
			{
				Name:       "Dumper-7",
				Version:    "latest",
				URL:        "https://github.com/Encryqed/Dumper-7/releases/latest/download/Dumper-7.zip",
				Executable: "Dumper-7.dll",
			},
			{
				Name:       "Injector",
				Version:    "1.0.0",
				URL:        "https://github.com/WRFrontiersDB/wrf-injector/releases/download/v1.0.0/Injector-win-x64.zip",
				Executable: "Injector.exe",
			},
		},
	}
}
