package mapper

import (
	"fmt"
	"os"
	"path/filepath"
)

// MappingsDirName is the fixed subdirectory the dumper module writes its
// mapping file into, inside the generated SDK bundle.
const MappingsDirName = "Mappings"

// Locate inspects the dumper output directory for the single expected SDK
// bundle and returns the path of the one mapping file inside it.
//
// The expected shape is <outputDir>/<bundle>/Mappings/<file>, exactly one
// bundle and exactly one file. Any deviation is a *StructuralError; zero and
// multiple candidates are both unrecoverable because picking one silently
// could hand the caller a stale or wrong artifact.
func Locate(outputDir string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read dumper output directory %s: %w", outputDir, err)
	}

	var bundles []string
	for _, e := range entries {
		if e.IsDir() {
			bundles = append(bundles, e.Name())
		}
	}
	if len(bundles) != 1 {
		return "", &StructuralError{
			Dir:     outputDir,
			Problem: "expected exactly one SDK bundle directory",
			Count:   len(bundles),
		}
	}

	mappingsDir := filepath.Join(outputDir, bundles[0], MappingsDirName)
	if fi, err := os.Stat(mappingsDir); err != nil || !fi.IsDir() {
		return "", &StructuralError{
			Dir:     mappingsDir,
			Problem: "Mappings directory missing from SDK bundle",
			Count:   0,
		}
	}

	mappingEntries, err := os.ReadDir(mappingsDir)
	if err != nil {
		return "", fmt.Errorf("failed to read Mappings directory %s: %w", mappingsDir, err)
	}

	var files []string
	for _, e := range mappingEntries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return "", &StructuralError{
			Dir:     mappingsDir,
			Problem: "no mapping file produced",
			Count:   0,
		}
	}
	if len(files) > 1 {
		return "", &StructuralError{
			Dir:     mappingsDir,
			Problem: "multiple mapping files, expected exactly one",
			Count:   len(files),
		}
	}

	// Re-check the composed path; the file could have vanished between the
	// listing and use.
	mappingPath := filepath.Join(mappingsDir, files[0])
	if _, err := os.Stat(mappingPath); err != nil {
		return "", fmt.Errorf("mapping file disappeared before it could be used: %s: %w", mappingPath, err)
	}

	return mappingPath, nil
}
