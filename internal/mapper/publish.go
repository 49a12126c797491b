package mapper

import (
	"io"
	"os"
	"path/filepath"
)

// Publish copies the located mapping file to its final destination, creating
// missing parent directories and overwriting an existing file. The source is
// left untouched; the dumper bundle stays intact for inspection.
func Publish(src, dst string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", &PublishError{Src: src, Dst: dst, Err: err}
	}

	if err := copyFile(src, dst); err != nil {
		return "", &PublishError{Src: src, Dst: dst, Err: err}
	}

	return dst, nil
}

// copyFile copies content, file mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// clearDir empties a directory without removing the directory itself. Run
// before every launch so stale bundles from a previous run can never be
// mistaken for fresh output.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
