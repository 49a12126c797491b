package mapper

import "fmt"

// PreflightError is a fatal precondition failure detected before any process
// is launched.
type PreflightError struct {
	What string
	Path string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

// StructuralError means the on-disk bundle shape violated the exactly-one
// invariant at some level. Never auto-resolved: the pipeline refuses to
// guess among zero or multiple candidates.
type StructuralError struct {
	Dir     string
	Problem string
	Count   int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s in %s (found %d)", e.Problem, e.Dir, e.Count)
}

// InjectionError is the terminal error when injection reported failure and
// post-termination verification found no artifact either.
type InjectionError struct {
	ProcessName string
	ModulePath  string
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("injection of %s into %s failed and no mapping file was produced", e.ModulePath, e.ProcessName)
}

// PublishError is a failure copying the located artifact to its final
// destination. Carries both paths for diagnosis.
type PublishError struct {
	Src string
	Dst string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish mapping file %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
