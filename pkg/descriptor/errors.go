package descriptor

import "fmt"

// InvalidProtoError reports an input file that cannot be compiled, declares no
// package, or declares zero services.
type InvalidProtoError struct {
	Path string
	Err  error
}

func (e *InvalidProtoError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid proto file %s", e.Path)
	}
	return fmt.Sprintf("invalid proto file %s: %v", e.Path, e.Err)
}

func (e *InvalidProtoError) Unwrap() error { return e.Err }

// DuplicateServiceError reports two input files declaring the same
// (package, service) pair. Duplicate registration would wire two conflicting
// route handlers for the same paths, so this is a hard stop.
type DuplicateServiceError struct {
	Package   string
	Service   string
	FirstPath string
	OtherPath string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("duplicate service %s.%s declared by both %s and %s",
		e.Package, e.Service, e.FirstPath, e.OtherPath)
}
