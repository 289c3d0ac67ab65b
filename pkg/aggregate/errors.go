package aggregate

import "fmt"

// RouteConflictError reports two services claiming the same HTTP path and
// method. First and Second identify the claimants (fully qualified service
// names).
type RouteConflictError struct {
	Path   string
	Method string
	First  string
	Second string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict on %s %s: claimed by both %s and %s",
		e.Method, e.Path, e.First, e.Second)
}

// SwaggerMergeConflictError reports two services declaring the same swagger
// definition key with structurally different schemas. Silently picking one
// would corrupt the other service's documented contract.
type SwaggerMergeConflictError struct {
	Key    string
	First  string
	Second string
}

func (e *SwaggerMergeConflictError) Error() string {
	return fmt.Sprintf("swagger definition conflict on %q: %s and %s declare different schemas",
		e.Key, e.First, e.Second)
}
