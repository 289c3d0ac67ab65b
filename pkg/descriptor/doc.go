// Package descriptor resolves a set of .proto file paths into validated
// service descriptors that seed the generation pipeline.
//
// Files are compiled in-process via protocompile (no protoc required for this
// stage) and walked with protobuf reflection to extract packages, services,
// rpcs, messages and their leading comments.
//
// # Ordering
//
// The loaded Set preserves input file order, then declaration order within a
// file. Everything downstream is order-sensitive: import aliases are assigned
// first-seen and gateway routes are registered in descriptor order, so the
// loader never re-sorts.
//
// # Validation
//
// Loading is all-or-nothing. A file that cannot be compiled, declares no
// package, or declares zero services fails the batch with InvalidProtoError,
// as do two distinct inputs sharing one base name (files are compiled and
// staged by base name, so they would shadow each other).
// Two files declaring the same (package, service) pair fail the batch with
// DuplicateServiceError; silent duplicate registration would produce a
// gateway with two conflicting route handlers for the same paths.
//
// # Binding import paths
//
// Every service's generated bindings are importable under
// grpc-gateway-wrapper/<package path>, e.g. package foo.bar maps to
// grpc-gateway-wrapper/foo/bar with default import identifier "bar". Services
// declared in the same package legitimately share one import path.
package descriptor
