// Package errors provides structured error types for the bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/host type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSerialize, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("string").
//		HostType("IV").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseSerialize, path, "string", "IV")
//	err := errors.MissingParam("name")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
