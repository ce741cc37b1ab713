// Package interpreter evaluates Lazr programs: lazy arguments bound as
// promises, closures with matched formals, builtins and S3-style method
// dispatch, on top of the tagged-value runtime.
package interpreter
