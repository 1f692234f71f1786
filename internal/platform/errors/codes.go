// Package errors provides structured error handling for echowire.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lifecycle errors
	CodeBindFailed Code = "BIND_FAILED"

	// Session errors
	CodeDecodeFailed Code = "DECODE_FAILED"
	CodeConnReset    Code = "CONN_RESET"
	CodeIOFailed     Code = "IO_FAILED"

	// Storage errors
	CodeStoreFailed Code = "STORE_FAILED"
)
