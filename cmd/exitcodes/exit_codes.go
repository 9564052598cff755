package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates that an error occurred but it was already reported to the user, so the
	// top-level handler should not print it again.
	ExitCodeHandledError = 6

	// ExitCodeImportFailed indicates an interchange document failed to import.
	ExitCodeImportFailed = 7
)
