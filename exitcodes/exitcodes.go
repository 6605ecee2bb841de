// Package exitcodes defines the standard exit codes used by testctl.
package exitcodes

// Exit code constants used by testctl
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the run plan completes (or is cancelled by the user)
// * TestFailure (1): Used when a build-tool invocation fails
// * RuntimeErr (2): Used for runtime errors such as bad configuration or panics
const (
	Success     = 0 // Run completed
	TestFailure = 1 // A command in the run plan failed
	RuntimeErr  = 2 // Runtime errors
)
