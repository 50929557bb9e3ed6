// Package process runs short-lived subprocesses for the device tool and the
// package manager.
//
// Commands are always executed from an argument vector, never through a shell,
// so device names and colors containing shell metacharacters reach the
// subprocess untouched.
//
// Runner is the seam used by the rest of the application:
//   - Exec runs a command, captures stdout and stderr, and classifies failures
//     as ErrNotFound (executable missing) or *ExitError (non-zero exit)
//   - Split turns a user supplied command template such as
//     "sudo apt install -y" into an argument vector (quote aware)
//   - Format renders an argument vector for display and logs
//
// Example:
//
//	runner := process.NewExec(logging.GetLogger("process"))
//	res, err := runner.Run(ctx, "ratbagctl", "list")
//	if errors.Is(err, process.ErrNotFound) {
//	    // offer installation
//	}
package process
