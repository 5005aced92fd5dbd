/*
Package subprocess spawns child processes and exposes their three
standard streams as independently readable and writable channels with
timeout semantics, like os/exec but with full control over when and how
long a read blocks.

Every spawn returns a handle owning three pipe transports (stdin write
end, stdout and stderr read ends) plus the right to wait for and signal
the child. Reads take a timeout: a negative value blocks until data or
end of stream, zero polls once without blocking, and a positive value
waits at most that long, returning whatever arrived. A timeout and end
of stream are ordinary results, never errors.

	p, err := subprocess.Spawn("cat", nil)
	if err != nil {
		// *subprocess.SpawnError tells you why
	}
	defer p.Release()

	p.Write([]byte("echo 1\n"))
	line, _ := p.Read(subprocess.Stdout, time.Second)

	p.Terminate()
	p.Wait(subprocess.Block)

Handles are tracked in a process-wide table so every child is reaped and
ReleaseAll can free everything at program end. The signal registry maps
symbolic signal names to the platform's numeric values once at startup;
names the platform lacks are reported absent rather than guessed.

# OS compatibility

The package works on all operating systems, with one structural
difference in how reads avoid blocking:

On POSIX systems the parent-held read ends are plain non-blocking pipe
descriptors. A read with a timeout polls the descriptor in small sleep
increments until data arrives or the deadline passes, so no call ever
parks in an indefinite blocking syscall. Writes to the child's stdin
stay blocking on purpose: a full pipe buffer applies normal OS
back-pressure until the child drains its input.

On Windows anonymous pipes cannot be made non-blocking, so each
readable stream gets a dedicated background reader goroutine issuing
blocking reads into a lock-guarded buffer. The control flow's read then
waits on that buffer with the requested timeout. The reader goroutines
share nothing with the rest of the program beyond the buffer, an EOF
flag and a notify channel, and are joined when the handle is released.

Signal semantics differ too: Windows has no graceful-termination
primitive for an arbitrary process, so Terminate there behaves exactly
like Kill, and the registry marks every name absent except SIGINT
(delivered as a console CTRL+C event), SIGTERM and SIGKILL.
*/
package subprocess
