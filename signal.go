package subprocess

// signalNames is the fixed symbolic list enumerated once at startup.
// Every name is looked up against the platform; names the platform does
// not define are marked absent rather than dropped, so callers can tell
// "unknown name" apart from "known but unsupported here".
var signalNames = []string{
	"SIGABRT", "SIGALRM", "SIGBUS", "SIGCHLD", "SIGCONT", "SIGFPE",
	"SIGHUP", "SIGILL", "SIGINT", "SIGIO", "SIGKILL", "SIGPIPE",
	"SIGPOLL", "SIGPROF", "SIGPWR", "SIGQUIT", "SIGSEGV", "SIGSTKFLT",
	"SIGSTOP", "SIGSYS", "SIGTERM", "SIGTRAP", "SIGTSTP", "SIGTTIN",
	"SIGTTOU", "SIGURG", "SIGUSR1", "SIGUSR2", "SIGVTALRM", "SIGWINCH",
	"SIGXCPU", "SIGXFSZ",
}

// signalTable maps symbolic name to the platform's numeric value. Built
// in init and never mutated afterwards, so it is safe for concurrent
// reads without locking.
var signalTable = func() map[string]int {
	table := make(map[string]int, len(signalNames))
	for _, name := range signalNames {
		if num, ok := lookupSignal(name); ok {
			table[name] = num
		}
	}
	return table
}()

// Signals returns the full symbolic name list known to the registry, in
// a fixed order, including names absent on the current platform.
func Signals() []string {
	out := make([]string, len(signalNames))
	copy(out, signalNames)
	return out
}

// SignalNum resolves a symbolic signal name to its numeric value on the
// current platform. The second result is false when the signal is absent
// here or the name is unknown.
func SignalNum(name string) (int, bool) {
	num, ok := signalTable[name]
	return num, ok
}
