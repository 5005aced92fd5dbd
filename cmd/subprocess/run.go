package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MBlackPower/subprocess"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- executable [args...]",
		Short: "Run a child process, relaying its standard streams",
		Long: `Run spawns the executable with its standard streams piped, relays the
parent's stdin to the child, and prints the child's stdout and stderr
(stderr tinted red). The first interrupt asks the child to terminate
gracefully; a second one kills it. The exit code of the child is
propagated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runChild,
	}
	cmd.Flags().String("dir", "", "working directory for the child")
	cmd.Flags().StringArray("env", nil, "extra KEY=VALUE environment entries")
	cmd.Flags().Duration("read-timeout", 100*time.Millisecond, "per-poll read timeout")
	cmd.Flags().Duration("poll-interval", 2*time.Millisecond, "read poll sleep increment")
	_ = viper.BindPFlag("read-timeout", cmd.Flags().Lookup("read-timeout"))
	_ = viper.BindPFlag("poll-interval", cmd.Flags().Lookup("poll-interval"))
	return cmd
}

func runChild(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dir, _ := cmd.Flags().GetString("dir")
	envEntries, _ := cmd.Flags().GetStringArray("env")
	env := make(map[string]string, len(envEntries))
	for _, entry := range envEntries {
		key, value, _ := strings.Cut(entry, "=")
		env[key] = value
	}

	opts := []subprocess.Option{
		subprocess.WithLogger(logger),
		subprocess.WithPollInterval(viper.GetDuration("poll-interval")),
	}
	if dir != "" {
		opts = append(opts, subprocess.WithDir(dir))
	}
	if len(env) > 0 {
		opts = append(opts, subprocess.WithEnv(env))
	}

	p, err := subprocess.Spawn(args[0], args[1:], opts...)
	if err != nil {
		return err
	}
	defer p.Release()

	// First interrupt asks nicely, the second one doesn't.
	sigC := make(chan os.Signal, 2)
	signal.Notify(sigC, os.Interrupt)
	defer signal.Stop(sigC)
	go func() {
		<-sigC
		_ = p.Terminate()
		<-sigC
		_ = p.Kill()
	}()

	go relayStdin(p)

	errTint := color.New(color.FgRed)
	readTimeout := viper.GetDuration("read-timeout")
	outOpen, errOpen := true, true
	for outOpen || errOpen {
		if outOpen {
			outOpen = relayStream(p, subprocess.Stdout, os.Stdout, nil, readTimeout)
		}
		if errOpen {
			errOpen = relayStream(p, subprocess.Stderr, os.Stderr, errTint, readTimeout)
		}
	}

	state := p.Wait(subprocess.Block)
	status, _ := p.ExitStatus()
	logger.Debug("child finished",
		zap.Stringer("state", state),
		zap.Int("code", status.Code),
		zap.Bool("signaled", status.Signaled),
	)
	if status.Signaled {
		os.Exit(128 + status.Code)
	}
	if status.Code != 0 {
		os.Exit(status.Code)
	}
	return nil
}

// relayStdin copies the parent's stdin into the child until either side
// closes, then signals end of input so filter-style children exit.
func relayStdin(p *subprocess.Process) {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			if _, werr := p.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			_ = p.CloseInput()
			return
		}
	}
}

// relayStream drains one poll's worth of a stream and reports whether
// the stream is still open.
func relayStream(p *subprocess.Process, stream subprocess.Stream, w io.Writer, tint *color.Color, timeout time.Duration) bool {
	b, err := p.Read(stream, timeout)
	if len(b) > 0 {
		if tint != nil {
			_, _ = tint.Fprint(w, string(b))
		} else {
			_, _ = w.Write(b)
		}
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	return true
}
