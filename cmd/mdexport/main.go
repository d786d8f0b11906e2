package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// GOMAXPROCS must be settled before pools are sized. maxprocs.Set only
	// fails on an invalid GOMAXPROCS env value, in which case the runtime
	// default applies.
	bootLog := env.Logger.Level(logLevel(scanVerbosity(os.Args)))
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		bootLog.Debug().Msgf(format, args...)
	}))

	os.Exit(runMain(os.Args, env))
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error

	switch cmd {
	case "convert":
		err = runConvert(ctx, rest, env)
	case "watch":
		err = runWatch(ctx, rest, env)
	case "files":
		err = runFiles(ctx, rest, env)
	case "themes":
		err = runThemes(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdexport %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintln(env.Stderr, formatError(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// isCommand reports whether name is a known command.
func isCommand(name string) bool {
	return slices.Contains(commandNames, name)
}

var commandNames = []string{"convert", "watch", "files", "themes", "doctor", "completion", "version", "help"}

// scanVerbosity looks for -v/-q before any FlagSet has parsed the arguments.
func scanVerbosity(args []string) (verbose, quiet bool) {
	for _, a := range args {
		switch a {
		case "-v", "--verbose":
			verbose = true
		case "-q", "--quiet":
			quiet = true
		}
	}
	return verbose, quiet
}

// logLevel maps the verbosity flags to a zerolog level. Quiet wins.
func logLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.ErrorLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
