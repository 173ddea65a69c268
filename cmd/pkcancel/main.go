package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"printerkit"
)

var errShowHelp = errors.New("show-help")

type options struct {
	printer string
	action  string
	jobIDs  []uint64
}

var actions = map[string]printerkit.PrinterJobState{
	"cancel":  printerkit.JobCancelled,
	"pause":   printerkit.JobPaused,
	"resume":  printerkit.JobProcessing,
	"restart": printerkit.JobPending,
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowHelp) {
		usage()
		return
	}
	if err != nil {
		fail(err)
	}

	target, ok := actions[opts.action]
	if !ok {
		fail(fmt.Errorf("unknown action %q", opts.action))
	}

	kit := printerkit.Default()
	defer kit.Close()
	ctx := context.Background()

	for _, id := range opts.jobIDs {
		if err := kit.SetJobState(ctx, opts.printer, id, target); err != nil {
			fail(err)
		}
	}
}

func usage() {
	fmt.Println("Usage: pkcancel [options] id [... id]")
	fmt.Println("Options:")
	fmt.Println("-P printer              Act on the named printer's queue")
	fmt.Println("-x action               One of cancel, pause, resume, restart (default cancel)")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "pkcancel:", err)
	os.Exit(1)
}

func parseArgs(args []string) (options, error) {
	opts := options{action: "cancel"}
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--help" {
			return opts, errShowHelp
		}
		consume := func(name string) (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing argument for %s", name)
			}
			i++
			return strings.TrimSpace(args[i]), nil
		}
		switch {
		case arg == "-P":
			v, err := consume("-P")
			if err != nil {
				return opts, err
			}
			opts.printer = v
		case arg == "-x":
			v, err := consume("-x")
			if err != nil {
				return opts, err
			}
			opts.action = strings.ToLower(v)
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown option %q", arg)
		default:
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil || id == 0 {
				return opts, fmt.Errorf("bad job id %q", arg)
			}
			opts.jobIDs = append(opts.jobIDs, id)
		}
	}
	if len(opts.jobIDs) == 0 {
		return opts, errors.New("no job id given")
	}
	if opts.printer == "" {
		return opts, errors.New("no printer given (use -P)")
	}
	return opts, nil
}
