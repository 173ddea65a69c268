package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"printerkit"
)

var errShowHelp = errors.New("show-help")

type options struct {
	showDefault bool
	activeOnly  bool
	caps        bool
	supplies    bool
	discover    bool
	jobs        bool
	printer     string
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

	kit := printerkit.Default()
	defer kit.Close()
	ctx := context.Background()

	switch {
	case opts.discover:
		if err := showDiscovered(ctx, kit); err != nil {
			fail(err)
		}
	case opts.showDefault:
		if err := showDefault(ctx, kit); err != nil {
			fail(err)
		}
	case opts.caps:
		if err := showCaps(ctx, kit, opts.printer); err != nil {
			fail(err)
		}
	case opts.supplies:
		if err := showSupplies(ctx, kit, opts.printer); err != nil {
			fail(err)
		}
	case opts.jobs:
		if err := showJobs(ctx, kit, opts.printer, opts.activeOnly); err != nil {
			fail(err)
		}
	default:
		if err := showPrinters(ctx, kit); err != nil {
			fail(err)
		}
	}
}

func usage() {
	fmt.Println("Usage: pkstat [options]")
	fmt.Println("Options:")
	fmt.Println("-d                      Show the default printer")
	fmt.Println("-j printer              Show the job queue of the named printer")
	fmt.Println("-a                      With -j, show only active jobs")
	fmt.Println("-c printer              Show the device capability snapshot")
	fmt.Println("-s target               Show supply levels (SNMP host or printer URI)")
	fmt.Println("-n                      Discover network printers via mDNS")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "pkstat:", err)
	os.Exit(1)
}

func parseArgs(args []string) (options, error) {
	opts := options{}
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--help" {
			return opts, errShowHelp
		}
		if !strings.HasPrefix(arg, "-") {
			return opts, fmt.Errorf("unexpected argument %q", arg)
		}
		consume := func(name string) (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing argument for %s", name)
			}
			i++
			return strings.TrimSpace(args[i]), nil
		}
		switch arg {
		case "-d":
			opts.showDefault = true
		case "-a":
			opts.activeOnly = true
		case "-n":
			opts.discover = true
		case "-j":
			v, err := consume("-j")
			if err != nil {
				return opts, err
			}
			opts.jobs = true
			opts.printer = v
		case "-c":
			v, err := consume("-c")
			if err != nil {
				return opts, err
			}
			opts.caps = true
			opts.printer = v
		case "-s":
			v, err := consume("-s")
			if err != nil {
				return opts, err
			}
			opts.supplies = true
			opts.printer = v
		default:
			return opts, fmt.Errorf("unknown option %q", arg)
		}
	}
	return opts, nil
}

func showPrinters(ctx context.Context, kit *printerkit.Kit) error {
	printers, err := kit.GetPrinters(ctx)
	if err != nil {
		return err
	}
	if len(printers) == 0 {
		fmt.Println("no printers found")
		return nil
	}
	for _, p := range printers {
		marker := " "
		if p.IsDefault {
			marker = "*"
		}
		reasons := strings.Join(p.StateReasons, ",")
		if reasons == "" {
			reasons = "-"
		}
		fmt.Printf("%s %-24s %-9s %s\n", marker, p.Name, p.State, reasons)
	}
	return nil
}

func showDefault(ctx context.Context, kit *printerkit.Kit) error {
	p, ok, err := kit.GetDefaultPrinter(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no system default destination")
		return nil
	}
	fmt.Printf("system default destination: %s (%s)\n", p.Name, p.State)
	return nil
}

func showJobs(ctx context.Context, kit *printerkit.Kit, printer string, activeOnly bool) error {
	jobs, err := kit.GetPrinterJobs(ctx, printer, activeOnly)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Printf("%s: no entries\n", printer)
		return nil
	}
	for _, j := range jobs {
		fmt.Printf("%-8d %-32s %-10s %s\n", j.ID, j.Name, j.State, j.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showCaps(ctx context.Context, kit *printerkit.Kit, printer string) error {
	caps, err := kit.GetPrinterCaps(ctx, printer)
	if err != nil {
		return err
	}
	fmt.Printf("resolution:  %d x %d dpi\n", caps.DPIX, caps.DPIY)
	fmt.Printf("page:        %d x %d px\n", caps.PageWidth, caps.PageHeight)
	fmt.Printf("printable:   %d x %d px\n", caps.PrintableWidth, caps.PrintableHeight)
	fmt.Printf("margins:     top %d  left %d  right %d  bottom %d px\n",
		caps.MarginTop, caps.MarginLeft, caps.MarginRight, caps.MarginBottom)
	return nil
}

func showSupplies(ctx context.Context, kit *printerkit.Kit, target string) error {
	status, err := kit.GetPrinterSupplies(ctx, target)
	if err != nil {
		return err
	}
	fmt.Printf("state: %s\n", status.State)
	for key, value := range status.Details {
		fmt.Printf("%s = %s\n", key, value)
	}
	return nil
}

func showDiscovered(ctx context.Context, kit *printerkit.Kit) error {
	printers, err := kit.DiscoverNetworkPrinters(ctx)
	if err != nil && len(printers) == 0 {
		return err
	}
	for _, p := range printers {
		fmt.Printf("%-48s %s\n", p.URI, p.Info)
	}
	return nil
}
