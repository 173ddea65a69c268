package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"printerkit"
)

var errShowHelp = errors.New("show-help")

type options struct {
	printer  string
	title    string
	copies   int
	format   string
	imageJob bool
	pages    uint
	widthMM  float64
	heightMM float64
	files    []string
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

	printer := opts.printer
	if printer == "" {
		p, ok, err := kit.GetDefaultPrinter(ctx)
		if err != nil {
			fail(err)
		}
		if !ok {
			fail(errors.New("no destination given and no system default"))
		}
		printer = p.Name
	}

	if opts.imageJob {
		if err := printImages(ctx, kit, printer, opts); err != nil {
			fail(err)
		}
		return
	}
	if err := printRaw(ctx, kit, printer, opts); err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Println("Usage: pkprint [options] [file(s)]")
	fmt.Println("Reads standard input when no file is given.")
	fmt.Println("Options:")
	fmt.Println("-P printer              Print to the named printer")
	fmt.Println("-t title                Set the job name")
	fmt.Println("-n copies               Set the number of copies")
	fmt.Println("-f format               Set the document format / spooler data type")
	fmt.Println("-i                      Treat the files as images and rasterize them")
	fmt.Println("-p pages                With -i, print the image on this many pages")
	fmt.Println("-W mm                   With -i, override the paper width in millimetres")
	fmt.Println("-H mm                   With -i, override the paper height in millimetres")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "pkprint:", err)
	os.Exit(1)
}

func parseArgs(args []string) (options, error) {
	opts := options{copies: 1, pages: 1}
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--help" {
			return opts, errShowHelp
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.files = append(opts.files, arg)
			continue
		}
		consume := func(name string) (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing argument for %s", name)
			}
			i++
			return strings.TrimSpace(args[i]), nil
		}
		switch arg {
		case "-P":
			v, err := consume("-P")
			if err != nil {
				return opts, err
			}
			opts.printer = v
		case "-t":
			v, err := consume("-t")
			if err != nil {
				return opts, err
			}
			opts.title = v
		case "-f":
			v, err := consume("-f")
			if err != nil {
				return opts, err
			}
			opts.format = v
		case "-n":
			v, err := consume("-n")
			if err != nil {
				return opts, err
			}
			n, convErr := strconv.Atoi(v)
			if convErr != nil || n < 1 {
				return opts, fmt.Errorf("bad copies value %q", v)
			}
			opts.copies = n
		case "-i":
			opts.imageJob = true
		case "-p":
			v, err := consume("-p")
			if err != nil {
				return opts, err
			}
			n, convErr := strconv.Atoi(v)
			if convErr != nil || n < 1 {
				return opts, fmt.Errorf("bad page count %q", v)
			}
			opts.pages = uint(n)
		case "-W":
			v, err := consume("-W")
			if err != nil {
				return opts, err
			}
			f, convErr := strconv.ParseFloat(v, 64)
			if convErr != nil || f <= 0 {
				return opts, fmt.Errorf("bad width %q", v)
			}
			opts.widthMM = f
		case "-H":
			v, err := consume("-H")
			if err != nil {
				return opts, err
			}
			f, convErr := strconv.ParseFloat(v, 64)
			if convErr != nil || f <= 0 {
				return opts, fmt.Errorf("bad height %q", v)
			}
			opts.heightMM = f
		default:
			return opts, fmt.Errorf("unknown option %q", arg)
		}
	}
	return opts, nil
}

func jobProperties(opts options) map[string]string {
	props := map[string]string{}
	if opts.copies > 1 {
		props["copies"] = strconv.Itoa(opts.copies)
	}
	if opts.format != "" {
		props["document-format"] = opts.format
	}
	return props
}

func printRaw(ctx context.Context, kit *printerkit.Kit, printer string, opts options) error {
	if len(opts.files) == 0 || (len(opts.files) == 1 && opts.files[0] == "-") {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		title := opts.title
		if title == "" {
			title = "(stdin)"
		}
		id, err := kit.Print(ctx, printer, payload, printerkit.JobOptions{Name: title, Properties: jobProperties(opts)})
		if err != nil {
			return err
		}
		fmt.Printf("request id is %s-%d\n", printer, id)
		return nil
	}
	for _, file := range opts.files {
		id, err := kit.PrintFile(ctx, printer, file, printerkit.JobOptions{Name: opts.title, Properties: jobProperties(opts)})
		if err != nil {
			return err
		}
		fmt.Printf("request id is %s-%d\n", printer, id)
	}
	return nil
}

func printImages(ctx context.Context, kit *printerkit.Kit, printer string, opts options) error {
	if len(opts.files) == 0 {
		return errors.New("image mode needs at least one file")
	}
	for _, file := range opts.files {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", file, err)
		}
		id, err := kit.PrintImage(ctx, printer, img, printerkit.ImagePrintRequest{
			JobName:   opts.title,
			PageCount: uint32(opts.pages),
			WidthMM:   opts.widthMM,
			HeightMM:  opts.heightMM,
		})
		if err != nil {
			return err
		}
		fmt.Printf("request id is %s-%d\n", printer, id)
	}
	return nil
}
