package ippclient

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	goipp "github.com/OpenPrinting/goipp"

	"printerkit/internal/caps"
)

// capsSource derives device metrics from the printer's advertised IPP
// attributes. The request runs lazily on the first Metrics call.
type capsSource struct {
	client     *Client
	printer    string
	defWidthMM float64
	defHeight  float64
	defDPI     int
}

// CapsSource returns a caps.Source backed by Get-Printer-Attributes. The
// defaults fill in for servers that do not advertise resolution or media.
func (c *Client) CapsSource(printer string, defWidthMM, defHeightMM float64, defDPI int) caps.Source {
	return &capsSource{
		client:     c,
		printer:    printer,
		defWidthMM: defWidthMM,
		defHeight:  defHeightMM,
		defDPI:     defDPI,
	}
}

func (s *capsSource) Metrics() (caps.Metrics, error) {
	req := newRequest(goipp.OpGetPrinterAttributes)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(s.client.PrinterURI(s.printer))))
	req.Operation.Add(goipp.MakeAttr(
		"requested-attributes",
		goipp.TagKeyword,
		goipp.String("printer-resolution-default"),
		goipp.String("media-default"),
		goipp.String("media-left-margin-supported"),
		goipp.String("media-right-margin-supported"),
		goipp.String("media-top-margin-supported"),
		goipp.String("media-bottom-margin-supported"),
	))
	resp, err := s.client.send(context.Background(), req, nil)
	if err != nil {
		return caps.Metrics{}, err
	}

	var attrs goipp.Attributes
	for _, group := range resp.Groups {
		if group.Tag == goipp.TagPrinterGroup {
			attrs = group.Attrs
			break
		}
	}
	if attrs == nil {
		attrs = resp.Printer
	}
	if attrs == nil {
		return caps.Metrics{}, errors.New("printer attributes missing from response")
	}

	dpiX, dpiY := resolutionDPI(attrs, s.defDPI)
	widthMM, heightMM, ok := MediaSizeMM(findAttr(attrs, "media-default"))
	if !ok {
		widthMM, heightMM = s.defWidthMM, s.defHeight
	}
	leftMM := marginMM(attrs, "media-left-margin-supported")
	rightMM := marginMM(attrs, "media-right-margin-supported")
	topMM := marginMM(attrs, "media-top-margin-supported")
	bottomMM := marginMM(attrs, "media-bottom-margin-supported")

	pageW := mmToPixels(widthMM, dpiX)
	pageH := mmToPixels(heightMM, dpiY)
	return caps.Metrics{
		DPIX:            dpiX,
		DPIY:            dpiY,
		PageWidth:       pageW,
		PageHeight:      pageH,
		PrintableWidth:  pageW - mmToPixels(leftMM, dpiX) - mmToPixels(rightMM, dpiX),
		PrintableHeight: pageH - mmToPixels(topMM, dpiY) - mmToPixels(bottomMM, dpiY),
		OffsetX:         mmToPixels(leftMM, dpiX),
		OffsetY:         mmToPixels(topMM, dpiY),
	}, nil
}

func (s *capsSource) Close() error { return nil }

func resolutionDPI(attrs goipp.Attributes, fallback int) (int, int) {
	for _, attr := range attrs {
		if attr.Name != "printer-resolution-default" || len(attr.Values) == 0 {
			continue
		}
		if res, ok := attr.Values[0].V.(goipp.Resolution); ok && res.Xres > 0 && res.Yres > 0 {
			x, y := res.Xres, res.Yres
			if res.Units == goipp.UnitsDpcm {
				x = int(math.Round(float64(x) * 2.54))
				y = int(math.Round(float64(y) * 2.54))
			}
			return x, y
		}
	}
	return fallback, fallback
}

func marginMM(attrs goipp.Attributes, name string) float64 {
	// Margins travel in hundredths of a millimeter.
	return float64(attrInt(attrs, name, 0)) / 100.0
}

func mmToPixels(mm float64, dpi int) int {
	return int(math.Round(mm * float64(dpi) / 25.4))
}

// MediaSizeMM extracts width and height in millimeters from a PWG
// self-describing media name such as "iso_a4_210x297mm" or
// "na_letter_8.5x11in".
func MediaSizeMM(media string) (float64, float64, bool) {
	media = strings.TrimSpace(media)
	idx := strings.LastIndex(media, "_")
	if idx < 0 || idx+1 >= len(media) {
		return 0, 0, false
	}
	dim := media[idx+1:]
	unit := 1.0
	switch {
	case strings.HasSuffix(dim, "mm"):
		dim = strings.TrimSuffix(dim, "mm")
	case strings.HasSuffix(dim, "in"):
		dim = strings.TrimSuffix(dim, "in")
		unit = 25.4
	default:
		return 0, 0, false
	}
	parts := strings.SplitN(dim, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(parts[0], 64)
	h, errH := strconv.ParseFloat(parts[1], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w * unit, h * unit, true
}
