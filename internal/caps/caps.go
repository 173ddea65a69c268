// Package caps resolves device capability snapshots: DPI, page geometry,
// printable area and the margins derived from them.
package caps

import (
	"fmt"

	"printerkit/internal/model"
	"printerkit/internal/printerr"
)

// Metrics are the six queried quantities plus the two physical offsets a
// capability-query session reports, all in device pixels except the DPIs.
type Metrics struct {
	DPIX            int
	DPIY            int
	PageWidth       int
	PageHeight      int
	PrintableWidth  int
	PrintableHeight int
	OffsetX         int
	OffsetY         int
}

// Source is one transient capability-query session against a named device.
// It is read-only: no print content is submitted through it.
type Source interface {
	Metrics() (Metrics, error)
	Close() error
}

// Resolve reads a device's metrics and derives the right/bottom margins by
// exact subtraction. The source is always closed before returning.
//
// A correctly reporting device never yields a negative margin. When one does
// (printable area larger than the page), the computed caps are returned
// together with an invalid-input error so the anomaly is surfaced rather
// than silently propagated or clamped.
func Resolve(src Source) (model.DeviceCaps, error) {
	m, err := src.Metrics()
	closeErr := src.Close()
	if err != nil {
		return model.DeviceCaps{}, printerr.Underlying("device-caps", "", err)
	}
	if closeErr != nil {
		return model.DeviceCaps{}, printerr.Underlying("device-caps-close", "", closeErr)
	}

	caps := model.DeviceCaps{
		DPIX:            m.DPIX,
		DPIY:            m.DPIY,
		PageWidth:       m.PageWidth,
		PageHeight:      m.PageHeight,
		PrintableWidth:  m.PrintableWidth,
		PrintableHeight: m.PrintableHeight,
		MarginTop:       m.OffsetY,
		MarginLeft:      m.OffsetX,
		MarginRight:     m.PageWidth - m.PrintableWidth - m.OffsetX,
		MarginBottom:    m.PageHeight - m.PrintableHeight - m.OffsetY,
	}
	if caps.MarginRight < 0 || caps.MarginBottom < 0 || caps.MarginLeft < 0 || caps.MarginTop < 0 {
		return caps, printerr.InvalidInput("device-caps",
			fmt.Errorf("device reported printable area exceeding page: margins %d/%d/%d/%d",
				caps.MarginTop, caps.MarginLeft, caps.MarginRight, caps.MarginBottom))
	}
	return caps, nil
}
