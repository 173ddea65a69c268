// Package raster implements the image-to-device print pipeline: it converts
// one decoded bitmap into a fixed pixel layout, negotiates page geometry,
// and places the bitmap onto each physical page through a device session.
package raster

import (
	"image"

	"printerkit/internal/printerr"
)

// Geometry overrides the device's configured paper size, in tenths of a
// millimetre. A zero dimension keeps the device default for that axis.
type Geometry struct {
	WidthTenthMM  int
	HeightTenthMM int
}

// Device opens drawing sessions against a named printer. A nil override
// keeps the device's current configuration; otherwise the session is created
// from the current configuration with the given paper dimensions applied.
type Device interface {
	Open(printer string, override *Geometry) (Session, error)
}

// Session is one device drawing session. Handles acquired through it nest
// strictly: canvases inside pages inside the document inside the session,
// released in reverse order on every exit.
type Session interface {
	// Extent reports the printable resolution of the configured page in
	// device pixels.
	Extent() (width, height int, err error)
	StartDoc(name string) (uint64, error)
	EndDoc() error
	StartPage() error
	EndPage() error
	NewCanvas(width, height int) (Canvas, error)
	// Draw copies the canvas onto the current page at (x, y), stretched to
	// width x height with a high-quality (halftone-class) filter.
	Draw(c Canvas, x, y, width, height int) error
	Close() error
}

// Canvas is an off-screen surface sized to the source bitmap.
type Canvas interface {
	// SetPixels uploads 8-bit RGBA pixel data in top-to-bottom row order.
	SetPixels(pix []byte) error
	Close() error
}

// Request parameterizes one raster print job.
type Request struct {
	Printer   string
	JobName   string
	PageCount uint32
	WidthMM   float64
	HeightMM  float64
}

const defaultJobName = "Image Print Job"

// Print rasterizes img onto Request.PageCount pages of the named device and
// returns the job id assigned when the document began. A PageCount of zero
// produces an empty document with no page cycles. Every failure exit
// releases everything acquired up to that point; no partial job id is ever
// returned.
func Print(dev Device, img image.Image, req Request) (uint64, error) {
	sess, err := dev.Open(req.Printer, geometryOverride(req))
	if err != nil {
		return 0, printerr.Session("open-device-session", req.Printer, err)
	}

	rgba := ToRGBA(img)
	imgW := rgba.Rect.Dx()
	imgH := rgba.Rect.Dy()

	devW, _, err := sess.Extent()
	if err != nil {
		_ = sess.Close()
		return 0, printerr.Underlying("query-extent", req.Printer, err)
	}

	name := req.JobName
	if name == "" {
		name = defaultJobName
	}
	jobID, err := sess.StartDoc(name)
	if err != nil {
		_ = sess.Close()
		return 0, printerr.DocumentStart("start-doc", req.Printer, err)
	}

	// A zero PageCount submits an empty document: the loop runs zero times
	// and the job id is still returned.
	for page := uint32(0); page < req.PageCount; page++ {
		// Page begin is best-effort; the driver reports real trouble on the
		// first canvas or blit operation.
		_ = sess.StartPage()

		canvas, err := sess.NewCanvas(imgW, imgH)
		if err != nil {
			_ = sess.EndPage()
			_ = sess.EndDoc()
			_ = sess.Close()
			return 0, printerr.PageResource("create-canvas", req.Printer, err)
		}
		if err := canvas.SetPixels(rgba.Pix); err != nil {
			_ = canvas.Close()
			_ = sess.EndPage()
			_ = sess.EndDoc()
			_ = sess.Close()
			return 0, printerr.PageResource("upload-pixels", req.Printer, err)
		}

		// Horizontally centered, top-aligned.
		x := (devW - imgW) / 2
		y := 0
		if err := sess.Draw(canvas, x, y, imgW, imgH); err != nil {
			_ = canvas.Close()
			_ = sess.EndPage()
			_ = sess.EndDoc()
			_ = sess.Close()
			return 0, printerr.PageResource("stretch-draw", req.Printer, err)
		}

		// Fresh canvas per page: page content is identical, but driver state
		// must be committed per page boundary.
		_ = canvas.Close()
		_ = sess.EndPage()
	}

	_ = sess.EndDoc()
	_ = sess.Close()
	return jobID, nil
}

func geometryOverride(req Request) *Geometry {
	if req.WidthMM <= 0 && req.HeightMM <= 0 {
		return nil
	}
	g := &Geometry{}
	if req.WidthMM > 0 {
		g.WidthTenthMM = int(req.WidthMM * 10)
	}
	if req.HeightMM > 0 {
		g.HeightTenthMM = int(req.HeightMM * 10)
	}
	return g
}
