// Package softraster renders pages in memory and hands them to a document
// backend one page at a time. It is the raster device for hosts without a
// native printing surface.
package softraster

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"printerkit/internal/raster"
)

// Backend receives finished pages. The IPP transport implements it; tests
// substitute a recorder.
type Backend interface {
	StartDocument(printer, jobName string) (uint64, error)
	WritePage(jobID uint64, pagePNG []byte, last bool) error
	EndDocument(jobID uint64) error
}

// Device satisfies raster.Device. Page geometry defaults to the configured
// media size and is overridden per job when the caller requests one.
type Device struct {
	Backend  Backend
	WidthMM  float64
	HeightMM float64
	DPI      int
}

func (d *Device) Open(printer string, override *raster.Geometry) (raster.Session, error) {
	if d.Backend == nil {
		return nil, errors.New("no page backend configured")
	}
	widthMM, heightMM := d.WidthMM, d.HeightMM
	if override != nil {
		if override.WidthTenthMM > 0 {
			widthMM = float64(override.WidthTenthMM) / 10.0
		}
		if override.HeightTenthMM > 0 {
			heightMM = float64(override.HeightTenthMM) / 10.0
		}
	}
	dpi := d.DPI
	if dpi <= 0 {
		dpi = 300
	}
	w := int(math.Round(widthMM * float64(dpi) / 25.4))
	h := int(math.Round(heightMM * float64(dpi) / 25.4))
	if w <= 0 || h <= 0 {
		return nil, errors.New("page geometry resolves to zero extent")
	}
	return &session{backend: d.Backend, printer: printer, width: w, height: h}, nil
}

type session struct {
	backend Backend
	printer string
	width   int
	height  int

	jobID uint64
	page  *image.RGBA
	open  bool
}

func (s *session) Extent() (int, int, error) {
	return s.width, s.height, nil
}

func (s *session) StartDoc(name string) (uint64, error) {
	id, err := s.backend.StartDocument(s.printer, name)
	if err != nil {
		return 0, err
	}
	s.jobID = id
	s.open = true
	return id, nil
}

func (s *session) EndDoc() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.backend.EndDocument(s.jobID)
}

func (s *session) StartPage() error {
	s.page = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	// white page background
	for i := range s.page.Pix {
		s.page.Pix[i] = 0xFF
	}
	return nil
}

func (s *session) EndPage() error {
	if s.page == nil {
		return errors.New("no page in progress")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.page); err != nil {
		return err
	}
	s.page = nil
	return s.backend.WritePage(s.jobID, buf.Bytes(), false)
}

func (s *session) NewCanvas(width, height int) (raster.Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("canvas extent must be positive")
	}
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func (s *session) Draw(c raster.Canvas, x, y, width, height int) error {
	cv, ok := c.(*canvas)
	if !ok || cv.img == nil {
		return errors.New("canvas belongs to a different device")
	}
	if s.page == nil {
		return errors.New("no page in progress")
	}
	dst := image.Rect(x, y, x+width, y+height)
	xdraw.CatmullRom.Scale(s.page, dst, cv.img, cv.img.Bounds(), xdraw.Over, nil)
	return nil
}

func (s *session) Close() error {
	s.page = nil
	return nil
}

type canvas struct {
	img *image.RGBA
}

func (c *canvas) SetPixels(pix []byte) error {
	if c.img == nil {
		return errors.New("canvas released")
	}
	if len(pix) != len(c.img.Pix) {
		return errors.New("pixel buffer length mismatch")
	}
	copy(c.img.Pix, pix)
	return nil
}

func (c *canvas) Close() error {
	c.img = nil
	return nil
}
