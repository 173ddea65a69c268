//go:build windows

// Package gdi drives a printer device context for raster output: off-screen
// canvases, DIB pixel upload and halftone stretch-blits. It provides the
// windows implementations of the raster device and the capability source.
package gdi

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"printerkit/internal/caps"
	"printerkit/internal/raster"
	"printerkit/internal/winspool"
)

var (
	modGdi32                = windows.NewLazySystemDLL("gdi32.dll")
	procCreateDCW           = modGdi32.NewProc("CreateDCW")
	procDeleteDC            = modGdi32.NewProc("DeleteDC")
	procGetDeviceCaps       = modGdi32.NewProc("GetDeviceCaps")
	procCreateCompatibleDC  = modGdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBmp = modGdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject        = modGdi32.NewProc("SelectObject")
	procDeleteObject        = modGdi32.NewProc("DeleteObject")
	procSetDIBits           = modGdi32.NewProc("SetDIBits")
	procSetStretchBltMode   = modGdi32.NewProc("SetStretchBltMode")
	procStretchBlt          = modGdi32.NewProc("StretchBlt")
	procStartDocW           = modGdi32.NewProc("StartDocW")
	procEndDoc              = modGdi32.NewProc("EndDoc")
	procStartPage           = modGdi32.NewProc("StartPage")
	procEndPage             = modGdi32.NewProc("EndPage")
)

// GetDeviceCaps indices.
const (
	horzRes         = 8
	vertRes         = 10
	logPixelsX      = 88
	logPixelsY      = 90
	physicalWidth   = 110
	physicalHeight  = 111
	physicalOffsetX = 112
	physicalOffsetY = 113
)

const (
	halftone     = 4
	srcCopy      = 0x00CC0020
	dibRGBColors = 0
	biRGB        = 0
)

const gdiDriver = "WINSPOOL"

type docInfoW struct {
	Size     int32
	DocName  *uint16
	Output   *uint16
	Datatype *uint16
	Type     uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

func createDC(printer string, devmode []byte) (uintptr, error) {
	driverPtr, err := windows.UTF16PtrFromString(gdiDriver)
	if err != nil {
		return 0, err
	}
	namePtr, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return 0, err
	}
	var devmodePtr uintptr
	if len(devmode) > 0 {
		devmodePtr = uintptr(unsafe.Pointer(&devmode[0]))
	}
	hdc, _, _ := procCreateDCW.Call(
		uintptr(unsafe.Pointer(driverPtr)),
		uintptr(unsafe.Pointer(namePtr)),
		0, devmodePtr)
	if hdc == 0 {
		return 0, fmt.Errorf("CreateDCW failed for %q", printer)
	}
	return hdc, nil
}

func deviceCap(hdc uintptr, index int) int {
	v, _, _ := procGetDeviceCaps.Call(hdc, uintptr(index))
	return int(int32(v))
}

// Device is the GDI raster device.
type Device struct{}

func (Device) Open(printer string, override *raster.Geometry) (raster.Session, error) {
	var devmode []byte
	if override != nil {
		buf, err := winspool.CurrentDevMode(printer)
		if err != nil {
			return nil, err
		}
		winspool.ApplyPaperOverride(buf, override.WidthTenthMM, override.HeightTenthMM)
		devmode = buf
	}
	hdc, err := createDC(printer, devmode)
	if err != nil {
		return nil, err
	}
	return &session{hdc: hdc}, nil
}

type session struct {
	hdc uintptr
}

func (s *session) Extent() (int, int, error) {
	return deviceCap(s.hdc, horzRes), deviceCap(s.hdc, vertRes), nil
}

func (s *session) StartDoc(name string) (uint64, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	info := docInfoW{
		Size:    int32(unsafe.Sizeof(docInfoW{})),
		DocName: namePtr,
	}
	jobID, _, _ := procStartDocW.Call(s.hdc, uintptr(unsafe.Pointer(&info)))
	if int32(jobID) <= 0 {
		return 0, errors.New("StartDocW failed")
	}
	return uint64(jobID), nil
}

func (s *session) EndDoc() error {
	_, _, _ = procEndDoc.Call(s.hdc)
	return nil
}

func (s *session) StartPage() error {
	r1, _, _ := procStartPage.Call(s.hdc)
	if int32(r1) <= 0 {
		return errors.New("StartPage failed")
	}
	return nil
}

func (s *session) EndPage() error {
	r1, _, _ := procEndPage.Call(s.hdc)
	if int32(r1) <= 0 {
		return errors.New("EndPage failed")
	}
	return nil
}

func (s *session) NewCanvas(width, height int) (raster.Canvas, error) {
	memDC, _, _ := procCreateCompatibleDC.Call(s.hdc)
	if memDC == 0 {
		return nil, errors.New("CreateCompatibleDC failed")
	}
	bitmap, _, _ := procCreateCompatibleBmp.Call(s.hdc, uintptr(width), uintptr(height))
	if bitmap == 0 {
		_, _, _ = procDeleteDC.Call(memDC)
		return nil, errors.New("CreateCompatibleBitmap failed")
	}
	old, _, _ := procSelectObject.Call(memDC, bitmap)
	return &canvas{memDC: memDC, bitmap: bitmap, old: old, width: width, height: height}, nil
}

func (s *session) Draw(c raster.Canvas, x, y, width, height int) error {
	cv, ok := c.(*canvas)
	if !ok {
		return errors.New("canvas does not belong to a gdi session")
	}
	_, _, _ = procSetStretchBltMode.Call(s.hdc, halftone)
	r1, _, _ := procStretchBlt.Call(s.hdc,
		uintptr(x), uintptr(y), uintptr(width), uintptr(height),
		cv.memDC, 0, 0, uintptr(cv.width), uintptr(cv.height),
		srcCopy)
	if r1 == 0 {
		return errors.New("StretchBlt failed")
	}
	return nil
}

func (s *session) Close() error {
	if s.hdc != 0 {
		_, _, _ = procDeleteDC.Call(s.hdc)
		s.hdc = 0
	}
	return nil
}

// canvas bundles the memory DC, its bitmap and the previous selection; Close
// releases them in reverse-acquisition order.
type canvas struct {
	memDC  uintptr
	bitmap uintptr
	old    uintptr
	width  int
	height int
}

func (c *canvas) SetPixels(pix []byte) error {
	if len(pix) != c.width*c.height*4 {
		return fmt.Errorf("pixel buffer is %d bytes, want %d", len(pix), c.width*c.height*4)
	}
	// GDI 32-bit DIBs carry BGRA.
	bgra := make([]byte, len(pix))
	for i := 0; i < len(pix); i += 4 {
		bgra[i] = pix[i+2]
		bgra[i+1] = pix[i+1]
		bgra[i+2] = pix[i]
		bgra[i+3] = pix[i+3]
	}
	info := bitmapInfo{
		Header: bitmapInfoHeader{
			Size:  uint32(unsafe.Sizeof(bitmapInfoHeader{})),
			Width: int32(c.width),
			// Negative height: scan lines run top to bottom.
			Height:      -int32(c.height),
			Planes:      1,
			BitCount:    32,
			Compression: biRGB,
		},
	}
	r1, _, _ := procSetDIBits.Call(c.memDC, c.bitmap, 0, uintptr(c.height),
		uintptr(unsafe.Pointer(&bgra[0])),
		uintptr(unsafe.Pointer(&info)), dibRGBColors)
	if r1 == 0 {
		return errors.New("SetDIBits failed")
	}
	return nil
}

func (c *canvas) Close() error {
	if c.memDC != 0 {
		_, _, _ = procSelectObject.Call(c.memDC, c.old)
		_, _, _ = procDeleteObject.Call(c.bitmap)
		_, _, _ = procDeleteDC.Call(c.memDC)
		c.memDC = 0
		c.bitmap = 0
	}
	return nil
}

// capsSource is a capability-query session (a DC acquired only to read
// metrics, never to print through).
type capsSource struct {
	hdc uintptr
}

// OpenCapsSource acquires a capability-query session against the device.
func OpenCapsSource(printer string) (caps.Source, error) {
	hdc, err := createDC(printer, nil)
	if err != nil {
		return nil, err
	}
	return &capsSource{hdc: hdc}, nil
}

func (c *capsSource) Metrics() (caps.Metrics, error) {
	if c.hdc == 0 {
		return caps.Metrics{}, errors.New("capability session closed")
	}
	return caps.Metrics{
		DPIX:            deviceCap(c.hdc, logPixelsX),
		DPIY:            deviceCap(c.hdc, logPixelsY),
		PageWidth:       deviceCap(c.hdc, physicalWidth),
		PageHeight:      deviceCap(c.hdc, physicalHeight),
		PrintableWidth:  deviceCap(c.hdc, horzRes),
		PrintableHeight: deviceCap(c.hdc, vertRes),
		OffsetX:         deviceCap(c.hdc, physicalOffsetX),
		OffsetY:         deviceCap(c.hdc, physicalOffsetY),
	}, nil
}

func (c *capsSource) Close() error {
	if c.hdc != 0 {
		_, _, _ = procDeleteDC.Call(c.hdc)
		c.hdc = 0
	}
	return nil
}
