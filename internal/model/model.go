package model

import (
	"time"
)

// Printer is a point-in-time snapshot of one destination known to the OS
// printing subsystem. State is always derived from RawStatus/StateReasons at
// read time, never stored on its own.
type Printer struct {
	Name         string
	SystemName   string
	DriverName   string
	URI          string
	Location     string
	Comment      string
	PortName     string
	Processor    string
	DataType     string
	Shared       bool
	IsDefault    bool
	RawStatus    uint64
	StateReasons []string
	State        PrinterState
}

type PrinterJob struct {
	ID          uint64
	Name        string
	PrinterName string
	MediaType   string
	RawStatus   uint64
	State       PrinterJobState
	CreatedAt   time.Time
	// ProcessedAt and CompletedAt alias CreatedAt when the OS reports no
	// richer timestamps. Known simplification carried from the spooler
	// record layout; do not treat them as authoritative.
	ProcessedAt time.Time
	CompletedAt time.Time
}

// DeviceCaps is the capability snapshot of one physical device: DPI, page
// geometry and printable area in device pixels, margins derived by
// subtraction. Computed per query, never cached.
type DeviceCaps struct {
	DPIX            int
	DPIY            int
	PageWidth       int
	PageHeight      int
	PrintableWidth  int
	PrintableHeight int
	MarginTop       int
	MarginLeft      int
	MarginRight     int
	MarginBottom    int
}

// JobOptions carries the submission name plus free-form key/value properties.
// Recognized keys: "copies" (positive integer, default 1) and
// "document-format" (spooler data type, default "RAW").
type JobOptions struct {
	Name       string
	Properties map[string]string
}

// ImagePrintRequest parameterizes one raster submission. WidthMM/HeightMM of
// zero keep the device's configured paper size; non-zero values override the
// corresponding paper dimension in millimetres.
type ImagePrintRequest struct {
	JobName   string
	PageCount uint32
	WidthMM   float64
	HeightMM  float64
}

// SupplyStatus summarizes marker/supply levels of a device, keyed the way the
// Printer MIB reports them.
type SupplyStatus struct {
	State   string
	Details map[string]string
}

// NetworkPrinter is a printer advertised on the local network, prior to any
// spooler registration.
type NetworkPrinter struct {
	URI       string
	Info      string
	MakeModel string
	Location  string
}
