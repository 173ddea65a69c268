// Package platform binds the portable print pipelines to whatever printing
// surface the host offers: the native spooler and GDI on windows, an IPP
// endpoint everywhere else.
package platform

import (
	"context"
	"image"

	"printerkit/internal/config"
	"printerkit/internal/model"
	"printerkit/internal/raster"
)

// Actions is the per-host implementation of every printing operation the
// public API exposes.
type Actions interface {
	Printers(ctx context.Context) ([]model.Printer, error)
	DefaultPrinterName(ctx context.Context) (string, error)
	Jobs(ctx context.Context, printer string) ([]model.PrinterJob, error)
	SetJobState(ctx context.Context, printer string, jobID uint64, target model.PrinterJobState) error
	SubmitRaw(ctx context.Context, printer string, payload []byte, jobName string, props map[string]string) (uint64, error)
	PrintImage(ctx context.Context, printer string, img image.Image, req raster.Request) (uint64, error)
	DeviceCaps(ctx context.Context, printer string) (model.DeviceCaps, error)
}

// Current returns the Actions implementation compiled for this host.
func Current(cfg config.Config) Actions {
	return newActions(cfg)
}
