//go:build !windows

package platform

import (
	"context"
	"image"

	"printerkit/internal/caps"
	"printerkit/internal/config"
	"printerkit/internal/ippclient"
	"printerkit/internal/model"
	"printerkit/internal/printerr"
	"printerkit/internal/raster"
	"printerkit/internal/rawprint"
	"printerkit/internal/softraster"
	"printerkit/internal/state"
)

type ippActions struct {
	cfg    config.Config
	client *ippclient.Client
}

func newActions(cfg config.Config) Actions {
	return &ippActions{cfg: cfg, client: ippclient.New(cfg)}
}

func (a *ippActions) Printers(ctx context.Context) ([]model.Printer, error) {
	printers, err := a.client.Printers(ctx)
	if err != nil {
		return nil, printerr.Underlying("enum-printers", "", err)
	}
	defName, _ := a.client.DefaultPrinterName(ctx)
	for i := range printers {
		printers[i].IsDefault = defName != "" && printers[i].Name == defName
	}
	return printers, nil
}

func (a *ippActions) DefaultPrinterName(ctx context.Context) (string, error) {
	name, err := a.client.DefaultPrinterName(ctx)
	if err != nil {
		return "", printerr.Underlying("default-printer", "", err)
	}
	return name, nil
}

func (a *ippActions) Jobs(ctx context.Context, printer string) ([]model.PrinterJob, error) {
	jobs, err := a.client.Jobs(ctx, printer)
	if err != nil {
		return nil, printerr.Underlying("enum-jobs", printer, err)
	}
	return jobs, nil
}

func (a *ippActions) SetJobState(ctx context.Context, printer string, jobID uint64, target model.PrinterJobState) error {
	cmd, err := state.CommandForState(target)
	if err != nil {
		return err
	}
	if err := a.client.ControlJob(ctx, printer, jobID, cmd); err != nil {
		return printerr.Underlying("set-job", printer, err)
	}
	return nil
}

func (a *ippActions) SubmitRaw(ctx context.Context, printer string, payload []byte, jobName string, props map[string]string) (uint64, error) {
	open := func() (rawprint.Session, error) {
		return a.client.OpenSpool(printer), nil
	}
	return rawprint.Submit(open, printer, payload, jobName, props)
}

func (a *ippActions) PrintImage(ctx context.Context, printer string, img image.Image, req raster.Request) (uint64, error) {
	dev := &softraster.Device{
		Backend:  &ippclient.DocumentBackend{Client: a.client},
		WidthMM:  a.cfg.DefaultPageWidthMM,
		HeightMM: a.cfg.DefaultPageHeightMM,
		DPI:      a.cfg.DefaultDPI,
	}
	req.Printer = printer
	return raster.Print(dev, img, req)
}

func (a *ippActions) DeviceCaps(ctx context.Context, printer string) (model.DeviceCaps, error) {
	src := a.client.CapsSource(printer, a.cfg.DefaultPageWidthMM, a.cfg.DefaultPageHeightMM, a.cfg.DefaultDPI)
	return caps.Resolve(src)
}
