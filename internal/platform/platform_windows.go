//go:build windows

package platform

import (
	"context"
	"image"
	"strings"

	"printerkit/internal/caps"
	"printerkit/internal/config"
	"printerkit/internal/gdi"
	"printerkit/internal/model"
	"printerkit/internal/printerr"
	"printerkit/internal/raster"
	"printerkit/internal/rawprint"
	"printerkit/internal/state"
	"printerkit/internal/winspool"
)

type spoolerActions struct {
	cfg config.Config
}

func newActions(cfg config.Config) Actions {
	return &spoolerActions{cfg: cfg}
}

func (a *spoolerActions) Printers(ctx context.Context) ([]model.Printer, error) {
	records, err := winspool.EnumPrinters()
	if err != nil {
		return nil, printerr.Underlying("enum-printers", "", err)
	}
	defName, _ := winspool.DefaultPrinterName()

	out := make([]model.Printer, 0, len(records))
	for _, r := range records {
		out = append(out, printerFromRecord(r, defName))
	}
	return out, nil
}

func (a *spoolerActions) DefaultPrinterName(ctx context.Context) (string, error) {
	name, err := winspool.DefaultPrinterName()
	if err != nil {
		return "", printerr.Underlying("default-printer", "", err)
	}
	return name, nil
}

func (a *spoolerActions) Jobs(ctx context.Context, printer string) ([]model.PrinterJob, error) {
	records, err := winspool.EnumJobs(printer)
	if err != nil {
		return nil, printerr.Underlying("enum-jobs", printer, err)
	}
	out := make([]model.PrinterJob, 0, len(records))
	for _, r := range records {
		raw := uint64(r.Status)
		out = append(out, model.PrinterJob{
			ID:          uint64(r.ID),
			Name:        r.Document,
			PrinterName: r.PrinterName,
			MediaType:   r.Datatype,
			RawStatus:   raw,
			State:       state.JobStateFromRaw(raw),
			CreatedAt:   r.Submitted,
			ProcessedAt: r.Submitted,
			CompletedAt: r.Submitted,
		})
	}
	return out, nil
}

func (a *spoolerActions) SetJobState(ctx context.Context, printer string, jobID uint64, target model.PrinterJobState) error {
	cmd, err := state.CommandForState(target)
	if err != nil {
		return err
	}
	if err := winspool.SetJob(printer, jobID, uint32(cmd)); err != nil {
		return printerr.Underlying("set-job", printer, err)
	}
	return nil
}

func (a *spoolerActions) SubmitRaw(ctx context.Context, printer string, payload []byte, jobName string, props map[string]string) (uint64, error) {
	open := func() (rawprint.Session, error) {
		return winspool.OpenSpool(printer)
	}
	return rawprint.Submit(open, printer, payload, jobName, props)
}

func (a *spoolerActions) PrintImage(ctx context.Context, printer string, img image.Image, req raster.Request) (uint64, error) {
	req.Printer = printer
	return raster.Print(gdi.Device{}, img, req)
}

func (a *spoolerActions) DeviceCaps(ctx context.Context, printer string) (model.DeviceCaps, error) {
	src, err := gdi.OpenCapsSource(printer)
	if err != nil {
		return model.DeviceCaps{}, printerr.Session("open-caps-session", printer, err)
	}
	return caps.Resolve(src)
}

func printerFromRecord(r winspool.PrinterRecord, defName string) model.Printer {
	raw := uint64(r.Status)
	reasons := state.ReasonsFromStatus(raw)
	return model.Printer{
		Name:         r.Name,
		SystemName:   r.Name,
		DriverName:   r.Driver,
		PortName:     r.Port,
		Location:     r.Location,
		Comment:      r.Comment,
		Processor:    r.Processor,
		DataType:     r.Datatype,
		Shared:       r.Shared(),
		IsDefault:    defName != "" && strings.EqualFold(r.Name, defName),
		RawStatus:    raw,
		StateReasons: reasons,
		State:        state.PrinterStateFromRaw(raw, strings.Join(reasons, ",")),
	}
}
