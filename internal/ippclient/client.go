// Package ippclient talks IPP to a CUPS endpoint. It is the printer and job
// directory plus submission transport for non-windows builds.
package ippclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goipp "github.com/OpenPrinting/goipp"
	lru "github.com/hashicorp/golang-lru/v2"

	"printerkit/internal/config"
	"printerkit/internal/model"
	"printerkit/internal/state"
)

type Client struct {
	Host               string
	Port               int
	UseTLS             bool
	User               string
	Password           string
	InsecureSkipVerify bool

	// printer-name -> printer-uri-supported, learned from enumeration so
	// later per-printer requests hit the URI the server advertised.
	uris *lru.Cache[string, string]
}

func New(cfg config.Config) *Client {
	cache, _ := lru.New[string, string](64)
	return &Client{
		Host:               cfg.IPPHost,
		Port:               cfg.IPPPort,
		UseTLS:             cfg.IPPUseTLS,
		User:               cfg.IPPUser,
		Password:           cfg.IPPPassword,
		InsecureSkipVerify: cfg.IPPInsecureVerify,
		uris:               cache,
	}
}

func (c *Client) endpoint() string {
	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}
	return scheme + "://" + c.Host + ":" + strconv.Itoa(c.Port) + "/"
}

// PrinterURI resolves the IPP URI for a named printer, preferring the URI
// the server advertised during enumeration.
func (c *Client) PrinterURI(name string) string {
	if c.uris != nil {
		if uri, ok := c.uris.Get(strings.ToLower(name)); ok {
			return uri
		}
	}
	return "ipp://" + c.Host + "/printers/" + url.PathEscape(name)
}

func (c *Client) send(ctx context.Context, msg *goipp.Message, data io.Reader) (*goipp.Message, error) {
	payload, err := msg.EncodeBytes()
	if err != nil {
		return nil, err
	}
	body := io.Reader(bytes.NewBuffer(payload))
	if data != nil {
		body = io.MultiReader(bytes.NewBuffer(payload), data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", goipp.ContentType)
	req.Header.Set("Accept", goipp.ContentType)
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}

	client := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: c.InsecureSkipVerify,
			},
		},
	}
	resp, err := client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.New(resp.Status)
	}
	out := &goipp.Message{}
	if err := out.Decode(resp.Body); err != nil {
		return nil, err
	}
	if err := checkStatus(out); err != nil {
		return nil, err
	}
	return out, nil
}

func newRequest(op goipp.Op) *goipp.Message {
	req := goipp.NewRequest(goipp.DefaultVersion, op, uint32(time.Now().UnixNano()))
	req.Operation.Add(goipp.MakeAttribute("attributes-charset", goipp.TagCharset, goipp.String("utf-8")))
	req.Operation.Add(goipp.MakeAttribute("attributes-natural-language", goipp.TagLanguage, goipp.String("en-US")))
	return req
}

func checkStatus(resp *goipp.Message) error {
	if resp == nil {
		return errors.New("empty ipp response")
	}
	status := goipp.Status(resp.Code)
	if status > goipp.StatusOkConflicting {
		return fmt.Errorf("%s", status)
	}
	return nil
}

// Printers enumerates destinations via CUPS-Get-Printers and converts every
// printer group into the canonical model at this boundary.
func (c *Client) Printers(ctx context.Context) ([]model.Printer, error) {
	req := newRequest(goipp.OpCupsGetPrinters)
	resp, err := c.send(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	out := []model.Printer{}
	for _, group := range resp.Groups {
		if group.Tag != goipp.TagPrinterGroup {
			continue
		}
		p := printerFromAttrs(group.Attrs)
		if p.Name == "" {
			continue
		}
		if c.uris != nil && p.URI != "" {
			c.uris.Add(strings.ToLower(p.Name), p.URI)
		}
		out = append(out, p)
	}
	return out, nil
}

// DefaultPrinterName resolves the server default destination; empty when the
// server has none.
func (c *Client) DefaultPrinterName(ctx context.Context) (string, error) {
	req := newRequest(goipp.OpCupsGetDefault)
	req.Operation.Add(goipp.MakeAttr("requested-attributes", goipp.TagKeyword, goipp.String("printer-name")))
	resp, err := c.send(ctx, req, nil)
	if err != nil {
		return "", err
	}
	for _, group := range resp.Groups {
		if group.Tag != goipp.TagPrinterGroup {
			continue
		}
		if name := strings.TrimSpace(findAttr(group.Attrs, "printer-name")); name != "" {
			return name, nil
		}
	}
	return "", nil
}

// Jobs lists the queue of one printer via Get-Jobs.
func (c *Client) Jobs(ctx context.Context, printer string) ([]model.PrinterJob, error) {
	req := newRequest(goipp.OpGetJobs)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(c.PrinterURI(printer))))
	req.Operation.Add(goipp.MakeAttribute("which-jobs", goipp.TagKeyword, goipp.String("all")))
	req.Operation.Add(goipp.MakeAttr(
		"requested-attributes",
		goipp.TagKeyword,
		goipp.String("job-id"),
		goipp.String("job-name"),
		goipp.String("job-state"),
		goipp.String("document-format"),
		goipp.String("time-at-creation"),
		goipp.String("time-at-processing"),
		goipp.String("time-at-completed"),
	))
	resp, err := c.send(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	out := []model.PrinterJob{}
	for _, group := range resp.Groups {
		if group.Tag != goipp.TagJobGroup {
			continue
		}
		out = append(out, jobFromAttrs(group.Attrs, printer))
	}
	if len(out) == 0 && len(resp.Job) > 0 {
		out = append(out, jobFromAttrs(resp.Job, printer))
	}
	return out, nil
}

// PrintJob submits one document in a single Print-Job round trip and returns
// the server-assigned job id.
func (c *Client) PrintJob(ctx context.Context, printer, jobName, docFormat string, data io.Reader) (uint64, error) {
	req := newRequest(goipp.OpPrintJob)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(c.PrinterURI(printer))))
	req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String(c.userName())))
	if jobName != "" {
		req.Operation.Add(goipp.MakeAttribute("job-name", goipp.TagName, goipp.String(jobName)))
	}
	if docFormat == "" {
		docFormat = "application/octet-stream"
	}
	req.Operation.Add(goipp.MakeAttribute("document-format", goipp.TagMimeType, goipp.String(docFormat)))
	resp, err := c.send(ctx, req, data)
	if err != nil {
		return 0, err
	}
	return jobIDFromResponse(resp)
}

// CreateJob opens a job without a document, so the id exists before any page
// data is sent.
func (c *Client) CreateJob(ctx context.Context, printer, jobName string) (uint64, error) {
	req := newRequest(goipp.OpCreateJob)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(c.PrinterURI(printer))))
	req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String(c.userName())))
	if jobName != "" {
		req.Operation.Add(goipp.MakeAttribute("job-name", goipp.TagName, goipp.String(jobName)))
	}
	resp, err := c.send(ctx, req, nil)
	if err != nil {
		return 0, err
	}
	return jobIDFromResponse(resp)
}

// SendDocument streams one document of a created job; last closes the job.
func (c *Client) SendDocument(ctx context.Context, printer string, jobID uint64, docFormat string, data io.Reader, last bool) error {
	req := newRequest(goipp.OpSendDocument)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(c.PrinterURI(printer))))
	req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
	req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String(c.userName())))
	if docFormat == "" {
		docFormat = "application/octet-stream"
	}
	req.Operation.Add(goipp.MakeAttribute("document-format", goipp.TagMimeType, goipp.String(docFormat)))
	req.Operation.Add(goipp.MakeAttribute("last-document", goipp.TagBoolean, goipp.Boolean(last)))
	_, err := c.send(ctx, req, data)
	return err
}

// ControlJob maps a spooler job-control command onto the equivalent IPP
// operation.
func (c *Client) ControlJob(ctx context.Context, printer string, jobID uint64, cmd state.Command) error {
	var op goipp.Op
	switch cmd {
	case state.CommandPause:
		op = goipp.OpHoldJob
	case state.CommandResume:
		op = goipp.OpReleaseJob
	case state.CommandRestart:
		op = goipp.OpRestartJob
	case state.CommandDelete:
		op = goipp.OpCancelJob
	default:
		return fmt.Errorf("no ipp operation for command %d", cmd)
	}
	req := newRequest(op)
	req.Operation.Add(goipp.MakeAttribute("printer-uri", goipp.TagURI, goipp.String(c.PrinterURI(printer))))
	req.Operation.Add(goipp.MakeAttribute("job-id", goipp.TagInteger, goipp.Integer(jobID)))
	req.Operation.Add(goipp.MakeAttribute("requesting-user-name", goipp.TagName, goipp.String(c.userName())))
	_, err := c.send(ctx, req, nil)
	return err
}

func (c *Client) userName() string {
	if c.User != "" {
		return c.User
	}
	return "anonymous"
}

func jobIDFromResponse(resp *goipp.Message) (uint64, error) {
	id := attrInt(resp.Job, "job-id", 0)
	if id == 0 {
		for _, group := range resp.Groups {
			if group.Tag != goipp.TagJobGroup {
				continue
			}
			if id = attrInt(group.Attrs, "job-id", 0); id != 0 {
				break
			}
		}
	}
	if id <= 0 {
		return 0, errors.New("server assigned no job id")
	}
	return uint64(id), nil
}

func printerFromAttrs(attrs goipp.Attributes) model.Printer {
	name := strings.TrimSpace(findAttr(attrs, "printer-name"))
	reasons := findAttrAll(attrs, "printer-state-reasons")
	cleaned := make([]string, 0, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r != "" && r != "none" {
			cleaned = append(cleaned, r)
		}
	}
	raw := rawStatusFromIPPState(attrInt(attrs, "printer-state", 3))
	return model.Printer{
		Name:         name,
		SystemName:   name,
		DriverName:   strings.TrimSpace(findAttr(attrs, "printer-make-and-model")),
		URI:          strings.TrimSpace(findAttr(attrs, "printer-uri-supported")),
		Location:     strings.TrimSpace(findAttr(attrs, "printer-location")),
		Comment:      strings.TrimSpace(findAttr(attrs, "printer-info")),
		DataType:     strings.TrimSpace(findAttr(attrs, "document-format-default")),
		Shared:       strings.EqualFold(findAttr(attrs, "printer-is-shared"), "true"),
		RawStatus:    raw,
		StateReasons: cleaned,
		State:        state.PrinterStateFromRaw(raw, strings.Join(cleaned, ",")),
	}
}

// rawStatusFromIPPState synthesizes the spooler bit encoding the shared
// normalizer works on: processing sets the printing bit, stopped the paused
// bit, idle none.
func rawStatusFromIPPState(ippState int) uint64 {
	switch ippState {
	case 4:
		return 0x00000400
	case 5:
		return 0x00000001
	default:
		return 0
	}
}

func jobFromAttrs(attrs goipp.Attributes, printer string) model.PrinterJob {
	created := time.Unix(int64(attrInt(attrs, "time-at-creation", 0)), 0)
	processed := created
	if v := attrInt(attrs, "time-at-processing", 0); v > 0 {
		processed = time.Unix(int64(v), 0)
	}
	completed := created
	if v := attrInt(attrs, "time-at-completed", 0); v > 0 {
		completed = time.Unix(int64(v), 0)
	}
	ippState := attrInt(attrs, "job-state", 0)
	return model.PrinterJob{
		ID:          uint64(attrInt(attrs, "job-id", 0)),
		Name:        strings.TrimSpace(findAttr(attrs, "job-name")),
		PrinterName: printer,
		MediaType:   strings.TrimSpace(findAttr(attrs, "document-format")),
		RawStatus:   uint64(ippState),
		State:       jobStateFromIPP(ippState),
		CreatedAt:   created,
		ProcessedAt: processed,
		CompletedAt: completed,
	}
}

func jobStateFromIPP(ippState int) model.PrinterJobState {
	switch ippState {
	case 3:
		return model.JobPending
	case 4, 6:
		return model.JobPaused
	case 5:
		return model.JobProcessing
	case 7, 8:
		return model.JobCancelled
	case 9:
		return model.JobCompleted
	default:
		return model.JobUnknown
	}
}

func findAttr(attrs goipp.Attributes, name string) string {
	for _, attr := range attrs {
		if attr.Name == name && len(attr.Values) > 0 {
			return attr.Values[0].V.String()
		}
	}
	return ""
}

func findAttrAll(attrs goipp.Attributes, name string) []string {
	for _, attr := range attrs {
		if attr.Name != name {
			continue
		}
		out := make([]string, 0, len(attr.Values))
		for _, v := range attr.Values {
			out = append(out, v.V.String())
		}
		return out
	}
	return nil
}

func attrInt(attrs goipp.Attributes, name string, fallback int) int {
	for _, attr := range attrs {
		if attr.Name != name || len(attr.Values) == 0 {
			continue
		}
		if iv, ok := attr.Values[0].V.(goipp.Integer); ok {
			return int(iv)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(attr.Values[0].V.String())); err == nil {
			return n
		}
	}
	return fallback
}
