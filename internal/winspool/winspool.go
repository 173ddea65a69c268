//go:build windows

// Package winspool wraps the winspool.drv spooler API: printer and job
// enumeration, raw spool sessions, job control and DEVMODE negotiation.
// Enumerations follow the two-call size-then-fill protocol; a first call
// that succeeds with zero bytes needed is an empty result, not an error.
package winspool

import (
	"errors"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modWinspool            = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinterW       = modWinspool.NewProc("OpenPrinterW")
	procClosePrinter       = modWinspool.NewProc("ClosePrinter")
	procStartDocPrinterW   = modWinspool.NewProc("StartDocPrinterW")
	procEndDocPrinter      = modWinspool.NewProc("EndDocPrinter")
	procStartPagePrinter   = modWinspool.NewProc("StartPagePrinter")
	procEndPagePrinter     = modWinspool.NewProc("EndPagePrinter")
	procWritePrinter       = modWinspool.NewProc("WritePrinter")
	procEnumPrintersW      = modWinspool.NewProc("EnumPrintersW")
	procEnumJobsW          = modWinspool.NewProc("EnumJobsW")
	procSetJobW            = modWinspool.NewProc("SetJobW")
	procGetDefaultPrinterW = modWinspool.NewProc("GetDefaultPrinterW")
	procDocumentPropsW     = modWinspool.NewProc("DocumentPropertiesW")
)

const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004

	printerAttributeShared = 0x00000008

	dmOutBuffer   = 2
	dmPaperLength = 0x00000004
	dmPaperWidth  = 0x00000008
	idOK          = 1
)

type printerInfo2 struct {
	ServerName      *uint16
	PrinterName     *uint16
	ShareName       *uint16
	PortName        *uint16
	DriverName      *uint16
	Comment         *uint16
	Location        *uint16
	DevMode         uintptr
	SepFile         *uint16
	PrintProcessor  *uint16
	Datatype        *uint16
	Parameters      *uint16
	SecurityDesc    uintptr
	Attributes      uint32
	Priority        uint32
	DefaultPriority uint32
	StartTime       uint32
	UntilTime       uint32
	Status          uint32
	Jobs            uint32
	AveragePPM      uint32
}

type jobInfo1 struct {
	JobID        uint32
	PrinterName  *uint16
	MachineName  *uint16
	UserName     *uint16
	Document     *uint16
	Datatype     *uint16
	StatusText   *uint16
	Status       uint32
	Priority     uint32
	Position     uint32
	TotalPages   uint32
	PagesPrinted uint32
	Submitted    windows.Systemtime
}

type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

// PrinterRecord is one PRINTER_INFO_2 entry copied out of the enumeration
// buffer. Fields are copied once at this boundary; nothing retains the raw
// OS record.
type PrinterRecord struct {
	Name       string
	Port       string
	Driver     string
	Location   string
	Comment    string
	Processor  string
	Datatype   string
	Attributes uint32
	Status     uint32
}

func (r PrinterRecord) Shared() bool {
	return r.Attributes&printerAttributeShared != 0
}

// JobRecord is one JOB_INFO_1 entry copied out of the enumeration buffer.
type JobRecord struct {
	ID          uint32
	Document    string
	PrinterName string
	Datatype    string
	Status      uint32
	Submitted   time.Time
}

// EnumPrinters lists local and connected printers via EnumPrintersW level 2.
func EnumPrinters() ([]PrinterRecord, error) {
	flags := uintptr(printerEnumLocal | printerEnumConnections)
	var needed, returned uint32
	r1, _, callErr := procEnumPrintersW.Call(flags, 0, 2, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 == 0 && needed == 0 {
		if isBufferSizeError(callErr) {
			return nil, nil
		}
		return nil, callErr
	}
	if needed == 0 {
		return nil, nil
	}
	buf := make([]byte, needed)
	r1, _, callErr = procEnumPrintersW.Call(flags, 0, 2,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 == 0 {
		return nil, callErr
	}

	out := make([]PrinterRecord, 0, returned)
	entrySize := unsafe.Sizeof(printerInfo2{})
	base := uintptr(unsafe.Pointer(&buf[0]))
	for i := 0; i < int(returned); i++ {
		ptr := (*printerInfo2)(unsafe.Pointer(base + uintptr(i)*entrySize))
		out = append(out, PrinterRecord{
			Name:       windows.UTF16PtrToString(ptr.PrinterName),
			Port:       windows.UTF16PtrToString(ptr.PortName),
			Driver:     windows.UTF16PtrToString(ptr.DriverName),
			Location:   windows.UTF16PtrToString(ptr.Location),
			Comment:    windows.UTF16PtrToString(ptr.Comment),
			Processor:  windows.UTF16PtrToString(ptr.PrintProcessor),
			Datatype:   windows.UTF16PtrToString(ptr.Datatype),
			Attributes: ptr.Attributes,
			Status:     ptr.Status,
		})
	}
	return out, nil
}

// DefaultPrinterName returns the system default printer, empty when none is
// configured.
func DefaultPrinterName() (string, error) {
	var size uint32
	_, _, _ = procGetDefaultPrinterW.Call(0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return "", nil
	}
	buf := make([]uint16, size)
	r1, _, callErr := procGetDefaultPrinterW.Call(
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r1 == 0 {
		return "", callErr
	}
	return windows.UTF16ToString(buf), nil
}

func openPrinter(name string) (windows.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var handle windows.Handle
	r1, _, callErr := procOpenPrinterW.Call(
		uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&handle)), 0)
	if r1 == 0 {
		return 0, callErr
	}
	return handle, nil
}

func closePrinter(handle windows.Handle) {
	_, _, _ = procClosePrinter.Call(uintptr(handle))
}

// EnumJobs lists every job queued on the named printer via EnumJobsW level 1.
func EnumJobs(printer string) ([]JobRecord, error) {
	handle, err := openPrinter(printer)
	if err != nil {
		return nil, err
	}
	defer closePrinter(handle)

	const allJobs = 0xFFFFFFFF
	var needed, count uint32
	r1, _, _ := procEnumJobsW.Call(uintptr(handle), 0, allJobs, 1, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&count)))
	_ = r1
	if needed == 0 {
		return nil, nil
	}
	buf := make([]byte, needed)
	r1, _, callErr := procEnumJobsW.Call(uintptr(handle), 0, allJobs, 1,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&count)))
	if r1 == 0 {
		return nil, callErr
	}

	out := make([]JobRecord, 0, count)
	entrySize := unsafe.Sizeof(jobInfo1{})
	base := uintptr(unsafe.Pointer(&buf[0]))
	for i := 0; i < int(count); i++ {
		ptr := (*jobInfo1)(unsafe.Pointer(base + uintptr(i)*entrySize))
		out = append(out, JobRecord{
			ID:          ptr.JobID,
			Document:    windows.UTF16PtrToString(ptr.Document),
			PrinterName: windows.UTF16PtrToString(ptr.PrinterName),
			Datatype:    windows.UTF16PtrToString(ptr.Datatype),
			Status:      ptr.Status,
			Submitted:   systemTimeToTime(ptr.Submitted),
		})
	}
	return out, nil
}

// SetJob issues a JOB_CONTROL_* command against one queued job.
func SetJob(printer string, jobID uint64, command uint32) error {
	handle, err := openPrinter(printer)
	if err != nil {
		return err
	}
	defer closePrinter(handle)

	r1, _, callErr := procSetJobW.Call(uintptr(handle), uintptr(jobID), 0, 0, uintptr(command))
	if r1 == 0 {
		return callErr
	}
	return nil
}

// SpoolSession is an open raw spool session against one printer.
type SpoolSession struct {
	handle windows.Handle
}

// OpenSpool acquires a spool session; the caller owns Close.
func OpenSpool(printer string) (*SpoolSession, error) {
	handle, err := openPrinter(printer)
	if err != nil {
		return nil, err
	}
	return &SpoolSession{handle: handle}, nil
}

func (s *SpoolSession) StartDoc(name, dataType string) (uint64, error) {
	docName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	datatype, err := windows.UTF16PtrFromString(dataType)
	if err != nil {
		return 0, err
	}
	doc := docInfo1{DocName: docName, Datatype: datatype}
	r1, _, callErr := procStartDocPrinterW.Call(uintptr(s.handle), 1, uintptr(unsafe.Pointer(&doc)))
	if r1 == 0 {
		return 0, callErr
	}
	return uint64(r1), nil
}

func (s *SpoolSession) StartPage() error {
	r1, _, callErr := procStartPagePrinter.Call(uintptr(s.handle))
	if r1 == 0 {
		return callErr
	}
	return nil
}

func (s *SpoolSession) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var written uint32
	r1, _, callErr := procWritePrinter.Call(uintptr(s.handle),
		uintptr(unsafe.Pointer(&p[0])), uintptr(len(p)),
		uintptr(unsafe.Pointer(&written)))
	if r1 == 0 {
		return int(written), callErr
	}
	return int(written), nil
}

func (s *SpoolSession) EndPage() error {
	r1, _, callErr := procEndPagePrinter.Call(uintptr(s.handle))
	if r1 == 0 {
		return callErr
	}
	return nil
}

func (s *SpoolSession) EndDoc() error {
	r1, _, callErr := procEndDocPrinter.Call(uintptr(s.handle))
	if r1 == 0 {
		return callErr
	}
	return nil
}

func (s *SpoolSession) Close() error {
	if s.handle == 0 {
		return nil
	}
	closePrinter(s.handle)
	s.handle = 0
	return nil
}

// devmodeHead mirrors the fixed head of DEVMODEW up to the paper fields.
// The driver-reported buffer extends past it; only the head is addressed
// directly.
type devmodeHead struct {
	DeviceName    [32]uint16
	SpecVersion   uint16
	DriverVersion uint16
	Size          uint16
	DriverExtra   uint16
	Fields        uint32
	Orientation   int16
	PaperSize     int16
	PaperLength   int16
	PaperWidth    int16
}

// CurrentDevMode fetches the printer's current DEVMODE via the two-call
// DocumentPropertiesW protocol.
func CurrentDevMode(printer string) ([]byte, error) {
	handle, err := openPrinter(printer)
	if err != nil {
		return nil, err
	}
	defer closePrinter(handle)

	namePtr, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return nil, err
	}
	size, _, _ := procDocumentPropsW.Call(0, uintptr(handle),
		uintptr(unsafe.Pointer(namePtr)), 0, 0, 0)
	if int32(size) <= 0 {
		return nil, errors.New("DocumentPropertiesW: no device mode available")
	}
	buf := make([]byte, size)
	r1, _, _ := procDocumentPropsW.Call(0, uintptr(handle),
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&buf[0])), 0, dmOutBuffer)
	if int32(r1) != idOK {
		return nil, errors.New("DocumentPropertiesW: failed to fill device mode")
	}
	return buf, nil
}

// ApplyPaperOverride patches paper length/width into a DEVMODE buffer, in
// tenths of a millimetre. Zero dimensions are left untouched.
func ApplyPaperOverride(devmode []byte, widthTenthMM, heightTenthMM int) {
	if len(devmode) < int(unsafe.Sizeof(devmodeHead{})) {
		return
	}
	head := (*devmodeHead)(unsafe.Pointer(&devmode[0]))
	if heightTenthMM > 0 {
		head.Fields |= dmPaperLength
		head.PaperLength = int16(heightTenthMM)
	}
	if widthTenthMM > 0 {
		head.Fields |= dmPaperWidth
		head.PaperWidth = int16(widthTenthMM)
	}
}

func systemTimeToTime(st windows.Systemtime) time.Time {
	if st.Year == 0 {
		return time.Time{}
	}
	return time.Date(int(st.Year), time.Month(st.Month), int(st.Day),
		int(st.Hour), int(st.Minute), int(st.Second),
		int(st.Milliseconds)*int(time.Millisecond), time.Local)
}

func isBufferSizeError(err error) bool {
	return errors.Is(err, syscall.ERROR_INSUFFICIENT_BUFFER)
}
