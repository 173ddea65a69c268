package model

// PrinterState is the canonical platform-independent printer state.
type PrinterState int

const (
	PrinterReady PrinterState = iota
	PrinterPrinting
	PrinterPaused
	PrinterOffline
	PrinterUnknown
)

func (s PrinterState) String() string {
	switch s {
	case PrinterReady:
		return "ready"
	case PrinterPrinting:
		return "printing"
	case PrinterPaused:
		return "paused"
	case PrinterOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// PrinterJobState is the canonical platform-independent job state.
type PrinterJobState int

const (
	JobPending PrinterJobState = iota
	JobProcessing
	JobPaused
	JobCancelled
	JobCompleted
	JobUnknown
)

func (s PrinterJobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobProcessing:
		return "processing"
	case JobPaused:
		return "paused"
	case JobCancelled:
		return "cancelled"
	case JobCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
