// Package state maps raw OS spooler status encodings onto the canonical
// printer and job state machines, and canonical job states back onto spooler
// control commands.
package state

import (
	"fmt"
	"strings"

	"printerkit/internal/model"
	"printerkit/internal/printerr"
)

// Spooler printer-status bits (PRINTER_STATUS_*).
const (
	statusPaused           = 0x00000001
	statusError            = 0x00000002
	statusPendingDeletion  = 0x00000004
	statusPaperJam         = 0x00000008
	statusPaperOut         = 0x00000010
	statusManualFeed       = 0x00000020
	statusPaperProblem     = 0x00000040
	statusOffline          = 0x00000080
	statusIOActive         = 0x00000100
	statusBusy             = 0x00000200
	statusPrinting         = 0x00000400
	statusOutputBinFull    = 0x00000800
	statusNotAvailable     = 0x00001000
	statusWaiting          = 0x00002000
	statusProcessing       = 0x00004000
	statusInitializing     = 0x00008000
	statusWarmingUp        = 0x00010000
	statusTonerLow         = 0x00020000
	statusNoToner          = 0x00040000
	statusPagePunt         = 0x00080000
	statusUserIntervention = 0x00100000
	statusOutOfMemory      = 0x00200000
	statusDoorOpen         = 0x00400000
	statusServerUnknown    = 0x00800000
	statusPowerSave        = 0x01000000
)

// PrinterStateFromRaw normalizes a raw status bitmask plus its textual reason
// string. Reason text takes precedence over the bitmask: the OS may report
// stale bits alongside authoritative reason strings. The bit groups are
// tested in fixed priority order; the first match wins.
func PrinterStateFromRaw(raw uint64, reasons string) model.PrinterState {
	if strings.Contains(reasons, "offline") || strings.Contains(reasons, "pending_deletion") {
		return model.PrinterOffline
	}
	switch {
	case raw == 0 || raw&(statusIOActive|statusProcessing) != 0:
		return model.PrinterReady
	case raw&statusPrinting != 0:
		return model.PrinterPrinting
	case raw&(statusPaused|statusError|statusPendingDeletion|statusPaperJam|statusPaperOut|statusManualFeed) != 0:
		return model.PrinterPaused
	case raw&(statusOffline|statusDoorOpen|statusNotAvailable|statusPendingDeletion) != 0:
		return model.PrinterOffline
	default:
		return model.PrinterUnknown
	}
}

// JobStateFromRaw maps a spooler job-status code (JOB_STATUS_*, discrete
// codes rather than bitmasks) to the canonical job state. Unmapped codes
// yield JobUnknown, so the function is total over uint64.
func JobStateFromRaw(raw uint64) model.PrinterJobState {
	switch raw {
	case 1, 8:
		return model.JobPaused
	case 4, 256:
		return model.JobCancelled
	case 16, 2048, 8192:
		return model.JobProcessing
	case 32, 64, 512, 1024:
		return model.JobPending
	case 128, 496:
		return model.JobCompleted
	default:
		return model.JobUnknown
	}
}

// Command is a spooler job-control command code (JOB_CONTROL_*).
type Command uint32

const (
	CommandPause   Command = 1
	CommandResume  Command = 2
	CommandRestart Command = 4
	CommandDelete  Command = 5
)

// CommandForState maps a requested canonical target state onto the spooler
// command that effects it. Only PAUSED, PROCESSING (resume), PENDING
// (restart) and CANCELLED have platform equivalents; anything else is not a
// requestable transition.
func CommandForState(target model.PrinterJobState) (Command, error) {
	switch target {
	case model.JobPaused:
		return CommandPause, nil
	case model.JobProcessing:
		return CommandResume, nil
	case model.JobPending:
		return CommandRestart, nil
	case model.JobCancelled:
		return CommandDelete, nil
	default:
		return 0, printerr.UnsupportedTransition("set-job-state",
			fmt.Errorf("no platform command for target state %q", target))
	}
}

var reasonTable = []struct {
	bit  uint64
	name string
}{
	{statusPaused, "paused"},
	{statusError, "error"},
	{statusPendingDeletion, "pending_deletion"},
	{statusPaperJam, "paper_jam"},
	{statusPaperOut, "paper_out"},
	{statusManualFeed, "manual_feed"},
	{statusPaperProblem, "paper_problem"},
	{statusOffline, "offline"},
	{statusIOActive, "io_active"},
	{statusBusy, "busy"},
	{statusPrinting, "printing"},
	{statusOutputBinFull, "output_bin_full"},
	{statusNotAvailable, "not_available"},
	{statusWaiting, "waiting"},
	{statusProcessing, "processing"},
	{statusInitializing, "initializing"},
	{statusWarmingUp, "warming_up"},
	{statusTonerLow, "toner_low"},
	{statusNoToner, "no_toner"},
	{statusPagePunt, "page_punt"},
	{statusUserIntervention, "user_intervention"},
	{statusOutOfMemory, "out_of_memory"},
	{statusDoorOpen, "door_open"},
	{statusServerUnknown, "server_unknown"},
	{statusPowerSave, "power_save"},
}

// ReasonsFromStatus renders a status bitmask as the keyword list the rest of
// the system treats as reason text. A zero mask reads as ready.
func ReasonsFromStatus(raw uint64) []string {
	if raw == 0 {
		return []string{"ready"}
	}
	reasons := []string{}
	for _, entry := range reasonTable {
		if raw&entry.bit != 0 {
			reasons = append(reasons, entry.name)
		}
	}
	return reasons
}
