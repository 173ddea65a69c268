// Package jobs post-processes job listings fetched from the platform.
package jobs

import (
	"sort"

	"printerkit/internal/model"
)

// Filter retains only active jobs (pending, processing or paused) when
// activeOnly is set; otherwise it returns the input unchanged. Pure and
// idempotent.
func Filter(list []model.PrinterJob, activeOnly bool) []model.PrinterJob {
	if !activeOnly {
		return list
	}
	out := make([]model.PrinterJob, 0, len(list))
	for _, job := range list {
		switch job.State {
		case model.JobPending, model.JobProcessing, model.JobPaused:
			out = append(out, job)
		}
	}
	return out
}

// SortByCreated orders jobs oldest first, id as tiebreaker.
func SortByCreated(list []model.PrinterJob) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
