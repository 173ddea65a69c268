package main

import "testing"

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-P", "lab-laser", "-x", "pause", "12", "13"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.printer != "lab-laser" || opts.action != "pause" {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.jobIDs) != 2 || opts.jobIDs[0] != 12 || opts.jobIDs[1] != 13 {
		t.Errorf("ids = %v", opts.jobIDs)
	}
}

func TestParseArgsValidation(t *testing.T) {
	for _, args := range [][]string{
		{"-P", "p"},              // no job id
		{"7"},                    // no printer
		{"-P", "p", "0"},         // zero id
		{"-P", "p", "not-an-id"}, // malformed id
		{"-P"},                   // missing value
		{"-Q", "x", "7"},         // unknown option
	} {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v) accepted", args)
		}
	}
}

func TestActionTable(t *testing.T) {
	for _, action := range []string{"cancel", "pause", "resume", "restart"} {
		if _, ok := actions[action]; !ok {
			t.Errorf("action %q missing", action)
		}
	}
}
