package main

import "testing"

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-P", "lab-laser", "-t", "report", "-n", "3", "-f", "TEXT", "a.txt", "b.txt"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.printer != "lab-laser" || opts.title != "report" || opts.copies != 3 || opts.format != "TEXT" {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.files) != 2 {
		t.Errorf("files = %v", opts.files)
	}
}

func TestParseArgsImageMode(t *testing.T) {
	opts, err := parseArgs([]string{"-i", "-p", "2", "-W", "100", "-H", "148.5", "photo.png"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !opts.imageJob || opts.pages != 2 || opts.widthMM != 100 || opts.heightMM != 148.5 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestParseArgsRejectsBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"-n", "zero"},
		{"-n", "0"},
		{"-p", "-1"},
		{"-W", "nope"},
		{"-Z"},
		{"-n"},
	} {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v) accepted", args)
		}
	}
}

func TestJobProperties(t *testing.T) {
	props := jobProperties(options{copies: 1})
	if len(props) != 0 {
		t.Errorf("single copy produced props %v", props)
	}
	props = jobProperties(options{copies: 4, format: "RAW"})
	if props["copies"] != "4" || props["document-format"] != "RAW" {
		t.Errorf("props = %v", props)
	}
}
