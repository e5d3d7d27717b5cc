package main

import "testing"

func TestRootCmdRequiresInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when -i/--input is missing")
	}
}

func TestRootCmdDefaults(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"-i", "testdata/app"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		t.Fatalf("get output: %v", err)
	}
	if output != "results" {
		t.Errorf("default output = %q, want %q", output, "results")
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		t.Fatalf("get jobs: %v", err)
	}
	if jobs != 0 {
		t.Errorf("default jobs = %d, want 0 (meaning runtime.NumCPU)", jobs)
	}

	bench, err := cmd.Flags().GetBool("bench")
	if err != nil {
		t.Fatalf("get bench: %v", err)
	}
	if bench {
		t.Error("default bench = true, want false")
	}
}
