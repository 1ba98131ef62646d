package main

import (
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

func TestRunWorkersDefaultsToCPUCount(t *testing.T) {
	flag := newRunCmd().Flags().Lookup("workers")
	if flag == nil {
		t.Fatal("workers flag not registered")
	}
	if want := strconv.Itoa(runtime.NumCPU()); flag.DefValue != want {
		t.Fatalf("workers default = %s, want %s", flag.DefValue, want)
	}
}

func TestResolveLayoutPath(t *testing.T) {
	if got := resolveLayoutPath("/tmp/custom.json"); got != "/tmp/custom.json" {
		t.Fatalf("explicit path must pass through, got %q", got)
	}
	if got := resolveLayoutPath("azerty.json"); got != "azerty.json" {
		t.Fatalf("json file name must pass through, got %q", got)
	}
	got := resolveLayoutPath("azerty")
	if filepath.Base(got) != "azerty.json" {
		t.Fatalf("bare name should resolve to a layout file, got %q", got)
	}
}
