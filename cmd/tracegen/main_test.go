package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracegen/internal/trace"
)

const counterDesc = `
name = "counter"
headers = ["counter.h"]

[[type]]
name = "COUNTER_MODE"
kind = "enum"
values = ["COUNTER_UP", "COUNTER_DOWN"]

[[function]]
name = "counterCreate"
result = "int"
args = [{ name = "mode", type = "COUNTER_MODE" }]
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer runCleanups()
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCounter(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.toml")
	if err := os.WriteFile(path, []byte(counterDesc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateWritesUnit(t *testing.T) {
	desc := writeCounter(t)
	out := filepath.Join(t.TempDir(), "gen")
	if got, err := execute(t, "generate", "--color", "off", "--ui", "off", "--sigs", "-o", out, desc); err != nil {
		t.Fatalf("generate: %v\n%s", err, got)
	}
	for _, name := range []string{"countertrace.cpp", "countertrace.sigs"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestGenerateReportsBrokenDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	src := "name = \"broken\"\n\n[[function]]\nname = \"f\"\nresult = \"Undeclared\"\n"
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := execute(t, "generate", "--color", "off", "--ui", "off", "--dry-run", path)
	if err == nil {
		t.Fatalf("expected failure, output:\n%s", got)
	}
	if !strings.Contains(got, "DSC") || !strings.Contains(got, "Undeclared") {
		t.Fatalf("diagnostic missing:\n%s", got)
	}
}

func TestTypesListsReachableTypes(t *testing.T) {
	got, err := execute(t, "types", "--color", "off", "--functions", writeCounter(t))
	if err != nil {
		t.Fatalf("types: %v\n%s", err, got)
	}
	for _, want := range []string{"TAG", "COUNTER_MODE", "enum", "int counterCreate(COUNTER_MODE mode);"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	got, err := execute(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	if payload.Tool != "tracegen" || payload.GitCommit == "" || strings.Contains(payload.Version, "\x1b[") {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Errorf("readUIMode accepted an unknown mode")
	}
}

func TestUIModeWants(t *testing.T) {
	cases := []struct {
		mode       uiMode
		units      int
		quiet, tty bool
		want       bool
	}{
		{uiModeAuto, 3, false, true, true},
		{uiModeAuto, 1, false, true, false},
		{uiModeAuto, 3, true, true, false},
		{uiModeAuto, 3, false, false, false},
		{uiModeOn, 1, true, false, true},
		{uiModeOff, 5, false, true, false},
	}
	for _, tc := range cases {
		if got := tc.mode.wants(tc.units, tc.quiet, tc.tty); got != tc.want {
			t.Errorf("%s.wants(%d, %v, %v) = %v", tc.mode, tc.units, tc.quiet, tc.tty, got)
		}
	}
}

func TestWriteTablePadsByDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{{"TAG", "SPELLING"}, {"型名", "int"}}, false)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "TAG   SPELLING" || lines[1] != "型名  int" {
		t.Fatalf("table:\n%s", buf.String())
	}
}

func TestTraceFlagsConfig(t *testing.T) {
	cases := []struct {
		name      string
		flags     traceFlags
		wantLevel trace.Level
		wantMode  trace.StorageMode
	}{
		{"off", traceFlags{level: "off", mode: "ring"}, trace.LevelOff, 0},
		{"output implies phase", traceFlags{output: "run.ndjson", level: "off", mode: "ring"}, trace.LevelPhase, trace.ModeBoth},
		{"ring kept", traceFlags{level: "phase", mode: "ring"}, trace.LevelPhase, trace.ModeRing},
		{"stream kept", traceFlags{output: "-", level: "phase", mode: "stream"}, trace.LevelPhase, trace.ModeStream},
	}
	for _, tc := range cases {
		cfg, err := tc.flags.config()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if cfg.Level != tc.wantLevel || cfg.Mode != tc.wantMode {
			t.Errorf("%s: level %v mode %v", tc.name, cfg.Level, cfg.Mode)
		}
	}
	if _, err := (traceFlags{level: "phase", mode: "tape"}).config(); err == nil {
		t.Error("unknown mode accepted")
	}
}
