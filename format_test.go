package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintInspectReport(t *testing.T) {
	app := newTestApp(t)
	app.LoadBase(loadDowntown(t))

	var buf bytes.Buffer
	printInspectReport(&buf, app.Scene())
	printValidationReport(&buf, app.Validate())
	out := buf.String()

	for _, want := range []string{
		"BUILDINGS (6 of 6):",
		"tower-1",
		"origin:  51.04700, -114.06700",
		"fetched: 2025-01-01T00:00:00Z",
		"Loaded 6 downtown buildings",
		"VALIDATION (1 errors, 2 warnings):",
		"[error] sliver polygon 0: no ring with at least 3 points",
		"[warning] 4040: height 2 m raised to 6 m",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestPrintPickEmpty(t *testing.T) {
	var buf bytes.Buffer
	printPick(&buf, 10, 20, nil)
	if got := buf.String(); got != "(10, 20): empty space\n" {
		t.Errorf("printPick = %q", got)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("height_m:>:100")
	if err != nil {
		t.Fatal(err)
	}
	if f.Attribute != "height_m" || f.Operator != ">" || f.Value != 100.0 {
		t.Errorf("parseFilter = %+v", f)
	}

	f, err = parseFilter("zoning:contains:CR20")
	if err != nil || f.Value != "CR20" {
		t.Errorf("parseFilter = %+v, %v", f, err)
	}

	for _, bad := range []string{"height_m", "height_m:>", ":=:1", "height_m:~:1"} {
		if _, err := parseFilter(bad); err == nil {
			t.Errorf("parseFilter(%q) should fail", bad)
		}
	}
}
