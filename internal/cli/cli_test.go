package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/space-missions/internal/catalog"
	"github.com/rcliao/space-missions/internal/model"
	"github.com/rcliao/space-missions/internal/spacex"
)

const dump = `{
  "launches": [
    {"flight_number": 1, "launch_date_local": "2006-03-24T12:00:00Z",
     "rocket": {"rocket_name": "Falcon 1"}, "payloads": [{"payload_id": "DemoSat"}],
     "launch_site": {"site_id": "Kwajalein"}},
    {"flight_number": 20, "launch_date_local": "2016-04-08T12:00:00Z",
     "rocket": {"rocket_name": "Falcon 9"}, "payloads": [{"payload_id": "CRS-8"}],
     "launch_site": {"site_id": "CCAFS"}}
  ],
  "launchpads": [
    {"id": 1, "site_id": "Kwajalein", "site_name_long": "Kwajalein Atoll"},
    {"id": 2, "site_id": "CCAFS", "site_name_long": "Cape Canaveral"}
  ]
}`

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launches.json")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetFlags restores flag defaults; cobra keeps parsed values on the
// package-level commands between Execute calls.
func resetFlags() {
	for _, name := range []string{"data-file", "api-url", "format", "verbose"} {
		if f := RootCmd.PersistentFlags().Lookup(name); f != nil {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	for _, c := range RootCmd.Commands() {
		for _, name := range []string{"pad", "min-year", "max-year", "keys-only"} {
			if f := c.Flags().Lookup(name); f != nil {
				f.Value.Set(f.DefValue)
				f.Changed = false
			}
		}
	}
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("SPACE_MISSIONS_TIMEZONE", "UTC")
	resetFlags()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestSearchText(t *testing.T) {
	path := writeDump(t)
	out := run(t, "search", "--data-file", path, "--format", "text", "Falcon", "9")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "#20\t2016-04-08\tFalcon 9\tCRS-8\tCCAFS") {
		t.Errorf("unexpected line %q", lines[0])
	}
}

func TestSearchYearRangeKeysOnly(t *testing.T) {
	path := writeDump(t)
	out := run(t, "search", "--data-file", path, "--min-year", "2000", "--max-year", "2010", "--keys-only")
	if strings.TrimSpace(out) != "1" {
		t.Errorf("expected flight 1 only, got %q", out)
	}
}

func TestYearsJSON(t *testing.T) {
	path := writeDump(t)
	out := run(t, "years", "--data-file", path, "--format", "json")

	var years []int
	if err := json.Unmarshal([]byte(out), &years); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(years) != 2 || years[0] != 2006 || years[1] != 2016 {
		t.Errorf("years = %v", years)
	}
}

func TestPads(t *testing.T) {
	path := writeDump(t)

	var pads []model.LaunchPad
	out := run(t, "pads", "--data-file", path)
	if err := json.Unmarshal([]byte(out), &pads); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(pads) != 2 || pads[0].SiteID != "Kwajalein" || pads[1].Name != "Cape Canaveral" {
		t.Errorf("pads = %+v", pads)
	}

	out = run(t, "pads", "--data-file", path, "--format", "text")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "CCAFS\t") || !strings.HasSuffix(lines[1], "\tCape Canaveral") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestStats(t *testing.T) {
	path := writeDump(t)
	out := run(t, "stats", "--data-file", path)

	var st catalog.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if st.Launches != 2 || st.LaunchPads != 2 {
		t.Errorf("counts = %d launches, %d pads", st.Launches, st.LaunchPads)
	}
	if st.FirstYear != 2006 || st.LastYear != 2016 {
		t.Errorf("year span = %d-%d", st.FirstYear, st.LastYear)
	}
	if st.SnapshotID == "" {
		t.Error("expected snapshot id")
	}
	if len(st.Sites) != 2 {
		t.Errorf("sites = %+v", st.Sites)
	}
}

func TestExportRoundTrip(t *testing.T) {
	path := writeDump(t)
	out := run(t, "export", "--data-file", path)

	var data spacex.PageData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(data.Launches) != 2 || len(data.LaunchPads) != 2 {
		t.Fatalf("exported %d launches, %d pads", len(data.Launches), len(data.LaunchPads))
	}

	exported := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(exported, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}

	keys := run(t, "search", "--data-file", exported, "--keys-only")
	if got := strings.Fields(keys); len(got) != 2 || got[0] != "1" || got[1] != "20" {
		t.Errorf("search over export = %q", keys)
	}
	keys = run(t, "search", "--data-file", exported, "--min-year", "2010", "--max-year", "2020", "--keys-only")
	if strings.TrimSpace(keys) != "20" {
		t.Errorf("year range over export = %q", keys)
	}
}

func TestSearchDateOnlyDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.json")
	raw := strings.NewReplacer("2006-03-24T12:00:00Z", "2006-03-24", "2016-04-08T12:00:00Z", "2016-04-08").Replace(dump)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	out := run(t, "search", "--data-file", path, "--min-year", "2000", "--max-year", "2010", "--keys-only")
	if strings.TrimSpace(out) != "1" {
		t.Errorf("expected flight 1 only, got %q", out)
	}
}
