package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amishk599/ghboard/internal/config"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestApplyRunFlags_OnlyChangedFlagsApply(t *testing.T) {
	cfg := config.Default()
	cfg.Defaults.MaxJobs = 10

	cmd := newFlagCmd(t, "--days-back", "3")
	applyRunFlags(cmd, cfg, nil)

	if cfg.Defaults.DaysBack != 3 {
		t.Errorf("DaysBack = %v, want 3", cfg.Defaults.DaysBack)
	}
	if cfg.Defaults.MaxJobs != 10 {
		t.Errorf("MaxJobs = %v, want config value 10 kept", cfg.Defaults.MaxJobs)
	}
	if cfg.Defaults.Departments != nil {
		t.Errorf("Departments = %v, want nil", cfg.Defaults.Departments)
	}
}

func TestApplyRunFlags_ArgsReplaceURLs(t *testing.T) {
	cfg := config.Default()
	cfg.URLs = []config.BoardConfig{{URL: "https://boards.greenhouse.io/old"}}

	cmd := newFlagCmd(t, "--departments", "4,5")
	applyRunFlags(cmd, cfg, []string{"https://boards.greenhouse.io/a", "https://boards.greenhouse.io/b"})

	if len(cfg.URLs) != 2 || cfg.URLs[0].URL != "https://boards.greenhouse.io/a" {
		t.Errorf("URLs = %+v", cfg.URLs)
	}
	ids, ok := cfg.Defaults.Departments.([]int)
	if !ok || len(ids) != 2 || ids[0] != 4 || ids[1] != 5 {
		t.Errorf("Departments = %#v", cfg.Defaults.Departments)
	}
}

func TestLoadConfig_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GHBOARD_CONFIG", "")

	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.URLs) != 0 || len(cfg.Sinks) != 1 {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, err := loadConfig("", false); err == nil {
		t.Error("expected error when the file is required")
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Error("an explicit path must exist")
	}
}

func TestLoadConfig_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghboard.yaml")
	if err := os.WriteFile(path, []byte("urls:\n  - https://boards.greenhouse.io/acme\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GHBOARD_CONFIG", path)

	cfg, err := loadConfig("", false)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.URLs) != 1 {
		t.Errorf("URLs = %+v", cfg.URLs)
	}
}

func TestOpenSink_Unknown(t *testing.T) {
	if _, err := openSink(t.Context(), config.SinkConfig{Type: "carrier-pigeon"}, silentLogger()); err == nil {
		t.Error("expected error for unknown sink type")
	}
}

func TestBuildSinks_JSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := buildSinks(t.Context(), []config.SinkConfig{{Type: "log"}, {Type: "jsonl", Path: path}}, silentLogger())
	if err != nil {
		t.Fatalf("buildSinks: %v", err)
	}
	defer out.Close()
	if len(out) != 2 {
		t.Errorf("got %d sinks, want 2", len(out))
	}
}

func TestBoardsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
max_jobs: 5
urls:
  - https://boards.greenhouse.io/acme
  - url: https://job-boards.greenhouse.io/globex
    departments: [12, "x"]
  - https://example.com/
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath = path
	t.Cleanup(func() { cfgPath = "" })

	var buf bytes.Buffer
	boardsCmd.SetOut(&buf)
	t.Cleanup(func() { boardsCmd.SetOut(nil) })

	if err := runBoards(boardsCmd, nil); err != nil {
		t.Fatalf("runBoards: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"acme", "globex", "12", "(invalid)", "Warnings:", "3 urls (2 valid, 1 invalid)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)
	if got := buf.String(); got != "ghboard dev\n" {
		t.Errorf("version output = %q", got)
	}
}

// newBoardServer serves one board, "acme", with two departments.
func newBoardServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/boards/acme/departments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"departments":[
			{"id":4012,"name":"Engineering","jobs":[
				{"id":101,"title":"Backend Engineer","location":{"name":"Remote - US"},"absolute_url":"https://boards.greenhouse.io/acme/jobs/101","updated_at":"2026-10-01T12:00:00-04:00"},
				{"id":102,"title":"SRE","location":{"name":"Toronto, Canada"},"absolute_url":"https://boards.greenhouse.io/acme/jobs/102","updated_at":"2026-10-02T12:00:00-04:00"}
			]},
			{"id":4013,"name":"Sales","jobs":[]}
		]}`)
	})
	mux.HandleFunc("/v1/boards/acme/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/102") {
			fmt.Fprint(w, `{"content":"&lt;p&gt;Based in Canada. Pay: $100k - $120k&lt;/p&gt;","metadata":[]}`)
			return
		}
		fmt.Fprint(w, `{"content":"&lt;p&gt;Pay: $100k - $120k&lt;/p&gt;","metadata":[]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// useConfig writes body as the config file and points --config at it.
func useConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath = path
	t.Cleanup(func() { cfgPath = "" })
	return path
}

func TestDepartmentsCommand(t *testing.T) {
	srv := newBoardServer(t)
	useConfig(t, "http:\n  base_url: "+srv.URL+"/v1/boards\n  max_retries: 0\n")

	var buf bytes.Buffer
	departmentsCmd.SetOut(&buf)
	t.Cleanup(func() { departmentsCmd.SetOut(nil) })

	if err := runDepartments(departmentsCmd, []string{"https://job-boards.greenhouse.io/acme"}); err != nil {
		t.Fatalf("runDepartments: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "NAME", "4012", "Engineering", "4013", "Sales", "acme: 2 departments, 2 jobs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDepartmentsCommand_UnknownBoard(t *testing.T) {
	srv := newBoardServer(t)
	useConfig(t, "http:\n  base_url: "+srv.URL+"/v1/boards\n  max_retries: 0\n")

	err := runDepartments(departmentsCmd, []string{"https://boards.greenhouse.io/nobody"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want a 404 listing error", err)
	}
}

func TestRunCommand_WritesRecords(t *testing.T) {
	srv := newBoardServer(t)
	outPath := filepath.Join(t.TempDir(), "records.jsonl")
	useConfig(t, fmt.Sprintf(`
http:
  base_url: %s/v1/boards
  max_retries: 0
output:
  sinks:
    - type: jsonl
      path: %s
`, srv.URL, outPath))
	flagSkipDetails = false

	if err := runRun(runCmd, []string{"https://boards.greenhouse.io/acme"}); err != nil {
		t.Fatalf("runRun: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("got %d records, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"title":"Backend Engineer"`) || !strings.Contains(lines[0], `"currency":"USD"`) ||
		!strings.Contains(lines[1], `"currency":"CAD"`) {
		t.Errorf("unexpected records:\n%s", strings.Join(lines, "\n"))
	}
}

func TestRunCommand_AllBoardsFailed(t *testing.T) {
	srv := newBoardServer(t)
	useConfig(t, "http:\n  base_url: "+srv.URL+"/v1/boards\n  max_retries: 0\n")

	err := runRun(runCmd, []string{"https://boards.greenhouse.io/nobody"})
	if err == nil || !strings.Contains(err.Error(), "all 1 boards failed") {
		t.Errorf("err = %v, want all boards failed", err)
	}
}

func TestRunCommand_NoURLs(t *testing.T) {
	useConfig(t, "max_jobs: 3\n")
	if err := runRun(runCmd, nil); !errors.Is(err, config.ErrNoURLs) {
		t.Errorf("err = %v, want ErrNoURLs", err)
	}
}

func TestWatchCommand_LockHeld(t *testing.T) {
	useConfig(t, "urls:\n  - https://boards.greenhouse.io/acme\n")

	lockFile = filepath.Join(t.TempDir(), "ghboard.lock")
	t.Cleanup(func() { lockFile = "ghboard.lock" })

	held := flock.New(lockFile)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	if err := runWatch(watchCmd, nil); !errors.Is(err, errAlreadyRunning) {
		t.Errorf("err = %v, want errAlreadyRunning", err)
	}
}

func TestWatchCommand_NoURLs(t *testing.T) {
	useConfig(t, "interval: 1m\n")
	if err := runWatch(watchCmd, nil); !errors.Is(err, config.ErrNoURLs) {
		t.Errorf("err = %v, want ErrNoURLs", err)
	}
}
