package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/doctran/internal/config"
	"github.com/valpere/doctran/internal/orchestrator"
	"github.com/valpere/doctran/internal/report"
)

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.Contains(req.Prompt, "FAIL") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "UK:" + req.Prompt})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTranslateCommand_Folder(t *testing.T) {
	srv := fakeOllama(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	reportPath := filepath.Join(dir, "report.yaml")
	writeTree(t, in, map[string]string{
		"a.txt":       "Hello",
		"sub/b.txt":   "World",
		"bad.txt":     "FAIL here",
		"ignored.png": "x",
	})

	stdout, err := execute(t, "translate",
		"-i", in, "-o", out, "-t", "uk", "-s", "en",
		"--service", "ollama", "--ollama-url", srv.URL,
		"--no-cache", "--no-prompt", "--no-color", "--ui-lang", "en",
		"--retry-delay", "0s", "--max-attempts", "2",
		"--report", reportPath,
	)
	if err != nil {
		t.Fatalf("translate failed: %v\n%s", err, stdout)
	}

	for name, want := range map[string]string{"a.txt": "UK:Hello", "sub/b.txt": "UK:World"} {
		got, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "ignored.png")); !os.IsNotExist(err) {
		t.Errorf("unsupported files in a folder must be skipped, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "bad.txt")); !os.IsNotExist(err) {
		t.Errorf("a failed file must not be written, stat err = %v", err)
	}

	s, err := report.Load(reportPath)
	if err != nil {
		t.Fatalf("loading report: %v", err)
	}
	wantFailed, _ := filepath.Abs(filepath.Join(in, "bad.txt"))
	if len(s.FailedFiles) != 1 || s.FailedFiles[0] != wantFailed {
		t.Errorf("FailedFiles = %v, want [%s]", s.FailedFiles, wantFailed)
	}
	if s.Service != "ollama" || s.TargetLang != "uk" {
		t.Errorf("unexpected report meta: %+v", s.Meta)
	}
	if !strings.Contains(stdout, "could not be translated") {
		t.Errorf("console report missing from output:\n%s", stdout)
	}
}

func TestTranslateCommand_NoTargetLanguage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeTree(t, in, map[string]string{"a.txt": "Hello"})

	_, err := execute(t, "translate", "-i", in, "-o", out, "-t", "", "--no-cache")
	if !errors.Is(err, orchestrator.ErrNoTargetLang) {
		t.Fatalf("err = %v, want ErrNoTargetLang", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output folder must not be created, stat err = %v", err)
	}
}

func TestTranslateCommand_UnavailableService(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeTree(t, in, map[string]string{"a.txt": "Hello", "b.txt": "World"})

	_, err := execute(t, "translate",
		"-i", in, "-o", out, "-t", "uk",
		"--service", "openai", "--openai-key", "",
		"--no-cache", "--no-prompt", "--ui-lang", "en",
	)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
	if !strings.Contains(err.Error(), "API key not configured") {
		t.Errorf("error does not say why: %v", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("no file may be written before the service is usable, found %d", len(entries))
	}
}

func TestBuildService(t *testing.T) {
	for _, name := range config.Services {
		svc, err := buildService(&config.Config{Service: name})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if svc.Name() != name {
			t.Errorf("buildService(%q).Name() = %q", name, svc.Name())
		}
	}

	if _, err := buildService(&config.Config{Service: "babelfish"}); err == nil {
		t.Error("expected error for unknown service")
	}
}

func TestOpenStore_CreatesFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "doctran.db")
	db, err := openStore(path)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}
