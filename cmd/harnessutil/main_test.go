package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"harnessutil/internal/config"
	"harnessutil/internal/fileutil"
	"harnessutil/internal/logging"
	"harnessutil/internal/services"
	"harnessutil/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []map[string]string
}

func (r *webhookRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		channel, _ := payload["channel"].(string)
		text, _ := payload["text"].(string)
		r.mu.Lock()
		r.payloads = append(r.payloads, map[string]string{"channel": channel, "text": text})
		r.mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	}
}

func (r *webhookRecorder) calls() []map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]string(nil), r.payloads...)
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("WEBHOOK_URL", "")

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd, cmdCtx := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	if closeErr := cmdCtx.close(); closeErr != nil {
		t.Errorf("close log file: %v", closeErr)
	}
	return stdout.String(), stderr.String(), err
}

func TestCLINotifyUsesConfiguredWebhook(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	defer server.Close()

	env := setupCLITestEnv(t, testsupport.WithWebhook(server.URL))

	out, stderr, err := runCLI(t, []string{"notify", "--channel", "#ci", "--message", "build passed"}, env.configPath)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(out, "Notification sent to #ci") {
		t.Fatalf("unexpected notify output: %q", out)
	}
	if !strings.Contains(stderr, "webhook delivered") {
		t.Fatalf("expected response to be logged, got %q", stderr)
	}

	calls := recorder.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one webhook call, got %d", len(calls))
	}
	if calls[0]["channel"] != "#ci" || calls[0]["text"] != "build passed" {
		t.Fatalf("unexpected payload: %#v", calls[0])
	}
}

func TestCLINotifyWebhookOverride(t *testing.T) {
	configured := &webhookRecorder{}
	configuredServer := httptest.NewServer(configured.handler(t))
	defer configuredServer.Close()
	override := &webhookRecorder{}
	overrideServer := httptest.NewServer(override.handler(t))
	defer overrideServer.Close()

	env := setupCLITestEnv(t, testsupport.WithWebhook(configuredServer.URL))

	_, _, err := runCLI(t, []string{"notify", "--message", "hello", "--webhook", overrideServer.URL}, env.configPath)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := len(configured.calls()); got != 0 {
		t.Fatalf("configured webhook should not be called, got %d calls", got)
	}
	calls := override.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one override call, got %d", len(calls))
	}
	if calls[0]["channel"] != env.cfg.Notifications.DefaultChannel {
		t.Fatalf("expected default channel, got %q", calls[0]["channel"])
	}
}

func TestCLINotifyWithoutWebhookIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"notify", "--message", "hello"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitConfiguration {
		t.Fatalf("expected exit code %d, got %d", services.ExitConfiguration, code)
	}
}

func TestCLIMalformedEnvWebhookOnlyAffectsEnvNotifications(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	defer server.Close()

	env := setupCLITestEnv(t)
	t.Setenv("WEBHOOK_URL", "hooks.example.com/abc")

	if _, _, err := runCLI(t, []string{"notify", "--message", "hello", "--webhook", server.URL}, env.configPath); err != nil {
		t.Fatalf("notify with override: %v", err)
	}
	if got := len(recorder.calls()); got != 1 {
		t.Fatalf("expected one override call, got %d", got)
	}

	target := filepath.Join(env.baseDir, "x.log")
	if _, _, err := runCLI(t, []string{"reset", target}, env.configPath); err != nil {
		t.Fatalf("reset: %v", err)
	}

	_, _, err := runCLI(t, []string{"notify", "--message", "hello"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for malformed env webhook, got %v", err)
	}
	if got := len(recorder.calls()); got != 1 {
		t.Fatalf("expected no further calls, got %d", got)
	}

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Warning: WEBHOOK_URL") || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("expected env webhook warning, got %q", out)
	}

	data, err := os.ReadFile(filepath.Join(env.cfg.Logging.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "webhook delivered") {
		t.Fatalf("expected delivery in log file, got %q", data)
	}
}

func TestCLINotifyTest(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	defer server.Close()

	env := setupCLITestEnv(t, testsupport.WithWebhook(server.URL))

	out, _, err := runCLI(t, []string{"notify", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	if !strings.Contains(out, "Test notification sent") {
		t.Fatalf("unexpected output: %q", out)
	}
	calls := recorder.calls()
	if len(calls) != 1 || calls[0]["channel"] != env.cfg.Notifications.DefaultChannel {
		t.Fatalf("unexpected test notification calls: %#v", calls)
	}
}

func TestCLITail(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.baseDir, "run.log")
	if err := os.WriteFile(logPath, []byte("\na\nb\n\nc\nd\ne\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"tail", "-n", "3", logPath}, env.configPath)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if out != "c\nd\ne\n" {
		t.Fatalf("unexpected tail output: %q", out)
	}

	out, _, err = runCLI(t, []string{"tail", "-n", "2", "--table", logPath}, env.configPath)
	if err != nil {
		t.Fatalf("tail --table: %v", err)
	}
	if !strings.Contains(out, "LINE") || !strings.Contains(out, "d") || !strings.Contains(out, "e") {
		t.Fatalf("unexpected table output: %q", out)
	}
}

func TestCLITailRejectsNonPositiveLines(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.baseDir, "run.log")
	if err := os.WriteFile(logPath, []byte("a\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	_, _, err := runCLI(t, []string{"tail", "-n", "0", logPath}, env.configPath)
	if code := services.ExitCode(err); code != services.ExitValidation {
		t.Fatalf("expected validation exit code, got %d (%v)", code, err)
	}
}

func TestCLITailMissingFileIsIOError(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"tail", filepath.Join(env.baseDir, "missing.log")}, env.configPath)
	if code := services.ExitCode(err); code != services.ExitIO {
		t.Fatalf("expected io exit code, got %d (%v)", code, err)
	}
}

func TestCLITailFollow(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.baseDir, "run.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd, cmdCtx := newRootCommand()
	defer cmdCtx.close()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", env.configPath, "tail", "-n", "1", "--follow", "--wait", "200ms", logPath})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()

	time.Sleep(150 * time.Millisecond)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("followed\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	f.Close()
	time.Sleep(400 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("tail --follow: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tail --follow did not exit")
	}

	out := stdout.String()
	if strings.Contains(out, "first") {
		t.Fatalf("expected only the last line before following, got %q", out)
	}
	if !strings.Contains(out, "second") || !strings.Contains(out, "followed") {
		t.Fatalf("expected follow output to include new line, got %q", out)
	}
}

func TestCLIReset(t *testing.T) {
	env := setupCLITestEnv(t)
	existing := filepath.Join(env.baseDir, "existing.log")
	if err := os.WriteFile(existing, []byte("old output\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	nested := filepath.Join(env.baseDir, "deep", "nested", "new.log")

	out, _, err := runCLI(t, []string{"reset", existing, nested}, env.configPath)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, path := range []string{existing, nested} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() != 0 {
			t.Fatalf("expected %s to be empty, got %d bytes", path, info.Size())
		}
		if !strings.Contains(out, "Reset "+path) {
			t.Fatalf("missing reset line for %s in %q", path, out)
		}
	}
}

func TestCLIResetLockedFromConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLockedResets())
	target := filepath.Join(env.baseDir, "shared.log")

	if _, _, err := runCLI(t, []string{"reset", target}, env.configPath); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(fileutil.LockPath(target)); err != nil {
		t.Fatalf("expected lock file to be created: %v", err)
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWebhook("https://hooks.example.com/services/T000/B000/secret"))

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected validate output: %q", out)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "Notifications") || !strings.Contains(out, "hooks.example.com") {
		t.Fatalf("unexpected show output: %q", out)
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("webhook path should be redacted: %q", out)
	}

	samplePath := filepath.Join(env.baseDir, "sample", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", samplePath}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, samplePath) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", samplePath}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", samplePath, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIGlobalLogFlagsAreValidated(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"--log-format", "xml", "config", "validate"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCLIVersion(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "harnessutil ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
