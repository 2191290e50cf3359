package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lectureiq/internal/testsupport"
)

type cliTestEnv struct {
	server     *testsupport.Server
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	server := testsupport.NewServer()
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithBaseURL(server.URL()),
		testsupport.WithTimeout(5),
	)
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{server: server, configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return env.runWithInput(t, "", args...)
}

func (env *cliTestEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (env *cliTestEnv) register(t *testing.T) {
	t.Helper()
	out, err := env.run(t, "register",
		"--name", "Ada", "--email", "ada@example.com", "--password", "correcthorse")
	if err != nil {
		t.Fatalf("register: %v\n%s", err, out)
	}
}

func (env *cliTestEnv) writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(env.baseDir, name)
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	return path
}

func TestRegisterWhoamiLogout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "register",
		"--name", "Ada", "--email", "ada@example.com", "--password", "correcthorse")
	if err != nil {
		t.Fatalf("register: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Registered and signed in as Ada <ada@example.com>") {
		t.Fatalf("unexpected register output: %q", out)
	}

	out, err = env.run(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Ada <ada@example.com>") {
		t.Fatalf("unexpected whoami output: %q", out)
	}

	if out, err = env.run(t, "logout"); err != nil {
		t.Fatalf("logout: %v\n%s", err, out)
	}

	out, err = env.run(t, "whoami")
	if err != nil {
		t.Fatalf("whoami after logout: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Not signed in") {
		t.Fatalf("expected signed-out whoami, got %q", out)
	}
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.SeedUser("Ada", "ada@example.com", "correcthorse")

	out, err := env.runWithInput(t, "correcthorse\n", "login", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Signed in as Ada <ada@example.com>") {
		t.Fatalf("unexpected login output: %q", out)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, args := range [][]string{
		{"lectures", "list"},
		{"upload", "x.mp3"},
		{"watch", "some-id"},
	} {
		if _, err := env.run(t, args...); err == nil || !strings.Contains(err.Error(), "not signed in") {
			t.Fatalf("%v: err = %v, want not signed in", args, err)
		}
	}
}

func TestRevokedSessionIsClearedLocally(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	env.server.RevokeAllTokens()

	if _, err := env.run(t, "lectures", "list"); err == nil {
		t.Fatal("expected error after token revocation")
	}

	// The 401 hook wipes the stored session, so the next command starts
	// signed out without touching the network.
	out, err := env.run(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Not signed in") {
		t.Fatalf("expected signed-out whoami, got %q", out)
	}
}

func TestUploadListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "week-03 lecture.mp3")

	out, err := env.run(t, "upload", audio)
	if err != nil {
		t.Fatalf("upload: %v\n%s", err, out)
	}
	if !strings.Contains(out, `Uploaded "week-03 lecture"`) {
		t.Fatalf("unexpected upload output: %q", out)
	}

	out, err = env.run(t, "lectures", "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "week-03 lecture") {
		t.Fatalf("uploaded lecture missing from list: %q", out)
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)

	path := filepath.Join(env.baseDir, "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "upload", path); err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("err = %v, want unsupported file type", err)
	}
}

func TestWatchFollowsLectureToCompletion(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "thermo.mp3")

	out, err := env.run(t, "upload", audio, "--watch")
	if err != nil {
		t.Fatalf("upload --watch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Processing") {
		t.Fatalf("expected processing updates, got %q", out)
	}
	if !strings.Contains(out, "Completed") {
		t.Fatalf("expected terminal completed line, got %q", out)
	}
}

func TestWatchSurfacesProcessingFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "muffled.mp3")

	uploadOut, err := env.run(t, "upload", audio, "--json")
	if err != nil {
		t.Fatalf("upload: %v\n%s", err, uploadOut)
	}
	id := extractFirstID(t, uploadOut)
	env.server.SetScript(id, testsupport.FailingScript("audio too noisy"))

	out, err := env.run(t, "watch", id)
	if err == nil || !strings.Contains(err.Error(), "audio too noisy") {
		t.Fatalf("watch err = %v, want processing failure with message", err)
	}
	if !strings.Contains(out, "Failed") {
		t.Fatalf("expected failed status line, got %q", out)
	}

	// watch stops at the failed snapshot: initial fetch plus one poll.
	if got := env.server.Hits("GET /api/lectures/{id}"); got != 2 {
		t.Fatalf("detail fetches = %d, want 2", got)
	}
}

func TestShowRendersStudyMaterial(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "thermo.mp3")

	if out, err := env.run(t, "upload", audio, "--watch"); err != nil {
		t.Fatalf("upload --watch: %v\n%s", err, out)
	}

	listOut, err := env.run(t, "lectures", "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	id := extractFirstID(t, listOut)

	out, err := env.run(t, "lectures", "show", id)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	for _, want := range []string{"== Notes ==", "== Flashcards", "== Quiz", "== Resources"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "lectures", "transcript", id)
	if err != nil {
		t.Fatalf("transcript: %v\n%s", err, out)
	}
	if !strings.Contains(out, "welcome to the lecture") {
		t.Fatalf("unexpected transcript output: %q", out)
	}
}

func TestQuizSubmission(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "thermo.mp3")

	if out, err := env.run(t, "upload", audio, "--watch"); err != nil {
		t.Fatalf("upload --watch: %v\n%s", err, out)
	}
	listOut, err := env.run(t, "lectures", "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	id := extractFirstID(t, listOut)

	// Correct options are 2, 3, 1 (1-based); answer two of three right.
	out, err := env.run(t, "quiz", id, "--answers", "2,3,4")
	if err != nil {
		t.Fatalf("quiz: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Score: 2/3 (66.7%)") {
		t.Fatalf("unexpected quiz output: %q", out)
	}

	if _, err := env.run(t, "quiz", id, "--answers", "1,2"); err == nil ||
		!strings.Contains(err.Error(), "3 questions") {
		t.Fatalf("short answers err = %v, want question count mismatch", err)
	}
	if _, err := env.run(t, "quiz", id, "--answers", "1,2,9"); err == nil ||
		!strings.Contains(err.Error(), "out of range") {
		t.Fatalf("bad option err = %v, want out of range", err)
	}
}

func TestDeleteLecture(t *testing.T) {
	env := setupCLITestEnv(t)
	env.register(t)
	audio := env.writeAudio(t, "thermo.mp3")

	if out, err := env.run(t, "upload", audio); err != nil {
		t.Fatalf("upload: %v\n%s", err, out)
	}
	listOut, err := env.run(t, "lectures", "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	id := extractFirstID(t, listOut)

	out, err := env.run(t, "lectures", "delete", id, "--force")
	if err != nil {
		t.Fatalf("delete: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Deleted lecture") {
		t.Fatalf("unexpected delete output: %q", out)
	}

	out, err = env.runWithInput(t, "n\n", "lectures", "delete", "missing-id")
	if err != nil {
		t.Fatalf("aborted delete should not fail: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Aborted") {
		t.Fatalf("expected abort, got %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "fresh", "config.toml")
	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, env.server.URL()) {
		t.Fatalf("config show missing endpoint: %q", out)
	}
}

// extractFirstID pulls the first "id" value from JSON list output.
func extractFirstID(t *testing.T, jsonOut string) string {
	t.Helper()
	marker := `"id": "`
	idx := strings.Index(jsonOut, marker)
	if idx < 0 {
		t.Fatalf("no id in output: %q", jsonOut)
	}
	rest := jsonOut[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("unterminated id in output: %q", jsonOut)
	}
	return rest[:end]
}
