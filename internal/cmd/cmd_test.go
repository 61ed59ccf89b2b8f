package cmd

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var artifactBody = bytes.Repeat([]byte("devsim"), 200)

func artifactSHA1() string {
	sum := sha1.Sum(artifactBody)
	return hex.EncodeToString(sum[:])
}

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd("1.2.3", "abc123", "2024-05-01")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

// isolateEnv keeps config discovery away from the real home directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("DEVSIM_CONFIG", "")
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func artifactOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(artifactBody)
	}))
	t.Cleanup(server.Close)
	return server
}

// commandFor writes an update command targeting devices with one artifact served by url.
func commandFor(t *testing.T, dir, url, sha1Hash string, devices ...string) string {
	t.Helper()
	var ids string
	if len(devices) > 0 {
		ids = "device_ids: [" + strings.Join(devices, ", ") + "]\n"
	}
	return writeTestFile(t, dir, "update.yaml", fmt.Sprintf(`%s
modules:
  - name: firmware
    version: 1.0.0
    artifacts:
      - filename: fw.bin
        size: %d
        hashes:
          sha1: %s
        urls:
          HTTP: %s/fw.bin
`, ids, len(artifactBody), sha1Hash, url))
}

// decodeStream splits JSON output into feedback events and the summary.
func decodeStream(t *testing.T, out string) (feedback []map[string]interface{}, summary map[string]interface{}) {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(out))
	for {
		var v map[string]interface{}
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, out)
		}
		if _, ok := v["sessions"]; ok {
			summary = v
			continue
		}
		feedback = append(feedback, v)
	}
	if summary == nil {
		t.Fatalf("no summary in output:\n%s", out)
	}
	return feedback, summary
}

func statusesFor(feedback []map[string]interface{}, deviceID string) []string {
	var statuses []string
	for _, f := range feedback {
		if f["device_id"] == deviceID {
			statuses = append(statuses, f["status"].(string))
		}
	}
	return statuses
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
