package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stacksPayload     = `[{"Id": 1, "Name": "web", "EndpointId": 1}, {"Id": 2, "Name": "db", "EndpointId": 1}]`
	containersPayload = `[
		{"Id": "a", "Names": ["/web-app-1"], "State": "running", "Labels": {"com.docker.compose.project": "web"}},
		{"Id": "b", "Names": ["/db-primary-1"], "State": "running", "Labels": {"com.docker.compose.project": "db"}},
		{"Id": "c", "Names": ["/db-replica-1"], "State": "exited", "Labels": {"com.docker.compose.project": "db"}}
	]`
)

type recordingMessenger struct {
	mu      sync.Mutex
	nextID  int
	sendErr error
	sent   []domain.StatusArtifact
	edited map[domain.MessageID]domain.StatusArtifact
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{nextID: 100, edited: map[domain.MessageID]domain.StatusArtifact{}}
}

func (m *recordingMessenger) Send(_ context.Context, _ domain.ChannelID, artifact domain.StatusArtifact) (domain.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, artifact)
	return domain.MessageID(fmt.Sprintf("%d", m.nextID)), nil
}

func (m *recordingMessenger) Edit(_ context.Context, _ domain.ChannelID, messageID domain.MessageID, artifact domain.StatusArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.edited[messageID] = artifact
	return nil
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, testDependencies(nil), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestStatusRendersStacksFromPortainer(t *testing.T) {
	server := newPortainerFixture(t)
	configPath := writeConfigFixture(t, server.URL, "json")

	stdout, stderr, err := executeCLI(t, testDependencies(nil), "--config", configPath, "status", "--containers")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Portainer Stacks")
	assert.Contains(t, stdout, "stacks: 2  running: 1  partial: 1  offline: 0")
	assert.Contains(t, stdout, "db-replica-1")
	assert.Contains(t, stdout, "message: not posted yet")
	assert.Contains(t, stderr, "Fetched 2 stacks (2/3 containers running) from "+server.URL+" (endpoint 1)")
}

func TestStatusJSONOutput(t *testing.T) {
	server := newPortainerFixture(t)
	configPath := writeConfigFixture(t, server.URL, "json")

	stdout, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "status", "--json")
	require.NoError(t, err)

	jsonStart := strings.Index(stdout, "[")
	require.GreaterOrEqual(t, jsonStart, 0)
	assert.True(t, json.Valid([]byte(stdout[jsonStart:])))
	assert.Contains(t, stdout, "\"Status\": \"PARTIALLY_RUNNING\"")
	assert.Contains(t, stdout, "\"Artifact\"")
}

func TestStatusReportsMissingConfiguration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[portainer]\nendpoint_id = 1\n"), 0o600))

	_, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portainer.url is required")
	assert.Contains(t, err.Error(), "portainer.token (or portainer.token_ref) is required")
}

func TestSyncPostsThenEditsAndPersistsIndex(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			server := newPortainerFixture(t)
			configPath := writeConfigFixture(t, server.URL, backend)
			messenger := newRecordingMessenger()
			deps := testDependencies(messenger)

			stdout, _, err := executeCLI(t, deps, "--config", configPath, "sync")
			require.NoError(t, err)
			assert.Contains(t, stdout, "2 stacks, 2 created, 0 updated, 0 recreated, 0 pruned, 0 failed")
			require.Len(t, messenger.sent, 2)
			assert.Equal(t, "🟢 **web**", messenger.sent[0].Title)
			assert.Equal(t, "🟡 **db**", messenger.sent[1].Title)

			stdout, _, err = executeCLI(t, deps, "--config", configPath, "sync")
			require.NoError(t, err)
			assert.Contains(t, stdout, "2 stacks, 0 created, 2 updated")
			assert.Len(t, messenger.sent, 2)
			assert.Contains(t, messenger.edited, domain.MessageID("101"))
			assert.Contains(t, messenger.edited, domain.MessageID("102"))

			stdout, _, err = executeCLI(t, deps, "--config", configPath, "state", "show")
			require.NoError(t, err)
			assert.Contains(t, stdout, "(2 messages)")
			assert.Contains(t, stdout, "1\t101")
			assert.Contains(t, stdout, "2\t102")
		})
	}
}

func TestSyncJSONReport(t *testing.T) {
	server := newPortainerFixture(t)
	configPath := writeConfigFixture(t, server.URL, "json")

	stdout, _, err := executeCLI(t, testDependencies(newRecordingMessenger()), "--config", configPath, "sync", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.EqualValues(t, 2, report["Stacks"])
	assert.EqualValues(t, 2, report["Created"])
}

func TestSyncJSONReportIncludesFailureCauses(t *testing.T) {
	server := newPortainerFixture(t)
	configPath := writeConfigFixture(t, server.URL, "json")
	messenger := newRecordingMessenger()
	messenger.sendErr = errors.New("status 403: missing access")

	stdout, _, err := executeCLI(t, testDependencies(messenger), "--config", configPath, "sync", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 stacks failed")

	var report struct {
		Failures []struct {
			StackID   string
			StackName string
			Err       string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "1", report.Failures[0].StackID)
	assert.Equal(t, "web", report.Failures[0].StackName)
	assert.Equal(t, "send message: status 403: missing access", report.Failures[0].Err)
}

func TestSyncFailsWhenPortainerIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()
	configPath := writeConfigFixture(t, server.URL, "json")
	messenger := newRecordingMessenger()

	_, _, err := executeCLI(t, testDependencies(messenger), "--config", configPath, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list stacks")
	assert.Empty(t, messenger.sent)
}

func TestStatePruneKeepsRequestedStacks(t *testing.T) {
	configPath := writeConfigFixture(t, "https://portainer.invalid", "json")
	dataDir := filepath.Join(filepath.Dir(configPath), "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "stackMessages.json"), []byte(`{"1":"101","2":"102","3":"103"}`), 0o600))

	stdout, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "state", "prune", "--keep", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed 2 entries: [1 3]")

	stdout, _, err = executeCLI(t, testDependencies(nil), "--config", configPath, "state", "show", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"2":"102"}`, stdout)
}

func TestStatePruneRefusesUnreadableStateFile(t *testing.T) {
	configPath := writeConfigFixture(t, "https://portainer.invalid", "json")
	dataDir := filepath.Join(filepath.Dir(configPath), "data")
	statePath := filepath.Join(dataDir, "stackMessages.json")
	require.NoError(t, os.MkdirAll(dataDir, 0o700))
	require.NoError(t, os.WriteFile(statePath, []byte(`{"1":"101",`), 0o600))

	_, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "state", "prune", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to edit")

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, `{"1":"101",`, string(data))
}

func TestStatePruneRequiresKeepOrAll(t *testing.T) {
	configPath := writeConfigFixture(t, "https://portainer.invalid", "json")

	_, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "state", "prune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--keep")
}

func TestConfigInitWritesDefaultsOnce(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pn", "config.toml")

	stdout, _, err := executeCLI(t, testDependencies(nil), "--config", configPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[portainer]")
	assert.Contains(t, string(data), "[status.running]")

	_, _, err = executeCLI(t, testDependencies(nil), "--config", configPath, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file already exists")

	_, _, err = executeCLI(t, testDependencies(nil), "--config", configPath, "config", "init", "--force")
	require.NoError(t, err)
}

func executeCLI(t *testing.T, deps dependencies, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	root := newRootCmdWithDeps(deps)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func testDependencies(messenger ports.Messenger) dependencies {
	deps := defaultDependencies()
	deps.clock = fixedClock{}
	deps.openDiscord = func(token string) (*discordgo.Session, error) {
		return discordgo.New("Bot " + token)
	}
	deps.newMessenger = func(*discordgo.Session, ports.Clock) ports.Messenger {
		return messenger
	}
	return deps
}

func newPortainerFixture(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ptr_test", r.Header.Get("X-API-Key"))

		switch {
		case r.URL.Path == "/api/stacks":
			_, _ = fmt.Fprint(w, stacksPayload)
		case strings.HasSuffix(r.URL.Path, "/_ping"):
			w.Header().Set("Api-Version", "1.45")
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/api/endpoints/1/docker/") && strings.HasSuffix(r.URL.Path, "/containers/json"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, containersPayload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func writeConfigFixture(t *testing.T, portainerURL, backend string) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`
[portainer]
url = %q
token = "ptr_test"

[discord]
token = "bot-token"
channel_id = "chan-1"
guild_id = "guild-1"

[state]
backend = %q
data_dir = %q

[log]
level = "debug"
`, portainerURL, backend, filepath.Join(dir, "data"))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
