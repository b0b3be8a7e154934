package ui

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeaders = []string{"Project", "Repository", "Artifact", "Tags", "CVEs"}

const clearLineSeq = "\x1b[2K"

func TestLiveTableNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "List of CVEs in Project", testHeaders, WithNoColor())

	lt.Append("proj", "app", "sha256:aaa", "v1, latest", "CVE-2023-0001, CVE-2023-0002")
	lt.Append("proj", "team/api", "sha256:bbb", "", "")
	assert.Zero(t, buf.Len(), "nothing is drawn before Stop on a non-terminal")
	assert.Equal(t, 2, lt.Len())

	lt.Stop()
	out := buf.String()

	assert.Contains(t, out, "List of CVEs in Project")
	for _, header := range testHeaders {
		assert.Contains(t, out, header)
	}
	assert.Contains(t, out, "team/api")
	assert.Contains(t, out, "v1, latest")
	assert.Contains(t, out, "CVE-2023-0001, CVE-2023-0002")
	assert.NotContains(t, out, "\x1b[")
	assert.Equal(t, 1, strings.Count(out, "List of CVEs in Project"))

	// Stop is idempotent and appends after Stop are dropped
	lt.Stop()
	lt.Append("proj", "late", "sha256:ccc", "", "")
	assert.Equal(t, out, buf.String())
	assert.Equal(t, 2, lt.Len())
}

func TestLiveTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "List of CVEs in Project", testHeaders, WithNoColor())
	lt.Stop()

	out := buf.String()
	assert.Contains(t, out, "List of CVEs in Project")
	assert.Contains(t, out, "Repository")
}

func TestLiveTableInteractiveRedraws(t *testing.T) {
	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "Report", testHeaders, WithNoColor(), WithInteractive(true))

	lt.Append("proj", "app", "sha256:aaa", "v1", "CVE-1")
	first := buf.String()
	require.NotEmpty(t, first)
	assert.NotContains(t, first, clearLineSeq, "the first frame has nothing to clear")
	frameLines := strings.Count(first, "\n")

	lt.Append("proj", "api", "sha256:bbb", "v2", "CVE-2")
	second := strings.TrimPrefix(buf.String(), first)
	require.True(t, strings.HasPrefix(second, clearLineSeq))

	// One clear for the cursor line plus one per line of the previous frame
	assert.Equal(t, frameLines+1, strings.Count(second, clearLineSeq))
	assert.Contains(t, second, "CVE-1")
	assert.Contains(t, second, "CVE-2")

	lt.Stop()
	assert.Equal(t, 3, strings.Count(buf.String(), "Report"), "one frame per append plus the final one")
}

func TestLiveTableFitsWidth(t *testing.T) {
	cves := make([]string, 40)
	for i := range cves {
		cves[i] = fmt.Sprintf("CVE-2024-%05d", i)
	}
	digest := "sha256:" + strings.Repeat("ab", 32)

	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "Report", testHeaders, WithNoColor(), WithInteractive(true), WithWidth(80))

	lt.Append("proj", "team/app", digest, "v1, latest", strings.Join(cves, ", "))
	first := buf.String()
	lines := strings.Split(strings.TrimSuffix(first, "\n"), "\n")
	assert.Greater(t, len(lines), 6, "long cells wrap onto more lines")
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 80, "line %q is wider than the terminal", line)
	}

	lt.Append("proj", "api", "sha256:bbb", "", "")
	second := strings.TrimPrefix(buf.String(), first)
	assert.Equal(t, len(lines)+1, strings.Count(second, clearLineSeq))
	lt.Stop()
}

func TestLiveTableLogWriter(t *testing.T) {
	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "Report", testHeaders, WithNoColor(), WithInteractive(true))

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetOutput(lt.LogWriter(&buf))

	// Nothing is on screen yet, so the line is written as is
	logger.Info("before the table")
	assert.Equal(t, "level=info msg=\"before the table\"\n", buf.String())
	buf.Reset()

	lt.Append("proj", "app", "sha256:aaa", "v1", "CVE-1")
	first := buf.String()
	frameLines := strings.Count(first, "\n")

	logger.Info("artifact skipped")
	afterLog := strings.TrimPrefix(buf.String(), first)
	require.True(t, strings.HasPrefix(afterLog, clearLineSeq))
	assert.Equal(t, frameLines+1, strings.Count(afterLog, clearLineSeq))
	logAt := strings.Index(afterLog, "artifact skipped")
	require.GreaterOrEqual(t, logAt, 0)
	assert.Greater(t, strings.Index(afterLog, "Report"), logAt, "the frame is drawn again below the log line")

	// The next append clears exactly the redrawn frame and leaves the log line
	snapshot := buf.String()
	lt.Append("proj", "api", "sha256:bbb", "v2", "CVE-2")
	second := strings.TrimPrefix(buf.String(), snapshot)
	assert.Equal(t, frameLines+1, strings.Count(second, clearLineSeq))
	assert.NotContains(t, second, "artifact skipped")

	// After Stop log lines go below the final table
	lt.Stop()
	stopped := buf.String()
	logger.Info("done")
	assert.Equal(t, "level=info msg=done\n", strings.TrimPrefix(buf.String(), stopped))
}

func TestLiveTablePadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	lt := NewLiveTable(&buf, "CVEs", testHeaders, WithNoColor())
	lt.Append("proj", "app")
	lt.Append("proj", "app", "d", "t", "c", "extra")
	lt.Stop()

	assert.NotContains(t, buf.String(), "extra")
	assert.Equal(t, 2, lt.Len())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))

	t.Setenv("TERM", "dumb")
	assert.False(t, IsTerminal(os.Stdout))
}
