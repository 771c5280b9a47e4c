package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/n2code/beastwords/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../testdata/covarion.xml"

// isolate keeps user settings and BEASTWORDS_* variables of the machine out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, name := range []string{"INDENT", "LOG_LEVEL", "LOG_JSON", "PARTITIONS", "GLYPH"} {
		t.Setenv("BEASTWORDS_"+name, "")
	}
}

func runCli(t *testing.T, args ...string) (exitCode int, stdout string, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	exitCode = run(args, &out, &errOut)
	return exitCode, out.String(), errOut.String()
}

func TestConvertToFile(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "partitioned.xml")

	rc, stdout, stderr := runCli(t, "convert", fixture, target)
	require.Equal(t, 0, rc, stderr)
	assert.True(t, strings.HasPrefix(stdout, "3 partitions (BinaryCovarion)\n"), stdout)
	assert.Contains(t, stdout, "hand [10-12] 3 sites")

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	for _, key := range []string{"eye", "foot", "hand"} {
		assert.Contains(t, string(written), `<distribution id="treeLikelihood.`+key+`"`)
	}
	_, err = os.Stat(target + ".wip")
	assert.True(t, os.IsNotExist(err))

	rc, _, stderr = runCli(t, "convert", fixture, target)
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "exists already")

	rc, _, stderr = runCli(t, "convert", "-f", fixture, target)
	assert.Equal(t, 0, rc, stderr)
}

func TestConvertToStdout(t *testing.T) {
	isolate(t)

	rc, stdout, stderr := runCli(t, "-q", "convert", "-p", "2", fixture, "-")
	require.Equal(t, 0, rc, stderr)
	assert.True(t, strings.HasPrefix(stdout, "<?xml"))
	assert.Contains(t, stdout, `<distribution id="treeLikelihood.p1"`)
	assert.Contains(t, stdout, `<distribution id="treeLikelihood.p2"`)
	assert.NotContains(t, stdout, "partitions (")
	assert.Empty(t, stderr)
}

func TestSiteDistribution(t *testing.T) {
	isolate(t)

	rc, stdout, stderr := runCli(t, "sitedistr", "--glyph", "#", fixture)
	require.Equal(t, 0, rc, stderr)
	assert.Equal(t, "2\t1\t#\n3\t1\t#\n4\t1\t#\n", stdout)

	t.Setenv("BEASTWORDS_GLYPH", "*")
	rc, stdout, _ = runCli(t, "sitedistr", "-p", "1-3,4", fixture)
	require.Equal(t, 0, rc)
	assert.Equal(t, "4\t1\t*\n5\t1\t*\n", stdout)
}

func TestPartitionsFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("BEASTWORDS_PARTITIONS", "2")

	rc, stdout, stderr := runCli(t, "partitions", fixture)
	require.Equal(t, 0, rc, stderr)
	assert.True(t, strings.HasPrefix(stdout, "2 partitions (BinaryCovarion)\n"), stdout)
	assert.Contains(t, stdout, "p1 [1-2,7-9] 5 sites")
	assert.Contains(t, stdout, "p2 [3-6] 4 sites")
	assert.Contains(t, stdout, "ascertainment site: 0")

	rc, stdout, _ = runCli(t, "partitions", "-p", "3", fixture)
	require.Equal(t, 0, rc)
	assert.True(t, strings.HasPrefix(stdout, "3 partitions"), "flag wins over environment")
}

func TestSettingsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	settings, _, err := config.LoadDefault()
	require.NoError(t, err)
	settings.Output.Indent = 2
	require.NoError(t, config.Save(path, settings))

	rc, stdout, stderr := runCli(t, "--config", path, "convert", fixture, "-")
	require.Equal(t, 0, rc, stderr)
	assert.Contains(t, stdout, "\n  <data id=\"words\"")

	rc, _, stderr = runCli(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "partitions", fixture)
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "settings file unavailable")

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))
	rc, _, stderr = runCli(t, "--config", path, "partitions", fixture)
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "invalid settings")
}

func TestVerboseLogging(t *testing.T) {
	isolate(t)

	rc, _, stderr := runCli(t, "-v", "partitions", fixture)
	require.Equal(t, 0, rc)
	assert.Contains(t, stderr, "document loaded")

	t.Setenv("BEASTWORDS_LOG_JSON", "true")
	rc, _, stderr = runCli(t, "-v", "partitions", fixture)
	require.Equal(t, 0, rc)
	assert.Contains(t, stderr, `"msg":"document loaded"`)
	assert.Contains(t, stderr, `"level":"debug"`)
}

func TestUsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-v", "-q", "partitions", fixture}, "mutually exclusive"},
		{[]string{"convert", fixture}, "Usage help: beastwords convert -h"},
		{[]string{"partitions", "--bogus", fixture}, "unknown flag: --bogus"},
		{[]string{"partitions", "-p", "1-x", fixture}, "invalid partition spec"},
		{[]string{"sitedistr", "missing.xml"}, "document load error"},
		{[]string{"frobnicate"}, "unknown command"},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			rc, _, stderr := runCli(t, test.args...)
			assert.Equal(t, 1, rc)
			assert.Contains(t, stderr, test.want)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var sink bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "warn", JSON: true}, false, false, &sink)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, sink.String(), "hidden")
	assert.Contains(t, sink.String(), `"level":"warn"`)

	sink.Reset()
	logger, err = newLogger(config.LoggingConfig{Level: "info"}, false, true, &sink)
	require.NoError(t, err)
	logger.Warn("suppressed in quiet mode")
	assert.Empty(t, sink.String())

	_, err = newLogger(config.LoggingConfig{Level: "loud"}, false, false, &sink)
	assert.Error(t, err)
}

func TestWriteSettings(t *testing.T) {
	isolate(t)
	t.Setenv("BEASTWORDS_INDENT", "3")
	target := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	rc, stdout, stderr := runCli(t, "config", target)
	require.Equal(t, 0, rc, stderr)
	assert.Equal(t, "settings written to "+target+"\n", stdout)

	t.Setenv("BEASTWORDS_INDENT", "")
	written, err := config.Load(target)
	require.NoError(t, err)
	assert.Equal(t, 3, written.Output.Indent)
	assert.Equal(t, "info", written.Logging.Level)

	rc, _, stderr = runCli(t, "config", target)
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "settings file exists already")
	rc, _, stderr = runCli(t, "-q", "config", "-f", target)
	assert.Equal(t, 0, rc, stderr)

	rc, _, stderr = runCli(t, "config")
	require.Equal(t, 0, rc, stderr)
	userPath, err := config.UserPath()
	require.NoError(t, err)
	_, err = os.Stat(userPath)
	assert.NoError(t, err, "default target is the user config directory")

	rc, _, stderr = runCli(t, "config", "a", "b")
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "Usage help: beastwords config -h")
}
