package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellytv/m3utidy/internal/matcher"
	"github.com/tellytv/m3utidy/internal/organizer"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(viper.Reset)
}

func TestCommandOptionsDefaults(t *testing.T) {
	resetConfig(t)

	var out bytes.Buffer
	opts, err := commandOptions(&out)
	require.NoError(t, err)

	assert.Equal(t, ".", opts.Dir)
	assert.Equal(t, "old_channel.m3u", opts.Reference)
	assert.Equal(t, "utf-8", opts.Charset)
	assert.Equal(t, matcher.ZeroStripLegacy, opts.Normalizer.ZeroStrip)
	assert.Equal(t, []string{".m3u"}, opts.Discover.Extensions)
	assert.Equal(t, []string{"old", "fusion"}, opts.Discover.Exclude)
	assert.Equal(t, organizer.DefaultCategoryOrder, opts.Organize.CategoryOrder)
	assert.Equal(t, "FRANCE", opts.Organize.Regions["FR"])
	assert.Equal(t, "ÉTATS-UNIS", opts.Organize.Regions["USA"])
	assert.False(t, opts.DryRun)
	assert.Nil(t, opts.Output)
}

func TestCommandOptionsOverrides(t *testing.T) {
	resetConfig(t)

	viper.Set("dry-run", true)
	viper.Set("encoding", "latin1")
	viper.Set("match.zero-strip", "token")
	viper.Set("organize.regions", map[string]interface{}{"be": "BELGIQUE"})
	viper.Set("organize.category-order", []string{"BE| INFO"})

	var out bytes.Buffer
	opts, err := commandOptions(&out)
	require.NoError(t, err)

	assert.True(t, opts.DryRun)
	assert.Equal(t, &out, opts.Output)
	assert.Equal(t, "latin1", opts.Charset)
	assert.Equal(t, matcher.ZeroStripToken, opts.Normalizer.ZeroStrip)
	assert.Equal(t, map[string]string{"BE": "BELGIQUE"}, opts.Organize.Regions)
	assert.Equal(t, []string{"BE| INFO"}, opts.Organize.CategoryOrder)
}

func TestCommandOptionsInvalid(t *testing.T) {
	tests := map[string]struct {
		key   string
		value interface{}
	}{
		"encoding":   {"encoding", "ebcdic"},
		"zero strip": {"match.zero-strip", "sometimes"},
		"extensions": {"discover.extensions", []string{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resetConfig(t)
			viper.Set(tt.key, tt.value)

			_, err := commandOptions(nil)
			assert.Error(t, err)
		})
	}
}

func TestRootCommandOrganize(t *testing.T) {
	resetConfig(t)

	dir := t.TempDir()
	playlist := filepath.Join(dir, "channels.m3u")
	content := strings.Join([]string{
		"#EXTM3U",
		`#EXTINF:-1 group-title="FR| SPORTS",Eurosport`,
		"http://s/euro",
		`#EXTINF:-1 group-title="FR| FRANCE",TF1`,
		"http://s/tf1",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(playlist, []byte(content), 0644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--dir", dir, "--log.level", "error", "organize"})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(playlist)
	require.NoError(t, err)
	organized := string(raw)
	assert.Less(t, strings.Index(organized, "# FRANCE - FR| FRANCE"), strings.Index(organized, "# FRANCE - FR| SPORTS"))

	backups, err := filepath.Glob(playlist + ".backup_*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestRootCommandMissingReference(t *testing.T) {
	resetConfig(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "channels.m3u"), []byte("#EXTM3U\n"), 0644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--dir", dir, "--log.level", "fatal", "logos", "--reference", "missing.m3u"})
	assert.Error(t, cmd.Execute())
}

func TestRootCommandBadLogLevel(t *testing.T) {
	resetConfig(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--dir", t.TempDir(), "--log.level", "loud", "organize"})
	assert.Error(t, cmd.Execute())
}

func TestExecuteReportsUsageErrors(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"unknown flag":       {[]string{"organize", "--dry-rn"}, "unknown flag: --dry-rn"},
		"unknown subcommand": {[]string{"sort"}, `unknown command "sort"`},
		"extra argument":     {[]string{"organize", "channels.m3u"}, `unknown command "channels.m3u"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resetConfig(t)

			var stdout, stderr bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)

			assert.Equal(t, 1, execute(cmd, tt.args))
			assert.Contains(t, stderr.String(), "Error: ")
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestExecuteReportsRunErrors(t *testing.T) {
	resetConfig(t)

	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetErr(&stderr)

	assert.Equal(t, 1, execute(cmd, []string{"--dir", t.TempDir(), "--log.level", "fatal", "organize"}))
	assert.Contains(t, stderr.String(), "no main playlist found")
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error: "))
}
