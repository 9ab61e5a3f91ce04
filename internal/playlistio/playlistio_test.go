package playlistio

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func TestDiscover(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/work/old_channel.m3u":   "",
		"/work/FUSION_test.m3u":   "",
		"/work/zapping.m3u":       "",
		"/work/main.M3U":          "",
		"/work/notes.txt":         "",
		"/work/playlist.m3u.py":   "",
		"/work/sub/nested.m3u":    "",
		"/work/Gold Channels.m3u": "",
	})

	d, err := Discover(fs, "/work", DefaultDiscoverOptions())
	require.NoError(t, err)
	assert.Equal(t, "/work/main.M3U", d.Path)
	assert.Equal(t, []string{"/work/zapping.m3u"}, d.Ignored)
}

func TestDiscoverCustomOptions(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/work/a.m3u8":    "",
		"/work/b.m3u":     "",
		"/work/draft.m3u": "",
	})

	d, err := Discover(fs, "/work", DiscoverOptions{Extensions: []string{".m3u8", ".m3u"}, Exclude: []string{"draft"}})
	require.NoError(t, err)
	assert.Equal(t, "/work/a.m3u8", d.Path)
	assert.Equal(t, []string{"/work/b.m3u"}, d.Ignored)
}

func TestDiscoverNothing(t *testing.T) {
	fs := memFs(t, map[string]string{"/work/old.m3u": ""})

	_, err := Discover(fs, "/work", DefaultDiscoverOptions())
	require.Error(t, err)
	assert.Equal(t, ErrNoPlaylist, errors.Cause(err))

	_, err = Discover(fs, "/missing", DefaultDiscoverOptions())
	assert.Error(t, err)
}

func TestRequireFile(t *testing.T) {
	fs := memFs(t, map[string]string{"/work/old_channel.m3u": "#EXTM3U\n"})

	assert.NoError(t, RequireFile(fs, "/work/old_channel.m3u"))
	assert.Equal(t, ErrMissingFile, errors.Cause(RequireFile(fs, "/work/nope.m3u")))
	assert.Equal(t, ErrMissingFile, errors.Cause(RequireFile(fs, "/work")))
}

func TestReadFile(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/utf8.m3u":   "\xEF\xBB\xBF#EXTM3U\n#EXTINF:-1,Télé\n",
		"/latin1.m3u": "#EXTM3U\n#EXTINF:-1,T\xE9l\xE9\n",
		"/cp1252.m3u": "#EXTINF:-1,\x80uro\n",
	})

	content, err := ReadFile(fs, "/utf8.m3u", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXTINF:-1,Télé\n", content)

	content, err = ReadFile(fs, "/latin1.m3u", "latin1")
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXTINF:-1,Télé\n", content)

	content, err = ReadFile(fs, "/cp1252.m3u", "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "#EXTINF:-1,€uro\n", content)

	_, err = ReadFile(fs, "/utf8.m3u", "ebcdic")
	assert.Equal(t, ErrUnknownCharset, errors.Cause(err))

	_, err = ReadFile(fs, "/missing.m3u", "")
	assert.Error(t, err)
}

func TestValidateCharset(t *testing.T) {
	for _, cs := range []string{"", "UTF-8", "latin_1", "ISO-8859-15", "cp1252"} {
		assert.NoError(t, ValidateCharset(cs), cs)
	}
	assert.Error(t, ValidateCharset("koi8"))
}

func TestBackup(t *testing.T) {
	original := "#EXTM3U\n\xE9\n"
	fs := memFs(t, map[string]string{"/work/main.m3u": original})
	now := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

	backup, err := Backup(fs, "/work/main.m3u", now)
	require.NoError(t, err)
	assert.Equal(t, "/work/main.m3u.backup_20240309_070501", backup)

	raw, err := afero.ReadFile(fs, backup)
	require.NoError(t, err)
	assert.Equal(t, original, string(raw))

	_, err = Backup(fs, "/work/missing.m3u", now)
	assert.Error(t, err)
}

func TestBackupNeverOverwrites(t *testing.T) {
	fs := memFs(t, map[string]string{"/work/main.m3u": "first"})
	now := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

	first, err := Backup(fs, "/work/main.m3u", now)
	require.NoError(t, err)

	require.NoError(t, WriteFile(fs, "/work/main.m3u", "second"))
	second, err := Backup(fs, "/work/main.m3u", now)
	require.NoError(t, err)
	assert.Equal(t, "/work/main.m3u.backup_20240309_070501_1", second)

	raw, err := afero.ReadFile(fs, first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(raw))

	raw, err = afero.ReadFile(fs, second)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))
}

func TestDecodeEncode(t *testing.T) {
	text, err := Decode([]byte("\xEF\xBB\xBF#EXTM3U\n"), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "\ufeff#EXTM3U\n", text)
	assert.Equal(t, "#EXTM3U\n", StripBOM(text))

	text, err = Decode([]byte("T\xE9l\xE9"), "latin1")
	require.NoError(t, err)
	assert.Equal(t, "Télé", text)

	raw, err := Encode(text, "latin1")
	require.NoError(t, err)
	assert.Equal(t, "T\xE9l\xE9", raw)

	raw, err = Encode("€uro", "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "\x80uro", raw)

	_, err = Encode("€uro", "latin1")
	assert.Error(t, err)

	_, err = Encode("x", "ebcdic")
	assert.Equal(t, ErrUnknownCharset, errors.Cause(err))
}

func TestWriteFile(t *testing.T) {
	fs := memFs(t, map[string]string{"/work/main.m3u": "old"})

	require.NoError(t, WriteFile(fs, "/work/main.m3u", "new"))
	raw, err := afero.ReadFile(fs, "/work/main.m3u")
	require.NoError(t, err)
	assert.Equal(t, "new", string(raw))

	err = WriteFile(afero.NewReadOnlyFs(fs), "/work/main.m3u", "again")
	assert.Error(t, err)
}
