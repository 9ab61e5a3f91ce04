// Package playlistio finds, reads, backs up and writes playlist files.
package playlistio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// BackupTimeFormat is the timestamp layout appended to backup file names.
const BackupTimeFormat = "20060102_150405"

const maxBackupAttempts = 100

var (
	// ErrNoPlaylist is returned when no eligible playlist exists in the directory.
	ErrNoPlaylist = errors.New("no main playlist found")
	// ErrMissingFile is returned when a required playlist does not exist.
	ErrMissingFile = errors.New("file not found")
	// ErrUnknownCharset is returned for charsets we cannot decode.
	ErrUnknownCharset = errors.New("unknown charset")
)

const utf8BOM = "\ufeff"

// DiscoverOptions selects which files of a directory can be the main playlist.
type DiscoverOptions struct {
	Extensions []string
	// Exclude lists case insensitive substrings that disqualify a file name.
	Exclude []string
}

// DefaultDiscoverOptions matches *.m3u files whose name mentions neither "old" nor "fusion".
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		Extensions: []string{".m3u"},
		Exclude:    []string{"old", "fusion"},
	}
}

// Discovery is the outcome of Discover.
type Discovery struct {
	Path string
	// Ignored holds the other eligible files, which were not picked.
	Ignored []string
}

func (o DiscoverOptions) eligible(name string) bool {
	lower := strings.ToLower(name)

	matched := false
	for _, ext := range o.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, ex := range o.Exclude {
		if ex != "" && strings.Contains(lower, strings.ToLower(ex)) {
			return false
		}
	}
	return true
}

// Discover picks the main playlist of dir: the first eligible file by name.
func Discover(fs afero.Fs, dir string, opts DiscoverOptions) (Discovery, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return Discovery{}, errors.Wrapf(err, "error listing %s", dir)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !opts.eligible(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return Discovery{}, errors.Wrapf(ErrNoPlaylist, "in %s", dir)
	}

	d := Discovery{Path: filepath.Join(dir, names[0])}
	for _, name := range names[1:] {
		d.Ignored = append(d.Ignored, filepath.Join(dir, name))
	}
	return d, nil
}

// RequireFile returns ErrMissingFile when path is not a regular file.
func RequireFile(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrMissingFile, "%s", path)
		}
		return errors.Wrapf(err, "error checking %s", path)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrMissingFile, "%s is a directory", path)
	}
	return nil
}

func charmapFor(charset string) (*charmap.Charmap, error) {
	switch strings.ToLower(strings.Replace(charset, "_", "-", -1)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "latin9", "iso-8859-15":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, errors.Wrapf(ErrUnknownCharset, "%q", charset)
}

// ValidateCharset reports whether ReadFile can decode charset.
func ValidateCharset(charset string) error {
	_, err := charmapFor(charset)
	return err
}

// Decode converts raw text in charset to UTF-8. A byte order mark is kept.
func Decode(raw []byte, charset string) (string, error) {
	cm, err := charmapFor(charset)
	if err != nil {
		return "", err
	}
	if cm == nil {
		return string(raw), nil
	}
	return transformString(string(raw), cm.NewDecoder())
}

// Encode converts UTF-8 text back to charset. Runes charset cannot represent
// are an error.
func Encode(text, charset string) (string, error) {
	cm, err := charmapFor(charset)
	if err != nil {
		return "", err
	}
	if cm == nil {
		return text, nil
	}
	return transformString(text, cm.NewEncoder())
}

func transformString(s string, t transform.Transformer) (string, error) {
	out, err := io.ReadAll(transform.NewReader(strings.NewReader(s), t))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ReadBytes returns the content of path as stored on disk.
func ReadBytes(fs afero.Fs, path string) ([]byte, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return raw, nil
}

// ReadFile reads the whole file at path and returns it as UTF-8 text without a byte order mark.
func ReadFile(fs afero.Fs, path, charset string) (string, error) {
	if _, err := charmapFor(charset); err != nil {
		return "", err
	}

	raw, err := ReadBytes(fs, path)
	if err != nil {
		return "", err
	}

	text, err := Decode(raw, charset)
	if err != nil {
		return "", errors.Wrapf(err, "error decoding %s as %s", path, charset)
	}
	return StripBOM(text), nil
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(text string) string {
	return strings.TrimPrefix(text, utf8BOM)
}

// BackupPath returns the name of the backup of path taken at now.
func BackupPath(path string, now time.Time) string {
	return path + ".backup_" + now.Format(BackupTimeFormat)
}

// Backup copies path, byte for byte, next to itself and returns the copy's
// name. An existing backup is never overwritten: when the name taken at now
// exists, a "_1", "_2", ... suffix is added.
func Backup(fs afero.Fs, path string, now time.Time) (string, error) {
	raw, err := ReadBytes(fs, path)
	if err != nil {
		return "", errors.Wrap(err, "error reading file for backup")
	}

	base := BackupPath(path, now)
	perm := filePerm(fs, path)
	for n := 0; n < maxBackupAttempts; n++ {
		backup := base
		if n > 0 {
			backup = fmt.Sprintf("%s_%d", base, n)
		}

		f, err := fs.OpenFile(backup, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", errors.Wrapf(err, "error creating backup %s", backup)
		}

		_, err = f.Write(raw)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return "", errors.Wrapf(err, "error writing backup %s", backup)
		}
		return backup, nil
	}
	return "", errors.Errorf("error creating backup of %s: %d backups already exist for %s", path, maxBackupAttempts, now.Format(BackupTimeFormat))
}

// WriteFile replaces the content of path in one write.
func WriteFile(fs afero.Fs, path, content string) error {
	if err := afero.WriteFile(fs, path, []byte(content), filePerm(fs, path)); err != nil {
		return errors.Wrapf(err, "error writing %s", path)
	}
	return nil
}

func filePerm(fs afero.Fs, path string) os.FileMode {
	if info, err := fs.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}
