// Package commands implements the organize and logos runs on top of a CContext.
package commands

import (
	"io"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/tellytv/m3utidy/internal/context"
	"github.com/tellytv/m3utidy/internal/matcher"
	"github.com/tellytv/m3utidy/internal/organizer"
	"github.com/tellytv/m3utidy/internal/playlistio"
)

// DefaultReference is the reference playlist logos are copied from.
const DefaultReference = "old_channel.m3u"

// Options configures a run.
type Options struct {
	// Dir is searched for the main playlist and holds a relative Reference.
	Dir string
	// Playlist skips discovery when set.
	Playlist  string
	Reference string
	Discover  playlistio.DiscoverOptions
	Charset   string

	Normalizer matcher.Normalizer
	Organize   organizer.Options

	// DryRun computes everything but writes neither the backup nor the playlist.
	DryRun bool
	// Output receives the resulting playlist on a dry run, when set.
	Output      io.Writer
	MetricsFile string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Dir:        ".",
		Reference:  DefaultReference,
		Discover:   playlistio.DefaultDiscoverOptions(),
		Charset:    "utf-8",
		Normalizer: matcher.Default,
		Organize:   organizer.DefaultOptions(),
	}
}

func (o Options) inDir(path string) string {
	if filepath.IsAbs(path) || o.Dir == "" {
		return path
	}
	return filepath.Join(o.Dir, path)
}

func mainPlaylist(cc *context.CContext, opts Options) (string, error) {
	if opts.Playlist != "" {
		path := opts.inDir(opts.Playlist)
		if err := playlistio.RequireFile(cc.Fs, path); err != nil {
			return "", errors.Wrap(err, "main playlist")
		}
		return path, nil
	}

	found, err := playlistio.Discover(cc.Fs, opts.Dir, opts.Discover)
	if err != nil {
		return "", err
	}
	for _, ignored := range found.Ignored {
		cc.Log.WithField("file", ignored).Warnln("Another eligible playlist was found and ignored, use --playlist to pick it")
	}
	cc.Log.WithField("file", found.Path).Infoln("Main playlist found")
	return found.Path, nil
}

// replace backs path up and writes content to it, or hands content to the
// dry run output.
func replace(cc *context.CContext, opts Options, path, content string) error {
	if opts.DryRun {
		cc.Log.WithField("file", path).Infoln("Dry run, playlist left untouched")
		if opts.Output != nil {
			if _, err := io.WriteString(opts.Output, content); err != nil {
				return err
			}
		}
		return nil
	}

	backup, err := playlistio.Backup(cc.Fs, path, cc.Now())
	if err != nil {
		return err
	}
	cc.Log.WithField("file", backup).Infoln("Backup created")

	return playlistio.WriteFile(cc.Fs, path, content)
}

func finish(cc *context.CContext, opts Options, command string, start time.Time) error {
	cc.Metrics.Finish(command, start, cc.Now())
	if opts.MetricsFile == "" {
		return nil
	}
	if err := cc.Metrics.WriteTextfile(opts.MetricsFile); err != nil {
		return err
	}
	cc.Log.WithField("file", opts.MetricsFile).Debugln("Metrics written")
	return nil
}
