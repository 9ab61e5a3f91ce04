package commands

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tellytv/m3utidy/internal/context"
	"github.com/tellytv/m3utidy/internal/logos"
	"github.com/tellytv/m3utidy/internal/m3uplus"
	"github.com/tellytv/m3utidy/internal/playlistio"
)

// ReplaceLogos copies logos from the reference playlist into the main playlist.
func ReplaceLogos(cc *context.CContext, opts Options) (logos.Result, error) {
	start := cc.Now()

	reference := opts.inDir(opts.Reference)
	if err := playlistio.RequireFile(cc.Fs, reference); err != nil {
		return logos.Result{}, errors.Wrap(err, "reference playlist")
	}

	path, err := mainPlaylist(cc, opts)
	if err != nil {
		return logos.Result{}, err
	}

	refContent, err := playlistio.ReadFile(cc.Fs, reference, opts.Charset)
	if err != nil {
		return logos.Result{}, err
	}
	refPlaylist := m3uplus.DecodeLines(m3uplus.SplitLines(refContent))
	idx := logos.BuildIndex(refPlaylist.Tracks, opts.Normalizer)

	cc.Metrics.Channels.WithLabelValues("logos", "reference").Set(float64(len(refPlaylist.Tracks)))
	cc.Metrics.IndexKeys.Set(float64(idx.Len()))
	cc.Log.WithFields(logrus.Fields{
		"file": reference,
		"keys": idx.Len(),
	}).Infof("Indexed %d channel keys from the reference playlist", idx.Len())

	raw, err := playlistio.ReadBytes(cc.Fs, path)
	if err != nil {
		return logos.Result{}, err
	}
	content, err := playlistio.Decode(raw, opts.Charset)
	if err != nil {
		return logos.Result{}, errors.Wrapf(err, "error decoding %s as %s", path, opts.Charset)
	}

	result := logos.Merge(logos.SplitLines(content), idx, cc.Log)

	target := m3uplus.DecodeLines(m3uplus.SplitLines(playlistio.StripBOM(content)))
	cc.Metrics.Channels.WithLabelValues("logos", "target").Set(float64(len(target.Tracks)))
	cc.Metrics.LogosReplaced.Set(float64(len(result.Replacements)))

	merged, err := restoreUntouched(logos.SplitLines(string(raw)), result, opts.Charset)
	if err != nil {
		return result, errors.Wrapf(err, "error encoding %s as %s", path, opts.Charset)
	}

	if err := replace(cc, opts, path, merged); err != nil {
		return result, err
	}

	cc.Log.WithField("replaced", len(result.Replacements)).Infof("Logos replaced: %d", len(result.Replacements))

	return result, finish(cc, opts, "logos", start)
}

// restoreUntouched rebuilds the file from source, its raw lines, taking only
// the rewritten lines from result, encoded back to charset.
func restoreUntouched(source []string, result logos.Result, charset string) (string, error) {
	if len(source) != len(result.Lines) {
		return playlistio.Encode(result.Content(), charset)
	}

	lines := make([]string, len(source))
	copy(lines, source)
	for _, r := range result.Replacements {
		line, err := playlistio.Encode(result.Lines[r.LineNumber-1], charset)
		if err != nil {
			return "", err
		}
		lines[r.LineNumber-1] = line
	}
	return strings.Join(lines, ""), nil
}
