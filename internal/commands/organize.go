package commands

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tellytv/m3utidy/internal/context"
	"github.com/tellytv/m3utidy/internal/m3uplus"
	"github.com/tellytv/m3utidy/internal/organizer"
	"github.com/tellytv/m3utidy/internal/playlistio"
)

// Organize sorts the main playlist into sections and rewrites it after a backup.
func Organize(cc *context.CContext, opts Options) (organizer.Result, error) {
	start := cc.Now()

	path, err := mainPlaylist(cc, opts)
	if err != nil {
		return organizer.Result{}, err
	}

	content, err := playlistio.ReadFile(cc.Fs, path, opts.Charset)
	if err != nil {
		return organizer.Result{}, err
	}

	playlist := m3uplus.DecodeLines(m3uplus.SplitLines(content))
	result := organizer.Organize(playlist.Tracks, opts.Organize)

	cc.Metrics.Channels.WithLabelValues("organize", "main").Set(float64(len(playlist.Tracks)))
	cc.Metrics.Categories.Set(float64(len(result.Sections)))
	cc.Metrics.Skipped.WithLabelValues("organize", "no_group").Set(float64(result.Ungrouped))

	cc.Log.WithFields(logrus.Fields{
		"categories": len(result.Sections),
		"channels":   result.Total(),
	}).Infof("Found %d categories and %d channels", len(result.Sections), result.Total())
	if result.Ungrouped > 0 {
		cc.Log.Warnf("%d channels have no group-title and were left out", result.Ungrouped)
	}

	if err := replace(cc, opts, path, organizer.Render(playlist.Header, result.Sections)); err != nil {
		return result, err
	}

	logSummary(cc.Log, result)

	return result, finish(cc, opts, "organize", start)
}

func logSummary(log logrus.FieldLogger, result organizer.Result) {
	sections := make([]organizer.Section, len(result.Sections))
	copy(sections, result.Sections)
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].GroupTitle < sections[j].GroupTitle
	})

	for _, s := range sections {
		log.WithField("category", s.GroupTitle).Infof("%s: %d channels", s.GroupTitle, len(s.Tracks))
	}
}
