package main

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tellytv/m3utidy/internal/commands"
	"github.com/tellytv/m3utidy/internal/matcher"
	"github.com/tellytv/m3utidy/internal/organizer"
	"github.com/tellytv/m3utidy/internal/playlistio"
)

func setDefaults() {
	defaults := commands.DefaultOptions()

	viper.SetDefault("log.level", "info")
	viper.SetDefault("dir", defaults.Dir)
	viper.SetDefault("playlist", "")
	viper.SetDefault("reference", defaults.Reference)
	viper.SetDefault("encoding", defaults.Charset)
	viper.SetDefault("dry-run", false)
	viper.SetDefault("metrics-file", "")

	viper.SetDefault("match.zero-strip", string(matcher.ZeroStripLegacy))

	viper.SetDefault("discover.extensions", defaults.Discover.Extensions)
	viper.SetDefault("discover.exclude", defaults.Discover.Exclude)

	viper.SetDefault("organize.category-order", organizer.DefaultCategoryOrder)
	viper.SetDefault("organize.regions", organizer.DefaultRegions)
}

// commandOptions assembles the run options from viper. out receives the
// playlist on a dry run.
func commandOptions(out io.Writer) (commands.Options, error) {
	opts := commands.DefaultOptions()

	opts.Dir = viper.GetString("dir")
	opts.Playlist = viper.GetString("playlist")
	opts.Reference = viper.GetString("reference")
	opts.DryRun = viper.GetBool("dry-run")
	opts.MetricsFile = viper.GetString("metrics-file")
	if opts.DryRun {
		opts.Output = out
	}

	opts.Charset = viper.GetString("encoding")
	if err := playlistio.ValidateCharset(opts.Charset); err != nil {
		return opts, errors.Wrap(err, "invalid encoding")
	}

	zeroStrip := viper.GetString("match.zero-strip")
	mode, ok := matcher.ParseZeroStrip(zeroStrip)
	if !ok {
		return opts, errors.Errorf("invalid match.zero-strip %q, expected legacy or token", zeroStrip)
	}
	opts.Normalizer = matcher.Normalizer{ZeroStrip: mode}

	opts.Discover = playlistio.DiscoverOptions{
		Extensions: viper.GetStringSlice("discover.extensions"),
		Exclude:    viper.GetStringSlice("discover.exclude"),
	}
	if len(opts.Discover.Extensions) == 0 {
		return opts, errors.New("discover.extensions must not be empty")
	}

	opts.Organize = organizer.Options{
		CategoryOrder: viper.GetStringSlice("organize.category-order"),
		Regions:       make(map[string]string),
	}
	// viper lowercases map keys, region prefixes are upper case in group titles.
	for prefix, region := range viper.GetStringMapString("organize.regions") {
		opts.Organize.Regions[strings.ToUpper(prefix)] = region
	}

	return opts, nil
}
