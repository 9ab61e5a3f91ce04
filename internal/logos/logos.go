// Package logos copies channel logos from a reference playlist into another
// playlist by matching channel names.
package logos

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tellytv/m3utidy/internal/m3uplus"
	"github.com/tellytv/m3utidy/internal/matcher"
)

const byteOrderMark = "\ufeff"

var (
	logoAttrRegex = regexp.MustCompile(`tvg-logo="[^"]*"`)
	nameAttrRegex = regexp.MustCompile(`tvg-name="[^"]*"`)
	idAttrRegex   = regexp.MustCompile(`tvg-id="[^"]*"`)
	markerRegex   = regexp.MustCompile(`#EXTINF:\s*-?[\d.]*`)
)

// BuildIndex indexes the logos of the reference tracks by channel name.
// Tracks without a name or without a logo are skipped.
func BuildIndex(tracks []m3uplus.Track, n matcher.Normalizer) *matcher.Index {
	var candidates []matcher.Candidate
	for _, track := range tracks {
		attrs := track.Attributes()
		key := track.LookupName()
		if key == "" || attrs.TvgLogo == "" {
			continue
		}
		candidates = append(candidates, n.Candidates(key, matcher.Record{
			Logo:        attrs.TvgLogo,
			TvgName:     attrs.TvgName,
			ChannelName: track.Name,
		})...)
	}
	return n.BuildIndex(candidates)
}

// Replacement describes one rewritten description line.
type Replacement struct {
	LineNumber int
	Name       string
	Logo       string
	Matched    string
}

// Result is the outcome of Merge.
type Result struct {
	Lines        []string
	Replacements []Replacement
}

// Content joins the merged lines back together.
func (r Result) Content() string {
	return strings.Join(r.Lines, "")
}

// SetLogo returns line with its tvg-logo attribute set to logo. An existing
// attribute is overwritten, otherwise one is inserted after tvg-name, after
// tvg-id or right after the #EXTINF marker.
func SetLogo(line, logo string) string {
	attr := fmt.Sprintf(`tvg-logo="%s"`, logo)
	after := func(match string) string { return match + " " + attr }

	switch {
	case logoAttrRegex.MatchString(line):
		return logoAttrRegex.ReplaceAllLiteralString(line, attr)
	case nameAttrRegex.MatchString(line):
		return nameAttrRegex.ReplaceAllStringFunc(line, after)
	case idAttrRegex.MatchString(line):
		return idAttrRegex.ReplaceAllStringFunc(line, after)
	}

	loc := markerRegex.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return line[:loc[1]] + " " + attr + line[loc[1]:]
}

// Merge looks up every description line of lines in idx and sets the logo of
// the matches. Lines keep their line endings; lines without a match are
// returned unchanged.
func Merge(lines []string, idx *matcher.Index, log logrus.FieldLogger) Result {
	result := Result{Lines: make([]string, 0, len(lines))}

	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimPrefix(strings.TrimSpace(line), byteOrderMark), m3uplus.InfoPrefix) {
			result.Lines = append(result.Lines, line)
			continue
		}

		track := m3uplus.DecodeInfoLine(line)
		key := track.LookupName()

		record, ok := idx.Find(key)
		if !ok {
			log.WithField("channel", key).Debugln("no logo match")
			result.Lines = append(result.Lines, line)
			continue
		}

		result.Lines = append(result.Lines, SetLogo(line, record.Logo))
		result.Replacements = append(result.Replacements, Replacement{
			LineNumber: i + 1,
			Name:       key,
			Logo:       record.Logo,
			Matched:    record.OriginalName,
		})
		log.WithFields(logrus.Fields{
			"channel": key,
			"matched": record.OriginalName,
		}).Infof("[LOGO] %s -> %s", key, record.Logo)
	}

	return result
}

// SplitLines splits content into lines keeping their line endings.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
