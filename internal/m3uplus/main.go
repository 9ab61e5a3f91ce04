// Package m3uplus provides a lenient M3U Plus parser.
package m3uplus

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// HeaderPrefix starts the first line of an extended M3U playlist.
	HeaderPrefix = "#EXTM3U"
	// InfoPrefix starts a channel description line.
	InfoPrefix = "#EXTINF"
)

// Playlist is a type that represents an m3u playlist containing 0 or more tracks
type Playlist struct {
	// Header is the first line of the source when it starts with #EXTM3U.
	Header string
	Tracks []Track
}

// Track represents a single channel: a description line and the stream URL that follows it.
type Track struct {
	// Name is the text after the last comma of the description line.
	Name       string
	URI        string
	Tags       map[string]string
	Raw        string
	LineNumber int
}

// Attributes holds the IPTV attributes we care about. Missing attributes are empty.
type Attributes struct {
	TvgID      string `m3u:"tvg-id"`
	TvgName    string `m3u:"tvg-name"`
	TvgLogo    string `m3u:"tvg-logo"`
	GroupTitle string `m3u:"group-title"`
}

// UnmarshalTags will decode the Tags map into a struct containing fields with `m3u` tags matching map keys.
func (t *Track) UnmarshalTags(v interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "m3u",
		Result:  v,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(t.Tags)
}

// Attributes returns the decoded IPTV attributes of the track.
func (t *Track) Attributes() Attributes {
	var attrs Attributes
	// Tags only ever holds strings, decoding into string fields cannot fail.
	_ = t.UnmarshalTags(&attrs)
	return attrs
}

// DisplayName returns the trailing name, falling back to tvg-name.
func (t *Track) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Attributes().TvgName
}

// LookupName returns tvg-name, falling back to the trailing name.
func (t *Track) LookupName() string {
	if name := t.Attributes().TvgName; name != "" {
		return name
	}
	return t.Name
}

// Decode parses an m3u playlist in the given io.Reader and returns a Playlist.
// Only read errors are returned; malformed records are skipped.
func Decode(r io.Reader) (*Playlist, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	return DecodeLines(SplitLines(buf.String())), nil
}

// SplitLines splits content into lines without their line endings.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// DecodeLines builds a Playlist from already split lines.
func DecodeLines(lines []string) *Playlist {
	playlist := &Playlist{}

	if len(lines) > 0 {
		if first := strings.TrimSpace(lines[0]); strings.HasPrefix(first, HeaderPrefix) && !strings.HasPrefix(first, InfoPrefix) {
			playlist.Header = first
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, InfoPrefix) {
			continue
		}

		if i+1 >= len(lines) {
			break
		}

		next := strings.TrimSpace(lines[i+1])
		if next == "" || strings.HasPrefix(next, "#") {
			// No URL: the description line is dropped and the next line is scanned normally.
			continue
		}

		track := DecodeInfoLine(line)
		track.URI = next
		track.LineNumber = i + 1
		playlist.Tracks = append(playlist.Tracks, track)
		i++
	}

	return playlist
}

var (
	tvgIDRegex      = regexp.MustCompile(`tvg-id="([^"]+)"`)
	tvgNameRegex    = regexp.MustCompile(`tvg-name="([^"]+)"`)
	tvgLogoRegex    = regexp.MustCompile(`tvg-logo="([^"]+)"`)
	groupTitleRegex = regexp.MustCompile(`group-title="([^"]+)"`)

	extractors = map[string]*regexp.Regexp{
		"tvg-id":      tvgIDRegex,
		"tvg-name":    tvgNameRegex,
		"tvg-logo":    tvgLogoRegex,
		"group-title": groupTitleRegex,
	}
)

func extract(re *regexp.Regexp, line string) (string, bool) {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DecodeInfoLine extracts the name and the known attributes of a description line.
// It never fails: unknown or malformed attributes are simply absent from Tags.
func DecodeInfoLine(line string) Track {
	line = strings.TrimSpace(line)
	track := Track{
		Raw:  line,
		Tags: make(map[string]string, len(extractors)),
	}

	for key, re := range extractors {
		if val, ok := extract(re, line); ok {
			track.Tags[key] = val
		}
	}

	if idx := strings.LastIndex(line, ","); idx >= 0 {
		track.Name = strings.TrimSpace(line[idx+1:])
	}

	return track
}
