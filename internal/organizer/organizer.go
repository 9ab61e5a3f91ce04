// Package organizer groups playlist tracks into labeled, sorted sections and
// renders them back to M3U.
package organizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tellytv/m3utidy/internal/m3uplus"
	"github.com/tellytv/m3utidy/internal/matcher"
)

// Banner frames every section label in the rendered playlist.
const Banner = "# ============================================"

// DefaultCategoryOrder lists the group titles emitted first, in this order.
var DefaultCategoryOrder = []string{
	"CA| CANADA",
	"AF| AFRIQUE",
	"AF| DSTV AFRIQUE",
	"AR| ALGERIE",
	"AR| MAROC",
	"AR| TUNISIE",
	"FR| ACTUALITES",
	"FR| CANAL+ AFRIQUE",
	"FR| CINEMA",
	"FR| DOCUMENTAIRE",
	"FR| FRANCE",
	"FR| JEUNESSE",
	"FR| MUSIQUE",
	"FR| SPORTS",
	"US| SPORTS",
	"US| USA",
	"USA| NBA NFL NHL MLB",
}

// DefaultRegions maps group title prefixes to the region shown in section labels.
var DefaultRegions = map[string]string{
	"CA":  "CANADA",
	"AF":  "AFRIQUE",
	"AR":  "MAGHREB",
	"FR":  "FRANCE",
	"US":  "ÉTATS-UNIS",
	"USA": "ÉTATS-UNIS",
}

var regionCodeRegex = regexp.MustCompile(`^([A-Z]{2,3})\s*\|\s*(.+)$`)

// Sorting folds fewer letters than matcher.AccentFolder.
var sortFolder = strings.NewReplacer(
	"É", "E", "È", "E", "Ê", "E",
	"À", "A", "Â", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O",
	"Ù", "U", "Û", "U",
)

// Options configures Organize.
type Options struct {
	CategoryOrder []string
	Regions       map[string]string
}

// DefaultOptions returns the built in category order and region table.
func DefaultOptions() Options {
	return Options{
		CategoryOrder: DefaultCategoryOrder,
		Regions:       DefaultRegions,
	}
}

// Section is one group of tracks sharing a group title.
type Section struct {
	GroupTitle string
	Label      string
	Tracks     []m3uplus.Track
}

// Result is the outcome of Organize.
type Result struct {
	Sections []Section
	// Ungrouped counts tracks without a group title; they are left out of every section.
	Ungrouped int
}

// Total returns the number of tracks placed in sections.
func (r Result) Total() int {
	total := 0
	for _, s := range r.Sections {
		total += len(s.Tracks)
	}
	return total
}

// SortKey returns the key tracks are ordered by inside a section.
func SortKey(t m3uplus.Track) string {
	return sortFolder.Replace(matcher.Upper(t.DisplayName()))
}

// SectionLabel returns the label shown above a group. Titles shaped like
// "FR| CINEMA" are prefixed with their region name.
func (o Options) SectionLabel(groupTitle string) string {
	match := regionCodeRegex.FindStringSubmatch(groupTitle)
	if match == nil {
		return groupTitle
	}

	region, ok := o.Regions[match[1]]
	if !ok {
		region = match[1]
	}
	return fmt.Sprintf("%s - %s", region, groupTitle)
}

// Organize groups tracks by group title. Titles from the category order come
// first, the rest follow in lexical order. Tracks are stably sorted by SortKey.
func Organize(tracks []m3uplus.Track, opts Options) Result {
	var result Result
	groups := make(map[string][]m3uplus.Track)

	for _, track := range tracks {
		title := track.Attributes().GroupTitle
		if title == "" {
			result.Ungrouped++
			continue
		}
		groups[title] = append(groups[title], track)
	}

	emitted := make(map[string]bool, len(groups))
	emit := func(title string) {
		group := groups[title]
		sort.SliceStable(group, func(i, j int) bool {
			return SortKey(group[i]) < SortKey(group[j])
		})
		result.Sections = append(result.Sections, Section{
			GroupTitle: title,
			Label:      opts.SectionLabel(title),
			Tracks:     group,
		})
		emitted[title] = true
	}

	for _, title := range opts.CategoryOrder {
		if _, ok := groups[title]; ok && !emitted[title] {
			emit(title)
		}
	}

	remaining := make([]string, 0, len(groups))
	for title := range groups {
		if !emitted[title] {
			remaining = append(remaining, title)
		}
	}
	sort.Strings(remaining)

	for _, title := range remaining {
		emit(title)
	}

	return result
}

// Render writes the playlist header followed by every section. Rendering the
// result of organizing a rendered playlist yields the same bytes.
func Render(header string, sections []Section) string {
	if !strings.HasPrefix(header, m3uplus.HeaderPrefix) {
		header = m3uplus.HeaderPrefix
	}

	lines := []string{header, ""}
	for _, section := range sections {
		lines = append(lines, Banner, "# "+section.Label, Banner, "")
		for _, track := range section.Tracks {
			lines = append(lines, track.Raw, track.URI, "")
		}
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
