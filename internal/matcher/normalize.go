// Package matcher turns channel names into comparison keys and finds the
// closest indexed channel for a name.
package matcher

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ZeroStrip selects how leading zeros are removed from numbers in base keys.
type ZeroStrip string

const (
	// ZeroStripLegacy removes the zero of every "0<digit>" pair anywhere in the name,
	// including inside longer numbers ("2024" becomes "224").
	ZeroStripLegacy ZeroStrip = "legacy"
	// ZeroStripToken only rewrites two digit number runs ("04" becomes "4", "2024" is kept).
	ZeroStripToken ZeroStrip = "token"
)

// ParseZeroStrip returns the ZeroStrip mode named by s.
func ParseZeroStrip(s string) (ZeroStrip, bool) {
	switch ZeroStrip(strings.ToLower(strings.TrimSpace(s))) {
	case ZeroStripLegacy, "":
		return ZeroStripLegacy, true
	case ZeroStripToken:
		return ZeroStripToken, true
	}
	return "", false
}

// AccentFolder folds the closed set of accented uppercase Latin letters used by channel names.
var AccentFolder = strings.NewReplacer(
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"À", "A", "Â", "A", "Ä", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O", "Ö", "O",
	"Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

// Upper uppercases s with full Unicode case mapping ("ß" becomes "SS").
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order; later rules rely on the earlier ones.
var sportRewrites = []rewrite{
	{regexp.MustCompile(`(?i)BEIN\s+SPORTS`), "BEIN SPORT"},
	{regexp.MustCompile(`SPORTS\s+(\d)`), "SPORT $1"},
	{regexp.MustCompile(`(?i)SPORTS\s+MAX`), "SPORT MAX"},
	{regexp.MustCompile(`SPORTS$`), "SPORT"},
	{regexp.MustCompile(`(?i)FULL\s*HD`), "FHD"},
}

var (
	leadingZeroRegex = regexp.MustCompile(`0(\d)`)
	numberRegex      = regexp.MustCompile(`\d+`)
)

// Each suffix is stripped at most once, in this order.
var qualitySuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*HEVC\s*$`),
	regexp.MustCompile(`(?i)\s*FHD\s*$`),
	regexp.MustCompile(`(?i)\s*FULLHD\s*$`),
	regexp.MustCompile(`(?i)\s*HD\s*\+?\s*$`),
	regexp.MustCompile(`(?i)\s*SD\s*$`),
	regexp.MustCompile(`(?i)\s*UHD\s*$`),
	regexp.MustCompile(`(?i)\s*4K\s*$`),
}

// Normalizer computes canonical and base keys for channel names.
type Normalizer struct {
	ZeroStrip ZeroStrip
}

// Default is the Normalizer used by the package level functions.
var Default = Normalizer{ZeroStrip: ZeroStripLegacy}

// Normalize returns the canonical key of name using the Default normalizer.
func Normalize(name string) string {
	return Default.Normalize(name)
}

// BaseKey returns the base key of name using the Default normalizer.
func BaseKey(name string) string {
	return Default.BaseKey(name)
}

// Normalize returns the canonical comparison key of name: uppercased, accents
// folded and whitespace collapsed.
func (n Normalizer) Normalize(name string) string {
	if name == "" {
		return ""
	}
	name = Upper(norm.NFC.String(name))
	name = AccentFolder.Replace(name)
	return collapseSpaces(name)
}

// BaseKey returns the canonical key of name with sport spelling, numbering and
// trailing quality markers normalized away.
func (n Normalizer) BaseKey(name string) string {
	if name == "" {
		return ""
	}

	key := strings.Replace(n.Normalize(name), "_", " ", -1)
	for _, rw := range sportRewrites {
		key = rw.re.ReplaceAllString(key, rw.repl)
	}

	key = n.stripLeadingZeros(key)

	for _, re := range qualitySuffixes {
		key = re.ReplaceAllString(key, "")
	}

	return collapseSpaces(key)
}

func (n Normalizer) stripLeadingZeros(key string) string {
	if n.ZeroStrip == ZeroStripToken {
		return numberRegex.ReplaceAllStringFunc(key, func(num string) string {
			if len(num) == 2 && num[0] == '0' {
				return num[1:]
			}
			return num
		})
	}
	return leadingZeroRegex.ReplaceAllString(key, "$1")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
