package matcher

// Record is what the index remembers about a reference channel.
type Record struct {
	Logo         string
	OriginalName string
	TvgName      string
	ChannelName  string

	baseKey string
}

// Tier tells how a candidate key was derived from its record.
type Tier int

const (
	// TierNormalized keys are the full canonical key of the name.
	TierNormalized Tier = iota
	// TierBase keys have quality markers and numbering normalized away.
	TierBase
)

// Candidate is a key and the record it would point to.
type Candidate struct {
	Key    string
	Tier   Tier
	Record Record
}

// Index maps canonical keys to records and remembers the order keys were first added.
type Index struct {
	normalizer Normalizer
	keys       []string
	records    map[string]Record
}

// Candidates returns the keys a record with the given name should be indexed under:
// its canonical key and, when different and non empty, its base key.
func (n Normalizer) Candidates(name string, record Record) []Candidate {
	normalized := n.Normalize(name)
	if normalized == "" {
		return nil
	}
	record.OriginalName = name

	candidates := []Candidate{{Key: normalized, Tier: TierNormalized, Record: record}}
	if base := n.BaseKey(name); base != "" && base != normalized {
		candidates = append(candidates, Candidate{Key: base, Tier: TierBase, Record: record})
	}
	return candidates
}

// prefer reports whether candidate replaces the record already stored under its key.
// Canonical keys always take the latest record; base keys only replace a record without a logo.
func prefer(existing Record, candidate Candidate) bool {
	if candidate.Tier == TierNormalized {
		return true
	}
	return existing.Logo == "" && candidate.Record.Logo != ""
}

// BuildIndex reduces candidates to one record per key.
func (n Normalizer) BuildIndex(candidates []Candidate) *Index {
	idx := &Index{
		normalizer: n,
		records:    make(map[string]Record, len(candidates)),
	}

	for _, c := range candidates {
		c.Record.baseKey = n.BaseKey(c.Record.OriginalName)

		existing, ok := idx.records[c.Key]
		if !ok {
			idx.keys = append(idx.keys, c.Key)
			idx.records[c.Key] = c.Record
			continue
		}
		if prefer(existing, c) {
			idx.records[c.Key] = c.Record
		}
	}

	return idx
}

// Len returns the number of keys in the index.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Keys returns the index keys in insertion order.
func (idx *Index) Keys() []string {
	keys := make([]string, len(idx.keys))
	copy(keys, idx.keys)
	return keys
}

// Get returns the record stored under key.
func (idx *Index) Get(key string) (Record, bool) {
	r, ok := idx.records[key]
	return r, ok
}

// Find looks name up by canonical key, then by base key, then by comparing the
// base key of every indexed record in insertion order. A miss is not an error.
func (idx *Index) Find(name string) (Record, bool) {
	if name == "" {
		return Record{}, false
	}

	if r, ok := idx.records[idx.normalizer.Normalize(name)]; ok {
		return r, true
	}

	base := idx.normalizer.BaseKey(name)
	if base == "" {
		return Record{}, false
	}
	if r, ok := idx.records[base]; ok {
		return r, true
	}

	for _, key := range idx.keys {
		if r := idx.records[key]; r.baseKey == base {
			return r, true
		}
	}

	return Record{}, false
}
