package names

import (
	"sort"
	"strconv"

	"github.com/derekparker/trie"
)

// Registry assigns unique labels to emoji code-point sequences. Two distinct
// sequences never share a label; asking twice for the same sequence returns
// the same label. Assignment is deterministic in call order: the first
// sequence to claim a name keeps the bare label, later claimants get a
// numeric suffix.
type Registry struct {
	labels     *trie.Trie        // label → sequence key
	bySeq      map[string]string // sequence key → label
	collisions int
}

// NewRegistry creates an empty label registry.
func NewRegistry() *Registry {
	return &Registry{
		labels: trie.New(),
		bySeq:  make(map[string]string),
	}
}

// Label returns the unique label for a code-point sequence, deriving it from
// the raw descriptive name on first use. An empty normalization result yields
// an empty label, which is not subject to uniqueness.
func (rg *Registry) Label(seq []rune, raw string) string {
	key := string(seq)
	if label, ok := rg.bySeq[key]; ok {
		return label
	}
	label := Normalize(raw)
	if label == "" {
		rg.bySeq[key] = ""
		return ""
	}
	if _, taken := rg.labels.Find(label); taken {
		label = rg.disambiguate(label)
		rg.collisions++
		tracer().Infof("label collision for %q, assigned %q", raw, label)
	}
	rg.labels.Add(label, key)
	rg.bySeq[key] = label
	return label
}

// disambiguate appends the smallest free numeric suffix, re-capping the
// label length so suffixed labels honor MaxLabelLen, too.
func (rg *Registry) disambiguate(label string) string {
	for n := 2; ; n++ {
		suffix := "_" + strconv.Itoa(n)
		head := truncate(label, MaxLabelLen-len(suffix))
		candidate := head + suffix
		if _, taken := rg.labels.Find(candidate); !taken {
			return candidate
		}
	}
}

// Assigned returns the label previously assigned to seq.
func (rg *Registry) Assigned(seq []rune) (string, bool) {
	label, ok := rg.bySeq[string(seq)]
	return label, ok
}

// WithPrefix returns all assigned labels sharing a prefix, sorted.
func (rg *Registry) WithPrefix(prefix string) []string {
	found := rg.labels.PrefixSearch(prefix)
	sort.Strings(found)
	return found
}

// Len returns the number of sequences holding a (possibly empty) label.
func (rg *Registry) Len() int {
	return len(rg.bySeq)
}

// Collisions returns the number of labels which needed disambiguation.
func (rg *Registry) Collisions() int {
	return rg.collisions
}
