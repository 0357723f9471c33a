package gen

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/veloxts/schema"
)

// Namer converts raw collection names into output type names.
//
// A Namer belongs to exactly one Graph. Results are cached, and the first
// collection to claim a type name owns it: a later collection that
// synthesizes the same name reuses it instead of taking it over. Reserved
// names belong to no collection; a collection synthesizing one gets the
// first free name with an "Entity" suffix.
type Namer struct {
	rules   *inflect.Ruleset
	title   cases.Caser
	catalog *Catalog
	conv    *Conventions

	singletons map[string]bool
	cache      map[string]string // raw name -> type name
	owners     map[string]string // type name -> first raw name
	reserved   map[string]bool
	renamed    map[string]string // raw name -> reserved name it gave up
}

// NewNamer returns a Namer using the given catalog and conventions.
func NewNamer(cat *Catalog, conv *Conventions) *Namer {
	if cat == nil {
		cat = NewCatalog()
	}
	if conv == nil {
		conv = DefaultConventions()
	}
	rules := inflect.NewDefaultRuleset()
	for singular, plural := range conv.Irregulars {
		rules.AddIrregular(singular, plural)
	}
	for _, w := range conv.Uncountables {
		rules.AddUncountable(w)
	}
	return &Namer{
		rules:      rules,
		title:      cases.Title(language.Und, cases.NoLower),
		catalog:    cat,
		conv:       conv,
		singletons: make(map[string]bool),
		cache:      make(map[string]string),
		owners:     make(map[string]string),
		reserved:   make(map[string]bool),
		renamed:    make(map[string]string),
	}
}

// Reserve claims a type name for a declaration that is not a collection,
// like the root aggregate. It must be called before the first TypeName
// call that could synthesize it.
func (n *Namer) Reserve(name string) {
	n.reserved[name] = true
}

// Renamed returns the reserved name that raw would have synthesized, if
// it was given another one.
func (n *Namer) Renamed(raw string) (string, bool) {
	name, ok := n.renamed[raw]
	return name, ok
}

// MarkSingleton flags raw as a singleton collection. It must be called
// before the first TypeName call for raw.
func (n *Namer) MarkSingleton(raw string) {
	n.singletons[raw] = true
}

// TypeName returns the output type name of the raw collection name.
func (n *Namer) TypeName(raw string) string {
	if name, ok := n.cache[raw]; ok {
		return name
	}
	name := n.typeName(raw)
	if n.reserved[name] {
		n.renamed[raw] = name
		name = n.free(name + "Entity")
	}
	n.cache[raw] = name
	if _, ok := n.owners[name]; !ok {
		n.owners[name] = raw
	}
	return name
}

// Owner returns the raw collection that first claimed the type name.
func (n *Namer) Owner(typeName string) (string, bool) {
	raw, ok := n.owners[typeName]
	return raw, ok
}

// free returns base, or base with the first numeric suffix that is
// neither reserved nor owned.
func (n *Namer) free(base string) string {
	name := base
	for i := 2; n.reserved[name] || n.owners[name] != ""; i++ {
		name = base + strconv.Itoa(i)
	}
	return name
}

func (n *Namer) typeName(raw string) string {
	if schema.IsSystem(raw) {
		if e, ok := n.catalog.Lookup(raw); ok && e.TypeName != "" {
			return e.TypeName
		}
		return "System" + n.Pascal(n.SingularName(strings.TrimPrefix(raw, schema.SystemPrefix)))
	}
	if n.singletons[raw] {
		return n.Pascal(raw)
	}
	return n.Pascal(n.SingularName(raw))
}

// SingularName singularizes the last word of a multi-word name:
// "blog_posts" becomes "blog_post".
func (n *Namer) SingularName(raw string) string {
	i := strings.LastIndexFunc(raw, isSeparator)
	return raw[:i+1] + n.Singular(raw[i+1:])
}

// Singular returns the singular form of w. Words that are already
// singular ("status", "address") are returned unchanged.
func (n *Namer) Singular(w string) string {
	if w == "" {
		return w
	}
	s := n.rules.Singularize(w)
	if s == w {
		return w
	}
	if p := n.rules.Pluralize(w); p != w && n.rules.Singularize(p) == w {
		return w
	}
	return s
}

// Plural returns the plural form of w.
func (n *Namer) Plural(w string) string {
	if w == "" {
		return w
	}
	return n.rules.Pluralize(w)
}

// Pascal converts a snake, kebab or camel case name to PascalCase.
func (n *Namer) Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(n.title.String(w))
	}
	name := b.String()
	switch {
	case name == "":
		return "Unnamed"
	case unicode.IsDigit(rune(name[0])):
		return "T" + name
	}
	return name
}

// Normalize reduces a name for fuzzy comparison: lower case, without
// organization prefixes, without "_item", "_items" and "_id" suffixes and
// without a trailing plural "s". It is never used for type names.
func (n *Namer) Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range append([]string{schema.SystemPrefix}, n.conv.OrgPrefixes...) {
		if p != "" && strings.HasPrefix(s, p) && len(s) > len(p) {
			s = s[len(p):]
			break
		}
	}
	for _, suffix := range []string{"_items", "_item", "_id"} {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	if len(s) > 1 && strings.HasSuffix(s, "s") {
		s = s[:len(s)-1]
	}
	return s
}

// words splits an identifier on separators and lower-to-upper case
// transitions: "blogPost_tags" yields ["blog", "Post", "tags"].
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case isSeparator(r) || !(unicode.IsLetter(r) || unicode.IsDigit(r)):
			flush()
			continue
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
