package report

import (
	"regexp"
	"sort"
	"strings"
)

// undefinedSymbol matches the Go linker/compiler's "undefined: foo.Bar" and
// "undefined reference to" style messages closely enough for a best-effort
// suggestion; it is deliberately approximate, as vogar's own ClassFileIndex
// warns in its own comments.
var undefinedSymbol = regexp.MustCompile(`undefined(?:\s+reference)?(?:\s+to)?:?\s+([A-Za-z0-9_./]+)`)

// ClassFileIndex maps exported symbols (as produced by `go list -deps` plus
// a symbol listing) to the package path that provides them, so the Report
// Emitter can suggest "you might be missing <import>" for a build failure.
type ClassFileIndex struct {
	// providers maps a bare symbol name to the package paths that export it.
	providers map[string][]string
}

// NewClassFileIndex builds an index from a package-path -> exported-symbols
// map, typically derived from `go doc` or `go list -deps` output.
func NewClassFileIndex(exports map[string][]string) *ClassFileIndex {
	idx := &ClassFileIndex{providers: make(map[string][]string)}
	for pkg, symbols := range exports {
		for _, sym := range symbols {
			idx.providers[sym] = append(idx.providers[sym], pkg)
		}
	}
	return idx
}

// Suggest scans outputLines for undefined-symbol messages and returns a
// sorted, de-duplicated list of the package paths that export those
// symbols. Paths listed in alreadyOnClasspath (from mode.GetClasspath) are
// never suggested, since a symbol coming from something already importable
// isn't the problem.
func (idx *ClassFileIndex) Suggest(outputLines []string, alreadyOnClasspath []string) []string {
	onClasspath := make(map[string]struct{}, len(alreadyOnClasspath))
	for _, p := range alreadyOnClasspath {
		onClasspath[p] = struct{}{}
	}

	suggestions := make(map[string]struct{})
	for _, line := range outputLines {
		for _, match := range undefinedSymbol.FindAllStringSubmatch(line, -1) {
			symbol := lastSegment(match[1])
			for _, pkg := range idx.providers[symbol] {
				if _, skip := onClasspath[pkg]; skip {
					continue
				}
				suggestions[pkg] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(suggestions))
	for pkg := range suggestions {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

func lastSegment(symbol string) string {
	if idx := strings.LastIndexByte(symbol, '.'); idx >= 0 {
		return symbol[idx+1:]
	}
	return symbol
}
