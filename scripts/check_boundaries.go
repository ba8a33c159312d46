// Command check_boundaries enforces the context layering rules: contexts
// never import each other, domain and application stay off adapters and the
// platform runtime, and transport DTO packages stay free of module imports
// entirely so they remain shareable wire contracts.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	modulePath   = "postcard"
	contextsRoot = "contexts"
)

var runtimePrefixes = []string{
	modulePath + "/internal/platform/",
	modulePath + "/internal/app/",
	modulePath + "/cmd/",
}

// layerPolicy describes what a layer may import from the module itself.
// Imports outside the module (stdlib and third-party) are judged separately.
type layerPolicy struct {
	denyAdapters bool
	denyRuntime  bool
	// allowlist entries are joined with the owning service prefix where the
	// entry starts with "./".
	allowlist []string
}

var policies = map[string]layerPolicy{
	"domain": {
		denyAdapters: true,
		denyRuntime:  true,
		allowlist:    []string{"./domain"},
	},
	"application": {
		denyAdapters: true,
		denyRuntime:  true,
		allowlist: []string{
			"./application",
			"./domain",
			"./ports",
			modulePath + "/contracts",
			modulePath + "/internal/shared",
		},
	},
	"transport": {
		denyAdapters: true,
		denyRuntime:  true,
		allowlist:    []string{"./transport"},
	},
}

type finding struct {
	file     string
	line     int
	imported string
	rule     string
}

func main() {
	findings := inspectTree(contextsRoot)
	if len(findings) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.file != b.file {
			return a.file < b.file
		}
		if a.line != b.line {
			return a.line < b.line
		}
		return a.imported < b.imported
	})
	fmt.Println("boundary violations found:")
	for _, f := range findings {
		fmt.Printf("- %s:%d imports %q (%s)\n", f.file, f.line, f.imported, f.rule)
	}
	os.Exit(1)
}

func inspectTree(root string) []finding {
	var findings []finding
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		findings = append(findings, inspectFile(filepath.ToSlash(path))...)
		return nil
	})
	return findings
}

func inspectFile(path string) []finding {
	// contexts/<context>/<service>/<layer>/...
	parts := strings.Split(path, "/")
	if len(parts) < 4 || parts[0] != contextsRoot {
		return nil
	}
	svcPrefix := fmt.Sprintf("%s/%s/%s/%s", modulePath, contextsRoot, parts[1], parts[2])
	policy, scoped := policies[parts[3]]

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []finding{{file: path, line: 1, rule: "file must parse"}}
	}

	var findings []finding
	report := func(line int, imp, rule string) {
		findings = append(findings, finding{file: path, line: line, imported: imp, rule: rule})
	}

	for _, spec := range parsed.Imports {
		imp := strings.Trim(spec.Path.Value, `"`)
		line := fset.Position(spec.Pos()).Line

		if strings.HasPrefix(imp, modulePath+"/"+contextsRoot+"/") && !underPrefix(imp, svcPrefix) {
			report(line, imp, "cross-context imports are forbidden")
		}
		if !scoped {
			continue
		}
		if !strings.HasPrefix(imp, modulePath+"/") {
			if !stdlib(imp) {
				report(line, imp, parts[3]+" must not import third-party packages")
			}
			continue
		}
		if policy.denyAdapters && strings.Contains(imp, "/adapters/") {
			report(line, imp, parts[3]+" must not import adapters")
			continue
		}
		if policy.denyRuntime && underAny(imp, runtimePrefixes) {
			report(line, imp, parts[3]+" must not import runtime infrastructure")
			continue
		}
		if !allowed(imp, svcPrefix, policy.allowlist) {
			report(line, imp, parts[3]+" import is outside explicit allowlist")
		}
	}
	return findings
}

func allowed(imp, svcPrefix string, allowlist []string) bool {
	for _, entry := range allowlist {
		if strings.HasPrefix(entry, "./") {
			entry = svcPrefix + entry[1:]
		}
		if underPrefix(imp, entry) {
			return true
		}
	}
	return false
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func underAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// stdlib treats a dotless first path segment as standard library.
func stdlib(imp string) bool {
	first, _, _ := strings.Cut(imp, "/")
	return !strings.Contains(first, ".")
}
