package codestore

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
)

// Placeholders used when no name or description can be derived.
const (
	UnknownName        = "Unknown"
	NoDescription      = "No description available"
	syntheticGoPackage = "package snippet\n\n"
)

var (
	pyDefRe  = regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)[ \t]*\(`)
	pyDocRe  = regexp.MustCompile(`^[^\n]*:[ \t]*\n[ \t]*(?:"""([\s\S]*?)"""|'''([\s\S]*?)''')`)
	jsFuncRe = regexp.MustCompile(`(?m)(?:^|[^\w$])function[ \t]*\*?[ \t]+([A-Za-z_$][\w$]*)[ \t]*\(`)
	jsDocRe  = regexp.MustCompile(`/\*\*([\s\S]*?)\*/\s*$`)
)

// Extract derives a best-effort name and description from the first function
// defined in content. It is a heuristic: Go sources are parsed with go/parser,
// other languages are matched by pattern (Python def + docstring, JavaScript
// function + JSDoc). Content without any recognizable function yields the
// placeholder values and no error; an error is returned only when content
// looks like Go but does not parse and no other pattern matches.
func Extract(content string) (Meta, error) {
	meta, goErr := extractGo(content)
	if goErr == nil {
		return meta, nil
	}
	if m, ok := extractPython(content); ok {
		return m, nil
	}
	if m, ok := extractJS(content); ok {
		return m, nil
	}
	if errors.Is(goErr, errNoFunc) || !looksLikeGo(content) {
		return Meta{Name: UnknownName, Description: NoDescription}, nil
	}
	return Meta{}, goErr
}

var errNoFunc = errors.New("no function definition found")

func looksLikeGo(content string) bool {
	return strings.Contains(content, "func ") || strings.HasPrefix(strings.TrimSpace(content), "package ")
}

func extractGo(content string) (Meta, error) {
	fset := token.NewFileSet()
	src := content
	if !strings.HasPrefix(strings.TrimSpace(src), "package ") {
		src = syntheticGoPackage + src
	}
	f, err := parser.ParseFile(fset, "snippet.go", src, parser.ParseComments)
	if err != nil {
		return Meta{}, err
	}
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		desc := strings.TrimSpace(fd.Doc.Text())
		if desc == "" {
			desc = NoDescription
		}
		return Meta{Name: fd.Name.Name, Description: desc}, nil
	}
	return Meta{}, errNoFunc
}

func extractPython(content string) (Meta, bool) {
	loc := pyDefRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return Meta{}, false
	}
	meta := Meta{Name: content[loc[2]:loc[3]], Description: NoDescription}
	if m := pyDocRe.FindStringSubmatch(content[loc[1]:]); m != nil {
		doc := m[1]
		if doc == "" {
			doc = m[2]
		}
		if doc = strings.TrimSpace(doc); doc != "" {
			meta.Description = doc
		}
	}
	return meta, true
}

func extractJS(content string) (Meta, bool) {
	loc := jsFuncRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return Meta{}, false
	}
	meta := Meta{Name: content[loc[2]:loc[3]], Description: NoDescription}
	kw := strings.LastIndex(content[:loc[2]], "function")
	if m := jsDocRe.FindStringSubmatch(content[:kw]); m != nil {
		var lines []string
		for _, l := range strings.Split(m[1], "\n") {
			l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
			if l != "" && !strings.HasPrefix(l, "@") {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			meta.Description = strings.Join(lines, " ")
		}
	}
	return meta, true
}
