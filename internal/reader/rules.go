package reader

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// maxRuleFileBytes bounds how much of a rule file is read for analysis.
const maxRuleFileBytes = 256 * 1024

// primaryRuleFileNames are the per-agent instruction files looked up at the
// workspace root.
var primaryRuleFileNames = []string{
	"CLAUDE.md",
	"AGENTS.md",
	".cursorrules",
	filepath.Join(".github", "copilot-instructions.md"),
}

// Rule content marker patterns.
var (
	examplesMarkerRe    = regexp.MustCompile("(?i)(```|\\bexamples?\\b|\\be\\.g\\.)")
	constraintsMarkerRe = regexp.MustCompile(`(?i)\b(never|always|must(?: not)?|do not|don'?t|avoid|require[ds]?)\b`)
	projectMarkerRe     = regexp.MustCompile(`(?i)\b(architecture|overview|structure|layout|project|repository|codebase)\b`)
	styleMarkerRe       = regexp.MustCompile(`(?i)\b(style|conventions?|naming|format(?:ting)?|lint(?:er|ing)?|idiomatic)\b`)
	toolMarkerRe        = regexp.MustCompile(`(?i)\b(command|tool|mcp|server|hook|permission)\b`)
	sectionHeaderRe     = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

// RuleScanner discovers and analyzes instruction files for a workspace:
// primary rule files, nested per-directory rule files one level deep, agent
// settings, MCP configuration, and the user-level rule file.
type RuleScanner struct {
	// userHome overrides $HOME in tests.
	userHome string
}

var _ contract.RuleReader = &RuleScanner{} // Compile-time check

// NewRuleScanner builds a scanner with default locations.
func NewRuleScanner() *RuleScanner {
	return &RuleScanner{}
}

// ReadRuleFiles implements the contract.RuleReader interface. Every known
// location yields a RuleFile entry; missing files are reported with
// Exists=false so coverage can be scored. Unreadable files degrade to
// ParseErrors.
func (s *RuleScanner) ReadRuleFiles(ctx context.Context, workspacePath string) ([]schema.RuleFile, []*contract.ParseError, error) {
	if workspacePath == "" {
		return nil, nil, nil
	}
	if _, err := os.Stat(workspacePath); err != nil {
		return nil, nil, err
	}

	var files []schema.RuleFile
	var parseErrs []*contract.ParseError

	analyze := func(path string, kind schema.RuleFileKind) {
		rf, perr := analyzeRuleFile(path, kind)
		if perr != nil {
			parseErrs = append(parseErrs, perr)
			return
		}
		files = append(files, rf)
	}

	for _, name := range primaryRuleFileNames {
		analyze(filepath.Join(workspacePath, name), schema.PrimaryRuleFile)
	}
	analyze(filepath.Join(workspacePath, ".claude", "settings.json"), schema.SettingsRuleFile)
	analyze(filepath.Join(workspacePath, ".mcp.json"), schema.MCPConfigFile)

	// Nested rule files one directory level deep.
	for _, nested := range nestedRuleFilePaths(workspacePath) {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		analyze(nested, schema.NestedRuleFile)
	}

	// User-level rule file under $HOME.
	home := s.userHome
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		analyze(filepath.Join(home, ".claude", "CLAUDE.md"), schema.UserRuleFile)
	}

	return files, parseErrs, nil
}

// nestedRuleFilePaths finds per-directory rule files one level below the
// workspace root.
func nestedRuleFilePaths(workspacePath string) []string {
	entries, err := os.ReadDir(workspacePath)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		candidate := filepath.Join(workspacePath, e.Name(), "CLAUDE.md")
		if _, err := os.Stat(candidate); err == nil {
			out = append(out, candidate)
		}
	}
	return out
}

// analyzeRuleFile stats and reads one rule file, deriving its structural
// signals. A missing file yields an Exists=false entry, not an error.
func analyzeRuleFile(path string, kind schema.RuleFileKind) (schema.RuleFile, *contract.ParseError) {
	rf := schema.RuleFile{Path: path, Kind: kind}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rf, nil
		}
		return rf, contract.NewParseError(path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return rf, contract.NewParseError(path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, maxRuleFileBytes)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return rf, contract.NewParseError(path, err)
	}
	content := string(buf[:n])

	rf.Exists = true
	rf.LastModified = info.ModTime()
	rf.Content = content
	rf.WordCount = len(strings.Fields(content))

	for line := range strings.Lines(content) {
		if m := sectionHeaderRe.FindStringSubmatch(strings.TrimRight(line, "\n")); m != nil {
			rf.SectionCount++
			rf.Sections = append(rf.Sections, strings.TrimSpace(m[1]))
		}
	}

	rf.HasExamples = examplesMarkerRe.MatchString(content)
	rf.HasConstraints = constraintsMarkerRe.MatchString(content)
	rf.HasProjectContext = projectMarkerRe.MatchString(content)
	rf.HasStyleGuide = styleMarkerRe.MatchString(content)
	rf.HasToolConfig = kind == schema.SettingsRuleFile || kind == schema.MCPConfigFile || toolMarkerRe.MatchString(content)

	return rf, nil
}
