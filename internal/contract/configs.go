package contract

import (
	"maps"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mkohari/skillscope/schema"
)

// Default values for configuration.
const (
	DefaultAnalysisDays   = 7
	DefaultEvidenceLimit  = 3
	MaxEvidenceLimit      = 20
	DefaultNoiseThreshold = 5.0
	DefaultExcerptMaxLen  = 280
	DefaultRetentionDays  = 180
	DefaultPrecision      = 1
	DefaultMinSessions    = 1
)

// DefaultWorkers is the default number of concurrent extractor workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated runtime configuration for an analysis run.
type Config struct {
	WorkspacePath string
	WindowStart   time.Time
	WindowEnd     time.Time

	Tools      []schema.AgentTool
	Dimensions []schema.DimensionKey

	Workers   int
	Precision int

	Output     schema.OutputMode
	OutputFile string
	UseColors  bool

	EvidenceLimit  int
	ExcerptMaxLen  int
	NoiseThreshold float64
	RetentionDays  int
	MinSessions    int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext
	SkipStore      bool

	// DimensionWeights maps each enabled dimension to its aggregation weight.
	// Weights sum to 1.0 across enabled dimensions.
	DimensionWeights map[schema.DimensionKey]float64

	// Curves is the merged curve registry: defaults overlaid with config
	// overrides, validated before the run starts.
	Curves map[schema.CurveKey]schema.CurveSpec
}

// Window returns the configured analysis window.
func (c *Config) Window() Window {
	return Window{Start: c.WindowStart, End: c.WindowEnd}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Tools != nil {
		clone.Tools = make([]schema.AgentTool, len(c.Tools))
		copy(clone.Tools, c.Tools)
	}
	if c.Dimensions != nil {
		clone.Dimensions = make([]schema.DimensionKey, len(c.Dimensions))
		copy(clone.Dimensions, c.Dimensions)
	}
	if c.DimensionWeights != nil {
		clone.DimensionWeights = make(map[schema.DimensionKey]float64, len(c.DimensionWeights))
		maps.Copy(clone.DimensionWeights, c.DimensionWeights)
	}
	if c.Curves != nil {
		clone.Curves = make(map[schema.CurveKey]schema.CurveSpec, len(c.Curves))
		maps.Copy(clone.Curves, c.Curves)
	}
	return &clone
}

// CloneWithWindow creates a copy of the Config with a new analysis window.
func (c *Config) CloneWithWindow(start, end time.Time) *Config {
	clone := c.Clone()
	clone.WindowStart = start
	clone.WindowEnd = end
	return clone
}

// WeightsRawInput holds custom dimension weights from the YAML config file.
// Pointers distinguish "not provided" from an explicit zero.
type WeightsRawInput struct {
	PromptQuality      *float64 `mapstructure:"prompt_quality"`
	ConversationFlow   *float64 `mapstructure:"conversation_flow"`
	ContextManagement  *float64 `mapstructure:"context_management"`
	SessionPatterns    *float64 `mapstructure:"session_patterns"`
	ToolUsage          *float64 `mapstructure:"tool_usage"`
	RuleFile           *float64 `mapstructure:"rule_file"`
	CompletionPatterns *float64 `mapstructure:"completion_patterns"`
	OutcomeTracking    *float64 `mapstructure:"outcome_tracking"`
}

// CurveRawInput holds one curve override from the YAML config file.
type CurveRawInput struct {
	Shape     string   `mapstructure:"shape"`
	Midpoint  *float64 `mapstructure:"midpoint"`
	Steepness *float64 `mapstructure:"steepness"`
	Center    *float64 `mapstructure:"center"`
	Width     *float64 `mapstructure:"width"`
	Scale     *float64 `mapstructure:"scale"`
	Low       *float64 `mapstructure:"low"`
	High      *float64 `mapstructure:"high"`
	Invert    *bool    `mapstructure:"invert"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	WorkspaceStr string

	Tool           string  `mapstructure:"tool"`
	Days           int     `mapstructure:"days"`
	Start          string  `mapstructure:"start"`
	End            string  `mapstructure:"end"`
	Preset         string  `mapstructure:"preset"`
	Dimensions     string  `mapstructure:"dimensions"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	Precision      int     `mapstructure:"precision"`
	Workers        int     `mapstructure:"workers"`
	Color          string  `mapstructure:"color"`
	EvidenceLimit  int     `mapstructure:"evidence-limit"`
	ExcerptMaxLen  int     `mapstructure:"excerpt-max-len"`
	NoiseThreshold float64 `mapstructure:"noise-threshold"`
	RetentionDays  int     `mapstructure:"retention-days"`
	MinSessions    int     `mapstructure:"min-sessions"`
	NoStore        bool    `mapstructure:"no-store"`
	SkipGit        bool    `mapstructure:"skip-git"`

	StoreBackend   string `mapstructure:"trends-backend"`
	StoreDBConnect string `mapstructure:"trends-db-connect"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Curve overrides from config file ---
	Curves map[string]CurveRawInput `mapstructure:"curves"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every failure is a ConfigError and is
// raised before anything touches the trend store.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input); err != nil {
		return err
	}
	if err := processDimensions(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processCurves(cfg, input); err != nil {
		return err
	}
	if err := processBackend(cfg, input); err != nil {
		return err
	}
	return resolveWorkspace(cfg, input)
}

// validateSimpleInputs processes and validates scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.SkipStore = input.NoStore

	// --- Tool selection ---
	cfg.Tools = nil
	if tool := strings.ToLower(strings.TrimSpace(input.Tool)); tool != "" && tool != "all" {
		t := schema.AgentTool(tool)
		if !schema.ValidAgentTools[t] {
			return NewConfigError("tool", "invalid tool %q. must be claude_code, cursor, copilot, all", input.Tool)
		}
		cfg.Tools = []schema.AgentTool{t}
	} else {
		for _, t := range []schema.AgentTool{schema.ClaudeCodeTool, schema.CursorTool, schema.CopilotTool} {
			cfg.Tools = append(cfg.Tools, t)
		}
	}

	// --- Workers ---
	if input.Workers <= 0 {
		return NewConfigError("workers", "workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- Precision and output ---
	if input.Precision < 1 || input.Precision > 2 {
		return NewConfigError("precision", "precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if !schema.ValidOutputModes[cfg.Output] {
		return NewConfigError("output", "invalid output format %q. must be text, csv, json", input.Output)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return NewConfigError("color", "invalid --color value: %v", err)
	}
	cfg.UseColors = colors

	// --- Evidence bounds ---
	if input.EvidenceLimit < 0 || input.EvidenceLimit > MaxEvidenceLimit {
		return NewConfigError("evidence-limit", "evidence limit must be between 0 and %d (received %d)", MaxEvidenceLimit, input.EvidenceLimit)
	}
	cfg.EvidenceLimit = input.EvidenceLimit

	cfg.ExcerptMaxLen = input.ExcerptMaxLen
	if cfg.ExcerptMaxLen <= 0 {
		cfg.ExcerptMaxLen = DefaultExcerptMaxLen
	}

	// --- Noise threshold ---
	if input.NoiseThreshold < 0 || input.NoiseThreshold > 100 {
		return NewConfigError("noise-threshold", "noise threshold must be between 0 and 100 (received %g)", input.NoiseThreshold)
	}
	cfg.NoiseThreshold = input.NoiseThreshold

	// --- Retention ---
	if input.RetentionDays < 0 {
		return NewConfigError("retention-days", "retention days cannot be negative (received %d)", input.RetentionDays)
	}
	cfg.RetentionDays = input.RetentionDays
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	cfg.MinSessions = input.MinSessions
	if cfg.MinSessions <= 0 {
		cfg.MinSessions = DefaultMinSessions
	}

	return nil
}

// processWindow handles date parsing and window validation. Explicit
// start/end flags take precedence over --days.
func processWindow(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	days := input.Days
	if days <= 0 {
		days = DefaultAnalysisDays
	}
	cfg.WindowEnd = now
	cfg.WindowStart = now.Add(-time.Duration(days) * 24 * time.Hour)

	parse := func(field, s string) (time.Time, error) {
		t, err := time.Parse(DateTimeFormat, s)
		if err == nil {
			return t, nil
		}
		t, relErr := ParseRelativeTime(s, now)
		if relErr != nil {
			return time.Time{}, NewConfigError(field, "invalid date %q. Expected absolute ISO8601 or 'N <units> ago'", s)
		}
		return t, nil
	}

	if input.Start != "" {
		t, err := parse("start", input.Start)
		if err != nil {
			return err
		}
		cfg.WindowStart = t
	}
	if input.End != "" {
		t, err := parse("end", input.End)
		if err != nil {
			return err
		}
		cfg.WindowEnd = t
	}

	if !cfg.WindowStart.Before(cfg.WindowEnd) {
		return NewConfigError("window", "window start (%s) must be before window end (%s)",
			cfg.WindowStart.Format(DateTimeFormat), cfg.WindowEnd.Format(DateTimeFormat))
	}

	return nil
}

// processDimensions resolves the preset and any explicit dimension list into
// the final enabled set, preserving canonical order.
func processDimensions(cfg *Config, input *ConfigRawInput) error {
	enabled := make(map[schema.DimensionKey]bool)

	preset := schema.Preset(strings.ToLower(strings.TrimSpace(input.Preset)))
	if preset == "" {
		preset = schema.FullPreset
	}
	if !schema.ValidPresets[preset] {
		return NewConfigError("preset", "invalid preset %q. must be quick, coaching, full", input.Preset)
	}
	for _, d := range schema.PresetDimensions[preset] {
		enabled[d] = true
	}

	// An explicit --dimensions list replaces the preset selection.
	if strings.TrimSpace(input.Dimensions) != "" {
		enabled = make(map[schema.DimensionKey]bool)
		for part := range strings.SplitSeq(input.Dimensions, ",") {
			d := schema.DimensionKey(strings.ToLower(strings.TrimSpace(part)))
			if d == "" {
				continue
			}
			if !schema.ValidDimensions[d] {
				return NewConfigError("dimensions", "unknown dimension %q", part)
			}
			enabled[d] = true
		}
	}

	if input.SkipGit {
		for d := range enabled {
			if schema.RequiresGit[d] {
				delete(enabled, d)
			}
		}
	}

	cfg.Dimensions = nil
	for _, d := range schema.AllDimensions {
		if enabled[d] {
			cfg.Dimensions = append(cfg.Dimensions, d)
		}
	}
	if len(cfg.Dimensions) == 0 {
		return NewConfigError("dimensions", "no dimensions enabled")
	}

	return nil
}

// processWeights builds the dimension weight map. Defaults are uniform over
// the enabled dimensions; custom weights must cover exactly the enabled
// dimensions and sum to 1.0.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	custom := map[schema.DimensionKey]*float64{
		schema.DimPromptQuality:      input.Weights.PromptQuality,
		schema.DimConversationFlow:   input.Weights.ConversationFlow,
		schema.DimContextManagement:  input.Weights.ContextManagement,
		schema.DimSessionPatterns:    input.Weights.SessionPatterns,
		schema.DimToolUsage:          input.Weights.ToolUsage,
		schema.DimRuleFile:           input.Weights.RuleFile,
		schema.DimCompletionPatterns: input.Weights.CompletionPatterns,
		schema.DimOutcomeTracking:    input.Weights.OutcomeTracking,
	}

	anyCustom := false
	for _, v := range custom {
		if v != nil {
			anyCustom = true
			break
		}
	}

	cfg.DimensionWeights = make(map[schema.DimensionKey]float64, len(cfg.Dimensions))

	if !anyCustom {
		uniform := 1.0 / float64(len(cfg.Dimensions))
		for _, d := range cfg.Dimensions {
			cfg.DimensionWeights[d] = uniform
		}
		return nil
	}

	sum := 0.0
	for _, d := range cfg.Dimensions {
		v := custom[d]
		if v == nil {
			return NewConfigError("weights", "missing weight for enabled dimension %s", d)
		}
		if *v < 0 {
			return NewConfigError("weights", "weight for %s cannot be negative (received %g)", d, *v)
		}
		cfg.DimensionWeights[d] = *v
		sum += *v
	}

	if sum < 0.999 || sum > 1.001 {
		return NewConfigError("weights", "dimension weights must sum to 1.0, got %.3f", sum)
	}

	return nil
}

// processCurves merges config curve overrides onto the default registry and
// validates every spec. An unknown curve name or shape is a ConfigError.
func processCurves(cfg *Config, input *ConfigRawInput) error {
	cfg.Curves = make(map[schema.CurveKey]schema.CurveSpec)
	maps.Copy(cfg.Curves, schema.GetDefaultCurves())

	for name, raw := range input.Curves {
		key := schema.CurveKey(strings.ToLower(strings.TrimSpace(name)))
		base, ok := cfg.Curves[key]
		if !ok {
			return NewConfigError("curves", "unknown curve %q", name)
		}

		spec := base
		if raw.Shape != "" {
			spec.Shape = schema.CurveShape(strings.ToLower(raw.Shape))
		}
		if raw.Midpoint != nil {
			spec.Midpoint = *raw.Midpoint
		}
		if raw.Steepness != nil {
			spec.Steepness = *raw.Steepness
		}
		if raw.Center != nil {
			spec.Center = *raw.Center
		}
		if raw.Width != nil {
			spec.Width = *raw.Width
		}
		if raw.Scale != nil {
			spec.Scale = *raw.Scale
		}
		if raw.Low != nil {
			spec.Low = *raw.Low
		}
		if raw.High != nil {
			spec.High = *raw.High
		}
		if raw.Invert != nil {
			spec.Invert = *raw.Invert
		}

		if err := spec.Validate(); err != nil {
			return NewConfigError("curves", "curve %q: %v", name, err)
		}
		cfg.Curves[key] = spec
	}

	return nil
}

// processBackend validates the trend store backend selection.
func processBackend(cfg *Config, input *ConfigRawInput) error {
	backend := schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if !schema.ValidDatabaseBackends[backend] {
		return NewConfigError("trends-backend", "invalid backend %q. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect

	return ValidateDatabaseConnectionString(backend, cfg.StoreDBConnect)
}

// ValidateDatabaseConnectionString checks connection string format for
// networked backends. The trends subcommands call this directly since they
// skip the full validation chain.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return NewConfigError("trends-db-connect", "connection string is required for %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return NewConfigError("trends-db-connect", "MySQL connection string must contain '@tcp(' for host:port specification")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return NewConfigError("trends-db-connect", "connection string is required for %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") {
			return NewConfigError("trends-db-connect", "PostgreSQL connection string must contain 'host=' or use a postgres:// URL")
		}
	}
	return nil
}

// resolveWorkspace resolves the workspace positional argument to an absolute
// path. An empty workspace means "analyze all sessions regardless of
// workspace".
func resolveWorkspace(cfg *Config, input *ConfigRawInput) error {
	ws := strings.TrimSpace(input.WorkspaceStr)
	if ws == "" {
		cfg.WorkspacePath = ""
		return nil
	}

	abs, err := filepath.Abs(ws)
	if err != nil {
		return NewConfigError("workspace", "cannot resolve workspace path %q: %v", ws, err)
	}
	cfg.WorkspacePath = filepath.Clean(abs)
	return nil
}

// ProfileConfig holds profiling configuration.
type ProfileConfig struct {
	Enabled bool   // Whether profiling is enabled
	Prefix  string // Prefix for profile output files
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling
// configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
