// Package config loads shiptrace configuration.
//
// A configuration starts from Default, is overlaid by an optional YAML or CUE
// file, then by SHIPTRACE_* environment variables. The result is checked
// against the embedded CUE schema before it is returned.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/shiptrace/internal/cost"
	"github.com/roach88/shiptrace/internal/report"
	"github.com/roach88/shiptrace/internal/timeline"
)

//go:embed schema.cue
var schemaSource string

// Environment variables that override file values.
const (
	EnvDataDir  = "SHIPTRACE_DATA_DIR"
	EnvLogLevel = "SHIPTRACE_LOG_LEVEL"
	EnvAddr     = "SHIPTRACE_ADDR"
)

// Config holds all shiptrace configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir" json:"data_dir"`
	LogLevel string         `yaml:"log_level" json:"log_level"`
	Timeline TimelineConfig `yaml:"timeline" json:"timeline"`
	Cost     CostConfig     `yaml:"cost" json:"cost"`
	Report   ReportConfig   `yaml:"report" json:"report"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// TimelineConfig selects the sources fused into a shipment timeline.
type TimelineConfig struct {
	UnitColumn       string   `yaml:"unit_column" json:"unit_column"`
	Sources          []string `yaml:"sources" json:"sources"`
	TimestampColumns []string `yaml:"timestamp_columns" json:"timestamp_columns"`
}

// CostConfig holds the sources and fixed amounts of the cost analysis.
type CostConfig struct {
	ShipmentSource            string  `yaml:"shipment_source" json:"shipment_source"`
	WasteSource               string  `yaml:"waste_source" json:"waste_source"`
	HistoryEventType          string  `yaml:"history_event_type" json:"history_event_type"`
	HistoryLimit              int     `yaml:"history_limit" json:"history_limit"`
	QAReviewCostUSD           float64 `yaml:"qa_review_cost_usd" json:"qa_review_cost_usd"`
	ReleaseSuccessProbability float64 `yaml:"release_success_probability" json:"release_success_probability"`
	ReshipLogisticsCostUSD    float64 `yaml:"reship_logistics_cost_usd" json:"reship_logistics_cost_usd"`
}

// ReportConfig holds report header labels.
type ReportConfig struct {
	PreparedBy   string `yaml:"prepared_by" json:"prepared_by"`
	DocumentType string `yaml:"document_type" json:"document_type"`
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	cc := cost.DefaultConfig()
	return Config{
		DataDir:  "data",
		LogLevel: "info",
		Timeline: TimelineConfig{
			UnitColumn:       timeline.DefaultUnitColumn,
			Sources:          append([]string(nil), timeline.DefaultSources...),
			TimestampColumns: append([]string(nil), timeline.DefaultTimestampColumns...),
		},
		Cost: CostConfig{
			ShipmentSource:            cc.ShipmentSource,
			WasteSource:               cc.WasteSource,
			HistoryEventType:          cc.HistoryEventType,
			HistoryLimit:              cc.HistoryLimit,
			QAReviewCostUSD:           cc.QAReviewCostUSD,
			ReleaseSuccessProbability: cc.ReleaseSuccessProbability,
			ReshipLogisticsCostUSD:    cc.ReshipLogisticsCostUSD,
		},
		Report: ReportConfig{
			PreparedBy:   report.DefaultPreparedBy,
			DocumentType: report.DefaultDocumentType,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Error reports an invalid configuration, with the file position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load builds a configuration from path (if non-empty) and the environment.
// Files ending in .yaml or .yml are read as YAML; .cue files as CUE.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = decodeYAML(data, &cfg)
		case ".cue":
			err = decodeCUE(path, data, &cfg)
		default:
			err = &Error{Field: "file", Message: fmt.Sprintf("unsupported config format %q", filepath.Ext(path))}
		}
		if err != nil {
			return Config{}, err
		}
		slog.Debug("config loaded", "path", path)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays a YAML document onto cfg. Unknown keys are rejected.
func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Field: "yaml", Message: err.Error()}
	}
	return nil
}

// decodeCUE evaluates a CUE file against the schema and overlays its
// concrete fields onto cfg.
func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}

	file, err := definition(ctx, "#File")
	if err != nil {
		return err
	}
	// Definitions are closed, so a misspelled key fails here.
	if err := file.Unify(v).Validate(); err != nil {
		return formatCUEError(err)
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return formatCUEError(err)
	}
	if err := json.Unmarshal(out, cfg); err != nil {
		return &Error{Field: "cue", Message: err.Error()}
	}
	return nil
}

// Validate checks cfg against the embedded schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	def, err := definition(ctx, "#Config")
	if err != nil {
		return err
	}
	v := def.Unify(ctx.Encode(cfg))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// definition compiles the embedded schema and returns the named definition.
func definition(ctx *cue.Context, name string) (cue.Value, error) {
	s := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := s.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return s.LookupPath(cue.ParsePath(name)), nil
}

// applyEnv overlays SHIPTRACE_* variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.DataDir = getenv(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = getenv(EnvLogLevel, cfg.LogLevel)
	cfg.Server.Addr = getenv(EnvAddr, cfg.Server.Addr)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if p := first.Path(); len(p) > 0 {
		field = strings.Join(p, ".")
	}
	cfgErr := &Error{Field: field, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}

// TimelinePlan converts the timeline section into a fusion plan.
func (c Config) TimelinePlan() timeline.Plan {
	plan := timeline.DefaultPlan()
	plan.UnitColumn = c.Timeline.UnitColumn
	plan.Sources = append([]string(nil), c.Timeline.Sources...)
	plan.TimestampColumns = append([]string(nil), c.Timeline.TimestampColumns...)
	return plan
}

// AnalyzerConfig converts the cost section into analyzer settings.
func (c Config) AnalyzerConfig() cost.Config {
	return cost.Config{
		ShipmentSource:            c.Cost.ShipmentSource,
		WasteSource:               c.Cost.WasteSource,
		UnitColumn:                c.Timeline.UnitColumn,
		HistoryEventType:          c.Cost.HistoryEventType,
		HistoryLimit:              c.Cost.HistoryLimit,
		QAReviewCostUSD:           c.Cost.QAReviewCostUSD,
		ReleaseSuccessProbability: c.Cost.ReleaseSuccessProbability,
		ReshipLogisticsCostUSD:    c.Cost.ReshipLogisticsCostUSD,
	}
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
