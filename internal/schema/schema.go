// Package schema is the single source of truth for the SQL-visible tables:
// their names, backing Parquet files, and column types.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one SQL-visible column.
type Column struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef describes one queryable table.
type TableDef struct {
	Name        string
	ParquetFile string
	// RefreshHint is shown when the backing file is missing.
	RefreshHint string
	// Optional tables may be absent from a data drop; freshness checks
	// must not insist on them.
	Optional bool
	Columns  []Column
}

// CreateTableSQL renders the schema as a CREATE TABLE statement for the
// `tables` command.
func (t *TableDef) CreateTableSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	for i, col := range t.Columns {
		null := ""
		if !col.Nullable {
			null = " NOT NULL"
		}
		sep := ","
		if i == len(t.Columns)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %s %s%s%s\n", col.Name, col.SQLType, null, sep)
	}
	b.WriteString(")")
	return b.String()
}

// Benchmarks holds Artificial Analysis scores only. Capability data lives in
// the models table; the llms table joins both.
var Benchmarks = TableDef{
	Name:        "benchmarks",
	ParquetFile: "benchmarks.parquet",
	RefreshHint: "modelfuse refresh",
	Columns: []Column{
		{Name: "id", SQLType: "BIGINT", Nullable: false},
		{Name: "name", SQLType: "VARCHAR", Nullable: false},
		{Name: "slug", SQLType: "VARCHAR", Nullable: false},
		{Name: "creator", SQLType: "VARCHAR", Nullable: false},
		{Name: "creator_slug", SQLType: "VARCHAR", Nullable: false},
		{Name: "release_date", SQLType: "VARCHAR", Nullable: true},
		{Name: "intelligence", SQLType: "DOUBLE", Nullable: true},
		{Name: "coding", SQLType: "DOUBLE", Nullable: true},
		{Name: "math", SQLType: "DOUBLE", Nullable: true},
		{Name: "mmlu_pro", SQLType: "DOUBLE", Nullable: true},
		{Name: "gpqa", SQLType: "DOUBLE", Nullable: true},
		{Name: "hle", SQLType: "DOUBLE", Nullable: true},
		{Name: "livecodebench", SQLType: "DOUBLE", Nullable: true},
		{Name: "scicode", SQLType: "DOUBLE", Nullable: true},
		{Name: "math_500", SQLType: "DOUBLE", Nullable: true},
		{Name: "aime", SQLType: "DOUBLE", Nullable: true},
		{Name: "input_price", SQLType: "DOUBLE", Nullable: true},
		{Name: "output_price", SQLType: "DOUBLE", Nullable: true},
		{Name: "price", SQLType: "DOUBLE", Nullable: true},
		{Name: "tps", SQLType: "DOUBLE", Nullable: true},
		{Name: "latency", SQLType: "DOUBLE", Nullable: true},
	},
}

// Models holds the capability snapshot flattened to one row per
// provider/model pair.
var Models = TableDef{
	Name:        "models",
	ParquetFile: "models.parquet",
	RefreshHint: "modelfuse refresh",
	Columns: []Column{
		{Name: "provider_id", SQLType: "VARCHAR", Nullable: false},
		{Name: "provider_name", SQLType: "VARCHAR", Nullable: false},
		{Name: "provider_env", SQLType: "VARCHAR", Nullable: true},
		{Name: "provider_npm", SQLType: "VARCHAR", Nullable: true},
		{Name: "provider_api", SQLType: "VARCHAR", Nullable: true},
		{Name: "provider_doc", SQLType: "VARCHAR", Nullable: true},
		{Name: "model_id", SQLType: "VARCHAR", Nullable: false},
		{Name: "model_name", SQLType: "VARCHAR", Nullable: false},
		{Name: "family", SQLType: "VARCHAR", Nullable: true},
		{Name: "attachment", SQLType: "BOOLEAN", Nullable: true},
		{Name: "reasoning", SQLType: "BOOLEAN", Nullable: true},
		{Name: "tool_call", SQLType: "BOOLEAN", Nullable: true},
		{Name: "structured_output", SQLType: "BOOLEAN", Nullable: true},
		{Name: "temperature", SQLType: "BOOLEAN", Nullable: true},
		{Name: "knowledge", SQLType: "VARCHAR", Nullable: true},
		{Name: "release_date", SQLType: "VARCHAR", Nullable: true},
		{Name: "last_updated", SQLType: "VARCHAR", Nullable: true},
		{Name: "open_weights", SQLType: "BOOLEAN", Nullable: true},
		{Name: "status", SQLType: "VARCHAR", Nullable: true},
		{Name: "context_window", SQLType: "BIGINT", Nullable: true},
		{Name: "max_input_tokens", SQLType: "BIGINT", Nullable: true},
		{Name: "max_output_tokens", SQLType: "BIGINT", Nullable: true},
		{Name: "cost_input", SQLType: "DOUBLE", Nullable: true},
		{Name: "cost_output", SQLType: "DOUBLE", Nullable: true},
		{Name: "cost_cache_read", SQLType: "DOUBLE", Nullable: true},
		{Name: "cost_cache_write", SQLType: "DOUBLE", Nullable: true},
		{Name: "input_modalities", SQLType: "VARCHAR", Nullable: true},
		{Name: "output_modalities", SQLType: "VARCHAR", Nullable: true},
	},
}

// LLMs is the merged table: benchmark scores joined with resolved
// capability data, one row per benchmarked model.
var LLMs = TableDef{
	Name:        "llms",
	ParquetFile: "llms.parquet",
	RefreshHint: "modelfuse refresh",
	Columns: append(append([]Column{}, Benchmarks.Columns...),
		Column{Name: "capability_provider", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "capability_model_id", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "attachment", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "reasoning", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "tool_call", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "structured_output", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "temperature", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "open_weights", SQLType: "BOOLEAN", Nullable: true},
		Column{Name: "knowledge", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "context_window", SQLType: "BIGINT", Nullable: true},
		Column{Name: "max_input_tokens", SQLType: "BIGINT", Nullable: true},
		Column{Name: "max_output_tokens", SQLType: "BIGINT", Nullable: true},
		Column{Name: "input_modalities", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "output_modalities", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "match_kind", SQLType: "VARCHAR", Nullable: true},
		Column{Name: "matched", SQLType: "BOOLEAN", Nullable: false},
	),
}

// mediaColumns is the layout shared by the five media leaderboards.
var mediaColumns = []Column{
	{Name: "id", SQLType: "VARCHAR", Nullable: false},
	{Name: "name", SQLType: "VARCHAR", Nullable: false},
	{Name: "slug", SQLType: "VARCHAR", Nullable: false},
	{Name: "creator", SQLType: "VARCHAR", Nullable: false},
	{Name: "elo", SQLType: "DOUBLE", Nullable: true},
	{Name: "rank", SQLType: "INTEGER", Nullable: true},
	{Name: "release_date", SQLType: "VARCHAR", Nullable: true},
}

func mediaTable(name string) TableDef {
	return TableDef{
		Name:        name,
		ParquetFile: name + ".parquet",
		RefreshHint: "modelfuse refresh",
		Optional:    true,
		Columns:     mediaColumns,
	}
}

// Media leaderboard tables. ELO-ranked image, video, and speech models;
// these never join the capability snapshot.
var (
	TextToImage  = mediaTable("text_to_image")
	ImageEditing = mediaTable("image_editing")
	TextToSpeech = mediaTable("text_to_speech")
	TextToVideo  = mediaTable("text_to_video")
	ImageToVideo = mediaTable("image_to_video")
)

// All lists the queryable tables.
var All = []*TableDef{
	&LLMs, &Benchmarks, &Models,
	&TextToImage, &ImageEditing, &TextToSpeech, &TextToVideo, &ImageToVideo,
}

// Lookup returns the table definition for a (case-insensitive) name.
func Lookup(name string) (*TableDef, bool) {
	lower := strings.ToLower(name)
	for _, t := range All {
		if t.Name == lower {
			return t, true
		}
	}
	return nil, false
}
