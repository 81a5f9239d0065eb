// Package store persists the three tables as Parquet files in the cache
// directory.
package store

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/everstacklabs/modelfuse/internal/cache"
	"github.com/everstacklabs/modelfuse/internal/merge"
	"github.com/everstacklabs/modelfuse/internal/schema"
	"github.com/everstacklabs/modelfuse/internal/source/aa"
	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
)

// BenchmarkRow is the benchmarks table layout: Artificial Analysis fields
// only, no capability columns.
type BenchmarkRow struct {
	ID            int64    `parquet:"id"`
	Name          string   `parquet:"name"`
	Slug          string   `parquet:"slug"`
	Creator       string   `parquet:"creator"`
	CreatorSlug   string   `parquet:"creator_slug"`
	ReleaseDate   string   `parquet:"release_date,optional"`
	Intelligence  *float64 `parquet:"intelligence,optional"`
	Coding        *float64 `parquet:"coding,optional"`
	Math          *float64 `parquet:"math,optional"`
	MMLUPro       *float64 `parquet:"mmlu_pro,optional"`
	GPQA          *float64 `parquet:"gpqa,optional"`
	HLE           *float64 `parquet:"hle,optional"`
	LiveCodeBench *float64 `parquet:"livecodebench,optional"`
	SciCode       *float64 `parquet:"scicode,optional"`
	Math500       *float64 `parquet:"math_500,optional"`
	AIME          *float64 `parquet:"aime,optional"`
	InputPrice    *float64 `parquet:"input_price,optional"`
	OutputPrice   *float64 `parquet:"output_price,optional"`
	BlendedPrice  *float64 `parquet:"price,optional"`
	TPS           *float64 `parquet:"tps,optional"`
	Latency       *float64 `parquet:"latency,optional"`
}

// CapabilityRow is the models table layout: the capability snapshot
// flattened to one row per provider/model pair.
type CapabilityRow struct {
	ProviderID       string   `parquet:"provider_id"`
	ProviderName     string   `parquet:"provider_name"`
	ProviderEnv      string   `parquet:"provider_env,optional"`
	ProviderNPM      string   `parquet:"provider_npm,optional"`
	ProviderAPI      string   `parquet:"provider_api,optional"`
	ProviderDoc      string   `parquet:"provider_doc,optional"`
	ModelID          string   `parquet:"model_id"`
	ModelName        string   `parquet:"model_name"`
	Family           string   `parquet:"family,optional"`
	Attachment       *bool    `parquet:"attachment,optional"`
	Reasoning        *bool    `parquet:"reasoning,optional"`
	ToolCall         *bool    `parquet:"tool_call,optional"`
	StructuredOutput *bool    `parquet:"structured_output,optional"`
	Temperature      *bool    `parquet:"temperature,optional"`
	Knowledge        string   `parquet:"knowledge,optional"`
	ReleaseDate      string   `parquet:"release_date,optional"`
	LastUpdated      string   `parquet:"last_updated,optional"`
	OpenWeights      *bool    `parquet:"open_weights,optional"`
	Status           string   `parquet:"status,optional"`
	ContextWindow    *int64   `parquet:"context_window,optional"`
	MaxInputTokens   *int64   `parquet:"max_input_tokens,optional"`
	MaxOutputTokens  *int64   `parquet:"max_output_tokens,optional"`
	CostInput        *float64 `parquet:"cost_input,optional"`
	CostOutput       *float64 `parquet:"cost_output,optional"`
	CostCacheRead    *float64 `parquet:"cost_cache_read,optional"`
	CostCacheWrite   *float64 `parquet:"cost_cache_write,optional"`
	InputModalities  string   `parquet:"input_modalities,optional"`
	OutputModalities string   `parquet:"output_modalities,optional"`
}

// MediaRow is the shared layout of the media leaderboard tables. The ID is
// stored as text to match the SQL-visible schema.
type MediaRow struct {
	ID          string   `parquet:"id"`
	Name        string   `parquet:"name"`
	Slug        string   `parquet:"slug"`
	Creator     string   `parquet:"creator"`
	ELO         *float64 `parquet:"elo,optional"`
	Rank        *int32   `parquet:"rank,optional"`
	ReleaseDate string   `parquet:"release_date,optional"`
}

// Store writes and reads the cached Parquet tables.
type Store struct {
	cache *cache.FileCache
}

// New creates a Store over the cache directory.
func New(fc *cache.FileCache) *Store {
	return &Store{cache: fc}
}

// WriteMerged persists the merged llms table.
func (s *Store) WriteMerged(rows []merge.Row) error {
	return writeParquet(s.cache.ParquetPath(schema.LLMs.Name), rows)
}

// ReadMerged loads the merged llms table.
func (s *Store) ReadMerged() ([]merge.Row, error) {
	return readParquet[merge.Row](s.cache.ParquetPath(schema.LLMs.Name))
}

// WriteBenchmarks persists the benchmarks table.
func (s *Store) WriteBenchmarks(models []aa.Model) error {
	rows := make([]BenchmarkRow, 0, len(models))
	for i := range models {
		rows = append(rows, benchmarkRow(&models[i]))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatorSlug != rows[j].CreatorSlug {
			return rows[i].CreatorSlug < rows[j].CreatorSlug
		}
		return rows[i].Slug < rows[j].Slug
	})
	return writeParquet(s.cache.ParquetPath(schema.Benchmarks.Name), rows)
}

// WriteCapabilities persists the models table. Rows are sorted by provider
// then model ID so repeated runs produce identical files.
func (s *Store) WriteCapabilities(snapshot modelsdev.Snapshot) error {
	var rows []CapabilityRow
	for _, provider := range snapshot {
		for _, model := range provider.Models {
			rows = append(rows, capabilityRow(&provider, &model))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProviderID != rows[j].ProviderID {
			return rows[i].ProviderID < rows[j].ProviderID
		}
		return rows[i].ModelID < rows[j].ModelID
	})
	return writeParquet(s.cache.ParquetPath(schema.Models.Name), rows)
}

// WriteMedia persists one media leaderboard table.
func (s *Store) WriteMedia(table string, models []aa.MediaModel) error {
	rows := make([]MediaRow, 0, len(models))
	for i := range models {
		rows = append(rows, mediaRow(&models[i]))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Slug < rows[j].Slug })
	return writeParquet(s.cache.ParquetPath(table), rows)
}

func benchmarkRow(m *aa.Model) BenchmarkRow {
	row := BenchmarkRow{
		ID:          m.ID,
		Name:        m.DisplayName(),
		Slug:        m.Slug,
		Creator:     m.Creator.Name,
		CreatorSlug: m.Creator.Slug,
		ReleaseDate: m.ReleaseDate,
	}
	if e := m.Evaluations; e != nil {
		row.Intelligence = e.IntelligenceIndex
		row.Coding = e.CodingIndex
		row.Math = e.MathIndex
		row.MMLUPro = e.MMLUPro
		row.GPQA = e.GPQA
		row.HLE = e.HLE
		row.LiveCodeBench = e.LiveCodeBench
		row.SciCode = e.SciCode
		row.Math500 = e.Math500
		row.AIME = e.AIME
	}
	if p := m.Pricing; p != nil {
		row.InputPrice = p.InputTokens
		row.OutputPrice = p.OutputTokens
		row.BlendedPrice = p.BlendedTokens
	}
	if sp := m.Speed; sp != nil {
		row.TPS = sp.TokensPerSecond
		row.Latency = sp.TimeToFirstToken
	}
	return row
}

func capabilityRow(p *modelsdev.Provider, m *modelsdev.Model) CapabilityRow {
	row := CapabilityRow{
		ProviderID:       p.ID,
		ProviderName:     p.Name,
		ProviderEnv:      strings.Join(p.Env, ","),
		ProviderNPM:      p.NPM,
		ProviderAPI:      p.API,
		ProviderDoc:      p.Doc,
		ModelID:          m.ID,
		ModelName:        m.Name,
		Family:           m.Family,
		Attachment:       m.Attachment,
		Reasoning:        m.Reasoning,
		ToolCall:         m.ToolCall,
		StructuredOutput: m.StructuredOutput,
		Temperature:      m.Temperature,
		Knowledge:        m.Knowledge,
		ReleaseDate:      m.ReleaseDate,
		LastUpdated:      m.LastUpdated,
		OpenWeights:      m.OpenWeights,
		Status:           m.Status,
	}
	if limit := m.Limit; limit != nil {
		row.ContextWindow = limit.Context
		row.MaxInputTokens = limit.Input
		row.MaxOutputTokens = limit.Output
	}
	if cost := m.Cost; cost != nil {
		row.CostInput = cost.Input
		row.CostOutput = cost.Output
		row.CostCacheRead = cost.CacheRead
		row.CostCacheWrite = cost.CacheWrite
	}
	if mod := m.Modalities; mod != nil {
		row.InputModalities = strings.Join(mod.Input, ",")
		row.OutputModalities = strings.Join(mod.Output, ",")
	}
	return row
}

func mediaRow(m *aa.MediaModel) MediaRow {
	return MediaRow{
		ID:          strconv.FormatInt(m.ID, 10),
		Name:        m.Name,
		Slug:        m.Slug,
		Creator:     m.Creator.Name,
		ELO:         m.ELO,
		Rank:        m.Rank,
		ReleaseDate: m.ReleaseDate,
	}
}

func writeParquet[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return f.Close()
}

func readParquet[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	rows, err := parquet.Read[T](f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}
