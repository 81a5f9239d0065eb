// Package merge combines benchmark rows with capability data resolved
// through the match cascade.
package merge

import (
	"sort"
	"strings"

	"github.com/everstacklabs/modelfuse/internal/match"
	"github.com/everstacklabs/modelfuse/internal/source/aa"
	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
)

// Row is one merged model: benchmark identity and scores joined with the
// capability fields of its resolved counterpart. Capability fields stay nil
// when the model is unmatched or the capability source does not know.
type Row struct {
	// Benchmark identity and scores.
	ID            int64    `parquet:"id" json:"id"`
	Name          string   `parquet:"name" json:"name"`
	Slug          string   `parquet:"slug" json:"slug"`
	Creator       string   `parquet:"creator" json:"creator"`
	CreatorSlug   string   `parquet:"creator_slug" json:"creator_slug"`
	ReleaseDate   string   `parquet:"release_date,optional" json:"release_date,omitempty"`
	Intelligence  *float64 `parquet:"intelligence,optional" json:"intelligence,omitempty"`
	Coding        *float64 `parquet:"coding,optional" json:"coding,omitempty"`
	Math          *float64 `parquet:"math,optional" json:"math,omitempty"`
	MMLUPro       *float64 `parquet:"mmlu_pro,optional" json:"mmlu_pro,omitempty"`
	GPQA          *float64 `parquet:"gpqa,optional" json:"gpqa,omitempty"`
	HLE           *float64 `parquet:"hle,optional" json:"hle,omitempty"`
	LiveCodeBench *float64 `parquet:"livecodebench,optional" json:"livecodebench,omitempty"`
	SciCode       *float64 `parquet:"scicode,optional" json:"scicode,omitempty"`
	Math500       *float64 `parquet:"math_500,optional" json:"math_500,omitempty"`
	AIME          *float64 `parquet:"aime,optional" json:"aime,omitempty"`
	InputPrice    *float64 `parquet:"input_price,optional" json:"input_price,omitempty"`
	OutputPrice   *float64 `parquet:"output_price,optional" json:"output_price,omitempty"`
	BlendedPrice  *float64 `parquet:"price,optional" json:"price,omitempty"`
	TPS           *float64 `parquet:"tps,optional" json:"tps,omitempty"`
	Latency       *float64 `parquet:"latency,optional" json:"latency,omitempty"`

	// Capability fields, present only when matched.
	CapabilityProvider string `parquet:"capability_provider,optional" json:"capability_provider,omitempty"`
	CapabilityModelID  string `parquet:"capability_model_id,optional" json:"capability_model_id,omitempty"`
	Attachment         *bool  `parquet:"attachment,optional" json:"attachment,omitempty"`
	Reasoning          *bool  `parquet:"reasoning,optional" json:"reasoning,omitempty"`
	ToolCall           *bool  `parquet:"tool_call,optional" json:"tool_call,omitempty"`
	StructuredOutput   *bool  `parquet:"structured_output,optional" json:"structured_output,omitempty"`
	Temperature        *bool  `parquet:"temperature,optional" json:"temperature,omitempty"`
	OpenWeights        *bool  `parquet:"open_weights,optional" json:"open_weights,omitempty"`
	Knowledge          string `parquet:"knowledge,optional" json:"knowledge,omitempty"`
	ContextWindow      *int64 `parquet:"context_window,optional" json:"context_window,omitempty"`
	MaxInputTokens     *int64 `parquet:"max_input_tokens,optional" json:"max_input_tokens,omitempty"`
	MaxOutputTokens    *int64 `parquet:"max_output_tokens,optional" json:"max_output_tokens,omitempty"`
	InputModalities    string `parquet:"input_modalities,optional" json:"input_modalities,omitempty"`
	OutputModalities   string `parquet:"output_modalities,optional" json:"output_modalities,omitempty"`

	// Match provenance.
	MatchKind string `parquet:"match_kind,optional" json:"match_kind,omitempty"`
	Matched   bool   `parquet:"matched" json:"matched"`
}

// Combine produces one Row per benchmark model, resolving each against the
// capability snapshot. Pure projection: no I/O, inputs untouched. An empty
// snapshot degrades to every row unmatched, which is the documented
// fallback when the capability source is unavailable.
func Combine(models []aa.Model, snapshot modelsdev.Snapshot) []Row {
	idx := match.BuildIndex(snapshot)

	rows := make([]Row, 0, len(models))
	for i := range models {
		m := &models[i]
		row := benchmarkRow(m)
		if result := match.Find(m.Creator.Slug, m.Slug, idx); result != nil {
			projectCapabilities(&row, result)
		}
		rows = append(rows, row)
	}

	// Stable output order regardless of input order.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatorSlug != rows[j].CreatorSlug {
			return rows[i].CreatorSlug < rows[j].CreatorSlug
		}
		return rows[i].Slug < rows[j].Slug
	})
	return rows
}

// Pick resolves a user-supplied model reference against merged rows, for
// side-by-side comparison. Tiers, all case-insensitive: exact slug, exact
// name, slug substring, name substring. Within a tier the first row in
// order wins, so sorted input gives deterministic answers. Returns nil
// when nothing matches.
func Pick(rows []Row, ref string) *Row {
	needle := strings.ToLower(ref)
	if needle == "" {
		return nil
	}

	var nameExact, slugSub, nameSub *Row
	for i := range rows {
		r := &rows[i]
		slug := strings.ToLower(r.Slug)
		name := strings.ToLower(r.Name)
		switch {
		case slug == needle:
			return r
		case name == needle && nameExact == nil:
			nameExact = r
		case strings.Contains(slug, needle) && slugSub == nil:
			slugSub = r
		case strings.Contains(name, needle) && nameSub == nil:
			nameSub = r
		}
	}

	if nameExact != nil {
		return nameExact
	}
	if slugSub != nil {
		return slugSub
	}
	return nameSub
}

func benchmarkRow(m *aa.Model) Row {
	row := Row{
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
	if s := m.Speed; s != nil {
		row.TPS = s.TokensPerSecond
		row.Latency = s.TimeToFirstToken
	}
	return row
}

func projectCapabilities(row *Row, result *match.Result) {
	model := result.Model
	row.CapabilityProvider = result.ProviderID
	row.CapabilityModelID = result.ModelID
	row.Attachment = model.Attachment
	row.Reasoning = model.Reasoning
	row.ToolCall = model.ToolCall
	row.StructuredOutput = model.StructuredOutput
	row.Temperature = model.Temperature
	row.OpenWeights = model.OpenWeights
	row.Knowledge = model.Knowledge
	if limit := model.Limit; limit != nil {
		row.ContextWindow = limit.Context
		row.MaxInputTokens = limit.Input
		row.MaxOutputTokens = limit.Output
	}
	if mod := model.Modalities; mod != nil {
		row.InputModalities = strings.Join(mod.Input, ",")
		row.OutputModalities = strings.Join(mod.Output, ",")
	}
	row.MatchKind = result.Kind.String()
	row.Matched = true
}
