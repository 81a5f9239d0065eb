package modelsdev

// Snapshot is the full models.dev dataset keyed by provider ID. Map
// iteration order is not meaningful; anything that needs determinism must
// sort (see internal/match.Index).
type Snapshot map[string]Provider

// Provider is one vendor namespace in the models.dev dataset.
type Provider struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Env    []string         `json:"env,omitempty"`
	NPM    string           `json:"npm,omitempty"`
	API    string           `json:"api,omitempty"`
	Doc    string           `json:"doc,omitempty"`
	Models map[string]Model `json:"models"`
}

// Model holds per-model capability data. Capability booleans are tri-state:
// nil means the source does not know, which is distinct from false.
type Model struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Family           string      `json:"family,omitempty"`
	Attachment       *bool       `json:"attachment,omitempty"`
	Reasoning        *bool       `json:"reasoning,omitempty"`
	ToolCall         *bool       `json:"tool_call,omitempty"`
	StructuredOutput *bool       `json:"structured_output,omitempty"`
	Temperature      *bool       `json:"temperature,omitempty"`
	Knowledge        string      `json:"knowledge,omitempty"`
	ReleaseDate      string      `json:"release_date,omitempty"`
	LastUpdated      string      `json:"last_updated,omitempty"`
	OpenWeights      *bool       `json:"open_weights,omitempty"`
	Status           string      `json:"status,omitempty"`
	Limit            *Limit      `json:"limit,omitempty"`
	Cost             *Cost       `json:"cost,omitempty"`
	Modalities       *Modalities `json:"modalities,omitempty"`
}

// Limit holds token limits.
type Limit struct {
	Context *int64 `json:"context,omitempty"`
	Input   *int64 `json:"input,omitempty"`
	Output  *int64 `json:"output,omitempty"`
}

// Cost holds pricing per million tokens.
type Cost struct {
	Input      *float64 `json:"input,omitempty"`
	Output     *float64 `json:"output,omitempty"`
	CacheRead  *float64 `json:"cache_read,omitempty"`
	CacheWrite *float64 `json:"cache_write,omitempty"`
}

// Modalities lists supported input/output modalities.
type Modalities struct {
	Input  []string `json:"input,omitempty"`
	Output []string `json:"output,omitempty"`
}
