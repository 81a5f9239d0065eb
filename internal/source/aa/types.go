package aa

// Envelope wraps Artificial Analysis API responses.
type Envelope struct {
	Status string  `json:"status"`
	Data   []Model `json:"data"`
}

// Model is one benchmarked model from the Artificial Analysis API.
type Model struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	ShortName   string       `json:"short_name,omitempty"`
	ReleaseDate string       `json:"release_date,omitempty"`
	Creator     Creator      `json:"creator"`
	Evaluations *Evaluations `json:"evaluations,omitempty"`
	Pricing     *Pricing     `json:"pricing,omitempty"`
	Speed       *Speed       `json:"speed,omitempty"`
}

// Creator identifies the vendor behind a model.
type Creator struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Evaluations holds benchmark scores. All optional; the API omits scores a
// model was not evaluated on.
type Evaluations struct {
	IntelligenceIndex *float64 `json:"artificialAnalysisIntelligenceIndex,omitempty"`
	CodingIndex       *float64 `json:"artificialAnalysisCodingIndex,omitempty"`
	MathIndex         *float64 `json:"artificialAnalysisMathIndex,omitempty"`
	MMLUPro           *float64 `json:"mmluPro,omitempty"`
	GPQA              *float64 `json:"gpqa,omitempty"`
	HLE               *float64 `json:"hle,omitempty"`
	LiveCodeBench     *float64 `json:"livecodebench,omitempty"`
	SciCode           *float64 `json:"scicode,omitempty"`
	Math500           *float64 `json:"math500,omitempty"`
	AIME              *float64 `json:"aime,omitempty"`
}

// Pricing holds prices in USD per million tokens.
type Pricing struct {
	InputTokens   *float64 `json:"price1mInputTokens,omitempty"`
	OutputTokens  *float64 `json:"price1mOutputTokens,omitempty"`
	BlendedTokens *float64 `json:"price1mBlended3To1,omitempty"`
}

// Speed holds throughput and latency measurements.
type Speed struct {
	TokensPerSecond  *float64 `json:"medianOutputTokensPerSecond,omitempty"`
	TimeToFirstToken *float64 `json:"medianTimeToFirstTokenSeconds,omitempty"`
}

// DisplayName prefers the short name when the API provides one.
func (m *Model) DisplayName() string {
	if m.ShortName != "" {
		return m.ShortName
	}
	return m.Name
}

// Intelligence returns the headline intelligence index, if evaluated.
func (m *Model) Intelligence() *float64 {
	if m.Evaluations == nil {
		return nil
	}
	return m.Evaluations.IntelligenceIndex
}

// InputPrice returns the input token price, if published.
func (m *Model) InputPrice() *float64 {
	if m.Pricing == nil {
		return nil
	}
	return m.Pricing.InputTokens
}

// OutputPrice returns the output token price, if published.
func (m *Model) OutputPrice() *float64 {
	if m.Pricing == nil {
		return nil
	}
	return m.Pricing.OutputTokens
}

// TPS returns median output tokens per second, if measured.
func (m *Model) TPS() *float64 {
	if m.Speed == nil {
		return nil
	}
	return m.Speed.TokensPerSecond
}
