// Package insight generates narrative market commentary from the weekly
// analysis results using a hosted language model.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces narrative insights for the analysis report
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request contains the input for insight generation.
type Request struct {
	// Report is the aggregated weekly analysis
	Report *analysis.Report

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the generated insight text.
type Response struct {
	// Insights is the narrative text, returned verbatim
	Insights string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "anthropic", "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "anthropic",
		Model:     "claude-3-sonnet-20240229",
		Timeout:   120,
		MaxTokens: 4000,
	}
}

// BuildPrompt constructs the default analyst prompt around the aggregated
// data summary.
func BuildPrompt(report *analysis.Report) string {
	summary, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		summary = []byte("{}")
	}

	return fmt.Sprintf(`As an expert energy market analyst, please analyze the following weekly energy market data and provide strategic insights:

Data Summary:
%s

Please provide a comprehensive analysis covering:

1. **Market Overview**: Key trends and patterns in power markets
2. **Regional Analysis**: Regional price variations and supply-demand dynamics
3. **Weather Impact**: How weather conditions affected energy demand and pricing
4. **Economic Factors**: Impact of commodity prices and economic indicators
5. **Risk Assessment**: Potential market risks and volatility factors
6. **Strategic Recommendations**: Actionable insights for energy market participants
7. **Outlook**: Short-term forecast and key factors to monitor

Please structure your response in clear sections with specific data points and actionable recommendations.
Focus on practical insights that would be valuable for energy market participants.`, summary)
}

// Fallback returns the insight text used when generation fails, embedding
// the error so the report records why.
func Fallback(err error) string {
	return fmt.Sprintf("AI analysis unavailable due to technical issues. Error: %v", err)
}
