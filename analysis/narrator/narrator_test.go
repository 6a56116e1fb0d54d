package narrator

import (
	"strings"
	"testing"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/semantic"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNeverEmpty(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	sentences := n.Generate(Input{})

	require.Len(t, sentences, 1)
	assert.Contains(t, sentences[0], "No strong patterns")
}

func TestGenerateOrdersByEvidence(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	in := Input{
		Visualizations: []models.Visualization{{
			Insights: []models.DataInsight{
				{
					Description: "weak signal here",
					Confidence:  0.5,
					Impact:      models.ImpactLow,
				},
				{
					Description: "revenue and cost show a strong positive correlation",
					Confidence:  0.9,
					Impact:      models.ImpactHigh,
				},
			},
		}},
	}
	sentences := n.Generate(in)

	require.GreaterOrEqual(t, len(sentences), 2)
	assert.Contains(t, sentences[0], "strong positive correlation")
}

func TestGenerateCap(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.MaxInsightSentences = 2

	insights := make([]models.DataInsight, 10)
	for i := range insights {
		insights[i] = models.DataInsight{
			Description: strings.Repeat("x", i+1),
			Confidence:  0.5,
			Impact:      models.ImpactLow,
		}
	}
	n := NewNarrator(cfg)
	sentences := n.Generate(Input{
		Visualizations: []models.Visualization{{Insights: insights}},
	})
	assert.Len(t, sentences, 2)
}

func TestGenerateDeduplicates(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	in := Input{
		Visualizations: []models.Visualization{{
			Insights: []models.DataInsight{
				{Description: "same finding", Confidence: 0.8, Impact: models.ImpactHigh},
				{Description: "same finding", Confidence: 0.8, Impact: models.ImpactHigh},
			},
		}},
	}
	sentences := n.Generate(in)
	assert.Len(t, sentences, 1)
}

func TestQuestionPromotion(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	in := Input{
		Visualizations: []models.Visualization{{
			Insights: []models.DataInsight{
				{Description: "population density varies by region", Confidence: 0.9, Impact: models.ImpactHigh},
				{Description: "inflation accelerated in the second half", Confidence: 0.5, Impact: models.ImpactLow},
			},
		}},
		Question: "what happened to inflation",
	}
	sentences := n.Generate(in)

	require.NotEmpty(t, sentences)
	assert.Contains(t, sentences[0], "inflation")
}

func TestQualityFraming(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())

	excellent := n.Generate(Input{Semantics: &semantic.Analysis{CompletenessScore: 100}})
	assert.Contains(t, strings.Join(excellent, " "), "excellent")

	concerning := n.Generate(Input{Semantics: &semantic.Analysis{CompletenessScore: 40}})
	assert.Contains(t, strings.Join(concerning, " "), "concerning")
}

func TestLogNormalFraming(t *testing.T) {
	cfg := analysis.DefaultConfig()
	// Mean 4.83 vs median 2: well past the default lift of 1.1.
	skewed := "v\n1\n1\n2\n2\n3\n20\n"
	table, err := tabular.NewParser(cfg).Parse(skewed, tabular.FormatCSV)
	require.NoError(t, err)

	joined := strings.Join(NewNarrator(cfg).Generate(Input{Table: table}), " ")
	assert.Contains(t, joined, "log-normal")

	// A symmetric column keeps a tight log sigma but no mean lift.
	symmetric := "v\n10\n11\n12\n13\n14\n"
	table, err = tabular.NewParser(cfg).Parse(symmetric, tabular.FormatCSV)
	require.NoError(t, err)

	joined = strings.Join(NewNarrator(cfg).Generate(Input{Table: table}), " ")
	assert.NotContains(t, joined, "log-normal")

	// Raising the configured lift suppresses the framing.
	strict := cfg
	strict.LogNormalMeanLift = 3.0
	table, err = tabular.NewParser(strict).Parse(skewed, tabular.FormatCSV)
	require.NoError(t, err)

	joined = strings.Join(NewNarrator(strict).Generate(Input{Table: table}), " ")
	assert.NotContains(t, joined, "log-normal")
}

func TestDomainFraming(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	sentences := n.Generate(Input{Category: "Economic Indicators", Title: "gdp-by-country"})

	joined := strings.Join(sentences, " ")
	assert.Contains(t, joined, "inflation-adjusted")
}

func TestColumnFramings(t *testing.T) {
	cfg := analysis.DefaultConfig()
	raw := "v\n0.001\n1\n50\n2000\n"
	table, err := tabular.NewParser(cfg).Parse(raw, tabular.FormatCSV)
	require.NoError(t, err)

	sentences := NewNarrator(cfg).Generate(Input{Table: table})
	joined := strings.Join(sentences, " ")
	assert.Contains(t, joined, "orders of magnitude")
}

func TestSentencesEndWithPunctuation(t *testing.T) {
	n := NewNarrator(analysis.DefaultConfig())
	sentences := n.Generate(Input{
		Visualizations: []models.Visualization{{
			Insights: []models.DataInsight{
				{Description: "sales rose steadily", Confidence: 0.9, Impact: models.ImpactHigh},
			},
		}},
	})
	for _, s := range sentences {
		assert.True(t, strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?"), s)
	}
}
