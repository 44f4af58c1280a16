package nlp

import (
	"testing"

	"mosdacbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		text       string
		intent     string
		template   string
		confidence float64
	}{
		{"How do I download INSAT-3D imager data?", domain.IntentDataDownload, domain.TemplateProcedure, 0.89},
		{"How can I ACCESS archived scenes", domain.IntentDataDownload, domain.TemplateProcedure, 0.89},
		{"What region is covered?", domain.IntentGeospatialQuery, domain.TemplateSpatial, 0.87},
		{"the page is not working", domain.IntentTechnicalSupport, domain.TemplateSupport, 0.85},
		{"where is the user manual", domain.IntentDocumentationRequest, domain.TemplateDocumentation, 0.84},
		{"is there an API", domain.IntentAPIUsage, domain.TemplateAPI, 0.83},
		{"reset my password", domain.IntentAccountManagement, domain.TemplateAccount, 0.82},
		{"radiometric calibration steps", domain.IntentDataProcessing, domain.TemplateProcessing, 0.81},
		{"Which satellite carries OCM?", domain.IntentProductInquiry, domain.TemplateProduct, 0.92},
		{"tell me about the weather", domain.IntentGeneralInquiry, domain.TemplateGeneric, 0.5},
		{"", domain.IntentGeneralInquiry, domain.TemplateGeneric, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.template, got.TemplateID)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.NotNil(t, got.Entities)
			assert.Empty(t, got.Entities)
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := DefaultClassifier()

	// download is evaluated before the satellite/data rule
	got := c.Classify("download satellite data")
	assert.Equal(t, domain.IntentDataDownload, got.Intent)
	assert.Equal(t, "download", c.Match("download satellite data"))
}

func TestClassifyDeterministic(t *testing.T) {
	c := DefaultClassifier()
	text := "Oceansat-2 ocean colour data for the Arabian Sea region"
	assert.Equal(t, c.Classify(text), c.Classify(text))
}

func TestMatchFallback(t *testing.T) {
	assert.Equal(t, "", DefaultClassifier().Match("hello there"))
}

func TestCustomRuleSet(t *testing.T) {
	rs := RuleSet{
		Rules: []domain.Rule{
			{Name: "first", Keywords: []string{"  Alpha "}, Intent: "a", Confidence: 0.7, Template: "generic"},
			{Name: "second", Keywords: []string{"alpha", "beta"}, Intent: "b", Confidence: 0.6, Template: "generic"},
		},
		Fallback: domain.Rule{Intent: "none", Confidence: 0.1, Template: "generic"},
	}
	c, err := NewClassifier(rs)
	require.NoError(t, err)

	assert.Equal(t, "a", c.Classify("ALPHA beta").Intent)
	assert.Equal(t, "b", c.Classify("beta").Intent)
	assert.Equal(t, "none", c.Classify("gamma").Intent)
	assert.Equal(t, []string{"alpha"}, c.Rules()[0].Keywords)
	assert.Equal(t, "none", c.Fallback().Intent)
}
