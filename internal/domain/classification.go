package domain

// Intent labels produced by the classifier
const (
	IntentProductInquiry       = "product_inquiry"
	IntentDataDownload         = "data_download"
	IntentGeospatialQuery      = "geospatial_query"
	IntentTechnicalSupport     = "technical_support"
	IntentDocumentationRequest = "documentation_request"
	IntentAPIUsage             = "api_usage"
	IntentAccountManagement    = "account_management"
	IntentDataProcessing       = "data_processing"
	IntentGeneralInquiry       = "general_inquiry"
)

// Response template ids
const (
	TemplateProduct       = "product"
	TemplateProcedure     = "procedure"
	TemplateSpatial       = "spatial"
	TemplateSupport       = "support"
	TemplateDocumentation = "documentation"
	TemplateAPI           = "api"
	TemplateAccount       = "account"
	TemplateProcessing    = "processing"
	TemplateGeneric       = "generic"
)

// Rule maps a trigger keyword set to an intent. A rule matches when the
// normalized query contains any of its keywords.
type Rule struct {
	Name       string   `json:"name" yaml:"name"`
	Keywords   []string `json:"keywords" yaml:"keywords"`
	Intent     string   `json:"intent" yaml:"intent"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Template   string   `json:"template" yaml:"template"`
}

// ClassificationResult is the classifier output enriched with extracted entities
type ClassificationResult struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   []string `json:"entities"`
	TemplateID string   `json:"template_id"`
}

// Response is the composed answer for a classified query
type Response struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}
