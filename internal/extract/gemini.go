package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	"reportpress/internal/config"
)

// FieldExtractor asks a Gemini model to pull named fields out of scraped
// document text. It shares no state with the document compositor; failures
// here are reported with the upstream message and never enter the
// rendering error taxonomy.
type FieldExtractor struct {
	client *genai.Client
	model  string
}

// NewFieldExtractor connects the Gemini client.
func NewFieldExtractor(ctx context.Context, cfg config.ExtractConfig) (*FieldExtractor, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &FieldExtractor{client: client, model: cfg.Model}, nil
}

// defaultBillFields maps field keys to the document labels the model
// should look for; callers may override individual labels.
var defaultBillFields = map[string]string{
	"consignee_name":     "Name of Consigner of Goods (Exporter)",
	"consignee_importer": "Name of Consignee of Goods (Importer)",
	"applicant_survey":   "Applicant of Survey",
	"underwriter_name":   "Name of Underwriter / Insurer",
	"cha_name":           "Name of CHA / Clearing Agent / Forwarder",
	"certificate_no":     "Certificate No (if Applicable)",
	"endorsement_no":     "Endorsement No (if Any)",
	"invoice_no":         "Invoice Details Invoice No",
	"invoice_date":       "Invoice Details Invoice Date",
	"invoice_value":      "Invoice Details Invoice Value",
	"invoice_pcs":        "Invoice Details No of PKG",
	"invoice_gross_wt":   "Invoice Details Gross WT",
	"invoice_net_wt":     "Invoice Details Net WT",
}

// ExtractBillFields extracts bill-of-entry fields, honoring caller label
// overrides for known keys.
func (e *FieldExtractor) ExtractBillFields(ctx context.Context, docText string, customLabels map[string]string) (map[string]any, error) {
	fields := make(map[string]string, len(defaultBillFields))
	for k, v := range defaultBillFields {
		fields[k] = v
	}
	for key, label := range customLabels {
		if _, known := fields[key]; known && strings.TrimSpace(label) != "" {
			fields[key] = label
		}
	}
	return e.generate(ctx, billPrompt(fields), docText)
}

// ExtractSelective extracts only the requested fields, dropping anything
// extra the model volunteers.
func (e *FieldExtractor) ExtractSelective(ctx context.Context, docText string, fieldsToExtract []string, documentType string) (map[string]any, error) {
	data, err := e.generate(ctx, selectivePrompt(fieldsToExtract, documentType), docText)
	if err != nil {
		return nil, err
	}
	filtered := make(map[string]any, len(fieldsToExtract))
	for _, field := range fieldsToExtract {
		if v, ok := data[field]; ok && v != nil {
			filtered[field] = v
		}
	}
	return filtered, nil
}

func (e *FieldExtractor) generate(ctx context.Context, prompt, docText string) (map[string]any, error) {
	resp, err := e.client.Models.GenerateContent(ctx, e.model,
		genai.Text(prompt+"\n\nDocument Content:\n"+docText),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.1),
			TopP:            genai.Ptr[float32](0.8),
			MaxOutputTokens: 4096,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}
	return parseExtractionJSON(resp.Text())
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseExtractionJSON pulls the JSON object out of a model response,
// tolerating markdown code fences around it.
func parseExtractionJSON(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return nil, fmt.Errorf("no valid JSON found in AI response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(match), &data); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}
	return data, nil
}

func billPrompt(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var descriptions strings.Builder
	for i, key := range keys {
		if i > 0 {
			descriptions.WriteString(",\n")
		}
		fmt.Fprintf(&descriptions, "  %q: \"Extract value for '%s'\"", key, fields[key])
	}

	return fmt.Sprintf(`You are a specialized document extraction AI for Bill of Entry documents.

Extract the following information and return ONLY a valid JSON object:

{
%s
}

CRITICAL INSTRUCTIONS:
1. Return ONLY the JSON object, no explanations
2. If a field is not found, use null
3. For numeric values, extract only numbers (remove currency symbols)
4. For dates, use DD-MM-YYYY format
5. Look for the EXACT field labels provided above in the document
6. Match field labels case-insensitively and with partial matching
7. Look for variations and common abbreviations of the field names
8. For company names, include the full legal entity name
9. For invoice details, look in tables, forms, or structured sections

Search thoroughly through the entire document for each field.`, descriptions.String())
}

func selectivePrompt(fieldsToExtract []string, documentType string) string {
	var descriptions strings.Builder
	for i, field := range fieldsToExtract {
		if i > 0 {
			descriptions.WriteString(",\n")
		}
		fmt.Fprintf(&descriptions, "  %q: \"Extract the value for '%s'\"", field, readableLabel(field))
	}

	docType := documentType
	if docType == "" {
		docType = "business documents"
	}

	return fmt.Sprintf(`You are a specialized document extraction AI for %s.

Extract ONLY the following specific fields and return a valid JSON object:

{
%s
}

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON object, no explanations or markdown
2. Extract ONLY the fields listed above - do not add any other fields
3. If a field is not found in the document, use null as the value
4. For numeric values, extract only numbers (remove currency symbols)
5. For dates, preserve the format found in the document
6. Look for the field labels case-insensitively and with flexible matching
7. Search for variations, abbreviations, and common alternative names
8. For amounts, include only the number (e.g., "50000" not "Rs. 50,000")
9. For names, include the full name as it appears
10. For policy or certificate numbers, preserve the exact format
11. Search thoroughly through the ENTIRE document for each field
12. Look in tables, forms, headers, and text sections`, docType, descriptions.String())
}

// readableLabel turns a snake_case field key into a title-cased label,
// e.g. "policy_number" -> "Policy Number".
func readableLabel(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
