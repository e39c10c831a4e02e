package prompts

import (
	"fmt"
	"strings"
)

const lineFormat = `Format each entry as 'Ingredient: <name>: <ecode>: <description>: <status>' on a new line, with no additional details, explanations, disclaimers, or markdown.`

const (
	meatTemplate = `Provide the ingredient for the product '%[1]s' sold in %[2]s, treating it as a single-ingredient meat product. ` +
		`Return the ingredient as 'Ingredient: %[1]s: N/A: %[1]s: <Halal|Haram|Mushbooh>' on a new line, with no additional details, explanations, disclaimers, or markdown. ` +
		`If no data is found, return 'No ingredients available'.`

	brandedTemplate = `Provide a list of all ingredients for the product '%[1]s' (%[3]s) sold in %[2]s with their E-code (if applicable), description, and Halal, Haram, or Mushbooh status. ` +
		lineFormat + ` If no ingredients are found, return 'No ingredients available'.`

	genericTemplate = `Provide a list of all ingredients for the product '%[1]s' sold in %[2]s with their E-code (if applicable), description, and Halal, Haram, or Mushbooh status. ` +
		`For single-ingredient products like meat, use the product name as the ingredient name. ` +
		lineFormat + ` If no ingredients are found, return 'No ingredients available'.`

	barcodeTemplate = `Provide a list of all ingredients for the product with barcode '%[1]s' sold in %[2]s with their E-code (if applicable), description, and Halal, Haram, or Mushbooh status. ` +
		`For single-ingredient products like meat, use the product name as the ingredient name. ` +
		lineFormat + ` If no ingredients are found, return 'No ingredients available'.`

	listTemplate = `Provide a list of the following ingredients: %[1]s. ` +
		`For each ingredient, include its E-code (if applicable), description, and Halal, Haram, or Mushbooh status. ` +
		lineFormat + ` If no data is available, return 'No data available'.`
)

// Subject renders the query for a product identified by name or barcode.
// The name wins when both are present.
func Subject(name, barcode, country string) (Kind, string) {
	kind := Detect(name)

	switch kind {
	case KindBarcode:
		return kind, fmt.Sprintf(barcodeTemplate, strings.TrimSpace(barcode), country)
	case KindMeat:
		return kind, fmt.Sprintf(meatTemplate, name, country)
	case KindBranded:
		return kind, fmt.Sprintf(brandedTemplate, name, country, brandDescriptor(strings.ToLower(name)))
	default:
		return kind, fmt.Sprintf(genericTemplate, name, country)
	}
}

// JoinNames is the descriptor a batch of ingredient names is queried and
// parsed under.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

// List renders the batched query for a list of ingredient names. A country,
// when given, scopes the request.
func List(names []string, country string) string {
	q := fmt.Sprintf(listTemplate, JoinNames(names))
	if c := strings.TrimSpace(country); c != "" {
		q += fmt.Sprintf(" Assess each status as it applies in %s.", c)
	}
	return q
}
