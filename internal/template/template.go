// internal/template/template.go
package template

import "strings"

// Placeholders recognized in campaign templates.
const (
	PlaceholderCompany    = "company"
	PlaceholderWhy        = "why"
	PlaceholderProduct    = "product"
	PlaceholderOurCompany = "our_company"
)

// Render substitutes every occurrence of each {{name}} in the template with
// its mapped value. Placeholders with no supplied value are left untouched
// so the author can see what is still missing. A repeated placeholder
// receives the same value in every position.
func Render(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}

// Has reports whether the template contains the given placeholder.
func Has(template, name string) bool {
	return strings.Contains(template, "{{"+name+"}}")
}
