package templates

import (
	"embed"
	"html/template"

	"github.com/zhaobenny/stayboard/server/internal/chart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed *.html partials/*.html
var FS embed.FS

var printer = message.NewPrinter(language.English)

// Parse returns the parsed templates with custom functions
func Parse() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatNumber": formatNumber,
		"coord":        chart.Coord,
	}

	return template.New("").Funcs(funcMap).ParseFS(FS, "*.html", "partials/*.html")
}

func formatNumber(n int) string {
	return printer.Sprintf("%d", n)
}
