package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"campusevents/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

const eventDateLayout = "Monday, 02 January 2006 15:04 MST"

var templateFuncs = map[string]any{
	"eventDate": func(t time.Time) string { return t.Format(eventDateLayout) },
}

// templateRenderer holds every embedded template, parsed once. A message named N is made of
// N_subject.txt, N.txt and N.html.
type templateRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded templates. They ship with the binary, so a parse
// failure is a programming error and panics.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html: htmltemplate.Must(htmltemplate.New("").Funcs(templateFuncs).Option("missingkey=error").ParseFS(templateFS, "templates/*.html")),
		text: texttemplate.Must(texttemplate.New("").Funcs(templateFuncs).Option("missingkey=error").ParseFS(templateFS, "templates/*.txt")),
	}
}

func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	if r.html.Lookup(templateName+".html") == nil {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	var buf bytes.Buffer
	if err := r.text.ExecuteTemplate(&buf, templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", templateName, err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.html.ExecuteTemplate(&buf, templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", templateName, err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := r.text.ExecuteTemplate(&buf, templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", templateName, err)
	}
	return subject, htmlBody, buf.String(), nil
}
