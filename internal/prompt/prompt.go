// Package prompt builds the retrieval-augmented prompt sent to the model.
package prompt

import (
	"strings"
	"text/template"
)

// ContextSeparator joins retrieved documents inside the prompt.
const ContextSeparator = "\n\n"

const ragTemplate = `Based on the following context information, please answer the question. If the context doesn't contain relevant information, say so clearly.
Context:
{{.Context}}
Question: {{.Query}}
Answer:`

var tmpl = template.Must(template.New("rag").Parse(ragTemplate))

type data struct {
	Context string
	Query   string
}

// Compose embeds contexts, in order, and the verbatim query into the RAG
// template. The result is not length-capped.
func Compose(query string, contexts []string) string {
	var sb strings.Builder
	// Executing a parsed template into a strings.Builder with string fields cannot fail.
	_ = tmpl.Execute(&sb, data{Context: strings.Join(contexts, ContextSeparator), Query: query})
	return sb.String()
}
