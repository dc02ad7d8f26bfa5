package rag

import (
	"fmt"
	"strings"

	"github.com/pageza/hansik/backend/internal/model"
)

const promptTemplate = `
You are a friendly and helpful Korean cooking assistant.
Your goal is to answer questions about Korean recipes based ONLY on the context provided.
If the information is not in the context, politely state that you can't find the answer in the provided recipes.
Do not make up information. Be concise and clear in your answer.

CONTEXT:
%s

QUESTION:
%s

ANSWER:
`

// FormatContext joins document contents, separated by blank lines
func FormatContext(docs []model.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt fills the instruction template with context and question
func BuildPrompt(docs []model.Document, question string) string {
	return fmt.Sprintf(promptTemplate, FormatContext(docs), question)
}
