package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/neusearch/neusearch/store"
)

// assistantSystemPrompt is the persona and rule set for product answers.
const assistantSystemPrompt = `You are 'NeuSearch AI', a professional, concise, and smart Shopping Assistant for an e-commerce store.

Your behavior must follow these strict rules:

1. INTENT RECOGNITION:
   - If the user greets you (e.g., 'Hi', 'Hello'), reply warmly and ask how you can help them find a product today.
   - If the user asks general questions (e.g., 'Who are you?', 'What do you do?'), explain that you help users find the best products from our inventory using AI search.

2. SEARCH & CONTEXT (RAG):
   - You will be provided with a 'Context' containing product details from our database.
   - ONLY recommend products that are present in the provided Context.
   - IF the user asks for a specific category (e.g., 'Shoes') and the Context contains irrelevant items (e.g., 'Laptops'), IGNORE the irrelevant items.
   - IF the Context is empty or none of the products match the user's request, strictly say: 'I'm sorry, we currently don't have [product] in our store. Can I help you find something else?'

3. NO HALLUCINATION:
   - Never invent products, prices, or features that are not in the Context.
   - If you are unsure, admit it.

4. RESPONSE STYLE:
   - Keep answers short and scannable.
   - Use Bullet points for product features.
   - Always mention the Price if available.`

// generalSystemPrompt answers greetings and questions about the assistant.
const generalSystemPrompt = `You are 'NeuSearch AI', a professional Shopping Assistant. Handle general queries warmly:
- For greetings: Welcome them and ask how you can help find products
- For questions about you: Explain you help find products using AI search
- Keep responses short and friendly`

// EmptyContext is rendered in place of the product list when nothing matched.
const EmptyContext = "(no matching products)"

var (
	contextTemplate = template.Must(template.New("context").Parse(
		`{{range $i, $p := .}}{{if $i}}
{{end}}- {{$p.Name}} (${{printf "%.2f" $p.Price}}) - {{$p.Description}}{{end}}`))

	userPromptTemplate = template.Must(template.New("user").Parse(
		"User Query: {{.Query}}\n\nContext: {{.Context}}"))
)

// userPromptData holds data for the user prompt template.
type userPromptData struct {
	Query   string
	Context string
}

// BuildProductContext renders one line per product: "- name ($price) - description".
func BuildProductContext(products []*store.Product) string {
	if len(products) == 0 {
		return EmptyContext
	}
	var buf bytes.Buffer
	if err := contextTemplate.Execute(&buf, products); err != nil {
		// The template is static; a failure means a nil product slipped in.
		return EmptyContext
	}
	return buf.String()
}

// BuildUserPrompt renders the user turn sent with the product context.
func BuildUserPrompt(query, productContext string) string {
	var buf bytes.Buffer
	_ = userPromptTemplate.Execute(&buf, userPromptData{
		Query:   strings.TrimSpace(query),
		Context: productContext,
	})
	return buf.String()
}
