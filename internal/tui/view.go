package tui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/service"
)

const (
	sidebarWidth   = 34
	contextPreview = 200
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("7"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(sidebarWidth - 2)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
)

const learnedText = `What you've learned:
1. Vector databases store and search documents using semantic similarity
2. Retrieval finds relevant context based on user queries
3. Augmentation enhances LLM prompts with retrieved context
4. Generation gets more accurate, contextual responses

Key RAG benefits:
- Reduces hallucinations by grounding responses in real data
- Enables domain-specific knowledge without retraining
- Keeps information current and verifiable`

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("RAG Demo: Vector DB + LLM") + "  " +
		subtleStyle.Render("Learn how Retrieval-Augmented Generation works!")
	parts := []string{header}
	if m.banner != "" {
		parts = append(parts, subtleStyle.Render(m.banner))
	}
	parts = append(parts, m.renderTabs())

	main := lipgloss.JoinVertical(lipgloss.Left, m.renderForm(), resultBoxStyle.Render(m.viewport.View()))
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderSidebar()))
	parts = append(parts, subtleStyle.Render(m.helpLine()), m.renderStatus())
	return strings.Join(parts, "\n")
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("F%d %s", int(t)+1, t)
		if t == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderForm() string {
	var b strings.Builder
	switch m.active {
	case tabAdd:
		b.WriteString(sectionStyle.Render("Step 1: Build Your Knowledge Base") + "\n")
		b.WriteString("Quick add sample documents:\n")
		for i, s := range m.samples {
			fmt.Fprintf(&b, "  alt+%d  Add: %s\n", i+1, s.Title)
		}
		b.WriteString("Add custom document (ctrl+s to save):\n")
		b.WriteString(m.title.View() + "\n")
		b.WriteString(m.content.View())
	case tabSearch:
		b.WriteString(sectionStyle.Render("Step 2: Search the Vector Database") + "\n")
		b.WriteString(m.search.View() + "\n")
		fmt.Fprintf(&b, "Number of results: %d (1-%d, ctrl+up/ctrl+down)", m.k, m.maxK)
	case tabAsk:
		b.WriteString(sectionStyle.Render("Step 3: RAG in Action") + "\n")
		b.WriteString(m.ask.View() + "\n")
		b.WriteString("enter: answer with RAG   alt+enter: answer without RAG")
	case tabCompare:
		b.WriteString(sectionStyle.Render("Step 4: Compare RAG vs Direct LLM") + "\n")
		b.WriteString(m.compare.View())
	}
	return b.String()
}

func (m Model) renderSidebar() string {
	body := sectionStyle.Render("Configuration") + "\n" +
		"User ID\n" + m.userID.View() + "\n\n" +
		fmt.Sprintf("Knowledge Base: %d documents", m.count)
	return sidebarStyle.Render(body)
}

func (m Model) helpLine() string {
	return "F1-F4/ctrl+←→ tabs • tab focus • pgup/pgdn scroll • ctrl+c quit"
}

func (m Model) renderStatus() string {
	if m.busy {
		return m.spinner.View() + " " + busyText(m.active)
	}
	if m.statusFailed {
		return errorStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func busyText(t tab) string {
	switch t {
	case tabAdd:
		return "Adding document..."
	case tabSearch:
		return "Searching vector database..."
	default:
		return "Getting AI response..."
	}
}

// resize fits the viewport and text area into the space left by the form.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	mainWidth := max(20, m.width-sidebarWidth)
	m.content.SetWidth(max(10, mainWidth-2))
	for _, ti := range []*textinput.Model{&m.title, &m.search, &m.ask, &m.compare} {
		ti.Width = max(10, mainWidth-4)
	}
	m.userID.Width = sidebarWidth - 8

	fw, fh := resultBoxStyle.GetFrameSize()
	reserved := 1 + 1 + 2 + lipgloss.Height(m.renderForm()) + fh
	if m.banner != "" {
		reserved++
	}
	m.viewport.Width = max(10, mainWidth-fw)
	m.viewport.Height = max(3, m.height-reserved)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	out := m.outputs[m.active]
	if m.viewport.Width > 0 {
		out = lipgloss.NewStyle().Width(m.viewport.Width).Render(out)
	}
	m.viewport.SetContent(out)
}

func addedText(title, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Added '%s' to knowledge base! ID: %s...", title, short)
}

func (m Model) renderSearch(results []domain.SearchResult, err error) string {
	if err != nil {
		return errorStyle.Render(sentence(err))
	}
	if len(results) == 0 {
		return warnStyle.Render("No documents found. Add some documents first!")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Search Results:") + "\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\nResult %d - Similarity: %.3f\n", i+1, r.Similarity())
		fmt.Fprintf(&b, "Title: %s\n", r.Document.Metadata.Title())
		fmt.Fprintf(&b, "Content: %s\n", highlightBestSentence(r.Document.Text, m.lastQ))
		fmt.Fprintf(&b, "Distance: %.3f\n", r.Distance)
	}
	return b.String()
}

func renderRAG(a service.RAGAnswer, err error) string {
	if errors.Is(err, domain.ErrNoContext) {
		return warnStyle.Render("No relevant documents found in the knowledge base!")
	}
	if err != nil {
		return errorStyle.Render(sentence(err))
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Retrieved Context:") + "\n")
	for i, c := range a.Contexts {
		fmt.Fprintf(&b, "\nDocument %d\n%s\n", i+1, c.Document.Text)
	}
	b.WriteString("\n" + sectionStyle.Render("RAG Response:") + "\n")
	b.WriteString(renderResult(a.Answer))
	return b.String()
}

func renderDirect(res answer.Result, err error) string {
	if err != nil {
		return errorStyle.Render(sentence(err))
	}
	return sectionStyle.Render("Direct LLM Response:") + "\n" + renderResult(res)
}

func (m Model) renderCompare(cmp service.Comparison, err error) string {
	if err != nil {
		return errorStyle.Render(sentence(err))
	}
	col := max(20, m.viewport.Width/2-1)
	var left strings.Builder
	left.WriteString(sectionStyle.Render("RAG Response") + "\n")
	switch {
	case errors.Is(cmp.RAGErr, domain.ErrNoContext):
		left.WriteString(warnStyle.Render("No context found for RAG"))
	case cmp.RAGErr != nil:
		left.WriteString(errorStyle.Render(sentence(cmp.RAGErr)))
	default:
		left.WriteString("Context Used:\n")
		for i, c := range cmp.RAG.Contexts {
			fmt.Fprintf(&left, "Context %d: %s\n", i+1, truncateContext(c.Document.Text))
		}
		left.WriteString("\nResponse:\n" + renderResult(cmp.RAG.Answer))
	}
	right := sectionStyle.Render("Direct LLM Response") + "\nResponse:\n" + renderResult(cmp.Direct)

	box := lipgloss.NewStyle().Width(col).PaddingRight(1)
	return lipgloss.JoinHorizontal(lipgloss.Top, box.Render(left.String()), box.Render(right))
}

// renderResult shows failures in the error style so they cannot be
// mistaken for model output.
func renderResult(res answer.Result) string {
	if res.OK() {
		return res.String()
	}
	return errorStyle.Render(res.String())
}

// truncateContext keeps the first 200 characters and always appends "...".
func truncateContext(s string) string {
	if utf8.RuneCountInString(s) > contextPreview {
		s = string([]rune(s)[:contextPreview])
	}
	return s + "..."
}

// sentence renders err with an upper-case first letter.
func sentence(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// highlightBestSentence highlights the sentence sharing the most words with
// query. Everything else, whitespace included, is returned as stored.
func highlightBestSentence(text, query string) string {
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 || strings.TrimSpace(text) == "" {
		return text
	}
	spans := sentenceRe.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return text
	}
	best, bestScore := 0, -1
	for i, sp := range spans {
		if score := tokenOverlapScore(qTokens, text[sp[0]:sp[1]]); score > bestScore {
			best, bestScore = i, score
		}
	}
	start, end := spans[best][0], spans[best][1]
	return text[:start] + highlightLines(text[start:end]) + text[end:]
}

// highlightLines styles each line of s separately, leaving surrounding
// spaces and line breaks untouched.
func highlightLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		core := strings.TrimSpace(line)
		if core == "" {
			continue
		}
		lead := strings.Index(line, core)
		lines[i] = line[:lead] + highlightStyle.Render(core) + line[lead+len(core):]
	}
	return strings.Join(lines, "\n")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
