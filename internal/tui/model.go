package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/service"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	Samples() []service.Sample
	AddSample(ctx context.Context, index int) (string, error)
	AddDocument(ctx context.Context, title, text, source string) (string, error)
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	AnswerWithRAG(ctx context.Context, question, userID string) (service.RAGAnswer, error)
	AnswerDirect(ctx context.Context, question, userID string) (answer.Result, error)
	Compare(ctx context.Context, question, userID string) (service.Comparison, error)
	Count(ctx context.Context) (int, error)
}

type tab int

const (
	tabAdd tab = iota
	tabSearch
	tabAsk
	tabCompare
	tabCount
)

func (t tab) String() string {
	return [...]string{"Add Knowledge", "Search Vector DB", "Ask Questions", "Compare Responses"}[t]
}

type field int

const (
	fieldTitle field = iota
	fieldContent
	fieldSearch
	fieldAsk
	fieldCompare
	fieldUser
)

var tabFields = map[tab][]field{
	tabAdd:     {fieldTitle, fieldContent, fieldUser},
	tabSearch:  {fieldSearch, fieldUser},
	tabAsk:     {fieldAsk, fieldUser},
	tabCompare: {fieldCompare, fieldUser},
}

// Options configures the model.
type Options struct {
	UserID   string
	DefaultK int
	MaxK     int
	// Banner is shown under the header, e.g. the summary of preloaded files.
	Banner string
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx     context.Context
	service RAGPort
	samples []service.Sample

	active tab
	focus  map[tab]int

	title    textinput.Model
	content  textarea.Model
	search   textinput.Model
	ask      textinput.Model
	compare  textinput.Model
	userID   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	outputs map[tab]string
	k       int
	maxK    int
	count   int
	busy    bool
	banner  string
	lastQ   string
	width   int
	height  int
	ready   bool

	status       string
	statusFailed bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc RAGPort, opts Options) Model {
	if opts.UserID == "" {
		opts.UserID = "12"
	}
	if opts.MaxK < 1 {
		opts.MaxK = 5
	}
	if opts.DefaultK < 1 || opts.DefaultK > opts.MaxK {
		opts.DefaultK = min(3, opts.MaxK)
	}

	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholder
		ti.CharLimit = 0
		return ti
	}
	ta := textarea.New()
	ta.Placeholder = "Document content"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(5)

	user := newInput("User ID")
	user.SetValue(opts.UserID)

	m := Model{
		ctx:      ctx,
		service:  svc,
		samples:  svc.Samples(),
		focus:    map[tab]int{},
		title:    newInput("Document title"),
		content:  ta,
		search:   newInput("e.g., 'neural networks'"),
		ask:      newInput("e.g., 'What is deep learning?'"),
		compare:  newInput("e.g., 'Explain computer vision'"),
		userID:   user,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		viewport: viewport.New(0, 0),
		outputs:  map[tab]string{tabCompare: learnedText},
		k:        opts.DefaultK,
		maxK:     opts.MaxK,
		banner:   opts.Banner,
		status:   "Ready.",
	}
	m.applyFocus()
	return m
}

// Init starts the cursor blink and loads the document count.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.countCmd())
}

type countMsg struct {
	n   int
	err error
}

type addedMsg struct {
	custom bool
	title  string
	id     string
	err    error
}

type searchMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

type ragMsg struct {
	answer service.RAGAnswer
	err    error
}

type directMsg struct {
	result answer.Result
	err    error
}

type compareMsg struct {
	cmp service.Comparison
	err error
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countMsg:
		if msg.err == nil {
			m.count = msg.n
		}
		return m, nil
	case addedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("Document not added.", true)
			m.setOutput(tabAdd, errorStyle.Render(sentence(msg.err)))
			return m, nil
		}
		m.setStatus("Document added.", false)
		m.setOutput(tabAdd, successStyle.Render(addedText(msg.title, msg.id)))
		if msg.custom {
			m.title.Reset()
			m.content.Reset()
		}
		return m, m.countCmd()
	case searchMsg:
		m.busy = false
		m.lastQ = msg.query
		if msg.err != nil {
			m.setStatus("Search failed.", true)
		} else {
			m.setStatus(fmt.Sprintf("Found %d documents.", len(msg.results)), false)
		}
		m.setOutput(tabSearch, m.renderSearch(msg.results, msg.err))
		return m, nil
	case ragMsg:
		m.busy = false
		m.answerStatus("RAG", msg.answer.Answer, msg.err)
		m.setOutput(tabAsk, renderRAG(msg.answer, msg.err))
		return m, nil
	case directMsg:
		m.busy = false
		m.answerStatus("Direct", msg.result, msg.err)
		m.setOutput(tabAsk, renderDirect(msg.result, msg.err))
		return m, nil
	case compareMsg:
		m.busy = false
		m.answerStatus("Comparison", msg.cmp.Direct, msg.err)
		m.setOutput(tabCompare, m.renderCompare(msg.cmp, msg.err))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	switch key {
	case "f1", "f2", "f3", "f4":
		m.switchTab(tab(key[1] - '1'))
		return m, nil
	case "ctrl+right":
		m.switchTab((m.active + 1) % tabCount)
		return m, nil
	case "ctrl+left":
		m.switchTab((m.active + tabCount - 1) % tabCount)
		return m, nil
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.active {
	case tabAdd:
		switch key {
		case "alt+1", "alt+2", "alt+3", "alt+4":
			idx, _ := strconv.Atoi(key[len(key)-1:])
			if idx-1 < len(m.samples) {
				return m.start(m.addSampleCmd(idx - 1))
			}
			return m, nil
		case "ctrl+s":
			return m.start(m.addDocumentCmd(m.title.Value(), m.content.Value()))
		case "enter":
			if m.focused() == fieldTitle {
				m.cycleFocus(1)
				return m, nil
			}
		}
	case tabSearch:
		switch key {
		case "ctrl+up":
			m.k = min(m.k+1, m.maxK)
			return m, nil
		case "ctrl+down":
			m.k = max(m.k-1, 1)
			return m, nil
		case "enter":
			if m.focused() == fieldSearch {
				return m.start(m.searchCmd(m.search.Value(), m.k))
			}
		}
	case tabAsk:
		if m.focused() == fieldAsk {
			switch key {
			case "enter":
				return m.start(m.ragCmd(m.ask.Value(), m.userID.Value()))
			case "alt+enter":
				return m.start(m.directCmd(m.ask.Value(), m.userID.Value()))
			}
		}
	case tabCompare:
		if key == "enter" && m.focused() == fieldCompare {
			return m.start(m.compareCmd(m.compare.Value(), m.userID.Value()))
		}
	}
	return m.updateFocused(msg)
}

// start marks the model busy and runs cmd alongside the spinner.
func (m Model) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focused() {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	case fieldSearch:
		m.search, cmd = m.search.Update(msg)
	case fieldAsk:
		m.ask, cmd = m.ask.Update(msg)
	case fieldCompare:
		m.compare, cmd = m.compare.Update(msg)
	case fieldUser:
		m.userID, cmd = m.userID.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchTab(t tab) {
	if t < 0 || t >= tabCount {
		return
	}
	m.active = t
	m.applyFocus()
	m.resize()
	m.viewport.GotoTop()
}

func (m *Model) cycleFocus(delta int) {
	n := len(tabFields[m.active])
	m.focus[m.active] = (m.focus[m.active] + delta + n) % n
	m.applyFocus()
}

func (m Model) focused() field {
	return tabFields[m.active][m.focus[m.active]]
}

func (m *Model) applyFocus() {
	m.title.Blur()
	m.content.Blur()
	m.search.Blur()
	m.ask.Blur()
	m.compare.Blur()
	m.userID.Blur()
	switch m.focused() {
	case fieldTitle:
		m.title.Focus()
	case fieldContent:
		m.content.Focus()
	case fieldSearch:
		m.search.Focus()
	case fieldAsk:
		m.ask.Focus()
	case fieldCompare:
		m.compare.Focus()
	case fieldUser:
		m.userID.Focus()
	}
}

func (m *Model) setStatus(text string, failed bool) {
	m.status, m.statusFailed = text, failed
}

// answerStatus reports how an answer call ended: a Go error, a failed
// remote call, or a usable answer.
func (m *Model) answerStatus(kind string, res answer.Result, err error) {
	switch {
	case errors.Is(err, domain.ErrNoContext):
		m.setStatus(kind+" answer skipped: knowledge base has no matches.", true)
	case err != nil:
		m.setStatus(kind+" answer failed.", true)
	case !res.OK():
		m.setStatus(kind+" answer failed: "+res.Kind.String()+".", true)
	default:
		m.setStatus(kind+" answer received.", false)
	}
}

func (m *Model) setOutput(t tab, s string) {
	m.outputs[t] = s
	if t == m.active {
		m.refreshViewport()
		m.viewport.GotoTop()
	}
}

func (m Model) countCmd() tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		n, err := svc.Count(ctx)
		return countMsg{n: n, err: err}
	}
}

func (m Model) addSampleCmd(index int) tea.Cmd {
	ctx, svc, title := m.ctx, m.service, m.samples[index].Title
	return func() tea.Msg {
		id, err := svc.AddSample(ctx, index)
		return addedMsg{title: title, id: id, err: err}
	}
}

func (m Model) addDocumentCmd(title, content string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		id, err := svc.AddDocument(ctx, title, content, domain.SourceCustom)
		return addedMsg{custom: true, title: title, id: id, err: err}
	}
}

func (m Model) searchCmd(query string, k int) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		res, err := svc.Search(ctx, query, k)
		return searchMsg{query: query, results: res, err: err}
	}
}

func (m Model) ragCmd(question, userID string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		a, err := svc.AnswerWithRAG(ctx, question, userID)
		return ragMsg{answer: a, err: err}
	}
}

func (m Model) directCmd(question, userID string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		res, err := svc.AnswerDirect(ctx, question, userID)
		return directMsg{result: res, err: err}
	}
}

func (m Model) compareCmd(question, userID string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		cmp, err := svc.Compare(ctx, question, userID)
		return compareMsg{cmp: cmp, err: err}
	}
}
