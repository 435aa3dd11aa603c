package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nissyi-gh/donewithit/internal/model"
	"github.com/nissyi-gh/donewithit/internal/notify"
	"github.com/nissyi-gh/donewithit/internal/prompt"
	"github.com/nissyi-gh/donewithit/internal/todo"
)

type appState int

const (
	stateList appState = iota
	stateSearch
	stateAdd
	stateNewCategory
	stateConfirmDelete
	stateConfirmEmptyBin
)

// Fields of the add form, in focus order.
const (
	addTitle = iota
	addDescription
	addCategory
	addReminder
	addFieldCount
)

const actionTimeout = 2 * time.Second

var (
	appStyle       = lipgloss.NewStyle().Padding(1, 2)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	confirmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	labelStyle     = lipgloss.NewStyle().Width(13).Foreground(lipgloss.Color("241"))
	focusedLabel   = labelStyle.Foreground(lipgloss.Color("170"))
	detailStyle    = lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	descBoxStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
)

type extraKeyMap struct {
	Add         key.Binding
	Toggle      key.Binding
	Pin         key.Binding
	Delete      key.Binding
	Restore     key.Binding
	EmptyBin    key.Binding
	NewCategory key.Binding
	Search      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	CopyTitle   key.Binding
	CopyPrompt  key.Binding
}

func newExtraKeyMap() extraKeyMap {
	return extraKeyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter/x", "toggle"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		EmptyBin: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "empty bin"),
		),
		NewCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		CopyTitle: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy title"),
		),
		CopyPrompt: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "copy prompt"),
		),
	}
}

func (k extraKeyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Pin, k.Delete, k.Search, k.NextTab}
}

func (k extraKeyMap) full() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Pin, k.Delete, k.Restore, k.EmptyBin,
		k.NewCategory, k.Search, k.NextTab, k.PrevTab, k.CopyTitle, k.CopyPrompt}
}

// Options configures the TUI.
type Options struct {
	// InitialTab is the tab shown on start. It falls back to All when it
	// names a category without tasks.
	InitialTab model.Tab
	// Reminders delivers fired reminders for the status line. May be nil.
	Reminders <-chan notify.Fired
	// Now is the clock used by the reminder input. Defaults to time.Now.
	Now func() time.Time
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// Model is the top-level BubbleTea model for the donewithit TUI.
type Model struct {
	state    appState
	list     list.Model
	store    *todo.Store
	keys     extraKeyMap
	progress progress.Model

	tabs   []model.Tab
	colors map[string]string
	tab    model.Tab
	stats  model.Stats

	search textinput.Model

	addFocus      int
	titleInput    textinput.Model
	descInput     textinput.Model
	categoryIdx   int
	categoryNames []string
	reminderInput reminderInput

	categoryInput textinput.Model

	reminders <-chan notify.Fired
	now       func() time.Time
	copyText  func(string) error

	status string
	warn   error
	err    error
	width  int
	height int
}

type tasksLoadedMsg struct {
	tasks []model.Task
	tabs  []model.Tab
	// tab is the tab the tasks were projected for, after fallback.
	tab        model.Tab
	colors     map[string]string
	stats      model.Stats
	categories []string
}

type reminderMsg notify.Fired

// NewModel creates a new TUI model.
func NewModel(s *todo.Store, opts Options) Model {
	if opts.InitialTab == "" {
		opts.InitialTab = model.TabAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	keys := newExtraKeyMap()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "donewithit"
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	// esc clears the search instead of quitting.
	l.KeyMap.Quit.SetKeys("q")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	search := textinput.New()
	search.Placeholder = "Search titles..."
	search.Prompt = "/ "
	search.CharLimit = 128

	title := textinput.New()
	title.Placeholder = "Task title..."
	title.CharLimit = 256

	desc := textinput.New()
	desc.Placeholder = "Description (optional)..."
	desc.CharLimit = 1024

	cat := textinput.New()
	cat.Placeholder = "Category name..."
	cat.CharLimit = 32

	return Model{
		state:         stateList,
		list:          l,
		store:         s,
		keys:          keys,
		progress:      progress.New(progress.WithDefaultGradient()),
		tab:           opts.InitialTab,
		search:        search,
		titleInput:    title,
		descInput:     desc,
		reminderInput: newReminderInput(),
		categoryInput: cat,
		reminders:     opts.Reminders,
		now:           opts.Now,
		copyText:      opts.Copy,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasks, waitForReminder(m.reminders))
}

func (m Model) view() model.View {
	return model.View{Tab: m.tab, Search: m.search.Value()}
}

func (m Model) loadTasks() tea.Msg {
	categories := m.store.CategoryTabs()

	tabs := append([]model.Tab(nil), model.BuiltinTabs...)
	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		tabs = append(tabs, model.Tab(c.Name))
		colors[c.Name] = c.Color
	}
	for _, c := range m.store.Categories() {
		colors[c.Name] = c.Color
	}

	tab := m.tab
	if !containsTab(tabs, tab) {
		tab = model.TabAll
	}
	v := m.view()
	v.Tab = tab

	var names []string
	def := m.store.DefaultCategory()
	names = append(names, def)
	for _, c := range m.store.Categories() {
		if c.Name != def {
			names = append(names, c.Name)
		}
	}

	return tasksLoadedMsg{
		tasks:      m.store.Project(v),
		tabs:       tabs,
		tab:        tab,
		colors:     colors,
		stats:      m.store.Stats(),
		categories: names,
	}
}

func containsTab(tabs []model.Tab, tab model.Tab) bool {
	for _, t := range tabs {
		if t == tab {
			return true
		}
	}
	return false
}

func waitForReminder(ch <-chan notify.Fired) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg(f)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := appStyle.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 60 / 100
		// Tab bar, progress bar and status line.
		m.list.SetSize(leftWidth, msg.Height-v-4)
		m.progress.Width = leftWidth
		return m, nil

	case tasksLoadedMsg:
		showCategory := model.IsBuiltin(string(msg.tab))
		items := make([]list.Item, len(msg.tasks))
		for i, t := range msg.tasks {
			items[i] = TaskItem{Task: t, ShowCategory: showCategory}
		}
		m.list.SetItems(items)
		m.tabs = msg.tabs
		m.tab = msg.tab
		m.colors = msg.colors
		m.stats = msg.stats
		m.categoryNames = msg.categories
		return m, nil

	case reminderMsg:
		m.status = fmt.Sprintf("%s: %s", msg.Notification.Title, msg.Notification.Body)
		return m, waitForReminder(m.reminders)
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateSearch:
		return m.updateSearch(msg)
	case stateAdd:
		return m.updateAdd(msg)
	case stateNewCategory:
		return m.updateNewCategory(msg)
	case stateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case stateConfirmEmptyBin:
		return m.updateConfirmEmptyBin(msg)
	}

	return m, nil
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
	case todo.IsWarning(err):
		m.warn = err
	default:
		m.err = err
	}
}

func (m *Model) clearMessages() {
	m.err = nil
	m.warn = nil
	m.status = ""
}

func (m Model) selectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

func (m Model) cycleTab(delta int) Model {
	if len(m.tabs) == 0 {
		return m
	}
	i := 0
	for j, t := range m.tabs {
		if t == m.tab {
			i = j
			break
		}
	}
	i = (i + delta + len(m.tabs)) % len(m.tabs)
	m.tab = m.tabs[i]
	m.list.ResetSelected()
	return m
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "tab":
		m = m.cycleTab(1)
		return m, m.loadTasks
	case "shift+tab":
		m = m.cycleTab(-1)
		return m, m.loadTasks
	case "/":
		m.state = stateSearch
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		if m.search.Value() != "" {
			m.search.Reset()
			return m, m.loadTasks
		}
	case "a", "n":
		if m.tab == model.TabBin {
			return m, nil
		}
		m.clearMessages()
		cmd := m.startAdd()
		return m, cmd
	case "c":
		m.clearMessages()
		m.state = stateNewCategory
		m.categoryInput.Reset()
		cmd := m.categoryInput.Focus()
		return m, cmd
	case "E":
		if m.tab == model.TabBin && len(m.list.Items()) > 0 {
			m.state = stateConfirmEmptyBin
		}
		return m, nil
	case "P":
		m.clearMessages()
		text := prompt.GenerateNew(m.store.Categories())
		if !model.IsBuiltin(string(m.tab)) {
			text = prompt.GenerateForCategory(string(m.tab), m.store.Project(model.View{Tab: m.tab}))
		}
		if err := m.copyText(text); err != nil {
			m.err = fmt.Errorf("copy prompt: %w", err)
		} else {
			m.status = "Prompt copied to clipboard"
		}
		return m, nil
	}

	task, selected := m.selectedTask()
	if selected {
		switch keyMsg.String() {
		case "enter", "x":
			if !task.IsDeleted() {
				m.store.ToggleCompleted(task.ID)
				return m, m.loadTasks
			}
		case "p":
			if !task.IsDeleted() {
				m.store.TogglePinned(task.ID)
				return m, m.loadTasks
			}
		case "d":
			m.clearMessages()
			if task.IsDeleted() {
				m.state = stateConfirmDelete
				return m, nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			_, err := m.store.SoftDelete(ctx, task.ID)
			m.report(err)
			if err == nil {
				m.status = fmt.Sprintf("Moved %q to the bin", task.Title)
			}
			return m, m.loadTasks
		case "r":
			if task.IsDeleted() {
				m.clearMessages()
				m.store.Restore(task.ID)
				m.status = fmt.Sprintf("Restored %q", task.Title)
				return m, m.loadTasks
			}
		case "y":
			m.clearMessages()
			if err := m.copyText(task.Title); err != nil {
				m.err = fmt.Errorf("copy title: %w", err)
			} else {
				m.status = "Title copied to clipboard"
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.state = stateList
			m.search.Blur()
			return m, nil
		case tea.KeyEsc:
			m.state = stateList
			m.search.Blur()
			m.search.Reset()
			return m, m.loadTasks
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.list.ResetSelected()
	return m, tea.Batch(cmd, m.loadTasks)
}

func (m *Model) startAdd() tea.Cmd {
	m.state = stateAdd
	m.titleInput.Reset()
	m.descInput.Reset()
	m.reminderInput.Reset()
	m.reminderInput.Blur()
	m.descInput.Blur()
	m.categoryIdx = 0
	if !model.IsBuiltin(string(m.tab)) {
		for i, name := range m.categoryNames {
			if name == string(m.tab) {
				m.categoryIdx = i
			}
		}
	}
	return m.focusAddField(addTitle)
}

func (m *Model) focusAddField(idx int) tea.Cmd {
	m.addFocus = idx
	m.titleInput.Blur()
	m.descInput.Blur()
	m.reminderInput.Blur()
	switch idx {
	case addTitle:
		return m.titleInput.Focus()
	case addDescription:
		return m.descInput.Focus()
	case addReminder:
		return m.reminderInput.Focus()
	}
	return nil
}

func (m Model) selectedCategory() string {
	if m.categoryIdx < 0 || m.categoryIdx >= len(m.categoryNames) {
		return ""
	}
	return m.categoryNames[m.categoryIdx]
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = stateList
			return m, nil
		case tea.KeyTab:
			cmd := m.focusAddField((m.addFocus + 1) % addFieldCount)
			return m, cmd
		case tea.KeyShiftTab:
			cmd := m.focusAddField((m.addFocus + addFieldCount - 1) % addFieldCount)
			return m, cmd
		case tea.KeyEnter:
			return m.submitAdd()
		case tea.KeyLeft, tea.KeyRight:
			if m.addFocus == addCategory && len(m.categoryNames) > 0 {
				delta := 1
				if keyMsg.Type == tea.KeyLeft {
					delta = len(m.categoryNames) - 1
				}
				m.categoryIdx = (m.categoryIdx + delta) % len(m.categoryNames)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.addFocus {
	case addTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case addDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	case addReminder:
		m.reminderInput, cmd = m.reminderInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	m.err = nil
	at, err := m.reminderInput.Value(m.now())
	if err != nil {
		m.err = err
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	task, err := m.store.CreateTask(ctx, m.titleInput.Value(), todo.TaskOptions{
		Description: m.descInput.Value(),
		Category:    m.selectedCategory(),
		ReminderAt:  at,
	})
	if err != nil && !todo.IsWarning(err) {
		m.err = err
		return m, nil
	}
	m.report(err)
	m.status = fmt.Sprintf("Added %q", task.Title)
	m.state = stateList
	return m, m.loadTasks
}

func (m Model) updateNewCategory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			c, err := m.store.CreateCategory(m.categoryInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.status = fmt.Sprintf("Created category %q", c.Name)
			m.state = stateList
			m.categoryInput.Blur()
			return m, m.loadTasks
		case tea.KeyEsc:
			m.err = nil
			m.state = stateList
			m.categoryInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if task, ok := m.selectedTask(); ok && m.store.HardDelete(task.ID) {
				m.status = fmt.Sprintf("Deleted %q for good", task.Title)
			}
			m.state = stateList
			return m, m.loadTasks
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateConfirmEmptyBin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			n := m.store.EmptyBin()
			m.status = fmt.Sprintf("Removed %d tasks from the bin", n)
			m.state = stateList
			return m, m.loadTasks
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) badge(category string) string {
	color, ok := m.colors[category]
	if !ok {
		color = "241"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render("[" + category + "]")
}

func (m Model) renderTabs() string {
	var parts []string
	for _, t := range m.tabs {
		style := tabStyle
		if color, ok := m.colors[string(t)]; ok && !model.IsBuiltin(string(t)) {
			style = style.Foreground(lipgloss.Color(color))
		}
		if t == m.tab {
			style = activeTabStyle.Foreground(style.GetForeground())
		}
		parts = append(parts, style.Render(string(t)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderProgress() string {
	label := statusStyle.Render(fmt.Sprintf(" %d/%d done", m.stats.Completed, m.stats.Total))
	return m.progress.ViewAs(m.stats.Progress) + label
}

func (m Model) renderDetail() string {
	task, ok := m.selectedTask()
	if !ok {
		return statusStyle.Render("(no task selected)")
	}

	pinMark := ""
	if task.Pinned {
		pinMark = "📌 "
	}
	descContent := statusStyle.Render("(no description)")
	if task.Description != "" {
		descContent = task.Description
	}

	lines := []string{
		pinMark + task.Title,
		"",
		descBoxStyle.Render(descContent),
		"",
		"category: " + m.badge(task.CategoryLabel()),
	}
	if task.HasReminder() {
		lines = append(lines, "reminder: ⏰ "+task.ReminderAt.Local().Format("2006-01-02 15:04"))
	}
	if task.IsDeleted() {
		lines = append(lines, errorStyle.Render("deleted:  "+task.DeletedAt.Local().Format("2006-01-02 15:04")))
		lines = append(lines, "", statusStyle.Render("r: restore  d: delete for good  E: empty bin"))
	} else {
		lines = append(lines, "", statusStyle.Render("x: toggle  p: pin  d: bin  y: copy title"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderMessages() string {
	var out string
	if m.status != "" {
		out += "\n" + noticeStyle.Render(m.status)
	}
	if m.warn != nil {
		out += "\n" + warnStyle.Render("Warning: "+m.warn.Error())
	}
	if m.err != nil {
		out += "\n" + errorStyle.Render("Error: "+m.err.Error())
	}
	return out
}

func (m Model) renderAddForm() string {
	label := func(idx int, text string) string {
		if m.addFocus == idx {
			return focusedLabel.Render(text)
		}
		return labelStyle.Render(text)
	}
	category := m.badge(m.selectedCategory())
	if m.addFocus == addCategory {
		category = "← " + category + " →"
	}
	rows := []string{
		label(addTitle, "title") + m.titleInput.View(),
		label(addDescription, "description") + m.descInput.View(),
		label(addCategory, "category") + category,
		label(addReminder, "reminder") + m.reminderInput.View(),
	}
	return titleStyle.Render("New Task") + "\n\n" +
		strings.Join(rows, "\n") + "\n\n" +
		statusStyle.Render("tab: next field • ←/→: category or reminder part • enter: save • esc: cancel")
}

func (m Model) View() string {
	switch m.state {
	case stateAdd:
		return appStyle.Render(m.renderAddForm() + m.renderMessages())
	case stateNewCategory:
		return appStyle.Render(
			titleStyle.Render("New Category") + "\n\n" +
				m.categoryInput.View() + "\n\n" +
				statusStyle.Render("enter: save • esc: cancel") +
				m.renderMessages(),
		)
	case stateConfirmDelete:
		task, _ := m.selectedTask()
		return appStyle.Render(
			confirmStyle.Render("Delete Task For Good?") + "\n\n" +
				"  " + task.Title + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel"),
		)
	case stateConfirmEmptyBin:
		return appStyle.Render(
			confirmStyle.Render("Empty Bin?") + "\n\n" +
				fmt.Sprintf("  %d tasks will be deleted for good.", len(m.list.Items())) + "\n\n" +
				statusStyle.Render("y: empty • n/esc: cancel"),
		)
	default:
		h, v := appStyle.GetFrameSize()
		contentWidth := m.width - h
		contentHeight := m.height - v
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth

		top := m.renderTabs()
		if m.state == stateSearch || m.search.Value() != "" {
			top += "\n" + m.search.View()
		}
		left := lipgloss.JoinVertical(lipgloss.Left, top, m.list.View(), m.renderProgress())
		rightPane := detailStyle.
			Width(rightWidth).
			Height(contentHeight).
			Render(m.renderDetail())
		content := lipgloss.JoinHorizontal(lipgloss.Top, left, rightPane)
		return appStyle.Render(content + m.renderMessages())
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(s *todo.Store, opts Options) error {
	p := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
