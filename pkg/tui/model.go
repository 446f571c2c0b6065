package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-wordwrap"
)

type (
	model struct {
		mu        sync.Mutex
		verbose   bool
		tasks     map[string]*taskModel
		taskOrder []string

		consoleWidth int
		taskWidth    int
		statusWidth  int
	}

	taskModel struct {
		logs *RingBuffer[string]

		status      string
		hasProgress bool
		complete    bool

		progress progress.Model
		spinner  spinner.Model
	}
)

func NewModel(verbose bool) *model {
	return &model{
		verbose: verbose,
		tasks:   make(map[string]*taskModel),
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) taskModel(task string) *taskModel {
	tm, ok := m.tasks[task]
	if !ok {
		tm = &taskModel{
			progress: progress.New(),
			spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		}
		if m.verbose {
			tm.logs = NewRingBuffer[string](10)
		}
		m.tasks[task] = tm
		m.taskOrder = append(m.taskOrder, task)
	}
	return tm
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.consoleWidth = msg.Width

	case LogMessage:
		if m.verbose && msg.Message != "" {
			tm := m.taskModel(msg.Task)
			tm.logs.Push(msg.Message)
		}

	case UpdateMessage:
		tm := m.taskModel(msg.Task)

		m.taskWidth = 0
		m.statusWidth = 0
		for t, tm := range m.tasks {
			m.taskWidth = max(m.taskWidth, len(t))
			m.statusWidth = max(m.statusWidth, len(tm.status))
		}
		tm.hasProgress = !msg.Indeterminate
		tm.complete = msg.Complete

		if tm.hasProgress {
			cmd = tm.progress.SetPercent(msg.Percent)
		} else {
			cmd = tm.spinner.Tick
		}
		tm.status = msg.Status

	case progress.FrameMsg:
		cmds := make([]tea.Cmd, 0, len(m.tasks))
		for _, tm := range m.tasks {
			pm, cmd := tm.progress.Update(msg)
			tm.progress = pm.(progress.Model)
			cmds = append(cmds, cmd)
		}
		cmd = tea.Batch(cmds...)

	case spinner.TickMsg:
		cmds := make([]tea.Cmd, 0, len(m.tasks))
		for _, tm := range m.tasks {
			sm, cmd := tm.spinner.Update(msg)
			tm.spinner = sm
			cmds = append(cmds, cmd)
		}
		cmd = tea.Batch(cmds...)
	}

	return m, cmd
}

func (m *model) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.verbose {
		return m.viewVerbose()
	}
	return m.viewCompact()
}

func (m *model) viewCompact() string {
	sb := new(strings.Builder)
	for _, t := range m.taskOrder {
		tm := m.tasks[t]

		if pad := m.taskWidth - len(t); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(t)
		sb.WriteString(" ")

		if pad := m.statusWidth - len(tm.status); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(tm.status)
		sb.WriteString(" ")

		switch {
		case tm.complete:
			// Do nothing

		case tm.hasProgress:
			sb.WriteString(tm.progress.View())

		default:
			sb.WriteString(tm.spinner.View())
		}

		sb.WriteRune('\n')
	}
	return sb.String()
}

func (m *model) viewVerbose() string {
	sb := new(strings.Builder)
	for _, t := range m.taskOrder {
		tm := m.tasks[t]

		if tm.complete {
			sb.WriteString("─")
			sb.WriteString(t)
			sb.WriteRune('\n')
			continue
		}
		sb.WriteString("┌ ")
		sb.WriteString(t)
		sb.WriteString(" ")
		sb.WriteString(tm.status)
		sb.WriteString("\n├ ")

		switch {
		case tm.hasProgress:
			sb.WriteString(tm.progress.View())

		default:
			sb.WriteString(tm.spinner.View())
		}
		sb.WriteRune('\n')

		tm.logs.ForEach(func(_ int, msg string) {
			msg = wordwrap.WrapString(msg, uint(m.consoleWidth-4))
			lines := strings.Split(msg, "\n")
			sb.WriteString("├ ")
			for i, l := range lines {
				if i > 0 {
					sb.WriteString("│ ")
				}
				sb.WriteString(l)
				sb.WriteRune('\n')
			}
		})
		sb.WriteString("└")
		sb.WriteRune('\n')
	}
	return sb.String()
}
