package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type (
	UpdateMessage struct {
		Task   string
		Status string

		Percent       float64
		Indeterminate bool
		Complete      bool
	}

	LogMessage struct {
		Task    string
		Message string
	}

	TuiProgress struct {
		Prog *tea.Program
		Task string
	}
)

func (p *TuiProgress) Update(status string, current, total int) {
	p.Prog.Send(UpdateMessage{
		Task:    p.Task,
		Status:  status,
		Percent: float64(current) / float64(total),
	})
}

func (p *TuiProgress) UpdateIndeterminate(status string) {
	p.Prog.Send(UpdateMessage{
		Task:          p.Task,
		Status:        status,
		Indeterminate: true,
	})
}

func (p *TuiProgress) Complete(status string) {
	p.Prog.Send(UpdateMessage{
		Task:     p.Task,
		Status:   status,
		Complete: true,
	})
}
