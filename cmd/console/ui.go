package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
	"github.com/splatform/playback-engine/pkg/runtime"
)

const frameInterval = 50 * time.Millisecond

// moveStep is the simulated input duration applied per keypress.
const moveStep = 100 * time.Millisecond

// target is one triggerable (object, interaction) pair.
type target struct {
	objectID      string
	objectName    string
	interactionID string
	label         string
}

// ConsoleUI is the BubbleTea model that runs the playtest UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	exp *experience.Experience
	rt  *runtime.Runtime

	eventViewport viewport.Model
	hudViewport   viewport.Model
	ready         bool
	width         int
	height        int

	targets  []target
	selected int

	lastFrame time.Time
	status    string // transient footer notice (copy result etc.)

	showQuitModal bool
}

type frameMsg time.Time

var (
	eventPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(2).
			PaddingRight(1)

	hudPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	eventTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")). // yellow
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	messageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))
)

func NewConsoleUI(exp *experience.Experience) ConsoleUI {
	rt := runtime.New(nil)

	var targets []target
	for i := range exp.Objects {
		obj := &exp.Objects[i]
		for j := range obj.Interactions {
			ic := &obj.Interactions[j]
			if !ic.Enabled {
				continue
			}
			name := ic.Name
			if name == "" {
				name = ic.ID
			}
			objName := obj.Name
			if objName == "" {
				objName = obj.ID
			}
			targets = append(targets, target{
				objectID:      obj.ID,
				objectName:    objName,
				interactionID: ic.ID,
				label:         fmt.Sprintf("%s / %s", objName, name),
			})
		}
	}

	rt.Start(exp, exp.Objects, exp.StartPosition)

	return ConsoleUI{
		exp:       exp,
		rt:        rt,
		targets:   targets,
		lastFrame: time.Now(),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nextFrame()
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		eventWidth := m.width * 2 / 3
		hudWidth := m.width - eventWidth
		vpHeight := m.height - 4
		if !m.ready {
			m.eventViewport = viewport.New(eventWidth-4, vpHeight)
			m.eventViewport.MouseWheelEnabled = true
			m.hudViewport = viewport.New(hudWidth-4, vpHeight)
			m.ready = true
		} else {
			m.eventViewport.Width = eventWidth - 4
			m.eventViewport.Height = vpHeight
			m.hudViewport.Width = hudWidth - 4
			m.hudViewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		dt := now.Sub(m.lastFrame)
		m.lastFrame = now
		m.rt.Tick(dt)
		if m.ready {
			m.refresh()
		}
		return m, nextFrame()

	case tea.KeyMsg:
		if m.showQuitModal {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.showQuitModal = true
		case "w":
			m.rt.Move(1, 0, moveStep)
		case "s":
			m.rt.Move(-1, 0, moveStep)
		case "a":
			m.rt.Move(0, -1, moveStep)
		case "d":
			m.rt.Move(0, 1, moveStep)
		case "left":
			m.rt.Rotate(0, -5)
		case "right":
			m.rt.Rotate(0, 5)
		case "up":
			m.rt.Rotate(5, 0)
		case "down":
			m.rt.Rotate(-5, 0)
		case "tab":
			if len(m.targets) > 0 {
				m.selected = (m.selected + 1) % len(m.targets)
			}
		case "enter", "t":
			if len(m.targets) > 0 {
				t := m.targets[m.selected]
				m.rt.TriggerInteraction(t.interactionID, t.objectID)
			}
		case "p":
			if m.rt.Phase() == runtime.PhasePaused {
				m.rt.Resume()
			} else {
				m.rt.Pause()
			}
		case "r":
			m.rt.Reset()
			m.status = "session reset"
		case "c":
			if err := clipboard.WriteAll(m.transcript()); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "event log copied to clipboard"
			}
		}
		if m.ready {
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.eventViewport, cmd = m.eventViewport.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) refresh() {
	m.eventViewport.SetContent(m.renderEvents())
	m.eventViewport.GotoBottom()
	m.hudViewport.SetContent(m.renderHUD())
}

func (m *ConsoleUI) renderEvents() string {
	width := m.eventViewport.Width - 2
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAYTEST — "+m.exp.Name) + "\n\n")

	evs := m.rt.Events()
	if len(evs) == 0 {
		content.WriteString(dimStyle.Render("No events yet. Move with WASD, rotate with arrows, trigger with Enter.") + "\n")
	}
	for _, e := range evs {
		content.WriteString(wordwrap.String(formatEvent(e), width) + "\n")
	}
	return content.String()
}

func formatEvent(e events.Event) string {
	ts := dimStyle.Render(e.At.Format("15:04:05"))
	label := eventTypeStyle.Render(string(e.Type))
	switch e.Type {
	case events.TypeScoreChanged:
		return fmt.Sprintf("%s %s %+d → %d", ts, label, e.Delta, e.Score)
	case events.TypeItemCollected:
		return fmt.Sprintf("%s %s %s x%d", ts, label, e.ItemID, e.Quantity)
	case events.TypeItemRemoved:
		return fmt.Sprintf("%s %s %s x%d", ts, label, e.ItemID, e.Quantity)
	case events.TypeObjectiveCompleted:
		return fmt.Sprintf("%s %s %s", ts, label, e.ObjectiveID)
	case events.TypeMessageShown:
		return fmt.Sprintf("%s %s %q", ts, label, e.Message)
	case events.TypeSoundPlayed:
		return fmt.Sprintf("%s %s %s", ts, label, e.SoundID)
	case events.TypeTeleported:
		if e.Position != nil {
			return fmt.Sprintf("%s %s (%.1f, %.1f, %.1f)", ts, label, e.Position.X, e.Position.Y, e.Position.Z)
		}
		return fmt.Sprintf("%s %s", ts, label)
	case events.TypeSceneChanged:
		return fmt.Sprintf("%s %s %s", ts, label, e.SceneID)
	case events.TypeVariableChanged:
		return fmt.Sprintf("%s %s %s = %v", ts, label, e.Variable, e.Value)
	case events.TypeWinConditionMet:
		return fmt.Sprintf("%s %s %s", ts, winStyle.Render(string(e.Type)), e.ConditionID)
	case events.TypeFailConditionMet:
		return fmt.Sprintf("%s %s %s", ts, failStyle.Render(string(e.Type)), e.ConditionID)
	case events.TypeGameWon:
		return fmt.Sprintf("%s %s score %d in %s", ts, winStyle.Render("GAME WON"), e.Score, player.FormatTime(e.Elapsed))
	case events.TypeGameFailed:
		return fmt.Sprintf("%s %s score %d in %s", ts, failStyle.Render("GAME FAILED"), e.Score, player.FormatTime(e.Elapsed))
	case events.TypeInteractionTriggered:
		return fmt.Sprintf("%s %s %s on %s", ts, label, e.InteractionID, e.ObjectID)
	case events.TypeShowObject, events.TypeHideObject:
		return fmt.Sprintf("%s %s %s", ts, label, e.ObjectID)
	default:
		return fmt.Sprintf("%s %s", ts, label)
	}
}

func (m *ConsoleUI) renderHUD() string {
	var content strings.Builder
	st := m.rt.Snapshot()
	if st == nil {
		return dimStyle.Render("no session")
	}

	content.WriteString(titleStyle.Render("PLAYER") + "\n\n")
	content.WriteString(fmt.Sprintf("Phase: %s\n", m.rt.Phase()))
	content.WriteString(fmt.Sprintf("Time:  %s\n", player.FormatTime(st.Elapsed)))
	content.WriteString(fmt.Sprintf("Score: %s\n", player.FormatScore(st.Score, m.exp.Scoring.DisplayFormat)))
	content.WriteString(fmt.Sprintf("Pos:   (%.1f, %.1f, %.1f)\n", st.Position.X, st.Position.Y, st.Position.Z))
	content.WriteString(fmt.Sprintf("Look:  pitch %.0f° yaw %.0f°\n", st.Rotation.Pitch, st.Rotation.Yaw))

	if msg := m.rt.ActiveMessage(); msg != nil {
		content.WriteString("\n")
		text := msg.Message
		if msg.Title != "" {
			text = msg.Title + ": " + text
		}
		content.WriteString(messageStyle.Render(wordwrap.String(text, m.hudViewport.Width-6)) + "\n")
	}

	content.WriteString("\n" + titleStyle.Render("INVENTORY") + "\n")
	if len(st.Inventory) == 0 {
		content.WriteString(dimStyle.Render("empty") + "\n")
	}
	for _, item := range st.Inventory {
		name := item.Name
		if name == "" {
			name = item.ItemID
		}
		content.WriteString(fmt.Sprintf("• %s x%d\n", name, item.Quantity))
	}

	if len(m.exp.Objectives) > 0 {
		content.WriteString("\n" + titleStyle.Render("OBJECTIVES") + "\n")
		for _, obj := range m.exp.Objectives {
			mark := "☐"
			if st.ObjectivesProgress[obj.ID].Completed {
				mark = "☑"
			} else if obj.Hidden {
				continue
			}
			content.WriteString(fmt.Sprintf("%s %s\n", mark, obj.Name))
		}
	}

	content.WriteString("\n" + titleStyle.Render("TARGETS") + "\n")
	if len(m.targets) == 0 {
		content.WriteString(dimStyle.Render("no interactions authored") + "\n")
	}
	for i, t := range m.targets {
		line := t.label
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}

	content.WriteString("\n" + dimStyle.Render(strings.Join([]string{
		"WASD move, arrows look",
		"Tab: next target",
		"Enter: trigger",
		"p: pause  r: reset",
		"c: copy log  q: quit",
	}, "\n")))

	return content.String()
}

func (m *ConsoleUI) transcript() string {
	var b strings.Builder
	b.WriteString("# " + m.exp.Name + " playtest\n")
	for _, e := range m.rt.Events() {
		b.WriteString(fmt.Sprintf("%s %s", e.At.Format(time.RFC3339), e.Type))
		if e.ConditionID != "" {
			b.WriteString(" " + e.ConditionID)
		}
		if e.ItemID != "" {
			b.WriteString(" " + e.ItemID)
		}
		if e.InteractionID != "" {
			b.WriteString(" " + e.InteractionID + "@" + e.ObjectID)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render("Quit playtest?\n\n[y] yes   [n] no")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		eventPanelStyle.Render(m.eventViewport.View()),
		hudPanelStyle.Render(m.hudViewport.View()),
	)

	footer := ""
	if m.status != "" {
		footer = "\n" + dimStyle.Render(m.status)
	}
	return main + footer
}
