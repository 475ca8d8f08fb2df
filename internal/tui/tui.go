// Package tui is the rendering and gesture-capture surface. Key presses
// stand in for the drag signal: left/right accumulate a signed offset and
// enter ends the gesture. Every store/cache/engine mutation happens inside
// Update, so the bubbletea loop is the single owner context the core
// packages require.
package tui

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"photosweep/internal/classify"
	"photosweep/internal/config"
	"photosweep/internal/importer"
	"photosweep/internal/library"
	"photosweep/internal/store"
	"photosweep/internal/triage"
)

type model struct {
	ctx     context.Context
	root    string
	catalog *library.Catalog
	store   *store.Store
	cache   *classify.Cache
	engine  *triage.Engine
	scanner *importer.Scanner
	watcher *importer.Watcher
	step    float64

	indicator *LoadingIndicator
	loading   bool
	exhausted bool
	status    string
	err       error

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func initialModel(ctx context.Context, catalog *library.Catalog, cfg config.Config, classifier classify.Classifier, watcher *importer.Watcher) model {
	s := store.New()
	cache := classify.NewCache(classifier)
	thresholds := triage.Thresholds{Delete: cfg.DeleteThreshold, Advance: cfg.AdvanceThreshold}
	merger := importer.NewMerger(s, cache)
	root := ""
	if catalog != nil {
		root = catalog.Root()
	}
	return model{
		ctx:     ctx,
		root:    root,
		catalog: catalog,
		store:   s,
		cache:   cache,
		engine:  triage.NewEngine(s, cache, thresholds),
		scanner: &importer.Scanner{
			Merger: merger,
			Create: catalog.CreateFromFile,
			Access: importer.OSAccess{},
		},
		watcher:   watcher,
		step:      cfg.DragStep,
		indicator: NewLoadingIndicator("Loading photos..."),
		loading:   true,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		loadAssetsCmd(m.ctx, m.catalog),
		tickCmd(),
	}
	if m.watcher != nil {
		cmds = append(cmds, nextWatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-3)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 3
		}

	case TickMsg:
		m.indicator.Tick()
		cmds = append(cmds, tickCmd())

	case AssetsLoadedMsg:
		m.loading = false
		if msg.Error != nil {
			m.err = msg.Error
			return m, nil
		}
		m.store.Load(msg.Assets)
		m.exhausted = m.store.Len() == 0
		if cur, ok := m.store.Current(); ok {
			if done := m.cache.Request(m.ctx, cur); done != nil {
				cmds = append(cmds, awaitClassificationCmd(done))
			}
		}

	case ClassificationMsg:
		// Owner-context cache write; stale tokens are dropped here.
		m.cache.Commit(classify.Completion(msg))

	case AssetDeletedMsg:
		if msg.Error != nil {
			m.status = fmt.Sprintf("Catalog delete failed: %v", msg.Error)
		}

	case WatchFileMsg:
		res, err := m.scanner.ImportFile(m.ctx, msg.Path)
		switch {
		case err != nil:
			m.status = fmt.Sprintf("Import failed: %s", filepath.Base(msg.Path))
		case len(res.Added) > 0:
			m.status = fmt.Sprintf("Imported %s", filepath.Base(msg.Path))
			m.exhausted = false
		}
		if res.Lookup != nil {
			cmds = append(cmds, awaitClassificationCmd(res.Lookup))
		}
		if m.watcher != nil {
			cmds = append(cmds, nextWatchFileCmd(m.watcher))
		}

	case WatchStoppedMsg:
		m.watcher = nil

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg)...)
	}

	if m.ready {
		m.updateViewport()
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewport() {
	switch {
	case m.loading:
		m.viewport.SetContent("\n  " + m.indicator.View())
	case m.exhausted && m.store.Len() == 0:
		m.viewport.SetContent(m.renderEmptyState())
	default:
		m.viewport.SetContent(m.renderAsset())
	}
}

func (m *model) handleKey(msg tea.KeyMsg) []tea.Cmd {
	th := m.engine.Thresholds()
	switch msg.String() {
	case "ctrl+c", "q":
		return []tea.Cmd{tea.Quit}
	case "left", "h":
		m.engine.Handle(m.ctx, triage.GestureEvent{Phase: triage.PhaseChanged, Magnitude: m.engine.Offset() - m.step})
	case "right", "l":
		m.engine.Handle(m.ctx, triage.GestureEvent{Phase: triage.PhaseChanged, Magnitude: m.engine.Offset() + m.step})
	case "esc":
		return m.endGesture(0)
	case "enter":
		return m.endGesture(m.engine.Offset())
	case "d", "backspace":
		return m.endGesture(th.Delete)
	case " ", "n":
		return m.endGesture(th.Advance)
	}
	return nil
}

// endGesture commits the gesture at the given final offset and schedules
// the follow-up work the transition produced.
func (m *model) endGesture(offset float64) []tea.Cmd {
	out := m.engine.Handle(m.ctx, triage.GestureEvent{Phase: triage.PhaseEnded, Magnitude: offset})

	var cmds []tea.Cmd
	if out.Removed != nil {
		cmds = append(cmds, deleteAssetCmd(m.ctx, m.catalog, out.Removed.ID))
	}
	if out.Lookup != nil {
		cmds = append(cmds, awaitClassificationCmd(out.Lookup))
	}
	if out.QueueExhausted {
		m.exhausted = true
	}

	switch out.Transition {
	case triage.TransitionDelete:
		m.status = fmt.Sprintf("Deleted %s", filepath.Base(out.Removed.Path))
	case triage.TransitionAdvance:
		m.status = ""
	case triage.TransitionCancel:
		if !out.QueueExhausted {
			m.status = ""
		}
	}
	return cmds
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		return fmt.Sprintf("\n  %s\n", errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
}

func (m model) renderHeader() string {
	title := fmt.Sprintf("Photosweep - %s", m.root)
	if m.store.Len() > 0 {
		title += fmt.Sprintf("  (%d/%d)", m.store.CurrentIndex()+1, m.store.Len())
	}
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))
	return style.Render(title)
}

func (m model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
	msg := "No more photos"
	if m.watcher != nil {
		msg += " - watching for new files"
	}
	return "\n  " + style.Render(msg)
}

func (m model) renderAsset() string {
	cur, ok := m.store.Current()
	if !ok {
		return m.renderEmptyState()
	}

	var s strings.Builder

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	s.WriteString("\n  " + nameStyle.Render(filepath.Base(cur.Path)) + "\n")
	s.WriteString("  " + metaStyle.Render(fmt.Sprintf("%dx%d", cur.Width, cur.Height)))
	if !cur.CreatedAt.IsZero() {
		s.WriteString(metaStyle.Render("  " + cur.CreatedAt.Format("2006-01-02 15:04")))
	}
	s.WriteString("\n\n  " + m.renderLabel(cur.ID) + "\n")
	s.WriteString("\n" + m.renderMeter() + "\n")

	if m.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.WriteString("\n  " + statusStyle.Render(m.status) + "\n")
	}
	s.WriteString(m.renderUpcoming())
	return s.String()
}

// renderUpcoming lists the next few queued assets after the current one.
func (m model) renderUpcoming() string {
	const preview = 8
	if m.store.Len() < 2 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	itemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var s strings.Builder
	s.WriteString("\n  " + headerStyle.Render("Up next") + "\n")

	assets := m.store.Assets()
	cursor := m.store.CurrentIndex()
	for i := 1; i <= preview && i < len(assets); i++ {
		a := assets[(cursor+i)%len(assets)]
		line := "  " + itemStyle.Render(filepath.Base(a.Path))
		if entry, ok := m.cache.Peek(a.ID); ok && entry.State == classify.StateResolved {
			line += labelStyle.Render("  " + entry.Label)
		}
		s.WriteString(line + "\n")
	}
	return s.String()
}

func (m model) renderLabel(id string) string {
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	entry, ok := m.cache.Peek(id)
	if !ok {
		return dimStyle.Render("not classified")
	}
	switch entry.State {
	case classify.StatePending:
		return m.indicator.spinner.View() + " " + dimStyle.Render("classifying...")
	case classify.StateFailed:
		return dimStyle.Render("no label")
	default:
		return labelStyle.Render(entry.Label) +
			dimStyle.Render(fmt.Sprintf(" (%.0f%%)", entry.Confidence*100))
	}
}

// renderMeter draws the drag offset between the two thresholds.
func (m model) renderMeter() string {
	const width = 41
	th := m.engine.Thresholds()
	span := th.Advance - th.Delete
	if span <= 0 {
		return ""
	}
	pos := int(math.Round((m.engine.Offset() - th.Delete) / span * float64(width-1)))
	pos = max(0, min(width-1, pos))

	var meter strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			meter.WriteString("●")
		} else {
			meter.WriteString("─")
		}
	}

	deleteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	keepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	meterStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	return fmt.Sprintf("  %s %s %s",
		deleteStyle.Render("delete"),
		meterStyle.Render(meter.String()),
		keepStyle.Render("keep"))
}

func (m model) renderFooter() string {
	info := "←/→: drag • enter: commit • esc: cancel • d: delete • space: skip • q: quit"
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return style.Render(info)
}

// Run starts the triage TUI over an opened catalog. It blocks until the
// user quits.
func Run(ctx context.Context, catalog *library.Catalog, cfg config.Config, classifier classify.Classifier, watcher *importer.Watcher) error {
	p := tea.NewProgram(
		initialModel(ctx, catalog, cfg, classifier, watcher),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
