// Package tui is the interactive terminal front end: pick an algorithm,
// tune its inputs and watch it run step by step.
package tui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/config"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/metrics"
	"github.com/san-kum/dsaviz/internal/visual"
	"github.com/san-kum/dsaviz/internal/visualizer"
)

const (
	frameBuffer  = 64
	historyLimit = 200
	speedStep    = 10

	sortSizeMin   = 8
	sortSizeMax   = 25
	searchSizeMin = 8
	searchSizeMax = 20
	gridMax       = 8
)

type screen int

const (
	screenMenu screen = iota
	screenConfig
	screenRun
)

type Options struct {
	Config *config.Config
	// Pacer replaces real-time pacing; tests use engine.InstantPacer.
	Pacer engine.Pacer
	Theme Theme
}

type frameMsg engine.Frame

type doneMsg struct {
	handle *visualizer.Handle
	result visualizer.Result
	err    error
}

// field is one editable integer input on the config screen.
type field struct {
	name   string
	lo, hi int
	get    func(*config.Config) int
	set    func(*config.Config, int)
}

type App struct {
	ctx    context.Context
	reg    *algorithms.Registry
	specs  []algorithms.Spec
	cfg    *config.Config
	theme  Theme
	viz    map[visual.Kind]*visualizer.Visualizer
	frames chan engine.Frame
	unsub  []func()

	screen  screen
	cursor  int
	spec    algorithms.Spec
	fields  []field
	fcursor int
	editing bool
	editBuf string

	scene    visual.Scene
	step     int
	lastKind engine.StepKind
	progress []float64
	order    []int
	handle   *visualizer.Handle
	result   *visualizer.Result
	msg      string

	width, height int
}

func NewApp(ctx context.Context, opts Options) App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	theme := opts.Theme
	if theme.Name == "" {
		theme = ThemeTerminal
	}
	reg := algorithms.NewRegistry()

	m := App{
		ctx:    ctx,
		reg:    reg,
		specs:  reg.List(),
		cfg:    cfg,
		theme:  theme,
		viz:    make(map[visual.Kind]*visualizer.Visualizer),
		frames: make(chan engine.Frame, frameBuffer),
		width:  80,
		height: 24,
	}
	for i, s := range m.specs {
		if s.Name == cfg.Algorithm {
			m.cursor = i
		}
	}

	vopts := []visualizer.Option{
		visualizer.WithRegistry(reg),
		visualizer.WithSpeed(cfg.Speed),
		visualizer.WithDelays(cfg.Delays),
	}
	if opts.Pacer != nil {
		vopts = append(vopts, visualizer.WithPacer(opts.Pacer))
	}
	for _, kind := range []visual.Kind{visual.KindArray, visual.KindGraph, visual.KindTree} {
		v := visualizer.New(kind, vopts...)
		// Frames are dropped when the UI falls behind; the final scene is
		// re-read from the snapshot once the run is done.
		m.unsub = append(m.unsub, v.Subscribe(engine.ObserverFunc(func(f engine.Frame) {
			select {
			case m.frames <- f:
			default:
			}
		})))
		m.viz[kind] = v
	}
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if app, ok := final.(App); ok {
		app.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close cancels every run and drops the frame subscriptions.
func (m App) Close() {
	for _, v := range m.viz {
		_ = v.Cancel(nil)
	}
	for _, fn := range m.unsub {
		fn()
	}
}

func (m App) Init() tea.Cmd { return waitFrame(m.frames) }

func waitFrame(ch <-chan engine.Frame) tea.Cmd {
	return func() tea.Msg { return frameMsg(<-ch) }
}

func waitDone(ctx context.Context, h *visualizer.Handle) tea.Cmd {
	return func() tea.Msg {
		res, err := h.Wait(context.WithoutCancel(ctx))
		return doneMsg{handle: h, result: res, err: err}
	}
}

func (m App) current() *visualizer.Visualizer { return m.viz[m.spec.Scene] }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case frameMsg:
		m.observe(engine.Frame(msg))
		return m, waitFrame(m.frames)
	case doneMsg:
		if msg.handle != m.handle {
			return m, nil
		}
		m.handle = nil
		res := msg.result
		m.result = &res
		m.scene = m.current().Snapshot()
		m.step = res.StepsTaken
		if msg.err != nil {
			m.msg = msg.err.Error()
		}
		return m, nil
	}
	return m, nil
}

func (m *App) observe(f engine.Frame) {
	if m.screen != screenRun || f.Scene.Kind != m.spec.Scene {
		return
	}
	m.scene = f.Scene
	m.step = f.Step
	m.lastKind = f.Kind
	if !f.Counted() {
		return
	}
	m.progress = append(m.progress, metrics.Progress(f.Scene))
	if len(m.progress) > historyLimit {
		m.progress = m.progress[1:]
	}
	if f.Kind == engine.StepEmit {
		for _, n := range f.Scene.Tree.Nodes {
			if n.Tag == visual.TreeCurrent {
				m.order = append(m.order, n.Value)
			}
		}
	}
}

func (m App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}
	switch m.screen {
	case screenMenu:
		return m.menuKey(msg)
	case screenConfig:
		return m.configKey(msg)
	default:
		return m.runKey(msg)
	}
}

func (m App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.specs)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.spec = m.specs[m.cursor]
		m.cfg.Algorithm = m.spec.Name
		m.fields = fieldsFor(m.spec, m.cfg)
		m.fcursor = 0
		m.msg = ""
		m.screen = screenConfig
	}
	return m, nil
}

func (m App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.Atoi(m.editBuf); err == nil {
				m.setField(v)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.screen = screenMenu
	case "up", "k":
		if m.fcursor > 0 {
			m.fcursor--
		}
	case "down", "j":
		if m.fcursor < len(m.fields)-1 {
			m.fcursor++
		}
	case "left", "h":
		if len(m.fields) > 0 {
			m.setField(m.fields[m.fcursor].get(m.cfg) - 1)
		}
	case "right", "l":
		if len(m.fields) > 0 {
			m.setField(m.fields[m.fcursor].get(m.cfg) + 1)
		}
	case "enter", " ":
		if len(m.fields) > 0 {
			m.editing = true
			m.editBuf = strconv.Itoa(m.fields[m.fcursor].get(m.cfg))
		}
	case "s":
		m.screen = screenRun
		m.msg = ""
		if err := m.ensureData(); err != nil {
			m.msg = err.Error()
			return m, tea.ClearScreen
		}
		cmd := m.start()
		return m, tea.Batch(tea.ClearScreen, cmd)
	}
	return m, nil
}

func (m *App) setField(v int) {
	if len(m.fields) == 0 {
		return
	}
	f := m.fields[m.fcursor]
	f.set(m.cfg, max(f.lo, min(f.hi, v)))
}

// ensureData regenerates only when the inputs changed, so a tree keeps the
// nodes inserted by earlier runs.
func (m *App) ensureData() error {
	v := m.current()
	want := m.cfg.DataParams(m.spec)
	if got, ok := v.GenParams(); ok && reflect.DeepEqual(got, want) {
		m.scene = v.Snapshot()
		return nil
	}
	if err := v.Cancel(nil); err != nil {
		return err
	}
	scene, err := v.Generate(want)
	if err != nil {
		return err
	}
	m.scene = scene
	m.clearRun()
	return nil
}

func (m *App) clearRun() {
	m.step = 0
	m.lastKind = ""
	m.progress = nil
	m.order = nil
	m.result = nil
}

func (m *App) start() tea.Cmd {
	h, err := m.current().Start(m.ctx, m.spec.Name, m.cfg.Params)
	if err != nil {
		m.msg = err.Error()
		return nil
	}
	m.clearRun()
	m.msg = ""
	m.handle = h
	return waitDone(m.ctx, h)
}

func (m App) runKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.current()
	m.msg = ""
	var err error
	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "esc":
		_ = v.Cancel(nil)
		m.handle = nil
		m.screen = screenConfig
		m.fields = fieldsFor(m.spec, m.cfg)
		return m, tea.ClearScreen
	case "s", "enter":
		cmd := m.start()
		return m, cmd
	case " ", "p":
		if v.Status() == visualizer.StatusPaused {
			err = v.Resume()
		} else {
			err = v.Pause()
		}
	case "n":
		err = v.Step()
	case "c":
		err = v.Cancel(nil)
	case "r":
		err = v.Reset()
		m.scene = v.Snapshot()
		m.clearRun()
	case "g":
		m.cfg.Data.Seed++
		err = m.ensureData()
	case "+", "=":
		err = v.SetSpeed(min(engine.MaxSpeed, v.Speed()+speedStep))
	case "-", "_":
		err = v.SetSpeed(max(engine.MinSpeed, v.Speed()-speedStep))
	case "left", "h", "right", "l":
		delta := 1
		if s := msg.String(); s == "left" || s == "h" {
			delta = -1
		}
		m.nudgeParam(delta)
	}
	if err != nil {
		m.msg = err.Error()
	}
	return m, nil
}

// nudgeParam changes the algorithm's own input: the target, the inserted
// value or the start node.
func (m *App) nudgeParam(delta int) {
	p := &m.cfg.Params
	switch {
	case m.spec.Family == algorithms.FamilySearch:
		p.Target = max(algorithms.ValueMin, min(algorithms.ValueMax, p.Target+delta))
	case m.spec.Family == algorithms.FamilyTree:
		p.Value = max(algorithms.ValueMin, min(algorithms.ValueMax, p.Value+delta))
	case m.spec.Family == algorithms.FamilyGraph:
		p.Start = max(0, min(len(m.scene.Nodes)-1, p.Start+delta))
	}
}

func fieldsFor(spec algorithms.Spec, cfg *config.Config) []field {
	size := func(lo, hi, def int) field {
		if cfg.Data.Size == 0 {
			cfg.Data.Size = def
		}
		cfg.Data.Size = max(lo, min(hi, cfg.Data.Size))
		return field{"size", lo, hi,
			func(c *config.Config) int { return c.Data.Size },
			func(c *config.Config, v int) { c.Data.Size = v }}
	}
	seed := field{"seed", 0, 1 << 30,
		func(c *config.Config) int { return int(c.Data.Seed) },
		func(c *config.Config, v int) { c.Data.Seed = int64(v) }}
	target := field{"target", algorithms.ValueMin, algorithms.ValueMax,
		func(c *config.Config) int { return c.Params.Target },
		func(c *config.Config, v int) { c.Params.Target = v }}
	value := field{"value", algorithms.ValueMin, algorithms.ValueMax,
		func(c *config.Config) int { return c.Params.Value },
		func(c *config.Config, v int) { c.Params.Value = v }}

	switch {
	case spec.Family == algorithms.FamilySort:
		return []field{size(sortSizeMin, sortSizeMax, dataset.DefaultSortSize), seed}
	case spec.Name == "binary":
		return []field{size(searchSizeMin, searchSizeMax, dataset.DefaultSearchSize), target}
	case spec.Family == algorithms.FamilySearch:
		return []field{size(searchSizeMin, searchSizeMax, dataset.DefaultSearchSize), seed, target}
	case spec.Family == algorithms.FamilyGraph:
		if cfg.Data.Rows == 0 && cfg.Data.Cols == 0 {
			cfg.Data.Rows, cfg.Data.Cols = dataset.DefaultRows, dataset.DefaultCols
		}
		return []field{
			{"rows", 1, gridMax,
				func(c *config.Config) int { return c.Data.Rows },
				func(c *config.Config, v int) { c.Data.Rows = v }},
			{"cols", 1, gridMax,
				func(c *config.Config) int { return c.Data.Cols },
				func(c *config.Config, v int) { c.Data.Cols = v }},
			{"start", 0, gridMax*gridMax - 1,
				func(c *config.Config) int { return c.Params.Start },
				func(c *config.Config, v int) { c.Params.Start = v }},
		}
	case spec.Name == "insert" || spec.Name == "search":
		return []field{value}
	default:
		return nil
	}
}

func (m App) View() string {
	switch m.screen {
	case screenConfig:
		return m.viewConfig()
	case screenRun:
		return m.viewRun()
	default:
		return m.viewMenu()
	}
}

func (m App) viewMenu() string {
	t := m.theme
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(t.style(ToneMuted).Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + t.accent().Render("d s a v i z") + "\n")
	b.WriteString(t.style(ToneMuted).Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")

	var family algorithms.Family
	for i, s := range m.specs {
		if s.Family != family {
			family = s.Family
			b.WriteString("\n      " + t.muted().Render(string(family)) + "\n")
		}
		if i == m.cursor {
			b.WriteString("      " + t.accent().Render("▸ ") + t.text().Render(fmt.Sprintf("%-12s", s.Name)) + t.muted().Render(s.Title) + "\n")
		} else {
			b.WriteString("        " + t.muted().Render(fmt.Sprintf("%-12s", s.Name)) + t.style(ToneMuted).Render(s.Title) + "\n")
		}
	}
	b.WriteString("\n" + t.muted().Render("      ↑↓ select   enter configure   q quit") + "\n")
	return b.String()
}

func (m App) viewConfig() string {
	t := m.theme
	var b strings.Builder
	b.WriteString("\n      " + t.accent().Render(m.spec.Name) + "  " + t.muted().Render(m.spec.Title) + "\n")
	b.WriteString(t.style(ToneMuted).Render("      "+strings.Repeat("─", 30)) + "\n\n")
	if len(m.fields) == 0 {
		b.WriteString("        " + t.muted().Render("no inputs") + "\n")
	}
	for i, f := range m.fields {
		val := fmt.Sprintf("%6d", f.get(m.cfg))
		if m.editing && i == m.fcursor {
			val = fmt.Sprintf("%6s", m.editBuf+"▋")
		}
		if i == m.fcursor {
			b.WriteString("      " + t.accent().Render("▸ ") + t.text().Render(fmt.Sprintf("%-10s", f.name)) + t.style(TonePivot).Render(val) + "\n")
		} else {
			b.WriteString("        " + t.muted().Render(fmt.Sprintf("%-10s", f.name)) + t.muted().Render(val) + "\n")
		}
	}
	b.WriteString("\n" + t.muted().Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

func (m App) viewRun() string {
	t := m.theme
	v := m.current()
	status := v.Status()

	var b strings.Builder
	icon := t.style(ToneDone).Render("●")
	switch status {
	case visualizer.StatusPaused:
		icon = t.style(ToneActive).Render("○")
	case visualizer.StatusCancelled, visualizer.StatusFailed:
		icon = t.style(ToneWrite).Render("■")
	case visualizer.StatusIdle, visualizer.StatusCompleted:
		icon = t.muted().Render("·")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s\n", icon, t.accent().Render(m.spec.Name), t.text().Render(string(status)),
		t.muted().Render(fmt.Sprintf("speed %d  step %d  %s", v.Speed(), m.step, m.paramLabel())))

	if len(m.progress) > 0 && m.spec.Family == algorithms.FamilySort {
		start := m.progress[0]
		frac := 0.0
		if start > 0 {
			frac = 1 - m.progress[len(m.progress)-1]/start
		}
		b.WriteString("   " + t.progressBar(frac, 36) + "\n")
	}
	b.WriteString("\n" + RenderScene(m.scene, t) + "\n")

	if len(m.progress) > 1 {
		chart := asciigraph.Plot(m.progress, asciigraph.Height(4), asciigraph.Width(40), asciigraph.Caption(progressCaption(m.spec.Family)))
		for _, line := range strings.Split(chart, "\n") {
			b.WriteString("   " + t.muted().Render(line) + "\n")
		}
	}
	if len(m.order) > 0 {
		b.WriteString("   " + t.muted().Render("order ") + t.text().Render(renderOrder(m.order)) + "\n")
	}
	if m.result != nil {
		b.WriteString("   " + m.viewResult(*m.result) + "\n")
	}
	if m.msg != "" {
		b.WriteString("   " + t.style(ToneWrite).Render(m.msg) + "\n")
	}
	b.WriteString("\n" + t.muted().Render("   s start  space pause  n step  c cancel  r reset  g new data  ±speed  ←→ input  esc back") + "\n")
	return b.String()
}

func (m App) paramLabel() string {
	switch m.spec.Family {
	case algorithms.FamilySearch:
		return fmt.Sprintf("target %d", m.cfg.Params.Target)
	case algorithms.FamilyGraph:
		return fmt.Sprintf("start %d", m.cfg.Params.Start)
	case algorithms.FamilyTree:
		if m.spec.Name == "insert" || m.spec.Name == "search" {
			return fmt.Sprintf("value %d", m.cfg.Params.Value)
		}
	}
	return ""
}

func (m App) viewResult(res visualizer.Result) string {
	t := m.theme
	parts := []string{fmt.Sprintf("%s in %d steps", res.Status, res.StepsTaken)}
	if res.Found != nil {
		if *res.Found && res.Index != nil {
			parts = append(parts, fmt.Sprintf("found at %d", *res.Index))
		} else if *res.Found {
			parts = append(parts, "found")
		} else {
			parts = append(parts, "not found")
		}
	}
	names := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", k, res.Metrics[k]))
	}
	return t.text().Render(strings.Join(parts, "  "))
}

func progressCaption(f algorithms.Family) string {
	if f == algorithms.FamilySort {
		return "inversions"
	}
	return "touched"
}
