package ui

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"bookprog/internal/progress"
	"bookprog/internal/status"
	"bookprog/internal/tracker"
)

// Producer emits progress messages to rep until its work is done.
type Producer func(ctx context.Context, rep progress.Reporter) error

// Options configures the model.
type Options struct {
	Title        string
	BarWidth     int
	Padding      int // columns subtracted from the window width for the status line
	MeasureCache int
	Captions     status.Captions
	Logger       *slog.Logger
}

const (
	defaultBarWidth = 40
	defaultPadding  = 8
	meterTitleWidth = 7
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	produce Producer
	coord   *tracker.Coordinator
	label   *statusLabel
	parts   meter
	tracks  meter
	spinner spinner.Model

	title    string
	barWidth int
	padding  int
	log      *slog.Logger

	done bool
	err  error

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, produce Producer, o Options) (Model, error) {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	if o.BarWidth <= 0 {
		o.BarWidth = defaultBarWidth
	}
	if o.Padding <= 0 {
		o.Padding = defaultPadding
	}
	if o.Title == "" {
		o.Title = "bookprog"
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var ms status.Measurer = status.MeasureFunc(measure)
	if o.MeasureCache > 0 {
		cm, err := status.NewCachedMeasurer(ms, o.MeasureCache)
		if err != nil {
			cancel()
			return Model{}, err
		}
		ms = cm
	}

	caps := status.DefaultCaptions().Merge(o.Captions)
	sp := spinner.New()
	sp.Style = sty.Spinner

	m := Model{
		ctx:      c,
		cancel:   cancel,
		produce:  produce,
		label:    &statusLabel{width: 80 - o.Padding},
		parts:    newMeter("Parts", o.BarWidth),
		tracks:   newMeter("Tracks", o.BarWidth),
		spinner:  sp,
		title:    o.Title,
		barWidth: o.BarWidth,
		padding:  o.Padding,
		log:      o.Logger,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
	m.coord = tracker.New(m.parts.gauge, m.tracks.gauge, m.label, ms,
		tracker.WithCaptions(caps),
		tracker.WithLogger(o.Logger),
	)
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenEventsCmd(), m.startProducerCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.label.width = max(msg.Width-m.padding, 0)
		bar := min(m.barWidth, max(msg.Width-m.padding-meterTitleWidth, 10))
		m.parts.bar.Width = bar
		m.tracks.bar.Width = bar
		m.coord.Books().Render()
		return m, nil

	case progressMsg:
		m.coord.Apply(msg.M)
		return m, m.listenEventsCmd()

	case producerDoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Err != nil {
			m.log.Error("producer failed", "err", msg.Err)
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewMeters() + "\n" + m.viewStatus() + "\n"
}

// Err returns the producer's error, or context.Canceled after the user quit.
func (m Model) Err() error {
	return m.err
}

// Coordinator returns the coordinator the model feeds.
func (m Model) Coordinator() *tracker.Coordinator {
	return m.coord
}

// listenEventsCmd reads exactly one event. A new listener is only issued
// after a channel event has been handled so events stay in order.
func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return producerDoneMsg{Err: m.ctx.Err()}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) startProducerCmd() tea.Cmd {
	return func() tea.Msg {
		if m.produce == nil {
			return nil
		}
		go m.runProducer()
		return nil
	}
}

func (m Model) runProducer() {
	err := m.produce(m.ctx, teaReporter{ctx: m.ctx, ch: m.eventCh})
	select {
	case m.eventCh <- producerDoneMsg{Err: err}:
	case <-m.ctx.Done():
	}
}

// teaReporter forwards progress messages into the event loop. Every message
// counts, so Report blocks until the loop has room or the run is cancelled.
type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Report(msg *progress.Message) {
	if msg == nil {
		return
	}
	select {
	case r.ch <- progressMsg{M: msg}:
	case <-r.ctx.Done():
	}
}
