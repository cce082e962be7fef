package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/Carmen-Shannon/oxy-atmosphere/engine/profile_loader"
	"github.com/Carmen-Shannon/oxy-atmosphere/internal/logging"
	"github.com/gdamore/tcell/v2"
)

const legend = "tab next  +/- density  [/] edge  </> mie g  r reload  s save  q quit"

// entry is one inspected profile and the file it came from, if any.
type entry struct {
	path    string
	profile atmosphere.Profile
	watcher profile_loader.Watcher
}

type scope struct {
	screen  tcell.Screen
	log     logging.Logger
	entries []entry
	current int
	samples int
	dirty   chan struct{}

	statusMu sync.Mutex
	status   string
}

func main() {
	samples := flag.Int("samples", atmosphere.DefaultSampleCount, "altitude steps per profile")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	log := logging.Noop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log = logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "json", Output: f})
	}

	s, err := newScope(flag.Args(), *samples, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atmoscope: %v\n", err)
		os.Exit(1)
	}
	defer s.close()
	s.run()
}

func newScope(paths []string, samples int, log logging.Logger) (*scope, error) {
	s := &scope{log: log, samples: samples, dirty: make(chan struct{}, 1)}

	for _, path := range paths {
		profile, err := profile_loader.Load(path)
		if err != nil {
			s.closeWatchers()
			return nil, err
		}
		w, err := profile_loader.Watch(path, profile,
			profile_loader.WithLogger(log),
			profile_loader.WithOnReload(func(err error) {
				if err != nil {
					s.setStatus(fmt.Sprintf("reload %s: %v", path, err))
				}
				s.markDirty()
			}),
		)
		if err != nil {
			s.closeWatchers()
			return nil, err
		}
		s.entries = append(s.entries, entry{path: path, profile: profile, watcher: w})
	}
	if len(s.entries) == 0 {
		s.entries = append(s.entries, entry{profile: atmosphere.NewProfile(atmosphere.WithName("default"))})
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		s.closeWatchers()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		s.closeWatchers()
		return nil, err
	}
	s.screen = screen
	return s, nil
}

func (s *scope) close() {
	s.closeWatchers()
	s.screen.Fini()
}

func (s *scope) closeWatchers() {
	for _, e := range s.entries {
		if e.watcher != nil {
			_ = e.watcher.Close()
		}
	}
}

func (s *scope) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *scope) setStatus(msg string) {
	s.statusMu.Lock()
	s.status = msg
	s.statusMu.Unlock()
	s.log.Info(context.Background(), "atmoscope status", logging.String("status", msg))
}

func (s *scope) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	s.draw()
	for {
		select {
		case ev := <-events:
			if !s.handle(ev) {
				return
			}
			s.draw()
		case <-s.dirty:
			s.draw()
		case <-ticker.C:
			s.draw()
		}
	}
}

func (s *scope) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyTab {
			s.current = (s.current + 1) % len(s.entries)
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		e := s.entries[s.current]
		switch ev.Rune() {
		case 'q':
			return false
		case '+', '=':
			e.profile.Update(func(st *atmosphere.Settings) { st.DensityScale *= 1.1 })
		case '-':
			e.profile.Update(func(st *atmosphere.Settings) { st.DensityScale /= 1.1 })
		case ']':
			e.profile.Update(func(st *atmosphere.Settings) { st.DensityEdgeSmoothness += 0.05 })
		case '[':
			e.profile.Update(func(st *atmosphere.Settings) { st.DensityEdgeSmoothness -= 0.05 })
		case '>', '.':
			e.profile.Update(func(st *atmosphere.Settings) { st.MieG += 0.02 })
		case '<', ',':
			e.profile.Update(func(st *atmosphere.Settings) { st.MieG -= 0.02 })
		case 'r':
			if e.path == "" {
				return true
			}
			if err := profile_loader.Reload(e.path, e.profile); err != nil {
				s.setStatus(err.Error())
			} else {
				s.setStatus("reloaded " + e.path)
			}
		case 's':
			if e.path == "" {
				s.setStatus("built-in profile has no file")
				return true
			}
			if err := profile_loader.Save(e.path, e.profile); err != nil {
				s.setStatus(err.Error())
			} else {
				s.setStatus("saved " + e.path)
			}
		}
	}
	return true
}

func (s *scope) draw() {
	s.screen.Clear()
	width, height := s.screen.Size()

	e := s.entries[s.current]
	settings := e.profile.Snapshot()

	header := fmt.Sprintf("%s (%d/%d)  v%d  density %.2f  edge %.2f  mie g %.2f",
		e.profile.Name(), s.current+1, len(s.entries), e.profile.Version(),
		settings.DensityScale, settings.DensityEdgeSmoothness, settings.MieG)
	s.text(0, 0, header, tcell.StyleDefault.Bold(true))
	s.text(0, height-1, legend, tcell.StyleDefault.Foreground(tcell.ColorGray))
	s.statusMu.Lock()
	status := s.status
	s.statusMu.Unlock()
	if status != "" {
		s.text(0, height-2, status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	plotTop, plotRows := 2, height-5
	if plotRows < 2 || width < 24 {
		s.screen.Show()
		return
	}

	// left half: layer densities, right half: normalized RGB extinction
	half := (width - 8) / 2
	densityLeft, extinctionLeft := 7, 8+half
	s.text(densityLeft, 1, "density  R=rayleigh M=mie O=ozone", tcell.StyleDefault)
	s.text(extinctionLeft, 1, "extinction (normalized)", tcell.StyleDefault)

	curves := atmosphere.SampleProfile(settings, s.samples)
	rayleigh := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	mie := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	ozone := tcell.StyleDefault.Foreground(tcell.ColorPurple)
	for i, r := range layout(curves, plotRows) {
		y := plotTop + i
		s.text(0, y, fmt.Sprintf("%5.2f", r.altitude), tcell.StyleDefault.Foreground(tcell.ColorGray))
		s.screen.SetContent(densityLeft-1, y, '│', nil, tcell.StyleDefault)
		s.screen.SetContent(extinctionLeft-1, y, '│', nil, tcell.StyleDefault)

		s.screen.SetContent(densityLeft+column(r.densities.Ozone, half), y, 'O', nil, ozone)
		s.screen.SetContent(densityLeft+column(r.densities.Mie, half), y, 'M', nil, mie)
		s.screen.SetContent(densityLeft+column(r.densities.Rayleigh, half), y, 'R', nil, rayleigh)

		for c, ch := range r.extinction {
			col := tcell.NewRGBColor(channel(c, 0), channel(c, 1), channel(c, 2))
			s.screen.SetContent(extinctionLeft+column(ch, half), y, '█', nil, tcell.StyleDefault.Foreground(col))
		}
	}
	s.screen.Show()
}

func (s *scope) text(x, y int, str string, style tcell.Style) {
	for i, r := range []rune(str) {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}

// channel returns full intensity when c is the channel being plotted.
func channel(c, want int) int32 {
	if c == want {
		return 255
	}
	return 40
}
