package main

import (
	"flag"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/render"
)

func main() {
	layoutPath := flag.String("layout", "", "path to a TOML table layout (default: built-in neon table)")
	seed := flag.Int64("seed", 0, "session seed (0 = time based)")
	flag.Parse()

	layout, err := game.LoadLayout(*layoutPath)
	if err != nil {
		log.Fatalf("Failed to load table layout: %v", err)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	run(screen, game.NewSession(layout, *seed))
}

// run drives the session until the player quits.
func run(screen tcell.Screen, s *game.Session) {
	colors := render.ColorsFor(s.Table.Palette)
	var left, right holdKey

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(game.TickInterval * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if quit := handleEvent(screen, s, ev, &left, &right); quit {
				return
			}

		case now := <-ticker.C:
			s.SetLeftFlipperPressed(left.pressed(now))
			s.SetRightFlipperPressed(right.pressed(now))
			s.AdvanceOneFrame()

			w, h := screen.Size()
			c := newCanvas(w, h)
			drawFrame(c, s.RenderFrame(), colors)
			c.blit(screen)
			screen.Show()
		}
	}
}

// handleEvent applies one terminal event and reports whether to quit.
func handleEvent(screen tcell.Screen, s *game.Session, ev tcell.Event, left, right *holdKey) bool {
	now := time.Now()
	switch ev := ev.(type) {
	case *tcell.EventResize:
		screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyLeft:
			left.hit(now)
		case tcell.KeyRight:
			right.hit(now)
		case tcell.KeyDown:
			s.RequestLaunch()
		case tcell.KeyEnter:
			s.RequestRestart()
		case tcell.KeyRune:
			switch ev.Rune() {
			case ' ':
				s.RequestLaunch()
			case 'q':
				return true
			}
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			break
		}
		if _, ok := game.OverlayFor(s.State); !ok {
			break
		}
		x, y := ev.Position()
		w, h := screen.Size()
		if overlayIn(w, h).Button.Contains(float64(x), float64(y)) {
			s.RequestRestart()
		}
	}
	return false
}
