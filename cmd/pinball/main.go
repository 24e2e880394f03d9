package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/playmatatu/pinball/internal/game"
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

	ebiten.SetWindowTitle("Space Pinball")
	ebiten.SetWindowSize(int(game.TableWidth), int(game.TableHeight))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(1000 / game.TickInterval)

	if err := ebiten.RunGame(newPinball(layout, *seed)); err != nil {
		log.Fatal(err)
	}
}
