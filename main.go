package main

import (
	"flag"
	"os"
	"runtime"
	"time"

	"chip8emu/chip8"

	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// The CHIP-8 virtual machine.
	///
	VM *chip8.CHIP_8

	/// The SDL Window and Renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer

	/// True if instruction stepping is suspended; rendering keeps going.
	///
	Paused bool

	logger *log.Logger
)

func init() {
	runtime.LockOSThread()
}

func main() {
	scale := flag.Int("scale", 10, "window scale factor")
	speed := flag.Int("speed", 700, "instructions per second")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger = createLogger(*debug)

	file := flag.Arg(0)
	if file == "" {
		f, err := dialog.File().Filter("CHIP-8 ROM", "ch8", "rom").Load()
		if err != nil {
			logger.Fatal("No ROM selected", log.Err(err))
		}
		file = f
	}

	program, err := os.ReadFile(file)
	if err != nil {
		logger.Fatal("Reading ROM", log.Err(err))
	}

	if VM, err = chip8.LoadROM(program); err != nil {
		logger.Fatal("Loading ROM", log.Err(err))
	}

	logger.Info("ROM loaded",
		log.String("file", file),
		log.Int("bytes", len(program)))

	if err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		logger.Fatal("SDL init", log.Err(err))
	}
	defer sdl.Quit()

	w := int32(chip8.DisplayWidth * *scale)
	h := int32(chip8.DisplayHeight * *scale)

	if Window, Renderer, err = sdl.CreateWindowAndRenderer(w, h, sdl.WINDOW_SHOWN); err != nil {
		logger.Fatal("Creating window", log.Err(err))
	}
	defer Window.Destroy()

	Window.SetTitle("CHIP-8")

	// initialize subsystems
	InitScreen()
	InitAudio()

	// instruction and frame pacing
	clock := time.NewTicker(time.Second / time.Duration(*speed))
	video := time.NewTicker(time.Second / 60)

	// loop until window closed or user quit
	for ProcessEvents() {
		select {
		case <-video.C:
			if !Paused {
				VM.Tick()
			}
			PumpAudio()
			Refresh()
		case <-clock.C:
			if !Paused {
				stepVM()
			}
		}
	}
}

/// stepVM executes a single instruction. A fault pauses emulation so the
/// machine state stays inspectable instead of crashing the process.
///
func stepVM() {
	if err := VM.Step(); err != nil {
		logger.Error("Emulation fault", log.Err(err))

		Paused = true
		DebugRegisters()
		DebugAssembly()
	}
}

func createLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}

	return log.NewWithConfig(cfg)
}
