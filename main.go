package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"musevoice/audio"
	"musevoice/bridge"
	"musevoice/bus"
	"musevoice/clipboard"
	"musevoice/cue"
	"musevoice/doctor"
	"musevoice/engine"
	"musevoice/hotkey"
	"musevoice/log"
	"musevoice/session"
	"musevoice/shutdown"
	"musevoice/textmerge"
	"musevoice/update"
	"musevoice/waveform"
)

var version = "dev"

// guiMode and display are set by initGUI before run() starts; in TUI mode
// run() fills them in itself.
var guiMode bool
var display Display

var shutdownOnce sync.Once
var cleanup func()

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if cleanup != nil {
			cleanup()
		}
		log.Close()
		tuiMu.Lock()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		tuiMu.Unlock()
		os.Exit(0)
	})
}

// initCrashLog routes runtime panics to a file so crashes in the TUI or a
// hidden GUI process are not lost with the terminal.
func initCrashLog() {
	dir, err := log.ResolveDir("")
	if err != nil {
		return
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		return
	}
	crashPath := filepath.Join(dir, "crash_log.txt")
	f, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}

func shortcutLabel() string {
	if runtime.GOOS == "linux" {
		return "alt+/"
	}
	return "ctrl+shift+space"
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		runUpdate()
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "login" {
		runLogin(os.Args[2:])
		return
	}

	wsFlag := flag.String("ws", "", "connect to a running engine over WebSocket (e.g. ws://localhost:8217/bus)")
	modelFlag := flag.String("model", engine.DefaultModel, "transcription model: whisper-1 or gpt-4o-transcribe")
	rewriteFlag := flag.Bool("rewrite", false, "enable result rewrite (trims trailing punctuation)")
	chatFlag := flag.Bool("chat", false, "chat dictation: drop the final period when merging")
	autoPasteFlag := flag.Bool("autopaste", true, "paste into the focused window after copying")
	pickFlag := flag.Bool("pick", false, "select microphone device interactively")
	deviceFlag := flag.String("device", "", "use named microphone device")
	gainFlag := flag.Int("gain", 0, "software input gain multiplier (0 = unity)")
	oscFlag := flag.Bool("osc", false, "synthesize input instead of capturing a microphone")
	latencyFlag := flag.Duration("latency", 800*time.Millisecond, "simulated transcription latency of the built-in engine")
	simfailFlag := flag.Bool("simfail", false, "make every built-in engine transcription fail")
	cueDirFlag := flag.String("cues", "", "directory with per-cue FLAC files (missing cues are synthesized)")
	dumpFlag := flag.String("dump", "", "directory that receives a FLAC copy of every recording")
	floorFlag := flag.Float64("floor", 40, "waveform dynamic range in dB")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "long-press threshold for hold-to-talk vs tap")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "enable pprof profiling server (e.g. localhost:6060)")
	crashFlag := flag.Bool("crash", false, "trigger synthetic panic to verify crash logging")
	headlessFlag := flag.Bool("headless", false, "no UI, drive the session with commands on stdin")
	versionFlag := flag.Bool("version", false, "print version and exit")
	doctorFlag := flag.Bool("doctor", false, "run system diagnostics and exit")
	flag.Bool("gui", false, "floating waveform window instead of the TUI (consumed before flag parsing)")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("musevoice %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Infof("update available: %s (run 'musevoice update')", rel.Version)
	})

	cfg := waveform.DefaultConfig()
	cfg.FloorDB = *floorFlag

	var hd *headlessDisplay
	if *headlessFlag && display == nil {
		hd = newHeadlessDisplay()
		display = hd
	}
	if display == nil {
		display = tuiDisplay{}
	}

	// Wire the event bus first so nothing published during engine startup
	// is lost. The built-in engine announces its idle state as soon as it
	// is constructed.
	var b bus.Bus
	var eng *engine.Engine
	var actx audio.Context

	if *wsFlag != "" {
		wb, err := bus.DialWS(context.Background(), *wsFlag)
		if err != nil {
			log.Errorf("engine connect error: %v", err)
			fmt.Fprintf(os.Stderr, "Error connecting to engine at %s: %v\n", *wsFlag, err)
			os.Exit(1)
		}
		b = wb
		log.SessionStart("ws", *modelFlag)
	} else {
		b = bus.NewMemoryBus()
		log.SessionStart("memory", *modelFlag)
	}

	commander := bridge.NewCommander(b)
	machine := session.NewMachine(commander, func(st session.Status) {
		display.Status(st)
	})

	var out cue.Output
	if hd != nil {
		// Scripted sessions stay silent.
		out = cue.NewFakeOutput()
	} else if o, oerr := cue.NewOutput(); oerr != nil {
		log.Warnf("cue output unavailable: %v", oerr)
		out = cue.NewFakeOutput()
	} else {
		out = o
	}
	player := cue.NewPlayer(out, cue.AssetLoader(*cueDirFlag))

	sink := &appSink{
		display:   display,
		player:    player,
		buffer:    textmerge.NewBuffer(),
		commander: commander,
		chatMode:  *chatFlag,
		autoPaste: *autoPasteFlag,
	}
	br := bridge.Mount(b, machine, sink)

	if *wsFlag == "" {
		if *oscFlag {
			actx = audio.NewOscContext(220, true)
		} else {
			actx, err = audio.NewContext()
			if err != nil {
				log.Warnf("audio context init error: %v, falling back to synthesized input", err)
				fmt.Fprintf(os.Stderr, "Warning: no audio backend (%v), using synthesized input\n", err)
				actx = audio.NewOscContext(220, true)
			}
		}

		var dev *audio.DeviceInfo
		if *deviceFlag != "" {
			if devices, err := actx.Devices(); err == nil {
				for i := range devices {
					if devices[i].Name == *deviceFlag {
						dev = &devices[i]
						break
					}
				}
			}
			if dev == nil {
				log.Warnf("device %q not found, using default", *deviceFlag)
			}
		} else if *pickFlag {
			dev, err = audio.SelectDevice(actx)
			if err != nil {
				log.Warnf("device selection failed: %v", err)
				fmt.Printf("Warning: device selection failed: %v\n", err)
				fmt.Println("Falling back to default device")
				dev = nil
			}
		}
		if dev != nil && audio.IsBluetooth(dev.Name) {
			log.Warnf("bluetooth microphone %q selected, expect degraded capture quality", dev.Name)
		}

		eng = engine.New(b.(*bus.MemoryBus), actx, dev, &engine.SimTranscriber{Delay: *latencyFlag, Fail: *simfailFlag}, clipboard.System{}, engine.Config{
			Model:   *modelFlag,
			Rewrite: *rewriteFlag,
			Gain:    int32(*gainFlag),
			Dump:    *dumpFlag,
		})
	} else {
		// Remote engine keeps its own config. Push ours so both sides agree.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := commander.SetModel(ctx, *modelFlag); err != nil {
			log.Warnf("set-model failed: %v", err)
		}
		if err := commander.SetRewriteEnabled(ctx, *rewriteFlag); err != nil {
			log.Warnf("set-rewrite-enabled failed: %v", err)
		}
		cancel()
	}

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("hotkey registration failed: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: global hotkey unavailable: %v\n", err)
		if diag, derr := hotkey.Diagnose(); derr == nil {
			fmt.Fprintln(os.Stderr, diag)
		}
	}
	hy := hotkey.NewHybrid(hk, *longPressFlag)
	go func() {
		for {
			select {
			case <-hy.Start():
				machine.RequestStart(context.Background())
			case <-hy.StopChan():
				machine.RequestStop(context.Background())
			}
		}
	}()

	cleanup = func() {
		br.Close()
		player.Close()
		if eng != nil {
			eng.Close()
		}
		if actx != nil {
			actx.Close()
		}
		hk.Unregister()
		b.Close()
	}

	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	go func() {
		<-sig
		gracefulShutdown()
	}()

	if guiMode {
		// Fyne owns the process lifetime; this goroutine only feeds it.
		select {}
	}

	if hd != nil {
		driveHeadless(machine, hd)
		gracefulShutdown()
		return
	}

	p := NewTUIProgram(machine, cfg, shortcutLabel())
	setTUIProgram(p)
	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
	}
	gracefulShutdown()
}
