package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	options "github.com/richinsley/termshader/options"
)

func init() {
	runtime.LockOSThread()
}

func parseFlags() *options.ShaderOptions {
	opts := &options.ShaderOptions{
		ShaderFile:       flag.String("shader", "", "Background shader file (Shadertoy-style mainImage)"),
		CursorShaderFile: flag.String("cursor-shader", "", "Cursor shader file"),
		ConfigFile:       flag.String("config", "", "YAML shader configuration file"),
		Help:             flag.Bool("help", false, "Show help message"),
		Width:            flag.Int("width", 1280, "Window width"),
		Height:           flag.Int("height", 720, "Window height"),
		Chain:            flag.String("chain", "background-first", "Order when both shaders are set: background-first or cursor-first"),
		Opacity:          flag.Float64("opacity", 1.0, "Window opacity (0-1)"),
		KeepTextOpaque:   flag.Bool("keep-text-opaque", false, "Keep terminal text opaque regardless of window opacity"),
		Record:           flag.Bool("record", false, "Render off-screen and record to -output"),
		OutputFile:       flag.String("output", "output.mp4", "Output file name for recording"),
		Duration:         flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:              flag.Int("fps", 60, "Frames per second for recording"),
		Codec:            flag.String("codec", "h264", "Recording codec: h264 or hevc"),
		FFMPEGPath:       flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Verbose:          flag.Bool("verbose", false, "Enable debug logging"),
	}
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()
	if *opts.Help {
		fmt.Println("Terminal shader effect previewer")
		flag.PrintDefaults()
		return
	}

	log.SetReportTimestamp(true)
	if *opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := opts.Validate(); err != nil {
		log.Error("Invalid options", "err", err)
		flag.Usage()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		log.Fatal("termshader failed", "err", err)
	}
}
