// Package capture records the preview surface to a video file through an
// ffmpeg process.
package capture

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrClosed is returned by WriteFrame after Close.
var ErrClosed = errors.New("recorder closed")

// Options configures a recording.
type Options struct {
	Output     string
	Width      int
	Height     int
	FPS        int
	Codec      string // "h264" or "hevc"
	FFmpegPath string
}

// Frame is one RGBA8 frame, bottom row first as read back from GL.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Recorder feeds frames to ffmpeg from a background goroutine. Frames are
// written from the render thread and encoded without blocking it until
// the queue fills.
type Recorder struct {
	opts      Options
	frameSize int
	frames    chan *Frame
	done      chan error
	pts       int64

	closeOnce sync.Once
	closed    bool
	err       error
}

// Start launches ffmpeg and returns a recorder ready for frames.
func Start(opts Options) (*Recorder, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid recording size %dx%d at %d fps", opts.Width, opts.Height, opts.FPS)
	}
	if opts.Output == "" {
		return nil, errors.New("no output file for recording")
	}
	r := newRecorder(opts)

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts)
	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- ffmpegCmd.Run()
	}()
	go r.runEncoder(pipeWriter, errc)

	log.Info("Recording started", "output", opts.Output, "width", opts.Width, "height", opts.Height, "fps", opts.FPS)
	return r, nil
}

func newRecorder(opts Options) *Recorder {
	return &Recorder{
		opts:      opts,
		frameSize: opts.Width * opts.Height * 4,
		frames:    make(chan *Frame, 5),
		done:      make(chan error, 1),
	}
}

// runEncoder is the consumer: it writes queued frames into ffmpeg's stdin.
func (r *Recorder) runEncoder(w *io.PipeWriter, errc <-chan error) {
	var writeErr error
	for frame := range r.frames {
		if writeErr != nil {
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
			log.Error("Recording failed", "err", writeErr)
		}
	}
	w.Close()
	err := <-errc
	if writeErr != nil {
		err = errors.Join(writeErr, err)
	}
	r.done <- err
}

// WriteFrame queues one frame of RGBA8 pixels.
func (r *Recorder) WriteFrame(pixels []byte) error {
	if r.closed {
		return ErrClosed
	}
	if len(pixels) != r.frameSize {
		return fmt.Errorf("frame has %d bytes, want %d", len(pixels), r.frameSize)
	}
	r.frames <- &Frame{Pixels: pixels, PTS: r.pts}
	r.pts++
	return nil
}

// Frames reports how many frames have been queued.
func (r *Recorder) Frames() int64 { return r.pts }

// Close flushes the queue and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.closed = true
		close(r.frames)
		r.err = <-r.done
		if r.err != nil {
			log.Error("ffmpeg exited with error", "err", r.err)
		} else {
			log.Info("Recording finished", "output", r.opts.Output, "frames", r.pts)
		}
	})
	return r.err
}

func getArgs(opts Options) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"r":       opts.FPS,
	}

	// GL rows arrive bottom-up.
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}
	if opts.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(opts.Output, ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}
