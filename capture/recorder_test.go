package capture

import (
	"errors"
	"testing"
)

func TestGetArgs(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		codec string
		tag   bool
	}{
		{"h264", Options{Output: "out.mp4", Width: 640, Height: 360, FPS: 30}, "libx264", false},
		{"hevc mp4", Options{Output: "out.mp4", Width: 640, Height: 360, FPS: 30, Codec: "hevc"}, "libx265", true},
		{"hevc mkv", Options{Output: "out.mkv", Width: 640, Height: 360, FPS: 30, Codec: "hevc"}, "libx265", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := getArgs(tt.opts)
			if in["s"] != "640x360" || in["pix_fmt"] != "rgba" || in["r"] != 30 {
				t.Errorf("input args = %v", in)
			}
			if out["vf"] != "vflip" {
				t.Errorf("frames must be flipped: %v", out)
			}
			if out["c:v"] != tt.codec {
				t.Errorf("codec = %v, want %s", out["c:v"], tt.codec)
			}
			if _, ok := out["tag:v"]; ok != tt.tag {
				t.Errorf("tag:v present = %v", ok)
			}
		})
	}
}

func TestStartRejectsBadOptions(t *testing.T) {
	for _, opts := range []Options{
		{Output: "x.mp4", Width: 0, Height: 10, FPS: 30},
		{Output: "x.mp4", Width: 10, Height: 10, FPS: 0},
		{Width: 10, Height: 10, FPS: 30},
	} {
		if _, err := Start(opts); err == nil {
			t.Errorf("Start(%+v) succeeded", opts)
		}
	}
}

func TestWriteFrame(t *testing.T) {
	r := newRecorder(Options{Width: 2, Height: 2, FPS: 1})
	if err := r.WriteFrame(make([]byte, 3)); err == nil {
		t.Error("short frame accepted")
	}
	if err := r.WriteFrame(make([]byte, 16)); err != nil {
		t.Fatal(err)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d", r.Frames())
	}
	f := <-r.frames
	if f.PTS != 0 || len(f.Pixels) != 16 {
		t.Errorf("frame = %+v", f)
	}

	r.done <- nil
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteFrame(make([]byte, 16)); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close = %v", err)
	}
}
