package tensor

import (
	"bytes"
	"testing"
)

func TestShape_Cube(t *testing.T) {
	s := Cube(128)
	if s.Width != 128 || s.Height != 128 || s.Frames != 128 {
		t.Fatalf("Cube(128) = %+v", s)
	}
	if s.FrameBytes() != 128*128*4 {
		t.Errorf("FrameBytes = %d", s.FrameBytes())
	}
	if s.TotalBytes() != 128*128*128*4 {
		t.Errorf("TotalBytes = %d", s.TotalBytes())
	}
}

func TestShape_VoxelIndex(t *testing.T) {
	s := Cube(128)
	tests := []struct {
		x, y, z, want int
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 4},
		{0, 1, 0, 128 * 4},
		{0, 0, 1, 128 * 128 * 4},
	}
	for _, tt := range tests {
		if got := s.VoxelIndex(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("VoxelIndex(%d,%d,%d) = %d, want %d", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}

func TestBuildAndExtract(t *testing.T) {
	s := Shape{Width: 2, Height: 2, Frames: 3}
	frames := make([][]byte, 3)
	for i := range frames {
		f := make([]byte, s.FrameBytes())
		for j := range f {
			f[j] = byte(i*100 + j)
		}
		frames[i] = f
	}

	tn, err := Build(frames, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(tn) != s.TotalBytes() {
		t.Fatalf("len = %d, want %d", len(tn), s.TotalBytes())
	}

	for i := range frames {
		got, err := ExtractFrame(tn, s, i)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, frames[i]) {
			t.Errorf("frame %d does not round-trip", i)
		}
	}

	if _, err := ExtractFrame(tn, s, 3); err == nil {
		t.Error("ExtractFrame accepted out-of-range index")
	}
}

func TestBuild_RejectsMismatch(t *testing.T) {
	s := Shape{Width: 2, Height: 2, Frames: 2}
	if _, err := Build([][]byte{make([]byte, 16)}, s); err == nil {
		t.Error("Build accepted wrong frame count")
	}
	if _, err := Build([][]byte{make([]byte, 16), make([]byte, 15)}, s); err == nil {
		t.Error("Build accepted short frame")
	}
}

func TestPreview_Downsamples(t *testing.T) {
	s := Shape{Width: 32, Height: 32, Frames: 2}
	frames := make([][]byte, 2)
	for i := range frames {
		f := make([]byte, s.FrameBytes())
		for p := 0; p < len(f); p += 4 {
			f[p], f[p+1], f[p+2], f[p+3] = 200, 100, 50, 255
		}
		frames[i] = f
	}

	pv, err := Preview(frames, s, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(pv) != 8*8*4*2 {
		t.Fatalf("len = %d, want %d", len(pv), 8*8*4*2)
	}
	// A constant frame stays constant under resampling.
	if pv[0] != 200 || pv[1] != 100 || pv[2] != 50 || pv[3] != 255 {
		t.Errorf("preview pixel = %v", pv[:4])
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 7)
	}

	var buf bytes.Buffer
	if err := WriteCompressed(&buf, data); err != nil {
		t.Fatal(err)
	}
	if buf.Len() >= len(data) {
		t.Errorf("compressed size %d not below raw %d for repetitive data", buf.Len(), len(data))
	}

	got, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("tensor does not round-trip through zstd")
	}
}
