package layershell

import (
	"testing"

	"github.com/neurlang/wayland/wl"
)

func TestOutputDoneBatching(t *testing.T) {
	o := &Output{registryName: 1}

	o.applyGeometry(0, 0, 600, 340, 0, "ACME", "PixelMax")
	o.applyMode(wl.OutputModeCurrent, 1920, 1080, 60000)
	o.applyScale(2)

	// Nothing visible before the done marker.
	if o.Ready() {
		t.Fatalf("output ready before done")
	}
	if w, h := o.PixelSize(); w != 0 || h != 0 {
		t.Fatalf("pixel size visible before done: %dx%d", w, h)
	}

	o.commit()

	if !o.Ready() {
		t.Fatalf("output not ready after done")
	}
	if w, h := o.PixelSize(); w != 1920 || h != 1080 {
		t.Errorf("pixel size = %dx%d, want 1920x1080", w, h)
	}
	if o.Scale() != 2 {
		t.Errorf("scale = %d, want 2", o.Scale())
	}
	if maker, model := o.Model(); maker != "ACME" || model != "PixelMax" {
		t.Errorf("model = %q %q", maker, model)
	}
	// Without xdg-output the logical size falls back to mode/scale.
	if w, h := o.Size(); w != 960 || h != 540 {
		t.Errorf("logical size = %dx%d, want 960x540", w, h)
	}
}

func TestOutputBurstAtomicity(t *testing.T) {
	o := &Output{registryName: 1}
	o.applyMode(wl.OutputModeCurrent, 1920, 1080, 60000)
	o.applyScale(1)
	o.commit()

	// A new burst arrives; reads in between must see the old state.
	o.applyMode(wl.OutputModeCurrent, 2560, 1440, 144000)
	o.applyScale(2)

	if w, h := o.PixelSize(); w != 1920 || h != 1080 {
		t.Errorf("mid-burst pixel size = %dx%d, want previous 1920x1080", w, h)
	}
	if o.Scale() != 1 {
		t.Errorf("mid-burst scale = %d, want previous 1", o.Scale())
	}

	o.commit()
	if w, h := o.PixelSize(); w != 2560 || h != 1440 {
		t.Errorf("post-burst pixel size = %dx%d, want 2560x1440", w, h)
	}
}

func TestOutputNonCurrentModeIgnored(t *testing.T) {
	o := &Output{registryName: 1}
	o.applyMode(wl.OutputModeCurrent, 1920, 1080, 60000)
	o.applyMode(0, 1280, 720, 60000) // advertised but not current
	o.commit()

	if w, h := o.PixelSize(); w != 1920 || h != 1080 {
		t.Errorf("pixel size = %dx%d, want 1920x1080", w, h)
	}
}

func TestOutputLogicalGeometryPreferred(t *testing.T) {
	o := &Output{registryName: 1}
	o.applyMode(wl.OutputModeCurrent, 2560, 1440, 60000)
	o.applyScale(2)
	o.applyLogicalPosition(100, 200)
	o.applyLogicalSize(1280, 720)
	o.commit()

	if x, y := o.Position(); x != 100 || y != 200 {
		t.Errorf("position = (%d,%d), want (100,200)", x, y)
	}
	if w, h := o.Size(); w != 1280 || h != 720 {
		t.Errorf("size = %dx%d, want 1280x720", w, h)
	}
}

func TestRegistryOrderStable(t *testing.T) {
	r := newOutputRegistry()
	for _, name := range []uint32{11, 7, 23} {
		r.add(&Output{registryName: name})
	}

	got := r.Outputs()
	want := []uint32{11, 7, 23}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, o := range got {
		if o.ID() != want[i] {
			t.Errorf("outputs[%d] = %d, want %d", i, o.ID(), want[i])
		}
	}

	if removed := r.remove(7); removed == nil || removed.ID() != 7 {
		t.Fatalf("remove(7) = %v", removed)
	}
	got = r.Outputs()
	want = []uint32{11, 23}
	for i, o := range got {
		if o.ID() != want[i] {
			t.Errorf("after remove, outputs[%d] = %d, want %d", i, o.ID(), want[i])
		}
	}

	if r.remove(7) != nil {
		t.Errorf("second remove(7) returned an output")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := newOutputRegistry()
	o := &Output{registryName: 42}
	o.applyName("DP-1")
	o.commit()
	r.add(o)

	if got, ok := r.Get(42); !ok || got != o {
		t.Errorf("Get(42) = %v, %v", got, ok)
	}
	if _, ok := r.Get(1); ok {
		t.Errorf("Get(1) found an output")
	}
	if got, ok := r.ByName("DP-1"); !ok || got != o {
		t.Errorf("ByName(DP-1) = %v, %v", got, ok)
	}
	if _, ok := r.ByName("HDMI-A-1"); ok {
		t.Errorf("ByName(HDMI-A-1) found an output")
	}
}

func TestRegistryDuplicateAddIgnored(t *testing.T) {
	r := newOutputRegistry()
	r.add(&Output{registryName: 5})
	r.add(&Output{registryName: 5})
	if n := len(r.Outputs()); n != 1 {
		t.Errorf("outputs = %d, want 1", n)
	}
}
