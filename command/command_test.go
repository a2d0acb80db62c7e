package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/pathstream"
)

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdUploadGeometry, "UploadGeometry"},
		{CmdDrawPath, "DrawPath"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestGeometryIDValid(t *testing.T) {
	if !GeometryID(0).IsValid() {
		t.Error("GeometryID(0) should be valid")
	}
	if InvalidGeometry.IsValid() {
		t.Error("InvalidGeometry should not be valid")
	}
}

func TestDescribe(t *testing.T) {
	up := UploadGeometryCommand{Geometry: 3, Vertices: make([]float32, 12)}
	if got := Describe(up); !strings.Contains(got, "UploadGeometry id=3 triangles=2") {
		t.Errorf("Describe(upload) = %q", got)
	}
	draw := DrawPathCommand{Geometry: 3, Rule: pathstream.FillRuleEvenOdd}
	if got := Describe(draw); !strings.Contains(got, "rule=evenodd") {
		t.Errorf("Describe(draw) = %q", got)
	}
	if Describe(nil) != "<nil>" {
		t.Error("Describe(nil) should be <nil>")
	}
}

func TestBufferRecordsInOrder(t *testing.T) {
	var b Buffer
	for i := range 5 {
		if err := b.Send(DrawPathCommand{Geometry: GeometryID(i)}); err != nil {
			t.Fatal(err)
		}
	}
	cmds := b.Commands()
	if len(cmds) != 5 || b.Len() != 5 {
		t.Fatalf("recorded %d commands, want 5", len(cmds))
	}
	for i, c := range cmds {
		if c.(DrawPathCommand).Geometry != GeometryID(i) {
			t.Errorf("command %d has geometry %d", i, c.(DrawPathCommand).Geometry)
		}
	}

	// Commands returns a copy.
	cmds[0] = nil
	if b.Commands()[0] == nil {
		t.Error("Commands() exposes internal storage")
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d", b.Len())
	}
}

func TestBufferReplayStopsOnError(t *testing.T) {
	var b Buffer
	_ = b.Send(UploadGeometryCommand{Geometry: 0})
	_ = b.Send(DrawPathCommand{Geometry: 0})
	_ = b.Send(DrawPathCommand{Geometry: 0})

	boom := errors.New("boom")
	calls := 0
	err := b.Replay(func(RenderCommand) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Replay() = %v, want boom", err)
	}
	if calls != 2 {
		t.Errorf("Replay made %d calls, want 2", calls)
	}
}

func TestEqual(t *testing.T) {
	a := []RenderCommand{
		UploadGeometryCommand{Geometry: 0, Vertices: []float32{0, 0, 1, 0, 1, 1}},
		DrawPathCommand{Geometry: 0},
	}
	b := []RenderCommand{
		UploadGeometryCommand{Geometry: 0, Vertices: []float32{0, 0, 1, 0, 1, 1}},
		DrawPathCommand{Geometry: 0},
	}
	if !Equal(a, b) {
		t.Error("identical streams compare unequal")
	}
	b[0] = UploadGeometryCommand{Geometry: 0, Vertices: []float32{0, 0, 1, 0, 1, 2}}
	if Equal(a, b) {
		t.Error("streams with different vertices compare equal")
	}
	if Equal(a, a[:1]) {
		t.Error("streams with different length compare equal")
	}
	if Equal([]RenderCommand{DrawPathCommand{}}, []RenderCommand{UploadGeometryCommand{}}) {
		t.Error("different variants compare equal")
	}
}
