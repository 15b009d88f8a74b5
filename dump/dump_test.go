package dump

import (
	"strings"
	"testing"

	"github.com/SynapticNetworks/gridspike/spatial"
)

func TestWriteNodes2D(t *testing.T) {
	var sb strings.Builder
	nodes := []Node{
		{ID: 2, Position: spatial.NewPosition2D(1, 2)},
		{ID: 1, Position: spatial.NewPosition2D(0, 0)},
	}
	if err := WriteNodes(&sb, nodes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1 0 0\n2 1 2\n"
	if sb.String() != want {
		t.Fatalf("got %q, want %q", sb.String(), want)
	}
}

func TestWriteNodes3DNoTrailingSpace(t *testing.T) {
	var sb strings.Builder
	nodes := []Node{{ID: 1, Position: spatial.NewPosition3D(1.5, -2, 0)}}
	if err := WriteNodes(&sb, nodes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := strings.TrimRight(sb.String(), "\n")
	if strings.HasSuffix(line, " ") {
		t.Fatalf("line has trailing space: %q", line)
	}
	fields := strings.Fields(line)
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields (id x y z), got %d: %q", len(fields), line)
	}
}

func TestWriteConnections2D(t *testing.T) {
	var sb strings.Builder
	conns := []Connection{
		{Source: 1, Target: 2, Weight: 500, Delay: 1, Displacement: spatial.NewPosition2D(0.1, -0.1)},
	}
	if err := WriteConnections(&sb, conns); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := strings.Fields(strings.TrimRight(sb.String(), "\n"))
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields (source target weight delay dx dy), got %d", len(fields))
	}
}

func TestWriteConnections3D(t *testing.T) {
	var sb strings.Builder
	conns := []Connection{
		{Source: 1, Target: 2, Weight: 1, Delay: 1, Displacement: spatial.NewPosition3D(0.1, 0.2, 0.3)},
	}
	if err := WriteConnections(&sb, conns); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := strings.Fields(strings.TrimRight(sb.String(), "\n"))
	if len(fields) != 7 {
		t.Fatalf("expected 7 fields (source target weight delay dx dy dz), got %d", len(fields))
	}
}
