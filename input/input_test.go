package input

import "testing"

func TestKeyEdges(t *testing.T) {
	s := New()
	s.SetKey("Space", true)

	if !s.Key("space") {
		t.Fatalf("expected space held")
	}
	if !s.KeyDown("SPACE") {
		t.Fatalf("expected press edge")
	}
	if s.KeyDown("space") {
		t.Fatalf("edge should be consumed")
	}

	s.SetKey("space", true)
	if s.KeyDown("space") {
		t.Fatalf("holding must not create a new edge")
	}

	s.SetKey("space", false)
	s.SetKey("space", true)
	s.EndFrame()
	if s.KeyDown("space") {
		t.Fatalf("EndFrame should clear unread edges")
	}
	if !s.Key("space") {
		t.Fatalf("EndFrame must not release held keys")
	}
}

func TestAxis(t *testing.T) {
	cases := []struct {
		name    string
		pressed []string
		want    int
	}{
		{"none", nil, 0},
		{"left", []string{"A"}, -1},
		{"right", []string{"D"}, 1},
		{"both", []string{"A", "D"}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New()
			s.Bind("horizontal", "A", "D")
			for _, k := range c.pressed {
				s.SetKey(k, true)
			}
			if got := s.Axis("horizontal"); got != c.want {
				t.Fatalf("expected %d, got %d", c.want, got)
			}
		})
	}

	s := New()
	if s.Axis("missing") != 0 {
		t.Fatalf("unknown binding should be 0")
	}
	s.Bind("h", "A", "D")
	s.Bind("v", "S", "W")
	s.SetKey("W", true)
	s.SetKey("A", true)
	if v := s.Axis2("h", "v"); v.X != -1 || v.Y != 1 {
		t.Fatalf("unexpected axis2 %v", v)
	}
	if names := s.Bindings(); len(names) != 2 || names[0] != "h" {
		t.Fatalf("unexpected bindings %v", names)
	}
}

func TestMouse(t *testing.T) {
	s := New()
	s.SetMouse("Left", true)
	if !s.Mouse("left") || !s.MouseDown("left") || s.MouseDown("left") {
		t.Fatalf("unexpected mouse edge handling")
	}
	if got := s.Buttons()["left"]; !got.Pressed {
		t.Fatalf("snapshot missing button")
	}
}
