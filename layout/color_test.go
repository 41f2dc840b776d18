package layout

import "testing"

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"red", Color{255, 0, 0, 255}},
		{"#0f0", Color{0, 255, 0, 255}},
		{"#0000ff", Color{0, 0, 255, 255}},
		{"#0000007f", Color{0, 0, 0, 127}},
		{"#f008", Color{255, 0, 0, 136}},
		{"rgb(10, 20, 30)", Color{10, 20, 30, 255}},
		{"rgba(0,0,0,0.5)", Color{0, 0, 0, 128}},
		{"rgb(100%, 0%, 0%)", Color{255, 0, 0, 255}},
		{"transparent", Color{}},
		{" Black ", Color{0, 0, 0, 255}},
	}
	for _, c := range cases {
		got, ok := ParseColor(c.in)
		if !ok {
			t.Fatalf("%q 应能解析", c.in)
		}
		if got != c.want {
			t.Fatalf("%q: got=%+v want=%+v", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "#12", "nocolor", "rgb(1,2)"} {
		if _, ok := ParseColor(bad); ok {
			t.Fatalf("%q 不应解析成功", bad)
		}
	}
}
