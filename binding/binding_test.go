package binding

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(src), &data); err != nil {
		t.Fatalf("解析 JSON 失败: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user":{"name":"<Ann & Bo>","tags":["a","b"]},"total":1250000,"ok":true,"none":null}`)

	cases := []struct {
		in, want string
	}{
		{"<b>${user.name}</b>", "<b>&lt;Ann &amp; Bo&gt;</b>"},
		{"${user.tags[1]}", "b"},
		{"${ total }", "1250000"},
		{"${ok}", "true"},
		{"[${none}]", "[]"},
		{"${user.missing}", "${user.missing}"},
		{"${user.tags[9]}", "${user.tags[9]}"},
		{"${user.tags[x]}", "${user.tags[x]}"},
		{"${total.more}", "${total.more}"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, 期望 %q", c.in, got, c.want)
		}
	}
}

func TestInterpolateRaw(t *testing.T) {
	data := decode(t, `{"frag":"<i>x</i>"}`)
	if got := InterpolateRaw("${frag}", data); got != "<i>x</i>" {
		t.Fatalf("原样插值结果错误: %q", got)
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("data 为空时应保留占位符: %q", got)
	}
}

func TestLookupNested(t *testing.T) {
	data := decode(t, `{"grid":[[1,2],[3,4]]}`)
	v, ok := Lookup(data, "grid[1][0]")
	if !ok || v != float64(3) {
		t.Fatalf("Lookup 结果错误: %v %v", v, ok)
	}
}
