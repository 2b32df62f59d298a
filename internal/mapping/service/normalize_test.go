package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Mã gốc", "magoc"},
		{"Mã Gốc", "magoc"},
		{"Tên mới", "tenmoi"},
		{"Tên hàng", "tenhang"},
		{"Đơn giá", "dongia"},
		{"Số lượng", "soluong"},
		{"Mã hàng (cũ)", "mahangcu"},
		{"OLD CODE", "oldcode"},
		{"old_code_2", "oldcode2"},
		{"  Mã   mới  ", "mamoi"},
		{"", ""},
		{"!!!", ""},
		{"ượ ử ỡ", "uouo"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeHeader(c.in), "input %q", c.in)
	}
}

func TestNormalizeHeaderTotal(t *testing.T) {
	// never panics, always returns something for arbitrary input
	inputs := []string{"\x00\xff", "混合漢字", "ążć", "🙂📦"}
	for _, in := range inputs {
		out := NormalizeHeader(in)
		for _, r := range out {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "unexpected rune %q in %q", r, out)
		}
	}
}
