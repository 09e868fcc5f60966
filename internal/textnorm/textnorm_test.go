package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Áo Sơ Mi  ", "ao so mi"},
		{"Đồng hồ", "dong ho"},
		{"Shirt\t  Blue", "shirt blue"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ao-thun-nam", Slugify("Áo thun nam"))
	assert.Equal(t, "cotton-t-shirt-2024", Slugify("Cotton T-Shirt (2024)!"))
	assert.Equal(t, "", Slugify("!!!"))
}
