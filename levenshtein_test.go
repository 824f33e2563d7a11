package gridview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_levenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"same attribute", "created_at", "created_at", 0},
		{"missing separator", "createdat", "created_at", 1},
		{"case counts", "Name", "name", 1},
		{"multibyte runes", "prénom", "prenom", 1},
		{"empty vs attribute", "", "id", 2},
		{"swapped letters", "nmae", "name", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)))
			assert.Equal(t, tt.want, levenshtein([]rune(tt.b), []rune(tt.a)), "distance is symmetric")
		})
	}
}

func Test_closestAlias(t *testing.T) {
	attributes := []string{"id", "name", "created_at"}
	tests := []struct {
		in   string
		want string
	}{
		{"idx", "id"},
		{"nme", "name"},
		{"createdAt", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, closestAlias(tt.in, attributes))
		})
	}

	assert.Empty(t, closestAlias("id", nil))
}
