package author

import (
	"testing"

	"github.com/matsen/bibsync/internal/reference"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Query
	}{
		{
			name:  "single word is last name",
			input: "Yu",
			want:  Query{Last: "Yu"},
		},
		{
			name:  "two words is First Last",
			input: "Timothy Yu",
			want:  Query{First: "Timothy", Last: "Yu"},
		},
		{
			name:  "three words: first two are first name",
			input: "Timothy C Yu",
			want:  Query{First: "Timothy C", Last: "Yu"},
		},
		{
			name:  "comma format: Last, First",
			input: "Yu, Timothy",
			want:  Query{First: "Timothy", Last: "Yu"},
		},
		{
			name:  "particle stays with last name",
			input: "Ludwig van Beethoven",
			want:  Query{First: "Ludwig", Last: "van Beethoven"},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  Query{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.input)
			if got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	tests := []struct {
		name   string
		query  Query
		person reference.Person
		want   bool
	}{
		{
			name:   "exact last name match",
			query:  Query{Last: "Yu"},
			person: reference.Person{First: "Timothy C", Last: "Yu"},
			want:   true,
		},
		{
			name:   "last name is case-insensitive",
			query:  Query{Last: "yu"},
			person: reference.Person{First: "Timothy", Last: "Yu"},
			want:   true,
		},
		{
			name:   "last name must not be a prefix match",
			query:  Query{Last: "Yu"},
			person: reference.Person{First: "Jia", Last: "Yujia"},
			want:   false,
		},
		{
			name:   "first name prefix",
			query:  Query{First: "Tim", Last: "Yu"},
			person: reference.Person{First: "Timothy C", Last: "Yu"},
			want:   true,
		},
		{
			name:   "first name mismatch",
			query:  Query{First: "Tom", Last: "Yu"},
			person: reference.Person{First: "Timothy", Last: "Yu"},
			want:   false,
		},
		{
			name:   "family name with von part",
			query:  Query{Last: "van Beethoven"},
			person: reference.Person{First: "Ludwig", Von: "van", Last: "Beethoven"},
			want:   true,
		},
		{
			name:   "bare last name ignores von part",
			query:  Query{Last: "Beethoven"},
			person: reference.Person{First: "Ludwig", Von: "van", Last: "Beethoven"},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(tt.person); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllMatch(t *testing.T) {
	people := []reference.Person{
		{First: "Frederick", Last: "Matsen"},
		{First: "Jesse", Last: "Bloom"},
	}

	if !AllMatch([]Query{{Last: "Matsen"}, {Last: "Bloom"}}, people) {
		t.Error("AllMatch() = false, want true when every query matches")
	}
	if AllMatch([]Query{{Last: "Matsen"}, {Last: "Yu"}}, people) {
		t.Error("AllMatch() = true, want false when one query misses")
	}
	if !AllMatch(nil, people) {
		t.Error("AllMatch() with no queries should be true")
	}
}
