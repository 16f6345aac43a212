package author

import (
	"testing"

	"github.com/matsen/bibsync/internal/reference"
)

func TestParseNameList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Name
	}{
		{
			name:  "last comma first",
			input: "Smith, John and Doe, Jane",
			want:  []Name{{First: "John", Last: "Smith"}, {First: "Jane", Last: "Doe"}},
		},
		{
			name:  "first last",
			input: "John Smith AND Jane Q. Doe",
			want:  []Name{{First: "John", Last: "Smith"}, {First: "Jane Q.", Last: "Doe"}},
		},
		{
			name:  "von part in first von last",
			input: "Ludwig van Beethoven",
			want:  []Name{{First: "Ludwig", Von: "van", Last: "Beethoven"}},
		},
		{
			name:  "von part in comma form",
			input: "de la Fontaine, Jean",
			want:  []Name{{First: "Jean", Von: "de la", Last: "Fontaine"}},
		},
		{
			name:  "jr part",
			input: "King, Jr., Martin Luther",
			want:  []Name{{First: "Martin Luther", Last: "King", Jr: "Jr."}},
		},
		{
			name:  "braced corporate name",
			input: "{Barnes and Noble}",
			want:  []Name{{Last: "Barnes and Noble"}},
		},
		{
			name:  "accented letters",
			input: `M{\"u}ller, J{\"o}rg`,
			want:  []Name{{First: "Jörg", Last: "Müller"}},
		},
		{
			name:  "and others dropped",
			input: "Smith, John and others",
			want:  []Name{{First: "John", Last: "Smith"}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNameList(tt.input)
			if err != nil {
				t.Fatalf("ParseNameList(%q) error = %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseNameList(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("name %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseNameList_Errors(t *testing.T) {
	for _, input := range []string{"Smith, John and , Jane", `Smith, J{\"o}rg}`} {
		if _, err := ParseNameList(input); err == nil {
			t.Errorf("ParseNameList(%q) expected error", input)
		}
	}
}

func TestDirectoryFindOrCreate(t *testing.T) {
	dir := NewDirectory(Roster{
		{ID: 7, First: "Jane", Last: "Doe", ORCID: "0000-0001-2345-6789"},
	})

	known, err := dir.FindOrCreate(Name{First: "jane", Last: "DOE"})
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	if known.ID != 7 || !known.Known() {
		t.Errorf("FindOrCreate() = %+v, want registry person 7", known)
	}

	unknown, err := dir.FindOrCreate(Name{First: "John", Last: "Smith"})
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	want := reference.Person{First: "John", Last: "Smith"}
	if unknown != want {
		t.Errorf("FindOrCreate() = %+v, want %+v", unknown, want)
	}
}

func TestDirectoryNilLookup(t *testing.T) {
	p, err := NewDirectory(nil).FindOrCreate(Name{Last: "Solo"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Known() {
		t.Error("nil lookup should know nobody")
	}
}

func TestFormatNameList(t *testing.T) {
	people := []reference.Person{
		{First: "John", Last: "Smith"},
		{First: "Ludwig", Von: "van", Last: "Beethoven"},
		{First: "Martin Luther", Last: "King", Jr: "Jr."},
		{Last: "Barnes and Noble"},
		{First: "Jörg", Last: "Müller & Söhne"},
	}
	want := `Smith, John and van Beethoven, Ludwig and King, Jr., Martin Luther and {Barnes and Noble} and Müller \& Söhne, Jörg`

	got := FormatNameList(people)
	if got != want {
		t.Fatalf("FormatNameList() =\n%s\nwant\n%s", got, want)
	}

	parsed, err := ParseNameList(got)
	if err != nil {
		t.Fatalf("ParseNameList() error = %v", err)
	}
	if len(parsed) != len(people) {
		t.Fatalf("round trip returned %d names, want %d", len(parsed), len(people))
	}
	for i, p := range people {
		n := parsed[i]
		if n.First != p.First || n.Von != p.Von || n.Last != p.Last || n.Jr != p.Jr {
			t.Errorf("name %d = %+v, want %+v", i, n, p)
		}
	}
}
