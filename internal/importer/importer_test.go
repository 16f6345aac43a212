package importer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/bibtex"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/venue"
)

func testRegistry() *venue.MemRegistry {
	return venue.NewMemRegistry(
		reference.Venue{Kind: reference.VenueJournal, Name: "Nature", Publisher: "Nature Portfolio", ISSN: "0028-0836"},
		reference.Venue{Kind: reference.VenueConference, Name: "Proc. ICML", Publisher: "PMLR"},
	)
}

func newTestImporter(opts Options) *Importer {
	people := author.NewDirectory(author.Roster{
		{ID: 1, First: "Jane", Last: "Doe"},
	})
	return New(venue.NewResolver(testRegistry()), people, opts)
}

func entry(tag, key string, fields ...string) *bibtex.Entry {
	e := bibtex.NewEntry(tag, key)
	for i := 0; i+1 < len(fields); i += 2 {
		e.Set(fields[i], fields[i+1])
	}
	return e
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag  string
		want reference.Kind
	}{
		{"article", reference.KindArticle},
		{"InProceedings", reference.KindConferencePaper},
		{"conference", reference.KindConferencePaper},
		{"proceedings", reference.KindProceedings},
		{"booklet", reference.KindBook},
		{"inbook", reference.KindBookPart},
		{"incollection", reference.KindBookPart},
		{"mastersthesis", reference.KindThesis},
		{"report", reference.KindTechReport},
		{"manual", reference.KindManual},
		{"patent", reference.KindPatent},
		{"unpublished", reference.KindMisc},
		{"online", reference.KindMisc},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := Classify("k", tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImport_Article(t *testing.T) {
	imp := newTestImporter(Options{Serials: SerialCounter(100)})
	e := entry("article", "Doe2023",
		"author", `Doe, Jane and M{\"u}ller, J{\"o}rg`,
		"title", "A {BERT} study of\n   \\emph{graphs}",
		"journal", "Nature",
		"year", "2023",
		"month", "mar",
		"volume", "12",
		"pages", "100--110",
		"doi", "10.1038/x_y",
		"keywords", "graphs; learning, nets",
	)

	pub, err := imp.Import(e)
	require.NoError(t, err)

	art, ok := pub.(*reference.Article)
	require.True(t, ok, "got %T", pub)
	assert.Equal(t, "Doe2023", art.Key)
	assert.Equal(t, int64(101), art.Serial)
	assert.Equal(t, "A BERT study of graphs", art.Title)
	assert.Equal(t, "10.1038/x_y", art.DOI)
	assert.Equal(t, []string{"graphs", "learning", "nets"}, art.Keywords)
	assert.Equal(t, "100-110", art.Pages)
	assert.Equal(t, "12", art.Volume)
	require.NotNil(t, art.Journal)
	assert.Equal(t, int64(1), art.Journal.ID)

	require.Len(t, art.Authors, 2)
	assert.Equal(t, int64(1), art.Authors[0].ID)
	assert.Equal(t, "Müller", art.Authors[1].Last)
	assert.False(t, art.Authors[1].Known())

	date, ok := art.Published.Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestImport_MonthNormalization(t *testing.T) {
	imp := newTestImporter(Options{})
	want := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, month := range []string{"01", "jan", "January"} {
		t.Run(month, func(t *testing.T) {
			pub, err := imp.Import(entry("misc", "m", "author", "Doe, Jane", "title", "T", "year", "2023", "month", month))
			require.NoError(t, err)
			got, ok := pub.Head().Published.Date()
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestImport_NoMonthKeepsYearOnly(t *testing.T) {
	pub, err := newTestImporter(Options{}).Import(entry("book", "b", "author", "Doe, Jane", "title", "T", "year", "1999"))
	require.NoError(t, err)

	_, ok := pub.Head().Published.Date()
	assert.False(t, ok)
	assert.Equal(t, 1999, pub.Head().Published.Year)
}

func TestImport_UnsupportedType(t *testing.T) {
	pub, err := newTestImporter(Options{}).Import(entry("weirdtype", "w1", "title", "T"))
	assert.Nil(t, pub)

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "weirdtype", unsupported.Tag)
	assert.Equal(t, "w1", EntryKeyOf(err))
	assert.Equal(t, OutcomeUnsupported, KindOf(err))
}

func TestImport_MissingBooktitle(t *testing.T) {
	pub, err := newTestImporter(Options{}).Import(entry("inproceedings", "c1",
		"author", "Doe, Jane", "title", "T", "year", "2020"))
	assert.Nil(t, pub)

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "booktitle", missing.Field)
	assert.Equal(t, "c1", missing.EntryKey())
}

func TestImport_ReportsAllMissingFields(t *testing.T) {
	_, err := newTestImporter(Options{}).Import(entry("article", "a1", "author", "Doe, Jane"))
	require.Error(t, err)

	var fields []string
	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	for _, e := range joined.Unwrap() {
		var missing *MissingFieldError
		if errors.As(e, &missing) {
			fields = append(fields, missing.Field)
		}
	}
	assert.ElementsMatch(t, []string{"title", "year", "journal"}, fields)
}

func TestImport_MarkupErrorIsFatal(t *testing.T) {
	_, err := newTestImporter(Options{}).Import(entry("article", "bad",
		"author", "Doe, Jane", "title", `Broken \`, "journal", "Nature", "year", "2020"))

	var markup *MarkupParseError
	require.ErrorAs(t, err, &markup)
	assert.Equal(t, "title", markup.Field)
	assert.Equal(t, `Broken \`, markup.Text)
	assert.Error(t, markup.Unwrap())
	assert.Equal(t, OutcomeMarkup, KindOf(err))
}

func TestImport_ExemptFieldsKeepMarkupCharacters(t *testing.T) {
	pub, err := newTestImporter(Options{}).Import(entry("misc", "u",
		"author", "Doe, Jane", "title", "T",
		"url", "https://example.org/a_b~c", "doi", "10.1000/{x}"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a_b~c", pub.Head().URL)
	assert.Equal(t, "10.1000/{x}", pub.Head().DOI)
}

func TestImport_InvalidYearAndMonth(t *testing.T) {
	_, err := newTestImporter(Options{}).Import(entry("book", "b",
		"author", "Doe, Jane", "title", "T", "year", "circa 1900", "month", "Brumaire"))

	var invalid *InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, OutcomeInvalidField, KindOf(err))
}

func TestImport_ThesisSchoolOrInstitution(t *testing.T) {
	imp := newTestImporter(Options{})

	pub, err := imp.Import(entry("phdthesis", "t1", "author", "Doe, Jane", "title", "T", "year", "2010", "school", "MIT"))
	require.NoError(t, err)
	th := pub.(*reference.Thesis)
	assert.Equal(t, "MIT", th.Institution)
	assert.Equal(t, reference.DegreePhD, th.Degree)

	pub, err = imp.Import(entry("thesis", "t2", "author", "Doe, Jane", "title", "T", "year", "2010",
		"institution", "ETH", "type", "Master's thesis"))
	require.NoError(t, err)
	th = pub.(*reference.Thesis)
	assert.Equal(t, "ETH", th.Institution)
	assert.Equal(t, reference.DegreeMasters, th.Degree)

	_, err = imp.Import(entry("mastersthesis", "t3", "author", "Doe, Jane", "title", "T", "year", "2010"))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "school", missing.Field)
	assert.Equal(t, "institution", missing.Alternative)
}

func TestImport_EditorFallback(t *testing.T) {
	imp := newTestImporter(Options{})

	pub, err := imp.Import(entry("book", "ed", "editor", "Doe, Jane", "title", "Collected", "year", "2001"))
	require.NoError(t, err)
	book := pub.(*reference.Book)
	assert.True(t, book.Edited)
	require.Len(t, book.Authors, 1)

	pub, err = imp.Import(entry("incollection", "ch", "author", "Roe, Rick", "editor", "Doe, Jane",
		"title", "Chapter", "booktitle", "Collected", "year", "2001"))
	require.NoError(t, err)
	part := pub.(*reference.BookPart)
	assert.True(t, part.Collection)
	assert.Equal(t, "Roe", part.Authors[0].Last)
	require.Len(t, part.Editors, 1)
	assert.Equal(t, "Doe", part.Editors[0].Last)
}

func TestImport_NoAuthor(t *testing.T) {
	imp := newTestImporter(Options{})

	_, err := imp.Import(entry("misc", "n", "title", "T"))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "author", missing.Field)

	_, err = imp.Import(entry("misc", "n", "title", "T", "author", "others"))
	var noAuthor *NoAuthorError
	require.ErrorAs(t, err, &noAuthor)
	assert.False(t, noAuthor.RequireKnown)
}

func TestImport_RequireKnownAuthor(t *testing.T) {
	imp := newTestImporter(Options{RequireKnownAuthor: true})

	_, err := imp.Import(entry("misc", "s", "author", "Smith, John", "title", "T"))
	var noAuthor *NoAuthorError
	require.ErrorAs(t, err, &noAuthor)
	assert.True(t, noAuthor.RequireKnown)
	assert.Equal(t, OutcomeNoAuthor, KindOf(err))

	_, err = imp.Import(entry("misc", "s", "author", "Smith, John and Doe, Jane", "title", "T"))
	assert.NoError(t, err)
}

func TestImport_VenueProxyAndMissing(t *testing.T) {
	e := entry("inproceedings", "ws", "author", "Doe, Jane", "title", "T", "year", "2020",
		"booktitle", "Unknown Workshop 2020", "publisher", "ACM", "isbn", "978-1-4503-0000-0")

	_, err := newTestImporter(Options{}).Import(e)
	var missing *venue.MissingVenueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, OutcomeMissingVenue, KindOf(err))

	pub, err := newTestImporter(Options{AllowProxyVenues: true}).Import(e)
	require.NoError(t, err)
	conf := pub.(*reference.ConferencePaper)
	require.NotNil(t, conf.Conference)
	assert.True(t, conf.Conference.Proxy)
	assert.Equal(t, "Unknown Workshop 2020", conf.Conference.Name)
	assert.Equal(t, "ACM", conf.Conference.Publisher)
	assert.Equal(t, "978-1-4503-0000-0", conf.Conference.ISBN)
}

func TestImport_VenueIDHint(t *testing.T) {
	pub, err := newTestImporter(Options{}).Import(entry("article", "h", "author", "Doe, Jane",
		"title", "T", "year", "2020", "journal", "Nat.", "venueid", "1"))
	require.NoError(t, err)
	assert.Equal(t, "Nature", pub.(*reference.Article).Journal.Name)
}

func TestImportAll_PreservesOrder(t *testing.T) {
	imp := newTestImporter(Options{Workers: 3})
	var entries []*bibtex.Entry
	for i, tag := range []string{"misc", "weirdtype", "misc", "article", "misc"} {
		entries = append(entries, entry(tag, string(rune('a'+i)), "author", "Doe, Jane", "title", "T"))
	}

	results, err := imp.ImportAll(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, len(entries))
	for i, r := range results {
		assert.Equal(t, entries[i].Key, r.Key)
	}
	assert.NoError(t, results[0].Err)
	assert.Equal(t, OutcomeUnsupported, KindOf(results[1].Err))
	assert.Nil(t, results[1].Publication)
	assert.Equal(t, OutcomeMissingField, KindOf(results[3].Err))
	assert.NotNil(t, results[4].Publication)
}

type recorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *recorder) Observe(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func TestImportAll_RecordsMetrics(t *testing.T) {
	rec := &recorder{outcomes: map[string]int{}}
	imp := newTestImporter(Options{Metrics: rec})

	_, err := imp.ImportAll(context.Background(), []*bibtex.Entry{
		entry("misc", "ok", "author", "Doe, Jane", "title", "T"),
		entry("weirdtype", "bad"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{OutcomeImported: 1, OutcomeUnsupported: 1}, rec.outcomes)
}

func TestImportAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newTestImporter(Options{Workers: 1}).ImportAll(ctx, []*bibtex.Entry{
		entry("misc", "a", "author", "Doe, Jane", "title", "T"),
		entry("misc", "b", "author", "Doe, Jane", "title", "T"),
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Equal(t, OutcomeCanceled, KindOf(r.Err))
	}
}

func TestSerialCounter(t *testing.T) {
	next := SerialCounter(0)
	assert.Equal(t, int64(1), next())
	assert.Equal(t, int64(2), next())
}
