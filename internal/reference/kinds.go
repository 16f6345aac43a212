package reference

// Visitor has one method per publication kind. Code that must handle every
// kind implements Visitor, so a new kind is a compile error until handled.
type Visitor interface {
	VisitArticle(*Article) error
	VisitConferencePaper(*ConferencePaper) error
	VisitProceedings(*Proceedings) error
	VisitBook(*Book) error
	VisitBookPart(*BookPart) error
	VisitThesis(*Thesis) error
	VisitTechReport(*TechReport) error
	VisitManual(*Manual) error
	VisitPatent(*Patent) error
	VisitMisc(*Misc) error
}

// Article is a paper published in a journal.
type Article struct {
	Header
	Journal *Venue `json:"journal"`
	Volume  string `json:"volume,omitempty"`
	Number  string `json:"number,omitempty"`
	Pages   string `json:"pages,omitempty"`
	Series  string `json:"series,omitempty"`
}

// ConferencePaper is a paper published in conference proceedings.
type ConferencePaper struct {
	Header
	Conference   *Venue   `json:"conference"`
	Volume       string   `json:"volume,omitempty"`
	Number       string   `json:"number,omitempty"`
	Pages        string   `json:"pages,omitempty"`
	Series       string   `json:"series,omitempty"`
	Editors      []Person `json:"editors,omitempty"`
	Address      string   `json:"address,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Publisher    string   `json:"publisher,omitempty"`
}

// Proceedings is an edited conference volume. Its header authors are the editors.
type Proceedings struct {
	Header
	Publisher    string `json:"publisher,omitempty"`
	Address      string `json:"address,omitempty"`
	Volume       string `json:"volume,omitempty"`
	Series       string `json:"series,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Book is a monograph. Edited books carry their editors as header authors.
type Book struct {
	Header
	Publisher string `json:"publisher,omitempty"`
	Address   string `json:"address,omitempty"`
	Edition   string `json:"edition,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Series    string `json:"series,omitempty"`
	Edited    bool   `json:"edited,omitempty"`
}

// BookPart is a chapter of a book or a contribution to a collection.
type BookPart struct {
	Header
	BookTitle  string   `json:"book_title"`
	Chapter    string   `json:"chapter,omitempty"`
	Pages      string   `json:"pages,omitempty"`
	Publisher  string   `json:"publisher,omitempty"`
	Address    string   `json:"address,omitempty"`
	Volume     string   `json:"volume,omitempty"`
	Series     string   `json:"series,omitempty"`
	Editors    []Person `json:"editors,omitempty"`
	Collection bool     `json:"collection,omitempty"` // incollection rather than inbook
}

// Degree distinguishes thesis levels.
type Degree string

const (
	DegreeUnspecified Degree = ""
	DegreePhD         Degree = "phd"
	DegreeMasters     Degree = "masters"
)

// Thesis is a doctoral or master's thesis.
type Thesis struct {
	Header
	Degree      Degree `json:"degree,omitempty"`
	Institution string `json:"institution"`
	Address     string `json:"address,omitempty"`
}

// TechReport is a report published by an institution.
type TechReport struct {
	Header
	Institution string `json:"institution"`
	Number      string `json:"number,omitempty"`
	Address     string `json:"address,omitempty"`
	ReportType  string `json:"report_type,omitempty"`
}

// Manual is technical documentation or a tutorial.
type Manual struct {
	Header
	Organization string `json:"organization,omitempty"`
	Address      string `json:"address,omitempty"`
	Edition      string `json:"edition,omitempty"`
}

// Patent is a granted patent or patent application.
type Patent struct {
	Header
	Number  string `json:"number"`
	Holder  string `json:"holder,omitempty"`
	Address string `json:"address,omitempty"`
}

// Misc covers everything that fits no other kind, including unpublished work.
type Misc struct {
	Header
	HowPublished string `json:"how_published,omitempty"`
	Note         string `json:"note,omitempty"`
	Unpublished  bool   `json:"unpublished,omitempty"`
}

func (*Article) Kind() Kind         { return KindArticle }
func (*ConferencePaper) Kind() Kind { return KindConferencePaper }
func (*Proceedings) Kind() Kind     { return KindProceedings }
func (*Book) Kind() Kind            { return KindBook }
func (*BookPart) Kind() Kind        { return KindBookPart }
func (*Thesis) Kind() Kind          { return KindThesis }
func (*TechReport) Kind() Kind      { return KindTechReport }
func (*Manual) Kind() Kind          { return KindManual }
func (*Patent) Kind() Kind          { return KindPatent }
func (*Misc) Kind() Kind            { return KindMisc }

func (p *Article) Accept(v Visitor) error         { return v.VisitArticle(p) }
func (p *ConferencePaper) Accept(v Visitor) error { return v.VisitConferencePaper(p) }
func (p *Proceedings) Accept(v Visitor) error     { return v.VisitProceedings(p) }
func (p *Book) Accept(v Visitor) error            { return v.VisitBook(p) }
func (p *BookPart) Accept(v Visitor) error        { return v.VisitBookPart(p) }
func (p *Thesis) Accept(v Visitor) error          { return v.VisitThesis(p) }
func (p *TechReport) Accept(v Visitor) error      { return v.VisitTechReport(p) }
func (p *Manual) Accept(v Visitor) error          { return v.VisitManual(p) }
func (p *Patent) Accept(v Visitor) error          { return v.VisitPatent(p) }
func (p *Misc) Accept(v Visitor) error            { return v.VisitMisc(p) }

// VenueOf returns the venue of a publication that requires one, or nil.
func VenueOf(p Publication) *Venue {
	switch p := p.(type) {
	case *Article:
		return p.Journal
	case *ConferencePaper:
		return p.Conference
	}
	return nil
}
