package importer

import (
	"strings"

	"github.com/matsen/bibsync/internal/reference"
)

// kindsByTag maps every supported entry-type tag to its publication kind.
var kindsByTag = map[string]reference.Kind{
	"article":       reference.KindArticle,
	"inproceedings": reference.KindConferencePaper,
	"conference":    reference.KindConferencePaper,
	"proceedings":   reference.KindProceedings,
	"book":          reference.KindBook,
	"booklet":       reference.KindBook,
	"inbook":        reference.KindBookPart,
	"incollection":  reference.KindBookPart,
	"phdthesis":     reference.KindThesis,
	"mastersthesis": reference.KindThesis,
	"thesis":        reference.KindThesis,
	"techreport":    reference.KindTechReport,
	"report":        reference.KindTechReport,
	"manual":        reference.KindManual,
	"patent":        reference.KindPatent,
	"misc":          reference.KindMisc,
	"unpublished":   reference.KindMisc,
	"online":        reference.KindMisc,
}

// Classify maps an entry-type tag to a publication kind. Tags are
// case-insensitive. Unknown tags yield UnsupportedTypeError.
func Classify(key, tag string) (reference.Kind, error) {
	if kind, ok := kindsByTag[strings.ToLower(tag)]; ok {
		return kind, nil
	}
	return "", &UnsupportedTypeError{Key: key, Tag: tag}
}
