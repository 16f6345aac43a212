package latex

// symbolAccents maps single-character accent commands to combining marks.
var symbolAccents = map[rune]rune{
	'\'': '\u0301', // acute
	'`':  '\u0300', // grave
	'^':  '\u0302', // circumflex
	'"':  '\u0308', // diaeresis
	'~':  '\u0303', // tilde
	'=':  '\u0304', // macron
	'.':  '\u0307', // dot above
}

// letterAccents maps letter accent commands to combining marks.
var letterAccents = map[string]rune{
	"u": '\u0306', // breve
	"v": '\u030c', // caron
	"H": '\u030b', // double acute
	"c": '\u0327', // cedilla
	"k": '\u0328', // ogonek
	"r": '\u030a', // ring above
	"d": '\u0323', // dot below
	"b": '\u0331', // macron below
	"t": '\u0361', // tie
}

// symbols maps control words that stand for text.
var symbols = map[string]string{
	"ss":                "ß",
	"SS":                "SS",
	"o":                 "ø",
	"O":                 "Ø",
	"ae":                "æ",
	"AE":                "Æ",
	"oe":                "œ",
	"OE":                "Œ",
	"aa":                "å",
	"AA":                "Å",
	"l":                 "ł",
	"L":                 "Ł",
	"i":                 "ı",
	"j":                 "ȷ",
	"dh":                "ð",
	"DH":                "Ð",
	"th":                "þ",
	"TH":                "Þ",
	"ng":                "ŋ",
	"NG":                "Ŋ",
	"textbackslash":     `\`,
	"textbraceleft":     "{",
	"textbraceright":    "}",
	"textasciitilde":    "~",
	"textasciicircum":   "^",
	"textasciigrave":    "`",
	"textunderscore":    "_",
	"textbar":           "|",
	"textless":          "<",
	"textgreater":       ">",
	"textendash":        "–",
	"textemdash":        "—",
	"textquoteleft":     "‘",
	"textquoteright":    "’",
	"textquotedblleft":  "“",
	"textquotedblright": "”",
	"textregistered":    "®",
	"texttrademark":     "™",
	"textcopyright":     "©",
	"copyright":         "©",
	"textdegree":        "°",
	"textellipsis":      "…",
	"ldots":             "…",
	"dots":              "…",
	"pounds":            "£",
	"euro":              "€",
	"S":                 "§",
	"P":                 "¶",
	"LaTeX":             "LaTeX",
	"TeX":               "TeX",
	"BibTeX":            "BibTeX",
	"slash":             "/",
	"quad":              " ",
	"qquad":             " ",
	"par":               " ",
	"newline":           " ",
	"linebreak":         " ",
}
