package nlp

import (
	"strings"
	"unicode"

	"github.com/digiclo/clothtagger/service"
)

// universalPOS maps a Penn Treebank tag to the universal tag set.
func universalPOS(tag string) service.POS {
	switch {
	case strings.HasPrefix(tag, "JJ"):
		return service.POSAdjective
	case strings.HasPrefix(tag, "NNP"):
		return service.POSProperNoun
	case strings.HasPrefix(tag, "NN"):
		return service.POSNoun
	case strings.HasPrefix(tag, "VB"), tag == "MD":
		return service.POSVerb
	case strings.HasPrefix(tag, "PRP"), strings.HasPrefix(tag, "WP"), tag == "EX":
		return service.POSPronoun
	case tag == "DT", tag == "PDT", tag == "WDT":
		return service.POSDeterminer
	case tag == "IN", tag == "TO", tag == "RP":
		return service.POSAdposition
	case tag == "CD":
		return service.POSNumber
	case !strings.ContainsFunc(tag, unicode.IsLetter), tag == "HYPH", tag == "NFP",
		tag == "-LRB-", tag == "-RRB-":
		return service.POSPunct
	default:
		return service.POSOther
	}
}

// inflected reports whether the surface form under tag differs from its
// lemma: plural nouns, comparative and superlative adjectives, verbs.
func inflected(tag string) bool {
	switch tag {
	case "NNS", "NNPS", "JJR", "JJS":
		return true
	}
	return strings.HasPrefix(tag, "VB")
}
