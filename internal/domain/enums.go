package domain

// PartOfSpeech is a Universal Dependencies POS tag as reported by the tagger.
type PartOfSpeech string

const (
	PartOfSpeechAdjective    PartOfSpeech = "ADJ"
	PartOfSpeechAdposition   PartOfSpeech = "ADP"
	PartOfSpeechAdverb       PartOfSpeech = "ADV"
	PartOfSpeechAuxiliary    PartOfSpeech = "AUX"
	PartOfSpeechConjunction  PartOfSpeech = "CCONJ"
	PartOfSpeechDeterminer   PartOfSpeech = "DET"
	PartOfSpeechInterjection PartOfSpeech = "INTJ"
	PartOfSpeechNoun         PartOfSpeech = "NOUN"
	PartOfSpeechNumeral      PartOfSpeech = "NUM"
	PartOfSpeechParticle     PartOfSpeech = "PART"
	PartOfSpeechPronoun      PartOfSpeech = "PRON"
	PartOfSpeechProperNoun   PartOfSpeech = "PROPN"
	PartOfSpeechPunctuation  PartOfSpeech = "PUNCT"
	PartOfSpeechSubordinator PartOfSpeech = "SCONJ"
	PartOfSpeechSymbol       PartOfSpeech = "SYM"
	PartOfSpeechVerb         PartOfSpeech = "VERB"
	PartOfSpeechOther        PartOfSpeech = "X"
)

func (p PartOfSpeech) String() string { return string(p) }

func (p PartOfSpeech) IsProperNoun() bool { return p == PartOfSpeechProperNoun }

// LanguageCode is a two-letter ISO 639-1 code such as "es" or "en".
type LanguageCode = string
