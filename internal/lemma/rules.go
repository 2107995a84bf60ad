package lemma

import "slices"

// Rules holds per-language corrections applied after tagging.
type Rules struct {
	// Exceptions maps a known-bad lemma to its corrected form.
	Exceptions map[string]string
	// FakeProperNouns are lemmas the tagger wrongly reports as proper nouns.
	// They survive SkipProperNouns and are lowercased.
	FakeProperNouns []string
	// StopWords are dropped from the output.
	StopWords []string
}

func (r Rules) isFakeProperNoun(lemma string) bool {
	return slices.Contains(r.FakeProperNouns, lemma)
}

func (r Rules) correct(word string, lower func(string) string) string {
	if r.isFakeProperNoun(word) {
		return lower(word)
	}
	if fixed, ok := r.Exceptions[word]; ok {
		return fixed
	}
	return word
}

// RulesFor returns the built-in rules for lang, or empty rules.
func RulesFor(lang string) Rules {
	if r, ok := builtinRules[lang]; ok {
		return r
	}
	return Rules{}
}

var builtinRules = map[string]Rules{
	"es": {
		Exceptions: map[string]string{
			"hablas":    "hablar",
			"señoritar": "señorita",
		},
		FakeProperNouns: []string{
			"Hola", "Y", "EN", "De", "Que", "Ah", "A", "Por", "Vamos", "Pero",
			"En", "O", "Al", "Bueno", "Con", "Pues", "Sí", "Para", "Venga", "Si",
			"ENTRE", "Joder", "Como", "Eh", "Ni", "DE", "Porque", "Oh", "Sin", "Uf",
			"Ay", "QUE", "Señores", "Chist", "Oye", "Ve", "Cuando", "AL", "Bájeme", "Fuego",
			"Hasta", "Alto", "Escucha", "Quieto", "Dámelo", "Siéntate", "Tranquilos", "Uy", "Basta", "DEL",
			"Caramba", "Según", "Te", "Coño", "Tú", "Perfecto", "Adiós", "Bájame", "Profesor", "Aunque",
			"Gracias", "Amigo", "Dios", "POR", "Viva", "Jacinto", "Va", "Cúbreme", "CON", "Sentaos",
			"Uh",
		},
		StopWords: []string{"eh", "coño", "puta"},
	},
	"en": {},
}
