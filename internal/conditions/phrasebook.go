package conditions

// Phrasebook holds the localized clause templates used to describe a
// transition.
type Phrasebook struct {
	Level     string // %d
	Item      string // %s
	Happiness string // %d
	HeldItem  string // %s
	Day       string
	Night     string
	Separator string
}

var phrasebooks = map[string]Phrasebook{
	"en": {
		Level:     "level %d or higher",
		Item:      "use %s",
		Happiness: "happiness %d or higher",
		HeldItem:  "holding %s",
		Day:       "during the day",
		Night:     "at night",
		Separator: ", ",
	},
	"ko": {
		Level:     "레벨 %d 이상",
		Item:      "%s 사용",
		Happiness: "행복도 %d 이상",
		HeldItem:  "%s를 지닌 상태",
		Day:       "낮에",
		Night:     "밤에",
		Separator: ", ",
	},
}

// PhrasebookFor returns the phrasebook for lang, falling back to English.
func PhrasebookFor(lang string) Phrasebook {
	if pb, ok := phrasebooks[lang]; ok {
		return pb
	}
	return phrasebooks["en"]
}
