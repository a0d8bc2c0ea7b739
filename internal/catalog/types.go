package catalog

// NamedResource is the catalog's {name, url} reference to another resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page is one page of a list endpoint.
type Page struct {
	Count   int             `json:"count"`
	Next    string          `json:"next"`
	Results []NamedResource `json:"results"`
}

// LocalizedName is one language-tagged entry of a names, genera or
// flavor_text_entries array. Only the field relevant to the array is set.
type LocalizedName struct {
	Name       string        `json:"name"`
	Genus      string        `json:"genus"`
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
}

// Field selects which text field of a LocalizedName to read.
type Field int

const (
	FieldName Field = iota
	FieldGenus
	FieldFlavorText
)

func (n LocalizedName) text(f Field) string {
	switch f {
	case FieldGenus:
		return n.Genus
	case FieldFlavorText:
		return n.FlavorText
	default:
		return n.Name
	}
}

// namesDoc is the shape shared by every name-resolution resource (types,
// abilities, items, triggers).
type namesDoc struct {
	Names []LocalizedName `json:"names"`
}

// ChainGraph is one evolution-chain resource.
type ChainGraph struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}

// ChainLink is a node of the chain graph: a species plus the links it evolves
// into and the details of the transition that led to it.
type ChainLink struct {
	Species          NamedResource     `json:"species"`
	EvolutionDetails []EvolutionDetail `json:"evolution_details"`
	EvolvesTo        []ChainLink       `json:"evolves_to"`
}

// EvolutionDetail describes what triggers one transition. Optional references
// are nil when absent.
type EvolutionDetail struct {
	MinLevel     int            `json:"min_level"`
	Item         *NamedResource `json:"item"`
	MinHappiness int            `json:"min_happiness"`
	HeldItem     *NamedResource `json:"held_item"`
	TimeOfDay    string         `json:"time_of_day"`
	Trigger      *NamedResource `json:"trigger"`
}

// Detail is the per-record detail resource.
type Detail struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Species   NamedResource `json:"species"`
	Stats     []Stat        `json:"stats"`
	Types     []TypeSlot    `json:"types"`
	Abilities []AbilitySlot `json:"abilities"`
	Sprites   Sprites       `json:"sprites"`
}

type Stat struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type AbilitySlot struct {
	Slot    int           `json:"slot"`
	Ability NamedResource `json:"ability"`
}

// Sprites holds the image references the catalog publishes. Missing images
// decode as empty strings.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
	Other        struct {
		OfficialArtwork SpritePair `json:"official-artwork"`
	} `json:"other"`
	Versions struct {
		GenerationV struct {
			BlackWhite struct {
				SpritePair
				Animated SpritePair `json:"animated"`
			} `json:"black-white"`
		} `json:"generation-v"`
	} `json:"versions"`
}

type SpritePair struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
}

// Species is the secondary resource linked from a Detail.
type Species struct {
	ID                 int             `json:"id"`
	Names              []LocalizedName `json:"names"`
	Genera             []LocalizedName `json:"genera"`
	FlavorTextEntries  []LocalizedName `json:"flavor_text_entries"`
	Generation         NamedResource   `json:"generation"`
	EvolutionChain     *NamedResource  `json:"evolution_chain"`
	EvolvesFromSpecies *NamedResource  `json:"evolves_from_species"`
}
