package models

// NotAvailable is the placeholder stored whenever a condition or localized
// name cannot be resolved.
const NotAvailable = "N/A"

// Record is one normalized catalog entry.
type Record struct {
	ID               int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name             string `gorm:"size:45" json:"name"`
	Status           string `gorm:"size:45" json:"status"`
	Classification   string `gorm:"size:45" json:"classification"`
	Characteristic   string `gorm:"size:128" json:"characteristic"`
	Attribute        string `gorm:"size:45" json:"attribute"`
	DotImage         string `gorm:"size:500" json:"dotImage"`
	DotShinyImage    string `gorm:"size:500" json:"dotShinyImage"`
	Image            string `gorm:"size:500" json:"image"`
	ShinyImage       string `gorm:"size:500" json:"shinyImage"`
	Description      string `gorm:"size:500" json:"description"`
	Generation       int    `gorm:"index" json:"generation"`
	EvolutionChainID *int   `gorm:"index" json:"evolutionChainId,omitempty"`
}

// Relation is a directed "evolves into" edge between two records of the same
// chain.
type Relation struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	FromID     int    `gorm:"index;not null" json:"fromId"`
	ToID       int    `gorm:"not null" json:"toId"`
	Conditions string `gorm:"size:100;default:N/A" json:"conditions"`
}
