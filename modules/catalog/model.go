package catalog

// Item is one selectable style in the mirror gallery. Description is the text
// sent to the synthesis service; Image is a URL or data URL for display (and
// the reference payload when IsCustom is set).
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsCustom    bool   `json:"isCustom,omitempty"`
}
