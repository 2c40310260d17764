package document

// Status tracks how far a section has progressed toward being trusted content.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReviewing Status = "reviewing"
	StatusCompleted Status = "completed"
)

// GenerationState is tracked separately from Status: a completed section can
// be regenerated later without losing its completed standing until the new
// result lands.
type GenerationState string

const (
	GenerationIdle    GenerationState = "idle"
	GenerationRunning GenerationState = "generating"
)

// Section is one titled unit of the requirement document.
type Section struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Status      Status          `json:"status"`
	Generatable bool            `json:"generatable"`
	GenState    GenerationState `json:"generationState"`
}

// Document is the ordered set of sections plus the originating brief.
// Section order is fixed at creation.
type Document struct {
	Brief    string    `json:"brief"`
	Sections []Section `json:"sections"`
}

// Clone returns a deep copy safe to hand out or snapshot.
func (d Document) Clone() Document {
	out := Document{Brief: d.Brief}
	out.Sections = make([]Section, len(d.Sections))
	copy(out.Sections, d.Sections)
	return out
}

// Section returns the section with the given title, if present.
func (d Document) Section(title string) (Section, bool) {
	for _, sec := range d.Sections {
		if sec.Title == title {
			return sec, true
		}
	}
	return Section{}, false
}
