package document

// Decision is the outcome of a dependency-gate check. When generation is
// blocked on prerequisites, Missing lists every unmet one so the caller can
// present a complete explanation.
type Decision struct {
	Allowed bool
	Reason  string
	Missing []string
}

// CanGenerate reports whether a section may be generated given the current
// document. It is evaluated fresh on every request: prerequisite statuses
// change between calls and must never be cached.
func CanGenerate(tmpl Template, doc Document, title string) Decision {
	spec, ok := tmpl.Spec(title)
	if !ok {
		return Decision{Reason: "unknown section"}
	}
	if !spec.Generatable {
		return Decision{Reason: "not generatable"}
	}

	var missing []string
	for _, req := range spec.Requires {
		sec, ok := doc.Section(req)
		if !ok || sec.Status != StatusCompleted {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return Decision{Reason: "unmet prerequisites", Missing: missing}
	}
	return Decision{Allowed: true}
}
