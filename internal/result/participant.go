// Package result holds the participant data model and the personal-best
// resolution logic: picking a participant's fastest previous time,
// deciding whether the current run is a new personal best, and
// computing the signed difference between the two.
package result

// Participant is one finisher's record. The JSON field names keep the
// Norwegian column names used by the published result files. Absent
// values are the zero value: an empty Tid means no current-year time
// was found, a zero BesteAar means no previous participation.
type Participant struct {
	Gruppe         Group  `json:"Gruppe"`
	Navn           string `json:"Navn"`
	Tid            string `json:"Tid"`
	Klasse         string `json:"Klasse"`
	Deltagelser    int    `json:"Deltagelser,omitempty"`
	BesteTidligere string `json:"BesteTidligere,omitempty"`
	BesteAar       int    `json:"BesteÅr,omitempty"`
	NyBestetid     bool   `json:"NyBestetid"`
	Differanse     string `json:"Differanse,omitempty"`

	// ProfileLink is the stat.php link the record was enriched from.
	// Internal plumbing, excluded from output.
	ProfileLink string `json:"-"`
}

// HistoricalRecord is one prior participation found on a profile page.
type HistoricalRecord struct {
	Year int
	Time string
}

// ApplyHistory resolves the participant's historical records against
// the evaluation year and fills in the personal-best fields.
func (p *Participant) ApplyHistory(history []HistoricalRecord, currentYear int) {
	best, outcome := Resolve(p.Tid, history, currentYear)
	p.BesteTidligere = best.Time
	p.BesteAar = best.Year
	p.NyBestetid = outcome.NewBest
	p.Differanse = outcome.Delta
}
