// Package domain holds the lead vocabulary shared by scoring, persistence and transport.
package domain

// Source is the channel a lead arrived through.
type Source string

const (
	SourceWebsite     Source = "website"
	SourceAutoScout24 Source = "autoscout24"
	SourceMobileDe    Source = "mobile.de"
	SourceWalkIn      Source = "walkin"
	SourcePhone       Source = "phone"
	SourceOther       Source = "other"
)

var sourceLabels = map[Source]string{
	SourceWebsite:     "Website",
	SourceAutoScout24: "AutoScout24",
	SourceMobileDe:    "mobile.de",
	SourceWalkIn:      "Walk-in",
	SourcePhone:       "Phone",
	SourceOther:       "Other",
}

// Sources lists every known channel in display order.
func Sources() []Source {
	return []Source{SourceWebsite, SourceAutoScout24, SourceMobileDe, SourceWalkIn, SourcePhone, SourceOther}
}

// IsValid reports whether s is one of the known channels.
func (s Source) IsValid() bool {
	_, ok := sourceLabels[s]
	return ok
}

// Label returns the display name, falling back to "Other" for unknown channels.
func (s Source) Label() string {
	if label, ok := sourceLabels[s]; ok {
		return label
	}
	return sourceLabels[SourceOther]
}

// ParseSource maps free text to a known channel; empty or unknown input becomes SourceOther.
func ParseSource(value string) Source {
	s := Source(value)
	if s.IsValid() {
		return s
	}
	return SourceOther
}

// Status is where a lead sits in the sales funnel.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

var statusLabels = map[Status]string{
	StatusNew:       "New",
	StatusContacted: "Contacted",
	StatusQualified: "Qualified",
	StatusWon:       "Won",
	StatusLost:      "Lost",
}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

// IsClosed reports whether the lead has left the active pipeline.
func (s Status) IsClosed() bool {
	return s == StatusWon || s == StatusLost
}

// ActivityType tags a logged interaction. Scoring only counts activities.
type ActivityType string

const (
	ActivityNote         ActivityType = "note"
	ActivityCall         ActivityType = "call"
	ActivityEmail        ActivityType = "email"
	ActivityMeeting      ActivityType = "meeting"
	ActivityStatusChange ActivityType = "status_change"
	ActivityOther        ActivityType = "other"
)

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityEmail, ActivityMeeting, ActivityStatusChange, ActivityOther:
		return true
	}
	return false
}
