package email

const (
	subjectHotLeadFmt = "Hot lead: %s (%d)"
)
