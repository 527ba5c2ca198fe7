package reconcile

// Result describes one absence sweep for a single office-local day.
type Result struct {
	Date       string   `json:"date"`
	RosterSize int      `json:"roster_size"`
	Recorded   int      `json:"recorded"`
	OnLeave    int      `json:"on_leave"`
	Candidates int      `json:"candidates"`
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	CreatedIDs []string `json:"created_user_ids,omitempty"`
}
