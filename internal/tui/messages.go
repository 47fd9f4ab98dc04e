package tui

// Data loading messages.
type refreshedMsg struct {
	err error
}

// storeChangedMsg is sent after the store replaced its collection.
type storeChangedMsg struct{}

// Mutation results. Delete and flag failures are shown as an alert.
type mutationMsg struct {
	err   error
	done  string
	alert bool
	form  bool
}

// Advisor results.
type analysisMsg struct {
	err  error
	text string
}

type chatMsg struct {
	err   error
	query string
	reply string
}

// sessionExpiredMsg is sent when the session ends underneath the TUI.
type sessionExpiredMsg struct{}
