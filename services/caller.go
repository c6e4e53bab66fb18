package services

// CallerKind distinguishes who is invoking an engine operation.
type CallerKind int

const (
	CallerAdmin CallerKind = iota + 1
	CallerReviewer
	CallerSubmitter
)

// Caller identifies the acting party for every engine operation. It replaces
// ambient request state: operations never inspect the HTTP context themselves.
type Caller struct {
	Kind   CallerKind
	UserID int
	// AuthorID is set instead of UserID for pre-registration author
	// identities acting as submitters.
	AuthorID int
}

func AdminCaller(userID int) Caller {
	return Caller{Kind: CallerAdmin, UserID: userID}
}

func ReviewerCaller(userID int) Caller {
	return Caller{Kind: CallerReviewer, UserID: userID}
}

func SubmitterCaller(userID int) Caller {
	return Caller{Kind: CallerSubmitter, UserID: userID}
}

func AuthorCaller(authorID int) Caller {
	return Caller{Kind: CallerSubmitter, AuthorID: authorID}
}

func (c Caller) IsAdmin() bool {
	return c.Kind == CallerAdmin
}
