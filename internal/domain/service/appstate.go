package service

// AppStateSource reports whether the host application UI is currently
// visible to the user. Background delivery still updates the unread
// counter but must not raise an in-app toast.
type AppStateSource interface {
	Foreground() bool
}
