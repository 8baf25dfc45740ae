package conversation

import "github.com/local/lessonplanner/internal/session"

// State is the conversation step stored in a session.
type State = session.State

const (
	Idle             State = "idle"
	AwaitPDF         State = "await_pdf"
	AwaitText        State = "await_text"
	AwaitGrade       State = "await_grade"
	AwaitSubject     State = "await_subject"
	AwaitChapter     State = "await_chapter"
	ConfirmFromText  State = "confirm_from_text"
	AdminMenu        State = "admin_menu"
	AdminSendMessage State = "admin_send_message"
	AdminSetTarget   State = "admin_set_target"
	AdminSetTemplate State = "admin_set_template"
)

// States lists every state the controller handles.
func States() []State {
	return []State{
		Idle, AwaitPDF, AwaitText, AwaitGrade, AwaitSubject, AwaitChapter, ConfirmFromText,
		AdminMenu, AdminSendMessage, AdminSetTarget, AdminSetTemplate,
	}
}

func isAdminState(s State) bool {
	switch s {
	case AdminMenu, AdminSendMessage, AdminSetTarget, AdminSetTemplate:
		return true
	}
	return false
}
