package console

// Modal names, also used as the outside-click target of each backdrop.
const (
	ModalPassword = "passwordModal"
	ModalDetails  = "userDetailsModal"
	ModalNotes    = "notesModal"
)

// Modal is an overlay bound to a target user.
type Modal interface {
	Name() string
	Target() string
	IsOpen() bool
	show(target string)
	hide()
}

// userModal carries the state every modal shares.
type userModal struct {
	open   bool
	target string
}

func (m *userModal) Target() string { return m.target }
func (m *userModal) IsOpen() bool   { return m.open }

func (m *userModal) show(target string) {
	m.open = true
	m.target = target
}

func (m *userModal) hide() {
	m.open = false
	m.target = ""
}

// ModalManager keeps at most one modal open.
type ModalManager struct {
	active Modal
}

// Open shows m for target, closing whichever modal was open before.
func (mm *ModalManager) Open(m Modal, target string) {
	if mm.active != nil && mm.active != m {
		mm.active.hide()
	}
	mm.active = m
	m.show(target)
}

// Active returns the open modal or nil.
func (mm *ModalManager) Active() Modal {
	return mm.active
}

// Close hides the active modal, if any.
func (mm *ModalManager) Close() {
	if mm.active == nil {
		return
	}
	mm.active.hide()
	mm.active = nil
}

// CloseIf hides m when it is the active modal.
func (mm *ModalManager) CloseIf(m Modal) {
	if mm.active == m {
		mm.Close()
	}
}

// OutsideClick closes the active modal when the click landed on its backdrop.
func (mm *ModalManager) OutsideClick(target string) bool {
	if mm.active == nil || mm.active.Name() != target {
		return false
	}
	mm.Close()
	return true
}

// Escape closes the active modal.
func (mm *ModalManager) Escape() {
	mm.Close()
}
