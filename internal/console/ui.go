package console

// Dialog is the blocking interaction surface: confirm, alert and prompt.
type Dialog interface {
	Confirm(message string) bool
	Alert(message string)
	// Prompt asks for a line of text. ok is false when the user cancels.
	Prompt(message, fallback string) (answer string, ok bool)
}

// Navigator moves the page: reload it or open an external link.
type Navigator interface {
	Reload()
	Open(url string)
}

// Downloader hands a generated file to the user.
type Downloader interface {
	Download(name, contentType string, body []byte) error
}

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// UI bundles everything a driver has to provide.
type UI interface {
	Dialog
	Navigator
	Downloader
	Clipboard
}
