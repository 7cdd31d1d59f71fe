package api

import (
	"github.com/celerix-dev/ministranci-console/internal/archive"
	"github.com/celerix-dev/ministranci-console/internal/console"
)

// Fields a re-posted interstitial carries.
const (
	fieldConfirm = "confirm"
	fieldPrompt  = "prompt"
)

// question is a confirm or prompt the request could not answer itself.
type question struct {
	Prompt   bool
	Message  string
	Fallback string
}

type attachment struct {
	name        string
	contentType string
	body        []byte
}

// requestUI is the console.UI of a single HTTP request. Answers to dialogs
// come from the submitted form; whatever the console shows is recorded and
// turned into a response by Handler.finish.
type requestUI struct {
	sess    *console.Session
	archive *archive.Archive

	confirmed bool
	answer    string
	answered  bool

	pending  *question
	reload   bool
	open     string
	download *attachment
}

func (u *requestUI) Confirm(message string) bool {
	if u.confirmed {
		return true
	}
	if u.pending == nil {
		u.pending = &question{Message: message}
	}
	return false
}

func (u *requestUI) Alert(message string) {
	u.sess.Push(message)
}

func (u *requestUI) Prompt(message, fallback string) (string, bool) {
	if u.answered {
		return u.answer, true
	}
	if u.pending == nil {
		u.pending = &question{Prompt: true, Message: message, Fallback: fallback}
	}
	return "", false
}

func (u *requestUI) Reload() { u.reload = true }

func (u *requestUI) Open(url string) { u.open = url }

// Download keeps a copy in the archive before the file is sent.
func (u *requestUI) Download(name, contentType string, body []byte) error {
	if u.archive != nil {
		if err := u.archive.Save(name, body); err != nil {
			return err
		}
	}
	u.download = &attachment{name: name, contentType: contentType, body: body}
	return nil
}

// Copy has no clipboard to write to; the text is shown with the next page.
func (u *requestUI) Copy(text string) error {
	u.sess.Push(text)
	return nil
}
