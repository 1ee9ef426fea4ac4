// Package notify holds the collaborators a screen reports to: notifications
// for staff, delete confirmation and navigation away from a screen.
package notify

import (
	"log"
	"sync"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one message shown to staff.
type Notice struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Notifier shows success and failure messages.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Success(text string) {
	f(Notice{Level: LevelSuccess, Text: text, At: time.Now()})
}
func (f NotifierFunc) Error(text string) { f(Notice{Level: LevelError, Text: text, At: time.Now()}) }

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{ Prefix string }

func (n LogNotifier) Success(text string) { log.Printf("%s: %s", n.prefix(), text) }
func (n LogNotifier) Error(text string)   { log.Printf("%s: error: %s", n.prefix(), text) }

func (n LogNotifier) prefix() string {
	if n.Prefix == "" {
		return "notify"
	}
	return n.Prefix
}

// Recorder keeps every notice it receives. The zero value is ready to use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Success(text string) { r.add(LevelSuccess, text) }
func (r *Recorder) Error(text string)   { r.add(LevelError, text) }

func (r *Recorder) add(l Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: l, Text: text, At: time.Now()})
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Tee fans every notice out to all of ns. Nil entries are skipped.
func Tee(ns ...Notifier) Notifier {
	return tee(ns)
}

type tee []Notifier

func (t tee) Success(text string) {
	for _, n := range t {
		if n != nil {
			n.Success(text)
		}
	}
}

func (t tee) Error(text string) {
	for _, n := range t {
		if n != nil {
			n.Error(text)
		}
	}
}

// Navigator moves the front end to another screen.
type Navigator interface {
	Redirect(screen string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(screen string)

func (f NavigatorFunc) Redirect(screen string) { f(screen) }
