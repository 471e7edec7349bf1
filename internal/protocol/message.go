package protocol

import "fmt"

// Tag is the one-byte variant discriminator. Values follow declaration order
// and are part of the wire contract.
type Tag uint8

const (
	TagText Tag = iota
	TagNotify
	TagInvoke
	TagLaunch
	TagAcknowledge
	TagFailure

	tagCount
)

func (t Tag) Valid() bool {
	return t < tagCount
}

func (t Tag) String() string {
	switch t {
	case TagText:
		return "text"
	case TagNotify:
		return "notify"
	case TagInvoke:
		return "invoke"
	case TagLaunch:
		return "launch"
	case TagAcknowledge:
		return "acknowledge"
	case TagFailure:
		return "failure"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Message is the closed set of payloads carried by an Envelope. Only types in
// this package implement it.
type Message interface {
	Tag() Tag
	sealed()
}

// Text carries informational text for the agent to print.
type Text struct {
	Body string
}

// Notify asks the agent to surface a notification.
type Notify struct {
	Title string
	Body  string
}

// Invoke describes a reflective call on the agent side.
type Invoke struct {
	Class     string
	Method    string
	Signature string
}

// Launch describes an external process to start. A nil Env value unsets the
// variable in the child environment.
type Launch struct {
	Path string
	Args []string
	Dir  string
	Env  map[string]*string
}

// Acknowledge is the bare success reply.
type Acknowledge struct{}

// Failure is the bare error reply.
type Failure struct{}

func (Text) Tag() Tag        { return TagText }
func (Notify) Tag() Tag      { return TagNotify }
func (Invoke) Tag() Tag      { return TagInvoke }
func (Launch) Tag() Tag      { return TagLaunch }
func (Acknowledge) Tag() Tag { return TagAcknowledge }
func (Failure) Tag() Tag     { return TagFailure }

func (Text) sealed()        {}
func (Notify) sealed()      {}
func (Invoke) sealed()      {}
func (Launch) sealed()      {}
func (Acknowledge) sealed() {}
func (Failure) sealed()     {}

func NewText(body string) Message {
	return Text{Body: body}
}

func NewNotify(title, body string) Message {
	return Notify{Title: title, Body: body}
}

func NewInvoke(class, method, signature string) Message {
	return Invoke{Class: class, Method: method, Signature: signature}
}

func NewLaunch(path string, args ...string) Launch {
	return Launch{Path: path, Args: args}
}

// SetEnv overrides one variable in the child environment.
func (l Launch) SetEnv(key, value string) Launch {
	l.Env = cloneEnv(l.Env)
	l.Env[key] = &value
	return l
}

// UnsetEnv removes one variable from the child environment.
func (l Launch) UnsetEnv(key string) Launch {
	l.Env = cloneEnv(l.Env)
	l.Env[key] = nil
	return l
}

func cloneEnv(in map[string]*string) map[string]*string {
	out := make(map[string]*string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Normalize returns the value form of msg. Pointer variants satisfy Message
// through their method sets, so callers may hand either form to the codec.
func Normalize(msg Message) (Message, bool) {
	switch m := msg.(type) {
	case nil:
		return nil, false
	case *Text:
		if m == nil {
			return nil, false
		}
		return *m, true
	case *Notify:
		if m == nil {
			return nil, false
		}
		return *m, true
	case *Invoke:
		if m == nil {
			return nil, false
		}
		return *m, true
	case *Launch:
		if m == nil {
			return nil, false
		}
		return *m, true
	case *Acknowledge:
		if m == nil {
			return nil, false
		}
		return *m, true
	case *Failure:
		if m == nil {
			return nil, false
		}
		return *m, true
	default:
		return msg, true
	}
}

// Equal reports whether two messages carry the same payload. Nil and empty
// argument lists or environments are equal since they encode identically.
func Equal(a, b Message) bool {
	a, okA := Normalize(a)
	b, okB := Normalize(b)
	if !okA || !okB {
		return okA == okB
	}
	switch x := a.(type) {
	case Launch:
		y, ok := b.(Launch)
		if !ok || x.Path != y.Path || x.Dir != y.Dir || len(x.Args) != len(y.Args) || len(x.Env) != len(y.Env) {
			return false
		}
		for i := range x.Args {
			if x.Args[i] != y.Args[i] {
				return false
			}
		}
		for k, xv := range x.Env {
			yv, ok := y.Env[k]
			if !ok || (xv == nil) != (yv == nil) || (xv != nil && *xv != *yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
