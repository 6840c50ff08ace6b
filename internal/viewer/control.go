package viewer

import (
	"sync"
)

// Control kinds, named after the input types a browser reports
const (
	KindText           = "text"
	KindTextarea       = "textarea"
	KindPassword       = "password"
	KindCheckbox       = "checkbox"
	KindRadio          = "radio"
	KindSelectOne      = "select-one"
	KindSelectMultiple = "select-multiple"
)

// Control is the interactive input rendered for a form widget
type Control struct {
	mu       sync.RWMutex
	kind     string
	name     string
	value    string
	checked  bool
	readOnly bool
}

// NewControl creates a control of the given kind
func NewControl(kind, name string) *Control {
	return &Control{kind: kind, name: name}
}

// Type returns the control kind
func (c *Control) Type() string { return c.kind }

// Name returns the field name the control edits
func (c *Control) Name() string { return c.name }

// ReadOnly reports whether the control rejects edits
func (c *Control) ReadOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readOnly
}

// Value returns the textual value
func (c *Control) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// SetValue replaces the textual value; read-only controls are left unchanged
func (c *Control) SetValue(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readOnly {
		return
	}
	c.value = v
}

// Checked returns the checked state
func (c *Control) Checked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checked
}

// SetChecked replaces the checked state; read-only controls are left unchanged
func (c *Control) SetChecked(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readOnly {
		return
	}
	c.checked = v
}

// Element is the section rendered for one annotation; interactive widgets
// carry their control as first child.
type Element struct {
	AnnotationID string
	PageNumber   int
	children     []*Control
}

// FirstElementChild returns the first child control, or nil
func (e *Element) FirstElementChild() *Control {
	if e == nil || len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Append adds a child control
func (e *Element) Append(c *Control) {
	e.children = append(e.children, c)
}
