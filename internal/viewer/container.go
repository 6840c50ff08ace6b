package viewer

import (
	"sync"
)

// Container holds the drawn page views in drawing order, indexes their
// annotation elements by annotation id and their radio controls by field name.
type Container struct {
	mu       sync.RWMutex
	views    []*PageView
	elements map[string]*Element
	radios   map[string][]*Control
}

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{
		elements: make(map[string]*Element),
		radios:   make(map[string][]*Control),
	}
}

// Append adds a drawn page view and registers its annotation elements
func (c *Container) Append(v *PageView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.views = append(c.views, v)
	if v.annotationLayer == nil {
		return
	}
	for _, el := range v.annotationLayer.Elements {
		c.elements[el.AnnotationID] = el
		if ctl := el.FirstElementChild(); ctl != nil && ctl.Type() == KindRadio && ctl.Name() != "" {
			c.radios[ctl.Name()] = append(c.radios[ctl.Name()], ctl)
		}
	}
}

// Element returns the element rendered for an annotation id, or nil
func (c *Container) Element(annotationID string) *Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elements[annotationID]
}

// Control returns the first child control of the element rendered for an annotation id
func (c *Container) Control(annotationID string) (*Control, bool) {
	ctl := c.Element(annotationID).FirstElementChild()
	return ctl, ctl != nil
}

// PageViews returns the drawn page views in drawing order
func (c *Container) PageViews() []*PageView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*PageView(nil), c.views...)
}

// Len returns the number of drawn page views
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.views)
}

// RadioGroup returns the radio controls of the named field in drawing order
func (c *Container) RadioGroup(name string) []*Control {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Control(nil), c.radios[name]...)
}

// SetChecked sets the checked state of ctl. Checking a radio control unchecks
// the other controls of its group, so a group has at most one checked control.
func (c *Container) SetChecked(ctl *Control, checked bool) {
	if ctl.Type() != KindRadio || ctl.Name() == "" || !checked || ctl.ReadOnly() {
		ctl.SetChecked(checked)
		return
	}

	// The write lock serializes selections within a group.
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, other := range c.radios[ctl.Name()] {
		if other != ctl {
			other.SetChecked(false)
		}
	}
	ctl.SetChecked(true)
}
