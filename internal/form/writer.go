package form

import (
	"context"
	"fmt"

	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-form/internal/viewer"
)

// WriteFormData assigns each record to the rendered control of the annotation
// with the same id. Records without a matching annotation or control are ignored.
// Checking a radio control unchecks the rest of its group.
func WriteFormData(ctx context.Context, doc *document.Document, container *viewer.Container,
	formValues []FormValue,
) error {
	err := forEachPage(ctx, doc, func(_ context.Context, _ int, annots []document.Annotation) error {
		for _, a := range annots {
			obj, found := findValue(formValues, a.ID)
			if !found {
				continue
			}
			ctl, ok := container.Control(a.ID)
			if !ok {
				continue
			}
			if isToggle(ctl) {
				container.SetChecked(ctl, document.Truthy(obj.Value))
			} else {
				ctl.SetValue(document.Stringify(obj.Value))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write form data: %w", err)
	}
	return nil
}

// findValue returns the first record with the given id
func findValue(values []FormValue, id string) (FormValue, bool) {
	for _, v := range values {
		if v.ID == id {
			return v, true
		}
	}
	return FormValue{}, false
}
