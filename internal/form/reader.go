package form

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-form/internal/viewer"
)

// forEachPage runs fn for every page of doc concurrently and waits for all of them.
// The first error cancels the remaining pages.
func forEachPage(ctx context.Context, doc *document.Document,
	fn func(ctx context.Context, pageIndex int, annots []document.Annotation) error,
) error {
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	for i := 1; i <= doc.NumPages(); i++ {
		pageNum := i
		p.Go(func(ctx context.Context) error {
			page, err := doc.Page(ctx, pageNum)
			if err != nil {
				return err
			}
			annots, err := page.Annotations(ctx)
			if err != nil {
				return err
			}
			return fn(ctx, pageNum-1, annots)
		})
	}

	return p.Wait()
}

// ReadFormData returns a record for every annotation of doc that has a
// rendered control in container, ordered by page and annotation order.
// Annotations without a control are skipped.
func ReadFormData(ctx context.Context, doc *document.Document, container *viewer.Container) ([]FormValue, error) {
	perPage := make([][]FormValue, doc.NumPages())

	err := forEachPage(ctx, doc, func(_ context.Context, pageIndex int, annots []document.Annotation) error {
		values := make([]FormValue, 0, len(annots))
		for _, a := range annots {
			ctl, ok := container.Control(a.ID)
			if !ok {
				continue
			}
			values = append(values, NewFormValue(a.ID, controlValue(ctl), ctl.Type(), a.FieldName))
		}
		perPage[pageIndex] = values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read form data: %w", err)
	}

	formData := make([]FormValue, 0)
	for _, values := range perPage {
		formData = append(formData, values...)
	}
	return formData, nil
}

// controlValue reads the checked state of toggles and the text of everything else
func controlValue(ctl *viewer.Control) any {
	if isToggle(ctl) {
		return ctl.Checked()
	}
	return ctl.Value()
}

func isToggle(ctl *viewer.Control) bool {
	return ctl.Type() == viewer.KindCheckbox || ctl.Type() == viewer.KindRadio
}
