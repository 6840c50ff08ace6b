package viewer

import (
	"context"
	"fmt"

	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
)

// AnnotationLayer is the set of elements rendered for the annotations of one page
type AnnotationLayer struct {
	Elements []*Element
}

// AnnotationLayerBuilder renders the annotation layer of one page
type AnnotationLayerBuilder interface {
	Render(ctx context.Context) (*AnnotationLayer, error)
}

// AnnotationLayerFactory creates annotation layer builders for page views
type AnnotationLayerFactory interface {
	CreateAnnotationLayerBuilder(page *document.Page, renderInteractiveForms bool) AnnotationLayerBuilder
}

// DefaultAnnotationLayerFactory renders one element per annotation and an
// input control for every widget it knows how to edit.
type DefaultAnnotationLayerFactory struct{}

// CreateAnnotationLayerBuilder implements AnnotationLayerFactory
func (DefaultAnnotationLayerFactory) CreateAnnotationLayerBuilder(page *document.Page,
	renderInteractiveForms bool,
) AnnotationLayerBuilder {
	return &annotationLayerBuilder{page: page, renderInteractiveForms: renderInteractiveForms}
}

type annotationLayerBuilder struct {
	page                   *document.Page
	renderInteractiveForms bool
}

func (b *annotationLayerBuilder) Render(ctx context.Context) (*AnnotationLayer, error) {
	annots, err := b.page.Annotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get annotations: %w", err)
	}

	storage := b.page.AnnotationStorage()
	layer := &AnnotationLayer{Elements: make([]*Element, 0, len(annots))}

	for _, a := range annots {
		if a.Hidden {
			continue
		}
		el := &Element{AnnotationID: a.ID, PageNumber: b.page.Number()}
		if a.IsWidget() && b.renderInteractiveForms {
			if ctl := newWidgetControl(a, storage); ctl != nil {
				el.Append(ctl)
			}
		}
		layer.Elements = append(layer.Elements, el)
	}

	return layer, nil
}

// newWidgetControl builds the control of a widget. Values held in the
// annotation storage take precedence over the values stored in the file.
// Push buttons and signatures get no control.
func newWidgetControl(a document.Annotation, storage *document.AnnotationStorage) *Control {
	var ctl *Control

	switch a.FieldType {
	case "Tx":
		kind := KindText
		switch {
		case a.Multiline():
			kind = KindTextarea
		case a.Password():
			kind = KindPassword
		}
		ctl = NewControl(kind, a.FieldName)
		ctl.value = document.Stringify(storage.GetValue(a.ID, a.FieldValue))

	case "Btn":
		switch {
		case a.PushButton():
			return nil
		case a.RadioButton():
			ctl = NewControl(KindRadio, a.FieldName)
			if storage.Has(a.ID) {
				ctl.checked = document.Truthy(storage.GetValue(a.ID, nil))
			} else {
				ctl.checked = a.FieldValue == a.ExportValue
			}
		default:
			ctl = NewControl(KindCheckbox, a.FieldName)
			if storage.Has(a.ID) {
				ctl.checked = document.Truthy(storage.GetValue(a.ID, nil))
			} else {
				state, _ := a.FieldValue.(string)
				ctl.checked = state != "" && state != "Off"
			}
		}
		ctl.value = a.ExportValue

	case "Ch":
		kind := KindSelectOne
		if a.MultiSelect() {
			kind = KindSelectMultiple
		}
		ctl = NewControl(kind, a.FieldName)
		value := storage.GetValue(a.ID, a.FieldValue)
		if selected, ok := value.([]string); ok {
			value = ""
			if len(selected) > 0 {
				value = selected[0]
			}
		}
		ctl.value = document.Stringify(value)

	default:
		return nil
	}

	ctl.readOnly = a.ReadOnly()
	return ctl
}

// TextLayer is the plain text drawn on one page
type TextLayer struct {
	Text string
}

// TextLayerBuilder renders the text layer of one page
type TextLayerBuilder interface {
	Render(ctx context.Context) (*TextLayer, error)
}

// TextLayerFactory creates text layer builders for page views
type TextLayerFactory interface {
	CreateTextLayerBuilder(page *document.Page) TextLayerBuilder
}

// DefaultTextLayerFactory extracts the page text with the document's text reader
type DefaultTextLayerFactory struct{}

// CreateTextLayerBuilder implements TextLayerFactory
func (DefaultTextLayerFactory) CreateTextLayerBuilder(page *document.Page) TextLayerBuilder {
	return &textLayerBuilder{page: page}
}

type textLayerBuilder struct {
	page *document.Page
}

func (b *textLayerBuilder) Render(ctx context.Context) (*TextLayer, error) {
	text, err := b.page.Text(ctx)
	if err != nil {
		return nil, err
	}
	return &TextLayer{Text: text}, nil
}
