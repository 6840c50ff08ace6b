package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Field flags (Ff)
const (
	FlagReadOnly    = 1
	FlagRequired    = 1 << 1
	FlagMultiline   = 1 << 12
	FlagPassword    = 1 << 13
	FlagNoToggleOff = 1 << 14
	FlagRadio       = 1 << 15
	FlagPushButton  = 1 << 16
	FlagCombo       = 1 << 17
	FlagMultiSelect = 1 << 21
)

// Annotation flags (F)
const (
	annotFlagHidden = 1 << 1
)

// maxFieldDepth bounds Parent chain walks
const maxFieldDepth = 32

// defaultOnState is the checkbox export value used when no appearance names one
const defaultOnState = "Yes"

// Annotation is an annotation of a page, with the form field data of widgets resolved
type Annotation struct {
	ID          string    `json:"id"`
	Subtype     string    `json:"subtype"`
	FieldName   string    `json:"field_name,omitempty"`
	FieldType   string    `json:"field_type,omitempty"`
	FieldFlags  int       `json:"field_flags,omitempty"`
	FieldValue  any       `json:"field_value,omitempty"`
	ExportValue string    `json:"export_value,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Rect        []float64 `json:"rect,omitempty"`
	Hidden      bool      `json:"hidden,omitempty"`
	PageNumber  int       `json:"page"`
}

// IsWidget reports whether the annotation is a form field widget
func (a Annotation) IsWidget() bool { return a.Subtype == "Widget" }

// CheckBox reports whether the widget is a checkbox
func (a Annotation) CheckBox() bool {
	return a.FieldType == "Btn" && a.FieldFlags&(FlagRadio|FlagPushButton) == 0
}

// RadioButton reports whether the widget is one button of a radio group
func (a Annotation) RadioButton() bool {
	return a.FieldType == "Btn" && a.FieldFlags&FlagRadio != 0
}

// PushButton reports whether the widget is a push button
func (a Annotation) PushButton() bool {
	return a.FieldType == "Btn" && a.FieldFlags&FlagPushButton != 0
}

// ReadOnly reports whether the field is read-only
func (a Annotation) ReadOnly() bool { return a.FieldFlags&FlagReadOnly != 0 }

// Multiline reports whether a text field accepts several lines
func (a Annotation) Multiline() bool { return a.FieldFlags&FlagMultiline != 0 }

// Password reports whether a text field masks its input
func (a Annotation) Password() bool { return a.FieldFlags&FlagPassword != 0 }

// MultiSelect reports whether a choice field allows several selections
func (a Annotation) MultiSelect() bool { return a.FieldFlags&FlagMultiSelect != 0 }

// FormatID renders an object reference as an annotation id ("285R", or "285R2" for generation 2)
func FormatID(objNr, genNr int) string {
	if genNr == 0 {
		return fmt.Sprintf("%dR", objNr)
	}
	return fmt.Sprintf("%dR%d", objNr, genNr)
}

// ParseID splits an annotation id into object and generation numbers
func ParseID(id string) (objNr, genNr int, err error) {
	i := strings.IndexByte(id, 'R')
	if i <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	objNr, err = strconv.Atoi(id[:i])
	if err != nil || objNr <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if rest := id[i+1:]; rest != "" {
		genNr, err = strconv.Atoi(rest)
		if err != nil || genNr < 0 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return objNr, genNr, nil
}

// pageAnnotations resolves the /Annots array of a page
func pageAnnotations(pctx *model.Context, pageNr int) ([]Annotation, error) {
	pageDict, _, _, err := pctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	if pageDict == nil {
		return nil, nil
	}

	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return nil, nil
	}

	annots, err := pctx.DereferenceArray(annotsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Annots array: %w", err)
	}

	result := make([]Annotation, 0, len(annots))
	for _, obj := range annots {
		// Inline annotations carry no object reference and therefore no id.
		ref, ok := obj.(types.IndirectRef)
		if !ok {
			continue
		}

		dict, err := pctx.DereferenceDict(ref)
		if err != nil || dict == nil {
			continue
		}

		result = append(result, parseAnnotation(pctx, ref, dict, pageNr))
	}

	return result, nil
}

// parseAnnotation extracts the annotation data of a single annotation dictionary
func parseAnnotation(pctx *model.Context, ref types.IndirectRef, dict types.Dict, pageNr int) Annotation {
	a := Annotation{
		ID:         FormatID(int(ref.ObjectNumber), int(ref.GenerationNumber)),
		Subtype:    nameEntry(pctx, dict, "Subtype"),
		Rect:       rectEntry(pctx, dict),
		PageNumber: pageNr,
	}

	if flags, ok := intEntry(pctx, dict, "F"); ok {
		a.Hidden = flags&annotFlagHidden != 0
	}

	if !a.IsWidget() {
		return a
	}

	a.FieldName = qualifiedName(pctx, dict)
	if obj, found := inherited(pctx, dict, "FT"); found {
		if name, err := pctx.DereferenceName(obj, model.V10, nil); err == nil {
			a.FieldType = string(name)
		}
	}
	if obj, found := inherited(pctx, dict, "Ff"); found {
		if flags, err := pctx.DereferenceInteger(obj); err == nil && flags != nil {
			a.FieldFlags = int(*flags)
		}
	}
	if obj, found := inherited(pctx, dict, "V"); found {
		a.FieldValue = fieldValue(pctx, obj, a.FieldType)
	}
	if obj, found := inherited(pctx, dict, "Opt"); found {
		a.Options = options(pctx, obj)
	}

	if a.FieldType == "Btn" && a.FieldFlags&FlagPushButton == 0 {
		a.ExportValue = exportValue(pctx, dict)
		// A widget without /V on its field falls back to its appearance state.
		if a.FieldValue == nil {
			if state := nameEntry(pctx, dict, "AS"); state != "" && a.FieldFlags&FlagRadio == 0 {
				a.FieldValue = state
			}
		}
	}

	return a
}

// inherited looks key up in dict and its Parent chain
func inherited(pctx *model.Context, dict types.Dict, key string) (types.Object, bool) {
	for depth := 0; dict != nil && depth < maxFieldDepth; depth++ {
		if obj, found := dict.Find(key); found {
			return obj, true
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := pctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}
	return nil, false
}

// qualifiedName joins the partial names (T) of the field hierarchy with dots
func qualifiedName(pctx *model.Context, dict types.Dict) string {
	var parts []string
	for depth := 0; dict != nil && depth < maxFieldDepth; depth++ {
		if obj, found := dict.Find("T"); found {
			if name, err := pctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil && name != "" {
				parts = append(parts, name)
			}
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := pctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// fieldValue decodes a V entry according to the field type
func fieldValue(pctx *model.Context, obj types.Object, fieldType string) any {
	switch fieldType {
	case "Btn":
		if name, err := pctx.DereferenceName(obj, model.V10, nil); err == nil {
			return string(name)
		}
	case "Tx", "Ch":
		if s, err := pctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
			return s
		}
		if arr, err := pctx.DereferenceArray(obj); err == nil && arr != nil {
			values := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, err := pctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
					values = append(values, s)
				}
			}
			return values
		}
	}
	return nil
}

// options reads an Opt array; pairs of [export, display] yield the display value
func options(pctx *model.Context, obj types.Object) []string {
	arr, err := pctx.DereferenceArray(obj)
	if err != nil {
		return nil
	}

	var out []string
	for _, opt := range arr {
		if s, err := pctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			out = append(out, s)
		} else if pair, err := pctx.DereferenceArray(opt); err == nil && len(pair) >= 2 {
			if s, err := pctx.DereferenceStringOrHexLiteral(pair[1], model.V10, nil); err == nil {
				out = append(out, s)
			}
		}
	}
	return out
}

// exportValue returns the on-state name of a button widget from its normal appearances
func exportValue(pctx *model.Context, widget types.Dict) string {
	apObj, found := widget.Find("AP")
	if !found {
		return defaultOnState
	}
	ap, err := pctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return defaultOnState
	}
	nObj, found := ap.Find("N")
	if !found {
		return defaultOnState
	}
	n, err := pctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return defaultOnState
	}

	states := make([]string, 0, len(n))
	for k := range n {
		if k != "Off" {
			states = append(states, k)
		}
	}
	if len(states) == 0 {
		return defaultOnState
	}
	sort.Strings(states)
	return states[0]
}

func nameEntry(pctx *model.Context, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	name, err := pctx.DereferenceName(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(name)
}

func intEntry(pctx *model.Context, dict types.Dict, key string) (int, bool) {
	obj, found := dict.Find(key)
	if !found {
		return 0, false
	}
	i, err := pctx.DereferenceInteger(obj)
	if err != nil || i == nil {
		return 0, false
	}
	return int(*i), true
}

func rectEntry(pctx *model.Context, dict types.Dict) []float64 {
	obj, found := dict.Find("Rect")
	if !found {
		return nil
	}
	arr, err := pctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return nil
	}

	rect := make([]float64, 4)
	for i, c := range arr {
		if f, err := pctx.DereferenceNumber(c); err == nil {
			rect[i] = f
		}
	}
	return rect
}
