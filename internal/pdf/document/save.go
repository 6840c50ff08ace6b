package document

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// SaveDocument serializes the document with every value of storage written
// into its form fields. The document itself is not modified: each call starts
// from the source bytes. Ids that do not resolve to a form widget are ignored.
func (d *Document) SaveDocument(ctx context.Context, storage *AnnotationStorage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DocumentError{Op: "save", Err: err}
	}

	pctx, err := api.ReadContext(bytes.NewReader(d.data), newConfiguration())
	if err != nil {
		return nil, &DocumentError{Op: "save", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, &DocumentError{Op: "save", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	if storage != nil {
		values := storage.Serializable()
		for _, id := range storage.Keys() {
			if err := ctx.Err(); err != nil {
				return nil, &DocumentError{Op: "save", Err: err}
			}
			applyValue(pctx, id, values[id])
		}
	}

	if err := setNeedAppearances(pctx); err != nil {
		return nil, &DocumentError{Op: "save", Err: err}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, &DocumentError{Op: "save", Err: fmt.Errorf("failed to write PDF: %w", err)}
	}
	return buf.Bytes(), nil
}

// applyValue writes value into the field owning the widget identified by id
func applyValue(pctx *model.Context, id string, value any) bool {
	objNr, genNr, err := ParseID(id)
	if err != nil {
		return false
	}
	ref := types.IndirectRef{
		ObjectNumber:     types.Integer(objNr),
		GenerationNumber: types.Integer(genNr),
	}

	widget, err := pctx.DereferenceDict(ref)
	if err != nil || widget == nil {
		return false
	}
	field := fieldDict(pctx, widget)

	fieldType := ""
	if obj, found := inherited(pctx, widget, "FT"); found {
		if name, err := pctx.DereferenceName(obj, model.V10, nil); err == nil {
			fieldType = string(name)
		}
	}
	flags := 0
	if obj, found := inherited(pctx, widget, "Ff"); found {
		if i, err := pctx.DereferenceInteger(obj); err == nil && i != nil {
			flags = int(*i)
		}
	}

	switch fieldType {
	case "Btn":
		if flags&FlagPushButton != 0 {
			return false
		}
		on := exportValue(pctx, widget)
		checked := Truthy(value)
		if flags&FlagRadio != 0 {
			setRadio(pctx, field, ref, widget, on, checked)
			return true
		}
		state := "Off"
		if checked {
			state = on
		}
		field["V"] = types.Name(state)
		widget["AS"] = types.Name(state)
		return true

	case "Tx", "Ch":
		field["V"] = encodeText(Stringify(value))
		return true
	}

	return false
}

// setRadio checks or unchecks one button of a radio group
func setRadio(pctx *model.Context, field types.Dict, ref types.IndirectRef, widget types.Dict, on string, checked bool) {
	if !checked {
		if obj, found := field.Find("V"); found {
			if name, err := pctx.DereferenceName(obj, model.V10, nil); err == nil && string(name) == on {
				field["V"] = types.Name("Off")
			}
		}
		widget["AS"] = types.Name("Off")
		return
	}

	field["V"] = types.Name(on)
	widget["AS"] = types.Name(on)

	kidsObj, found := field.Find("Kids")
	if !found {
		return
	}
	kids, err := pctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}
	for _, kid := range kids {
		kidRef, ok := kid.(types.IndirectRef)
		if !ok || (kidRef.ObjectNumber == ref.ObjectNumber && kidRef.GenerationNumber == ref.GenerationNumber) {
			continue
		}
		if kidDict, err := pctx.DereferenceDict(kidRef); err == nil && kidDict != nil {
			kidDict["AS"] = types.Name("Off")
		}
	}
}

// fieldDict returns the terminal field of a widget: the widget itself when
// field and widget are merged, its parent otherwise.
func fieldDict(pctx *model.Context, widget types.Dict) types.Dict {
	if _, found := widget.Find("T"); found {
		return widget
	}
	if parentObj, found := widget.Find("Parent"); found {
		if parent, err := pctx.DereferenceDict(parentObj); err == nil && parent != nil {
			return parent
		}
	}
	return widget
}

// setNeedAppearances asks viewers to regenerate field appearances from the new values
func setNeedAppearances(pctx *model.Context) error {
	catalog, err := pctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := catalog.Find("AcroForm")
	if !found {
		return nil
	}
	acroForm, err := pctx.DereferenceDict(acroFormObj)
	if err != nil {
		return fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil
	}

	acroForm["NeedAppearances"] = types.Boolean(true)
	return nil
}

// encodeText returns a PDF text string: an escaped literal for printable
// ASCII, a UTF-16BE hex string with byte order mark otherwise.
func encodeText(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 || c > 0x7e) && c != '\n' && c != '\r' && c != '\t' {
			ascii = false
			break
		}
	}

	if ascii {
		r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`, "\n", `\n`, "\t", `\t`)
		return types.StringLiteral(r.Replace(s))
	}

	units := utf16.Encode([]rune(s))
	b := make([]byte, 2, 2+2*len(units))
	b[0], b[1] = 0xFE, 0xFF
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}
