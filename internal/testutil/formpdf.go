// Package testutil builds small AcroForm PDFs in memory for tests.
package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// FieldKind selects the kind of interactive field written by Form.Bytes
type FieldKind int

const (
	TextField FieldKind = iota
	CheckBox
	RadioGroup
	ComboBox
	PushButton
	Signature
	// Note is a plain text annotation, not a form field
	Note
)

// Field flags used by the fixtures
const (
	FlagReadOnly    = 1
	FlagMultiline   = 1 << 12
	FlagPassword    = 1 << 13
	FlagNoToggleOff = 1 << 14
	FlagRadio       = 1 << 15
	FlagPushButton  = 1 << 16
	FlagCombo       = 1 << 17
)

// Field describes one field (or note) of a fixture form.
type Field struct {
	Name string
	Kind FieldKind
	// Page is 1-based; zero means page 1.
	Page int
	// Object pins the object number of the widget (radio: of the parent field).
	Object int
	// Value is the text of Tx/Ch fields, the selected state of a radio group,
	// or any non-empty string for a checked checkbox.
	Value string
	// OnState is the checkbox export name, "Yes" when empty.
	OnState string
	// Options are radio states or combo box entries.
	Options []string
	// KidObjects pins the object numbers of radio widgets, in Options order.
	KidObjects []int
	Flags      int
}

// Form is a fixture document: one entry of Pages per page, holding the page text.
type Form struct {
	Pages      []string
	Fields     []Field
	NoAcroForm bool
}

type builder struct {
	objects  map[int]string
	reserved map[int]bool
	next     int
}

func (b *builder) alloc() int {
	for {
		b.next++
		if !b.reserved[b.next] {
			return b.next
		}
	}
}

func (b *builder) pin(n int) int {
	if n > 0 {
		return n
	}
	return b.alloc()
}

func (b *builder) stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

func (b *builder) appearance(w, h float64, on bool) int {
	n := b.alloc()
	data := "0 g"
	if on {
		data = fmt.Sprintf("0 g 1 1 %.0f %.0f re f", w-2, h-2)
	}
	b.objects[n] = b.stream(fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 %.0f %.0f]", w, h), data)
	return n
}

// Bytes renders the form as a complete PDF file with a classic xref table.
func (f Form) Bytes() []byte {
	pages := len(f.Pages)
	if pages == 0 {
		pages = 1
	}

	b := &builder{objects: map[int]string{}, reserved: map[int]bool{}}
	for _, fld := range f.Fields {
		if fld.Object > 0 {
			b.reserved[fld.Object] = true
		}
		for _, k := range fld.KidObjects {
			b.reserved[k] = true
		}
	}

	catalog := b.alloc()
	pagesObj := b.alloc()
	font := b.alloc()
	acroForm := 0
	if !f.NoAcroForm {
		acroForm = b.alloc()
	}

	pageObjs := make([]int, pages)
	contentObjs := make([]int, pages)
	for i := range pageObjs {
		pageObjs[i] = b.alloc()
		contentObjs[i] = b.alloc()
	}

	annots := make([][]int, pages)
	var fields []int

	for i, fld := range f.Fields {
		page := fld.Page
		if page < 1 || page > pages {
			page = 1
		}
		pageRef := pageObjs[page-1]
		y := 700 - float64(i%12)*40
		rect := fmt.Sprintf("[100 %.0f 300 %.0f]", y, y+20)
		flags := fld.Flags

		switch fld.Kind {
		case TextField, ComboBox, Signature:
			n := b.pin(fld.Object)
			ft := "/Tx"
			extra := ""
			switch fld.Kind {
			case ComboBox:
				ft = "/Ch"
				flags |= FlagCombo
				opts := make([]string, len(fld.Options))
				for j, o := range fld.Options {
					opts[j] = literal(o)
				}
				extra = " /Opt [" + strings.Join(opts, " ") + "]"
			case Signature:
				ft = "/Sig"
			}
			if fld.Value != "" {
				extra += " /V " + literal(fld.Value)
			}
			if flags != 0 {
				extra += fmt.Sprintf(" /Ff %d", flags)
			}
			b.objects[n] = fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT %s /T %s /Rect %s /P %d 0 R /F 4 /DA (/Helv 12 Tf 0 g)%s >>",
				ft, literal(fld.Name), rect, pageRef, extra)
			annots[page-1] = append(annots[page-1], n)
			fields = append(fields, n)

		case CheckBox, PushButton:
			n := b.pin(fld.Object)
			if fld.Kind == PushButton {
				flags |= FlagPushButton
				b.objects[n] = fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /Ff %d /T %s /Rect %s /P %d 0 R /F 4 >>",
					flags, literal(fld.Name), rect, pageRef)
			} else {
				on := fld.OnState
				if on == "" {
					on = "Yes"
				}
				state := "Off"
				if fld.Value != "" {
					state = on
				}
				onAP := b.appearance(20, 20, true)
				offAP := b.appearance(20, 20, false)
				extra := ""
				if flags != 0 {
					extra = fmt.Sprintf(" /Ff %d", flags)
				}
				b.objects[n] = fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /T %s /V /%s /AS /%s /Rect %s /P %d 0 R /F 4%s /AP << /N << /%s %d 0 R /Off %d 0 R >> >> >>",
					literal(fld.Name), state, state, rect, pageRef, extra, on, onAP, offAP)
			}
			annots[page-1] = append(annots[page-1], n)
			fields = append(fields, n)

		case RadioGroup:
			parent := b.pin(fld.Object)
			selected := "Off"
			if fld.Value != "" {
				selected = fld.Value
			}
			kids := make([]string, len(fld.Options))
			for j, opt := range fld.Options {
				kid := 0
				if j < len(fld.KidObjects) {
					kid = fld.KidObjects[j]
				}
				kid = b.pin(kid)
				state := "Off"
				if opt == selected {
					state = opt
				}
				onAP := b.appearance(20, 20, true)
				offAP := b.appearance(20, 20, false)
				x := 100 + float64(j)*40
				b.objects[kid] = fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %d 0 R /AS /%s /Rect [%.0f %.0f %.0f %.0f] /P %d 0 R /F 4 /AP << /N << /%s %d 0 R /Off %d 0 R >> >> >>",
					parent, state, x, y, x+20, y+20, pageRef, opt, onAP, offAP)
				kids[j] = fmt.Sprintf("%d 0 R", kid)
				annots[page-1] = append(annots[page-1], kid)
			}
			flags |= FlagRadio | FlagNoToggleOff
			b.objects[parent] = fmt.Sprintf("<< /FT /Btn /Ff %d /T %s /V /%s /Kids [%s] >>",
				flags, literal(fld.Name), selected, strings.Join(kids, " "))
			fields = append(fields, parent)

		case Note:
			n := b.pin(fld.Object)
			b.objects[n] = fmt.Sprintf("<< /Type /Annot /Subtype /Text /Rect %s /Contents %s /P %d 0 R >>",
				rect, literal(fld.Value), pageRef)
			annots[page-1] = append(annots[page-1], n)
		}
	}

	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		text := ""
		if i < len(f.Pages) {
			text = f.Pages[i]
		}
		b.objects[contentObjs[i]] = b.stream("", fmt.Sprintf("BT /Helv 12 Tf 72 740 Td %s Tj ET", literal(text)))

		annotRefs := ""
		if len(annots[i]) > 0 {
			refs := make([]string, len(annots[i]))
			for j, a := range annots[i] {
				refs[j] = fmt.Sprintf("%d 0 R", a)
			}
			annotRefs = " /Annots [" + strings.Join(refs, " ") + "]"
		}
		b.objects[pageObjs[i]] = fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv %d 0 R >> >> /Contents %d 0 R%s >>",
			pagesObj, font, contentObjs[i], annotRefs)
		kids[i] = fmt.Sprintf("%d 0 R", pageObjs[i])
	}

	b.objects[pagesObj] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages)
	b.objects[font] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	if acroForm > 0 {
		refs := make([]string, len(fields))
		for i, n := range fields {
			refs[i] = fmt.Sprintf("%d 0 R", n)
		}
		b.objects[acroForm] = fmt.Sprintf("<< /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv %d 0 R >> >> >>",
			strings.Join(refs, " "), font)
		b.objects[catalog] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pagesObj, acroForm)
	} else {
		b.objects[catalog] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	}

	return b.write(catalog)
}

func (b *builder) write(root int) []byte {
	nums := make([]int, 0, len(b.objects))
	maxObj := 0
	for n := range b.objects {
		nums = append(nums, n)
		if n > maxObj {
			maxObj = n
		}
	}
	sort.Ints(nums)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int, len(nums))
	for _, n := range nums {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, b.objects[n])
	}

	// Free entries form a linked list headed by object 0.
	var free []int
	for n := 1; n <= maxObj; n++ {
		if _, ok := offsets[n]; !ok {
			free = append(free, n)
		}
	}
	nextFree := func(i int) int {
		if i+1 < len(free) {
			return free[i+1]
		}
		return 0
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObj+1)
	head := 0
	if len(free) > 0 {
		head = free[0]
	}
	fmt.Fprintf(&buf, "%010d 65535 f\r\n", head)
	fi := 0
	for n := 1; n <= maxObj; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
			continue
		}
		fmt.Fprintf(&buf, "%010d 00001 f\r\n", nextFree(fi))
		fi++
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", maxObj+1, root, xref)

	return buf.Bytes()
}

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return "(" + r.Replace(s) + ")"
}
