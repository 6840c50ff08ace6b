// Package assets holds the PDF form compiled into the binaries.
package assets

import (
	_ "embed"
)

// FormName is the file name of the bundled form.
const FormName = "CERFA-AvisArretTravail.pdf"

//go:embed form.pdf
var form []byte

// Form returns a copy of the bundled PDF form.
func Form() []byte {
	out := make([]byte, len(form))
	copy(out, form)
	return out
}
