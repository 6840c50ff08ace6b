package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FileReport is what the validator learned about an acceptable form file
type FileReport struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Pages int    `json:"pages"`
	// Fields counts the entries of the AcroForm Fields array
	Fields  int  `json:"fields"`
	HasForm bool `json:"has_form"`
}

// Validator checks form files supplied in place of the bundled form
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator; a maxFileSize of zero disables the size check
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile checks that filePath names a readable PDF within the size
// limit and reports its page count and AcroForm fields.
func (v *Validator) ValidateFile(filePath string) (*FileReport, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	switch {
	case fileInfo.IsDir():
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	case !strings.EqualFold(filepath.Ext(filePath), ".pdf"):
		return nil, fmt.Errorf("file is not a PDF: %s", filePath)
	case fileInfo.Size() == 0:
		return nil, fmt.Errorf("file is empty: %s", filePath)
	case v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize:
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)
	}

	report, err := inspect(filePath)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}
	report.Size = fileInfo.Size()
	return report, nil
}

// inspect opens the file with the text reader and looks up the AcroForm of its catalog
func inspect(filePath string) (report *FileReport, err error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The reader panics on some malformed object graphs.
	defer func() {
		if rec := recover(); rec != nil {
			report, err = nil, fmt.Errorf("malformed document: %v", rec)
		}
	}()

	report = &FileReport{Path: filePath, Pages: r.NumPage()}
	acroForm := r.Trailer().Key("Root").Key("AcroForm")
	if !acroForm.IsNull() {
		report.HasForm = true
		report.Fields = acroForm.Key("Fields").Len()
	}
	return report, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.ValidateFile(filePath)
	return err == nil
}

// ReadFile validates filePath and returns its content with the validation report
func (v *Validator) ReadFile(filePath string) ([]byte, *FileReport, error) {
	report, err := v.ValidateFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, report, nil
}
