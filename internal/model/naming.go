package model

import (
	"path/filepath"
	"strings"
)

const (
	// IRExt is the extension of IR program files.
	IRExt = ".ir.yaml"
	// WovenExt is the extension of woven IR files.
	WovenExt = ".woven.ir.yaml"
	// MutantsFile is the name of the mutation point report.
	MutantsFile = "mutants.txt"
	// ResultsFile is the name of the saved harness results.
	ResultsFile = "results.yaml"
)

// TrimIRExt returns the base name of path without its IR extension.
func TrimIRExt(path string) string {
	base := filepath.Base(path)

	for _, ext := range []string{WovenExt, IRExt, ".yaml", ".yml"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}

	return base
}
