package model

import "gooze.dev/pkg/weave/internal/ir"

// Path represents a file system path.
type Path string

// File represents an IR file on disk.
type File struct {
	Path Path
	Hash string
}

// Source is a loaded IR file.
type Source struct {
	Origin  *File
	Program *ir.Program
}

// Name returns the base name of the source without the IR extension.
func (s Source) Name() string {
	if s.Origin == nil {
		return ""
	}

	return TrimIRExt(string(s.Origin.Path))
}
