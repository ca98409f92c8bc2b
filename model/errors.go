package model

import (
	"fmt"
)

// FatalError describes a broken invariant found while building a tree. It is
// the panic value of every fatal condition in this package. Trees which
// trigger one are corrupt (or the code is wrong), so nothing here attempts
// to recover.
type FatalError struct {
	File, Tree int
	Halo       int // -1 if no halo is involved
	Msg        string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf(
		"file %d, tree %d, halo %d: %s", e.File, e.Tree, e.Halo, e.Msg,
	)
}

func (t *Tree) fatalf(h int, format string, args ...interface{}) {
	panic(&FatalError{
		File: t.File, Tree: t.Index, Halo: h,
		Msg: fmt.Sprintf(format, args...),
	})
}
