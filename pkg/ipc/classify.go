package ipc

import "dataviewer/pkg/dataview"

// Kind tells what a received document asks the viewer to do.
type Kind int

const (
	KindIgnore Kind = iota
	// KindOpen documents describe series and open a new view.
	KindOpen
	// KindAppend documents only carry values for existing series.
	KindAppend
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindAppend:
		return "append"
	}
	return "ignore"
}

func Classify(f *dataview.File) Kind {
	switch {
	case f == nil:
		return KindIgnore
	case len(f.Chart) > 0:
		return KindOpen
	case len(f.Data) > 0:
		return KindAppend
	}
	return KindIgnore
}
