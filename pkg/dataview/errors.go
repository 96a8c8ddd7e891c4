package dataview

import (
	"errors"

	"github.com/ansel1/merry"
)

var (
	// ErrDocumentParse is returned for documents that are not valid dataview TOML.
	ErrDocumentParse = merry.New("malformed dataview document")
	// ErrUnsupportedChartType is returned when a document asks for a chart
	// type that has no drawing strategy.
	ErrUnsupportedChartType = merry.New("unsupported chart type")
	// ErrIO wraps failures reading or writing documents and exports.
	ErrIO = merry.New("i/o failure")
)

func parseError(err error) error {
	return ErrDocumentParse.Here().
		WithCause(err).
		WithUserMessage("The file is not a valid dataview document.")
}

// IOError wraps a failed file operation on path as ErrIO.
func IOError(op, path string, err error) error {
	return ErrIO.Here().
		WithMessagef("%s %s", op, path).
		WithCause(err).
		WithUserMessagef("Could not %s %s.", op, path)
}

// UnsupportedType builds the error returned for a chart type without strategy.
func UnsupportedType(t Type) error {
	return ErrUnsupportedChartType.Here().
		WithMessagef("unimplemented chart type %q", t.String()).
		WithUserMessagef("Charts of type %s are not supported yet.", t.String())
}

// UserMessage returns the text to show to a user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := merry.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

// IsParseError reports whether err comes from a malformed document.
func IsParseError(err error) bool {
	return errors.Is(err, ErrDocumentParse)
}
