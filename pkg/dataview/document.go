package dataview

import (
	"fmt"
	"sort"
)

// Type selects the chart strategy used to draw a File.
type Type int

const (
	TypeXY Type = iota
	// TypeLine is accepted by the format but no strategy draws it yet.
	TypeLine
)

func (t Type) String() string {
	switch t {
	case TypeXY:
		return "XY"
	case TypeLine:
		return "Line"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t Type) MarshalText() ([]byte, error) {
	switch t {
	case TypeXY, TypeLine:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown chart type %d", int(t))
}

func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "XY", "":
		*t = TypeXY
	case "Line":
		*t = TypeLine
	default:
		return fmt.Errorf("unknown chart type %q", string(text))
	}
	return nil
}

// Header is the [dataview] section: global presentation settings of a document.
type Header struct {
	Type        Type     `toml:"type"`
	Title       string   `toml:"title,omitempty"`
	XTitle      string   `toml:"x_title,omitempty"`
	YTitle      string   `toml:"y_title,omitempty"`
	XUnit       string   `toml:"x_unit,omitempty"`
	YUnit       string   `toml:"y_unit,omitempty"`
	XMin        *float64 `toml:"x_min,omitempty"`
	XMax        *float64 `toml:"x_max,omitempty"`
	YMin        *float64 `toml:"y_min,omitempty"`
	YMax        *float64 `toml:"y_max,omitempty"`
	Description string   `toml:"description,omitempty"`
}

// Chart holds the display metadata of one series.
type Chart struct {
	Title       string `toml:"title,omitempty"`
	Description string `toml:"description,omitempty"`
}

// File is the root of a dataview document.
type File struct {
	DataView Header            `toml:"dataview"`
	Chart    map[string]Chart  `toml:"chart"`
	Data     map[string]Series `toml:"data"`
}

// NewFile returns an empty XY document.
func NewFile() *File {
	return &File{
		Chart: make(map[string]Chart),
		Data:  make(map[string]Series),
	}
}

// Normalize makes the maps usable and gives every described series
// an entry in Data, empty if the document carried no values for it.
func (f *File) Normalize() {
	if f.Chart == nil {
		f.Chart = make(map[string]Chart)
	}
	if f.Data == nil {
		f.Data = make(map[string]Series)
	}
	for key := range f.Chart {
		if _, ok := f.Data[key]; !ok {
			f.Data[key] = Series{}
		}
	}
}

// Keys returns the series keys in draw order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.Data))
	for key := range f.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Meta returns the metadata of a series. The zero Chart is returned for
// series without a [chart.<key>] section.
func (f *File) Meta(key string) (Chart, bool) {
	c, ok := f.Chart[key]
	return c, ok
}

// Append concatenates the series of update onto the series of the same key.
// Keys unknown to f are ignored. It returns the number of values appended.
func (f *File) Append(update *File) int {
	if update == nil {
		return 0
	}
	appended := 0
	for key, values := range update.Data {
		current, ok := f.Data[key]
		if !ok {
			continue
		}
		f.Data[key] = append(current, values...)
		appended += len(values)
	}
	return appended
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	out := &File{
		DataView: f.DataView,
		Chart:    make(map[string]Chart, len(f.Chart)),
		Data:     make(map[string]Series, len(f.Data)),
	}
	out.DataView.XMin = cloneFloat(f.DataView.XMin)
	out.DataView.XMax = cloneFloat(f.DataView.XMax)
	out.DataView.YMin = cloneFloat(f.DataView.YMin)
	out.DataView.YMax = cloneFloat(f.DataView.YMax)
	for k, v := range f.Chart {
		out.Chart[k] = v
	}
	for k, v := range f.Data {
		out.Data[k] = append(Series(nil), v...)
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
