package chart

import "image/color"

// Point is a position on the drawing surface, in pixels, y pointing down.
type Point struct {
	X, Y float64
}

// Command is one drawing instruction of a Frame. Surfaces replay commands in
// order; the concrete types are Line, Polyline, Circle and Text.
type Command interface {
	command()
}

type Line struct {
	From, To Point
	Color    color.RGBA
	Width    float64
}

type Polyline struct {
	Points []Point
	Color  color.RGBA
	Width  float64
}

type Circle struct {
	Center Point
	Radius float64
	Color  color.RGBA
	Fill   bool
}

// Text is anchored at its baseline origin, like cairo's show_text.
type Text struct {
	At    Point
	Body  string
	Size  float64
	Color color.RGBA
}

func (Line) command()     {}
func (Polyline) command() {}
func (Circle) command()   {}
func (Text) command()     {}

// Tooltip describes the sample nearest to the pointer in one draw pass.
type Tooltip struct {
	Key    string
	X, Y   float64
	PixelX float64
	PixelY float64
}

// Frame is the output of one draw pass.
type Frame struct {
	Width, Height float64
	Commands      []Command
	Tooltip       *Tooltip
}

func (f *Frame) add(c Command) {
	f.Commands = append(f.Commands, c)
}

// Texts returns the bodies of every Text command, in draw order.
func (f *Frame) Texts() []string {
	var out []string
	for _, c := range f.Commands {
		if t, ok := c.(Text); ok {
			out = append(out, t.Body)
		}
	}
	return out
}
