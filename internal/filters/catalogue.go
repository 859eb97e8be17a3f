// Package filters implements the FilterCatalogue (spec.md §4.4): a
// closed set of image operators, each with a fixed-width parameter blob
// and a schema of typed fields at named offsets. The catalogue is closed
// and known at build time (spec.md §1 non-goals: no plugin loading).
package filters

import (
	"github.com/bryanchriswhite/vcsengine/internal/frame"
	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// BlobSize is the fixed width of every filter's parameter blob.
const BlobSize = 32

// Blob is a filter node's fixed-length parameter storage.
type Blob [BlobSize]byte

// Kind enumerates the closed set of filter types.
type Kind int

const (
	Blur Kind = iota
	Rotate
	InputGate
	OutputGate
	Crop
	Flip
	Median
	DenoiseTemporal
	DenoiseNonlocalMeans
	Sharpen
	UnsharpMask
	Decimate
	DeltaHistogram
	UniqueCount
)

// FieldType is the scalar type of one schema field.
type FieldType int

const (
	FieldU8 FieldType = iota
	FieldU16
	FieldI16
)

// Field describes one named, offset field within a parameter blob.
type Field struct {
	Name    string
	Offset  int
	Type    FieldType
	Enum    []string // non-nil for enum-valued fields
	Divisor int       // spec.md §4.4: rotate angle/scale are stored ×10, ×100
}

// Descriptor is everything the catalogue knows about one Kind.
type Descriptor struct {
	Kind         Kind
	Name         string
	Fields       []Field
	ResetDefaults func(b *Blob)
	Apply        func(b Blob, in *frame.Frame) *frame.Frame
}

func putU8(b *Blob, off int, v uint8)   { b[off] = v }
func getU8(b Blob, off int) uint8       { return b[off] }
func putU16(b *Blob, off int, v uint16) { b[off] = byte(v); b[off+1] = byte(v >> 8) }
func getU16(b Blob, off int) uint16     { return uint16(b[off]) | uint16(b[off+1])<<8 }
func putI16(b *Blob, off int, v int16)  { putU16(b, off, uint16(v)) }
func getI16(b Blob, off int) int16      { return int16(getU16(b, off)) }

// catalogue is the closed, build-time-known set of filter descriptors.
var catalogue = map[Kind]Descriptor{
	Blur: {
		Kind: Blur,
		Name: "Blur",
		Fields: []Field{
			{Name: "kernel_size", Offset: 0, Type: FieldU8},
			{Name: "type", Offset: 1, Type: FieldU8, Enum: []string{"box", "gaussian"}},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 3); putU8(b, 1, 0) },
		Apply:         applyBlur,
	},
	Rotate: {
		Kind: Rotate,
		Name: "Rotate",
		Fields: []Field{
			{Name: "angle", Offset: 0, Type: FieldI16, Divisor: 10},
			{Name: "scale", Offset: 2, Type: FieldI16, Divisor: 100},
		},
		ResetDefaults: func(b *Blob) { putI16(b, 0, 0); putI16(b, 2, 100) },
		Apply:         applyRotate,
	},
	InputGate: {
		Kind: InputGate,
		Name: "Input gate",
		Fields: []Field{
			{Name: "width", Offset: 0, Type: FieldU16},
			{Name: "height", Offset: 2, Type: FieldU16},
		},
		ResetDefaults: func(b *Blob) { putU16(b, 0, 0); putU16(b, 2, 0) },
		Apply:         applyPassthrough,
	},
	OutputGate: {
		Kind: OutputGate,
		Name: "Output gate",
		Fields: []Field{
			{Name: "width", Offset: 0, Type: FieldU16},
			{Name: "height", Offset: 2, Type: FieldU16},
		},
		ResetDefaults: func(b *Blob) { putU16(b, 0, 0); putU16(b, 2, 0) },
		Apply:         applyPassthrough,
	},
	Crop: {
		Kind: Crop,
		Name: "Crop",
		Fields: []Field{
			{Name: "x", Offset: 0, Type: FieldU16},
			{Name: "y", Offset: 2, Type: FieldU16},
			{Name: "width", Offset: 4, Type: FieldU16},
			{Name: "height", Offset: 6, Type: FieldU16},
			{Name: "scaler", Offset: 8, Type: FieldU8, Enum: []string{"linear", "nearest", "none"}},
		},
		ResetDefaults: func(b *Blob) {
			putU16(b, 0, 0)
			putU16(b, 2, 0)
			putU16(b, 4, 640)
			putU16(b, 6, 480)
			putU8(b, 8, 2)
		},
		Apply: applyCrop,
	},
	Flip: {
		Kind: Flip,
		Name: "Flip",
		Fields: []Field{
			{Name: "axis", Offset: 0, Type: FieldU8, Enum: []string{"horizontal", "vertical", "both"}},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 0) },
		Apply:         applyFlip,
	},
	Median: {
		Kind: Median,
		Name: "Median",
		Fields: []Field{
			{Name: "kernel_size", Offset: 0, Type: FieldU8},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 3) },
		Apply:         applyMedian,
	},
	DenoiseTemporal: {
		Kind: DenoiseTemporal,
		Name: "Denoise (temporal)",
		Fields: []Field{
			{Name: "threshold", Offset: 0, Type: FieldU8},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 10) },
		Apply:         applyDenoiseTemporal,
	},
	DenoiseNonlocalMeans: {
		Kind: DenoiseNonlocalMeans,
		Name: "Denoise (non-local means)",
		Fields: []Field{
			{Name: "h", Offset: 0, Type: FieldU8},
			{Name: "h_color", Offset: 1, Type: FieldU8},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 10); putU8(b, 1, 10) },
		Apply:         applyDenoiseNonlocalMeans,
	},
	Sharpen: {
		Kind:          Sharpen,
		Name:          "Sharpen",
		Fields:        nil,
		ResetDefaults: func(b *Blob) {},
		Apply:         applySharpen,
	},
	UnsharpMask: {
		Kind: UnsharpMask,
		Name: "Unsharp mask",
		Fields: []Field{
			{Name: "strength", Offset: 0, Type: FieldU8},
			{Name: "radius", Offset: 1, Type: FieldU8},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 50); putU8(b, 1, 2) },
		Apply:         applyUnsharpMask,
	},
	Decimate: {
		Kind: Decimate,
		Name: "Decimate",
		Fields: []Field{
			{Name: "factor", Offset: 0, Type: FieldU8},
			{Name: "type", Offset: 1, Type: FieldU8, Enum: []string{"average", "nearest"}},
		},
		ResetDefaults: func(b *Blob) { putU8(b, 0, 2); putU8(b, 1, 1) },
		Apply:         applyDecimate,
	},
	DeltaHistogram: {
		Kind:          DeltaHistogram,
		Name:          "Delta histogram",
		Fields:        nil,
		ResetDefaults: func(b *Blob) {},
		Apply:         applyPassthrough,
	},
	UniqueCount: {
		Kind:          UniqueCount,
		Name:          "Unique count",
		Fields:        nil,
		ResetDefaults: func(b *Blob) {},
		Apply:         applyPassthrough,
	},
}

// Lookup returns the descriptor for kind.
func Lookup(kind Kind) (Descriptor, error) {
	d, ok := catalogue[kind]
	if !ok {
		return Descriptor{}, vcserr.New(vcserr.UnknownFilterName, "no such filter kind")
	}
	return d, nil
}

// LookupByName returns the descriptor whose human name matches name.
func LookupByName(name string) (Descriptor, error) {
	for _, d := range catalogue {
		if d.Name == name {
			return d, nil
		}
	}
	return Descriptor{}, vcserr.New(vcserr.UnknownFilterName, name)
}

// Defaults returns a fresh, zero-then-reset blob for kind.
func Defaults(kind Kind) (Blob, error) {
	d, err := Lookup(kind)
	if err != nil {
		return Blob{}, err
	}
	var b Blob
	d.ResetDefaults(&b)
	return b, nil
}

// IsGate reports whether kind is one of the two sentinel gate types.
func IsGate(kind Kind) bool {
	return kind == InputGate || kind == OutputGate
}

// GateSize reads the (width, height) fields out of a gate node's blob.
// A zero on either axis is a wildcard (spec.md §4.5).
func GateSize(b Blob) (width, height int) {
	return int(getU16(b, 0)), int(getU16(b, 2))
}

// SetGateSize writes the (width, height) fields of a gate node's blob.
func SetGateSize(b *Blob, width, height int) {
	putU16(b, 0, uint16(width))
	putU16(b, 2, uint16(height))
}
