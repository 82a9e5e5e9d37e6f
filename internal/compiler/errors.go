package compiler

import "fmt"

// MissingHeaderFieldError reports a required header field (X, T or K) that
// the tune does not declare.
type MissingHeaderFieldError struct {
	Field byte
}

func (e *MissingHeaderFieldError) Error() string {
	return fmt.Sprintf("missing required header field %c:", e.Field)
}

// UnsupportedKeySignatureError reports a key name outside the 30 major and
// minor keys of the circle of fifths.
type UnsupportedKeySignatureError struct {
	Key string
}

func (e *UnsupportedKeySignatureError) Error() string {
	return fmt.Sprintf("unsupported key signature %q", e.Key)
}

// MalformedLengthFractionError reports a length, meter, tempo or index value
// that does not parse as a number or fraction.
type MalformedLengthFractionError struct {
	Field byte // 0 for note and rest lengths
	Text  string
	Err   error
}

func (e *MalformedLengthFractionError) Error() string {
	if e.Field == 0 {
		return fmt.Sprintf("malformed length %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("malformed %c: value %q: %v", e.Field, e.Text, e.Err)
}

func (e *MalformedLengthFractionError) Unwrap() error { return e.Err }

// MalformedTupletError reports a tuplet whose element count does not match
// its declared size.
type MalformedTupletError struct {
	Spec  string
	Count int
}

func (e *MalformedTupletError) Error() string {
	return fmt.Sprintf("tuplet %q has %d elements", e.Spec, e.Count)
}
