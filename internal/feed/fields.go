package feed

import "strings"

// fieldReader reads typed values out of a record and keeps the first error,
// so a parser can read every field and check once at the end.
type fieldReader struct {
	rec      Record
	firstErr error
}

func newFieldReader(rec Record) *fieldReader {
	return &fieldReader{rec: rec}
}

func (f *fieldReader) fail(err error) {
	if err != nil && f.firstErr == nil {
		f.firstErr = err
	}
}

func (f *fieldReader) err() error {
	return f.firstErr
}

func (f *fieldReader) value(field string) (string, bool) {
	v, err := f.rec.First(field)
	if err != nil {
		f.fail(err)
		return "", false
	}
	return v, true
}

// lookup reads a field that may be absent without recording an error
func (f *fieldReader) lookup(field string) (string, bool) {
	v, err := f.rec.First(field)
	return v, err == nil
}

func (f *fieldReader) get(field string) string {
	v, _ := f.value(field)
	return v
}

func (f *fieldReader) text(field string) string {
	return strings.TrimSpace(f.get(field))
}

func (f *fieldReader) int(field string) int {
	v, ok := f.value(field)
	if !ok {
		return 0
	}
	return f.parseInt(field, v)
}

func (f *fieldReader) parseInt(field, s string) int {
	n, err := parseInt(field, s)
	f.fail(err)
	return n
}

func (f *fieldReader) parseFloat(field, s string) float64 {
	x, err := parseFloat(field, s)
	f.fail(err)
	return x
}

func (f *fieldReader) optionalFloat(field, s string) *float64 {
	x, err := optionalFloat(field, s)
	f.fail(err)
	return x
}

func (f *fieldReader) optionalInt(field, s string) *int {
	n, err := optionalInt(field, s)
	f.fail(err)
	return n
}

func (f *fieldReader) split(field, sep string, n int) []string {
	v, ok := f.value(field)
	if !ok {
		return nil
	}
	parts, err := splitExact(field, v, sep, n)
	if err != nil {
		f.fail(err)
		return nil
	}
	return parts
}

func (f *fieldReader) floats(field string, n int) []float64 {
	parts := f.split(field, "/", n)
	if parts == nil {
		return nil
	}
	out := make([]float64, n)
	for i, p := range parts {
		out[i] = f.parseFloat(field, p)
	}
	return out
}
