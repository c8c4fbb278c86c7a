package analysis

import (
	"fmt"
	"io"
)

const (
	addressableDelimiter = "================== all addressable objects"
	pointsToDelimiter    = "================== points-to relation"
)

// PrintPointsTo writes the fixture-stable result block: the addressable
// objects, then the points-to relation, each section delimited by its
// banner. Object ids render in the human-readable print form; iteration
// order is the sorted materialised order.
func (a *Analysis) PrintPointsTo(w io.Writer) error {
	if _, err := fmt.Fprintln(w, addressableDelimiter); err != nil {
		return err
	}
	for _, id := range a.addressable {
		if _, err := fmt.Fprintln(w, a.objects.PrintObjectID(id)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, addressableDelimiter); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, pointsToDelimiter); err != nil {
		return err
	}
	for _, pair := range a.pointsTo {
		_, err := fmt.Fprintf(w, "%s -> %s\n",
			a.objects.PrintObjectID(pair[0]),
			a.objects.PrintObjectID(pair[1]))
		if err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, pointsToDelimiter); err != nil {
		return err
	}
	return nil
}
