package readfiles

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func ReadFieldFile(filename string) (values []float64, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, errors.Wrap(err, "unable to open field file")
	}
	defer file.Close()
	if values, err = ReadField(file); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return
}

// ReadField reads one scalar per line. Blank lines and lines starting with #
// or % are skipped; NaN and infinite values are rejected.
func ReadField(r io.Reader) (values []float64, err error) {
	lr := newLineReader(r)
	for {
		var line string
		if line, err = lr.getLineNoComments("#%"); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return values, nil
			}
			return nil, err
		}
		var v float64
		if v, err = strconv.ParseFloat(strings.Fields(line)[0], 64); err != nil {
			return nil, lr.errorf("unable to read value: %v", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, lr.errorf("value %v is not finite", v)
		}
		values = append(values, v)
	}
}
