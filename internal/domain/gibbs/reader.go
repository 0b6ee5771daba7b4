package gibbs

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/phdg/pkg/errors"
)

// Parse reads a whitespace-separated free-energy table:
//
//	P/T   0     5     10
//	300   -1.2  -1.1  -1.0
//	600   -1.3  -1.2  -1.1
//
// The first significant line is a label token followed by the pressure axis.
// Every further line is a temperature followed by one value per pressure.
// Blank lines and lines starting with '#' are ignored.
func Parse(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		pressures    []float64
		temperatures []float64
		data         []float64
		header       = true
		lineNo       int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if header {
			if len(fields) < 2 {
				return nil, errors.New(errors.ErrCodeTableParseFailed, "header has no pressure values").
					WithDetail("line " + strconv.Itoa(lineNo))
			}
			vals, err := parseFloats(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			pressures = vals
			header = false
			continue
		}
		if len(fields) != len(pressures)+1 {
			return nil, errors.Newf(errors.ErrCodeTableParseFailed,
				"row has %d values, want %d", len(fields)-1, len(pressures)).
				WithDetail("line " + strconv.Itoa(lineNo))
		}
		vals, err := parseFloats(fields, lineNo)
		if err != nil {
			return nil, err
		}
		temperatures = append(temperatures, vals[0])
		data = append(data, vals[1:]...)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTableParseFailed, "failed to read table")
	}
	if header {
		return nil, errors.New(errors.ErrCodeTableParseFailed, "table is empty")
	}
	if len(temperatures) == 0 {
		return nil, errors.New(errors.ErrCodeTableAxisInvalid, "temperature axis is empty")
	}
	return NewTable(pressures, temperatures, mat.NewDense(len(temperatures), len(pressures), data))
}

func parseFloats(fields []string, lineNo int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTableParseFailed, "invalid number").
				WithDetail("line " + strconv.Itoa(lineNo) + ": " + f)
		}
		out[i] = v
	}
	return out, nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeTableSourceNotFound, "table file not found").WithDetail(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeTableParseFailed, "failed to open table").WithDetail(path)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to parse table").WithDetail(path)
	}
	return t, nil
}

// FileLoader loads tables from the local filesystem.  Relative sources are
// resolved against BaseDir when it is set.
type FileLoader struct {
	BaseDir string
}

// Load implements the table-loading contract used by the diagram service.
func (l FileLoader) Load(_ context.Context, source string) (*Table, error) {
	path := strings.TrimPrefix(source, "file://")
	if l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	return ParseFile(path)
}

//Personal.AI order the ending
