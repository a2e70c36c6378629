package InputParameters

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Parameters obtained from the YAML input file
type MorseParameters struct {
	Title           string    `json:"Title"`
	Field           string    `json:"Field"`          // expression in x, y and z
	FieldFile       string    `json:"FieldFile"`      // one value per mesh point
	MaxPersistence  *float64  `json:"MaxPersistence"` // absent means simplify completely
	Thresholds      []float64 `json:"Thresholds"`     // Betti numbers reported at each
	Workers         int       `json:"Workers"`        // 0 uses GOMAXPROCS
	Verify          bool      `json:"Verify"`
	Segment         bool      `json:"Segment"`
	InvariantChecks bool      `json:"InvariantChecks"`
	Compression     string    `json:"Compression"` // none, zstd or lz4
}

func (ip *MorseParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return errors.Wrap(err, "unable to parse input parameters")
	}
	return ip.Validate()
}

func (ip *MorseParameters) Validate() error {
	switch {
	case ip.Field != "" && ip.FieldFile != "":
		return errors.New("only one of Field and FieldFile may be set")
	case ip.Workers < 0:
		return errors.Errorf("Workers must not be negative, have %d", ip.Workers)
	case ip.MaxPersistence != nil && (*ip.MaxPersistence < 0 || math.IsNaN(*ip.MaxPersistence)):
		return errors.Errorf("MaxPersistence must not be negative, have %v", *ip.MaxPersistence)
	}
	switch ip.Compression {
	case "", "none", "zstd", "lz4":
	default:
		return errors.Errorf("unknown Compression %q", ip.Compression)
	}
	return nil
}

// Threshold is the persistence up to which pairs are cancelled.
func (ip *MorseParameters) Threshold() float64 {
	if ip.MaxPersistence == nil {
		return math.Inf(1)
	}
	return *ip.MaxPersistence
}

// SortedThresholds returns the reporting thresholds in ascending order.
func (ip *MorseParameters) SortedThresholds() []float64 {
	out := append([]float64(nil), ip.Thresholds...)
	sort.Float64s(out)
	return out
}

func (ip *MorseParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	switch {
	case ip.Field != "":
		fmt.Fprintf(w, "[%s]\t\t= Field\n", ip.Field)
	case ip.FieldFile != "":
		fmt.Fprintf(w, "[%s]\t\t= FieldFile\n", ip.FieldFile)
	}
	fmt.Fprintf(w, "%8.5g\t\t= MaxPersistence\n", ip.Threshold())
	fmt.Fprintf(w, "%v\t\t= Thresholds\n", ip.SortedThresholds())
	fmt.Fprintf(w, "[%d]\t\t\t= Workers\n", ip.Workers)
	fmt.Fprintf(w, "[%v]\t\t\t= Verify\n", ip.Verify)
	fmt.Fprintf(w, "[%v]\t\t\t= Segment\n", ip.Segment)
	if ip.Compression != "" {
		fmt.Fprintf(w, "[%s]\t\t\t= Compression\n", ip.Compression)
	}
}
