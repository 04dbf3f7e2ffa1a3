package adapter

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Family tags which known dataset a CSV looks like. It is a reporting hint
// only; column mapping is derived purely from which aliases are present.
type Family string

const (
	FamilyHomeCredit  Family = "home_credit"
	FamilyVehicleLoan Family = "vehicle_loan"
	FamilyGeneric     Family = "generic"
)

var (
	ErrMissingFile = errors.New("input file does not exist")
	ErrInputFormat = errors.New("input has no parseable header row")
)

const defaultSampleSize = 5

// Dataset is the result of scanning a CSV input: its header, a small sample
// of rows, the detected family and the canonical column mapping. It is built
// once per scan and not mutated afterwards.
type Dataset struct {
	Path    string
	Header  []string
	Sample  [][]string
	Family  Family
	Mapping ColumnMapping
}

// Scan reads the header and up to sampleSize rows of the CSV at path and
// derives the schema family and column mapping from the given alias table.
// sampleSize <= 0 falls back to the default of 5 rows.
func Scan(fs afero.Fs, path string, aliases *AliasTable, sampleSize int) (*Dataset, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check input path %s", path)
	}
	if !exists {
		return nil, errors.Wrapf(ErrMissingFile, "path %s", path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open input file %s", path)
	}
	defer f.Close()

	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}

	header, sample, err := readSample(f, sampleSize)
	if err != nil {
		return nil, errors.Wrapf(err, "file %s", path)
	}

	return &Dataset{
		Path:    path,
		Header:  header,
		Sample:  sample,
		Family:  DetectFamily(header),
		Mapping: aliases.Map(header),
	}, nil
}

func readSample(r io.Reader, sampleSize int) ([]string, [][]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(ErrInputFormat, err.Error())
	}

	if !hasUsableHeader(header) {
		return nil, nil, ErrInputFormat
	}

	sample := make([][]string, 0, sampleSize)
	for len(sample) < sampleSize {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(ErrInputFormat, err.Error())
		}
		sample = append(sample, row)
	}

	return header, sample, nil
}

func hasUsableHeader(header []string) bool {
	for _, col := range header {
		if strings.TrimSpace(col) != "" {
			return true
		}
	}
	return false
}

// DetectFamily checks the lower-cased header for the signature columns of the
// known datasets, most specific first, and falls back to generic.
func DetectFamily(header []string) Family {
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.ToLower(col)] = true
	}

	switch {
	case seen["sk_id_curr"]:
		return FamilyHomeCredit
	case seen["uniqueid"] && seen["disbursaldate"]:
		return FamilyVehicleLoan
	default:
		return FamilyGeneric
	}
}
