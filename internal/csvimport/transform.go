package csvimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/01moynul/carlisting-golang/internal/models"
)

const defaultSeats = 4

// requiredColumns must be present in every upload, after header normalisation.
var requiredColumns = []string{"name", "fuel", "owner", "seller_type", "mileage", "max_power", "seats"}

// renamed maps source columns onto item attributes.
var renamed = map[string]string{
	"fuel":  "fuel_type",
	"owner": "owner_type",
}

// dropped never reach an item.
var dropped = map[string]bool{
	"seller_type": true,
	"fuel":        true,
	"owner":       true,
}

// retained is the set of item columns a row may carry.
var retained = []string{
	"name", "year", "selling_price", "km_driven", "fuel_type", "transmission",
	"owner_type", "mileage", "engine", "max_power", "torque", "seats",
}

var nonNumeric = regexp.MustCompile(`[^0-9.]+`)

// normalizeHeader turns "Max Power", " max_power" or "MAX-POWER" into "max_power".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(slug.Make(h), "-", "_")
}

// row is one record keyed by retained column name.
type row map[string]string

// frame is the parsed table after renaming and dropping columns. keys[i]
// holds the raw cells of every surviving source column of rows[i], known
// to the item or not, and is what duplicate detection compares.
type frame struct {
	columns map[string]bool
	rows    []row
	keys    []string
}

func newFrame(header []string, records [][]string) (*frame, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedInput, name)
		}
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedInput, col)
		}
	}

	// rename, then drop superseded and unused columns
	for from, to := range renamed {
		index[to] = index[from]
	}
	for col := range dropped {
		delete(index, col)
	}

	f := &frame{columns: make(map[string]bool)}
	for _, col := range retained {
		if _, ok := index[col]; ok {
			f.columns[col] = true
		}
	}

	// unnamed columns survive too; only dropped and overwritten ones do not
	live := make(map[int]bool, len(index))
	for _, i := range index {
		live[i] = true
	}
	keyCols := make([]int, 0, len(header))
	for i, h := range header {
		if live[i] || normalizeHeader(h) == "" {
			keyCols = append(keyCols, i)
		}
	}

	f.rows = make([]row, 0, len(records))
	f.keys = make([]string, 0, len(records))
	for _, rec := range records {
		r := make(row, len(f.columns))
		for col := range f.columns {
			r[col] = strings.TrimSpace(rec[index[col]])
		}
		f.rows = append(f.rows, r)
		f.keys = append(f.keys, rawKey(rec, keyCols))
	}
	return f, nil
}

func rawKey(rec []string, cols []int) string {
	var b strings.Builder
	for _, i := range cols {
		b.WriteString(rec[i])
		b.WriteByte(0)
	}
	return b.String()
}

// dropDuplicates keeps the first occurrence of every row whose raw cells
// match exactly. Whitespace counts.
func (f *frame) dropDuplicates() {
	seen := make(map[string]bool, len(f.rows))
	rows, keys := f.rows[:0], f.keys[:0]
	for i, r := range f.rows {
		key := f.keys[i]
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, r)
		keys = append(keys, key)
	}
	f.rows, f.keys = rows, keys
}

// stripNumeric removes everything but digits and dots from col, turning
// "23.4 kmpl" into "23.4" and an empty result into "0".
func (f *frame) stripNumeric(col string) {
	for _, r := range f.rows {
		v := nonNumeric.ReplaceAllString(r[col], "")
		if v == "" {
			v = "0"
		}
		r[col] = v
	}
}

// fillSeats defaults missing seat counts.
func (f *frame) fillSeats() {
	for _, r := range f.rows {
		if r["seats"] == "" {
			r["seats"] = strconv.Itoa(defaultSeats)
		}
	}
}

// toItem converts a transformed row into item attributes. line is the
// 1-based data row number, used in error messages.
func (r row) toItem(line int) (models.ItemCreate, error) {
	var in models.ItemCreate
	in.Name = r["name"]
	if in.Name == "" {
		return in, fmt.Errorf("%w: row %d: empty name", ErrMalformedInput, line)
	}

	var err error
	if in.Year, err = optInt(r, "year"); err != nil {
		return in, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, line, err)
	}
	if in.Seats, err = optInt(r, "seats"); err != nil {
		return in, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, line, err)
	}
	for col, dst := range map[string]**float64{
		"selling_price": &in.SellingPrice,
		"km_driven":     &in.KmDriven,
		"mileage":       &in.Mileage,
		"max_power":     &in.MaxPower,
	} {
		if *dst, err = optFloat(r, col); err != nil {
			return in, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, line, err)
		}
	}

	in.FuelType = optString(r, "fuel_type")
	in.OwnerType = optString(r, "owner_type")
	in.Transmission = optString(r, "transmission")
	in.Engine = optString(r, "engine")
	in.Torque = optString(r, "torque")
	return in, nil
}

func optString(r row, col string) *string {
	v, ok := r[col]
	if !ok || v == "" {
		return nil
	}
	return &v
}

func optFloat(r row, col string) (*float64, error) {
	v, ok := r[col]
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %q is not a number", col, v)
	}
	return &n, nil
}

// optInt accepts "5" and "5.0" but not "5.5".
func optInt(r row, col string) (*int, error) {
	f, err := optFloat(r, col)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	if float64(n) != *f {
		return nil, fmt.Errorf("column %s: %v is not a whole number", col, *f)
	}
	return &n, nil
}
