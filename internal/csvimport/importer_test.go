package csvimport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/models"
)

type fakeInserter struct {
	batches [][]*models.Item
	err     error
}

func (f *fakeInserter) CreateBatch(ctx context.Context, items []*models.Item) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, items)
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const carsHeader = "name,year,selling_price,km_driven,fuel,seller_type,transmission,owner,mileage,engine,max_power,torque,seats\n"

func TestImportTransformsRow(t *testing.T) {
	path := writeCSV(t, carsHeader+
		"Maruti Swift Dzire VDI,2014,450000,145500,Diesel,Individual,Manual,First Owner,23.4 kmpl,1248 CC,74 bhp,190Nm@ 2000rpm,\n")
	store := &fakeInserter{}
	seller := uuid.New()

	n, err := NewImporter(store, zap.NewNop()).Import(context.Background(), path, seller)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 1 || len(store.batches) != 1 || len(store.batches[0]) != 1 {
		t.Fatalf("Import() = %d items in %d batches, want 1 in 1", n, len(store.batches))
	}

	item := store.batches[0][0]
	checks := []struct {
		name string
		ok   bool
	}{
		{"fuel_type", item.FuelType != nil && *item.FuelType == "Diesel"},
		{"owner_type", item.OwnerType != nil && *item.OwnerType == "First Owner"},
		{"mileage", item.Mileage != nil && *item.Mileage == 23.4},
		{"max_power", item.MaxPower != nil && *item.MaxPower == 74},
		{"seats", item.Seats != nil && *item.Seats == 4},
		{"year", item.Year != nil && *item.Year == 2014},
		{"km_driven", item.KmDriven != nil && *item.KmDriven == 145500},
		{"engine", item.Engine != nil && *item.Engine == "1248 CC"},
		{"seller", item.SellerID == seller},
		{"unsold", item.SoldAt == nil && item.FinalPrice == nil},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("%s not transformed as expected: %+v", c.name, item)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Import() should leave the file for the caller: %v", err)
	}
}

func TestImportDropsDuplicateRows(t *testing.T) {
	row := "Honda City,2017,600000,40000,Petrol,Dealer,Manual,First Owner,17 kmpl,1497 CC,117 bhp,145Nm,5\n"
	// differs from row only in seller_type, which is dropped before comparing
	sameAfterDrop := "Honda City,2017,600000,40000,Petrol,Individual,Manual,First Owner,17 kmpl,1497 CC,117 bhp,145Nm,5\n"
	other := "Honda City,2017,600000,40000,Petrol,Dealer,Manual,Second Owner,17 kmpl,1497 CC,117 bhp,145Nm,5\n"
	shortHeader := "name,fuel,owner,seller_type,mileage,max_power,seats"

	tests := []struct {
		name     string
		src      string
		want     int
		wantLast string
	}{
		{"exact copies collapse", carsHeader + row + row + sameAfterDrop + other, 2, "Honda City"},
		{"unknown column tells rows apart",
			shortHeader + ",colour\n" +
				"Car,Diesel,First Owner,Dealer,1,1,5,Red\n" +
				"Car,Diesel,First Owner,Dealer,1,1,5,Blue\n",
			2, "Car"},
		{"surrounding whitespace tells rows apart",
			shortHeader + "\n" +
				"Car,Diesel,First Owner,Dealer,1,1,5\n" +
				"Car ,Diesel,First Owner,Dealer,1,1,5\n",
			2, "Car"},
		{"unknown column copies collapse",
			shortHeader + ",colour\n" +
				"Car,Diesel,First Owner,Dealer,1,1,5,Red\n" +
				"Car,Diesel,First Owner,Individual,1,1,5,Red\n",
			1, "Car"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeInserter{}
			n, err := NewImporter(store, zap.NewNop()).Import(context.Background(), writeCSV(t, tt.src), uuid.New())
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if n != tt.want {
				t.Fatalf("Import() = %d, want %d", n, tt.want)
			}
			batch := store.batches[0]
			// values are still trimmed once a row is kept
			if got := batch[len(batch)-1].Name; got != tt.wantLast {
				t.Errorf("last kept name = %q, want %q", got, tt.wantLast)
			}
		})
	}
}

func TestDropDuplicatesKeepsFirstOccurrence(t *testing.T) {
	row := "Honda City,2017,600000,40000,Petrol,Dealer,Manual,First Owner,17 kmpl,1497 CC,117 bhp,145Nm,5\n"
	other := "Honda City,2017,600000,40000,Petrol,Dealer,Manual,Second Owner,17 kmpl,1497 CC,117 bhp,145Nm,5\n"

	items, err := NewImporter(&fakeInserter{}, zap.NewNop()).Parse(strings.NewReader(carsHeader+row+other+row), uuid.New())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Parse() = %d items, want 2", len(items))
	}
	if got := *items[1].OwnerType; got != "Second Owner" {
		t.Errorf("second kept row owner = %q, want Second Owner", got)
	}
}

func TestParseNumericCells(t *testing.T) {
	tests := []struct {
		name      string
		mileage   string
		maxPower  string
		seats     string
		wantMile  float64
		wantPower float64
		wantSeats int
	}{
		{"units stripped", "23.4 kmpl", "74 bhp", "5", 23.4, 74, 5},
		{"empty becomes zero", "", "", "7", 0, 0, 7},
		{"only units becomes zero", "kmpl", " bhp", "", 0, 0, 4},
		{"float seats", "19.1", "88.5", "5.0", 19.1, 88.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "name,fuel,owner,seller_type,mileage,max_power,seats\n" +
				"Car,Diesel,First Owner,Individual," + tt.mileage + "," + tt.maxPower + "," + tt.seats + "\n"

			items, err := NewImporter(&fakeInserter{}, zap.NewNop()).Parse(strings.NewReader(src), uuid.New())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			item := items[0]
			if *item.Mileage != tt.wantMile {
				t.Errorf("mileage = %v, want %v", *item.Mileage, tt.wantMile)
			}
			if *item.MaxPower != tt.wantPower {
				t.Errorf("max_power = %v, want %v", *item.MaxPower, tt.wantPower)
			}
			if *item.Seats != tt.wantSeats {
				t.Errorf("seats = %v, want %v", *item.Seats, tt.wantSeats)
			}
			if item.Year != nil || item.SellingPrice != nil {
				t.Errorf("absent columns should stay null: %+v", item)
			}
		})
	}
}

func TestParseNormalizesHeaders(t *testing.T) {
	src := "\ufeffName, Fuel ,OWNER,Seller Type,Mileage,Max Power,Seats,Colour\n" +
		"Car,CNG,Third Owner,Dealer,26.6 km/kg,58.2 bhp,4,Red\n"

	items, err := NewImporter(&fakeInserter{}, zap.NewNop()).Parse(strings.NewReader(src), uuid.New())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(items) != 1 || *items[0].FuelType != "CNG" || *items[0].MaxPower != 58.2 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestParseMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty file", ""},
		{"missing column", "name,fuel,owner,mileage,max_power,seats\nCar,Diesel,First,1,1,5\n"},
		{"ragged row", "name,fuel,owner,seller_type,mileage,max_power,seats\nCar,Diesel\n"},
		{"bad mileage", "name,fuel,owner,seller_type,mileage,max_power,seats\nCar,Diesel,First,Dealer,1.2.3 kmpl,1,5\n"},
		{"bad year", "name,year,fuel,owner,seller_type,mileage,max_power,seats\nCar,twenty,Diesel,First,Dealer,1,1,5\n"},
		{"fractional seats", "name,fuel,owner,seller_type,mileage,max_power,seats\nCar,Diesel,First,Dealer,1,1,5.5\n"},
		{"blank name", "name,fuel,owner,seller_type,mileage,max_power,seats\n ,Diesel,First,Dealer,1,1,5\n"},
		{"not csv", "name,\"fuel\nowner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImporter(&fakeInserter{}, zap.NewNop()).Parse(strings.NewReader(tt.src), uuid.New())
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("Parse() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestImportMalformedInsertsNothing(t *testing.T) {
	path := writeCSV(t, carsHeader+
		"Good,2014,450000,145500,Diesel,Individual,Manual,First Owner,23.4 kmpl,1248 CC,74 bhp,190Nm,5\n"+
		"Bad,2014,450000,lots,Diesel,Individual,Manual,First Owner,23.4 kmpl,1248 CC,74 bhp,190Nm,5\n")
	store := &fakeInserter{}

	_, err := NewImporter(store, zap.NewNop()).Import(context.Background(), path, uuid.New())
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("Import() error = %v, want ErrMalformedInput", err)
	}
	if len(store.batches) != 0 {
		t.Errorf("store received %d batches, want 0", len(store.batches))
	}
}

func TestImportStoreFailureIsNotMalformed(t *testing.T) {
	path := writeCSV(t, carsHeader+
		"Car,2014,450000,145500,Diesel,Individual,Manual,First Owner,23.4 kmpl,1248 CC,74 bhp,190Nm,5\n")
	boom := errors.New("deadlock found")

	_, err := NewImporter(&fakeInserter{err: boom}, zap.NewNop()).Import(context.Background(), path, uuid.New())
	if !errors.Is(err, boom) {
		t.Errorf("Import() error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrMalformedInput) {
		t.Error("store failure must not be reported as malformed input")
	}
}

func TestImportHeaderOnly(t *testing.T) {
	store := &fakeInserter{}
	n, err := NewImporter(store, zap.NewNop()).Import(context.Background(), writeCSV(t, carsHeader), uuid.New())
	if err != nil || n != 0 {
		t.Errorf("Import() = %d, %v; want 0, nil", n, err)
	}
	if len(store.batches) != 0 {
		t.Errorf("empty import should not open a transaction")
	}
}
