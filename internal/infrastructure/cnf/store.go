package cnf

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/nutriscope/backend/internal/domain"
)

// File names of the Canadian Nutrient File distribution. The dataset is
// static and shipped with the deployment, so the index is built once per
// process and never invalidated.
const (
	foodNameFile       = "FOOD NAME.csv"
	nutrientNameFile   = "NUTRIENT NAME.csv"
	nutrientAmountFile = "NUTRIENT AMOUNT.csv"
)

type foodRow struct {
	ID          int
	FoodGroupID int
	Description string
}

type nutrientDef struct {
	Name string
	Unit string
}

// Store loads and indexes the three CNF tables into memory. The load is
// guarded by sync.Once so concurrent first callers await the same parse
// instead of racing; the captured error is returned to every caller
// until the process restarts.
type Store struct {
	dir string

	once    sync.Once
	loadErr error

	foods     []foodRow         // insertion order, drives search ordering
	foodIndex map[int]int       // food id -> position in foods
	nutrients map[int]nutrientDef
	amounts   map[int]map[int]float64 // food id -> nutrient id -> amount
}

// NewStore creates a store reading from dir. Nothing is parsed until the
// first query.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// EnsureLoaded parses the flat files on first call and is a no-op after.
// Loading is all-or-nothing: any unreadable or malformed file leaves the
// store permanently failed.
func (s *Store) EnsureLoaded() error {
	s.once.Do(func() {
		if err := s.load(); err != nil {
			s.loadErr = fmt.Errorf("%w: %v", domain.ErrStoreLoad, err)
			log.WithField("dir", s.dir).Errorf("[CNF] load failed: %v", err)
		}
	})
	return s.loadErr
}

func (s *Store) load() error {
	foods, err := readTable(filepath.Join(s.dir, foodNameFile))
	if err != nil {
		return err
	}
	names, err := readTable(filepath.Join(s.dir, nutrientNameFile))
	if err != nil {
		return err
	}
	amounts, err := readTable(filepath.Join(s.dir, nutrientAmountFile))
	if err != nil {
		return err
	}

	s.foods = make([]foodRow, 0, len(foods))
	s.foodIndex = make(map[int]int, len(foods))
	for _, rec := range foods {
		if len(rec) < 3 {
			return fmt.Errorf("%s: expected at least 3 columns, got %d", foodNameFile, len(rec))
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad food id %q: %v", foodNameFile, rec[0], err)
		}
		groupID, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return fmt.Errorf("%s: bad food group id %q: %v", foodNameFile, rec[1], err)
		}
		if _, dup := s.foodIndex[id]; dup {
			return fmt.Errorf("%s: duplicate food id %d", foodNameFile, id)
		}
		s.foodIndex[id] = len(s.foods)
		s.foods = append(s.foods, foodRow{ID: id, FoodGroupID: groupID, Description: rec[2]})
	}

	s.nutrients = make(map[int]nutrientDef, len(names))
	for _, rec := range names {
		if len(rec) < 3 {
			return fmt.Errorf("%s: expected at least 3 columns, got %d", nutrientNameFile, len(rec))
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad nutrient id %q: %v", nutrientNameFile, rec[0], err)
		}
		s.nutrients[id] = nutrientDef{Unit: strings.TrimSpace(rec[1]), Name: rec[2]}
	}

	s.amounts = make(map[int]map[int]float64)
	for _, rec := range amounts {
		if len(rec) < 3 {
			return fmt.Errorf("%s: expected at least 3 columns, got %d", nutrientAmountFile, len(rec))
		}
		foodID, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("%s: bad food id %q: %v", nutrientAmountFile, rec[0], err)
		}
		nutrientID, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return fmt.Errorf("%s: bad nutrient id %q: %v", nutrientAmountFile, rec[1], err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return fmt.Errorf("%s: bad amount %q: %v", nutrientAmountFile, rec[2], err)
		}
		byNutrient := s.amounts[foodID]
		if byNutrient == nil {
			byNutrient = make(map[int]float64)
			s.amounts[foodID] = byNutrient
		}
		byNutrient[nutrientID] = value
	}

	log.Infof("[CNF] indexed %d foods, %d nutrient definitions", len(s.foods), len(s.nutrients))
	return nil
}

// readTable reads one delimited file, skipping a header row when the
// first record's leading field is non-numeric. Only the very first
// record is eligible; a later non-numeric field is a data error that
// load() reports. encoding/csv handles quoted fields with embedded
// delimiters and both CRLF and LF endings.
func readTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v", filepath.Base(path), err)
		}
		if len(rec) == 0 {
			continue
		}
		if first {
			first = false
			if !isNumeric(rec[0]) {
				continue // header row
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// SearchFoods matches query case-insensitively against every indexed
// description and returns the requested page plus the total match count.
// Ordering is the index insertion order; this source deliberately has no
// relevance ranking (known asymmetry with the remote providers).
func (s *Store) SearchFoods(query string, pageSize, pageNumber int) ([]foodRow, int, error) {
	if err := s.EnsureLoaded(); err != nil {
		return nil, 0, err
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []foodRow
	for _, food := range s.foods {
		if strings.Contains(strings.ToLower(food.Description), needle) {
			matches = append(matches, food)
		}
	}

	start := (pageNumber - 1) * pageSize
	if start > len(matches) {
		start = len(matches)
	}
	end := start + pageSize
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], len(matches), nil
}

// FoodDetails returns the food's description and every recorded nutrient
// amount, each resolved against the nutrient-definition table. The bool
// is false when the id is unindexed.
func (s *Store) FoodDetails(foodID int) (foodRow, []domain.NutrientEntry, bool, error) {
	if err := s.EnsureLoaded(); err != nil {
		return foodRow{}, nil, false, err
	}

	pos, ok := s.foodIndex[foodID]
	if !ok {
		return foodRow{}, nil, false, nil
	}

	entries := make([]domain.NutrientEntry, 0, len(s.amounts[foodID]))
	for nutrientID, amount := range s.amounts[foodID] {
		def := s.nutrients[nutrientID]
		entries = append(entries, domain.NutrientEntry{
			ID:       nutrientID,
			Name:     def.Name,
			UnitName: def.Unit,
			Amount:   amount,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return s.foods[pos], entries, true, nil
}
