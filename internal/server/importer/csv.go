// Package importer reads student records from CSV files, either on the local
// filesystem or in an S3-compatible object store.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Column headers as they appear in the source files.
const (
	headerLastName  = "Фамилия"
	headerFirstName = "Имя"
	headerFaculty   = "Факультет"
	headerCourse    = "Курс"
	headerGrade     = "Оценка"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMissingHeader is returned when the CSV has no usable header row.
var ErrMissingHeader = errors.New("csv header row is missing required columns")

// Parse reads records from r. Rows with a missing last or first name, an
// empty course, or an unparsable grade are skipped rather than failing the
// whole import; the skipped count is reported alongside the parsed records.
func Parse(r io.Reader) ([]*models.Student, int, error) {
	br, err := stripBOM(r)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading csv: %w", err)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrMissingHeader
		}
		return nil, 0, fmt.Errorf("error reading csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{headerLastName, headerFirstName, headerFaculty, headerCourse, headerGrade} {
		if _, ok := cols[required]; !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	var records []*models.Student
	skipped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("error reading csv row: %w", err)
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		lastName := field(headerLastName)
		firstName := field(headerFirstName)
		if lastName == "" || firstName == "" {
			skipped++
			continue
		}

		course := field(headerCourse)
		if course == "" {
			skipped++
			continue
		}

		grade, err := strconv.ParseFloat(field(headerGrade), 64)
		if err != nil {
			skipped++
			continue
		}

		records = append(records, &models.Student{
			LastName:  lastName,
			FirstName: firstName,
			Faculty:   field(headerFaculty),
			Course:    course,
			Grade:     grade,
		})
	}

	return records, skipped, nil
}

// stripBOM drops a UTF-8 byte order mark if the stream starts with one.
// Spreadsheet exports routinely carry it.
func stripBOM(r io.Reader) (io.Reader, error) {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return bytes.NewReader(buf[:n]), nil
		}
		return nil, err
	}
	if bytes.Equal(buf, utf8BOM) {
		return r, nil
	}
	return io.MultiReader(bytes.NewReader(buf), r), nil
}
