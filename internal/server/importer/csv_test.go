package importer

import (
	"errors"
	"strings"
	"testing"
)

const validCSV = "Фамилия,Имя,Факультет,Курс,Оценка\n" +
	"Иванов,Иван,ФПМИ,Мат. Анализ,4.5\n" +
	"Петрова,Анна,ФРКТ,Физика,5\n"

func TestParse_ValidFile(t *testing.T) {
	records, skipped, err := Parse(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("want 0 skipped, got %d", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if records[0].LastName != "Иванов" || records[0].Grade != 4.5 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Faculty != "ФРКТ" || records[1].Course != "Физика" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestParse_StripsUTF8BOM(t *testing.T) {
	records, _, err := Parse(strings.NewReader("\uFEFF" + validCSV))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
}

func TestParse_SkipsBadRows(t *testing.T) {
	data := "Фамилия,Имя,Факультет,Курс,Оценка\n" +
		",Иван,ФПМИ,Мат. Анализ,4.5\n" + // no last name
		"Иванов,,ФПМИ,Мат. Анализ,4.5\n" + // no first name
		"Петров,Петр,ФПМИ,,4.5\n" + // no course
		"Сидоров,Сидор,ФПМИ,Физика,not-a-number\n" + // bad grade
		"Смирнова,Мария,ФБМФ,Биология,3.7\n" // the only good row

	records, skipped, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 4 {
		t.Fatalf("want 4 skipped rows, got %d", skipped)
	}
	if len(records) != 1 || records[0].LastName != "Смирнова" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParse_TrimsWhitespace(t *testing.T) {
	data := "Фамилия,Имя,Факультет,Курс,Оценка\n" +
		" Иванов , Иван , ФПМИ , Мат. Анализ ,4.0\n"

	records, _, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if records[0].LastName != "Иванов" || records[0].Course != "Мат. Анализ" {
		t.Fatalf("fields not trimmed: %+v", records[0])
	}
}

func TestParse_EmptyFile(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("want ErrMissingHeader, got %v", err)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, _, err := Parse(strings.NewReader("Фамилия,Имя,Факультет,Курс\nИванов,Иван,ФПМИ,Физика\n"))
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("want ErrMissingHeader, got %v", err)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	records, skipped, err := Parse(strings.NewReader("Фамилия,Имя,Факультет,Курс,Оценка\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(records) != 0 || skipped != 0 {
		t.Fatalf("want empty result, got %d records %d skipped", len(records), skipped)
	}
}
