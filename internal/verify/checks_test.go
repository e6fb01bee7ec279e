package verify

import (
	"testing"

	"github.com/ppiankov/crosscheck/internal/model"
)

func TestCheckName_Graduated(t *testing.T) {
	tests := []struct {
		name   string
		victim string
		text   string
		credit float64
	}{
		{"exact", "Jane Doe", "Jane Doe was shot on Tuesday", 1.0},
		{"tokens", "Jane Doe", "Officers said Doe, identified as Jane, fled", 0.8},
		{"surname only", "Jane Whitfield", "Whitfield was pronounced dead at the scene", 0.5},
		{"short surname not matched alone", "Jane Li", "Li was pronounced dead", 0.0},
		{"absent", "Jane Doe", "An unrelated article about weather", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkName(tt.victim, tt.text)
			if !res.Applicable {
				t.Fatal("check should be applicable")
			}
			if res.Credit != tt.credit {
				t.Errorf("credit = %v, want %v (%s)", res.Credit, tt.credit, res.Detail)
			}
		})
	}
}

func TestCheckName_Inapplicable(t *testing.T) {
	res := checkName("", "any text")
	if res.Applicable {
		t.Error("empty victim name should be inapplicable, not zero-credit")
	}
}

func TestCheckLocation_StateAbbreviations(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		credit float64
	}{
		{"full name", "in Springfield, Illinois on Monday", 1.0},
		{"AP abbreviation", "in Springfield, Ill. on Monday", 1.0},
		{"postal code", "in Springfield, IL on Monday", 1.0},
		{"city only", "the Springfield shooting", 0.5},
		{"neither", "somewhere else entirely", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkLocation("Springfield", "Illinois", tt.text)
			if res.Credit != tt.credit {
				t.Errorf("credit = %v, want %v (%s)", res.Credit, tt.credit, res.Detail)
			}
		})
	}
}

func TestCheckLocation_PostalCodeNotMatchedInProse(t *testing.T) {
	// "IN" and "OR" are ordinary words; postal codes must match
	// case-sensitively as whole words.
	res := checkLocation("", "Indiana", "the suspect was found in a nearby field")
	if res.Credit != 0 {
		t.Errorf("lowercase 'in' must not match postal code IN, got credit %v", res.Credit)
	}
}

func TestCheckDate_Renderings(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		credit float64
	}{
		{"long form", "on June 10, 2025, police responded", 1.0},
		{"short month", "on Jun 10, 2025 police responded", 1.0},
		{"day month year", "on 10 June 2025 police responded", 1.0},
		{"month day only", "on June 10 police responded", 1.0},
		{"month and year only", "in June of 2025", 0.5},
		{"absent", "last Thursday", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkDate("2025-06-10", tt.text)
			if res.Credit != tt.credit {
				t.Errorf("credit = %v, want %v (%s)", res.Credit, tt.credit, res.Detail)
			}
		})
	}
}

func TestCheckDate_UnparseableRecordDate(t *testing.T) {
	res := checkDate("pending", "June 10, 2025")
	if res.Applicable {
		t.Error("unparseable record date should make the check inapplicable")
	}
}

func TestCheckKeywords(t *testing.T) {
	two := checkKeywords(model.IncidentShooting, "shots were fired and the shooting continued")
	if two.Credit != 1.0 {
		t.Errorf("two keyword hits should earn full credit, got %v", two.Credit)
	}

	one := checkKeywords(model.IncidentShooting, "the man was shot")
	if one.Credit != 0.75 {
		t.Errorf("one keyword hit should earn 0.75, got %v", one.Credit)
	}

	none := checkKeywords(model.IncidentShooting, "the council discussed zoning")
	if none.Credit != 0 {
		t.Errorf("no keyword hits should earn 0, got %v", none.Credit)
	}
}

func TestScoreChecks_Renormalization(t *testing.T) {
	// Name inapplicable: the other three checks passing fully must still
	// reach 100.
	checks := []model.CheckResult{
		{Name: "name", Applicable: false},
		{Name: "location", Applicable: true, Credit: 1.0},
		{Name: "date", Applicable: true, Credit: 1.0},
		{Name: "keywords", Applicable: true, Credit: 1.0},
	}
	if got := scoreChecks(checks); got != 100 {
		t.Errorf("renormalized score = %d, want 100", got)
	}
}

func TestScoreChecks_Deterministic(t *testing.T) {
	checks := []model.CheckResult{
		{Name: "name", Applicable: true, Credit: 0.5},
		{Name: "location", Applicable: true, Credit: 1.0},
		{Name: "date", Applicable: true, Credit: 0.5},
		{Name: "keywords", Applicable: true, Credit: 0.75},
	}
	first := scoreChecks(checks)
	for i := 0; i < 100; i++ {
		if got := scoreChecks(checks); got != first {
			t.Fatalf("score changed between identical runs: %d vs %d", got, first)
		}
	}
}
