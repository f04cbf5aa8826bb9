package employee

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEmployee() Employee {
	email := "ahmed@example.com"
	return Employee{
		ID:                "c0a80101-0000-4000-8000-000000000001",
		Name:              "Ahmed Mohamed",
		NickName:          "Ahmed",
		Profession:        "Engineer",
		BirthDate:         time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		NationalID:        "123",
		MaritalStatus:     MaritalMarried,
		ResidenceLocation: "Riyadh",
		HiringDate:        time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
		HiringType:        HiringFullTime,
		Email:             &email,
		Administration:    AdministrationIT,
		ActualWork:        "Development",
		PhoneNumber:       "0500000000",
		Relationships: []Relationship{{
			ID:                "c0a80101-0000-4000-8000-000000000002",
			RelationshipType:  RelationSpouse,
			Name:              "Sara",
			NationalID:        "456",
			BirthDate:         time.Date(1992, 3, 1, 0, 0, 0, 0, time.UTC),
			ResidenceLocation: "Riyadh",
		}},
	}
}

func TestBuildRowsLocalizesLabels(t *testing.T) {
	rows := BuildRows([]Employee{sampleEmployee()}, "ar")
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "متزوج", row.MaritalStatusLabel)
	assert.Equal(t, "دوام كامل", row.HiringTypeLabel)
	assert.Equal(t, "تقنية المعلومات", row.AdministrationLabel)
	assert.Equal(t, "1990-05-15", row.BirthDate)
	assert.Equal(t, "ahmed@example.com", row.Email)
	assert.Equal(t, 1, row.RelationshipCount)
	assert.Equal(t, "زوج/زوجة", row.Relationships[0].RelationshipTypeLabel)

	en := BuildRow(sampleEmployee(), "en")
	assert.Equal(t, "Married", en.MaritalStatusLabel)
	assert.Equal(t, "Spouse", en.Relationships[0].RelationshipTypeLabel)
}

func TestBuildRowsEmpty(t *testing.T) {
	rows := BuildRows(nil, "en")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestColumns(t *testing.T) {
	cols := Columns("en")
	require.NotEmpty(t, cols)
	assert.Equal(t, Column{Key: "name", Label: "Full name"}, cols[0])
	assert.Equal(t, "الاسم", Columns("ar")[0].Label)
}

func TestToFormInputRevalidates(t *testing.T) {
	in := ToFormInput(sampleEmployee())
	payload, err := NewSchema().Validate(in, "en")
	require.NoError(t, err)
	assert.Equal(t, RelationSpouse, payload.Relationships[0].RelationshipType)
	assert.Equal(t, "ahmed@example.com", *payload.Email)
}

func TestExporterWritesPDF(t *testing.T) {
	var buf bytes.Buffer
	x := Exporter{Now: func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }}
	require.NoError(t, x.WritePDF(&buf, sampleEmployee(), "ar"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExporterReportsMissingFont(t *testing.T) {
	var buf bytes.Buffer
	x := Exporter{FontPath: "/nonexistent/font.ttf"}
	assert.Error(t, x.WritePDF(&buf, sampleEmployee(), "ar"))
}
