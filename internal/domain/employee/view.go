package employee

import (
	"time"

	"hrrecords/internal/platform/i18n"
)

// Row is one line of the employee table, labels already in the display
// language.
type Row struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	NickName            string            `json:"nickName"`
	Profession          string            `json:"profession"`
	BirthDate           string            `json:"birthDate"`
	NationalID          string            `json:"nationalId"`
	MaritalStatus       MaritalStatus     `json:"maritalStatus"`
	MaritalStatusLabel  string            `json:"maritalStatusLabel"`
	ResidenceLocation   string            `json:"residenceLocation"`
	HiringDate          string            `json:"hiringDate"`
	HiringType          HiringType        `json:"hiringType"`
	HiringTypeLabel     string            `json:"hiringTypeLabel"`
	Administration      Administration    `json:"administration"`
	AdministrationLabel string            `json:"administrationLabel"`
	ActualWork          string            `json:"actualWork"`
	PhoneNumber         string            `json:"phoneNumber"`
	Email               string            `json:"email"`
	Notes               string            `json:"notes"`
	RelationshipCount   int               `json:"relationshipCount"`
	Relationships       []RelationshipRow `json:"relationships"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

type RelationshipRow struct {
	ID                    string           `json:"id"`
	RelationshipType      RelationshipType `json:"relationshipType"`
	RelationshipTypeLabel string           `json:"relationshipTypeLabel"`
	Name                  string           `json:"name"`
	NationalID            string           `json:"nationalId"`
	BirthDate             string           `json:"birthDate"`
	BirthPlace            string           `json:"birthPlace"`
	Profession            string           `json:"profession"`
	SpouseName            string           `json:"spouseName"`
	ResidenceLocation     string           `json:"residenceLocation"`
	Notes                 string           `json:"notes"`
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var tableColumns = []string{"name", "nickName", "nationalId", "profession", "administration", "hiringType", "hiringDate", "phoneNumber", "relationships"}

// Columns lists the table headers in lang.
func Columns(lang string) []Column {
	out := make([]Column, 0, len(tableColumns))
	for _, key := range tableColumns {
		out = append(out, Column{Key: key, Label: i18n.FieldLabel(key, lang, false)})
	}
	return out
}

func BuildRows(employees []Employee, lang string) []Row {
	rows := make([]Row, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, BuildRow(emp, lang))
	}
	return rows
}

func BuildRow(emp Employee, lang string) Row {
	row := Row{
		ID:                  emp.ID,
		Name:                emp.Name,
		NickName:            emp.NickName,
		Profession:          emp.Profession,
		BirthDate:           formatDate(emp.BirthDate),
		NationalID:          emp.NationalID,
		MaritalStatus:       emp.MaritalStatus,
		MaritalStatusLabel:  i18n.Label(i18n.GroupMaritalStatus, string(emp.MaritalStatus), lang),
		ResidenceLocation:   emp.ResidenceLocation,
		HiringDate:          formatDate(emp.HiringDate),
		HiringType:          emp.HiringType,
		HiringTypeLabel:     i18n.Label(i18n.GroupHiringType, string(emp.HiringType), lang),
		Administration:      emp.Administration,
		AdministrationLabel: i18n.Label(i18n.GroupAdministration, string(emp.Administration), lang),
		ActualWork:          emp.ActualWork,
		PhoneNumber:         emp.PhoneNumber,
		Email:               deref(emp.Email),
		Notes:               deref(emp.Notes),
		RelationshipCount:   len(emp.Relationships),
		Relationships:       make([]RelationshipRow, 0, len(emp.Relationships)),
		CreatedAt:           emp.CreatedAt,
		UpdatedAt:           emp.UpdatedAt,
	}
	for _, rel := range emp.Relationships {
		row.Relationships = append(row.Relationships, RelationshipRow{
			ID:                    rel.ID,
			RelationshipType:      rel.RelationshipType,
			RelationshipTypeLabel: i18n.Label(i18n.GroupRelationshipType, string(rel.RelationshipType), lang),
			Name:                  rel.Name,
			NationalID:            rel.NationalID,
			BirthDate:             formatDate(rel.BirthDate),
			BirthPlace:            deref(rel.BirthPlace),
			Profession:            deref(rel.Profession),
			SpouseName:            deref(rel.SpouseName),
			ResidenceLocation:     rel.ResidenceLocation,
			Notes:                 deref(rel.Notes),
		})
	}
	return row
}

// ToFormInput turns a stored employee back into form values, e.g. to
// prefill the edit form.
func ToFormInput(emp Employee) FormInput {
	in := FormInput{
		Name:              emp.Name,
		NickName:          emp.NickName,
		Profession:        emp.Profession,
		BirthDate:         formatDate(emp.BirthDate),
		NationalID:        emp.NationalID,
		MaritalStatus:     string(emp.MaritalStatus),
		ResidenceLocation: emp.ResidenceLocation,
		HiringDate:        formatDate(emp.HiringDate),
		HiringType:        string(emp.HiringType),
		Email:             deref(emp.Email),
		Administration:    string(emp.Administration),
		ActualWork:        emp.ActualWork,
		PhoneNumber:       emp.PhoneNumber,
		Notes:             deref(emp.Notes),
	}
	for _, rel := range emp.Relationships {
		in.Relationships = append(in.Relationships, RelationshipInput{
			RelationshipType:  string(rel.RelationshipType),
			Name:              rel.Name,
			NationalID:        rel.NationalID,
			BirthDate:         formatDate(rel.BirthDate),
			BirthPlace:        deref(rel.BirthPlace),
			Profession:        deref(rel.Profession),
			SpouseName:        deref(rel.SpouseName),
			ResidenceLocation: rel.ResidenceLocation,
			Notes:             deref(rel.Notes),
		})
	}
	return in
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
