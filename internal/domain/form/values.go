package form

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"hrrecords/internal/domain/employee"
)

var relationshipKey = regexp.MustCompile(`^relationships\[(\d+)\]\.(\w+)$`)

// ParseValues reads a form-encoded employee. Relationship rows use indexed
// keys such as relationships[0].name; rows left completely blank are
// dropped and the rest keep their index order.
func ParseValues(values url.Values) employee.FormInput {
	in := employee.FormInput{
		Name:              values.Get("name"),
		NickName:          values.Get("nickName"),
		Profession:        values.Get("profession"),
		BirthDate:         values.Get("birthDate"),
		NationalID:        values.Get("nationalId"),
		MaritalStatus:     values.Get("maritalStatus"),
		ResidenceLocation: values.Get("residenceLocation"),
		HiringDate:        values.Get("hiringDate"),
		HiringType:        values.Get("hiringType"),
		Email:             values.Get("email"),
		Administration:    values.Get("administration"),
		ActualWork:        values.Get("actualWork"),
		PhoneNumber:       values.Get("phoneNumber"),
		Notes:             values.Get("notes"),
		Relationships:     []employee.RelationshipInput{},
	}

	rows := map[int]*employee.RelationshipInput{}
	for key, vals := range values {
		m := relationshipKey.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		row, ok := rows[index]
		if !ok {
			row = &employee.RelationshipInput{}
			rows[index] = row
		}
		setRelationshipField(row, m[2], vals[0])
	}

	indexes := make([]int, 0, len(rows))
	for index := range rows {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		if rows[index].Blank() {
			continue
		}
		in.Relationships = append(in.Relationships, *rows[index])
	}
	return in
}

func setRelationshipField(row *employee.RelationshipInput, field, value string) {
	switch field {
	case "relationshipType":
		row.RelationshipType = value
	case "name":
		row.Name = value
	case "nationalId":
		row.NationalID = value
	case "birthDate":
		row.BirthDate = value
	case "birthPlace":
		row.BirthPlace = value
	case "profession":
		row.Profession = value
	case "spouseName":
		row.SpouseName = value
	case "residenceLocation":
		row.ResidenceLocation = value
	case "notes":
		row.Notes = value
	}
}
