package form

import (
	"hrrecords/internal/domain/employee"
	"hrrecords/internal/platform/i18n"
)

type TypeOption struct {
	Token    string `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

func NewRelationshipRow() employee.RelationshipInput {
	return employee.RelationshipInput{}
}

// AvailableRelationshipTypes lists the relationship choices for the row at
// index. Father and mother are disabled once another row uses them.
func AvailableRelationshipTypes(rows []employee.RelationshipInput, index int, lang string) []TypeOption {
	used := map[string]bool{}
	for i, row := range rows {
		if i == index {
			continue
		}
		if token, ok := i18n.Canonical(i18n.GroupRelationshipType, row.RelationshipType); ok {
			used[token] = true
		}
	}

	options := i18n.Options(i18n.GroupRelationshipType, lang)
	out := make([]TypeOption, 0, len(options))
	for _, opt := range options {
		out = append(out, TypeOption{
			Token:    opt.Token,
			Label:    opt.Label,
			Disabled: employee.RelationshipType(opt.Token).Unique() && used[opt.Token],
		})
	}
	return out
}
