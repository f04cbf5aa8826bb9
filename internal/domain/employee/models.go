package employee

import "time"

type Employee struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	NickName          string         `json:"nickName"`
	Profession        string         `json:"profession"`
	BirthDate         time.Time      `json:"birthDate"`
	NationalID        string         `json:"nationalId"`
	MaritalStatus     MaritalStatus  `json:"maritalStatus"`
	ResidenceLocation string         `json:"residenceLocation"`
	HiringDate        time.Time      `json:"hiringDate"`
	HiringType        HiringType     `json:"hiringType"`
	Email             *string        `json:"email,omitempty"`
	Administration    Administration `json:"administration"`
	ActualWork        string         `json:"actualWork"`
	PhoneNumber       string         `json:"phoneNumber"`
	Notes             *string        `json:"notes,omitempty"`
	Relationships     []Relationship `json:"relationships"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Clone returns a copy that shares no slices or pointers with e.
func (e Employee) Clone() Employee {
	e.Email = cloneString(e.Email)
	e.Notes = cloneString(e.Notes)
	if e.Relationships != nil {
		rels := make([]Relationship, len(e.Relationships))
		for i, rel := range e.Relationships {
			rel.BirthPlace = cloneString(rel.BirthPlace)
			rel.Profession = cloneString(rel.Profession)
			rel.SpouseName = cloneString(rel.SpouseName)
			rel.Notes = cloneString(rel.Notes)
			rels[i] = rel
		}
		e.Relationships = rels
	}
	return e
}

func cloneEmployees(list []Employee) []Employee {
	if list == nil {
		return nil
	}
	out := make([]Employee, len(list))
	for i, emp := range list {
		out[i] = emp.Clone()
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Relationship is a family member owned by exactly one employee. Its ID is
// reassigned whenever the owning employee is updated.
type Relationship struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employeeId"`
	RelationshipType  RelationshipType `json:"relationshipType"`
	Name              string           `json:"name"`
	NationalID        string           `json:"nationalId"`
	BirthDate         time.Time        `json:"birthDate"`
	BirthPlace        *string          `json:"birthPlace,omitempty"`
	Profession        *string          `json:"profession,omitempty"`
	SpouseName        *string          `json:"spouseName,omitempty"`
	ResidenceLocation string           `json:"residenceLocation"`
	Notes             *string          `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// Payload is the validated, typed form of a FormInput. Optional fields are
// nil when the input left them blank.
type Payload struct {
	Name              string
	NickName          string
	Profession        string
	BirthDate         time.Time
	NationalID        string
	MaritalStatus     MaritalStatus
	ResidenceLocation string
	HiringDate        time.Time
	HiringType        HiringType
	Email             *string
	Administration    Administration
	ActualWork        string
	PhoneNumber       string
	Notes             *string
	Relationships     []RelationshipPayload
}

type RelationshipPayload struct {
	RelationshipType  RelationshipType
	Name              string
	NationalID        string
	BirthDate         time.Time
	BirthPlace        *string
	Profession        *string
	SpouseName        *string
	ResidenceLocation string
	Notes             *string
}
