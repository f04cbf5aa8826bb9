package employee

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
)

type HiringType string

const (
	HiringFullTime  HiringType = "full-time"
	HiringPartTime  HiringType = "part-time"
	HiringContract  HiringType = "contract"
	HiringTemporary HiringType = "temporary"
)

type Administration string

const (
	AdministrationHumanResources Administration = "human-resources"
	AdministrationFinance        Administration = "finance"
	AdministrationOperations     Administration = "operations"
	AdministrationIT             Administration = "it"
	AdministrationMarketing      Administration = "marketing"
	AdministrationLegal          Administration = "legal"
	AdministrationProcurement    Administration = "procurement"
)

type RelationshipType string

const (
	RelationFather   RelationshipType = "father"
	RelationMother   RelationshipType = "mother"
	RelationSpouse   RelationshipType = "spouse"
	RelationSon      RelationshipType = "son"
	RelationDaughter RelationshipType = "daughter"
	RelationBrother  RelationshipType = "brother"
	RelationSister   RelationshipType = "sister"
)

// Unique reports whether an employee may record at most one relationship of
// this type.
func (t RelationshipType) Unique() bool {
	return t == RelationFather || t == RelationMother
}

const (
	dateLayout = "2006-01-02"

	auditEntity = "employee"
)
