package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	cryptoutil "hrrecords/internal/platform/crypto"
	"hrrecords/internal/platform/querier"
)

// ErrNationalIDTaken reports that another employee already holds the
// national ID.
var ErrNationalIDTaken = errors.New("national id already registered")

const nationalIDIndex = "employees_national_id_hash_key"

type Store struct {
	DB     querier.TxBeginner
	Crypto *cryptoutil.Service
}

func NewStore(db querier.TxBeginner, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `
    id::text, name, nick_name, profession, birth_date,
    COALESCE(national_id, ''), national_id_enc,
    marital_status, residence_location, hiring_date, hiring_type,
    email, administration, actual_work, phone_number, notes,
    created_at, updated_at`

const relationshipColumns = `
    id::text, employee_id::text, relationship_type, name,
    COALESCE(national_id, ''), national_id_enc,
    birth_date, birth_place, profession, spouse_name,
    residence_location, notes, created_at`

// Insert stores the employee and its relationships in one transaction.
func (s *Store) Insert(ctx context.Context, payload Payload) (Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, err
	}
	defer tx.Rollback(ctx)

	nationalPlain, nationalEnc, err := s.sealNationalID(payload.NationalID)
	if err != nil {
		return Employee{}, err
	}
	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO employees (name, nick_name, profession, birth_date, national_id, national_id_enc, national_id_hash,
      marital_status, residence_location, hiring_date, hiring_type, email, administration, actual_work,
      phone_number, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
    RETURNING id::text
  `,
		payload.Name, payload.NickName, payload.Profession, payload.BirthDate,
		nationalPlain, nationalEnc, s.Crypto.BlindIndex(payload.NationalID),
		string(payload.MaritalStatus), payload.ResidenceLocation, payload.HiringDate, string(payload.HiringType),
		payload.Email, string(payload.Administration), payload.ActualWork, payload.PhoneNumber, payload.Notes,
	).Scan(&id)
	if err != nil {
		return Employee{}, mapConstraint(err)
	}
	if err := s.insertRelationships(ctx, tx, id, payload.Relationships); err != nil {
		return Employee{}, err
	}
	emp, err := s.get(ctx, tx, id)
	if err != nil {
		return Employee{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	return s.get(ctx, s.DB, id)
}

// List returns every employee, newest first, with relationships attached.
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+employeeColumns+`
    FROM employees
    ORDER BY created_at DESC, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	index := map[string]int{}
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		index[emp.ID] = len(out)
		out = append(out, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	relRows, err := s.DB.Query(ctx, `SELECT `+relationshipColumns+`
    FROM relationships
    ORDER BY employee_id, position
  `)
	if err != nil {
		return nil, err
	}
	defer relRows.Close()
	for relRows.Next() {
		rel, err := s.scanRelationship(relRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[rel.EmployeeID]; ok {
			out[i].Relationships = append(out[i].Relationships, rel)
		}
	}
	return out, relRows.Err()
}

// Replace overwrites every scalar field and swaps the whole relationship
// set: existing rows are deleted and the new ones inserted with fresh IDs.
func (s *Store) Replace(ctx context.Context, id string, payload Payload) (Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, err
	}
	defer tx.Rollback(ctx)

	nationalPlain, nationalEnc, err := s.sealNationalID(payload.NationalID)
	if err != nil {
		return Employee{}, err
	}
	cmd, err := tx.Exec(ctx, `
    UPDATE employees
    SET name = $1,
        nick_name = $2,
        profession = $3,
        birth_date = $4,
        national_id = $5,
        national_id_enc = $6,
        national_id_hash = $7,
        marital_status = $8,
        residence_location = $9,
        hiring_date = $10,
        hiring_type = $11,
        email = $12,
        administration = $13,
        actual_work = $14,
        phone_number = $15,
        notes = $16,
        updated_at = now()
    WHERE id = $17
  `,
		payload.Name, payload.NickName, payload.Profession, payload.BirthDate,
		nationalPlain, nationalEnc, s.Crypto.BlindIndex(payload.NationalID),
		string(payload.MaritalStatus), payload.ResidenceLocation, payload.HiringDate, string(payload.HiringType),
		payload.Email, string(payload.Administration), payload.ActualWork, payload.PhoneNumber, payload.Notes, id,
	)
	if err != nil {
		return Employee{}, mapConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return Employee{}, ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM relationships WHERE employee_id = $1`, id); err != nil {
		return Employee{}, err
	}
	if err := s.insertRelationships(ctx, tx, id, payload.Relationships); err != nil {
		return Employee{}, err
	}
	emp, err := s.get(ctx, tx, id)
	if err != nil {
		return Employee{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

// Delete removes the employee; relationships go with it through the
// foreign key cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	cmd, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) NationalIDTaken(ctx context.Context, nationalID, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE national_id_hash = $1 AND ($2 = '' OR id::text <> $2)
  `, s.Crypto.BlindIndex(nationalID), excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) get(ctx context.Context, q querier.Querier, id string) (Employee, error) {
	emp, err := s.scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}

	rows, err := q.Query(ctx, `SELECT `+relationshipColumns+`
    FROM relationships
    WHERE employee_id = $1
    ORDER BY position
  `, id)
	if err != nil {
		return Employee{}, err
	}
	defer rows.Close()
	for rows.Next() {
		rel, err := s.scanRelationship(rows)
		if err != nil {
			return Employee{}, err
		}
		emp.Relationships = append(emp.Relationships, rel)
	}
	return emp, rows.Err()
}

func (s *Store) insertRelationships(ctx context.Context, tx pgx.Tx, employeeID string, rels []RelationshipPayload) error {
	for i, rel := range rels {
		nationalPlain, nationalEnc, err := s.sealNationalID(rel.NationalID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO relationships
        (employee_id, position, relationship_type, name, national_id, national_id_enc, birth_date,
         birth_place, profession, spouse_name, residence_location, notes)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, employeeID, i, string(rel.RelationshipType), rel.Name, nationalPlain, nationalEnc, rel.BirthDate,
			rel.BirthPlace, rel.Profession, rel.SpouseName, rel.ResidenceLocation, rel.Notes); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var nationalPlain string
	var nationalEnc []byte
	var marital, hiring, admin string
	if err := row.Scan(
		&emp.ID, &emp.Name, &emp.NickName, &emp.Profession, &emp.BirthDate,
		&nationalPlain, &nationalEnc,
		&marital, &emp.ResidenceLocation, &emp.HiringDate, &hiring,
		&emp.Email, &admin, &emp.ActualWork, &emp.PhoneNumber, &emp.Notes,
		&emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return Employee{}, err
	}
	emp.NationalID = decryptStringFallback(s.Crypto, nationalEnc, nationalPlain)
	emp.MaritalStatus = MaritalStatus(marital)
	emp.HiringType = HiringType(hiring)
	emp.Administration = Administration(admin)
	emp.Relationships = []Relationship{}
	return emp, nil
}

func (s *Store) scanRelationship(row pgx.Row) (Relationship, error) {
	var rel Relationship
	var nationalPlain, kind string
	var nationalEnc []byte
	if err := row.Scan(
		&rel.ID, &rel.EmployeeID, &kind, &rel.Name,
		&nationalPlain, &nationalEnc,
		&rel.BirthDate, &rel.BirthPlace, &rel.Profession, &rel.SpouseName,
		&rel.ResidenceLocation, &rel.Notes, &rel.CreatedAt,
	); err != nil {
		return Relationship{}, err
	}
	rel.NationalID = decryptStringFallback(s.Crypto, nationalEnc, nationalPlain)
	rel.RelationshipType = RelationshipType(kind)
	return rel, nil
}

// sealNationalID returns the plaintext and ciphertext column values. Only
// one of them is set: ciphertext when a key is configured. An encryption
// failure is returned, never downgraded to plaintext.
func (s *Store) sealNationalID(value string) (any, []byte, error) {
	if !s.Crypto.Configured() {
		return value, nil, nil
	}
	enc, err := s.Crypto.EncryptString(value)
	if err != nil {
		return nil, nil, fmt.Errorf("seal national id: %w", err)
	}
	return nil, enc, nil
}

func decryptStringFallback(crypto *cryptoutil.Service, encrypted []byte, plain string) string {
	if !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == nationalIDIndex {
		return ErrNationalIDTaken
	}
	return err
}
