package ledger

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "payledger/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

// docForStorage serializes a record for a JSONB column with the IBAN
// stripped out, returning it encrypted separately.
func (s *Store) docForStorage(rec *Record) ([]byte, []byte, error) {
	iban := rec.IBAN
	rec.IBAN = ""
	doc, err := json.Marshal(rec)
	rec.IBAN = iban
	if err != nil {
		return nil, nil, err
	}
	ibanEnc, err := s.Crypto.EncryptString(iban)
	if err != nil {
		return nil, nil, err
	}
	return doc, ibanEnc, nil
}

func (s *Store) recordFromDoc(doc, ibanEnc []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, err
	}
	if len(ibanEnc) > 0 {
		iban, err := s.Crypto.DecryptString(ibanEnc)
		if err != nil {
			return nil, err
		}
		rec.IBAN = iban
	}
	return &rec, nil
}

// UpsertEmployees writes records into the master employee database keyed by
// employee id, so the next payroll run can start from known salaries and
// bank details instead of a fresh sheet.
func (s *Store) UpsertEmployees(ctx context.Context, records []*Record) (int, error) {
	saved := 0
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		doc, ibanEnc, err := s.docForStorage(rec)
		if err != nil {
			return saved, err
		}
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO employees (id, name, email, doc, iban_enc)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (id)
      DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
        doc = EXCLUDED.doc, iban_enc = EXCLUDED.iban_enc, updated_at = now()
    `, rec.ID, rec.Name, rec.Email, doc, ibanEnc); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]*Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT doc, iban_enc
    FROM employees
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var doc, ibanEnc []byte
		if err := rows.Scan(&doc, &ibanEnc); err != nil {
			return nil, err
		}
		rec, err := s.recordFromDoc(doc, ibanEnc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
