package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artem13815/contacts/pkg/contact"
)

// ContactRepository хранит контакты; каждый запрос ограничен owner_id.
type ContactRepository struct {
	db DB
}

func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, owner_id, first_name, last_name, email, phone_number, birthday, extra_info, created_at, updated_at`

func (r *ContactRepository) Create(ctx context.Context, c contact.Contact) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO contacts (id, owner_id, first_name, last_name, email, phone_number, birthday, extra_info, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, c.ID, c.OwnerID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.ExtraInfo, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return contact.ErrDuplicateEmail
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (contact.Contact, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND owner_id = $2
`, id, ownerID)
	return scanContact(row)
}

func (r *ContactRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID, f contact.Filter) ([]contact.Contact, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1`)
	args := []any{ownerID}
	eq := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s = $%d", column, len(args))
	}
	eq("first_name", f.FirstName)
	eq("last_name", f.LastName)
	eq("email", f.Email)
	args = append(args, f.Limit, f.Offset)
	fmt.Fprintf(&sb, " ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return collectContacts(rows)
}

func (r *ContactRepository) UpdateForOwner(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	row := r.db.QueryRow(ctx, `
UPDATE contacts
SET first_name = $3, last_name = $4, email = $5, phone_number = $6, birthday = $7, extra_info = $8, updated_at = $9
WHERE id = $1 AND owner_id = $2
RETURNING `+contactColumns, c.ID, c.OwnerID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.ExtraInfo, c.UpdatedAt)
	updated, err := scanContact(row)
	if err != nil && isUniqueViolation(err) {
		return contact.Contact{}, contact.ErrDuplicateEmail
	}
	return updated, err
}

func (r *ContactRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) ListByBirthdayForOwner(ctx context.Context, ownerID uuid.UUID, keys []string) ([]contact.Contact, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+contactColumns+` FROM contacts
WHERE owner_id = $1 AND to_char(birthday, 'MM-DD') = ANY($2)
`, ownerID, keys)
	if err != nil {
		return nil, fmt.Errorf("list birthdays: %w", err)
	}
	return collectContacts(rows)
}

func scanContact(row pgx.Row) (contact.Contact, error) {
	var c contact.Contact
	err := row.Scan(&c.ID, &c.OwnerID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
		&c.Birthday, &c.ExtraInfo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}
		return contact.Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func collectContacts(rows pgx.Rows) ([]contact.Contact, error) {
	defer rows.Close()
	out := make([]contact.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}
