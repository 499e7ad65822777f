package account

import (
	"context"
	"fmt"
)

// CreateContactSubmission persists an inbound contact message and fills in
// the generated ID and creation time.
func (s *Store) CreateContactSubmission(ctx context.Context, sub *ContactSubmission) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO contact_submissions (name, email, inquiry_type, message, read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, now())
		RETURNING id, created_at`,
		sub.Name, sub.Email, sub.InquiryType, sub.Message,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact submission: %w", err)
	}
	return nil
}

// ListContactSubmissions returns submissions newest first.
func (s *Store) ListContactSubmissions(ctx context.Context) ([]ContactSubmission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, inquiry_type, message, read, created_at
		FROM contact_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	defer rows.Close()

	var subs []ContactSubmission
	for rows.Next() {
		var c ContactSubmission
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.InquiryType, &c.Message, &c.Read, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		subs = append(subs, c)
	}
	return subs, rows.Err()
}

// MarkContactSubmissionRead flags a submission as handled.
func (s *Store) MarkContactSubmissionRead(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE contact_submissions SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark contact submission read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
