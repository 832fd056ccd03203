package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"not found sentinel", NotFoundError("gone"), domainagg.CodeNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"precondition", PreconditionError("owns projects"), domainagg.CodePreconditionFailed},
		{"conflict", ConflictError("dup"), domainagg.CodeConflict},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), domainagg.CodeRetryable},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, domainagg.CodeConstraintViolation},
		{"pg not null", &pgconn.PgError{Code: "23502"}, domainagg.CodeConstraintViolation},
		{"pg check", &pgconn.PgError{Code: "23514"}, domainagg.CodeConstraintViolation},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"pg wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), domainagg.CodeConstraintViolation},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), domainagg.CodeConstraintViolation},
		{"sqlite not null", errors.New("NOT NULL constraint failed: info_list.infobase_id"), domainagg.CodeConstraintViolation},
		{"sqlite unique", errors.New("UNIQUE constraint failed: user_table.email"), domainagg.CodeConflict},
		{"sqlite locked", errors.New("database is locked"), domainagg.CodeRetryable},
		{"other", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err)
			if !domainagg.IsCode(got, tc.want) {
				t.Fatalf("want %q, got %q (%v)", tc.want, domainagg.CodeOf(got), got)
			}
		})
	}
}

func TestMapErrorConstraintViolationIsNotRetryable(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23503"})
	if domainagg.Retryable(err) {
		t.Fatalf("foreign key violation must not be retryable")
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
