package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "virs-challenge/backend/pkg/errors"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突的 SQLSTATE
const pgUniqueViolation = "23505"

// constraintErrors 约束名 → 业务哨兵错误
var constraintErrors = map[string]error{
	"uq_semesters_access_code":   pkgerrors.ErrDuplicateAccessCode,
	"uq_semesters_single_active": pkgerrors.ErrActiveSemesterExists,
	"uq_streaks_user_id":         pkgerrors.ErrDuplicateStreak,
	"uq_likes_message_user":      pkgerrors.ErrDuplicateLike,
}

// translateUniqueViolation 将已知约束的唯一冲突翻译为哨兵错误，其余原样返回
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return sentinel
	}
	return err
}
