package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "virs-challenge/backend/pkg/errors"
)

func TestTranslateUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"访问码冲突", &pgconn.PgError{Code: "23505", ConstraintName: "uq_semesters_access_code"}, pkgerrors.ErrDuplicateAccessCode},
		{"活动学期冲突", &pgconn.PgError{Code: "23505", ConstraintName: "uq_semesters_single_active"}, pkgerrors.ErrActiveSemesterExists},
		{"打卡记录冲突", &pgconn.PgError{Code: "23505", ConstraintName: "uq_streaks_user_id"}, pkgerrors.ErrDuplicateStreak},
		{"点赞冲突", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_likes_message_user"}), pkgerrors.ErrDuplicateLike},
	}
	for _, tc := range cases {
		if got := translateUniqueViolation(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("%s: 期望 %v，实际: %v", tc.name, tc.want, got)
		}
	}
}

func TestTranslateUniqueViolation_PassThrough(t *testing.T) {
	if translateUniqueViolation(nil) != nil {
		t.Error("nil 应原样返回")
	}

	other := &pgconn.PgError{Code: "23505", ConstraintName: "unknown_constraint"}
	if got := translateUniqueViolation(other); got != other {
		t.Errorf("未知约束应原样返回，实际: %v", got)
	}

	check := &pgconn.PgError{Code: "23514", ConstraintName: "check_end_after_start"}
	if got := translateUniqueViolation(check); got != check {
		t.Errorf("非唯一冲突应原样返回，实际: %v", got)
	}

	plain := errors.New("连接断开")
	if got := translateUniqueViolation(plain); got != plain {
		t.Errorf("普通错误应原样返回，实际: %v", got)
	}
}
